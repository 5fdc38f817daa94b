package grpc

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "utmsync.v1.Sync"

// Method names of the Sync service.
const (
	MethodFullSync = "FullSync"
	MethodAutoSync = "AutoSync"
	MethodState    = "State"
	MethodReset    = "Reset"
	MethodShorten  = "Shorten"
	MethodRecords  = "Records"
)

// SyncServer is the server API of the Sync service. Every message is a
// google.protobuf.Struct carrying the JSON form of the domain model.
type SyncServer interface {
	FullSync(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AutoSync(context.Context, *structpb.Struct) (*structpb.Struct, error)
	State(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Reset(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Shorten(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Records(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(SyncServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SyncServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(SyncServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// SyncServiceDesc describes the Sync service for grpc.Server.RegisterService.
var SyncServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SyncServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodFullSync, SyncServer.FullSync),
		unary(MethodAutoSync, SyncServer.AutoSync),
		unary(MethodState, SyncServer.State),
		unary(MethodReset, SyncServer.Reset),
		unary(MethodShorten, SyncServer.Shorten),
		unary(MethodRecords, SyncServer.Records),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "utmsync/v1/sync.proto",
}

// RegisterSyncServer registers srv on s.
func RegisterSyncServer(s grpc.ServiceRegistrar, srv SyncServer) {
	s.RegisterService(&SyncServiceDesc, srv)
}

// SyncClient calls the Sync service with plain Go values, converting them to
// and from Struct messages.
type SyncClient struct {
	cc grpc.ClientConnInterface
}

func NewSyncClient(cc grpc.ClientConnInterface) *SyncClient {
	return &SyncClient{cc: cc}
}

// Call invokes method with in encoded as a Struct and decodes the reply into
// out. Both in and out may be nil.
func (c *SyncClient) Call(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	req := &structpb.Struct{}
	if in != nil {
		var err error
		if req, err = ToStruct(in); err != nil {
			return err
		}
	}

	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, resp, opts...); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return FromStruct(resp, out)
}

// ToStruct converts v to a Struct through its JSON form.
func ToStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, s); err != nil {
		return nil, err
	}
	return s, nil
}

// FromStruct decodes s into dst through its JSON form.
func FromStruct(s *structpb.Struct, dst any) error {
	raw, err := protojson.Marshal(s)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
