package intercepters

import (
	"context"
	"net"
	"net/netip"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

type contextKey string

const RealIPKey contextKey = "real-ip"

// SubnetIPInterceptor copies the x-real-ip metadata value into the context.
func SubnetIPInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if ok {
		if ips := md.Get("x-real-ip"); len(ips) > 0 {
			ctx = context.WithValue(ctx, RealIPKey, ips[0])
		}
	}
	return handler(ctx, req)
}

// WithTrustedSubnet rejects calls to the guarded methods (matched by suffix
// of the full method name) unless the caller address lies inside cidr. The
// address is RealIPKey when set, else the peer address. An empty or invalid
// cidr denies every guarded call.
func WithTrustedSubnet(cidr string, guarded ...string) grpc.UnaryServerInterceptor {
	prefix, perr := netip.ParsePrefix(strings.TrimSpace(cidr))

	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if !isGuarded(info.FullMethod, guarded) {
			return handler(ctx, req)
		}
		if cidr == "" || perr != nil {
			return nil, status.Error(codes.PermissionDenied, "trusted subnet is not configured")
		}

		ip, ok := callerIP(ctx)
		if !ok {
			return nil, status.Error(codes.PermissionDenied, "caller address unknown")
		}
		if !prefix.Contains(ip) {
			return nil, status.Error(codes.PermissionDenied, "caller outside trusted subnet")
		}
		return handler(ctx, req)
	}
}

func isGuarded(method string, guarded []string) bool {
	for _, g := range guarded {
		if strings.HasSuffix(method, "/"+g) {
			return true
		}
	}
	return false
}

func callerIP(ctx context.Context) (netip.Addr, bool) {
	if v, ok := ctx.Value(RealIPKey).(string); ok && v != "" {
		ip, err := netip.ParseAddr(v)
		return ip.Unmap(), err == nil
	}

	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return netip.Addr{}, false
	}
	host, _, err := net.SplitHostPort(p.Addr.String())
	if err != nil {
		host = p.Addr.String()
	}
	ip, err := netip.ParseAddr(host)
	return ip.Unmap(), err == nil
}
