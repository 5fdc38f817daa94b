// Package grpc exposes the sync core as the utmsync.v1.Sync gRPC service.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/atinyakov/utm-manager/internal/app/service"
	"github.com/atinyakov/utm-manager/internal/intercepters"
	"github.com/atinyakov/utm-manager/internal/middleware"
	"github.com/atinyakov/utm-manager/internal/models"
	"github.com/atinyakov/utm-manager/internal/remote"
	"github.com/atinyakov/utm-manager/internal/shortener"
)

// Deps are the services the gRPC surface delegates to.
type Deps struct {
	Syncer   service.Syncer
	Records  service.Recorder
	Chain    service.Shortener
	Auth     service.AuthIface
	DeviceID func() string

	// TrustedSubnet, when set, restricts Reset to callers inside it.
	TrustedSubnet string
}

// Server wraps the gRPC server and dependencies.
type Server struct {
	grpcServer *grpc.Server
	port       int
	logger     *zap.Logger
}

// New creates a new gRPC server instance.
func New(d Deps, logger *zap.Logger, port int) *Server {
	chain := []grpc.UnaryServerInterceptor{
		logging.UnaryServerInterceptor(intercepters.InterceptorLogger(logger)),
		intercepters.SubnetIPInterceptor,
	}
	if d.TrustedSubnet != "" {
		chain = append(chain, intercepters.WithTrustedSubnet(d.TrustedSubnet, MethodReset))
	}
	chain = append(chain, intercepters.WithJWT(d.Auth, d.DeviceID))

	s := grpc.NewServer(grpc.ChainUnaryInterceptor(chain...))
	RegisterSyncServer(s, &SyncService{
		Syncer:    d.Syncer,
		Recorder:  d.Records,
		Shortener: d.Chain,
	})

	return &Server{
		grpcServer: s,
		port:       port,
		logger:     logger,
	}
}

// Start listens on the configured port and serves until stopped.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		s.logger.Error("gRPC server failed to listen:", zap.Error(err))
		return err
	}

	s.logger.Info("gRPC server listening on port", zap.Int("port", s.port))
	return s.Serve(lis)
}

// Serve serves on an existing listener.
func (s *Server) Serve(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

// GracefulStop shuts down the server gracefully.
func (s *Server) GracefulStop() {
	s.grpcServer.GracefulStop()
}

// --- Implementation of the gRPC interface ---

// SyncService implements SyncServer on top of the sync core.
type SyncService struct {
	Syncer    service.Syncer
	Recorder  service.Recorder
	Shortener service.Shortener
}

// CodeFor maps domain errors to gRPC status codes.
func CodeFor(err error) codes.Code {
	switch {
	case errors.Is(err, service.ErrConcurrentSyncRejected):
		return codes.Aborted
	case errors.Is(err, service.ErrSyncNotConfigured):
		return codes.FailedPrecondition
	case errors.Is(err, service.ErrInvalidInput):
		return codes.InvalidArgument
	case errors.Is(err, remote.ErrRemoteUnavailable),
		errors.Is(err, shortener.ErrAllProvidersExhausted):
		return codes.Unavailable
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	default:
		return codes.Internal
	}
}

func statusErr(err error) error {
	return status.Error(CodeFor(err), err.Error())
}

func owner(ctx context.Context) (string, error) {
	id, ok := middleware.UserID(ctx)
	if !ok {
		return "", status.Error(codes.Internal, "user ID missing in context")
	}
	return id, nil
}

func reply(v any) (*structpb.Struct, error) {
	s, err := ToStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return s, nil
}

type stateReply struct {
	State service.State `json:"state"`
}

// FullSync runs a full pass for the caller and returns its summary.
func (s *SyncService) FullSync(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	summary, err := s.Syncer.FullSync(ctx, userID)
	if err != nil {
		return nil, statusErr(err)
	}
	return reply(summary)
}

// AutoSync runs an incremental push and returns the resulting state.
func (s *SyncService) AutoSync(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	s.Syncer.AutoSync(ctx, userID)
	return reply(stateReply{State: s.Syncer.State(userID)})
}

// State reports the phase of the caller's latest pass.
func (s *SyncService) State(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	return reply(stateReply{State: s.Syncer.State(userID)})
}

// Reset clears the caller's local data.
func (s *SyncService) Reset(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Syncer.Reset(userID); err != nil {
		return nil, statusErr(err)
	}
	return &structpb.Struct{}, nil
}

// Shorten runs the shortener chain for {url, title, description}.
func (s *SyncService) Shorten(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if _, err := owner(ctx); err != nil {
		return nil, err
	}

	var req models.ShortenRequest
	if err := FromStruct(in, &req); err != nil || req.URL == "" {
		return nil, status.Error(codes.InvalidArgument, "url is required")
	}

	res, err := s.Shortener.Shorten(ctx, req.URL, shortener.Metadata{Title: req.Title, Description: req.Description})
	if err != nil {
		return nil, statusErr(err)
	}
	return reply(models.ShortenResponse{
		ShortURL:    res.ShortURL,
		Provider:    res.Provider,
		OriginalURL: res.OriginalURL,
	})
}

type recordsReply struct {
	Records []models.UtmRecord `json:"records"`
}

// Records lists the caller's local records, newest first.
func (s *SyncService) Records(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	userID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	records := s.Recorder.List(ctx, userID)
	if records == nil {
		records = []models.UtmRecord{}
	}
	return reply(recordsReply{Records: records})
}
