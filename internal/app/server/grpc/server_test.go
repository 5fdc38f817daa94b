package grpc_test

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	ggrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/atinyakov/utm-manager/internal/app/server/grpc"
	"github.com/atinyakov/utm-manager/internal/app/service"
	"github.com/atinyakov/utm-manager/internal/mocks"
	"github.com/atinyakov/utm-manager/internal/models"
	"github.com/atinyakov/utm-manager/internal/remote"
	"github.com/atinyakov/utm-manager/internal/shortener"
)

type fixture struct {
	syncer   *mocks.MockSyncer
	recorder *mocks.MockRecorder
	short    *mocks.MockShortener
	auth     *service.Auth
	client   *grpc.SyncClient
}

func newFixture(t *testing.T, trustedSubnet string) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		syncer:   mocks.NewMockSyncer(ctrl),
		recorder: mocks.NewMockRecorder(ctrl),
		short:    mocks.NewMockShortener(ctrl),
		auth:     service.NewAuth("secret"),
	}

	srv := grpc.New(grpc.Deps{
		Syncer:        f.syncer,
		Records:       f.recorder,
		Chain:         f.short,
		Auth:          f.auth,
		DeviceID:      func() string { return "device" },
		TrustedSubnet: trustedSubnet,
	}, zap.NewNop(), 0)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.GracefulStop)

	conn, err := ggrpc.NewClient("passthrough:///bufnet",
		ggrpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		ggrpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	f.client = grpc.NewSyncClient(conn)
	return f
}

func (f *fixture) as(t *testing.T, owner string) context.Context {
	t.Helper()
	token, _, err := f.auth.BuildJWTString(owner)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
}

func TestFullSync(t *testing.T) {
	f := newFixture(t, "")

	f.syncer.EXPECT().FullSync(gomock.Any(), "user-1").
		Return(models.SyncSummary{LocalCount: 2, CloudCount: 2, TotalCount: 3}, nil)

	var got models.SyncSummary
	require.NoError(t, f.client.Call(f.as(t, "user-1"), grpc.MethodFullSync, nil, &got))
	assert.Equal(t, models.SyncSummary{LocalCount: 2, CloudCount: 2, TotalCount: 3}, got)
}

func TestFullSync_ErrorCodes(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{service.ErrConcurrentSyncRejected, codes.Aborted},
		{service.ErrSyncNotConfigured, codes.FailedPrecondition},
		{remote.ErrRemoteUnavailable, codes.Unavailable},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			f := newFixture(t, "")
			f.syncer.EXPECT().FullSync(gomock.Any(), "user-1").Return(models.SyncSummary{}, tt.err)

			err := f.client.Call(f.as(t, "user-1"), grpc.MethodFullSync, nil, nil)
			assert.Equal(t, tt.want, status.Code(err))
		})
	}
}

func TestDeviceOwnerWithoutToken(t *testing.T) {
	f := newFixture(t, "")

	f.syncer.EXPECT().State("device").Return(service.StateIdle)

	var got struct {
		State string `json:"state"`
	}
	require.NoError(t, f.client.Call(context.Background(), grpc.MethodState, nil, &got))
	assert.Equal(t, string(service.StateIdle), got.State)
}

func TestInvalidToken(t *testing.T) {
	f := newFixture(t, "")

	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer nope")
	err := f.client.Call(ctx, grpc.MethodState, nil, nil)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestAutoSync(t *testing.T) {
	f := newFixture(t, "")

	gomock.InOrder(
		f.syncer.EXPECT().AutoSync(gomock.Any(), "user-1"),
		f.syncer.EXPECT().State("user-1").Return(service.StatePersisted),
	)

	var got struct {
		State string `json:"state"`
	}
	require.NoError(t, f.client.Call(f.as(t, "user-1"), grpc.MethodAutoSync, nil, &got))
	assert.Equal(t, string(service.StatePersisted), got.State)
}

func TestShorten(t *testing.T) {
	f := newFixture(t, "")

	f.short.EXPECT().
		Shorten(gomock.Any(), "https://example.com/?utm_source=a", shortener.Metadata{Title: "t"}).
		Return(shortener.Result{ShortURL: "https://tinyurl.com/x", Provider: "tinyurl", OriginalURL: "https://example.com/?utm_source=a"}, nil)

	var got models.ShortenResponse
	err := f.client.Call(f.as(t, "user-1"), grpc.MethodShorten,
		models.ShortenRequest{URL: "https://example.com/?utm_source=a", Title: "t"}, &got)
	require.NoError(t, err)
	assert.Equal(t, "https://tinyurl.com/x", got.ShortURL)
	assert.Equal(t, "tinyurl", got.Provider)
}

func TestShorten_Errors(t *testing.T) {
	f := newFixture(t, "")

	err := f.client.Call(f.as(t, "user-1"), grpc.MethodShorten, models.ShortenRequest{}, nil)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	f.short.EXPECT().Shorten(gomock.Any(), "https://example.com", gomock.Any()).
		Return(shortener.Result{}, &shortener.AllProvidersExhaustedError{Attempts: 2})

	err = f.client.Call(f.as(t, "user-1"), grpc.MethodShorten, models.ShortenRequest{URL: "https://example.com"}, nil)
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestRecords(t *testing.T) {
	f := newFixture(t, "")

	f.recorder.EXPECT().List(gomock.Any(), "user-1").Return([]models.UtmRecord{
		{Timestamp: "2024-01-02T00:00:00Z", UtmCampaign: "b"},
		{Timestamp: "2024-01-01T00:00:00Z", UtmCampaign: "a"},
	})

	var got struct {
		Records []models.UtmRecord `json:"records"`
	}
	require.NoError(t, f.client.Call(f.as(t, "user-1"), grpc.MethodRecords, nil, &got))
	require.Len(t, got.Records, 2)
	assert.Equal(t, "b", got.Records[0].UtmCampaign)
}

func TestReset_TrustedSubnet(t *testing.T) {
	f := newFixture(t, "10.0.0.0/8")

	err := f.client.Call(f.as(t, "user-1"), grpc.MethodReset, nil, nil)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	f.syncer.EXPECT().Reset("user-1").Return(nil)
	ctx := metadata.AppendToOutgoingContext(f.as(t, "user-1"), "x-real-ip", "10.1.2.3")
	require.NoError(t, f.client.Call(ctx, grpc.MethodReset, nil, nil))

	f.syncer.EXPECT().Reset("user-1").Return(service.ErrConcurrentSyncRejected)
	err = f.client.Call(ctx, grpc.MethodReset, nil, nil)
	assert.Equal(t, codes.Aborted, status.Code(err))
}

func TestSyncService_NoOwnerInContext(t *testing.T) {
	svc := &grpc.SyncService{}

	_, err := svc.FullSync(context.Background(), &structpb.Struct{})
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.Contains(t, err.Error(), "user ID missing")
}
