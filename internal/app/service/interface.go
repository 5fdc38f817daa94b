package service

import (
	"context"
	"errors"

	"github.com/atinyakov/utm-manager/internal/models"
	"github.com/atinyakov/utm-manager/internal/remote"
	"github.com/atinyakov/utm-manager/internal/shortener"
)

var (
	// ErrConcurrentSyncRejected is returned when a pass is already running
	// for the same owner.
	ErrConcurrentSyncRejected = errors.New("sync already in progress")

	// ErrSyncNotConfigured is returned when the owner has no remote store.
	ErrSyncNotConfigured = errors.New("sync is not configured")

	// ErrInvalidInput wraps record validation failures.
	ErrInvalidInput = errors.New("invalid input")
)

// Syncer drives synchronization passes.
type Syncer interface {
	AutoSync(ctx context.Context, ownerID string)
	FullSync(ctx context.Context, ownerID string) (models.SyncSummary, error)
	Reset(ownerID string) error
	State(ownerID string) State
}

// Recorder creates and lists UTM records and edits local settings.
type Recorder interface {
	Create(ctx context.Context, ownerID string, in models.RecordInput) (models.UtmRecord, error)
	List(ctx context.Context, ownerID string) []models.UtmRecord
	Settings(ctx context.Context, ownerID string) models.UserSettings
	SaveSettings(ctx context.Context, ownerID string, update models.UserSettings) (models.UserSettings, error)
}

// Shortener shortens links through the provider chain.
type Shortener interface {
	Shorten(ctx context.Context, longURL string, meta shortener.Metadata) (shortener.Result, error)
}

// RemoteSource picks the remote store for an owner's settings. ok is false
// when no remote is configured.
type RemoteSource interface {
	Remote(settings models.UserSettings) (remote.Store, bool)
}

// RemoteSourceFunc adapts a function to RemoteSource.
type RemoteSourceFunc func(settings models.UserSettings) (remote.Store, bool)

func (f RemoteSourceFunc) Remote(settings models.UserSettings) (remote.Store, bool) {
	return f(settings)
}

// Observer receives sync pass outcomes.
type Observer interface {
	ObserveSync(kind string, err error)
}
