package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/utm-manager/internal/models"
	"github.com/atinyakov/utm-manager/internal/reconcile"
	"github.com/atinyakov/utm-manager/internal/remote"
)

// DefaultPushDelay spaces out consecutive record pushes.
const DefaultPushDelay = 100 * time.Millisecond

// State is the phase of the latest sync pass of an owner.
type State string

const (
	StateIdle      State = "idle"
	StatePushing   State = "pushing"
	StatePulling   State = "pulling"
	StateMerging   State = "merging"
	StatePersisted State = "persisted"
	StateFailed    State = "failed"
)

type SyncService struct {
	local    *Local
	remotes  RemoteSource
	logger   *zap.Logger
	delay    time.Duration
	now      func() time.Time
	observer Observer

	mu       sync.Mutex
	inFlight map[string]struct{}
	states   map[string]State
}

func NewSyncService(local *Local, remotes RemoteSource, logger *zap.Logger, delay time.Duration) *SyncService {
	return &SyncService{
		local:    local,
		remotes:  remotes,
		logger:   logger,
		delay:    delay,
		now:      time.Now,
		inFlight: make(map[string]struct{}),
		states:   make(map[string]State),
	}
}

func (s *SyncService) WithObserver(o Observer) *SyncService {
	s.observer = o
	return s
}

func (s *SyncService) WithClock(now func() time.Time) *SyncService {
	s.now = now
	return s
}

// State reports the phase of the owner's current or last pass.
func (s *SyncService) State(ownerID string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.states[ownerID]; ok {
		return st
	}
	return StateIdle
}

func (s *SyncService) setState(ownerID string, st State) {
	s.mu.Lock()
	s.states[ownerID] = st
	s.mu.Unlock()
}

func (s *SyncService) acquire(ownerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inFlight[ownerID]; busy {
		return false
	}
	s.inFlight[ownerID] = struct{}{}
	return true
}

func (s *SyncService) release(ownerID string) {
	s.mu.Lock()
	delete(s.inFlight, ownerID)
	s.mu.Unlock()
}

// StoreFor resolves the remote configured by the owner's cached settings.
func (s *SyncService) StoreFor(ownerID string) (remote.Store, bool) {
	settings, _ := s.local.Settings(ownerID)
	return s.remotes.Remote(settings)
}

// AutoSync pushes settings and the records created since the watermark.
// Failures are logged only. The watermark moves to the pass start time
// once every pending record was confirmed or rejected by the remote; an
// unreachable remote fails the pass and leaves the watermark in place.
func (s *SyncService) AutoSync(ctx context.Context, ownerID string) {
	if !s.acquire(ownerID) {
		s.logger.Debug("Auto-sync skipped, pass in flight", zap.String("owner", ownerID))
		return
	}
	defer s.release(ownerID)

	err := s.autoSync(ctx, ownerID)
	s.observe("auto", err)
	if err != nil {
		s.setState(ownerID, StateFailed)
		s.logger.Warn("Auto-sync failed", zap.String("owner", ownerID), zap.Error(err))
	}
}

func (s *SyncService) autoSync(ctx context.Context, ownerID string) error {
	started := s.now()

	settings, hasSettings := s.local.Settings(ownerID)
	store, ok := s.remotes.Remote(settings)
	if !ok {
		return nil
	}

	s.setState(ownerID, StatePushing)

	if hasSettings && !settings.IsZero() {
		if _, err := store.SaveSettings(ctx, ownerID, settings); err != nil {
			return fmt.Errorf("push settings: %w", err)
		}
	}

	pending := s.local.Records(ownerID)
	if mark, ok := s.local.Watermark(ownerID); ok {
		pending = reconcile.NewerThan(pending, mark)
	}

	res, err := remote.PushBatch(ctx, store, ownerID, pending, s.delay)
	s.logger.Info("Auto-sync pushed records",
		zap.String("owner", ownerID),
		zap.Int("total", res.Total),
		zap.Int("success", res.SuccessCount),
		zap.Int("unconfirmed", res.UnconfirmedCount),
		zap.Int("errors", res.ErrorCount),
	)
	if err != nil {
		return fmt.Errorf("push records: %w", err)
	}

	// unconfirmed records are pushed again on the next pass
	if res.UnconfirmedCount > 0 {
		s.setState(ownerID, StatePersisted)
		return nil
	}

	if err := s.local.SetWatermark(ownerID, started); err != nil {
		return fmt.Errorf("store watermark: %w", err)
	}

	s.setState(ownerID, StatePersisted)
	return nil
}

// FullSync pushes local settings, pulls remote settings and records, merges
// both sides, uploads local-only records and persists the merged result.
func (s *SyncService) FullSync(ctx context.Context, ownerID string) (models.SyncSummary, error) {
	if !s.acquire(ownerID) {
		return models.SyncSummary{}, ErrConcurrentSyncRejected
	}
	defer s.release(ownerID)

	summary, err := s.fullSync(ctx, ownerID)
	s.observe("full", err)
	if err != nil {
		s.setState(ownerID, StateFailed)
		s.logger.Error("Full sync failed", zap.String("owner", ownerID), zap.Error(err))
		return models.SyncSummary{}, err
	}

	s.logger.Info("Full sync finished",
		zap.String("owner", ownerID),
		zap.Int("local", summary.LocalCount),
		zap.Int("cloud", summary.CloudCount),
		zap.Int("total", summary.TotalCount),
	)
	return summary, nil
}

func (s *SyncService) fullSync(ctx context.Context, ownerID string) (models.SyncSummary, error) {
	started := s.now()

	localRecords := s.local.Records(ownerID)
	localSettings, hasSettings := s.local.Settings(ownerID)

	store, ok := s.remotes.Remote(localSettings)
	if !ok {
		return models.SyncSummary{}, ErrSyncNotConfigured
	}

	s.setState(ownerID, StatePushing)
	if hasSettings && !localSettings.IsZero() {
		if _, err := store.SaveSettings(ctx, ownerID, localSettings); err != nil {
			return models.SyncSummary{}, fmt.Errorf("push settings: %w", err)
		}
	}

	s.setState(ownerID, StatePulling)
	remoteSettings, err := store.LoadSettings(ctx, ownerID)
	if err != nil {
		return models.SyncSummary{}, fmt.Errorf("load settings: %w", err)
	}

	remoteRecords, err := store.LoadRecords(ctx, ownerID)
	if err != nil {
		return models.SyncSummary{}, fmt.Errorf("load records: %w", err)
	}

	s.setState(ownerID, StateMerging)
	var localPtr *models.UserSettings
	if hasSettings {
		localPtr = &localSettings
	}
	mergedSettings := reconcile.MergeSettings(localPtr, remoteSettings)
	merged := reconcile.MergeRecords(localRecords, remoteRecords)

	if missing := reconcile.Missing(localRecords, remoteRecords); len(missing) > 0 {
		res, err := remote.PushBatch(ctx, store, ownerID, missing, s.delay)
		s.logger.Info("Uploaded local-only records",
			zap.String("owner", ownerID),
			zap.Int("total", res.Total),
			zap.Int("unconfirmed", res.UnconfirmedCount),
			zap.Int("errors", res.ErrorCount),
		)
		if err != nil {
			return models.SyncSummary{}, fmt.Errorf("upload records: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return models.SyncSummary{}, err
	}

	persisted, err := s.local.UpdateRecords(ownerID, func(current []models.UtmRecord) ([]models.UtmRecord, error) {
		// current may hold records created while the pass was running
		return reconcile.MergeRecords(current, merged), nil
	})
	if err != nil {
		return models.SyncSummary{}, fmt.Errorf("persist records: %w", err)
	}

	if !mergedSettings.IsZero() {
		if err := s.local.SetSettings(ownerID, mergedSettings); err != nil {
			return models.SyncSummary{}, fmt.Errorf("persist settings: %w", err)
		}
	}

	if err := s.local.SetWatermark(ownerID, started); err != nil {
		return models.SyncSummary{}, fmt.Errorf("store watermark: %w", err)
	}

	s.setState(ownerID, StatePersisted)

	return models.SyncSummary{
		LocalCount: len(localRecords),
		CloudCount: len(remoteRecords),
		TotalCount: len(persisted),
	}, nil
}

// Reset forgets everything cached for the owner. It is rejected while a
// pass is running.
func (s *SyncService) Reset(ownerID string) error {
	if !s.acquire(ownerID) {
		return ErrConcurrentSyncRejected
	}
	defer s.release(ownerID)

	s.local.Clear(ownerID)

	s.mu.Lock()
	delete(s.states, ownerID)
	s.mu.Unlock()

	s.logger.Info("Local data reset", zap.String("owner", ownerID))
	return nil
}

func (s *SyncService) observe(kind string, err error) {
	if s.observer != nil {
		s.observer.ObserveSync(kind, err)
	}
}
