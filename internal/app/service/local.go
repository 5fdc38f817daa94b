package service

import (
	"sync"
	"time"

	"github.com/atinyakov/utm-manager/internal/models"
	"github.com/atinyakov/utm-manager/internal/storage"
)

// Local is the owner-scoped view of the device cache shared by the record
// path and the sync orchestrator. Record sets are replaced as a whole.
type Local struct {
	mu    sync.Mutex
	cache storage.Cache
}

func NewLocal(cache storage.Cache) *Local {
	return &Local{cache: cache}
}

func (l *Local) owner(ownerID string) storage.Cache {
	return storage.ForOwner(l.cache, ownerID)
}

// Records returns a copy of the owner's cached records.
func (l *Local) Records(ownerID string) []models.UtmRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.records(ownerID)
}

func (l *Local) records(ownerID string) []models.UtmRecord {
	var rs []models.UtmRecord
	if !l.owner(ownerID).Get(storage.KeyRecords, &rs) {
		return []models.UtmRecord{}
	}
	return rs
}

// UpdateRecords reads the record set, lets fn compute the replacement and
// writes it back under one lock.
func (l *Local) UpdateRecords(ownerID string, fn func([]models.UtmRecord) ([]models.UtmRecord, error)) ([]models.UtmRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next, err := fn(l.records(ownerID))
	if err != nil {
		return nil, err
	}

	if err := l.owner(ownerID).Set(storage.KeyRecords, next); err != nil {
		return nil, err
	}

	return next, nil
}

// Settings returns the owner's cached settings and whether any were stored.
func (l *Local) Settings(ownerID string) (models.UserSettings, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var s models.UserSettings
	ok := l.owner(ownerID).Get(storage.KeySettings, &s)
	return s, ok
}

func (l *Local) SetSettings(ownerID string, s models.UserSettings) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.owner(ownerID).Set(storage.KeySettings, s)
}

// Watermark returns the time of the last completed auto-sync push.
func (l *Local) Watermark(ownerID string) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var raw string
	if !l.owner(ownerID).Get(storage.KeyWatermark, &raw) {
		return time.Time{}, false
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (l *Local) SetWatermark(ownerID string, t time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.owner(ownerID).Set(storage.KeyWatermark, t.UTC().Format(time.RFC3339Nano))
}

// ShortURL returns the short form already issued for longURL.
func (l *Local) ShortURL(ownerID, longURL string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var memo map[string]string
	if !l.owner(ownerID).Get(storage.KeyShortURLs, &memo) {
		return "", false
	}
	short, ok := memo[longURL]
	return short, ok && short != ""
}

// RememberShortURL records the short form of longURL for the owner.
func (l *Local) RememberShortURL(ownerID, longURL, shortURL string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	c := l.owner(ownerID)

	var memo map[string]string
	if !c.Get(storage.KeyShortURLs, &memo) || memo == nil {
		memo = make(map[string]string, 1)
	}
	memo[longURL] = shortURL

	return c.Set(storage.KeyShortURLs, memo)
}

// Clear removes everything stored for the owner.
func (l *Local) Clear(ownerID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c := l.owner(ownerID)
	for _, key := range []string{storage.KeyWatermark, storage.KeyRecords, storage.KeySettings, storage.KeyShortURLs} {
		c.Remove(key)
	}
}
