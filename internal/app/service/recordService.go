package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/atinyakov/utm-manager/internal/models"
	"github.com/atinyakov/utm-manager/internal/shortener"
	"github.com/atinyakov/utm-manager/internal/utm"
	"github.com/atinyakov/utm-manager/internal/worker"
)

type RecordService struct {
	local     *Local
	shortener Shortener
	validate  *validator.Validate
	logger    *zap.Logger
	ch        chan<- worker.Task
	now       func() time.Time
}

// NewRecordService creates the record path. shortener and ch may be nil to
// disable shortening and opportunistic pushes.
func NewRecordService(local *Local, s Shortener, ch chan<- worker.Task, logger *zap.Logger) *RecordService {
	return &RecordService{
		local:     local,
		shortener: s,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger,
		ch:        ch,
		now:       time.Now,
	}
}

func (s *RecordService) WithClock(now func() time.Time) *RecordService {
	s.now = now
	return s
}

// Create builds the tracking link, shortens it when asked, appends the
// record to the cache and queues it for a background push.
func (s *RecordService) Create(ctx context.Context, ownerID string, in models.RecordInput) (models.UtmRecord, error) {
	in = in.Trimmed()
	if err := s.validate.Struct(in); err != nil {
		return models.UtmRecord{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	finalURL, err := utm.BuildURL(in.WebsiteURL, utm.Params{
		Source:   in.UtmSource,
		Medium:   in.UtmMedium,
		Campaign: in.UtmCampaign,
		Term:     in.UtmTerm,
		Content:  in.UtmContent,
	})
	if err != nil {
		return models.UtmRecord{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	record := models.UtmRecord{
		OwnerID:     ownerID,
		WebsiteURL:  in.WebsiteURL,
		FinalURL:    finalURL,
		UtmSource:   in.UtmSource,
		UtmMedium:   in.UtmMedium,
		UtmCampaign: in.UtmCampaign,
		UtmTerm:     in.UtmTerm,
		UtmContent:  in.UtmContent,
	}

	if in.Shorten && s.shortener != nil {
		record.ShortURL = s.shorten(ctx, ownerID, finalURL, in.UtmCampaign)
	}

	_, err = s.local.UpdateRecords(ownerID, func(current []models.UtmRecord) ([]models.UtmRecord, error) {
		record.Timestamp = uniqueTimestamp(s.now(), current)

		next := make([]models.UtmRecord, 0, len(current)+1)
		next = append(next, record)
		next = append(next, current...)
		return next, nil
	})
	if err != nil {
		return models.UtmRecord{}, fmt.Errorf("save record: %w", err)
	}

	if s.ch != nil {
		select {
		case s.ch <- worker.Task{OwnerID: ownerID, Record: record}:
		case <-ctx.Done():
			s.logger.Warn("Record not queued for push", zap.String("timestamp", record.Timestamp))
		}
	}

	return record, nil
}

// shorten returns the remembered short form of finalURL or asks the chain
// for a new one. Failure yields an empty string.
func (s *RecordService) shorten(ctx context.Context, ownerID, finalURL, title string) string {
	if short, ok := s.local.ShortURL(ownerID, finalURL); ok {
		return short
	}

	res, err := s.shortener.Shorten(ctx, finalURL, shortener.Metadata{Title: title})
	if err != nil {
		s.logger.Warn("Shortening failed, keeping full link", zap.String("url", finalURL), zap.Error(err))
		return ""
	}

	if err := s.local.RememberShortURL(ownerID, finalURL, res.ShortURL); err != nil {
		s.logger.Warn("Cannot remember short url", zap.Error(err))
	}

	return res.ShortURL
}

// uniqueTimestamp formats now, nudging it forward until it collides with no
// existing record.
func uniqueTimestamp(now time.Time, existing []models.UtmRecord) string {
	taken := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		taken[r.Timestamp] = struct{}{}
	}

	t := now.UTC()
	for {
		ts := t.Format(time.RFC3339Nano)
		if _, ok := taken[ts]; !ok {
			return ts
		}
		t = t.Add(time.Millisecond)
	}
}

func (s *RecordService) List(_ context.Context, ownerID string) []models.UtmRecord {
	return s.local.Records(ownerID)
}

func (s *RecordService) Settings(_ context.Context, ownerID string) models.UserSettings {
	settings, _ := s.local.Settings(ownerID)
	return settings
}

// SaveSettings writes the non-empty fields of update over the cached
// settings and stamps them with the current time.
func (s *RecordService) SaveSettings(_ context.Context, ownerID string, update models.UserSettings) (models.UserSettings, error) {
	current, _ := s.local.Settings(ownerID)
	next := current.Overlay(update, s.now().UTC())

	if err := s.local.SetSettings(ownerID, next); err != nil {
		return models.UserSettings{}, fmt.Errorf("save settings: %w", err)
	}

	return next, nil
}
