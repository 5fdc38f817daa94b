package remote

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/atinyakov/utm-manager/internal/models"
	"github.com/atinyakov/utm-manager/internal/reconcile"
	"github.com/atinyakov/utm-manager/internal/repository"
)

// DefaultDocumentLimit is how many records LoadRecords fetches.
const DefaultDocumentLimit = 100

// Documents is the persistence DocumentStore runs on.
type Documents interface {
	SaveSettings(ctx context.Context, ownerID string, s models.UserSettings) error
	FindSettings(ctx context.Context, ownerID string) (*models.UserSettings, error)
	InsertRecord(ctx context.Context, ownerID string, rec models.UtmRecord) error
	FindRecords(ctx context.Context, ownerID string, limit int) ([]models.UtmRecord, error)
}

// DocumentStore keeps settings in a per-owner document and records in a
// collection queried by owner, newest first.
type DocumentStore struct {
	docs   Documents
	limit  int
	logger *zap.Logger
}

// NewDocumentStore creates a store over docs. limit <= 0 uses
// DefaultDocumentLimit.
func NewDocumentStore(docs Documents, limit int, logger *zap.Logger) *DocumentStore {
	if limit <= 0 {
		limit = DefaultDocumentLimit
	}

	return &DocumentStore{
		docs:   docs,
		limit:  limit,
		logger: logger,
	}
}

// classify splits database errors: a reply from the server (constraint,
// quota, permission) is a business failure and yields nil, as does a stored
// document that does not decode; anything else never reached a server and
// wraps ErrRemoteUnavailable.
func (d *DocumentStore) classify(op, ownerID string, err error) error {
	if errors.Is(err, repository.ErrMalformedDocument) {
		d.logger.Warn("document store returned malformed document",
			zap.String("op", op),
			zap.String("owner", ownerID),
			zap.Error(err),
		)
		return nil
	}
	if errors.Is(err, repository.ErrConflict) || repository.IsServerError(err) {
		d.logger.Info("document store rejected operation", zap.String("op", op), zap.String("owner", ownerID), zap.Error(err))
		return nil
	}
	return unavailable(op, err)
}

func (d *DocumentStore) SaveSettings(ctx context.Context, ownerID string, settings models.UserSettings) (bool, error) {
	if err := d.docs.SaveSettings(ctx, ownerID, settings); err != nil {
		return false, d.classify(models.ActionSaveSettings, ownerID, err)
	}
	return true, nil
}

func (d *DocumentStore) LoadSettings(ctx context.Context, ownerID string) (*models.UserSettings, error) {
	s, err := d.docs.FindSettings(ctx, ownerID)
	if err != nil {
		return nil, d.classify(models.ActionLoadSettings, ownerID, err)
	}
	return s, nil
}

func (d *DocumentStore) SaveRecord(ctx context.Context, ownerID string, record models.UtmRecord) (bool, error) {
	if err := d.docs.InsertRecord(ctx, ownerID, record); err != nil {
		return false, d.classify(models.ActionSaveRecord, ownerID, err)
	}
	return true, nil
}

func (d *DocumentStore) LoadRecords(ctx context.Context, ownerID string) ([]models.UtmRecord, error) {
	records, err := d.docs.FindRecords(ctx, ownerID, d.limit)
	if err != nil {
		return []models.UtmRecord{}, d.classify(models.ActionLoadRecords, ownerID, err)
	}

	reconcile.SortRecords(records)
	return records, nil
}
