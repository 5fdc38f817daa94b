// Package remote defines the RemoteStore contract and its two variants: a
// spreadsheet-backed HTTP endpoint and a document collection. Both honor the
// same observable contract so reconciliation stays transport-agnostic.
package remote

import (
	"context"
	"errors"

	"github.com/atinyakov/utm-manager/internal/models"
)

var (
	// ErrRemoteUnavailable wraps every transport-level failure: DNS,
	// timeouts, refused connections, non-2xx responses.
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// ErrMalformedResponse classifies replies that do not match the
	// envelope. Stores log it and degrade to failure/absent.
	ErrMalformedResponse = errors.New("malformed remote response")
)

// Store is the RemoteStore contract. Business failures are reported through
// the boolean / nil results; only transport failures return an error, and
// that error wraps ErrRemoteUnavailable.
type Store interface {
	SaveSettings(ctx context.Context, ownerID string, settings models.UserSettings) (bool, error)

	// LoadSettings returns nil when the owner has no settings.
	LoadSettings(ctx context.Context, ownerID string) (*models.UserSettings, error)

	SaveRecord(ctx context.Context, ownerID string, record models.UtmRecord) (bool, error)

	// LoadRecords returns the owner's records most recent first.
	LoadRecords(ctx context.Context, ownerID string) ([]models.UtmRecord, error)
}

// Pusher is implemented by stores that support fire-and-forget writes.
type Pusher interface {
	PushRecord(ctx context.Context, ownerID string, record models.UtmRecord) models.PushResult
}

// unavailable wraps err so that errors.Is(err, ErrRemoteUnavailable) holds.
func unavailable(op string, err error) error {
	return &UnavailableError{Op: op, Err: err}
}

// UnavailableError carries the operation and cause of a transport failure.
// Status is the HTTP status when the remote answered with a non-2xx code.
type UnavailableError struct {
	Op     string
	Status int
	Err    error
}

func (e *UnavailableError) Error() string {
	return e.Op + ": " + ErrRemoteUnavailable.Error() + ": " + e.Err.Error()
}

func (e *UnavailableError) Unwrap() []error {
	return []error{ErrRemoteUnavailable, e.Err}
}

// Push performs a single fire-and-forget write through s. Stores that do not
// implement Pusher are written with SaveRecord; a transport error then means
// the write did not land and is returned alongside PushFailed.
func Push(ctx context.Context, s Store, ownerID string, record models.UtmRecord) (models.PushResult, error) {
	if p, ok := s.(Pusher); ok {
		return p.PushRecord(ctx, ownerID, record), nil
	}

	ok, err := s.SaveRecord(ctx, ownerID, record)
	switch {
	case err != nil:
		return models.PushFailed, err
	case ok:
		return models.PushSucceeded, nil
	default:
		return models.PushFailed, nil
	}
}
