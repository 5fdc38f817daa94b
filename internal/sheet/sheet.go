// Package sheet stores the two tabs served by the spreadsheet endpoint: one
// settings row per user and an append-only log of UTM records.
package sheet

import (
	"context"
	"time"

	"github.com/atinyakov/utm-manager/internal/models"
)

// Stats summarizes the stored tabs.
type Stats struct {
	Users   int `json:"users"`
	Records int `json:"records"`
}

// Sheet is the storage behind the envelope handler.
type Sheet interface {
	// SaveSettings writes the non-empty fields of s over the user's row.
	SaveSettings(ctx context.Context, userID string, s models.WireSettings) error

	// LoadSettings returns nil when the user has no row.
	LoadSettings(ctx context.Context, userID string) (*models.WireSettings, error)

	// AppendRecord appends r to the log. A timestamp already logged for the
	// user is ignored.
	AppendRecord(ctx context.Context, userID string, r models.UtmRecord) error

	// Records returns the user's records, latest appended first.
	Records(ctx context.Context, userID string) ([]models.UtmRecord, error)

	Stats(ctx context.Context) (Stats, error)
	PingContext(ctx context.Context) error
}

// mergeRow overlays the non-empty fields of in onto row. A missing
// lastUpdated is stamped with now.
func mergeRow(row, in models.WireSettings, now time.Time) models.WireSettings {
	if in.AIKey != "" {
		row.AIKey = in.AIKey
	}
	if in.SyncURL != "" {
		row.SyncURL = in.SyncURL
	}
	if in.Templates != "" && in.Templates != "[]" {
		row.Templates = in.Templates
	}
	if row.Templates == "" {
		row.Templates = "[]"
	}

	if _, err := time.Parse(time.RFC3339Nano, in.LastUpdated); err == nil {
		row.LastUpdated = in.LastUpdated
	} else {
		row.LastUpdated = now.UTC().Format(time.RFC3339Nano)
	}

	return row
}
