// Package reconcile merges a local and a remote view of one owner's data.
// Everything here is pure: no I/O, no shared state, inputs are never
// modified.
package reconcile

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/atinyakov/utm-manager/internal/models"
)

// MergeRecords returns the union of local and remote deduplicated by
// timestamp, most recent first. Local records are kept verbatim; a remote
// record is only added when its timestamp is absent locally, so local wins
// every collision.
func MergeRecords(local, remote []models.UtmRecord) []models.UtmRecord {
	seen := make(map[string]struct{}, len(local)+len(remote))
	merged := make([]models.UtmRecord, 0, len(local)+len(remote))

	for _, r := range local {
		if _, dup := seen[r.Timestamp]; dup {
			continue
		}
		seen[r.Timestamp] = struct{}{}
		merged = append(merged, r)
	}

	for _, r := range remote {
		if _, dup := seen[r.Timestamp]; dup {
			continue
		}
		seen[r.Timestamp] = struct{}{}
		merged = append(merged, r)
	}

	SortRecords(merged)
	return merged
}

// SortRecords orders records descending by timestamp in place.
func SortRecords(records []models.UtmRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return Newer(records[i], records[j])
	})
}

// Newer reports whether a sorts before b. Timestamps that parse as RFC 3339
// compare as instants and come before unparseable ones; the rest compare as
// strings.
func Newer(a, b models.UtmRecord) bool {
	ta, okA := a.Time()
	tb, okB := b.Time()

	switch {
	case okA && okB:
		if !ta.Equal(tb) {
			return ta.After(tb)
		}
		return a.Timestamp > b.Timestamp
	case okA:
		return true
	case okB:
		return false
	default:
		return a.Timestamp > b.Timestamp
	}
}

// NewerThan returns the records created strictly after mark. Records whose
// timestamp does not parse are always included so they are never stranded.
func NewerThan(records []models.UtmRecord, mark time.Time) []models.UtmRecord {
	out := make([]models.UtmRecord, 0, len(records))
	for _, r := range records {
		t, ok := r.Time()
		if !ok || t.After(mark) {
			out = append(out, r)
		}
	}
	return out
}

// Missing returns the records of local whose timestamp does not occur in
// remote.
func Missing(local, remote []models.UtmRecord) []models.UtmRecord {
	have := make(map[string]struct{}, len(remote))
	for _, r := range remote {
		have[r.Timestamp] = struct{}{}
	}

	out := make([]models.UtmRecord, 0)
	for _, r := range local {
		if _, ok := have[r.Timestamp]; !ok {
			out = append(out, r)
		}
	}
	return out
}

// MergeSettings blends two settings objects field by field. Each field comes
// from the side with the more recent LastUpdated unless that side's value is
// empty, in which case the other side's value is used. The result carries the
// later of the two LastUpdated values. A nil side loses outright.
func MergeSettings(local, remote *models.UserSettings) models.UserSettings {
	switch {
	case local == nil && remote == nil:
		return models.UserSettings{}
	case local == nil:
		return clone(*remote)
	case remote == nil:
		return clone(*local)
	}

	newer, older := *local, *remote
	if remote.LastUpdated.After(local.LastUpdated) {
		newer, older = *remote, *local
	}

	out := models.UserSettings{
		AIKey:       pick(newer.AIKey, older.AIKey),
		SyncURL:     pick(newer.SyncURL, older.SyncURL),
		LastUpdated: newer.LastUpdated,
	}

	switch {
	case newer.HasTemplates():
		out.Templates = append(json.RawMessage(nil), newer.Templates...)
	case older.HasTemplates():
		out.Templates = append(json.RawMessage(nil), older.Templates...)
	}

	return out
}

func pick(preferred, fallback string) string {
	if preferred != "" {
		return preferred
	}
	return fallback
}

func clone(s models.UserSettings) models.UserSettings {
	if s.Templates != nil {
		s.Templates = append(json.RawMessage(nil), s.Templates...)
	}
	return s
}
