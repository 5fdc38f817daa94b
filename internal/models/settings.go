package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// UserSettings is the per-owner configuration. Templates is opaque to the
// sync core and carried as raw JSON.
type UserSettings struct {
	AIKey       string          `json:"aiKey"`
	SyncURL     string          `json:"syncUrl"`
	Templates   json.RawMessage `json:"templates,omitempty"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// HasTemplates reports whether Templates holds anything besides null or an
// empty array.
func (s UserSettings) HasTemplates() bool {
	t := bytes.TrimSpace(s.Templates)
	if len(t) == 0 || bytes.Equal(t, []byte("null")) {
		return false
	}

	var arr []json.RawMessage
	if err := json.Unmarshal(t, &arr); err == nil {
		return len(arr) > 0
	}

	return true
}

// IsZero reports whether every field is empty.
func (s UserSettings) IsZero() bool {
	return s.AIKey == "" && s.SyncURL == "" && !s.HasTemplates() && s.LastUpdated.IsZero()
}

// Overlay returns s with every non-empty field of update written over it and
// LastUpdated set to at. Empty fields in update never erase values in s.
func (s UserSettings) Overlay(update UserSettings, at time.Time) UserSettings {
	out := s
	if update.AIKey != "" {
		out.AIKey = update.AIKey
	}
	if update.SyncURL != "" {
		out.SyncURL = update.SyncURL
	}
	if update.HasTemplates() {
		out.Templates = append(json.RawMessage(nil), update.Templates...)
	}
	out.LastUpdated = at
	return out
}
