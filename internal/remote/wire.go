package remote

import (
	"encoding/json"
	"time"

	"github.com/atinyakov/utm-manager/internal/models"
)

// SettingsToWire converts settings to the boundary shape. Missing templates
// travel as "[]".
func SettingsToWire(s models.UserSettings) models.WireSettings {
	w := models.WireSettings{
		AIKey:     s.AIKey,
		SyncURL:   s.SyncURL,
		Templates: "[]",
	}

	if len(s.Templates) > 0 {
		w.Templates = string(s.Templates)
	}

	if !s.LastUpdated.IsZero() {
		w.LastUpdated = s.LastUpdated.UTC().Format(time.RFC3339Nano)
	}

	return w
}

// SettingsFromWire converts the boundary shape back. An unparseable
// lastUpdated becomes the zero time and invalid templates are dropped.
func SettingsFromWire(w models.WireSettings) models.UserSettings {
	s := models.UserSettings{
		AIKey:   w.AIKey,
		SyncURL: w.SyncURL,
	}

	if w.Templates != "" && json.Valid([]byte(w.Templates)) {
		s.Templates = json.RawMessage(w.Templates)
	}

	if t, err := time.Parse(time.RFC3339Nano, w.LastUpdated); err == nil {
		s.LastUpdated = t
	}

	return s
}
