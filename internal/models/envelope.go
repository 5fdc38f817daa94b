package models

import "encoding/json"

// Actions understood by a remote store endpoint.
const (
	ActionSaveSettings = "saveSettings"
	ActionLoadSettings = "loadSettings"
	ActionSaveRecord   = "saveRecord"
	ActionLoadRecords  = "loadRecords"
)

// Envelope results.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Envelope is the response shape every remote store endpoint answers with.
type Envelope struct {
	Result string          `json:"result"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// WireSettings is the boundary shape of UserSettings: templates travel as a
// JSON-encoded string and lastUpdated as an ISO-8601 string.
type WireSettings struct {
	AIKey       string `json:"aiKey"`
	SyncURL     string `json:"syncUrl"`
	Templates   string `json:"templates"`
	LastUpdated string `json:"lastUpdated"`
}
