// Package models defines the records, settings and request/response
// structures shared by the sync core, the remote stores and the HTTP and
// gRPC surfaces.
package models

import "encoding/json"

// ShortenRequest asks for a short form of a long URL.
type ShortenRequest struct {
	// URL is the long URL to be shortened.
	URL string `json:"url"`

	// Title and Description are passed to providers that accept metadata.
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// ShortenResponse carries the short URL and the provider that produced it.
type ShortenResponse struct {
	ShortURL    string `json:"shortUrl"`
	Provider    string `json:"provider"`
	OriginalURL string `json:"originalUrl"`
}

// ShortenBatchRequest asks for short forms of several URLs.
type ShortenBatchRequest struct {
	Items []ShortenRequest `json:"items"`
}

// ErrorResponse is the single actionable message reported to the user.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SettingsRequest is a partial settings update; empty fields are ignored.
type SettingsRequest struct {
	AIKey     string          `json:"aiKey"`
	SyncURL   string          `json:"syncUrl"`
	Templates json.RawMessage `json:"templates,omitempty"`
}
