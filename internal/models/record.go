package models

import (
	"strings"
	"time"
)

// UtmRecord is one generated link event. Timestamp is the identity key:
// two records with the same timestamp are the same record.
type UtmRecord struct {
	// OwnerID is the opaque user or device identifier the record belongs to.
	OwnerID string `json:"ownerId,omitempty"`

	// Timestamp is the ISO-8601 creation time of the record.
	Timestamp string `json:"timestamp"`

	WebsiteURL  string `json:"websiteUrl"`
	FinalURL    string `json:"finalUrl"`
	UtmSource   string `json:"utmSource"`
	UtmMedium   string `json:"utmMedium"`
	UtmCampaign string `json:"utmCampaign"`
	UtmTerm     string `json:"utmTerm"`
	UtmContent  string `json:"utmContent"`

	// ShortURL is populated by the shortener chain, if it succeeded.
	ShortURL string `json:"shortUrl,omitempty"`
}

// Time parses the record timestamp. ok is false for timestamps that are
// not RFC 3339.
func (r UtmRecord) Time() (t time.Time, ok bool) {
	t, err := time.Parse(time.RFC3339Nano, r.Timestamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// RecordInput is what the form layer submits to create a record.
type RecordInput struct {
	WebsiteURL  string `json:"websiteUrl" validate:"required"`
	UtmSource   string `json:"utmSource"`
	UtmMedium   string `json:"utmMedium"`
	UtmCampaign string `json:"utmCampaign" validate:"required"`
	UtmTerm     string `json:"utmTerm"`
	UtmContent  string `json:"utmContent"`

	// Shorten requests a short URL for the generated link.
	Shorten bool `json:"shorten"`
}

// Trimmed returns in with surrounding whitespace removed from every field.
func (in RecordInput) Trimmed() RecordInput {
	in.WebsiteURL = strings.TrimSpace(in.WebsiteURL)
	in.UtmSource = strings.TrimSpace(in.UtmSource)
	in.UtmMedium = strings.TrimSpace(in.UtmMedium)
	in.UtmCampaign = strings.TrimSpace(in.UtmCampaign)
	in.UtmTerm = strings.TrimSpace(in.UtmTerm)
	in.UtmContent = strings.TrimSpace(in.UtmContent)
	return in
}
