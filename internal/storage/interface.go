// Package storage implements the device-local cache the sync core treats as
// ground truth while offline. Values are structured data; decoding failures
// on read are reported as absent, never returned as errors.
package storage

// Cache is the LocalCache contract. Keys are owner-agnostic; namespacing per
// owner is done by wrapping a Cache with ForOwner.
type Cache interface {
	// Get decodes the value stored under key into dst. It reports false when
	// the key is absent or the stored value cannot be decoded into dst.
	Get(key string, dst any) bool

	// Set encodes value and stores it under key, replacing any previous value.
	Set(key string, value any) error

	// Remove deletes key. Removing an absent key is a no-op.
	Remove(key string)
}

// Logical keys used by the sync core.
const (
	KeyRecords   = "utm_records"
	KeySettings  = "user_settings"
	KeyWatermark = "last_sync_time"
	KeyShortURLs = "short_urls"
	KeyDeviceID  = "device_id"

	// KeyShortCodes holds the device-wide table of self-hosted short codes.
	KeyShortCodes = "short_codes"
)
