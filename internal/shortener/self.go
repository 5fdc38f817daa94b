package shortener

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"sync"

	"github.com/atinyakov/utm-manager/internal/storage"
)

// ErrCodeNotFound is returned when a short code has never been issued.
var ErrCodeNotFound = errors.New("short code not found")

const base62 = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// DefaultCodeLength is the length of self-hosted short codes.
const DefaultCodeLength = 8

// Resolver issues deterministic short codes under a base URL and remembers
// them in the local cache so they can be redirected later.
type Resolver struct {
	mu       sync.Mutex
	cache    storage.Cache
	baseURL  string
	numChars int
}

func NewResolver(baseURL string, numChars int, cache storage.Cache) *Resolver {
	if numChars <= 0 {
		numChars = DefaultCodeLength
	}

	return &Resolver{
		cache:    cache,
		baseURL:  strings.TrimRight(baseURL, "/"),
		numChars: numChars,
	}
}

func (r *Resolver) ID() string { return "self" }

// Request always succeeds unless the mapping cannot be persisted.
func (r *Resolver) Request(_ context.Context, longURL string, _ Metadata) (Result, error) {
	code := r.LongToShort(longURL)

	r.mu.Lock()
	defer r.mu.Unlock()

	codes := r.load()
	if codes[code] != longURL {
		next := make(map[string]string, len(codes)+1)
		for k, v := range codes {
			next[k] = v
		}
		next[code] = longURL

		if err := r.cache.Set(storage.KeyShortCodes, next); err != nil {
			return Result{}, err
		}
	}

	return Result{ShortURL: r.baseURL + "/" + code, OriginalURL: longURL}, nil
}

// LongToShort returns the short code for a URL.
func (r *Resolver) LongToShort(longURL string) string {
	hash := sha256.Sum256([]byte(longURL))
	code := base16ToBase62(hex.EncodeToString(hash[:]))

	for len(code) < r.numChars {
		code = "0" + code
	}

	return code[:r.numChars]
}

// ShortToLong resolves a code issued by Request.
func (r *Resolver) ShortToLong(_ context.Context, code string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	long, ok := r.load()[code]
	if !ok {
		return "", ErrCodeNotFound
	}

	return long, nil
}

func (r *Resolver) load() map[string]string {
	var codes map[string]string
	if !r.cache.Get(storage.KeyShortCodes, &codes) || codes == nil {
		return map[string]string{}
	}
	return codes
}

// base16ToBase62 folds the leading 16 hex digits into a uint64 and renders it
// in base62.
func base16ToBase62(hexString string) string {
	var value uint64
	for _, char := range hexString[:16] {
		switch {
		case char >= '0' && char <= '9':
			value = value*16 + uint64(char-'0')
		case char >= 'a' && char <= 'f':
			value = value*16 + uint64(char-'a'+10)
		}
	}

	var sb []byte
	for value > 0 {
		sb = append([]byte{base62[value%62]}, sb...)
		value /= 62
	}

	return string(sb)
}
