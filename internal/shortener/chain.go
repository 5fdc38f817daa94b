// Package shortener turns long UTM links into short ones through an ordered
// chain of providers, falling back to the next provider on failure.
package shortener

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/utm-manager/internal/models"
	"github.com/atinyakov/utm-manager/internal/remote"
)

// ErrAllProvidersExhausted matches every *AllProvidersExhaustedError.
var ErrAllProvidersExhausted = errors.New("all shortener providers failed")

var errNoProviders = errors.New("no providers configured")

// Metadata is passed to providers that accept a title and description.
type Metadata struct {
	Title       string
	Description string
}

// Result is a successful shortening.
type Result struct {
	ShortURL    string
	Provider    string
	OriginalURL string
}

// Provider shortens one URL. Errors are opaque to the chain.
type Provider interface {
	ID() string
	Request(ctx context.Context, longURL string, meta Metadata) (Result, error)
}

// Observer is notified about every provider attempt.
type Observer interface {
	ObserveShortener(provider string, ok bool)
}

// AllProvidersExhaustedError is returned when every provider failed. Last
// is the error of the final provider tried.
type AllProvidersExhaustedError struct {
	Attempts int
	Last     error
}

func (e *AllProvidersExhaustedError) Error() string {
	return fmt.Sprintf("%s after %d attempts: %v", ErrAllProvidersExhausted, e.Attempts, e.Last)
}

func (e *AllProvidersExhaustedError) Is(target error) bool {
	return target == ErrAllProvidersExhausted
}

func (e *AllProvidersExhaustedError) Unwrap() error {
	return e.Last
}

// Chain tries providers in a fixed priority order.
type Chain struct {
	providers []Provider
	logger    *zap.Logger
	observer  Observer
}

// NewChain creates a chain trying providers in the given order.
func NewChain(logger *zap.Logger, providers ...Provider) *Chain {
	return &Chain{
		providers: providers,
		logger:    logger,
	}
}

// WithObserver sets the attempt observer and returns the chain.
func (c *Chain) WithObserver(o Observer) *Chain {
	c.observer = o
	return c
}

// Providers returns the provider ids in priority order.
func (c *Chain) Providers() []string {
	ids := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		ids = append(ids, p.ID())
	}
	return ids
}

// Shorten returns the first provider success. Each provider is tried at most
// once; failures are logged and the next provider is tried.
func (c *Chain) Shorten(ctx context.Context, longURL string, meta Metadata) (Result, error) {
	last := errNoProviders

	for i, p := range c.providers {
		if err := ctx.Err(); err != nil {
			return Result{}, &AllProvidersExhaustedError{Attempts: i, Last: err}
		}

		res, err := p.Request(ctx, longURL, meta)
		c.observe(p.ID(), err == nil)

		if err == nil {
			res.Provider = p.ID()
			if res.OriginalURL == "" {
				res.OriginalURL = longURL
			}
			return res, nil
		}

		c.logger.Warn("shortener provider failed, trying next",
			zap.String("provider", p.ID()),
			zap.String("url", longURL),
			zap.Error(err),
		)
		last = err
	}

	return Result{}, &AllProvidersExhaustedError{Attempts: len(c.providers), Last: last}
}

// ShortenBatch shortens items one by one, waiting delay between calls. Each
// result holds the short URL on success. Items left when ctx is done are
// reported as errors without being sent.
func (c *Chain) ShortenBatch(ctx context.Context, items []models.ShortenRequest, delay time.Duration) models.BatchResult {
	res := models.BatchResult{
		Total:   len(items),
		Results: make([]models.BatchItem, 0, len(items)),
	}

	for i, item := range items {
		err := ctx.Err()
		if err == nil && i > 0 {
			err = remote.SleepWithContext(ctx, delay)
		}
		if err != nil {
			for j := i; j < len(items); j++ {
				res.ErrorCount++
				res.Results = append(res.Results, models.BatchItem{Index: j, Error: err.Error()})
			}
			return res
		}

		r, err := c.Shorten(ctx, item.URL, Metadata{Title: item.Title, Description: item.Description})
		if err != nil {
			res.ErrorCount++
			res.Results = append(res.Results, models.BatchItem{Index: i, Error: err.Error()})
			continue
		}

		res.SuccessCount++
		res.Results = append(res.Results, models.BatchItem{Index: i, Result: r.ShortURL})
	}

	return res
}

func (c *Chain) observe(provider string, ok bool) {
	if c.observer != nil {
		c.observer.ObserveShortener(provider, ok)
	}
}
