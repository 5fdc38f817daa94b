package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/utm-manager/internal/models"
	"github.com/atinyakov/utm-manager/internal/shortener"
)

// BatchDelay spaces out shortening calls of one batch request.
const BatchDelay = 200 * time.Millisecond

const maxBatchItems = 100

// Shortener is the provider chain as seen by the handlers.
type Shortener interface {
	Shorten(ctx context.Context, longURL string, meta shortener.Metadata) (shortener.Result, error)
	ShortenBatch(ctx context.Context, items []models.ShortenRequest, delay time.Duration) models.BatchResult
}

// Resolver maps self-hosted short codes back to long URLs.
type Resolver interface {
	ShortToLong(ctx context.Context, code string) (string, error)
}

type ShortenHandler struct {
	chain    Shortener
	resolver Resolver
	logger   *zap.Logger
}

func NewShorten(chain Shortener, resolver Resolver, l *zap.Logger) *ShortenHandler {
	return &ShortenHandler{
		chain:    chain,
		resolver: resolver,
		logger:   l,
	}
}

func (h *ShortenHandler) Shorten(w http.ResponseWriter, r *http.Request) {
	var req models.ShortenRequest
	if !decodeOrFail(w, r, &req, h.logger) {
		return
	}

	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	res, err := h.chain.Shorten(r.Context(), req.URL, shortener.Metadata{Title: req.Title, Description: req.Description})
	if err != nil {
		if errors.Is(err, shortener.ErrAllProvidersExhausted) {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		h.logger.Error("shorten", zap.Error(err))
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	writeJSON(w, http.StatusCreated, models.ShortenResponse{
		ShortURL:    res.ShortURL,
		Provider:    res.Provider,
		OriginalURL: res.OriginalURL,
	})
}

func (h *ShortenHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req models.ShortenBatchRequest
	if !decodeOrFail(w, r, &req, h.logger) {
		return
	}

	if len(req.Items) == 0 || len(req.Items) > maxBatchItems {
		writeError(w, http.StatusBadRequest, "items must hold between 1 and 100 entries")
		return
	}

	writeJSON(w, http.StatusOK, h.chain.ShortenBatch(r.Context(), req.Items, BatchDelay))
}

// Redirect answers a self-hosted short code with a temporary redirect.
func (h *ShortenHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	long, err := h.resolver.ShortToLong(r.Context(), code)
	if err != nil {
		http.Error(w, "URL not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Location", long)
	w.WriteHeader(http.StatusTemporaryRedirect)
}
