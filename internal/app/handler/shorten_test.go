package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atinyakov/utm-manager/internal/models"
	"github.com/atinyakov/utm-manager/internal/shortener"
	"github.com/atinyakov/utm-manager/internal/storage"
)

type stubProvider struct {
	id  string
	err error
}

func (s stubProvider) ID() string { return s.id }

func (s stubProvider) Request(_ context.Context, longURL string, _ shortener.Metadata) (shortener.Result, error) {
	if s.err != nil {
		return shortener.Result{}, s.err
	}
	return shortener.Result{ShortURL: "https://s.test/" + s.id}, nil
}

func TestShortenHandler_Shorten(t *testing.T) {
	chain := shortener.NewChain(zap.NewNop(), stubProvider{id: "p1", err: errors.New("down")}, stubProvider{id: "p2"})
	h := NewShorten(chain, nil, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/shorten", bytes.NewBufferString(`{"url":"https://example.com"}`))
	rec := httptest.NewRecorder()
	h.Shorten(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var got models.ShortenResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, models.ShortenResponse{ShortURL: "https://s.test/p2", Provider: "p2", OriginalURL: "https://example.com"}, got)
}

func TestShortenHandler_Exhausted(t *testing.T) {
	chain := shortener.NewChain(zap.NewNop(), stubProvider{id: "p1", err: errors.New("down")})
	h := NewShorten(chain, nil, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/shorten", bytes.NewBufferString(`{"url":"https://example.com"}`))
	rec := httptest.NewRecorder()
	h.Shorten(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestShortenHandler_EmptyURL(t *testing.T) {
	h := NewShorten(shortener.NewChain(zap.NewNop()), nil, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Shorten(rec, httptest.NewRequest(http.MethodPost, "/api/shorten", bytes.NewBufferString(`{"url":" "}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShortenHandler_Batch(t *testing.T) {
	h := NewShorten(shortener.NewChain(zap.NewNop(), stubProvider{id: "p"}), nil, zap.NewNop())

	body := `{"items":[{"url":"https://a"},{"url":"https://b"}]}`
	rec := httptest.NewRecorder()
	h.Batch(rec, httptest.NewRequest(http.MethodPost, "/api/shorten/batch", bytes.NewBufferString(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.BatchResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, 2, got.Total)
	assert.Equal(t, 2, got.SuccessCount)

	rec = httptest.NewRecorder()
	h.Batch(rec, httptest.NewRequest(http.MethodPost, "/api/shorten/batch", bytes.NewBufferString(`{"items":[]}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShortenHandler_Redirect(t *testing.T) {
	resolver := shortener.NewResolver("http://localhost:8080", 8, storage.NewMemoryCache())
	res, err := resolver.Request(context.Background(), "https://example.com/?utm_campaign=c", shortener.Metadata{})
	require.NoError(t, err)

	h := NewShorten(nil, resolver, zap.NewNop())
	r := chi.NewRouter()
	r.Get("/s/{code}", h.Redirect)

	code := resolver.LongToShort("https://example.com/?utm_campaign=c")
	assert.Equal(t, "http://localhost:8080/"+code, res.ShortURL)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/s/"+code, nil))
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "https://example.com/?utm_campaign=c", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/s/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPing(t *testing.T) {
	rec := httptest.NewRecorder()
	Ping(nil)(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	Ping(func(context.Context) error { return errors.New("db down") })(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
