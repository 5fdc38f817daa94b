package shortener

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/utm-manager/internal/storage"
)

func TestPicSee_Request(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/links", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-API-KEY"))

		var body picSeeRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://example.com/?utm_source=x", body.URL)
		assert.Equal(t, defaultTitle, body.Title)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"picseeUrl":"https://pse.is/abc"}}`))
	}))
	defer srv.Close()

	p := NewPicSee("secret", srv.URL+"/v2", srv.Client())
	res, err := p.Request(context.Background(), "https://example.com/?utm_source=x", Metadata{})
	require.NoError(t, err)

	assert.Equal(t, "https://pse.is/abc", res.ShortURL)
	assert.Equal(t, "https://example.com/?utm_source=x", res.OriginalURL)
}

func TestPicSee_Failures(t *testing.T) {
	t.Run("no key", func(t *testing.T) {
		_, err := NewPicSee("", "", nil).Request(context.Background(), "https://example.com", Metadata{})
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("http error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		_, err := NewPicSee("k", srv.URL, srv.Client()).Request(context.Background(), "https://example.com", Metadata{})
		assert.EqualError(t, err, "HTTP 429")
	})

	t.Run("missing short url", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":{}}`))
		}))
		defer srv.Close()

		_, err := NewPicSee("k", srv.URL, srv.Client()).Request(context.Background(), "https://example.com", Metadata{})
		assert.Error(t, err)
	})
}

func TestTinyURL_Request(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://example.com/?a=1&b=2", r.URL.Query().Get("url"))
		_, _ = w.Write([]byte("https://tinyurl.com/xyz\n"))
	}))
	defer srv.Close()

	res, err := NewTinyURL(srv.URL, srv.Client()).Request(context.Background(), "https://example.com/?a=1&b=2", Metadata{})
	require.NoError(t, err)
	assert.Equal(t, "https://tinyurl.com/xyz", res.ShortURL)
}

func TestTinyURL_InvalidBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Error"))
	}))
	defer srv.Close()

	_, err := NewTinyURL(srv.URL, srv.Client()).Request(context.Background(), "https://example.com", Metadata{})
	assert.EqualError(t, err, "invalid tinyurl response")
}

func TestResolver(t *testing.T) {
	cache := storage.NewMemoryCache()
	r := NewResolver("http://localhost:8080/", 8, cache)

	res, err := r.Request(context.Background(), "https://example.com/a", Metadata{})
	require.NoError(t, err)

	code := r.LongToShort("https://example.com/a")
	assert.Len(t, code, 8)
	assert.Equal(t, "http://localhost:8080/"+code, res.ShortURL)

	again, err := r.Request(context.Background(), "https://example.com/a", Metadata{})
	require.NoError(t, err)
	assert.Equal(t, res.ShortURL, again.ShortURL)

	long, err := r.ShortToLong(context.Background(), code)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", long)

	_, err = r.ShortToLong(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCodeNotFound)

	assert.NotEqual(t, code, r.LongToShort("https://example.com/b"))
}
