package metrics_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/utm-manager/internal/metrics"
	"github.com/atinyakov/utm-manager/internal/models"
)

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics_Observers(t *testing.T) {
	m := metrics.New()

	m.ObserveSync("full", nil)
	m.ObserveSync("auto", errors.New("boom"))
	m.ObservePush(models.PushSucceeded)
	m.ObservePush(models.PushUnconfirmed)
	m.ObserveShortener("picsee", false)
	m.ObserveShortener("tinyurl", true)

	out := scrape(t, m)
	assert.Contains(t, out, `utm_sync_passes_total{kind="full",outcome="ok"} 1`)
	assert.Contains(t, out, `utm_sync_passes_total{kind="auto",outcome="error"} 1`)
	assert.Contains(t, out, `utm_record_pushes_total{result="success"} 1`)
	assert.Contains(t, out, `utm_record_pushes_total{result="success-unconfirmed"} 1`)
	assert.Contains(t, out, `utm_shortener_attempts_total{outcome="error",provider="picsee"} 1`)
	assert.Contains(t, out, `utm_shortener_attempts_total{outcome="ok",provider="tinyurl"} 1`)
	assert.Contains(t, out, "go_goroutines")
}

func TestMetrics_Middleware(t *testing.T) {
	m := metrics.New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/s/{code}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/s/abc", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	out := scrape(t, m)
	assert.Contains(t, out, `utm_http_requests_total{method="GET",route="/s/{code}",status="404"} 1`)
	assert.Contains(t, out, `utm_http_request_duration_seconds_count{route="/s/{code}"} 1`)
}
