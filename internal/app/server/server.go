// Package server wires handlers and middleware into chi routers.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/utm-manager/internal/app/handler"
	"github.com/atinyakov/utm-manager/internal/app/service"
	"github.com/atinyakov/utm-manager/internal/metrics"
	"github.com/atinyakov/utm-manager/internal/middleware"
)

// Local holds the dependencies of the local sync API.
type Local struct {
	Records  service.Recorder
	Syncer   service.Syncer
	Chain    handler.Shortener
	Resolver handler.Resolver
	Auth     service.AuthIface
	DeviceID func() string
	Ping     handler.Pinger
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

// InitLocal builds the router of the local sync API.
func InitLocal(d Local) *chi.Mux {
	records := handler.NewRecord(d.Records, d.Logger)
	sync := handler.NewSync(d.Syncer, d.Logger)
	shorten := handler.NewShorten(d.Chain, d.Resolver, d.Logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.WithRequestLogging(d.Logger))
	r.Use(chimw.Recoverer)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Get("/ping", handler.Ping(d.Ping))
	if d.Resolver != nil {
		r.Get("/s/{code}", shorten.Redirect)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.WithGzip)
		r.Use(middleware.WithJWT(d.Auth, d.DeviceID))

		r.Get("/records", records.List)
		r.Post("/records", records.Create)

		r.Get("/settings", records.Settings)
		r.Put("/settings", records.SaveSettings)

		r.Get("/sync", sync.State)
		r.Post("/sync", sync.Full)
		r.Post("/sync/auto", sync.Auto)
		r.Delete("/session", sync.Reset)

		r.Post("/shorten", shorten.Shorten)
		r.Post("/shorten/batch", shorten.Batch)
	})

	notFoundAndMethod(r)
	return r
}

// InitSheet builds the router of the spreadsheet endpoint server. Stats
// are only served to the trusted subnet.
func InitSheet(h *handler.SheetHandler, ping handler.Pinger, trustedSubnet string, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.WithGzip)

	r.Get("/exec", h.Banner)
	r.Post("/exec", h.Exec)
	r.Get("/ping", handler.Ping(ping))

	r.With(middleware.WithSubnet(trustedSubnet)).Get("/api/internal/stats", h.Stats)

	notFoundAndMethod(r)
	return r
}

func notFoundAndMethod(r *chi.Mux) {
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Route not found", http.StatusNotFound)
	})
}
