package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/utm-manager/internal/app/handler"
	"github.com/atinyakov/utm-manager/internal/app/server"
	"github.com/atinyakov/utm-manager/internal/app/server/grpc"
	"github.com/atinyakov/utm-manager/internal/app/service"
	"github.com/atinyakov/utm-manager/internal/config"
	"github.com/atinyakov/utm-manager/internal/metrics"
	"github.com/atinyakov/utm-manager/internal/models"
	"github.com/atinyakov/utm-manager/internal/remote"
	"github.com/atinyakov/utm-manager/internal/repository"
	"github.com/atinyakov/utm-manager/internal/shortener"
	"github.com/atinyakov/utm-manager/internal/storage"
	"github.com/atinyakov/utm-manager/internal/worker"
)

const httpTimeout = 30 * time.Second

// app is the wired sync daemon.
type app struct {
	router   *chi.Mux
	grpc     *grpc.Server
	syncer   *service.SyncService
	worker   *worker.PushTaskWorker
	deviceID string
	closers  []io.Closer
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	return errors.Join(errs...)
}

// openCache picks the local cache: a sqlite/libsql DSN, a JSON file, or memory.
func openCache(opts *config.Options, logger *zap.Logger) (storage.Cache, io.Closer, error) {
	switch {
	case opts.CacheDSN != "":
		logger.Info("using sql cache", zap.String("driver", storage.DriverFor(opts.CacheDSN)))
		c, err := storage.OpenSQLCache(opts.CacheDSN, logger)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil
	case opts.FilePath != "":
		logger.Info("using file cache", zap.String("filePath", opts.FilePath))
		c, err := storage.NewFileCache(opts.FilePath, logger)
		return c, nil, err
	default:
		logger.Info("using in memory cache")
		return storage.NewMemoryCache(), nil, nil
	}
}

// remoteSource chooses the remote store. The document store is shared by all
// owners; the spreadsheet endpoint comes from the owner's settings, falling
// back to the configured sheet URL.
func remoteSource(opts *config.Options, docs remote.Store, client *http.Client, logger *zap.Logger) service.RemoteSource {
	return service.RemoteSourceFunc(func(s models.UserSettings) (remote.Store, bool) {
		if opts.RemoteKind == config.RemoteDocument {
			return docs, docs != nil
		}

		endpoint := s.SyncURL
		if endpoint == "" {
			endpoint = opts.SheetURL
		}
		if endpoint == "" {
			return nil, false
		}
		return remote.NewSpreadsheetStore(endpoint, client, logger), true
	})
}

// providers builds the shortener chain in priority order: PicSee when a key
// is configured, TinyURL, then the self-hosted resolver.
func providers(opts *config.Options, client *http.Client, resolver *shortener.Resolver) []shortener.Provider {
	var ps []shortener.Provider
	if opts.PicSeeKey != "" {
		ps = append(ps, shortener.NewPicSee(opts.PicSeeKey, "", client))
	}
	if opts.TinyURLEndpoint != "" {
		ps = append(ps, shortener.NewTinyURL(opts.TinyURLEndpoint, client))
	}
	return append(ps, resolver)
}

func newApp(opts *config.Options, logger *zap.Logger) (*app, error) {
	a := &app{}

	cache, closer, err := openCache(opts, logger)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	if a.deviceID, err = storage.DeviceID(cache); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("device id: %w", err)
	}

	client := &http.Client{Timeout: httpTimeout}
	m := metrics.New()

	var (
		docs remote.Store
		db   *sql.DB
	)
	if opts.RemoteKind == config.RemoteDocument {
		logger.Info("using document store")
		if db, err = repository.InitDB(opts.DatabaseDSN, logger); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("init document db: %w", err)
		}
		a.closers = append(a.closers, db)
		docs = remote.NewDocumentStore(repository.CreateDocumentRepository(db, logger), remote.DefaultDocumentLimit, logger)
	}

	local := service.NewLocal(cache)
	remotes := remoteSource(opts, docs, client, logger)
	a.syncer = service.NewSyncService(local, remotes, logger, opts.PushDelay).WithObserver(m)

	resolver := shortener.NewResolver(opts.BaseURL, shortener.DefaultCodeLength, cache)
	chain := shortener.NewChain(logger, providers(opts, client, resolver)...).WithObserver(m)

	a.worker = worker.NewPushTaskWorker(logger, a.syncer, opts.PushDelay).WithObserver(m)
	records := service.NewRecordService(local, chain, a.worker.GetInChannel(), logger)
	auth := service.NewAuth(opts.JWTSecret)
	deviceID := a.deviceID

	ping := func(ctx context.Context) error {
		if db != nil {
			return db.PingContext(ctx)
		}
		settings, _ := local.Settings(deviceID)
		if store, ok := remotes.Remote(settings); ok {
			if p, ok := store.(interface{ Ping(context.Context) error }); ok {
				return p.Ping(ctx)
			}
		}
		return nil
	}

	a.router = server.InitLocal(server.Local{
		Records:  records,
		Syncer:   a.syncer,
		Chain:    chain,
		Resolver: resolver,
		Auth:     auth,
		DeviceID: func() string { return deviceID },
		Ping:     handler.Pinger(ping),
		Metrics:  m,
		Logger:   logger,
	})

	if opts.GRPCPort > 0 {
		a.grpc = grpc.New(grpc.Deps{
			Syncer:        a.syncer,
			Records:       records,
			Chain:         chain,
			Auth:          auth,
			DeviceID:      func() string { return deviceID },
			TrustedSubnet: opts.TrustedSubnet,
		}, logger, opts.GRPCPort)
	}

	return a, nil
}

// autoSync runs an auto-sync for the device owner every interval until ctx
// is done. A zero interval disables it.
func autoSync(ctx context.Context, s service.Syncer, owner string, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.AutoSync(ctx, owner)
		}
	}
}
