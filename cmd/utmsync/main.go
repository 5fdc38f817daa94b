package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/atinyakov/utm-manager/internal/config"
	"github.com/atinyakov/utm-manager/internal/logger"

	_ "net/http/pprof"
)

var buildVersion string
var buildDate string
var buildCommit string

func main() {
	options := config.Parse()

	fmt.Printf("Build version: %s\n", orNA(buildVersion))
	fmt.Printf("Build date: %s\n", orNA(buildDate))
	fmt.Printf("Build commit: %s\n", orNA(buildCommit))

	log := logger.New()
	if err := log.InitFile(options.LogLevel, options.LogFile); err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Close()
	}()
	zapLogger := log.Log

	if err := run(options, zapLogger); err != nil {
		zapLogger.Fatal("utmsync stopped", zap.Error(err))
	}
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

func run(options *config.Options, zapLogger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	a, err := newApp(options, zapLogger)
	if err != nil {
		return err
	}
	defer a.Close()

	if options.EnablePprof {
		go func() {
			zapLogger.Info("Starting pprof server", zap.String("addr", "localhost:6060"))
			if err := http.ListenAndServe("localhost:6060", nil); err != nil {
				zapLogger.Error("pprof server error", zap.Error(err))
			}
		}()
	}

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		a.worker.Run(ctx)
	}()
	go autoSync(ctx, a.syncer, a.deviceID, options.AutoSyncInterval)

	if a.grpc != nil {
		go func() {
			if err := a.grpc.Start(); err != nil {
				zapLogger.Error("gRPC server error", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:    options.Addr,
		Handler: a.router,
	}

	errCh := make(chan error, 1)
	go func() {
		if options.EnableHTTPS {
			manager := &autocert.Manager{
				Cache:      autocert.DirCache("cache-dir"),
				Prompt:     autocert.AcceptTOS,
				HostPolicy: autocert.HostWhitelist(options.TLSHosts...),
			}
			srv.Addr = ":443"
			srv.TLSConfig = manager.TLSConfig()
			zapLogger.Info("Server is running with TLS", zap.Strings("hosts", options.TLSHosts))
			errCh <- srv.ListenAndServeTLS("", "")
			return
		}
		zapLogger.Info("Server is running", zap.String("addr", options.Addr), zap.String("device", a.deviceID))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			stop()
			<-workerDone
			return err
		}
	case <-ctx.Done():
	}

	zapLogger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.grpc != nil {
		a.grpc.GracefulStop()
	}
	err = srv.Shutdown(shutdownCtx)
	<-workerDone
	return err
}
