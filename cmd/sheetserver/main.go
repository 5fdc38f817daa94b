// Command sheetserver serves the spreadsheet endpoint envelope protocol over
// an in-memory, sqlite or libsql backed log.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/atinyakov/utm-manager/internal/app/handler"
	"github.com/atinyakov/utm-manager/internal/app/server"
	"github.com/atinyakov/utm-manager/internal/logger"
	"github.com/atinyakov/utm-manager/internal/sheet"
)

type options struct {
	addr          string
	dsn           string
	trustedSubnet string
	logLevel      string
	logFile       string
}

func parse(args []string) (*options, error) {
	_ = godotenv.Load()

	o := &options{}
	fs := flag.NewFlagSet("sheetserver", flag.ContinueOnError)
	fs.StringVar(&o.addr, "a", "localhost:8090", "run on ip:port server")
	fs.StringVar(&o.dsn, "d", "", "sqlite or libsql dsn, empty keeps the sheet in memory")
	fs.StringVar(&o.trustedSubnet, "t", "", "trusted subnet CIDR for stats")
	fs.StringVar(&o.logLevel, "l", "info", "log level")
	fs.StringVar(&o.logFile, "log-file", "", "rotate logs into this file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	for key, dst := range map[string]*string{
		"SHEET_ADDRESS":  &o.addr,
		"SHEET_DSN":      &o.dsn,
		"TRUSTED_SUBNET": &o.trustedSubnet,
		"LOG_LEVEL":      &o.logLevel,
		"LOG_FILE":       &o.logFile,
	} {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	return o, nil
}

// mustParse is parse that exits on invalid flags.
func mustParse(args []string) *options {
	opts, err := parse(args)
	if err != nil {
		os.Exit(2)
	}
	return opts
}

// openSheet returns the backing sheet and a close function.
func openSheet(ctx context.Context, dsn string, l *zap.Logger) (sheet.Sheet, func() error, error) {
	if dsn == "" {
		l.Info("using in memory sheet")
		return sheet.NewMemorySheet(), func() error { return nil }, nil
	}

	s, err := sheet.OpenSQLSheet(ctx, dsn, l)
	if err != nil {
		return nil, nil, err
	}
	l.Info("using sql sheet")
	return s, s.Close, nil
}

func main() {
	opts := mustParse(os.Args[1:])

	log := logger.New()
	if err := log.InitFile(opts.logLevel, opts.logFile); err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Close()
	}()
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sh, closeSheet, err := openSheet(ctx, opts.dsn, zapLogger)
	if err != nil {
		zapLogger.Fatal("open sheet", zap.Error(err))
	}
	defer func() {
		_ = closeSheet()
	}()

	srv := &http.Server{
		Addr:    opts.addr,
		Handler: server.InitSheet(handler.NewSheet(sh, zapLogger), sh.PingContext, opts.trustedSubnet, zapLogger),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	zapLogger.Info("Sheet endpoint is running", zap.String("addr", opts.addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zapLogger.Error("server error", zap.Error(err))
	}
}
