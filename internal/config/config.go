// Package config provides functionality for managing configuration options
// for the application using command-line flags, environment variables, an
// optional .env file and an optional JSON config file.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Remote backend kinds.
const (
	RemoteNone     = ""
	RemoteSheet    = "sheet"
	RemoteDocument = "document"
)

// Options holds the configuration values for the application.
type Options struct {
	// Addr defines the local API listening address (ip:port).
	Addr string `json:"server_address"`

	// BaseURL is the base URL used for self-hosted short links.
	BaseURL string `json:"base_url"`

	// GRPCPort is the port of the gRPC sync service. Zero disables it.
	GRPCPort int `json:"grpc_port"`

	// RemoteKind selects the remote backend: "sheet", "document" or empty.
	RemoteKind string `json:"remote_kind"`

	// SheetURL is the spreadsheet endpoint (POST envelope, GET banner).
	SheetURL string `json:"sheet_url"`

	// DatabaseDSN holds the Postgres connection string for the document store.
	DatabaseDSN string `json:"database_dsn"`

	// FilePath is the path to the local cache file.
	FilePath string `json:"file_storage_path"`

	// CacheDSN is a sqlite or libsql DSN for the local cache. It takes
	// precedence over FilePath.
	CacheDSN string `json:"cache_dsn"`

	PicSeeKey       string `json:"picsee_api_key"`
	TinyURLEndpoint string `json:"tinyurl_endpoint"`

	// AutoSyncInterval is how often the device owner is auto-synced. Zero disables it.
	AutoSyncInterval time.Duration `json:"auto_sync_interval"`

	// PushDelay spaces consecutive record pushes.
	PushDelay time.Duration `json:"push_delay"`

	JWTSecret string `json:"jwt_secret"`

	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	// EnablePprof indicates whether to enable pprof for performance profiling.
	EnablePprof bool `json:"enable_pprof"`

	// EnableHTTPS indicates whether to enable https.
	EnableHTTPS bool     `json:"enable_https"`
	TLSHosts    []string `json:"tls_hosts"`

	// TrustedSubnet is the CIDR allowed to call internal endpoints.
	TrustedSubnet string `json:"trusted_subnet"`

	// Config is the path to a JSON config file.
	Config string `json:"-"`
}

// Default returns the options used when nothing else is configured.
func Default() Options {
	return Options{
		Addr:             "localhost:8080",
		BaseURL:          "http://localhost:8080",
		TinyURLEndpoint:  "https://tinyurl.com/api-create.php",
		AutoSyncInterval: 5 * time.Minute,
		PushDelay:        100 * time.Millisecond,
		JWTSecret:        "utm-manager-secret",
		LogLevel:         "info",
		Config:           "config.json",
	}
}

// Parse parses os.Args and the environment. It exits on invalid flags.
func Parse() *Options {
	opts, err := ParseArgs(os.Args[0], os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return opts
}

// ParseArgs builds Options from, in increasing priority: defaults, the JSON
// config file, command-line flags, and environment variables (including
// those loaded from .env).
func ParseArgs(name string, args []string) (*Options, error) {
	_ = godotenv.Load()

	options := Default()
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	Register(fs, &options)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	path := options.Config
	if v := os.Getenv("CONFIG"); v != "" {
		path = v
	}
	if err := applyFile(fs, &options, path); err != nil {
		return nil, err
	}

	applyEnv(&options)
	return &options, nil
}

// Register binds every option to a flag on fs.
func Register(fs *flag.FlagSet, o *Options) {
	fs.StringVar(&o.Addr, "a", o.Addr, "run on ip:port server")
	fs.StringVar(&o.BaseURL, "b", o.BaseURL, "result base url for self-hosted short links")
	fs.IntVar(&o.GRPCPort, "g", o.GRPCPort, "grpc port, 0 disables grpc")
	fs.StringVar(&o.RemoteKind, "r", o.RemoteKind, "remote backend: sheet or document")
	fs.StringVar(&o.SheetURL, "u", o.SheetURL, "spreadsheet endpoint url")
	fs.StringVar(&o.DatabaseDSN, "d", o.DatabaseDSN, "document store db address")
	fs.StringVar(&o.FilePath, "f", o.FilePath, "path to local cache file")
	fs.StringVar(&o.CacheDSN, "cache-dsn", o.CacheDSN, "sqlite or libsql dsn for local cache")
	fs.StringVar(&o.PicSeeKey, "k", o.PicSeeKey, "picsee api key")
	fs.StringVar(&o.TinyURLEndpoint, "tinyurl", o.TinyURLEndpoint, "tinyurl api endpoint")
	fs.DurationVar(&o.AutoSyncInterval, "i", o.AutoSyncInterval, "auto sync interval, 0 disables")
	fs.DurationVar(&o.PushDelay, "push-delay", o.PushDelay, "delay between record pushes")
	fs.StringVar(&o.JWTSecret, "j", o.JWTSecret, "jwt signing secret")
	fs.StringVar(&o.LogLevel, "l", o.LogLevel, "log level")
	fs.StringVar(&o.LogFile, "log-file", o.LogFile, "rotate logs into this file")
	fs.BoolVar(&o.EnablePprof, "p", o.EnablePprof, "enable pprof")
	fs.BoolVar(&o.EnableHTTPS, "s", o.EnableHTTPS, "enable https")
	fs.StringVar(&o.TrustedSubnet, "t", o.TrustedSubnet, "trusted subnet CIDR")
	fs.StringVar(&o.Config, "c", o.Config, "path to json config file")
	fs.StringVar(&o.Config, "config", o.Config, "path to json config file")
}

// applyFile fills options not set on the command line from a JSON file. A
// missing file is not an error.
func applyFile(fs *flag.FlagSet, o *Options, path string) error {
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}

	ff := fileOptions{Options: Default()}
	if err := json.Unmarshal(raw, &ff); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	file := ff.Options
	if file.AutoSyncInterval, err = parseDuration(ff.AutoSyncInterval, file.AutoSyncInterval); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if file.PushDelay, err = parseDuration(ff.PushDelay, file.PushDelay); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	keep := func(name string, apply func()) {
		if !set[name] {
			apply()
		}
	}
	keep("a", func() { o.Addr = file.Addr })
	keep("b", func() { o.BaseURL = file.BaseURL })
	keep("g", func() { o.GRPCPort = file.GRPCPort })
	keep("r", func() { o.RemoteKind = file.RemoteKind })
	keep("u", func() { o.SheetURL = file.SheetURL })
	keep("d", func() { o.DatabaseDSN = file.DatabaseDSN })
	keep("f", func() { o.FilePath = file.FilePath })
	keep("cache-dsn", func() { o.CacheDSN = file.CacheDSN })
	keep("k", func() { o.PicSeeKey = file.PicSeeKey })
	keep("tinyurl", func() { o.TinyURLEndpoint = file.TinyURLEndpoint })
	keep("i", func() { o.AutoSyncInterval = file.AutoSyncInterval })
	keep("push-delay", func() { o.PushDelay = file.PushDelay })
	keep("j", func() { o.JWTSecret = file.JWTSecret })
	keep("l", func() { o.LogLevel = file.LogLevel })
	keep("log-file", func() { o.LogFile = file.LogFile })
	keep("p", func() { o.EnablePprof = file.EnablePprof })
	keep("s", func() { o.EnableHTTPS = file.EnableHTTPS })
	keep("t", func() { o.TrustedSubnet = file.TrustedSubnet })
	o.TLSHosts = file.TLSHosts
	return nil
}

// fileOptions reads durations as strings such as "5m".
type fileOptions struct {
	Options
	AutoSyncInterval string `json:"auto_sync_interval"`
	PushDelay        string `json:"push_delay"`
}

func parseDuration(v string, fallback time.Duration) (time.Duration, error) {
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}

func applyEnv(o *Options) {
	str := map[string]*string{
		"SERVER_ADDRESS":    &o.Addr,
		"BASE_URL":          &o.BaseURL,
		"REMOTE_KIND":       &o.RemoteKind,
		"SHEET_URL":         &o.SheetURL,
		"DATABASE_DSN":      &o.DatabaseDSN,
		"FILE_STORAGE_PATH": &o.FilePath,
		"CACHE_DSN":         &o.CacheDSN,
		"PICSEE_API_KEY":    &o.PicSeeKey,
		"TINYURL_ENDPOINT":  &o.TinyURLEndpoint,
		"JWT_SECRET":        &o.JWTSecret,
		"LOG_LEVEL":         &o.LogLevel,
		"LOG_FILE":          &o.LogFile,
		"TRUSTED_SUBNET":    &o.TrustedSubnet,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("GRPC_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			o.GRPCPort = port
		}
	}
	if v := os.Getenv("AUTO_SYNC_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			o.AutoSyncInterval = d
		}
	}
	if v := os.Getenv("PUSH_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			o.PushDelay = d
		}
	}
	if v := os.Getenv("ENABLE_HTTPS"); v != "" {
		httpMode, err := strconv.ParseBool(v)
		if err != nil {
			httpMode = false
		}
		o.EnableHTTPS = httpMode
	}
}
