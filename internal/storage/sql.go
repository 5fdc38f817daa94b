package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Local SQLite driver
)

// SQLCache keeps the cache in a key/value table of a SQLite database, either
// a local file or a remote libSQL (Turso) database.
type SQLCache struct {
	db      *sql.DB
	logger  *zap.Logger
	timeout time.Duration
}

// DriverFor picks the database/sql driver for dsn.
func DriverFor(dsn string) string {
	if strings.HasPrefix(dsn, "libsql://") || strings.HasPrefix(dsn, "wss://") || strings.HasPrefix(dsn, "https://") {
		return "libsql"
	}
	return "sqlite"
}

// OpenSQLCache opens dsn and makes sure the cache table exists.
func OpenSQLCache(dsn string, logger *zap.Logger) (*SQLCache, error) {
	db, err := sql.Open(DriverFor(dsn), dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	c := NewSQLCache(db, logger)
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return c, nil
}

// NewSQLCache wraps an already opened database. The cache table must exist.
func NewSQLCache(db *sql.DB, logger *zap.Logger) *SQLCache {
	return &SQLCache{
		db:      db,
		logger:  logger,
		timeout: 3 * time.Second,
	}
}

func (c *SQLCache) migrate() error {
	_, err := c.db.Exec(`CREATE TABLE IF NOT EXISTS local_cache (
		cache_key TEXT PRIMARY KEY,
		cache_value TEXT NOT NULL
	);`)
	return err
}

func (c *SQLCache) Get(key string, dst any) bool {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	var raw string
	err := c.db.QueryRowContext(ctx, "SELECT cache_value FROM local_cache WHERE cache_key = ?;", key).Scan(&raw)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			c.logger.Warn("local cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}

	return decodeInto(raw, dst)
}

func (c *SQLCache) Set(key string, value any) error {
	raw, err := encode(value)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	_, err = c.db.ExecContext(ctx,
		"INSERT INTO local_cache(cache_key, cache_value) VALUES (?, ?) ON CONFLICT(cache_key) DO UPDATE SET cache_value = excluded.cache_value;",
		key, raw,
	)
	return err
}

func (c *SQLCache) Remove(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if _, err := c.db.ExecContext(ctx, "DELETE FROM local_cache WHERE cache_key = ?;", key); err != nil {
		c.logger.Warn("local cache remove failed", zap.String("key", key), zap.Error(err))
	}
}

// Close closes the underlying database.
func (c *SQLCache) Close() error {
	return c.db.Close()
}
