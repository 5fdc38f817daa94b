// Package repository stores owner settings and UTM records as JSON documents
// in PostgreSQL. It backs the document variant of the remote store.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/atinyakov/utm-manager/internal/models"
)

// ErrConflict is returned when a record with the same timestamp already
// exists for the owner.
var ErrConflict = errors.New("data conflict")

// ErrMalformedDocument is returned when a stored document does not decode.
var ErrMalformedDocument = errors.New("malformed document")

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	settings JSONB NOT NULL DEFAULT '{}'::jsonb,
	last_updated TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS utm_records (
	id UUID PRIMARY KEY,
	owner_id TEXT NOT NULL,
	record_ts TEXT NOT NULL,
	document JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (owner_id, record_ts)
);
CREATE INDEX IF NOT EXISTS idx_utm_records_owner_created ON utm_records (owner_id, created_at DESC);`

// InitDB opens the database behind dsn and creates the collections.
func InitDB(dsn string, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("document database connected and collections ready")
	return db, nil
}

// settingsDocument is the JSON stored in users.settings. Only non-empty
// fields are written so that a merge never erases a stored value.
type settingsDocument struct {
	AIKey     string          `json:"aiKey,omitempty"`
	SyncURL   string          `json:"syncUrl,omitempty"`
	Templates json.RawMessage `json:"templates,omitempty"`
}

// DocumentRepository reads and writes owner documents.
type DocumentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func CreateDocumentRepository(db *sql.DB, logger *zap.Logger) *DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

// SaveSettings merges the non-empty fields of s into the owner's settings
// document and stamps last_updated.
func (r *DocumentRepository) SaveSettings(ctx context.Context, ownerID string, s models.UserSettings) error {
	doc := settingsDocument{
		AIKey:   s.AIKey,
		SyncURL: s.SyncURL,
	}
	if s.HasTemplates() {
		doc.Templates = s.Templates
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO users (id, settings, last_updated) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET settings = users.settings || EXCLUDED.settings, last_updated = EXCLUDED.last_updated;`,
		ownerID, string(b), s.LastUpdated,
	)
	if err != nil {
		r.logger.Error("save settings failed", zap.String("owner", ownerID), zap.Error(err))
		return err
	}

	return nil
}

// FindSettings returns nil, nil when the owner has no settings document.
func (r *DocumentRepository) FindSettings(ctx context.Context, ownerID string) (*models.UserSettings, error) {
	row := r.db.QueryRowContext(ctx, "SELECT settings, last_updated FROM users WHERE id = $1;", ownerID)

	var raw []byte
	var s models.UserSettings

	if err := row.Scan(&raw, &s.LastUpdated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var doc settingsDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode settings document: %w: %w", ErrMalformedDocument, err)
	}

	s.AIKey = doc.AIKey
	s.SyncURL = doc.SyncURL
	s.Templates = doc.Templates

	return &s, nil
}

// InsertRecord adds a record document. It returns ErrConflict when the owner
// already has a record with the same timestamp.
func (r *DocumentRepository) InsertRecord(ctx context.Context, ownerID string, rec models.UtmRecord) error {
	rec.OwnerID = ownerID

	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO utm_records (id, owner_id, record_ts, document) VALUES ($1, $2, $3, $4) ON CONFLICT (owner_id, record_ts) DO NOTHING;",
		uuid.NewString(), ownerID, rec.Timestamp, string(b),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrConflict
		}
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrConflict
	}

	return nil
}

// FindRecords returns up to limit record documents of the owner, newest
// first. Documents that fail to decode are skipped and logged.
func (r *DocumentRepository) FindRecords(ctx context.Context, ownerID string, limit int) ([]models.UtmRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT document FROM utm_records WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2;",
		ownerID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]models.UtmRecord, 0)

	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}

		var rec models.UtmRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			r.logger.Warn("skipping malformed record document", zap.String("owner", ownerID), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *DocumentRepository) PingContext(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// IsServerError reports whether err was produced by the database server
// itself, as opposed to the network or the client.
func IsServerError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr)
}
