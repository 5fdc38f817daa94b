package sheet

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/utm-manager/internal/models"
	"github.com/atinyakov/utm-manager/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS user_settings (
	user_id TEXT PRIMARY KEY,
	ai_key TEXT NOT NULL DEFAULT '',
	sync_url TEXT NOT NULL DEFAULT '',
	templates TEXT NOT NULL DEFAULT '[]',
	last_updated TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS utm_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	website_url TEXT NOT NULL DEFAULT '',
	final_url TEXT NOT NULL DEFAULT '',
	utm_source TEXT NOT NULL DEFAULT '',
	utm_medium TEXT NOT NULL DEFAULT '',
	utm_campaign TEXT NOT NULL DEFAULT '',
	utm_term TEXT NOT NULL DEFAULT '',
	utm_content TEXT NOT NULL DEFAULT '',
	short_url TEXT NOT NULL DEFAULT '',
	UNIQUE(user_id, timestamp)
);`

// SQLSheet keeps both tabs in SQLite tables, in a local file or a libSQL
// database.
type SQLSheet struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// OpenSQLSheet opens dsn with the driver storage.DriverFor picks and creates
// the tables.
func OpenSQLSheet(ctx context.Context, dsn string, logger *zap.Logger) (*SQLSheet, error) {
	db, err := sql.Open(storage.DriverFor(dsn), dsn)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, err
	}

	return NewSQLSheet(db, logger), nil
}

// NewSQLSheet wraps an opened database whose tables already exist.
func NewSQLSheet(db *sql.DB, logger *zap.Logger) *SQLSheet {
	return &SQLSheet{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

func (s *SQLSheet) SaveSettings(ctx context.Context, userID string, in models.WireSettings) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var row models.WireSettings
	err = tx.QueryRowContext(ctx,
		"SELECT ai_key, sync_url, templates, last_updated FROM user_settings WHERE user_id = ?;", userID,
	).Scan(&row.AIKey, &row.SyncURL, &row.Templates, &row.LastUpdated)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	row = mergeRow(row, in, s.now())

	_, err = tx.ExecContext(ctx, `INSERT INTO user_settings (user_id, ai_key, sync_url, templates, last_updated)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			ai_key = excluded.ai_key,
			sync_url = excluded.sync_url,
			templates = excluded.templates,
			last_updated = excluded.last_updated;`,
		userID, row.AIKey, row.SyncURL, row.Templates, row.LastUpdated,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLSheet) LoadSettings(ctx context.Context, userID string) (*models.WireSettings, error) {
	var row models.WireSettings
	err := s.db.QueryRowContext(ctx,
		"SELECT ai_key, sync_url, templates, last_updated FROM user_settings WHERE user_id = ?;", userID,
	).Scan(&row.AIKey, &row.SyncURL, &row.Templates, &row.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &row, nil
}

func (s *SQLSheet) AppendRecord(ctx context.Context, userID string, r models.UtmRecord) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO utm_records
		(user_id, timestamp, website_url, final_url, utm_source, utm_medium, utm_campaign, utm_term, utm_content, short_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, timestamp) DO NOTHING;`,
		userID, r.Timestamp, r.WebsiteURL, r.FinalURL, r.UtmSource, r.UtmMedium, r.UtmCampaign, r.UtmTerm, r.UtmContent, r.ShortURL,
	)
	return err
}

func (s *SQLSheet) Records(ctx context.Context, userID string) ([]models.UtmRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT timestamp, website_url, final_url, utm_source, utm_medium,
		utm_campaign, utm_term, utm_content, short_url
		FROM utm_records WHERE user_id = ? ORDER BY id DESC;`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.UtmRecord, 0)
	for rows.Next() {
		var r models.UtmRecord
		if err := rows.Scan(&r.Timestamp, &r.WebsiteURL, &r.FinalURL, &r.UtmSource, &r.UtmMedium,
			&r.UtmCampaign, &r.UtmTerm, &r.UtmContent, &r.ShortURL); err != nil {
			return nil, err
		}
		out = append(out, r)
	}

	return out, rows.Err()
}

func (s *SQLSheet) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM (SELECT user_id FROM user_settings UNION SELECT user_id FROM utm_records)),
		(SELECT COUNT(*) FROM utm_records);`,
	).Scan(&st.Users, &st.Records)
	return st, err
}

func (s *SQLSheet) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLSheet) Close() error {
	return s.db.Close()
}
