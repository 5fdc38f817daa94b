package sheet

import (
	"context"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atinyakov/utm-manager/internal/models"
)

func sheets(t *testing.T) map[string]Sheet {
	t.Helper()

	sq, err := OpenSQLSheet(context.Background(), filepath.Join(t.TempDir(), "sheet.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })

	return map[string]Sheet{
		"memory": NewMemorySheet(),
		"sqlite": sq,
	}
}

func TestSheet_Settings(t *testing.T) {
	for name, s := range sheets(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			got, err := s.LoadSettings(ctx, "u1")
			require.NoError(t, err)
			assert.Nil(t, got)

			require.NoError(t, s.SaveSettings(ctx, "u1", models.WireSettings{
				AIKey:       "A",
				Templates:   `[{"n":1}]`,
				LastUpdated: "2024-01-01T00:00:00Z",
			}))
			require.NoError(t, s.SaveSettings(ctx, "u1", models.WireSettings{
				SyncURL:     "U",
				Templates:   "[]",
				LastUpdated: "2024-01-02T00:00:00Z",
			}))

			got, err = s.LoadSettings(ctx, "u1")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, models.WireSettings{
				AIKey:       "A",
				SyncURL:     "U",
				Templates:   `[{"n":1}]`,
				LastUpdated: "2024-01-02T00:00:00Z",
			}, *got)
		})
	}
}

func TestSheet_SettingsStampedWhenMissingTime(t *testing.T) {
	for name, s := range sheets(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.SaveSettings(context.Background(), "u", models.WireSettings{AIKey: "k"}))

			got, err := s.LoadSettings(context.Background(), "u")
			require.NoError(t, err)

			stamp, err := time.Parse(time.RFC3339Nano, got.LastUpdated)
			require.NoError(t, err)
			assert.WithinDuration(t, time.Now(), stamp, time.Minute)
			assert.Equal(t, "[]", got.Templates)
		})
	}
}

func TestSheet_Records(t *testing.T) {
	for name, s := range sheets(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			for _, ts := range []string{"T1", "T2", "T3"} {
				require.NoError(t, s.AppendRecord(ctx, "u1", models.UtmRecord{Timestamp: ts, UtmCampaign: "c"}))
			}
			require.NoError(t, s.AppendRecord(ctx, "u1", models.UtmRecord{Timestamp: "T2", UtmCampaign: "dup"}))
			require.NoError(t, s.AppendRecord(ctx, "u2", models.UtmRecord{Timestamp: "T9"}))

			got, err := s.Records(ctx, "u1")
			require.NoError(t, err)
			require.Len(t, got, 3)
			assert.Equal(t, "T3", got[0].Timestamp)
			assert.Equal(t, "T1", got[2].Timestamp)
			assert.Equal(t, "c", got[1].UtmCampaign)

			empty, err := s.Records(ctx, "nobody")
			require.NoError(t, err)
			assert.Empty(t, empty)

			st, err := s.Stats(ctx)
			require.NoError(t, err)
			assert.Equal(t, Stats{Users: 2, Records: 4}, st)

			assert.NoError(t, s.PingContext(ctx))
		})
	}
}

func TestSQLSheet_AppendRecordQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rec := models.UtmRecord{Timestamp: "T1", WebsiteURL: "https://a", FinalURL: "https://a?utm_campaign=c", UtmCampaign: "c"}

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT(user_id, timestamp) DO NOTHING;")).
		WithArgs("u1", "T1", "https://a", "https://a?utm_campaign=c", "", "", "c", "", "", "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, NewSQLSheet(db, zap.NewNop()).AppendRecord(context.Background(), "u1", rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}
