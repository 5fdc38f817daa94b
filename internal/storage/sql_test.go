package storage

import (
	"database/sql"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupMockCache(t *testing.T) (sqlmock.Sqlmock, *SQLCache) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return mock, NewSQLCache(db, zap.NewNop())
}

func TestDriverFor(t *testing.T) {
	assert.Equal(t, "libsql", DriverFor("libsql://my-db.turso.io?authToken=x"))
	assert.Equal(t, "libsql", DriverFor("wss://my-db.turso.io"))
	assert.Equal(t, "sqlite", DriverFor("file:cache.db"))
	assert.Equal(t, "sqlite", DriverFor("/tmp/cache.db"))
}

func TestSQLCache_Get(t *testing.T) {
	mock, c := setupMockCache(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT cache_value FROM local_cache WHERE cache_key = ?;")).
		WithArgs("u_user_settings").
		WillReturnRows(sqlmock.NewRows([]string{"cache_value"}).AddRow(`{"aiKey":"A","syncUrl":""}`))

	var got struct {
		AIKey string `json:"aiKey"`
	}
	assert.True(t, c.Get("u_user_settings", &got))
	assert.Equal(t, "A", got.AIKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLCache_GetAbsentAndBroken(t *testing.T) {
	mock, c := setupMockCache(t)

	mock.ExpectQuery("SELECT cache_value FROM local_cache").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT cache_value FROM local_cache").
		WithArgs("broken").
		WillReturnRows(sqlmock.NewRows([]string{"cache_value"}).AddRow(`{oops`))
	mock.ExpectQuery("SELECT cache_value FROM local_cache").
		WithArgs("offline").
		WillReturnError(errors.New("disk I/O error"))

	var v map[string]any
	assert.False(t, c.Get("missing", &v))
	assert.False(t, c.Get("broken", &v))
	assert.False(t, c.Get("offline", &v))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLCache_SetAndRemove(t *testing.T) {
	mock, c := setupMockCache(t)

	mock.ExpectExec("INSERT INTO local_cache").
		WithArgs("k", `"v"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM local_cache WHERE cache_key = ?;")).
		WithArgs("k").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, c.Set("k", "v"))
	c.Remove("k")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenSQLCache_SQLiteFile(t *testing.T) {
	c, err := OpenSQLCache(filepath.Join(t.TempDir(), "cache.db"), zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("k", []string{"a", "b"}))
	require.NoError(t, c.Set("k", []string{"c"}))

	var got []string
	assert.True(t, c.Get("k", &got))
	assert.Equal(t, []string{"c"}, got)

	c.Remove("k")
	assert.False(t, c.Get("k", &got))
}
