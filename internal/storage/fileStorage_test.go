package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atinyakov/utm-manager/internal/models"
)

func TestFileCache_PersistsAcrossReopen(t *testing.T) {
	logger := zap.NewNop()
	path := filepath.Join(t.TempDir(), "nested", "cache.json")

	fc, err := NewFileCache(path, logger)
	require.NoError(t, err)

	records := []models.UtmRecord{{Timestamp: "T1", UtmCampaign: "c"}}
	require.NoError(t, fc.Set(KeyRecords, records))
	require.NoError(t, fc.Set(KeyWatermark, "2025-01-01T00:00:00Z"))

	reopened, err := NewFileCache(path, logger)
	require.NoError(t, err)

	var got []models.UtmRecord
	assert.True(t, reopened.Get(KeyRecords, &got))
	assert.Equal(t, records, got)

	reopened.Remove(KeyWatermark)

	again, err := NewFileCache(path, logger)
	require.NoError(t, err)

	var wm string
	assert.False(t, again.Get(KeyWatermark, &wm))
}

func TestFileCache_CorruptedFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0600))

	fc, err := NewFileCache(path, zap.NewNop())
	require.NoError(t, err)

	var v string
	assert.False(t, fc.Get("anything", &v))

	require.NoError(t, fc.Set("k", "v"))
	assert.True(t, fc.Get("k", &v))
	assert.Equal(t, "v", v)
}

func TestFileCache_WrongShapeIsAbsent(t *testing.T) {
	fc, err := NewFileCache(filepath.Join(t.TempDir(), "cache.json"), zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, fc.Set(KeyRecords, "not a list"))

	var got []models.UtmRecord
	assert.False(t, fc.Get(KeyRecords, &got))
}
