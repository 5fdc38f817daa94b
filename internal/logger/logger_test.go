package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/atinyakov/utm-manager/internal/logger"
)

func TestNew(t *testing.T) {
	l := logger.New()
	require.NotNil(t, l)
	require.NotNil(t, l.Log)
	require.NotNil(t, l.Log.Core())
}

func TestInit_ValidLevels(t *testing.T) {
	validLevels := []string{"debug", "info", "warn", "error", "dpanic", "panic", "fatal"}

	for _, level := range validLevels {
		t.Run(level, func(t *testing.T) {
			l := logger.New()
			err := l.Init(level)
			require.NoError(t, err)
			require.NotNil(t, l.Log)

			lvl, err := zapcore.ParseLevel(level)
			require.NoError(t, err)
			require.True(t, l.Log.Core().Enabled(lvl))
		})
	}
}

func TestInit_InvalidLevel(t *testing.T) {
	l := logger.New()
	err := l.Init("invalid_level")
	require.Error(t, err)
}

func TestInitFile_WritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "utm.log")

	l := logger.New()
	require.NoError(t, l.InitFile("info", path))
	l.Info("sync finished", "owner", "u1")
	l.Log.Debug("dropped")
	require.NoError(t, l.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"msg":"sync finished"`)
	require.Contains(t, string(raw), `"owner":"u1"`)
	require.NotContains(t, string(raw), "dropped")
}
