package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atinyakov/utm-manager/internal/sheet"
)

func TestParse(t *testing.T) {
	opts, err := parse([]string{"-a", ":9999", "-t", "10.0.0.0/8"})
	require.NoError(t, err)
	assert.Equal(t, ":9999", opts.addr)
	assert.Equal(t, "10.0.0.0/8", opts.trustedSubnet)
	assert.Equal(t, "", opts.dsn)

	t.Setenv("SHEET_DSN", "file.db")
	opts, err = parse(nil)
	require.NoError(t, err)
	assert.Equal(t, "file.db", opts.dsn)

	_, err = parse([]string{"-x"})
	assert.Error(t, err)
}

func TestOpenSheet(t *testing.T) {
	ctx := context.Background()

	sh, closeFn, err := openSheet(ctx, "", zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &sheet.MemorySheet{}, sh)
	require.NoError(t, closeFn())

	sh, closeFn, err = openSheet(ctx, filepath.Join(t.TempDir(), "sheet.db"), zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &sheet.SQLSheet{}, sh)
	require.NoError(t, sh.PingContext(ctx))
	require.NoError(t, closeFn())
}
