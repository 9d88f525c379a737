package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_Levels(t *testing.T) {
	dir := t.TempDir()

	debug, err := New(Options{Debug: true, Path: filepath.Join(dir, "debug.log")})
	require.NoError(t, err)
	assert.True(t, debug.Core().Enabled(zap.DebugLevel))

	prod, err := New(Options{Path: filepath.Join(dir, "prod.log")})
	require.NoError(t, err)
	assert.False(t, prod.Core().Enabled(zap.InfoLevel))
	assert.True(t, prod.Core().Enabled(zap.WarnLevel))

	quiet, err := New(Options{Debug: true, Quiet: true, Path: filepath.Join(dir, "quiet.log")})
	require.NoError(t, err)
	assert.False(t, quiet.Core().Enabled(zap.WarnLevel))
	assert.True(t, quiet.Core().Enabled(zap.ErrorLevel))
}

func TestNew_WritesToPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "fireplot.log")
	logger, err := New(Options{Path: path})
	require.NoError(t, err)

	logger.Error("render failed", zap.String("slot", "financialChart"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "render failed")
	assert.Contains(t, string(data), "financialChart")
}
