package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRotatingFileLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	logger, closer, err := NewRotatingFileLogger(false, dir, "", Rotation{})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("user gets edition")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, defaultFilename))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "user gets edition"))
	assert.False(t, strings.Contains(string(data), "hidden"))
}

func TestNewRotatingFileLoggerDebug(t *testing.T) {
	dir := t.TempDir()

	logger, closer, err := NewRotatingFileLogger(true, dir, "debug.log", Rotation{})
	require.NoError(t, err)

	logger.Debug("instruction")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, "debug.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "instruction")
}

func TestRotationDefaults(t *testing.T) {
	r := Rotation{MaxBackups: 2}.withDefaults()
	assert.Equal(t, Rotation{MaxSize: 50, MaxBackups: 2, MaxAge: 14}, r)
}
