package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerLevel(t *testing.T) {
	logger, err := newLogger("warn", false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	_, err = newLogger("loud", false)
	assert.Error(t, err)
}

func TestNewLoggerWritesFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	logger, err := newLogger("info", true)
	require.NoError(t, err)
	logger.Info("finished checking blocks")
	_ = logger.Sync()

	data, err := os.ReadFile(filepath.Join(dir, logFilePath))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"finished checking blocks"`)
}
