package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"trace":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"fatal":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestConsoleOnly(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, closeFn, err := New(&buf, "warn", "")
	require.NoError(t, err)
	defer closeFn()

	logger.Info("hidden")
	logger.Warn("shown", "package", "demo")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "demo")
}

func TestFileFanout(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "logs")
	var buf bytes.Buffer
	logger, closeFn, err := New(&buf, "debug", dir)
	require.NoError(t, err)

	logger.Debug("opened package", "path", "a.rpm")
	require.NoError(t, closeFn())
	assert.Contains(t, buf.String(), "opened package")

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Regexp(t, `^rpmkit_\d{8}_\d{6}\.log$`, files[0].Name())

	data, err := os.ReadFile(filepath.Join(dir, files[0].Name()))
	require.NoError(t, err)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &rec))
	assert.Equal(t, "opened package", rec["msg"])
	assert.Equal(t, "a.rpm", rec["path"])
	assert.Equal(t, "DEBUG", rec["level"])
}
