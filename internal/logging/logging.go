// Package logging configures slog for the rpmkit command.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	slogmulti "github.com/samber/slog-multi"
)

// New returns a logger writing colored text to w. If dir is non-empty,
// records are also written as JSON to a timestamped file in dir; the
// returned close function releases it.
func New(w io.Writer, levelStr, dir string) (*slog.Logger, func() error, error) {
	level := ParseLevel(levelStr)
	console := tint.NewHandler(w, &tint.Options{Level: level, TimeFormat: time.TimeOnly})
	if dir == "" {
		return slog.New(console), func() error { return nil }, nil
	}

	dir = os.ExpandEnv(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	name := filepath.Join(dir, fmt.Sprintf("rpmkit_%s.log", time.Now().Format("20060102_150405")))
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("create log file: %w", err)
	}

	file := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level})
	return slog.New(slogmulti.Fanout(console, file)), f.Close, nil
}

// Setup installs a logger writing to stderr as the slog default. Stdout is
// left alone because commands such as rpm2cpio stream data on it.
func Setup(levelStr, dir string) (func() error, error) {
	logger, closeFn, err := New(os.Stderr, levelStr, dir)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return closeFn, nil
}

// ParseLevel converts a level name to a slog.Level. Unknown names are info.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "fatal":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
