package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
)

func NewLogger(env string) *slog.Logger {
	return newLogger(env, os.Stdout)
}

// NewFileLogger logs to stdout and to a daily-rotated file derived from path.
// An empty path behaves like NewLogger.
func NewFileLogger(env, path string) (*slog.Logger, error) {
	if path == "" {
		return NewLogger(env), nil
	}

	rotator, err := rotatelogs.New(
		path+".%Y%m%d",
		rotatelogs.WithLinkName(path),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(7*24*time.Hour),
	)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}

	return newLogger(env, io.MultiWriter(os.Stdout, rotator)), nil
}

func newLogger(env string, w io.Writer) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		AddSource: env == "development",
	}

	if env == "production" {
		opts.Level = slog.LevelInfo
		handler = slog.NewJSONHandler(w, opts)
	} else {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
