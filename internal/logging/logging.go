// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/flowboard/flowboard/internal/config"
)

// New returns a logger for cfg. Without a file it writes text to stderr; with a file
// it writes JSON through a rotating writer. Relative files resolve against workspace.
func New(cfg config.LogConfig, workspace string) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	logger := logrus.New()
	logger.SetLevel(level)

	if cfg.File == "" {
		logger.SetOutput(os.Stderr)
		logger.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: true,
		})
		return logger, nil
	}

	path := cfg.File
	if !filepath.IsAbs(path) && workspace != "" {
		path = filepath.Join(workspace, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logger.SetOutput(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	})
	logger.SetFormatter(&logrus.JSONFormatter{})
	return logger, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// Close releases the rotating writer behind logger, if any.
func Close(logger *logrus.Logger) error {
	if c, ok := logger.Out.(io.Closer); ok && logger.Out != os.Stderr {
		return c.Close()
	}
	return nil
}
