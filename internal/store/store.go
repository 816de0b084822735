// Package store reads and writes the backing FLOWBOARD.md file of a workspace.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/flowboard/flowboard/internal/markdown"
	"github.com/flowboard/flowboard/internal/model"
)

// DefaultFileName is the backing file name relative to the workspace root.
const DefaultFileName = "FLOWBOARD.md"

// ErrNoWorkspace is returned when there is no workspace root to read from or write to.
// A missing backing file is not an error.
var ErrNoWorkspace = errors.New("no workspace folder open")

// RootFunc resolves the workspace root. ok is false when no workspace is available.
type RootFunc func() (root string, ok bool)

// StaticRoot returns a RootFunc for a fixed directory. An empty dir means no workspace.
func StaticRoot(dir string) RootFunc {
	return func() (string, bool) {
		return dir, dir != ""
	}
}

// Config holds configuration for a Store.
type Config struct {
	// Fs is the filesystem to use (default: the OS filesystem)
	Fs afero.Fs

	// Root resolves the workspace directory
	Root RootFunc

	// FileName is the backing file name (default: FLOWBOARD.md)
	FileName string

	// Parser assigns identifiers on read
	Parser markdown.Parser

	// Logger for store activity (default: logrus standard logger)
	Logger logrus.FieldLogger
}

// Store is the persistence gateway for one backing file.
type Store struct {
	fs       afero.Fs
	root     RootFunc
	fileName string
	parser   markdown.Parser
	logger   logrus.FieldLogger
}

// New creates a Store.
func New(cfg Config) *Store {
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.Root == nil {
		cfg.Root = StaticRoot("")
	}
	if cfg.FileName == "" {
		cfg.FileName = DefaultFileName
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &Store{
		fs:       cfg.Fs,
		root:     cfg.Root,
		fileName: cfg.FileName,
		parser:   cfg.Parser,
		logger:   cfg.Logger,
	}
}

// Path returns the absolute backing file path, or false when there is no workspace.
func (s *Store) Path() (string, bool) {
	root, ok := s.root()
	if !ok {
		return "", false
	}
	return filepath.Join(root, s.fileName), true
}

// FileName returns the backing file name.
func (s *Store) FileName() string {
	return s.fileName
}

// Read loads and parses the backing file. A missing file yields the default document.
// Without a workspace it returns the default document together with ErrNoWorkspace.
func (s *Store) Read(ctx context.Context) (model.Document, error) {
	if err := ctx.Err(); err != nil {
		return model.Default(), err
	}
	path, ok := s.Path()
	if !ok {
		return model.Default(), ErrNoWorkspace
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Default(), nil
		}
		return model.Default(), fmt.Errorf("failed to read %s: %w", path, err)
	}
	return s.parser.Parse(string(data)), nil
}

// Load is Read with a total contract: every failure other than ErrNoWorkspace or a
// done context is logged and resolved to the default document.
func (s *Store) Load(ctx context.Context) (model.Document, error) {
	doc, err := s.Read(ctx)
	if err != nil && !errors.Is(err, ErrNoWorkspace) && ctx.Err() == nil {
		s.logger.WithError(err).Warn("falling back to default document")
		return model.Default(), nil
	}
	return doc, err
}

// Write serializes doc and replaces the backing file, creating its directory first.
func (s *Store) Write(ctx context.Context, doc model.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, ok := s.Path()
	if !ok {
		return ErrNoWorkspace
	}

	if err := s.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	data := []byte(markdown.Serialize(doc))

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if err := s.fs.Rename(tmpPath, path); err != nil {
		_ = s.fs.Remove(tmpPath)
		return fmt.Errorf("failed to rename %s: %w", tmpPath, err)
	}

	s.logger.WithFields(logrus.Fields{
		"path":  path,
		"bytes": len(data),
	}).Debug("wrote board file")
	return nil
}
