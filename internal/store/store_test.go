package store

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowboard/flowboard/internal/model"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newMemStore(t *testing.T, root string) (*Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	return New(Config{Fs: fs, Root: StaticRoot(root), Logger: quietLogger()}), fs
}

func TestRead_MissingFileIsDefault(t *testing.T) {
	s, _ := newMemStore(t, "/work")

	doc, err := s.Read(context.Background())
	require.NoError(t, err)
	assert.True(t, model.Equivalent(model.Default(), doc))
}

func TestRead_NoWorkspace(t *testing.T) {
	s, _ := newMemStore(t, "")

	doc, err := s.Read(context.Background())
	assert.ErrorIs(t, err, ErrNoWorkspace)
	assert.Len(t, doc.Board.Columns, 3)

	_, ok := s.Path()
	assert.False(t, ok)
}

func TestRead_ParsesFile(t *testing.T) {
	s, fs := newMemStore(t, "/work")
	require.NoError(t, afero.WriteFile(fs, "/work/FLOWBOARD.md", []byte("## A\n- [x] t - d\n"), 0644))

	doc, err := s.Read(context.Background())
	require.NoError(t, err)
	require.Len(t, doc.Board.Columns, 1)
	assert.Equal(t, "t", doc.Board.Columns[0].Tasks[0].Title)
	assert.True(t, doc.Board.Columns[0].Tasks[0].Completed)
}

func TestWrite_CreatesDirectory(t *testing.T) {
	s, fs := newMemStore(t, "/work/nested")

	doc := model.Default()
	doc.Todos = []model.TodoItem{{ID: "a", Title: "todo"}}
	require.NoError(t, s.Write(context.Background(), doc))

	data, err := afero.ReadFile(fs, "/work/nested/FLOWBOARD.md")
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Todo\n- [ ] todo\n")

	exists, err := afero.Exists(fs, "/work/nested/FLOWBOARD.md.tmp")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestWrite_NoWorkspace(t *testing.T) {
	s, _ := newMemStore(t, "")
	err := s.Write(context.Background(), model.Default())
	assert.True(t, errors.Is(err, ErrNoWorkspace))
}

func TestWrite_ReadBack(t *testing.T) {
	s, _ := newMemStore(t, "/work")
	ctx := context.Background()

	doc := model.Default()
	doc.Board.Columns[1].Tasks = []model.Task{{ID: "x", Title: "doing", Description: "now"}}
	doc.Notes = []model.Note{{ID: "n", Title: "Idea", Content: "explore X"}}
	require.NoError(t, s.Write(ctx, doc))

	got, err := s.Read(ctx)
	require.NoError(t, err)
	assert.True(t, model.Equivalent(doc, got))
}

func TestWrite_CancelledContext(t *testing.T) {
	s, fs := newMemStore(t, "/work")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Write(ctx, model.Default()), context.Canceled)
	exists, _ := afero.Exists(fs, "/work/FLOWBOARD.md")
	assert.False(t, exists)
}

func TestLoad_ReadErrorFallsBack(t *testing.T) {
	dir := t.TempDir()
	// a directory where the file should be makes the read fail
	require.NoError(t, os.Mkdir(filepath.Join(dir, DefaultFileName), 0755))

	s := New(Config{Root: StaticRoot(dir), Logger: quietLogger()})

	_, err := s.Read(context.Background())
	assert.Error(t, err)

	doc, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, model.Equivalent(model.Default(), doc))
}

func TestCustomFileName(t *testing.T) {
	s := New(Config{Fs: afero.NewMemMapFs(), Root: StaticRoot("/w"), FileName: "board.md"})
	path, ok := s.Path()
	require.True(t, ok)
	assert.Equal(t, filepath.Join("/w", "board.md"), path)
	assert.Equal(t, "board.md", s.FileName())
}
