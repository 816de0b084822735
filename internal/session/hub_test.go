package session

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/flowboard/flowboard/internal/store"
)

func newHub(t *testing.T, dir string, quiet time.Duration) *Hub {
	t.Helper()
	st := store.New(store.Config{Root: store.StaticRoot(dir), Logger: quietLogger()})
	return NewHub(st, &Config{QuietPeriod: quiet, Logger: quietLogger()})
}

func TestHub_ExternalChangeReachesAllSessions(t *testing.T) {
	dir := t.TempDir()
	hub := newHub(t, dir, time.Hour)
	if err := hub.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer hub.Stop()

	a, b := newRecorder(), newRecorder()
	hub.Open(a)
	hub.Open(b)
	if hub.Count() != 2 {
		t.Fatalf("Expected 2 sessions, got %d", hub.Count())
	}

	if err := os.WriteFile(filepath.Join(dir, "FLOWBOARD.md"), []byte("# Notes\n- hello\n"), 0644); err != nil {
		t.Fatalf("Failed to write board: %v", err)
	}

	// create and write may arrive as separate events; wait for the full content
	for _, r := range []*recorder{a, b} {
		r.until(t, func(msg Message) bool {
			return msg.Type == MessageLoadData && len(msg.Data.Notes) == 1 && msg.Data.Notes[0].Title == "hello"
		})
	}
}

func TestHub_StopFlushesPendingWrites(t *testing.T) {
	dir := t.TempDir()
	hub := newHub(t, dir, time.Hour)
	if err := hub.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	s := hub.Open(newRecorder())
	s.HandleUpdate(docWithTodo("saved on shutdown"))

	if err := hub.Stop(); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
	if hub.Count() != 0 {
		t.Errorf("Expected no sessions after Stop, got %d", hub.Count())
	}

	data, err := os.ReadFile(filepath.Join(dir, "FLOWBOARD.md"))
	if err != nil {
		t.Fatalf("Failed to read board: %v", err)
	}
	if want := "- [ ] saved on shutdown"; !strings.Contains(string(data), want) {
		t.Errorf("Expected %q in file, got:\n%s", want, data)
	}
}

func TestHub_CreatesWorkspaceDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "not", "yet")
	hub := newHub(t, dir, time.Hour)
	if err := hub.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer hub.Stop()

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Expected workspace directory to exist: %v", err)
	}
}

func TestHub_NoWorkspace(t *testing.T) {
	hub := newHub(t, "", time.Hour)
	if err := hub.Start(); err != nil {
		t.Fatalf("Start() without workspace should succeed: %v", err)
	}
	defer hub.Stop()

	r := newRecorder()
	s := hub.Open(r)
	s.HandleReady(context.Background())
	if msg := r.next(t); msg.Type != MessageNoWorkspace {
		t.Errorf("Expected noWorkspace, got %s", msg.Type)
	}
}
