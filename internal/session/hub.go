package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/flowboard/flowboard/internal/store"
	"github.com/flowboard/flowboard/internal/watch"
)

// Hub owns the file watch for one backing file and the sessions attached to it.
// Every external change is delivered to every live session.
type Hub struct {
	store  *store.Store
	config Config
	logger logrus.FieldLogger

	mu       sync.RWMutex
	sessions map[*Session]struct{}

	watcher *watch.Watcher
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewHub creates a Hub. config is applied to every session the hub opens.
func NewHub(st *store.Store, config *Config) *Hub {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		store:    st,
		config:   *config,
		logger:   config.Logger,
		sessions: make(map[*Session]struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins watching the backing file. Without a workspace there is nothing to
// watch and Start returns nil; sessions will report noWorkspace on their own.
func (h *Hub) Start() error {
	path, ok := h.store.Path()
	if !ok {
		h.logger.Warn("no workspace, file watching disabled")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}

	w, err := watch.Watch(path)
	if err != nil {
		return err
	}
	h.watcher = w

	h.wg.Add(1)
	go h.watchLoop()

	h.logger.WithField("path", path).Info("watching board file")
	return nil
}

// Stop flushes and closes all sessions and stops the file watch.
func (h *Hub) Stop() error {
	h.cancel()

	var err error
	if h.watcher != nil {
		err = h.watcher.Close()
	}
	h.wg.Wait()

	for _, s := range h.Sessions() {
		s.Flush()
		s.Close()
		h.Remove(s)
	}
	return err
}

// Open creates a session bound to sink and attaches it to the hub.
func (h *Hub) Open(sink Sink) *Session {
	cfg := h.config
	s := New(h.store, sink, &cfg)

	h.mu.Lock()
	h.sessions[s] = struct{}{}
	count := len(h.sessions)
	h.mu.Unlock()

	h.logger.WithFields(logrus.Fields{"session": s.ID(), "sessions": count}).Info("session opened")
	return s
}

// Remove detaches a session. It does not close it.
func (h *Hub) Remove(s *Session) {
	h.mu.Lock()
	delete(h.sessions, s)
	h.mu.Unlock()
}

// Sessions returns a snapshot of the attached sessions.
func (h *Hub) Sessions() []*Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Session, 0, len(h.sessions))
	for s := range h.sessions {
		out = append(out, s)
	}
	return out
}

// Count returns the number of attached sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Notify delivers an external change to every attached session.
func (h *Hub) Notify(ctx context.Context) {
	for _, s := range h.Sessions() {
		s.HandleExternalChange(ctx)
	}
}

func (h *Hub) watchLoop() {
	defer h.wg.Done()

	events := h.watcher.Events()
	errs := h.watcher.Errors()
	for {
		select {
		case <-h.ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			h.logger.WithFields(logrus.Fields{
				"op":  event.Op.String(),
				"raw": event.Raw,
			}).Debug("board file changed")
			h.Notify(h.ctx)

		case err, ok := <-errs:
			if !ok {
				return
			}
			h.logger.WithError(err).Warn("watcher error")
		}
	}
}
