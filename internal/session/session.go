// Package session coordinates one UI session with the backing file.
//
// A Session decides when to read the file (initial ready signal, external change)
// and when to write it (debounced UI updates). Every read is a full replacement of
// the document held by the UI; every write persists the most recent full document.
// Concurrent external edits and UI edits resolve as last writer wins.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/flowboard/flowboard/internal/ids"
	"github.com/flowboard/flowboard/internal/model"
	"github.com/flowboard/flowboard/internal/store"
)

// DefaultQuietPeriod is the update silence required before a write is committed.
const DefaultQuietPeriod = 300 * time.Millisecond

// State is the coordinator state.
type State int

const (
	// StateLoading is the state before the first read.
	StateLoading State = iota
	// StateReady means a document has been delivered to the UI.
	StateReady
	// StateNoWorkspace means there is no storage root; left on the next successful read.
	StateNoWorkspace
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateNoWorkspace:
		return "no-workspace"
	default:
		return "unknown"
	}
}

// ReloadPolicy decides what an external file change does while a local write is pending.
type ReloadPolicy string

const (
	// ReloadImmediately reads and pushes the file at once. Pending local edits are still
	// written when their quiet period ends, so the last writer wins.
	ReloadImmediately ReloadPolicy = "reload"

	// ReloadAfterWrite postpones the reload until the pending write has landed.
	ReloadAfterWrite ReloadPolicy = "defer"
)

// ParseReloadPolicy validates a policy name. An empty name selects ReloadImmediately.
func ParseReloadPolicy(name string) (ReloadPolicy, error) {
	switch ReloadPolicy(name) {
	case "", ReloadImmediately:
		return ReloadImmediately, nil
	case ReloadAfterWrite:
		return ReloadAfterWrite, nil
	default:
		return "", fmt.Errorf("unknown reload policy %q", name)
	}
}

// Config holds configuration for a Session.
type Config struct {
	// QuietPeriod is the debounce interval for writes (default: 300ms)
	QuietPeriod time.Duration

	// Policy for external changes during a pending write (default: reload)
	Policy ReloadPolicy

	// Logger for session activity (default: logrus standard logger)
	Logger logrus.FieldLogger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		QuietPeriod: DefaultQuietPeriod,
		Policy:      ReloadImmediately,
		Logger:      logrus.StandardLogger(),
	}
}

// Session is the sync coordinator for one UI.
type Session struct {
	id     string
	store  *store.Store
	sink   Sink
	quiet  time.Duration
	policy ReloadPolicy
	logger logrus.FieldLogger

	mu           sync.Mutex
	state        State
	doc          model.Document
	pending      *model.Document
	timer        *time.Timer
	gen          uint64
	writing      bool
	reloadQueued bool
	closed       bool

	// writeMu keeps writes strictly one at a time
	writeMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Session that reads and writes through st and talks to the UI via sink.
func New(st *store.Store, sink Sink, config *Config) *Session {
	if config == nil {
		config = DefaultConfig()
	}
	if config.QuietPeriod <= 0 {
		config.QuietPeriod = DefaultQuietPeriod
	}
	if config.Policy == "" {
		config.Policy = ReloadImmediately
	}
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}

	id := ids.UUID{}.NewID()
	ctx, cancel := context.WithCancel(context.Background())

	return &Session{
		id:     id,
		store:  st,
		sink:   sink,
		quiet:  config.QuietPeriod,
		policy: config.Policy,
		logger: config.Logger.WithField("session", id),
		state:  StateLoading,
		doc:    model.Default(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current coordinator state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Document returns a copy of the most recent document known to the session, either
// read from disk or received from the UI.
func (s *Session) Document() model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Pending reports whether a debounced write is waiting for its quiet period.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Handle dispatches a message received from the UI.
func (s *Session) Handle(ctx context.Context, msg Message) error {
	switch msg.Type {
	case MessageReady:
		s.HandleReady(ctx)
		return nil
	case MessageUpdateData:
		if msg.Data == nil {
			return fmt.Errorf("%s message without data", msg.Type)
		}
		s.HandleUpdate(*msg.Data)
		return nil
	default:
		return fmt.Errorf("unsupported message type %q", msg.Type)
	}
}

// HandleReady performs the initial read and delivers the result to the UI.
func (s *Session) HandleReady(ctx context.Context) {
	s.logger.Debug("ui ready")
	s.load(ctx)
}

// HandleExternalChange reacts to the backing file being created, changed or deleted.
// With ReloadImmediately the file is read and pushed even while a local write is
// pending, which may replace unsaved edits in the UI.
func (s *Session) HandleExternalChange(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.policy == ReloadAfterWrite && (s.pending != nil || s.writing) {
		s.reloadQueued = true
		s.mu.Unlock()
		s.logger.Debug("external change deferred until pending write lands")
		return
	}
	s.mu.Unlock()

	s.logger.Debug("external change, reloading")
	s.load(ctx)
}

// HandleUpdate accepts a full document from the UI and (re)starts the quiet period.
// Only the latest document is written once the UI has been silent long enough.
func (s *Session) HandleUpdate(doc model.Document) {
	if dups := doc.DuplicateIDs(); len(dups) > 0 {
		s.logger.WithField("ids", dups).Warn("update contains duplicate identifiers")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	latest := doc.Clone()
	s.doc = latest.Clone()
	s.pending = &latest
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
	}
	gen := s.gen
	s.timer = time.AfterFunc(s.quiet, func() { s.fire(gen) })
}

// Flush writes any pending document now instead of waiting for the quiet period.
func (s *Session) Flush() {
	s.mu.Lock()
	if s.closed || s.pending == nil {
		s.mu.Unlock()
		return
	}
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	doc := *s.pending
	s.pending = nil
	s.writing = true
	s.mu.Unlock()

	s.commit(doc)
}

// Close cancels the pending timer without writing and detaches the session.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	dropped := s.pending != nil
	s.pending = nil
	s.reloadQueued = false
	s.mu.Unlock()

	s.cancel()
	if dropped {
		s.logger.Warn("session closed with an unsaved update")
	}
	s.logger.Debug("session closed")
}

func (s *Session) fire(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen || s.pending == nil {
		s.mu.Unlock()
		return
	}
	doc := *s.pending
	s.pending = nil
	s.timer = nil
	s.writing = true
	s.mu.Unlock()

	s.commit(doc)
}

// commit writes doc, then performs a reload that was deferred behind it.
func (s *Session) commit(doc model.Document) {
	s.write(doc)

	s.mu.Lock()
	s.writing = false
	reload := s.reloadQueued && s.pending == nil && !s.closed
	if reload {
		s.reloadQueued = false
	}
	s.mu.Unlock()

	if reload {
		s.logger.Debug("running deferred reload")
		s.load(s.ctx)
	}
}

func (s *Session) write(doc model.Document) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.store.Write(s.ctx, doc); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.logger.WithError(err).Error("failed to save board")
		s.send(s.ctx, ErrorMessage(fmt.Sprintf("Failed to save %s: %v", s.store.FileName(), err)))
		return
	}
	s.logger.WithField("tasks", doc.TaskCount()).Info("board saved")
}

// load reads the file and pushes the result, moving between Ready and NoWorkspace.
func (s *Session) load(ctx context.Context) {
	doc, err := s.store.Load(ctx)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if errors.Is(err, store.ErrNoWorkspace) {
		s.state = StateNoWorkspace
		s.mu.Unlock()
		s.send(ctx, Message{Type: MessageNoWorkspace})
		return
	}
	if err != nil {
		// Only a done context gets here; nobody is waiting for the result
		s.mu.Unlock()
		s.logger.WithError(err).Debug("load abandoned")
		return
	}
	s.state = StateReady
	s.doc = doc.Clone()
	s.mu.Unlock()

	s.send(ctx, LoadData(doc))
}

func (s *Session) send(ctx context.Context, msg Message) {
	if err := s.sink.Send(ctx, msg); err != nil {
		s.logger.WithError(err).WithField("type", msg.Type).Warn("failed to deliver message")
	}
}
