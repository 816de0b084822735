// Package bridge carries the UI boundary protocol over WebSocket.
//
// Each WebSocket connection is one UI session. The UI sends
//
//	{"type":"ready"}
//	{"type":"updateData","data":{...full document...}}
//
// and receives
//
//	{"type":"loadData","data":{...full document...}}
//	{"type":"noWorkspace"}
//	{"type":"error","message":"..."}
//
// Messages are fire-and-forget; there are no acknowledgements.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/flowboard/flowboard/internal/session"
)

const (
	writeTimeout    = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Config holds bridge options.
type Config struct {
	// File is the backing file name reported by /health
	File string

	// Origins lists the accepted Origin host patterns (default: localhost and 127.0.0.1 on any port)
	Origins []string

	Logger logrus.FieldLogger
}

// Server binds WebSocket connections to sessions of a hub.
type Server struct {
	hub     *session.Hub
	file    string
	origins []string
	logger  logrus.FieldLogger

	// ctx is cancelled by Close and unblocks every connection read
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	conns  sync.WaitGroup
}

// New creates a Server for hub.
func New(hub *session.Hub, config Config) *Server {
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}
	if len(config.Origins) == 0 {
		config.Origins = []string{"localhost:*", "127.0.0.1:*"}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		hub:     hub,
		file:    config.File,
		origins: config.Origins,
		logger:  config.Logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Handler returns the HTTP routes: /ws, /health and an index at /.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveConn)
	mux.HandleFunc("/health", s.serveHealth)
	mux.HandleFunc("/", s.serveIndex)
	return mux
}

// Serve accepts connections on ln until ctx is done, then closes every session
// (flushing pending edits) and shuts the HTTP server down.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	hs := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- hs.Serve(ln) }()
	s.logger.WithField("addr", ln.Addr().String()).Info("bridge listening")

	select {
	case err := <-errc:
		s.Close()
		return fmt.Errorf("bridge stopped: %w", err)
	case <-ctx.Done():
	}

	s.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down bridge: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close ends every open connection and waits for their sessions to finish. Sessions
// ended this way flush their pending update; a client that disconnects on its own
// loses it.
func (s *Server) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.conns.Wait()
}

func (s *Server) closing() bool {
	return s.ctx.Err() != nil
}

// track registers a connection unless the server is closed.
func (s *Server) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns.Add(1)
	return true
}

func (s *Server) serveConn(w http.ResponseWriter, r *http.Request) {
	if s.closing() {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.origins})
	if err != nil {
		s.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}

	if !s.track() {
		_ = conn.Close(websocket.StatusGoingAway, "shutting down")
		return
	}
	defer s.conns.Done()

	out := &connSink{conn: conn}
	sess := s.hub.Open(out)
	log := s.logger.WithFields(logrus.Fields{"session": sess.ID(), "remote": r.RemoteAddr})

	s.readLoop(conn, sess, out, log)

	if s.closing() {
		sess.Flush()
	}
	sess.Close()
	s.hub.Remove(sess)

	status := websocket.StatusNormalClosure
	if s.closing() {
		status = websocket.StatusGoingAway
	}
	_ = conn.Close(status, "")
	log.WithField("sessions", s.hub.Count()).Info("client disconnected")
}

// readLoop feeds inbound frames to sess until the connection fails or the server closes.
// Bad frames are answered with an error message and never end the connection.
func (s *Server) readLoop(conn *websocket.Conn, sess *session.Session, out *connSink, log logrus.FieldLogger) {
	for {
		_, data, err := conn.Read(s.ctx)
		if err != nil {
			if !s.closing() && websocket.CloseStatus(err) == -1 {
				log.WithError(err).Debug("read failed")
			}
			return
		}

		var msg session.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.WithError(err).Warn("malformed message")
			_ = out.Send(s.ctx, session.ErrorMessage("malformed message: "+err.Error()))
			continue
		}
		if err := sess.Handle(s.ctx, msg); err != nil {
			log.WithError(err).WithField("type", msg.Type).Warn("rejected message")
			_ = out.Send(s.ctx, session.ErrorMessage(err.Error()))
		}
	}
}

func (s *Server) serveHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Status   string `json:"status"`
		Sessions int    `json:"sessions"`
		File     string `json:"file"`
	}{"ok", s.hub.Count(), s.file})
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "flowboard bridge for %s\nconnect a UI to ws://%s/ws\n", s.file, r.Host)
}

// connSink writes session messages to one connection, one frame at a time.
type connSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// Send implements session.Sink. Debounced saves report errors after the request that
// caused them has returned, so the write deadline is detached from ctx cancellation.
func (c *connSink) Send(ctx context.Context, msg session.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()
	return c.conn.Write(wctx, websocket.MessageText, data)
}
