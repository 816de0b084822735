// Package watch reports changes to the backing board file.
//
// A Watcher follows one file through its parent directory, so the file may be
// deleted, recreated or atomically replaced without losing the watch. Raw fsnotify
// events that arrive within the coalescing window are folded into one Event: an
// editor saving the file usually produces a create followed by one or more writes,
// and consumers only need to re-read once.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultCoalesce is the window used to fold bursts of raw events.
const DefaultCoalesce = 25 * time.Millisecond

// Op is the net effect of a burst of changes on the watched file.
type Op int

const (
	Changed Op = iota
	Created
	Removed
)

func (op Op) String() string {
	switch op {
	case Changed:
		return "change"
	case Created:
		return "create"
	case Removed:
		return "remove"
	}
	return fmt.Sprintf("op(%d)", int(op))
}

// fold combines the op so far with the next raw op. A create is not downgraded by
// the writes that follow it; a removal always wins.
func fold(prev, next Op) Op {
	if next == Changed && prev == Created {
		return Created
	}
	return next
}

// Event is one coalesced change to the watched file.
type Event struct {
	Path string
	Op   Op
	// Raw is the number of fsnotify events folded into this one
	Raw int
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithCoalesce sets the folding window. Zero delivers every raw event on its own.
func WithCoalesce(d time.Duration) Option {
	return func(w *Watcher) { w.coalesce = d }
}

// Watcher delivers coalesced events for a single file until Close is called.
type Watcher struct {
	path     string
	coalesce time.Duration
	fsw      *fsnotify.Watcher

	events chan Event
	errs   chan error

	closeOnce sync.Once
	closing   chan struct{}
	finished  chan struct{}
}

// Watch starts watching path. The directory holding path must exist; the file need not.
func Watch(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:     abs,
		coalesce: DefaultCoalesce,
		fsw:      fsw,
		events:   make(chan Event, 16),
		errs:     make(chan error, 4),
		closing:  make(chan struct{}),
		finished: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	go w.loop()
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Events is closed once the watcher has stopped.
func (w *Watcher) Events() <-chan Event { return w.events }

// Errors carries fsnotify errors. It is closed once the watcher has stopped.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Close stops the watch and waits for the event loop to exit. Events still being
// coalesced are discarded. Close may be called more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.closing)
		err = w.fsw.Close()
		<-w.finished
	})
	return err
}

func (w *Watcher) loop() {
	defer close(w.finished)
	defer close(w.errs)
	defer close(w.events)

	var (
		pending *Event
		timer   *time.Timer
		flush   <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	emit := func() bool {
		ev := *pending
		pending = nil
		flush = nil
		select {
		case w.events <- ev:
			return true
		case <-w.closing:
			return false
		}
	}

	for {
		select {
		case <-w.closing:
			return

		case raw, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			op, ok := w.classify(raw)
			if !ok {
				continue
			}
			if pending == nil {
				pending = &Event{Path: w.path, Op: op}
			} else {
				pending.Op = fold(pending.Op, op)
			}
			pending.Raw++

			if w.coalesce <= 0 {
				if !emit() {
					return
				}
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.coalesce)
			} else {
				timer.Reset(w.coalesce)
			}
			flush = timer.C

		case <-flush:
			if !emit() {
				return
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			case <-w.closing:
				return
			}
		}
	}
}

// classify keeps events on the watched file and maps them to an Op.
// A rename away from the path counts as removal; a rename onto it arrives as Create.
func (w *Watcher) classify(raw fsnotify.Event) (Op, bool) {
	if filepath.Clean(raw.Name) != w.path {
		abs, err := filepath.Abs(raw.Name)
		if err != nil || abs != w.path {
			return 0, false
		}
	}

	switch {
	case raw.Has(fsnotify.Create):
		return Created, true
	case raw.Has(fsnotify.Remove), raw.Has(fsnotify.Rename):
		return Removed, true
	case raw.Has(fsnotify.Write):
		return Changed, true
	}
	return 0, false
}
