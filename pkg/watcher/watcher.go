// Package watcher drives continuous reconciliation from filesystem events.
//
// A Coordinator tracks each configured source directory through a small
// state machine (unwatched or watched). A periodic tick registers
// directories that have appeared and unregisters ones that have vanished,
// so a source directory created after startup is picked up within one poll
// interval. Create and remove notifications from watched directories are
// funneled through a bounded queue into the coordinator's single loop, so
// reconciliation passes never run concurrently.
package watcher

import (
	"context"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/applinker/pkg/errors"
	"github.com/arthur-debert/applinker/pkg/logging"
	"github.com/arthur-debert/applinker/pkg/types"
)

// DefaultPollInterval is how often directory existence is re-checked.
const DefaultPollInterval = 5 * time.Second

// eventQueueSize bounds the queue between fsnotify's delivery goroutine
// and the coordinator loop. Reconciliation is a full rescan, so dropping
// events while the queue is full loses nothing.
const eventQueueSize = 64

// dirState is the watch state of one configured source directory.
type dirState int

const (
	stateUnwatched dirState = iota
	stateWatched
)

// ReconcileFunc runs one full scan-and-reconcile pass.
type ReconcileFunc func(ctx context.Context)

// Coordinator watches source directories and triggers reconciliation.
type Coordinator struct {
	dirs      []string
	interval  time.Duration
	reconcile ReconcileFunc
	log       zerolog.Logger

	watcher *fsnotify.Watcher
	states  map[string]dirState
	events  chan types.Event
}

// New creates a Coordinator over dirs. Every relevant event and every
// watch-set change triggers reconcile.
func New(dirs []string, interval time.Duration, reconcile ReconcileFunc, logger zerolog.Logger) (*Coordinator, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrWatchRegister, "creating filesystem watcher")
	}

	states := make(map[string]dirState, len(dirs))
	for _, dir := range dirs {
		states[dir] = stateUnwatched
	}

	return &Coordinator{
		dirs:      dirs,
		interval:  interval,
		reconcile: reconcile,
		log:       logging.Component(logger, "watcher"),
		watcher:   w,
		states:    states,
		events:    make(chan types.Event, eventQueueSize),
	}, nil
}

// Run blocks until ctx is cancelled, reconciling once at startup and then
// on every queued event. On cancellation all watches are removed and the
// notification subsystem is released.
func (c *Coordinator) Run(ctx context.Context) error {
	defer func() { _ = c.watcher.Close() }()

	go c.pump(ctx)

	c.refreshWatches()
	c.reconcile(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.unwatchAll()
			c.log.Info().Msg("watch stopped")
			return nil

		case <-ticker.C:
			if c.refreshWatches() {
				c.reconcile(ctx)
			}

		case ev := <-c.events:
			c.log.Debug().Stringer("kind", ev.Kind).Str("path", ev.Path).Msg("change detected")
			c.reconcile(ctx)
		}
	}
}

// pump translates fsnotify notifications into queued events. The queue is
// bounded and sends never block: a full queue means a reconcile is already
// pending, and the pass rescans everything anyway.
func (c *Coordinator) pump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			kind, relevant := eventKind(ev.Op)
			if !relevant {
				continue
			}
			select {
			case c.events <- types.Event{Kind: kind, Path: ev.Name}:
			default:
			}

		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.log.Warn().Err(err).Msg("watch error")
		}
	}
}

func eventKind(op fsnotify.Op) (types.EventKind, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return types.EventCreate, true
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return types.EventRemove, true
	default:
		return 0, false
	}
}

// refreshWatches advances the per-directory state machine: directories
// that now exist become watched, directories that vanished become
// unwatched. It reports whether the watch set changed.
func (c *Coordinator) refreshWatches() bool {
	changed := false

	for _, dir := range c.dirs {
		exists := dirExists(dir)

		switch c.states[dir] {
		case stateUnwatched:
			if !exists {
				continue
			}
			if err := c.watcher.Add(dir); err != nil {
				c.log.Warn().
					Err(errors.Wrap(err, errors.ErrWatchRegister, "registering watch")).
					Str("dir", dir).
					Msg("cannot watch directory")
				continue
			}
			c.states[dir] = stateWatched
			c.log.Info().Str("dir", dir).Msg("watching directory")
			changed = true

		case stateWatched:
			if exists {
				continue
			}
			// The kernel drops the watch with the directory; Remove just
			// cleans up fsnotify's bookkeeping.
			if err := c.watcher.Remove(dir); err != nil {
				c.log.Debug().Err(err).Str("dir", dir).Msg("unregistering vanished directory")
			}
			c.states[dir] = stateUnwatched
			c.log.Info().Str("dir", dir).Msg("directory vanished, watch removed")
			changed = true
		}
	}

	return changed
}

func (c *Coordinator) unwatchAll() {
	for dir, state := range c.states {
		if state != stateWatched {
			continue
		}
		if err := c.watcher.Remove(dir); err != nil {
			c.log.Debug().Err(err).Str("dir", dir).Msg("removing watch on shutdown")
		}
		c.states[dir] = stateUnwatched
	}
}

// dirExists stats the real filesystem rather than going through types.FS:
// the coordinator exists to mirror what fsnotify watches, and fsnotify only
// ever operates on the OS filesystem.
func dirExists(dir string) bool {
	fi, err := os.Stat(dir)
	return err == nil && fi.IsDir()
}
