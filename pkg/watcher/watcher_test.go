package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/applinker/pkg/types"
)

func TestRefreshWatchesStateMachine(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "sources")

	c, err := New([]string{dir}, time.Second, func(context.Context) {}, zerolog.Nop())
	require.NoError(t, err)
	defer func() { _ = c.watcher.Close() }()

	// Directory does not exist yet: nothing to register, no error.
	assert.False(t, c.refreshWatches())
	assert.Equal(t, stateUnwatched, c.states[dir])

	// Directory appears: next refresh registers it.
	require.NoError(t, os.Mkdir(dir, 0o755))
	assert.True(t, c.refreshWatches())
	assert.Equal(t, stateWatched, c.states[dir])

	// Already watched: refresh is a no-op.
	assert.False(t, c.refreshWatches())

	// Directory vanishes: next refresh unregisters it.
	require.NoError(t, os.Remove(dir))
	assert.True(t, c.refreshWatches())
	assert.Equal(t, stateUnwatched, c.states[dir])
}

func TestEventKind(t *testing.T) {
	tests := []struct {
		name     string
		op       fsnotify.Op
		want     types.EventKind
		relevant bool
	}{
		{"create", fsnotify.Create, types.EventCreate, true},
		{"remove", fsnotify.Remove, types.EventRemove, true},
		{"rename counts as remove", fsnotify.Rename, types.EventRemove, true},
		{"chmod is ignored", fsnotify.Chmod, 0, false},
		{"write is ignored", fsnotify.Write, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, relevant := eventKind(tt.op)
			assert.Equal(t, tt.relevant, relevant)
			if relevant {
				assert.Equal(t, tt.want, kind)
			}
		})
	}
}

func TestRunReconcilesOnCreateEvent(t *testing.T) {
	dir := t.TempDir()

	var passes atomic.Int64
	c, err := New([]string{dir}, 50*time.Millisecond, func(context.Context) {
		passes.Add(1)
	}, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	// Startup pass.
	require.Eventually(t, func() bool { return passes.Load() >= 1 },
		2*time.Second, 10*time.Millisecond)

	before := passes.Load()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "org.example.App"), []byte{}, 0o755))

	require.Eventually(t, func() bool { return passes.Load() > before },
		5*time.Second, 10*time.Millisecond, "a create event must trigger a pass")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

func TestRunPicksUpLateDirectory(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "appears-later")

	var passes atomic.Int64
	c, err := New([]string{dir}, 30*time.Millisecond, func(context.Context) {
		passes.Add(1)
	}, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool { return passes.Load() >= 1 },
		2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Mkdir(dir, 0o755))

	// Within one poll interval the directory becomes watched and a pass runs.
	before := passes.Load()
	require.Eventually(t, func() bool { return passes.Load() > before },
		5*time.Second, 10*time.Millisecond, "watch-set change must trigger a pass")

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}
