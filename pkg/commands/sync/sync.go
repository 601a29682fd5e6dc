// Package sync wires the scanner and reconciler into a runnable pass.
//
// One-shot mode builds a Syncer and runs a single pass; watch mode hands
// the Syncer's Sync method to the watch coordinator as its reconcile
// callback.
package sync

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/applinker/pkg/errors"
	"github.com/arthur-debert/applinker/pkg/logging"
	"github.com/arthur-debert/applinker/pkg/naming"
	"github.com/arthur-debert/applinker/pkg/notify"
	"github.com/arthur-debert/applinker/pkg/reconciler"
	"github.com/arthur-debert/applinker/pkg/scanner"
	"github.com/arthur-debert/applinker/pkg/types"
)

// Options defines the dependencies and settings for a Syncer.
type Options struct {
	// FS is the filesystem everything reads and mutates through.
	FS types.FS
	// LinkDir is the directory holding the managed symlinks. It must
	// exist; a missing link directory is a fatal startup error.
	LinkDir string
	// SrcDirs are the source directories scanned for packages.
	SrcDirs []string
	// Mode selects binary or desktop scanning.
	Mode types.ScanMode
	// Resolver carries the naming options (prefix, postfix, lowercase).
	Resolver naming.Resolver
	// Notifier delivers best-effort change notifications.
	Notifier notify.Notifier
	// Logger is the root logger components derive from.
	Logger zerolog.Logger
}

// Syncer runs full scan-and-reconcile passes.
type Syncer struct {
	scanner    *scanner.Scanner
	reconciler *reconciler.Reconciler
	srcDirs    []string
	log        zerolog.Logger
}

// New validates opts and builds a Syncer.
func New(opts Options) (*Syncer, error) {
	fi, err := opts.FS.Stat(opts.LinkDir)
	if err != nil || !fi.IsDir() {
		return nil, errors.Newf(errors.ErrLinkDirMissing, "link directory %s does not exist", opts.LinkDir)
	}

	return &Syncer{
		scanner:    scanner.New(opts.FS, opts.Resolver, opts.Mode, opts.Logger),
		reconciler: reconciler.New(opts.FS, opts.LinkDir, opts.Resolver, opts.Notifier, opts.Logger),
		srcDirs:    opts.SrcDirs,
		log:        logging.Component(opts.Logger, "sync"),
	}, nil
}

// Sync runs one full pass and reports whether anything changed.
func (s *Syncer) Sync(ctx context.Context) bool {
	entries := s.scanner.Scan(s.srcDirs)
	changed := s.reconciler.Reconcile(ctx, entries)
	s.log.Info().Int("packages", len(entries)).Bool("changed", changed).Msg("sync pass finished")
	return changed
}

// Run performs a single synchronization pass. It returns whether the pass
// changed anything, so callers can report "nothing to do".
func Run(ctx context.Context, opts Options) (bool, error) {
	syncer, err := New(opts)
	if err != nil {
		return false, err
	}
	return syncer.Sync(ctx), nil
}
