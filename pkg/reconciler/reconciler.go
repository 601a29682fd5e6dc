// Package reconciler keeps the link directory in agreement with the
// packages currently present in the source directories.
//
// A reconciliation pass removes dangling links, then creates a link for
// every scanned entry that does not already have one. Removal is driven
// entirely by dangling-link detection against the live filesystem rather
// than by set difference, which keeps the pass self-healing against
// externally deleted sources or links.
package reconciler

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/applinker/pkg/errors"
	"github.com/arthur-debert/applinker/pkg/logging"
	"github.com/arthur-debert/applinker/pkg/naming"
	"github.com/arthur-debert/applinker/pkg/notify"
	"github.com/arthur-debert/applinker/pkg/types"
)

// Reconciler owns the link directory and the known set from the most
// recent pass. It is not safe for concurrent use; callers serialize
// passes through a single worker.
type Reconciler struct {
	fs       types.FS
	linkDir  string
	resolver naming.Resolver
	notifier notify.Notifier
	log      zerolog.Logger

	// known holds the entries of the most recent pass, keyed by source
	// path. It is context for the next pass, not a deletion driver.
	known map[string]types.Entry
}

// New creates a Reconciler managing linkDir through fsys.
func New(fsys types.FS, linkDir string, resolver naming.Resolver, notifier notify.Notifier, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		fs:       fsys,
		linkDir:  linkDir,
		resolver: resolver,
		notifier: notifier,
		log:      logging.Component(logger, "reconciler"),
		known:    make(map[string]types.Entry),
	}
}

// Reconcile runs one full pass over entries and the link directory.
// It returns true if any link was created or removed.
//
// Per-item failures (a single symlink that cannot be created, a naming
// collision between two entries) are logged and do not abort the pass.
func (r *Reconciler) Reconcile(ctx context.Context, entries []types.Entry) bool {
	changed := false

	if r.sweepDangling(ctx) {
		changed = true
	}
	if r.createMissing(ctx, entries) {
		changed = true
	}

	r.known = make(map[string]types.Entry, len(entries))
	for _, e := range entries {
		r.known[e.Key()] = e
	}

	r.log.Debug().Int("entries", len(entries)).Bool("changed", changed).Msg("pass complete")
	return changed
}

// Known returns the entries retained from the most recent pass.
func (r *Reconciler) Known() map[string]types.Entry {
	return r.known
}

// createMissing links every entry that does not already have a live
// symlink at its computed path. An existing symlink with a live target
// satisfies an entry regardless of where it points; stale names produced
// by changed prefix or case settings are deliberately left alone.
func (r *Reconciler) createMissing(ctx context.Context, entries []types.Entry) bool {
	changed := false
	claimed := make(map[string]string, len(entries))

	for _, entry := range entries {
		linkPath := filepath.Join(r.linkDir, r.resolver.Decorate(entry.ResolvedName))

		if prev, ok := claimed[linkPath]; ok {
			collision := errors.New(errors.ErrNameCollision, "two entries resolve to the same link name").
				WithDetail("link", linkPath).
				WithDetail("kept", prev).
				WithDetail("dropped", entry.SourcePath)
			r.log.Warn().Err(collision).Msg("naming collision")
			continue
		}
		claimed[linkPath] = entry.SourcePath

		if r.satisfied(linkPath) {
			continue
		}

		if err := r.fs.Symlink(entry.SourcePath, linkPath); err != nil {
			r.log.Warn().
				Err(errors.Wrap(err, errors.ErrSymlinkCreate, "creating link")).
				Str("link", linkPath).
				Str("target", entry.SourcePath).
				Msg("cannot create link")
			continue
		}

		r.log.Info().Str("link", linkPath).Str("target", entry.SourcePath).Msg("link created")
		r.sendNotification(ctx, "Application linked", entry.ResolvedName)
		changed = true
	}

	return changed
}

// sweepDangling removes every symlink in the link directory whose target
// no longer exists. Non-symlink entries are left untouched.
func (r *Reconciler) sweepDangling(ctx context.Context) bool {
	changed := false

	dirEntries, err := r.fs.ReadDir(r.linkDir)
	if err != nil {
		r.log.Error().Err(err).Str("dir", r.linkDir).Msg("cannot read link directory")
		return false
	}

	for _, de := range dirEntries {
		if de.Type()&fs.ModeSymlink == 0 {
			continue
		}
		linkPath := filepath.Join(r.linkDir, de.Name())
		if _, err := r.fs.Stat(linkPath); err == nil {
			continue
		}

		if err := r.fs.Remove(linkPath); err != nil {
			r.log.Warn().
				Err(errors.Wrap(err, errors.ErrLinkRemove, "removing broken link")).
				Str("link", linkPath).
				Msg("cannot remove broken link")
			continue
		}

		r.log.Info().Str("link", linkPath).Msg("broken link removed")
		r.sendNotification(ctx, "Application unlinked", de.Name())
		changed = true
	}

	return changed
}

// satisfied reports whether linkPath already holds a symlink with a live
// target. Existence is the only criterion; target equality is not checked.
func (r *Reconciler) satisfied(linkPath string) bool {
	fi, err := r.fs.Lstat(linkPath)
	if err != nil || fi.Mode()&os.ModeSymlink == 0 {
		return false
	}
	_, err = r.fs.Stat(linkPath)
	return err == nil
}

func (r *Reconciler) sendNotification(ctx context.Context, summary, body string) {
	if err := r.notifier.Notify(ctx, summary, body); err != nil {
		r.log.Warn().Err(err).Msg("notification failed")
	}
}
