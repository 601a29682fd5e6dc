// Package scanner enumerates package entries from source directories.
//
// Two scan modes exist. Binary mode treats every regular file directly
// inside a source directory as one package, named after the file. Desktop
// mode parses .desktop descriptor files for a friendly display name,
// falling back to the identifier when the descriptor has none.
//
// Scanning never recurses and never fails as a whole: missing directories
// are skipped silently (they may simply not exist yet) and unreadable
// descriptors are logged and skipped.
package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/applinker/pkg/errors"
	"github.com/arthur-debert/applinker/pkg/logging"
	"github.com/arthur-debert/applinker/pkg/naming"
	"github.com/arthur-debert/applinker/pkg/types"
)

// DesktopExt is the descriptor file extension recognized in desktop mode.
const DesktopExt = ".desktop"

// nameKey is the descriptor key carrying the friendly display name.
const nameKey = "Name="

// Scanner enumerates package entries from an ordered list of source
// directories.
type Scanner struct {
	fs       types.FS
	resolver naming.Resolver
	mode     types.ScanMode
	log      zerolog.Logger
}

// New creates a Scanner reading through fs in the given mode.
func New(fs types.FS, resolver naming.Resolver, mode types.ScanMode, logger zerolog.Logger) *Scanner {
	return &Scanner{
		fs:       fs,
		resolver: resolver,
		mode:     mode,
		log:      logging.Component(logger, "scanner"),
	}
}

// Scan returns the package entries currently present under dirs, sorted by
// source path so successive passes see a stable order.
func (s *Scanner) Scan(dirs []string) []types.Entry {
	var entries []types.Entry

	for _, dir := range dirs {
		dirEntries, err := s.fs.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				s.log.Debug().Str("dir", dir).Msg("source directory does not exist, skipping")
			} else {
				s.log.Warn().Err(err).Str("dir", dir).Msg("cannot read source directory, skipping")
			}
			continue
		}

		for _, de := range dirEntries {
			if de.IsDir() {
				continue
			}
			entry, ok := s.entryFor(dir, de.Name())
			if ok {
				entries = append(entries, entry)
			}
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].SourcePath < entries[j].SourcePath
	})

	s.log.Debug().Int("count", len(entries)).Msg("scan complete")
	return entries
}

func (s *Scanner) entryFor(dir, name string) (types.Entry, bool) {
	sourcePath := filepath.Join(dir, name)

	if s.mode == types.ScanModeDesktop {
		if !strings.HasSuffix(name, DesktopExt) {
			return types.Entry{}, false
		}
		identifier := strings.TrimSuffix(name, DesktopExt)
		friendly, err := s.friendlyName(sourcePath)
		if err != nil {
			s.log.Warn().Err(err).Str("path", sourcePath).Msg("skipping unreadable descriptor")
			return types.Entry{}, false
		}
		return types.Entry{
			Identifier:   identifier,
			ResolvedName: s.resolver.Resolve(identifier, friendly),
			SourcePath:   sourcePath,
		}, true
	}

	return types.Entry{
		Identifier:   name,
		ResolvedName: s.resolver.Resolve(name, ""),
		SourcePath:   sourcePath,
	}, true
}

// friendlyName extracts the value of the first Name= line in a descriptor.
// An empty result means the descriptor carries no friendly name and the
// caller falls back to identifier-derived naming.
func (s *Scanner) friendlyName(path string) (string, error) {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrDescriptorRead, "reading descriptor %s", path)
	}

	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, nameKey) {
			return strings.TrimSpace(strings.TrimPrefix(line, nameKey)), nil
		}
	}
	return "", nil
}
