// Package paths provides the platform default locations applinker uses.
//
// It implements XDG Base Directory lookups for the default package source
// directories and the user configuration file.
package paths

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// AppDirName is the directory name for applinker-specific files.
const AppDirName = "applinker"

// flatpakExports is the path under a data directory where flatpak
// exports installed application binaries.
var flatpakExports = filepath.Join("flatpak", "exports", "bin")

// DefaultSourceDirs returns the standard pair of install locations
// scanned when no source directories are configured: the system-wide
// flatpak export directory and the per-user one.
func DefaultSourceDirs() []string {
	return []string{
		filepath.Join("/var", "lib", flatpakExports),
		filepath.Join(xdg.DataHome, flatpakExports),
	}
}

// ConfigFileCandidates returns the config file paths probed at startup,
// in priority order. The first one that exists wins.
func ConfigFileCandidates() []string {
	dir := filepath.Join(xdg.ConfigHome, AppDirName)
	return []string{
		filepath.Join(dir, "applinker.toml"),
		filepath.Join(dir, "applinker.yaml"),
	}
}
