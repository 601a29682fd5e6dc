package types

// ScanMode selects how source directories are interpreted.
type ScanMode string

const (
	// ScanModeBinary treats every regular file in a source directory as a
	// package entry named after the file itself.
	ScanModeBinary ScanMode = "binary"

	// ScanModeDesktop treats files with the .desktop extension as package
	// descriptors carrying a friendly display name.
	ScanModeDesktop ScanMode = "desktop"
)

// Entry represents one discoverable installed package.
type Entry struct {
	// Identifier is the raw fully-qualified name (reverse-domain form,
	// e.g. "org.freecad.FreeCAD") or the filename stem that backs it.
	Identifier string

	// ResolvedName is the human-friendly name for this entry. It comes
	// from descriptor metadata when available, otherwise from the last
	// dot-separated segment of the identifier.
	ResolvedName string

	// SourcePath is the absolute path to the file or descriptor backing
	// this entry. It is the identity key for reconciliation.
	SourcePath string
}

// Key returns the identity key used for set membership between scans.
func (e Entry) Key() string {
	return e.SourcePath
}
