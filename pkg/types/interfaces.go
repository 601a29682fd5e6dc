package types

import "io/fs"

// FS is the filesystem interface used throughout applinker.
// The reconciler and scanner only ever touch the filesystem through it,
// which keeps both testable against a temp directory or a fake.
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)

	// Directory operations
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink operations
	Symlink(oldname, newname string) error

	// Removal
	Remove(name string) error
}
