package types

import (
	"context"
	"io/fs"
)

// FS is the filesystem collaborator used by the cleanup engine and by hosts
// that emit assets themselves.
type FS interface {
	// Directory listing, sorted by filename
	ReadDir(name string) ([]fs.DirEntry, error)

	// File operations
	Stat(name string) (fs.FileInfo, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	MkdirAll(path string, perm fs.FileMode) error

	// Remove deletes a single file
	Remove(name string) error
}

// VersionSource yields a short commit identifier for the current tree.
type VersionSource interface {
	// ShortHash returns an abbreviated commit hash of at least length
	// characters. It fails when no version-control metadata is available.
	ShortHash(ctx context.Context, length int) (string, error)
}
