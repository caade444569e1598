// Package storage defines the Storage Adapter contract (§6.1): the
// narrow set of byte-level operations the File System Core uses against
// whatever actually holds the hashed path hierarchy, independent of
// whether that is a local filesystem, an object store, or memory.
package storage

import (
	"context"
	"io"
)

// EntryKind identifies what, if anything, exists at a path.
type EntryKind int

const (
	// NoEntry means nothing exists at the queried path.
	NoEntry EntryKind = iota
	// FileEntry means the path names a file.
	FileEntry
	// FolderEntry means the path names a folder.
	FolderEntry
)

// Adapter is the byte-level backing store the File System Core drives.
// Every path it receives is already hashed; the adapter never sees
// plaintext names (§6.1).
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Adapter interface {
	// Exists reports what kind of entry, if any, is at path.
	Exists(ctx context.Context, path string) (EntryKind, error)

	// CreateFolder creates an empty folder at folderPath. It is an error
	// if folderPath already exists.
	CreateFolder(ctx context.Context, folderPath string) error

	// CreateFile creates an empty file at filePath with no data written
	// yet. It is an error if filePath already exists.
	CreateFile(ctx context.Context, filePath string) error

	// HasFileData reports whether filePath currently has a data blob
	// associated with it (§8: zero-byte files have none).
	HasFileData(ctx context.Context, filePath string) (bool, error)

	// GetFileData opens filePath's data for streaming read. The caller
	// must Close the returned reader.
	GetFileData(ctx context.Context, filePath string) (io.ReadCloser, error)

	// SetFileData replaces filePath's data with the contents of data,
	// consuming data until io.EOF.
	SetFileData(ctx context.Context, filePath string, data io.Reader) error

	// RenameFolder changes folderPath's leaf name to newName in place,
	// without touching its descendants' own identity.
	RenameFolder(ctx context.Context, folderPath, newName string) error

	// RenameFile changes filePath's leaf name to newName in place.
	RenameFile(ctx context.Context, filePath, newName string) error

	// HasNativeRenaming reports whether Rename{Folder,File} perform an
	// atomic, in-place rename rather than a copy-then-delete emulation.
	// The core uses this to choose its recovery strategy around renames.
	HasNativeRenaming() bool

	// ListFolder returns the full set of immediate child paths of
	// folderPath, in no particular order.
	ListFolder(ctx context.Context, folderPath string) ([]string, error)

	// DeleteFolder removes folderPath and everything under it. If
	// okIfNotExists is true, a missing folderPath is not an error.
	DeleteFolder(ctx context.Context, folderPath string, okIfNotExists bool) error

	// DeleteFile removes filePath. If okIfNotExists is true, a missing
	// filePath is not an error.
	DeleteFile(ctx context.Context, filePath string, okIfNotExists bool) error
}
