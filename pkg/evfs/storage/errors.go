package storage

import "errors"

// Sentinel errors every Adapter implementation returns for the
// conditions the File System Core needs to distinguish, grounded on the
// dittofs payload store's sentinel-error pattern (§6.1).
var (
	// ErrNotExist indicates the queried path does not exist.
	ErrNotExist = errors.New("storage: path does not exist")

	// ErrAlreadyExists indicates a create operation targeted a path that
	// is already occupied.
	ErrAlreadyExists = errors.New("storage: path already exists")

	// ErrNotAFolder indicates an operation expecting a folder found a
	// file, or vice versa.
	ErrNotAFolder = errors.New("storage: path is not a folder")

	// ErrNotAFile indicates an operation expecting a file found a
	// folder, or vice versa.
	ErrNotAFile = errors.New("storage: path is not a file")

	// ErrClosed indicates the adapter has been closed and can no longer
	// serve requests.
	ErrClosed = errors.New("storage: adapter closed")

	// ErrRenameNotSupported indicates the adapter has no native rename
	// primitive; callers must check HasNativeRenaming before relying on
	// Rename{Folder,File} and emulate renames themselves otherwise.
	ErrRenameNotSupported = errors.New("storage: native rename not supported")
)
