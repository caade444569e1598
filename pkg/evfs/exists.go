package evfs

import (
	"context"

	"github.com/marmos91/veilfs/pkg/evfs/storage"
	"github.com/marmos91/veilfs/pkg/evfs/vpath"
)

// EntryKind mirrors storage.EntryKind at the Core's public boundary, so
// callers never need to import the storage package just to interpret
// Exists' result.
type EntryKind int

const (
	NoEntry EntryKind = iota
	FileEntry
	FolderEntry
)

// Exists implements §4.8.2: resolves path under a read turn and reports
// whether it names a file, a folder, or neither.
func (c *Core) Exists(ctx context.Context, path string) (EntryKind, error) {
	p, err := vpath.Parse(path)
	if err != nil {
		return NoEntry, newError(ErrInvalidPath, path, err.Error(), err)
	}
	ps, err := vpath.Resolve(p, c.hasher.Hash)
	if err != nil {
		return NoEntry, wrapCrypto(path, err)
	}

	turn, err := c.locks.GetTurn(ctx, ps.Unhashed.String(), false)
	if err != nil {
		return NoEntry, wrapAborted(path)
	}
	defer turn.End()

	storageKind, err := c.tree.Exists(ctx, ps.Hashed.String())
	if err != nil {
		return NoEntry, translateStorageErr(path, err)
	}

	switch storageKind {
	case storage.FolderEntry:
		return FolderEntry, nil
	case storage.FileEntry:
		return FileEntry, nil
	default:
		return NoEntry, nil
	}
}

// ExistsFile reports whether path currently names a file.
func (c *Core) ExistsFile(ctx context.Context, path string) (bool, error) {
	kind, err := c.Exists(ctx, path)
	if err != nil {
		return false, err
	}
	return kind == FileEntry, nil
}

// ExistsFolder reports whether path currently names a folder.
func (c *Core) ExistsFolder(ctx context.Context, path string) (bool, error) {
	kind, err := c.Exists(ctx, path)
	if err != nil {
		return false, err
	}
	return kind == FolderEntry, nil
}
