// Package tree implements the Tree Store (§4.6): a thin façade over the
// Storage Adapter, rooted at a sibling hashed subfolder of the volume
// root, holding the hierarchical skeleton (hashed folders and the
// `.folder`/file sidecars inside them) and nothing else. Content bytes
// never live here; see pkg/evfs/lookup for that.
package tree

import (
	"context"
	"io"
	"strings"

	"github.com/marmos91/veilfs/pkg/evfs/storage"
)

// Store addresses every method by a hashed path (the Hashed side of a
// vpath.PathSet), relative to the volume root; it prepends its own root
// prefix before delegating to the adapter.
type Store struct {
	adapter storage.Adapter
	root    string // e.g. "/<base32(H("root"))>/<base32(H("tree"))>/"
}

// New constructs a Tree Store rooted at root, which must be an
// already-hashed folder path (trailing slash required).
func New(adapter storage.Adapter, root string) *Store {
	if !strings.HasSuffix(root, "/") {
		root += "/"
	}
	return &Store{adapter: adapter, root: root}
}

// Init ensures the tree root folder exists, creating it if absent.
func (s *Store) Init(ctx context.Context) error {
	kind, err := s.adapter.Exists(ctx, s.root)
	if err != nil {
		return err
	}
	if kind != storage.NoEntry {
		return nil
	}
	if err := s.adapter.CreateFolder(ctx, s.root); err != nil && err != storage.ErrAlreadyExists {
		return err
	}
	return nil
}

func (s *Store) join(hashedPath string) string {
	return s.root + strings.TrimPrefix(hashedPath, "/")
}

// Exists reports whether hashedPath is a file, a folder, or absent.
func (s *Store) Exists(ctx context.Context, hashedPath string) (storage.EntryKind, error) {
	return s.adapter.Exists(ctx, s.join(hashedPath))
}

// CreateFolder creates a hashed folder directory (not its sidecar).
func (s *Store) CreateFolder(ctx context.Context, hashedPath string) error {
	return s.adapter.CreateFolder(ctx, s.join(hashedPath))
}

// CreateFile creates a sidecar entry (a `.folder` record or a file
// record) at hashedPath.
func (s *Store) CreateFile(ctx context.Context, hashedPath string) error {
	return s.adapter.CreateFile(ctx, s.join(hashedPath))
}

// HasRecord reports whether a sidecar at hashedPath already has record
// bytes set.
func (s *Store) HasRecord(ctx context.Context, hashedPath string) (bool, error) {
	return s.adapter.HasFileData(ctx, s.join(hashedPath))
}

// GetRecord returns the raw (envelope-encrypted) record bytes at
// hashedPath. The caller is responsible for closing the reader.
func (s *Store) GetRecord(ctx context.Context, hashedPath string) (io.ReadCloser, error) {
	return s.adapter.GetFileData(ctx, s.join(hashedPath))
}

// SetRecord writes the raw (envelope-encrypted) record bytes at
// hashedPath, overwriting any previous value.
func (s *Store) SetRecord(ctx context.Context, hashedPath string, data io.Reader) error {
	return s.adapter.SetFileData(ctx, s.join(hashedPath), data)
}

// HasNativeRenaming delegates to the underlying adapter: the Core
// consults this before choosing between a native rename and an emulated
// copy-then-delete recovery path (§4.8.9).
func (s *Store) HasNativeRenaming() bool {
	return s.adapter.HasNativeRenaming()
}

// RenameFolder renames a hashed folder directory in place.
func (s *Store) RenameFolder(ctx context.Context, hashedPath, newName string) error {
	return s.adapter.RenameFolder(ctx, s.join(hashedPath), newName)
}

// RenameFile renames a hashed sidecar entry in place.
func (s *Store) RenameFile(ctx context.Context, hashedPath, newName string) error {
	return s.adapter.RenameFile(ctx, s.join(hashedPath), newName)
}

// ListFolder enumerates the immediate hashed children of hashedPath,
// returning paths relative to the Tree Store root (i.e. still hashed,
// but with the store's own root prefix stripped).
func (s *Store) ListFolder(ctx context.Context, hashedPath string) ([]string, error) {
	children, err := s.adapter.ListFolder(ctx, s.join(hashedPath))
	if err != nil {
		return nil, err
	}
	out := make([]string, len(children))
	for i, c := range children {
		out[i] = "/" + strings.TrimPrefix(c, s.root)
	}
	return out, nil
}

// DeleteFolder deletes a hashed folder directory.
func (s *Store) DeleteFolder(ctx context.Context, hashedPath string, okIfNotExists bool) error {
	return s.adapter.DeleteFolder(ctx, s.join(hashedPath), okIfNotExists)
}

// DeleteFile deletes a hashed sidecar entry.
func (s *Store) DeleteFile(ctx context.Context, hashedPath string, okIfNotExists bool) error {
	return s.adapter.DeleteFile(ctx, s.join(hashedPath), okIfNotExists)
}
