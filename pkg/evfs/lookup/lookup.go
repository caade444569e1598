// Package lookup implements the Lookup Store (§4.7): a thin façade over
// the Storage Adapter, rooted at a sibling hashed subfolder of the volume
// root, holding two kinds of content under a shared two-level fan-out
// scheme: content blobs (keyed by a hash of a file's data uid and chunk
// index) and name-recovery sidecars (keyed by a hash of an already-hashed
// Tree Store component, letting listFolder recover the plaintext name
// behind a hashed directory entry). Separating this from the Tree Store
// keeps metadata sidecar size uncorrelated with content size (§3).
package lookup

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"strings"

	"github.com/marmos91/veilfs/pkg/evfs/storage"
)

// Hasher is the subset of naming.Hasher the Lookup Store depends on. A
// narrow local interface (rather than importing naming.Hasher directly)
// keeps this package usable with a plain-text stand-in hasher in tests
// without an import cycle.
type Hasher interface {
	HashPair(a, b []byte) string
}

const (
	fanOutPrefixLen = 2
	nameSuffix      = ".name"
	dataSuffix      = ".data"
)

// Store addresses blobs and name records by fan-out key, relative to the
// volume root; it prepends its own root prefix before delegating to the
// adapter.
type Store struct {
	adapter storage.Adapter
	hasher  Hasher
	root    string // e.g. "/<base32(H("root"))>/<base32(H("lookup"))>/"
}

// New constructs a Lookup Store rooted at root, which must be an
// already-hashed folder path (trailing slash required).
func New(adapter storage.Adapter, hasher Hasher, root string) *Store {
	if !strings.HasSuffix(root, "/") {
		root += "/"
	}
	return &Store{adapter: adapter, hasher: hasher, root: root}
}

// Init ensures the lookup root folder exists, creating it if absent.
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

// fanOut splits a hash token into its two fan-out directory components
// and the remaining leaf token (§4.7: first two characters select the
// level-1 directory, next two the level-2 directory).
func fanOut(token string) (dir1, dir2, rest string) {
	dir1 = token[:fanOutPrefixLen]
	dir2 = token[fanOutPrefixLen : 2*fanOutPrefixLen]
	rest = token[2*fanOutPrefixLen:]
	return
}

func (s *Store) leafDir(token string) string {
	dir1, dir2, _ := fanOut(token)
	return s.root + dir1 + "/" + dir2 + "/"
}

func (s *Store) ensureFanOutDirs(ctx context.Context, token string) error {
	dir1, dir2, _ := fanOut(token)
	lvl1 := s.root + dir1 + "/"
	if kind, err := s.adapter.Exists(ctx, lvl1); err != nil {
		return err
	} else if kind == storage.NoEntry {
		if err := s.adapter.CreateFolder(ctx, lvl1); err != nil && err != storage.ErrAlreadyExists {
			return err
		}
	}
	lvl2 := lvl1 + dir2 + "/"
	if kind, err := s.adapter.Exists(ctx, lvl2); err != nil {
		return err
	} else if kind == storage.NoEntry {
		if err := s.adapter.CreateFolder(ctx, lvl2); err != nil && err != storage.ErrAlreadyExists {
			return err
		}
	}
	return nil
}

func indexBytes(index uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, index)
	return buf
}

func (s *Store) blobPath(uid []byte, chunkIndex uint64) string {
	token := s.hasher.HashPair(uid, indexBytes(chunkIndex))
	_, _, rest := fanOut(token)
	return s.leafDir(token) + rest + dataSuffix
}

// PutBlob creates and writes the content blob for (uid, chunkIndex),
// creating its fan-out directories if needed.
func (s *Store) PutBlob(ctx context.Context, uid []byte, chunkIndex uint64, data io.Reader) error {
	token := s.hasher.HashPair(uid, indexBytes(chunkIndex))
	if err := s.ensureFanOutDirs(ctx, token); err != nil {
		return err
	}

	path := s.blobPath(uid, chunkIndex)
	if kind, err := s.adapter.Exists(ctx, path); err != nil {
		return err
	} else if kind == storage.NoEntry {
		if err := s.adapter.CreateFile(ctx, path); err != nil && err != storage.ErrAlreadyExists {
			return err
		}
	}
	return s.adapter.SetFileData(ctx, path, data)
}

// GetBlob returns a reader over the content blob for (uid, chunkIndex).
func (s *Store) GetBlob(ctx context.Context, uid []byte, chunkIndex uint64) (io.ReadCloser, error) {
	return s.adapter.GetFileData(ctx, s.blobPath(uid, chunkIndex))
}

// HasBlob reports whether a blob exists for (uid, chunkIndex).
func (s *Store) HasBlob(ctx context.Context, uid []byte, chunkIndex uint64) (bool, error) {
	kind, err := s.adapter.Exists(ctx, s.blobPath(uid, chunkIndex))
	if err != nil {
		return false, err
	}
	return kind == storage.FileEntry, nil
}

// DeleteBlob deletes the content blob for (uid, chunkIndex).
func (s *Store) DeleteBlob(ctx context.Context, uid []byte, chunkIndex uint64, okIfNotExists bool) error {
	return s.adapter.DeleteFile(ctx, s.blobPath(uid, chunkIndex), okIfNotExists)
}

func (s *Store) nameRecordPath(hashedToken string) string {
	token := s.hasher.HashPair([]byte(hashedToken), nil)
	_, _, rest := fanOut(token)
	return s.leafDir(token) + rest + nameSuffix
}

// PutNameRecord writes the encrypted-name sidecar recovering the
// plaintext name behind hashedToken (a Tree Store hashed component).
func (s *Store) PutNameRecord(ctx context.Context, hashedToken string, encryptedName []byte) error {
	token := s.hasher.HashPair([]byte(hashedToken), nil)
	if err := s.ensureFanOutDirs(ctx, token); err != nil {
		return err
	}

	path := s.nameRecordPath(hashedToken)
	if kind, err := s.adapter.Exists(ctx, path); err != nil {
		return err
	} else if kind == storage.NoEntry {
		if err := s.adapter.CreateFile(ctx, path); err != nil && err != storage.ErrAlreadyExists {
			return err
		}
	}

	return s.adapter.SetFileData(ctx, path, bytes.NewReader(encryptedName))
}

// GetNameRecord reads back the encrypted name behind hashedToken.
func (s *Store) GetNameRecord(ctx context.Context, hashedToken string) ([]byte, error) {
	r, err := s.adapter.GetFileData(ctx, s.nameRecordPath(hashedToken))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// DeleteNameRecord deletes the name-recovery sidecar for hashedToken.
func (s *Store) DeleteNameRecord(ctx context.Context, hashedToken string, okIfNotExists bool) error {
	return s.adapter.DeleteFile(ctx, s.nameRecordPath(hashedToken), okIfNotExists)
}
