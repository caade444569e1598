// Package memadapter implements storage.Adapter entirely in memory, for
// unit tests and the `memory` storage type. Grounded on the teacher's
// mutex-guarded map style used throughout its in-memory store
// implementations.
package memadapter

import (
	"bytes"
	"context"
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/marmos91/veilfs/pkg/evfs/storage"
)

type entryKind int

const (
	folderKind entryKind = iota
	fileKind
)

type entry struct {
	kind entryKind
	data []byte // nil until SetFileData is called; len(data)==0 is a valid empty blob
	set  bool   // whether data has ever been set
}

// Adapter is an in-memory storage.Adapter keyed by full path string.
type Adapter struct {
	mu      sync.RWMutex
	entries map[string]*entry
	closed  bool
}

// New constructs an empty Adapter with just the root folder present.
func New() *Adapter {
	return &Adapter{
		entries: map[string]*entry{
			"/": {kind: folderKind},
		},
	}
}

func clean(p string) string {
	if p == "/" {
		return "/"
	}
	return strings.TrimSuffix(p, "/")
}

func (a *Adapter) Exists(ctx context.Context, p string) (storage.EntryKind, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return storage.NoEntry, storage.ErrClosed
	}

	e, ok := a.entries[clean(p)]
	if !ok {
		return storage.NoEntry, nil
	}
	if e.kind == folderKind {
		return storage.FolderEntry, nil
	}
	return storage.FileEntry, nil
}

func (a *Adapter) CreateFolder(ctx context.Context, folderPath string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return storage.ErrClosed
	}

	key := clean(folderPath)
	if _, exists := a.entries[key]; exists {
		return storage.ErrAlreadyExists
	}
	a.entries[key] = &entry{kind: folderKind}
	return nil
}

func (a *Adapter) CreateFile(ctx context.Context, filePath string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return storage.ErrClosed
	}

	key := clean(filePath)
	if _, exists := a.entries[key]; exists {
		return storage.ErrAlreadyExists
	}
	a.entries[key] = &entry{kind: fileKind}
	return nil
}

func (a *Adapter) HasFileData(ctx context.Context, filePath string) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return false, storage.ErrClosed
	}

	e, ok := a.entries[clean(filePath)]
	if !ok || e.kind != fileKind {
		return false, storage.ErrNotExist
	}
	return e.set, nil
}

func (a *Adapter) GetFileData(ctx context.Context, filePath string) (io.ReadCloser, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return nil, storage.ErrClosed
	}

	e, ok := a.entries[clean(filePath)]
	if !ok || e.kind != fileKind {
		return nil, storage.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(e.data)), nil
}

func (a *Adapter) SetFileData(ctx context.Context, filePath string, data io.Reader) error {
	buf, err := io.ReadAll(data)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return storage.ErrClosed
	}

	e, ok := a.entries[clean(filePath)]
	if !ok || e.kind != fileKind {
		return storage.ErrNotExist
	}
	e.data = buf
	e.set = true
	return nil
}

func (a *Adapter) RenameFolder(ctx context.Context, folderPath, newName string) error {
	return a.rename(folderPath, newName, folderKind)
}

func (a *Adapter) RenameFile(ctx context.Context, filePath, newName string) error {
	return a.rename(filePath, newName, fileKind)
}

func (a *Adapter) rename(p, newName string, kind entryKind) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return storage.ErrClosed
	}

	oldKey := clean(p)
	e, ok := a.entries[oldKey]
	if !ok || e.kind != kind {
		return storage.ErrNotExist
	}

	newKey := clean(path.Join(path.Dir(oldKey), newName))
	if _, exists := a.entries[newKey]; exists {
		return storage.ErrAlreadyExists
	}

	prefix := oldKey + "/"
	for key, v := range a.entries {
		if key == oldKey {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			a.entries[newKey+strings.TrimPrefix(key, oldKey)] = v
			delete(a.entries, key)
		}
	}

	a.entries[newKey] = e
	delete(a.entries, oldKey)
	return nil
}

// HasNativeRenaming is false: the in-memory implementation emulates
// rename by relocating map entries rather than performing an atomic
// filesystem or object-store rename.
func (a *Adapter) HasNativeRenaming() bool { return false }

func (a *Adapter) ListFolder(ctx context.Context, folderPath string) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return nil, storage.ErrClosed
	}

	key := clean(folderPath)
	if e, ok := a.entries[key]; !ok || e.kind != folderKind {
		return nil, storage.ErrNotExist
	}

	prefix := key
	if prefix != "/" {
		prefix += "/"
	} else {
		prefix = "/"
	}

	seen := make(map[string]struct{})
	for candidate := range a.entries {
		if candidate == key || !strings.HasPrefix(candidate, prefix) {
			continue
		}
		rest := strings.TrimPrefix(candidate, prefix)
		if idx := strings.Index(rest, "/"); idx >= 0 {
			rest = rest[:idx]
		}
		if rest == "" {
			continue
		}
		seen[path.Join(prefix, rest)] = struct{}{}
	}

	children := make([]string, 0, len(seen))
	for c := range seen {
		children = append(children, c)
	}
	sort.Strings(children)
	return children, nil
}

func (a *Adapter) DeleteFolder(ctx context.Context, folderPath string, okIfNotExists bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return storage.ErrClosed
	}

	key := clean(folderPath)
	if _, ok := a.entries[key]; !ok {
		if okIfNotExists {
			return nil
		}
		return storage.ErrNotExist
	}

	prefix := key + "/"
	for candidate := range a.entries {
		if candidate == key || strings.HasPrefix(candidate, prefix) {
			delete(a.entries, candidate)
		}
	}
	return nil
}

func (a *Adapter) DeleteFile(ctx context.Context, filePath string, okIfNotExists bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return storage.ErrClosed
	}

	key := clean(filePath)
	e, ok := a.entries[key]
	if !ok || e.kind != fileKind {
		if okIfNotExists {
			return nil
		}
		return storage.ErrNotExist
	}
	delete(a.entries, key)
	return nil
}

// Close marks the adapter closed.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}

var _ storage.Adapter = (*Adapter)(nil)
