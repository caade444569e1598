// Package fsadapter implements storage.Adapter over a local filesystem
// directory tree, grounded on the teacher's filesystem-backed block
// store.
package fsadapter

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/marmos91/veilfs/pkg/evfs/storage"
)

// Adapter is a filesystem-backed storage.Adapter. Folders are directories
// and files are regular files, both named by their already-hashed path
// components.
type Adapter struct {
	mu       sync.RWMutex
	basePath string
	dirMode  os.FileMode
	fileMode os.FileMode
	closed   bool
}

// Config configures a filesystem Adapter.
type Config struct {
	// BasePath is the root directory under which the hashed hierarchy is
	// stored.
	BasePath string

	// CreateDir creates BasePath if it does not already exist. Default: true.
	CreateDir bool

	// DirMode is the permission mode for created directories. Default: 0o755.
	DirMode os.FileMode

	// FileMode is the permission mode for created files. Default: 0o644.
	FileMode os.FileMode
}

// DefaultConfig returns a Config with CreateDir enabled and standard
// permission modes.
func DefaultConfig(basePath string) Config {
	return Config{
		BasePath:  basePath,
		CreateDir: true,
		DirMode:   0o755,
		FileMode:  0o644,
	}
}

// New constructs an Adapter rooted at cfg.BasePath.
func New(cfg Config) (*Adapter, error) {
	if cfg.BasePath == "" {
		return nil, os.ErrInvalid
	}
	if cfg.DirMode == 0 {
		cfg.DirMode = 0o755
	}
	if cfg.FileMode == 0 {
		cfg.FileMode = 0o644
	}

	if cfg.CreateDir {
		if err := os.MkdirAll(cfg.BasePath, cfg.DirMode); err != nil {
			return nil, err
		}
	}

	info, err := os.Stat(cfg.BasePath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, storage.ErrNotAFolder
	}

	return &Adapter{basePath: cfg.BasePath, dirMode: cfg.DirMode, fileMode: cfg.FileMode}, nil
}

func (a *Adapter) resolve(path string) string {
	return filepath.Join(a.basePath, filepath.FromSlash(path))
}

// dataSuffix marks the file on disk that holds a file entry's content;
// the bare path itself is a zero-length marker recording that a file
// entry exists (§8: zero-byte files carry no data blob at all).
const dataSuffix = ".data"

func (a *Adapter) Exists(ctx context.Context, path string) (storage.EntryKind, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return storage.NoEntry, storage.ErrClosed
	}

	info, err := os.Stat(a.resolve(path))
	if err != nil {
		if os.IsNotExist(err) {
			return storage.NoEntry, nil
		}
		return storage.NoEntry, err
	}
	if info.IsDir() {
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

	full := a.resolve(folderPath)
	if _, err := os.Stat(full); err == nil {
		return storage.ErrAlreadyExists
	}
	return os.MkdirAll(full, a.dirMode)
}

func (a *Adapter) CreateFile(ctx context.Context, filePath string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return storage.ErrClosed
	}

	full := a.resolve(filePath)
	if _, err := os.Stat(full); err == nil {
		return storage.ErrAlreadyExists
	}
	if err := os.MkdirAll(filepath.Dir(full), a.dirMode); err != nil {
		return err
	}
	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, a.fileMode)
	if err != nil {
		return err
	}
	return f.Close()
}

func (a *Adapter) HasFileData(ctx context.Context, filePath string) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return false, storage.ErrClosed
	}

	info, err := os.Stat(a.resolve(filePath) + dataSuffix)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Size() > 0, nil
}

func (a *Adapter) GetFileData(ctx context.Context, filePath string) (io.ReadCloser, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return nil, storage.ErrClosed
	}

	f, err := os.Open(a.resolve(filePath) + dataSuffix)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotExist
		}
		return nil, err
	}
	return f, nil
}

func (a *Adapter) SetFileData(ctx context.Context, filePath string, data io.Reader) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return storage.ErrClosed
	}

	full := a.resolve(filePath) + dataSuffix
	if err := os.MkdirAll(filepath.Dir(full), a.dirMode); err != nil {
		return err
	}

	tmp := full + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, a.fileMode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, full); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func (a *Adapter) RenameFolder(ctx context.Context, folderPath, newName string) error {
	return a.renameLeaf(folderPath, newName)
}

func (a *Adapter) RenameFile(ctx context.Context, filePath, newName string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return storage.ErrClosed
	}

	oldFull := a.resolve(filePath)
	newFull := filepath.Join(filepath.Dir(oldFull), newName)

	if _, err := os.Stat(oldFull + dataSuffix); err == nil {
		if err := os.Rename(oldFull+dataSuffix, newFull+dataSuffix); err != nil {
			return err
		}
	}
	return os.Rename(oldFull, newFull)
}

func (a *Adapter) renameLeaf(path, newName string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return storage.ErrClosed
	}

	oldFull := a.resolve(path)
	newFull := filepath.Join(filepath.Dir(oldFull), newName)
	return os.Rename(oldFull, newFull)
}

// HasNativeRenaming is true: os.Rename performs an atomic, in-place
// rename on every platform this adapter targets.
func (a *Adapter) HasNativeRenaming() bool { return true }

func (a *Adapter) ListFolder(ctx context.Context, folderPath string) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return nil, storage.ErrClosed
	}

	full := a.resolve(folderPath)
	entries, err := os.ReadDir(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotExist
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		// A file entry's sidecar data blob lives alongside it with the
		// .data suffix; it is not itself a logical child.
		if !e.IsDir() && filepath.Ext(name) == dataSuffix {
			continue
		}
		if name == ".tmp" {
			continue
		}
		names = append(names, filepath.ToSlash(filepath.Join(folderPath, name)))
	}
	return names, nil
}

func (a *Adapter) DeleteFolder(ctx context.Context, folderPath string, okIfNotExists bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return storage.ErrClosed
	}

	full := a.resolve(folderPath)
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			if okIfNotExists {
				return nil
			}
			return storage.ErrNotExist
		}
		return err
	}
	return os.RemoveAll(full)
}

func (a *Adapter) DeleteFile(ctx context.Context, filePath string, okIfNotExists bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return storage.ErrClosed
	}

	full := a.resolve(filePath)
	_, statErr := os.Stat(full)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			if okIfNotExists {
				return nil
			}
			return storage.ErrNotExist
		}
		return statErr
	}

	os.Remove(full + dataSuffix)
	return os.Remove(full)
}

// Close marks the adapter closed; subsequent operations fail with
// storage.ErrClosed.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}

// HealthCheck verifies the base path is still accessible.
func (a *Adapter) HealthCheck(ctx context.Context) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return storage.ErrClosed
	}
	_, err := os.Stat(a.basePath)
	return err
}

var _ storage.Adapter = (*Adapter)(nil)
