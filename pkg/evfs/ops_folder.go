package evfs

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/marmos91/veilfs/pkg/evfs/storage"
	"github.com/marmos91/veilfs/pkg/evfs/vpath"
)

// CreateFolderOptions carries the optional arguments to CreateFolder.
type CreateFolderOptions struct {
	Metadata map[string]any
}

// CreateFolder implements §4.8.3: under a write turn, creates the hashed
// directory, its `.folder` sidecar, both name-recovery sidecars, and the
// encrypted folder record. Any step failure triggers a best-effort
// rollback of the directory and sidecar before the error is returned.
func (c *Core) CreateFolder(ctx context.Context, path string, opts CreateFolderOptions) error {
	ps, err := c.resolve(path, vpath.Folder)
	if err != nil {
		return err
	}
	if ps.Unhashed.IsRoot() {
		return newError(ErrAlreadyExists, path, "root folder always exists", nil)
	}

	turn, err := c.locks.GetTurn(ctx, ps.Unhashed.String(), true)
	if err != nil {
		return wrapAborted(path)
	}
	defer turn.End()

	if kind, err := c.tree.Exists(ctx, ps.Hashed.String()); err != nil {
		return translateStorageErr(path, err)
	} else if kind != storage.NoEntry {
		return newError(ErrAlreadyExists, path, "folder already exists", nil)
	}

	if err := c.createFolderSteps(ctx, ps); err != nil {
		c.rollbackFolder(ctx, ps)
		return err
	}

	now := time.Now().UTC()
	rec := FolderRecord{
		Name:     ps.Unhashed.Name(),
		Type:     recordTypeFolder,
		Created:  now,
		Modified: now,
		Accessed: now,
		Metadata: nonNilMetadata(opts.Metadata),
	}
	if err := c.writeFolderRecord(ctx, ps.FilePathSet.Hashed.String(), rec); err != nil {
		c.rollbackFolder(ctx, ps)
		return err
	}
	return nil
}

// createFolderSteps runs the four steps of §4.8.3 ("parallelized where
// safe") concurrently: the hashed directory, the `.folder` sidecar, and
// both name-recovery sidecars each land at a distinct storage key, so
// none of the four can observe another's write.
func (c *Core) createFolderSteps(ctx context.Context, ps vpath.PathSet) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := c.tree.CreateFolder(ctx, ps.Hashed.String()); err != nil {
			return translateStorageErr(ps.Unhashed.String(), err)
		}
		return nil
	})
	g.Go(func() error {
		if err := c.tree.CreateFile(ctx, ps.FilePathSet.Hashed.String()); err != nil {
			return translateStorageErr(ps.Unhashed.String(), err)
		}
		return nil
	})
	g.Go(func() error {
		return c.writeNameRecord(ctx, hashedLeaf(ps.Hashed), ps.Unhashed.Name())
	})
	g.Go(func() error {
		return c.writeNameRecord(ctx, hashedLeaf(ps.FilePathSet.Hashed), ps.FilePathSet.Unhashed.Name())
	})

	return g.Wait()
}

func (c *Core) rollbackFolder(ctx context.Context, ps vpath.PathSet) {
	_ = c.tree.DeleteFile(ctx, ps.FilePathSet.Hashed.String(), true)
	_ = c.tree.DeleteFolder(ctx, ps.Hashed.String(), true)
}

// GetFolderInfo implements §4.8.5 for folders: under a read turn,
// decrypts the record and fills Path from the requested logical path.
func (c *Core) GetFolderInfo(ctx context.Context, path string) (FolderRecord, error) {
	ps, err := c.resolve(path, vpath.Folder)
	if err != nil {
		return FolderRecord{}, err
	}

	turn, err := c.locks.GetTurn(ctx, ps.Unhashed.String(), false)
	if err != nil {
		return FolderRecord{}, wrapAborted(path)
	}
	defer turn.End()

	if ps.Unhashed.IsRoot() {
		return FolderRecord{Name: "", Path: "/", Type: recordTypeFolder, Metadata: map[string]any{}}, nil
	}

	rec, err := c.readFolderRecord(ctx, ps.FilePathSet.Hashed.String())
	if err != nil {
		return FolderRecord{}, err
	}
	rec.Path = ps.Unhashed.String()
	return rec, nil
}

// SetFolderMetadata implements §4.8.6 for folders: a write-turn
// read-modify-write that replaces Metadata wholesale.
func (c *Core) SetFolderMetadata(ctx context.Context, path string, metadata map[string]any) error {
	ps, err := c.resolve(path, vpath.Folder)
	if err != nil {
		return err
	}
	if ps.Unhashed.IsRoot() {
		return newError(ErrInvalidPath, path, "root folder has no metadata", nil)
	}

	turn, err := c.locks.GetTurn(ctx, ps.Unhashed.String(), true)
	if err != nil {
		return wrapAborted(path)
	}
	defer turn.End()

	rec, err := c.readFolderRecord(ctx, ps.FilePathSet.Hashed.String())
	if err != nil {
		return err
	}
	rec.Metadata = nonNilMetadata(metadata)
	rec.Modified = time.Now().UTC()
	return c.writeFolderRecord(ctx, ps.FilePathSet.Hashed.String(), rec)
}

// DeleteFolder implements §4.8.13: a write turn requiring the folder be
// empty, deleting the `.folder` sidecar and the hashed directory.
func (c *Core) DeleteFolder(ctx context.Context, path string) error {
	ps, err := c.resolve(path, vpath.Folder)
	if err != nil {
		return err
	}
	if ps.Unhashed.IsRoot() {
		return newError(ErrInvalidPath, path, "root folder cannot be deleted", nil)
	}

	turn, err := c.locks.GetTurn(ctx, ps.Unhashed.String(), true)
	if err != nil {
		return wrapAborted(path)
	}
	defer turn.End()

	children, err := c.tree.ListFolder(ctx, ps.Hashed.String())
	if err != nil {
		return translateStorageErr(path, err)
	}
	if len(children) > 0 {
		return newError(ErrNotEmpty, path, "folder is not empty", nil)
	}

	if err := c.tree.DeleteFile(ctx, ps.FilePathSet.Hashed.String(), true); err != nil {
		return translateStorageErr(path, err)
	}
	if err := c.tree.DeleteFolder(ctx, ps.Hashed.String(), false); err != nil {
		return translateStorageErr(path, err)
	}
	return nil
}

func nonNilMetadata(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
