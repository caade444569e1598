package evfs

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/marmos91/veilfs/pkg/evfs/storage"
	"github.com/marmos91/veilfs/pkg/evfs/vpath"
)

// maxConcurrentBlobDeletes bounds the per-blob cleanup fan-out so a file
// with a huge chunk count doesn't open thousands of concurrent deletes
// against the Lookup Store at once.
const maxConcurrentBlobDeletes = 16

// CreateFileOptions carries the optional arguments to CreateFile.
type CreateFileOptions struct {
	Metadata map[string]any
}

// CreateFile implements §4.8.4: under a write turn, creates the hashed
// sidecar, its name-recovery entry, and an empty file record with a
// fresh content uid. Rollback on failure deletes the sidecar.
func (c *Core) CreateFile(ctx context.Context, path string, opts CreateFileOptions) error {
	ps, err := c.resolve(path, vpath.File)
	if err != nil {
		return err
	}

	turn, err := c.locks.GetTurn(ctx, ps.Unhashed.String(), true)
	if err != nil {
		return wrapAborted(path)
	}
	defer turn.End()

	if kind, err := c.tree.Exists(ctx, ps.Hashed.String()); err != nil {
		return translateStorageErr(path, err)
	} else if kind != storage.NoEntry {
		return newError(ErrAlreadyExists, path, "file already exists", nil)
	}

	if err := c.tree.CreateFile(ctx, ps.Hashed.String()); err != nil {
		return translateStorageErr(path, err)
	}
	if err := c.writeNameRecord(ctx, hashedLeaf(ps.Hashed), ps.Unhashed.Name()); err != nil {
		_ = c.tree.DeleteFile(ctx, ps.Hashed.String(), true)
		return err
	}

	now := time.Now().UTC()
	rec := FileRecord{
		Name:      ps.Unhashed.Name(),
		Extension: ps.Unhashed.Extension(),
		Type:      recordTypeFile,
		Created:   now,
		Modified:  now,
		Accessed:  now,
		Data: FileData{
			UID:      newFileUID(),
			Metadata: FileDataMetadata{Offsets: []int{}},
		},
		Metadata: nonNilMetadata(opts.Metadata),
	}
	if err := c.writeFileRecord(ctx, ps.Hashed.String(), rec); err != nil {
		_ = c.tree.DeleteFile(ctx, ps.Hashed.String(), true)
		return err
	}
	return nil
}

// GetFileInfo implements §4.8.5 for files.
func (c *Core) GetFileInfo(ctx context.Context, path string) (FileRecord, error) {
	ps, err := c.resolve(path, vpath.File)
	if err != nil {
		return FileRecord{}, err
	}

	turn, err := c.locks.GetTurn(ctx, ps.Unhashed.String(), false)
	if err != nil {
		return FileRecord{}, wrapAborted(path)
	}
	defer turn.End()

	rec, err := c.readFileRecord(ctx, ps.Hashed.String())
	if err != nil {
		return FileRecord{}, err
	}
	rec.Path = ps.Unhashed.String()
	return rec, nil
}

// SetFileMetadata implements §4.8.6 for files.
func (c *Core) SetFileMetadata(ctx context.Context, path string, metadata map[string]any) error {
	ps, err := c.resolve(path, vpath.File)
	if err != nil {
		return err
	}

	turn, err := c.locks.GetTurn(ctx, ps.Unhashed.String(), true)
	if err != nil {
		return wrapAborted(path)
	}
	defer turn.End()

	rec, err := c.readFileRecord(ctx, ps.Hashed.String())
	if err != nil {
		return err
	}
	rec.Metadata = nonNilMetadata(metadata)
	rec.Modified = time.Now().UTC()
	return c.writeFileRecord(ctx, ps.Hashed.String(), rec)
}

// DeleteFileOptions carries the optional arguments to DeleteFile.
type DeleteFileOptions struct {
	// DoNotDeleteData skips blob deletion, used by moveFile (§4.8.10) to
	// keep the destination's blobs alive under a temporarily-shared uid.
	DoNotDeleteData bool
}

// DeleteFile implements §4.8.12: under a write turn, deletes all
// `chunks+1` blobs (tolerant of missing ones) unless DoNotDeleteData is
// set, then deletes the hashed sidecar.
func (c *Core) DeleteFile(ctx context.Context, path string, opts DeleteFileOptions) error {
	ps, err := c.resolve(path, vpath.File)
	if err != nil {
		return err
	}

	turn, err := c.locks.GetTurn(ctx, ps.Unhashed.String(), true)
	if err != nil {
		return wrapAborted(path)
	}
	defer turn.End()

	rec, err := c.readFileRecord(ctx, ps.Hashed.String())
	if err != nil {
		return err
	}

	if !opts.DoNotDeleteData && rec.Data.Chunks > 0 {
		uid := []byte(rec.Data.UID)
		g := new(errgroup.Group)
		g.SetLimit(maxConcurrentBlobDeletes)
		for i := 0; i <= rec.Data.Chunks; i++ {
			i := i
			g.Go(func() error {
				// Missing blobs are tolerated; any other error is
				// swallowed and deletion continues (§4.8.12: "tolerant of
				// missing blobs, logged as warnings").
				_ = c.lookup.DeleteBlob(ctx, uid, uint64(i), true)
				return nil
			})
		}
		_ = g.Wait()
	}

	if err := c.tree.DeleteFile(ctx, ps.Hashed.String(), false); err != nil {
		return translateStorageErr(path, err)
	}
	return nil
}
