package evfs

import (
	"context"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/marmos91/veilfs/internal/logger"
	"github.com/marmos91/veilfs/pkg/evfs/storage"
)

// Clear implements §4.8.15: acquires the global drain lock so no other
// operation proceeds, recursively deletes every file and folder from the
// root inward in post order (children before their parent), then
// releases the drain.
func (c *Core) Clear(ctx context.Context) error {
	logger.InfoCtx(ctx, "clear: acquiring global drain lock", logger.Operation("clear"))
	if err := c.locks.AcquireGlobalLock(ctx); err != nil {
		return wrapAborted("/")
	}
	defer c.locks.ReleaseGlobalLock()

	err := c.clearChildren(ctx, "/", "/")
	if err != nil {
		logger.ErrorCtx(ctx, "clear: failed", logger.Operation("clear"), logger.Err(err))
		return err
	}
	logger.InfoCtx(ctx, "clear: complete", logger.Operation("clear"))
	return nil
}

func (c *Core) clearChildren(ctx context.Context, hashedFolder, unhashedFolder string) error {
	children, err := c.tree.ListFolder(ctx, hashedFolder)
	if err != nil {
		return translateStorageErr(unhashedFolder, err)
	}

	for _, child := range children {
		select {
		case <-ctx.Done():
			return wrapAborted(unhashedFolder)
		default:
		}

		kind, err := c.tree.Exists(ctx, child)
		if err != nil {
			return translateStorageErr(child, err)
		}

		switch kind {
		case storage.FolderEntry:
			if err := c.clearChildren(ctx, child, child); err != nil {
				return err
			}
			if err := c.tree.DeleteFolder(ctx, child, true); err != nil {
				return translateStorageErr(child, err)
			}
		case storage.FileEntry:
			if err := c.clearSidecar(ctx, child); err != nil {
				return err
			}
		}
	}
	return nil
}

// clearSidecar deletes one hashed sidecar entry found during a clear. It
// peeks the record's type to decide whether to also free content blobs
// (a file) before deleting the sidecar itself; a `.folder` sidecar's own
// bytes are deleted here too, its owning directory by the caller.
func (c *Core) clearSidecar(ctx context.Context, hashedPath string) error {
	probe, err := c.peekRecordType(ctx, hashedPath)
	if err != nil {
		return err
	}
	if probe == recordTypeFile {
		rec, err := c.readFileRecord(ctx, hashedPath)
		if err != nil {
			return err
		}
		if rec.Data.Chunks > 0 {
			uid := []byte(rec.Data.UID)
			g := new(errgroup.Group)
			g.SetLimit(maxConcurrentBlobDeletes)
			for i := 0; i <= rec.Data.Chunks; i++ {
				i := i
				g.Go(func() error {
					_ = c.lookup.DeleteBlob(ctx, uid, uint64(i), true)
					return nil
				})
			}
			_ = g.Wait()
		}
	}
	return c.tree.DeleteFile(ctx, hashedPath, true)
}

// Sweep implements the orphan blob integrity pass described in §9: for
// every file reachable by a full tree walk, it probes the Lookup Store
// for blobs beyond the file's recorded chunk count and removes any found
// until the first gap. An aborted setFileData only ever appends blobs
// under the file's existing uid before the record is updated, so any
// surviving blob past chunks+1 is exactly such an orphan. Not invoked
// automatically; callers schedule it themselves.
func (c *Core) Sweep(ctx context.Context) error {
	return c.sweepFolder(ctx, "/")
}

func (c *Core) sweepFolder(ctx context.Context, hashedFolder string) error {
	children, err := c.tree.ListFolder(ctx, hashedFolder)
	if err != nil {
		return translateStorageErr(hashedFolder, err)
	}
	for _, child := range children {
		select {
		case <-ctx.Done():
			return wrapAborted(hashedFolder)
		default:
		}

		kind, err := c.tree.Exists(ctx, child)
		if err != nil {
			return translateStorageErr(child, err)
		}
		switch kind {
		case storage.FolderEntry:
			if err := c.sweepFolder(ctx, child); err != nil {
				return err
			}
		case storage.FileEntry:
			if err := c.sweepSidecar(ctx, child); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Core) sweepSidecar(ctx context.Context, hashedPath string) error {
	probe, err := c.peekRecordType(ctx, hashedPath)
	if err != nil {
		return err
	}
	if probe != recordTypeFile {
		return nil
	}
	rec, err := c.readFileRecord(ctx, hashedPath)
	if err != nil {
		return err
	}

	uid := []byte(rec.Data.UID)
	for i := uint64(rec.Data.Chunks) + 1; ; i++ {
		has, err := c.lookup.HasBlob(ctx, uid, i)
		if err != nil {
			return translateStorageErr(hashedPath+"#"+strconv.FormatUint(i, 10), err)
		}
		if !has {
			return nil
		}
		if err := c.lookup.DeleteBlob(ctx, uid, i, true); err != nil {
			return translateStorageErr(hashedPath+"#"+strconv.FormatUint(i, 10), err)
		}
	}
}
