package evfs

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"github.com/marmos91/veilfs/pkg/evfs/storage"
	"github.com/marmos91/veilfs/pkg/evfs/vpath"
)

// RenameFile implements §4.8.9 for files: write turns on destination then
// source, preconditions that the destination does not exist, native
// rename when the adapter supports it, emulated move otherwise. A
// rename's record keeps its original data.uid either way.
func (c *Core) RenameFile(ctx context.Context, path, newName string) error {
	srcPS, err := c.resolve(path, vpath.File)
	if err != nil {
		return err
	}
	dstUnhashed, err := srcPS.Unhashed.WithName(newName)
	if err != nil {
		return newError(ErrInvalidPath, path, err.Error(), err)
	}
	dstPS, err := vpath.Resolve(dstUnhashed, c.hasher.Hash)
	if err != nil {
		return wrapCrypto(path, err)
	}

	dstTurn, err := c.locks.GetTurn(ctx, dstPS.Unhashed.String(), true)
	if err != nil {
		return wrapAborted(path)
	}
	defer dstTurn.End()
	srcTurn, err := c.locks.GetTurn(ctx, srcPS.Unhashed.String(), true)
	if err != nil {
		return wrapAborted(path)
	}
	defer srcTurn.End()

	if kind, err := c.tree.Exists(ctx, dstPS.Hashed.String()); err != nil {
		return translateStorageErr(dstUnhashed.String(), err)
	} else if kind != storage.NoEntry {
		return newError(ErrAlreadyExists, dstUnhashed.String(), "destination already exists", nil)
	}

	if c.tree.HasNativeRenaming() {
		return c.renameFileNative(ctx, srcPS, dstPS)
	}
	return c.relocateFileRecord(ctx, srcPS, dstPS, false)
}

func (c *Core) renameFileNative(ctx context.Context, srcPS, dstPS vpath.PathSet) error {
	if err := c.tree.RenameFile(ctx, srcPS.Hashed.String(), hashedLeaf(dstPS.Hashed)); err != nil {
		return translateStorageErr(srcPS.Unhashed.String(), err)
	}

	rec, err := c.readFileRecordAt(ctx, dstPS.Hashed.String(), srcPS.Hashed.String())
	if err != nil {
		return err
	}
	rec.Name = dstPS.Unhashed.Name()
	rec.Extension = dstPS.Unhashed.Extension()
	rec.Modified = time.Now().UTC()
	if err := c.writeFileRecord(ctx, dstPS.Hashed.String(), rec); err != nil {
		return err
	}

	if err := c.writeNameRecord(ctx, hashedLeaf(dstPS.Hashed), dstPS.Unhashed.Name()); err != nil {
		return err
	}
	return c.lookup.DeleteNameRecord(ctx, hashedLeaf(srcPS.Hashed), true)
}

// relocateFileRecord is the emulated (non-native) half of a rename/move:
// it clones the source record to dstPS under the same uid, leaving the
// content blobs where they are (both records transiently addressing the
// same uid, per §4.8.10), or under a fresh uid with the blobs copied when
// freshUID is set. Once the clone has succeeded it deletes the source
// record with DoNotDeleteData set.
func (c *Core) relocateFileRecord(ctx context.Context, srcPS, dstPS vpath.PathSet, freshUID bool) error {
	if _, err := c.cloneFileRecord(ctx, srcPS, dstPS, freshUID); err != nil {
		return err
	}
	return c.DeleteFile(ctx, srcPS.Unhashed.String(), DeleteFileOptions{DoNotDeleteData: true})
}

func (c *Core) cloneFileRecord(ctx context.Context, srcPS, dstPS vpath.PathSet, freshUID bool) (FileRecord, error) {
	srcRec, err := c.readFileRecord(ctx, srcPS.Hashed.String())
	if err != nil {
		return FileRecord{}, err
	}

	if kind, err := c.tree.Exists(ctx, dstPS.Hashed.String()); err != nil {
		return FileRecord{}, translateStorageErr(dstPS.Unhashed.String(), err)
	} else if kind != storage.NoEntry {
		return FileRecord{}, newError(ErrAlreadyExists, dstPS.Unhashed.String(), "destination already exists", nil)
	}

	dstRec := srcRec
	dstRec.Name = dstPS.Unhashed.Name()
	dstRec.Extension = dstPS.Unhashed.Extension()
	now := time.Now().UTC()
	dstRec.Created, dstRec.Modified, dstRec.Accessed = now, now, now
	if freshUID {
		dstRec.Data.UID = newFileUID()
	}

	if err := c.tree.CreateFile(ctx, dstPS.Hashed.String()); err != nil {
		return FileRecord{}, translateStorageErr(dstPS.Unhashed.String(), err)
	}
	if err := c.writeNameRecord(ctx, hashedLeaf(dstPS.Hashed), dstPS.Unhashed.Name()); err != nil {
		_ = c.tree.DeleteFile(ctx, dstPS.Hashed.String(), true)
		return FileRecord{}, err
	}

	if freshUID && srcRec.Data.Chunks > 0 {
		if err := c.copyBlobs(ctx, []byte(srcRec.Data.UID), []byte(dstRec.Data.UID), srcRec.Data.Chunks); err != nil {
			_ = c.tree.DeleteFile(ctx, dstPS.Hashed.String(), true)
			return FileRecord{}, err
		}
	}

	if err := c.writeFileRecord(ctx, dstPS.Hashed.String(), dstRec); err != nil {
		_ = c.tree.DeleteFile(ctx, dstPS.Hashed.String(), true)
		return FileRecord{}, err
	}
	return dstRec, nil
}

// copyBlobs streams every blob index 0..=chunks (the content chunks plus
// the aggregate-header blob at index chunks) from srcUID to dstUID.
func (c *Core) copyBlobs(ctx context.Context, srcUID, dstUID []byte, chunks int) error {
	for i := 0; i <= chunks; i++ {
		r, err := c.lookup.GetBlob(ctx, srcUID, uint64(i))
		if err != nil {
			return translateStorageErr("", err)
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			return wrapIO("", err)
		}
		if err := c.lookup.PutBlob(ctx, dstUID, uint64(i), bytes.NewReader(data)); err != nil {
			return translateStorageErr("", err)
		}
	}
	return nil
}

func parseFilePath(raw string) (vpath.Path, error) {
	p, err := vpath.Parse(raw)
	if err != nil {
		return vpath.Path{}, newError(ErrInvalidPath, raw, err.Error(), err)
	}
	if p.Kind() != vpath.File {
		return vpath.Path{}, newError(ErrInvalidPath, raw, "expected a file path", nil)
	}
	return p, nil
}

func parseFolderPath(raw string) (vpath.Path, error) {
	p, err := vpath.Parse(raw)
	if err != nil {
		return vpath.Path{}, newError(ErrInvalidPath, raw, err.Error(), err)
	}
	if p.Kind() != vpath.Folder {
		return vpath.Path{}, newError(ErrInvalidPath, raw, "expected a folder path", nil)
	}
	return p, nil
}

// CopyFile implements §4.8.10's copyFile: write turns on both paths, a
// fresh data.uid, and a full blob-by-blob copy of the source's content.
func (c *Core) CopyFile(ctx context.Context, srcPath, dstPath string) error {
	srcP, err := parseFilePath(srcPath)
	if err != nil {
		return err
	}
	dstP, err := parseFilePath(dstPath)
	if err != nil {
		return err
	}
	srcPS, err := vpath.Resolve(srcP, c.hasher.Hash)
	if err != nil {
		return wrapCrypto(srcPath, err)
	}
	dstPS, err := vpath.Resolve(dstP, c.hasher.Hash)
	if err != nil {
		return wrapCrypto(dstPath, err)
	}

	dstTurn, err := c.locks.GetTurn(ctx, dstPS.Unhashed.String(), true)
	if err != nil {
		return wrapAborted(dstPath)
	}
	defer dstTurn.End()
	srcTurn, err := c.locks.GetTurn(ctx, srcPS.Unhashed.String(), true)
	if err != nil {
		return wrapAborted(srcPath)
	}
	defer srcTurn.End()

	_, err = c.cloneFileRecord(ctx, srcPS, dstPS, true)
	return err
}

// MoveFile implements §4.8.10's moveFile: copyFile with the source's uid
// and no blob copy, then a delete of the source record with
// doNotDeleteData=true. On a post-copy delete failure, the core attempts
// a three-step recovery to restore the one-record-per-uid invariant.
func (c *Core) MoveFile(ctx context.Context, srcPath, dstPath string) error {
	srcP, err := parseFilePath(srcPath)
	if err != nil {
		return err
	}
	dstP, err := parseFilePath(dstPath)
	if err != nil {
		return err
	}
	srcPS, err := vpath.Resolve(srcP, c.hasher.Hash)
	if err != nil {
		return wrapCrypto(srcPath, err)
	}
	dstPS, err := vpath.Resolve(dstP, c.hasher.Hash)
	if err != nil {
		return wrapCrypto(dstPath, err)
	}

	dstTurn, err := c.locks.GetTurn(ctx, dstPS.Unhashed.String(), true)
	if err != nil {
		return wrapAborted(dstPath)
	}
	defer dstTurn.End()
	srcTurn, err := c.locks.GetTurn(ctx, srcPS.Unhashed.String(), true)
	if err != nil {
		return wrapAborted(srcPath)
	}
	defer srcTurn.End()

	if _, err := c.cloneFileRecord(ctx, srcPS, dstPS, false); err != nil {
		return err
	}

	deleteErr := c.DeleteFile(ctx, srcPath, DeleteFileOptions{DoNotDeleteData: true})
	if deleteErr == nil {
		return nil
	}

	if restoreErr := c.DeleteFile(ctx, dstPath, DeleteFileOptions{DoNotDeleteData: true}); restoreErr == nil {
		return deleteErr
	}

	if regenErr := c.regenerateUID(ctx, dstPS); regenErr != nil {
		return newError(ErrCorrectable, dstPath, "move left source and destination sharing a uid; manual repair required", deleteErr)
	}
	return newError(ErrCorrectable, dstPath, "move's source delete failed after the destination uid was regenerated; source record is now orphaned", deleteErr)
}

// regenerateUID is moveFile's last-resort recovery: it gives dstPS's
// record a brand new uid and copies its current blobs onto it, ending the
// shared-uid window at the cost of one extra blob copy.
func (c *Core) regenerateUID(ctx context.Context, dstPS vpath.PathSet) error {
	rec, err := c.readFileRecord(ctx, dstPS.Hashed.String())
	if err != nil {
		return err
	}
	oldUID := []byte(rec.Data.UID)
	newUID := newFileUID()
	if rec.Data.Chunks > 0 {
		if err := c.copyBlobs(ctx, oldUID, []byte(newUID), rec.Data.Chunks); err != nil {
			return err
		}
	}
	rec.Data.UID = newUID
	return c.writeFileRecord(ctx, dstPS.Hashed.String(), rec)
}

// RenameFolder implements §4.8.9 for folders: write turns on destination
// then source, native rename of the hashed directory and its `.folder`
// sidecar when available (with every descendant record's AAD rebound to
// its new hashed path, since each one gained a new ancestor segment),
// emulated recursive move otherwise.
func (c *Core) RenameFolder(ctx context.Context, path, newName string) error {
	srcPS, err := c.resolve(path, vpath.Folder)
	if err != nil {
		return err
	}
	if srcPS.Unhashed.IsRoot() {
		return newError(ErrInvalidPath, path, "root folder cannot be renamed", nil)
	}
	dstUnhashed, err := srcPS.Unhashed.WithName(newName)
	if err != nil {
		return newError(ErrInvalidPath, path, err.Error(), err)
	}
	dstPS, err := vpath.Resolve(dstUnhashed, c.hasher.Hash)
	if err != nil {
		return wrapCrypto(path, err)
	}

	dstTurn, err := c.locks.GetTurn(ctx, dstPS.Unhashed.String(), true)
	if err != nil {
		return wrapAborted(path)
	}
	defer dstTurn.End()
	srcTurn, err := c.locks.GetTurn(ctx, srcPS.Unhashed.String(), true)
	if err != nil {
		return wrapAborted(path)
	}
	defer srcTurn.End()

	if kind, err := c.tree.Exists(ctx, dstPS.Hashed.String()); err != nil {
		return translateStorageErr(dstUnhashed.String(), err)
	} else if kind != storage.NoEntry {
		return newError(ErrAlreadyExists, dstUnhashed.String(), "destination already exists", nil)
	}

	if c.tree.HasNativeRenaming() {
		return c.renameFolderNative(ctx, srcPS, dstPS)
	}
	return c.moveFolderRecursive(ctx, srcPS, dstPS, true)
}

func (c *Core) renameFolderNative(ctx context.Context, srcPS, dstPS vpath.PathSet) error {
	if err := c.tree.RenameFile(ctx, srcPS.FilePathSet.Hashed.String(), hashedLeaf(dstPS.FilePathSet.Hashed)); err != nil {
		return translateStorageErr(srcPS.Unhashed.String(), err)
	}
	if err := c.tree.RenameFolder(ctx, srcPS.Hashed.String(), hashedLeaf(dstPS.Hashed)); err != nil {
		return translateStorageErr(srcPS.Unhashed.String(), err)
	}

	rec, err := c.readFolderRecordAt(ctx, dstPS.FilePathSet.Hashed.String(), srcPS.FilePathSet.Hashed.String())
	if err != nil {
		return err
	}
	rec.Name = dstPS.Unhashed.Name()
	rec.Modified = time.Now().UTC()
	if err := c.writeFolderRecord(ctx, dstPS.FilePathSet.Hashed.String(), rec); err != nil {
		return err
	}

	if err := c.writeNameRecord(ctx, hashedLeaf(dstPS.Hashed), dstPS.Unhashed.Name()); err != nil {
		return err
	}
	if err := c.writeNameRecord(ctx, hashedLeaf(dstPS.FilePathSet.Hashed), dstPS.FilePathSet.Unhashed.Name()); err != nil {
		return err
	}
	if err := c.lookup.DeleteNameRecord(ctx, hashedLeaf(srcPS.Hashed), true); err != nil {
		return translateStorageErr(srcPS.Unhashed.String(), err)
	}
	if err := c.lookup.DeleteNameRecord(ctx, hashedLeaf(srcPS.FilePathSet.Hashed), true); err != nil {
		return translateStorageErr(srcPS.Unhashed.String(), err)
	}

	return c.reencryptRenamedSubtree(ctx, srcPS.Hashed.String(), dstPS.Hashed.String(), dstPS.Hashed.String())
}

// reencryptRenamedSubtree walks the directory the adapter already
// physically relocated to newPrefix, rebinding every descendant record's
// AAD from its old hashed path (reconstructed by swapping newPrefix for
// oldPrefix) to its current one. Bare hashed subdirectories carry no
// record of their own and are only recursed into; content blobs are
// untouched since they are keyed by uid, never by path.
func (c *Core) reencryptRenamedSubtree(ctx context.Context, oldPrefix, newPrefix, currentHashedPath string) error {
	children, err := c.tree.ListFolder(ctx, currentHashedPath)
	if err != nil {
		return translateStorageErr(currentHashedPath, err)
	}
	for _, child := range children {
		kind, err := c.tree.Exists(ctx, child)
		if err != nil {
			return translateStorageErr(child, err)
		}
		oldChild := oldPrefix + strings.TrimPrefix(child, newPrefix)
		switch kind {
		case storage.FileEntry:
			if err := c.reencryptRecordAAD(ctx, child, oldChild, child); err != nil {
				return err
			}
		case storage.FolderEntry:
			if err := c.reencryptRenamedSubtree(ctx, oldChild, child, child); err != nil {
				return err
			}
		}
	}
	return nil
}

// moveFolderRecursive is §4.8.9's emulated fallback: create the
// destination folder, recursively move subfolders and files, then delete
// the (now-empty) source folder.
func (c *Core) moveFolderRecursive(ctx context.Context, srcPS, dstPS vpath.PathSet, deleteSourceWhenDone bool) error {
	srcRec, err := c.readFolderRecord(ctx, srcPS.FilePathSet.Hashed.String())
	if err != nil {
		return err
	}

	if err := c.createFolderSteps(ctx, dstPS); err != nil {
		c.rollbackFolder(ctx, dstPS)
		return err
	}
	now := time.Now().UTC()
	dstRec := srcRec
	dstRec.Name = dstPS.Unhashed.Name()
	dstRec.Created, dstRec.Modified, dstRec.Accessed = now, now, now
	if err := c.writeFolderRecord(ctx, dstPS.FilePathSet.Hashed.String(), dstRec); err != nil {
		c.rollbackFolder(ctx, dstPS)
		return err
	}

	children, err := c.tree.ListFolder(ctx, srcPS.Hashed.String())
	if err != nil {
		return translateStorageErr(srcPS.Unhashed.String(), err)
	}
	for _, child := range children {
		kind, err := c.tree.Exists(ctx, child)
		if err != nil {
			return translateStorageErr(child, err)
		}
		if kind != storage.FileEntry {
			continue
		}
		if err := c.moveChildSidecar(ctx, srcPS, dstPS, child); err != nil {
			return err
		}
	}

	if deleteSourceWhenDone {
		if err := c.tree.DeleteFile(ctx, srcPS.FilePathSet.Hashed.String(), true); err != nil {
			return translateStorageErr(srcPS.Unhashed.String(), err)
		}
		return c.tree.DeleteFolder(ctx, srcPS.Hashed.String(), false)
	}
	return nil
}

// moveChildSidecar relocates one hashed child entry of a folder being
// recursively moved: a `.folder` sidecar belonging to a nested subfolder
// (recurse into moveFolderRecursive) or a plain file (use moveFile-style
// relocation, preserving its uid).
func (c *Core) moveChildSidecar(ctx context.Context, srcParent, dstParent vpath.PathSet, childHashed string) error {
	token := lastComponent(childHashed)
	name, err := c.readNameRecord(ctx, token)
	if err != nil {
		return err
	}

	if strings.HasSuffix(name, folderSidecarSuffix) {
		folderName := strings.TrimSuffix(name, folderSidecarSuffix)
		childSrcUnhashed, err := srcParent.Unhashed.Child(folderName, vpath.Folder)
		if err != nil {
			return newError(ErrInvalidPath, childHashed, err.Error(), err)
		}
		childDstUnhashed, err := dstParent.Unhashed.Child(folderName, vpath.Folder)
		if err != nil {
			return newError(ErrInvalidPath, childHashed, err.Error(), err)
		}
		childSrcPS, err := vpath.Resolve(childSrcUnhashed, c.hasher.Hash)
		if err != nil {
			return wrapCrypto(childHashed, err)
		}
		childDstPS, err := vpath.Resolve(childDstUnhashed, c.hasher.Hash)
		if err != nil {
			return wrapCrypto(childHashed, err)
		}
		return c.moveFolderRecursive(ctx, childSrcPS, childDstPS, true)
	}

	childSrcUnhashed, err := srcParent.Unhashed.Child(name, vpath.File)
	if err != nil {
		return newError(ErrInvalidPath, childHashed, err.Error(), err)
	}
	childDstUnhashed, err := dstParent.Unhashed.Child(name, vpath.File)
	if err != nil {
		return newError(ErrInvalidPath, childHashed, err.Error(), err)
	}
	childSrcPS, err := vpath.Resolve(childSrcUnhashed, c.hasher.Hash)
	if err != nil {
		return wrapCrypto(childHashed, err)
	}
	childDstPS, err := vpath.Resolve(childDstUnhashed, c.hasher.Hash)
	if err != nil {
		return wrapCrypto(childHashed, err)
	}
	return c.relocateFileRecord(ctx, childSrcPS, childDstPS, false)
}

// CopyFolder implements §4.8.11's copyFolder: creates the destination
// folder with a cloned record (new timestamps); does not recurse into
// children (only rename's and move's recursive variants copy children).
func (c *Core) CopyFolder(ctx context.Context, srcPath, dstPath string) error {
	srcP, err := parseFolderPath(srcPath)
	if err != nil {
		return err
	}
	dstP, err := parseFolderPath(dstPath)
	if err != nil {
		return err
	}
	srcPS, err := vpath.Resolve(srcP, c.hasher.Hash)
	if err != nil {
		return wrapCrypto(srcPath, err)
	}
	dstPS, err := vpath.Resolve(dstP, c.hasher.Hash)
	if err != nil {
		return wrapCrypto(dstPath, err)
	}

	dstTurn, err := c.locks.GetTurn(ctx, dstPS.Unhashed.String(), true)
	if err != nil {
		return wrapAborted(dstPath)
	}
	defer dstTurn.End()
	srcTurn, err := c.locks.GetTurn(ctx, srcPS.Unhashed.String(), true)
	if err != nil {
		return wrapAborted(srcPath)
	}
	defer srcTurn.End()

	if kind, err := c.tree.Exists(ctx, dstPS.Hashed.String()); err != nil {
		return translateStorageErr(dstPath, err)
	} else if kind != storage.NoEntry {
		return newError(ErrAlreadyExists, dstPath, "destination already exists", nil)
	}

	srcRec, err := c.readFolderRecord(ctx, srcPS.FilePathSet.Hashed.String())
	if err != nil {
		return err
	}
	if err := c.createFolderSteps(ctx, dstPS); err != nil {
		c.rollbackFolder(ctx, dstPS)
		return err
	}
	now := time.Now().UTC()
	dstRec := srcRec
	dstRec.Name = dstPS.Unhashed.Name()
	dstRec.Created, dstRec.Modified, dstRec.Accessed = now, now, now
	if err := c.writeFolderRecord(ctx, dstPS.FilePathSet.Hashed.String(), dstRec); err != nil {
		c.rollbackFolder(ctx, dstPS)
		return err
	}
	return nil
}

// MoveFolder implements §4.8.11's moveFolder: copies then deletes the
// source folder record and directory; the source must be empty (a
// recursive move of a non-empty folder is renameFolder's job).
func (c *Core) MoveFolder(ctx context.Context, srcPath, dstPath string) error {
	srcP, err := parseFolderPath(srcPath)
	if err != nil {
		return err
	}
	dstP, err := parseFolderPath(dstPath)
	if err != nil {
		return err
	}
	srcPS, err := vpath.Resolve(srcP, c.hasher.Hash)
	if err != nil {
		return wrapCrypto(srcPath, err)
	}
	dstPS, err := vpath.Resolve(dstP, c.hasher.Hash)
	if err != nil {
		return wrapCrypto(dstPath, err)
	}

	dstTurn, err := c.locks.GetTurn(ctx, dstPS.Unhashed.String(), true)
	if err != nil {
		return wrapAborted(dstPath)
	}
	defer dstTurn.End()
	srcTurn, err := c.locks.GetTurn(ctx, srcPS.Unhashed.String(), true)
	if err != nil {
		return wrapAborted(srcPath)
	}
	defer srcTurn.End()

	children, err := c.tree.ListFolder(ctx, srcPS.Hashed.String())
	if err != nil {
		return translateStorageErr(srcPath, err)
	}
	if len(children) > 0 {
		return newError(ErrNotEmpty, srcPath, "folder is not empty", nil)
	}

	return c.moveFolderRecursive(ctx, srcPS, dstPS, true)
}
