package evfs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenameFile_PreservesUIDAndMovesContent(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()
	require.NoError(t, c.CreateFile(ctx, "/x.bin", CreateFileOptions{}))
	require.NoError(t, c.SetFileData(ctx, "/x.bin", bytesReader([]byte{1, 2, 3})))

	before, err := c.GetFileInfo(ctx, "/x.bin")
	require.NoError(t, err)

	require.NoError(t, c.RenameFile(ctx, "/x.bin", "y.bin"))

	kind, err := c.Exists(ctx, "/x.bin")
	require.NoError(t, err)
	assert.Equal(t, NoEntry, kind)

	after, err := c.GetFileInfo(ctx, "/y.bin")
	require.NoError(t, err)
	assert.Equal(t, before.Data.UID, after.Data.UID)
	assert.Equal(t, "y.bin", after.Name)

	assert.Equal(t, []byte{1, 2, 3}, readAllFileData(t, c, "/y.bin"))
}

func TestRenameFile_RejectsExistingDestination(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()
	require.NoError(t, c.CreateFile(ctx, "/x.bin", CreateFileOptions{}))
	require.NoError(t, c.CreateFile(ctx, "/y.bin", CreateFileOptions{}))

	err := c.RenameFile(ctx, "/x.bin", "y.bin")
	require.Error(t, err)
	var evfsErr *Error
	require.ErrorAs(t, err, &evfsErr)
	assert.Equal(t, ErrAlreadyExists, evfsErr.Code)
}

func TestCopyFile_GeneratesFreshUIDAndDuplicatesContent(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()
	require.NoError(t, c.CreateFile(ctx, "/p.bin", CreateFileOptions{}))
	require.NoError(t, c.SetFileData(ctx, "/p.bin", bytesReader([]byte{9, 9, 9})))

	require.NoError(t, c.CopyFile(ctx, "/p.bin", "/q.bin"))

	p, err := c.GetFileInfo(ctx, "/p.bin")
	require.NoError(t, err)
	q, err := c.GetFileInfo(ctx, "/q.bin")
	require.NoError(t, err)
	assert.NotEqual(t, p.Data.UID, q.Data.UID)

	assert.Equal(t, []byte{9, 9, 9}, readAllFileData(t, c, "/p.bin"))
	assert.Equal(t, []byte{9, 9, 9}, readAllFileData(t, c, "/q.bin"))
}

func TestMoveFile_PreservesUIDAndRemovesSource(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()
	require.NoError(t, c.CreateFolder(ctx, "/dst/", CreateFolderOptions{}))
	require.NoError(t, c.CreateFile(ctx, "/p.bin", CreateFileOptions{}))
	require.NoError(t, c.SetFileData(ctx, "/p.bin", bytesReader([]byte{5, 6, 7})))
	before, err := c.GetFileInfo(ctx, "/p.bin")
	require.NoError(t, err)

	require.NoError(t, c.MoveFile(ctx, "/p.bin", "/dst/p.bin"))

	kind, err := c.Exists(ctx, "/p.bin")
	require.NoError(t, err)
	assert.Equal(t, NoEntry, kind)

	after, err := c.GetFileInfo(ctx, "/dst/p.bin")
	require.NoError(t, err)
	assert.Equal(t, before.Data.UID, after.Data.UID)
	assert.Equal(t, []byte{5, 6, 7}, readAllFileData(t, c, "/dst/p.bin"))
}

func TestRenameFolder_MovesChildrenAlong(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()
	require.NoError(t, c.CreateFolder(ctx, "/docs/", CreateFolderOptions{}))
	require.NoError(t, c.CreateFile(ctx, "/docs/a.bin", CreateFileOptions{}))
	require.NoError(t, c.SetFileData(ctx, "/docs/a.bin", bytesReader([]byte{1})))

	require.NoError(t, c.RenameFolder(ctx, "/docs/", "notes"))

	kind, err := c.Exists(ctx, "/docs/")
	require.NoError(t, err)
	assert.Equal(t, NoEntry, kind)

	fileKind, err := c.Exists(ctx, "/notes/a.bin")
	require.NoError(t, err)
	assert.Equal(t, FileEntry, fileKind)
	assert.Equal(t, []byte{1}, readAllFileData(t, c, "/notes/a.bin"))
}

func TestCopyFolder_ClonesRecordOnly(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()
	require.NoError(t, c.CreateFolder(ctx, "/docs/", CreateFolderOptions{Metadata: map[string]any{"k": "v"}}))

	require.NoError(t, c.CopyFolder(ctx, "/docs/", "/docs2/"))

	info, err := c.GetFolderInfo(ctx, "/docs2/")
	require.NoError(t, err)
	assert.Equal(t, "docs2", info.Name)
	assert.Equal(t, map[string]any{"k": "v"}, info.Metadata)
}

func TestMoveFolder_RequiresEmptySource(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()
	require.NoError(t, c.CreateFolder(ctx, "/docs/", CreateFolderOptions{}))
	require.NoError(t, c.CreateFile(ctx, "/docs/a.bin", CreateFileOptions{}))

	err := c.MoveFolder(ctx, "/docs/", "/docs2/")
	require.Error(t, err)
	var evfsErr *Error
	require.ErrorAs(t, err, &evfsErr)
	assert.Equal(t, ErrNotEmpty, evfsErr.Code)
}

func TestMoveFolder_RelocatesEmptyFolder(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()
	require.NoError(t, c.CreateFolder(ctx, "/docs/", CreateFolderOptions{}))

	require.NoError(t, c.MoveFolder(ctx, "/docs/", "/docs2/"))

	kind, err := c.Exists(ctx, "/docs/")
	require.NoError(t, err)
	assert.Equal(t, NoEntry, kind)

	kind, err = c.Exists(ctx, "/docs2/")
	require.NoError(t, err)
	assert.Equal(t, FolderEntry, kind)
}
