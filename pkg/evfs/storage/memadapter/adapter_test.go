package memadapter

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/veilfs/pkg/evfs/storage"
)

func TestAdapter_RootExistsAsFolder(t *testing.T) {
	a := New()
	kind, err := a.Exists(context.Background(), "/")
	require.NoError(t, err)
	assert.Equal(t, storage.FolderEntry, kind)
}

func TestAdapter_CreateFileWriteReadRoundTrip(t *testing.T) {
	a := New()
	ctx := context.Background()

	require.NoError(t, a.CreateFile(ctx, "/f1"))
	has, err := a.HasFileData(ctx, "/f1")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, a.SetFileData(ctx, "/f1", bytes.NewReader([]byte("payload"))))

	r, err := a.GetFileData(ctx, "/f1")
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestAdapter_ListFolderReturnsImmediateChildrenOnly(t *testing.T) {
	a := New()
	ctx := context.Background()

	require.NoError(t, a.CreateFolder(ctx, "/a"))
	require.NoError(t, a.CreateFolder(ctx, "/a/b"))
	require.NoError(t, a.CreateFile(ctx, "/a/f1"))
	require.NoError(t, a.CreateFile(ctx, "/a/b/f2"))

	children, err := a.ListFolder(ctx, "/a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/a/b", "/a/f1"}, children)
}

func TestAdapter_RenameFolderMovesDescendants(t *testing.T) {
	a := New()
	ctx := context.Background()

	require.NoError(t, a.CreateFolder(ctx, "/a"))
	require.NoError(t, a.CreateFile(ctx, "/a/f1"))
	require.NoError(t, a.RenameFolder(ctx, "/a", "b"))

	kind, err := a.Exists(ctx, "/b/f1")
	require.NoError(t, err)
	assert.Equal(t, storage.FileEntry, kind)

	kind, err = a.Exists(ctx, "/a")
	require.NoError(t, err)
	assert.Equal(t, storage.NoEntry, kind)
}

func TestAdapter_DeleteFolderRemovesDescendants(t *testing.T) {
	a := New()
	ctx := context.Background()

	require.NoError(t, a.CreateFolder(ctx, "/a"))
	require.NoError(t, a.CreateFile(ctx, "/a/f1"))
	require.NoError(t, a.DeleteFolder(ctx, "/a", false))

	kind, err := a.Exists(ctx, "/a/f1")
	require.NoError(t, err)
	assert.Equal(t, storage.NoEntry, kind)
}

func TestAdapter_DeleteMissingRespectsOkIfNotExists(t *testing.T) {
	a := New()
	ctx := context.Background()

	err := a.DeleteFile(ctx, "/missing", false)
	assert.ErrorIs(t, err, storage.ErrNotExist)
	assert.NoError(t, a.DeleteFile(ctx, "/missing", true))
}

func TestAdapter_HasNativeRenamingFalse(t *testing.T) {
	assert.False(t, New().HasNativeRenaming())
}
