package evfs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFolder_EnumeratesFilesAndSubfolders(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()
	require.NoError(t, c.CreateFile(ctx, "/a.bin", CreateFileOptions{}))
	require.NoError(t, c.CreateFile(ctx, "/b.bin", CreateFileOptions{}))
	require.NoError(t, c.CreateFolder(ctx, "/sub/", CreateFolderOptions{}))

	entries, err := c.ListFolder(ctx, "/")
	require.NoError(t, err)

	var files, folders []string
	for _, e := range entries {
		require.NoError(t, e.Err)
		if e.File != nil {
			files = append(files, e.File.Name)
		}
		if e.Folder != nil {
			folders = append(folders, e.Folder.Name)
		}
	}
	assert.ElementsMatch(t, []string{"a.bin", "b.bin"}, files)
	assert.ElementsMatch(t, []string{"sub"}, folders)
}

func TestListFolder_FolderEntriesCarryFullPath(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()
	require.NoError(t, c.CreateFolder(ctx, "/sub/", CreateFolderOptions{}))

	entries, err := c.ListFolder(ctx, "/")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NoError(t, entries[0].Err)
	require.NotNil(t, entries[0].Folder)
	assert.Equal(t, "/sub/", entries[0].Folder.Path)
}

func TestListFolder_FileEntriesCarryFullPath(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()
	require.NoError(t, c.CreateFile(ctx, "/a.bin", CreateFileOptions{}))

	entries, err := c.ListFolder(ctx, "/")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NoError(t, entries[0].Err)
	require.NotNil(t, entries[0].File)
	assert.Equal(t, "/a.bin", entries[0].File.Path)
}

func TestListFolder_EmptyFolderYieldsNoEntries(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()
	require.NoError(t, c.CreateFolder(ctx, "/empty/", CreateFolderOptions{}))

	entries, err := c.ListFolder(ctx, "/empty/")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestListFolder_NestedChildrenAreNotFlattened(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()
	require.NoError(t, c.CreateFolder(ctx, "/sub/", CreateFolderOptions{}))
	require.NoError(t, c.CreateFile(ctx, "/sub/nested.bin", CreateFileOptions{}))

	entries, err := c.ListFolder(ctx, "/")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotNil(t, entries[0].Folder)

	nested, err := c.ListFolder(ctx, "/sub/")
	require.NoError(t, err)
	require.Len(t, nested, 1)
	require.NotNil(t, nested[0].File)
	assert.Equal(t, "nested.bin", nested[0].File.Name)
}
