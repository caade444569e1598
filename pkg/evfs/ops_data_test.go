package evfs

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAllFileData(t *testing.T, c *Core, path string) []byte {
	t.Helper()
	r, err := c.GetFileData(context.Background(), path)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return data
}

func TestSetGetFileData_RoundTripSmall(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()
	require.NoError(t, c.CreateFile(ctx, "/x.bin", CreateFileOptions{}))

	want := []byte{9, 9, 9}
	require.NoError(t, c.SetFileData(ctx, "/x.bin", bytesReader(want)))

	got := readAllFileData(t, c, "/x.bin")
	assert.Equal(t, want, got)
}

func TestSetGetFileData_RoundTripAcrossManyChunks(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()
	require.NoError(t, c.CreateFile(ctx, "/x.bin", CreateFileOptions{}))

	want := make([]byte, 500)
	for i := range want {
		want[i] = byte(i)
	}
	require.NoError(t, c.SetFileData(ctx, "/x.bin", bytesReader(want)))

	info, err := c.GetFileInfo(ctx, "/x.bin")
	require.NoError(t, err)
	assert.Greater(t, info.Data.Chunks, 1, "500 bytes split into 8-16 byte chunks should span several chunks")
	assert.Equal(t, uint64(len(want)), info.Data.Bytes.Decrypted)
	assert.Len(t, info.Data.Metadata.Offsets, info.Data.Chunks)

	got := readAllFileData(t, c, "/x.bin")
	assert.Equal(t, want, got)
}

func TestGetFileData_ZeroChunkFileIsEmptyStream(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()
	require.NoError(t, c.CreateFile(ctx, "/x.bin", CreateFileOptions{}))

	got := readAllFileData(t, c, "/x.bin")
	assert.Empty(t, got)
}

func TestSetFileData_EmptyWriteLeavesZeroChunks(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()
	require.NoError(t, c.CreateFile(ctx, "/x.bin", CreateFileOptions{}))

	require.NoError(t, c.SetFileData(ctx, "/x.bin", bytesReader(nil)))

	info, err := c.GetFileInfo(ctx, "/x.bin")
	require.NoError(t, err)
	assert.Equal(t, 0, info.Data.Chunks)
}

func TestSetFileData_OverwriteReplacesPriorContent(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()
	require.NoError(t, c.CreateFile(ctx, "/x.bin", CreateFileOptions{}))
	require.NoError(t, c.SetFileData(ctx, "/x.bin", bytesReader([]byte("first value"))))
	require.NoError(t, c.SetFileData(ctx, "/x.bin", bytesReader([]byte("second"))))

	got := readAllFileData(t, c, "/x.bin")
	assert.Equal(t, []byte("second"), got)
}
