package lookup

import (
	"context"
	"encoding/hex"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/veilfs/pkg/evfs/storage/memadapter"
)

// fakeHasher is a deterministic stand-in for naming.Hasher, avoiding an
// import cycle between this test and pkg/evfs/naming.
type fakeHasher struct{}

func (fakeHasher) HashPair(a, b []byte) string {
	return strings.Repeat("a", 4) + hex.EncodeToString(a) + "_" + hex.EncodeToString(b)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(memadapter.New(), fakeHasher{}, "/roottoken/lookuptoken")
	require.NoError(t, s.Init(context.Background()))
	return s
}

func TestStore_BlobRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	uid := []byte("file-uid-1")

	require.NoError(t, s.PutBlob(ctx, uid, 0, strings.NewReader("chunk-0")))
	has, err := s.HasBlob(ctx, uid, 0)
	require.NoError(t, err)
	assert.True(t, has)

	r, err := s.GetBlob(ctx, uid, 0)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "chunk-0", string(data))
}

func TestStore_BlobsAtDifferentIndicesAreIndependent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	uid := []byte("file-uid-1")

	require.NoError(t, s.PutBlob(ctx, uid, 0, strings.NewReader("chunk-0")))
	require.NoError(t, s.PutBlob(ctx, uid, 1, strings.NewReader("chunk-1")))

	r0, err := s.GetBlob(ctx, uid, 0)
	require.NoError(t, err)
	d0, _ := io.ReadAll(r0)
	assert.Equal(t, "chunk-0", string(d0))

	r1, err := s.GetBlob(ctx, uid, 1)
	require.NoError(t, err)
	d1, _ := io.ReadAll(r1)
	assert.Equal(t, "chunk-1", string(d1))
}

func TestStore_DeleteBlobRespectsOkIfNotExists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	uid := []byte("missing")

	err := s.DeleteBlob(ctx, uid, 0, false)
	assert.Error(t, err)
	assert.NoError(t, s.DeleteBlob(ctx, uid, 0, true))
}

func TestStore_NameRecordRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutNameRecord(ctx, "hashed-folder-token", []byte("encrypted-name-bytes")))

	got, err := s.GetNameRecord(ctx, "hashed-folder-token")
	require.NoError(t, err)
	assert.Equal(t, "encrypted-name-bytes", string(got))
}

func TestStore_NameRecordOverwrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutNameRecord(ctx, "token", []byte("first")))
	require.NoError(t, s.PutNameRecord(ctx, "token", []byte("second")))

	got, err := s.GetNameRecord(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestStore_DeleteNameRecordRespectsOkIfNotExists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.DeleteNameRecord(ctx, "missing-token", false)
	assert.Error(t, err)
	assert.NoError(t, s.DeleteNameRecord(ctx, "missing-token", true))
}
