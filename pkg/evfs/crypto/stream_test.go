package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamCipher_ChunkRoundTrip(t *testing.T) {
	km := testKeyMaterial(t)
	sc, err := NewStreamCipher(km)
	require.NoError(t, err)

	uid := []byte("file-uid-1")
	plaintext := []byte("the quick brown fox jumps over the lazy dog")

	header, content, err := sc.SealChunk(uid, 3, plaintext)
	require.NoError(t, err)
	assert.Len(t, header, ChunkHeaderSize)

	nonce, length, err := sc.OpenChunkHeader(uid, 3, header)
	require.NoError(t, err)
	assert.EqualValues(t, len(plaintext), length)

	recovered, err := sc.OpenChunkContent(uid, 3, nonce, content)
	require.NoError(t, err)
	assert.Equal(t, plaintext, recovered)
}

func TestStreamCipher_WrongChunkIndexFailsHeader(t *testing.T) {
	km := testKeyMaterial(t)
	sc, err := NewStreamCipher(km)
	require.NoError(t, err)

	uid := []byte("file-uid-1")
	header, _, err := sc.SealChunk(uid, 0, []byte("data"))
	require.NoError(t, err)

	_, _, err = sc.OpenChunkHeader(uid, 1, header)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestStreamCipher_WrongUIDFailsHeader(t *testing.T) {
	km := testKeyMaterial(t)
	sc, err := NewStreamCipher(km)
	require.NoError(t, err)

	header, _, err := sc.SealChunk([]byte("uid-a"), 0, []byte("data"))
	require.NoError(t, err)

	_, _, err = sc.OpenChunkHeader([]byte("uid-b"), 0, header)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestStreamCipher_TamperedContentFails(t *testing.T) {
	km := testKeyMaterial(t)
	sc, err := NewStreamCipher(km)
	require.NoError(t, err)

	uid := []byte("file-uid")
	header, content, err := sc.SealChunk(uid, 0, []byte("data"))
	require.NoError(t, err)

	nonce, _, err := sc.OpenChunkHeader(uid, 0, header)
	require.NoError(t, err)

	content[0] ^= 0xFF
	_, err = sc.OpenChunkContent(uid, 0, nonce, content)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestStreamCipher_HeaderBlobRoundTrip(t *testing.T) {
	km := testKeyMaterial(t)
	sc, err := NewStreamCipher(km)
	require.NoError(t, err)

	uid := []byte("file-uid")
	var headers [][]byte
	for i := uint64(0); i < 5; i++ {
		h, _, err := sc.SealChunk(uid, i, []byte("chunk payload"))
		require.NoError(t, err)
		headers = append(headers, h)
	}

	blob, err := sc.SealHeaderBlob(uid, headers)
	require.NoError(t, err)

	recovered, err := sc.OpenHeaderBlob(uid, blob)
	require.NoError(t, err)
	require.Len(t, recovered, len(headers))
	for i := range headers {
		assert.Equal(t, headers[i], recovered[i])
	}
}

func TestStreamCipher_HeaderBlobWrongUIDFails(t *testing.T) {
	km := testKeyMaterial(t)
	sc, err := NewStreamCipher(km)
	require.NoError(t, err)

	h, _, err := sc.SealChunk([]byte("uid-a"), 0, []byte("data"))
	require.NoError(t, err)
	blob, err := sc.SealHeaderBlob([]byte("uid-a"), [][]byte{h})
	require.NoError(t, err)

	_, err = sc.OpenHeaderBlob([]byte("uid-b"), blob)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestHeaderAt_OutOfRange(t *testing.T) {
	_, err := HeaderAt([][]byte{{1, 2}}, 5)
	assert.ErrorIs(t, err, ErrHeaderIndexOutOfRange)
}
