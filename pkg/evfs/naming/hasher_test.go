package naming

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash_Deterministic(t *testing.T) {
	h := New([]byte("test-key-0123456789"))

	a, err := h.Hash("documents")
	require.NoError(t, err)
	b, err := h.Hash("documents")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, TokenLength)
}

func TestHash_DifferentInputsDiffer(t *testing.T) {
	h := New([]byte("test-key-0123456789"))

	a, err := h.Hash("alpha")
	require.NoError(t, err)
	b, err := h.Hash("beta")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHash_DifferentKeysDiffer(t *testing.T) {
	h1 := New([]byte("key-one-0123456789"))
	h2 := New([]byte("key-two-0123456789"))

	a, err := h1.Hash("documents")
	require.NoError(t, err)
	b, err := h2.Hash("documents")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHash_FilesystemSafeAndCaseStable(t *testing.T) {
	h := New([]byte("test-key-0123456789"))

	token, err := h.Hash("Ünïcödé Nâme_v1.2")
	require.NoError(t, err)

	for _, r := range token {
		assert.Contains(t, Alphabet, string(r))
	}
	assert.Equal(t, token, strings.ToLower(token))
}

func TestHash_EmptyComponentRejected(t *testing.T) {
	h := New([]byte("test-key"))
	_, err := h.Hash("")
	assert.ErrorIs(t, err, ErrEmptyComponent)
}

func TestPlainTextMode_IsIdentity(t *testing.T) {
	h := NewPlainText()
	token, err := h.Hash("documents")
	require.NoError(t, err)
	assert.Equal(t, "documents", token)
}

func TestHashPair_PAEDomainSeparation(t *testing.T) {
	h := New([]byte("test-key-0123456789"))

	// (uid="ab", chunkIndex bytes) must not collide with the
	// concatenation-equivalent single-field hash of "ab"+chunkIndex bytes.
	pairToken := h.HashPair([]byte("ab"), []byte{0})
	singleToken, err := h.Hash("ab\x00")
	require.NoError(t, err)

	assert.NotEqual(t, pairToken, singleToken)
}
