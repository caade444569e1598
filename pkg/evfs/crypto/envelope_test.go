package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeyMaterial(t *testing.T) KeyMaterial {
	t.Helper()
	km, err := GenerateKeyMaterial()
	require.NoError(t, err)
	return km
}

func TestEnvelope_SealOpenRoundTrip(t *testing.T) {
	km := testKeyMaterial(t)
	env, err := NewEnvelope(km.AEADKey)
	require.NoError(t, err)

	plaintext := []byte("folder record contents")
	aad := []byte("folder:/documents/")

	ciphertext, err := env.Seal(plaintext, aad)
	require.NoError(t, err)
	assert.NotContains(t, string(ciphertext), "folder record")

	recovered, err := env.Open(ciphertext, aad)
	require.NoError(t, err)
	assert.Equal(t, plaintext, recovered)
}

func TestEnvelope_WrongAADFails(t *testing.T) {
	km := testKeyMaterial(t)
	env, err := NewEnvelope(km.AEADKey)
	require.NoError(t, err)

	ciphertext, err := env.Seal([]byte("data"), []byte("aad-a"))
	require.NoError(t, err)

	_, err = env.Open(ciphertext, []byte("aad-b"))
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestEnvelope_TamperedCiphertextFails(t *testing.T) {
	km := testKeyMaterial(t)
	env, err := NewEnvelope(km.AEADKey)
	require.NoError(t, err)

	ciphertext, err := env.Seal([]byte("data"), nil)
	require.NoError(t, err)
	ciphertext[len(ciphertext)-1] ^= 0xFF

	_, err = env.Open(ciphertext, nil)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestEnvelope_TruncatedCiphertextRejected(t *testing.T) {
	km := testKeyMaterial(t)
	env, err := NewEnvelope(km.AEADKey)
	require.NoError(t, err)

	_, err = env.Open([]byte("short"), nil)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestEnvelope_DistinctNoncesPerSeal(t *testing.T) {
	km := testKeyMaterial(t)
	env, err := NewEnvelope(km.AEADKey)
	require.NoError(t, err)

	a, err := env.Seal([]byte("same plaintext"), nil)
	require.NoError(t, err)
	b, err := env.Seal([]byte("same plaintext"), nil)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
