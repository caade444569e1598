// Package crypto implements the core's key hierarchy and the two AEAD
// modes it uses: envelope mode for small self-contained buffers (records,
// sidecars, the keys-record) and streaming mode for chunked file content
// with encrypted per-chunk headers (§4.3).
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// KeySize is the size, in bytes, of every AEAD and HMAC key in the
// hierarchy: 32 bytes fits both XChaCha20-Poly1305 and HMAC-SHA256.
const KeySize = 32

// Label domain-separates a key derivation (§6.4 cryptLabel/hmacLabel): an
// opaque 128-bit value used as HKDF's salt.
type Label [16]byte

// KeyMaterial is a derived or generated (AEAD key, HMAC key) pair.
type KeyMaterial struct {
	AEADKey [KeySize]byte
	HMACKey [KeySize]byte
}

// DeriveIntermediateKeys derives the envelope AEAD key and naming HMAC key
// used only to read/write the keys-record at the storage root, from the
// externally supplied derivation key (§3 Keys, phase 1 of §4.8.1 init).
func DeriveIntermediateKeys(derivationKey []byte, cryptLabel, hmacLabel Label) (KeyMaterial, error) {
	var km KeyMaterial

	aeadKey, err := hkdfExpand(derivationKey, cryptLabel[:], "veilfs-envelope-key-v1")
	if err != nil {
		return km, fmt.Errorf("crypto: derive envelope key: %w", err)
	}
	hmacKey, err := hkdfExpand(derivationKey, hmacLabel[:], "veilfs-naming-key-v1")
	if err != nil {
		return km, fmt.Errorf("crypto: derive naming key: %w", err)
	}

	copy(km.AEADKey[:], aeadKey)
	copy(km.HMACKey[:], hmacKey)
	return km, nil
}

// GenerateKeyMaterial produces fresh random persistent keys, used the
// first time a storage root is initialized (§4.8.1: "If absent, generate
// the persistent AEAD and HMAC key material randomly").
func GenerateKeyMaterial() (KeyMaterial, error) {
	var km KeyMaterial
	if _, err := io.ReadFull(rand.Reader, km.AEADKey[:]); err != nil {
		return km, fmt.Errorf("crypto: generate AEAD key: %w", err)
	}
	if _, err := io.ReadFull(rand.Reader, km.HMACKey[:]); err != nil {
		return km, fmt.Errorf("crypto: generate HMAC key: %w", err)
	}
	return km, nil
}

func hkdfExpand(secret, salt []byte, info string) ([]byte, error) {
	reader := hkdf.New(sha256.New, secret, salt, []byte(info))
	out := make([]byte, KeySize)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, err
	}
	return out, nil
}

// newAEAD constructs the XChaCha20-Poly1305 AEAD used throughout the
// package. The 24-byte nonce space lets nonces be derived deterministically
// (for headers) without a meaningful collision risk, and generated
// randomly (for envelope mode) without needing a counter.
func newAEAD(key [KeySize]byte) (aeadCipher, error) {
	return chacha20poly1305.NewX(key[:])
}
