package crypto

import "fmt"

// Envelope encrypts and decrypts whole small buffers under a single AEAD
// key: folder/file records, the keys-record, and name-recovery sidecars
// (§4.3 "Envelope mode").
type Envelope struct {
	aead aeadCipher
}

// NewEnvelope constructs an Envelope bound to key.
func NewEnvelope(key [KeySize]byte) (*Envelope, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: new envelope AEAD: %w", err)
	}
	return &Envelope{aead: aead}, nil
}

// Seal encrypts plaintext, returning a self-contained ciphertext of the
// form nonce || ciphertext || tag. aad is authenticated but not encrypted
// (empty is fine when there is nothing to bind).
func (e *Envelope) Seal(plaintext, aad []byte) ([]byte, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if err := randomNonce(nonce); err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(nonce)+len(plaintext)+e.aead.Overhead())
	out = append(out, nonce...)
	out = e.aead.Seal(out, nonce, plaintext, aad)
	return out, nil
}

// Open decrypts a buffer produced by Seal with the same aad. A tamper or
// corruption returns ErrDecryptionFailed.
func (e *Envelope) Open(ciphertext, aad []byte) ([]byte, error) {
	nonceSize := e.aead.NonceSize()
	if len(ciphertext) < nonceSize+e.aead.Overhead() {
		return nil, ErrTruncated
	}
	nonce, body := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := e.aead.Open(nil, nonce, body, aad)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}
