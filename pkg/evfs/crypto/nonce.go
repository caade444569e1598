package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"

	"github.com/marmos91/veilfs/pkg/evfs/naming"
)

// headerNonceSize is XChaCha20-Poly1305's nonce size, duplicated here as a
// constant so this file has no import-time dependency on chacha20poly1305.
const headerNonceSize = 24

// deriveHeaderNonce computes the deterministic nonce used to seal a single
// chunk's header (§4.3 "Streaming mode"). The nonce is a function of the
// file uid and chunk index only, so a reader can recompute it and open the
// header ciphertext without any value stored alongside it.
func deriveHeaderNonce(hmacKey []byte, uid []byte, chunkIndex uint64) [headerNonceSize]byte {
	var indexBytes [8]byte
	binary.LittleEndian.PutUint64(indexBytes[:], chunkIndex)

	mac := hmac.New(sha256.New, hmacKey)
	mac.Write(naming.PAE(uid, indexBytes[:], []byte("chunk-header")))
	tag := mac.Sum(nil)

	var nonce [headerNonceSize]byte
	copy(nonce[:], tag[:headerNonceSize])
	return nonce
}
