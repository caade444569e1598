package crypto

import (
	"encoding/binary"
	"fmt"

	"github.com/marmos91/veilfs/pkg/evfs/naming"
)

// chunkHeaderPlainSize is the plaintext size of a per-chunk header: a
// 24-byte content nonce followed by an 8-byte little-endian plaintext
// length (§4.3 "Streaming mode").
const chunkHeaderPlainSize = headerNonceSize + 8

// ChunkHeaderSize is the fixed ciphertext size of a sealed per-chunk
// header. Every header in an aggregate header blob occupies exactly this
// many bytes, which is what lets the blob's offsets array be computed
// without decrypting anything.
const ChunkHeaderSize = chunkHeaderPlainSize + 16 // AEAD tag overhead

const (
	chunkContentFormat byte = 0x01
	headerBlobFormat   byte = 0x02
)

// StreamCipher implements the chunked content format: each chunk's header
// (a random content nonce plus the chunk's plaintext length) is sealed
// under a nonce deterministically derived from (uid, chunkIndex), while
// the chunk's content is sealed under the random nonce recovered from
// that header. The concatenation of all chunk headers for a file forms
// its aggregate header blob, itself sealed once more as a single envelope
// buffer (§4.3, §4.7 "aggregate-header sidecar").
type StreamCipher struct {
	aead    aeadCipher
	hmacKey []byte
}

// NewStreamCipher constructs a StreamCipher bound to km's AEAD and HMAC
// keys.
func NewStreamCipher(km KeyMaterial) (*StreamCipher, error) {
	aead, err := newAEAD(km.AEADKey)
	if err != nil {
		return nil, fmt.Errorf("crypto: new stream AEAD: %w", err)
	}
	return &StreamCipher{aead: aead, hmacKey: km.HMACKey[:]}, nil
}

// SealChunk encrypts one chunk of plaintext, returning its fixed-size
// header ciphertext and its content ciphertext. uid identifies the file
// the chunk belongs to (§3 "Content blob layout"); index is the chunk's
// position within the file.
func (s *StreamCipher) SealChunk(uid []byte, index uint64, plaintext []byte) (header, content []byte, err error) {
	var contentNonce [headerNonceSize]byte
	if err := randomNonce(contentNonce[:]); err != nil {
		return nil, nil, fmt.Errorf("crypto: generate chunk nonce: %w", err)
	}

	var headerPlain [chunkHeaderPlainSize]byte
	copy(headerPlain[:headerNonceSize], contentNonce[:])
	binary.LittleEndian.PutUint64(headerPlain[headerNonceSize:], uint64(len(plaintext)))

	headerNonce := deriveHeaderNonce(s.hmacKey, uid, index)
	headerAAD := chunkHeaderAAD(uid, index)
	header = s.aead.Seal(nil, headerNonce[:], headerPlain[:], headerAAD)

	contentAAD := chunkContentAAD(uid, index)
	content = s.aead.Seal(nil, contentNonce[:], plaintext, contentAAD)

	return header, content, nil
}

// OpenChunkHeader decrypts a chunk header, recovering the content nonce
// and the chunk's original plaintext length.
func (s *StreamCipher) OpenChunkHeader(uid []byte, index uint64, header []byte) (contentNonce [headerNonceSize]byte, plaintextLen uint64, err error) {
	if len(header) != ChunkHeaderSize {
		return contentNonce, 0, ErrTruncated
	}

	headerNonce := deriveHeaderNonce(s.hmacKey, uid, index)
	headerAAD := chunkHeaderAAD(uid, index)

	plain, err := s.aead.Open(nil, headerNonce[:], header, headerAAD)
	if err != nil {
		return contentNonce, 0, ErrDecryptionFailed
	}

	copy(contentNonce[:], plain[:headerNonceSize])
	plaintextLen = binary.LittleEndian.Uint64(plain[headerNonceSize:])
	return contentNonce, plaintextLen, nil
}

// OpenChunkContent decrypts a chunk's content ciphertext given the content
// nonce recovered from OpenChunkHeader.
func (s *StreamCipher) OpenChunkContent(uid []byte, index uint64, contentNonce [headerNonceSize]byte, ciphertext []byte) ([]byte, error) {
	plain, err := s.aead.Open(nil, contentNonce[:], ciphertext, chunkContentAAD(uid, index))
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plain, nil
}

// SealHeaderBlob concatenates a file's per-chunk header ciphertexts (in
// chunk order) and wraps the concatenation in one more envelope layer,
// producing the aggregate-header sidecar blob (§4.7).
func (s *StreamCipher) SealHeaderBlob(uid []byte, headers [][]byte) ([]byte, error) {
	concatenated := make([]byte, 0, len(headers)*ChunkHeaderSize)
	for _, h := range headers {
		if len(h) != ChunkHeaderSize {
			return nil, fmt.Errorf("crypto: malformed chunk header, want %d bytes, got %d", ChunkHeaderSize, len(h))
		}
		concatenated = append(concatenated, h...)
	}

	var nonce [headerNonceSize]byte
	if err := randomNonce(nonce[:]); err != nil {
		return nil, fmt.Errorf("crypto: generate header blob nonce: %w", err)
	}

	sealed := s.aead.Seal(nil, nonce[:], concatenated, headerBlobAAD(uid))

	out := make([]byte, 0, 1+len(nonce)+len(sealed))
	out = append(out, headerBlobFormat)
	out = append(out, nonce[:]...)
	out = append(out, sealed...)
	return out, nil
}

// OpenHeaderBlob reverses SealHeaderBlob, returning the file's per-chunk
// header ciphertexts in order.
func (s *StreamCipher) OpenHeaderBlob(uid []byte, blob []byte) ([][]byte, error) {
	if len(blob) < 1+headerNonceSize {
		return nil, ErrTruncated
	}
	format, rest := blob[0], blob[1:]
	if format != headerBlobFormat {
		return nil, fmt.Errorf("crypto: unrecognized header blob format %#x", format)
	}

	nonce, sealed := rest[:headerNonceSize], rest[headerNonceSize:]
	concatenated, err := s.aead.Open(nil, nonce, sealed, headerBlobAAD(uid))
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	if len(concatenated)%ChunkHeaderSize != 0 {
		return nil, fmt.Errorf("crypto: header blob plaintext not a multiple of header size")
	}

	count := len(concatenated) / ChunkHeaderSize
	headers := make([][]byte, count)
	for i := 0; i < count; i++ {
		headers[i] = concatenated[i*ChunkHeaderSize : (i+1)*ChunkHeaderSize]
	}
	return headers, nil
}

// HeaderAt extracts the i'th header from an already-opened concatenation,
// returning ErrHeaderIndexOutOfRange if i is out of bounds. This lets a
// reader fetch one chunk's header without reassembling the whole slice
// when it already has the blob's plaintext cached.
func HeaderAt(headers [][]byte, i uint64) ([]byte, error) {
	if i >= uint64(len(headers)) {
		return nil, ErrHeaderIndexOutOfRange
	}
	return headers[i], nil
}

func chunkHeaderAAD(uid []byte, index uint64) []byte {
	return naming.PAE(uid, indexBytes(index), []byte("chunk-header"))
}

func chunkContentAAD(uid []byte, index uint64) []byte {
	return naming.PAE(uid, indexBytes(index), []byte{chunkContentFormat})
}

func headerBlobAAD(uid []byte) []byte {
	return naming.PAE(uid, []byte("header-blob"))
}

func indexBytes(index uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], index)
	return b[:]
}
