package evfs

import "github.com/marmos91/veilfs/pkg/evfs/crypto"

// Config carries the options recognized at construction (§6.4); all
// fields are immutable for the lifetime of a Core.
type Config struct {
	// TargetMinChunkSize and TargetMaxChunkSize bound the per-chunk
	// random split target used by setFileData.
	TargetMinChunkSize uint64
	TargetMaxChunkSize uint64

	// CryptLabel and HMACLabel domain-separate the intermediate
	// envelope/naming keys used to read the keys-record from any other
	// use of HKDF in the key hierarchy.
	CryptLabel crypto.Label
	HMACLabel  crypto.Label

	// PlainTextMode makes the Name Hasher the identity function.
	// Diagnostic builds only; see AllowPlainTextMode.
	PlainTextMode bool

	// AllowPlainTextMode must also be set for PlainTextMode to take
	// effect. Two separately-checked flags make it harder to ship a
	// production build that accidentally leaves hashing disabled (§9:
	// "production builds must not expose it").
	AllowPlainTextMode bool

	// CompressMetadata zstd-compresses a record's Metadata field before
	// encryption, setting Compressed on the stored record so the read
	// path knows to reverse it. Off by default: most Metadata maps are
	// small enough that the envelope AEAD overhead dominates anyway.
	CompressMetadata bool
}

// DefaultConfig returns the recommended configuration: 256KiB-1MiB
// chunks, zero-value (still domain-separating, since HKDF's info string
// already differs per key) labels, and name hashing enabled.
func DefaultConfig() Config {
	return Config{
		TargetMinChunkSize: 256 * 1024,
		TargetMaxChunkSize: 1024 * 1024,
	}
}

func (c Config) validate() error {
	if c.TargetMinChunkSize == 0 {
		return newError(ErrInvalidPath, "", "TargetMinChunkSize must be > 0", nil)
	}
	if c.TargetMaxChunkSize < c.TargetMinChunkSize {
		return newError(ErrInvalidPath, "", "TargetMaxChunkSize must be >= TargetMinChunkSize", nil)
	}
	return nil
}
