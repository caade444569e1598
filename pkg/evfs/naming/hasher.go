// Package naming implements the keyed, deterministic name-hashing scheme
// (§4.2) that turns plaintext path components into case-stable,
// filesystem-safe tokens, and the shared PAE framing used both by name
// hashing and by content-blob location hashing (§3 "Content blob
// layout").
package naming

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base32"
	"strings"
)

// Alphabet is the custom base32 alphabet used to render hash tags into
// filesystem-safe, case-stable tokens: 32 symbols, digits and lowercase
// letters only, leaving out the look-alikes 1, i, l and o (0 stays, since
// its look-alike o is left out).
const Alphabet = "abcdefghjkmnpqrstuvwxyz023456789"

var encoding = base32.NewEncoding(Alphabet).WithPadding(base32.NoPadding)

// TokenLength is the fixed length, in characters, of a hashed component
// token: 26 base32 characters encode the 16-byte truncated tag produced
// by Hasher.Hash.
const TokenLength = 26

// tagLength is the number of raw hash bytes truncated from the full
// HMAC-SHA256 tag before base32 encoding. 16 bytes (128 bits) keeps
// per-directory collision probability negligible at the fan-out scale
// described in §4.7 while keeping tokens short.
const tagLength = 16

// Hasher computes deterministic keyed hashes of path components under a
// single HMAC key.
//
// The zero value is not usable; construct with New or NewPlainText.
type Hasher struct {
	key       []byte
	plainText bool
}

// New constructs a production Hasher bound to a naming HMAC key. The key
// must be non-empty; callers derive it via pkg/evfs/crypto's key
// hierarchy (§3 Keys).
func New(hmacKey []byte) *Hasher {
	return &Hasher{key: append([]byte(nil), hmacKey...)}
}

// NewPlainText constructs a Hasher whose Hash method is the identity
// function on its input, for diagnostic builds only (§6.4 plainTextMode,
// §9 "production builds must not expose it"). Callers must gate this
// behind an explicit, separately-checked configuration flag — see
// evfs.Config.AllowPlainTextMode.
func NewPlainText() *Hasher {
	return &Hasher{plainText: true}
}

// Hash computes the token for a single path component. The same input
// under the same key always yields the same output; different inputs are
// statistically unique (§4.2).
func (h *Hasher) Hash(component string) (string, error) {
	if component == "" {
		return "", ErrEmptyComponent
	}
	if h.plainText {
		return component, nil
	}

	mac := hmac.New(sha256.New, h.key)
	mac.Write(PAE([]byte(component)))
	tag := mac.Sum(nil)[:tagLength]

	return strings.ToLower(encoding.EncodeToString(tag)), nil
}

// HashPair computes a token over a PAE-framed pair of byte strings,
// shared by the content-blob location hash over (uid, chunkIndex) (§3).
// It is unaffected by plain-text mode: blob addressing must remain
// collision-resistant even when name hashing is bypassed for debugging.
func (h *Hasher) HashPair(a, b []byte) string {
	mac := hmac.New(sha256.New, h.key)
	mac.Write(PAE(a, b))
	tag := mac.Sum(nil)[:tagLength]
	return strings.ToLower(encoding.EncodeToString(tag))
}

// ErrEmptyComponent is returned by Hash for an empty path component.
var ErrEmptyComponent = emptyComponentError{}

type emptyComponentError struct{}

func (emptyComponentError) Error() string { return "naming: empty path component" }
