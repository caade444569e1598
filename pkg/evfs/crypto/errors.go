package crypto

// errorString is a minimal comparable error type, avoiding a dependency on
// errors.New's allocation semantics for package-level sentinels.
type errorString string

func (e errorString) Error() string { return string(e) }

// ErrTruncated is returned when a ciphertext is too short to contain even
// a nonce and authentication tag.
const ErrTruncated = errorString("crypto: ciphertext truncated")

// ErrDecryptionFailed is returned whenever authentication fails, covering
// both corruption and deliberate tampering. Callers must not distinguish
// the two (§7: integrity failures surface as a single opaque error code).
const ErrDecryptionFailed = errorString("crypto: decryption failed")

// ErrHeaderIndexOutOfRange is returned when a chunk index has no
// corresponding entry in an aggregate header blob.
const ErrHeaderIndexOutOfRange = errorString("crypto: chunk header index out of range")
