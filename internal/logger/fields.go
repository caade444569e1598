package logger

import (
	"fmt"
	"log/slog"
)

// Standard field keys for structured logging. Use these consistently
// across log statements so aggregation and querying stay uniform.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Operations
	// ========================================================================
	KeyOperation = "operation" // Core operation name: createFile, setFileData, renameFolder, etc.
	KeyStatus    = "status"    // Operation status code
	KeyStatusMsg = "status_msg"

	// ========================================================================
	// Paths & Entries
	// ========================================================================
	KeyPath       = "path"        // Full logical path
	KeyName       = "name"        // Leaf name
	KeyExtension  = "extension"   // File extension
	KeyParentPath = "parent_path" // Parent folder path
	KeyOldPath    = "old_path"    // Source path for rename/move operations
	KeyNewPath    = "new_path"    // Destination path for rename/move operations
	KeyEntryKind  = "entry_kind"  // file, folder, or none

	// ========================================================================
	// Content
	// ========================================================================
	KeyUID            = "uid"             // Content-addressing uid of a file's data
	KeyChunkIndex     = "chunk_index"     // Index of the content chunk being processed
	KeyChunks         = "chunks"          // Total chunk count on a file record
	KeyDecryptedBytes = "decrypted_bytes" // Plaintext byte count
	KeyEncryptedBytes = "encrypted_bytes" // Ciphertext byte count (chunks + headers)

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyErrorCode  = "error_code"
	KeySource     = "source" // Data source: lookup store, tree store, adapter

	// ========================================================================
	// Storage Adapter
	// ========================================================================
	KeyStoreType  = "store_type" // Adapter kind: memory, filesystem, s3
	KeyBucket     = "bucket"     // Cloud bucket name (S3 adapter)
	KeyObjectKey  = "object_key" // Object key in cloud storage
	KeyRegion     = "region"
	KeyAttempt    = "attempt"
	KeyMaxRetries = "max_retries"

	// ========================================================================
	// Directory Operations
	// ========================================================================
	KeyEntries = "entries" // Number of folder entries yielded

	// ========================================================================
	// Locking
	// ========================================================================
	KeyLockKind  = "lock_kind"  // read, write, or global
	KeyLockOwner = "lock_owner" // The unhashed path a turn was acquired for
)

// ============================================================================
// Field constructors for type safety
// ============================================================================

// TraceID returns a slog.Attr for an OpenTelemetry trace ID.
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for an OpenTelemetry span ID.
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// Operation returns a slog.Attr for the Core operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Status returns a slog.Attr for an operation status code.
func Status(code int) slog.Attr {
	return slog.Int(KeyStatus, code)
}

// StatusMsg returns a slog.Attr for a human-readable status message.
func StatusMsg(msg string) slog.Attr {
	return slog.String(KeyStatusMsg, msg)
}

// Path returns a slog.Attr for a logical path.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Name returns a slog.Attr for a leaf name.
func Name(n string) slog.Attr {
	return slog.String(KeyName, n)
}

// Extension returns a slog.Attr for a file extension.
func Extension(ext string) slog.Attr {
	return slog.String(KeyExtension, ext)
}

// ParentPath returns a slog.Attr for a parent folder path.
func ParentPath(p string) slog.Attr {
	return slog.String(KeyParentPath, p)
}

// OldPath returns a slog.Attr for a rename/move source path.
func OldPath(p string) slog.Attr {
	return slog.String(KeyOldPath, p)
}

// NewPath returns a slog.Attr for a rename/move destination path.
func NewPath(p string) slog.Attr {
	return slog.String(KeyNewPath, p)
}

// EntryKind returns a slog.Attr for an entry kind (file, folder, none).
func EntryKind(kind string) slog.Attr {
	return slog.String(KeyEntryKind, kind)
}

// UID returns a slog.Attr for a file's content-addressing uid, formatted as hex.
func UID(uid []byte) slog.Attr {
	return slog.String(KeyUID, fmt.Sprintf("%x", uid))
}

// ChunkIndex returns a slog.Attr for the content chunk index being processed.
func ChunkIndex(i uint64) slog.Attr {
	return slog.Uint64(KeyChunkIndex, i)
}

// Chunks returns a slog.Attr for a file record's total chunk count.
func Chunks(n int) slog.Attr {
	return slog.Int(KeyChunks, n)
}

// DecryptedBytes returns a slog.Attr for a plaintext byte count.
func DecryptedBytes(n uint64) slog.Attr {
	return slog.Uint64(KeyDecryptedBytes, n)
}

// EncryptedBytes returns a slog.Attr for a ciphertext byte count.
func EncryptedBytes(n uint64) slog.Attr {
	return slog.Uint64(KeyEncryptedBytes, n)
}

// DurationMs returns a slog.Attr for an operation duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a numeric error code.
func ErrorCode(code int) slog.Attr {
	return slog.Int(KeyErrorCode, code)
}

// Source returns a slog.Attr for the data source a log line concerns
// (lookup store, tree store, storage adapter).
func Source(src string) slog.Attr {
	return slog.String(KeySource, src)
}

// StoreType returns a slog.Attr for the storage adapter kind.
func StoreType(t string) slog.Attr {
	return slog.String(KeyStoreType, t)
}

// Bucket returns a slog.Attr for a cloud bucket name.
func Bucket(name string) slog.Attr {
	return slog.String(KeyBucket, name)
}

// ObjectKey returns a slog.Attr for an object key in cloud storage.
func ObjectKey(k string) slog.Attr {
	return slog.String(KeyObjectKey, k)
}

// Region returns a slog.Attr for a cloud region.
func Region(r string) slog.Attr {
	return slog.String(KeyRegion, r)
}

// Attempt returns a slog.Attr for a retry attempt number.
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}

// MaxRetries returns a slog.Attr for the maximum retry attempts.
func MaxRetries(n int) slog.Attr {
	return slog.Int(KeyMaxRetries, n)
}

// Entries returns a slog.Attr for the number of folder entries yielded.
func Entries(n int) slog.Attr {
	return slog.Int(KeyEntries, n)
}

// LockKind returns a slog.Attr for a turn's kind (read, write, global).
func LockKind(kind string) slog.Attr {
	return slog.String(KeyLockKind, kind)
}

// LockOwner returns a slog.Attr for the unhashed path a turn was acquired for.
func LockOwner(path string) slog.Attr {
	return slog.String(KeyLockOwner, path)
}
