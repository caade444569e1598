package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for Core operations, following OpenTelemetry semantic
// conventions where applicable. All keys use the "vfs." prefix except
// the storage-backend ("storage.") and lock ("lock.") groups, which mirror
// their subsystems' own vocabulary.
const (
	// ========================================================================
	// Operation attributes
	// ========================================================================
	AttrOperation  = "vfs.operation"   // Core method name (createFile, setFileData, ...)
	AttrPath       = "vfs.path"        // logical path argument
	AttrOldPath    = "vfs.old_path"    // rename/move source
	AttrNewPath    = "vfs.new_path"    // rename/move destination
	AttrEntryKind  = "vfs.entry_kind"  // file or folder
	AttrUID        = "vfs.uid"         // content-addressing uid, hex
	AttrChunkIndex = "vfs.chunk_index" // chunk position within a file's content
	AttrChunks     = "vfs.chunks"      // total chunk count recorded on a file
	AttrBytes      = "vfs.bytes"       // plaintext byte count for an I/O span
	AttrStatus     = "vfs.status"      // outcome of the operation
	AttrStatusMsg  = "vfs.status_msg"  // human-readable status detail

	// ========================================================================
	// Storage backend attributes
	// ========================================================================
	AttrStoreType = "storage.type"
	AttrBucket    = "storage.bucket"
	AttrObjectKey = "storage.object_key"
	AttrRegion    = "storage.region"
	AttrAttempt   = "storage.attempt"

	// ========================================================================
	// Lock attributes
	// ========================================================================
	AttrLockKind  = "lock.kind" // path or global
	AttrLockOwner = "lock.owner"
)

// SpanPrefix namespaces Core operation spans started via StartOperationSpan.
const SpanPrefix = "core."

// Span names for Core operations and the subsystems they drive.
const (
	// ========================================================================
	// Core operation spans
	// ========================================================================
	SpanInit         = "core.init"
	SpanCreateFile   = "core.createFile"
	SpanCreateFolder = "core.createFolder"
	SpanGetFileData  = "core.getFileData"
	SpanSetFileData  = "core.setFileData"
	SpanDeleteFile   = "core.deleteFile"
	SpanDeleteFolder = "core.deleteFolder"
	SpanListFolder   = "core.listFolder"
	SpanExists       = "core.exists"
	SpanRename       = "core.rename"
	SpanMove         = "core.move"
	SpanCopy         = "core.copy"
	SpanClear        = "core.clear"
	SpanSweep        = "core.sweep"

	// ========================================================================
	// Subsystem spans
	// ========================================================================
	SpanTreeLookup     = "tree.lookup"
	SpanTreeWrite      = "tree.write"
	SpanTreeDelete     = "tree.delete"
	SpanLookupBlobRead = "lookup.blob_read"
	SpanLookupBlobPut  = "lookup.blob_write"
	SpanCryptoSeal     = "crypto.seal"
	SpanCryptoOpen     = "crypto.open"
	SpanLockAcquire    = "lock.acquire"
	SpanLockRelease    = "lock.release"
)

// Operation returns an attribute for the Core method name.
func Operation(op string) attribute.KeyValue {
	return attribute.String(AttrOperation, op)
}

// Path returns an attribute for a logical path.
func Path(path string) attribute.KeyValue {
	return attribute.String(AttrPath, path)
}

// OldPath returns an attribute for a rename/move source path.
func OldPath(path string) attribute.KeyValue {
	return attribute.String(AttrOldPath, path)
}

// NewPath returns an attribute for a rename/move destination path.
func NewPath(path string) attribute.KeyValue {
	return attribute.String(AttrNewPath, path)
}

// EntryKind returns an attribute for whether an entry is a file or folder.
func EntryKind(kind string) attribute.KeyValue {
	return attribute.String(AttrEntryKind, kind)
}

// UID returns an attribute for a content-addressing uid, hex-encoded.
func UID(uid []byte) attribute.KeyValue {
	return attribute.String(AttrUID, fmt.Sprintf("%x", uid))
}

// ChunkIndex returns an attribute for a chunk's position within a file.
func ChunkIndex(index uint64) attribute.KeyValue {
	return attribute.Int64(AttrChunkIndex, int64(index))
}

// Chunks returns an attribute for a file's recorded chunk count.
func Chunks(count int) attribute.KeyValue {
	return attribute.Int(AttrChunks, count)
}

// Bytes returns an attribute for a plaintext byte count.
func Bytes(n int64) attribute.KeyValue {
	return attribute.Int64(AttrBytes, n)
}

// Status returns an attribute for an operation's outcome.
func Status(status string) attribute.KeyValue {
	return attribute.String(AttrStatus, status)
}

// StatusMsg returns an attribute for a human-readable status detail.
func StatusMsg(msg string) attribute.KeyValue {
	return attribute.String(AttrStatusMsg, msg)
}

// StoreType returns an attribute for the storage adapter's type.
func StoreType(t string) attribute.KeyValue {
	return attribute.String(AttrStoreType, t)
}

// Bucket returns an attribute for a storage bucket name.
func Bucket(name string) attribute.KeyValue {
	return attribute.String(AttrBucket, name)
}

// ObjectKey returns an attribute for a storage object key.
func ObjectKey(key string) attribute.KeyValue {
	return attribute.String(AttrObjectKey, key)
}

// Region returns an attribute for a storage region.
func Region(region string) attribute.KeyValue {
	return attribute.String(AttrRegion, region)
}

// Attempt returns an attribute for a storage retry attempt number.
func Attempt(n int) attribute.KeyValue {
	return attribute.Int(AttrAttempt, n)
}

// LockKind returns an attribute for the kind of turn held (path or global).
func LockKind(kind string) attribute.KeyValue {
	return attribute.String(AttrLockKind, kind)
}

// LockOwner returns an attribute for the path a turn is scoped to.
func LockOwner(owner string) attribute.KeyValue {
	return attribute.String(AttrLockOwner, owner)
}

// StartOperationSpan starts a span for a Core operation.
func StartOperationSpan(ctx context.Context, operation, path string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		Operation(operation),
	}
	if path != "" {
		allAttrs = append(allAttrs, Path(path))
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, SpanPrefix+operation, trace.WithAttributes(allAttrs...))
}

// StartContentSpan starts a span for a lookup store blob operation.
func StartContentSpan(ctx context.Context, operation string, uid []byte, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		UID(uid),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "lookup."+operation, trace.WithAttributes(allAttrs...))
}

// StartTreeSpan starts a span for a tree store operation.
func StartTreeSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, "tree."+operation, trace.WithAttributes(attrs...))
}

// StartLockSpan starts a span for a lock manager operation.
func StartLockSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, "lock."+operation, trace.WithAttributes(attrs...))
}
