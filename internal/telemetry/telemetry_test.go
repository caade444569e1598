package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "veilfs", cfg.ServiceName)
	assert.Equal(t, "dev", cfg.ServiceVersion)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestInitDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Enabled = false

	shutdown, err := Init(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	// Should be able to call shutdown without error
	err = shutdown(ctx)
	assert.NoError(t, err)

	// Should not be enabled
	assert.False(t, IsEnabled())
}

func TestTracerReturnsNoOp(t *testing.T) {
	// Reset state
	tracer = nil
	enabled = false

	// Without initialization, should return no-op tracer
	tr := Tracer()
	require.NotNil(t, tr)
}

func TestStartSpan(t *testing.T) {
	ctx := context.Background()

	// Even without initialization, StartSpan should work (no-op)
	newCtx, span := StartSpan(ctx, "test.operation")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)

	// Should be able to end the span
	span.End()
}

func TestSpanFromContext(t *testing.T) {
	ctx := context.Background()

	// Should return a span even without active span
	span := SpanFromContext(ctx)
	require.NotNil(t, span)
}

func TestAddEvent(t *testing.T) {
	ctx := context.Background()

	// Should not panic with no active span
	require.NotPanics(t, func() {
		AddEvent(ctx, "test.event")
	})
}

func TestRecordError(t *testing.T) {
	ctx := context.Background()

	// Should not panic with nil error
	require.NotPanics(t, func() {
		RecordError(ctx, nil)
	})

	// Should not panic with error
	require.NotPanics(t, func() {
		RecordError(ctx, errors.New("test error"))
	})
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()

	// Should not panic
	require.NotPanics(t, func() {
		SetStatus(ctx, codes.Ok, "success")
	})

	require.NotPanics(t, func() {
		SetStatus(ctx, codes.Error, "failed")
	})
}

func TestSetAttributes(t *testing.T) {
	ctx := context.Background()

	// Should not panic
	require.NotPanics(t, func() {
		SetAttributes(ctx, Operation("setFileData"))
	})
}

func TestTraceID(t *testing.T) {
	ctx := context.Background()

	// Without active span, should return empty string
	traceID := TraceID(ctx)
	assert.Equal(t, "", traceID)
}

func TestSpanID(t *testing.T) {
	ctx := context.Background()

	// Without active span, should return empty string
	spanID := SpanID(ctx)
	assert.Equal(t, "", spanID)
}

func TestAttributeHelpers(t *testing.T) {
	t.Run("Operation", func(t *testing.T) {
		attr := Operation("createFile")
		assert.Equal(t, AttrOperation, string(attr.Key))
		assert.Equal(t, "createFile", attr.Value.AsString())
	})

	t.Run("Path", func(t *testing.T) {
		attr := Path("/docs/report.pdf")
		assert.Equal(t, AttrPath, string(attr.Key))
		assert.Equal(t, "/docs/report.pdf", attr.Value.AsString())
	})

	t.Run("OldPath", func(t *testing.T) {
		attr := OldPath("/a.bin")
		assert.Equal(t, AttrOldPath, string(attr.Key))
		assert.Equal(t, "/a.bin", attr.Value.AsString())
	})

	t.Run("NewPath", func(t *testing.T) {
		attr := NewPath("/b.bin")
		assert.Equal(t, AttrNewPath, string(attr.Key))
		assert.Equal(t, "/b.bin", attr.Value.AsString())
	})

	t.Run("EntryKind", func(t *testing.T) {
		attr := EntryKind("file")
		assert.Equal(t, AttrEntryKind, string(attr.Key))
		assert.Equal(t, "file", attr.Value.AsString())
	})

	t.Run("UID", func(t *testing.T) {
		attr := UID([]byte{0x01, 0x02, 0x03, 0x04})
		assert.Equal(t, AttrUID, string(attr.Key))
		assert.Equal(t, "01020304", attr.Value.AsString())
	})

	t.Run("ChunkIndex", func(t *testing.T) {
		attr := ChunkIndex(7)
		assert.Equal(t, AttrChunkIndex, string(attr.Key))
		assert.Equal(t, int64(7), attr.Value.AsInt64())
	})

	t.Run("Chunks", func(t *testing.T) {
		attr := Chunks(3)
		assert.Equal(t, AttrChunks, string(attr.Key))
		assert.Equal(t, int64(3), attr.Value.AsInt64())
	})

	t.Run("Bytes", func(t *testing.T) {
		attr := Bytes(1048576)
		assert.Equal(t, AttrBytes, string(attr.Key))
		assert.Equal(t, int64(1048576), attr.Value.AsInt64())
	})

	t.Run("Status", func(t *testing.T) {
		attr := Status("ok")
		assert.Equal(t, AttrStatus, string(attr.Key))
		assert.Equal(t, "ok", attr.Value.AsString())
	})

	t.Run("StatusMsg", func(t *testing.T) {
		attr := StatusMsg("not found")
		assert.Equal(t, AttrStatusMsg, string(attr.Key))
		assert.Equal(t, "not found", attr.Value.AsString())
	})

	t.Run("StoreType", func(t *testing.T) {
		attr := StoreType("s3")
		assert.Equal(t, AttrStoreType, string(attr.Key))
		assert.Equal(t, "s3", attr.Value.AsString())
	})

	t.Run("Bucket", func(t *testing.T) {
		attr := Bucket("my-bucket")
		assert.Equal(t, AttrBucket, string(attr.Key))
		assert.Equal(t, "my-bucket", attr.Value.AsString())
	})

	t.Run("ObjectKey", func(t *testing.T) {
		attr := ObjectKey("path/to/object")
		assert.Equal(t, AttrObjectKey, string(attr.Key))
		assert.Equal(t, "path/to/object", attr.Value.AsString())
	})

	t.Run("Region", func(t *testing.T) {
		attr := Region("us-east-1")
		assert.Equal(t, AttrRegion, string(attr.Key))
		assert.Equal(t, "us-east-1", attr.Value.AsString())
	})

	t.Run("Attempt", func(t *testing.T) {
		attr := Attempt(2)
		assert.Equal(t, AttrAttempt, string(attr.Key))
		assert.Equal(t, int64(2), attr.Value.AsInt64())
	})

	t.Run("LockKind", func(t *testing.T) {
		attr := LockKind("global")
		assert.Equal(t, AttrLockKind, string(attr.Key))
		assert.Equal(t, "global", attr.Value.AsString())
	})

	t.Run("LockOwner", func(t *testing.T) {
		attr := LockOwner("/docs")
		assert.Equal(t, AttrLockOwner, string(attr.Key))
		assert.Equal(t, "/docs", attr.Value.AsString())
	})
}

func TestStartOperationSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartOperationSpan(ctx, "setFileData", "/docs/report.pdf")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	// With empty path
	newCtx2, span2 := StartOperationSpan(ctx, "clear", "")
	require.NotNil(t, newCtx2)
	require.NotNil(t, span2)
	span2.End()

	// With additional attributes
	newCtx3, span3 := StartOperationSpan(ctx, "setFileData", "/a.bin", ChunkIndex(0), Bytes(4096))
	require.NotNil(t, newCtx3)
	require.NotNil(t, span3)
	span3.End()
}

func TestStartContentSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartContentSpan(ctx, "blob_read", []byte{0xab, 0xcd})
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	// With additional attributes
	newCtx2, span2 := StartContentSpan(ctx, "blob_write", []byte{0xef, 0x01}, ChunkIndex(0), Bytes(1024))
	require.NotNil(t, newCtx2)
	require.NotNil(t, span2)
	span2.End()
}

func TestStartTreeSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartTreeSpan(ctx, "lookup")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	newCtx2, span2 := StartTreeSpan(ctx, "write", EntryKind("folder"))
	require.NotNil(t, newCtx2)
	require.NotNil(t, span2)
	span2.End()
}

func TestStartLockSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartLockSpan(ctx, "acquire")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	newCtx2, span2 := StartLockSpan(ctx, "release", LockKind("path"), LockOwner("/docs"))
	require.NotNil(t, newCtx2)
	require.NotNil(t, span2)
	span2.End()
}
