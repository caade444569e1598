package evfs

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marmos91/veilfs/pkg/evfs/storage/memadapter"
)

func bytesReader(data []byte) io.Reader {
	return bytes.NewReader(data)
}

func newTestCore(t *testing.T) *Core {
	t.Helper()
	cfg := DefaultConfig()
	cfg.TargetMinChunkSize = 8
	cfg.TargetMaxChunkSize = 16
	c, err := Init(context.Background(), memadapter.New(), []byte("a test derivation secret"), cfg)
	require.NoError(t, err)
	return c
}
