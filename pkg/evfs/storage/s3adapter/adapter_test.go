//go:build integration

package s3adapter

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/veilfs/pkg/evfs/storage"
)

// createTestClient points at a LocalStack endpoint, following the same
// convention as the rest of the project's S3-backed integration tests.
func createTestClient(t *testing.T) *s3.Client {
	t.Helper()

	endpoint := os.Getenv("LOCALSTACK_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:4566"
	}

	ctx := context.Background()
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
	)
	require.NoError(t, err)

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})
}

func newTestAdapter(t *testing.T, bucket string) *Adapter {
	t.Helper()
	client := createTestClient(t)
	ctx := context.Background()

	_, err := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)})
	require.NoError(t, err)

	t.Cleanup(func() {
		a := New(client, Config{Bucket: bucket})
		_ = a.DeleteFolder(ctx, "/", true)
		_, _ = client.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(bucket)})
	})

	return New(client, Config{Bucket: bucket})
}

func TestAdapter_CreateFolderAndExists(t *testing.T) {
	a := newTestAdapter(t, "veilfs-test-folder")
	ctx := context.Background()

	require.NoError(t, a.CreateFolder(ctx, "/abc"))

	kind, err := a.Exists(ctx, "/abc")
	require.NoError(t, err)
	assert.Equal(t, storage.FolderEntry, kind)

	err = a.CreateFolder(ctx, "/abc")
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestAdapter_CreateFileAndDataRoundTrip(t *testing.T) {
	a := newTestAdapter(t, "veilfs-test-file")
	ctx := context.Background()

	require.NoError(t, a.CreateFile(ctx, "/f1"))

	has, err := a.HasFileData(ctx, "/f1")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, a.SetFileData(ctx, "/f1", bytes.NewReader([]byte("payload"))))

	r, err := a.GetFileData(ctx, "/f1")
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestAdapter_RenameIsUnsupported(t *testing.T) {
	a := newTestAdapter(t, "veilfs-test-rename")
	ctx := context.Background()

	require.NoError(t, a.CreateFile(ctx, "/f1"))
	assert.ErrorIs(t, a.RenameFile(ctx, "/f1", "f2"), storage.ErrRenameNotSupported)
	assert.False(t, a.HasNativeRenaming())
}

func TestAdapter_ListFolderExcludesDataSidecars(t *testing.T) {
	a := newTestAdapter(t, "veilfs-test-list")
	ctx := context.Background()

	require.NoError(t, a.CreateFolder(ctx, "/dir"))
	require.NoError(t, a.CreateFile(ctx, "/dir/f1"))
	require.NoError(t, a.SetFileData(ctx, "/dir/f1", bytes.NewReader([]byte("x"))))
	require.NoError(t, a.CreateFolder(ctx, "/dir/sub"))

	children, err := a.ListFolder(ctx, "/dir")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/dir/f1", "/dir/sub"}, children)
}

func TestAdapter_DeleteFileRemovesMarkerAndData(t *testing.T) {
	a := newTestAdapter(t, "veilfs-test-delete")
	ctx := context.Background()

	require.NoError(t, a.CreateFile(ctx, "/f1"))
	require.NoError(t, a.SetFileData(ctx, "/f1", bytes.NewReader([]byte("x"))))
	require.NoError(t, a.DeleteFile(ctx, "/f1", false))

	kind, err := a.Exists(ctx, "/f1")
	require.NoError(t, err)
	assert.Equal(t, storage.NoEntry, kind)

	err = a.DeleteFile(ctx, "/f1", false)
	assert.ErrorIs(t, err, storage.ErrNotExist)
	assert.NoError(t, a.DeleteFile(ctx, "/f1", true))
}

func TestAdapter_ClosedAdapterRejectsOperations(t *testing.T) {
	a := newTestAdapter(t, "veilfs-test-closed")
	ctx := context.Background()
	require.NoError(t, a.Close())

	_, err := a.Exists(ctx, "/x")
	assert.ErrorIs(t, err, storage.ErrClosed)
}
