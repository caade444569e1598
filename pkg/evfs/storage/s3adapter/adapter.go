// Package s3adapter implements storage.Adapter over an S3-compatible
// object store, grounded on the teacher's S3 block store.
package s3adapter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/marmos91/veilfs/pkg/evfs/storage"
)

// An object store has no native directory concept, so folders are
// represented by a zero-byte marker object at "<path>/" and files by a
// zero-byte marker object at "<path>" plus an optional "<path>.data"
// object holding content, mirroring the fan-out already used for content
// blobs (§6.2).
const folderMarkerSuffix = "/"
const dataSuffix = ".data"

// Config configures an S3 Adapter.
type Config struct {
	Bucket         string
	Region         string
	Endpoint       string
	KeyPrefix      string
	ForcePathStyle bool
}

// Adapter is an S3-backed storage.Adapter.
type Adapter struct {
	mu        sync.RWMutex
	client    *s3.Client
	bucket    string
	keyPrefix string
	closed    bool
}

// New constructs an Adapter from an existing S3 client.
func New(client *s3.Client, cfg Config) *Adapter {
	return &Adapter{client: client, bucket: cfg.Bucket, keyPrefix: cfg.KeyPrefix}
}

// NewFromConfig constructs an Adapter, loading AWS credentials and
// region from the environment/shared config per the default SDK chain.
func NewFromConfig(ctx context.Context, cfg Config) (*Adapter, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3adapter: load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.BaseEndpoint = aws.String(cfg.Endpoint) })
	}
	if cfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.UsePathStyle = true })
	}

	return New(s3.NewFromConfig(awsCfg, s3Opts...), cfg), nil
}

func (a *Adapter) key(path string) string {
	return a.keyPrefix + strings.TrimPrefix(path, "/")
}

func (a *Adapter) Exists(ctx context.Context, path string) (storage.EntryKind, error) {
	if err := a.checkOpen(); err != nil {
		return storage.NoEntry, err
	}

	if ok, err := a.headExists(ctx, a.key(path)+folderMarkerSuffix); err != nil {
		return storage.NoEntry, err
	} else if ok {
		return storage.FolderEntry, nil
	}

	if ok, err := a.headExists(ctx, a.key(path)); err != nil {
		return storage.NoEntry, err
	} else if ok {
		return storage.FileEntry, nil
	}

	return storage.NoEntry, nil
}

func (a *Adapter) headExists(ctx context.Context, key string) (bool, error) {
	_, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(a.bucket), Key: aws.String(key)})
	if err != nil {
		if isNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("s3adapter: head object: %w", err)
	}
	return true, nil
}

func (a *Adapter) CreateFolder(ctx context.Context, folderPath string) error {
	if err := a.checkOpen(); err != nil {
		return err
	}

	kind, err := a.Exists(ctx, folderPath)
	if err != nil {
		return err
	}
	if kind != storage.NoEntry {
		return storage.ErrAlreadyExists
	}

	return a.putEmpty(ctx, a.key(folderPath)+folderMarkerSuffix)
}

func (a *Adapter) CreateFile(ctx context.Context, filePath string) error {
	if err := a.checkOpen(); err != nil {
		return err
	}

	kind, err := a.Exists(ctx, filePath)
	if err != nil {
		return err
	}
	if kind != storage.NoEntry {
		return storage.ErrAlreadyExists
	}

	return a.putEmpty(ctx, a.key(filePath))
}

func (a *Adapter) putEmpty(ctx context.Context, key string) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
		Body:   strings.NewReader(""),
	})
	if err != nil {
		return fmt.Errorf("s3adapter: put object: %w", err)
	}
	return nil
}

func (a *Adapter) HasFileData(ctx context.Context, filePath string) (bool, error) {
	if err := a.checkOpen(); err != nil {
		return false, err
	}
	return a.headExists(ctx, a.key(filePath)+dataSuffix)
}

func (a *Adapter) GetFileData(ctx context.Context, filePath string) (io.ReadCloser, error) {
	if err := a.checkOpen(); err != nil {
		return nil, err
	}

	resp, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(filePath) + dataSuffix),
	})
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotExist
		}
		return nil, fmt.Errorf("s3adapter: get object: %w", err)
	}
	return resp.Body, nil
}

func (a *Adapter) SetFileData(ctx context.Context, filePath string, data io.Reader) error {
	if err := a.checkOpen(); err != nil {
		return err
	}

	buf, err := io.ReadAll(data)
	if err != nil {
		return err
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(filePath) + dataSuffix),
		Body:   bytes.NewReader(buf),
	})
	if err != nil {
		return fmt.Errorf("s3adapter: put object: %w", err)
	}
	return nil
}

func (a *Adapter) RenameFolder(ctx context.Context, folderPath, newName string) error {
	return storage.ErrRenameNotSupported
}

func (a *Adapter) RenameFile(ctx context.Context, filePath, newName string) error {
	return storage.ErrRenameNotSupported
}

// HasNativeRenaming is false: S3 has no rename primitive, only
// copy-then-delete, which the core must orchestrate itself with its own
// partial-failure recovery (§6.1, §4.5).
func (a *Adapter) HasNativeRenaming() bool { return false }

func (a *Adapter) ListFolder(ctx context.Context, folderPath string) ([]string, error) {
	if err := a.checkOpen(); err != nil {
		return nil, err
	}

	prefix := a.key(folderPath)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	children := make(map[string]struct{})
	paginator := s3.NewListObjectsV2Paginator(a.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(a.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3adapter: list objects: %w", err)
		}
		for _, p := range page.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(*p.Prefix, prefix), "/")
			children["/"+strings.TrimPrefix(prefix, a.keyPrefix)+name] = struct{}{}
		}
		for _, obj := range page.Contents {
			key := strings.TrimPrefix(*obj.Key, prefix)
			if key == "" || strings.HasSuffix(key, dataSuffix) {
				continue
			}
			children["/"+strings.TrimPrefix(prefix, a.keyPrefix)+key] = struct{}{}
		}
	}

	out := make([]string, 0, len(children))
	for c := range children {
		out = append(out, c)
	}
	return out, nil
}

func (a *Adapter) DeleteFolder(ctx context.Context, folderPath string, okIfNotExists bool) error {
	if err := a.checkOpen(); err != nil {
		return err
	}

	prefix := a.key(folderPath)
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	paginator := s3.NewListObjectsV2Paginator(a.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(a.bucket),
		Prefix: aws.String(prefix),
	})

	var anyListed bool
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("s3adapter: list objects: %w", err)
		}
		if len(page.Contents) == 0 {
			continue
		}
		anyListed = true

		objects := make([]types.ObjectIdentifier, len(page.Contents))
		for i, obj := range page.Contents {
			objects[i] = types.ObjectIdentifier{Key: obj.Key}
		}
		if _, err := a.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(a.bucket),
			Delete: &types.Delete{Objects: objects},
		}); err != nil {
			return fmt.Errorf("s3adapter: delete objects: %w", err)
		}
	}

	if !anyListed && !okIfNotExists {
		return storage.ErrNotExist
	}
	return nil
}

func (a *Adapter) DeleteFile(ctx context.Context, filePath string, okIfNotExists bool) error {
	if err := a.checkOpen(); err != nil {
		return err
	}

	kind, err := a.Exists(ctx, filePath)
	if err != nil {
		return err
	}
	if kind == storage.NoEntry {
		if okIfNotExists {
			return nil
		}
		return storage.ErrNotExist
	}

	for _, key := range []string{a.key(filePath), a.key(filePath) + dataSuffix} {
		if _, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(a.bucket),
			Key:    aws.String(key),
		}); err != nil {
			return fmt.Errorf("s3adapter: delete object: %w", err)
		}
	}
	return nil
}

// Close marks the adapter closed.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}

// HealthCheck performs a HeadBucket call to verify connectivity.
func (a *Adapter) HealthCheck(ctx context.Context) error {
	if err := a.checkOpen(); err != nil {
		return err
	}
	if _, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(a.bucket)}); err != nil {
		return fmt.Errorf("s3adapter: health check: %w", err)
	}
	return nil
}

func (a *Adapter) checkOpen() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return storage.ErrClosed
	}
	return nil
}

func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "NotFound") || strings.Contains(s, "NoSuchKey") || strings.Contains(s, "404")
}

var _ storage.Adapter = (*Adapter)(nil)
