package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"wordvault/internal/config"
)

// minioStorage implements the Storage interface using an S3-compatible
// backend (MinIO, AWS S3, etc.). It is safe for concurrent use by multiple
// goroutines and is constructed explicitly; there is no package-level client.
type minioStorage struct {
	client *minio.Client
	bucket string
}

const (
	retryAttempts  = 3
	retryBaseDelay = 100 * time.Millisecond
)

// NewMinIO creates a new S3-compatible storage client backed by MinIO.
// It validates connectivity and ensures the bucket exists (creates it if missing).
func NewMinIO(cfg config.MinIOConfig) (Storage, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ms := &minioStorage{client: cli, bucket: cfg.Bucket}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", translate(err))
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", translate(err))
		}
	}

	return ms, nil
}

// translate maps backend errors onto the adapter taxonomy. Only ErrNotFound,
// ErrDenied and ErrUnavailable escape this package.
func translate(err error) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchObject", "NotFound":
		return fmt.Errorf("%w: %s", ErrNotFound, resp.Key)
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return fmt.Errorf("%w: %v", ErrDenied, err)
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}

// retryable reports whether an already-translated error is worth another
// attempt. NotFound and Denied are terminal.
func retryable(err error) bool {
	return err != nil && !isTerminal(err)
}

func isTerminal(err error) bool {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchObject", "NotFound",
		"AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return true
	}
	return false
}

// withRetry runs fn up to retryAttempts times with a doubling delay between
// attempts. The context deadline still bounds the whole call.
func withRetry(ctx context.Context, fn func() error) error {
	delay := retryBaseDelay
	var err error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if err = fn(); err == nil || !retryable(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}

// Put uploads an object using streaming I/O only (no local disk). Transient
// backend faults are not retried here: the reader may not be re-readable, so
// failed puts surface as ErrUnavailable for the caller to decide.
func (m *minioStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	putOpts := minio.PutObjectOptions{
		ContentType:  opt.ContentType,
		UserMetadata: opt.Metadata,
	}
	info, err := m.client.PutObject(ctx, m.bucket, key, r, opt.Size, putOpts)
	if err != nil {
		return ObjectInfo{}, translate(err)
	}
	return ObjectInfo{
		Key:          key,
		Size:         info.Size,
		ETag:         info.ETag,
		ContentType:  opt.ContentType,
		LastModified: time.Now(), // MinIO PutObjectInfo doesn't return LastModified
		Metadata:     opt.Metadata,
	}, nil
}

// Get downloads an object content as a ReadCloser along with basic info.
func (m *minioStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	var (
		obj *minio.Object
		st  minio.ObjectInfo
	)
	err := withRetry(ctx, func() error {
		o, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
		if err != nil {
			return err
		}
		// Fetch stat to populate info; avoid reading content into memory.
		s, err := o.Stat()
		if err != nil {
			o.Close()
			return err
		}
		obj, st = o, s
		return nil
	})
	if err != nil {
		return nil, ObjectInfo{}, translate(err)
	}
	return obj, objectInfo(key, st), nil
}

// Stat returns object info including user metadata.
func (m *minioStorage) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	var st minio.ObjectInfo
	err := withRetry(ctx, func() error {
		s, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
		if err != nil {
			return err
		}
		st = s
		return nil
	})
	if err != nil {
		return ObjectInfo{}, translate(err)
	}
	return objectInfo(key, st), nil
}

// Delete removes an object by key. Missing keys are not an error: S3
// semantics already treat removal of an absent object as success, and
// stricter backends reporting NotFound are folded into the same idempotent
// contract.
func (m *minioStorage) Delete(ctx context.Context, key string) error {
	err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
	if err == nil {
		return nil
	}
	terr := translate(err)
	if errors.Is(terr, ErrNotFound) {
		return nil
	}
	return terr
}

// List walks every object under the prefix in one pass over the current
// snapshot, including user metadata.
func (m *minioStorage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	opts := minio.ListObjectsOptions{
		Prefix:       prefix,
		Recursive:    true,
		WithMetadata: true,
	}
	var out []ObjectInfo
	for obj := range m.client.ListObjects(ctx, m.bucket, opts) {
		if obj.Err != nil {
			return nil, translate(obj.Err)
		}
		out = append(out, objectInfo(obj.Key, obj))
	}
	return out, nil
}

// PresignGet generates a pre-signed URL for GET with the specified expiry.
func (m *minioStorage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, expiry, url.Values{})
	if err != nil {
		return "", translate(err)
	}
	return u.String(), nil
}

func objectInfo(key string, st minio.ObjectInfo) ObjectInfo {
	return ObjectInfo{
		Key:          key,
		Size:         st.Size,
		ETag:         st.ETag,
		ContentType:  st.ContentType,
		LastModified: st.LastModified,
		Metadata:     st.UserMetadata,
	}
}
