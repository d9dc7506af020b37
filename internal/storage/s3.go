package storage

import (
	"context"
	"errors"
	"flowdata/internal/config"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const s3Scheme = "s3://"

// ErrNoObjectStore is returned for s3:// references when no client is configured.
var ErrNoObjectStore = errors.New("object storage is not configured")

// ObjectStore is the subset of *s3.Client used for workbooks.
type ObjectStore interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client builds a client from the S3_* settings. Static credentials are
// used when a key is configured, the default AWS chain otherwise.
func NewS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.S3UsePathStyle
	}), nil
}

// IsS3URI reports whether ref names an object rather than a local file.
func IsS3URI(ref string) bool {
	return strings.HasPrefix(ref, s3Scheme)
}

// ParseS3URI splits s3://bucket/key.
func ParseS3URI(ref string) (bucket, key string, err error) {
	if !IsS3URI(ref) {
		return "", "", fmt.Errorf("not an s3 uri: %q", ref)
	}
	bucket, key, _ = strings.Cut(strings.TrimPrefix(ref, s3Scheme), "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 uri %q needs a bucket and a key", ref)
	}
	return bucket, key, nil
}

// Workbooks moves source workbooks between object storage and local disk.
type Workbooks struct {
	client ObjectStore
	dir    string
}

// NewWorkbooks returns a store downloading into dir, or the OS temp dir when
// dir is empty. client may be nil, in which case only local paths can be fetched.
func NewWorkbooks(client ObjectStore, dir string) *Workbooks {
	return &Workbooks{client: client, dir: dir}
}

// Fetch returns a local path for ref. Local paths are returned unchanged with
// a no-op cleanup; objects are downloaded and cleanup removes the copy.
func (w *Workbooks) Fetch(ctx context.Context, ref string) (string, func(), error) {
	if !IsS3URI(ref) {
		return ref, func() {}, nil
	}
	if w.client == nil {
		return "", nil, fmt.Errorf("fetch %s: %w", ref, ErrNoObjectStore)
	}

	bucket, key, err := ParseS3URI(ref)
	if err != nil {
		return "", nil, err
	}

	out, err := w.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", nil, fmt.Errorf("get %s: %w", ref, err)
	}
	defer out.Body.Close()

	if w.dir != "" {
		if err := os.MkdirAll(w.dir, 0o755); err != nil {
			return "", nil, fmt.Errorf("create download dir: %w", err)
		}
	}
	f, err := os.CreateTemp(w.dir, "workbook-*"+path.Ext(key))
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() { os.Remove(f.Name()) }

	if _, err := io.Copy(f, out.Body); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("download %s: %w", ref, err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return f.Name(), cleanup, nil
}

// Upload copies a local workbook to bucket under prefix and returns its uri.
func (w *Workbooks) Upload(ctx context.Context, localPath, bucket, prefix string) (string, error) {
	if w.client == nil {
		return "", ErrNoObjectStore
	}
	if bucket == "" {
		return "", fmt.Errorf("upload %s: no bucket configured", localPath)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	key := path.Join(prefix, filepath.Base(localPath))
	_, err = w.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", bucket, key, err)
	}
	return s3Scheme + bucket + "/" + key, nil
}
