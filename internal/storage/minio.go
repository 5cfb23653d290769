package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// MinioOptions configures a MinIO (or any S3-compatible) backend.
type MinioOptions struct {
	Endpoint     string // "minio:9000" or "http(s)://minio:9000"
	AccessKey    string
	SecretKey    string
	Region       string
	Bucket       string
	CreateBucket bool
}

// MinioStore stores objects in a single bucket via minio-go.
type MinioStore struct {
	client *minio.Client
	bucket string
}

func normaliseEndpoint(raw string) (endpoint string, secure bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("empty endpoint")
	}

	// Accept either "minio:9000" or "http://minio:9000" / "https://minio:9000".
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false, err
		}
		if u.Host == "" {
			return "", false, fmt.Errorf("invalid endpoint")
		}
		if u.Path != "" && u.Path != "/" {
			return "", false, fmt.Errorf("endpoint must not contain a path")
		}
		secure = (u.Scheme == "https")
		return u.Host, secure, nil
	}

	// No scheme provided, treat as host:port (insecure by default for local MinIO).
	return raw, false, nil
}

// NewMinioStore connects to the endpoint and checks the bucket. When
// CreateBucket is set a missing bucket is created instead of failing.
func NewMinioStore(ctx context.Context, opts MinioOptions, logger zerolog.Logger) (*MinioStore, error) {
	if opts.AccessKey == "" || opts.SecretKey == "" || opts.Bucket == "" {
		return nil, fmt.Errorf("minio configuration incomplete")
	}

	endpoint, secure, err := normaliseEndpoint(opts.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("minio endpoint: %w", err)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: secure,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if !opts.CreateBucket {
			return nil, fmt.Errorf("minio bucket does not exist: %s", opts.Bucket)
		}
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{Region: opts.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", opts.Bucket, err)
		}
		logger.Info().Str("bucket", opts.Bucket).Msg("bucket_created")
	}

	return &MinioStore{client: client, bucket: opts.Bucket}, nil
}

// minioPartSize bounds the buffer minio-go allocates per streamed upload.
// Without it an unknown-length put sizes parts for the 5 TiB object limit.
const minioPartSize = 16 << 20

func putObjectOptions(meta Metadata) minio.PutObjectOptions {
	return minio.PutObjectOptions{
		ContentType: meta.ContentType,
		PartSize:    minioPartSize,
	}
}

// Put streams body to the bucket. The size is unknown up front, so minio-go
// uploads it in multipart chunks of minioPartSize.
func (s *MinioStore) Put(ctx context.Context, key string, body io.Reader, meta Metadata) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, body, -1, putObjectOptions(meta))
	if err != nil {
		return fmt.Errorf("put object %q: %w", key, err)
	}
	return nil
}

func (s *MinioStore) Get(ctx context.Context, key string) (*Object, error) {
	if key == "" {
		return nil, ErrNotFound
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %q: %w", key, err)
	}

	// GetObject is lazy; Stat forces the request so a missing key surfaces here.
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if isMinioNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stat object %q: %w", key, err)
	}

	return &Object{
		Body:        obj,
		ContentType: info.ContentType,
		Size:        info.Size,
	}, nil
}

// Ping checks that the bucket is reachable.
func (s *MinioStore) Ping(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("minio bucket does not exist: %s", s.bucket)
	}
	return nil
}

func isMinioNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchObject"
}

var (
	_ Store  = (*MinioStore)(nil)
	_ Pinger = (*MinioStore)(nil)
)
