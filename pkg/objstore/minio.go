package objstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioOption configures the Minio store.
type MinioOption func(*MinioConfig)

// MinioConfig holds S3-compatible endpoint configuration.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
}

// WithCredentials sets the static access credentials.
func WithCredentials(accessKey, secretKey string) MinioOption {
	return func(c *MinioConfig) {
		c.AccessKey = accessKey
		c.SecretKey = secretKey
	}
}

// WithSSL toggles TLS.
func WithSSL(enabled bool) MinioOption {
	return func(c *MinioConfig) { c.UseSSL = enabled }
}

// WithRegion sets the bucket region.
func WithRegion(region string) MinioOption {
	return func(c *MinioConfig) { c.Region = region }
}

// MinioStore implements Store against any S3-compatible endpoint.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to the endpoint and verifies the bucket exists.
func NewMinioStore(endpoint, bucket string, opts ...MinioOption) (*MinioStore, error) {
	cfg := &MinioConfig{Endpoint: endpoint, Bucket: bucket}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("objstore connect: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ok, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("objstore bucket check: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("objstore bucket %q does not exist", cfg.Bucket)
	}

	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

func (s *MinioStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("objstore put %s: %w", key, err)
	}
	return nil
}

func (s *MinioStore) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("objstore get %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("objstore read %s: %w", key, err)
	}
	return data, nil
}

func (s *MinioStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("objstore list %s: %w", prefix, obj.Err)
		}
		out = append(out, ObjectInfo{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *MinioStore) ListPrefixes(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: false}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("objstore list prefixes %s: %w", prefix, obj.Err)
		}
		// non-recursive listing reports common prefixes as keys ending in "/"
		if strings.HasSuffix(obj.Key, "/") {
			out = append(out, obj.Key)
		}
	}
	sort.Strings(out)
	return out, nil
}
