package cache

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"polycubes/internal/config"
	"polycubes/internal/polycube"
)

const runIDMetadata = "Run-Id"

// objectAPI is the slice of object storage the store needs. It is satisfied
// by bucketClient in production and by a mock in tests.
type objectAPI interface {
	Put(ctx context.Context, name string, data []byte, metadata map[string]string) error
	Get(ctx context.Context, name string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]minio.ObjectInfo, error)
}

// bucketClient binds a minio client to one bucket.
type bucketClient struct {
	client *minio.Client
	bucket string
}

func (b *bucketClient) Put(ctx context.Context, name string, data []byte, metadata map[string]string) error {
	_, err := b.client.PutObject(ctx, b.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  "application/octet-stream",
		UserMetadata: metadata,
	})
	return err
}

func (b *bucketClient) Get(ctx context.Context, name string) ([]byte, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return io.ReadAll(obj)
}

func (b *bucketClient) List(ctx context.Context, prefix string) ([]minio.ObjectInfo, error) {
	var objects []minio.ObjectInfo
	for obj := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

// MinIOStore keeps levels as objects in an S3-compatible bucket, named like
// the files of FileStore under an optional prefix.
type MinIOStore struct {
	api    objectAPI
	prefix string
	runID  string
	logger *zap.Logger
}

// OpenMinIO connects to the configured endpoint and creates the bucket if it
// does not exist yet.
func OpenMinIO(ctx context.Context, cfg config.MinIOConfig, runID string, logger *zap.Logger) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to minio at %s: %w", cfg.Endpoint, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("bucket created", zap.String("bucket", cfg.Bucket))
	}

	return newMinIOStore(&bucketClient{client: client, bucket: cfg.Bucket}, cfg.Prefix, runID, logger), nil
}

func newMinIOStore(api objectAPI, prefix, runID string, logger *zap.Logger) *MinIOStore {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &MinIOStore{api: api, prefix: prefix, runID: runID, logger: logger}
}

func (s *MinIOStore) name(order int) string { return s.prefix + FileName(order) }

func (s *MinIOStore) Load(ctx context.Context, order int) (*polycube.Hashy, error) {
	name := s.name(order)
	data, err := s.api.Get(ctx, name)
	if err != nil {
		if minio.ToErrorResponse(err).Code != "NoSuchKey" {
			s.logger.Warn("object read failed", zap.String("object", name), zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrCacheMiss, name, err)
	}
	return decodeLevel(data, order, name)
}

func (s *MinIOStore) Save(ctx context.Context, order int, h *polycube.Hashy) error {
	data, err := encode(h)
	if err != nil {
		return err
	}
	name := s.name(order)
	if err := s.api.Put(ctx, name, data, map[string]string{runIDMetadata: s.runID}); err != nil {
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}
	s.logger.Debug("level written", zap.String("object", name), zap.Int("bytes", len(data)))
	return nil
}

func (s *MinIOStore) List(ctx context.Context) ([]LevelInfo, error) {
	objects, err := s.api.List(ctx, s.prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects under %q: %w", s.prefix, err)
	}

	var levels []LevelInfo
	for _, obj := range objects {
		base := strings.TrimPrefix(obj.Key, s.prefix)
		var order int
		if _, err := fmt.Sscanf(base, "cubes_%d.bin", &order); err != nil || base != FileName(order) {
			continue
		}
		levels = append(levels, LevelInfo{Order: order, Bytes: obj.Size})
	}
	return sortLevels(levels), nil
}

func (s *MinIOStore) Close() error { return nil }
