package artifact

import (
	"context"
	"fmt"
	"path"

	"github.com/minio/minio-go/v7"
)

// MinioSink publishes artifacts to a MinIO or any S3-compatible
// bucket (Ceph, Garage, SeaweedFS, AWS S3).
type MinioSink struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinioSink creates a sink writing under bucket/prefix.
func NewMinioSink(client *minio.Client, bucket, prefix string) *MinioSink {
	return &MinioSink{client: client, bucket: bucket, prefix: prefix}
}

// Publish implements Sink by streaming the local file to the bucket.
func (s *MinioSink) Publish(ctx context.Context, name, localPath string) error {
	key := path.Join(s.prefix, name)
	if _, err := s.client.FPutObject(ctx, s.bucket, key, localPath, minio.PutObjectOptions{}); err != nil {
		return fmt.Errorf("artifact: publish %s to %s/%s: %w", localPath, s.bucket, key, err)
	}
	return nil
}
