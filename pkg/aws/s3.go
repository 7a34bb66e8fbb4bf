package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewS3Client creates a new S3 client from AWS config. Path-style addressing is
// forced when a custom endpoint (LocalStack) is configured.
func NewS3Client(cfg sdkaws.Config) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != nil {
			o.UsePathStyle = true
		}
	})
}

// ObjectReader downloads whole objects into memory.
type ObjectReader struct {
	downloader *manager.Downloader
}

// NewObjectReader creates an ObjectReader over any S3 GetObject client.
func NewObjectReader(client manager.DownloadAPIClient) *ObjectReader {
	return &ObjectReader{downloader: manager.NewDownloader(client)}
}

// ReadObject returns the content of bucket/key.
func (r *ObjectReader) ReadObject(ctx context.Context, bucket, key string) ([]byte, error) {
	buf := manager.NewWriteAtBuffer(nil)
	if _, err := r.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: sdkaws.String(bucket),
		Key:    sdkaws.String(key),
	}); err != nil {
		return nil, fmt.Errorf("failed to download s3://%s/%s: %w", bucket, key, err)
	}
	return buf.Bytes(), nil
}
