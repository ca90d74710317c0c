package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// OSSProvider implements Provider on Aliyun OSS.
type OSSProvider struct {
	client *oss.Client
	bucket *oss.Bucket
	domain string
}

// NewOSSProvider creates an OSS storage provider.
// Endpoint example: oss-cn-hangzhou.aliyuncs.com
func NewOSSProvider(endpoint, accessKeyID, accessKeySecret, bucketName, domain string) (*OSSProvider, error) {
	client, err := oss.New(endpoint, accessKeyID, accessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}

	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket %s: %w", bucketName, err)
	}

	if domain == "" {
		domain = fmt.Sprintf("https://%s.%s", bucketName, endpoint)
	} else if !strings.HasPrefix(domain, "http") {
		domain = "https://" + domain
	}

	return &OSSProvider{client: client, bucket: bucket, domain: domain}, nil
}

func (p *OSSProvider) Upload(ctx context.Context, file io.Reader, path string) (string, error) {
	objectKey := strings.TrimPrefix(path, "/")
	if err := p.bucket.PutObject(objectKey, file); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectKey, err)
	}
	return p.domain + "/" + objectKey, nil
}

func (p *OSSProvider) Delete(ctx context.Context, path string) error {
	objectKey := strings.TrimPrefix(path, "/")
	if err := p.bucket.DeleteObject(objectKey); err != nil {
		return fmt.Errorf("failed to delete %s: %w", objectKey, err)
	}
	return nil
}

func (p *OSSProvider) URL(ctx context.Context, path string) (string, error) {
	return p.domain + "/" + strings.TrimPrefix(path, "/"), nil
}

func (p *OSSProvider) List(ctx context.Context, prefix string, limit int) ([]FileInfo, error) {
	opts := []oss.Option{oss.Prefix(strings.TrimPrefix(prefix, "/"))}
	if limit > 0 {
		opts = append(opts, oss.MaxKeys(limit))
	}

	result, err := p.bucket.ListObjects(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, err)
	}

	files := make([]FileInfo, 0, len(result.Objects))
	for _, obj := range result.Objects {
		files = append(files, FileInfo{
			Name:      obj.Key,
			Size:      obj.Size,
			UpdatedAt: obj.LastModified.Unix(),
		})
	}
	return files, nil
}

var _ Provider = (*OSSProvider)(nil)
