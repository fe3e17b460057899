package cloudstorage

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinIOProvider struct {
	client *minio.Client
	bucket string
}

func NewMinIOProvider(endpoint, accessKeyID, secretAccessKey, bucket string, secure bool) (*MinIOProvider, error) {
	m, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinIOProvider{client: m, bucket: bucket}, nil
}

func (p *MinIOProvider) List(ctx context.Context, prefix string) ([]Object, error) {
	var objects []Object
	for info := range p.client.ListObjects(ctx, p.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if info.Err != nil {
			return nil, fmt.Errorf("list objects in %s: %w", p.bucket, info.Err)
		}
		objects = append(objects, Object{
			Key:          info.Key,
			Size:         info.Size,
			LastModified: info.LastModified,
		})
	}
	return objects, nil
}

func (p *MinIOProvider) PresignGet(ctx context.Context, key string) (string, error) {
	u, err := p.client.PresignedGetObject(ctx, p.bucket, key, presignExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return u.String(), nil
}

var _ Provider = (*MinIOProvider)(nil)
