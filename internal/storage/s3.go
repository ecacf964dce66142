package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Archiver stores export files in Amazon S3 (or compatible APIs).
type S3Archiver struct {
	client   *s3.Client
	uploader *manager.Uploader
}

func NewS3Archiver(client *s3.Client) *S3Archiver {
	return &S3Archiver{
		client:   client,
		uploader: manager.NewUploader(client),
	}
}

func (s *S3Archiver) Archive(ctx context.Context, name, contentType string, body []byte, opts ArchiveOptions) (string, error) {
	if opts.Bucket == "" {
		return "", fmt.Errorf("archive bucket is required")
	}
	if name == "" {
		return "", fmt.Errorf("archive object name is required")
	}

	key := strings.Trim(opts.KeyPrefix, "/")
	if key != "" {
		key += "/"
	}
	key += strings.TrimPrefix(name, "/")

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(opts.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	return fmt.Sprintf("s3://%s/%s", opts.Bucket, key), nil
}
