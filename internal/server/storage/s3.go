package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options are the settings needed to reach an S3-compatible endpoint
// (AWS or MinIO).
type S3Options struct {
	RootUser     string
	RootPassword string
	Bucket       string
	Region       string
	BaseEndpoint string
}

// S3Backend stores block objects in a single bucket.
type S3Backend struct {
	client *s3.Client
	bucket string
}

// seams for testing
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// NewS3Backend builds an S3 client with static credentials against the
// configured endpoint.
func NewS3Backend(ctx context.Context, opts S3Options) (*S3Backend, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.RootUser,     // MINIO_ROOT_USER
			opts.RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(opts.BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Backend{client: client, bucket: opts.Bucket}, nil
}

func (b *S3Backend) Write(ctx context.Context, name string, data []byte) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &b.bucket,
		Key:    &name,
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", name, err)
	}
	return nil
}

func (b *S3Backend) Read(ctx context.Context, name string) ([]byte, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &b.bucket,
		Key:    &name,
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", name, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", name, err)
	}
	return data, nil
}
