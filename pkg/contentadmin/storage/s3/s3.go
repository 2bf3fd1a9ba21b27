// Package s3 provides the S3 implementation of contentadmin.BlobStore:
// pre-signed PUT URLs for direct browser uploads and batch deletion for
// cascade cleanup. Asset bytes never pass through the API.
package s3

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/botthef/content-admin/pkg/contentadmin"
)

// S3 caps DeleteObjects at 1000 keys per request.
const deleteBatchLimit = 1000

// Config options for the S3 backend
type Config struct {
	Region          string // AWS region
	Bucket          string // S3 bucket name
	AccessKeyID     string // AWS access key ID
	SecretAccessKey string // AWS secret access key
	Endpoint        string // Optional custom endpoint for S3-compatible services
	UsePathStyle    bool   // Use path-style addressing (default: false)
	PresignDuration int    // Duration in seconds for presigned URLs (default: 300)
}

// Backend is an S3 implementation of the contentadmin.BlobStore interface
type Backend struct {
	client          *s3.Client
	bucket          string
	presignClient   *s3.PresignClient
	presignDuration time.Duration
}

var _ contentadmin.BlobStore = (*Backend)(nil)

// New creates a new S3 storage backend
func New(config Config) (*Backend, error) {
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}
	if config.Region == "" {
		config.Region = "us-west-2"
	}
	if config.PresignDuration == 0 {
		config.PresignDuration = 300 // 5 minutes
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.Region),
	}
	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)
	if config.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = config.UsePathStyle
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Options...)

	return &Backend{
		client:          client,
		bucket:          config.Bucket,
		presignClient:   s3.NewPresignClient(client),
		presignDuration: time.Duration(config.PresignDuration) * time.Second,
	}, nil
}

// GetUploadURL returns a presigned PUT URL bound to the given content type.
func (b *Backend) GetUploadURL(ctx context.Context, objectKey, contentType string) (string, error) {
	result, err := b.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(objectKey),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = b.presignDuration
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned upload URL: %w", err)
	}

	return result.URL, nil
}

// DeleteObjects batch-deletes the given keys. Per-key failures reported by
// S3 are collected into the returned error; the remaining keys are still
// deleted.
func (b *Backend) DeleteObjects(ctx context.Context, objectKeys []string) error {
	var errs []error

	for start := 0; start < len(objectKeys); start += deleteBatchLimit {
		end := min(start+deleteBatchLimit, len(objectKeys))

		identifiers := make([]types.ObjectIdentifier, 0, end-start)
		for _, key := range objectKeys[start:end] {
			identifiers = append(identifiers, types.ObjectIdentifier{Key: aws.String(key)})
		}

		out, err := b.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(b.bucket),
			Delete: &types.Delete{
				Objects: identifiers,
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to delete objects from S3: %w", err))
			continue
		}

		for _, objErr := range out.Errors {
			errs = append(errs, fmt.Errorf("failed to delete %s: %s: %s",
				aws.ToString(objErr.Key), aws.ToString(objErr.Code), aws.ToString(objErr.Message)))
		}
	}

	return errors.Join(errs...)
}
