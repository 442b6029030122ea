package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// s3KeyPrefix namespaces all photo objects inside the bucket.
const s3KeyPrefix = "reports/"

// S3Config configures the remote image host. Endpoint and path-style
// addressing make this work against MinIO and other S3-compatible servers,
// not just AWS.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // base endpoint override, e.g. "http://127.0.0.1:9000"
	AccessKey string
	SecretKey string
	// PublicBaseURL is prepended to object keys to form the stored
	// reference, e.g. "http://127.0.0.1:9000/reports-photos".
	PublicBaseURL string
}

// S3 stores blobs on an S3-compatible image host. References are full URLs;
// Delete derives the object key back from the URL.
type S3 struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

var _ Storage = (*S3)(nil)

// NewS3 builds the client with static credentials and the configured
// endpoint override.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: loading s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicBaseURL := strings.TrimRight(cfg.PublicBaseURL, "/")
	if publicBaseURL == "" {
		publicBaseURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}

	return &S3{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: publicBaseURL,
	}, nil
}

// Save uploads the blob under a fresh UUID key in the reports/ namespace and
// returns the public URL.
func (s *S3) Save(ctx context.Context, blob Blob) (string, error) {
	key := s3KeyPrefix + uuid.New().String() + extensionFor(blob.ContentType)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          blob.Reader,
		ContentLength: aws.Int64(blob.Size),
		ContentType:   aws.String(blob.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("storage: uploading %s: %w", key, err)
	}

	return s.publicBaseURL + "/" + key, nil
}

// Delete removes the object a reference URL points at.
func (s *S3) Delete(ctx context.Context, ref string) error {
	key, err := s.keyFromRef(ref)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage: deleting %s: %w", key, err)
	}
	return nil
}

// keyFromRef derives the object key from a stored reference URL. Only
// references under this store's public base URL are accepted.
func (s *S3) keyFromRef(ref string) (string, error) {
	prefix := s.publicBaseURL + "/"
	if !strings.HasPrefix(ref, prefix) {
		return "", fmt.Errorf("storage: reference %q is not managed by this store", ref)
	}
	key := strings.TrimPrefix(ref, prefix)
	if key == "" {
		return "", fmt.Errorf("storage: invalid reference %q", ref)
	}
	return key, nil
}
