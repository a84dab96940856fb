// Package storage provides the object-storage implementation backing
// image uploads. It speaks the S3 API and works against any
// S3-compatible backend (AWS S3, MinIO, RustFS).
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Storage struct {
	client    *s3.Client
	bucket    string
	publicURL string // base URL public objects resolve under
}

// Config for an S3-compatible endpoint. PublicBaseURL overrides how
// public URLs are built; when empty, path-style endpoint/bucket is
// assumed.
type Config struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// ConfigFromEnv reads the STORAGE_* environment variables. Returns
// ok=false when the required ones are absent, which disables uploads.
func ConfigFromEnv() (Config, bool) {
	cfg := Config{
		Endpoint:      os.Getenv("STORAGE_ENDPOINT"),
		Region:        os.Getenv("STORAGE_REGION"),
		Bucket:        os.Getenv("STORAGE_BUCKET"),
		AccessKey:     os.Getenv("STORAGE_ACCESS_KEY"),
		SecretKey:     os.Getenv("STORAGE_SECRET_KEY"),
		PublicBaseURL: os.Getenv("STORAGE_PUBLIC_URL"),
	}
	ok := cfg.Bucket != "" && cfg.AccessKey != "" && cfg.SecretKey != ""
	return cfg, ok
}

// NewS3Storage builds a client for the configured endpoint.
func NewS3Storage(cfg Config) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	endpoint := cfg.Endpoint
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	publicURL := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if publicURL == "" {
		publicURL = fmt.Sprintf("%s/%s", strings.TrimSuffix(endpoint, "/"), cfg.Bucket)
	}

	return &S3Storage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicURL,
	}, nil
}

// Put writes one object. Objects are never overwritten in practice
// because keys carry a fresh UUID.
func (s *S3Storage) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

// PublicURL resolves a key to its publicly reachable URL.
func (s *S3Storage) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s", s.publicURL, key)
}
