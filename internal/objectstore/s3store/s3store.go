// Package s3store puts uploaded files into an S3 bucket (or any S3-compatible endpoint).
package s3store

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"todoTracker/internal/logger"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"go.uber.org/zap"
)

type Options struct {
	Region   string
	Endpoint string // empty means AWS itself
	Timeout  time.Duration
	// Static credentials; when AccessKeyID is empty the SDK default chain is used.
	AccessKeyID     string
	SecretAccessKey string
}

type Store struct {
	uploader *s3manager.Uploader
	endpoint string
}

func New(opts Options) (*Store, error) {
	cfg := &aws.Config{
		Region:     aws.String(opts.Region),
		MaxRetries: aws.Int(0),
		HTTPClient: &http.Client{Timeout: opts.Timeout},
	}
	if opts.Endpoint != "" {
		cfg.Endpoint = aws.String(opts.Endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
	if opts.AccessKeyID != "" {
		cfg.Credentials = credentials.NewStaticCredentials(opts.AccessKeyID, opts.SecretAccessKey, "")
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		logger.Error("S3: failed to create session", err, zap.String("region", opts.Region))
		return nil, fmt.Errorf("creating s3 session: %w", err)
	}

	logger.Info("S3: client ready", zap.String("region", opts.Region), zap.String("endpoint", opts.Endpoint))
	return &Store{
		uploader: s3manager.NewUploader(sess),
		endpoint: strings.TrimRight(opts.Endpoint, "/"),
	}, nil
}

func (s *Store) Put(ctx context.Context, bucket, key string, body io.Reader, contentType string) error {
	start := time.Now()

	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("uploading %s to bucket %s: %w", key, bucket, err)
	}

	logger.Debug("S3: object stored",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.Duration("ms", time.Since(start)))
	return nil
}

// URL is the public virtual-hosted address, or path-style under a custom endpoint.
func (s *Store) URL(bucket, key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", bucket, key)
}
