// Package blob issues signed, time-limited download URLs for attachments
// stored in S3-compatible object storage.
package blob

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

type Config struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	PathStyle bool
}

type Presigner struct {
	presign *s3.PresignClient
	bucket  string
	logger  *zap.Logger
}

// NewPresigner builds an S3 presign client. Credentials are static; a
// custom endpoint supports S3-compatible stores (MinIO and the like).
func NewPresigner(cfg Config, logger *zap.Logger) *Presigner {
	if logger == nil {
		logger = zap.NewNop()
	}

	awsCfg := aws.Config{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	logger.Info("blob presigner initialized",
		zap.String("bucket", cfg.Bucket), zap.String("region", cfg.Region))
	return &Presigner{
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		logger:  logger,
	}
}

// SignedURL returns a one-shot download URL valid for ttl. An empty
// bucket falls back to the configured default.
func (p *Presigner) SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if bucket == "" {
		bucket = p.bucket
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	req, err := p.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
