package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/viewtube/viewtube/internal/filex"
	sc "github.com/viewtube/viewtube/internal/server/config"
)

// Uploader is the media-upload collaborator: given a spooled local file it
// returns a durable URL. Implementations must remove the local file on both
// success and failure so the spool directory does not leak.
type Uploader interface {
	Upload(ctx context.Context, localPath, contentType string) (string, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(client *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return client.PutObject(ctx, in)
	}
)

// MediaService stores uploaded files in an S3-compatible bucket.
type MediaService struct {
	config *sc.Config
}

func NewMediaService(config *sc.Config) *MediaService {
	return &MediaService{config: config}
}

// GetRandomStorageKey returns a bucket key of the form
// users/<year>/<month>/<day>/<uuid><ext>.
func GetRandomStorageKey(ext string) string {
	d := time.Now()
	return fmt.Sprintf("users/%d/%d/%d/%v%s", d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}

func (s *MediaService) getClient() (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,     // MINIO_ROOT_USER
			s.config.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, nil
}

// Upload pushes the spooled file at localPath into the bucket and returns
// its durable URL. The local file is removed whether or not the upload
// succeeds.
func (s *MediaService) Upload(ctx context.Context, localPath, contentType string) (string, error) {
	defer func() { _ = filex.RemoveQuietly(localPath) }()

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	client, err := s.getClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	key := GetRandomStorageKey(filepath.Ext(localPath))

	if _, err := putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        f,
		ContentType: &contentType,
	}); err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	return s.objectURL(bucket, key), nil
}

func (s *MediaService) objectURL(bucket, key string) string {
	base := strings.TrimSuffix(s.config.S3BaseEndpoint, "/")
	return fmt.Sprintf("%s/%s/%s", base, bucket, key)
}
