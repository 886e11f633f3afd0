package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/garyjia/lecturer-claims/internal/application/port"
	"github.com/garyjia/lecturer-claims/internal/domain/entity"
)

// S3API is the subset of the S3 client used for documents
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config selects the bucket documents are stored in
type S3Config struct {
	Bucket   string
	Region   string
	Endpoint string // custom endpoint, e.g. http://localstack:4566
	Prefix   string
}

// S3FileStorage implements port.FileStorage on an S3 bucket
type S3FileStorage struct {
	client S3API
	bucket string
	prefix string
	logger *zap.Logger
}

// NewS3Client loads the default AWS credential chain and builds a client.
// A custom endpoint switches to path-style addressing.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// NewS3FileStorage creates an S3-backed storage
func NewS3FileStorage(client S3API, cfg S3Config, logger *zap.Logger) *S3FileStorage {
	return &S3FileStorage{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: logger,
	}
}

// Save uploads content and returns the object key
func (s *S3FileStorage) Save(ctx context.Context, name string, content []byte) (string, error) {
	key, err := s.key(name)
	if err != nil {
		return "", err
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(content),
		ContentLength: aws.Int64(int64(len(content))),
	}
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		s.logger.Error("Failed to upload object",
			zap.String("bucket", s.bucket),
			zap.String("key", key),
			zap.Error(err))
		return "", fmt.Errorf("%w: failed to upload object: %w", entity.ErrStorage, err)
	}

	s.logger.Debug("Object uploaded", zap.String("key", key), zap.Int("size", len(content)))
	return key, nil
}

// Read downloads the object stored under key
func (s *S3FileStorage) Read(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("object %s: %w", key, entity.ErrNotFound)
		}
		s.logger.Error("Failed to download object", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("%w: failed to download object: %w", entity.ErrStorage, err)
	}
	defer out.Body.Close()

	content, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read object body: %w", entity.ErrStorage, err)
	}
	return content, nil
}

// Delete removes the object; S3 treats a missing key as success
func (s *S3FileStorage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.Error("Failed to delete object", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("%w: failed to delete object: %w", entity.ErrStorage, err)
	}
	return nil
}

func (s *S3FileStorage) key(name string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(name, "\\", "/"))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." {
		return "", entity.NewValidationError("file_name", "file name is required")
	}
	if s.prefix == "" {
		return clean, nil
	}
	return s.prefix + "/" + clean, nil
}

// Verify interface compliance
var _ port.FileStorage = (*S3FileStorage)(nil)
