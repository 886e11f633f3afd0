// Package storage holds the document content backends.
package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/lecturer-claims/internal/application/port"
)

// Backend names
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// Options selects and configures a backend
type Options struct {
	Backend  string
	LocalDir string
	S3       S3Config
}

// New builds the configured backend
func New(ctx context.Context, opts Options, logger *zap.Logger) (port.FileStorage, error) {
	switch opts.Backend {
	case "", BackendLocal:
		logger.Info("Using local document storage", zap.String("dir", opts.LocalDir))
		return NewLocalFileStorage(opts.LocalDir, logger), nil
	case BackendS3:
		client, err := NewS3Client(ctx, opts.S3)
		if err != nil {
			return nil, err
		}
		logger.Info("Using S3 document storage",
			zap.String("bucket", opts.S3.Bucket),
			zap.String("prefix", opts.S3.Prefix))
		return NewS3FileStorage(client, opts.S3, logger), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
