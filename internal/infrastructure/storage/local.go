package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/lecturer-claims/internal/application/port"
	"github.com/garyjia/lecturer-claims/internal/domain/entity"
)

// LocalFileStorage implements port.FileStorage on the local filesystem
type LocalFileStorage struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalFileStorage creates a new LocalFileStorage rooted at baseDir
func NewLocalFileStorage(baseDir string, logger *zap.Logger) *LocalFileStorage {
	return &LocalFileStorage{
		baseDir: baseDir,
		logger:  logger,
	}
}

// Save writes content under name and returns the path relative to baseDir
func (s *LocalFileStorage) Save(ctx context.Context, name string, content []byte) (string, error) {
	fullPath, err := s.resolve(name)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		s.logger.Error("Failed to create upload directory",
			zap.String("path", filepath.Dir(fullPath)),
			zap.Error(err))
		return "", fmt.Errorf("%w: failed to create directories: %w", entity.ErrStorage, err)
	}

	// O_EXCL so a generated name never overwrites an existing document
	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		s.logger.Error("Failed to create file", zap.String("path", fullPath), zap.Error(err))
		return "", fmt.Errorf("%w: failed to create file: %w", entity.ErrStorage, err)
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		_ = os.Remove(fullPath)
		s.logger.Error("Failed to write file", zap.String("path", fullPath), zap.Error(err))
		return "", fmt.Errorf("%w: failed to write file: %w", entity.ErrStorage, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("%w: failed to close file: %w", entity.ErrStorage, err)
	}

	s.logger.Debug("File saved",
		zap.String("path", fullPath),
		zap.Int("size", len(content)))

	return filepath.ToSlash(name), nil
}

// Read returns the content stored at path
func (s *LocalFileStorage) Read(ctx context.Context, path string) ([]byte, error) {
	fullPath, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(fullPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("file %s: %w", path, entity.ErrNotFound)
	}
	if err != nil {
		s.logger.Error("Failed to read file", zap.String("path", fullPath), zap.Error(err))
		return nil, fmt.Errorf("%w: failed to read file: %w", entity.ErrStorage, err)
	}
	return content, nil
}

// Delete removes the file at path; a missing file is not an error
func (s *LocalFileStorage) Delete(ctx context.Context, path string) error {
	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Error("Failed to delete file", zap.String("path", fullPath), zap.Error(err))
		return fmt.Errorf("%w: failed to delete file: %w", entity.ErrStorage, err)
	}
	return nil
}

// resolve joins name onto baseDir and refuses anything that escapes it
func (s *LocalFileStorage) resolve(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", entity.NewValidationError("file_name", "file name is required")
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", fmt.Errorf("%w: failed to resolve base path: %w", entity.ErrStorage, err)
	}
	absPath, err := filepath.Abs(filepath.Join(absBase, name))
	if err != nil {
		return "", fmt.Errorf("%w: failed to resolve path: %w", entity.ErrStorage, err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", entity.NewValidationError("file_name", "path escapes the storage directory")
	}
	return absPath, nil
}

// Verify interface compliance
var _ port.FileStorage = (*LocalFileStorage)(nil)
