package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/lecturer-claims/internal/domain/entity"
)

func TestLocalFileStorage_SaveReadDelete(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalFileStorage(dir, zap.NewNop())
	ctx := context.Background()

	content := []byte("%PDF-1.4 timesheet")
	path, err := s.Save(ctx, "3f2a.pdf", content)
	require.NoError(t, err)
	assert.Equal(t, "3f2a.pdf", path)
	assert.FileExists(t, filepath.Join(dir, "3f2a.pdf"))

	got, err := s.Read(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	require.NoError(t, s.Delete(ctx, path))
	assert.NoFileExists(t, filepath.Join(dir, "3f2a.pdf"))

	// idempotent
	require.NoError(t, s.Delete(ctx, path))

	_, err = s.Read(ctx, path)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestLocalFileStorage_CreatesBaseDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	s := NewLocalFileStorage(dir, zap.NewNop())

	_, err := s.Save(context.Background(), "a.txt", []byte("x"))
	require.NoError(t, err)
	assert.DirExists(t, dir)
}

func TestLocalFileStorage_NeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalFileStorage(dir, zap.NewNop())
	ctx := context.Background()

	_, err := s.Save(ctx, "same.txt", []byte("first"))
	require.NoError(t, err)
	_, err = s.Save(ctx, "same.txt", []byte("second"))
	assert.ErrorIs(t, err, entity.ErrStorage)

	got, err := os.ReadFile(filepath.Join(dir, "same.txt"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(got))
}

func TestLocalFileStorage_RejectsTraversal(t *testing.T) {
	s := NewLocalFileStorage(t.TempDir(), zap.NewNop())
	ctx := context.Background()

	for _, name := range []string{"../escape.txt", "../../etc/passwd", "", "."} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Save(ctx, name, []byte("x"))
			assert.ErrorIs(t, err, entity.ErrValidation)
			_, err = s.Read(ctx, name)
			assert.ErrorIs(t, err, entity.ErrValidation)
		})
	}
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(context.Background(), Options{Backend: "ftp"}, zap.NewNop())
	assert.Error(t, err)

	fs, err := New(context.Background(), Options{Backend: BackendLocal, LocalDir: t.TempDir()}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &LocalFileStorage{}, fs)
}
