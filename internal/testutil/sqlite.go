// Package testutil opens migrated databases for tests
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/lecturer-claims/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/lecturer-claims/pkg/database"
)

// NewDB returns a file-backed, migrated database removed when t ends
func NewDB(t *testing.T) *sqlite.DB {
	t.Helper()

	logger := zap.NewNop()
	db, err := database.New(database.Config{Path: filepath.Join(t.TempDir(), "claims.db")}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.NewMigrator(db, logger).Run())
	return sqlite.NewDB(db.DB, logger)
}
