// Package dbtest opens throwaway SQLite databases with the storefront schema
// for repository and service tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	schema "github.com/AtRiskMedia/storefront-go/internal/infrastructure/database"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/database"
	"github.com/stretchr/testify/require"
)

// Open creates a file-backed database under t.TempDir and closes it on cleanup.
func Open(t testing.TB) *database.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "storefront.db")
	dsn := "file:" + path + "?_foreign_keys=on&_busy_timeout=5000"

	db, err := database.NewConnectionWithLogger("sqlite3", dsn, database.PoolConfig{MaxOpenConns: 1}, logging.NewDiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, schema.NewTableCreator().CreateSchema(context.Background(), db.DB))
	return db
}
