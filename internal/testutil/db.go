// Package testutil provides helpers shared by the listener's tests.
package testutil

import (
	"database/sql"
	"errors"
	"path"
	"testing"

	"github.com/goran-ethernal/RWAListener/internal/db"
	"github.com/goran-ethernal/RWAListener/internal/logger"
	"github.com/goran-ethernal/RWAListener/internal/migrations"
	"github.com/goran-ethernal/RWAListener/pkg/config"
	"github.com/stretchr/testify/require"
)

// NewTestDB creates a temporary SQLite database with the listener schema applied.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbConfig := config.DatabaseConfig{Path: path.Join(t.TempDir(), "listener.db")}
	dbConfig.ApplyDefaults()

	database, err := db.NewSQLiteDBFromConfig(dbConfig)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, migrations.RunMigrations(logger.NewNopLogger(), database))

	return database
}

// InTx runs fn in a transaction and commits it when fn succeeds.
// The error of fn is returned unchanged so tests can assert on it.
func InTx(t *testing.T, database *sql.DB, fn func(tx *sql.Tx) error) error {
	t.Helper()

	tx, err := database.BeginTx(t.Context(), nil)
	require.NoError(t, err)
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Errorf("failed to rollback transaction: %v", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	require.NoError(t, tx.Commit())
	return nil
}

// Count returns the number of rows of a table matching the optional condition.
func Count(t *testing.T, database *sql.DB, table, where string, args ...any) int {
	t.Helper()

	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}

	var n int
	require.NoError(t, database.QueryRow(query, args...).Scan(&n))
	return n
}
