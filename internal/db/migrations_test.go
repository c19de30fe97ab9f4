package db

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/goran-ethernal/RWAListener/internal/logger"
	"github.com/stretchr/testify/require"
)

func tableMigration(prefix, table string) Migration {
	return Migration{
		ID:     "001_" + table + ".sql",
		Prefix: prefix,
		SQL: fmt.Sprintf(`-- +migrate Down
DROP TABLE IF EXISTS %[1]s;

-- +migrate Up
CREATE TABLE %[1]s (id INTEGER PRIMARY KEY);`, table),
	}
}

func tableExists(t *testing.T, database *sql.DB, table string) bool {
	t.Helper()

	var n int
	require.NoError(t, database.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n))
	return n == 1
}

func TestRunMigrations_IndependentPrefixes(t *testing.T) {
	database, _ := newTestDB(t, 0)
	log := logger.NewNopLogger()

	// components run one after another, in an order unrelated to how their ids sort
	components := []Migration{
		tableMigration("listener_", "checkpoint"),
		tableMigration("market_", "market_tokens"),
		tableMigration("identity_registry_", "identities"),
		tableMigration("security_sft_", "cis2_tokens"),
		tableMigration("p2p_trading_", "p2p_traders"),
	}

	for _, m := range components {
		require.NoError(t, RunMigrations(log, database, []Migration{m}))
	}

	for _, m := range components {
		table := m.ID[len("001_") : len(m.ID)-len(".sql")]
		require.True(t, tableExists(t, database, table), "table %s", table)
		require.True(t, tableExists(t, database, HistoryTable(m.Prefix)), "history of %s", m.Prefix)
	}

	// running again is a no-op
	for _, m := range components {
		require.NoError(t, RunMigrations(log, database, []Migration{m}))
	}

	var applied int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM market_migrations`).Scan(&applied))
	require.Equal(t, 1, applied)
}

func TestRunMigrations_MissingSeparator(t *testing.T) {
	database, _ := newTestDB(t, 0)

	err := RunMigrations(logger.NewNopLogger(), database, []Migration{
		{ID: "001_broken.sql", Prefix: "broken_", SQL: "CREATE TABLE broken (id INTEGER);"},
	})
	require.ErrorContains(t, err, "missing")
}
