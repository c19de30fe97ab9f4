package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/goran-ethernal/RWAListener/internal/logger"
	_ "github.com/mattn/go-sqlite3"
	migrate "github.com/rubenv/sql-migrate"
)

const (
	UpDownSeparator     = "-- +migrate Up"
	downMarker          = "-- +migrate Down"
	NoLimitMigrations   = 0 // indicate that there is no limit on the number of migrations to run
	migrationDirections = 2
)

const historyTableSuffix = "migrations"

// Migration is a single embedded schema change. Prefix names the component that owns it.
// Every prefix keeps its history in its own <prefix>migrations table, so components
// sharing the database never see each other's applied migrations.
type Migration struct {
	ID     string
	SQL    string
	Prefix string
}

// HistoryTable returns the table recording the applied migrations of a prefix.
func HistoryTable(prefix string) string {
	return prefix + historyTableSuffix
}

// RunMigrations applies all pending migrations upwards.
func RunMigrations(log *logger.Logger, db *sql.DB, migrations []Migration) error {
	return RunMigrationsExtended(log, db, migrations, migrate.Up, NoLimitMigrations)
}

// RunMigrationsExtended allows choosing the direction and the maximum number of migrations.
// dir: can be migrate.Up or migrate.Down
// maxMigrations: Will apply at most `max` migrations. Pass 0 for no limit
func RunMigrationsExtended(log *logger.Logger,
	db *sql.DB,
	migrations []Migration,
	dir migrate.MigrationDirection,
	maxMigrations int) error {
	sources := make(map[string]*migrate.MemoryMigrationSource)
	prefixes := make([]string, 0, 1)

	ids := make([]string, 0, len(migrations))
	for _, m := range migrations {
		parsed, err := parseMigration(m)
		if err != nil {
			return err
		}

		source, ok := sources[m.Prefix]
		if !ok {
			source = &migrate.MemoryMigrationSource{}
			sources[m.Prefix] = source
			prefixes = append(prefixes, m.Prefix)
		}
		source.Migrations = append(source.Migrations, parsed)
		ids = append(ids, parsed.Id)
	}

	list := strings.Join(ids, ", ")
	log.Debugf("running migrations: (max %d/%d) migrations: %s", maxMigrations, len(ids), list)

	total := 0
	for _, prefix := range prefixes {
		set := migrate.MigrationSet{TableName: HistoryTable(prefix)}

		n, err := set.ExecMax(db, "sqlite3", sources[prefix], dir, maxMigrations)
		if err != nil {
			return fmt.Errorf("error executing migration (max %d/%d) migrations: %s . Err: %w",
				maxMigrations, len(ids), list, err)
		}
		total += n
	}

	log.Infof("successfully ran %d migrations from migrations: %s", total, list)
	return nil
}

// parseMigration splits a migration file into its Down and Up sections.
// The Down section comes first.
func parseMigration(m Migration) (*migrate.Migration, error) {
	parts := strings.Split(m.SQL, UpDownSeparator)
	if len(parts) < migrationDirections {
		return nil, fmt.Errorf("migration %s missing '%s' separator", m.ID, UpDownSeparator)
	}

	down := parts[0]
	if idx := strings.Index(down, downMarker); idx != -1 {
		down = down[idx+len(downMarker):]
	}

	return &migrate.Migration{
		Id:   m.Prefix + m.ID,
		Up:   []string{strings.TrimSpace(parts[1])},
		Down: []string{strings.TrimSpace(down)},
	}, nil
}
