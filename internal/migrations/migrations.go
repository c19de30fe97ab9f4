package migrations

import (
	"database/sql"
	_ "embed"

	"github.com/goran-ethernal/RWAListener/internal/db"
	"github.com/goran-ethernal/RWAListener/internal/logger"
)

const prefix = "listener_"

//go:embed 001_listener_core.sql
var mig001 string

// Migrations returns the schema owned by the listener itself: the checkpoint,
// the tracked contract registry and the call records.
func Migrations() []db.Migration {
	return []db.Migration{
		{
			ID:     "001_listener_core.sql",
			SQL:    mig001,
			Prefix: prefix,
		},
	}
}

// RunMigrations applies the listener migrations to the database.
func RunMigrations(log *logger.Logger, database *sql.DB) error {
	return db.RunMigrations(log, database, Migrations())
}
