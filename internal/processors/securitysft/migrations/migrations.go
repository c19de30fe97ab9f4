package migrations

import (
	"database/sql"
	_ "embed"

	"github.com/goran-ethernal/RWAListener/internal/db"
	"github.com/goran-ethernal/RWAListener/internal/logger"
)

//go:embed 001_security_sft.sql
var mig0001 string

// RunMigrations runs all migrations of the security token processors.
func RunMigrations(log *logger.Logger, database *sql.DB) error {
	migrations := []db.Migration{
		{
			ID:     "001_security_sft.sql",
			SQL:    mig0001,
			Prefix: "security_sft_",
		},
	}

	return db.RunMigrations(log, database, migrations)
}
