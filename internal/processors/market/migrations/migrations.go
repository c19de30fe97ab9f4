package migrations

import (
	"database/sql"
	_ "embed"

	"github.com/goran-ethernal/RWAListener/internal/db"
	"github.com/goran-ethernal/RWAListener/internal/logger"
)

//go:embed 001_market.sql
var mig0001 string

// RunMigrations runs all migrations of the market processor.
func RunMigrations(log *logger.Logger, database *sql.DB) error {
	return db.RunMigrations(log, database, []db.Migration{
		{
			ID:     "001_market.sql",
			SQL:    mig0001,
			Prefix: "market_",
		},
	})
}
