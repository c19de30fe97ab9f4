package migrations

import (
	"database/sql"
	_ "embed"

	"github.com/goran-ethernal/RWAListener/internal/db"
	"github.com/goran-ethernal/RWAListener/internal/logger"
)

//go:embed 001_p2p_trading.sql
var mig0001 string

// RunMigrations runs all migrations of the P2P trading processor.
func RunMigrations(log *logger.Logger, database *sql.DB) error {
	return db.RunMigrations(log, database, []db.Migration{
		{
			ID:     "001_p2p_trading.sql",
			SQL:    mig0001,
			Prefix: "p2p_trading_",
		},
	})
}
