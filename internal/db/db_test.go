package db

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/goran-ethernal/RWAListener/pkg/config"
	"github.com/russross/meddler"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T, busyTimeout int) (*sql.DB, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "listener.db")
	cfg := config.DatabaseConfig{Path: dbPath, BusyTimeout: busyTimeout}
	cfg.ApplyDefaults()

	database, err := NewSQLiteDBFromConfig(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	return database, dbPath
}

func TestDBTotalSize(t *testing.T) {
	dir := t.TempDir()
	mainPath := filepath.Join(dir, "main.db")

	size, err := DBTotalSize(mainPath)
	require.NoError(t, err)
	require.Zero(t, size)

	require.NoError(t, os.WriteFile(mainPath, []byte("main-db"), 0o600))
	require.NoError(t, os.WriteFile(mainPath+"-wal", []byte("wal-content"), 0o600))

	size, err = DBTotalSize(mainPath)
	require.NoError(t, err)
	require.Equal(t, int64(len("main-db")+len("wal-content")), size)
}

func TestIsBusy(t *testing.T) {
	database, dbPath := newTestDB(t, 1)
	_, err := database.Exec(`CREATE TABLE t (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)

	tx, err := database.Begin()
	require.NoError(t, err)
	defer tx.Rollback() //nolint:errcheck

	other, err := NewSQLiteDBFromConfig(config.DatabaseConfig{
		Path: dbPath, JournalMode: "WAL", Synchronous: "NORMAL", BusyTimeout: 1, CacheSize: 100,
		MaxOpenConnections: 1, MaxIdleConnections: 1,
	})
	require.NoError(t, err)
	defer other.Close()

	_, err = other.Begin()
	require.Error(t, err)
	require.True(t, IsBusy(err))
	require.False(t, IsBusy(sql.ErrNoRows))
}

func TestIsUniqueViolation(t *testing.T) {
	database, _ := newTestDB(t, 1000)
	_, err := database.Exec(`CREATE TABLE t (k TEXT NOT NULL UNIQUE)`)
	require.NoError(t, err)

	_, err = database.Exec(`INSERT INTO t (k) VALUES ('a')`)
	require.NoError(t, err)
	_, err = database.Exec(`INSERT INTO t (k) VALUES ('a')`)
	require.True(t, IsUniqueViolation(err))
}

type converterRow struct {
	ID        int64                      `meddler:"id,pk"`
	Hash      concordium.Hash            `meddler:"hash,hash"`
	ParentRef *concordium.Hash           `meddler:"parent,hash"`
	Account   concordium.AccountAddress  `meddler:"account,account"`
	Contract  concordium.ContractAddress `meddler:"contract,contract"`
	Holder    concordium.Address         `meddler:"holder,address"`
	TokenID   concordium.TokenID         `meddler:"token_id,tokenid"`
	Amount    decimal.Decimal            `meddler:"amount,decimal"`
	SlotTime  time.Time                  `meddler:"slot_time,unixmilli"`
}

func TestMeddlerConverters(t *testing.T) {
	database, _ := newTestDB(t, 1000)
	_, err := database.Exec(`CREATE TABLE rows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hash TEXT, parent TEXT, account TEXT, contract TEXT, holder TEXT,
		token_id TEXT, amount TEXT, slot_time INTEGER)`)
	require.NoError(t, err)

	var account concordium.AccountAddress
	account[1] = 0xaa

	in := &converterRow{
		Hash:     concordium.Hash{0xde, 0xad},
		Account:  account,
		Contract: concordium.ContractAddress{Index: 9001},
		Holder:   concordium.ContractAddr(concordium.ContractAddress{Index: 12, Subindex: 3}),
		TokenID:  concordium.TokenID{0x2a},
		Amount:   decimal.RequireFromString("123456789012345678901234567890"),
		SlotTime: time.UnixMilli(1_700_000_000_123).UTC(),
	}
	require.NoError(t, meddler.Insert(database, "rows", in))

	var raw string
	require.NoError(t, database.QueryRow(`SELECT contract FROM rows`).Scan(&raw))
	require.Equal(t, "<9001,0>", raw)

	out := &converterRow{}
	require.NoError(t, meddler.Load(database, "rows", out, in.ID))
	require.Equal(t, in.Hash, out.Hash)
	require.Nil(t, out.ParentRef)
	require.Equal(t, in.Account, out.Account)
	require.Equal(t, in.Contract, out.Contract)
	require.Equal(t, in.Holder, out.Holder)
	require.Equal(t, in.TokenID, out.TokenID)
	require.True(t, in.Amount.Equal(out.Amount))
	require.Equal(t, in.SlotTime, out.SlotTime)
}
