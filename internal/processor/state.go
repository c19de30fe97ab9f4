package processor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/goran-ethernal/RWAListener/pkg/processor"
	"github.com/russross/meddler"
	"github.com/shopspring/decimal"
)

// LoadRow loads the single row matched by query into dst.
// It reports false when no row matches.
func LoadRow(tx *sql.Tx, dst interface{}, query string, args ...interface{}) (bool, error) {
	err := meddler.QueryRow(tx, dst, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SaveRow inserts a row with a zero primary key and updates it otherwise.
func SaveRow(tx *sql.Tx, table string, row interface{}) error {
	if err := meddler.Save(tx, table, row); err != nil {
		return fmt.Errorf("failed to save %s row: %w", table, err)
	}
	return nil
}

// InsertRow appends a row to a ledger table.
func InsertRow(tx *sql.Tx, table string, row interface{}) error {
	if err := meddler.Insert(tx, table, row); err != nil {
		return fmt.Errorf("failed to insert %s row: %w", table, err)
	}
	return nil
}

// Sub returns balance - amount, or ErrInsufficientFunds when amount exceeds balance.
func Sub(balance, amount decimal.Decimal, what string) (decimal.Decimal, error) {
	if amount.GreaterThan(balance) {
		return balance, fmt.Errorf("%w: %s %s, need %s", processor.ErrInsufficientFunds, what, balance, amount)
	}
	return balance.Sub(amount), nil
}

// MemberRow is a row of a member set table.
type MemberRow struct {
	ID       int64                      `meddler:"id,pk" json:"-"`
	Contract concordium.ContractAddress `meddler:"contract,contract" json:"contract"`
	Address  concordium.Address         `meddler:"address,address" json:"address"`
}

// MemberSet is a per contract set of addresses such as agents, issuers or identities.
// The table needs the columns (contract, address) with a UNIQUE constraint over both.
type MemberSet struct {
	Table string
	// Kind names members in log messages
	Kind string
}

// AddMember adds an address to the set. Adding an existing member is logged and ignored.
func (b *BaseProcessor) AddMember(ctx context.Context, tx *sql.Tx, set MemberSet,
	contract concordium.ContractAddress, member concordium.Address) error {
	//nolint:gosec // Table name comes from trusted metadata, not user input
	res, err := tx.ExecContext(ctx,
		"INSERT INTO "+set.Table+" (contract, address) VALUES (?, ?) ON CONFLICT (contract, address) DO NOTHING",
		contract.String(), member.String())
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", set.Kind, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		b.log.Warnf("%s %s already present for contract %s", set.Kind, member, contract)
	}
	return nil
}

// RemoveMember removes an address from the set. Removing a missing member is logged and ignored.
func (b *BaseProcessor) RemoveMember(ctx context.Context, tx *sql.Tx, set MemberSet,
	contract concordium.ContractAddress, member concordium.Address) error {
	//nolint:gosec // Table name comes from trusted metadata, not user input
	res, err := tx.ExecContext(ctx,
		"DELETE FROM "+set.Table+" WHERE contract = ? AND address = ?",
		contract.String(), member.String())
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", set.Kind, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		b.log.Warnf("%s %s not present for contract %s", set.Kind, member, contract)
	}
	return nil
}

// TreasuryRow is the treasury address of a contract.
type TreasuryRow struct {
	ID        int64                      `meddler:"id,pk" json:"-"`
	Contract  concordium.ContractAddress `meddler:"contract,contract" json:"contract"`
	Treasury  concordium.Address         `meddler:"treasury,address" json:"treasury"`
	UpdatedAt time.Time                  `meddler:"updated_at,unixmilli" json:"updated_at"`
}

// SetTreasury stores the treasury of a contract in a table shaped like TreasuryRow
// with a UNIQUE contract column.
func (b *BaseProcessor) SetTreasury(ctx context.Context, tx *sql.Tx, table string,
	contract concordium.ContractAddress, treasury concordium.Address, at time.Time) error {
	//nolint:gosec // Table name comes from trusted metadata, not user input
	_, err := tx.ExecContext(ctx,
		"INSERT INTO "+table+" (contract, treasury, updated_at) VALUES (?, ?, ?) "+
			"ON CONFLICT (contract) DO UPDATE SET treasury = excluded.treasury, updated_at = excluded.updated_at",
		contract.String(), treasury.String(), at.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to update treasury: %w", err)
	}

	b.log.Infow("treasury updated", "contract", contract.String(), "treasury", treasury.String())
	return nil
}
