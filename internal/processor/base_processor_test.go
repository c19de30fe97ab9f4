package processor

import (
	"context"
	"database/sql"
	"reflect"
	"testing"

	"github.com/goran-ethernal/RWAListener/internal/logger"
	"github.com/goran-ethernal/RWAListener/internal/testutil"
	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/goran-ethernal/RWAListener/pkg/config"
	"github.com/goran-ethernal/RWAListener/pkg/processor"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type testBalance struct {
	ID       int64                      `meddler:"id,pk"`
	Contract concordium.ContractAddress `meddler:"contract,contract"`
	TokenID  concordium.TokenID         `meddler:"token_id,tokenid"`
	Holder   concordium.Address         `meddler:"holder,address"`
	Amount   decimal.Decimal            `meddler:"amount,decimal"`
}

type testProvider struct{}

func (testProvider) InitProjections() map[string]*Projection {
	return map[string]*Projection{
		"balances": {
			Name:          "balances",
			Table:         "test_balances",
			RowType:       reflect.TypeOf(testBalance{}),
			HolderColumns: []string{"holder"},
			TokenColumn:   "token_id",
		},
		"members": {
			Name:          "members",
			Table:         "test_members",
			RowType:       reflect.TypeOf(MemberRow{}),
			HolderColumns: []string{"address"},
		},
	}
}

const testSchema = `
CREATE TABLE test_balances (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	contract TEXT NOT NULL,
	token_id TEXT NOT NULL,
	holder   TEXT NOT NULL,
	amount   TEXT NOT NULL,
	UNIQUE (contract, token_id, holder)
);
CREATE TABLE test_members (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	contract TEXT NOT NULL,
	address  TEXT NOT NULL,
	UNIQUE (contract, address)
);`

func newTestBase(t *testing.T) *BaseProcessor {
	t.Helper()

	database := testutil.NewTestDB(t)
	_, err := database.Exec(testSchema)
	require.NoError(t, err)

	base, err := NewBaseProcessor(database, logger.NewNopLogger(), config.ProcessorConfig{
		Type:         "Security-SFT",
		Name:         "sft",
		ModuleRef:    testutil.ModuleRef(3).String(),
		ContractName: "rwa_security_sft",
	})
	require.NoError(t, err)
	return base
}

func TestNewBaseProcessor(t *testing.T) {
	base := newTestBase(t)

	require.Equal(t, "sft", base.Name())
	require.Equal(t, "security-sft", base.Type())
	require.Equal(t, "rwa_security_sft", base.ContractName())
	require.Equal(t, testutil.ModuleRef(3), base.ModuleRef())
	require.NotNil(t, base.Log())

	_, err := NewBaseProcessor(base.DB, logger.NewNopLogger(), config.ProcessorConfig{ModuleRef: "abcd"})
	require.ErrorIs(t, err, concordium.ErrInvalidHash)
}

func TestProjectionNames(t *testing.T) {
	base := newTestBase(t)
	require.Equal(t, []string{"balances", "members"}, base.ProjectionNames(testProvider{}))
}

func TestQueryProjection(t *testing.T) {
	base := newTestBase(t)
	contract := testutil.Contract(1)
	other := testutil.Contract(2)

	require.NoError(t, testutil.InTx(t, base.DB, func(tx *sql.Tx) error {
		for i := byte(1); i <= 25; i++ {
			row := &testBalance{
				Contract: contract,
				TokenID:  concordium.TokenID{i % 2},
				Holder:   testutil.AccountAddr(i),
				Amount:   decimal.NewFromInt(int64(i)),
			}
			if err := SaveRow(tx, "test_balances", row); err != nil {
				return err
			}
		}
		return SaveRow(tx, "test_balances", &testBalance{
			Contract: other,
			TokenID:  concordium.TokenID{1},
			Holder:   testutil.AccountAddr(1),
			Amount:   decimal.NewFromInt(100),
		})
	}))

	tests := []struct {
		name      string
		query     processor.Query
		wantRows  int
		wantPages int
	}{
		{name: "first page", query: processor.Query{}, wantRows: 20, wantPages: 2},
		{name: "second page", query: processor.Query{Page: 1}, wantRows: 5, wantPages: 2},
		{name: "past the end", query: processor.Query{Page: 5}, wantRows: 0, wantPages: 2},
		{name: "custom page size", query: processor.Query{PageSize: 10}, wantRows: 10, wantPages: 3},
		{name: "holder", query: processor.Query{Holder: testutil.Account(3).String()}, wantRows: 1, wantPages: 1},
		{name: "token id", query: processor.Query{TokenID: "01"}, wantRows: 13, wantPages: 1},
		{name: "unknown holder", query: processor.Query{Holder: "<9,0>"}, wantRows: 0, wantPages: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := base.QueryProjection(context.Background(), testProvider{}, contract, "balances", tt.query)
			require.NoError(t, err)

			rows, ok := page.Data.([]*testBalance)
			require.True(t, ok)
			require.NotNil(t, rows)
			require.Len(t, rows, tt.wantRows)
			require.Equal(t, tt.query.Page, page.Page)
			require.Equal(t, tt.wantPages, page.PageCount)

			for _, r := range rows {
				require.Equal(t, contract, r.Contract)
			}
		})
	}

	page, err := base.QueryProjection(context.Background(), testProvider{}, contract, "balances",
		processor.Query{Holder: testutil.Account(7).String()})
	require.NoError(t, err)
	rows := page.Data.([]*testBalance)
	require.Equal(t, "7", rows[0].Amount.String())
	require.Equal(t, concordium.TokenID{1}, rows[0].TokenID)
}

func TestQueryProjection_Errors(t *testing.T) {
	base := newTestBase(t)
	ctx := context.Background()

	_, err := base.QueryProjection(ctx, testProvider{}, testutil.Contract(1), "transfers", processor.Query{})
	require.ErrorIs(t, err, processor.ErrUnknownProjection)

	_, err = base.QueryProjection(ctx, testProvider{}, testutil.Contract(1), "balances",
		processor.Query{Holder: "not-an-address"})
	require.ErrorIs(t, err, processor.ErrInvalidQuery)

	_, err = base.QueryProjection(ctx, testProvider{}, testutil.Contract(1), "balances",
		processor.Query{TokenID: "xyz"})
	require.ErrorIs(t, err, processor.ErrInvalidQuery)
}

func TestMemberSet(t *testing.T) {
	base := newTestBase(t)
	ctx := context.Background()
	set := MemberSet{Table: "test_members", Kind: "agent"}
	contract := testutil.Contract(1)
	agent := testutil.AccountAddr(9)

	require.NoError(t, testutil.InTx(t, base.DB, func(tx *sql.Tx) error {
		require.NoError(t, base.AddMember(ctx, tx, set, contract, agent))
		// adding twice is not an error
		require.NoError(t, base.AddMember(ctx, tx, set, contract, agent))
		require.NoError(t, base.AddMember(ctx, tx, set, testutil.Contract(2), agent))
		return nil
	}))
	require.Equal(t, 2, testutil.Count(t, base.DB, "test_members", ""))

	require.NoError(t, testutil.InTx(t, base.DB, func(tx *sql.Tx) error {
		require.NoError(t, base.RemoveMember(ctx, tx, set, contract, agent))
		// removing a missing member is not an error either
		require.NoError(t, base.RemoveMember(ctx, tx, set, contract, agent))
		return nil
	}))
	require.Equal(t, 1, testutil.Count(t, base.DB, "test_members", "contract = ?", "<2,0>"))
	require.Zero(t, testutil.Count(t, base.DB, "test_members", "contract = ?", "<1,0>"))
}

func TestLoadRow(t *testing.T) {
	base := newTestBase(t)

	require.NoError(t, testutil.InTx(t, base.DB, func(tx *sql.Tx) error {
		var row testBalance
		found, err := LoadRow(tx, &row, "SELECT * FROM test_balances WHERE id = ?", 1)
		require.NoError(t, err)
		require.False(t, found)

		require.NoError(t, SaveRow(tx, "test_balances", &testBalance{
			Contract: testutil.Contract(1),
			TokenID:  concordium.TokenID{},
			Holder:   testutil.ContractAddr(4),
			Amount:   decimal.RequireFromString("340282366920938463463374607431768211456"),
		}))

		found, err = LoadRow(tx, &row, "SELECT * FROM test_balances WHERE holder = ?", "<4,0>")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, testutil.ContractAddr(4), row.Holder)
		require.Equal(t, "340282366920938463463374607431768211456", row.Amount.String())

		// update in place keeps the primary key
		row.Amount = decimal.Zero
		require.NoError(t, SaveRow(tx, "test_balances", &row))
		require.Equal(t, int64(1), row.ID)
		return nil
	}))
	require.Equal(t, 1, testutil.Count(t, base.DB, "test_balances", "amount = '0'"))
}

func TestSub(t *testing.T) {
	got, err := Sub(decimal.NewFromInt(10), decimal.NewFromInt(4), "balance")
	require.NoError(t, err)
	require.True(t, got.Equal(decimal.NewFromInt(6)))

	got, err = Sub(decimal.NewFromInt(10), decimal.NewFromInt(10), "balance")
	require.NoError(t, err)
	require.True(t, got.IsZero())

	_, err = Sub(decimal.NewFromInt(3), decimal.NewFromInt(4), "balance")
	require.ErrorIs(t, err, processor.ErrInsufficientFunds)
	require.True(t, processor.IsFatal(err))
}
