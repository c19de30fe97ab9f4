package mintfund

import (
	"database/sql"
	"testing"

	"github.com/goran-ethernal/RWAListener/internal/logger"
	"github.com/goran-ethernal/RWAListener/internal/testutil"
	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/goran-ethernal/RWAListener/pkg/config"
	"github.com/goran-ethernal/RWAListener/pkg/processor"
	"github.com/russross/meddler"
	"github.com/stretchr/testify/require"
)

const (
	stateSuccess = 1
	stateFail    = 2
)

var (
	fundContract  = testutil.Contract(400)
	tokenContract = testutil.Contract(401)
	euroContract  = testutil.Contract(402)
	token         = concordium.TokenID{0x07}

	investorA = testutil.AccountAddr(0x1a)
	investorB = testutil.AccountAddr(0x1b)
)

func newTestProcessor(t *testing.T) (*MintFundProcessor, *sql.DB) {
	t.Helper()

	database := testutil.NewTestDB(t)
	p, err := NewMintFundProcessor(config.ProcessorConfig{
		Type:         Type,
		Name:         "mint-fund",
		ModuleRef:    testutil.ModuleRef(4).String(),
		ContractName: "rwa_mint_fund",
	}, database, logger.NewNopLogger())
	require.NoError(t, err)

	return p.(*MintFundProcessor), database
}

func process(t *testing.T, p *MintFundProcessor, database *sql.DB, events ...[]byte) error {
	t.Helper()

	return testutil.InTx(t, database, func(tx *sql.Tx) error {
		_, err := p.ProcessEvents(t.Context(), tx, processor.CallContext{
			BlockHeight: 3,
			BlockTime:   testutil.GenesisTime,
			Contract:    fundContract,
		}, events)
		return err
	})
}

func openFund(t *testing.T, p *MintFundProcessor, database *sql.DB) {
	t.Helper()
	require.NoError(t, process(t, p, database,
		testutil.FundAdded(tokenContract, token, euroContract, concordium.TokenID{}, concordium.Rate{Numerator: 1, Denominator: 2}),
		testutil.FundInvested(tokenContract, token, investorA, 100, 50),
		testutil.FundInvested(tokenContract, token, investorB, 40, 20),
		testutil.FundInvested(tokenContract, token, investorA, 10, 5),
	))
}

func loadFund(t *testing.T, database *sql.DB) *Fund {
	t.Helper()

	var fund Fund
	require.NoError(t, meddler.QueryRow(database, &fund, "SELECT * FROM mint_fund_funds"))
	return &fund
}

func loadInvestor(t *testing.T, database *sql.DB, investor concordium.Address) (int64, int64) {
	t.Helper()

	var row Investor
	require.NoError(t, meddler.QueryRow(database, &row,
		"SELECT * FROM mint_fund_investors WHERE investor = ?", investor.String()))
	return row.CurrencyAmount.IntPart(), row.TokenAmount.IntPart()
}

func TestInvestAndCancel(t *testing.T) {
	p, database := newTestProcessor(t)
	openFund(t, p, database)

	fund := loadFund(t, database)
	require.Equal(t, FundOpen, fund.State)
	require.Equal(t, int64(150), fund.CurrencyAmount.IntPart())
	require.Equal(t, int64(75), fund.TokenAmount.IntPart())

	currency, tokens := loadInvestor(t, database, investorA)
	require.Equal(t, int64(110), currency)
	require.Equal(t, int64(55), tokens)

	require.NoError(t, process(t, p, database, testutil.FundInvestmentCancelled(tokenContract, token, investorB, 40, 20)))
	currency, tokens = loadInvestor(t, database, investorB)
	require.Zero(t, currency)
	require.Zero(t, tokens)

	err := process(t, p, database, testutil.FundInvestmentCancelled(tokenContract, token, investorB, 1, 0))
	require.ErrorIs(t, err, processor.ErrInsufficientFunds)

	require.Equal(t, 4, testutil.Count(t, database, recordsTable, ""))
	require.Equal(t, 1, testutil.Count(t, database, recordsTable, "record_type = ?", string(RecordCancelled)))
}

func TestClaimAndDisburseAreIndependent(t *testing.T) {
	p, database := newTestProcessor(t)
	openFund(t, p, database)

	// claims need a successful fund
	err := process(t, p, database, testutil.FundInvestmentClaimed(tokenContract, token, investorA, 55))
	require.ErrorIs(t, err, processor.ErrInvalidState)

	require.NoError(t, process(t, p, database, testutil.FundStateUpdated(tokenContract, token, stateSuccess)))

	require.NoError(t, process(t, p, database, testutil.FundInvestmentClaimed(tokenContract, token, investorA, 55)))
	currency, tokens := loadInvestor(t, database, investorA)
	require.Equal(t, int64(110), currency)
	require.Zero(t, tokens)

	require.NoError(t, process(t, p, database, testutil.FundInvestmentDisbursed(tokenContract, token, investorA, 110)))
	currency, _ = loadInvestor(t, database, investorA)
	require.Zero(t, currency)

	fund := loadFund(t, database)
	require.Equal(t, int64(40), fund.CurrencyAmount.IntPart())
	require.Equal(t, int64(20), fund.TokenAmount.IntPart())

	err = process(t, p, database, testutil.FundInvestmentClaimed(tokenContract, token, investorA, 1))
	require.ErrorIs(t, err, processor.ErrInsufficientFunds)

	// no investments or cancellations after success
	err = process(t, p, database, testutil.FundInvested(tokenContract, token, investorA, 1, 1))
	require.ErrorIs(t, err, processor.ErrInvalidState)
	err = process(t, p, database, testutil.FundInvestmentCancelled(tokenContract, token, investorB, 40, 20))
	require.ErrorIs(t, err, processor.ErrInvalidState)
}

func TestFundStateTransitions(t *testing.T) {
	tests := []struct {
		name    string
		states  []uint8
		wantErr error
	}{
		{name: "open to success", states: []uint8{stateSuccess}},
		{name: "open to fail", states: []uint8{stateFail}},
		{name: "open to open", states: []uint8{0}, wantErr: processor.ErrInvalidState},
		{name: "final state is final", states: []uint8{stateFail, stateSuccess}, wantErr: processor.ErrInvalidState},
		{name: "unknown state", states: []uint8{3}, wantErr: processor.ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, database := newTestProcessor(t)
			openFund(t, p, database)

			var err error
			for _, state := range tt.states {
				if err = process(t, p, database, testutil.FundStateUpdated(tokenContract, token, state)); err != nil {
					break
				}
			}
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, fundStates[tt.states[len(tt.states)-1]], loadFund(t, database).State)
		})
	}
}

func TestCancelAfterFailAndRemove(t *testing.T) {
	p, database := newTestProcessor(t)
	openFund(t, p, database)

	require.NoError(t, process(t, p, database,
		testutil.FundStateUpdated(tokenContract, token, stateFail),
		testutil.FundInvestmentCancelled(tokenContract, token, investorA, 110, 55),
	))
	require.Equal(t, FundFail, loadFund(t, database).State)

	require.NoError(t, process(t, p, database, testutil.FundRemoved(tokenContract, token)))
	require.Zero(t, testutil.Count(t, database, fundsTable, ""))
	require.Zero(t, testutil.Count(t, database, investorsTable, ""))
	require.Equal(t, 4, testutil.Count(t, database, recordsTable, ""))

	err := process(t, p, database, testutil.FundRemoved(tokenContract, token))
	require.ErrorIs(t, err, processor.ErrInvalidState)
}

func TestDuplicateFund(t *testing.T) {
	p, database := newTestProcessor(t)
	openFund(t, p, database)

	err := process(t, p, database,
		testutil.FundAdded(tokenContract, token, euroContract, concordium.TokenID{}, concordium.Rate{Numerator: 1, Denominator: 1}))
	require.ErrorIs(t, err, processor.ErrInvalidState)
}

func TestInvestmentRecordsProjection(t *testing.T) {
	p, database := newTestProcessor(t)
	openFund(t, p, database)

	page, err := p.QueryProjection(t.Context(), fundContract, "investment_records",
		processor.Query{Holder: investorA.String()})
	require.NoError(t, err)

	records := page.Data.([]*InvestmentRecord)
	require.Len(t, records, 2)
	require.Equal(t, int64(10), records[0].CurrencyAmount.IntPart())
	require.NotEqual(t, records[0].RecordID, records[1].RecordID)
}
