package market

import (
	"database/sql"
	"testing"

	"github.com/goran-ethernal/RWAListener/internal/logger"
	"github.com/goran-ethernal/RWAListener/internal/testutil"
	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/goran-ethernal/RWAListener/pkg/config"
	"github.com/goran-ethernal/RWAListener/pkg/processor"
	"github.com/russross/meddler"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	marketContract = testutil.Contract(100)
	assetContract  = testutil.Contract(200)
	euroContract   = testutil.Contract(300)
	asset          = concordium.TokenID{0x01}
	euro           = concordium.TokenID{}

	lister = testutil.AccountAddr(0x0a)
	payer  = testutil.AccountAddr(0x0b)
)

func newTestProcessor(t *testing.T) (*MarketProcessor, *sql.DB) {
	t.Helper()

	database := testutil.NewTestDB(t)
	p, err := NewMarketProcessor(config.ProcessorConfig{
		Type:         Type,
		Name:         "market",
		ModuleRef:    testutil.ModuleRef(3).String(),
		ContractName: "rwa_market",
	}, database, logger.NewNopLogger())
	require.NoError(t, err)

	return p.(*MarketProcessor), database
}

func process(t *testing.T, p *MarketProcessor, database *sql.DB, events ...[]byte) error {
	t.Helper()

	return testutil.InTx(t, database, func(tx *sql.Tx) error {
		_, err := p.ProcessEvents(t.Context(), tx, processor.CallContext{
			BlockHeight: 10,
			BlockTime:   testutil.GenesisTime,
			TxHash:      concordium.Hash{0x01},
			Contract:    marketContract,
		}, events)
		return err
	})
}

type amounts struct {
	deposited, listed, unlisted int64
}

func position(t *testing.T, database *sql.DB, tokenContract concordium.ContractAddress,
	token concordium.TokenID, owner concordium.Address) amounts {
	t.Helper()

	var pos MarketToken
	err := meddler.QueryRow(database, &pos,
		"SELECT * FROM market_tokens WHERE contract = ? AND token_contract = ? AND token_id = ? AND owner = ?",
		marketContract.String(), tokenContract.String(), token.String(), owner.String())
	if err == sql.ErrNoRows {
		return amounts{}
	}
	require.NoError(t, err)

	require.True(t, pos.DepositedAmount.Equal(pos.ListedAmount.Add(pos.UnlistedAmount)))
	return amounts{
		deposited: pos.DepositedAmount.IntPart(),
		listed:    pos.ListedAmount.IntPart(),
		unlisted:  pos.UnlistedAmount.IntPart(),
	}
}

func TestDepositListWithdraw(t *testing.T) {
	p, database := newTestProcessor(t)

	require.NoError(t, process(t, p, database,
		testutil.MarketDeposited(assetContract, asset, lister, 1000),
		testutil.MarketListed(assetContract, asset, lister, 600),
	))
	require.Equal(t, amounts{1000, 600, 400}, position(t, database, assetContract, asset, lister))

	require.NoError(t, process(t, p, database, testutil.MarketWithdraw(assetContract, asset, lister, 400)))
	require.Equal(t, amounts{600, 600, 0}, position(t, database, assetContract, asset, lister))

	// listed tokens cannot be withdrawn
	err := process(t, p, database, testutil.MarketWithdraw(assetContract, asset, lister, 1))
	require.ErrorIs(t, err, processor.ErrInsufficientFunds)

	require.NoError(t, process(t, p, database, testutil.MarketDeListed(assetContract, asset, lister)))
	require.Equal(t, amounts{600, 0, 600}, position(t, database, assetContract, asset, lister))

	err = process(t, p, database, testutil.MarketListed(assetContract, asset, lister, 601))
	require.ErrorIs(t, err, processor.ErrInsufficientFunds)

	err = process(t, p, database, testutil.MarketDeListed(assetContract, asset, payer))
	require.ErrorIs(t, err, processor.ErrInsufficientFunds)
}

func TestExchangeWithCIS2Payment(t *testing.T) {
	p, database := newTestProcessor(t)
	a, b := lister, payer

	require.NoError(t, process(t, p, database,
		testutil.MarketDeposited(assetContract, asset, a, 1000),
		testutil.MarketListed(assetContract, asset, a, 1000),
		testutil.MarketDeposited(euroContract, euro, b, 80),
	))
	require.Equal(t, amounts{1000, 1000, 0}, position(t, database, assetContract, asset, a))

	exchange := testutil.MarketExchange{
		BuyTokenContract: assetContract,
		BuyTokenID:       asset,
		BuyAmount:        300,
		Seller:           b,
		Buyer:            a,
		PayToken:         testutil.PayToken{Contract: &euroContract, TokenID: euro},
		PayAmount:        50,
		Payer:            b,
	}
	require.NoError(t, process(t, p, database, testutil.MarketExchanged(exchange)))

	require.Equal(t, amounts{700, 700, 0}, position(t, database, assetContract, asset, a))
	require.Equal(t, amounts{30, 0, 30}, position(t, database, euroContract, euro, b))
	// the lister field never selects the debited listing
	require.Equal(t, amounts{}, position(t, database, assetContract, asset, b))

	var record Exchange
	require.NoError(t, meddler.QueryRow(database, &record, "SELECT * FROM market_exchanges"))
	require.Equal(t, a, record.Buyer)
	require.Equal(t, b, record.Payer)
	require.Equal(t, euroContract, *record.PayTokenContract)
	require.True(t, decimal.NewFromInt(50).Equal(record.PayAmount))

	// the payer cannot cover a second exchange, so neither leg is applied
	err := process(t, p, database, testutil.MarketExchanged(exchange))
	require.ErrorIs(t, err, processor.ErrInsufficientFunds)
	require.Equal(t, amounts{700, 700, 0}, position(t, database, assetContract, asset, a))
	require.Equal(t, amounts{30, 0, 30}, position(t, database, euroContract, euro, b))
	require.Equal(t, 1, testutil.Count(t, database, "market_exchanges", ""))
}

func TestExchangeWithCCDPayment(t *testing.T) {
	p, database := newTestProcessor(t)

	require.NoError(t, process(t, p, database,
		testutil.MarketDeposited(assetContract, asset, lister, 10),
		testutil.MarketListed(assetContract, asset, lister, 5),
	))

	require.NoError(t, process(t, p, database, testutil.MarketExchanged(testutil.MarketExchange{
		BuyTokenContract: assetContract,
		BuyTokenID:       asset,
		BuyAmount:        5,
		Seller:           payer,
		Buyer:            lister,
		PayAmount:        1_000_000,
		Payer:            payer,
	})))
	require.Equal(t, amounts{5, 0, 5}, position(t, database, assetContract, asset, lister))

	var record Exchange
	require.NoError(t, meddler.QueryRow(database, &record, "SELECT * FROM market_exchanges"))
	require.Nil(t, record.PayTokenContract)
	require.Nil(t, record.PayTokenID)

	// more than listed
	err := process(t, p, database, testutil.MarketExchanged(testutil.MarketExchange{
		BuyTokenContract: assetContract,
		BuyTokenID:       asset,
		BuyAmount:        1,
		Seller:           payer,
		Buyer:            lister,
		Payer:            payer,
	}))
	require.ErrorIs(t, err, processor.ErrInsufficientFunds)
}

func TestInvalidPayToken(t *testing.T) {
	p, database := newTestProcessor(t)

	raw := testutil.MarketExchanged(testutil.MarketExchange{
		BuyTokenContract: assetContract,
		BuyTokenID:       asset,
		BuyAmount:        1,
		Seller:           lister,
		Buyer:            payer,
		Payer:            payer,
	})
	// pay token tag follows tag, contract, token id, amount and two account addresses
	raw[1+16+1+len(asset)+1+2*33] = 0x05

	err := process(t, p, database, raw)
	require.ErrorIs(t, err, processor.ErrParse)
	require.ErrorContains(t, err, "invalid pay token tag 5")
}

func TestAgents(t *testing.T) {
	p, database := newTestProcessor(t)
	agent := testutil.AccountAddr(0x33)

	require.NoError(t, process(t, p, database, testutil.AgentAdded(agent), testutil.AgentAdded(agent)))
	require.Equal(t, 1, testutil.Count(t, database, agents.Table, ""))

	page, err := p.QueryProjection(t.Context(), marketContract, "agents", processor.Query{Holder: agent.String()})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)

	require.NoError(t, process(t, p, database, testutil.AgentRemoved(agent)))
	require.Zero(t, testutil.Count(t, database, agents.Table, ""))
}
