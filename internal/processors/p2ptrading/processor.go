// Package p2ptrading indexes sell positions and the trading ledger of P2P trading contracts.
package p2ptrading

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/goran-ethernal/RWAListener/internal/logger"
	baseprocessor "github.com/goran-ethernal/RWAListener/internal/processor"
	"github.com/goran-ethernal/RWAListener/internal/processors/p2ptrading/migrations"
	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/goran-ethernal/RWAListener/pkg/config"
	"github.com/goran-ethernal/RWAListener/pkg/processor"
	"github.com/shopspring/decimal"
)

// Type is the processor type of P2P trading contracts.
const Type = "p2p-trading"

const (
	contractsTable = "p2p_contracts"
	tradersTable   = "p2p_traders"
	recordsTable   = "p2p_trading_records"
)

var (
	_ processor.Processor = (*P2PTradingProcessor)(nil)
	_ processor.Queryable = (*P2PTradingProcessor)(nil)
)

func init() {
	processor.Register(Type, NewP2PTradingProcessor)
}

// P2PTradingProcessor keeps one sell position per trader and the contract supply in lockstep.
type P2PTradingProcessor struct {
	*baseprocessor.BaseProcessor
}

// NewP2PTradingProcessor creates the processor and applies its migrations.
func NewP2PTradingProcessor(cfg config.ProcessorConfig, db *sql.DB, log *logger.Logger) (processor.Processor, error) {
	base, err := baseprocessor.NewBaseProcessor(db, log, cfg)
	if err != nil {
		return nil, err
	}

	if err := migrations.RunMigrations(log, db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &P2PTradingProcessor{BaseProcessor: base}, nil
}

func (p *P2PTradingProcessor) ProcessEvents(ctx context.Context, tx *sql.Tx,
	call processor.CallContext, events [][]byte) (int, error) {
	parsed, err := baseprocessor.ParseEvents(events, parseEvent)
	if err != nil {
		return 0, err
	}

	return baseprocessor.ApplyEvents(parsed, func(ev Event) error {
		switch e := ev.(type) {
		case Initialized:
			return p.initialize(tx, call, e)
		case Sell:
			return p.sell(tx, call, e)
		case SellCancelled:
			return p.cancel(tx, call, e)
		case Exchange:
			return p.exchange(tx, call, e)
		default:
			return fmt.Errorf("%w: unhandled event %T", processor.ErrInvalidState, ev)
		}
	})
}

func (p *P2PTradingProcessor) initialize(tx *sql.Tx, call processor.CallContext, e Initialized) error {
	var existing TradeContract
	found, err := baseprocessor.LoadRow(tx, &existing,
		"SELECT * FROM "+contractsTable+" WHERE contract = ?", call.Contract.String())
	if err != nil {
		return fmt.Errorf("failed to load p2p contract: %w", err)
	}
	if found {
		return fmt.Errorf("%w: p2p contract %s already initialized", processor.ErrInvalidState, call.Contract)
	}

	return baseprocessor.InsertRow(tx, contractsTable, &TradeContract{
		Contract:         call.Contract,
		TokenContract:    e.TokenContract,
		TokenID:          e.TokenID,
		CurrencyContract: e.CurrencyContract,
		CurrencyTokenID:  e.CurrencyTokenID,
		TokenAmount:      decimal.Zero,
		CreatedAt:        call.BlockTime,
		UpdatedAt:        call.BlockTime,
	})
}

func (p *P2PTradingProcessor) tradeContract(tx *sql.Tx, call processor.CallContext) (*TradeContract, error) {
	var c TradeContract
	found, err := baseprocessor.LoadRow(tx, &c,
		"SELECT * FROM "+contractsTable+" WHERE contract = ?", call.Contract.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load p2p contract: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: p2p contract %s not initialized", processor.ErrInvalidState, call.Contract)
	}
	return &c, nil
}

func (p *P2PTradingProcessor) loadTrader(tx *sql.Tx, call processor.CallContext,
	trader concordium.Address) (*Trader, bool, error) {
	var t Trader
	found, err := baseprocessor.LoadRow(tx, &t,
		"SELECT * FROM "+tradersTable+" WHERE contract = ? AND trader = ?",
		call.Contract.String(), trader.String())
	if err != nil {
		return nil, false, fmt.Errorf("failed to load trader %s: %w", trader, err)
	}
	return &t, found, nil
}

func (p *P2PTradingProcessor) existingTrader(tx *sql.Tx, call processor.CallContext,
	trader concordium.Address) (*Trader, error) {
	t, found, err := p.loadTrader(tx, call, trader)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s has no sell position", processor.ErrInsufficientFunds, trader)
	}
	return t, nil
}

// book saves the trader and the contract supply, then appends the ledger row.
func (p *P2PTradingProcessor) book(tx *sql.Tx, call processor.CallContext, c *TradeContract, t *Trader,
	record *TradingRecord) error {
	t.UpdatedAt = call.BlockTime
	c.UpdatedAt = call.BlockTime
	if err := baseprocessor.SaveRow(tx, tradersTable, t); err != nil {
		return err
	}
	if err := baseprocessor.SaveRow(tx, contractsTable, c); err != nil {
		return err
	}

	record.RecordID = uuid.NewString()
	record.Contract = call.Contract
	record.Trader = t.Trader
	record.TokenBalance = t.TokenAmount
	record.CurrencyBalance = t.CurrencyAmount
	record.BlockHeight = call.BlockHeight
	record.TxHash = call.TxHash
	record.CreatedAt = call.BlockTime
	return baseprocessor.InsertRow(tx, recordsTable, record)
}

// sell adds to the trader's position; the latest rate wins.
func (p *P2PTradingProcessor) sell(tx *sql.Tx, call processor.CallContext, e Sell) error {
	c, err := p.tradeContract(tx, call)
	if err != nil {
		return err
	}

	t, found, err := p.loadTrader(tx, call, e.Trader)
	if err != nil {
		return err
	}
	if !found {
		t = &Trader{
			Contract:       call.Contract,
			Trader:         e.Trader,
			TokenAmount:    decimal.Zero,
			CurrencyAmount: decimal.Zero,
		}
	}

	t.RateNumerator, t.RateDenominator = e.Rate.Numerator, e.Rate.Denominator
	t.TokenAmount = t.TokenAmount.Add(e.Amount)
	c.TokenAmount = c.TokenAmount.Add(e.Amount)

	return p.book(tx, call, c, t, &TradingRecord{
		RecordType:      RecordSell,
		RateNumerator:   e.Rate.Numerator,
		RateDenominator: e.Rate.Denominator,
		TokenAmount:     e.Amount,
		CurrencyAmount:  decimal.Zero,
	})
}

func (p *P2PTradingProcessor) cancel(tx *sql.Tx, call processor.CallContext, e SellCancelled) error {
	c, err := p.tradeContract(tx, call)
	if err != nil {
		return err
	}
	t, err := p.existingTrader(tx, call, e.Trader)
	if err != nil {
		return err
	}

	if t.TokenAmount, err = baseprocessor.Sub(t.TokenAmount, e.Amount, "position of "+e.Trader.String()); err != nil {
		return err
	}
	if c.TokenAmount, err = baseprocessor.Sub(c.TokenAmount, e.Amount, "contract supply"); err != nil {
		return err
	}

	return p.book(tx, call, c, t, &TradingRecord{
		RecordType:      RecordSellCancelled,
		RateNumerator:   t.RateNumerator,
		RateDenominator: t.RateDenominator,
		TokenAmount:     e.Amount,
		CurrencyAmount:  decimal.Zero,
	})
}

// exchange sells from the seller's position and credits the payment to the seller.
func (p *P2PTradingProcessor) exchange(tx *sql.Tx, call processor.CallContext, e Exchange) error {
	c, err := p.tradeContract(tx, call)
	if err != nil {
		return err
	}
	t, err := p.existingTrader(tx, call, e.Seller)
	if err != nil {
		return err
	}

	if t.TokenAmount, err = baseprocessor.Sub(t.TokenAmount, e.SellAmount,
		"position of "+e.Seller.String()); err != nil {
		return err
	}
	if c.TokenAmount, err = baseprocessor.Sub(c.TokenAmount, e.SellAmount, "contract supply"); err != nil {
		return err
	}
	t.CurrencyAmount = t.CurrencyAmount.Add(e.PayAmount)

	buyer := e.Buyer
	if err := p.book(tx, call, c, t, &TradingRecord{
		Counterparty:    &buyer,
		RecordType:      RecordExchange,
		RateNumerator:   e.Rate.Numerator,
		RateDenominator: e.Rate.Denominator,
		TokenAmount:     e.SellAmount,
		CurrencyAmount:  e.PayAmount,
	}); err != nil {
		return err
	}

	p.Log().Debugw("p2p exchange",
		"contract", call.Contract.String(),
		"seller", e.Seller.String(),
		"buyer", e.Buyer.String(),
		"amount", e.SellAmount.String(),
		"paid", e.PayAmount.String(),
	)
	return nil
}

func (p *P2PTradingProcessor) InitProjections() map[string]*baseprocessor.Projection {
	return map[string]*baseprocessor.Projection{
		"contract": {
			Name:        "contract",
			Table:       contractsTable,
			RowType:     reflect.TypeOf(TradeContract{}),
			TokenColumn: "token_id",
		},
		"traders": {
			Name:          "traders",
			Table:         tradersTable,
			RowType:       reflect.TypeOf(Trader{}),
			HolderColumns: []string{"trader"},
		},
		"trading_records": {
			Name:          "trading_records",
			Table:         recordsTable,
			RowType:       reflect.TypeOf(TradingRecord{}),
			HolderColumns: []string{"trader", "counterparty"},
			OrderBy:       "id DESC",
		},
	}
}

func (p *P2PTradingProcessor) Projections() []string {
	return p.ProjectionNames(p)
}

func (p *P2PTradingProcessor) QueryProjection(ctx context.Context, contract concordium.ContractAddress,
	projection string, q processor.Query) (*processor.Page, error) {
	return p.BaseProcessor.QueryProjection(ctx, p, contract, projection, q)
}
