// Package mintfund indexes the funds, investors and investment ledger of mint fund contracts.
package mintfund

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"slices"

	"github.com/google/uuid"
	"github.com/goran-ethernal/RWAListener/internal/logger"
	baseprocessor "github.com/goran-ethernal/RWAListener/internal/processor"
	"github.com/goran-ethernal/RWAListener/internal/processors/mintfund/migrations"
	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/goran-ethernal/RWAListener/pkg/config"
	"github.com/goran-ethernal/RWAListener/pkg/processor"
	"github.com/shopspring/decimal"
)

// Type is the processor type of mint fund contracts.
const Type = "mint-fund"

const (
	fundsTable     = "mint_fund_funds"
	investorsTable = "mint_fund_investors"
	recordsTable   = "mint_fund_investment_records"
)

var agents = baseprocessor.MemberSet{Table: "mint_fund_agents", Kind: "agent"}

// allowedStates lists the fund states each investment event may be applied in.
var allowedStates = map[RecordType][]FundState{
	RecordInvested:  {FundOpen},
	RecordCancelled: {FundOpen, FundFail},
	RecordClaimed:   {FundSuccess},
	RecordDisbursed: {FundSuccess},
}

var (
	_ processor.Processor = (*MintFundProcessor)(nil)
	_ processor.Queryable = (*MintFundProcessor)(nil)
)

func init() {
	processor.Register(Type, NewMintFundProcessor)
}

// MintFundProcessor keeps fund states, investor positions and the investment ledger of mint fund contracts.
type MintFundProcessor struct {
	*baseprocessor.BaseProcessor
}

// NewMintFundProcessor creates the processor and applies its migrations.
func NewMintFundProcessor(cfg config.ProcessorConfig, db *sql.DB, log *logger.Logger) (processor.Processor, error) {
	base, err := baseprocessor.NewBaseProcessor(db, log, cfg)
	if err != nil {
		return nil, err
	}

	if err := migrations.RunMigrations(log, db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &MintFundProcessor{BaseProcessor: base}, nil
}

// ProcessEvents parses all events of the call and applies them in order.
func (p *MintFundProcessor) ProcessEvents(ctx context.Context, tx *sql.Tx,
	call processor.CallContext, events [][]byte) (int, error) {
	parsed, err := baseprocessor.ParseEvents(events, parseEvent)
	if err != nil {
		return 0, err
	}

	return baseprocessor.ApplyEvents(parsed, func(ev Event) error {
		switch e := ev.(type) {
		case AgentUpdated:
			if e.Added {
				return p.AddMember(ctx, tx, agents, call.Contract, e.Agent)
			}
			return p.RemoveMember(ctx, tx, agents, call.Contract, e.Agent)
		case FundAdded:
			return p.addFund(tx, call, e)
		case FundRemoved:
			return p.removeFund(ctx, tx, call, e)
		case FundStateUpdated:
			return p.updateState(tx, call, e)
		case Investment:
			return p.applyInvestment(tx, call, e)
		default:
			return fmt.Errorf("%w: unhandled event %T", processor.ErrInvalidState, ev)
		}
	})
}

func (p *MintFundProcessor) loadFund(tx *sql.Tx, call processor.CallContext, key FundKey) (*Fund, bool, error) {
	var fund Fund
	found, err := baseprocessor.LoadRow(tx, &fund,
		"SELECT * FROM "+fundsTable+" WHERE contract = ? AND token_contract = ? AND token_id = ?",
		call.Contract.String(), key.TokenContract.String(), key.TokenID.String())
	if err != nil {
		return nil, false, fmt.Errorf("failed to load fund %s/%s: %w", key.TokenContract, key.TokenID, err)
	}
	return &fund, found, nil
}

func (p *MintFundProcessor) existingFund(tx *sql.Tx, call processor.CallContext, key FundKey) (*Fund, error) {
	fund, found, err := p.loadFund(tx, call, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: no fund for %s/%q", processor.ErrInvalidState, key.TokenContract, key.TokenID)
	}
	return fund, nil
}

func (p *MintFundProcessor) addFund(tx *sql.Tx, call processor.CallContext, e FundAdded) error {
	_, found, err := p.loadFund(tx, call, e.FundKey)
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("%w: fund for %s/%q already exists", processor.ErrInvalidState, e.TokenContract, e.TokenID)
	}

	return baseprocessor.InsertRow(tx, fundsTable, &Fund{
		Contract:         call.Contract,
		TokenContract:    e.TokenContract,
		TokenID:          e.TokenID,
		CurrencyContract: e.CurrencyContract,
		CurrencyTokenID:  e.CurrencyTokenID,
		RateNumerator:    e.Rate.Numerator,
		RateDenominator:  e.Rate.Denominator,
		State:            FundOpen,
		CurrencyAmount:   decimal.Zero,
		TokenAmount:      decimal.Zero,
		CreatedAt:        call.BlockTime,
		UpdatedAt:        call.BlockTime,
	})
}

// removeFund drops the fund and its investor positions. The ledger is kept.
func (p *MintFundProcessor) removeFund(ctx context.Context, tx *sql.Tx, call processor.CallContext,
	e FundRemoved) error {
	fund, err := p.existingFund(tx, call, e.FundKey)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM "+investorsTable+" WHERE contract = ? AND token_contract = ? AND token_id = ?",
		call.Contract.String(), e.TokenContract.String(), e.TokenID.String()); err != nil {
		return fmt.Errorf("failed to delete investors: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+fundsTable+" WHERE id = ?", fund.ID); err != nil {
		return fmt.Errorf("failed to delete fund: %w", err)
	}

	p.Log().Infow("fund removed", "contract", call.Contract.String(),
		"token_contract", e.TokenContract.String(), "token", e.TokenID.String(), "state", string(fund.State))
	return nil
}

// updateState moves an open fund to its final state.
func (p *MintFundProcessor) updateState(tx *sql.Tx, call processor.CallContext, e FundStateUpdated) error {
	fund, err := p.existingFund(tx, call, e.FundKey)
	if err != nil {
		return err
	}
	if fund.State != FundOpen || e.State == FundOpen {
		return fmt.Errorf("%w: fund for %s/%q cannot move from %s to %s", processor.ErrInvalidState,
			e.TokenContract, e.TokenID, fund.State, e.State)
	}

	fund.State = e.State
	fund.UpdatedAt = call.BlockTime
	return baseprocessor.SaveRow(tx, fundsTable, fund)
}

// applyInvestment books an investment event on the investor and the fund and appends it to the ledger.
// Invested adds both legs, the other events subtract the legs they carry.
func (p *MintFundProcessor) applyInvestment(tx *sql.Tx, call processor.CallContext, e Investment) error {
	fund, err := p.existingFund(tx, call, e.FundKey)
	if err != nil {
		return err
	}
	if !slices.Contains(allowedStates[e.Kind], fund.State) {
		return fmt.Errorf("%w: %s on %s fund for %s/%q", processor.ErrInvalidState,
			e.Kind, fund.State, e.TokenContract, e.TokenID)
	}

	var investor Investor
	found, err := baseprocessor.LoadRow(tx, &investor,
		"SELECT * FROM "+investorsTable+" WHERE contract = ? AND token_contract = ? AND token_id = ? AND investor = ?",
		call.Contract.String(), e.TokenContract.String(), e.TokenID.String(), e.Investor.String())
	if err != nil {
		return fmt.Errorf("failed to load investor %s: %w", e.Investor, err)
	}
	if !found {
		investor = Investor{
			Contract:       call.Contract,
			TokenContract:  e.TokenContract,
			TokenID:        e.TokenID,
			Investor:       e.Investor,
			CurrencyAmount: decimal.Zero,
			TokenAmount:    decimal.Zero,
		}
	}

	if e.Kind == RecordInvested {
		investor.CurrencyAmount = investor.CurrencyAmount.Add(e.CurrencyAmount)
		investor.TokenAmount = investor.TokenAmount.Add(e.TokenAmount)
		fund.CurrencyAmount = fund.CurrencyAmount.Add(e.CurrencyAmount)
		fund.TokenAmount = fund.TokenAmount.Add(e.TokenAmount)
	} else {
		who := "investment of " + e.Investor.String()
		if investor.CurrencyAmount, err = baseprocessor.Sub(investor.CurrencyAmount, e.CurrencyAmount,
			"currency "+who); err != nil {
			return err
		}
		if investor.TokenAmount, err = baseprocessor.Sub(investor.TokenAmount, e.TokenAmount,
			"token "+who); err != nil {
			return err
		}
		if fund.CurrencyAmount, err = baseprocessor.Sub(fund.CurrencyAmount, e.CurrencyAmount,
			"fund currency"); err != nil {
			return err
		}
		if fund.TokenAmount, err = baseprocessor.Sub(fund.TokenAmount, e.TokenAmount, "fund token"); err != nil {
			return err
		}
	}

	investor.UpdatedAt = call.BlockTime
	fund.UpdatedAt = call.BlockTime
	if err := baseprocessor.SaveRow(tx, investorsTable, &investor); err != nil {
		return err
	}
	if err := baseprocessor.SaveRow(tx, fundsTable, fund); err != nil {
		return err
	}

	return baseprocessor.InsertRow(tx, recordsTable, &InvestmentRecord{
		RecordID:       uuid.NewString(),
		Contract:       call.Contract,
		TokenContract:  e.TokenContract,
		TokenID:        e.TokenID,
		Investor:       e.Investor,
		RecordType:     e.Kind,
		CurrencyAmount: e.CurrencyAmount,
		TokenAmount:    e.TokenAmount,
		BlockHeight:    call.BlockHeight,
		TxHash:         call.TxHash,
		CreatedAt:      call.BlockTime,
	})
}

// InitProjections describes the funds, investors, investment_records and agents projections.
func (p *MintFundProcessor) InitProjections() map[string]*baseprocessor.Projection {
	return map[string]*baseprocessor.Projection{
		"funds": {
			Name:        "funds",
			Table:       fundsTable,
			RowType:     reflect.TypeOf(Fund{}),
			TokenColumn: "token_id",
		},
		"investors": {
			Name:          "investors",
			Table:         investorsTable,
			RowType:       reflect.TypeOf(Investor{}),
			HolderColumns: []string{"investor"},
			TokenColumn:   "token_id",
		},
		"investment_records": {
			Name:          "investment_records",
			Table:         recordsTable,
			RowType:       reflect.TypeOf(InvestmentRecord{}),
			HolderColumns: []string{"investor"},
			TokenColumn:   "token_id",
			OrderBy:       "id DESC",
		},
		"agents": {
			Name:          "agents",
			Table:         agents.Table,
			RowType:       reflect.TypeOf(baseprocessor.MemberRow{}),
			HolderColumns: []string{"address"},
		},
	}
}

// Projections returns the names of the queryable projections.
func (p *MintFundProcessor) Projections() []string {
	return p.ProjectionNames(p)
}

// QueryProjection returns one page of a projection of the contract.
func (p *MintFundProcessor) QueryProjection(ctx context.Context, contract concordium.ContractAddress,
	projection string, q processor.Query) (*processor.Page, error) {
	return p.BaseProcessor.QueryProjection(ctx, p, contract, projection, q)
}
