// Package multiyielder indexes yield configuration and distributions of multi yielder contracts.
package multiyielder

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/goran-ethernal/RWAListener/internal/logger"
	baseprocessor "github.com/goran-ethernal/RWAListener/internal/processor"
	"github.com/goran-ethernal/RWAListener/internal/processors/multiyielder/migrations"
	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/goran-ethernal/RWAListener/pkg/config"
	"github.com/goran-ethernal/RWAListener/pkg/processor"
	"github.com/shopspring/decimal"
)

// Type is the processor type of multi yielder contracts.
const Type = "multi-yielder"

const (
	treasuriesTable    = "multi_yielder_treasuries"
	yieldsTable        = "multi_yielder_yields"
	distributionsTable = "multi_yielder_distributions"
	holderYieldsTable  = "multi_yielder_holder_yields"
)

var agents = baseprocessor.MemberSet{Table: "multi_yielder_agents", Kind: "agent"}

var (
	_ processor.Processor = (*MultiYielderProcessor)(nil)
	_ processor.Queryable = (*MultiYielderProcessor)(nil)
)

func init() {
	processor.Register(Type, NewMultiYielderProcessor)
}

// MultiYielderProcessor keeps the yields of each token version and the distribution ledger.
type MultiYielderProcessor struct {
	*baseprocessor.BaseProcessor
}

// NewMultiYielderProcessor creates the processor and applies its migrations.
func NewMultiYielderProcessor(cfg config.ProcessorConfig, db *sql.DB, log *logger.Logger) (processor.Processor, error) {
	base, err := baseprocessor.NewBaseProcessor(db, log, cfg)
	if err != nil {
		return nil, err
	}

	if err := migrations.RunMigrations(log, db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &MultiYielderProcessor{BaseProcessor: base}, nil
}

// ProcessEvents parses all events of the call and applies them in order.
func (p *MultiYielderProcessor) ProcessEvents(ctx context.Context, tx *sql.Tx,
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
		case TreasuryUpdated:
			return p.SetTreasury(ctx, tx, treasuriesTable, call.Contract, e.Treasury, call.BlockTime)
		case YieldAdded:
			return p.addYields(ctx, tx, call, e)
		case YieldRemoved:
			return p.removeYields(ctx, tx, call, e)
		case YieldDistributed:
			return p.distribute(tx, call, e)
		default:
			return fmt.Errorf("%w: unhandled event %T", processor.ErrInvalidState, ev)
		}
	})
}

// addYields replaces the yields of a token version.
func (p *MultiYielderProcessor) addYields(ctx context.Context, tx *sql.Tx, call processor.CallContext,
	e YieldAdded) error {
	replaced, err := p.deleteYields(ctx, tx, call, e.TokenContract, e.TokenID)
	if err != nil {
		return err
	}
	if replaced > 0 {
		p.Log().Warnf("replacing %d yields of token %s/%s on contract %s",
			replaced, e.TokenContract, e.TokenID, call.Contract)
	}

	for _, y := range e.Yields {
		if err := baseprocessor.InsertRow(tx, yieldsTable, &Yield{
			Contract:        call.Contract,
			TokenContract:   e.TokenContract,
			TokenID:         e.TokenID,
			YieldContract:   y.Contract,
			YieldTokenID:    y.TokenID,
			Calculation:     y.Calculation,
			RateNumerator:   y.Rate.Numerator,
			RateDenominator: y.Rate.Denominator,
			CreatedAt:       call.BlockTime,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (p *MultiYielderProcessor) removeYields(ctx context.Context, tx *sql.Tx, call processor.CallContext,
	e YieldRemoved) error {
	removed, err := p.deleteYields(ctx, tx, call, e.TokenContract, e.TokenID)
	if err != nil {
		return err
	}
	if removed == 0 {
		p.Log().Warnf("no yields of token %s/%s on contract %s", e.TokenContract, e.TokenID, call.Contract)
	}
	return nil
}

func (p *MultiYielderProcessor) deleteYields(ctx context.Context, tx *sql.Tx, call processor.CallContext,
	tokenContract concordium.ContractAddress, tokenID concordium.TokenID) (int64, error) {
	res, err := tx.ExecContext(ctx,
		"DELETE FROM "+yieldsTable+" WHERE contract = ? AND token_contract = ? AND token_id = ?",
		call.Contract.String(), tokenContract.String(), tokenID.String())
	if err != nil {
		return 0, fmt.Errorf("failed to delete yields: %w", err)
	}
	return res.RowsAffected()
}

// distribute appends the distribution to the ledger and moves the holder to the new token version.
func (p *MultiYielderProcessor) distribute(tx *sql.Tx, call processor.CallContext, e YieldDistributed) error {
	if err := baseprocessor.InsertRow(tx, distributionsTable, &Distribution{
		DistributionID: uuid.NewString(),
		Contract:       call.Contract,
		TokenContract:  e.TokenContract,
		FromTokenID:    e.FromTokenID,
		ToTokenID:      e.ToTokenID,
		Amount:         e.Amount,
		Holder:         e.To,
		BlockHeight:    call.BlockHeight,
		TxHash:         call.TxHash,
		DistributedAt:  call.BlockTime,
	}); err != nil {
		return err
	}

	var holder HolderYield
	found, err := baseprocessor.LoadRow(tx, &holder,
		"SELECT * FROM "+holderYieldsTable+" WHERE contract = ? AND token_contract = ? AND holder = ?",
		call.Contract.String(), e.TokenContract.String(), e.To.String())
	if err != nil {
		return fmt.Errorf("failed to load holder yield of %s: %w", e.To, err)
	}
	if !found {
		holder = HolderYield{
			Contract:      call.Contract,
			TokenContract: e.TokenContract,
			Holder:        e.To,
			TotalAmount:   decimal.Zero,
		}
	}

	holder.TokenID = e.ToTokenID
	holder.TotalAmount = holder.TotalAmount.Add(e.Amount)
	holder.Distributions++
	holder.UpdatedAt = call.BlockTime
	return baseprocessor.SaveRow(tx, holderYieldsTable, &holder)
}

// InitProjections describes the yield, distribution, treasury and agent projections.
func (p *MultiYielderProcessor) InitProjections() map[string]*baseprocessor.Projection {
	return map[string]*baseprocessor.Projection{
		"treasury": {
			Name:    "treasury",
			Table:   treasuriesTable,
			RowType: reflect.TypeOf(baseprocessor.TreasuryRow{}),
		},
		"agents": {
			Name:          "agents",
			Table:         agents.Table,
			RowType:       reflect.TypeOf(baseprocessor.MemberRow{}),
			HolderColumns: []string{"address"},
		},
		"yields": {
			Name:        "yields",
			Table:       yieldsTable,
			RowType:     reflect.TypeOf(Yield{}),
			TokenColumn: "token_id",
		},
		"distributions": {
			Name:          "distributions",
			Table:         distributionsTable,
			RowType:       reflect.TypeOf(Distribution{}),
			HolderColumns: []string{"holder"},
			TokenColumn:   "to_token_id",
			OrderBy:       "id DESC",
		},
		"holder_yields": {
			Name:          "holder_yields",
			Table:         holderYieldsTable,
			RowType:       reflect.TypeOf(HolderYield{}),
			HolderColumns: []string{"holder"},
			TokenColumn:   "token_id",
		},
	}
}

// Projections returns the names of the queryable projections.
func (p *MultiYielderProcessor) Projections() []string {
	return p.ProjectionNames(p)
}

// QueryProjection returns one page of a projection of the contract.
func (p *MultiYielderProcessor) QueryProjection(ctx context.Context, contract concordium.ContractAddress,
	projection string, q processor.Query) (*processor.Page, error) {
	return p.BaseProcessor.QueryProjection(ctx, p, contract, projection, q)
}
