// Package market indexes the custody positions and exchanges of market contracts.
package market

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"

	"github.com/goran-ethernal/RWAListener/internal/logger"
	baseprocessor "github.com/goran-ethernal/RWAListener/internal/processor"
	"github.com/goran-ethernal/RWAListener/internal/processors/market/migrations"
	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/goran-ethernal/RWAListener/pkg/config"
	"github.com/goran-ethernal/RWAListener/pkg/processor"
)

// Type is the processor type of market contracts.
const Type = "market"

const (
	tokensTable    = "market_tokens"
	exchangesTable = "market_exchanges"
)

var agents = baseprocessor.MemberSet{Table: "market_agents", Kind: "agent"}

var (
	_ processor.Processor = (*MarketProcessor)(nil)
	_ processor.Queryable = (*MarketProcessor)(nil)
)

func init() {
	processor.Register(Type, NewMarketProcessor)
}

// MarketProcessor keeps deposited, listed and unlisted amounts per owner and token.
type MarketProcessor struct {
	*baseprocessor.BaseProcessor
}

// NewMarketProcessor creates the processor and applies its migrations.
func NewMarketProcessor(cfg config.ProcessorConfig, db *sql.DB, log *logger.Logger) (processor.Processor, error) {
	base, err := baseprocessor.NewBaseProcessor(db, log, cfg)
	if err != nil {
		return nil, err
	}

	if err := migrations.RunMigrations(log, db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &MarketProcessor{BaseProcessor: base}, nil
}

// ProcessEvents parses all events of the call and applies them in order.
func (p *MarketProcessor) ProcessEvents(ctx context.Context, tx *sql.Tx,
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
		case Deposited:
			return p.deposit(tx, call, e)
		case Withdraw:
			return p.withdraw(tx, call, e)
		case Listed:
			return p.list(tx, call, e)
		case DeListed:
			return p.delist(tx, call, e)
		case Exchanged:
			return p.exchange(tx, call, e)
		default:
			return fmt.Errorf("%w: unhandled event %T", processor.ErrInvalidState, ev)
		}
	})
}

func (p *MarketProcessor) InitProjections() map[string]*baseprocessor.Projection {
	return map[string]*baseprocessor.Projection{
		"tokens": {
			Name:          "tokens",
			Table:         tokensTable,
			RowType:       reflect.TypeOf(MarketToken{}),
			HolderColumns: []string{"owner"},
			TokenColumn:   "token_id",
		},
		"exchanges": {
			Name:          "exchanges",
			Table:         exchangesTable,
			RowType:       reflect.TypeOf(Exchange{}),
			HolderColumns: []string{"seller", "buyer", "payer"},
			TokenColumn:   "buy_token_id",
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

func (p *MarketProcessor) Projections() []string {
	return p.ProjectionNames(p)
}

func (p *MarketProcessor) QueryProjection(ctx context.Context, contract concordium.ContractAddress,
	projection string, q processor.Query) (*processor.Page, error) {
	return p.BaseProcessor.QueryProjection(ctx, p, contract, projection, q)
}
