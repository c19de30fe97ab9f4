// Package securitysft indexes the events of the CIS2 security token contracts,
// with and without the reward extension.
package securitysft

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"

	"github.com/goran-ethernal/RWAListener/internal/logger"
	baseprocessor "github.com/goran-ethernal/RWAListener/internal/processor"
	"github.com/goran-ethernal/RWAListener/internal/processors/securitysft/migrations"
	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/goran-ethernal/RWAListener/pkg/config"
	"github.com/goran-ethernal/RWAListener/pkg/processor"
)

const (
	// Type is the processor type of plain security token contracts.
	Type = "security-sft"
	// RewardsType is the processor type of security token contracts paying rewards.
	RewardsType = "security-sft-rewards"
)

const (
	tokensTable         = "cis2_tokens"
	holdersTable        = "cis2_token_holders"
	operatorsTable      = "cis2_operators"
	contractsTable      = "cis2_contracts"
	recoveriesTable     = "cis2_recoveries"
	rewardTokensTable   = "cis2_reward_tokens"
	contractRewardTable = "cis2_contract_rewards"
	rewardClaimsTable   = "cis2_reward_claims"
)

var agents = baseprocessor.MemberSet{Table: "cis2_agents", Kind: "agent"}

// Compile-time checks to ensure SecurityTokenProcessor implements the processor interfaces.
var (
	_ processor.Processor = (*SecurityTokenProcessor)(nil)
	_ processor.Queryable = (*SecurityTokenProcessor)(nil)
)

func init() {
	processor.Register(Type, NewSecurityTokenProcessor)
	processor.Register(RewardsType, NewSecurityTokenProcessor)
}

// SecurityTokenProcessor maintains tokens, holder balances, operators and agents
// of security token contracts, and the reward ledgers of the rewards variant.
type SecurityTokenProcessor struct {
	*baseprocessor.BaseProcessor

	rewards bool
}

// NewSecurityTokenProcessor creates the processor and applies its migrations.
func NewSecurityTokenProcessor(cfg config.ProcessorConfig, db *sql.DB,
	log *logger.Logger) (processor.Processor, error) {
	base, err := baseprocessor.NewBaseProcessor(db, log, cfg)
	if err != nil {
		return nil, err
	}

	if err := migrations.RunMigrations(log, db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SecurityTokenProcessor{
		BaseProcessor: base,
		rewards:       base.Type() == RewardsType,
	}, nil
}

// ProcessEvents parses all events of the call and applies them in order.
func (p *SecurityTokenProcessor) ProcessEvents(ctx context.Context, tx *sql.Tx,
	call processor.CallContext, events [][]byte) (int, error) {
	parsed, err := baseprocessor.ParseEvents(events, func(tag uint8, r *concordium.Reader) (Event, bool) {
		return parseEvent(tag, r, p.rewards)
	})
	if err != nil {
		return 0, err
	}

	return baseprocessor.ApplyEvents(parsed, func(ev Event) error {
		return p.apply(ctx, tx, call, ev)
	})
}

func (p *SecurityTokenProcessor) apply(ctx context.Context, tx *sql.Tx, call processor.CallContext, ev Event) error {
	switch e := ev.(type) {
	case Transfer:
		return p.transfer(tx, call, e)
	case Mint:
		return p.mint(tx, call, e)
	case Burn:
		return p.burn(tx, call, e)
	case UpdateOperator:
		return p.updateOperator(ctx, tx, call, e)
	case TokenMetadata:
		return p.updateMetadata(tx, call, e)
	case AgentAdded:
		return p.AddMember(ctx, tx, agents, call.Contract, e.Agent)
	case AgentRemoved:
		return p.RemoveMember(ctx, tx, agents, call.Contract, e.Agent)
	case TokensFrozen:
		return p.freeze(tx, call, e)
	case PauseUpdated:
		return p.setPaused(tx, call, e)
	case Recovered:
		return p.recover(ctx, tx, call, e)
	case IdentityRegistryAdded:
		return p.updateContractInfo(tx, call, func(info *ContractInfo) { info.IdentityRegistry = &e.Contract })
	case ComplianceAdded:
		return p.updateContractInfo(tx, call, func(info *ContractInfo) { info.Compliance = &e.Contract })
	case RewardAdded:
		return p.addReward(tx, call, e)
	case RewardClaimed:
		return p.claimReward(tx, call, e)
	default:
		return fmt.Errorf("%w: unhandled event %T", processor.ErrInvalidState, ev)
	}
}

// InitProjections describes the queryable tables.
func (p *SecurityTokenProcessor) InitProjections() map[string]*baseprocessor.Projection {
	projections := map[string]*baseprocessor.Projection{
		"tokens": {
			Name:        "tokens",
			Table:       tokensTable,
			RowType:     reflect.TypeOf(Token{}),
			TokenColumn: "token_id",
		},
		"holders": {
			Name:          "holders",
			Table:         holdersTable,
			RowType:       reflect.TypeOf(TokenHolder{}),
			HolderColumns: []string{"holder"},
			TokenColumn:   "token_id",
		},
		"operators": {
			Name:          "operators",
			Table:         operatorsTable,
			RowType:       reflect.TypeOf(Operator{}),
			HolderColumns: []string{"owner", "operator"},
		},
		"agents": {
			Name:          "agents",
			Table:         agents.Table,
			RowType:       reflect.TypeOf(baseprocessor.MemberRow{}),
			HolderColumns: []string{"address"},
		},
		"recoveries": {
			Name:          "recoveries",
			Table:         recoveriesTable,
			RowType:       reflect.TypeOf(Recovery{}),
			HolderColumns: []string{"lost_address", "new_address"},
		},
	}

	if p.rewards {
		projections["reward_tokens"] = &baseprocessor.Projection{
			Name:        "reward_tokens",
			Table:       rewardTokensTable,
			RowType:     reflect.TypeOf(RewardToken{}),
			TokenColumn: "token_id",
		}
		projections["rewards"] = &baseprocessor.Projection{
			Name:    "rewards",
			Table:   contractRewardTable,
			RowType: reflect.TypeOf(ContractReward{}),
		}
		projections["reward_claims"] = &baseprocessor.Projection{
			Name:          "reward_claims",
			Table:         rewardClaimsTable,
			RowType:       reflect.TypeOf(RewardClaim{}),
			HolderColumns: []string{"owner"},
			TokenColumn:   "token_id",
		}
	}

	return projections
}

// Projections returns the names of the queryable projections.
func (p *SecurityTokenProcessor) Projections() []string {
	return p.ProjectionNames(p)
}

// QueryProjection returns one page of a projection of the given contract.
func (p *SecurityTokenProcessor) QueryProjection(ctx context.Context, contract concordium.ContractAddress,
	projection string, q processor.Query) (*processor.Page, error) {
	return p.BaseProcessor.QueryProjection(ctx, p, contract, projection, q)
}
