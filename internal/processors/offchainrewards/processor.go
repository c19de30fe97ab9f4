// Package offchainrewards indexes rewards claimed from offchain rewards contracts.
package offchainrewards

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/goran-ethernal/RWAListener/internal/logger"
	baseprocessor "github.com/goran-ethernal/RWAListener/internal/processor"
	"github.com/goran-ethernal/RWAListener/internal/processors/offchainrewards/migrations"
	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/goran-ethernal/RWAListener/pkg/config"
	"github.com/goran-ethernal/RWAListener/pkg/processor"
)

// Type is the processor type of offchain rewards contracts.
const Type = "offchain-rewards"

const (
	treasuriesTable = "offchain_rewards_treasuries"
	rewardeesTable  = "offchain_rewardees"
	claimsTable     = "offchain_reward_claims"
)

var agents = baseprocessor.MemberSet{Table: "offchain_rewards_agents", Kind: "agent"}

var (
	_ processor.Processor = (*OffchainRewardsProcessor)(nil)
	_ processor.Queryable = (*OffchainRewardsProcessor)(nil)
)

func init() {
	processor.Register(Type, NewOffchainRewardsProcessor)
}

// OffchainRewardsProcessor keeps claim nonces per account and the ledger of claimed rewards.
type OffchainRewardsProcessor struct {
	*baseprocessor.BaseProcessor
}

// NewOffchainRewardsProcessor creates the processor and applies its migrations.
func NewOffchainRewardsProcessor(cfg config.ProcessorConfig, db *sql.DB,
	log *logger.Logger) (processor.Processor, error) {
	base, err := baseprocessor.NewBaseProcessor(db, log, cfg)
	if err != nil {
		return nil, err
	}

	if err := migrations.RunMigrations(log, db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &OffchainRewardsProcessor{BaseProcessor: base}, nil
}

// ProcessEvents parses all events of the call and applies them in order.
func (p *OffchainRewardsProcessor) ProcessEvents(ctx context.Context, tx *sql.Tx,
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
		case Claimed:
			return p.claim(tx, call, e)
		default:
			return fmt.Errorf("%w: unhandled event %T", processor.ErrInvalidState, ev)
		}
	})
}

// claim books a reward claim of an account. The event nonce must equal the stored
// nonce of the account, which starts at 0 for the first claim and advances by one
// with every accepted claim. A reward id can be claimed once per contract.
func (p *OffchainRewardsProcessor) claim(tx *sql.Tx, call processor.CallContext, e Claimed) error {
	var rewardee Rewardee
	found, err := baseprocessor.LoadRow(tx, &rewardee,
		"SELECT * FROM "+rewardeesTable+" WHERE contract = ? AND account = ?",
		call.Contract.String(), e.Account.String())
	if err != nil {
		return fmt.Errorf("failed to load rewardee %s: %w", e.Account, err)
	}
	if !found {
		rewardee = Rewardee{Contract: call.Contract, Account: e.Account}
	}

	if rewardee.Nonce != e.Nonce {
		return fmt.Errorf("%w: claim of %s with nonce %d, expected %d", processor.ErrInvalidState,
			e.Account, e.Nonce, rewardee.Nonce)
	}

	rewardID := e.RewardIDHex()
	var existing RewardClaim
	claimed, err := baseprocessor.LoadRow(tx, &existing,
		"SELECT * FROM "+claimsTable+" WHERE contract = ? AND reward_id = ?", call.Contract.String(), rewardID)
	if err != nil {
		return fmt.Errorf("failed to look up reward %s: %w", rewardID, err)
	}
	if claimed {
		return fmt.Errorf("%w: reward %s already claimed by %s", processor.ErrInvalidState, rewardID, existing.Account)
	}

	rewardee.Nonce++
	rewardee.UpdatedAt = call.BlockTime
	if err := baseprocessor.SaveRow(tx, rewardeesTable, &rewardee); err != nil {
		return err
	}

	if err := baseprocessor.InsertRow(tx, claimsTable, &RewardClaim{
		ClaimID:        uuid.NewString(),
		Contract:       call.Contract,
		Account:        e.Account,
		Nonce:          e.Nonce,
		RewardID:       rewardID,
		RewardContract: e.RewardContract,
		RewardTokenID:  e.RewardTokenID,
		RewardAmount:   e.RewardAmount,
		BlockHeight:    call.BlockHeight,
		TxHash:         call.TxHash,
		ClaimedAt:      call.BlockTime,
	}); err != nil {
		return err
	}

	p.Log().Debugw("offchain reward claimed",
		"contract", call.Contract.String(),
		"account", e.Account.String(),
		"nonce", e.Nonce,
		"reward_id", rewardID,
		"amount", e.RewardAmount.String(),
	)
	return nil
}

// InitProjections describes the rewardees, claims, treasury and agents projections.
func (p *OffchainRewardsProcessor) InitProjections() map[string]*baseprocessor.Projection {
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
		"rewardees": {
			Name:          "rewardees",
			Table:         rewardeesTable,
			RowType:       reflect.TypeOf(Rewardee{}),
			HolderColumns: []string{"account"},
		},
		"claims": {
			Name:          "claims",
			Table:         claimsTable,
			RowType:       reflect.TypeOf(RewardClaim{}),
			HolderColumns: []string{"account"},
			TokenColumn:   "reward_token_id",
			OrderBy:       "id DESC",
		},
	}
}

// Projections returns the names of the queryable projections.
func (p *OffchainRewardsProcessor) Projections() []string {
	return p.ProjectionNames(p)
}

// QueryProjection returns one page of a projection of the contract.
func (p *OffchainRewardsProcessor) QueryProjection(ctx context.Context, contract concordium.ContractAddress,
	projection string, q processor.Query) (*processor.Page, error) {
	return p.BaseProcessor.QueryProjection(ctx, p, contract, projection, q)
}
