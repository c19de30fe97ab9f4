// Package identityregistry indexes the identities, issuers and agents of identity registry contracts.
package identityregistry

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"

	"github.com/goran-ethernal/RWAListener/internal/logger"
	baseprocessor "github.com/goran-ethernal/RWAListener/internal/processor"
	"github.com/goran-ethernal/RWAListener/internal/processors/identityregistry/migrations"
	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/goran-ethernal/RWAListener/pkg/config"
	"github.com/goran-ethernal/RWAListener/pkg/processor"
)

// Type is the processor type of identity registry contracts.
const Type = "identity-registry"

var (
	identities = baseprocessor.MemberSet{Table: "identity_registry_identities", Kind: "identity"}
	issuers    = baseprocessor.MemberSet{Table: "identity_registry_issuers", Kind: "issuer"}
	agents     = baseprocessor.MemberSet{Table: "identity_registry_agents", Kind: "agent"}
)

var (
	_ processor.Processor = (*IdentityRegistryProcessor)(nil)
	_ processor.Queryable = (*IdentityRegistryProcessor)(nil)
)

func init() {
	processor.Register(Type, NewIdentityRegistryProcessor)
}

// IdentityRegistryProcessor keeps the member sets of identity registry contracts.
type IdentityRegistryProcessor struct {
	*baseprocessor.BaseProcessor
}

// NewIdentityRegistryProcessor creates the processor and applies its migrations.
func NewIdentityRegistryProcessor(cfg config.ProcessorConfig, db *sql.DB,
	log *logger.Logger) (processor.Processor, error) {
	base, err := baseprocessor.NewBaseProcessor(db, log, cfg)
	if err != nil {
		return nil, err
	}

	if err := migrations.RunMigrations(log, db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &IdentityRegistryProcessor{BaseProcessor: base}, nil
}

func (p *IdentityRegistryProcessor) ProcessEvents(ctx context.Context, tx *sql.Tx,
	call processor.CallContext, events [][]byte) (int, error) {
	parsed, err := baseprocessor.ParseEvents(events, parseEvent)
	if err != nil {
		return 0, err
	}

	return baseprocessor.ApplyEvents(parsed, func(ev Event) error {
		switch e := ev.(type) {
		case IdentityUpdated:
			return p.update(ctx, tx, identities, call.Contract, e.Address, e.Added)
		case IssuerUpdated:
			return p.update(ctx, tx, issuers, call.Contract, concordium.ContractAddr(e.Issuer), e.Added)
		case AgentUpdated:
			return p.update(ctx, tx, agents, call.Contract, e.Agent, e.Added)
		default:
			return fmt.Errorf("%w: unhandled event %T", processor.ErrInvalidState, ev)
		}
	})
}

func (p *IdentityRegistryProcessor) update(ctx context.Context, tx *sql.Tx, set baseprocessor.MemberSet,
	contract concordium.ContractAddress, member concordium.Address, added bool) error {
	if added {
		return p.AddMember(ctx, tx, set, contract, member)
	}
	return p.RemoveMember(ctx, tx, set, contract, member)
}

func (p *IdentityRegistryProcessor) InitProjections() map[string]*baseprocessor.Projection {
	projections := make(map[string]*baseprocessor.Projection, 3) //nolint:mnd
	for name, set := range map[string]baseprocessor.MemberSet{
		"identities": identities,
		"issuers":    issuers,
		"agents":     agents,
	} {
		projections[name] = &baseprocessor.Projection{
			Name:          name,
			Table:         set.Table,
			RowType:       reflect.TypeOf(baseprocessor.MemberRow{}),
			HolderColumns: []string{"address"},
		}
	}
	return projections
}

func (p *IdentityRegistryProcessor) Projections() []string {
	return p.ProjectionNames(p)
}

func (p *IdentityRegistryProcessor) QueryProjection(ctx context.Context, contract concordium.ContractAddress,
	projection string, q processor.Query) (*processor.Page, error) {
	return p.BaseProcessor.QueryProjection(ctx, p, contract, projection, q)
}
