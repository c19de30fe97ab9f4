package listener

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	cache "github.com/Code-Hex/go-generics-cache"
	"github.com/Code-Hex/go-generics-cache/policy/lru"
	"github.com/goran-ethernal/RWAListener/internal/common"
	"github.com/goran-ethernal/RWAListener/internal/db"
	"github.com/goran-ethernal/RWAListener/internal/logger"
	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	pkglistener "github.com/goran-ethernal/RWAListener/pkg/listener"
	"github.com/russross/meddler"
)

// Compile-time check to ensure Registry implements pkglistener.Registry interface.
var _ pkglistener.Registry = (*Registry)(nil)

const trackedContractsTable = "tracked_contracts"

// ErrAlreadyRegistered is returned when an address is registered a second time.
var ErrAlreadyRegistered = errors.New("contract already registered")

// TrackedContract is a type alias for the public TrackedContract type.
type TrackedContract = pkglistener.TrackedContract

// Registry stores tracked contracts in the tracked_contracts table with an LRU
// cache in front. Lookups of untracked addresses are cached as well, as nil.
// The cache may hold rows written by an uncommitted block, so Purge must be
// called when a block transaction is rolled back.
type Registry struct {
	db     *sql.DB
	log    *logger.Logger
	cache  *cache.Cache[concordium.ContractAddress, *TrackedContract]
	cancel context.CancelFunc
	size   int
}

// NewRegistry creates a registry whose cache holds up to cacheSize lookups.
func NewRegistry(database *sql.DB, cacheSize int, log *logger.Logger) *Registry {
	r := &Registry{
		db:   database,
		log:  log.WithComponent(common.ComponentRegistry),
		size: cacheSize,
	}
	r.Purge()
	return r
}

// Purge drops every cached lookup.
func (r *Registry) Purge() {
	if r.cancel != nil {
		r.cancel()
	}

	// the context stops the janitor of the replaced cache
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.cache = cache.NewContext[concordium.ContractAddress, *TrackedContract](ctx,
		cache.AsLRU[concordium.ContractAddress, *TrackedContract](lru.WithCapacity(r.size)),
	)
}

// Close stops the cache janitor.
func (r *Registry) Close() {
	if r.cancel != nil {
		r.cancel()
	}
}

// Find returns the tracked contract at the address, or nil if the address is not tracked.
func (r *Registry) Find(ctx context.Context, tx *sql.Tx, contract concordium.ContractAddress) (*TrackedContract, error) {
	if c, ok := r.cache.Get(contract); ok {
		return c, nil
	}

	var c TrackedContract
	err := meddler.QueryRow(tx, &c, `SELECT * FROM tracked_contracts WHERE contract = ?`, contract.String())
	if errors.Is(err, sql.ErrNoRows) {
		r.cache.Set(contract, nil)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find contract %s: %w", contract, err)
	}

	r.cache.Set(contract, &c)
	return &c, nil
}

// Register adds a contract to the registry inside the block transaction.
func (r *Registry) Register(ctx context.Context, tx *sql.Tx, c *TrackedContract) error {
	existing, err := r.Find(ctx, tx, c.Contract)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, c.Contract)
	}

	c.ID = 0
	if err := meddler.Insert(tx, trackedContractsTable, c); err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrAlreadyRegistered, c.Contract)
		}
		return fmt.Errorf("failed to register contract %s: %w", c.Contract, err)
	}

	r.cache.Set(c.Contract, c)

	r.log.Infow("contract registered",
		"contract", c.Contract.String(),
		"contract_name", c.ContractName,
		"module_ref", c.ModuleRef.String(),
		"processor", c.Processor,
		"block", c.BlockHeight,
	)

	return nil
}

// List returns all tracked contracts in registration order.
func (r *Registry) List(ctx context.Context) ([]*TrackedContract, error) {
	var contracts []*TrackedContract
	if err := meddler.QueryAll(r.db, &contracts, `SELECT * FROM tracked_contracts ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list tracked contracts: %w", err)
	}
	return contracts, nil
}

// Count returns the number of tracked contracts.
func (r *Registry) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tracked_contracts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tracked contracts: %w", err)
	}
	return n, nil
}

// Get reads a tracked contract from committed state, bypassing the cache.
// It returns nil if the address is not tracked.
func (r *Registry) Get(ctx context.Context, contract concordium.ContractAddress) (*TrackedContract, error) {
	var c TrackedContract
	err := meddler.QueryRow(r.db, &c, `SELECT * FROM tracked_contracts WHERE contract = ?`, contract.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contract %s: %w", contract, err)
	}
	return &c, nil
}
