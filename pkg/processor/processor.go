package processor

import (
	"context"
	"database/sql"
	"time"

	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/goran-ethernal/RWAListener/pkg/fetcher"
)

// Processor applies the events of one kind of contract to its projection tables.
// The listener invokes processors one at a time, in chain order, inside the
// transaction of the block being processed.
type Processor interface {
	// Name returns the configured name of this processor instance.
	Name() string

	// Type returns the registered processor type.
	Type() string

	// ContractName returns the name of the contract the processor understands.
	ContractName() string

	// ModuleRef returns the reference of the deployed module the processor is bound to.
	ModuleRef() concordium.ModuleRef

	// ProcessEvents parses and applies the raw events emitted by a single call of
	// a tracked contract, in emission order, and returns the number of applied events.
	// Any error aborts the block.
	ProcessEvents(ctx context.Context, tx *sql.Tx, call CallContext, events [][]byte) (int, error)
}

// Queryable is implemented by processors that expose their projections over the API.
type Queryable interface {
	// Projections returns the names of the queryable projections.
	Projections() []string

	// QueryProjection returns one page of a projection of the given contract.
	QueryProjection(ctx context.Context, contract concordium.ContractAddress, projection string,
		q Query) (*Page, error)
}

// CallContext describes the contract call whose events are processed.
type CallContext struct {
	BlockHeight uint64
	BlockHash   concordium.Hash
	BlockTime   time.Time

	TxHash  concordium.Hash
	TxIndex uint64
	Sender  *concordium.AccountAddress

	Kind       fetcher.CallKind
	Contract   concordium.ContractAddress
	Entrypoint string
	Amount     concordium.CCDAmount
	Instigator *concordium.Address
}

// DefaultPageSize is the number of rows per page of the read API.
const DefaultPageSize = 20

// Query selects a page of a projection.
type Query struct {
	// Page is zero based
	Page     int
	PageSize int

	// Holder restricts rows to an account or contract address
	Holder string

	// TokenID restricts rows to a token id (hex)
	TokenID string
}

// Limit returns the page size, falling back to DefaultPageSize.
func (q Query) Limit() int {
	if q.PageSize <= 0 {
		return DefaultPageSize
	}
	return q.PageSize
}

// Offset returns the number of rows before the page.
func (q Query) Offset() int {
	return q.Page * q.Limit()
}

// Page is a single page of rows.
type Page struct {
	Data      any `json:"data"`
	Page      int `json:"page"`
	PageCount int `json:"page_count"`
}

// PageCount returns the number of pages needed for total rows.
func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
