package listener

import (
	"context"
	"database/sql"
	"time"

	"github.com/goran-ethernal/RWAListener/pkg/concordium"
)

// Listener follows the finalized chain and applies the events of tracked contracts.
type Listener interface {
	// Run processes blocks one by one until the context is cancelled or an
	// unrecoverable error occurs.
	Run(ctx context.Context) error

	// Close releases the resources held by the listener.
	Close() error
}

// CheckpointStore persists the last block whose effects are committed.
type CheckpointStore interface {
	// Load returns the stored checkpoint, or nil before the first block.
	Load(ctx context.Context) (*Checkpoint, error)

	// Save upserts the checkpoint inside the block transaction.
	// Saving a height that is not above the stored one fails.
	Save(ctx context.Context, tx *sql.Tx, cp *Checkpoint) error
}

// Registry keeps the contract instances whose module is bound to a processor.
type Registry interface {
	// Find returns the tracked contract at the address, or nil.
	Find(ctx context.Context, tx *sql.Tx, contract concordium.ContractAddress) (*TrackedContract, error)

	// Register adds a contract. Registering the same address twice fails.
	Register(ctx context.Context, tx *sql.Tx, c *TrackedContract) error

	// List returns all tracked contracts in registration order.
	List(ctx context.Context) ([]*TrackedContract, error)
}

// Notifier is told about every committed block.
type Notifier interface {
	NotifyBlock(ctx context.Context, n *BlockNotification) error
	Close() error
}

// Checkpoint is the last fully processed block.
// Uses meddler tags for automatic struct-to-db mapping.
type Checkpoint struct {
	ID            int             `meddler:"id,pk" json:"-"`
	BlockHeight   uint64          `meddler:"block_height" json:"block_height"`
	BlockHash     concordium.Hash `meddler:"block_hash,hash" json:"block_hash"`
	BlockSlotTime time.Time       `meddler:"block_slot_time,unixmilli" json:"block_slot_time"`
	UpdatedAt     time.Time       `meddler:"updated_at,unixmilli" json:"updated_at"`
}

// TrackedContract is a contract instance created from a module bound to a processor.
type TrackedContract struct {
	ID           int64                      `meddler:"id,pk" json:"-"`
	Contract     concordium.ContractAddress `meddler:"contract,contract" json:"contract"`
	ModuleRef    concordium.ModuleRef       `meddler:"module_ref,hash" json:"module_ref"`
	ContractName string                     `meddler:"contract_name" json:"contract_name"`
	Owner        *concordium.AccountAddress `meddler:"owner,account" json:"owner,omitempty"`
	Processor    string                     `meddler:"processor" json:"processor"`
	BlockHeight  uint64                     `meddler:"block_height" json:"block_height"`
	TxHash       concordium.Hash            `meddler:"tx_hash,hash" json:"tx_hash"`
}

// CallRecord is one init or update call of a tracked contract.
type CallRecord struct {
	ID            int64                      `meddler:"id,pk" json:"-"`
	BlockHeight   uint64                     `meddler:"block_height" json:"block_height"`
	BlockSlotTime time.Time                  `meddler:"block_slot_time,unixmilli" json:"block_slot_time"`
	TxHash        concordium.Hash            `meddler:"transaction_hash,hash" json:"transaction_hash"`
	TxIndex       uint64                     `meddler:"tx_index" json:"tx_index"`
	Contract      concordium.ContractAddress `meddler:"contract,contract" json:"contract"`
	Entrypoint    string                     `meddler:"entrypoint_name" json:"entrypoint_name"`
	Amount        concordium.CCDAmount       `meddler:"ccd_amount" json:"ccd_amount"`
	Instigator    *concordium.Address        `meddler:"instigator,address" json:"instigator,omitempty"`
	Sender        *concordium.AccountAddress `meddler:"sender,account" json:"sender,omitempty"`
	EventsCount   int                        `meddler:"events_count" json:"events_count"`
	CallType      string                     `meddler:"call_type" json:"call_type"`
}

// BlockNotification summarizes a committed block.
type BlockNotification struct {
	Height   uint64          `json:"height"`
	Hash     concordium.Hash `json:"hash"`
	SlotTime time.Time       `json:"slot_time"`
	Calls    int             `json:"calls"`
	Events   int             `json:"events"`
}
