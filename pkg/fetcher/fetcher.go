package fetcher

import (
	"context"
	"time"

	"github.com/goran-ethernal/RWAListener/pkg/concordium"
)

// BlockFetcher defines the interface for reading finalized blocks from the chain.
// This abstraction allows for easier testing and alternative implementations.
type BlockFetcher interface {
	// GetMode returns the current operating mode.
	GetMode() FetchMode

	// LastFinalizedHeight returns the height of the last finalized block.
	LastFinalizedHeight(ctx context.Context) (uint64, error)

	// FetchBlock returns the finalized block at the given height together with
	// the contract calls of its transactions. It waits until the block is finalized.
	FetchBlock(ctx context.Context, height uint64) (*Block, error)
}

// FetchMode represents the operating mode of the block fetcher.
type FetchMode string

const (
	// ModeCatchingUp reads blocks that are already finalized
	ModeCatchingUp FetchMode = "catching-up"
	// ModeFollowing waits for new blocks to be finalized
	ModeFollowing FetchMode = "following"
)

// String returns the string representation of the mode.
func (m FetchMode) String() string {
	return string(m)
}

// Block is a finalized block with its successful transactions in chain order.
type Block struct {
	Height       uint64
	Hash         concordium.Hash
	Parent       concordium.Hash
	SlotTime     time.Time
	Transactions []Transaction
}

// CallCount returns the number of contract calls in the block.
func (b *Block) CallCount() int {
	n := 0
	for _, tx := range b.Transactions {
		n += len(tx.Calls)
	}
	return n
}

// Transaction is a successful transaction that reached at least one contract.
type Transaction struct {
	Hash   concordium.Hash
	Index  uint64
	Sender *concordium.AccountAddress
	Calls  []Call
}

// CallKind distinguishes the contract related trace elements.
type CallKind string

const (
	CallInit        CallKind = "init"
	CallUpdate      CallKind = "update"
	CallInterrupted CallKind = "interrupted"
)

// Call is one group of events emitted by a single contract instance, in emission order.
// Nested calls produce their own groups within the same transaction.
type Call struct {
	Kind     CallKind
	Contract concordium.ContractAddress
	// ModuleRef is only set for CallInit.
	ModuleRef    *concordium.ModuleRef
	ContractName string
	Entrypoint   string
	Amount       concordium.CCDAmount
	// Instigator is the account or contract that invoked the call; nil for CallInterrupted.
	Instigator *concordium.Address
	Events     [][]byte
}
