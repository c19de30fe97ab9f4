package rpc

import (
	"context"

	"github.com/goran-ethernal/RWAListener/pkg/concordium"
)

// NodeClient defines the node queries the listener depends on.
// This abstraction allows for easier testing and alternative implementations.
type NodeClient interface {
	// Close closes the connection to the node.
	Close()

	// ConsensusStatus returns the node's view of the chain.
	ConsensusStatus(ctx context.Context) (*ConsensusStatus, error)

	// BlocksAtHeight returns the hashes of the blocks at the given height.
	BlocksAtHeight(ctx context.Context, height uint64) ([]concordium.Hash, error)

	// BlockInfo returns the header information of a block.
	BlockInfo(ctx context.Context, hash concordium.Hash) (*BlockInfo, error)

	// BlockSummary returns the outcomes of all transactions in a block.
	BlockSummary(ctx context.Context, hash concordium.Hash) (*BlockSummary, error)
}
