package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/goran-ethernal/RWAListener/pkg/rpc"
)

// Compile-time check to ensure FakeNode implements rpc.NodeClient interface.
var _ rpc.NodeClient = (*FakeNode)(nil)

// GenesisTime is the slot time of the first block of a FakeNode.
var GenesisTime = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

type fakeBlock struct {
	info    rpc.BlockInfo
	summary rpc.BlockSummary
}

// FakeNode is an in-memory chain. Blocks are appended with AddBlock and become
// visible as finalized immediately unless finalization is held back with SetFinalized.
type FakeNode struct {
	mu sync.Mutex

	start     uint64
	blocks    []*fakeBlock
	finalized uint64

	failures []error
	calls    map[string]int
}

// NewFakeNode creates an empty chain whose first block is at height start.
func NewFakeNode(start uint64) *FakeNode {
	return &FakeNode{
		start: start,
		calls: make(map[string]int),
	}
}

// AddBlock appends a finalized block holding the given transactions and returns its info.
func (n *FakeNode) AddBlock(txs ...rpc.TransactionSummary) rpc.BlockInfo {
	n.mu.Lock()
	defer n.mu.Unlock()

	height := n.start + uint64(len(n.blocks))
	for i := range txs {
		txs[i].Index = uint64(i)
	}

	info := rpc.BlockInfo{
		BlockHash:     BlockHash(height),
		BlockParent:   BlockHash(height - 1),
		BlockHeight:   height,
		BlockSlotTime: GenesisTime.Add(time.Duration(len(n.blocks)) * 2 * time.Second),
		Finalized:     true,
	}
	n.blocks = append(n.blocks, &fakeBlock{
		info:    info,
		summary: rpc.BlockSummary{TransactionSummaries: txs},
	})
	n.finalized = height

	return info
}

// AddEmptyBlocks appends count blocks without transactions.
func (n *FakeNode) AddEmptyBlocks(count int) {
	for range count {
		n.AddBlock()
	}
}

// SetFinalized moves the last finalized height. Blocks above it are reported as not finalized.
func (n *FakeNode) SetFinalized(height uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.finalized = height
}

// ReplaceParent rewrites the parent hash of the block at height.
func (n *FakeNode) ReplaceParent(height uint64, parent concordium.Hash) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.blocks[height-n.start].info.BlockParent = parent
}

// FailNext makes the next request fail with err. Calls queue up.
func (n *FakeNode) FailNext(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures = append(n.failures, err)
}

// Calls returns how often the given method was requested.
func (n *FakeNode) Calls(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[method]
}

func (n *FakeNode) request(method string) error {
	n.calls[method]++
	if len(n.failures) == 0 {
		return nil
	}
	err := n.failures[0]
	n.failures = n.failures[1:]
	return err
}

func (n *FakeNode) Close() {}

func (n *FakeNode) ConsensusStatus(ctx context.Context) (*rpc.ConsensusStatus, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.request("getConsensusStatus"); err != nil {
		return nil, err
	}

	return &rpc.ConsensusStatus{
		LastFinalizedBlock:       BlockHash(n.finalized),
		LastFinalizedBlockHeight: n.finalized,
	}, nil
}

func (n *FakeNode) BlocksAtHeight(ctx context.Context, height uint64) ([]concordium.Hash, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.request("getBlocksAtHeight"); err != nil {
		return nil, err
	}

	b := n.block(height)
	if b == nil {
		return []concordium.Hash{}, nil
	}
	return []concordium.Hash{b.info.BlockHash}, nil
}

func (n *FakeNode) BlockInfo(ctx context.Context, hash concordium.Hash) (*rpc.BlockInfo, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.request("getBlockInfo"); err != nil {
		return nil, err
	}

	b := n.byHash(hash)
	if b == nil {
		return nil, fmt.Errorf("block %s not found", hash)
	}
	info := b.info
	info.Finalized = info.BlockHeight <= n.finalized
	return &info, nil
}

func (n *FakeNode) BlockSummary(ctx context.Context, hash concordium.Hash) (*rpc.BlockSummary, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.request("getBlockSummary"); err != nil {
		return nil, err
	}

	b := n.byHash(hash)
	if b == nil {
		return nil, fmt.Errorf("block %s not found", hash)
	}
	summary := b.summary
	return &summary, nil
}

func (n *FakeNode) block(height uint64) *fakeBlock {
	if height < n.start || height-n.start >= uint64(len(n.blocks)) {
		return nil
	}
	return n.blocks[height-n.start]
}

func (n *FakeNode) byHash(hash concordium.Hash) *fakeBlock {
	for _, b := range n.blocks {
		if b.info.BlockHash == hash {
			return b
		}
	}
	return nil
}
