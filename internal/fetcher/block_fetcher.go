package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/goran-ethernal/RWAListener/internal/logger"
	"github.com/goran-ethernal/RWAListener/pkg/fetcher"
	"github.com/goran-ethernal/RWAListener/pkg/rpc"
)

// Compile-time check to ensure BlockFetcher implements fetcher.BlockFetcher interface.
var _ fetcher.BlockFetcher = (*BlockFetcher)(nil)

// BlockFetcher reads finalized blocks one by one from a node.
type BlockFetcher struct {
	rpc          rpc.NodeClient
	pollInterval time.Duration
	log          *logger.Logger

	mode          fetcher.FetchMode
	lastFinalized uint64
}

// NewBlockFetcher creates a new BlockFetcher instance.
func NewBlockFetcher(rpcClient rpc.NodeClient, pollInterval time.Duration, log *logger.Logger) *BlockFetcher {
	return &BlockFetcher{
		rpc:          rpcClient,
		pollInterval: pollInterval,
		log:          log,
		mode:         fetcher.ModeCatchingUp,
	}
}

// GetMode returns the current operating mode.
func (f *BlockFetcher) GetMode() fetcher.FetchMode {
	return f.mode
}

func (f *BlockFetcher) setMode(mode fetcher.FetchMode) {
	if f.mode == mode {
		return
	}
	f.log.Infof("switching fetch mode from %v to %v", f.mode, mode)
	f.mode = mode
	FetchModeSet(mode)
}

// LastFinalizedHeight queries the node for the last finalized block height.
func (f *BlockFetcher) LastFinalizedHeight(ctx context.Context) (uint64, error) {
	status, err := f.rpc.ConsensusStatus(ctx)
	if err != nil {
		return 0, &fetcher.RpcError{Op: "getConsensusStatus", Height: f.lastFinalized, Err: err}
	}

	f.lastFinalized = status.LastFinalizedBlockHeight
	FinalizedBlockLogSet(f.lastFinalized)

	return f.lastFinalized, nil
}

// FetchBlock returns the finalized block at height. While the block is not
// finalized it polls the node; the wait is only bounded by the context.
func (f *BlockFetcher) FetchBlock(ctx context.Context, height uint64) (*fetcher.Block, error) {
	if err := f.waitFinalized(ctx, height); err != nil {
		return nil, err
	}

	for {
		block, ready, err := f.fetchFinalized(ctx, height)
		if err != nil || ready {
			return block, err
		}

		// the consensus status may run ahead of the block index of the node
		f.log.Debugf("block %d not indexed as finalized yet, waiting", height)
		if err := f.sleep(ctx); err != nil {
			return nil, err
		}
	}
}

func (f *BlockFetcher) waitFinalized(ctx context.Context, height uint64) error {
	if height <= f.lastFinalized {
		f.setMode(fetcher.ModeCatchingUp)
		return nil
	}

	for {
		finalized, err := f.LastFinalizedHeight(ctx)
		if err != nil {
			return err
		}
		if height <= finalized {
			return nil
		}

		f.setMode(fetcher.ModeFollowing)
		f.log.Debugf("waiting for block %d, last finalized: %d", height, finalized)

		if err := f.sleep(ctx); err != nil {
			return err
		}
	}
}

func (f *BlockFetcher) fetchFinalized(ctx context.Context, height uint64) (*fetcher.Block, bool, error) {
	start := time.Now()

	hashes, err := f.rpc.BlocksAtHeight(ctx, height)
	if err != nil {
		return nil, false, &fetcher.RpcError{Op: "getBlocksAtHeight", Height: height, Err: err}
	}
	switch len(hashes) {
	case 0:
		return nil, false, nil
	case 1:
	default:
		return nil, false, &fetcher.ParseError{Height: height,
			Err: fmt.Errorf("%d blocks at finalized height", len(hashes))}
	}

	info, err := f.rpc.BlockInfo(ctx, hashes[0])
	if err != nil {
		return nil, false, &fetcher.RpcError{Op: "getBlockInfo", Height: height, Err: err}
	}
	if !info.Finalized {
		return nil, false, nil
	}
	if info.BlockHeight != height {
		return nil, false, &fetcher.ParseError{Height: height,
			Err: fmt.Errorf("node returned block %s at height %d", info.BlockHash, info.BlockHeight)}
	}

	summary, err := f.rpc.BlockSummary(ctx, info.BlockHash)
	if err != nil {
		return nil, false, &fetcher.RpcError{Op: "getBlockSummary", Height: height, Err: err}
	}

	block, err := decodeBlock(info, summary)
	if err != nil {
		return nil, false, err
	}

	BlockFetchDurationLog(time.Since(start))
	f.log.Debugf("fetched block %d (%s) with %d transactions touching contracts",
		block.Height, block.Hash, len(block.Transactions))

	return block, true, nil
}

func (f *BlockFetcher) sleep(ctx context.Context) error {
	timer := time.NewTimer(f.pollInterval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
