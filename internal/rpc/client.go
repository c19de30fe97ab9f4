package rpc

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goran-ethernal/RWAListener/internal/logger"
	"github.com/goran-ethernal/RWAListener/internal/retry"
	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/goran-ethernal/RWAListener/pkg/config"
	pkgrpc "github.com/goran-ethernal/RWAListener/pkg/rpc"
	"golang.org/x/time/rate"
)

// Compile-time check to ensure Client implements pkgrpc.NodeClient interface.
var _ pkgrpc.NodeClient = (*Client)(nil)

const (
	methodConsensusStatus = "getConsensusStatus"
	methodBlocksAtHeight  = "getBlocksAtHeight"
	methodBlockInfo       = "getBlockInfo"
	methodBlockSummary    = "getBlockSummary"
)

// Client talks JSON-RPC to a Concordium node.
// Every request goes through the rate limiter and is retried on transient failures.
type Client struct {
	rpc     *rpc.Client
	limiter *rate.Limiter
	retry   *config.RetryConfig
	timeout time.Duration
	log     *logger.Logger
}

// NewClient creates a new client connected to the node of the listener configuration.
func NewClient(ctx context.Context, cfg config.ListenerConfig, log *logger.Logger) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, cfg.NodeURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial node %s: %w", cfg.NodeURL, err)
	}

	return newClient(rpcClient, cfg, log), nil
}

func newClient(rpcClient *rpc.Client, cfg config.ListenerConfig, log *logger.Logger) *Client {
	c := &Client{
		rpc:     rpcClient,
		retry:   cfg.Retry,
		timeout: cfg.RequestTimeout.Duration,
		log:     log,
	}

	if cfg.RateLimit != nil {
		c.limiter = NewLimiter(cfg.RateLimit)
		log.Infof("node requests limited to %d per %v", cfg.RateLimit.Requests, cfg.RateLimit.Per.Duration)
	}

	return c
}

// NewLimiter converts a requests-per-period budget into a token bucket
// that allows a burst of the whole budget.
func NewLimiter(cfg *config.RateLimitConfig) *rate.Limiter {
	return rate.NewLimiter(rate.Every(cfg.Per.Duration/time.Duration(cfg.Requests)), cfg.Requests)
}

// Close closes the RPC client connection.
func (c *Client) Close() {
	c.rpc.Close()
}

// ConsensusStatus returns the node's view of the chain, including the last finalized block.
func (c *Client) ConsensusStatus(ctx context.Context) (*pkgrpc.ConsensusStatus, error) {
	var status pkgrpc.ConsensusStatus
	if err := c.call(ctx, &status, methodConsensusStatus); err != nil {
		return nil, err
	}
	return &status, nil
}

// BlocksAtHeight returns the hashes of the blocks at the given height.
func (c *Client) BlocksAtHeight(ctx context.Context, height uint64) ([]concordium.Hash, error) {
	var hashes []concordium.Hash
	if err := c.call(ctx, &hashes, methodBlocksAtHeight, height); err != nil {
		return nil, err
	}
	return hashes, nil
}

// BlockInfo returns the header information of a block.
func (c *Client) BlockInfo(ctx context.Context, hash concordium.Hash) (*pkgrpc.BlockInfo, error) {
	var info *pkgrpc.BlockInfo
	if err := c.call(ctx, &info, methodBlockInfo, hash.String()); err != nil {
		return nil, err
	}
	if info == nil {
		return nil, fmt.Errorf("block %s not found", hash)
	}
	return info, nil
}

// BlockSummary returns the outcomes of all transactions in a block.
func (c *Client) BlockSummary(ctx context.Context, hash concordium.Hash) (*pkgrpc.BlockSummary, error) {
	var summary *pkgrpc.BlockSummary
	if err := c.call(ctx, &summary, methodBlockSummary, hash.String()); err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, fmt.Errorf("summary of block %s not found", hash)
	}
	return summary, nil
}

func (c *Client) call(ctx context.Context, result any, method string, args ...any) error {
	RPCMethodInc(method)
	start := time.Now()

	err := retry.Do(ctx, c.retry, method, retryableError, func() error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		reqCtx := ctx
		if c.timeout > 0 {
			var cancel context.CancelFunc
			reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}

		err := c.rpc.CallContext(reqCtx, result, method, args...)
		if err != nil {
			RPCMethodError(method, errorType(err))
			c.log.Debugf("%s failed: %v", method, err)
		}
		return err
	})

	RPCMethodDuration(method, time.Since(start))
	return err
}
