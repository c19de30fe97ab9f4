package fetcher

import (
	"fmt"

	"github.com/goran-ethernal/RWAListener/pkg/concordium"
)

// RpcError is returned when the node could not be queried.
// The node client has already retried the request when this surfaces.
type RpcError struct {
	Op     string
	Height uint64
	Err    error
}

func (e *RpcError) Error() string {
	return fmt.Sprintf("%s for block %d failed: %v", e.Op, e.Height, e.Err)
}

func (e *RpcError) Unwrap() error {
	return e.Err
}

// ParseError is returned when a block returned by the node cannot be decoded.
// It is fatal for the block: the block must not be skipped.
type ParseError struct {
	Height uint64
	TxHash concordium.Hash
	Err    error
}

func (e *ParseError) Error() string {
	if e.TxHash.IsZero() {
		return fmt.Sprintf("failed to decode block %d: %v", e.Height, e.Err)
	}
	return fmt.Sprintf("failed to decode transaction %s of block %d: %v", e.TxHash, e.Height, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
