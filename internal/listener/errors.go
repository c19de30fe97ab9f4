package listener

import (
	"fmt"

	"github.com/goran-ethernal/RWAListener/pkg/concordium"
)

// ChainDiscontinuityError is returned when a fetched block does not extend the
// block stored in the checkpoint. Finalized blocks never change, so this means
// the node serves a different chain than the one the database was built from.
type ChainDiscontinuityError struct {
	Height         uint64
	ExpectedParent concordium.Hash
	ActualParent   concordium.Hash
}

func (e *ChainDiscontinuityError) Error() string {
	return fmt.Sprintf("chain discontinuity at height %d: expected parent %s, got %s",
		e.Height, e.ExpectedParent, e.ActualParent)
}
