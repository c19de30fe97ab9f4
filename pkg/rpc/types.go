package rpc

import (
	"encoding/json"
	"time"

	"github.com/goran-ethernal/RWAListener/pkg/concordium"
)

// Transaction outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeReject  = "reject"
)

// Trace element tags of a successful contract transaction.
const (
	TagContractInitialized = "ContractInitialized"
	TagUpdated             = "Updated"
	TagInterrupted         = "Interrupted"
	TagResumed             = "Resumed"
)

type ConsensusStatus struct {
	LastFinalizedBlock       concordium.Hash `json:"lastFinalizedBlock"`
	LastFinalizedBlockHeight uint64          `json:"lastFinalizedBlockHeight"`
}

type BlockInfo struct {
	BlockHash     concordium.Hash `json:"blockHash"`
	BlockParent   concordium.Hash `json:"blockParent"`
	BlockHeight   uint64          `json:"blockHeight"`
	BlockSlotTime time.Time       `json:"blockSlotTime"`
	Finalized     bool            `json:"finalized"`
}

type BlockSummary struct {
	TransactionSummaries []TransactionSummary `json:"transactionSummaries"`
}

// TransactionSummary is the outcome of a single transaction.
// Sender is nil for chain update transactions.
type TransactionSummary struct {
	Hash   concordium.Hash            `json:"hash"`
	Sender *concordium.AccountAddress `json:"sender"`
	Index  uint64                     `json:"index"`
	Result TransactionResult          `json:"result"`
}

type TransactionResult struct {
	Outcome string            `json:"outcome"`
	Events  []json.RawMessage `json:"events"`
}

// TraceEvent is a contract related element of a transaction trace.
// Other elements share the "tag" field but not the layout, so check the tag
// with TraceTag before decoding.
type TraceEvent struct {
	Tag         string                     `json:"tag"`
	Ref         *concordium.ModuleRef      `json:"ref,omitempty"`
	Address     concordium.ContractAddress `json:"address"`
	Amount      concordium.CCDAmount       `json:"amount"`
	InitName    string                     `json:"initName,omitempty"`
	ReceiveName string                     `json:"receiveName,omitempty"`
	Instigator  *concordium.Address        `json:"instigator,omitempty"`
	Events      []string                   `json:"events"`
}

// TraceTag extracts the tag of a raw trace element.
func TraceTag(raw json.RawMessage) (string, error) {
	var head struct {
		Tag string `json:"tag"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return "", err
	}
	return head.Tag, nil
}
