package fetcher

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/goran-ethernal/RWAListener/pkg/fetcher"
	"github.com/goran-ethernal/RWAListener/pkg/rpc"
)

const initPrefix = "init_"

// decodeBlock converts the node's block summary into the calls the listener dispatches.
// Rejected transactions and transactions that reached no contract are dropped.
func decodeBlock(info *rpc.BlockInfo, summary *rpc.BlockSummary) (*fetcher.Block, error) {
	block := &fetcher.Block{
		Height:   info.BlockHeight,
		Hash:     info.BlockHash,
		Parent:   info.BlockParent,
		SlotTime: info.BlockSlotTime.UTC(),
	}

	for _, ts := range summary.TransactionSummaries {
		if ts.Result.Outcome != rpc.OutcomeSuccess {
			continue
		}

		calls, err := decodeCalls(ts)
		if err != nil {
			return nil, &fetcher.ParseError{Height: info.BlockHeight, TxHash: ts.Hash, Err: err}
		}
		if len(calls) == 0 {
			continue
		}

		block.Transactions = append(block.Transactions, fetcher.Transaction{
			Hash:   ts.Hash,
			Index:  ts.Index,
			Sender: ts.Sender,
			Calls:  calls,
		})
	}

	return block, nil
}

func decodeCalls(ts rpc.TransactionSummary) ([]fetcher.Call, error) {
	var calls []fetcher.Call

	for i, raw := range ts.Result.Events {
		tag, err := rpc.TraceTag(raw)
		if err != nil {
			return nil, fmt.Errorf("trace element %d: %w", i, err)
		}

		var kind fetcher.CallKind
		switch tag {
		case rpc.TagContractInitialized:
			kind = fetcher.CallInit
		case rpc.TagUpdated:
			kind = fetcher.CallUpdate
		case rpc.TagInterrupted:
			kind = fetcher.CallInterrupted
		default:
			// Resumed and non contract elements
			continue
		}

		var ev rpc.TraceEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, fmt.Errorf("trace element %d (%s): %w", i, tag, err)
		}

		call, err := toCall(kind, ev, ts.Sender)
		if err != nil {
			return nil, fmt.Errorf("trace element %d (%s): %w", i, tag, err)
		}
		calls = append(calls, call)
	}

	return calls, nil
}

func toCall(kind fetcher.CallKind, ev rpc.TraceEvent, sender *concordium.AccountAddress) (fetcher.Call, error) {
	call := fetcher.Call{
		Kind:     kind,
		Contract: ev.Address,
		Amount:   ev.Amount,
	}

	events, err := decodeEvents(ev.Events)
	if err != nil {
		return call, err
	}
	call.Events = events

	switch kind {
	case fetcher.CallInit:
		if ev.Ref == nil {
			return call, fmt.Errorf("contract %s initialized without module reference", ev.Address)
		}
		if !strings.HasPrefix(ev.InitName, initPrefix) {
			return call, fmt.Errorf("invalid init name %q", ev.InitName)
		}
		ref := *ev.Ref
		call.ModuleRef = &ref
		call.ContractName = strings.TrimPrefix(ev.InitName, initPrefix)
		call.Entrypoint = ev.InitName
		if sender != nil {
			instigator := concordium.AccountAddr(*sender)
			call.Instigator = &instigator
		}

	case fetcher.CallUpdate:
		name, entrypoint, ok := strings.Cut(ev.ReceiveName, ".")
		if !ok {
			return call, fmt.Errorf("invalid receive name %q", ev.ReceiveName)
		}
		call.ContractName = name
		call.Entrypoint = entrypoint
		call.Instigator = ev.Instigator
	}

	return call, nil
}

func decodeEvents(encoded []string) ([][]byte, error) {
	events := make([][]byte, 0, len(encoded))
	for i, e := range encoded {
		b, err := hex.DecodeString(e)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		events = append(events, b)
	}
	return events, nil
}
