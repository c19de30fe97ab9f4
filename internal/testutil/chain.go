package testutil

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"sync/atomic"

	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/goran-ethernal/RWAListener/pkg/rpc"
)

var txCounter atomic.Uint64

// Account returns a deterministic account address filled with b.
func Account(b byte) concordium.AccountAddress {
	var a concordium.AccountAddress
	for i := range a {
		a[i] = b
	}
	return a
}

// AccountAddr returns Account(b) as an Address.
func AccountAddr(b byte) concordium.Address {
	return concordium.AccountAddr(Account(b))
}

// Contract returns the contract address <index,0>.
func Contract(index uint64) concordium.ContractAddress {
	return concordium.ContractAddress{Index: index}
}

// ContractAddr returns Contract(index) as an Address.
func ContractAddr(index uint64) concordium.Address {
	return concordium.ContractAddr(Contract(index))
}

// ModuleRef returns a deterministic module reference filled with b.
func ModuleRef(b byte) concordium.ModuleRef {
	var h concordium.ModuleRef
	for i := range h {
		h[i] = b
	}
	return h
}

// BlockHash returns the hash the fake node uses for the block at height.
func BlockHash(height uint64) concordium.Hash {
	var h concordium.Hash
	h[0] = 0xbb
	binary.BigEndian.PutUint64(h[24:], height)
	return h
}

// Tx builds a successful transaction summary from trace elements.
func Tx(sender concordium.AccountAddress, trace ...json.RawMessage) rpc.TransactionSummary {
	n := txCounter.Add(1)

	var hash concordium.Hash
	hash[0] = 0xaa
	binary.BigEndian.PutUint64(hash[24:], n)

	return rpc.TransactionSummary{
		Hash:   hash,
		Sender: &sender,
		Result: rpc.TransactionResult{Outcome: rpc.OutcomeSuccess, Events: trace},
	}
}

// RejectedTx builds a rejected transaction summary.
func RejectedTx(sender concordium.AccountAddress) rpc.TransactionSummary {
	ts := Tx(sender)
	ts.Result.Outcome = rpc.OutcomeReject
	return ts
}

// InitEvent builds a ContractInitialized trace element.
func InitEvent(ref concordium.ModuleRef, contract concordium.ContractAddress, contractName string,
	events ...[]byte) json.RawMessage {
	return traceJSON(rpc.TraceEvent{
		Tag:      rpc.TagContractInitialized,
		Ref:      &ref,
		Address:  contract,
		InitName: "init_" + contractName,
		Events:   hexEvents(events),
	})
}

// UpdateEvent builds an Updated trace element for contractName.entrypoint.
func UpdateEvent(contract concordium.ContractAddress, instigator concordium.Address, receiveName string,
	amount concordium.CCDAmount, events ...[]byte) json.RawMessage {
	return traceJSON(rpc.TraceEvent{
		Tag:         rpc.TagUpdated,
		Address:     contract,
		Amount:      amount,
		ReceiveName: receiveName,
		Instigator:  &instigator,
		Events:      hexEvents(events),
	})
}

// InterruptedEvent builds an Interrupted trace element.
func InterruptedEvent(contract concordium.ContractAddress, events ...[]byte) json.RawMessage {
	return traceJSON(rpc.TraceEvent{
		Tag:     rpc.TagInterrupted,
		Address: contract,
		Events:  hexEvents(events),
	})
}

// ResumedEvent builds a Resumed trace element.
func ResumedEvent(contract concordium.ContractAddress) json.RawMessage {
	raw, err := json.Marshal(map[string]any{"tag": rpc.TagResumed, "address": contract, "success": true})
	if err != nil {
		panic(err)
	}
	return raw
}

// TransferredEvent builds a non contract trace element.
func TransferredEvent(amount concordium.CCDAmount) json.RawMessage {
	raw, err := json.Marshal(map[string]any{"tag": "Transferred", "amount": amount})
	if err != nil {
		panic(err)
	}
	return raw
}

func traceJSON(ev rpc.TraceEvent) json.RawMessage {
	if ev.Events == nil {
		ev.Events = []string{}
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		panic(err)
	}
	return raw
}

func hexEvents(events [][]byte) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = hex.EncodeToString(e)
	}
	return out
}
