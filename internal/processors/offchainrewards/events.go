package offchainrewards

import (
	"encoding/hex"

	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/shopspring/decimal"
)

const (
	tagAgentAdded uint8 = iota
	tagAgentRemoved
	tagTreasuryUpdated
	tagClaimed
)

// Event is one decoded offchain rewards event.
type Event interface {
	isEvent()
}

type AgentUpdated struct {
	Agent concordium.Address
	Added bool
}

type TreasuryUpdated struct {
	Treasury concordium.Address
}

// Claimed is a reward signed off chain and claimed by Account with its current nonce.
type Claimed struct {
	Account        concordium.AccountAddress
	Nonce          uint64
	RewardID       []byte
	RewardContract concordium.ContractAddress
	RewardTokenID  concordium.TokenID
	RewardAmount   decimal.Decimal
}

// RewardIDHex is the reward id as stored and served.
func (c Claimed) RewardIDHex() string {
	return hex.EncodeToString(c.RewardID)
}

func (AgentUpdated) isEvent()    {}
func (TreasuryUpdated) isEvent() {}
func (Claimed) isEvent()         {}

func parseEvent(tag uint8, r *concordium.Reader) (Event, bool) {
	switch tag {
	case tagAgentAdded, tagAgentRemoved:
		return AgentUpdated{Agent: r.Address(), Added: tag == tagAgentAdded}, true
	case tagTreasuryUpdated:
		return TreasuryUpdated{Treasury: r.Address()}, true
	case tagClaimed:
		return Claimed{
			Account:        r.AccountAddress(),
			Nonce:          r.U64(),
			RewardID:       r.Bytes(),
			RewardContract: r.ContractAddress(),
			RewardTokenID:  r.TokenID(),
			RewardAmount:   r.TokenAmount(),
		}, true
	default:
		return nil, false
	}
}
