package securitysft

import (
	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/shopspring/decimal"
)

const (
	tagTransfer              uint8 = 255
	tagMint                  uint8 = 254
	tagBurn                  uint8 = 253
	tagUpdateOperator        uint8 = 252
	tagTokenMetadata         uint8 = 251
	tagAgentAdded            uint8 = 250
	tagAgentRemoved          uint8 = 249
	tagTokensFrozen          uint8 = 248
	tagTokensUnFrozen        uint8 = 247
	tagPaused                uint8 = 246
	tagUnPaused              uint8 = 245
	tagRecovered             uint8 = 244
	tagIdentityRegistryAdded uint8 = 243
	tagComplianceAdded       uint8 = 242
	tagRewardAdded           uint8 = 241
	tagRewardClaimed         uint8 = 240
)

// Event is one decoded security token contract event.
type Event interface {
	isEvent()
}

type Transfer struct {
	TokenID concordium.TokenID
	Amount  decimal.Decimal
	From    concordium.Address
	To      concordium.Address
}

type Mint struct {
	TokenID concordium.TokenID
	Amount  decimal.Decimal
	Owner   concordium.Address
}

type Burn struct {
	TokenID concordium.TokenID
	Amount  decimal.Decimal
	Owner   concordium.Address
}

type UpdateOperator struct {
	Add      bool
	Owner    concordium.Address
	Operator concordium.Address
}

type TokenMetadata struct {
	TokenID concordium.TokenID
	URL     string
	Hash    *concordium.Hash
}

type AgentAdded struct {
	Agent concordium.Address
}

type AgentRemoved struct {
	Agent concordium.Address
}

// TokensFrozen and TokensUnFrozen share the layout; Freeze tells them apart.
type TokensFrozen struct {
	TokenID concordium.TokenID
	Amount  decimal.Decimal
	Address concordium.Address
	Freeze  bool
}

// Paused and UnPaused share the layout; Paused tells them apart.
type PauseUpdated struct {
	TokenID concordium.TokenID
	Paused  bool
}

type Recovered struct {
	Lost concordium.Address
	New  concordium.Address
}

type IdentityRegistryAdded struct {
	Contract concordium.ContractAddress
}

type ComplianceAdded struct {
	Contract concordium.ContractAddress
}

type RewardAdded struct {
	TokenID        concordium.TokenID
	RewardContract concordium.ContractAddress
	RewardTokenID  concordium.TokenID
	RewardAmount   decimal.Decimal
	Rate           concordium.Rate
}

type RewardClaimed struct {
	TokenID        concordium.TokenID
	Owner          concordium.Address
	RewardContract concordium.ContractAddress
	RewardTokenID  concordium.TokenID
	RewardAmount   decimal.Decimal
}

func (Transfer) isEvent()              {}
func (Mint) isEvent()                  {}
func (Burn) isEvent()                  {}
func (UpdateOperator) isEvent()        {}
func (TokenMetadata) isEvent()         {}
func (AgentAdded) isEvent()            {}
func (AgentRemoved) isEvent()          {}
func (TokensFrozen) isEvent()          {}
func (PauseUpdated) isEvent()          {}
func (Recovered) isEvent()             {}
func (IdentityRegistryAdded) isEvent() {}
func (ComplianceAdded) isEvent()       {}
func (RewardAdded) isEvent()           {}
func (RewardClaimed) isEvent()         {}

// parseEvent decodes the body of a security token event. Reward events are
// only known to the rewards variant of the contract.
func parseEvent(tag uint8, r *concordium.Reader, rewards bool) (Event, bool) {
	switch tag {
	case tagTransfer:
		return Transfer{TokenID: r.TokenID(), Amount: r.TokenAmount(), From: r.Address(), To: r.Address()}, true
	case tagMint:
		return Mint{TokenID: r.TokenID(), Amount: r.TokenAmount(), Owner: r.Address()}, true
	case tagBurn:
		return Burn{TokenID: r.TokenID(), Amount: r.TokenAmount(), Owner: r.Address()}, true
	case tagUpdateOperator:
		return UpdateOperator{Add: r.Bool(), Owner: r.Address(), Operator: r.Address()}, true
	case tagTokenMetadata:
		return TokenMetadata{TokenID: r.TokenID(), URL: r.Text(), Hash: r.OptionalHash()}, true
	case tagAgentAdded:
		return AgentAdded{Agent: r.Address()}, true
	case tagAgentRemoved:
		return AgentRemoved{Agent: r.Address()}, true
	case tagTokensFrozen, tagTokensUnFrozen:
		return TokensFrozen{
			TokenID: r.TokenID(),
			Amount:  r.TokenAmount(),
			Address: r.Address(),
			Freeze:  tag == tagTokensFrozen,
		}, true
	case tagPaused, tagUnPaused:
		return PauseUpdated{TokenID: r.TokenID(), Paused: tag == tagPaused}, true
	case tagRecovered:
		return Recovered{Lost: r.Address(), New: r.Address()}, true
	case tagIdentityRegistryAdded:
		return IdentityRegistryAdded{Contract: r.ContractAddress()}, true
	case tagComplianceAdded:
		return ComplianceAdded{Contract: r.ContractAddress()}, true
	case tagRewardAdded:
		if !rewards {
			return nil, false
		}
		return RewardAdded{
			TokenID:        r.TokenID(),
			RewardContract: r.ContractAddress(),
			RewardTokenID:  r.TokenID(),
			RewardAmount:   r.TokenAmount(),
			Rate:           r.Rate(),
		}, true
	case tagRewardClaimed:
		if !rewards {
			return nil, false
		}
		return RewardClaimed{
			TokenID:        r.TokenID(),
			Owner:          r.Address(),
			RewardContract: r.ContractAddress(),
			RewardTokenID:  r.TokenID(),
			RewardAmount:   r.TokenAmount(),
		}, true
	default:
		return nil, false
	}
}
