package market

import (
	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/shopspring/decimal"
)

const (
	tagAgentAdded uint8 = iota
	tagAgentRemoved
	tagDeposited
	tagWithdraw
	tagListed
	tagDeListed
	tagExchanged
)

const (
	payTokenCCD  uint8 = 0
	payTokenCIS2 uint8 = 1
)

// Event is one decoded market contract event.
type Event interface {
	isEvent()
}

type AgentUpdated struct {
	Agent concordium.Address
	Added bool
}

// TokenRef names a token held by the market on behalf of Owner.
type TokenRef struct {
	Contract concordium.ContractAddress
	TokenID  concordium.TokenID
	Owner    concordium.Address
}

type Deposited struct {
	TokenRef
	Amount decimal.Decimal
}

type Withdraw struct {
	TokenRef
	Amount decimal.Decimal
}

type Listed struct {
	TokenRef
	Supply decimal.Decimal
}

type DeListed struct {
	TokenRef
}

// PayToken is the currency of an exchange. A nil Contract is CCD.
type PayToken struct {
	Contract *concordium.ContractAddress
	TokenID  concordium.TokenID
}

// IsCCD reports whether the exchange was paid in CCD.
func (t PayToken) IsCCD() bool {
	return t.Contract == nil
}

type Exchanged struct {
	BuyTokenContract concordium.ContractAddress
	BuyTokenID       concordium.TokenID
	BuyAmount        decimal.Decimal
	Seller           concordium.Address
	Buyer            concordium.Address
	PayToken         PayToken
	PayAmount        decimal.Decimal
	Payer            concordium.Address
}

func (AgentUpdated) isEvent() {}
func (Deposited) isEvent()    {}
func (Withdraw) isEvent()     {}
func (Listed) isEvent()       {}
func (DeListed) isEvent()     {}
func (Exchanged) isEvent()    {}

func readTokenRef(r *concordium.Reader) TokenRef {
	return TokenRef{Contract: r.ContractAddress(), TokenID: r.TokenID(), Owner: r.Address()}
}

func readPayToken(r *concordium.Reader) PayToken {
	switch tag := r.U8(); tag {
	case payTokenCCD:
		return PayToken{}
	case payTokenCIS2:
		contract := r.ContractAddress()
		return PayToken{Contract: &contract, TokenID: r.TokenID()}
	default:
		r.Fail("invalid pay token tag %d", tag)
		return PayToken{}
	}
}

func parseEvent(tag uint8, r *concordium.Reader) (Event, bool) {
	switch tag {
	case tagAgentAdded, tagAgentRemoved:
		return AgentUpdated{Agent: r.Address(), Added: tag == tagAgentAdded}, true
	case tagDeposited:
		return Deposited{TokenRef: readTokenRef(r), Amount: r.TokenAmount()}, true
	case tagWithdraw:
		return Withdraw{TokenRef: readTokenRef(r), Amount: r.TokenAmount()}, true
	case tagListed:
		return Listed{TokenRef: readTokenRef(r), Supply: r.TokenAmount()}, true
	case tagDeListed:
		return DeListed{TokenRef: readTokenRef(r)}, true
	case tagExchanged:
		return Exchanged{
			BuyTokenContract: r.ContractAddress(),
			BuyTokenID:       r.TokenID(),
			BuyAmount:        r.TokenAmount(),
			Seller:           r.Address(),
			Buyer:            r.Address(),
			PayToken:         readPayToken(r),
			PayAmount:        r.TokenAmount(),
			Payer:            r.Address(),
		}, true
	default:
		return nil, false
	}
}
