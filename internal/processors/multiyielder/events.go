package multiyielder

import (
	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/shopspring/decimal"
)

const (
	tagAgentAdded uint8 = iota
	tagAgentRemoved
	tagTreasuryUpdated
	tagYieldAdded
	tagYieldRemoved
	tagYieldDistributed
)

// Calculation is how a yield amount is derived from a holding.
type Calculation string

const (
	CalculationQuantity       Calculation = "quantity"
	CalculationSimpleInterest Calculation = "simple_interest"
)

var calculations = []Calculation{CalculationQuantity, CalculationSimpleInterest}

// Event is one decoded multi yielder event.
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

// YieldSpec is one token paid out as yield of a token version.
type YieldSpec struct {
	Contract    concordium.ContractAddress
	TokenID     concordium.TokenID
	Calculation Calculation
	Rate        concordium.Rate
}

type YieldAdded struct {
	TokenContract concordium.ContractAddress
	TokenID       concordium.TokenID
	Yields        []YieldSpec
}

type YieldRemoved struct {
	TokenContract concordium.ContractAddress
	TokenID       concordium.TokenID
}

// YieldDistributed moves a holder from one token version to the next, paying Amount.
type YieldDistributed struct {
	TokenContract concordium.ContractAddress
	FromTokenID   concordium.TokenID
	ToTokenID     concordium.TokenID
	Amount        decimal.Decimal
	To            concordium.Address
}

func (AgentUpdated) isEvent()     {}
func (TreasuryUpdated) isEvent()  {}
func (YieldAdded) isEvent()       {}
func (YieldRemoved) isEvent()     {}
func (YieldDistributed) isEvent() {}

func readYieldSpec(r *concordium.Reader) YieldSpec {
	spec := YieldSpec{Contract: r.ContractAddress(), TokenID: r.TokenID()}
	if c := r.U8(); int(c) < len(calculations) {
		spec.Calculation = calculations[c]
	} else {
		r.Fail("invalid yield calculation %d", c)
	}
	spec.Rate = r.Rate()
	return spec
}

func parseEvent(tag uint8, r *concordium.Reader) (Event, bool) {
	switch tag {
	case tagAgentAdded, tagAgentRemoved:
		return AgentUpdated{Agent: r.Address(), Added: tag == tagAgentAdded}, true
	case tagTreasuryUpdated:
		return TreasuryUpdated{Treasury: r.Address()}, true
	case tagYieldAdded:
		e := YieldAdded{TokenContract: r.ContractAddress(), TokenID: r.TokenID()}
		n := r.Len()
		for i := 0; i < n && r.Err() == nil; i++ {
			e.Yields = append(e.Yields, readYieldSpec(r))
		}
		return e, true
	case tagYieldRemoved:
		return YieldRemoved{TokenContract: r.ContractAddress(), TokenID: r.TokenID()}, true
	case tagYieldDistributed:
		return YieldDistributed{
			TokenContract: r.ContractAddress(),
			FromTokenID:   r.TokenID(),
			ToTokenID:     r.TokenID(),
			Amount:        r.TokenAmount(),
			To:            r.Address(),
		}, true
	default:
		return nil, false
	}
}
