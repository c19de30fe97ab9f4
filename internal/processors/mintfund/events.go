package mintfund

import (
	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/shopspring/decimal"
)

const (
	tagAgentAdded uint8 = iota
	tagAgentRemoved
	tagFundAdded
	tagFundRemoved
	tagFundStateUpdated
	tagInvested
	tagInvestmentCancelled
	tagInvestmentClaimed
	tagInvestmentDisbursed
)

// FundState is the lifecycle state of a fund: Open, then Success or Fail.
type FundState string

const (
	FundOpen    FundState = "open"
	FundSuccess FundState = "success"
	FundFail    FundState = "fail"
)

var fundStates = []FundState{FundOpen, FundSuccess, FundFail}

// Event is one decoded mint fund event.
type Event interface {
	isEvent()
}

type AgentUpdated struct {
	Agent concordium.Address
	Added bool
}

// FundKey names the security token a fund sells.
type FundKey struct {
	TokenContract concordium.ContractAddress
	TokenID       concordium.TokenID
}

type FundAdded struct {
	FundKey
	CurrencyContract concordium.ContractAddress
	CurrencyTokenID  concordium.TokenID
	Rate             concordium.Rate
}

type FundRemoved struct {
	FundKey
}

type FundStateUpdated struct {
	FundKey
	State FundState
}

// Investment carries the amounts of the investment events; legs an event does not move are zero.
type Investment struct {
	FundKey
	Investor       concordium.Address
	Kind           RecordType
	CurrencyAmount decimal.Decimal
	TokenAmount    decimal.Decimal
}

func (AgentUpdated) isEvent()     {}
func (FundAdded) isEvent()        {}
func (FundRemoved) isEvent()      {}
func (FundStateUpdated) isEvent() {}
func (Investment) isEvent()       {}

func readFundKey(r *concordium.Reader) FundKey {
	return FundKey{TokenContract: r.ContractAddress(), TokenID: r.TokenID()}
}

func readFundState(r *concordium.Reader) FundState {
	state := r.U8()
	if int(state) >= len(fundStates) {
		r.Fail("invalid fund state %d", state)
		return ""
	}
	return fundStates[state]
}

func parseEvent(tag uint8, r *concordium.Reader) (Event, bool) {
	switch tag {
	case tagAgentAdded, tagAgentRemoved:
		return AgentUpdated{Agent: r.Address(), Added: tag == tagAgentAdded}, true
	case tagFundAdded:
		return FundAdded{
			FundKey:          readFundKey(r),
			CurrencyContract: r.ContractAddress(),
			CurrencyTokenID:  r.TokenID(),
			Rate:             r.Rate(),
		}, true
	case tagFundRemoved:
		return FundRemoved{FundKey: readFundKey(r)}, true
	case tagFundStateUpdated:
		return FundStateUpdated{FundKey: readFundKey(r), State: readFundState(r)}, true
	case tagInvested, tagInvestmentCancelled:
		kind := RecordInvested
		if tag == tagInvestmentCancelled {
			kind = RecordCancelled
		}
		return Investment{
			FundKey:        readFundKey(r),
			Investor:       r.Address(),
			Kind:           kind,
			CurrencyAmount: r.TokenAmount(),
			TokenAmount:    r.TokenAmount(),
		}, true
	case tagInvestmentClaimed:
		return Investment{
			FundKey:        readFundKey(r),
			Investor:       r.Address(),
			Kind:           RecordClaimed,
			CurrencyAmount: decimal.Zero,
			TokenAmount:    r.TokenAmount(),
		}, true
	case tagInvestmentDisbursed:
		return Investment{
			FundKey:        readFundKey(r),
			Investor:       r.Address(),
			Kind:           RecordDisbursed,
			CurrencyAmount: r.TokenAmount(),
			TokenAmount:    decimal.Zero,
		}, true
	default:
		return nil, false
	}
}
