package p2ptrading

import (
	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/shopspring/decimal"
)

const (
	tagInitialized uint8 = iota
	tagSell
	tagSellCancelled
	tagExchange
)

// Event is one decoded P2P trading event.
type Event interface {
	isEvent()
}

type Initialized struct {
	TokenContract    concordium.ContractAddress
	TokenID          concordium.TokenID
	CurrencyContract concordium.ContractAddress
	CurrencyTokenID  concordium.TokenID
}

type Sell struct {
	Trader concordium.Address
	Rate   concordium.Rate
	Amount decimal.Decimal
}

type SellCancelled struct {
	Trader concordium.Address
	Amount decimal.Decimal
}

type Exchange struct {
	Seller     concordium.Address
	Buyer      concordium.Address
	SellAmount decimal.Decimal
	PayAmount  decimal.Decimal
	Rate       concordium.Rate
}

func (Initialized) isEvent()   {}
func (Sell) isEvent()          {}
func (SellCancelled) isEvent() {}
func (Exchange) isEvent()      {}

func parseEvent(tag uint8, r *concordium.Reader) (Event, bool) {
	switch tag {
	case tagInitialized:
		return Initialized{
			TokenContract:    r.ContractAddress(),
			TokenID:          r.TokenID(),
			CurrencyContract: r.ContractAddress(),
			CurrencyTokenID:  r.TokenID(),
		}, true
	case tagSell:
		return Sell{Trader: r.Address(), Rate: r.Rate(), Amount: r.TokenAmount()}, true
	case tagSellCancelled:
		return SellCancelled{Trader: r.Address(), Amount: r.TokenAmount()}, true
	case tagExchange:
		return Exchange{
			Seller:     r.Address(),
			Buyer:      r.Address(),
			SellAmount: r.TokenAmount(),
			PayAmount:  r.TokenAmount(),
			Rate:       r.Rate(),
		}, true
	default:
		return nil, false
	}
}
