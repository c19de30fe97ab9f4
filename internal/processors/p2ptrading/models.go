package p2ptrading

import (
	"time"

	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/shopspring/decimal"
)

type RecordType string

const (
	RecordSell          RecordType = "sell"
	RecordSellCancelled RecordType = "sell_cancelled"
	RecordExchange      RecordType = "exchange"
)

// TradeContract is a P2P trading contract. TokenAmount is the sum of all trader positions.
type TradeContract struct {
	ID               int64                      `meddler:"id,pk" json:"-"`
	Contract         concordium.ContractAddress `meddler:"contract,contract" json:"contract"`
	TokenContract    concordium.ContractAddress `meddler:"token_contract,contract" json:"token_contract"`
	TokenID          concordium.TokenID         `meddler:"token_id,tokenid" json:"token_id"`
	CurrencyContract concordium.ContractAddress `meddler:"currency_contract,contract" json:"currency_contract"`
	CurrencyTokenID  concordium.TokenID         `meddler:"currency_token_id,tokenid" json:"currency_token_id"`
	TokenAmount      decimal.Decimal            `meddler:"token_amount,decimal" json:"token_amount"`
	CreatedAt        time.Time                  `meddler:"created_at,unixmilli" json:"created_at"`
	UpdatedAt        time.Time                  `meddler:"updated_at,unixmilli" json:"updated_at"`
}

// Trader is the sell position of a trader. CurrencyAmount is what the trader received from exchanges.
type Trader struct {
	ID              int64                      `meddler:"id,pk" json:"-"`
	Contract        concordium.ContractAddress `meddler:"contract,contract" json:"contract"`
	Trader          concordium.Address         `meddler:"trader,address" json:"trader"`
	RateNumerator   uint64                     `meddler:"rate_numerator" json:"rate_numerator"`
	RateDenominator uint64                     `meddler:"rate_denominator" json:"rate_denominator"`
	TokenAmount     decimal.Decimal            `meddler:"token_amount,decimal" json:"token_amount"`
	CurrencyAmount  decimal.Decimal            `meddler:"currency_amount,decimal" json:"currency_amount"`
	UpdatedAt       time.Time                  `meddler:"updated_at,unixmilli" json:"updated_at"`
}

// TradingRecord is an entry of the trading ledger with the trader's balances after the event.
type TradingRecord struct {
	ID              int64                      `meddler:"id,pk" json:"-"`
	RecordID        string                     `meddler:"record_id" json:"id"`
	Contract        concordium.ContractAddress `meddler:"contract,contract" json:"contract"`
	Trader          concordium.Address         `meddler:"trader,address" json:"trader"`
	Counterparty    *concordium.Address        `meddler:"counterparty,address" json:"counterparty,omitempty"`
	RecordType      RecordType                 `meddler:"record_type" json:"record_type"`
	RateNumerator   uint64                     `meddler:"rate_numerator" json:"rate_numerator"`
	RateDenominator uint64                     `meddler:"rate_denominator" json:"rate_denominator"`
	TokenAmount     decimal.Decimal            `meddler:"token_amount,decimal" json:"token_amount"`
	CurrencyAmount  decimal.Decimal            `meddler:"currency_amount,decimal" json:"currency_amount"`
	TokenBalance    decimal.Decimal            `meddler:"token_balance,decimal" json:"token_balance"`
	CurrencyBalance decimal.Decimal            `meddler:"currency_balance,decimal" json:"currency_balance"`
	BlockHeight     uint64                     `meddler:"block_height" json:"block_height"`
	TxHash          concordium.Hash            `meddler:"tx_hash,hash" json:"tx_hash"`
	CreatedAt       time.Time                  `meddler:"created_at,unixmilli" json:"created_at"`
}
