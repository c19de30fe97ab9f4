package mintfund

import (
	"time"

	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/shopspring/decimal"
)

// RecordType is the kind of an investment ledger entry.
type RecordType string

const (
	RecordInvested  RecordType = "invested"
	RecordCancelled RecordType = "cancelled"
	RecordClaimed   RecordType = "claimed"
	RecordDisbursed RecordType = "disbursed"
)

// Fund is a fund selling a security token for a currency token.
// The amounts are the sums over its investors.
type Fund struct {
	ID               int64                      `meddler:"id,pk" json:"-"`
	Contract         concordium.ContractAddress `meddler:"contract,contract" json:"contract"`
	TokenContract    concordium.ContractAddress `meddler:"token_contract,contract" json:"token_contract"`
	TokenID          concordium.TokenID         `meddler:"token_id,tokenid" json:"token_id"`
	CurrencyContract concordium.ContractAddress `meddler:"currency_contract,contract" json:"currency_contract"`
	CurrencyTokenID  concordium.TokenID         `meddler:"currency_token_id,tokenid" json:"currency_token_id"`
	RateNumerator    uint64                     `meddler:"rate_numerator" json:"rate_numerator"`
	RateDenominator  uint64                     `meddler:"rate_denominator" json:"rate_denominator"`
	State            FundState                  `meddler:"state" json:"state"`
	CurrencyAmount   decimal.Decimal            `meddler:"currency_amount,decimal" json:"currency_amount"`
	TokenAmount      decimal.Decimal            `meddler:"token_amount,decimal" json:"token_amount"`
	CreatedAt        time.Time                  `meddler:"created_at,unixmilli" json:"created_at"`
	UpdatedAt        time.Time                  `meddler:"updated_at,unixmilli" json:"updated_at"`
}

// Investor is the outstanding investment of one investor in a fund.
type Investor struct {
	ID             int64                      `meddler:"id,pk" json:"-"`
	Contract       concordium.ContractAddress `meddler:"contract,contract" json:"contract"`
	TokenContract  concordium.ContractAddress `meddler:"token_contract,contract" json:"token_contract"`
	TokenID        concordium.TokenID         `meddler:"token_id,tokenid" json:"token_id"`
	Investor       concordium.Address         `meddler:"investor,address" json:"investor"`
	CurrencyAmount decimal.Decimal            `meddler:"currency_amount,decimal" json:"currency_amount"`
	TokenAmount    decimal.Decimal            `meddler:"token_amount,decimal" json:"token_amount"`
	UpdatedAt      time.Time                  `meddler:"updated_at,unixmilli" json:"updated_at"`
}

// InvestmentRecord is an entry of the investment ledger.
type InvestmentRecord struct {
	ID             int64                      `meddler:"id,pk" json:"-"`
	RecordID       string                     `meddler:"record_id" json:"id"`
	Contract       concordium.ContractAddress `meddler:"contract,contract" json:"contract"`
	TokenContract  concordium.ContractAddress `meddler:"token_contract,contract" json:"token_contract"`
	TokenID        concordium.TokenID         `meddler:"token_id,tokenid" json:"token_id"`
	Investor       concordium.Address         `meddler:"investor,address" json:"investor"`
	RecordType     RecordType                 `meddler:"record_type" json:"record_type"`
	CurrencyAmount decimal.Decimal            `meddler:"currency_amount,decimal" json:"currency_amount"`
	TokenAmount    decimal.Decimal            `meddler:"token_amount,decimal" json:"token_amount"`
	BlockHeight    uint64                     `meddler:"block_height" json:"block_height"`
	TxHash         concordium.Hash            `meddler:"tx_hash,hash" json:"tx_hash"`
	CreatedAt      time.Time                  `meddler:"created_at,unixmilli" json:"created_at"`
}
