package multiyielder

import (
	"time"

	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/shopspring/decimal"
)

// Yield is one yield configured for a token version.
type Yield struct {
	ID              int64                      `meddler:"id,pk" json:"-"`
	Contract        concordium.ContractAddress `meddler:"contract,contract" json:"contract"`
	TokenContract   concordium.ContractAddress `meddler:"token_contract,contract" json:"token_contract"`
	TokenID         concordium.TokenID         `meddler:"token_id,tokenid" json:"token_id"`
	YieldContract   concordium.ContractAddress `meddler:"yield_contract,contract" json:"yield_contract"`
	YieldTokenID    concordium.TokenID         `meddler:"yield_token_id,tokenid" json:"yield_token_id"`
	Calculation     Calculation                `meddler:"calculation" json:"calculation"`
	RateNumerator   uint64                     `meddler:"rate_numerator" json:"rate_numerator"`
	RateDenominator uint64                     `meddler:"rate_denominator" json:"rate_denominator"`
	CreatedAt       time.Time                  `meddler:"created_at,unixmilli" json:"created_at"`
}

// Distribution is an entry of the yield distribution ledger.
type Distribution struct {
	ID             int64                      `meddler:"id,pk" json:"-"`
	DistributionID string                     `meddler:"distribution_id" json:"id"`
	Contract       concordium.ContractAddress `meddler:"contract,contract" json:"contract"`
	TokenContract  concordium.ContractAddress `meddler:"token_contract,contract" json:"token_contract"`
	FromTokenID    concordium.TokenID         `meddler:"from_token_id,tokenid" json:"from_token_id"`
	ToTokenID      concordium.TokenID         `meddler:"to_token_id,tokenid" json:"to_token_id"`
	Amount         decimal.Decimal            `meddler:"amount,decimal" json:"amount"`
	Holder         concordium.Address         `meddler:"holder,address" json:"holder"`
	BlockHeight    uint64                     `meddler:"block_height" json:"block_height"`
	TxHash         concordium.Hash            `meddler:"tx_hash,hash" json:"tx_hash"`
	DistributedAt  time.Time                  `meddler:"distributed_at,unixmilli" json:"distributed_at"`
}

// HolderYield is the token version a holder was last yielded to and the amount yielded so far.
type HolderYield struct {
	ID            int64                      `meddler:"id,pk" json:"-"`
	Contract      concordium.ContractAddress `meddler:"contract,contract" json:"contract"`
	TokenContract concordium.ContractAddress `meddler:"token_contract,contract" json:"token_contract"`
	Holder        concordium.Address         `meddler:"holder,address" json:"holder"`
	TokenID       concordium.TokenID         `meddler:"token_id,tokenid" json:"token_id"`
	TotalAmount   decimal.Decimal            `meddler:"total_amount,decimal" json:"total_amount"`
	Distributions int                        `meddler:"distributions" json:"distributions"`
	UpdatedAt     time.Time                  `meddler:"updated_at,unixmilli" json:"updated_at"`
}
