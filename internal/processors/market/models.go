package market

import (
	"time"

	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/shopspring/decimal"
)

// MarketToken is the custody position of an owner for one token.
// DepositedAmount always equals ListedAmount + UnlistedAmount.
type MarketToken struct {
	ID              int64                      `meddler:"id,pk" json:"-"`
	Contract        concordium.ContractAddress `meddler:"contract,contract" json:"contract"`
	TokenContract   concordium.ContractAddress `meddler:"token_contract,contract" json:"token_contract"`
	TokenID         concordium.TokenID         `meddler:"token_id,tokenid" json:"token_id"`
	Owner           concordium.Address         `meddler:"owner,address" json:"owner"`
	DepositedAmount decimal.Decimal            `meddler:"deposited_amount,decimal" json:"deposited_amount"`
	ListedAmount    decimal.Decimal            `meddler:"listed_amount,decimal" json:"listed_amount"`
	UnlistedAmount  decimal.Decimal            `meddler:"unlisted_amount,decimal" json:"unlisted_amount"`
	UpdatedAt       time.Time                  `meddler:"updated_at,unixmilli" json:"updated_at"`
}

// Exchange is an entry of the exchange history. PayTokenContract is nil for CCD payments.
type Exchange struct {
	ID               int64                       `meddler:"id,pk" json:"-"`
	Contract         concordium.ContractAddress  `meddler:"contract,contract" json:"contract"`
	BuyTokenContract concordium.ContractAddress  `meddler:"buy_token_contract,contract" json:"buy_token_contract"`
	BuyTokenID       concordium.TokenID          `meddler:"buy_token_id,tokenid" json:"buy_token_id"`
	BuyAmount        decimal.Decimal             `meddler:"buy_amount,decimal" json:"buy_amount"`
	Seller           concordium.Address          `meddler:"seller,address" json:"seller"`
	Buyer            concordium.Address          `meddler:"buyer,address" json:"buyer"`
	PayTokenContract *concordium.ContractAddress `meddler:"pay_token_contract,contract" json:"pay_token_contract,omitempty"`
	PayTokenID       *concordium.TokenID         `meddler:"pay_token_id,tokenid" json:"pay_token_id,omitempty"`
	PayAmount        decimal.Decimal             `meddler:"pay_amount,decimal" json:"pay_amount"`
	Payer            concordium.Address          `meddler:"payer,address" json:"payer"`
	BlockHeight      uint64                      `meddler:"block_height" json:"block_height"`
	TxHash           concordium.Hash             `meddler:"tx_hash,hash" json:"tx_hash"`
	ExchangedAt      time.Time                   `meddler:"exchanged_at,unixmilli" json:"exchanged_at"`
}
