package offchainrewards

import (
	"time"

	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/shopspring/decimal"
)

// Rewardee holds the nonce the next claim of an account must carry.
type Rewardee struct {
	ID        int64                      `meddler:"id,pk" json:"-"`
	Contract  concordium.ContractAddress `meddler:"contract,contract" json:"contract"`
	Account   concordium.AccountAddress  `meddler:"account,account" json:"account"`
	Nonce     uint64                     `meddler:"nonce" json:"nonce"`
	UpdatedAt time.Time                  `meddler:"updated_at,unixmilli" json:"updated_at"`
}

// RewardClaim is an entry of the claim ledger. RewardID is hex encoded.
type RewardClaim struct {
	ID             int64                      `meddler:"id,pk" json:"-"`
	ClaimID        string                     `meddler:"claim_id" json:"id"`
	Contract       concordium.ContractAddress `meddler:"contract,contract" json:"contract"`
	Account        concordium.AccountAddress  `meddler:"account,account" json:"account"`
	Nonce          uint64                     `meddler:"nonce" json:"nonce"`
	RewardID       string                     `meddler:"reward_id" json:"reward_id"`
	RewardContract concordium.ContractAddress `meddler:"reward_contract,contract" json:"reward_contract"`
	RewardTokenID  concordium.TokenID         `meddler:"reward_token_id,tokenid" json:"reward_token_id"`
	RewardAmount   decimal.Decimal            `meddler:"reward_amount,decimal" json:"reward_amount"`
	BlockHeight    uint64                     `meddler:"block_height" json:"block_height"`
	TxHash         concordium.Hash            `meddler:"tx_hash,hash" json:"tx_hash"`
	ClaimedAt      time.Time                  `meddler:"claimed_at,unixmilli" json:"claimed_at"`
}
