package securitysft

import (
	"time"

	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/shopspring/decimal"
)

// Token is a token of a security token contract.
type Token struct {
	ID           int64                      `meddler:"id,pk" json:"-"`
	Contract     concordium.ContractAddress `meddler:"contract,contract" json:"contract"`
	TokenID      concordium.TokenID         `meddler:"token_id,tokenid" json:"token_id"`
	IsPaused     bool                       `meddler:"is_paused" json:"is_paused"`
	MetadataURL  string                     `meddler:"metadata_url" json:"metadata_url"`
	MetadataHash *concordium.Hash           `meddler:"metadata_hash,hash" json:"metadata_hash,omitempty"`
	Supply       decimal.Decimal            `meddler:"supply,decimal" json:"supply"`
	CreatedAt    time.Time                  `meddler:"created_at,unixmilli" json:"created_at"`
	UpdatedAt    time.Time                  `meddler:"updated_at,unixmilli" json:"updated_at"`
}

// TokenHolder is the balance of one holder of a token. FrozenBalance is part of Balance.
type TokenHolder struct {
	ID            int64                      `meddler:"id,pk" json:"-"`
	Contract      concordium.ContractAddress `meddler:"contract,contract" json:"contract"`
	TokenID       concordium.TokenID         `meddler:"token_id,tokenid" json:"token_id"`
	Holder        concordium.Address         `meddler:"holder,address" json:"holder"`
	Balance       decimal.Decimal            `meddler:"balance,decimal" json:"balance"`
	FrozenBalance decimal.Decimal            `meddler:"frozen_balance,decimal" json:"frozen_balance"`
	UpdatedAt     time.Time                  `meddler:"updated_at,unixmilli" json:"updated_at"`
}

// Operator allows Operator to transfer the tokens of Owner.
type Operator struct {
	ID       int64                      `meddler:"id,pk" json:"-"`
	Contract concordium.ContractAddress `meddler:"contract,contract" json:"contract"`
	Owner    concordium.Address         `meddler:"owner,address" json:"owner"`
	Operator concordium.Address         `meddler:"operator,address" json:"operator"`
}

// ContractInfo holds the compliance wiring of a token contract.
type ContractInfo struct {
	ID               int64                       `meddler:"id,pk" json:"-"`
	Contract         concordium.ContractAddress  `meddler:"contract,contract" json:"contract"`
	IdentityRegistry *concordium.ContractAddress `meddler:"identity_registry,contract" json:"identity_registry,omitempty"`
	Compliance       *concordium.ContractAddress `meddler:"compliance,contract" json:"compliance,omitempty"`
}

// Recovery records an account recovery and the number of holder rows it moved.
type Recovery struct {
	ID           int64                      `meddler:"id,pk" json:"-"`
	Contract     concordium.ContractAddress `meddler:"contract,contract" json:"contract"`
	LostAddress  concordium.Address         `meddler:"lost_address,address" json:"lost_address"`
	NewAddress   concordium.Address         `meddler:"new_address,address" json:"new_address"`
	HoldersMoved int                        `meddler:"holders_moved" json:"holders_moved"`
	BlockHeight  uint64                     `meddler:"block_height" json:"block_height"`
	TxHash       concordium.Hash            `meddler:"tx_hash,hash" json:"tx_hash"`
	RecoveredAt  time.Time                  `meddler:"recovered_at,unixmilli" json:"recovered_at"`
}

// RewardToken describes what a reward token of the contract pays out.
type RewardToken struct {
	ID              int64                      `meddler:"id,pk" json:"-"`
	Contract        concordium.ContractAddress `meddler:"contract,contract" json:"contract"`
	TokenID         concordium.TokenID         `meddler:"token_id,tokenid" json:"token_id"`
	RewardContract  concordium.ContractAddress `meddler:"reward_contract,contract" json:"reward_contract"`
	RewardTokenID   concordium.TokenID         `meddler:"reward_token_id,tokenid" json:"reward_token_id"`
	RewardAmount    decimal.Decimal            `meddler:"reward_amount,decimal" json:"reward_amount"`
	RateNumerator   uint64                     `meddler:"rate_numerator" json:"rate_numerator"`
	RateDenominator uint64                     `meddler:"rate_denominator" json:"rate_denominator"`
	CreatedAt       time.Time                  `meddler:"created_at,unixmilli" json:"created_at"`
}

// ContractReward aggregates the rewards a contract holds of one rewarded token.
type ContractReward struct {
	ID             int64                      `meddler:"id,pk" json:"-"`
	Contract       concordium.ContractAddress `meddler:"contract,contract" json:"contract"`
	RewardContract concordium.ContractAddress `meddler:"reward_contract,contract" json:"reward_contract"`
	RewardTokenID  concordium.TokenID         `meddler:"reward_token_id,tokenid" json:"reward_token_id"`
	RewardAmount   decimal.Decimal            `meddler:"reward_amount,decimal" json:"reward_amount"`
	ClaimedAmount  decimal.Decimal            `meddler:"claimed_amount,decimal" json:"claimed_amount"`
}

// RewardClaim is an entry of the reward claim ledger.
type RewardClaim struct {
	ID             int64                      `meddler:"id,pk" json:"-"`
	ClaimID        string                     `meddler:"claim_id" json:"id"`
	Contract       concordium.ContractAddress `meddler:"contract,contract" json:"contract"`
	TokenID        concordium.TokenID         `meddler:"token_id,tokenid" json:"token_id"`
	Owner          concordium.Address         `meddler:"owner,address" json:"owner"`
	RewardContract concordium.ContractAddress `meddler:"reward_contract,contract" json:"reward_contract"`
	RewardTokenID  concordium.TokenID         `meddler:"reward_token_id,tokenid" json:"reward_token_id"`
	RewardAmount   decimal.Decimal            `meddler:"reward_amount,decimal" json:"reward_amount"`
	BlockHeight    uint64                     `meddler:"block_height" json:"block_height"`
	TxHash         concordium.Hash            `meddler:"tx_hash,hash" json:"tx_hash"`
	ClaimedAt      time.Time                  `meddler:"claimed_at,unixmilli" json:"claimed_at"`
}
