package securitysft

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	baseprocessor "github.com/goran-ethernal/RWAListener/internal/processor"
	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/goran-ethernal/RWAListener/pkg/processor"
	"github.com/shopspring/decimal"
)

func (p *SecurityTokenProcessor) loadContractReward(tx *sql.Tx, contract, rewardContract concordium.ContractAddress,
	rewardTokenID concordium.TokenID) (*ContractReward, bool, error) {
	var reward ContractReward
	found, err := baseprocessor.LoadRow(tx, &reward,
		"SELECT * FROM "+contractRewardTable+" WHERE contract = ? AND reward_contract = ? AND reward_token_id = ?",
		contract.String(), rewardContract.String(), rewardTokenID.String())
	if err != nil {
		return nil, false, fmt.Errorf("failed to load reward %s/%s: %w", rewardContract, rewardTokenID, err)
	}
	return &reward, found, nil
}

// addReward registers the reward token and adds its amount to the contract's reward pool.
func (p *SecurityTokenProcessor) addReward(tx *sql.Tx, call processor.CallContext, e RewardAdded) error {
	var token RewardToken
	found, err := baseprocessor.LoadRow(tx, &token,
		"SELECT * FROM "+rewardTokensTable+" WHERE contract = ? AND token_id = ?",
		call.Contract.String(), e.TokenID.String())
	if err != nil {
		return fmt.Errorf("failed to load reward token %s: %w", e.TokenID, err)
	}
	if found {
		return fmt.Errorf("%w: reward token %q already added", processor.ErrInvalidState, e.TokenID)
	}

	if err := baseprocessor.InsertRow(tx, rewardTokensTable, &RewardToken{
		Contract:        call.Contract,
		TokenID:         e.TokenID,
		RewardContract:  e.RewardContract,
		RewardTokenID:   e.RewardTokenID,
		RewardAmount:    e.RewardAmount,
		RateNumerator:   e.Rate.Numerator,
		RateDenominator: e.Rate.Denominator,
		CreatedAt:       call.BlockTime,
	}); err != nil {
		return err
	}

	reward, found, err := p.loadContractReward(tx, call.Contract, e.RewardContract, e.RewardTokenID)
	if err != nil {
		return err
	}
	if !found {
		reward = &ContractReward{
			Contract:       call.Contract,
			RewardContract: e.RewardContract,
			RewardTokenID:  e.RewardTokenID,
			RewardAmount:   decimal.Zero,
			ClaimedAmount:  decimal.Zero,
		}
	}

	reward.RewardAmount = reward.RewardAmount.Add(e.RewardAmount)
	return baseprocessor.SaveRow(tx, contractRewardTable, reward)
}

// claimReward books a claim against the reward pool and appends it to the claim ledger.
func (p *SecurityTokenProcessor) claimReward(tx *sql.Tx, call processor.CallContext, e RewardClaimed) error {
	reward, found, err := p.loadContractReward(tx, call.Contract, e.RewardContract, e.RewardTokenID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: no reward of %s/%q", processor.ErrInvalidState, e.RewardContract, e.RewardTokenID)
	}

	if _, err := baseprocessor.Sub(reward.RewardAmount.Sub(reward.ClaimedAmount), e.RewardAmount,
		"unclaimed reward"); err != nil {
		return err
	}
	reward.ClaimedAmount = reward.ClaimedAmount.Add(e.RewardAmount)
	if err := baseprocessor.SaveRow(tx, contractRewardTable, reward); err != nil {
		return err
	}

	return baseprocessor.InsertRow(tx, rewardClaimsTable, &RewardClaim{
		ClaimID:        uuid.NewString(),
		Contract:       call.Contract,
		TokenID:        e.TokenID,
		Owner:          e.Owner,
		RewardContract: e.RewardContract,
		RewardTokenID:  e.RewardTokenID,
		RewardAmount:   e.RewardAmount,
		BlockHeight:    call.BlockHeight,
		TxHash:         call.TxHash,
		ClaimedAt:      call.BlockTime,
	})
}
