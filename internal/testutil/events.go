package testutil

import (
	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/shopspring/decimal"
)

// The encoders below produce contract events in the binary form emitted on chain.

func amount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func event(tag uint8) *concordium.Writer {
	return concordium.NewWriter().U8(tag)
}

// AgentAdded encodes an agent event of the market, fund, yielder and offchain reward contracts.
func AgentAdded(agent concordium.Address) []byte {
	return event(0).Address(agent).Bytes()
}

func AgentRemoved(agent concordium.Address) []byte {
	return event(1).Address(agent).Bytes()
}

// TreasuryUpdated encodes the treasury event of the yielder and offchain reward contracts.
func TreasuryUpdated(treasury concordium.Address) []byte {
	return event(2).Address(treasury).Bytes() //nolint:mnd
}

// CIS2 security tokens.

func CIS2Transfer(token concordium.TokenID, value int64, from, to concordium.Address) []byte {
	return event(255).TokenID(token).TokenAmount(amount(value)).Address(from).Address(to).Bytes()
}

func CIS2Mint(token concordium.TokenID, value int64, owner concordium.Address) []byte {
	return event(254).TokenID(token).TokenAmount(amount(value)).Address(owner).Bytes()
}

func CIS2Burn(token concordium.TokenID, value int64, owner concordium.Address) []byte {
	return event(253).TokenID(token).TokenAmount(amount(value)).Address(owner).Bytes()
}

func CIS2UpdateOperator(add bool, owner, operator concordium.Address) []byte {
	update := uint8(0)
	if add {
		update = 1
	}
	return event(252).U8(update).Address(owner).Address(operator).Bytes()
}

func CIS2TokenMetadata(token concordium.TokenID, url string, hash *concordium.Hash) []byte {
	return event(251).TokenID(token).Text(url).OptionalHash(hash).Bytes()
}

func CIS2AgentAdded(agent concordium.Address) []byte {
	return event(250).Address(agent).Bytes()
}

func CIS2AgentRemoved(agent concordium.Address) []byte {
	return event(249).Address(agent).Bytes()
}

func CIS2Frozen(token concordium.TokenID, value int64, address concordium.Address) []byte {
	return event(248).TokenID(token).TokenAmount(amount(value)).Address(address).Bytes()
}

func CIS2UnFrozen(token concordium.TokenID, value int64, address concordium.Address) []byte {
	return event(247).TokenID(token).TokenAmount(amount(value)).Address(address).Bytes()
}

func CIS2Paused(token concordium.TokenID) []byte {
	return event(246).TokenID(token).Bytes()
}

func CIS2UnPaused(token concordium.TokenID) []byte {
	return event(245).TokenID(token).Bytes()
}

func CIS2Recovered(lost, recovered concordium.Address) []byte {
	return event(244).Address(lost).Address(recovered).Bytes()
}

func CIS2IdentityRegistryAdded(registry concordium.ContractAddress) []byte {
	return event(243).ContractAddress(registry).Bytes()
}

func CIS2ComplianceAdded(compliance concordium.ContractAddress) []byte {
	return event(242).ContractAddress(compliance).Bytes()
}

func CIS2RewardAdded(token concordium.TokenID, rewardContract concordium.ContractAddress,
	rewardToken concordium.TokenID, rewardAmount int64, rate concordium.Rate) []byte {
	return event(241).TokenID(token).ContractAddress(rewardContract).TokenID(rewardToken).
		TokenAmount(amount(rewardAmount)).Rate(rate).Bytes()
}

func CIS2RewardClaimed(token concordium.TokenID, owner concordium.Address,
	rewardContract concordium.ContractAddress, rewardToken concordium.TokenID, rewardAmount int64) []byte {
	return event(240).TokenID(token).Address(owner).ContractAddress(rewardContract).TokenID(rewardToken).
		TokenAmount(amount(rewardAmount)).Bytes()
}

// Identity registry.

func IdentityRegistered(address concordium.Address) []byte {
	return event(0).Address(address).Bytes()
}

func IdentityRemoved(address concordium.Address) []byte {
	return event(1).Address(address).Bytes()
}

func IssuerAdded(issuer concordium.ContractAddress) []byte {
	return event(2).ContractAddress(issuer).Bytes()
}

func IssuerRemoved(issuer concordium.ContractAddress) []byte {
	return event(3).ContractAddress(issuer).Bytes()
}

func RegistryAgentAdded(agent concordium.Address) []byte {
	return event(4).Address(agent).Bytes()
}

func RegistryAgentRemoved(agent concordium.Address) []byte {
	return event(5).Address(agent).Bytes()
}

// Market.

func MarketDeposited(tokenContract concordium.ContractAddress, token concordium.TokenID,
	owner concordium.Address, value int64) []byte {
	return event(2).ContractAddress(tokenContract).TokenID(token).Address(owner).TokenAmount(amount(value)).Bytes()
}

func MarketWithdraw(tokenContract concordium.ContractAddress, token concordium.TokenID,
	owner concordium.Address, value int64) []byte {
	return event(3).ContractAddress(tokenContract).TokenID(token).Address(owner).TokenAmount(amount(value)).Bytes()
}

func MarketListed(tokenContract concordium.ContractAddress, token concordium.TokenID,
	owner concordium.Address, supply int64) []byte {
	return event(4).ContractAddress(tokenContract).TokenID(token).Address(owner).TokenAmount(amount(supply)).Bytes()
}

func MarketDeListed(tokenContract concordium.ContractAddress, token concordium.TokenID,
	owner concordium.Address) []byte {
	return event(5).ContractAddress(tokenContract).TokenID(token).Address(owner).Bytes()
}

// PayToken is the payment of a market exchange; a nil Contract means CCD.
type PayToken struct {
	Contract *concordium.ContractAddress
	TokenID  concordium.TokenID
}

// MarketExchange holds the fields of an Exchanged event.
type MarketExchange struct {
	BuyTokenContract concordium.ContractAddress
	BuyTokenID       concordium.TokenID
	BuyAmount        int64
	Seller           concordium.Address
	Buyer            concordium.Address
	PayToken         PayToken
	PayAmount        int64
	Payer            concordium.Address
}

func MarketExchanged(e MarketExchange) []byte {
	w := event(6).ContractAddress(e.BuyTokenContract).TokenID(e.BuyTokenID).TokenAmount(amount(e.BuyAmount)).
		Address(e.Seller).Address(e.Buyer)
	if e.PayToken.Contract == nil {
		w.U8(0)
	} else {
		w.U8(1).ContractAddress(*e.PayToken.Contract).TokenID(e.PayToken.TokenID)
	}
	return w.TokenAmount(amount(e.PayAmount)).Address(e.Payer).Bytes()
}

// Mint fund.

func FundAdded(tokenContract concordium.ContractAddress, token concordium.TokenID,
	currencyContract concordium.ContractAddress, currencyToken concordium.TokenID, rate concordium.Rate) []byte {
	return event(2).ContractAddress(tokenContract).TokenID(token).
		ContractAddress(currencyContract).TokenID(currencyToken).Rate(rate).Bytes()
}

func FundRemoved(tokenContract concordium.ContractAddress, token concordium.TokenID) []byte {
	return event(3).ContractAddress(tokenContract).TokenID(token).Bytes()
}

func FundStateUpdated(tokenContract concordium.ContractAddress, token concordium.TokenID, state uint8) []byte {
	return event(4).ContractAddress(tokenContract).TokenID(token).U8(state).Bytes()
}

func FundInvested(tokenContract concordium.ContractAddress, token concordium.TokenID,
	investor concordium.Address, currencyAmount, tokenAmount int64) []byte {
	return event(5).ContractAddress(tokenContract).TokenID(token).Address(investor).
		TokenAmount(amount(currencyAmount)).TokenAmount(amount(tokenAmount)).Bytes()
}

func FundInvestmentCancelled(tokenContract concordium.ContractAddress, token concordium.TokenID,
	investor concordium.Address, currencyAmount, tokenAmount int64) []byte {
	return event(6).ContractAddress(tokenContract).TokenID(token).Address(investor).
		TokenAmount(amount(currencyAmount)).TokenAmount(amount(tokenAmount)).Bytes()
}

func FundInvestmentClaimed(tokenContract concordium.ContractAddress, token concordium.TokenID,
	investor concordium.Address, tokenAmount int64) []byte {
	return event(7).ContractAddress(tokenContract).TokenID(token).Address(investor).
		TokenAmount(amount(tokenAmount)).Bytes()
}

func FundInvestmentDisbursed(tokenContract concordium.ContractAddress, token concordium.TokenID,
	investor concordium.Address, currencyAmount int64) []byte {
	return event(8).ContractAddress(tokenContract).TokenID(token).Address(investor).
		TokenAmount(amount(currencyAmount)).Bytes()
}

// P2P trading.

func P2PInitialized(tokenContract concordium.ContractAddress, token concordium.TokenID,
	currencyContract concordium.ContractAddress, currencyToken concordium.TokenID) []byte {
	return event(0).ContractAddress(tokenContract).TokenID(token).
		ContractAddress(currencyContract).TokenID(currencyToken).Bytes()
}

func P2PSell(trader concordium.Address, rate concordium.Rate, value int64) []byte {
	return event(1).Address(trader).Rate(rate).TokenAmount(amount(value)).Bytes()
}

func P2PSellCancelled(trader concordium.Address, value int64) []byte {
	return event(2).Address(trader).TokenAmount(amount(value)).Bytes()
}

func P2PExchange(seller, buyer concordium.Address, sellAmount, payAmount int64, rate concordium.Rate) []byte {
	return event(3).Address(seller).Address(buyer).
		TokenAmount(amount(sellAmount)).TokenAmount(amount(payAmount)).Rate(rate).Bytes()
}

// Multi yielder.

// YieldSpec is one yield of a YieldAdded event.
type YieldSpec struct {
	Contract    concordium.ContractAddress
	TokenID     concordium.TokenID
	Calculation uint8
	Rate        concordium.Rate
}

func YieldAdded(tokenContract concordium.ContractAddress, token concordium.TokenID, yields ...YieldSpec) []byte {
	w := event(3).ContractAddress(tokenContract).TokenID(token).U16(uint16(len(yields)))
	for _, y := range yields {
		w.ContractAddress(y.Contract).TokenID(y.TokenID).U8(y.Calculation).Rate(y.Rate)
	}
	return w.Bytes()
}

func YieldRemoved(tokenContract concordium.ContractAddress, token concordium.TokenID) []byte {
	return event(4).ContractAddress(tokenContract).TokenID(token).Bytes()
}

func YieldDistributed(tokenContract concordium.ContractAddress, fromToken, toToken concordium.TokenID,
	value int64, to concordium.Address) []byte {
	return event(5).ContractAddress(tokenContract).TokenID(fromToken).TokenID(toToken).
		TokenAmount(amount(value)).Address(to).Bytes()
}

// Offchain rewards.

func OffchainClaimed(account concordium.AccountAddress, nonce uint64, rewardID []byte,
	rewardContract concordium.ContractAddress, rewardToken concordium.TokenID, rewardAmount int64) []byte {
	return event(3).AccountAddress(account).U64(nonce).Bytes16(rewardID).
		ContractAddress(rewardContract).TokenID(rewardToken).TokenAmount(amount(rewardAmount)).Bytes()
}
