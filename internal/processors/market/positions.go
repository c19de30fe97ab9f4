package market

import (
	"database/sql"
	"fmt"

	baseprocessor "github.com/goran-ethernal/RWAListener/internal/processor"
	"github.com/goran-ethernal/RWAListener/pkg/processor"
	"github.com/shopspring/decimal"
)

func (p *MarketProcessor) loadPosition(tx *sql.Tx, call processor.CallContext, ref TokenRef) (*MarketToken, bool, error) {
	var pos MarketToken
	found, err := baseprocessor.LoadRow(tx, &pos,
		"SELECT * FROM "+tokensTable+" WHERE contract = ? AND token_contract = ? AND token_id = ? AND owner = ?",
		call.Contract.String(), ref.Contract.String(), ref.TokenID.String(), ref.Owner.String())
	if err != nil {
		return nil, false, fmt.Errorf("failed to load market token of %s: %w", ref.Owner, err)
	}
	return &pos, found, nil
}

// existingPosition fails with ErrInsufficientFunds when the owner never deposited the token.
func (p *MarketProcessor) existingPosition(tx *sql.Tx, call processor.CallContext, ref TokenRef) (*MarketToken, error) {
	pos, found, err := p.loadPosition(tx, call, ref)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s has no deposit of %s/%q", processor.ErrInsufficientFunds,
			ref.Owner, ref.Contract, ref.TokenID)
	}
	return pos, nil
}

func (p *MarketProcessor) savePosition(tx *sql.Tx, call processor.CallContext, pos *MarketToken) error {
	if !pos.DepositedAmount.Equal(pos.ListedAmount.Add(pos.UnlistedAmount)) {
		return fmt.Errorf("%w: deposited %s != listed %s + unlisted %s for %s", processor.ErrInvalidState,
			pos.DepositedAmount, pos.ListedAmount, pos.UnlistedAmount, pos.Owner)
	}
	pos.UpdatedAt = call.BlockTime
	return baseprocessor.SaveRow(tx, tokensTable, pos)
}

func (p *MarketProcessor) deposit(tx *sql.Tx, call processor.CallContext, e Deposited) error {
	pos, found, err := p.loadPosition(tx, call, e.TokenRef)
	if err != nil {
		return err
	}
	if !found {
		pos = &MarketToken{
			Contract:        call.Contract,
			TokenContract:   e.Contract,
			TokenID:         e.TokenID,
			Owner:           e.Owner,
			DepositedAmount: decimal.Zero,
			ListedAmount:    decimal.Zero,
			UnlistedAmount:  decimal.Zero,
		}
	}

	pos.DepositedAmount = pos.DepositedAmount.Add(e.Amount)
	pos.UnlistedAmount = pos.UnlistedAmount.Add(e.Amount)
	return p.savePosition(tx, call, pos)
}

func (p *MarketProcessor) withdraw(tx *sql.Tx, call processor.CallContext, e Withdraw) error {
	pos, err := p.existingPosition(tx, call, e.TokenRef)
	if err != nil {
		return err
	}

	if pos.UnlistedAmount, err = baseprocessor.Sub(pos.UnlistedAmount, e.Amount, "unlisted amount"); err != nil {
		return err
	}
	pos.DepositedAmount = pos.DepositedAmount.Sub(e.Amount)
	return p.savePosition(tx, call, pos)
}

// list moves supply from the unlisted to the listed amount.
func (p *MarketProcessor) list(tx *sql.Tx, call processor.CallContext, e Listed) error {
	pos, err := p.existingPosition(tx, call, e.TokenRef)
	if err != nil {
		return err
	}

	if pos.UnlistedAmount, err = baseprocessor.Sub(pos.UnlistedAmount, e.Supply, "unlisted amount"); err != nil {
		return err
	}
	pos.ListedAmount = pos.ListedAmount.Add(e.Supply)
	return p.savePosition(tx, call, pos)
}

// delist moves the whole listed amount back to unlisted.
func (p *MarketProcessor) delist(tx *sql.Tx, call processor.CallContext, e DeListed) error {
	pos, err := p.existingPosition(tx, call, e.TokenRef)
	if err != nil {
		return err
	}

	pos.UnlistedAmount = pos.UnlistedAmount.Add(pos.ListedAmount)
	pos.ListedAmount = decimal.Zero
	return p.savePosition(tx, call, pos)
}

// exchange takes the bought amount from the buyer's listing and, for CIS2 payments,
// the paid amount from the payer's unlisted deposit of the payment token.
// The market emits the listing owner as Buyer; Seller is only recorded.
func (p *MarketProcessor) exchange(tx *sql.Tx, call processor.CallContext, e Exchanged) error {
	sold, err := p.existingPosition(tx, call,
		TokenRef{Contract: e.BuyTokenContract, TokenID: e.BuyTokenID, Owner: e.Buyer})
	if err != nil {
		return err
	}
	if sold.ListedAmount, err = baseprocessor.Sub(sold.ListedAmount, e.BuyAmount, "listed amount"); err != nil {
		return err
	}
	sold.DepositedAmount = sold.DepositedAmount.Sub(e.BuyAmount)
	if err := p.savePosition(tx, call, sold); err != nil {
		return err
	}

	record := &Exchange{
		Contract:         call.Contract,
		BuyTokenContract: e.BuyTokenContract,
		BuyTokenID:       e.BuyTokenID,
		BuyAmount:        e.BuyAmount,
		Seller:           e.Seller,
		Buyer:            e.Buyer,
		PayAmount:        e.PayAmount,
		Payer:            e.Payer,
		BlockHeight:      call.BlockHeight,
		TxHash:           call.TxHash,
		ExchangedAt:      call.BlockTime,
	}

	if !e.PayToken.IsCCD() {
		paid, err := p.existingPosition(tx, call,
			TokenRef{Contract: *e.PayToken.Contract, TokenID: e.PayToken.TokenID, Owner: e.Payer})
		if err != nil {
			return err
		}
		if paid.UnlistedAmount, err = baseprocessor.Sub(paid.UnlistedAmount, e.PayAmount, "unlisted amount"); err != nil {
			return err
		}
		paid.DepositedAmount = paid.DepositedAmount.Sub(e.PayAmount)
		if err := p.savePosition(tx, call, paid); err != nil {
			return err
		}

		record.PayTokenContract = e.PayToken.Contract
		record.PayTokenID = &e.PayToken.TokenID
	}

	if err := baseprocessor.InsertRow(tx, exchangesTable, record); err != nil {
		return err
	}

	p.Log().Debugw("exchanged",
		"contract", call.Contract.String(),
		"token", e.BuyTokenID.String(),
		"amount", e.BuyAmount.String(),
		"seller", e.Seller.String(),
		"buyer", e.Buyer.String(),
		"pay_amount", e.PayAmount.String(),
	)
	return nil
}
