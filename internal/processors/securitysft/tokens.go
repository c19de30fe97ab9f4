package securitysft

import (
	"context"
	"database/sql"
	"fmt"

	baseprocessor "github.com/goran-ethernal/RWAListener/internal/processor"
	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/goran-ethernal/RWAListener/pkg/processor"
	"github.com/russross/meddler"
	"github.com/shopspring/decimal"
)

func (p *SecurityTokenProcessor) loadToken(tx *sql.Tx, contract concordium.ContractAddress,
	tokenID concordium.TokenID) (*Token, bool, error) {
	var token Token
	found, err := baseprocessor.LoadRow(tx, &token,
		"SELECT * FROM "+tokensTable+" WHERE contract = ? AND token_id = ?",
		contract.String(), tokenID.String())
	if err != nil {
		return nil, false, fmt.Errorf("failed to load token %s: %w", tokenID, err)
	}
	return &token, found, nil
}

// tokenOrNew returns the token row, or a fresh one with zero supply.
func (p *SecurityTokenProcessor) tokenOrNew(tx *sql.Tx, call processor.CallContext,
	tokenID concordium.TokenID) (*Token, error) {
	token, found, err := p.loadToken(tx, call.Contract, tokenID)
	if err != nil {
		return nil, err
	}
	if !found {
		token = &Token{
			Contract:  call.Contract,
			TokenID:   tokenID,
			Supply:    decimal.Zero,
			CreatedAt: call.BlockTime,
		}
	}
	return token, nil
}

// existingToken returns the token row and fails when the token was never created.
func (p *SecurityTokenProcessor) existingToken(tx *sql.Tx, call processor.CallContext,
	tokenID concordium.TokenID) (*Token, error) {
	token, found, err := p.loadToken(tx, call.Contract, tokenID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: unknown token %q of contract %s", processor.ErrInvalidState, tokenID, call.Contract)
	}
	return token, nil
}

func (p *SecurityTokenProcessor) saveToken(tx *sql.Tx, call processor.CallContext, token *Token) error {
	token.UpdatedAt = call.BlockTime
	return baseprocessor.SaveRow(tx, tokensTable, token)
}

func (p *SecurityTokenProcessor) loadHolder(tx *sql.Tx, contract concordium.ContractAddress,
	tokenID concordium.TokenID, holder concordium.Address) (*TokenHolder, bool, error) {
	var h TokenHolder
	found, err := baseprocessor.LoadRow(tx, &h,
		"SELECT * FROM "+holdersTable+" WHERE contract = ? AND token_id = ? AND holder = ?",
		contract.String(), tokenID.String(), holder.String())
	if err != nil {
		return nil, false, fmt.Errorf("failed to load holder %s: %w", holder, err)
	}
	return &h, found, nil
}

func (p *SecurityTokenProcessor) saveHolder(tx *sql.Tx, call processor.CallContext, h *TokenHolder) error {
	h.UpdatedAt = call.BlockTime
	return baseprocessor.SaveRow(tx, holdersTable, h)
}

// credit adds amount to the holder's balance, creating the holder row if needed.
func (p *SecurityTokenProcessor) credit(tx *sql.Tx, call processor.CallContext, tokenID concordium.TokenID,
	holder concordium.Address, amount decimal.Decimal) error {
	h, found, err := p.loadHolder(tx, call.Contract, tokenID, holder)
	if err != nil {
		return err
	}
	if !found {
		h = &TokenHolder{
			Contract:      call.Contract,
			TokenID:       tokenID,
			Holder:        holder,
			Balance:       decimal.Zero,
			FrozenBalance: decimal.Zero,
		}
	}

	h.Balance = h.Balance.Add(amount)
	return p.saveHolder(tx, call, h)
}

// debit takes amount from the unfrozen part of the holder's balance.
func (p *SecurityTokenProcessor) debit(tx *sql.Tx, call processor.CallContext, tokenID concordium.TokenID,
	holder concordium.Address, amount decimal.Decimal) error {
	h, found, err := p.loadHolder(tx, call.Contract, tokenID, holder)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s holds no token %q", processor.ErrInsufficientFunds, holder, tokenID)
	}

	if _, err := baseprocessor.Sub(h.Balance.Sub(h.FrozenBalance), amount,
		fmt.Sprintf("unfrozen balance of %s", holder)); err != nil {
		return err
	}

	h.Balance = h.Balance.Sub(amount)
	return p.saveHolder(tx, call, h)
}

func (p *SecurityTokenProcessor) mint(tx *sql.Tx, call processor.CallContext, e Mint) error {
	token, err := p.tokenOrNew(tx, call, e.TokenID)
	if err != nil {
		return err
	}

	if err := p.credit(tx, call, e.TokenID, e.Owner, e.Amount); err != nil {
		return err
	}

	token.Supply = token.Supply.Add(e.Amount)
	if err := p.saveToken(tx, call, token); err != nil {
		return err
	}

	p.Log().Debugw("minted", "contract", call.Contract.String(), "token", e.TokenID.String(),
		"owner", e.Owner.String(), "amount", e.Amount.String())
	return nil
}

func (p *SecurityTokenProcessor) burn(tx *sql.Tx, call processor.CallContext, e Burn) error {
	token, err := p.existingToken(tx, call, e.TokenID)
	if err != nil {
		return err
	}

	if err := p.debit(tx, call, e.TokenID, e.Owner, e.Amount); err != nil {
		return err
	}

	token.Supply, err = baseprocessor.Sub(token.Supply, e.Amount, "supply")
	if err != nil {
		return err
	}
	if err := p.saveToken(tx, call, token); err != nil {
		return err
	}

	p.Log().Debugw("burned", "contract", call.Contract.String(), "token", e.TokenID.String(),
		"owner", e.Owner.String(), "amount", e.Amount.String())
	return nil
}

func (p *SecurityTokenProcessor) transfer(tx *sql.Tx, call processor.CallContext, e Transfer) error {
	if _, err := p.existingToken(tx, call, e.TokenID); err != nil {
		return err
	}

	if err := p.debit(tx, call, e.TokenID, e.From, e.Amount); err != nil {
		return err
	}
	if err := p.credit(tx, call, e.TokenID, e.To, e.Amount); err != nil {
		return err
	}

	p.Log().Debugw("transferred", "contract", call.Contract.String(), "token", e.TokenID.String(),
		"from", e.From.String(), "to", e.To.String(), "amount", e.Amount.String())
	return nil
}

// freeze moves amount between the free and the frozen part of a balance.
func (p *SecurityTokenProcessor) freeze(tx *sql.Tx, call processor.CallContext, e TokensFrozen) error {
	h, found, err := p.loadHolder(tx, call.Contract, e.TokenID, e.Address)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s holds no token %q", processor.ErrInsufficientFunds, e.Address, e.TokenID)
	}

	if e.Freeze {
		if _, err := baseprocessor.Sub(h.Balance.Sub(h.FrozenBalance), e.Amount,
			fmt.Sprintf("unfrozen balance of %s", e.Address)); err != nil {
			return err
		}
		h.FrozenBalance = h.FrozenBalance.Add(e.Amount)
	} else {
		h.FrozenBalance, err = baseprocessor.Sub(h.FrozenBalance, e.Amount,
			fmt.Sprintf("frozen balance of %s", e.Address))
		if err != nil {
			return err
		}
	}

	return p.saveHolder(tx, call, h)
}

func (p *SecurityTokenProcessor) setPaused(tx *sql.Tx, call processor.CallContext, e PauseUpdated) error {
	token, err := p.existingToken(tx, call, e.TokenID)
	if err != nil {
		return err
	}

	token.IsPaused = e.Paused
	return p.saveToken(tx, call, token)
}

func (p *SecurityTokenProcessor) updateMetadata(tx *sql.Tx, call processor.CallContext, e TokenMetadata) error {
	token, err := p.tokenOrNew(tx, call, e.TokenID)
	if err != nil {
		return err
	}

	token.MetadataURL = e.URL
	token.MetadataHash = e.Hash
	return p.saveToken(tx, call, token)
}

func (p *SecurityTokenProcessor) updateOperator(ctx context.Context, tx *sql.Tx, call processor.CallContext,
	e UpdateOperator) error {
	var err error
	if e.Add {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO "+operatorsTable+" (contract, owner, operator) VALUES (?, ?, ?) "+
				"ON CONFLICT (contract, owner, operator) DO NOTHING",
			call.Contract.String(), e.Owner.String(), e.Operator.String())
	} else {
		_, err = tx.ExecContext(ctx,
			"DELETE FROM "+operatorsTable+" WHERE contract = ? AND owner = ? AND operator = ?",
			call.Contract.String(), e.Owner.String(), e.Operator.String())
	}
	if err != nil {
		return fmt.Errorf("failed to update operator: %w", err)
	}
	return nil
}

func (p *SecurityTokenProcessor) updateContractInfo(tx *sql.Tx, call processor.CallContext,
	update func(info *ContractInfo)) error {
	var info ContractInfo
	found, err := baseprocessor.LoadRow(tx, &info,
		"SELECT * FROM "+contractsTable+" WHERE contract = ?", call.Contract.String())
	if err != nil {
		return fmt.Errorf("failed to load contract info: %w", err)
	}
	if !found {
		info = ContractInfo{Contract: call.Contract}
	}

	update(&info)
	return baseprocessor.SaveRow(tx, contractsTable, &info)
}

// recover moves every holder row of the lost address to the new address and
// records the recovery. Rows the new address already has for a token are merged.
func (p *SecurityTokenProcessor) recover(ctx context.Context, tx *sql.Tx, call processor.CallContext,
	e Recovered) error {
	rows, err := tx.QueryContext(ctx,
		"SELECT * FROM "+holdersTable+" WHERE contract = ? AND holder = ? ORDER BY id",
		call.Contract.String(), e.Lost.String())
	if err != nil {
		return fmt.Errorf("failed to load holders of %s: %w", e.Lost, err)
	}
	defer rows.Close()

	var lost []*TokenHolder
	if err := meddler.ScanAll(rows, &lost); err != nil {
		return fmt.Errorf("failed to scan holders of %s: %w", e.Lost, err)
	}

	for _, h := range lost {
		target, found, err := p.loadHolder(tx, call.Contract, h.TokenID, e.New)
		if err != nil {
			return err
		}

		if !found {
			h.Holder = e.New
			if err := p.saveHolder(tx, call, h); err != nil {
				return err
			}
			continue
		}

		target.Balance = target.Balance.Add(h.Balance)
		target.FrozenBalance = target.FrozenBalance.Add(h.FrozenBalance)
		if err := p.saveHolder(tx, call, target); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+holdersTable+" WHERE id = ?", h.ID); err != nil {
			return fmt.Errorf("failed to delete holder row %d: %w", h.ID, err)
		}
	}

	if err := baseprocessor.InsertRow(tx, recoveriesTable, &Recovery{
		Contract:     call.Contract,
		LostAddress:  e.Lost,
		NewAddress:   e.New,
		HoldersMoved: len(lost),
		BlockHeight:  call.BlockHeight,
		TxHash:       call.TxHash,
		RecoveredAt:  call.BlockTime,
	}); err != nil {
		return err
	}

	p.Log().Infow("account recovered",
		"contract", call.Contract.String(),
		"lost", e.Lost.String(),
		"new", e.New.String(),
		"holders_moved", len(lost),
	)
	return nil
}
