package usecase

import (
	"math/big"

	"github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/base/log"
	"github.com/x-xyz/exchange/domain"
	"github.com/x-xyz/exchange/domain/ledger"
)

type ledgerUCImpl struct {
	balance   ledger.BalanceRepo
	allowance ledger.AllowanceRepo
}

type LedgerUseCaseCfg struct {
	Balance   ledger.BalanceRepo
	Allowance ledger.AllowanceRepo
}

func NewLedgerUseCase(cfg *LedgerUseCaseCfg) ledger.UseCase {
	return &ledgerUCImpl{
		balance:   cfg.Balance,
		allowance: cfg.Allowance,
	}
}

func (im *ledgerUCImpl) BalanceOf(ctx ctx.Ctx, id ledger.BalanceId) (*big.Int, error) {
	id.Owner = id.Owner.ToLower()
	id.Token = id.Token.ToLower()
	balance, err := im.balance.FindOne(ctx, id)
	if err == domain.ErrNotFound {
		return new(big.Int), nil
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("balance.FindOne failed")
		return nil, err
	}
	nums, err := domain.ToBigInt([]string{balance.Amount})
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":    err,
			"amount": balance.Amount,
		}).Error("ToBigInt failed")
		return nil, err
	}
	return nums[0], nil
}

func (im *ledgerUCImpl) AllowanceOf(ctx ctx.Ctx, id ledger.AllowanceId) (*big.Int, error) {
	id.Owner = id.Owner.ToLower()
	id.Token = id.Token.ToLower()
	allowance, err := im.allowance.FindOne(ctx, id)
	if err == domain.ErrNotFound {
		return new(big.Int), nil
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("allowance.FindOne failed")
		return nil, err
	}
	nums, err := domain.ToBigInt([]string{allowance.Amount})
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":    err,
			"amount": allowance.Amount,
		}).Error("ToBigInt failed")
		return nil, err
	}
	return nums[0], nil
}

func (im *ledgerUCImpl) Deposit(ctx ctx.Ctx, id ledger.BalanceId, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return domain.ErrInvalidAmount
	}
	id.Owner = id.Owner.ToLower()
	id.Token = id.Token.ToLower()
	balance, err := im.BalanceOf(ctx, id)
	if err != nil {
		return err
	}
	return im.setBalance(ctx, id, new(big.Int).Add(balance, amount))
}

func (im *ledgerUCImpl) Approve(ctx ctx.Ctx, id ledger.AllowanceId, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return domain.ErrInvalidAmount
	}
	// native value is supplied per call, not pulled through allowances
	if id.Token.IsEmpty() {
		return domain.ErrInvalidPaymentMethod
	}
	allowance := &ledger.Allowance{
		ChainId: id.ChainId,
		Token:   id.Token.ToLower(),
		Owner:   id.Owner.ToLower(),
		Amount:  amount.String(),
	}
	if err := im.allowance.Upsert(ctx, allowance); err != nil {
		ctx.WithFields(log.Fields{
			"err":       err,
			"allowance": allowance,
		}).Error("allowance.Upsert failed")
		return err
	}
	return nil
}

func (im *ledgerUCImpl) Transfer(ctx ctx.Ctx, chainId domain.ChainId, token, from, to domain.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return domain.ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}

	fromId := ledger.BalanceId{ChainId: chainId, Token: token.ToLower(), Owner: from.ToLower()}
	fromBalance, err := im.BalanceOf(ctx, fromId)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return domain.ErrInsufficientCurrencySupplied
	}

	toId := ledger.BalanceId{ChainId: chainId, Token: token.ToLower(), Owner: to.ToLower()}
	toBalance, err := im.BalanceOf(ctx, toId)
	if err != nil {
		return err
	}

	if err := im.setBalance(ctx, fromId, new(big.Int).Sub(fromBalance, amount)); err != nil {
		return err
	}
	return im.setBalance(ctx, toId, new(big.Int).Add(toBalance, amount))
}

func (im *ledgerUCImpl) PullTransfer(ctx ctx.Ctx, chainId domain.ChainId, token, from, to domain.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return domain.ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}

	allowanceId := ledger.AllowanceId{ChainId: chainId, Token: token.ToLower(), Owner: from.ToLower()}
	allowance, err := im.AllowanceOf(ctx, allowanceId)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return domain.ErrInsufficientCurrencySupplied
	}

	if err := im.Transfer(ctx, chainId, token, from, to, amount); err != nil {
		return err
	}

	remaining := new(big.Int).Sub(allowance, amount)
	newAllowance := &ledger.Allowance{
		ChainId: allowanceId.ChainId,
		Token:   allowanceId.Token,
		Owner:   allowanceId.Owner,
		Amount:  remaining.String(),
	}
	if err := im.allowance.Upsert(ctx, newAllowance); err != nil {
		ctx.WithFields(log.Fields{
			"err":       err,
			"allowance": newAllowance,
		}).Error("allowance.Upsert failed")
		return err
	}
	return nil
}

func (im *ledgerUCImpl) setBalance(ctx ctx.Ctx, id ledger.BalanceId, amount *big.Int) error {
	balance := &ledger.Balance{
		ChainId: id.ChainId,
		Token:   id.Token,
		Owner:   id.Owner,
		Amount:  amount.String(),
	}
	if err := im.balance.Upsert(ctx, balance); err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"balance": balance,
		}).Error("balance.Upsert failed")
		return err
	}
	return nil
}
