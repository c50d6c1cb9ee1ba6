package ledger

import (
	"math/big"

	"github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/domain"
)

// Balance is one account's balance of one currency. Token is the fungible
// token address, or domain.EmptyAddress for the native currency. Amount is a
// decimal string of the smallest unit.
type Balance struct {
	ChainId domain.ChainId `bson:"chainId"`
	Token   domain.Address `bson:"token"`
	Owner   domain.Address `bson:"owner"`
	Amount  string         `bson:"amount"`
}

func (b *Balance) ToId() BalanceId {
	return BalanceId{ChainId: b.ChainId, Token: b.Token, Owner: b.Owner}
}

type BalanceId struct {
	ChainId domain.ChainId `bson:"chainId"`
	Token   domain.Address `bson:"token"`
	Owner   domain.Address `bson:"owner"`
}

// Allowance is the amount of a fungible token an owner lets the exchange
// pull on its behalf. The native currency never uses allowances, native
// value is supplied per call.
type Allowance struct {
	ChainId domain.ChainId `bson:"chainId"`
	Token   domain.Address `bson:"token"`
	Owner   domain.Address `bson:"owner"`
	Amount  string         `bson:"amount"`
}

func (a *Allowance) ToId() AllowanceId {
	return AllowanceId{ChainId: a.ChainId, Token: a.Token, Owner: a.Owner}
}

type AllowanceId struct {
	ChainId domain.ChainId `bson:"chainId"`
	Token   domain.Address `bson:"token"`
	Owner   domain.Address `bson:"owner"`
}

type BalanceRepo interface {
	FindOne(ctx ctx.Ctx, id BalanceId) (*Balance, error)
	Upsert(ctx ctx.Ctx, balance *Balance) error
}

type AllowanceRepo interface {
	FindOne(ctx ctx.Ctx, id AllowanceId) (*Allowance, error)
	Upsert(ctx ctx.Ctx, allowance *Allowance) error
}

// UseCase moves funds between accounts. Transfers never create or destroy
// value; PullTransfer additionally spends allowance on the token rail. All
// methods fail with ErrInsufficientCurrencySupplied when the source balance,
// or allowance, cannot cover the amount.
type UseCase interface {
	BalanceOf(ctx ctx.Ctx, id BalanceId) (*big.Int, error)
	AllowanceOf(ctx ctx.Ctx, id AllowanceId) (*big.Int, error)
	// Deposit credits freshly supplied funds to an account
	Deposit(ctx ctx.Ctx, id BalanceId, amount *big.Int) error
	// Approve sets the exchange allowance for a fungible token
	Approve(ctx ctx.Ctx, id AllowanceId, amount *big.Int) error
	// Transfer moves amount from one account to another on the same rail
	Transfer(ctx ctx.Ctx, chainId domain.ChainId, token, from, to domain.Address, amount *big.Int) error
	// PullTransfer moves amount like Transfer but additionally consumes the
	// payer's exchange allowance; it is the token-rail entry used by
	// settlement
	PullTransfer(ctx ctx.Ctx, chainId domain.ChainId, token, from, to domain.Address, amount *big.Int) error
}
