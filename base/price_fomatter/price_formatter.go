package pricefomatter

import (
	"math/big"

	"github.com/shopspring/decimal"
	bCtx "github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/domain"
)

// PriceFormatter converts between smallest-unit amounts and display prices
// using the payment token's registered decimals
type PriceFormatter interface {
	GetDisplayPrice(ctx bCtx.Ctx, chainId domain.ChainId, token domain.Address, value *big.Int) (decimal.Decimal, error)
	GetDisplayPriceFromString(ctx bCtx.Ctx, chainId domain.ChainId, token domain.Address, value string) (decimal.Decimal, error)
	ParseDisplayPrice(ctx bCtx.Ctx, chainId domain.ChainId, token domain.Address, displayPrice decimal.Decimal) (*big.Int, error)
}
