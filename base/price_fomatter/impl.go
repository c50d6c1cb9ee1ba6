package pricefomatter

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/shopspring/decimal"
	bCtx "github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/base/log"
	"github.com/x-xyz/exchange/domain"
	"github.com/x-xyz/exchange/domain/fee"
)

type PriceFormatterCfg struct {
	Paytoken fee.PayTokenRepo
}

type impl struct {
	paytoken fee.PayTokenRepo

	// mutex protected members
	mutex         sync.Mutex
	payTokenCache map[string]*fee.PayToken
}

func NewPriceFormatter(cfg *PriceFormatterCfg) PriceFormatter {
	return &impl{
		paytoken:      cfg.Paytoken,
		payTokenCache: make(map[string]*fee.PayToken),
	}
}

func (f *impl) getPayToken(ctx bCtx.Ctx, chainId domain.ChainId, token domain.Address) (*fee.PayToken, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	key := fmt.Sprintf("%d%s", chainId, token)
	p, ok := f.payTokenCache[key]
	if ok {
		return p, nil
	}
	p, err := f.paytoken.FindOne(ctx, fee.PayTokenId{ChainId: chainId, Address: token.ToLower()})
	if err != nil {
		ctx.WithFields(log.Fields{
			"chainId": chainId,
			"token":   token,
			"err":     err,
		}).Error("paytoken.FindOne failed")
		return nil, err
	}
	f.payTokenCache[key] = p
	return p, nil
}

func (f *impl) GetDisplayPrice(ctx bCtx.Ctx, chainId domain.ChainId, token domain.Address, value *big.Int) (decimal.Decimal, error) {
	p, err := f.getPayToken(ctx, chainId, token)
	if err != nil {
		ctx.WithFields(log.Fields{
			"chainId": chainId,
			"token":   token,
			"err":     err,
		}).Error("getPayToken failed")
		return decimal.Zero, err
	}
	return decimal.NewFromBigInt(value, -p.TokenDecimals), nil
}

func (f *impl) GetDisplayPriceFromString(ctx bCtx.Ctx, chainId domain.ChainId, token domain.Address, value string) (decimal.Decimal, error) {
	v, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return decimal.Zero, domain.ErrInvalidNumberFormat
	}
	return f.GetDisplayPrice(ctx, chainId, token, v)
}

func (f *impl) ParseDisplayPrice(ctx bCtx.Ctx, chainId domain.ChainId, token domain.Address, displayPrice decimal.Decimal) (*big.Int, error) {
	p, err := f.getPayToken(ctx, chainId, token)
	if err != nil {
		ctx.WithFields(log.Fields{
			"chainId": chainId,
			"token":   token,
			"err":     err,
		}).Error("getPayToken failed")
		return nil, err
	}
	return displayPrice.Shift(p.TokenDecimals).BigInt(), nil
}
