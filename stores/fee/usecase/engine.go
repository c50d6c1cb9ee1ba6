package usecase

import (
	"math/big"

	"github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/base/log"
	"github.com/x-xyz/exchange/domain"
	"github.com/x-xyz/exchange/domain/fee"
	"github.com/x-xyz/exchange/domain/ledger"
)

var big10000 = big.NewInt(10000)

type engineImpl struct {
	payToken fee.PayTokenRepo
	royalty  fee.RoyaltyUseCase
	ledger   ledger.UseCase
	// platformRecipient collects both maker and taker cuts
	platformRecipient domain.Address
}

type EngineCfg struct {
	PayToken          fee.PayTokenRepo
	Royalty           fee.RoyaltyUseCase
	Ledger            ledger.UseCase
	PlatformRecipient domain.Address
}

func NewEngine(cfg *EngineCfg) fee.Engine {
	return &engineImpl{
		payToken:          cfg.PayToken,
		royalty:           cfg.Royalty,
		ledger:            cfg.Ledger,
		platformRecipient: cfg.PlatformRecipient.ToLower(),
	}
}

func (im *engineImpl) Quote(ctx ctx.Ctx, id fee.PayTokenId) (*fee.PayToken, error) {
	id.Address = id.Address.ToLower()
	token, err := im.payToken.FindOne(ctx, id)
	if err == domain.ErrNotFound {
		return nil, domain.ErrInvalidPaymentMethod
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("payToken.FindOne failed")
		return nil, err
	}
	if !token.Enabled {
		return nil, domain.ErrInvalidPaymentMethod
	}
	return token, nil
}

func (im *engineImpl) TakerCutOf(ctx ctx.Ctx, id fee.PayTokenId, price *big.Int) (*big.Int, error) {
	token, err := im.Quote(ctx, id)
	if err != nil {
		return nil, err
	}
	return cutOf(price, token.TakerFeeBps), nil
}

// Distribute computes every share of a settlement and moves the funds. Each
// bps cut truncates toward zero independently; the seller absorbs all
// rounding remainders so no value is ever created or lost.
func (im *engineImpl) Distribute(ctx ctx.Ctx, args *fee.DistributeArgs) (*fee.Distribution, error) {
	return im.distribute(ctx, args, args.Buyer, false)
}

// DistributeEscrowed pays out funds that are already sitting on the payer's
// balance; the supplied amount behaves like the native rail regardless of
// payment token since nothing is pulled from the buyer anymore.
func (im *engineImpl) DistributeEscrowed(ctx ctx.Ctx, payer domain.Address, args *fee.DistributeArgs) (*fee.Distribution, error) {
	return im.distribute(ctx, args, payer, true)
}

func (im *engineImpl) distribute(ctx ctx.Ctx, args *fee.DistributeArgs, payer domain.Address, escrowed bool) (*fee.Distribution, error) {
	if args.Price == nil || args.Price.Sign() <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	token, err := im.Quote(ctx, fee.PayTokenId{ChainId: args.ChainId, Address: args.PaymentToken})
	if err != nil {
		return nil, err
	}

	makerCut := cutOf(args.Price, token.MakerFeeBps)
	takerCut := cutOf(args.Price, token.TakerFeeBps)
	due := new(big.Int).Add(args.Price, takerCut)

	royaltyAmount := new(big.Int)
	royaltyTo := domain.EmptyAddress
	royalty, err := im.royalty.Resolve(ctx, args.ChainId, args.Collection, args.TokenId)
	if err != nil {
		return nil, err
	}
	if royalty != nil {
		royaltyAmount = cutOf(args.Price, royalty.Bps)
		royaltyTo = royalty.Recipient
	}

	paid := new(big.Int).Set(due)
	if escrowed || args.PaymentToken.IsEmpty() {
		// the full supplied amount is forwarded; any excess over the due
		// amount ends up with the seller
		if args.Supplied == nil || args.Supplied.Cmp(due) < 0 {
			return nil, domain.ErrInsufficientCurrencySupplied
		}
		paid = new(big.Int).Set(args.Supplied)
	}

	platformAmount := new(big.Int).Add(makerCut, takerCut)
	sellerAmount := new(big.Int).Sub(paid, platformAmount)
	sellerAmount.Sub(sellerAmount, royaltyAmount)
	if sellerAmount.Sign() < 0 {
		return nil, domain.ErrInvalidConfiguration
	}

	transfer := im.ledger.Transfer
	if !escrowed && !args.PaymentToken.IsEmpty() {
		transfer = im.ledger.PullTransfer
	}
	payoutToken := args.PaymentToken.ToLower()
	from := payer.ToLower()
	if err := transfer(ctx, args.ChainId, payoutToken, from, im.platformRecipient, platformAmount); err != nil {
		return nil, err
	}
	if royaltyAmount.Sign() > 0 {
		if err := transfer(ctx, args.ChainId, payoutToken, from, royaltyTo, royaltyAmount); err != nil {
			return nil, err
		}
	}
	if err := transfer(ctx, args.ChainId, payoutToken, from, args.Seller, sellerAmount); err != nil {
		return nil, err
	}

	return &fee.Distribution{
		Price:          new(big.Int).Set(args.Price),
		Paid:           paid,
		SellerAmount:   sellerAmount,
		PlatformAmount: platformAmount,
		RoyaltyAmount:  royaltyAmount,
		RoyaltyTo:      royaltyTo,
		TakerCut:       takerCut,
	}, nil
}

func cutOf(price *big.Int, bps int64) *big.Int {
	return new(big.Int).Quo(new(big.Int).Mul(price, big.NewInt(bps)), big10000)
}
