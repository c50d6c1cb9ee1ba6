package usecase

import (
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viney-shih/goroutines"

	bCtx "github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/base/log"
	"github.com/x-xyz/exchange/domain"
	"github.com/x-xyz/exchange/domain/asset"
	"github.com/x-xyz/exchange/domain/fee"
	"github.com/x-xyz/exchange/domain/ledger"
	"github.com/x-xyz/exchange/domain/marketplace"
	"github.com/x-xyz/exchange/service/query"
)

const expiredOfferBatchSize = 128

type offerUCImpl struct {
	offer    marketplace.OfferRepo
	activity marketplace.ActivityRepo
	asset    asset.UseCase
	fee      fee.Engine
	ledger   ledger.UseCase
	q        query.Mongo
	// escrow is the account that holds offer funds between placement and
	// acceptance
	escrow domain.Address

	workerPool *goroutines.Pool
}

type OfferUseCaseCfg struct {
	Offer    marketplace.OfferRepo
	Activity marketplace.ActivityRepo
	Asset    asset.UseCase
	Fee      fee.Engine
	Ledger   ledger.UseCase
	Q        query.Mongo
	Escrow   domain.Address
}

func NewOfferUseCase(cfg *OfferUseCaseCfg) marketplace.OfferUseCase {
	return &offerUCImpl{
		offer:    cfg.Offer,
		activity: cfg.Activity,
		asset:    cfg.Asset,
		fee:      cfg.Fee,
		ledger:   cfg.Ledger,
		q:        cfg.Q,
		escrow:   cfg.Escrow.ToLower(),

		workerPool: goroutines.NewPool(8, goroutines.WithTaskQueueLength(256)),
	}
}

func (im *offerUCImpl) PlaceOffer(ctx bCtx.Ctx, bidder domain.Address, args *marketplace.PlaceOfferArgs) (*marketplace.Offer, error) {
	// escrow offers are token rail only, native value cannot be held
	if args.PaymentToken.IsEmpty() {
		return nil, domain.ErrInvalidPaymentMethod
	}

	nums, err := domain.ToBigInt([]string{args.Price})
	if err != nil {
		return nil, err
	}
	price := nums[0]
	if price.Sign() <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	expiresAt := time.Unix(args.ExpiresAt, 0)
	if !expiresAt.After(time.Now()) {
		return nil, domain.ErrInvalidOffer
	}

	takerCut, err := im.fee.TakerCutOf(ctx, fee.PayTokenId{ChainId: args.ChainId, Address: args.PaymentToken}, price)
	if err != nil {
		return nil, err
	}
	priceWithFee := new(big.Int).Add(price, takerCut)

	offer := &marketplace.Offer{
		ChainId:      args.ChainId,
		Collection:   args.Collection.ToLower(),
		TokenId:      args.TokenId,
		Bidder:       bidder.ToLower(),
		PaymentToken: args.PaymentToken.ToLower(),
		Price:        price.String(),
		PriceWithFee: priceWithFee.String(),
		ExpiresAt:    expiresAt,
		CreatedAt:    time.Now(),
	}

	err = im.q.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		// one active offer per (bidder, collection, tokenId); the bidder has
		// to cancel before funding a replacement
		if _, err := im.offer.FindOne(ctx, offer.ToId()); err == nil {
			return domain.ErrConflict
		} else if err != domain.ErrNotFound {
			return err
		}

		offerId, err := im.offer.NextOfferId(ctx, offer.ChainId)
		if err != nil {
			return err
		}
		offer.OfferId = offerId

		if err := im.ledger.PullTransfer(ctx, offer.ChainId, offer.PaymentToken, offer.Bidder, im.escrow, priceWithFee); err != nil {
			return err
		}
		if err := im.offer.Insert(ctx, offer); err != nil {
			return err
		}
		return im.activity.Insert(ctx, &marketplace.Activity{
			ChainId:      offer.ChainId,
			Collection:   offer.Collection,
			TokenId:      offer.TokenId,
			Type:         marketplace.ActivityTypeCreateOffer,
			Account:      offer.Bidder,
			Quantity:     1,
			Price:        offer.Price,
			PaymentToken: offer.PaymentToken,
			Time:         time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}
	return offer, nil
}

func (im *offerUCImpl) CancelOffer(ctx bCtx.Ctx, bidder domain.Address, id marketplace.OfferId) error {
	id.Collection = id.Collection.ToLower()
	id.Bidder = id.Bidder.ToLower()
	if !bidder.Equals(id.Bidder) {
		return domain.ErrInvalidCaller
	}

	return im.q.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		offer, err := im.offer.FindOne(ctx, id)
		if err == domain.ErrNotFound {
			return domain.ErrInvalidOffer
		} else if err != nil {
			return err
		}
		if err := im.refund(ctx, offer); err != nil {
			return err
		}
		return im.activity.Insert(ctx, &marketplace.Activity{
			ChainId:      offer.ChainId,
			Collection:   offer.Collection,
			TokenId:      offer.TokenId,
			Type:         marketplace.ActivityTypeCancelOffer,
			Account:      offer.Bidder,
			Quantity:     1,
			Price:        offer.Price,
			PaymentToken: offer.PaymentToken,
			Time:         time.Now(),
		})
	})
}

func (im *offerUCImpl) AcceptOffer(ctx bCtx.Ctx, seller domain.Address, id marketplace.OfferId) (*marketplace.TradeResult, error) {
	id.Collection = id.Collection.ToLower()
	id.Bidder = id.Bidder.ToLower()
	seller = seller.ToLower()

	var result *marketplace.TradeResult
	err := im.q.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		offer, err := im.offer.FindOne(ctx, id)
		if err == domain.ErrNotFound {
			return domain.ErrInvalidOffer
		} else if err != nil {
			return err
		}
		if seller.Equals(offer.Bidder) {
			return domain.ErrInvalidCaller
		}
		if !offer.ExpiresAt.After(time.Now()) {
			return domain.ErrOfferExpired
		}

		assetId := asset.Id{ChainId: offer.ChainId, Collection: offer.Collection, TokenId: offer.TokenId}
		if err := im.asset.AssertOwnsAndApproved(ctx, assetId, seller, 1); err != nil {
			return err
		}

		nums, err := domain.ToBigInt([]string{offer.Price, offer.PriceWithFee})
		if err != nil {
			return err
		}
		dist, err := im.fee.DistributeEscrowed(ctx, im.escrow, &fee.DistributeArgs{
			ChainId:      offer.ChainId,
			Collection:   offer.Collection,
			TokenId:      offer.TokenId,
			PaymentToken: offer.PaymentToken,
			Buyer:        offer.Bidder,
			Seller:       seller,
			Price:        nums[0],
			Supplied:     nums[1],
		})
		if err != nil {
			return err
		}

		if err := im.asset.Transfer(ctx, assetId, seller, offer.Bidder, 1); err != nil {
			return err
		}
		if err := im.offer.Remove(ctx, id); err != nil {
			return err
		}

		totalFee := new(big.Int).Add(dist.PlatformAmount, dist.RoyaltyAmount)
		if err := im.activity.Insert(ctx, &marketplace.Activity{
			ChainId:      offer.ChainId,
			Collection:   offer.Collection,
			TokenId:      offer.TokenId,
			Type:         marketplace.ActivityTypeAcceptOffer,
			Account:      seller,
			Quantity:     1,
			Price:        offer.Price,
			PaymentToken: offer.PaymentToken,
			TotalFee:     totalFee.String(),
			Time:         time.Now(),
		}); err != nil {
			return err
		}

		result = &marketplace.TradeResult{
			ListingId: marketplace.ListingId{
				ChainId:    offer.ChainId,
				Collection: offer.Collection,
				TokenId:    offer.TokenId,
				Seller:     seller,
			},
			Buyer:     offer.Bidder,
			UnitPrice: offer.Price,
			Quantity:  1,
			TotalFee:  totalFee.String(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (im *offerUCImpl) RemoveExpiredOffers(ctx bCtx.Ctx, chainId domain.ChainId) (int, error) {
	expired, err := im.offer.FindAll(ctx,
		marketplace.OfferWithChainId(chainId),
		marketplace.OfferWithExpiresAtLT(time.Now()),
		marketplace.OfferWithLimit(expiredOfferBatchSize),
	)
	if err != nil {
		return 0, err
	}

	var removed int64
	var wg sync.WaitGroup
	for _, offer := range expired {
		offer := offer
		wg.Add(1)
		err := im.workerPool.ScheduleWithTimeout(3*time.Second, func() {
			defer wg.Done()
			if err := im.expireOffer(ctx, offer); err != nil {
				ctx.WithFields(log.Fields{
					"err":   err,
					"offer": offer,
				}).Error("expireOffer failed")
				return
			}
			atomic.AddInt64(&removed, 1)
		})
		if err != nil {
			wg.Done()
			ctx.WithFields(log.Fields{
				"err": err,
			}).Error("failed to ScheduleWithTimeout")
		}
	}
	wg.Wait()
	return int(atomic.LoadInt64(&removed)), nil
}

// expireOffer refunds and deletes one expired offer in its own transaction
// so one bad entry cannot wedge the whole sweep
func (im *offerUCImpl) expireOffer(ctx bCtx.Ctx, offer *marketplace.Offer) error {
	return im.q.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		if err := im.refund(ctx, offer); err != nil {
			return err
		}
		return im.activity.Insert(ctx, &marketplace.Activity{
			ChainId:      offer.ChainId,
			Collection:   offer.Collection,
			TokenId:      offer.TokenId,
			Type:         marketplace.ActivityTypeExpireOffer,
			Account:      offer.Bidder,
			Quantity:     1,
			Price:        offer.Price,
			PaymentToken: offer.PaymentToken,
			Time:         time.Now(),
		})
	})
}

func (im *offerUCImpl) refund(ctx bCtx.Ctx, offer *marketplace.Offer) error {
	nums, err := domain.ToBigInt([]string{offer.PriceWithFee})
	if err != nil {
		return err
	}
	if err := im.ledger.Transfer(ctx, offer.ChainId, offer.PaymentToken, im.escrow, offer.Bidder, nums[0]); err != nil {
		return err
	}
	return im.offer.Remove(ctx, offer.ToId())
}
