package usecase

import (
	"math/big"
	"time"

	bCtx "github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/base/log"
	pricefomatter "github.com/x-xyz/exchange/base/price_fomatter"
	"github.com/x-xyz/exchange/domain"
	"github.com/x-xyz/exchange/domain/asset"
	"github.com/x-xyz/exchange/domain/fee"
	"github.com/x-xyz/exchange/domain/marketplace"
	"github.com/x-xyz/exchange/service/query"
)

type auctionUCImpl struct {
	listing        marketplace.ListingRepo
	activity       marketplace.ActivityRepo
	asset          asset.UseCase
	fee            fee.Engine
	priceFormatter pricefomatter.PriceFormatter
	q              query.Mongo
	// listing durations are clamped to the configured window
	minDuration int64
	maxDuration int64
}

type AuctionUseCaseCfg struct {
	Listing        marketplace.ListingRepo
	Activity       marketplace.ActivityRepo
	Asset          asset.UseCase
	Fee            fee.Engine
	PriceFormatter pricefomatter.PriceFormatter
	Q              query.Mongo
	// MinDuration and MaxDuration bound listing durations in seconds;
	// MaxDuration 0 leaves the upper bound open
	MinDuration int64
	MaxDuration int64
}

func NewAuctionUseCase(cfg *AuctionUseCaseCfg) marketplace.UseCase {
	return &auctionUCImpl{
		listing:        cfg.Listing,
		activity:       cfg.Activity,
		asset:          cfg.Asset,
		fee:            cfg.Fee,
		priceFormatter: cfg.PriceFormatter,
		q:              cfg.Q,
		minDuration:    cfg.MinDuration,
		maxDuration:    cfg.MaxDuration,
	}
}

func (im *auctionUCImpl) CreateListing(ctx bCtx.Ctx, seller domain.Address, args *marketplace.CreateListingArgs, kind marketplace.Kind) (*marketplace.Listing, error) {
	if args.Quantity <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if args.Duration <= 0 || args.Duration < im.minDuration {
		return nil, domain.ErrInvalidDuration
	}
	if im.maxDuration > 0 && args.Duration > im.maxDuration {
		return nil, domain.ErrInvalidDuration
	}

	nums, err := domain.ToBigInt([]string{args.StartingPrice})
	if err != nil {
		return nil, domain.ErrInvalidPriceConfiguration
	}
	startingPrice := nums[0]
	if startingPrice.Sign() <= 0 {
		return nil, domain.ErrInvalidPriceConfiguration
	}

	endingPrice := new(big.Int).Set(startingPrice)
	if kind == marketplace.KindDecaying {
		nums, err := domain.ToBigInt([]string{args.EndingPrice})
		if err != nil {
			return nil, domain.ErrInvalidPriceConfiguration
		}
		endingPrice = nums[0]
		// the curve must not rise, a flat curve is allowed
		if endingPrice.Sign() < 0 || endingPrice.Cmp(startingPrice) > 0 {
			return nil, domain.ErrInvalidPriceConfiguration
		}
	}

	if _, err := im.fee.Quote(ctx, fee.PayTokenId{ChainId: args.ChainId, Address: args.PaymentToken}); err != nil {
		return nil, err
	}

	contractId := asset.ContractId{ChainId: args.ChainId, Address: args.Collection.ToLower()}
	tokenType, err := im.asset.TokenType(ctx, contractId)
	if err != nil {
		return nil, err
	}
	if tokenType == domain.TokenType721 && args.Quantity != 1 {
		return nil, domain.ErrInvalidAmount
	}

	assetId := asset.Id{ChainId: args.ChainId, Collection: args.Collection.ToLower(), TokenId: args.TokenId}
	if err := im.asset.AssertOwnsAndApproved(ctx, assetId, seller, args.Quantity); err != nil {
		return nil, err
	}

	startingAt := time.Now()
	if args.StartingAt > 0 {
		startingAt = time.Unix(args.StartingAt, 0)
	}

	listing := &marketplace.Listing{
		ChainId:       args.ChainId,
		Collection:    args.Collection.ToLower(),
		TokenId:       args.TokenId,
		Seller:        seller.ToLower(),
		Kind:          kind,
		TokenType:     tokenType,
		PaymentToken:  args.PaymentToken.ToLower(),
		StartingPrice: startingPrice.String(),
		EndingPrice:   endingPrice.String(),
		StartingAt:    startingAt,
		Duration:      args.Duration,
		Quantity:      args.Quantity,
		CreatedAt:     time.Now(),
	}

	displayPrice, err := im.priceFormatter.GetDisplayPrice(ctx, args.ChainId, listing.PaymentToken, startingPrice)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"listing": listing,
		}).Error("priceFormatter.GetDisplayPrice failed")
		return nil, err
	}
	listing.DisplayPrice = displayPrice.String()

	err = im.q.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		prev, err := im.listing.FindOne(ctx, listing.ToId())
		if err != nil && err != domain.ErrNotFound {
			return err
		}
		// an accepted reserve listing is frozen until finalized
		if err == nil && prev.InProgress {
			return domain.ErrAuctionInProgress
		}

		if err := im.listing.Upsert(ctx, listing); err != nil {
			return err
		}
		return im.activity.Insert(ctx, &marketplace.Activity{
			ChainId:      listing.ChainId,
			Collection:   listing.Collection,
			TokenId:      listing.TokenId,
			Type:         marketplace.ActivityTypeList,
			Account:      listing.Seller,
			Quantity:     listing.Quantity,
			Price:        listing.StartingPrice,
			PaymentToken: listing.PaymentToken,
			DisplayPrice: listing.DisplayPrice,
			Time:         time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}
	return listing, nil
}

func (im *auctionUCImpl) FindAll(ctx bCtx.Ctx, opts ...marketplace.ListingFindAllOptionsFunc) ([]*marketplace.Listing, error) {
	return im.listing.FindAll(ctx, opts...)
}

func (im *auctionUCImpl) GetListing(ctx bCtx.Ctx, id marketplace.ListingId) (*marketplace.Listing, error) {
	id.Collection = id.Collection.ToLower()
	id.Seller = id.Seller.ToLower()
	return im.listing.FindOne(ctx, id)
}

func (im *auctionUCImpl) Bid(ctx bCtx.Ctx, args *marketplace.BidArgs) (*marketplace.TradeResult, error) {
	id := args.ListingId
	id.Collection = id.Collection.ToLower()
	id.Seller = id.Seller.ToLower()
	buyer := args.Buyer.ToLower()

	supplied, err := domain.ToBigInt([]string{args.Supplied})
	if err != nil {
		return nil, err
	}

	var result *marketplace.TradeResult
	err = im.q.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		listing, err := im.listing.FindOne(ctx, id)
		if err == domain.ErrNotFound {
			return domain.ErrInvalidAuction
		} else if err != nil {
			return err
		}

		now := time.Now()
		if listing.Kind == marketplace.KindReserve || listing.InProgress {
			return domain.ErrInvalidAuction
		}
		if now.Before(listing.StartingAt) {
			return domain.ErrInvalidAuction
		}
		if buyer.Equals(listing.Seller) {
			return domain.ErrInvalidCaller
		}
		if args.Quantity <= 0 || args.Quantity > listing.Quantity {
			return domain.ErrInvalidAmount
		}

		unitPrice, err := listing.PriceAt(now)
		if err != nil {
			return err
		}
		price := new(big.Int).Mul(unitPrice, big.NewInt(args.Quantity))

		assetId := asset.Id{ChainId: listing.ChainId, Collection: listing.Collection, TokenId: listing.TokenId}
		if err := im.asset.AssertOwnsAndApproved(ctx, assetId, listing.Seller, args.Quantity); err != nil {
			return err
		}

		dist, err := im.fee.Distribute(ctx, &fee.DistributeArgs{
			ChainId:      listing.ChainId,
			Collection:   listing.Collection,
			TokenId:      listing.TokenId,
			PaymentToken: listing.PaymentToken,
			Buyer:        buyer,
			Seller:       listing.Seller,
			Price:        price,
			Supplied:     supplied[0],
		})
		if err != nil {
			return err
		}

		if err := im.asset.Transfer(ctx, assetId, listing.Seller, buyer, args.Quantity); err != nil {
			return err
		}

		remaining := listing.Quantity - args.Quantity
		if remaining == 0 {
			if err := im.listing.Remove(ctx, id); err != nil {
				return err
			}
		} else {
			patchable := marketplace.ListingPatchable{Quantity: &remaining}
			if err := im.listing.Update(ctx, id, patchable); err != nil {
				return err
			}
		}

		totalFee := new(big.Int).Add(dist.PlatformAmount, dist.RoyaltyAmount)
		displayPrice, err := im.priceFormatter.GetDisplayPrice(ctx, listing.ChainId, listing.PaymentToken, price)
		if err != nil {
			return err
		}
		now = time.Now()
		buyActivity := &marketplace.Activity{
			ChainId:      listing.ChainId,
			Collection:   listing.Collection,
			TokenId:      listing.TokenId,
			Type:         marketplace.ActivityTypeBuy,
			Account:      buyer,
			Quantity:     args.Quantity,
			Price:        price.String(),
			PaymentToken: listing.PaymentToken,
			DisplayPrice: displayPrice.String(),
			TotalFee:     totalFee.String(),
			Time:         now,
		}
		if err := im.activity.Insert(ctx, buyActivity); err != nil {
			return err
		}
		soldActivity := &marketplace.Activity{
			ChainId:      listing.ChainId,
			Collection:   listing.Collection,
			TokenId:      listing.TokenId,
			Type:         marketplace.ActivityTypeSold,
			Account:      listing.Seller,
			Quantity:     args.Quantity,
			Price:        price.String(),
			PaymentToken: listing.PaymentToken,
			DisplayPrice: displayPrice.String(),
			TotalFee:     totalFee.String(),
			Time:         now,
		}
		if err := im.activity.Insert(ctx, soldActivity); err != nil {
			return err
		}

		result = &marketplace.TradeResult{
			ListingId: id,
			Buyer:     buyer,
			UnitPrice: unitPrice.String(),
			Quantity:  args.Quantity,
			TotalFee:  totalFee.String(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (im *auctionUCImpl) CancelListing(ctx bCtx.Ctx, caller domain.Address, id marketplace.ListingId) error {
	id.Collection = id.Collection.ToLower()
	id.Seller = id.Seller.ToLower()

	return im.q.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		listing, err := im.listing.FindOne(ctx, id)
		if err != nil {
			return err
		}
		if !caller.Equals(listing.Seller) {
			return domain.ErrUnauthorized
		}
		if listing.InProgress {
			return domain.ErrAuctionInProgress
		}
		if err := im.listing.Remove(ctx, id); err != nil {
			return err
		}
		return im.activity.Insert(ctx, &marketplace.Activity{
			ChainId:      listing.ChainId,
			Collection:   listing.Collection,
			TokenId:      listing.TokenId,
			Type:         marketplace.ActivityTypeCancelListing,
			Account:      listing.Seller,
			Quantity:     listing.Quantity,
			PaymentToken: listing.PaymentToken,
			Time:         time.Now(),
		})
	})
}
