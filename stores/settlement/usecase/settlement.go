package usecase

import (
	"math/big"
	"time"

	bCtx "github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/base/log"
	"github.com/x-xyz/exchange/base/ptr"
	"github.com/x-xyz/exchange/domain"
	"github.com/x-xyz/exchange/domain/asset"
	"github.com/x-xyz/exchange/domain/fee"
	"github.com/x-xyz/exchange/domain/marketplace"
	"github.com/x-xyz/exchange/domain/nonce"
	"github.com/x-xyz/exchange/domain/order"
	"github.com/x-xyz/exchange/service/query"
)

type settlementUCImpl struct {
	nonce    nonce.UseCase
	asset    asset.UseCase
	fee      fee.Engine
	activity marketplace.ActivityRepo
	listing  marketplace.ListingRepo
	q        query.Mongo
	// verifyingContract and salt pin the signing domain; orders signed for
	// another deployment never verify here
	verifyingContract domain.Address
	salt              string
	// settler is the only account allowed to finalize reserve auctions
	settler domain.Address
}

type SettlementUseCaseCfg struct {
	Nonce             nonce.UseCase
	Asset             asset.UseCase
	Fee               fee.Engine
	Activity          marketplace.ActivityRepo
	Listing           marketplace.ListingRepo
	Q                 query.Mongo
	VerifyingContract domain.Address
	Salt              string
	Settler           domain.Address
}

func NewSettlementUseCase(cfg *SettlementUseCaseCfg) order.UseCase {
	return &settlementUCImpl{
		nonce:             cfg.Nonce,
		asset:             cfg.Asset,
		fee:               cfg.Fee,
		activity:          cfg.Activity,
		listing:           cfg.Listing,
		q:                 cfg.Q,
		verifyingContract: cfg.VerifyingContract.ToLower(),
		salt:              cfg.Salt,
		settler:           cfg.Settler.ToLower(),
	}
}

func (im *settlementUCImpl) BuyFromSale(ctx bCtx.Ctx, caller domain.Address, od *order.Order, supplied string) (*marketplace.TradeResult, error) {
	if od.Kind != order.KindSale {
		return nil, domain.ErrBadParamInput
	}
	return im.buy(ctx, caller, od, supplied, nil)
}

func (im *settlementUCImpl) BuyFromPrivateSale(ctx bCtx.Ctx, caller domain.Address, od *order.Order, supplied string) (*marketplace.TradeResult, error) {
	if od.Kind != order.KindPrivateSale {
		return nil, domain.ErrBadParamInput
	}
	return im.buy(ctx, caller, od, supplied, nil)
}

func (im *settlementUCImpl) BuyFromReservedSale(ctx bCtx.Ctx, caller domain.Address, od *order.Order, supplied string) (*marketplace.TradeResult, error) {
	if od.Kind != order.KindReservedSale {
		return nil, domain.ErrBadParamInput
	}
	return im.buy(ctx, caller, od, supplied, nil)
}

func (im *settlementUCImpl) BuyFromDutchAuction(ctx bCtx.Ctx, caller domain.Address, od *order.Order, supplied string) (*marketplace.TradeResult, error) {
	if od.Kind != order.KindDutchAuction {
		return nil, domain.ErrBadParamInput
	}
	unitPrice, err := od.CurvePriceAt(time.Now())
	if err != nil {
		return nil, err
	}
	return im.buy(ctx, caller, od, supplied, unitPrice)
}

// buy settles a seller-signed order against the caller. unitPrice overrides
// the order's fixed price when the kind resolves it dynamically.
func (im *settlementUCImpl) buy(ctx bCtx.Ctx, caller domain.Address, od *order.Order, supplied string, unitPrice *big.Int) (*marketplace.TradeResult, error) {
	od.LowerCase()
	caller = caller.ToLower()

	if err := im.verifyOrder(ctx, od); err != nil {
		return nil, err
	}
	if _, err := im.fee.Quote(ctx, fee.PayTokenId{ChainId: od.ChainId, Address: od.PaymentToken}); err != nil {
		return nil, err
	}
	if caller.Equals(od.Signer) {
		return nil, domain.ErrInvalidCaller
	}
	switch od.Kind {
	case order.KindPrivateSale, order.KindReservedSale:
		if !caller.Equals(od.ReservedBuyer) {
			return nil, domain.ErrInvalidCaller
		}
	}

	if unitPrice == nil {
		nums, err := domain.ToBigInt([]string{od.Price})
		if err != nil {
			return nil, err
		}
		unitPrice = nums[0]
	}
	suppliedNums, err := domain.ToBigInt([]string{supplied})
	if err != nil {
		return nil, err
	}

	var result *marketplace.TradeResult
	err = im.q.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		res, err := im.settle(ctx, od, od.Signer, caller, unitPrice, suppliedNums[0])
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (im *settlementUCImpl) AcceptOffer(ctx bCtx.Ctx, seller domain.Address, od *order.Order) (*marketplace.TradeResult, error) {
	if od.Kind != order.KindOffer || od.IsForCollection {
		return nil, domain.ErrInvalidOffer
	}
	return im.accept(ctx, seller, od, od.TokenId)
}

func (im *settlementUCImpl) AcceptCollectionOffer(ctx bCtx.Ctx, seller domain.Address, od *order.Order, tokenId domain.TokenId) (*marketplace.TradeResult, error) {
	if od.Kind != order.KindCollectionOffer || !od.IsForCollection {
		return nil, domain.ErrInvalidOffer
	}
	return im.accept(ctx, seller, od, tokenId)
}

// accept settles a bidder-signed offer; the bidder pays through the token
// rail, pulled at acceptance time
func (im *settlementUCImpl) accept(ctx bCtx.Ctx, seller domain.Address, od *order.Order, tokenId domain.TokenId) (*marketplace.TradeResult, error) {
	od.LowerCase()
	seller = seller.ToLower()

	if err := im.verifyOrder(ctx, od); err != nil {
		return nil, err
	}
	// nothing can be pulled on the native rail, offers must name a token
	if od.PaymentToken.IsEmpty() {
		return nil, domain.ErrInvalidPaymentMethod
	}
	if _, err := im.fee.Quote(ctx, fee.PayTokenId{ChainId: od.ChainId, Address: od.PaymentToken}); err != nil {
		return nil, err
	}
	if seller.Equals(od.Signer) {
		return nil, domain.ErrInvalidCaller
	}

	nums, err := domain.ToBigInt([]string{od.Price})
	if err != nil {
		return nil, err
	}
	unitPrice := nums[0]

	offered := *od
	offered.TokenId = tokenId

	var result *marketplace.TradeResult
	err = im.q.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		res, err := im.settle(ctx, &offered, seller, offered.Signer, unitPrice, nil)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (im *settlementUCImpl) FinalizeReserveAuction(ctx bCtx.Ctx, caller domain.Address, ask, bid *order.Order) (*marketplace.TradeResult, error) {
	if !caller.ToLower().Equals(im.settler) {
		return nil, domain.ErrUnauthorized
	}
	ask.LowerCase()
	bid.LowerCase()

	if ask.Kind != order.KindReserveAuction || bid.Kind != order.KindReserveAuction {
		return nil, domain.ErrBadParamInput
	}
	// the two orders must describe the same trade from complementary sides
	if ask.IsBid || !bid.IsBid {
		return nil, domain.ErrInvalidConfiguration
	}
	if ask.ChainId != bid.ChainId ||
		!ask.Collection.Equals(bid.Collection) ||
		ask.TokenId != bid.TokenId ||
		!ask.PaymentToken.Equals(bid.PaymentToken) ||
		ask.Quantity != bid.Quantity {
		return nil, domain.ErrInvalidConfiguration
	}
	if ask.Signer.Equals(bid.Signer) {
		return nil, domain.ErrInvalidCaller
	}
	// bids settle through the token rail
	if ask.PaymentToken.IsEmpty() {
		return nil, domain.ErrInvalidPaymentMethod
	}

	if err := im.verifyOrder(ctx, ask); err != nil {
		return nil, err
	}
	if err := im.verifyOrder(ctx, bid); err != nil {
		return nil, err
	}

	nums, err := domain.ToBigInt([]string{ask.Price, bid.Price})
	if err != nil {
		return nil, err
	}
	takerCut, err := im.fee.TakerCutOf(ctx, fee.PayTokenId{ChainId: ask.ChainId, Address: ask.PaymentToken}, nums[0])
	if err != nil {
		return nil, err
	}
	// the winning bid must cover the reserve plus the buyer side fee
	if nums[1].Cmp(new(big.Int).Add(nums[0], takerCut)) < 0 {
		return nil, domain.ErrInvalidAmount
	}

	var result *marketplace.TradeResult
	err = im.q.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		// both sides burn their nonce before any value moves
		if err := im.nonce.MarkUsed(ctx, nonce.UsedNonceId{ChainId: bid.ChainId, Signer: bid.Signer, Nonce: bid.Nonce}); err != nil {
			return err
		}
		res, err := im.settle(ctx, ask, ask.Signer, bid.Signer, nums[1], nil)
		if err != nil {
			return err
		}
		// the book listing, when the auction went through one, is consumed
		err = im.listing.Remove(ctx, marketplace.ListingId{
			ChainId:    ask.ChainId,
			Collection: ask.Collection,
			TokenId:    ask.TokenId,
			Seller:     ask.Signer,
		})
		if err != nil && err != domain.ErrNotFound {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AcceptReserveBid freezes the seller's reserve listing once the settler has
// matched a bid against it; the listing can no longer be cancelled or
// replaced until the auction is finalized.
func (im *settlementUCImpl) AcceptReserveBid(ctx bCtx.Ctx, caller domain.Address, ask *order.Order) error {
	if !caller.ToLower().Equals(im.settler) {
		return domain.ErrUnauthorized
	}
	ask.LowerCase()
	if ask.Kind != order.KindReserveAuction || ask.IsBid {
		return domain.ErrBadParamInput
	}
	if err := im.verifyOrder(ctx, ask); err != nil {
		return err
	}

	id := marketplace.ListingId{
		ChainId:    ask.ChainId,
		Collection: ask.Collection,
		TokenId:    ask.TokenId,
		Seller:     ask.Signer,
	}
	listing, err := im.listing.FindOne(ctx, id)
	if err == domain.ErrNotFound {
		return domain.ErrInvalidAuction
	} else if err != nil {
		return err
	}
	if listing.Kind != marketplace.KindReserve {
		return domain.ErrInvalidAuction
	}
	return im.listing.Update(ctx, id, marketplace.ListingPatchable{InProgress: ptr.Bool(true)})
}

func (im *settlementUCImpl) CancelNonce(ctx bCtx.Ctx, signer domain.Address, chainId domain.ChainId, nonce_ string) error {
	return im.nonce.Cancel(ctx, signer, chainId, nonce_)
}

// verifyOrder runs the fixed precondition chain: signature, expiry, nonce
func (im *settlementUCImpl) verifyOrder(ctx bCtx.Ctx, od *order.Order) error {
	if od.Quantity <= 0 {
		return domain.ErrInvalidAmount
	}
	if err := od.VerifySignature(im.verifyingContract, im.salt); err != nil {
		ctx.WithFields(log.Fields{
			"err":    err,
			"signer": od.Signer,
			"nonce":  od.Nonce,
		}).Warn("order signature verification failed")
		return err
	}

	expiry, err := od.Expiry()
	if err != nil {
		return err
	}
	if !expiry.After(time.Now()) {
		switch od.Kind {
		case order.KindOffer, order.KindCollectionOffer:
			return domain.ErrOfferExpired
		case order.KindReserveAuction:
			return domain.ErrAuctionExpired
		}
		return domain.ErrOrderExpired
	}

	return im.nonce.AssertUnused(ctx, nonce.UsedNonceId{
		ChainId: od.ChainId,
		Signer:  od.Signer,
		Nonce:   od.Nonce,
	})
}

// settle consumes the order's nonce and moves value and asset. It must run
// inside a transaction; the nonce burn precedes every transfer so a replayed
// order aborts before funds move.
func (im *settlementUCImpl) settle(ctx bCtx.Ctx, od *order.Order, seller, buyer domain.Address, unitPrice, supplied *big.Int) (*marketplace.TradeResult, error) {
	if err := im.nonce.MarkUsed(ctx, nonce.UsedNonceId{ChainId: od.ChainId, Signer: od.Signer, Nonce: od.Nonce}); err != nil {
		return nil, err
	}

	contractId := asset.ContractId{ChainId: od.ChainId, Address: od.Collection}
	tokenType, err := im.asset.TokenType(ctx, contractId)
	if err != nil {
		return nil, err
	}
	if tokenType == domain.TokenType721 && od.Quantity != 1 {
		return nil, domain.ErrInvalidAmount
	}

	assetId := asset.Id{ChainId: od.ChainId, Collection: od.Collection, TokenId: od.TokenId}
	if err := im.asset.AssertOwnsAndApproved(ctx, assetId, seller, od.Quantity); err != nil {
		return nil, err
	}

	price := new(big.Int).Mul(unitPrice, big.NewInt(od.Quantity))
	args := &fee.DistributeArgs{
		ChainId:      od.ChainId,
		Collection:   od.Collection,
		TokenId:      od.TokenId,
		PaymentToken: od.PaymentToken,
		Buyer:        buyer,
		Seller:       seller,
		Price:        price,
		Supplied:     supplied,
	}
	dist, err := im.fee.Distribute(ctx, args)
	if err != nil {
		return nil, err
	}

	if err := im.asset.Transfer(ctx, assetId, seller, buyer, od.Quantity); err != nil {
		return nil, err
	}

	totalFee := new(big.Int).Add(dist.PlatformAmount, dist.RoyaltyAmount)
	now := time.Now()
	activityType := marketplace.ActivityTypeBuy
	switch od.Kind {
	case order.KindOffer, order.KindCollectionOffer:
		activityType = marketplace.ActivityTypeAcceptOffer
	case order.KindReserveAuction:
		activityType = marketplace.ActivityTypeSettleAuction
	}
	if err := im.activity.Insert(ctx, &marketplace.Activity{
		ChainId:      od.ChainId,
		Collection:   od.Collection,
		TokenId:      od.TokenId,
		Type:         activityType,
		Account:      buyer,
		Quantity:     od.Quantity,
		Price:        price.String(),
		PaymentToken: od.PaymentToken,
		TotalFee:     totalFee.String(),
		Time:         now,
	}); err != nil {
		return nil, err
	}
	if err := im.activity.Insert(ctx, &marketplace.Activity{
		ChainId:      od.ChainId,
		Collection:   od.Collection,
		TokenId:      od.TokenId,
		Type:         marketplace.ActivityTypeSold,
		Account:      seller,
		Quantity:     od.Quantity,
		Price:        price.String(),
		PaymentToken: od.PaymentToken,
		TotalFee:     totalFee.String(),
		Time:         now,
	}); err != nil {
		return nil, err
	}

	return &marketplace.TradeResult{
		ListingId: marketplace.ListingId{
			ChainId:    od.ChainId,
			Collection: od.Collection,
			TokenId:    od.TokenId,
			Seller:     seller,
		},
		Buyer:     buyer,
		UnitPrice: unitPrice.String(),
		Quantity:  od.Quantity,
		TotalFee:  totalFee.String(),
	}, nil
}
