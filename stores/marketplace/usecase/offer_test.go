package usecase

import (
	"time"

	"github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/domain"
	"github.com/x-xyz/exchange/domain/asset"
	"github.com/x-xyz/exchange/domain/ledger"
	"github.com/x-xyz/exchange/domain/marketplace"
)

func (s *marketplaceSuite) offerArgs() *marketplace.PlaceOfferArgs {
	return &marketplace.PlaceOfferArgs{
		ChainId:      chainId,
		Collection:   collection1155,
		TokenId:      "1",
		PaymentToken: weth,
		Price:        "200000",
		ExpiresAt:    time.Now().Add(time.Hour).Unix(),
	}
}

func (s *marketplaceSuite) TestPlaceOffer() {
	c := ctx.Background()

	offer, err := s.offers.PlaceOffer(c, buyer, s.offerArgs())
	s.Nil(err)
	s.Equal("206000", offer.PriceWithFee)

	// the gross amount moved into escrow at placement
	s.Equal(int64(1_000_000-206000), s.balanceOf(buyer))
	s.Equal(int64(206000), s.balanceOf(escrow))

	allowance, err := s.ledger.AllowanceOf(c, ledger.AllowanceId{ChainId: chainId, Token: weth, Owner: buyer})
	s.Nil(err)
	s.Equal(int64(1_000_000-206000), allowance.Int64())

	args := s.offerArgs()
	args.TokenId = "2"
	next, err := s.offers.PlaceOffer(c, buyer, args)
	s.Nil(err)
	s.Equal(offer.OfferId+1, next.OfferId)
}

func (s *marketplaceSuite) TestPlaceOfferValidation() {
	c := ctx.Background()

	args := s.offerArgs()
	args.PaymentToken = domain.EmptyAddress
	_, err := s.offers.PlaceOffer(c, buyer, args)
	s.Equal(domain.ErrInvalidPaymentMethod, err)

	args = s.offerArgs()
	args.Price = "0"
	_, err = s.offers.PlaceOffer(c, buyer, args)
	s.Equal(domain.ErrInvalidAmount, err)

	args = s.offerArgs()
	args.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	_, err = s.offers.PlaceOffer(c, buyer, args)
	s.Equal(domain.ErrInvalidOffer, err)

	// no allowance, nothing can be pulled into escrow
	args = s.offerArgs()
	_, err = s.offers.PlaceOffer(c, creator, args)
	s.Equal(domain.ErrInsufficientCurrencySupplied, err)
}

func (s *marketplaceSuite) TestPlaceOfferDuplicate() {
	c := ctx.Background()

	offer, err := s.offers.PlaceOffer(c, buyer, s.offerArgs())
	s.Nil(err)

	// at most one active offer per bidder and token
	_, err = s.offers.PlaceOffer(c, buyer, s.offerArgs())
	s.Equal(domain.ErrConflict, err)
	s.Equal(int64(1_000_000-206000), s.balanceOf(buyer))
	s.Equal(int64(206000), s.balanceOf(escrow))

	// cancelling frees the slot for a replacement
	s.Nil(s.offers.CancelOffer(c, buyer, offer.ToId()))
	_, err = s.offers.PlaceOffer(c, buyer, s.offerArgs())
	s.Nil(err)
}

func (s *marketplaceSuite) TestCancelOffer() {
	c := ctx.Background()

	offer, err := s.offers.PlaceOffer(c, buyer, s.offerArgs())
	s.Nil(err)

	s.Equal(domain.ErrInvalidCaller, s.offers.CancelOffer(c, seller, offer.ToId()))

	s.Nil(s.offers.CancelOffer(c, buyer, offer.ToId()))
	s.Equal(int64(1_000_000), s.balanceOf(buyer))
	s.Equal(int64(0), s.balanceOf(escrow))

	s.Equal(domain.ErrInvalidOffer, s.offers.CancelOffer(c, buyer, offer.ToId()))
}

func (s *marketplaceSuite) TestAcceptOffer() {
	c := ctx.Background()

	offer, err := s.offers.PlaceOffer(c, buyer, s.offerArgs())
	s.Nil(err)

	_, err = s.offers.AcceptOffer(c, buyer, offer.ToId())
	s.Equal(domain.ErrInvalidCaller, err)

	result, err := s.offers.AcceptOffer(c, seller, offer.ToId())
	s.Nil(err)
	s.Equal("200000", result.UnitPrice)
	s.Equal("70000", result.TotalFee)

	// escrow drained into the exact splits
	s.Equal(int64(0), s.balanceOf(escrow))
	s.Equal(int64(136000), s.balanceOf(seller))
	s.Equal(int64(50000), s.balanceOf(platform))
	s.Equal(int64(20000), s.balanceOf(creator))

	holdings, err := s.asset.Holdings(c, asset.Id{ChainId: chainId, Collection: collection1155, TokenId: "1"})
	s.Nil(err)
	s.Len(holdings, 2)

	_, err = s.offers.AcceptOffer(c, seller, offer.ToId())
	s.Equal(domain.ErrInvalidOffer, err)
}

func (s *marketplaceSuite) TestAcceptExpiredOffer() {
	c := ctx.Background()

	args := s.offerArgs()
	args.ExpiresAt = time.Now().Add(time.Second).Unix()
	offer, err := s.offers.PlaceOffer(c, buyer, args)
	s.Nil(err)

	time.Sleep(1200 * time.Millisecond)

	_, err = s.offers.AcceptOffer(c, seller, offer.ToId())
	s.Equal(domain.ErrOfferExpired, err)
}

func (s *marketplaceSuite) TestRemoveExpiredOffers() {
	c := ctx.Background()

	args := s.offerArgs()
	args.ExpiresAt = time.Now().Add(time.Second).Unix()
	_, err := s.offers.PlaceOffer(c, buyer, args)
	s.Nil(err)

	args = s.offerArgs()
	args.TokenId = "2"
	args.ExpiresAt = time.Now().Add(time.Second).Unix()
	_, err = s.offers.PlaceOffer(c, buyer, args)
	s.Nil(err)

	liveArgs := s.offerArgs()
	liveArgs.TokenId = "3"
	live, err := s.offers.PlaceOffer(c, buyer, liveArgs)
	s.Nil(err)

	time.Sleep(1200 * time.Millisecond)

	removed, err := s.offers.RemoveExpiredOffers(c, chainId)
	s.Nil(err)
	s.Equal(2, removed)

	// the live offer stays in escrow, the expired ones were refunded
	s.Equal(int64(206000), s.balanceOf(escrow))
	s.Equal(int64(1_000_000-206000), s.balanceOf(buyer))

	remaining, err := s.offer.FindAll(c, marketplace.OfferWithChainId(chainId))
	s.Nil(err)
	s.Len(remaining, 1)
	s.Equal(live.OfferId, remaining[0].OfferId)
}
