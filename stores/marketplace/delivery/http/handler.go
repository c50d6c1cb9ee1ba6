package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	bCtx "github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/base/delivery"
	"github.com/x-xyz/exchange/domain"
	"github.com/x-xyz/exchange/domain/marketplace"
	authMiddleware "github.com/x-xyz/exchange/stores/auth/delivery/http/middleware"
)

type handler struct {
	listing   marketplace.UseCase
	offer     marketplace.OfferUseCase
	offerRepo marketplace.OfferRepo
	activity  marketplace.ActivityRepo
}

func New(
	e *echo.Echo,
	listing marketplace.UseCase,
	offer marketplace.OfferUseCase,
	offerRepo marketplace.OfferRepo,
	activity marketplace.ActivityRepo,
	authMiddleware *authMiddleware.AuthMiddleware,
) {
	h := &handler{listing, offer, offerRepo, activity}

	g := e.Group("/marketplace")

	g.GET("/listings", h.getListings)
	g.GET("/listing/:chainId/:collection/:tokenId/:seller", h.getListing)
	g.POST("/listings", h.createListing, authMiddleware.Auth())
	g.POST("/listings/bid", h.bid, authMiddleware.Auth())
	g.DELETE("/listing/:chainId/:collection/:tokenId/:seller", h.cancelListing, authMiddleware.Auth())

	g.GET("/offers", h.getOffers)
	g.POST("/offers", h.placeOffer, authMiddleware.Auth())
	g.POST("/offers/accept", h.acceptOffer, authMiddleware.Auth())
	g.DELETE("/offers", h.cancelOffer, authMiddleware.Auth())
	g.POST("/offers/removeExpired", h.removeExpiredOffers)

	g.GET("/activities", h.getActivities)
}

func (h *handler) getListings(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	type params struct {
		ChainId    *domain.ChainId   `query:"chainId"`
		Collection *domain.Address   `query:"collection"`
		TokenId    *domain.TokenId   `query:"tokenId"`
		Seller     *domain.Address   `query:"seller"`
		Kind       *marketplace.Kind `query:"kind"`
		Offset     int32             `query:"offset"`
		Limit      int32             `query:"limit"`
	}

	p := &params{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	opts := []marketplace.ListingFindAllOptionsFunc{
		marketplace.ListingWithPagination(p.Offset, p.Limit),
	}
	if p.ChainId != nil {
		opts = append(opts, marketplace.ListingWithChainId(*p.ChainId))
	}
	if p.Collection != nil {
		opts = append(opts, marketplace.ListingWithCollection(*p.Collection))
	}
	if p.TokenId != nil {
		opts = append(opts, marketplace.ListingWithTokenId(*p.TokenId))
	}
	if p.Seller != nil {
		opts = append(opts, marketplace.ListingWithSeller(*p.Seller))
	}
	if p.Kind != nil {
		opts = append(opts, marketplace.ListingWithKind(*p.Kind))
	}

	res, err := h.listing.FindAll(ctx, opts...)
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, res)
}

func (h *handler) getListing(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	type params struct {
		ChainId    domain.ChainId `param:"chainId"`
		Collection domain.Address `param:"collection"`
		TokenId    domain.TokenId `param:"tokenId"`
		Seller     domain.Address `param:"seller"`
	}

	p := &params{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	res, err := h.listing.GetListing(ctx, marketplace.ListingId{
		ChainId:    p.ChainId,
		Collection: p.Collection,
		TokenId:    p.TokenId,
		Seller:     p.Seller,
	})
	if err == domain.ErrNotFound {
		return delivery.MakeJsonResp(_ctx, http.StatusNotFound, err)
	} else if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, res)
}

func (h *handler) createListing(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	seller := _ctx.Get("address").(domain.Address)

	type params struct {
		marketplace.CreateListingArgs
		Kind marketplace.Kind `json:"kind"`
	}

	p := &params{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}
	if p.Kind == "" {
		p.Kind = marketplace.KindFixed
	}

	res, err := h.listing.CreateListing(ctx, seller, &p.CreateListingArgs, p.Kind)
	if err != nil {
		return resolveErrStatus(_ctx, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusCreated, res)
}

func (h *handler) bid(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	buyer := _ctx.Get("address").(domain.Address)

	type params struct {
		ChainId    domain.ChainId `json:"chainId"`
		Collection domain.Address `json:"collection"`
		TokenId    domain.TokenId `json:"tokenId"`
		Seller     domain.Address `json:"seller"`
		Quantity   int64          `json:"quantity"`
		Supplied   string         `json:"supplied"`
	}

	p := &params{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	res, err := h.listing.Bid(ctx, &marketplace.BidArgs{
		ListingId: marketplace.ListingId{
			ChainId:    p.ChainId,
			Collection: p.Collection,
			TokenId:    p.TokenId,
			Seller:     p.Seller,
		},
		Buyer:    buyer,
		Quantity: p.Quantity,
		Supplied: p.Supplied,
	})
	if err != nil {
		return resolveErrStatus(_ctx, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, res)
}

func (h *handler) cancelListing(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	caller := _ctx.Get("address").(domain.Address)

	type params struct {
		ChainId    domain.ChainId `param:"chainId"`
		Collection domain.Address `param:"collection"`
		TokenId    domain.TokenId `param:"tokenId"`
		Seller     domain.Address `param:"seller"`
	}

	p := &params{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	err := h.listing.CancelListing(ctx, caller, marketplace.ListingId{
		ChainId:    p.ChainId,
		Collection: p.Collection,
		TokenId:    p.TokenId,
		Seller:     p.Seller,
	})
	if err != nil {
		return resolveErrStatus(_ctx, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, "ok")
}

func (h *handler) getOffers(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	type params struct {
		ChainId    *domain.ChainId `query:"chainId"`
		Collection *domain.Address `query:"collection"`
		TokenId    *domain.TokenId `query:"tokenId"`
		Bidder     *domain.Address `query:"bidder"`
		Limit      *int32          `query:"limit"`
	}

	p := &params{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	opts := []marketplace.OfferFindAllOptionsFunc{}
	if p.ChainId != nil {
		opts = append(opts, marketplace.OfferWithChainId(*p.ChainId))
	}
	if p.Collection != nil {
		opts = append(opts, marketplace.OfferWithCollection(*p.Collection))
	}
	if p.TokenId != nil {
		opts = append(opts, marketplace.OfferWithTokenId(*p.TokenId))
	}
	if p.Bidder != nil {
		opts = append(opts, marketplace.OfferWithBidder(*p.Bidder))
	}
	if p.Limit != nil {
		opts = append(opts, marketplace.OfferWithLimit(*p.Limit))
	}

	res, err := h.offerRepo.FindAll(ctx, opts...)
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, res)
}

func (h *handler) placeOffer(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	bidder := _ctx.Get("address").(domain.Address)

	p := &marketplace.PlaceOfferArgs{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	res, err := h.offer.PlaceOffer(ctx, bidder, p)
	if err != nil {
		return resolveErrStatus(_ctx, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusCreated, res)
}

func (h *handler) acceptOffer(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	seller := _ctx.Get("address").(domain.Address)

	p := &marketplace.OfferId{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	res, err := h.offer.AcceptOffer(ctx, seller, *p)
	if err != nil {
		return resolveErrStatus(_ctx, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, res)
}

func (h *handler) cancelOffer(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	bidder := _ctx.Get("address").(domain.Address)

	p := &marketplace.OfferId{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}
	p.Bidder = bidder

	if err := h.offer.CancelOffer(ctx, bidder, *p); err != nil {
		return resolveErrStatus(_ctx, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, "ok")
}

func (h *handler) removeExpiredOffers(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	type params struct {
		ChainId domain.ChainId `query:"chainId"`
	}

	p := &params{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	removed, err := h.offer.RemoveExpiredOffers(ctx, p.ChainId)
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
	}
	res := struct {
		Removed int `json:"removed"`
	}{removed}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, res)
}

func (h *handler) getActivities(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	type params struct {
		ChainId    *domain.ChainId           `query:"chainId"`
		Collection *domain.Address           `query:"collection"`
		TokenId    *domain.TokenId           `query:"tokenId"`
		Account    *domain.Address           `query:"account"`
		Type       *marketplace.ActivityType `query:"type"`
		Offset     int32                     `query:"offset"`
		Limit      int32                     `query:"limit"`
	}

	p := &params{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	opts := []marketplace.ActivityFindAllOptionsFunc{
		marketplace.ActivityWithPagination(p.Offset, p.Limit),
	}
	if p.ChainId != nil {
		opts = append(opts, marketplace.ActivityWithChainId(*p.ChainId))
	}
	if p.Collection != nil {
		opts = append(opts, marketplace.ActivityWithCollection(*p.Collection))
	}
	if p.TokenId != nil {
		opts = append(opts, marketplace.ActivityWithTokenId(*p.TokenId))
	}
	if p.Account != nil {
		opts = append(opts, marketplace.ActivityWithAccount(*p.Account))
	}
	if p.Type != nil {
		opts = append(opts, marketplace.ActivityWithType(*p.Type))
	}

	res, err := h.activity.FindAll(ctx, opts...)
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, res)
}
