package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	bCtx "github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/base/delivery"
	"github.com/x-xyz/exchange/domain"
	"github.com/x-xyz/exchange/domain/fee"
	authMiddleware "github.com/x-xyz/exchange/stores/auth/delivery/http/middleware"
)

type handler struct {
	payToken fee.PayTokenRepo
	royalty  fee.RoyaltyUseCase
}

func New(
	e *echo.Echo,
	payToken fee.PayTokenRepo,
	royalty fee.RoyaltyUseCase,
	authMiddleware *authMiddleware.AuthMiddleware,
) {
	h := &handler{payToken, royalty}

	g := e.Group("/fee")

	g.GET("/payTokens/:chainId/:address", h.getPayToken)
	g.POST("/payTokens", h.upsertPayToken, authMiddleware.Auth(), authMiddleware.IsAdmin())

	g.GET("/royalties/:chainId/:collection/:tokenId", h.resolveRoyalty)
	g.POST("/royalties/collection", h.setCollectionRoyalty, authMiddleware.Auth())
	g.POST("/royalties/token", h.setTokenRoyalty, authMiddleware.Auth())
}

func (h *handler) getPayToken(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	type params struct {
		ChainId domain.ChainId `param:"chainId"`
		Address domain.Address `param:"address"`
	}

	p := &params{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	token, err := h.payToken.FindOne(ctx, fee.PayTokenId{ChainId: p.ChainId, Address: p.Address.ToLower()})
	if err == domain.ErrNotFound {
		return delivery.MakeJsonResp(_ctx, http.StatusNotFound, err)
	} else if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, token)
}

func (h *handler) upsertPayToken(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)

	p := &fee.PayToken{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}
	p.Address = p.Address.ToLower()

	if err := h.payToken.Upsert(ctx, p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusCreated, p)
}

func (h *handler) resolveRoyalty(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	type params struct {
		ChainId    domain.ChainId `param:"chainId"`
		Collection domain.Address `param:"collection"`
		TokenId    domain.TokenId `param:"tokenId"`
	}

	p := &params{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	royalty, err := h.royalty.Resolve(ctx, p.ChainId, p.Collection, p.TokenId)
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
	}
	if royalty == nil {
		return delivery.MakeJsonResp(_ctx, http.StatusNotFound, domain.ErrNotFound)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, royalty)
}

func (h *handler) setCollectionRoyalty(_ctx echo.Context) error {
	return h.setRoyalty(_ctx, h.royalty.SetCollectionRoyalty)
}

func (h *handler) setTokenRoyalty(_ctx echo.Context) error {
	return h.setRoyalty(_ctx, h.royalty.SetTokenRoyalty)
}

func (h *handler) setRoyalty(_ctx echo.Context, set func(bCtx.Ctx, domain.Address, *fee.Royalty) error) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	caller := _ctx.Get("address").(domain.Address)

	p := &fee.Royalty{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	if err := set(ctx, caller, p); err != nil {
		switch err {
		case domain.ErrUnauthorized:
			return delivery.MakeJsonResp(_ctx, http.StatusForbidden, err)
		case domain.ErrBadParamInput, domain.ErrInvalidConfiguration, domain.ErrNotFound:
			return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, err)
		default:
			return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
		}
	}
	return delivery.MakeJsonResp(_ctx, http.StatusCreated, p)
}
