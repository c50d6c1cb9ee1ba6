package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	bCtx "github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/base/delivery"
	"github.com/x-xyz/exchange/domain"
	"github.com/x-xyz/exchange/domain/asset"
	authMiddleware "github.com/x-xyz/exchange/stores/auth/delivery/http/middleware"
)

type handler struct {
	asset asset.UseCase
}

func New(e *echo.Echo, asset asset.UseCase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{asset}

	g := e.Group("/assets")

	g.GET("/holdings/:chainId/:collection/:tokenId", h.getHoldings)
	g.POST("/contracts", h.registerContract, authMiddleware.Auth(), authMiddleware.IsAdmin())
	g.POST("/mint", h.mint, authMiddleware.Auth(), authMiddleware.IsAdmin())
	g.POST("/approval", h.setApproval, authMiddleware.Auth())
}

func (h *handler) getHoldings(_ctx echo.Context) error {
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

	holdings, err := h.asset.Holdings(ctx, asset.Id{ChainId: p.ChainId, Collection: p.Collection, TokenId: p.TokenId})
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, holdings)
}

func (h *handler) registerContract(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)

	type params struct {
		ChainId   domain.ChainId   `json:"chainId"`
		Address   domain.Address   `json:"address"`
		TokenType domain.TokenType `json:"tokenType"`
		Owner     domain.Address   `json:"owner"`
	}

	p := &params{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	contract := &asset.Contract{
		ChainId:   p.ChainId,
		Address:   p.Address,
		TokenType: p.TokenType,
		Owner:     p.Owner,
	}
	if err := h.asset.RegisterContract(ctx, contract); err == domain.ErrInvalidInterface {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, err)
	} else if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusCreated, contract)
}

func (h *handler) mint(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)

	type params struct {
		ChainId    domain.ChainId `json:"chainId"`
		Collection domain.Address `json:"collection"`
		TokenId    domain.TokenId `json:"tokenId"`
		Owner      domain.Address `json:"owner"`
		Quantity   int64          `json:"quantity"`
	}

	p := &params{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	id := asset.Id{ChainId: p.ChainId, Collection: p.Collection, TokenId: p.TokenId}
	if err := h.asset.Mint(ctx, id, p.Owner, p.Quantity); err != nil {
		switch err {
		case domain.ErrInvalidAmount, domain.ErrInvalidInterface, domain.ErrNotFound:
			return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, err)
		case domain.ErrConflict:
			return delivery.MakeJsonResp(_ctx, http.StatusConflict, err)
		default:
			return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
		}
	}
	return delivery.MakeJsonResp(_ctx, http.StatusCreated, "ok")
}

func (h *handler) setApproval(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	owner := _ctx.Get("address").(domain.Address)

	type params struct {
		ChainId    domain.ChainId `json:"chainId"`
		Collection domain.Address `json:"collection"`
		Approved   bool           `json:"approved"`
	}

	p := &params{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	if err := h.asset.SetApproval(ctx, p.ChainId, p.Collection, owner, p.Approved); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, "ok")
}
