package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	bCtx "github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/base/delivery"
	"github.com/x-xyz/exchange/domain"
	"github.com/x-xyz/exchange/domain/marketplace"
	"github.com/x-xyz/exchange/domain/order"
	authMiddleware "github.com/x-xyz/exchange/stores/auth/delivery/http/middleware"
)

type handler struct {
	settlement order.UseCase
}

func New(e *echo.Echo, settlement order.UseCase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{settlement}

	g := e.Group("/settlement", authMiddleware.Auth())

	g.POST("/buy", h.buy)
	g.POST("/acceptOffer", h.acceptOffer)
	g.POST("/acceptReserveBid", h.acceptReserveBid)
	g.POST("/finalizeAuction", h.finalizeAuction)
	g.POST("/cancelNonce", h.cancelNonce)
}

// buy dispatches on the order kind so one endpoint serves every
// buyer-initiated settlement path
func (h *handler) buy(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	caller := _ctx.Get("address").(domain.Address)

	type params struct {
		Order    order.Order `json:"order"`
		Supplied string      `json:"supplied"`
	}

	p := &params{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	var res *marketplace.TradeResult
	var err error
	switch p.Order.Kind {
	case order.KindSale:
		res, err = h.settlement.BuyFromSale(ctx, caller, &p.Order, p.Supplied)
	case order.KindPrivateSale:
		res, err = h.settlement.BuyFromPrivateSale(ctx, caller, &p.Order, p.Supplied)
	case order.KindReservedSale:
		res, err = h.settlement.BuyFromReservedSale(ctx, caller, &p.Order, p.Supplied)
	case order.KindDutchAuction:
		res, err = h.settlement.BuyFromDutchAuction(ctx, caller, &p.Order, p.Supplied)
	default:
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if err != nil {
		return resolveErrStatus(_ctx, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, res)
}

func (h *handler) acceptOffer(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	seller := _ctx.Get("address").(domain.Address)

	type params struct {
		Order order.Order `json:"order"`
		// TokenId selects the token sold into a collection wide offer
		TokenId domain.TokenId `json:"tokenId"`
	}

	p := &params{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	var res *marketplace.TradeResult
	var err error
	switch p.Order.Kind {
	case order.KindOffer:
		res, err = h.settlement.AcceptOffer(ctx, seller, &p.Order)
	case order.KindCollectionOffer:
		res, err = h.settlement.AcceptCollectionOffer(ctx, seller, &p.Order, p.TokenId)
	default:
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if err != nil {
		return resolveErrStatus(_ctx, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, res)
}

func (h *handler) acceptReserveBid(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	caller := _ctx.Get("address").(domain.Address)

	type params struct {
		Ask order.Order `json:"ask"`
	}

	p := &params{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	if err := h.settlement.AcceptReserveBid(ctx, caller, &p.Ask); err != nil {
		return resolveErrStatus(_ctx, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, "ok")
}

func (h *handler) finalizeAuction(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	caller := _ctx.Get("address").(domain.Address)

	type params struct {
		Ask order.Order `json:"ask"`
		Bid order.Order `json:"bid"`
	}

	p := &params{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	res, err := h.settlement.FinalizeReserveAuction(ctx, caller, &p.Ask, &p.Bid)
	if err != nil {
		return resolveErrStatus(_ctx, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, res)
}

func (h *handler) cancelNonce(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	signer := _ctx.Get("address").(domain.Address)

	type params struct {
		ChainId domain.ChainId `json:"chainId"`
		Nonce   string         `json:"nonce"`
	}

	p := &params{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	if err := h.settlement.CancelNonce(ctx, signer, p.ChainId, p.Nonce); err != nil {
		return resolveErrStatus(_ctx, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, "ok")
}
