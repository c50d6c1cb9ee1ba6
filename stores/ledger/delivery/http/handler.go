package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	bCtx "github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/base/delivery"
	"github.com/x-xyz/exchange/domain"
	"github.com/x-xyz/exchange/domain/ledger"
	authMiddleware "github.com/x-xyz/exchange/stores/auth/delivery/http/middleware"
)

type handler struct {
	ledger ledger.UseCase
}

func New(e *echo.Echo, ledger ledger.UseCase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{ledger}

	g := e.Group("/ledger")

	g.GET("/balance/:chainId/:token/:owner", h.getBalance)
	g.GET("/allowance/:chainId/:token/:owner", h.getAllowance)
	g.POST("/deposit", h.deposit, authMiddleware.Auth())
	g.POST("/approve", h.approve, authMiddleware.Auth())
}

func (h *handler) getBalance(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	type params struct {
		ChainId domain.ChainId `param:"chainId"`
		Token   domain.Address `param:"token"`
		Owner   domain.Address `param:"owner"`
	}

	p := &params{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	amount, err := h.ledger.BalanceOf(ctx, ledger.BalanceId{ChainId: p.ChainId, Token: p.Token, Owner: p.Owner})
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, amount.String())
}

func (h *handler) getAllowance(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	type params struct {
		ChainId domain.ChainId `param:"chainId"`
		Token   domain.Address `param:"token"`
		Owner   domain.Address `param:"owner"`
	}

	p := &params{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	amount, err := h.ledger.AllowanceOf(ctx, ledger.AllowanceId{ChainId: p.ChainId, Token: p.Token, Owner: p.Owner})
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, amount.String())
}

func (h *handler) deposit(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	owner := _ctx.Get("address").(domain.Address)

	type params struct {
		ChainId domain.ChainId `json:"chainId"`
		Token   domain.Address `json:"token"`
		Amount  string         `json:"amount"`
	}

	p := &params{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	nums, err := domain.ToBigInt([]string{p.Amount})
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, err)
	}

	if err := h.ledger.Deposit(ctx, ledger.BalanceId{ChainId: p.ChainId, Token: p.Token, Owner: owner}, nums[0]); err != nil {
		switch err {
		case domain.ErrInvalidAmount:
			return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, err)
		default:
			return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
		}
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, "ok")
}

func (h *handler) approve(_ctx echo.Context) error {
	ctx := _ctx.Get("ctx").(bCtx.Ctx)
	owner := _ctx.Get("address").(domain.Address)

	type params struct {
		ChainId domain.ChainId `json:"chainId"`
		Token   domain.Address `json:"token"`
		Amount  string         `json:"amount"`
	}

	p := &params{}
	if err := _ctx.Bind(p); err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, "invalid params")
	}

	nums, err := domain.ToBigInt([]string{p.Amount})
	if err != nil {
		return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, err)
	}

	if err := h.ledger.Approve(ctx, ledger.AllowanceId{ChainId: p.ChainId, Token: p.Token, Owner: owner}, nums[0]); err != nil {
		switch err {
		case domain.ErrInvalidAmount, domain.ErrInvalidPaymentMethod:
			return delivery.MakeJsonResp(_ctx, http.StatusBadRequest, err)
		default:
			return delivery.MakeJsonResp(_ctx, http.StatusInternalServerError, err)
		}
	}
	return delivery.MakeJsonResp(_ctx, http.StatusOK, "ok")
}
