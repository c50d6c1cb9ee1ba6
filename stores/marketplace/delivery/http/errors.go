package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/exchange/base/delivery"
	"github.com/x-xyz/exchange/domain"
)

func resolveErrStatus(c echo.Context, err error) error {
	switch err {
	case domain.ErrNotFound:
		return delivery.MakeJsonResp(c, http.StatusNotFound, err)
	case domain.ErrBadParamInput,
		domain.ErrInvalidAmount,
		domain.ErrInvalidDuration,
		domain.ErrInvalidPriceConfiguration,
		domain.ErrInvalidPaymentMethod,
		domain.ErrInvalidNumberFormat,
		domain.ErrInvalidAuction,
		domain.ErrInvalidOffer,
		domain.ErrOfferExpired,
		domain.ErrAuctionInProgress,
		domain.ErrInsufficientCurrencySupplied:
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	case domain.ErrInvalidCaller, domain.ErrUnauthorized, domain.ErrSellerNotAssetOwner:
		return delivery.MakeJsonResp(c, http.StatusForbidden, err)
	case domain.ErrConflict:
		return delivery.MakeJsonResp(c, http.StatusConflict, err)
	default:
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
}
