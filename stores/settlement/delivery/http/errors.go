package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/exchange/base/delivery"
	"github.com/x-xyz/exchange/domain"
)

func resolveErrStatus(c echo.Context, err error) error {
	switch err {
	case domain.ErrBadParamInput,
		domain.ErrInvalidAmount,
		domain.ErrInvalidNumberFormat,
		domain.ErrInvalidPaymentMethod,
		domain.ErrInvalidOffer,
		domain.ErrInvalidAuction,
		domain.ErrInvalidConfiguration,
		domain.ErrOrderExpired,
		domain.ErrOfferExpired,
		domain.ErrAuctionExpired,
		domain.ErrNonceUsed,
		domain.ErrInsufficientCurrencySupplied:
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	case domain.ErrInvalidSignature:
		return delivery.MakeJsonResp(c, http.StatusUnauthorized, err)
	case domain.ErrInvalidCaller, domain.ErrUnauthorized, domain.ErrSellerNotAssetOwner:
		return delivery.MakeJsonResp(c, http.StatusForbidden, err)
	default:
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
}
