package domain

import "errors"

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("Internal Server Error")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("Your requested Item is not found")
	// ErrConflict will throw if the current action already exists
	ErrConflict = errors.New("Your Item already exist")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("Given Param is not valid")

	ErrInvalidNumberFormat = errors.New("invalid number format")
	ErrInvalidChainId      = errors.New("invalid chain id")
	ErrInvalidAddress      = errors.New("Invalid address")

	// settlement errors, one per revert reason of the exchange

	// ErrInvalidAuction occured when the listing is missing, consumed or has
	// the wrong type for the requested operation
	ErrInvalidAuction = errors.New("invalid auction")
	// ErrAuctionInProgress occured when recreating a reserve listing which
	// already has an accepted counter order in flight
	ErrAuctionInProgress = errors.New("auction in progress")
	// ErrSellerNotAssetOwner occured when the seller does not own or has not
	// approved the asset being listed or sold
	ErrSellerNotAssetOwner = errors.New("seller not asset owner")
	// ErrInvalidInterface occured when the asset contract kind does not match
	// the requested asset class
	ErrInvalidInterface = errors.New("invalid interface")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDuration  = errors.New("invalid duration")
	// ErrInvalidPriceConfiguration occured when starting and ending prices
	// violate the ordering required by the listing kind
	ErrInvalidPriceConfiguration = errors.New("invalid price configuration")
	ErrInvalidPaymentMethod      = errors.New("invalid payment method")
	// ErrInsufficientCurrencySupplied occured when the supplied or approved
	// funds do not cover price plus taker cut
	ErrInsufficientCurrencySupplied = errors.New("unsufficient currency supplied")
	ErrInvalidSignature             = errors.New("Invalid signature")
	// ErrNonceUsed occured when settling or cancelling with an order nonce
	// that has already been consumed
	ErrNonceUsed      = errors.New("nonce used")
	ErrOrderExpired   = errors.New("order expired")
	ErrOfferExpired   = errors.New("offer expired")
	ErrAuctionExpired = errors.New("auction expired")
	// ErrInvalidCaller occured when a caller-specific constraint fails, e.g.
	// the caller buying from its own sale or not being the reserved buyer
	ErrInvalidCaller = errors.New("invalid caller")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInvalidOffer  = errors.New("invalid offer")
	// ErrInvalidConfiguration occured when a configured fee or royalty share
	// exceeds its cap or does not leave a payable seller amount, or when the
	// two sides of a reserve auction do not describe the same trade
	ErrInvalidConfiguration = errors.New("invalid configuration")
)
