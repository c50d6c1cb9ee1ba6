package order

import (
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/domain"
	"github.com/x-xyz/exchange/domain/marketplace"
)

// Kind selects the struct schema an order is hashed and settled under
type Kind string

const (
	KindSale            Kind = "sale"
	KindPrivateSale     Kind = "privateSale"
	KindReservedSale    Kind = "reservedSale"
	KindOffer           Kind = "offer"
	KindCollectionOffer Kind = "collectionOffer"
	KindDutchAuction    Kind = "dutchAuction"
	KindReserveAuction  Kind = "reserveAuction"
)

func ToKind(name string) (Kind, error) {
	switch Kind(name) {
	case KindSale, KindPrivateSale, KindReservedSale, KindOffer,
		KindCollectionOffer, KindDutchAuction, KindReserveAuction:
		return Kind(name), nil
	}
	return "", domain.ErrBadParamInput
}

// Order is an off-chain signed order. It is a value object, never
// persisted: every settlement call carries the full order and consumes it
// against the nonce ledger.
type Order struct {
	ChainId      domain.ChainId `json:"chainId"`
	Kind         Kind           `json:"kind"`
	Signer       domain.Address `json:"signer"`
	Collection   domain.Address `json:"collection"`
	TokenId      domain.TokenId `json:"tokenId"`
	Quantity     int64          `json:"quantity"`
	PaymentToken domain.Address `json:"paymentToken"`
	// Price is the gross unit price; for dutch auctions it is the starting
	// price and EndingPrice, StartingAt and Duration describe the curve
	Price       string `json:"price"`
	EndingPrice string `json:"endingPrice"`
	// string formats in unix timestamp
	StartingAt string `json:"startingAt"`
	// Duration in seconds
	Duration string `json:"duration"`
	// ReservedBuyer restricts who may take a private or reserved sale
	ReservedBuyer domain.Address `json:"reservedBuyer"`
	// IsForCollection marks an offer valid against any token of the
	// collection
	IsForCollection bool `json:"isForCollection"`
	// IsBid marks the bid side of a reserve auction pair
	IsBid bool   `json:"isBid"`
	Nonce string `json:"nonce"`
	// string format in unix timestamp
	ExpiresAt string `json:"expiresAt"`
	V         int    `json:"v"`
	R         string `json:"r"`
	S         string `json:"s"`
}

func (o *Order) LowerCase() {
	o.Signer = o.Signer.ToLower()
	o.Collection = o.Collection.ToLower()
	o.PaymentToken = o.PaymentToken.ToLower()
	o.ReservedBuyer = o.ReservedBuyer.ToLower()
	o.R = strings.ToLower(o.R)
	o.S = strings.ToLower(o.S)
}

func (o *Order) Expiry() (time.Time, error) {
	ts, err := strconv.ParseInt(o.ExpiresAt, 10, 64)
	if err != nil {
		return time.Time{}, domain.ErrInvalidNumberFormat
	}
	return time.Unix(ts, 0), nil
}

// CurvePriceAt resolves a dutch auction order's unit price at `now`
func (o *Order) CurvePriceAt(now time.Time) (*big.Int, error) {
	nums, err := domain.ToBigInt([]string{o.Price, o.EndingPrice})
	if err != nil {
		return nil, err
	}
	startingAt, err := strconv.ParseInt(o.StartingAt, 10, 64)
	if err != nil {
		return nil, domain.ErrInvalidNumberFormat
	}
	duration, err := strconv.ParseInt(o.Duration, 10, 64)
	if err != nil {
		return nil, domain.ErrInvalidNumberFormat
	}
	return marketplace.CurrentPrice(nums[0], nums[1], time.Unix(startingAt, 0), time.Duration(duration)*time.Second, now), nil
}

// UseCase settles signed orders. Every method verifies signature, expiry
// and nonce in that fixed precondition order, consumes the nonce before any
// value transfer and runs as one atomic transaction.
type UseCase interface {
	// BuyFromSale settles a seller-signed fixed price sale against the
	// caller; the caller must not be the signer
	BuyFromSale(ctx ctx.Ctx, caller domain.Address, od *Order, supplied string) (*marketplace.TradeResult, error)
	// BuyFromPrivateSale additionally requires the caller to be the order's
	// reserved buyer
	BuyFromPrivateSale(ctx ctx.Ctx, caller domain.Address, od *Order, supplied string) (*marketplace.TradeResult, error)
	// BuyFromReservedSale settles the reserved variant of a signed sale
	BuyFromReservedSale(ctx ctx.Ctx, caller domain.Address, od *Order, supplied string) (*marketplace.TradeResult, error)
	// BuyFromDutchAuction settles a seller-signed decaying price sale at
	// the curve price of the call moment
	BuyFromDutchAuction(ctx ctx.Ctx, caller domain.Address, od *Order, supplied string) (*marketplace.TradeResult, error)
	// AcceptOffer settles a bidder-signed offer for one specific token;
	// funds are pulled from the bidder at acceptance time
	AcceptOffer(ctx ctx.Ctx, seller domain.Address, od *Order) (*marketplace.TradeResult, error)
	// AcceptCollectionOffer settles a bidder-signed collection wide offer
	// against the tokenId the seller supplies
	AcceptCollectionOffer(ctx ctx.Ctx, seller domain.Address, od *Order, tokenId domain.TokenId) (*marketplace.TradeResult, error)
	// AcceptReserveBid freezes the ask's book listing after the settler
	// matched a bid against it, pending finalization
	AcceptReserveBid(ctx ctx.Ctx, caller domain.Address, ask *Order) error
	// FinalizeReserveAuction matches a seller-signed reserve auction with a
	// bidder-signed bid; only the configured settler may call it
	FinalizeReserveAuction(ctx ctx.Ctx, caller domain.Address, ask, bid *Order) (*marketplace.TradeResult, error)
	// CancelNonce burns one of the caller's order nonces
	CancelNonce(ctx ctx.Ctx, signer domain.Address, chainId domain.ChainId, nonce string) error
}
