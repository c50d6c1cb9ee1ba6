package fee

import (
	"math/big"

	"github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/domain"
)

// PayToken is one supported payment method and its fee schedule. The zero
// address entry is the native currency.
type PayToken struct {
	ChainId       domain.ChainId `json:"chainId" bson:"chainId"`
	Address       domain.Address `json:"address" bson:"address"`
	Name          string         `json:"name" bson:"name"`
	Symbol        string         `json:"symbol" bson:"symbol"`
	TokenDecimals int32          `json:"tokenDecimals" bson:"tokenDecimals"`
	// MakerFeeBps is charged to the seller out of the gross price,
	// TakerFeeBps to the buyer on top of it; 10000 bps = 100%
	MakerFeeBps int64 `json:"makerFeeBps" bson:"makerFeeBps"`
	TakerFeeBps int64 `json:"takerFeeBps" bson:"takerFeeBps"`
	Enabled     bool  `json:"enabled" bson:"enabled"`
}

func (t *PayToken) ToId() PayTokenId {
	return PayTokenId{ChainId: t.ChainId, Address: t.Address}
}

type PayTokenId struct {
	ChainId domain.ChainId `bson:"chainId"`
	Address domain.Address `bson:"address"`
}

type PayTokenRepo interface {
	FindOne(ctx ctx.Ctx, id PayTokenId) (*PayToken, error)
	Upsert(ctx ctx.Ctx, token *PayToken) error
}

// Distribution reports where one settlement's value went. On every rail
// Paid == SellerAmount + PlatformAmount + RoyaltyAmount holds exactly.
type Distribution struct {
	Price          *big.Int
	Paid           *big.Int
	SellerAmount   *big.Int
	PlatformAmount *big.Int
	RoyaltyAmount  *big.Int
	RoyaltyTo      domain.Address
	TakerCut       *big.Int
}

// DistributeArgs describes one settlement payout
type DistributeArgs struct {
	ChainId      domain.ChainId
	Collection   domain.Address
	TokenId      domain.TokenId
	PaymentToken domain.Address
	Buyer        domain.Address
	Seller       domain.Address
	// Price is the gross price agreed for the trade
	Price *big.Int
	// Supplied is the value attached by the buyer; on the token rail it is
	// ignored and exactly price plus taker cut is pulled
	Supplied *big.Int
}

// Engine computes and pays out all shares of a settlement in one call; it
// must run inside the caller's transaction so a failed transfer undoes the
// whole payout.
type Engine interface {
	// Quote returns the fee schedule for a payment method, failing with
	// domain.ErrInvalidPaymentMethod for unsupported ones
	Quote(ctx ctx.Ctx, id PayTokenId) (*PayToken, error)
	// TakerCutOf computes the taker cut on a gross price
	TakerCutOf(ctx ctx.Ctx, id PayTokenId, price *big.Int) (*big.Int, error)
	Distribute(ctx ctx.Ctx, args *DistributeArgs) (*Distribution, error)
	// DistributeEscrowed pays out like Distribute but draws the supplied
	// amount from the payer's plain balance instead of pulling from the
	// buyer; used when funds were escrowed up front
	DistributeEscrowed(ctx ctx.Ctx, payer domain.Address, args *DistributeArgs) (*Distribution, error)
}
