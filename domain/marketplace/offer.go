package marketplace

import (
	"time"

	"github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/domain"
)

// Offer is the legacy escrow offer: the gross amount (price plus taker cut)
// is pulled into the exchange escrow balance when the offer is placed and
// released on acceptance or cancellation. At most one active offer exists
// per (bidder, collection, tokenId).
type Offer struct {
	// OfferId is allocated from a monotonic counter
	OfferId      int64          `json:"offerId" bson:"offerId"`
	ChainId      domain.ChainId `json:"chainId" bson:"chainId"`
	Collection   domain.Address `json:"collection" bson:"collection"`
	TokenId      domain.TokenId `json:"tokenId" bson:"tokenId"`
	Bidder       domain.Address `json:"bidder" bson:"bidder"`
	PaymentToken domain.Address `json:"paymentToken" bson:"paymentToken"`
	Price        string         `json:"price" bson:"price"`
	// PriceWithFee is the escrow-held gross amount, price plus taker cut
	PriceWithFee string    `json:"priceWithFee" bson:"priceWithFee"`
	ExpiresAt    time.Time `json:"expiresAt" bson:"expiresAt"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

func (o *Offer) ToId() OfferId {
	return OfferId{
		ChainId:    o.ChainId,
		Collection: o.Collection,
		TokenId:    o.TokenId,
		Bidder:     o.Bidder,
	}
}

type OfferId struct {
	ChainId    domain.ChainId `json:"chainId" bson:"chainId"`
	Collection domain.Address `json:"collection" bson:"collection"`
	TokenId    domain.TokenId `json:"tokenId" bson:"tokenId"`
	Bidder     domain.Address `json:"bidder" bson:"bidder"`
}

type OfferFindAllOptions struct {
	ChainId     *domain.ChainId
	Collection  *domain.Address
	TokenId     *domain.TokenId
	Bidder      *domain.Address
	ExpiresAtLT *time.Time
	Limit       *int32
}

type OfferFindAllOptionsFunc func(*OfferFindAllOptions) error

func GetOfferFindAllOptions(opts ...OfferFindAllOptionsFunc) (OfferFindAllOptions, error) {
	res := OfferFindAllOptions{}
	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func OfferWithChainId(chainId domain.ChainId) OfferFindAllOptionsFunc {
	return func(options *OfferFindAllOptions) error {
		options.ChainId = &chainId
		return nil
	}
}

func OfferWithCollection(collection domain.Address) OfferFindAllOptionsFunc {
	return func(options *OfferFindAllOptions) error {
		options.Collection = collection.ToLowerPtr()
		return nil
	}
}

func OfferWithTokenId(tokenId domain.TokenId) OfferFindAllOptionsFunc {
	return func(options *OfferFindAllOptions) error {
		options.TokenId = &tokenId
		return nil
	}
}

func OfferWithBidder(bidder domain.Address) OfferFindAllOptionsFunc {
	return func(options *OfferFindAllOptions) error {
		options.Bidder = bidder.ToLowerPtr()
		return nil
	}
}

func OfferWithExpiresAtLT(t time.Time) OfferFindAllOptionsFunc {
	return func(options *OfferFindAllOptions) error {
		options.ExpiresAtLT = &t
		return nil
	}
}

func OfferWithLimit(limit int32) OfferFindAllOptionsFunc {
	return func(options *OfferFindAllOptions) error {
		options.Limit = &limit
		return nil
	}
}

type OfferRepo interface {
	FindAll(ctx ctx.Ctx, opts ...OfferFindAllOptionsFunc) ([]*Offer, error)
	FindOne(ctx ctx.Ctx, id OfferId) (*Offer, error)
	Insert(ctx ctx.Ctx, offer *Offer) error
	Remove(ctx ctx.Ctx, id OfferId) error
	// NextOfferId advances and returns the monotonic offer counter
	NextOfferId(ctx ctx.Ctx, chainId domain.ChainId) (int64, error)
}

type PlaceOfferArgs struct {
	ChainId      domain.ChainId `json:"chainId"`
	Collection   domain.Address `json:"collection"`
	TokenId      domain.TokenId `json:"tokenId"`
	PaymentToken domain.Address `json:"paymentToken"`
	Price        string         `json:"price"`
	ExpiresAt    int64          `json:"expiresAt"`
}

// OfferUseCase manages escrow offers. Funds move in at placement and out at
// acceptance, cancellation or sweep; each method is one atomic transaction.
type OfferUseCase interface {
	PlaceOffer(ctx ctx.Ctx, bidder domain.Address, args *PlaceOfferArgs) (*Offer, error)
	CancelOffer(ctx ctx.Ctx, bidder domain.Address, id OfferId) error
	AcceptOffer(ctx ctx.Ctx, seller domain.Address, id OfferId) (*TradeResult, error)
	// RemoveExpiredOffers refunds and deletes offers past their deadline.
	// It is best effort and callable by anyone.
	RemoveExpiredOffers(ctx ctx.Ctx, chainId domain.ChainId) (int, error)
}
