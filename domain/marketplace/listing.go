package marketplace

import (
	"math/big"
	"time"

	"github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/domain"
)

// Kind distinguishes how a listing resolves to a price
type Kind string

const (
	// KindFixed keeps the price constant for the whole duration
	KindFixed Kind = "fixed"
	// KindDecaying interpolates from starting price down to ending price
	KindDecaying Kind = "decaying"
	// KindReserve has no on-book price, it is resolved by the settler
	// matching a signed bid later
	KindReserve Kind = "reserve"
)

// Listing is an active sale offer for a quantity of an asset. One listing
// exists per (chainId, collection, tokenId, seller); recreating over the same
// key replaces the previous listing.
type Listing struct {
	ChainId       domain.ChainId   `json:"chainId" bson:"chainId"`
	Collection    domain.Address   `json:"collection" bson:"collection"`
	TokenId       domain.TokenId   `json:"tokenId" bson:"tokenId"`
	Seller        domain.Address   `json:"seller" bson:"seller"`
	Kind          Kind             `json:"kind" bson:"kind"`
	TokenType     domain.TokenType `json:"tokenType" bson:"tokenType"`
	PaymentToken  domain.Address   `json:"paymentToken" bson:"paymentToken"`
	StartingPrice string           `json:"startingPrice" bson:"startingPrice"`
	EndingPrice   string           `json:"endingPrice" bson:"endingPrice"`
	StartingAt    time.Time        `json:"startingAt" bson:"startingAt"`
	// Duration is stored in seconds
	Duration int64 `json:"duration" bson:"duration"`
	Quantity int64 `json:"quantity" bson:"quantity"`
	// InProgress marks a reserve listing whose counter order has been
	// accepted by the settler and is waiting for finalization
	InProgress bool `json:"inProgress" bson:"inProgress"`

	DisplayPrice string    `json:"displayPrice" bson:"displayPrice"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

func (l *Listing) ToId() ListingId {
	return ListingId{
		ChainId:    l.ChainId,
		Collection: l.Collection,
		TokenId:    l.TokenId,
		Seller:     l.Seller,
	}
}

func (l *Listing) Deadline() time.Time {
	return l.StartingAt.Add(time.Duration(l.Duration) * time.Second)
}

// PriceAt resolves the unit price of the listing at the given moment.
// A listing past its deadline stays biddable at the ending price, expiry is
// a price floor rather than an automatic removal.
func (l *Listing) PriceAt(now time.Time) (*big.Int, error) {
	nums, err := domain.ToBigInt([]string{l.StartingPrice, l.EndingPrice})
	if err != nil {
		return nil, err
	}
	return CurrentPrice(nums[0], nums[1], l.StartingAt, time.Duration(l.Duration)*time.Second, now), nil
}

type ListingId struct {
	ChainId    domain.ChainId `json:"chainId" bson:"chainId"`
	Collection domain.Address `json:"collection" bson:"collection"`
	TokenId    domain.TokenId `json:"tokenId" bson:"tokenId"`
	Seller     domain.Address `json:"seller" bson:"seller"`
}

type ListingPatchable struct {
	Quantity     *int64  `bson:"quantity,omitempty"`
	InProgress   *bool   `bson:"inProgress,omitempty"`
	DisplayPrice *string `bson:"displayPrice,omitempty"`
}

type ListingFindAllOptions struct {
	ChainId    *domain.ChainId
	Collection *domain.Address
	TokenId    *domain.TokenId
	Seller     *domain.Address
	Kind       *Kind
	Offset     *int32
	Limit      *int32
}

type ListingFindAllOptionsFunc func(*ListingFindAllOptions) error

func GetListingFindAllOptions(opts ...ListingFindAllOptionsFunc) (ListingFindAllOptions, error) {
	res := ListingFindAllOptions{}
	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func ListingWithChainId(chainId domain.ChainId) ListingFindAllOptionsFunc {
	return func(options *ListingFindAllOptions) error {
		options.ChainId = &chainId
		return nil
	}
}

func ListingWithCollection(collection domain.Address) ListingFindAllOptionsFunc {
	return func(options *ListingFindAllOptions) error {
		options.Collection = collection.ToLowerPtr()
		return nil
	}
}

func ListingWithTokenId(tokenId domain.TokenId) ListingFindAllOptionsFunc {
	return func(options *ListingFindAllOptions) error {
		options.TokenId = &tokenId
		return nil
	}
}

func ListingWithSeller(seller domain.Address) ListingFindAllOptionsFunc {
	return func(options *ListingFindAllOptions) error {
		options.Seller = seller.ToLowerPtr()
		return nil
	}
}

func ListingWithKind(kind Kind) ListingFindAllOptionsFunc {
	return func(options *ListingFindAllOptions) error {
		options.Kind = &kind
		return nil
	}
}

func ListingWithPagination(offset, limit int32) ListingFindAllOptionsFunc {
	return func(options *ListingFindAllOptions) error {
		options.Offset = &offset
		options.Limit = &limit
		return nil
	}
}

type ListingRepo interface {
	FindAll(ctx ctx.Ctx, opts ...ListingFindAllOptionsFunc) ([]*Listing, error)
	FindOne(ctx ctx.Ctx, id ListingId) (*Listing, error)
	Upsert(ctx ctx.Ctx, listing *Listing) error
	Update(ctx ctx.Ctx, id ListingId, patchable ListingPatchable) error
	Remove(ctx ctx.Ctx, id ListingId) error
}

// CreateListingArgs carries every field a seller submits when listing
type CreateListingArgs struct {
	ChainId       domain.ChainId `json:"chainId"`
	Collection    domain.Address `json:"collection"`
	TokenId       domain.TokenId `json:"tokenId"`
	PaymentToken  domain.Address `json:"paymentToken"`
	StartingPrice string         `json:"startingPrice"`
	EndingPrice   string         `json:"endingPrice"`
	StartingAt    int64          `json:"startingAt"`
	Duration      int64          `json:"duration"`
	Quantity      int64          `json:"quantity"`
}

// BidArgs carries a buyer's bid against an on-book listing. Supplied is the
// value attached on the native rail, or the amount the buyer expects to be
// pulled on the token rail.
type BidArgs struct {
	ListingId ListingId
	Buyer     domain.Address
	Quantity  int64
	Supplied  string
}

// TradeResult reports a settled bid back to the caller
type TradeResult struct {
	ListingId ListingId      `json:"listingId"`
	Buyer     domain.Address `json:"buyer"`
	UnitPrice string         `json:"unitPrice"`
	Quantity  int64          `json:"quantity"`
	TotalFee  string         `json:"totalFee"`
}

// UseCase is the auction book: it owns on-book listing state and settles
// bids against it. Every method is one atomic transaction.
type UseCase interface {
	CreateListing(ctx ctx.Ctx, seller domain.Address, args *CreateListingArgs, kind Kind) (*Listing, error)
	FindAll(ctx ctx.Ctx, opts ...ListingFindAllOptionsFunc) ([]*Listing, error)
	GetListing(ctx ctx.Ctx, id ListingId) (*Listing, error)
	Bid(ctx ctx.Ctx, args *BidArgs) (*TradeResult, error)
	CancelListing(ctx ctx.Ctx, caller domain.Address, id ListingId) error
}
