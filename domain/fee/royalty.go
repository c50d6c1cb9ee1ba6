package fee

import (
	"github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/domain"
)

// Royalty is a creator share configuration. A token level entry, TokenId
// set, takes precedence over the collection level entry, TokenId empty.
type Royalty struct {
	ChainId    domain.ChainId `json:"chainId" bson:"chainId"`
	Collection domain.Address `json:"collection" bson:"collection"`
	TokenId    domain.TokenId `json:"tokenId" bson:"tokenId"`
	Recipient  domain.Address `json:"recipient" bson:"recipient"`
	Bps        int64          `json:"bps" bson:"bps"`
}

func (r *Royalty) ToId() RoyaltyId {
	return RoyaltyId{ChainId: r.ChainId, Collection: r.Collection, TokenId: r.TokenId}
}

type RoyaltyId struct {
	ChainId    domain.ChainId `bson:"chainId"`
	Collection domain.Address `bson:"collection"`
	TokenId    domain.TokenId `bson:"tokenId"`
}

type RoyaltyRepo interface {
	FindOne(ctx ctx.Ctx, id RoyaltyId) (*Royalty, error)
	Upsert(ctx ctx.Ctx, royalty *Royalty) error
}

// RoyaltyUseCase resolves and administers royalties. Setters are gated to
// the collection owner or the registry owner and capped at a global bps
// limit.
type RoyaltyUseCase interface {
	// Resolve returns the effective royalty for an asset, token level
	// override first; a nil result means no royalty is configured
	Resolve(ctx ctx.Ctx, chainId domain.ChainId, collection domain.Address, tokenId domain.TokenId) (*Royalty, error)
	SetCollectionRoyalty(ctx ctx.Ctx, caller domain.Address, royalty *Royalty) error
	SetTokenRoyalty(ctx ctx.Ctx, caller domain.Address, royalty *Royalty) error
}
