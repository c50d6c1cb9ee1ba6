package asset

import (
	"github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/domain"
)

// Contract is the registration of a tradable asset contract; TokenType is
// what the interface probe reports for it
type Contract struct {
	ChainId   domain.ChainId   `bson:"chainId"`
	Address   domain.Address   `bson:"address"`
	TokenType domain.TokenType `bson:"tokenType"`
	// Owner may set collection level royalties
	Owner domain.Address `bson:"owner"`
}

func (c *Contract) ToId() ContractId {
	return ContractId{ChainId: c.ChainId, Address: c.Address}
}

type ContractId struct {
	ChainId domain.ChainId `bson:"chainId"`
	Address domain.Address `bson:"address"`
}

// Id identifies a single asset
type Id struct {
	ChainId    domain.ChainId `json:"chainId" bson:"chainId"`
	Collection domain.Address `json:"collection" bson:"collection"`
	TokenId    domain.TokenId `json:"tokenId" bson:"tokenId"`
}

// Holding is the ownership record: for unique assets there is exactly one
// holding with balance 1, for semi-fungible assets one per owner
type Holding struct {
	ChainId    domain.ChainId `bson:"chainId"`
	Collection domain.Address `bson:"collection"`
	TokenId    domain.TokenId `bson:"tokenId"`
	Owner      domain.Address `bson:"owner"`
	Balance    int64          `bson:"balance"`
}

func (h *Holding) ToId() HoldingId {
	return HoldingId{
		ChainId:    h.ChainId,
		Collection: h.Collection,
		TokenId:    h.TokenId,
		Owner:      h.Owner,
	}
}

type HoldingId struct {
	ChainId    domain.ChainId `bson:"chainId"`
	Collection domain.Address `bson:"collection"`
	TokenId    domain.TokenId `bson:"tokenId"`
	Owner      domain.Address `bson:"owner"`
}

// Approval grants the exchange operator the right to move an owner's assets
// of one collection
type Approval struct {
	ChainId    domain.ChainId `bson:"chainId"`
	Collection domain.Address `bson:"collection"`
	Owner      domain.Address `bson:"owner"`
	Approved   bool           `bson:"approved"`
}

func (a *Approval) ToId() ApprovalId {
	return ApprovalId{ChainId: a.ChainId, Collection: a.Collection, Owner: a.Owner}
}

type ApprovalId struct {
	ChainId    domain.ChainId `bson:"chainId"`
	Collection domain.Address `bson:"collection"`
	Owner      domain.Address `bson:"owner"`
}

type ContractRepo interface {
	FindOne(ctx ctx.Ctx, id ContractId) (*Contract, error)
	Upsert(ctx ctx.Ctx, contract *Contract) error
}

type HoldingRepo interface {
	FindOne(ctx ctx.Ctx, id HoldingId) (*Holding, error)
	FindByToken(ctx ctx.Ctx, id Id) ([]*Holding, error)
	Upsert(ctx ctx.Ctx, holding *Holding) error
	Remove(ctx ctx.Ctx, id HoldingId) error
}

type ApprovalRepo interface {
	FindOne(ctx ctx.Ctx, id ApprovalId) (*Approval, error)
	Upsert(ctx ctx.Ctx, approval *Approval) error
}

// Adapter is the uniform transfer capability over both asset classes.
// Implementations resolve the asset class once per call through the
// contract registration, never through the caller's claim.
type Adapter interface {
	// TokenType probes the contract kind
	TokenType(ctx ctx.Ctx, id ContractId) (domain.TokenType, error)
	// AssertOwnsAndApproved verifies the seller owns quantity of the asset
	// and has approved the exchange operator
	AssertOwnsAndApproved(ctx ctx.Ctx, id Id, seller domain.Address, quantity int64) error
	// Transfer moves quantity of the asset between accounts
	Transfer(ctx ctx.Ctx, id Id, from, to domain.Address, quantity int64) error
}

// UseCase adds the administrative surface over Adapter: contract
// registration, minting and operator approval
type UseCase interface {
	Adapter
	RegisterContract(ctx ctx.Ctx, contract *Contract) error
	Mint(ctx ctx.Ctx, id Id, owner domain.Address, quantity int64) error
	SetApproval(ctx ctx.Ctx, chainId domain.ChainId, collection, owner domain.Address, approved bool) error
	Holdings(ctx ctx.Ctx, id Id) ([]*Holding, error)
}
