package nonce

import (
	"time"

	"github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/domain"
)

// UsedNonce is the replay-protection ledger entry for one consumed order
// nonce. Entries are created lazily on first use and never deleted; a nonce
// that has been consumed, by settlement or by explicit cancellation, can
// never become unused again.
type UsedNonce struct {
	ChainId domain.ChainId `bson:"chainId"`
	Signer  domain.Address `bson:"signer"`
	Nonce   string         `bson:"nonce"`
	UsedAt  time.Time      `bson:"usedAt"`
}

func (n *UsedNonce) ToId() UsedNonceId {
	return UsedNonceId{
		ChainId: n.ChainId,
		Signer:  n.Signer,
		Nonce:   n.Nonce,
	}
}

type UsedNonceId struct {
	ChainId domain.ChainId `bson:"chainId"`
	Signer  domain.Address `bson:"signer"`
	Nonce   string         `bson:"nonce"`
}

type Repo interface {
	FindOne(ctx ctx.Ctx, id UsedNonceId) (*UsedNonce, error)
	// Insert fails with domain.ErrNonceUsed when the entry already exists
	Insert(ctx ctx.Ctx, nonce *UsedNonce) error
}

type UseCase interface {
	// AssertUnused fails with domain.ErrNonceUsed when the nonce has been
	// consumed before
	AssertUnused(ctx ctx.Ctx, id UsedNonceId) error
	// MarkUsed consumes the nonce; it must run before any value transfer of
	// the settlement that consumes it
	MarkUsed(ctx ctx.Ctx, id UsedNonceId) error
	// Cancel lets a signer burn one of its own nonces
	Cancel(ctx ctx.Ctx, signer domain.Address, chainId domain.ChainId, nonce string) error
}
