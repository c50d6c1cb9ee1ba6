package usecase

import (
	"time"

	"github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/base/log"
	"github.com/x-xyz/exchange/domain"
	"github.com/x-xyz/exchange/domain/marketplace"
	"github.com/x-xyz/exchange/domain/nonce"
)

type nonceUCImpl struct {
	repo     nonce.Repo
	activity marketplace.ActivityRepo
}

type NonceUseCaseCfg struct {
	Repo     nonce.Repo
	Activity marketplace.ActivityRepo
}

func NewNonceUseCase(cfg *NonceUseCaseCfg) nonce.UseCase {
	return &nonceUCImpl{
		repo:     cfg.Repo,
		activity: cfg.Activity,
	}
}

func (im *nonceUCImpl) AssertUnused(ctx ctx.Ctx, id nonce.UsedNonceId) error {
	_, err := im.repo.FindOne(ctx, id)
	if err == nil {
		return domain.ErrNonceUsed
	} else if err != domain.ErrNotFound {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("repo.FindOne failed")
		return err
	}
	return nil
}

func (im *nonceUCImpl) MarkUsed(ctx ctx.Ctx, id nonce.UsedNonceId) error {
	id.Signer = id.Signer.ToLower()
	// the unique index rejects concurrent inserts; re-checking here keeps the
	// barrier intact inside a transaction even when the index is absent
	if _, err := im.repo.FindOne(ctx, id); err == nil {
		return domain.ErrNonceUsed
	} else if err != domain.ErrNotFound {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("repo.FindOne failed")
		return err
	}
	used := &nonce.UsedNonce{
		ChainId: id.ChainId,
		Signer:  id.Signer,
		Nonce:   id.Nonce,
		UsedAt:  time.Now(),
	}
	if err := im.repo.Insert(ctx, used); err != nil {
		if err != domain.ErrNonceUsed {
			ctx.WithFields(log.Fields{
				"err": err,
				"id":  id,
			}).Error("repo.Insert failed")
		}
		return err
	}
	return nil
}

func (im *nonceUCImpl) Cancel(ctx ctx.Ctx, signer domain.Address, chainId domain.ChainId, nonce_ string) error {
	id := nonce.UsedNonceId{
		ChainId: chainId,
		Signer:  signer.ToLower(),
		Nonce:   nonce_,
	}
	if err := im.MarkUsed(ctx, id); err != nil {
		return err
	}
	activity := &marketplace.Activity{
		ChainId: chainId,
		Account: signer.ToLower(),
		Type:    marketplace.ActivityTypeCancelAllBids,
		Time:    time.Now(),
	}
	if err := im.activity.Insert(ctx, activity); err != nil {
		ctx.WithFields(log.Fields{
			"err":      err,
			"activity": activity,
		}).Error("activity.Insert failed")
		return err
	}
	return nil
}
