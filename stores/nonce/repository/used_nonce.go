package repository

import (
	"github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/base/database/mongoclient"
	"github.com/x-xyz/exchange/base/log"
	"github.com/x-xyz/exchange/domain"
	"github.com/x-xyz/exchange/domain/nonce"
	"github.com/x-xyz/exchange/service/query"
)

type usedNonceRepoImpl struct {
	q query.Mongo
}

func NewUsedNonceRepo(q query.Mongo) nonce.Repo {
	return &usedNonceRepoImpl{q}
}

func (im *usedNonceRepoImpl) FindOne(ctx ctx.Ctx, id nonce.UsedNonceId) (*nonce.UsedNonce, error) {
	qry, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("MakeBsonM failed")
		return nil, err
	}

	var used nonce.UsedNonce
	err = im.q.FindOne(ctx, domain.TableOrderNonces, qry, &used)
	if err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": qry,
		}).Error("query.FindOne failed")
		return nil, err
	}
	return &used, nil
}

func (im *usedNonceRepoImpl) Insert(ctx ctx.Ctx, used *nonce.UsedNonce) error {
	err := im.q.Insert(ctx, domain.TableOrderNonces, used)
	if err == query.ErrDuplicateKey {
		return domain.ErrNonceUsed
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"nonce": used,
		}).Error("q.Insert failed")
		return err
	}
	return nil
}
