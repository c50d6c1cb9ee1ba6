package repository

import (
	"github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/base/database/mongoclient"
	"github.com/x-xyz/exchange/base/log"
	"github.com/x-xyz/exchange/domain"
	"github.com/x-xyz/exchange/domain/fee"
	"github.com/x-xyz/exchange/service/query"
)

type royaltyRepoImpl struct {
	q query.Mongo
}

func NewRoyaltyRepo(q query.Mongo) fee.RoyaltyRepo {
	return &royaltyRepoImpl{q}
}

func (im *royaltyRepoImpl) FindOne(ctx ctx.Ctx, id fee.RoyaltyId) (*fee.Royalty, error) {
	qry, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("MakeBsonM failed")
		return nil, err
	}

	var royalty fee.Royalty
	err = im.q.FindOne(ctx, domain.TableRoyalties, qry, &royalty)
	if err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": qry,
		}).Error("query.FindOne failed")
		return nil, err
	}
	return &royalty, nil
}

func (im *royaltyRepoImpl) Upsert(ctx ctx.Ctx, royalty *fee.Royalty) error {
	id := royalty.ToId()
	selector, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("MakeBsonM failed")
		return err
	}
	if err := im.q.Upsert(ctx, domain.TableRoyalties, selector, royalty); err != nil {
		ctx.WithFields(log.Fields{
			"err":      err,
			"selector": selector,
			"royalty":  royalty,
		}).Error("q.Upsert failed")
		return err
	}
	return nil
}
