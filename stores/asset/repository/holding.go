package repository

import (
	"github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/base/database/mongoclient"
	"github.com/x-xyz/exchange/base/log"
	"github.com/x-xyz/exchange/domain"
	"github.com/x-xyz/exchange/domain/asset"
	"github.com/x-xyz/exchange/service/query"
)

type holdingRepoImpl struct {
	q query.Mongo
}

func NewHoldingRepo(q query.Mongo) asset.HoldingRepo {
	return &holdingRepoImpl{q}
}

func (im *holdingRepoImpl) FindOne(ctx ctx.Ctx, id asset.HoldingId) (*asset.Holding, error) {
	qry, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("MakeBsonM failed")
		return nil, err
	}

	var holding asset.Holding
	err = im.q.FindOne(ctx, domain.TableAssetHoldings, qry, &holding)
	if err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": qry,
		}).Error("query.FindOne failed")
		return nil, err
	}
	return &holding, nil
}

func (im *holdingRepoImpl) FindByToken(ctx ctx.Ctx, id asset.Id) ([]*asset.Holding, error) {
	qry, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("MakeBsonM failed")
		return nil, err
	}

	var holdings []*asset.Holding
	if err := im.q.Search(ctx, domain.TableAssetHoldings, 0, 0, "", qry, &holdings); err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": qry,
		}).Error("query.Search failed")
		return nil, err
	}
	return holdings, nil
}

func (im *holdingRepoImpl) Upsert(ctx ctx.Ctx, holding *asset.Holding) error {
	id := holding.ToId()
	selector, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("MakeBsonM failed")
		return err
	}
	if err := im.q.Upsert(ctx, domain.TableAssetHoldings, selector, holding); err != nil {
		ctx.WithFields(log.Fields{
			"err":      err,
			"selector": selector,
			"holding":  holding,
		}).Error("q.Upsert failed")
		return err
	}
	return nil
}

func (im *holdingRepoImpl) Remove(ctx ctx.Ctx, id asset.HoldingId) error {
	selector, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("MakeBsonM failed")
		return err
	}
	if err := im.q.Remove(ctx, domain.TableAssetHoldings, selector); err != nil && err != query.ErrNotFound {
		ctx.WithFields(log.Fields{
			"err":      err,
			"selector": selector,
		}).Error("q.Remove failed")
		return err
	}
	return nil
}
