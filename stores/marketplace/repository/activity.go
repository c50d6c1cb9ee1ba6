package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/base/log"
	"github.com/x-xyz/exchange/domain"
	"github.com/x-xyz/exchange/domain/marketplace"
	"github.com/x-xyz/exchange/service/query"
)

type activityRepoImpl struct {
	q query.Mongo
}

func NewActivityRepo(q query.Mongo) marketplace.ActivityRepo {
	return &activityRepoImpl{q}
}

func (im *activityRepoImpl) FindAll(ctx ctx.Ctx, optFns ...marketplace.ActivityFindAllOptionsFunc) ([]*marketplace.Activity, error) {
	opts, err := marketplace.GetActivityFindAllOptions(optFns...)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("GetActivityFindAllOptions failed")
		return nil, err
	}

	offset := 0
	limit := 0
	qry := bson.M{}
	if opts.ChainId != nil {
		qry["chainId"] = *opts.ChainId
	}
	if opts.Collection != nil {
		qry["collection"] = *opts.Collection
	}
	if opts.TokenId != nil {
		qry["tokenId"] = *opts.TokenId
	}
	if opts.Account != nil {
		qry["account"] = *opts.Account
	}
	if opts.Type != nil {
		qry["type"] = *opts.Type
	}
	if opts.Offset != nil {
		offset = int(*opts.Offset)
	}
	if opts.Limit != nil {
		limit = int(*opts.Limit)
	}

	var activities []*marketplace.Activity
	if err := im.q.Search(ctx, domain.TableActivities, offset, limit, "-time", qry, &activities); err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": qry,
		}).Error("q.Search failed")
		return nil, err
	}
	return activities, nil
}

func (im *activityRepoImpl) Insert(ctx ctx.Ctx, activity *marketplace.Activity) error {
	if err := im.q.Insert(ctx, domain.TableActivities, activity); err != nil {
		ctx.WithFields(log.Fields{
			"err":      err,
			"activity": activity,
		}).Error("q.Insert failed")
		return err
	}
	return nil
}
