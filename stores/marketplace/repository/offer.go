package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/base/database/mongoclient"
	"github.com/x-xyz/exchange/base/log"
	"github.com/x-xyz/exchange/domain"
	"github.com/x-xyz/exchange/domain/marketplace"
	"github.com/x-xyz/exchange/service/query"
)

const offerCounterName = "offers"

type offerCounter struct {
	ChainId domain.ChainId `bson:"chainId"`
	Name    string         `bson:"name"`
	Value   int64          `bson:"value"`
}

type offerRepoImpl struct {
	q query.Mongo
}

func NewOfferRepo(q query.Mongo) marketplace.OfferRepo {
	return &offerRepoImpl{q}
}

func (im *offerRepoImpl) FindAll(ctx ctx.Ctx, optFns ...marketplace.OfferFindAllOptionsFunc) ([]*marketplace.Offer, error) {
	opts, err := marketplace.GetOfferFindAllOptions(optFns...)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("GetOfferFindAllOptions failed")
		return nil, err
	}

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
	if opts.Bidder != nil {
		qry["bidder"] = *opts.Bidder
	}
	if opts.ExpiresAtLT != nil {
		qry["expiresAt"] = bson.M{"$lt": *opts.ExpiresAtLT}
	}
	if opts.Limit != nil {
		limit = int(*opts.Limit)
	}

	var offers []*marketplace.Offer
	if err := im.q.Search(ctx, domain.TableOffers, 0, limit, "offerId", qry, &offers); err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": qry,
		}).Error("q.Search failed")
		return nil, err
	}
	return offers, nil
}

func (im *offerRepoImpl) FindOne(ctx ctx.Ctx, id marketplace.OfferId) (*marketplace.Offer, error) {
	qry, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("MakeBsonM failed")
		return nil, err
	}

	var offer marketplace.Offer
	err = im.q.FindOne(ctx, domain.TableOffers, qry, &offer)
	if err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": qry,
		}).Error("query.FindOne failed")
		return nil, err
	}
	return &offer, nil
}

func (im *offerRepoImpl) Insert(ctx ctx.Ctx, offer *marketplace.Offer) error {
	err := im.q.Insert(ctx, domain.TableOffers, offer)
	if err == query.ErrDuplicateKey {
		return domain.ErrConflict
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"offer": offer,
		}).Error("q.Insert failed")
		return err
	}
	return nil
}

func (im *offerRepoImpl) Remove(ctx ctx.Ctx, id marketplace.OfferId) error {
	selector, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("MakeBsonM failed")
		return err
	}
	err = im.q.Remove(ctx, domain.TableOffers, selector)
	if err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":      err,
			"selector": selector,
		}).Error("q.Remove failed")
		return err
	}
	return nil
}

func (im *offerRepoImpl) NextOfferId(ctx ctx.Ctx, chainId domain.ChainId) (int64, error) {
	selector := bson.M{"chainId": chainId, "name": offerCounterName}
	var counter offerCounter
	if err := im.q.Increment(ctx, domain.TableCounters, selector, &counter, "value", int64(1)); err != nil {
		ctx.WithFields(log.Fields{
			"err":      err,
			"selector": selector,
		}).Error("q.Increment failed")
		return 0, err
	}
	return counter.Value, nil
}
