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

type listingRepoImpl struct {
	q query.Mongo
}

func NewListingRepo(q query.Mongo) marketplace.ListingRepo {
	return &listingRepoImpl{q}
}

func (im *listingRepoImpl) FindAll(ctx ctx.Ctx, optFns ...marketplace.ListingFindAllOptionsFunc) ([]*marketplace.Listing, error) {
	opts, err := marketplace.GetListingFindAllOptions(optFns...)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("GetListingFindAllOptions failed")
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
	if opts.Seller != nil {
		qry["seller"] = *opts.Seller
	}
	if opts.Kind != nil {
		qry["kind"] = *opts.Kind
	}
	if opts.Offset != nil {
		offset = int(*opts.Offset)
	}
	if opts.Limit != nil {
		limit = int(*opts.Limit)
	}

	var listings []*marketplace.Listing
	if err := im.q.Search(ctx, domain.TableListings, offset, limit, "-createdAt", qry, &listings); err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": qry,
		}).Error("q.Search failed")
		return nil, err
	}
	return listings, nil
}

func (im *listingRepoImpl) FindOne(ctx ctx.Ctx, id marketplace.ListingId) (*marketplace.Listing, error) {
	qry, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("MakeBsonM failed")
		return nil, err
	}

	var listing marketplace.Listing
	err = im.q.FindOne(ctx, domain.TableListings, qry, &listing)
	if err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": qry,
		}).Error("query.FindOne failed")
		return nil, err
	}
	return &listing, nil
}

func (im *listingRepoImpl) Upsert(ctx ctx.Ctx, listing *marketplace.Listing) error {
	id := listing.ToId()
	selector, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("MakeBsonM failed")
		return err
	}
	if err := im.q.Upsert(ctx, domain.TableListings, selector, listing); err != nil {
		ctx.WithFields(log.Fields{
			"err":      err,
			"selector": selector,
			"listing":  listing,
		}).Error("q.Upsert failed")
		return err
	}
	return nil
}

func (im *listingRepoImpl) Update(ctx ctx.Ctx, id marketplace.ListingId, patchable marketplace.ListingPatchable) error {
	selector, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("MakeBsonM failed")
		return err
	}
	updater, err := mongoclient.MakeBsonM(patchable)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":       err,
			"patchable": patchable,
		}).Error("MakeBsonM failed")
		return err
	}
	if err := im.q.Patch(ctx, domain.TableListings, selector, updater); err != nil {
		ctx.WithFields(log.Fields{
			"err":      err,
			"selector": selector,
			"updater":  updater,
		}).Error("q.Patch failed")
		return err
	}
	return nil
}

func (im *listingRepoImpl) Remove(ctx ctx.Ctx, id marketplace.ListingId) error {
	selector, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("MakeBsonM failed")
		return err
	}
	err = im.q.Remove(ctx, domain.TableListings, selector)
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
