package repository

import (
	"github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/base/database/mongoclient"
	"github.com/x-xyz/exchange/base/log"
	"github.com/x-xyz/exchange/domain"
	"github.com/x-xyz/exchange/domain/asset"
	"github.com/x-xyz/exchange/service/query"
)

type approvalRepoImpl struct {
	q query.Mongo
}

func NewApprovalRepo(q query.Mongo) asset.ApprovalRepo {
	return &approvalRepoImpl{q}
}

func (im *approvalRepoImpl) FindOne(ctx ctx.Ctx, id asset.ApprovalId) (*asset.Approval, error) {
	qry, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("MakeBsonM failed")
		return nil, err
	}

	var approval asset.Approval
	err = im.q.FindOne(ctx, domain.TableAssetApprovals, qry, &approval)
	if err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": qry,
		}).Error("query.FindOne failed")
		return nil, err
	}
	return &approval, nil
}

func (im *approvalRepoImpl) Upsert(ctx ctx.Ctx, approval *asset.Approval) error {
	id := approval.ToId()
	selector, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("MakeBsonM failed")
		return err
	}
	if err := im.q.Upsert(ctx, domain.TableAssetApprovals, selector, approval); err != nil {
		ctx.WithFields(log.Fields{
			"err":      err,
			"selector": selector,
			"approval": approval,
		}).Error("q.Upsert failed")
		return err
	}
	return nil
}
