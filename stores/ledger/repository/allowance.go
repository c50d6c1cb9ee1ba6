package repository

import (
	"github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/base/database/mongoclient"
	"github.com/x-xyz/exchange/base/log"
	"github.com/x-xyz/exchange/domain"
	"github.com/x-xyz/exchange/domain/ledger"
	"github.com/x-xyz/exchange/service/query"
)

type allowanceRepoImpl struct {
	q query.Mongo
}

func NewAllowanceRepo(q query.Mongo) ledger.AllowanceRepo {
	return &allowanceRepoImpl{q}
}

func (im *allowanceRepoImpl) FindOne(ctx ctx.Ctx, id ledger.AllowanceId) (*ledger.Allowance, error) {
	qry, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("MakeBsonM failed")
		return nil, err
	}

	var allowance ledger.Allowance
	err = im.q.FindOne(ctx, domain.TableLedgerAllowances, qry, &allowance)
	if err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": qry,
		}).Error("query.FindOne failed")
		return nil, err
	}
	return &allowance, nil
}

func (im *allowanceRepoImpl) Upsert(ctx ctx.Ctx, allowance *ledger.Allowance) error {
	id := allowance.ToId()
	selector, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("MakeBsonM failed")
		return err
	}
	if err := im.q.Upsert(ctx, domain.TableLedgerAllowances, selector, allowance); err != nil {
		ctx.WithFields(log.Fields{
			"err":       err,
			"selector":  selector,
			"allowance": allowance,
		}).Error("q.Upsert failed")
		return err
	}
	return nil
}
