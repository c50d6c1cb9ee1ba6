package repository

import (
	"github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/base/database/mongoclient"
	"github.com/x-xyz/exchange/base/log"
	"github.com/x-xyz/exchange/domain"
	"github.com/x-xyz/exchange/domain/ledger"
	"github.com/x-xyz/exchange/service/query"
)

type balanceRepoImpl struct {
	q query.Mongo
}

func NewBalanceRepo(q query.Mongo) ledger.BalanceRepo {
	return &balanceRepoImpl{q}
}

func (im *balanceRepoImpl) FindOne(ctx ctx.Ctx, id ledger.BalanceId) (*ledger.Balance, error) {
	qry, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("MakeBsonM failed")
		return nil, err
	}

	var balance ledger.Balance
	err = im.q.FindOne(ctx, domain.TableLedgerBalances, qry, &balance)
	if err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": qry,
		}).Error("query.FindOne failed")
		return nil, err
	}
	return &balance, nil
}

func (im *balanceRepoImpl) Upsert(ctx ctx.Ctx, balance *ledger.Balance) error {
	id := balance.ToId()
	selector, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("MakeBsonM failed")
		return err
	}
	if err := im.q.Upsert(ctx, domain.TableLedgerBalances, selector, balance); err != nil {
		ctx.WithFields(log.Fields{
			"err":      err,
			"selector": selector,
			"balance":  balance,
		}).Error("q.Upsert failed")
		return err
	}
	return nil
}
