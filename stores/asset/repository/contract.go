package repository

import (
	"fmt"
	"time"

	"github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/base/database/mongoclient"
	"github.com/x-xyz/exchange/base/log"
	"github.com/x-xyz/exchange/domain"
	"github.com/x-xyz/exchange/domain/asset"
	"github.com/x-xyz/exchange/domain/keys"
	"github.com/x-xyz/exchange/service/cache"
	"github.com/x-xyz/exchange/service/cache/provider"
	"github.com/x-xyz/exchange/service/cache/provider/compound"
	"github.com/x-xyz/exchange/service/cache/provider/primitive"
	redisCache "github.com/x-xyz/exchange/service/cache/provider/redis"
	"github.com/x-xyz/exchange/service/query"
	"github.com/x-xyz/exchange/service/redis"
)

type contractRepoImpl struct {
	q query.Mongo
	// contracts are registered once and their interface never changes, reads
	// go through a cache shared by every settlement path
	contractCache cache.Service
}

func NewContractRepo(q query.Mongo, redis redis.Service) asset.ContractRepo {
	cacheProviders := []provider.Provider{
		primitive.NewPrimitive("assetContract", 16),
	}

	if redis != nil {
		cacheProviders = append(cacheProviders, redisCache.NewRedis(redis))
	}

	return &contractRepoImpl{
		q: q,
		contractCache: cache.New(cache.ServiceConfig{
			Ttl:   time.Hour,
			Pfx:   keys.PfxAssetContract,
			Cache: compound.NewCompound(cacheProviders),
		}),
	}
}

func cacheKey(id asset.ContractId) string {
	return fmt.Sprintf("%d:%s", id.ChainId, id.Address.ToLowerStr())
}

func (im *contractRepoImpl) FindOne(ctx ctx.Ctx, id asset.ContractId) (*asset.Contract, error) {
	res := &asset.Contract{}
	if err := im.contractCache.GetByFunc(ctx, cacheKey(id), res, func() (interface{}, error) {
		return im.findOne(ctx, id)
	}); err != nil {
		if err != domain.ErrNotFound {
			ctx.WithFields(log.Fields{
				"err": err,
				"id":  id,
			}).Error("contractCache.GetByFunc failed")
		}
		return nil, err
	}
	return res, nil
}

func (im *contractRepoImpl) findOne(ctx ctx.Ctx, id asset.ContractId) (*asset.Contract, error) {
	qry, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("MakeBsonM failed")
		return nil, err
	}

	var contract asset.Contract
	err = im.q.FindOne(ctx, domain.TableAssetContracts, qry, &contract)
	if err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": qry,
		}).Error("query.FindOne failed")
		return nil, err
	}
	return &contract, nil
}

func (im *contractRepoImpl) Upsert(ctx ctx.Ctx, contract *asset.Contract) error {
	id := contract.ToId()
	selector, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("MakeBsonM failed")
		return err
	}
	if err := im.q.Upsert(ctx, domain.TableAssetContracts, selector, contract); err != nil {
		ctx.WithFields(log.Fields{
			"err":      err,
			"selector": selector,
			"contract": contract,
		}).Error("q.Upsert failed")
		return err
	}
	if err := im.contractCache.Del(ctx, cacheKey(id)); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("contractCache.Del failed")
	}
	return nil
}
