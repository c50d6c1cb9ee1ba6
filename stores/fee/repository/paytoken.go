package repository

import (
	"fmt"
	"time"

	"github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/base/database/mongoclient"
	"github.com/x-xyz/exchange/base/log"
	"github.com/x-xyz/exchange/domain"
	"github.com/x-xyz/exchange/domain/fee"
	"github.com/x-xyz/exchange/domain/keys"
	"github.com/x-xyz/exchange/service/cache"
	compoundcache "github.com/x-xyz/exchange/service/cache/compoundCache"
	"github.com/x-xyz/exchange/service/cache/provider/primitive"
	redisCache "github.com/x-xyz/exchange/service/cache/provider/redis"
	"github.com/x-xyz/exchange/service/query"
	"github.com/x-xyz/exchange/service/redis"
)

type payTokenRepoImpl struct {
	q query.Mongo
	// pay tokens are read on every quote, the short in-process layer keeps
	// the hot path off mongo while fee changes still propagate quickly
	payTokenCache cache.Service
}

func NewPayTokenRepo(q query.Mongo, redis redis.Service) fee.PayTokenRepo {
	cacheServices := []cache.Service{
		cache.New(cache.ServiceConfig{
			Ttl:   10 * time.Second,
			Pfx:   keys.PfxPayToken,
			Cache: primitive.NewPrimitive(keys.PfxPayToken, 16),
		}),
	}

	if redis != nil {
		cacheServices = append(cacheServices, cache.New(cache.ServiceConfig{
			Ttl:   10 * time.Minute,
			Pfx:   keys.PfxPayToken,
			Cache: redisCache.NewRedis(redis),
		}))
	}

	return &payTokenRepoImpl{
		q:             q,
		payTokenCache: compoundcache.NewCompoundCache(cacheServices),
	}
}

func payTokenCacheKey(id fee.PayTokenId) string {
	return fmt.Sprintf("%d:%s", id.ChainId, id.Address.ToLowerStr())
}

func (im *payTokenRepoImpl) FindOne(ctx ctx.Ctx, id fee.PayTokenId) (*fee.PayToken, error) {
	res := &fee.PayToken{}
	if err := im.payTokenCache.GetByFunc(ctx, payTokenCacheKey(id), res, func() (interface{}, error) {
		return im.findOne(ctx, id)
	}); err != nil {
		if err != domain.ErrNotFound {
			ctx.WithFields(log.Fields{
				"err": err,
				"id":  id,
			}).Error("payTokenCache.GetByFunc failed")
		}
		return nil, err
	}
	return res, nil
}

func (im *payTokenRepoImpl) findOne(ctx ctx.Ctx, id fee.PayTokenId) (*fee.PayToken, error) {
	qry, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("MakeBsonM failed")
		return nil, err
	}

	var token fee.PayToken
	err = im.q.FindOne(ctx, domain.TablePayTokens, qry, &token)
	if err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": qry,
		}).Error("query.FindOne failed")
		return nil, err
	}
	return &token, nil
}

func (im *payTokenRepoImpl) Upsert(ctx ctx.Ctx, token *fee.PayToken) error {
	id := token.ToId()
	selector, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("MakeBsonM failed")
		return err
	}
	if err := im.q.Upsert(ctx, domain.TablePayTokens, selector, token); err != nil {
		ctx.WithFields(log.Fields{
			"err":      err,
			"selector": selector,
			"token":    token,
		}).Error("q.Upsert failed")
		return err
	}
	if err := im.payTokenCache.Del(ctx, payTokenCacheKey(id)); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("payTokenCache.Del failed")
	}
	return nil
}
