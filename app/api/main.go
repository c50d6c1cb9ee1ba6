package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/go-playground/validator/v10"
	"github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/base/database/mongoclient"
	"github.com/x-xyz/exchange/base/database/redisclient"
	"github.com/x-xyz/exchange/base/log"
	"github.com/x-xyz/exchange/base/metrics"
	pricefomatter "github.com/x-xyz/exchange/base/price_fomatter"
	bValidator "github.com/x-xyz/exchange/base/validator"
	"github.com/x-xyz/exchange/domain"
	"github.com/x-xyz/exchange/domain/keys"
	mmiddleware "github.com/x-xyz/exchange/middleware"
	"github.com/x-xyz/exchange/service/cache"
	redisprovider "github.com/x-xyz/exchange/service/cache/provider/redis"
	"github.com/x-xyz/exchange/service/query"
	"github.com/x-xyz/exchange/service/redis"
	asset_delivery "github.com/x-xyz/exchange/stores/asset/delivery/http"
	asset_repository "github.com/x-xyz/exchange/stores/asset/repository"
	asset_usecase "github.com/x-xyz/exchange/stores/asset/usecase"
	auth_delivery "github.com/x-xyz/exchange/stores/auth/delivery/http"
	auth_middleware "github.com/x-xyz/exchange/stores/auth/delivery/http/middleware"
	auth_usecase "github.com/x-xyz/exchange/stores/auth/usecase"
	fee_delivery "github.com/x-xyz/exchange/stores/fee/delivery/http"
	fee_repository "github.com/x-xyz/exchange/stores/fee/repository"
	fee_usecase "github.com/x-xyz/exchange/stores/fee/usecase"
	hc_delivery "github.com/x-xyz/exchange/stores/healthcheck/delivery/http"
	hc_repo "github.com/x-xyz/exchange/stores/healthcheck/repository"
	hc_usecase "github.com/x-xyz/exchange/stores/healthcheck/usecase"
	ledger_delivery "github.com/x-xyz/exchange/stores/ledger/delivery/http"
	ledger_repository "github.com/x-xyz/exchange/stores/ledger/repository"
	ledger_usecase "github.com/x-xyz/exchange/stores/ledger/usecase"
	marketplace_delivery "github.com/x-xyz/exchange/stores/marketplace/delivery/http"
	marketplace_repository "github.com/x-xyz/exchange/stores/marketplace/repository"
	marketplace_usecase "github.com/x-xyz/exchange/stores/marketplace/usecase"
	nonce_repository "github.com/x-xyz/exchange/stores/nonce/repository"
	nonce_usecase "github.com/x-xyz/exchange/stores/nonce/usecase"
	settlement_delivery "github.com/x-xyz/exchange/stores/settlement/delivery/http"
	settlement_usecase "github.com/x-xyz/exchange/stores/settlement/usecase"
)

func init() {
	configFile := pflag.String("config", "infra/configs/config.yaml", "path to config file")
	pflag.Parse()

	viper.SetConfigType("yaml")
	viper.SetConfigFile(*configFile)
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}

	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func main() {
	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(validator.New())

	context := ctx.Background()

	// init mongo client
	context.Info("init mongo")
	uri := viper.GetString("mongo.uri")
	authDBName := viper.GetString("mongo.authDBName")
	dbName := viper.GetString("mongo.dbName")
	enableSSL := viper.GetBool("mongo.enableSSL")
	checkIndex := viper.GetBool("mongo.checkIndex")
	mongoClient := mongoclient.MustConnectMongoClient(uri, authDBName, dbName, enableSSL, true, 2)
	q := query.New(mongoClient, checkIndex)

	// the nonce replay barrier relies on this unique index
	_, err := mongoClient.Database(mongoClient.DbName).
		Collection(string(domain.TableOrderNonces)).
		Indexes().
		CreateOne(context, mongo.IndexModel{
			Keys:    bson.D{{Key: "chainId", Value: 1}, {Key: "signer", Value: 1}, {Key: "nonce", Value: 1}},
			Options: options.Index().SetUnique(true),
		})
	if err != nil {
		context.WithField("err", err).Panic("failed to ensure order nonce index")
	}

	// init Redis service
	context.Info("init redis cache")
	redisCacheName := viper.GetString("redis_cache.name")
	redisCacheURI := viper.GetString("redis_cache.uri")
	redisCachePwd := viper.GetString("redis_cache.password")
	redisCachePoolMultiplier := viper.GetFloat64("redis_cache.poolMultiplier")
	redisCachePool := redisclient.MustConnectRedis(redisCacheURI, redisCachePwd, redisclient.RedisParam{
		PoolMultiplier: redisCachePoolMultiplier,
		Retry:          true,
	})
	redisCache := redis.New(redisCacheName, metrics.New(redisCacheName), &redis.Pools{
		Src: redisCachePool,
	})

	authNonceCache := cache.New(cache.ServiceConfig{
		Ttl:   viper.GetDuration("auth.nonceTtl"),
		Pfx:   keys.PfxAuthNonce,
		Cache: redisprovider.NewRedis(redisCache),
	})

	// construct repository, usecase and delivery
	hcRepo := hc_repo.New(mongoClient, redisCache)
	listingRepo := marketplace_repository.NewListingRepo(q)
	offerRepo := marketplace_repository.NewOfferRepo(q)
	activityRepo := marketplace_repository.NewActivityRepo(q)
	usedNonceRepo := nonce_repository.NewUsedNonceRepo(q)
	contractRepo := asset_repository.NewContractRepo(q, redisCache)
	holdingRepo := asset_repository.NewHoldingRepo(q)
	approvalRepo := asset_repository.NewApprovalRepo(q)
	balanceRepo := ledger_repository.NewBalanceRepo(q)
	allowanceRepo := ledger_repository.NewAllowanceRepo(q)
	payTokenRepo := fee_repository.NewPayTokenRepo(q, redisCache)
	royaltyRepo := fee_repository.NewRoyaltyRepo(q)

	priceFormatter := pricefomatter.NewPriceFormatter(&pricefomatter.PriceFormatterCfg{
		Paytoken: payTokenRepo,
	})

	hc := hc_usecase.New(hcRepo)
	ledgerUC := ledger_usecase.NewLedgerUseCase(&ledger_usecase.LedgerUseCaseCfg{
		Balance:   balanceRepo,
		Allowance: allowanceRepo,
	})
	assetUC := asset_usecase.NewAssetUseCase(&asset_usecase.AssetUseCaseCfg{
		Contract: contractRepo,
		Holding:  holdingRepo,
		Approval: approvalRepo,
	})
	royaltyUC := fee_usecase.NewRoyaltyUseCase(&fee_usecase.RoyaltyUseCaseCfg{
		Royalty:       royaltyRepo,
		Contract:      contractRepo,
		RegistryOwner: domain.Address(viper.GetString("royalty.registryOwner")),
		MaxBps:        viper.GetInt64("royalty.maxBps"),
	})
	feeEngine := fee_usecase.NewEngine(&fee_usecase.EngineCfg{
		PayToken:          payTokenRepo,
		Royalty:           royaltyUC,
		Ledger:            ledgerUC,
		PlatformRecipient: domain.Address(viper.GetString("exchange.platformRecipient")),
	})
	auctionUC := marketplace_usecase.NewAuctionUseCase(&marketplace_usecase.AuctionUseCaseCfg{
		Listing:        listingRepo,
		Activity:       activityRepo,
		Asset:          assetUC,
		Fee:            feeEngine,
		PriceFormatter: priceFormatter,
		Q:              q,
		MinDuration:    viper.GetInt64("exchange.minListingDuration"),
		MaxDuration:    viper.GetInt64("exchange.maxListingDuration"),
	})
	offerUC := marketplace_usecase.NewOfferUseCase(&marketplace_usecase.OfferUseCaseCfg{
		Offer:    offerRepo,
		Activity: activityRepo,
		Asset:    assetUC,
		Fee:      feeEngine,
		Ledger:   ledgerUC,
		Q:        q,
		Escrow:   domain.Address(viper.GetString("exchange.escrow")),
	})
	nonceUC := nonce_usecase.NewNonceUseCase(&nonce_usecase.NonceUseCaseCfg{
		Repo:     usedNonceRepo,
		Activity: activityRepo,
	})
	settlementUC := settlement_usecase.NewSettlementUseCase(&settlement_usecase.SettlementUseCaseCfg{
		Nonce:             nonceUC,
		Asset:             assetUC,
		Fee:               feeEngine,
		Activity:          activityRepo,
		Listing:           listingRepo,
		Q:                 q,
		VerifyingContract: domain.Address(viper.GetString("exchange.address")),
		Salt:              viper.GetString("exchange.salt"),
		Settler:           domain.Address(viper.GetString("exchange.settler")),
	})
	auth := auth_usecase.New(&auth_usecase.AuthUseCaseCfg{
		JwtSecret:          viper.GetString("auth.jwtSecret"),
		SigningMsgTemplate: viper.GetString("auth.signatureMsg"),
		NonceCache:         authNonceCache,
	})

	adminAddresses := viper.GetStringSlice("admin.addresses")
	auth_middleware := auth_middleware.New(auth, adminAddresses)

	hc_delivery.New(e, hc)
	auth_delivery.New(e, auth, viper.GetString("auth.signatureMsg"))
	marketplace_delivery.New(e, auctionUC, offerUC, offerRepo, activityRepo, auth_middleware)
	settlement_delivery.New(e, settlementUC, auth_middleware)
	fee_delivery.New(e, payTokenRepo, royaltyUC, auth_middleware)
	asset_delivery.New(e, assetUC, auth_middleware)
	ledger_delivery.New(e, ledgerUC, auth_middleware)

	e.GET("/check", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"address": c.Get("address").(domain.Address),
		})
	}, auth_middleware.Auth())

	// sweep expired escrow offers in the background
	sweepInterval := viper.GetDuration("sweeper.interval")
	if sweepInterval > 0 {
		chainIds := viper.GetIntSlice("sweeper.chainIds")
		go func() {
			ticker := time.NewTicker(sweepInterval)
			defer ticker.Stop()
			for range ticker.C {
				for _, chainId := range chainIds {
					removed, err := offerUC.RemoveExpiredOffers(ctx.Background(), domain.ChainId(chainId))
					if err != nil {
						log.Log().WithField("err", err).Error("RemoveExpiredOffers failed")
						continue
					}
					if removed > 0 {
						log.Log().WithField("removed", removed).Info("removed expired offers")
					}
				}
			}
		}()
	}

	go func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	ctx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}
