package usecase

import (
	"github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/base/log"
	"github.com/x-xyz/exchange/domain"
	"github.com/x-xyz/exchange/domain/asset"
	"github.com/x-xyz/exchange/domain/fee"
)

type royaltyUCImpl struct {
	royalty       fee.RoyaltyRepo
	contract      asset.ContractRepo
	registryOwner domain.Address
	maxBps        int64
}

type RoyaltyUseCaseCfg struct {
	Royalty  fee.RoyaltyRepo
	Contract asset.ContractRepo
	// RegistryOwner may override royalties of any collection
	RegistryOwner domain.Address
	// MaxBps caps every configured royalty share
	MaxBps int64
}

func NewRoyaltyUseCase(cfg *RoyaltyUseCaseCfg) fee.RoyaltyUseCase {
	return &royaltyUCImpl{
		royalty:       cfg.Royalty,
		contract:      cfg.Contract,
		registryOwner: cfg.RegistryOwner.ToLower(),
		maxBps:        cfg.MaxBps,
	}
}

func (im *royaltyUCImpl) Resolve(ctx ctx.Ctx, chainId domain.ChainId, collection domain.Address, tokenId domain.TokenId) (*fee.Royalty, error) {
	tokenLevel, err := im.royalty.FindOne(ctx, fee.RoyaltyId{
		ChainId:    chainId,
		Collection: collection.ToLower(),
		TokenId:    tokenId,
	})
	if err == nil {
		return tokenLevel, nil
	} else if err != domain.ErrNotFound {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
			"tokenId":    tokenId,
		}).Error("royalty.FindOne failed")
		return nil, err
	}

	collectionLevel, err := im.royalty.FindOne(ctx, fee.RoyaltyId{
		ChainId:    chainId,
		Collection: collection.ToLower(),
	})
	if err == domain.ErrNotFound {
		return nil, nil
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
		}).Error("royalty.FindOne failed")
		return nil, err
	}
	return collectionLevel, nil
}

func (im *royaltyUCImpl) SetCollectionRoyalty(ctx ctx.Ctx, caller domain.Address, royalty *fee.Royalty) error {
	royalty.TokenId = ""
	return im.set(ctx, caller, royalty)
}

func (im *royaltyUCImpl) SetTokenRoyalty(ctx ctx.Ctx, caller domain.Address, royalty *fee.Royalty) error {
	if len(royalty.TokenId) == 0 {
		return domain.ErrBadParamInput
	}
	return im.set(ctx, caller, royalty)
}

func (im *royaltyUCImpl) set(ctx ctx.Ctx, caller domain.Address, royalty *fee.Royalty) error {
	if royalty.Bps < 0 || royalty.Bps > im.maxBps {
		return domain.ErrInvalidConfiguration
	}
	if royalty.Recipient.IsEmpty() {
		return domain.ErrBadParamInput
	}

	if err := im.assertCanConfigure(ctx, caller, royalty.ChainId, royalty.Collection); err != nil {
		return err
	}

	royalty.Collection = royalty.Collection.ToLower()
	royalty.Recipient = royalty.Recipient.ToLower()
	if err := im.royalty.Upsert(ctx, royalty); err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"royalty": royalty,
		}).Error("royalty.Upsert failed")
		return err
	}
	return nil
}

func (im *royaltyUCImpl) assertCanConfigure(ctx ctx.Ctx, caller domain.Address, chainId domain.ChainId, collection domain.Address) error {
	if caller.Equals(im.registryOwner) {
		return nil
	}
	contract, err := im.contract.FindOne(ctx, asset.ContractId{ChainId: chainId, Address: collection.ToLower()})
	if err == domain.ErrNotFound {
		return domain.ErrUnauthorized
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
		}).Error("contract.FindOne failed")
		return err
	}
	if !caller.Equals(contract.Owner) {
		return domain.ErrUnauthorized
	}
	return nil
}
