package usecase

import (
	"github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/base/log"
	"github.com/x-xyz/exchange/domain"
	"github.com/x-xyz/exchange/domain/asset"
)

type assetUCImpl struct {
	contract asset.ContractRepo
	holding  asset.HoldingRepo
	approval asset.ApprovalRepo
}

type AssetUseCaseCfg struct {
	Contract asset.ContractRepo
	Holding  asset.HoldingRepo
	Approval asset.ApprovalRepo
}

func NewAssetUseCase(cfg *AssetUseCaseCfg) asset.UseCase {
	return &assetUCImpl{
		contract: cfg.Contract,
		holding:  cfg.Holding,
		approval: cfg.Approval,
	}
}

func (im *assetUCImpl) TokenType(ctx ctx.Ctx, id asset.ContractId) (domain.TokenType, error) {
	contract, err := im.contract.FindOne(ctx, id)
	if err == domain.ErrNotFound {
		return 0, domain.ErrInvalidInterface
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("contract.FindOne failed")
		return 0, err
	}
	return contract.TokenType, nil
}

func (im *assetUCImpl) AssertOwnsAndApproved(ctx ctx.Ctx, id asset.Id, seller domain.Address, quantity int64) error {
	holdingId := asset.HoldingId{
		ChainId:    id.ChainId,
		Collection: id.Collection,
		TokenId:    id.TokenId,
		Owner:      seller.ToLower(),
	}
	holding, err := im.holding.FindOne(ctx, holdingId)
	if err == domain.ErrNotFound {
		return domain.ErrSellerNotAssetOwner
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  holdingId,
		}).Error("holding.FindOne failed")
		return err
	}
	if holding.Balance < quantity {
		return domain.ErrSellerNotAssetOwner
	}

	approvalId := asset.ApprovalId{
		ChainId:    id.ChainId,
		Collection: id.Collection,
		Owner:      seller.ToLower(),
	}
	approval, err := im.approval.FindOne(ctx, approvalId)
	if err == domain.ErrNotFound {
		return domain.ErrUnauthorized
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  approvalId,
		}).Error("approval.FindOne failed")
		return err
	}
	if !approval.Approved {
		return domain.ErrUnauthorized
	}
	return nil
}

func (im *assetUCImpl) Transfer(ctx ctx.Ctx, id asset.Id, from, to domain.Address, quantity int64) error {
	if quantity <= 0 {
		return domain.ErrInvalidAmount
	}

	tokenType, err := im.TokenType(ctx, asset.ContractId{ChainId: id.ChainId, Address: id.Collection})
	if err != nil {
		return err
	}
	if tokenType == domain.TokenType721 && quantity != 1 {
		return domain.ErrInvalidAmount
	}

	fromId := asset.HoldingId{
		ChainId:    id.ChainId,
		Collection: id.Collection,
		TokenId:    id.TokenId,
		Owner:      from.ToLower(),
	}
	fromHolding, err := im.holding.FindOne(ctx, fromId)
	if err == domain.ErrNotFound {
		return domain.ErrSellerNotAssetOwner
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  fromId,
		}).Error("holding.FindOne failed")
		return err
	}
	if fromHolding.Balance < quantity {
		return domain.ErrSellerNotAssetOwner
	}

	fromHolding.Balance -= quantity
	if fromHolding.Balance == 0 {
		if err := im.holding.Remove(ctx, fromId); err != nil {
			return err
		}
	} else {
		if err := im.holding.Upsert(ctx, fromHolding); err != nil {
			return err
		}
	}

	toId := asset.HoldingId{
		ChainId:    id.ChainId,
		Collection: id.Collection,
		TokenId:    id.TokenId,
		Owner:      to.ToLower(),
	}
	toHolding, err := im.holding.FindOne(ctx, toId)
	if err == domain.ErrNotFound {
		toHolding = &asset.Holding{
			ChainId:    toId.ChainId,
			Collection: toId.Collection,
			TokenId:    toId.TokenId,
			Owner:      toId.Owner,
			Balance:    0,
		}
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  toId,
		}).Error("holding.FindOne failed")
		return err
	}
	toHolding.Balance += quantity
	if err := im.holding.Upsert(ctx, toHolding); err != nil {
		return err
	}
	return nil
}

func (im *assetUCImpl) RegisterContract(ctx ctx.Ctx, contract *asset.Contract) error {
	if !contract.TokenType.IsValid() {
		return domain.ErrInvalidInterface
	}
	contract.Address = contract.Address.ToLower()
	contract.Owner = contract.Owner.ToLower()
	if err := im.contract.Upsert(ctx, contract); err != nil {
		ctx.WithFields(log.Fields{
			"err":      err,
			"contract": contract,
		}).Error("contract.Upsert failed")
		return err
	}
	return nil
}

func (im *assetUCImpl) Mint(ctx ctx.Ctx, id asset.Id, owner domain.Address, quantity int64) error {
	if quantity <= 0 {
		return domain.ErrInvalidAmount
	}

	tokenType, err := im.TokenType(ctx, asset.ContractId{ChainId: id.ChainId, Address: id.Collection})
	if err != nil {
		return err
	}
	if tokenType == domain.TokenType721 {
		if quantity != 1 {
			return domain.ErrInvalidAmount
		}
		holdings, err := im.holding.FindByToken(ctx, id)
		if err != nil {
			return err
		}
		// a unique token can only ever have one holder
		if len(holdings) > 0 {
			return domain.ErrConflict
		}
	}

	holdingId := asset.HoldingId{
		ChainId:    id.ChainId,
		Collection: id.Collection,
		TokenId:    id.TokenId,
		Owner:      owner.ToLower(),
	}
	holding, err := im.holding.FindOne(ctx, holdingId)
	if err == domain.ErrNotFound {
		holding = &asset.Holding{
			ChainId:    holdingId.ChainId,
			Collection: holdingId.Collection,
			TokenId:    holdingId.TokenId,
			Owner:      holdingId.Owner,
			Balance:    0,
		}
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  holdingId,
		}).Error("holding.FindOne failed")
		return err
	}
	holding.Balance += quantity
	if err := im.holding.Upsert(ctx, holding); err != nil {
		return err
	}
	return nil
}

func (im *assetUCImpl) SetApproval(ctx ctx.Ctx, chainId domain.ChainId, collection, owner domain.Address, approved bool) error {
	approval := &asset.Approval{
		ChainId:    chainId,
		Collection: collection.ToLower(),
		Owner:      owner.ToLower(),
		Approved:   approved,
	}
	if err := im.approval.Upsert(ctx, approval); err != nil {
		ctx.WithFields(log.Fields{
			"err":      err,
			"approval": approval,
		}).Error("approval.Upsert failed")
		return err
	}
	return nil
}

func (im *assetUCImpl) Holdings(ctx ctx.Ctx, id asset.Id) ([]*asset.Holding, error) {
	return im.holding.FindByToken(ctx, id)
}
