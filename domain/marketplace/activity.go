package marketplace

import (
	"time"

	"github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/domain"
)

type ActivityType string

const (
	ActivityTypeList          ActivityType = "list"
	ActivityTypeCancelListing ActivityType = "cancelListing"
	ActivityTypeBuy           ActivityType = "buy"
	ActivityTypeSold          ActivityType = "sold"
	ActivityTypeCreateOffer   ActivityType = "createOffer"
	ActivityTypeAcceptOffer   ActivityType = "acceptOffer"
	ActivityTypeCancelOffer   ActivityType = "cancelOffer"
	ActivityTypeSettleAuction ActivityType = "settleAuction"
	ActivityTypeCancelAllBids ActivityType = "cancelAllBids"
	ActivityTypeExpireOffer   ActivityType = "expireOffer"
)

// Activity is the emitted record of a marketplace event
type Activity struct {
	ChainId      domain.ChainId `json:"chainId" bson:"chainId"`
	Collection   domain.Address `json:"collection" bson:"collection"`
	TokenId      domain.TokenId `json:"tokenId" bson:"tokenId"`
	Type         ActivityType   `json:"type" bson:"type"`
	Account      domain.Address `json:"account" bson:"account"`
	Quantity     int64          `json:"quantity" bson:"quantity"`
	Price        string         `json:"price" bson:"price"`
	PaymentToken domain.Address `json:"paymentToken" bson:"paymentToken"`
	DisplayPrice string         `json:"displayPrice" bson:"displayPrice"`
	TotalFee     string         `json:"totalFee" bson:"totalFee"`
	Time         time.Time      `json:"time" bson:"time"`
}

type ActivityFindAllOptions struct {
	ChainId    *domain.ChainId
	Collection *domain.Address
	TokenId    *domain.TokenId
	Account    *domain.Address
	Type       *ActivityType
	Offset     *int32
	Limit      *int32
}

type ActivityFindAllOptionsFunc func(*ActivityFindAllOptions) error

func GetActivityFindAllOptions(opts ...ActivityFindAllOptionsFunc) (ActivityFindAllOptions, error) {
	res := ActivityFindAllOptions{}
	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func ActivityWithChainId(chainId domain.ChainId) ActivityFindAllOptionsFunc {
	return func(options *ActivityFindAllOptions) error {
		options.ChainId = &chainId
		return nil
	}
}

func ActivityWithCollection(collection domain.Address) ActivityFindAllOptionsFunc {
	return func(options *ActivityFindAllOptions) error {
		options.Collection = collection.ToLowerPtr()
		return nil
	}
}

func ActivityWithTokenId(tokenId domain.TokenId) ActivityFindAllOptionsFunc {
	return func(options *ActivityFindAllOptions) error {
		options.TokenId = &tokenId
		return nil
	}
}

func ActivityWithAccount(account domain.Address) ActivityFindAllOptionsFunc {
	return func(options *ActivityFindAllOptions) error {
		options.Account = account.ToLowerPtr()
		return nil
	}
}

func ActivityWithType(typ ActivityType) ActivityFindAllOptionsFunc {
	return func(options *ActivityFindAllOptions) error {
		options.Type = &typ
		return nil
	}
}

func ActivityWithPagination(offset, limit int32) ActivityFindAllOptionsFunc {
	return func(options *ActivityFindAllOptions) error {
		options.Offset = &offset
		options.Limit = &limit
		return nil
	}
}

type ActivityRepo interface {
	FindAll(ctx ctx.Ctx, opts ...ActivityFindAllOptionsFunc) ([]*Activity, error)
	Insert(ctx ctx.Ctx, activity *Activity) error
}
