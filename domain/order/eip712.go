package order

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/x-xyz/exchange/base/ethereum"
	"github.com/x-xyz/exchange/domain"
)

const Eip712DomainName = "EIP712Domain"

func GetDomainSeperator(chainId domain.ChainId, address domain.Address, salt string) apitypes.TypedDataDomain {
	return apitypes.TypedDataDomain{
		Name:              "XExchange",
		Version:           "2",
		ChainId:           math.NewHexOrDecimal256(int64(chainId)),
		VerifyingContract: address.ToLowerStr(),
		Salt:              salt,
	}
}

// OrderTypes holds one struct schema per order kind. Offers and collection
// offers share the Offer schema, the isForCollection flag tells them apart.
var OrderTypes = apitypes.Types{
	"Sale": {
		{Name: "signer", Type: "address"},
		{Name: "collection", Type: "address"},
		{Name: "tokenId", Type: "uint256"},
		{Name: "quantity", Type: "uint256"},
		{Name: "paymentToken", Type: "address"},
		{Name: "price", Type: "uint256"},
		{Name: "nonce", Type: "uint256"},
		{Name: "expiresAt", Type: "uint256"},
	},
	"PrivateSale": {
		{Name: "signer", Type: "address"},
		{Name: "collection", Type: "address"},
		{Name: "tokenId", Type: "uint256"},
		{Name: "quantity", Type: "uint256"},
		{Name: "paymentToken", Type: "address"},
		{Name: "price", Type: "uint256"},
		{Name: "reservedBuyer", Type: "address"},
		{Name: "nonce", Type: "uint256"},
		{Name: "expiresAt", Type: "uint256"},
	},
	"ReservedSale": {
		{Name: "signer", Type: "address"},
		{Name: "collection", Type: "address"},
		{Name: "tokenId", Type: "uint256"},
		{Name: "quantity", Type: "uint256"},
		{Name: "paymentToken", Type: "address"},
		{Name: "price", Type: "uint256"},
		{Name: "reservedBuyer", Type: "address"},
		{Name: "nonce", Type: "uint256"},
		{Name: "expiresAt", Type: "uint256"},
	},
	"Offer": {
		{Name: "signer", Type: "address"},
		{Name: "collection", Type: "address"},
		{Name: "tokenId", Type: "uint256"},
		{Name: "quantity", Type: "uint256"},
		{Name: "paymentToken", Type: "address"},
		{Name: "price", Type: "uint256"},
		{Name: "isForCollection", Type: "bool"},
		{Name: "nonce", Type: "uint256"},
		{Name: "expiresAt", Type: "uint256"},
	},
	"DutchAuction": {
		{Name: "signer", Type: "address"},
		{Name: "collection", Type: "address"},
		{Name: "tokenId", Type: "uint256"},
		{Name: "quantity", Type: "uint256"},
		{Name: "paymentToken", Type: "address"},
		{Name: "startingPrice", Type: "uint256"},
		{Name: "endingPrice", Type: "uint256"},
		{Name: "startingAt", Type: "uint256"},
		{Name: "duration", Type: "uint256"},
		{Name: "nonce", Type: "uint256"},
		{Name: "expiresAt", Type: "uint256"},
	},
	"ReserveAuction": {
		{Name: "signer", Type: "address"},
		{Name: "collection", Type: "address"},
		{Name: "tokenId", Type: "uint256"},
		{Name: "quantity", Type: "uint256"},
		{Name: "paymentToken", Type: "address"},
		{Name: "price", Type: "uint256"},
		{Name: "isBid", Type: "bool"},
		{Name: "nonce", Type: "uint256"},
		{Name: "expiresAt", Type: "uint256"},
	},
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
		{Name: "salt", Type: "bytes32"},
	},
}

func (k Kind) PrimaryType() (string, error) {
	switch k {
	case KindSale:
		return "Sale", nil
	case KindPrivateSale:
		return "PrivateSale", nil
	case KindReservedSale:
		return "ReservedSale", nil
	case KindOffer, KindCollectionOffer:
		return "Offer", nil
	case KindDutchAuction:
		return "DutchAuction", nil
	case KindReserveAuction:
		return "ReserveAuction", nil
	}
	return "", domain.ErrBadParamInput
}

func (o *Order) ToMessage() apitypes.TypedDataMessage {
	msg := apitypes.TypedDataMessage{
		"signer":       o.Signer.ToLowerStr(),
		"collection":   o.Collection.ToLowerStr(),
		"tokenId":      o.TokenId.String(),
		"quantity":     strconv.FormatInt(o.Quantity, 10),
		"paymentToken": o.PaymentToken.ToLowerStr(),
		"nonce":        o.Nonce,
		"expiresAt":    o.ExpiresAt,
	}
	switch o.Kind {
	case KindPrivateSale, KindReservedSale:
		msg["price"] = o.Price
		msg["reservedBuyer"] = o.ReservedBuyer.ToLowerStr()
	case KindOffer, KindCollectionOffer:
		msg["price"] = o.Price
		msg["isForCollection"] = o.IsForCollection
	case KindDutchAuction:
		msg["startingPrice"] = o.Price
		msg["endingPrice"] = o.EndingPrice
		msg["startingAt"] = o.StartingAt
		msg["duration"] = o.Duration
	case KindReserveAuction:
		msg["price"] = o.Price
		msg["isBid"] = o.IsBid
	default:
		msg["price"] = o.Price
	}
	return msg
}

// Hash returns the EIP-712 struct hash of the order under its kind's schema.
// The struct hash does not cover the signing domain, but the encoder refuses
// typed data whose domain is entirely empty, so the fixed name and version
// are attached.
func (o *Order) Hash() ([]byte, error) {
	primaryType, err := o.Kind.PrimaryType()
	if err != nil {
		return nil, err
	}
	typedData := apitypes.TypedData{
		Types:       OrderTypes,
		PrimaryType: primaryType,
		Domain:      apitypes.TypedDataDomain{Name: "XExchange", Version: "2"},
		Message:     o.ToMessage(),
	}
	return typedData.HashStruct(typedData.PrimaryType, typedData.Message)
}

// SigningHash is the final digest that was signed: keccak256 of \x19\x01,
// the domain separator and the struct hash
func (o *Order) SigningHash(verifyingContract domain.Address, salt string) ([]byte, error) {
	structHash, err := o.Hash()
	if err != nil {
		return nil, err
	}
	typedData := apitypes.TypedData{
		Types:       OrderTypes,
		PrimaryType: Eip712DomainName,
		Domain:      GetDomainSeperator(o.ChainId, verifyingContract, salt),
	}
	domainSeperator, err := typedData.HashStruct(Eip712DomainName, typedData.Domain.Map())
	if err != nil {
		return nil, err
	}
	rawData := []byte(fmt.Sprintf("\x19\x01%s%s", string(domainSeperator), string(structHash)))
	return crypto.Keccak256(rawData), nil
}

func (o *Order) Signature() []byte {
	sig := []byte{}
	sig = append(sig, common.FromHex(o.R)...)
	sig = append(sig, common.FromHex(o.S)...)
	sig = append(sig, big.NewInt(int64(o.V)).Bytes()...)
	return sig
}

// VerifySignature recovers the signer from the order's r, s, v signature and
// checks it against the order's signer field
func (o *Order) VerifySignature(verifyingContract domain.Address, salt string) error {
	hash, err := o.SigningHash(verifyingContract, salt)
	if err != nil {
		return err
	}
	valid, err := ethereum.ValidateHashSignature(hash, hexutil.Encode(o.Signature()), o.Signer.ToLowerStr())
	if err != nil || !valid {
		return domain.ErrInvalidSignature
	}
	return nil
}
