package order

import (
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"github.com/x-xyz/exchange/domain"
)

const (
	testVerifyingContract = domain.Address("0x1f0eb7b16426bcf98a1d1b04a009364c0eba10ea")
	testSalt              = "0x0000000000000000000000000000000000000000000000000000000000015dec"
)

func signOrder(t *testing.T, od *Order) {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	od.Signer = domain.Address(crypto.PubkeyToAddress(key.PublicKey).Hex()).ToLower()

	hash, err := od.SigningHash(testVerifyingContract, testSalt)
	require.NoError(t, err)

	sig, err := crypto.Sign(hash, key)
	require.NoError(t, err)

	od.R = hexutil.Encode(sig[:32])
	od.S = hexutil.Encode(sig[32:64])
	od.V = int(sig[64]) + 27
}

func makeSaleOrder() *Order {
	return &Order{
		ChainId:      1,
		Kind:         KindSale,
		Signer:       "0x5409ed021d9299bf6814279a6a1411a7e866a631",
		Collection:   "0xdcf0de6b17785a143d006e1515a6afd123cde8ba",
		TokenId:      "42",
		Quantity:     1,
		PaymentToken: "0xb4fbf271143f4fbf7b91a5ded31805e42b2208d6",
		Price:        "200000000000000000",
		Nonce:        "7",
		ExpiresAt:    "1893456000",
	}
}

func TestVerifySignature(t *testing.T) {
	req := require.New(t)

	od := makeSaleOrder()
	signOrder(t, od)

	req.NoError(od.VerifySignature(testVerifyingContract, testSalt))
}

func TestVerifySignatureRejectsTamperedOrder(t *testing.T) {
	req := require.New(t)

	od := makeSaleOrder()
	signOrder(t, od)

	od.Price = "1"
	req.Equal(domain.ErrInvalidSignature, od.VerifySignature(testVerifyingContract, testSalt))
}

func TestVerifySignatureRejectsWrongSigner(t *testing.T) {
	req := require.New(t)

	od := makeSaleOrder()
	signOrder(t, od)

	od.Signer = "0xce4468e7ce84aceb74363f4ea64e5a038176f369"
	req.Equal(domain.ErrInvalidSignature, od.VerifySignature(testVerifyingContract, testSalt))
}

func TestVerifySignatureRejectsWrongDomain(t *testing.T) {
	req := require.New(t)

	od := makeSaleOrder()
	signOrder(t, od)

	// same order signed for another deployment must not verify
	other := domain.Address("0x322813fd9a801c5507c9de605d63cea4f2ce6c44")
	req.Equal(domain.ErrInvalidSignature, od.VerifySignature(other, testSalt))
}

func TestHashDependsOnKind(t *testing.T) {
	req := require.New(t)

	offer := makeSaleOrder()
	offer.Kind = KindOffer

	collectionOffer := makeSaleOrder()
	collectionOffer.Kind = KindCollectionOffer
	collectionOffer.IsForCollection = true

	h1, err := offer.Hash()
	req.NoError(err)
	h2, err := collectionOffer.Hash()
	req.NoError(err)
	// both settle under the Offer schema but the isForCollection flag is
	// part of the signed payload
	req.NotEqual(h1, h2)
}

func TestPrimaryType(t *testing.T) {
	req := require.New(t)

	cases := map[Kind]string{
		KindSale:            "Sale",
		KindPrivateSale:     "PrivateSale",
		KindReservedSale:    "ReservedSale",
		KindOffer:           "Offer",
		KindCollectionOffer: "Offer",
		KindDutchAuction:    "DutchAuction",
		KindReserveAuction:  "ReserveAuction",
	}
	for kind, want := range cases {
		got, err := kind.PrimaryType()
		req.NoError(err)
		req.Equal(want, got)
	}

	_, err := Kind("bogus").PrimaryType()
	req.Equal(domain.ErrBadParamInput, err)
}

func TestToKind(t *testing.T) {
	req := require.New(t)

	kind, err := ToKind("dutchAuction")
	req.NoError(err)
	req.Equal(KindDutchAuction, kind)

	_, err = ToKind("english")
	req.Equal(domain.ErrBadParamInput, err)
}
