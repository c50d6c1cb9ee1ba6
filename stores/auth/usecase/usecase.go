package usecase

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"

	"github.com/x-xyz/exchange/base/ctx"
	"github.com/x-xyz/exchange/base/ethereum"
	"github.com/x-xyz/exchange/domain"
	"github.com/x-xyz/exchange/service/cache"
)

type impl struct {
	jwtSecret []byte
	// signingMsgTemplate carries a %s placeholder for the one time nonce
	signingMsgTemplate string
	nonceCache         cache.Service
	tokenTTL           time.Duration
}

type AuthUseCaseCfg struct {
	JwtSecret          string
	SigningMsgTemplate string
	NonceCache         cache.Service
	TokenTTL           time.Duration
}

func New(cfg *AuthUseCaseCfg) domain.AuthUsecase {
	ttl := cfg.TokenTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &impl{
		jwtSecret:          []byte(cfg.JwtSecret),
		signingMsgTemplate: cfg.SigningMsgTemplate,
		nonceCache:         cfg.NonceCache,
		tokenTTL:           ttl,
	}
}

func (im *impl) GenerateNonce(ctx ctx.Ctx, address domain.Address) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		ctx.WithField("err", err).Error("uuid.NewRandom failed")
		return "", err
	}
	nonce := id.String()
	if err := im.nonceCache.Set(ctx, address.ToLowerStr(), nonce); err != nil {
		ctx.WithField("err", err).Error("nonceCache.Set failed")
		return "", err
	}
	return nonce, nil
}

// SignToken verifies the personal-sign signature over the signing message
// built from the caller's pending nonce and issues a session token. The nonce
// is single use, it is burnt whether or not verification succeeds.
func (im *impl) SignToken(ctx ctx.Ctx, address domain.Address, signature string) (string, error) {
	var nonce string
	if err := im.nonceCache.Get(ctx, address.ToLowerStr(), &nonce); err != nil {
		if err == cache.ErrNotFound {
			return "", domain.ErrInvalidSignature
		}
		ctx.WithField("err", err).Error("nonceCache.Get failed")
		return "", err
	}
	if err := im.nonceCache.Del(ctx, address.ToLowerStr()); err != nil {
		ctx.WithField("err", err).Error("nonceCache.Del failed")
	}

	msg := fmt.Sprintf(im.signingMsgTemplate, nonce)
	valid, err := ethereum.ValidateMsgSignature([]byte(msg), signature, address.ToLowerStr())
	if err != nil || !valid {
		return "", domain.ErrInvalidSignature
	}

	claims := domain.JwtCustomClaims{
		Address: address.ToLowerStr(),
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(im.tokenTTL).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	if ss, err := token.SignedString(im.jwtSecret); err != nil {
		ctx.WithField("err", err).Error("token.SignedString failed")
		return "", err
	} else {
		return ss, nil
	}
}

func (im *impl) ParseToken(ctx ctx.Ctx, str string) (string, error) {
	token, err := jwt.ParseWithClaims(str, &domain.JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("Unexpected signing method: %v", token.Header["alg"])
		}
		return im.jwtSecret, nil
	})
	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(*domain.JwtCustomClaims); ok && token.Valid {
		return claims.Address, nil
	}

	return "", domain.ErrUnauthorized
}
