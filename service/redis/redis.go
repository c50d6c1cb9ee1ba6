package redis

import (
	"errors"
	"time"

	"github.com/x-xyz/exchange/base/ctx"
)

// Forever is the ttl value for keys without expiry
const Forever = time.Duration(-1)

var (
	// ErrNotFound is returned when the key does not exist
	ErrNotFound = errors.New("not found")
	// ErrNoTTL is returned by TTL when the key exists without expiry
	ErrNoTTL = errors.New("no ttl")
)

// Service is a thin typed wrapper over a redigo pool
type Service interface {
	Get(ctx ctx.Ctx, key string) ([]byte, error)
	Set(ctx ctx.Ctx, key string, val []byte, expire time.Duration) error
	// SetNX sets the key only when it does not exist yet
	SetNX(ctx ctx.Ctx, key string, val []byte, expire time.Duration) error
	Del(ctx ctx.Ctx, ks ...string) (int, error)
	Exists(ctx ctx.Ctx, key string) (bool, error)
	// TTL returns the remaining ttl in seconds
	TTL(ctx ctx.Ctx, key string) (int, error)
	Incr(ctx ctx.Ctx, key string) (int64, error)
	Incrby(ctx ctx.Ctx, key string, val int) (int64, error)
}
