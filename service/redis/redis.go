package redis

import (
	"errors"
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/x-xyz/mintingkit/base/ctx"
)

const (
	// Forever keeps a key without expiration
	Forever = time.Duration(-1)
)

var (
	// ErrNotFound is returned when the key does not exist
	ErrNotFound = redis.ErrNil
	// ErrNoPool is returned when the service has no connection pool
	ErrNoPool = errors.New("redis pool not available")
)

// Service is the subset of redis commands used by the minter
type Service interface {
	Get(context ctx.Ctx, key string) ([]byte, error)
	Set(context ctx.Ctx, key string, val []byte, expire time.Duration) error
	SetNX(context ctx.Ctx, key string, val []byte, expire time.Duration) (bool, error)
	Del(context ctx.Ctx, ks ...string) (int, error)
	Exists(context ctx.Ctx, key string) (bool, error)
	// TTL returns the remaining time to live in seconds
	TTL(context ctx.Ctx, key string) (int, error)
	Expire(context ctx.Ctx, key string, ttl time.Duration) error
	Ping(context ctx.Ctx) error
	Name() string
}
