package redis

import (
	"time"

	"github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/base/log"
	"github.com/x-xyz/mintingkit/service/cache/provider"
	"github.com/x-xyz/mintingkit/service/redis"
)

type impl struct {
	redis redis.Service
}

// NewRedis shares cached values between minter instances
func NewRedis(redis redis.Service) provider.Provider {
	return &impl{redis}
}

func (im *impl) Get(c ctx.Ctx, key string) ([]byte, time.Duration, error) {
	val, err := im.redis.Get(c, key)
	if err == redis.ErrNotFound {
		return nil, 0, provider.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("redis.Get failed")
		return nil, 0, err
	}

	ttl, err := im.redis.TTL(c, key)
	if err == redis.ErrNotFound {
		// expired between the two calls
		return nil, 0, provider.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("redis.TTL failed")
		return nil, 0, err
	}
	if ttl < 0 {
		return val, 0, nil
	}
	return val, time.Duration(ttl) * time.Second, nil
}

func (im *impl) Set(c ctx.Ctx, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = redis.Forever
	}
	if err := im.redis.Set(c, key, value, ttl); err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("redis.Set failed")
		return err
	}
	return nil
}

func (im *impl) Del(c ctx.Ctx, key string) error {
	if _, err := im.redis.Del(c, key); err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("redis.Del failed")
		return err
	}
	return nil
}
