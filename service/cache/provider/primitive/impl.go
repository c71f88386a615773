package primitive

import (
	"time"

	"github.com/coocood/freecache"

	"github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/base/log"
	"github.com/x-xyz/mintingkit/service/cache/provider"
)

type impl struct {
	name  string
	cache *freecache.Cache
}

// NewPrimitive creates an in-process cache of sizeMB megabytes
func NewPrimitive(name string, sizeMB int) provider.Provider {
	return &impl{name, freecache.NewCache(sizeMB * 1024 * 1024)}
}

func (im *impl) Get(c ctx.Ctx, key string) ([]byte, time.Duration, error) {
	val, ttl, err := im.cache.GetWithExpiration([]byte(key))
	if err == freecache.ErrNotFound {
		return nil, 0, provider.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "key": key, "cache": im.name}).Error("cache.Get failed")
		return nil, 0, err
	}
	// freecache reports the expiry as a unix timestamp
	if ttl == 0 {
		return val, 0, nil
	}
	return val, time.Until(time.Unix(int64(ttl), 0)), nil
}

func (im *impl) Set(c ctx.Ctx, key string, value []byte, ttl time.Duration) error {
	if err := im.cache.Set([]byte(key), value, int(ttl.Seconds())); err != nil {
		c.WithFields(log.Fields{"err": err, "key": key, "cache": im.name}).Error("cache.Set failed")
		return err
	}
	return nil
}

func (im *impl) Del(c ctx.Ctx, key string) error {
	im.cache.Del([]byte(key))
	return nil
}
