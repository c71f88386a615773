package cache

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/base/log"
	"github.com/x-xyz/mintingkit/base/metrics"
	"github.com/x-xyz/mintingkit/domain/keys"
	"github.com/x-xyz/mintingkit/service/cache/provider"
)

type impl struct {
	ttl         time.Duration
	pfx         string
	cache       provider.Provider
	serialize   Serializer
	deserialize Deserializer
	met         metrics.Service
}

func New(config ServiceConfig) Service {
	if config.Serialize == nil {
		config.Serialize = json.Marshal
	}

	if config.Deserialize == nil {
		config.Deserialize = json.Unmarshal
	}

	return &impl{
		ttl:         config.Ttl,
		pfx:         config.Pfx,
		cache:       config.Cache,
		serialize:   config.Serialize,
		deserialize: config.Deserialize,
		met:         metrics.New("cache"),
	}
}

func (im *impl) GetByFunc(c ctx.Ctx, key string, container interface{}, getter OneTimeGetter) error {
	err := im.Get(c, key, container)
	if err == nil {
		im.met.BumpSum("hit", 1, "prefix", im.pfx)
		return nil
	} else if err != ErrNotFound {
		c.WithFields(log.Fields{"err": err, "key": key}).Warn("Get failed, falling back to getter")
	}
	im.met.BumpSum("miss", 1, "prefix", im.pfx)

	val, err := getter()
	if err != nil {
		return err
	}

	if err := im.Set(c, key, val); err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("Set failed")
	}

	reflect.ValueOf(container).Elem().Set(reflect.ValueOf(val).Elem())

	return nil
}

func (im *impl) Get(c ctx.Ctx, key string, container interface{}) error {
	key = keys.RedisKey(im.pfx, key)

	if val, _, err := im.cache.Get(c, key); err == provider.ErrNotFound {
		return ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("cache.Get failed")
		return err
	} else if err := im.deserialize(val, container); err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("deserialize failed")
		return err
	}

	return nil
}

func (im *impl) Set(c ctx.Ctx, key string, value interface{}) error {
	key = keys.RedisKey(im.pfx, key)

	if val, err := im.serialize(value); err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("serialize failed")
		return err
	} else if err := im.cache.Set(c, key, val, im.ttl); err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("cache.Set failed")
		return err
	}

	return nil
}

func (im *impl) Del(c ctx.Ctx, key string) error {
	key = keys.RedisKey(im.pfx, key)

	if err := im.cache.Del(c, key); err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("cache.Del failed")
		return err
	}

	return nil
}
