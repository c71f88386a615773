package cache

import (
	"errors"
	"time"

	"github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/service/cache/provider"
)

var (
	ErrNotFound = errors.New("Cache not found")
)

type OneTimeGetter func() (interface{}, error)

type Serializer func(interface{}) ([]byte, error)

type Deserializer func([]byte, interface{}) error

// Service caches typed values under a key prefix
type Service interface {
	// GetByFunc reads key into container, calling getter and filling the cache on a miss.
	// getter must return a pointer of the same type as container.
	GetByFunc(c ctx.Ctx, key string, container interface{}, getter OneTimeGetter) error
	Get(c ctx.Ctx, key string, container interface{}) error
	Set(c ctx.Ctx, key string, value interface{}) error
	Del(c ctx.Ctx, key string) error
}

type ServiceConfig struct {
	Ttl         time.Duration
	Pfx         string
	Cache       provider.Provider
	Serialize   Serializer
	Deserialize Deserializer
}
