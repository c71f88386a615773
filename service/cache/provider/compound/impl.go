package compound

import (
	"time"

	"github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/service/cache/provider"
)

type impl struct {
	layers []provider.Provider
}

// NewCompound stacks providers, fastest first. Get returns on the first hit and
// fills the layers in front of it.
func NewCompound(layers []provider.Provider) provider.Provider {
	return &impl{layers}
}

func (im *impl) Get(c ctx.Ctx, key string) ([]byte, time.Duration, error) {
	var (
		val    []byte
		ttl    time.Duration
		err    error
		hitIdx = -1
	)

	for idx, lyr := range im.layers {
		if val, ttl, err = lyr.Get(c, key); err == provider.ErrNotFound {
			continue
		} else if err != nil {
			return nil, 0, err
		}
		hitIdx = idx
		break
	}

	if hitIdx == -1 {
		return nil, 0, provider.ErrNotFound
	}

	for idx := 0; idx < hitIdx; idx++ {
		if err := im.layers[idx].Set(c, key, val, ttl); err != nil {
			return nil, 0, err
		}
	}

	return val, ttl, nil
}

func (im *impl) Set(c ctx.Ctx, key string, value []byte, ttl time.Duration) error {
	for _, lyr := range im.layers {
		if err := lyr.Set(c, key, value, ttl); err != nil {
			return err
		}
	}
	return nil
}

func (im *impl) Del(c ctx.Ctx, key string) error {
	for _, lyr := range im.layers {
		if err := lyr.Del(c, key); err != nil {
			return err
		}
	}
	return nil
}
