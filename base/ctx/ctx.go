package ctx

import (
	"context"
	"time"

	log "github.com/x-xyz/mintingkit/base/log"
)

// Ctx carries a context.Context together with a field logger, so every layer can
// log with the fields (request id, mint id, ...) attached by its callers.
type Ctx struct {
	context.Context
	log.Logger
}

func Background() Ctx {
	return Ctx{
		Context: context.Background(),
		Logger:  log.Log(),
	}
}

func Todo() Ctx {
	return Ctx{
		Context: context.TODO(),
		Logger:  log.Log(),
	}
}

// From wraps a plain context, e.g. the one of an incoming http request
func From(c context.Context) Ctx {
	if cc, ok := c.(Ctx); ok {
		return cc
	}
	return Ctx{
		Context: c,
		Logger:  log.Log(),
	}
}

// Detach keeps the logger fields of parent but drops its deadline and cancellation.
// Used for background work that outlives the request which started it.
func Detach(parent Ctx) Ctx {
	return Ctx{
		Context: context.Background(),
		Logger:  parent.Logger,
	}
}

func WithValue(parent Ctx, key string, val interface{}) Ctx {
	return Ctx{
		Context: context.WithValue(parent.Context, key, val),
		Logger:  parent.Logger.WithField(key, val),
	}
}

func WithValues(parent Ctx, kvs map[string]interface{}) Ctx {
	c := parent
	for k, v := range kvs {
		c = WithValue(c, k, v)
	}
	return c
}

func WithCancel(parent Ctx) (Ctx, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent.Context)
	return Ctx{
		Context: ctx,
		Logger:  parent.Logger,
	}, cancel
}

func WithTimeout(parent Ctx, timeout time.Duration) (Ctx, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent.Context, timeout)
	return Ctx{
		Context: ctx,
		Logger:  parent.Logger,
	}, cancel
}
