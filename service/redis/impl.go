package redis

import (
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/base/metrics"
	"github.com/x-xyz/mintingkit/domain/keys"
)

const (
	// retTTLNoKey is the return value of TTL when the key does not exist
	retTTLNoKey = -2

	// retTTLNoExpire is the return value of TTL when the key exists but has
	// no associated expire
	retTTLNoExpire = -1
)

type redImpl struct {
	name string
	met  metrics.Service
	pool *redis.Pool
}

// New redis service on top of a connection pool
func New(name string, met metrics.Service, pool *redis.Pool) Service {
	return &redImpl{
		name: name,
		met:  met,
		pool: pool,
	}
}

func (r *redImpl) getConn() (redis.Conn, error) {
	defer r.met.BumpTime("getconn.time", "cluster", r.name).End()
	if r.pool == nil {
		return nil, ErrNoPool
	}

	conn := r.pool.Get()
	if err := conn.Err(); err != nil {
		r.met.BumpSum("getConn.err", 1, "cluster", r.name, "reason", err.Error())
		return nil, err
	}

	return conn, nil
}

func (r *redImpl) connDo(context ctx.Ctx, commandName string, args ...interface{}) (interface{}, error) {
	conn, err := r.getConn()
	if err != nil {
		return nil, err
	}

	reply, err := conn.Do(commandName, args...)

	// Closing conn explicitly asap keeps the pool small.
	if err := conn.Close(); err != nil {
		r.met.BumpSum("conn.Close.err", 1, "cluster", r.name)
	}
	return reply, err
}

func (r *redImpl) tags(funcName, key string) []string {
	return []string{"func", funcName, "cluster", r.name, "prefix", keys.GetPrefix(key)}
}

func (r *redImpl) Get(context ctx.Ctx, key string) ([]byte, error) {
	tags := r.tags("get", key)
	defer r.met.BumpTime("time", tags...).End()

	val, err := redis.Bytes(r.connDo(context, "GET", key))
	if err != nil {
		return nil, err
	}
	r.met.BumpHistogram("bytes", float64(len(val)), tags...)
	return val, nil
}

func (r *redImpl) Set(context ctx.Ctx, key string, val []byte, expire time.Duration) error {
	tags := r.tags("set", key)
	defer r.met.BumpTime("time", tags...).End()
	r.met.BumpHistogram("bytes", float64(len(val)), tags...)

	if expire == Forever {
		r.met.BumpSum("ttl.forever", 1, tags...)
		_, err := r.connDo(context, "SET", key, val)
		if err != nil {
			context.WithField("err", err).Error("set redis failed")
		}
		return err
	}

	r.met.BumpAvg("ttl", expire.Seconds(), tags...)
	_, err := r.connDo(context, "SET", key, val, "PX", int(expire/time.Millisecond))
	if err != nil {
		context.WithField("err", err).Error("set redis failed")
	}
	return err
}

// SetNX sets the key only when it does not exist yet and reports whether it did
func (r *redImpl) SetNX(context ctx.Ctx, key string, val []byte, expire time.Duration) (bool, error) {
	tags := r.tags("setnx", key)
	defer r.met.BumpTime("time", tags...).End()

	args := []interface{}{key, val}
	if expire != Forever {
		args = append(args, "PX", int(expire/time.Millisecond))
	}
	args = append(args, "NX")

	_, err := redis.String(r.connDo(context, "SET", args...))
	if err == redis.ErrNil {
		return false, nil
	} else if err != nil {
		context.WithField("err", err).Error("setNX redis failed")
		return false, err
	}
	return true, nil
}

func (r *redImpl) Del(context ctx.Ctx, ks ...string) (int, error) {
	if len(ks) == 0 {
		return 0, fmt.Errorf("length of keys is 0")
	}

	tags := r.tags("del", ks[0])
	defer r.met.BumpTime("time", tags...).End()
	r.met.BumpHistogram("elements", float64(len(ks)), tags...)

	affected, err := redis.Int(r.connDo(context, "DEL", redis.Args{}.AddFlat(ks)...))
	if err != nil {
		context.WithField("err", err).Error("DEL redis failed")
		return 0, err
	}
	return affected, nil
}

func (r *redImpl) Exists(context ctx.Ctx, key string) (bool, error) {
	defer r.met.BumpTime("time", r.tags("exists", key)...).End()
	res, err := redis.Bool(r.connDo(context, "EXISTS", key))
	if err != nil {
		context.WithField("err", err).Error("EXISTS redis failed")
	}
	return res, err
}

func (r *redImpl) TTL(context ctx.Ctx, key string) (int, error) {
	defer r.met.BumpTime("time", r.tags("ttl", key)...).End()
	res, err := redis.Int(r.connDo(context, "TTL", key))
	if err != nil {
		context.WithField("err", err).Error("TTL redis failed")
		return 0, err
	}
	switch res {
	case retTTLNoKey:
		return 0, ErrNotFound
	case retTTLNoExpire:
		return int(Forever), nil
	}
	return res, nil
}

func (r *redImpl) Expire(context ctx.Ctx, key string, ttl time.Duration) error {
	tags := r.tags("expire", key)
	defer r.met.BumpTime("time", tags...).End()

	var err error
	if ttl == Forever {
		r.met.BumpSum("ttl.forever", 1, tags...)
		_, err = r.connDo(context, "PERSIST", key)
	} else {
		r.met.BumpAvg("ttl", ttl.Seconds(), tags...)
		_, err = r.connDo(context, "PEXPIRE", key, int(ttl/time.Millisecond))
	}
	if err != nil {
		context.WithField("err", err).Error("expire redis failed")
	}
	return err
}

func (r *redImpl) Ping(context ctx.Ctx) error {
	_, err := r.connDo(context, "PING")
	return err
}

func (r *redImpl) Name() string {
	return r.name
}
