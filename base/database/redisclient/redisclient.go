package redisclient

import (
	"context"
	"runtime"
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/x-xyz/mintingkit/base/backoff"
	"github.com/x-xyz/mintingkit/base/log"
)

const (
	dialTimeout  = 2 * time.Second
	readTimeout  = 1500 * time.Millisecond
	writeTimeout = 1500 * time.Millisecond

	retryCount = 3
)

// RedisParam is the optional param for redis connection
type RedisParam struct {
	PoolMultiplier float64
	Retry          bool
	DB             int
}

// MustConnectRedis connects to one redis uri
// NOTE This function panics if the connection fails.
func MustConnectRedis(uri, password string, param ...RedisParam) *redis.Pool {
	p, err := ConnectRedis(uri, password, param...)
	if err != nil {
		log.Log().WithFields(log.Fields{"redisURI": uri, "err": err}).Panic("fail to dial Redis")
	}
	return p
}

// ConnectRedis connects to one redis uri
func ConnectRedis(uri, password string, param ...RedisParam) (*redis.Pool, error) {
	maxIdle := 16
	maxActive := 64
	retry := false
	opts := []redis.DialOption{
		redis.DialConnectTimeout(dialTimeout),
		redis.DialReadTimeout(readTimeout),
		redis.DialWriteTimeout(writeTimeout),
	}
	if len(param) > 0 {
		if param[0].PoolMultiplier > 0 {
			cpu := float64(runtime.NumCPU())
			// allowing 25% idle connection
			maxIdle = int(cpu*param[0].PoolMultiplier/4) + 1
			maxActive = int(cpu*param[0].PoolMultiplier) + 1
		}
		retry = param[0].Retry
		if param[0].DB > 0 {
			opts = append(opts, redis.DialDatabase(param[0].DB))
		}
	}
	if password != "" {
		opts = append(opts, redis.DialPassword(password))
	}

	p := &redis.Pool{
		MaxIdle:     maxIdle,
		MaxActive:   maxActive,
		Wait:        true,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", uri, opts...)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			// No need to test if it's been recycled less than 1 sec.
			if time.Since(t) < time.Second {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}

	b := backoff.NewExponential(time.Second, 4*time.Second)
	var dialErr error
	for i := 0; i <= retryCount; i++ {
		if i > 0 {
			if !retry {
				break
			}
			b.Backoff(context.Background())
		}
		if dialErr = ping(p); dialErr != nil {
			log.Log().WithFields(log.Fields{
				"redisURI": uri,
				"err":      dialErr,
				"retry":    i,
			}).Error("fail to ping Redis")
			continue
		}
		break
	}
	if dialErr != nil {
		return nil, dialErr
	}

	log.Log().WithField("redisURI", uri).Info("redis connected")

	return p, nil
}

func ping(p *redis.Pool) error {
	c, err := p.Dial()
	if err != nil {
		return err
	}
	defer c.Close()
	_, err = c.Do("PING")
	return err
}
