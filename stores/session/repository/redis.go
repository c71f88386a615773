package repository

import (
	"encoding/json"

	"github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/base/log"
	"github.com/x-xyz/mintingkit/domain"
	"github.com/x-xyz/mintingkit/domain/keys"
	"github.com/x-xyz/mintingkit/domain/session"
	"github.com/x-xyz/mintingkit/service/redis"
)

type impl struct {
	redis redis.Service
	key   string
}

// New stores the vendor session of deviceID in redis
func New(rds redis.Service, deviceID string) session.Repo {
	return &impl{
		redis: rds,
		key:   keys.RedisKey(keys.PfxSession, deviceID),
	}
}

func (im *impl) Get(c ctx.Ctx) (*session.Session, error) {
	val, err := im.redis.Get(c, im.key)
	if err == redis.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "key": im.key}).Error("redis.Get failed")
		return nil, err
	}
	s := &session.Session{}
	if err := json.Unmarshal(val, s); err != nil {
		c.WithFields(log.Fields{"err": err, "key": im.key}).Error("json.Unmarshal failed")
		return nil, err
	}
	return s, nil
}

func (im *impl) Save(c ctx.Ctx, s *session.Session) error {
	val, err := json.Marshal(s)
	if err != nil {
		c.WithField("err", err).Error("json.Marshal failed")
		return err
	}
	if err := im.redis.Set(c, im.key, val, redis.Forever); err != nil {
		c.WithFields(log.Fields{"err": err, "key": im.key}).Error("redis.Set failed")
		return err
	}
	return nil
}

func (im *impl) Delete(c ctx.Ctx) error {
	if _, err := im.redis.Del(c, im.key); err != nil {
		c.WithFields(log.Fields{"err": err, "key": im.key}).Error("redis.Del failed")
		return err
	}
	return nil
}
