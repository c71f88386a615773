package ens

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	goens "github.com/wealdtech/go-ens/v3"

	"github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/base/ethereum"
	"github.com/x-xyz/mintingkit/base/log"
	"github.com/x-xyz/mintingkit/base/ptr"
	"github.com/x-xyz/mintingkit/domain"
	"github.com/x-xyz/mintingkit/domain/keys"
	"github.com/x-xyz/mintingkit/service/cache"
)

type impl struct {
	backend bind.ContractBackend
	cache   cache.Service
}

// maxConcurrentCalls bounds the contract reads sent to the rpc at once
const maxConcurrentCalls = 8

// New dials rpc and resolves through c
func New(rpc string, c cache.Service) (ENS, error) {
	client, err := ethclient.Dial(rpc)
	if err != nil {
		return nil, err
	}
	return NewWithBackend(ethereum.NewThrottledBackend(client, maxConcurrentCalls), c), nil
}

func NewWithBackend(backend bind.ContractBackend, c cache.Service) ENS {
	return &impl{
		backend: backend,
		cache:   c,
	}
}

func (im *impl) Resolve(ctx ctx.Ctx, name string) (domain.Address, error) {
	res := domain.Address("")
	key := keys.RedisKey("resolve", strings.ToLower(name))
	err := im.cache.GetByFunc(ctx, key, &res, func() (interface{}, error) {
		addr, err := goens.Resolve(im.backend, name)
		if isUnregistered(err) {
			// cache the miss too
			miss := domain.Address("")
			return &miss, nil
		}
		if err != nil {
			ctx.WithFields(log.Fields{
				"err":  err,
				"name": name,
			}).Error("failed to goens.Resolve")
			return nil, err
		}
		val := domain.Address(addr.Hex())
		return &val, nil
	})

	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("failed to cache.GetByFunc")
		return "", err
	}

	if res.IsEmpty() {
		return "", domain.ErrEnsNotFound
	}
	return res, nil
}

func (im *impl) ReverseResolve(ctx ctx.Ctx, address domain.Address) (string, error) {
	res := ""
	key := keys.RedisKey("reverse-resolve", address.ToLowerStr())
	err := im.cache.GetByFunc(ctx, key, &res, func() (interface{}, error) {
		name, err := goens.ReverseResolve(im.backend, common.HexToAddress(string(address)))
		if isUnregistered(err) {
			return ptr.String(""), nil
		}
		if err != nil {
			ctx.WithFields(log.Fields{
				"err": err,
			}).Error("failed to goens.ReverseResolve")
			return nil, err
		}
		return &name, nil
	})

	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("failed to cache.GetByFunc")
		return "", err
	}

	return res, nil
}

func isUnregistered(err error) bool {
	switch fmt.Sprint(err) {
	case "unregistered name", "not a resolver", "no resolution", "no address":
		return true
	}
	return false
}
