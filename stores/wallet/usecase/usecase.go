package usecase

import (
	"errors"
	"strings"

	"golang.org/x/xerrors"

	"github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/base/log"
	"github.com/x-xyz/mintingkit/base/metrics"
	"github.com/x-xyz/mintingkit/base/validator"
	"github.com/x-xyz/mintingkit/domain"
	"github.com/x-xyz/mintingkit/domain/wallet"
	"github.com/x-xyz/mintingkit/service/cache"
	"github.com/x-xyz/mintingkit/service/ens"
	"github.com/x-xyz/mintingkit/service/mintapi"
)

const qrScheme = "ethereum:"

type WalletUseCaseCfg struct {
	Client mintapi.Client
	// Chain resolves names the vendor does not know, nil disables the fallback
	Chain ens.ENS
	// Cache keeps vendor lookups, may be nil
	Cache cache.Service
}

type impl struct {
	client mintapi.Client
	chain  ens.ENS
	cache  cache.Service
	met    metrics.Service
}

func New(cfg *WalletUseCaseCfg) wallet.Usecase {
	return &impl{
		client: cfg.Client,
		chain:  cfg.Chain,
		cache:  cfg.Cache,
		met:    metrics.New("wallet"),
	}
}

func (im *impl) Resolve(c ctx.Ctx, input string) (*wallet.Destination, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, domain.ErrBadParamInput
	}

	dest, err := im.resolve(c, input)
	if err != nil {
		im.met.BumpSum("resolve.err", 1)
		return nil, err
	}
	dest.Input = input
	im.met.BumpSum("resolve", 1, "source", string(dest.Source))
	return dest, nil
}

func (im *impl) resolve(c ctx.Ctx, input string) (*wallet.Destination, error) {
	if strings.HasPrefix(strings.ToLower(input), qrScheme) {
		addr, ok := validator.ChecksumAddress(parseQRPayload(input))
		if !ok {
			return nil, xerrors.Errorf("%w: %s", domain.ErrInvalidAddress, input)
		}
		return im.withName(c, &wallet.Destination{Address: domain.Address(addr), Source: wallet.SourceQRCode}), nil
	}

	if strings.HasPrefix(input, "0x") || strings.HasPrefix(input, "0X") {
		addr, ok := validator.ChecksumAddress(input)
		if !ok {
			return nil, xerrors.Errorf("%w: %s", domain.ErrInvalidAddress, input)
		}
		return im.withName(c, &wallet.Destination{Address: domain.Address(addr), Source: wallet.SourceAddress}), nil
	}

	name := strings.ToLower(input)
	addr, err := im.lookup(c, name)
	if err == nil {
		return checksummed(addr, name, wallet.SourceEns)
	}
	if !errors.Is(err, domain.ErrEnsNotFound) || im.chain == nil {
		return nil, err
	}

	addr, err = im.chain.Resolve(c, name)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "name": name}).Warn("failed to resolve ens on chain")
		return nil, err
	}
	return checksummed(addr, name, wallet.SourceEnsChain)
}

// lookup asks the vendor, through the cache when there is one
func (im *impl) lookup(c ctx.Ctx, name string) (domain.Address, error) {
	if im.cache == nil {
		return im.client.LookupENS(c, name)
	}
	res := domain.Address("")
	err := im.cache.GetByFunc(c, name, &res, func() (interface{}, error) {
		addr, err := im.client.LookupENS(c, name)
		if err != nil {
			return nil, err
		}
		return &addr, nil
	})
	if err != nil {
		return "", err
	}
	return res, nil
}

// withName attaches the primary ens name of the address when the chain knows one
func (im *impl) withName(c ctx.Ctx, dest *wallet.Destination) *wallet.Destination {
	if im.chain == nil {
		return dest
	}
	name, err := im.chain.ReverseResolve(c, dest.Address)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "address": dest.Address}).Warn("failed to reverse resolve")
		return dest
	}
	dest.EnsName = name
	return dest
}

func checksummed(addr domain.Address, name string, source wallet.Source) (*wallet.Destination, error) {
	res, ok := validator.ChecksumAddress(string(addr))
	if !ok {
		return nil, xerrors.Errorf("%w: %s resolved to %s", domain.ErrInvalidAddress, name, addr)
	}
	return &wallet.Destination{Address: domain.Address(res), Source: source, EnsName: name}, nil
}

// parseQRPayload reads the address of an EIP-681 payload, e.g. ethereum:0xabc@1?value=1
func parseQRPayload(payload string) string {
	s := payload[len(qrScheme):]
	s = strings.TrimPrefix(s, "pay-")
	if i := strings.IndexAny(s, "@/?"); i >= 0 {
		s = s[:i]
	}
	return s
}
