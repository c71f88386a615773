package ethereum

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/x-xyz/mintingkit/base/log"
)

// ThrottledBackend bounds the number of concurrent contract reads sent to the rpc
type ThrottledBackend struct {
	bind.ContractBackend
	tokens chan int
}

func NewThrottledBackend(backend bind.ContractBackend, n int) *ThrottledBackend {
	if n <= 0 {
		n = 1
	}
	tokens := make(chan int, n)
	for i := 0; i < n; i++ {
		tokens <- i + 1
	}
	return &ThrottledBackend{
		ContractBackend: backend,
		tokens:          tokens,
	}
}

func (b *ThrottledBackend) CodeAt(ctx context.Context, address common.Address, number *big.Int) ([]byte, error) {
	token, err := b.before(ctx)
	if err != nil {
		return nil, err
	}
	defer b.after(token)
	return b.ContractBackend.CodeAt(ctx, address, number)
}

func (b *ThrottledBackend) CallContract(ctx context.Context, msg ethereum.CallMsg, number *big.Int) ([]byte, error) {
	token, err := b.before(ctx)
	if err != nil {
		return nil, err
	}
	defer b.after(token)
	return b.ContractBackend.CallContract(ctx, msg, number)
}

func (b *ThrottledBackend) before(ctx context.Context) (int, error) {
	now := time.Now()
	select {
	case <-ctx.Done():
		log.Log().WithField("wait", time.Since(now)).Warn("throttle ctx done")
		return 0, ctx.Err()
	case token := <-b.tokens:
		log.Log().WithFields(log.Fields{"token": token, "free": len(b.tokens), "wait": time.Since(now)}).Debug("throttle")
		return token, nil
	}
}

func (b *ThrottledBackend) after(token int) {
	b.tokens <- token
}
