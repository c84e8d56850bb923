package chain

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"pairSwap/internal/model"
)

// PairSnapshot is a pair contract's token balances read at one block.
type PairSnapshot struct {
	Pair     common.Address
	Block    uint64
	Token0   model.TokenMeta
	Token1   model.TokenMeta
	Reserve0 *big.Int
	Reserve1 *big.Int
}

// BlockCaller adds the block height lookup used to pin both balance reads.
type BlockCaller interface {
	ContractCaller
	LatestBlockNumber(ctx context.Context) (uint64, error)
}

// ReserveReader reads live pair reserves as the pair's ERC-20 balances.
type ReserveReader struct {
	client       BlockCaller
	maxRetries   int
	retryBackoff time.Duration
	logger       *zap.Logger

	mu     sync.RWMutex
	tokens map[common.Address]model.TokenMeta
}

func NewReserveReader(client BlockCaller, maxRetries int, retryBackoff time.Duration, logger *zap.Logger) *ReserveReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReserveReader{
		client:       client,
		maxRetries:   maxRetries,
		retryBackoff: retryBackoff,
		logger:       logger,
		tokens:       make(map[common.Address]model.TokenMeta),
	}
}

// Snapshot reads both balances of pair at the latest block. Zero token
// addresses are resolved through the pair's token0/token1.
func (r *ReserveReader) Snapshot(ctx context.Context, pair, token0, token1 common.Address) (PairSnapshot, error) {
	var zero common.Address
	if token0 == zero || token1 == zero {
		err := withRetry(ctx, r.maxRetries, r.retryBackoff, func(ctx context.Context) error {
			var err error
			token0, token1, err = PairTokens(ctx, r.client, pair)
			return err
		})
		if err != nil {
			return PairSnapshot{}, fmt.Errorf("pair tokens: %w", err)
		}
	}

	var block uint64
	err := withRetry(ctx, r.maxRetries, r.retryBackoff, func(ctx context.Context) error {
		var err error
		block, err = r.client.LatestBlockNumber(ctx)
		return err
	})
	if err != nil {
		return PairSnapshot{}, fmt.Errorf("latest block: %w", err)
	}
	blockNum := new(big.Int).SetUint64(block)

	snap := PairSnapshot{Pair: pair, Block: block}
	for _, side := range []struct {
		token   common.Address
		meta    *model.TokenMeta
		reserve **big.Int
	}{
		{token0, &snap.Token0, &snap.Reserve0},
		{token1, &snap.Token1, &snap.Reserve1},
	} {
		err := withRetry(ctx, r.maxRetries, r.retryBackoff, func(ctx context.Context) error {
			bal, err := BalanceOf(ctx, r.client, side.token, pair, blockNum)
			if err != nil {
				return err
			}
			*side.reserve = bal
			return nil
		})
		if err != nil {
			return PairSnapshot{}, fmt.Errorf("balance of %s: %w", side.token.Hex(), err)
		}
		*side.meta = r.tokenMeta(ctx, side.token)
	}

	r.logger.Debug("pair snapshot",
		zap.String("pair", pair.Hex()),
		zap.Uint64("block", block),
		zap.String("reserve0", snap.Reserve0.String()),
		zap.String("reserve1", snap.Reserve1.String()),
	)
	return snap, nil
}

// tokenMeta returns cached metadata; a failed lookup is cached with 18 decimals.
func (r *ReserveReader) tokenMeta(ctx context.Context, token common.Address) model.TokenMeta {
	r.mu.RLock()
	meta, ok := r.tokens[token]
	r.mu.RUnlock()
	if ok {
		return meta
	}

	meta, err := FetchTokenMeta(ctx, r.client, token, r.logger)
	if err != nil {
		r.logger.Warn("token metadata fetch failed", zap.String("token", token.Hex()), zap.Error(err))
		meta = model.TokenMeta{Address: token.Hex(), Decimals: 18}
	}
	r.mu.Lock()
	r.tokens[token] = meta
	r.mu.Unlock()
	return meta
}
