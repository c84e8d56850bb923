// Package custody keeps per-account asset balances and moves them in transactions.
package custody

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"pairSwap/internal/amm"
	"pairSwap/internal/model"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAmountOverflow      = errors.New("amount out of range")
	ErrTxDone              = errors.New("transaction already finished")
)

// BalanceStore persists custody balances.
type BalanceStore interface {
	LoadBalances(ctx context.Context) ([]model.Balance, error)
	SaveBalances(ctx context.Context, balances []model.Balance) error
}

// SnapshotStore can write the pool state and the balances in one durable write.
type SnapshotStore interface {
	BalanceStore
	SaveSnapshot(ctx context.Context, state model.PoolState, balances []model.Balance) error
}

type account struct {
	asset  common.Address
	holder common.Address
}

// Ledger holds uint256 balances per (asset, holder).
type Ledger struct {
	mu       sync.Mutex
	balances map[account]*uint256.Int
	store    BalanceStore
	logger   *zap.Logger
}

// NewLedger loads balances from store when one is given.
func NewLedger(ctx context.Context, store BalanceStore, logger *zap.Logger) (*Ledger, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Ledger{
		balances: make(map[account]*uint256.Int),
		store:    store,
		logger:   logger,
	}
	if store == nil {
		return l, nil
	}

	rows, err := store.LoadBalances(ctx)
	if err != nil {
		return nil, fmt.Errorf("load balances: %w", err)
	}
	for _, row := range rows {
		if !common.IsHexAddress(row.Asset) || !common.IsHexAddress(row.Holder) {
			return nil, fmt.Errorf("invalid balance row %s/%s", row.Asset, row.Holder)
		}
		amount, err := model.ParseAmount(row.Amount)
		if err != nil {
			return nil, fmt.Errorf("parse balance %s/%s: %w", row.Asset, row.Holder, err)
		}
		v, err := toUint(amount)
		if err != nil {
			return nil, err
		}
		if v.IsZero() {
			continue
		}
		l.balances[account{common.HexToAddress(row.Asset), common.HexToAddress(row.Holder)}] = v
	}
	logger.Debug("custody balances loaded", zap.Int("accounts", len(l.balances)))
	return l, nil
}

// Balance returns holder's committed balance of asset.
func (l *Ledger) Balance(_ context.Context, asset, holder common.Address) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if bal, ok := l.balances[account{asset, holder}]; ok {
		return bal.ToBig(), nil
	}
	return big.NewInt(0), nil
}

// Deposit credits amount to holder outside any transaction.
func (l *Ledger) Deposit(ctx context.Context, asset, holder common.Address, amount *big.Int) error {
	v, err := toUint(amount)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := account{asset, holder}
	prev := l.get(key)
	next, overflow := new(uint256.Int).AddOverflow(prev, v)
	if overflow {
		return ErrAmountOverflow
	}
	l.balances[key] = next
	if err := l.persist(ctx); err != nil {
		l.set(key, prev)
		return err
	}
	l.logger.Info("deposit",
		zap.Stringer("asset", asset),
		zap.Stringer("holder", holder),
		zap.Stringer("amount", amount),
	)
	return nil
}

// Balances returns every non-zero balance ordered by asset then holder.
func (l *Ledger) Balances() []model.Balance {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

// Begin opens a transaction over the ledger.
func (l *Ledger) Begin(context.Context) (amm.AssetTx, error) {
	return &Tx{ledger: l, view: make(map[account]*uint256.Int)}, nil
}

func (l *Ledger) get(key account) *uint256.Int {
	if bal, ok := l.balances[key]; ok {
		return bal.Clone()
	}
	return new(uint256.Int)
}

func (l *Ledger) set(key account, v *uint256.Int) {
	if v.IsZero() {
		delete(l.balances, key)
		return
	}
	l.balances[key] = v
}

func (l *Ledger) persist(ctx context.Context) error {
	if l.store == nil {
		return nil
	}
	if err := l.store.SaveBalances(ctx, l.snapshot()); err != nil {
		return fmt.Errorf("save balances: %w", err)
	}
	return nil
}

// persistWith writes state together with the balances.
func (l *Ledger) persistWith(ctx context.Context, state model.PoolState) error {
	store, ok := l.store.(SnapshotStore)
	if !ok {
		return fmt.Errorf("store cannot save snapshots")
	}
	if err := store.SaveSnapshot(ctx, state, l.snapshot()); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (l *Ledger) snapshot() []model.Balance {
	keys := make([]account, 0, len(l.balances))
	for key := range l.balances {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if c := bytes.Compare(keys[i].asset[:], keys[j].asset[:]); c != 0 {
			return c < 0
		}
		return bytes.Compare(keys[i].holder[:], keys[j].holder[:]) < 0
	})

	out := make([]model.Balance, 0, len(keys))
	for _, key := range keys {
		out = append(out, model.Balance{
			Asset:  key.asset.Hex(),
			Holder: key.holder.Hex(),
			Amount: l.balances[key].ToBig().String(),
		})
	}
	return out
}

func toUint(amount *big.Int) (*uint256.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrAmountOverflow
	}
	v, overflow := uint256.FromBig(amount)
	if overflow {
		return nil, ErrAmountOverflow
	}
	return v, nil
}
