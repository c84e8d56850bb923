package custody

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"pairSwap/internal/amm"
	"pairSwap/internal/model"
)

var _ amm.StateStager = (*Tx)(nil)

type move struct {
	key    account
	to     account
	amount *uint256.Int
}

// Tx stages transfers; nothing is visible outside it until Commit.
type Tx struct {
	ledger *Ledger
	view   map[account]*uint256.Int
	moves  []move
	state  *model.PoolState
	done   bool
}

// Transfer stages a move after checking the source balance as seen by this transaction.
func (tx *Tx) Transfer(_ context.Context, asset, from, to common.Address, amount *big.Int) error {
	if tx.done {
		return ErrTxDone
	}
	v, err := toUint(amount)
	if err != nil {
		return err
	}

	src := account{asset, from}
	dst := account{asset, to}
	if err := apply(tx.view, tx.lookup, src, dst, v); err != nil {
		return err
	}
	tx.moves = append(tx.moves, move{key: src, to: dst, amount: v})
	return nil
}

// StageState has Commit write state with the balances when store is the
// ledger's own store and it can save both at once.
func (tx *Tx) StageState(store amm.StateStore, state model.PoolState) bool {
	own, ok := tx.ledger.store.(SnapshotStore)
	if !ok || tx.done {
		return false
	}
	other, ok := store.(SnapshotStore)
	if !ok || other != own {
		return false
	}
	tx.state = &state
	return true
}

// Commit replays the staged moves against current balances and applies them together.
func (tx *Tx) Commit(ctx context.Context) error {
	if tx.done {
		return ErrTxDone
	}
	tx.done = true

	l := tx.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	next := make(map[account]*uint256.Int)
	for _, m := range tx.moves {
		if err := apply(next, l.get, m.key, m.to, m.amount); err != nil {
			return err
		}
	}

	prev := make(map[account]*uint256.Int, len(next))
	for key, v := range next {
		prev[key] = l.get(key)
		l.set(key, v)
	}
	persist := l.persist
	if tx.state != nil {
		state := *tx.state
		persist = func(ctx context.Context) error { return l.persistWith(ctx, state) }
	}
	if err := persist(ctx); err != nil {
		for key, v := range prev {
			l.set(key, v)
		}
		return err
	}
	return nil
}

// Rollback discards staged moves.
func (tx *Tx) Rollback() {
	tx.done = true
	tx.moves = nil
	tx.view = nil
}

func (tx *Tx) lookup(key account) *uint256.Int {
	tx.ledger.mu.Lock()
	defer tx.ledger.mu.Unlock()
	return tx.ledger.get(key)
}

// apply moves amount from src to dst inside view, seeding missing entries from base.
func apply(view map[account]*uint256.Int, base func(account) *uint256.Int, src, dst account, amount *uint256.Int) error {
	from, ok := view[src]
	if !ok {
		from = base(src)
	}
	if from.Lt(amount) {
		return ErrInsufficientBalance
	}
	from = new(uint256.Int).Sub(from, amount)
	view[src] = from

	to, ok := view[dst]
	if !ok {
		to = base(dst)
	}
	sum, overflow := new(uint256.Int).AddOverflow(to, amount)
	if overflow {
		view[src] = new(uint256.Int).Add(from, amount)
		return ErrAmountOverflow
	}
	view[dst] = sum
	return nil
}
