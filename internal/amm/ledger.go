package amm

import (
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// ShareLedger tracks liquidity shares per holder and the total outstanding.
// total always equals the sum of balances.
type ShareLedger struct {
	total    *big.Int
	balances map[common.Address]*big.Int
}

func NewShareLedger() *ShareLedger {
	return &ShareLedger{
		total:    big.NewInt(0),
		balances: make(map[common.Address]*big.Int),
	}
}

// Total returns a copy of the outstanding share count.
func (l *ShareLedger) Total() *big.Int {
	return new(big.Int).Set(l.total)
}

// BalanceOf returns a copy of holder's balance; unlisted holders hold zero.
func (l *ShareLedger) BalanceOf(holder common.Address) *big.Int {
	if bal, ok := l.balances[holder]; ok {
		return new(big.Int).Set(bal)
	}
	return big.NewInt(0)
}

// Holders returns the holders with a positive balance, sorted by address.
func (l *ShareLedger) Holders() []common.Address {
	out := make([]common.Address, 0, len(l.balances))
	for holder, bal := range l.balances {
		if bal.Sign() > 0 {
			out = append(out, holder)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Cmp(out[j]) < 0
	})
	return out
}

func (l *ShareLedger) clone() *ShareLedger {
	c := &ShareLedger{
		total:    l.Total(),
		balances: make(map[common.Address]*big.Int, len(l.balances)),
	}
	for holder, bal := range l.balances {
		c.balances[holder] = new(big.Int).Set(bal)
	}
	return c
}

func (l *ShareLedger) credit(holder common.Address, amount *big.Int, j *undoLog) {
	prev := l.BalanceOf(holder)
	prevTotal := l.Total()
	j.push(func() { l.restore(holder, prev, prevTotal) })

	l.balances[holder] = new(big.Int).Add(prev, amount)
	l.total.Add(l.total, amount)
}

func (l *ShareLedger) debit(holder common.Address, amount *big.Int, j *undoLog) error {
	prev := l.BalanceOf(holder)
	if prev.Cmp(amount) < 0 {
		return ErrInsufficientShares
	}
	prevTotal := l.Total()
	j.push(func() { l.restore(holder, prev, prevTotal) })

	next := new(big.Int).Sub(prev, amount)
	if next.Sign() == 0 {
		delete(l.balances, holder)
	} else {
		l.balances[holder] = next
	}
	l.total.Sub(l.total, amount)
	return nil
}

func (l *ShareLedger) restore(holder common.Address, balance, total *big.Int) {
	if balance.Sign() == 0 {
		delete(l.balances, holder)
	} else {
		l.balances[holder] = balance
	}
	l.total = total
}

// undoLog records compensations for ledger mutations made by one operation.
type undoLog struct {
	undo []func()
}

func (j *undoLog) push(fn func()) {
	j.undo = append(j.undo, fn)
}

func (j *undoLog) revert() {
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
	j.undo = nil
}
