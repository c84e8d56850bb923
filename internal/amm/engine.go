// Package amm implements a two-asset constant-product liquidity pool.
package amm

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"pairSwap/internal/model"
)

// DefaultLockedMinimum is the share balance locked to the pool at creation.
const DefaultLockedMinimum = 1000

// ErrCollaboratorFailure marks failures reported by the asset collaborator outside a transfer.
var ErrCollaboratorFailure = newError(KindCollaborator, "asset collaborator failure")

// Assets observes and moves the pooled assets.
type Assets interface {
	Balance(ctx context.Context, asset, holder common.Address) (*big.Int, error)
	Begin(ctx context.Context) (AssetTx, error)
}

// AssetTx stages asset moves that become visible together on Commit.
type AssetTx interface {
	Transfer(ctx context.Context, asset, from, to common.Address, amount *big.Int) error
	Commit(ctx context.Context) error
	Rollback()
}

// StateStager is implemented by an AssetTx that can write the pool state in
// the same durable write as its own commit. StageState reports false when the
// transaction does not persist to store.
type StateStager interface {
	StageState(store StateStore, state model.PoolState) bool
}

// StateStore persists the pool's share accounting.
type StateStore interface {
	Load(ctx context.Context) (model.PoolState, bool, error)
	Save(ctx context.Context, state model.PoolState) error
}

// Journal receives committed operations.
type Journal interface {
	Record(record model.OperationRecord) error
}

// Config fixes the pool's identity and pricing profile.
type Config struct {
	Pool          common.Address
	AssetX        common.Address
	AssetY        common.Address
	LockedMinimum *big.Int
	Fee           Fee
	Store         StateStore
	Journal       Journal
	Now           func() time.Time
}

// Engine owns the pool's share ledger and runs every operation as one unit.
// A call made while another operation is in progress fails with ErrReentrant
// instead of waiting; concurrent callers serialize their own use.
type Engine struct {
	mu     sync.Mutex
	cfg    Config
	assets Assets
	ledger *ShareLedger
	logger *zap.Logger

	// committed is the ledger as of the last completed operation, set while
	// an operation holds mu.
	committed atomic.Pointer[ShareLedger]
}

type operationKey struct{}

// NewEngine restores the pool from cfg.Store, or creates it with the locked
// minimum credited to the pool address when nothing is stored yet.
func NewEngine(ctx context.Context, cfg Config, assets Assets, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if assets == nil {
		return nil, fmt.Errorf("assets collaborator is nil")
	}
	if cfg.LockedMinimum == nil {
		cfg.LockedMinimum = big.NewInt(DefaultLockedMinimum)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		assets: assets,
		ledger: NewShareLedger(),
		logger: logger,
	}

	if cfg.Store != nil {
		state, ok, err := cfg.Store.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load pool state: %w", err)
		}
		if ok {
			if err := e.restore(state); err != nil {
				return nil, err
			}
			logger.Info("pool restored",
				zap.Stringer("pool", cfg.Pool),
				zap.Stringer("total_shares", e.ledger.total),
				zap.Int("holders", len(e.ledger.balances)),
			)
			return e, nil
		}
	}

	var j undoLog
	e.ledger.credit(cfg.Pool, cfg.LockedMinimum, &j)
	if err := e.persist(ctx); err != nil {
		return nil, err
	}
	e.record(model.OperationRecord{
		Kind:    model.OpCreate,
		Asset1:  cfg.AssetX.Hex(),
		Asset2:  cfg.AssetY.Hex(),
		Amount1: "0",
		Amount2: "0",
		Shares:  cfg.LockedMinimum.String(),
	})
	logger.Info("pool created",
		zap.Stringer("pool", cfg.Pool),
		zap.Stringer("asset_x", cfg.AssetX),
		zap.Stringer("asset_y", cfg.AssetY),
		zap.Stringer("locked_minimum", cfg.LockedMinimum),
		zap.Uint64("fee_numerator", cfg.Fee.Numerator),
		zap.Uint64("fee_denominator", cfg.Fee.Denominator),
	)
	return e, nil
}

func validateConfig(cfg Config) error {
	var zero common.Address
	if cfg.AssetX == zero || cfg.AssetY == zero {
		return ErrInvalidAsset
	}
	if cfg.AssetX == cfg.AssetY {
		return ErrIdenticalAssets
	}
	if cfg.Pool == zero || cfg.Pool == cfg.AssetX || cfg.Pool == cfg.AssetY {
		return ErrInvalidPool
	}
	if cfg.LockedMinimum.Sign() <= 0 {
		return fmt.Errorf("locked minimum must be positive")
	}
	return cfg.Fee.Validate()
}

// Pool returns the address holding reserves and the locked shares.
func (e *Engine) Pool() common.Address { return e.cfg.Pool }

// Pair returns the pool's assets in canonical order.
func (e *Engine) Pair() (common.Address, common.Address) { return e.cfg.AssetX, e.cfg.AssetY }

// Fee returns the pricing profile.
func (e *Engine) Fee() Fee { return e.cfg.Fee }

// LockedMinimum returns the permanently locked share balance.
func (e *Engine) LockedMinimum() *big.Int { return new(big.Int).Set(e.cfg.LockedMinimum) }

// TotalShares returns the outstanding share count.
func (e *Engine) TotalShares() *big.Int {
	if view := e.committed.Load(); view != nil {
		return view.Total()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Total()
}

// SharesOf returns holder's share balance.
func (e *Engine) SharesOf(holder common.Address) *big.Int {
	if view := e.committed.Load(); view != nil {
		return view.BalanceOf(holder)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.BalanceOf(holder)
}

// State returns the persisted form of the share ledger. During an operation
// it reports the last committed state.
func (e *Engine) State() model.PoolState {
	if view := e.committed.Load(); view != nil {
		return e.snapshotOf(view)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// Reserves returns the pool's balances of (AssetX, AssetY).
func (e *Engine) Reserves(ctx context.Context) (*big.Int, *big.Int, error) {
	ctx, release, err := e.acquire(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer release()
	return e.reserves(ctx)
}

// QuotePrice returns the price of asset1 in units of asset2, scaled by Precision.
func (e *Engine) QuotePrice(ctx context.Context, asset1, asset2 common.Address) (*big.Int, error) {
	ctx, release, err := e.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	flipped, err := e.orient(asset1, asset2)
	if err != nil {
		return nil, err
	}
	r1, r2, err := e.orderedReserves(ctx, flipped)
	if err != nil {
		return nil, err
	}
	return Price(r1, r2)
}

// QuoteSwap previews SwapExactIn with the configured fee.
func (e *Engine) QuoteSwap(ctx context.Context, assetIn, assetOut common.Address, amountIn *big.Int) (*big.Int, error) {
	ctx, release, err := e.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	flipped, err := e.orient(assetIn, assetOut)
	if err != nil {
		return nil, err
	}
	rIn, rOut, err := e.orderedReserves(ctx, flipped)
	if err != nil {
		return nil, err
	}
	return GetAmountOut(amountIn, rIn, rOut, e.cfg.Fee)
}

// ProvideRequest deposits up to the desired amounts in caller order.
type ProvideRequest struct {
	Caller    common.Address
	Asset1    common.Address
	Asset2    common.Address
	Desired1  *big.Int
	Desired2  *big.Int
	Min1      *big.Int
	Min2      *big.Int
	Recipient common.Address
	Deadline  time.Time
}

// ProvideResult reports the amounts used, in caller order, and the shares minted.
type ProvideResult struct {
	Amount1 *big.Int
	Amount2 *big.Int
	Shares  *big.Int
}

// ProvideLiquidity moves a ratio-matched deposit into the pool and mints shares to the recipient.
func (e *Engine) ProvideLiquidity(ctx context.Context, req ProvideRequest) (*ProvideResult, error) {
	ctx, release, err := e.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := e.checkDeadline(req.Deadline); err != nil {
		return nil, err
	}

	flipped, err := e.orient(req.Asset1, req.Asset2)
	if err != nil {
		return nil, err
	}
	if err := e.checkParty(req.Caller, ErrInvalidCaller); err != nil {
		return nil, err
	}
	if err := e.checkParty(req.Recipient, ErrInvalidRecipient); err != nil {
		return nil, err
	}
	if err := positive(req.Desired1, req.Desired2); err != nil {
		return nil, err
	}
	min1, min2, err := bounds(req.Min1, req.Min2)
	if err != nil {
		return nil, err
	}

	r1, r2, err := e.orderedReserves(ctx, flipped)
	if err != nil {
		return nil, err
	}
	amount1, amount2, err := matchAmounts(req.Desired1, req.Desired2, min1, min2, r1, r2)
	if err != nil {
		return nil, err
	}

	total := e.ledger.Total()
	bootstrap := total.Cmp(e.cfg.LockedMinimum) == 0
	shares, err := mintShares(amount1, amount2, r1, r2, total, bootstrap)
	if err != nil {
		return nil, err
	}
	if shares.Sign() == 0 {
		return nil, ErrInsufficientLiquidityMinted
	}

	err = e.execute(ctx, func(tx AssetTx, j *undoLog) error {
		if err := e.move(ctx, tx, req.Asset1, req.Caller, e.cfg.Pool, amount1); err != nil {
			return err
		}
		if err := e.move(ctx, tx, req.Asset2, req.Caller, e.cfg.Pool, amount2); err != nil {
			return err
		}
		e.ledger.credit(req.Recipient, shares, j)
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.record(model.OperationRecord{
		Kind:      model.OpProvide,
		Caller:    req.Caller.Hex(),
		Recipient: req.Recipient.Hex(),
		Asset1:    req.Asset1.Hex(),
		Asset2:    req.Asset2.Hex(),
		Amount1:   amount1.String(),
		Amount2:   amount2.String(),
		Shares:    shares.String(),
	})
	e.logger.Info("liquidity provided",
		zap.Stringer("caller", req.Caller),
		zap.Stringer("recipient", req.Recipient),
		zap.Stringer("amount1", amount1),
		zap.Stringer("amount2", amount2),
		zap.Stringer("shares", shares),
		zap.Bool("bootstrap", bootstrap),
	)

	return &ProvideResult{Amount1: amount1, Amount2: amount2, Shares: shares}, nil
}

// WithdrawRequest burns Shares of the caller for a pro-rata slice of reserves.
type WithdrawRequest struct {
	Caller    common.Address
	Asset1    common.Address
	Asset2    common.Address
	Shares    *big.Int
	Min1      *big.Int
	Min2      *big.Int
	Recipient common.Address
	Deadline  time.Time
}

// WithdrawResult reports the amounts paid out, in caller order.
type WithdrawResult struct {
	Amount1 *big.Int
	Amount2 *big.Int
}

// WithdrawLiquidity burns shares and pays the redeemed reserves to the recipient.
// The ledger is debited before any asset leaves the pool.
func (e *Engine) WithdrawLiquidity(ctx context.Context, req WithdrawRequest) (*WithdrawResult, error) {
	ctx, release, err := e.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := e.checkDeadline(req.Deadline); err != nil {
		return nil, err
	}

	flipped, err := e.orient(req.Asset1, req.Asset2)
	if err != nil {
		return nil, err
	}
	if err := e.checkParty(req.Caller, ErrInvalidCaller); err != nil {
		return nil, err
	}
	if err := e.checkParty(req.Recipient, ErrInvalidRecipient); err != nil {
		return nil, err
	}
	if err := positive(req.Shares); err != nil {
		return nil, err
	}
	min1, min2, err := bounds(req.Min1, req.Min2)
	if err != nil {
		return nil, err
	}
	if e.ledger.BalanceOf(req.Caller).Cmp(req.Shares) < 0 {
		return nil, ErrInsufficientShares
	}

	r1, r2, err := e.orderedReserves(ctx, flipped)
	if err != nil {
		return nil, err
	}
	out1, out2 := burnAmounts(req.Shares, r1, r2, e.ledger.Total())
	if out1.Sign() == 0 && out2.Sign() == 0 {
		return nil, ErrInsufficientLiquidityBurned
	}
	if out1.Cmp(min1) < 0 {
		return nil, ErrInsufficientFirstAmount
	}
	if out2.Cmp(min2) < 0 {
		return nil, ErrInsufficientSecondAmount
	}

	err = e.execute(ctx, func(tx AssetTx, j *undoLog) error {
		if err := e.ledger.debit(req.Caller, req.Shares, j); err != nil {
			return err
		}
		if err := e.move(ctx, tx, req.Asset1, e.cfg.Pool, req.Recipient, out1); err != nil {
			return err
		}
		return e.move(ctx, tx, req.Asset2, e.cfg.Pool, req.Recipient, out2)
	})
	if err != nil {
		return nil, err
	}

	e.record(model.OperationRecord{
		Kind:      model.OpWithdraw,
		Caller:    req.Caller.Hex(),
		Recipient: req.Recipient.Hex(),
		Asset1:    req.Asset1.Hex(),
		Asset2:    req.Asset2.Hex(),
		Amount1:   out1.String(),
		Amount2:   out2.String(),
		Shares:    req.Shares.String(),
	})
	e.logger.Info("liquidity withdrawn",
		zap.Stringer("caller", req.Caller),
		zap.Stringer("recipient", req.Recipient),
		zap.Stringer("shares", req.Shares),
		zap.Stringer("amount1", out1),
		zap.Stringer("amount2", out2),
	)

	return &WithdrawResult{Amount1: out1, Amount2: out2}, nil
}

// SwapRequest sells AmountIn of Path[0] for at least MinAmountOut of Path[1].
type SwapRequest struct {
	Caller       common.Address
	AmountIn     *big.Int
	MinAmountOut *big.Int
	Path         []common.Address
	Recipient    common.Address
	Deadline     time.Time
}

// SwapResult reports the executed amounts.
type SwapResult struct {
	AmountIn  *big.Int
	AmountOut *big.Int
}

// SwapExactIn prices AmountIn on the constant-product curve and settles both legs.
func (e *Engine) SwapExactIn(ctx context.Context, req SwapRequest) (*SwapResult, error) {
	ctx, release, err := e.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := e.checkDeadline(req.Deadline); err != nil {
		return nil, err
	}

	if len(req.Path) != 2 || req.Path[0] == req.Path[1] {
		return nil, ErrInvalidPath
	}
	assetIn, assetOut := req.Path[0], req.Path[1]
	flipped, err := e.orient(assetIn, assetOut)
	if err != nil {
		return nil, err
	}
	if err := e.checkParty(req.Caller, ErrInvalidCaller); err != nil {
		return nil, err
	}
	if err := e.checkParty(req.Recipient, ErrInvalidRecipient); err != nil {
		return nil, err
	}
	if err := positive(req.AmountIn); err != nil {
		return nil, err
	}
	minOut, _, err := bounds(req.MinAmountOut, nil)
	if err != nil {
		return nil, err
	}

	rIn, rOut, err := e.orderedReserves(ctx, flipped)
	if err != nil {
		return nil, err
	}
	amountOut, err := GetAmountOut(req.AmountIn, rIn, rOut, e.cfg.Fee)
	if err != nil {
		return nil, err
	}
	if amountOut.Sign() == 0 || amountOut.Cmp(minOut) < 0 {
		return nil, ErrInsufficientOutputAmount
	}

	err = e.execute(ctx, func(tx AssetTx, _ *undoLog) error {
		if err := e.move(ctx, tx, assetIn, req.Caller, e.cfg.Pool, req.AmountIn); err != nil {
			return err
		}
		return e.move(ctx, tx, assetOut, e.cfg.Pool, req.Recipient, amountOut)
	})
	if err != nil {
		return nil, err
	}

	e.record(model.OperationRecord{
		Kind:      model.OpSwap,
		Caller:    req.Caller.Hex(),
		Recipient: req.Recipient.Hex(),
		Asset1:    assetIn.Hex(),
		Asset2:    assetOut.Hex(),
		Amount1:   req.AmountIn.String(),
		Amount2:   amountOut.String(),
	})
	e.logger.Info("swap executed",
		zap.Stringer("caller", req.Caller),
		zap.Stringer("recipient", req.Recipient),
		zap.Stringer("asset_in", assetIn),
		zap.Stringer("amount_in", req.AmountIn),
		zap.Stringer("amount_out", amountOut),
	)

	return &SwapResult{AmountIn: new(big.Int).Set(req.AmountIn), AmountOut: amountOut}, nil
}

// execute runs apply inside one asset transaction. Ledger changes and staged
// moves are both undone if any step fails.
func (e *Engine) execute(ctx context.Context, apply func(tx AssetTx, j *undoLog) error) error {
	tx, err := e.assets.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrCollaboratorFailure, err)
	}

	var j undoLog
	if err := apply(tx, &j); err != nil {
		tx.Rollback()
		j.revert()
		return err
	}

	// a staged state is written by the commit itself
	staged := false
	if st, ok := tx.(StateStager); ok && e.cfg.Store != nil {
		staged = st.StageState(e.cfg.Store, e.snapshot())
	}
	if !staged {
		if err := e.persist(ctx); err != nil {
			tx.Rollback()
			j.revert()
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		j.revert()
		if !staged {
			if serr := e.persist(ctx); serr != nil {
				e.logger.Error("restore pool state after failed commit", zap.Error(serr))
			}
		}
		return fmt.Errorf("%w: commit: %w", ErrCollaboratorFailure, err)
	}
	return nil
}

func (e *Engine) move(ctx context.Context, tx AssetTx, asset, from, to common.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if err := tx.Transfer(ctx, asset, from, to, amount); err != nil {
		return &TransferError{Asset: asset, From: from, To: to, Amount: new(big.Int).Set(amount), Err: err}
	}
	return nil
}

func (e *Engine) persist(ctx context.Context) error {
	if e.cfg.Store == nil {
		return nil
	}
	if err := e.cfg.Store.Save(ctx, e.snapshot()); err != nil {
		return fmt.Errorf("save pool state: %w", err)
	}
	return nil
}

func (e *Engine) record(rec model.OperationRecord) {
	if e.cfg.Journal == nil {
		return
	}
	rec.Pool = e.cfg.Pool.Hex()
	rec.TotalShares = e.ledger.total.String()
	rec.Timestamp = e.cfg.Now().UTC().Format(time.RFC3339Nano)
	if err := e.cfg.Journal.Record(rec); err != nil {
		e.logger.Warn("journal operation", zap.String("kind", rec.Kind), zap.Error(err))
	}
}

func (e *Engine) checkDeadline(deadline time.Time) error {
	if e.cfg.Now().After(deadline) {
		return ErrDeadlineExpired
	}
	return nil
}

func (e *Engine) checkParty(party common.Address, invalid error) error {
	if party == (common.Address{}) || party == e.cfg.Pool {
		return invalid
	}
	return nil
}

// orient reports whether (asset1, asset2) is the pool pair in Y, X order.
func (e *Engine) orient(asset1, asset2 common.Address) (bool, error) {
	switch {
	case asset1 == e.cfg.AssetX && asset2 == e.cfg.AssetY:
		return false, nil
	case asset1 == e.cfg.AssetY && asset2 == e.cfg.AssetX:
		return true, nil
	default:
		return false, ErrUnsupportedPair
	}
}

func (e *Engine) reserves(ctx context.Context) (*big.Int, *big.Int, error) {
	rx, err := e.assets.Balance(ctx, e.cfg.AssetX, e.cfg.Pool)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reserve %s: %w", ErrCollaboratorFailure, e.cfg.AssetX.Hex(), err)
	}
	ry, err := e.assets.Balance(ctx, e.cfg.AssetY, e.cfg.Pool)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reserve %s: %w", ErrCollaboratorFailure, e.cfg.AssetY.Hex(), err)
	}
	return rx, ry, nil
}

// orderedReserves returns reserves mapped back to the caller's asset order.
func (e *Engine) orderedReserves(ctx context.Context, flipped bool) (*big.Int, *big.Int, error) {
	rx, ry, err := e.reserves(ctx)
	if err != nil {
		return nil, nil, err
	}
	if flipped {
		return ry, rx, nil
	}
	return rx, ry, nil
}

func (e *Engine) snapshot() model.PoolState {
	return e.snapshotOf(e.ledger)
}

func (e *Engine) snapshotOf(l *ShareLedger) model.PoolState {
	shares := make(map[string]string, len(l.balances))
	for _, holder := range l.Holders() {
		shares[holder.Hex()] = l.balances[holder].String()
	}
	return model.PoolState{
		Pool:          e.cfg.Pool.Hex(),
		AssetX:        e.cfg.AssetX.Hex(),
		AssetY:        e.cfg.AssetY.Hex(),
		LockedMinimum: e.cfg.LockedMinimum.String(),
		TotalShares:   l.total.String(),
		Shares:        shares,
		UpdatedAt:     e.cfg.Now().UTC().Format(time.RFC3339Nano),
	}
}

func (e *Engine) restore(state model.PoolState) error {
	if !sameAddress(state.Pool, e.cfg.Pool) || !sameAddress(state.AssetX, e.cfg.AssetX) || !sameAddress(state.AssetY, e.cfg.AssetY) {
		return ErrStateMismatch
	}
	locked, err := model.ParseAmount(state.LockedMinimum)
	if err != nil {
		return fmt.Errorf("parse locked minimum: %w", err)
	}
	if locked.Cmp(e.cfg.LockedMinimum) != 0 {
		return ErrStateMismatch
	}
	total, err := model.ParseAmount(state.TotalShares)
	if err != nil {
		return fmt.Errorf("parse total shares: %w", err)
	}

	sum := big.NewInt(0)
	balances := make(map[common.Address]*big.Int, len(state.Shares))
	for holder, amount := range state.Shares {
		if !common.IsHexAddress(holder) {
			return fmt.Errorf("invalid share holder: %s", holder)
		}
		bal, err := model.ParseAmount(amount)
		if err != nil {
			return fmt.Errorf("parse shares of %s: %w", holder, err)
		}
		if bal.Sign() == 0 {
			continue
		}
		balances[common.HexToAddress(holder)] = bal
		sum.Add(sum, bal)
	}
	if sum.Cmp(total) != 0 {
		return fmt.Errorf("stored shares sum %s does not match total %s", sum, total)
	}
	if balances[e.cfg.Pool] == nil || balances[e.cfg.Pool].Cmp(locked) < 0 {
		return fmt.Errorf("stored state lost the locked minimum")
	}

	e.ledger.total = total
	e.ledger.balances = balances
	return nil
}

// acquire takes the engine lock for one operation. Calls made from inside a
// running operation, with its context or any other, fail with ErrReentrant.
func (e *Engine) acquire(ctx context.Context) (context.Context, func(), error) {
	ctx, err := enter(ctx)
	if err != nil {
		return nil, nil, err
	}
	if e.committed.Load() != nil {
		return nil, nil, ErrReentrant
	}
	e.mu.Lock()
	e.committed.Store(e.ledger.clone())
	return ctx, func() {
		e.committed.Store(nil)
		e.mu.Unlock()
	}, nil
}

func enter(ctx context.Context) (context.Context, error) {
	if ctx.Value(operationKey{}) != nil {
		return nil, ErrReentrant
	}
	return context.WithValue(ctx, operationKey{}, struct{}{}), nil
}

func positive(values ...*big.Int) error {
	for _, v := range values {
		if v == nil || v.Sign() == 0 {
			return ErrZeroAmount
		}
		if v.Sign() < 0 {
			return ErrNegativeAmount
		}
	}
	return nil
}

// bounds normalizes optional minimums; nil means zero.
func bounds(a, b *big.Int) (*big.Int, *big.Int, error) {
	out := [2]*big.Int{a, b}
	for i, v := range out {
		if v == nil {
			out[i] = big.NewInt(0)
			continue
		}
		if v.Sign() < 0 {
			return nil, nil, ErrNegativeAmount
		}
	}
	return out[0], out[1], nil
}

func sameAddress(value string, addr common.Address) bool {
	return common.IsHexAddress(value) && common.HexToAddress(value) == addr
}
