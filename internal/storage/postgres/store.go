package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pairSwap/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS pool_state (
	pool_address   TEXT PRIMARY KEY,
	asset_x        TEXT NOT NULL,
	asset_y        TEXT NOT NULL,
	locked_minimum NUMERIC(78, 0) NOT NULL,
	total_shares   NUMERIC(78, 0) NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS pool_shares (
	pool_address TEXT NOT NULL,
	holder       TEXT NOT NULL,
	shares       NUMERIC(78, 0) NOT NULL,
	PRIMARY KEY (pool_address, holder)
);
CREATE TABLE IF NOT EXISTS custody_balances (
	asset      TEXT NOT NULL,
	holder     TEXT NOT NULL,
	amount     NUMERIC(78, 0) NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (asset, holder)
);
`

// Store provides Postgres persistence for one pool and the custody ledger.
type Store struct {
	pool *pgxpool.Pool
	addr string
}

func NewStore(ctx context.Context, dsn, poolAddress string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	if poolAddress == "" {
		return nil, fmt.Errorf("pool address is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool, addr: poolAddress}, nil
}

func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// EnsureSchema creates the tables when they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Load returns the pool row and its share ledger.
func (s *Store) Load(ctx context.Context) (model.PoolState, bool, error) {
	state := model.PoolState{Pool: s.addr}
	row := s.pool.QueryRow(ctx, `
		SELECT asset_x, asset_y, locked_minimum::text, total_shares::text, updated_at::text
		FROM pool_state WHERE pool_address=$1
	`, s.addr)
	if err := row.Scan(&state.AssetX, &state.AssetY, &state.LockedMinimum, &state.TotalShares, &state.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PoolState{}, false, nil
		}
		return model.PoolState{}, false, err
	}

	rows, err := s.pool.Query(ctx, `SELECT holder, shares::text FROM pool_shares WHERE pool_address=$1`, s.addr)
	if err != nil {
		return model.PoolState{}, false, err
	}
	defer rows.Close()

	state.Shares = make(map[string]string)
	for rows.Next() {
		var holder, shares string
		if err := rows.Scan(&holder, &shares); err != nil {
			return model.PoolState{}, false, err
		}
		state.Shares[holder] = shares
	}
	if err := rows.Err(); err != nil {
		return model.PoolState{}, false, err
	}
	return state, true, nil
}

// Save writes the pool row and replaces its share ledger in one transaction.
func (s *Store) Save(ctx context.Context, state model.PoolState) error {
	batch := &pgx.Batch{}
	s.queueState(batch, state)
	return s.commit(ctx, batch)
}

func (s *Store) LoadBalances(ctx context.Context) ([]model.Balance, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT asset, holder, amount::text FROM custody_balances ORDER BY asset, holder
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Balance
	for rows.Next() {
		var b model.Balance
		if err := rows.Scan(&b.Asset, &b.Holder, &b.Amount); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// SaveBalances upserts balances and deletes rows no longer present.
func (s *Store) SaveBalances(ctx context.Context, balances []model.Balance) error {
	batch := &pgx.Batch{}
	queueBalances(batch, balances)
	return s.commit(ctx, batch)
}

// SaveSnapshot writes the pool state and the custody balances in one transaction.
func (s *Store) SaveSnapshot(ctx context.Context, state model.PoolState, balances []model.Balance) error {
	batch := &pgx.Batch{}
	s.queueState(batch, state)
	queueBalances(batch, balances)
	return s.commit(ctx, batch)
}

func (s *Store) queueState(batch *pgx.Batch, state model.PoolState) {
	batch.Queue(`
		INSERT INTO pool_state (
			pool_address, asset_x, asset_y, locked_minimum, total_shares, updated_at
		) VALUES ($1, $2, $3, $4::numeric, $5::numeric, now())
		ON CONFLICT (pool_address)
		DO UPDATE SET
			asset_x = EXCLUDED.asset_x,
			asset_y = EXCLUDED.asset_y,
			locked_minimum = EXCLUDED.locked_minimum,
			total_shares = EXCLUDED.total_shares,
			updated_at = now()
	`,
		s.addr,
		state.AssetX,
		state.AssetY,
		state.LockedMinimum,
		state.TotalShares,
	)
	batch.Queue(`DELETE FROM pool_shares WHERE pool_address=$1`, s.addr)
	for holder, shares := range state.Shares {
		batch.Queue(`
			INSERT INTO pool_shares (pool_address, holder, shares)
			VALUES ($1, $2, $3::numeric)
		`, s.addr, holder, shares)
	}
}

func queueBalances(batch *pgx.Batch, balances []model.Balance) {
	assets := make([]string, 0, len(balances))
	holders := make([]string, 0, len(balances))
	for _, b := range balances {
		assets = append(assets, b.Asset)
		holders = append(holders, b.Holder)
		batch.Queue(`
			INSERT INTO custody_balances (asset, holder, amount, updated_at)
			VALUES ($1, $2, $3::numeric, now())
			ON CONFLICT (asset, holder)
			DO UPDATE SET amount = EXCLUDED.amount, updated_at = now()
		`, b.Asset, b.Holder, b.Amount)
	}
	batch.Queue(`
		DELETE FROM custody_balances c
		WHERE NOT EXISTS (
			SELECT 1 FROM unnest($1::text[], $2::text[]) AS k(asset, holder)
			WHERE k.asset = c.asset AND k.holder = c.holder
		)
	`, assets, holders)
}

func (s *Store) commit(ctx context.Context, batch *pgx.Batch) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := sendBatch(ctx, tx, batch); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func sendBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch) error {
	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return err
		}
	}
	return br.Close()
}
