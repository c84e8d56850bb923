package storage

import (
	"context"

	"pairSwap/internal/model"
)

// Store persists pool state and custody balances.
type Store interface {
	Load(ctx context.Context) (model.PoolState, bool, error)
	Save(ctx context.Context, state model.PoolState) error
	LoadBalances(ctx context.Context) ([]model.Balance, error)
	SaveBalances(ctx context.Context, balances []model.Balance) error
	// SaveSnapshot writes state and balances in one durable write.
	SaveSnapshot(ctx context.Context, state model.PoolState, balances []model.Balance) error
	Close() error
}
