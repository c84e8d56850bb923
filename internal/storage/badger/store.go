// Package badger persists pool state and custody balances in a badger database.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	badgerdb "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"pairSwap/internal/model"
)

const (
	poolStateKey  = "pool/state"
	balancePrefix = "balance/"
)

type Store struct {
	db *badgerdb.DB
}

// Open opens (or creates) the database in dir. An empty dir runs in memory.
func Open(dir string, logger *zap.Logger) (*Store, error) {
	opts := badgerdb.DefaultOptions(dir)
	if dir == "" {
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.
		WithLogger(newLogger(logger)).
		// badger logs every compaction at INFO
		WithLoggingLevel(badgerdb.WARNING)
	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Load(ctx context.Context) (model.PoolState, bool, error) {
	var state model.PoolState
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(poolStateKey))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			return json.Unmarshal(v, &state)
		})
	})
	if err != nil {
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return model.PoolState{}, false, nil
		}
		return model.PoolState{}, false, fmt.Errorf("load pool state: %w", err)
	}
	return state, true, nil
}

func (s *Store) Save(ctx context.Context, state model.PoolState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal pool state: %w", err)
	}
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(poolStateKey), data)
	})
}

// SaveSnapshot writes the pool state and replaces the balances in one transaction.
func (s *Store) SaveSnapshot(ctx context.Context, state model.PoolState, balances []model.Balance) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal pool state: %w", err)
	}
	return s.db.Update(func(txn *badgerdb.Txn) error {
		if err := txn.Set([]byte(poolStateKey), data); err != nil {
			return err
		}
		return replaceBalances(txn, balances)
	})
}

func (s *Store) LoadBalances(ctx context.Context) ([]model.Balance, error) {
	var out []model.Balance
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(balancePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			asset, holder, err := splitBalanceKey(string(item.Key()))
			if err != nil {
				return err
			}
			err = item.Value(func(v []byte) error {
				out = append(out, model.Balance{Asset: asset, Holder: holder, Amount: string(v)})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load balances: %w", err)
	}
	return out, nil
}

// SaveBalances replaces every stored balance with balances in one transaction.
func (s *Store) SaveBalances(ctx context.Context, balances []model.Balance) error {
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return replaceBalances(txn, balances)
	})
}

func replaceBalances(txn *badgerdb.Txn, balances []model.Balance) error {
	keep := make(map[string]struct{}, len(balances))
	for _, b := range balances {
		keep[balanceKey(b.Asset, b.Holder)] = struct{}{}
	}

	opts := badgerdb.DefaultIteratorOptions
	opts.Prefix = []byte(balancePrefix)
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	var stale [][]byte
	for it.Rewind(); it.Valid(); it.Next() {
		key := it.Item().KeyCopy(nil)
		if _, ok := keep[string(key)]; !ok {
			stale = append(stale, key)
		}
	}
	it.Close()

	for _, key := range stale {
		if err := txn.Delete(key); err != nil {
			return err
		}
	}
	for _, b := range balances {
		if err := txn.Set([]byte(balanceKey(b.Asset, b.Holder)), []byte(b.Amount)); err != nil {
			return err
		}
	}
	return nil
}

func balanceKey(asset, holder string) string {
	return balancePrefix + asset + "/" + holder
}

func splitBalanceKey(key string) (string, string, error) {
	parts := strings.Split(strings.TrimPrefix(key, balancePrefix), "/")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("malformed balance key %q", key)
	}
	return parts[0], parts[1], nil
}
