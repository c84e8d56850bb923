package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"pairSwap/internal/model"
)

const stateFile = "state.json"

// FileStore keeps the pool state and custody balances together in one JSON
// file, so every save is a single rename.
type FileStore struct {
	Dir string
	mu  sync.Mutex
}

type fileState struct {
	Pool     *model.PoolState `json:"pool,omitempty"`
	Balances []model.Balance  `json:"balances"`
}

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("state dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

func (s *FileStore) Load(ctx context.Context) (model.PoolState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fs, err := s.read()
	if err != nil {
		return model.PoolState{}, false, fmt.Errorf("read pool state: %w", err)
	}
	if fs.Pool == nil {
		return model.PoolState{}, false, nil
	}
	return *fs.Pool, true, nil
}

func (s *FileStore) Save(ctx context.Context, state model.PoolState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fs, err := s.read()
	if err != nil {
		return fmt.Errorf("read pool state: %w", err)
	}
	fs.Pool = &state
	if err := s.write(fs); err != nil {
		return fmt.Errorf("write pool state: %w", err)
	}
	return nil
}

func (s *FileStore) LoadBalances(ctx context.Context) ([]model.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fs, err := s.read()
	if err != nil {
		return nil, fmt.Errorf("read balances: %w", err)
	}
	return fs.Balances, nil
}

func (s *FileStore) SaveBalances(ctx context.Context, balances []model.Balance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fs, err := s.read()
	if err != nil {
		return fmt.Errorf("read balances: %w", err)
	}
	fs.Balances = balances
	if err := s.write(fs); err != nil {
		return fmt.Errorf("write balances: %w", err)
	}
	return nil
}

// SaveSnapshot replaces the pool state and the balances in one write.
func (s *FileStore) SaveSnapshot(ctx context.Context, state model.PoolState, balances []model.Balance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(fileState{Pool: &state, Balances: balances}); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// read loads the state file; callers hold mu.
func (s *FileStore) read() (fileState, error) {
	var fs fileState
	data, err := os.ReadFile(filepath.Join(s.Dir, stateFile))
	if err != nil {
		if os.IsNotExist(err) {
			return fs, nil
		}
		return fs, err
	}
	if err := json.Unmarshal(data, &fs); err != nil {
		return fileState{}, fmt.Errorf("parse %s: %w", stateFile, err)
	}
	return fs, nil
}

// write replaces the state file atomically via a tmp file and rename; callers hold mu.
func (s *FileStore) write(fs fileState) error {
	if fs.Balances == nil {
		fs.Balances = []model.Balance{}
	}
	data, err := json.MarshalIndent(fs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", stateFile, err)
	}

	path := filepath.Join(s.Dir, stateFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write tmp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
