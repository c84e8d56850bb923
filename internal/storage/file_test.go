package storage

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"pairSwap/internal/model"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "state"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, ok, err := store.Load(ctx); err != nil || ok {
		t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
	}
	balances, err := store.LoadBalances(ctx)
	if err != nil || len(balances) != 0 {
		t.Fatalf("expected no balances, got %v err=%v", balances, err)
	}

	state := model.PoolState{
		Pool:          "0x0000000000000000000000000000000000000f00",
		AssetX:        "0x00000000000000000000000000000000000000a1",
		AssetY:        "0x00000000000000000000000000000000000000b2",
		LockedMinimum: "1000",
		TotalShares:   "3000",
		Shares: map[string]string{
			"0x0000000000000000000000000000000000000f00": "1000",
			"0x0000000000000000000000000000000000000011": "2000",
		},
		UpdatedAt: "2024-03-01T12:00:00Z",
	}
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := store.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, state) {
		t.Fatalf("state mismatch: got %+v want %+v", got, state)
	}

	want := []model.Balance{{Asset: state.AssetX, Holder: state.Pool, Amount: "1000"}}
	if err := store.SaveBalances(ctx, want); err != nil {
		t.Fatalf("save balances: %v", err)
	}
	balances, err = store.LoadBalances(ctx)
	if err != nil {
		t.Fatalf("load balances: %v", err)
	}
	if !reflect.DeepEqual(balances, want) {
		t.Fatalf("balances mismatch: got %+v want %+v", balances, want)
	}

	// saving the state again keeps the balances written beside it
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("save: %v", err)
	}
	balances, err = store.LoadBalances(ctx)
	if err != nil || !reflect.DeepEqual(balances, want) {
		t.Fatalf("balances lost on save: got %+v err=%v", balances, err)
	}

	if _, err := os.Stat(filepath.Join(store.Dir, stateFile+".tmp")); !os.IsNotExist(err) {
		t.Fatalf("tmp file left behind: %v", err)
	}
}

func TestFileStoreSaveSnapshot(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.SaveBalances(ctx, []model.Balance{{Asset: "0xa1", Holder: "0x22", Amount: "3"}}); err != nil {
		t.Fatalf("save balances: %v", err)
	}

	state := model.PoolState{
		Pool:          "0x0000000000000000000000000000000000000f00",
		AssetX:        "0x00000000000000000000000000000000000000a1",
		AssetY:        "0x00000000000000000000000000000000000000b2",
		LockedMinimum: "1000",
		TotalShares:   "1000",
		Shares:        map[string]string{"0x0000000000000000000000000000000000000f00": "1000"},
	}
	want := []model.Balance{{Asset: "0xa1", Holder: "0x11", Amount: "10"}}
	if err := store.SaveSnapshot(ctx, state, want); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}

	got, ok, err := store.Load(ctx)
	if err != nil || !ok || !reflect.DeepEqual(got, state) {
		t.Fatalf("state mismatch: got %+v ok=%v err=%v", got, ok, err)
	}
	balances, err := store.LoadBalances(ctx)
	if err != nil || !reflect.DeepEqual(balances, want) {
		t.Fatalf("balances mismatch: got %+v err=%v", balances, err)
	}
}

func TestFileStoreRejectsCorruptState(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, stateFile), []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, _, err := store.Load(context.Background()); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestJsonlJournalAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "ops.jsonl")
	journal := NewJsonlJournal(path)

	records := []model.OperationRecord{
		{Kind: model.OpCreate, Pool: "p", Asset1: "x", Asset2: "y", Amount1: "0", Amount2: "0", Shares: "1000", TotalShares: "1000", Timestamp: "t0"},
		{Kind: model.OpSwap, Pool: "p", Caller: "c", Recipient: "r", Asset1: "x", Asset2: "y", Amount1: "100", Amount2: "90", TotalShares: "2000", Timestamp: "t1"},
	}
	for _, rec := range records {
		if err := journal.Record(rec); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	got, err := ReadJournal(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(got, records) {
		t.Fatalf("journal mismatch: got %+v want %+v", got, records)
	}

	missing, err := ReadJournal(filepath.Join(t.TempDir(), "none.jsonl"))
	if err != nil || missing != nil {
		t.Fatalf("expected empty journal, got %v err=%v", missing, err)
	}
}
