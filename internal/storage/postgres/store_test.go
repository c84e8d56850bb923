package postgres

import (
	"context"
	"os"
	"reflect"
	"testing"

	"pairSwap/internal/model"
)

// Runs against a scratch database named by POOL_TEST_PG_DSN.
func TestStoreRoundTrip(t *testing.T) {
	dsn := os.Getenv("POOL_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("POOL_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	pool := "0x0000000000000000000000000000000000000f00"

	store, err := NewStore(ctx, dsn, pool)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer store.Close()
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("schema: %v", err)
	}

	state := model.PoolState{
		Pool:          pool,
		AssetX:        "0x00000000000000000000000000000000000000a1",
		AssetY:        "0x00000000000000000000000000000000000000b2",
		LockedMinimum: "1000",
		TotalShares:   "3000",
		Shares: map[string]string{
			pool: "1000",
			"0x0000000000000000000000000000000000000011": "2000",
		},
	}
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := store.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got.TotalShares != "3000" || !reflect.DeepEqual(got.Shares, state.Shares) {
		t.Fatalf("state mismatch: got %+v", got)
	}

	balances := []model.Balance{{Asset: state.AssetX, Holder: pool, Amount: "115792089237316195423570985008687907853269984665640564039457584007913129639935"}}
	if err := store.SaveBalances(ctx, balances); err != nil {
		t.Fatalf("save balances: %v", err)
	}
	loaded, err := store.LoadBalances(ctx)
	if err != nil {
		t.Fatalf("load balances: %v", err)
	}
	if !reflect.DeepEqual(loaded, balances) {
		t.Fatalf("balances mismatch: got %+v", loaded)
	}

	state.TotalShares = "1000"
	state.Shares = map[string]string{pool: "1000"}
	if err := store.SaveSnapshot(ctx, state, nil); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}
	got, _, err = store.Load(ctx)
	if err != nil || got.TotalShares != "1000" || len(got.Shares) != 1 {
		t.Fatalf("snapshot state mismatch: got %+v err=%v", got, err)
	}
	loaded, err = store.LoadBalances(ctx)
	if err != nil || len(loaded) != 0 {
		t.Fatalf("expected snapshot to clear balances, got %+v err=%v", loaded, err)
	}
}

func TestNewStoreRequiresDSN(t *testing.T) {
	if _, err := NewStore(context.Background(), "", "0x01"); err == nil {
		t.Fatalf("expected dsn error")
	}
	if _, err := NewStore(context.Background(), "postgres://localhost/x", ""); err == nil {
		t.Fatalf("expected pool address error")
	}
}
