package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store != StoreFile || cfg.LockedMinimum != "1000" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.FeeNumerator != 997 || cfg.FeeDenominator != 1000 {
		t.Fatalf("unexpected fee: %d/%d", cfg.FeeNumerator, cfg.FeeDenominator)
	}
	if cfg.RetryBackoff != 500*time.Millisecond || cfg.MaxRetries != 5 {
		t.Fatalf("unexpected retry defaults: %+v", cfg)
	}
	if cfg.Listen != "127.0.0.1:8080" {
		t.Fatalf("expected loopback listen default, got %q", cfg.Listen)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "pool.yaml")
	body := "store: badger\nlisten: \":9000\"\nfee-numerator: 1\nfee-denominator: 1\n"
	if err := os.WriteFile(file, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("POOL_LISTEN", ":9100")
	t.Setenv("POOL_LOCKED_MINIMUM", "10")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("listen", ":8080", "")
	if err := flags.Parse([]string{"--listen", ":9200"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(file, flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store != StoreBadger {
		t.Fatalf("expected store from file, got %q", cfg.Store)
	}
	if cfg.Listen != ":9200" {
		t.Fatalf("expected flag to win, got %q", cfg.Listen)
	}
	if cfg.LockedMinimum != "10" {
		t.Fatalf("expected env locked minimum, got %q", cfg.LockedMinimum)
	}
	if cfg.FeeNumerator != 1 || cfg.FeeDenominator != 1 {
		t.Fatalf("expected fee-free profile, got %d/%d", cfg.FeeNumerator, cfg.FeeDenominator)
	}
}

func TestPairAndLocked(t *testing.T) {
	cfg := Config{
		PoolAddress:   "0x0000000000000000000000000000000000000f00",
		AssetX:        "0x00000000000000000000000000000000000000a1",
		AssetY:        "nope",
		LockedMinimum: "1000",
	}
	if _, _, _, err := cfg.Pair(); err == nil {
		t.Fatalf("expected invalid asset-y")
	}
	cfg.AssetY = "0x00000000000000000000000000000000000000b2"
	pool, x, y, err := cfg.Pair()
	if err != nil {
		t.Fatalf("pair: %v", err)
	}
	if pool != common.HexToAddress("0x0000000000000000000000000000000000000f00") || x == y {
		t.Fatalf("unexpected pair: %s %s %s", pool.Hex(), x.Hex(), y.Hex())
	}

	locked, err := cfg.Locked()
	if err != nil || locked.Int64() != 1000 {
		t.Fatalf("locked: %v %v", locked, err)
	}
	cfg.LockedMinimum = "0"
	if _, err := cfg.Locked(); err == nil {
		t.Fatalf("expected non-positive locked minimum to fail")
	}
}
