package config

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"pairSwap/internal/model"
)

// Store backends.
const (
	StoreFile     = "file"
	StoreBadger   = "badger"
	StorePostgres = "postgres"
)

// DefaultListen keeps the unauthenticated HTTP API on loopback.
const DefaultListen = "127.0.0.1:8080"

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	LogLevel       string
	Store          string
	StateDir       string
	BadgerDir      string
	PGDSN          string
	Journal        string
	PoolAddress    string
	AssetX         string
	AssetY         string
	LockedMinimum  string
	FeeNumerator   uint64
	FeeDenominator uint64
	Listen         string
	Faucet         bool
	RPCURL         string
	MaxRetries     int
	RetryBackoff   time.Duration
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("POOL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log-level", "info")
	v.SetDefault("store", StoreFile)
	v.SetDefault("state-dir", "./data/state")
	v.SetDefault("badger-dir", "./data/badger")
	v.SetDefault("journal", "./data/operations.jsonl")
	v.SetDefault("locked-minimum", "1000")
	v.SetDefault("fee-numerator", uint64(997))
	v.SetDefault("fee-denominator", uint64(1000))
	v.SetDefault("listen", DefaultListen)
	v.SetDefault("faucet", false)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		LogLevel:       v.GetString("log-level"),
		Store:          strings.ToLower(strings.TrimSpace(v.GetString("store"))),
		StateDir:       v.GetString("state-dir"),
		BadgerDir:      v.GetString("badger-dir"),
		PGDSN:          v.GetString("pg-dsn"),
		Journal:        v.GetString("journal"),
		PoolAddress:    strings.TrimSpace(v.GetString("pool-address")),
		AssetX:         strings.TrimSpace(v.GetString("asset-x")),
		AssetY:         strings.TrimSpace(v.GetString("asset-y")),
		LockedMinimum:  v.GetString("locked-minimum"),
		FeeNumerator:   v.GetUint64("fee-numerator"),
		FeeDenominator: v.GetUint64("fee-denominator"),
		Listen:         v.GetString("listen"),
		Faucet:         v.GetBool("faucet"),
		RPCURL:         v.GetString("rpc"),
		MaxRetries:     v.GetInt("max-retries"),
		RetryBackoff:   v.GetDuration("retry-backoff"),
	}

	return cfg, nil
}

// Pair returns the pool and asset addresses, rejecting malformed values.
func (c Config) Pair() (pool, assetX, assetY common.Address, err error) {
	values := []struct {
		key string
		val string
		out *common.Address
	}{
		{"pool-address", c.PoolAddress, &pool},
		{"asset-x", c.AssetX, &assetX},
		{"asset-y", c.AssetY, &assetY},
	}
	for _, item := range values {
		addr, err := model.ParseAddress(item.val)
		if err != nil {
			return common.Address{}, common.Address{}, common.Address{}, fmt.Errorf("%s: %w", item.key, err)
		}
		*item.out = addr
	}
	return pool, assetX, assetY, nil
}

// Locked parses locked-minimum.
func (c Config) Locked() (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(c.LockedMinimum), 10)
	if !ok || v.Sign() <= 0 {
		return nil, fmt.Errorf("locked-minimum must be a positive integer: %q", c.LockedMinimum)
	}
	return v, nil
}
