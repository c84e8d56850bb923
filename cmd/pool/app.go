package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pairSwap/internal/amm"
	"pairSwap/internal/config"
	"pairSwap/internal/custody"
	"pairSwap/internal/storage"
	badgerstore "pairSwap/internal/storage/badger"
	"pairSwap/internal/storage/postgres"
)

// app is the wired pool: store, custody ledger and engine.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	store  storage.Store
	ledger *custody.Ledger
	engine *amm.Engine
}

func loadApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	poolAddr, assetX, assetY, err := cfg.Pair()
	if err != nil {
		return nil, err
	}
	locked, err := cfg.Locked()
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx, cfg, poolAddr.Hex(), logger)
	if err != nil {
		return nil, err
	}

	ledger, err := custody.NewLedger(ctx, store, logger.Named("custody"))
	if err != nil {
		store.Close()
		return nil, err
	}

	engineCfg := amm.Config{
		Pool:          poolAddr,
		AssetX:        assetX,
		AssetY:        assetY,
		LockedMinimum: locked,
		Fee:           amm.Fee{Numerator: cfg.FeeNumerator, Denominator: cfg.FeeDenominator},
		Store:         store,
	}
	if cfg.Journal != "" {
		engineCfg.Journal = storage.NewJsonlJournal(cfg.Journal)
	}
	engine, err := amm.NewEngine(ctx, engineCfg, ledger, logger.Named("amm"))
	if err != nil {
		store.Close()
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, store: store, ledger: ledger, engine: engine}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("close store", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func openStore(ctx context.Context, cfg config.Config, poolAddress string, logger *zap.Logger) (storage.Store, error) {
	switch cfg.Store {
	case config.StoreFile, "":
		return storage.NewFileStore(cfg.StateDir)
	case config.StoreBadger:
		return badgerstore.Open(cfg.BadgerDir, logger.Named("badger"))
	case config.StorePostgres:
		store, err := postgres.NewStore(ctx, cfg.PGDSN, poolAddress)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
