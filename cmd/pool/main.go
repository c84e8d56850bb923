package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "pool",
		Short:        "Two-asset constant-product liquidity pool",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file path")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("store", "file", "state backend (file, badger, postgres)")
	pf.String("state-dir", "./data/state", "directory for the file backend")
	pf.String("badger-dir", "./data/badger", "directory for the badger backend, empty runs in memory")
	pf.String("pg-dsn", "", "Postgres DSN for the postgres backend")
	pf.String("journal", "./data/operations.jsonl", "operation journal JSONL path, empty disables it")
	pf.String("pool-address", "", "pool account address")
	pf.String("asset-x", "", "first asset of the pair")
	pf.String("asset-y", "", "second asset of the pair")
	pf.String("locked-minimum", "1000", "shares locked to the pool at creation")
	pf.Uint64("fee-numerator", 997, "swap fee numerator")
	pf.Uint64("fee-denominator", 1000, "swap fee denominator")

	root.AddCommand(
		newInitCmd(),
		newFundCmd(),
		newProvideCmd(),
		newWithdrawCmd(),
		newSwapCmd(),
		newPriceCmd(),
		newSharesCmd(),
		newHistoryCmd(),
		newServeCmd(),
		newQuoteCmd(),
	)
	return root
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func addDeadlineFlag(cmd *cobra.Command) {
	cmd.Flags().Duration("deadline", 20*time.Minute, "time from now after which the operation is rejected")
}

func deadlineFrom(cmd *cobra.Command) (time.Time, error) {
	d, err := cmd.Flags().GetDuration("deadline")
	if err != nil {
		return time.Time{}, err
	}
	return time.Now().Add(d), nil
}

func requireFlags(cmd *cobra.Command, names ...string) error {
	for _, name := range names {
		v, err := cmd.Flags().GetString(name)
		if err != nil {
			return err
		}
		if v == "" {
			return fmt.Errorf("--%s is required", name)
		}
	}
	return nil
}
