package main

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pairSwap/internal/amm"
	"pairSwap/internal/chain"
	"pairSwap/internal/config"
	"pairSwap/internal/model"
)

type chainQuote struct {
	ChainID    string `json:"chain_id"`
	Pair       string `json:"pair"`
	Block      uint64 `json:"block"`
	TokenIn    string `json:"token_in"`
	TokenOut   string `json:"token_out"`
	ReserveIn  string `json:"reserve_in"`
	ReserveOut string `json:"reserve_out"`
	AmountIn   string `json:"amount_in"`
	AmountOut  string `json:"amount_out"`
	AmountOutU string `json:"amount_out_units"`
	Price      string `json:"price"`
}

func newQuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a swap against a live pair contract's balances",
		RunE:  runQuote,
	}
	cmd.Flags().String("rpc", "", "RPC URL")
	cmd.Flags().String("pair", "", "pair contract address")
	cmd.Flags().String("token0", "", "token0 address, resolved from the pair when empty")
	cmd.Flags().String("token1", "", "token1 address, resolved from the pair when empty")
	cmd.Flags().String("amount-in", "", "input amount in base units")
	cmd.Flags().Bool("sell-token1", false, "sell token1 for token0 instead of token0 for token1")
	cmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	return cmd
}

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if err := requireFlags(cmd, "pair", "amount-in"); err != nil {
		return err
	}

	rawPair, _ := cmd.Flags().GetString("pair")
	pair, err := model.ParseAddress(rawPair)
	if err != nil {
		return fmt.Errorf("pair: %w", err)
	}
	token0, err := optionalAddress(cmd, "token0")
	if err != nil {
		return err
	}
	token1, err := optionalAddress(cmd, "token1")
	if err != nil {
		return err
	}
	amountIn, err := amountFlag(cmd, "amount-in")
	if err != nil {
		return err
	}
	sellToken1, _ := cmd.Flags().GetBool("sell-token1")
	fee := amm.Fee{Numerator: cfg.FeeNumerator, Denominator: cfg.FeeDenominator}
	if err := fee.Validate(); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	client, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer client.Close()

	chainID, err := client.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("read chain id: %w", err)
	}
	logger.Debug("rpc connected", zap.Stringer("chain_id", chainID))

	reader := chain.NewReserveReader(client, cfg.MaxRetries, cfg.RetryBackoff, logger.Named("chain"))
	snap, err := reader.Snapshot(ctx, pair, token0, token1)
	if err != nil {
		return err
	}

	q, err := quoteSnapshot(snap, amountIn, sellToken1, fee)
	if err != nil {
		return err
	}
	q.ChainID = chainID.String()
	logger.Info("quote",
		zap.String("chain_id", q.ChainID),
		zap.String("pair", q.Pair),
		zap.Uint64("block", q.Block),
		zap.String("amount_in", q.AmountIn),
		zap.String("amount_out", q.AmountOut),
	)
	return printJSON(cmd, q)
}

// quoteSnapshot prices amountIn against the snapshot's balances.
func quoteSnapshot(snap chain.PairSnapshot, amountIn *big.Int, sellToken1 bool, fee amm.Fee) (chainQuote, error) {
	in, out := snap.Token0, snap.Token1
	rIn, rOut := snap.Reserve0, snap.Reserve1
	if sellToken1 {
		in, out = out, in
		rIn, rOut = rOut, rIn
	}

	amountOut, err := amm.GetAmountOut(amountIn, rIn, rOut, fee)
	if err != nil {
		return chainQuote{}, err
	}
	// price of the input token in output tokens, adjusted for decimals
	price := out.Units(rOut).Div(in.Units(rIn))

	return chainQuote{
		Pair:       snap.Pair.Hex(),
		Block:      snap.Block,
		TokenIn:    tokenLabel(in),
		TokenOut:   tokenLabel(out),
		ReserveIn:  in.Units(rIn).String(),
		ReserveOut: out.Units(rOut).String(),
		AmountIn:   amountIn.String(),
		AmountOut:  amountOut.String(),
		AmountOutU: model.FormatUnits(amountOut, out.Decimals),
		Price:      price.String(),
	}, nil
}

func tokenLabel(meta model.TokenMeta) string {
	if meta.Symbol == "" {
		return meta.Address
	}
	return fmt.Sprintf("%s (%s)", meta.Symbol, meta.Address)
}

func optionalAddress(cmd *cobra.Command, name string) (common.Address, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return common.Address{}, nil
	}
	addr, err := model.ParseAddress(raw)
	if err != nil {
		return common.Address{}, fmt.Errorf("%s: %w", name, err)
	}
	return addr, nil
}
