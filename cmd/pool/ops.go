package main

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pairSwap/internal/amm"
	"pairSwap/internal/config"
	"pairSwap/internal/model"
	"pairSwap/internal/storage"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the pool, or check that the stored pool matches the configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()
			a, err := loadApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			a.logger.Info("pool ready",
				zap.Stringer("pool", a.engine.Pool()),
				zap.Stringer("total_shares", a.engine.TotalShares()),
				zap.String("store", a.cfg.Store),
			)
			return printJSON(cmd, a.engine.State())
		},
	}
}

func newFundCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fund",
		Short: "Credit a custody balance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireFlags(cmd, "asset", "holder", "amount"); err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()
			a, err := loadApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			asset, holder, err := addressPair(cmd, "asset", "holder")
			if err != nil {
				return err
			}
			amount, err := amountFlag(cmd, "amount")
			if err != nil {
				return err
			}
			if err := a.ledger.Deposit(ctx, asset, holder, amount); err != nil {
				return err
			}
			bal, err := a.ledger.Balance(ctx, asset, holder)
			if err != nil {
				return err
			}
			return printJSON(cmd, model.Balance{Asset: asset.Hex(), Holder: holder.Hex(), Amount: bal.String()})
		},
	}
	cmd.Flags().String("asset", "", "asset address")
	cmd.Flags().String("holder", "", "account to credit")
	cmd.Flags().String("amount", "", "amount in base units")
	return cmd
}

func newProvideCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provide",
		Short: "Deposit both assets and mint shares",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireFlags(cmd, "caller", "asset1", "asset2", "amount1", "amount2"); err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()
			a, err := loadApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			caller, recipient, err := partyFlags(cmd)
			if err != nil {
				return err
			}
			asset1, asset2, err := addressPair(cmd, "asset1", "asset2")
			if err != nil {
				return err
			}
			amounts, err := amountFlags(cmd, "amount1", "amount2", "min1", "min2")
			if err != nil {
				return err
			}
			deadline, err := deadlineFrom(cmd)
			if err != nil {
				return err
			}

			res, err := a.engine.ProvideLiquidity(ctx, amm.ProvideRequest{
				Caller:    caller,
				Asset1:    asset1,
				Asset2:    asset2,
				Desired1:  amounts[0],
				Desired2:  amounts[1],
				Min1:      amounts[2],
				Min2:      amounts[3],
				Recipient: recipient,
				Deadline:  deadline,
			})
			if err != nil {
				return fmt.Errorf("provide (%s): %w", amm.KindOf(err), err)
			}
			return printJSON(cmd, map[string]string{
				"amount1": res.Amount1.String(),
				"amount2": res.Amount2.String(),
				"shares":  res.Shares.String(),
			})
		},
	}
	addPartyFlags(cmd)
	cmd.Flags().String("asset1", "", "first asset, in the order amounts are given")
	cmd.Flags().String("asset2", "", "second asset")
	cmd.Flags().String("amount1", "", "desired amount of asset1")
	cmd.Flags().String("amount2", "", "desired amount of asset2")
	cmd.Flags().String("min1", "0", "minimum accepted amount of asset1")
	cmd.Flags().String("min2", "0", "minimum accepted amount of asset2")
	addDeadlineFlag(cmd)
	return cmd
}

func newWithdrawCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Burn shares for a proportional cut of both reserves",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireFlags(cmd, "caller", "asset1", "asset2", "shares"); err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()
			a, err := loadApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			caller, recipient, err := partyFlags(cmd)
			if err != nil {
				return err
			}
			asset1, asset2, err := addressPair(cmd, "asset1", "asset2")
			if err != nil {
				return err
			}
			amounts, err := amountFlags(cmd, "shares", "min1", "min2")
			if err != nil {
				return err
			}
			deadline, err := deadlineFrom(cmd)
			if err != nil {
				return err
			}

			res, err := a.engine.WithdrawLiquidity(ctx, amm.WithdrawRequest{
				Caller:    caller,
				Asset1:    asset1,
				Asset2:    asset2,
				Shares:    amounts[0],
				Min1:      amounts[1],
				Min2:      amounts[2],
				Recipient: recipient,
				Deadline:  deadline,
			})
			if err != nil {
				return fmt.Errorf("withdraw (%s): %w", amm.KindOf(err), err)
			}
			return printJSON(cmd, map[string]string{
				"amount1": res.Amount1.String(),
				"amount2": res.Amount2.String(),
			})
		},
	}
	addPartyFlags(cmd)
	cmd.Flags().String("asset1", "", "first asset, in the order minimums are given")
	cmd.Flags().String("asset2", "", "second asset")
	cmd.Flags().String("shares", "", "shares to burn")
	cmd.Flags().String("min1", "0", "minimum accepted amount of asset1")
	cmd.Flags().String("min2", "0", "minimum accepted amount of asset2")
	addDeadlineFlag(cmd)
	return cmd
}

func newSwapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Sell an exact input amount along a two-asset path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireFlags(cmd, "caller", "amount-in"); err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()
			a, err := loadApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			caller, recipient, err := partyFlags(cmd)
			if err != nil {
				return err
			}
			rawPath, err := cmd.Flags().GetStringSlice("path")
			if err != nil {
				return err
			}
			path := make([]common.Address, 0, len(rawPath))
			for _, p := range rawPath {
				addr, err := model.ParseAddress(p)
				if err != nil {
					return fmt.Errorf("path: %w", err)
				}
				path = append(path, addr)
			}
			amounts, err := amountFlags(cmd, "amount-in", "min-out")
			if err != nil {
				return err
			}
			deadline, err := deadlineFrom(cmd)
			if err != nil {
				return err
			}

			res, err := a.engine.SwapExactIn(ctx, amm.SwapRequest{
				Caller:       caller,
				AmountIn:     amounts[0],
				MinAmountOut: amounts[1],
				Path:         path,
				Recipient:    recipient,
				Deadline:     deadline,
			})
			if err != nil {
				return fmt.Errorf("swap (%s): %w", amm.KindOf(err), err)
			}
			return printJSON(cmd, map[string]string{
				"amount_in":  res.AmountIn.String(),
				"amount_out": res.AmountOut.String(),
			})
		},
	}
	addPartyFlags(cmd)
	cmd.Flags().String("amount-in", "", "exact input amount")
	cmd.Flags().String("min-out", "0", "minimum accepted output")
	cmd.Flags().StringSlice("path", nil, "input asset then output asset (comma-separated)")
	addDeadlineFlag(cmd)
	return cmd
}

func newPriceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Print the price of asset1 in units of asset2",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireFlags(cmd, "asset1", "asset2"); err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()
			a, err := loadApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			asset1, asset2, err := addressPair(cmd, "asset1", "asset2")
			if err != nil {
				return err
			}
			price, err := a.engine.QuotePrice(ctx, asset1, asset2)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]string{
				"price":         price.String(),
				"price_decimal": model.FormatPrice(price),
			})
		},
	}
	cmd.Flags().String("asset1", "", "priced asset")
	cmd.Flags().String("asset2", "", "quote asset")
	return cmd
}

func newSharesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shares",
		Short: "Print a holder's shares and the pool total",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireFlags(cmd, "holder"); err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()
			a, err := loadApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			raw, _ := cmd.Flags().GetString("holder")
			holder, err := model.ParseAddress(raw)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]string{
				"holder":       holder.Hex(),
				"shares":       a.engine.SharesOf(holder).String(),
				"total_shares": a.engine.TotalShares().String(),
			})
		},
	}
	cmd.Flags().String("holder", "", "share holder address")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the operation journal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgFile, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			if cfg.Journal == "" {
				return fmt.Errorf("journal path is required")
			}
			records, err := storage.ReadJournal(cfg.Journal)
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")
			if limit > 0 && len(records) > limit {
				records = records[len(records)-limit:]
			}
			if records == nil {
				records = []model.OperationRecord{}
			}
			return printJSON(cmd, records)
		},
	}
	cmd.Flags().Int("limit", 0, "print only the last n records, 0 prints all")
	return cmd
}

func addPartyFlags(cmd *cobra.Command) {
	cmd.Flags().String("caller", "", "account the inputs are taken from")
	cmd.Flags().String("to", "", "recipient of the outputs, defaults to the caller")
}

func partyFlags(cmd *cobra.Command) (common.Address, common.Address, error) {
	rawCaller, _ := cmd.Flags().GetString("caller")
	caller, err := model.ParseAddress(rawCaller)
	if err != nil {
		return common.Address{}, common.Address{}, fmt.Errorf("caller: %w", err)
	}
	rawTo, _ := cmd.Flags().GetString("to")
	if rawTo == "" {
		return caller, caller, nil
	}
	to, err := model.ParseAddress(rawTo)
	if err != nil {
		return common.Address{}, common.Address{}, fmt.Errorf("to: %w", err)
	}
	return caller, to, nil
}

func addressPair(cmd *cobra.Command, first, second string) (common.Address, common.Address, error) {
	out := [2]common.Address{}
	for i, name := range []string{first, second} {
		raw, err := cmd.Flags().GetString(name)
		if err != nil {
			return common.Address{}, common.Address{}, err
		}
		addr, err := model.ParseAddress(raw)
		if err != nil {
			return common.Address{}, common.Address{}, fmt.Errorf("%s: %w", name, err)
		}
		out[i] = addr
	}
	return out[0], out[1], nil
}

func amountFlag(cmd *cobra.Command, name string) (*big.Int, error) {
	raw, err := cmd.Flags().GetString(name)
	if err != nil {
		return nil, err
	}
	v, err := model.ParseAmount(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

func amountFlags(cmd *cobra.Command, names ...string) ([]*big.Int, error) {
	out := make([]*big.Int, 0, len(names))
	for _, name := range names {
		v, err := amountFlag(cmd, name)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
