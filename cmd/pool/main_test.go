package main

import (
	"bytes"
	"encoding/json"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"pairSwap/internal/amm"
	"pairSwap/internal/chain"
	"pairSwap/internal/model"
)

const (
	poolAddr = "0x3000000000000000000000000000000000000003"
	assetX   = "0x1000000000000000000000000000000000000001"
	assetY   = "0x2000000000000000000000000000000000000002"
	alice    = "0x00000000000000000000000000000000000A11cE"
	bob      = "0x0000000000000000000000000000000000000B0b"
)

func runCLI(t *testing.T, dir string, args ...string) []byte {
	t.Helper()
	base := []string{
		"--log-level", "error",
		"--store", "file",
		"--state-dir", filepath.Join(dir, "state"),
		"--journal", filepath.Join(dir, "operations.jsonl"),
		"--pool-address", poolAddr,
		"--asset-x", assetX,
		"--asset-y", assetY,
	}
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append(args, base...))
	require.NoError(t, root.Execute())
	return out.Bytes()
}

func TestCLILifecycle(t *testing.T) {
	dir := t.TempDir()

	var state model.PoolState
	require.NoError(t, json.Unmarshal(runCLI(t, dir, "init"), &state))
	require.Equal(t, "1000", state.TotalShares)

	runCLI(t, dir, "fund", "--asset", assetX, "--holder", alice, "--amount", "1000")
	runCLI(t, dir, "fund", "--asset", assetY, "--holder", alice, "--amount", "4000")
	runCLI(t, dir, "fund", "--asset", assetX, "--holder", bob, "--amount", "100")

	var provided map[string]string
	require.NoError(t, json.Unmarshal(runCLI(t, dir, "provide",
		"--caller", alice,
		"--asset1", assetX,
		"--asset2", assetY,
		"--amount1", "1000",
		"--amount2", "4000",
	), &provided))
	require.Equal(t, "2000", provided["shares"])

	var swapped map[string]string
	require.NoError(t, json.Unmarshal(runCLI(t, dir, "swap",
		"--caller", bob,
		"--amount-in", "100",
		"--path", assetX+","+assetY,
	), &swapped))
	require.Equal(t, "362", swapped["amount_out"])

	// state and balances survive across invocations
	var shares map[string]string
	require.NoError(t, json.Unmarshal(runCLI(t, dir, "shares", "--holder", alice), &shares))
	require.Equal(t, "2000", shares["shares"])
	require.Equal(t, "3000", shares["total_shares"])

	var records []model.OperationRecord
	require.NoError(t, json.Unmarshal(runCLI(t, dir, "history", "--limit", "2"), &records))
	require.Len(t, records, 2)
	require.Equal(t, model.OpProvide, records[0].Kind)
	require.Equal(t, model.OpSwap, records[1].Kind)
}

func TestCLIRejectsMismatchedPool(t *testing.T) {
	dir := t.TempDir()
	runCLI(t, dir, "init")

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{
		"init",
		"--log-level", "error",
		"--state-dir", filepath.Join(dir, "state"),
		"--journal", "",
		"--pool-address", poolAddr,
		"--asset-x", assetX,
		"--asset-y", "0x4000000000000000000000000000000000000004",
	})
	err := root.Execute()
	require.ErrorIs(t, err, amm.ErrStateMismatch)
}

func TestCLIRejectsZeroFee(t *testing.T) {
	dir := t.TempDir()
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{
		"init",
		"--log-level", "error",
		"--state-dir", filepath.Join(dir, "state"),
		"--journal", "",
		"--pool-address", poolAddr,
		"--asset-x", assetX,
		"--asset-y", assetY,
		"--fee-numerator", "0",
		"--fee-denominator", "0",
	})
	require.ErrorIs(t, root.Execute(), amm.ErrInvalidFee)
}

func TestServeListensOnLoopbackByDefault(t *testing.T) {
	listen := newServeCmd().Flags().Lookup("listen")
	require.NotNil(t, listen)
	require.Equal(t, "127.0.0.1:8080", listen.DefValue)
}

func TestQuoteSnapshot(t *testing.T) {
	snap := chain.PairSnapshot{
		Pair:     common.HexToAddress("0xabc"),
		Block:    7,
		Token0:   model.TokenMeta{Address: "0xaa", Decimals: 18, Symbol: "WETH"},
		Token1:   model.TokenMeta{Address: "0xbb", Decimals: 6, Symbol: "USDC"},
		Reserve0: new(big.Int).Mul(big.NewInt(100), big.NewInt(1e18)),
		Reserve1: big.NewInt(200_000_000_000),
	}

	q, err := quoteSnapshot(snap, big.NewInt(1e18), false, amm.DefaultFee)
	require.NoError(t, err)
	require.Equal(t, "2000", q.Price)
	require.Equal(t, "100", q.ReserveIn)
	require.Equal(t, "WETH (0xaa)", q.TokenIn)
	// 1e18*997*2e11 / (1e20*1000 + 997e18)
	require.Equal(t, "1974316068", q.AmountOut)
	require.Equal(t, "1974.316068", q.AmountOutU)

	q, err = quoteSnapshot(snap, big.NewInt(2_000_000_000), true, amm.DefaultFee)
	require.NoError(t, err)
	require.Equal(t, "0.0005", q.Price)
	require.Equal(t, "USDC (0xbb)", q.TokenIn)

	_, err = quoteSnapshot(chain.PairSnapshot{Reserve0: big.NewInt(0), Reserve1: big.NewInt(0)}, big.NewInt(1), false, amm.DefaultFee)
	require.ErrorIs(t, err, amm.ErrInsufficientReserves)
}
