package chain

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

type callArgs struct {
	To    *common.Address `json:"to"`
	Data  *hexutil.Bytes  `json:"data"`
	Input *hexutil.Bytes  `json:"input"`
}

type fakeEth struct {
	mu          sync.Mutex
	chainID     int64
	blockNumber uint64
	balances    map[common.Address]map[common.Address]*big.Int
	decimals    map[common.Address]uint8
	symbols     map[common.Address]string
	raw32       map[common.Address]string
	tokens      map[common.Address][2]common.Address
	failures    int
	calls       int
}

func (f *fakeEth) ChainId(ctx context.Context) (*hexutil.Big, error) {
	return (*hexutil.Big)(big.NewInt(f.chainID)), nil
}

func (f *fakeEth) BlockNumber(ctx context.Context) (hexutil.Uint64, error) {
	return hexutil.Uint64(f.blockNumber), nil
}

func (f *fakeEth) Call(ctx context.Context, args callArgs, _ gethrpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("upstream busy")
	}

	var data []byte
	switch {
	case args.Input != nil:
		data = *args.Input
	case args.Data != nil:
		data = *args.Data
	}
	if args.To == nil || len(data) < 4 {
		return nil, errors.New("bad call")
	}
	to := *args.To
	selector := data[:4]

	switch {
	case bytes.Equal(selector, erc20ABI.Methods["balanceOf"].ID):
		owner := common.BytesToAddress(data[4:36])
		bal := f.balances[to][owner]
		if bal == nil {
			bal = big.NewInt(0)
		}
		return erc20ABI.Methods["balanceOf"].Outputs.Pack(bal)
	case bytes.Equal(selector, erc20ABI.Methods["decimals"].ID):
		dec, ok := f.decimals[to]
		if !ok {
			return nil, errors.New("execution reverted")
		}
		return erc20ABI.Methods["decimals"].Outputs.Pack(dec)
	case bytes.Equal(selector, erc20ABI.Methods["symbol"].ID):
		if sym, ok := f.symbols[to]; ok {
			return erc20ABI.Methods["symbol"].Outputs.Pack(sym)
		}
		if sym, ok := f.raw32[to]; ok {
			var word [32]byte
			copy(word[:], sym)
			return erc20Bytes32ABI.Methods["symbol"].Outputs.Pack(word)
		}
		return nil, errors.New("execution reverted")
	case bytes.Equal(selector, pairABI.Methods["token0"].ID):
		return pairABI.Methods["token0"].Outputs.Pack(f.tokens[to][0])
	case bytes.Equal(selector, pairABI.Methods["token1"].ID):
		return pairABI.Methods["token1"].Outputs.Pack(f.tokens[to][1])
	}
	return nil, errors.New("unknown selector")
}

func newInprocClient(t *testing.T, fe *fakeEth) *Client {
	t.Helper()
	if err := loadABIs(); err != nil {
		t.Fatalf("load abis: %v", err)
	}
	srv := gethrpc.NewServer()
	if err := srv.RegisterName("eth", fe); err != nil {
		t.Fatalf("register rpc service: %v", err)
	}
	c := NewClientFromRPC(gethrpc.DialInProc(srv))
	t.Cleanup(c.Close)
	return c
}

var (
	weth = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	usdc = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	pair = common.HexToAddress("0x0000000000000000000000000000000000000abc")
)

func newFake() *fakeEth {
	return &fakeEth{
		chainID:     56,
		blockNumber: 123,
		balances: map[common.Address]map[common.Address]*big.Int{
			weth: {pair: big.NewInt(1_000_000)},
			usdc: {pair: big.NewInt(2_000_000)},
		},
		decimals: map[common.Address]uint8{weth: 18, usdc: 6},
		symbols:  map[common.Address]string{usdc: "USDC"},
		raw32:    map[common.Address]string{weth: "WETH"},
		tokens:   map[common.Address][2]common.Address{pair: {weth, usdc}},
	}
}

func TestClientChainID(t *testing.T) {
	id, err := newInprocClient(t, newFake()).GetChainID(context.Background())
	if err != nil {
		t.Fatalf("chain id: %v", err)
	}
	if id.Int64() != 56 {
		t.Fatalf("unexpected chain id %s", id)
	}
}

func TestSnapshotReadsBalances(t *testing.T) {
	fe := newFake()
	reader := NewReserveReader(newInprocClient(t, fe), 0, time.Millisecond, nil)

	snap, err := reader.Snapshot(context.Background(), pair, weth, usdc)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Block != 123 {
		t.Fatalf("unexpected block %d", snap.Block)
	}
	if snap.Reserve0.Int64() != 1_000_000 || snap.Reserve1.Int64() != 2_000_000 {
		t.Fatalf("unexpected reserves %s %s", snap.Reserve0, snap.Reserve1)
	}
	if snap.Token0.Symbol != "WETH" || snap.Token0.Decimals != 18 {
		t.Fatalf("unexpected token0 meta %+v", snap.Token0)
	}
	if snap.Token1.Symbol != "USDC" || snap.Token1.Decimals != 6 {
		t.Fatalf("unexpected token1 meta %+v", snap.Token1)
	}
}

func TestSnapshotResolvesPairTokens(t *testing.T) {
	fe := newFake()
	reader := NewReserveReader(newInprocClient(t, fe), 0, time.Millisecond, nil)

	snap, err := reader.Snapshot(context.Background(), pair, common.Address{}, common.Address{})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Token0.Address != weth.Hex() || snap.Token1.Address != usdc.Hex() {
		t.Fatalf("unexpected tokens %s %s", snap.Token0.Address, snap.Token1.Address)
	}
}

func TestSnapshotRetries(t *testing.T) {
	fe := newFake()
	fe.failures = 2
	reader := NewReserveReader(newInprocClient(t, fe), 3, time.Millisecond, nil)

	snap, err := reader.Snapshot(context.Background(), pair, weth, usdc)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Reserve0.Int64() != 1_000_000 {
		t.Fatalf("unexpected reserve0 %s", snap.Reserve0)
	}

	fe.failures = 10
	reader = NewReserveReader(newInprocClient(t, fe), 1, time.Millisecond, nil)
	if _, err := reader.Snapshot(context.Background(), pair, weth, usdc); err == nil {
		t.Fatalf("expected error after retries are exhausted")
	}
}

func TestTokenMetaFallback(t *testing.T) {
	fe := newFake()
	delete(fe.decimals, usdc)
	reader := NewReserveReader(newInprocClient(t, fe), 0, time.Millisecond, nil)

	meta := reader.tokenMeta(context.Background(), usdc)
	if meta.Decimals != 18 || meta.Address != usdc.Hex() {
		t.Fatalf("unexpected fallback meta %+v", meta)
	}
}

func TestWithRetryStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := withRetry(ctx, 5, 50*time.Millisecond, func(context.Context) error {
		attempts++
		cancel()
		return errors.New("fail")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}
