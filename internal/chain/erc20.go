package chain

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"pairSwap/internal/model"
)

const erc20ABIJSON = `[
  {"inputs": [{"internalType": "address", "name": "account", "type": "address"}], "name": "balanceOf", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"}
]`

const erc20Bytes32SymbolJSON = `[
  {"inputs": [], "name": "symbol", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"}
]`

const pairABIJSON = `[
  {"inputs": [], "name": "token0", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "token1", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"}
]`

var (
	erc20ABI        abi.ABI
	erc20Bytes32ABI abi.ABI
	pairABI         abi.ABI
	abiOnce         sync.Once
	abiErr          error
)

func loadABIs() error {
	abiOnce.Do(func() {
		if erc20ABI, abiErr = abi.JSON(strings.NewReader(erc20ABIJSON)); abiErr != nil {
			return
		}
		if erc20Bytes32ABI, abiErr = abi.JSON(strings.NewReader(erc20Bytes32SymbolJSON)); abiErr != nil {
			return
		}
		pairABI, abiErr = abi.JSON(strings.NewReader(pairABIJSON))
	})
	return abiErr
}

// ContractCaller is the eth_call surface the readers need.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

func call(ctx context.Context, caller ContractCaller, to common.Address, parsed abi.ABI, method string, block *big.Int, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	resp, err := caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, block)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("%s return size %d", method, len(values))
	}
	return values, nil
}

// BalanceOf returns token.balanceOf(owner) at block, or latest when block is nil.
func BalanceOf(ctx context.Context, caller ContractCaller, token, owner common.Address, block *big.Int) (*big.Int, error) {
	if caller == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	if err := loadABIs(); err != nil {
		return nil, err
	}
	values, err := call(ctx, caller, token, erc20ABI, "balanceOf", block, owner)
	if err != nil {
		return nil, err
	}
	bal, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("balanceOf unexpected type %T", values[0])
	}
	return bal, nil
}

// PairTokens reads token0 and token1 from a pair contract.
func PairTokens(ctx context.Context, caller ContractCaller, pair common.Address) (common.Address, common.Address, error) {
	if err := loadABIs(); err != nil {
		return common.Address{}, common.Address{}, err
	}
	var out [2]common.Address
	for i, method := range []string{"token0", "token1"} {
		values, err := call(ctx, caller, pair, pairABI, method, nil)
		if err != nil {
			return common.Address{}, common.Address{}, err
		}
		addr, ok := values[0].(common.Address)
		if !ok {
			return common.Address{}, common.Address{}, fmt.Errorf("%s unexpected type %T", method, values[0])
		}
		out[i] = addr
	}
	return out[0], out[1], nil
}

// FetchTokenMeta loads decimals and symbol. Symbol falls back to bytes32 and may stay empty.
func FetchTokenMeta(ctx context.Context, caller ContractCaller, token common.Address, logger *zap.Logger) (model.TokenMeta, error) {
	meta := model.TokenMeta{Address: token.Hex()}
	if caller == nil {
		return meta, fmt.Errorf("chain client is nil")
	}
	if err := loadABIs(); err != nil {
		return meta, err
	}

	values, err := call(ctx, caller, token, erc20ABI, "decimals", nil)
	if err != nil {
		return meta, err
	}
	decimals, ok := values[0].(uint8)
	if !ok {
		return meta, fmt.Errorf("decimals unexpected type %T", values[0])
	}
	meta.Decimals = decimals

	if values, err := call(ctx, caller, token, erc20ABI, "symbol", nil); err == nil {
		if symbol, ok := values[0].(string); ok {
			meta.Symbol = symbol
		}
	} else if values, err := call(ctx, caller, token, erc20Bytes32ABI, "symbol", nil); err == nil {
		if raw, ok := values[0].([32]byte); ok {
			meta.Symbol = string(bytes.TrimRight(raw[:], "\x00"))
		}
	} else if logger != nil {
		logger.Debug("symbol call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	return meta, nil
}
