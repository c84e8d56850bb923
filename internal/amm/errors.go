package amm

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Kind classifies pool errors.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindValidation
	KindSlippage
	KindInsufficientState
	KindCollaborator
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindSlippage:
		return "slippage"
	case KindInsufficientState:
		return "insufficient_state"
	case KindCollaborator:
		return "collaborator"
	default:
		return "unknown"
	}
}

type poolError struct {
	kind Kind
	msg  string
}

func (e *poolError) Error() string { return e.msg }

func newError(kind Kind, msg string) error {
	return &poolError{kind: kind, msg: msg}
}

var (
	ErrDeadlineExpired  = newError(KindValidation, "deadline expired")
	ErrUnsupportedPair  = newError(KindValidation, "unsupported asset pair")
	ErrIdenticalAssets  = newError(KindValidation, "identical assets")
	ErrInvalidAsset     = newError(KindValidation, "invalid asset")
	ErrInvalidPool      = newError(KindValidation, "invalid pool address")
	ErrInvalidRecipient = newError(KindValidation, "invalid recipient")
	ErrInvalidCaller    = newError(KindValidation, "invalid caller")
	ErrZeroAmount       = newError(KindValidation, "amount must be greater than zero")
	ErrNegativeAmount   = newError(KindValidation, "amount must not be negative")
	ErrInvalidPath      = newError(KindValidation, "invalid swap path")
	ErrInvalidFee       = newError(KindValidation, "invalid fee")
	ErrReentrant        = newError(KindValidation, "reentrant call")

	ErrInsufficientFirstAmount  = newError(KindSlippage, "insufficient first amount")
	ErrInsufficientSecondAmount = newError(KindSlippage, "insufficient second amount")
	ErrInsufficientOutputAmount = newError(KindSlippage, "insufficient output amount")

	ErrInsufficientReserves        = newError(KindInsufficientState, "insufficient reserves")
	ErrInsufficientShares          = newError(KindInsufficientState, "insufficient shares")
	ErrInsufficientLiquidityMinted = newError(KindInsufficientState, "insufficient liquidity minted")
	ErrInsufficientLiquidityBurned = newError(KindInsufficientState, "insufficient liquidity burned")
	ErrStateMismatch               = newError(KindInsufficientState, "stored pool state does not match configuration")
)

// TransferError reports an asset move the collaborator refused.
type TransferError struct {
	Asset  common.Address
	From   common.Address
	To     common.Address
	Amount *big.Int
	Err    error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer %s of %s from %s to %s: %v", e.Amount, e.Asset.Hex(), e.From.Hex(), e.To.Hex(), e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// KindOf returns the classification of err, or KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var te *TransferError
	if errors.As(err, &te) {
		return KindCollaborator
	}
	var pe *poolError
	if errors.As(err, &pe) {
		return pe.kind
	}
	return KindUnknown
}
