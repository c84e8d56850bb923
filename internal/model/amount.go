package model

import (
	"fmt"
	"math/big"
)

// ParseAmount parses a non-negative base-10 amount. Empty input is zero.
func ParseAmount(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", value)
	}
	if parsed.Sign() < 0 {
		return nil, fmt.Errorf("negative amount: %s", value)
	}
	return parsed, nil
}

// FormatAmount renders nil as "0".
func FormatAmount(value *big.Int) string {
	if value == nil {
		return "0"
	}
	return value.String()
}
