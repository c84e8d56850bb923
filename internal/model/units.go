package model

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// PriceDecimals is the fixed-point scale of pool prices.
const PriceDecimals = 18

// TokenMeta is the ERC-20 metadata needed to render amounts.
type TokenMeta struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol"`
}

// Units renders amount in whole tokens.
func (m TokenMeta) Units(amount *big.Int) decimal.Decimal {
	return ToUnits(amount, m.Decimals)
}

// ToUnits scales a base-unit amount down by decimals.
func ToUnits(amount *big.Int, decimals uint8) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -int32(decimals))
}

// FormatUnits renders amount with decimals applied and trailing zeros dropped.
func FormatUnits(amount *big.Int, decimals uint8) string {
	return ToUnits(amount, decimals).String()
}

// FormatPrice renders an 18-decimal fixed-point price.
func FormatPrice(price *big.Int) string {
	return FormatUnits(price, PriceDecimals)
}
