package model

import (
	"encoding/json"
	"math/big"
	"testing"
)

func TestParseAmount(t *testing.T) {
	got, err := ParseAmount("115792089237316195423570985008687907853269984665640564039457584007913129639935")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.BitLen() != 256 {
		t.Fatalf("expected 256-bit value, got %d bits", got.BitLen())
	}

	zero, err := ParseAmount("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if zero.Sign() != 0 {
		t.Fatalf("empty amount should be zero, got %s", zero)
	}
}

func TestParseAmountInvalid(t *testing.T) {
	for _, input := range []string{"-1", "1.5", "0x10", "abc"} {
		if _, err := ParseAmount(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(nil); got != "0" {
		t.Fatalf("nil amount: got %q", got)
	}
	if got := FormatAmount(big.NewInt(4000)); got != "4000" {
		t.Fatalf("got %q", got)
	}
}

func TestPoolStateJSONStringAmounts(t *testing.T) {
	state := PoolState{
		Pool:          "0x0000000000000000000000000000000000000abc",
		AssetX:        "0x00000000000000000000000000000000000000aa",
		AssetY:        "0x00000000000000000000000000000000000000bb",
		LockedMinimum: "1000",
		TotalShares:   "3000",
		Shares:        map[string]string{"0x0000000000000000000000000000000000000abc": "1000"},
	}

	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, ok := decoded["total_shares"].(string); !ok {
		t.Fatalf("total_shares should be string")
	}
	if _, ok := decoded["locked_minimum"].(string); !ok {
		t.Fatalf("locked_minimum should be string")
	}
}

func TestFormatUnits(t *testing.T) {
	cases := []struct {
		amount   *big.Int
		decimals uint8
		want     string
	}{
		{big.NewInt(4_000_000_000_000_000_000), 18, "4"},
		{big.NewInt(250_000_000_000_000_000), 18, "0.25"},
		{big.NewInt(1_234_567), 6, "1.234567"},
		{big.NewInt(90), 0, "90"},
		{nil, 6, "0"},
	}
	for _, tc := range cases {
		if got := FormatUnits(tc.amount, tc.decimals); got != tc.want {
			t.Fatalf("FormatUnits(%v, %d) = %s, want %s", tc.amount, tc.decimals, got, tc.want)
		}
	}
	if got := FormatPrice(big.NewInt(1_500_000_000_000_000_000)); got != "1.5" {
		t.Fatalf("FormatPrice = %s", got)
	}
}

func TestParseAddress(t *testing.T) {
	if _, err := ParseAddress(""); err == nil {
		t.Fatalf("expected error for empty address")
	}
	if _, err := ParseAddress("0x123"); err == nil {
		t.Fatalf("expected error for short address")
	}
	addr, err := ParseAddress(" 0x00000000000000000000000000000000000000a1 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr[19] != 0xa1 {
		t.Fatalf("unexpected address %s", addr.Hex())
	}
}
