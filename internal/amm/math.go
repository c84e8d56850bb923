package amm

import "math/big"

// Precision is the fixed-point scale of quoted prices.
var Precision = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// Fee is the fraction of an input amount that takes part in pricing.
// Numerator == Denominator is the fee-free profile.
type Fee struct {
	Numerator   uint64
	Denominator uint64
}

var (
	// DefaultFee is the 0.3% profile.
	DefaultFee = Fee{Numerator: 997, Denominator: 1000}
	// NoFee prices swaps on the plain constant-product curve.
	NoFee = Fee{Numerator: 1, Denominator: 1}
)

// Validate checks that the fee keeps 0 < Numerator <= Denominator.
func (f Fee) Validate() error {
	if f.Denominator == 0 || f.Numerator == 0 || f.Numerator > f.Denominator {
		return ErrInvalidFee
	}
	return nil
}

// Sqrt returns floor(sqrt(x)) using the Babylonian iteration.
func Sqrt(x *big.Int) *big.Int {
	if x.Sign() <= 0 {
		return big.NewInt(0)
	}
	y := new(big.Int).Set(x)
	z := new(big.Int).Add(x, big.NewInt(1))
	z.Rsh(z, 1)
	tmp := new(big.Int)
	for z.Cmp(y) < 0 {
		y.Set(z)
		// z = (x/z + z) / 2
		tmp.Quo(x, z)
		z.Add(tmp, z)
		z.Rsh(z, 1)
	}
	return y
}

// QuoteOutput is the fee-free constant-product output for amountIn.
func QuoteOutput(amountIn, reserveIn, reserveOut *big.Int) (*big.Int, error) {
	return GetAmountOut(amountIn, reserveIn, reserveOut, NoFee)
}

// GetAmountOut solves (Rin + in*n/d)(Rout - out) = Rin*Rout for out, rounding down.
func GetAmountOut(amountIn, reserveIn, reserveOut *big.Int, fee Fee) (*big.Int, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, ErrZeroAmount
	}
	if reserveIn == nil || reserveOut == nil || reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return nil, ErrInsufficientReserves
	}
	if err := fee.Validate(); err != nil {
		return nil, err
	}
	// t1 = amountIn * numerator
	t1 := new(big.Int).Mul(amountIn, new(big.Int).SetUint64(fee.Numerator))
	// t2 = reserveIn * denominator + t1
	t2 := new(big.Int).Mul(reserveIn, new(big.Int).SetUint64(fee.Denominator))
	t2.Add(t2, t1)
	out := new(big.Int).Mul(t1, reserveOut)
	return out.Quo(out, t2), nil
}

// Price returns reserveOther * Precision / reserveSelf.
func Price(reserveSelf, reserveOther *big.Int) (*big.Int, error) {
	if reserveSelf == nil || reserveOther == nil || reserveSelf.Sign() <= 0 || reserveOther.Sign() <= 0 {
		return nil, ErrInsufficientReserves
	}
	p := new(big.Int).Mul(reserveOther, Precision)
	return p.Quo(p, reserveSelf), nil
}

// matchAmounts picks the deposit pair that follows the current reserve ratio.
// Side 1 is tried first; its result decides which minimum is enforced.
func matchAmounts(desired1, desired2, min1, min2, reserve1, reserve2 *big.Int) (*big.Int, *big.Int, error) {
	if reserve1.Sign() == 0 && reserve2.Sign() == 0 {
		return new(big.Int).Set(desired1), new(big.Int).Set(desired2), nil
	}
	if reserve1.Sign() == 0 || reserve2.Sign() == 0 {
		return nil, nil, ErrInsufficientReserves
	}

	optimal2 := new(big.Int).Mul(desired1, reserve2)
	optimal2.Quo(optimal2, reserve1)
	if optimal2.Cmp(desired2) <= 0 {
		if optimal2.Cmp(min2) < 0 {
			return nil, nil, ErrInsufficientSecondAmount
		}
		return new(big.Int).Set(desired1), optimal2, nil
	}

	optimal1 := new(big.Int).Mul(desired2, reserve1)
	optimal1.Quo(optimal1, reserve2)
	if optimal1.Cmp(min1) < 0 {
		return nil, nil, ErrInsufficientFirstAmount
	}
	return optimal1, new(big.Int).Set(desired2), nil
}

// mintShares returns the shares owed for a deposit of (amount1, amount2).
// bootstrap selects the geometric mean used for the first real deposit.
func mintShares(amount1, amount2, reserve1, reserve2, totalShares *big.Int, bootstrap bool) (*big.Int, error) {
	if bootstrap {
		return Sqrt(new(big.Int).Mul(amount1, amount2)), nil
	}
	if reserve1.Sign() <= 0 || reserve2.Sign() <= 0 {
		return nil, ErrInsufficientReserves
	}
	s1 := new(big.Int).Mul(amount1, totalShares)
	s1.Quo(s1, reserve1)
	s2 := new(big.Int).Mul(amount2, totalShares)
	s2.Quo(s2, reserve2)
	if s2.Cmp(s1) < 0 {
		return s2, nil
	}
	return s1, nil
}

// burnAmounts returns the reserve slice redeemed by shares.
func burnAmounts(shares, reserve1, reserve2, totalShares *big.Int) (*big.Int, *big.Int) {
	out1 := new(big.Int).Mul(shares, reserve1)
	out1.Quo(out1, totalShares)
	out2 := new(big.Int).Mul(shares, reserve2)
	out2.Quo(out2, totalShares)
	return out1, out2
}
