package pricing

import "math/big"

// Fee taken from the input side of every swap: 3/1000 (0.3%), kept in the
// pool. The effective input is amountIn * FeeNumerator / FeeDenominator.
const (
	FeeNumerator   = 997
	FeeDenominator = 1000
)

var (
	feeNumerator   = big.NewInt(FeeNumerator)
	feeDenominator = big.NewInt(FeeDenominator)
)

// Quote returns the output amount for a constant-product swap:
//
//	out = (in*997*reserveOut) / (reserveIn*1000 + in*997)
//
// with floor division. All intermediate products are computed in math/big,
// so amountIn * 997 * reserveOut cannot wrap. For reserveIn > 0 the result
// is strictly less than reserveOut, so a single trade can never drain the
// output reserve.
func Quote(amountIn, reserveIn, reserveOut uint64) (uint64, error) {
	effectiveIn := new(big.Int).Mul(new(big.Int).SetUint64(amountIn), feeNumerator)

	denominator := new(big.Int).Mul(new(big.Int).SetUint64(reserveIn), feeDenominator)
	denominator.Add(denominator, effectiveIn)
	if denominator.Sign() == 0 {
		return 0, ErrDivisionByZero
	}

	numerator := new(big.Int).Mul(effectiveIn, new(big.Int).SetUint64(reserveOut))
	out := numerator.Div(numerator, denominator)
	return out.Uint64(), nil
}
