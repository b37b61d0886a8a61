package fixedpoint

import (
	"math/big"

	"cosmossdk.io/math"
)

// decimalOne is the raw integer behind math.LegacyOneDec(), i.e. 10^18.
var decimalOne = math.NewIntFromBigInt(math.LegacyOneDec().BigInt())

// DecimalOne returns the fixed-point denominator of math.LegacyDec.
func DecimalOne() math.Int {
	return decimalOne
}

// MulDecFloor applies a non-negative decimal share to an amount, rounding down.
func MulDecFloor(amount math.Int, share math.LegacyDec) (math.Int, error) {
	if share.IsNil() || share.IsZero() || amount.IsZero() {
		return math.ZeroInt(), nil
	}
	if share.IsNegative() {
		return math.Int{}, ErrNegativeValue.Wrapf("share %s", share)
	}
	return MulDiv(amount, math.NewIntFromBigInt(share.BigInt()), decimalOne)
}

// QuoDecFloor divides an amount by a positive decimal price, rounding down.
func QuoDecFloor(amount math.Int, price math.LegacyDec) (math.Int, error) {
	if price.IsNil() || !price.IsPositive() {
		return math.Int{}, ErrDivisionByZero.Wrapf("price %s", price)
	}
	return MulDiv(amount, decimalOne, math.NewIntFromBigInt(price.BigInt()))
}

// Ratio returns num/den as a decimal, failing on a zero denominator.
func Ratio(num, den math.Int) (math.LegacyDec, error) {
	if den.IsZero() {
		return math.LegacyDec{}, ErrDivisionByZero.Wrapf("%s / 0", num)
	}
	raw, err := MulDiv(num, decimalOne, den)
	if err != nil {
		return math.LegacyDec{}, err
	}
	return math.LegacyNewDecFromBigIntWithPrec(raw.BigInt(), math.LegacyPrecision), nil
}

// maxPow10 is the largest exponent with 10^exp below 2^256.
const maxPow10 = 77

func pow10(exp uint32) (math.Int, error) {
	if exp > maxPow10 {
		return math.Int{}, ErrOverflow.Wrapf("10^%d", exp)
	}
	return math.NewIntFromBigInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil)), nil
}

// ScaleUp converts an amount from `from` decimals into the larger `to`
// precision.
func ScaleUp(amount math.Int, from, to uint32) (math.Int, error) {
	if to <= from {
		return amount, nil
	}
	factor, err := pow10(to - from)
	if err != nil {
		return math.Int{}, err
	}
	return SafeMul(amount, factor)
}

// ScaleDown converts an amount from the larger `from` precision back to `to`
// decimals, rounding down. Any 256-bit amount scales to zero past 10^77.
func ScaleDown(amount math.Int, from, to uint32) math.Int {
	if from <= to {
		return amount
	}
	factor, err := pow10(from - to)
	if err != nil {
		return math.ZeroInt()
	}
	return amount.Quo(factor)
}
