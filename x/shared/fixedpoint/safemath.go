// Package fixedpoint provides overflow-checked integer arithmetic for the
// liquidity hub ledgers. Amounts are non-negative math.Int values bounded to
// 256 bits; products are widened to 512 bits before any division so reserve
// products never wrap. Nothing in this package uses floating point.
package fixedpoint

import (
	"math/big"

	"cosmossdk.io/math"
	"github.com/holiman/uint256"
)

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// toU256 converts a non-negative math.Int into a uint256.
func toU256(v math.Int) (*uint256.Int, error) {
	if v.IsNil() {
		return uint256.NewInt(0), nil
	}
	if v.IsNegative() {
		return nil, ErrNegativeValue.Wrapf("%s", v)
	}
	u, overflow := uint256.FromBig(v.BigInt())
	if overflow {
		return nil, ErrOverflow.Wrapf("%s does not fit in 256 bits", v)
	}
	return u, nil
}

func fromU256(u *uint256.Int) math.Int {
	return math.NewIntFromBigInt(u.ToBig())
}

// SafeAdd adds two values, failing when the result leaves the 256-bit range.
func SafeAdd(a, b math.Int) (math.Int, error) {
	result := new(big.Int).Add(a.BigInt(), b.BigInt())
	if result.Cmp(maxUint256) > 0 {
		return math.Int{}, ErrOverflow.Wrapf("%s + %s", a, b)
	}
	return math.NewIntFromBigInt(result), nil
}

// SafeSub subtracts b from a, failing instead of going negative.
func SafeSub(a, b math.Int) (math.Int, error) {
	if a.LT(b) {
		return math.Int{}, ErrUnderflow.Wrapf("cannot subtract %s from %s", b, a)
	}
	return a.Sub(b), nil
}

// SaturatingSub returns a - b, or zero when b > a.
func SaturatingSub(a, b math.Int) math.Int {
	if a.LTE(b) {
		return math.ZeroInt()
	}
	return a.Sub(b)
}

// SafeMul multiplies two values with overflow checking.
func SafeMul(a, b math.Int) (math.Int, error) {
	if a.IsZero() || b.IsZero() {
		return math.ZeroInt(), nil
	}
	result := new(big.Int).Mul(a.BigInt(), b.BigInt())
	if result.Cmp(maxUint256) > 0 {
		return math.Int{}, ErrOverflow.Wrapf("%s * %s", a, b)
	}
	return math.NewIntFromBigInt(result), nil
}

// SafeQuo divides a by b rounding down.
func SafeQuo(a, b math.Int) (math.Int, error) {
	if b.IsZero() {
		return math.Int{}, ErrDivisionByZero.Wrapf("%s / 0", a)
	}
	return a.Quo(b), nil
}

// MulDiv computes floor(a * b / c) with a 512-bit intermediate product.
func MulDiv(a, b, c math.Int) (math.Int, error) {
	x, y, d, err := mulDivOperands(a, b, c)
	if err != nil {
		return math.Int{}, err
	}
	z, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return math.Int{}, ErrOverflow.Wrapf("%s * %s / %s", a, b, c)
	}
	return fromU256(z), nil
}

// MulDivCeil computes ceil(a * b / c) with a 512-bit intermediate product.
func MulDivCeil(a, b, c math.Int) (math.Int, error) {
	x, y, d, err := mulDivOperands(a, b, c)
	if err != nil {
		return math.Int{}, err
	}
	z, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return math.Int{}, ErrOverflow.Wrapf("%s * %s / %s", a, b, c)
	}
	if !new(uint256.Int).MulMod(x, y, d).IsZero() {
		if z.Eq(new(uint256.Int).SetAllOne()) {
			return math.Int{}, ErrOverflow.Wrapf("ceil(%s * %s / %s)", a, b, c)
		}
		z.AddUint64(z, 1)
	}
	return fromU256(z), nil
}

func mulDivOperands(a, b, c math.Int) (x, y, d *uint256.Int, err error) {
	if c.IsNil() || c.IsZero() {
		return nil, nil, nil, ErrDivisionByZero.Wrapf("%s * %s / 0", a, b)
	}
	if x, err = toU256(a); err != nil {
		return nil, nil, nil, err
	}
	if y, err = toU256(b); err != nil {
		return nil, nil, nil, err
	}
	if d, err = toU256(c); err != nil {
		return nil, nil, nil, err
	}
	return x, y, d, nil
}

// Sqrt returns floor(sqrt(v)).
func Sqrt(v math.Int) (math.Int, error) {
	u, err := toU256(v)
	if err != nil {
		return math.Int{}, err
	}
	return fromU256(new(uint256.Int).Sqrt(u)), nil
}

// SafeAddUint64 adds two epoch or counter values with overflow checking.
func SafeAddUint64(a, b uint64) (uint64, error) {
	if a > (1<<64 - 1 - b) {
		return 0, ErrOverflow.Wrapf("%d + %d", a, b)
	}
	return a + b, nil
}
