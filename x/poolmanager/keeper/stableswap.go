package keeper

import (
	"cosmossdk.io/math"

	"github.com/paw-chain/lhub/x/poolmanager/types"
	"github.com/paw-chain/lhub/x/shared/fixedpoint"
)

// MaxNewtonIterations bounds every stableswap Newton solve.
const MaxNewtonIterations = 256

// ann returns A * n^n.
func ann(amp uint64, n int) (math.Int, error) {
	out := math.NewIntFromUint64(amp)
	nn := math.NewInt(int64(n))
	var err error
	for i := 0; i < n; i++ {
		if out, err = fixedpoint.SafeMul(out, nn); err != nil {
			return math.Int{}, err
		}
	}
	return out, nil
}

func withinOne(a, b math.Int) bool {
	return a.Sub(b).Abs().LTE(math.OneInt())
}

// ComputeD solves the stableswap invariant
//
//	A·nⁿ·Σx + D = A·D·nⁿ + D^(n+1) / (nⁿ·Πx)
//
// for D by Newton's method. All balances must share one precision.
func ComputeD(xp []math.Int, amp uint64) (math.Int, error) {
	n := len(xp)
	sum := math.ZeroInt()
	var err error
	for _, x := range xp {
		if sum, err = fixedpoint.SafeAdd(sum, x); err != nil {
			return math.Int{}, err
		}
	}
	if sum.IsZero() {
		return math.ZeroInt(), nil
	}
	for _, x := range xp {
		if x.IsZero() {
			return math.Int{}, types.ErrPoolHasNoAssets.Wrap("stableswap balance is zero")
		}
	}

	annV, err := ann(amp, n)
	if err != nil {
		return math.Int{}, err
	}
	nInt := math.NewInt(int64(n))
	annSum, err := fixedpoint.SafeMul(annV, sum)
	if err != nil {
		return math.Int{}, err
	}

	d := sum
	for i := 0; i < MaxNewtonIterations; i++ {
		// dP = D^(n+1) / (nⁿ·Πx), built one balance at a time
		dP := d
		for _, x := range xp {
			xn, err := fixedpoint.SafeMul(x, nInt)
			if err != nil {
				return math.Int{}, err
			}
			if dP, err = fixedpoint.MulDiv(dP, d, xn); err != nil {
				return math.Int{}, err
			}
		}
		prev := d

		// D = (Ann·S + dP·n)·D / ((Ann−1)·D + (n+1)·dP)
		dPn, err := fixedpoint.SafeMul(dP, nInt)
		if err != nil {
			return math.Int{}, err
		}
		num, err := fixedpoint.SafeAdd(annSum, dPn)
		if err != nil {
			return math.Int{}, err
		}
		left, err := fixedpoint.SafeMul(annV.SubRaw(1), d)
		if err != nil {
			return math.Int{}, err
		}
		right, err := fixedpoint.SafeMul(nInt.AddRaw(1), dP)
		if err != nil {
			return math.Int{}, err
		}
		den, err := fixedpoint.SafeAdd(left, right)
		if err != nil {
			return math.Int{}, err
		}
		if d, err = fixedpoint.MulDiv(num, d, den); err != nil {
			return math.Int{}, err
		}

		if withinOne(d, prev) {
			return d, nil
		}
	}
	return math.Int{}, types.ErrConvergence.Wrapf("D after %d iterations", MaxNewtonIterations)
}

// ComputeY returns the balance of asset j that keeps the invariant when asset
// i's balance is set to x and every other balance is unchanged.
func ComputeY(i, j int, x math.Int, xp []math.Int, amp uint64) (math.Int, error) {
	n := len(xp)
	if i == j || i < 0 || j < 0 || i >= n || j >= n {
		return math.Int{}, types.ErrSameAsset.Wrapf("invalid stableswap indices %d, %d", i, j)
	}

	d, err := ComputeD(xp, amp)
	if err != nil {
		return math.Int{}, err
	}
	annV, err := ann(amp, n)
	if err != nil {
		return math.Int{}, err
	}
	nInt := math.NewInt(int64(n))

	c := d
	s := math.ZeroInt()
	for k := 0; k < n; k++ {
		var xk math.Int
		switch k {
		case i:
			xk = x
		case j:
			continue
		default:
			xk = xp[k]
		}
		if xk.IsZero() {
			return math.Int{}, types.ErrPoolHasNoAssets.Wrap("stableswap balance is zero")
		}
		if s, err = fixedpoint.SafeAdd(s, xk); err != nil {
			return math.Int{}, err
		}
		xn, err := fixedpoint.SafeMul(xk, nInt)
		if err != nil {
			return math.Int{}, err
		}
		if c, err = fixedpoint.MulDiv(c, d, xn); err != nil {
			return math.Int{}, err
		}
	}
	annN, err := fixedpoint.SafeMul(annV, nInt)
	if err != nil {
		return math.Int{}, err
	}
	if c, err = fixedpoint.MulDiv(c, d, annN); err != nil {
		return math.Int{}, err
	}
	b, err := fixedpoint.SafeAdd(s, d.Quo(annV))
	if err != nil {
		return math.Int{}, err
	}

	// y = (y² + c) / (2y + b − D)
	y := d
	for it := 0; it < MaxNewtonIterations; it++ {
		prev := y
		ySq, err := fixedpoint.SafeMul(y, y)
		if err != nil {
			return math.Int{}, err
		}
		num, err := fixedpoint.SafeAdd(ySq, c)
		if err != nil {
			return math.Int{}, err
		}
		twoY, err := fixedpoint.SafeMul(y, math.NewInt(2))
		if err != nil {
			return math.Int{}, err
		}
		den, err := fixedpoint.SafeAdd(twoY, b)
		if err != nil {
			return math.Int{}, err
		}
		den = den.Sub(d)
		if !den.IsPositive() {
			return math.Int{}, types.ErrConvergence.Wrap("non-positive denominator in y solve")
		}
		y = num.Quo(den)

		if withinOne(y, prev) {
			return y, nil
		}
	}
	return math.Int{}, types.ErrConvergence.Wrapf("y after %d iterations", MaxNewtonIterations)
}
