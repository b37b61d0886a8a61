package keeper_test

import (
	"math/big"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/paw-chain/lhub/x/poolmanager/keeper"
	"github.com/paw-chain/lhub/x/poolmanager/types"
	"github.com/paw-chain/lhub/x/shared/fixedpoint"
)

func testPool(kind types.PairType, fees types.PoolFees, reserves ...int64) types.Pool {
	denoms := []string{"uaaa", "ubbb", "uccc"}[:len(reserves)]
	pool := types.Pool{
		Identifier:    "test",
		AssetDenoms:   denoms,
		AssetDecimals: make([]uint32, len(reserves)),
		Reserves:      make([]math.Int, len(reserves)),
		PairType:      kind,
		Fees:          fees,
		TotalShare:    math.NewInt(1),
		Features:      types.AllFeaturesEnabled(),
	}
	for i, r := range reserves {
		pool.AssetDecimals[i] = 6
		pool.Reserves[i] = math.NewInt(r)
	}
	return pool
}

func TestComputeConstantProductSwap(t *testing.T) {
	raw, spread, err := keeper.ComputeConstantProductSwap(
		math.NewInt(1_000_000), math.NewInt(1_000_000), math.NewInt(1_000), 6, 6,
	)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(999), raw)
	require.Equal(t, math.NewInt(1), spread)
}

func TestComputeConstantProductSwapMixedDecimals(t *testing.T) {
	// 1 unit of an 18 decimal asset against 1 unit of a 6 decimal asset
	offerReserve := math.NewIntWithDecimal(1_000, 18)
	askReserve := math.NewIntWithDecimal(1_000, 6)
	raw, _, err := keeper.ComputeConstantProductSwap(offerReserve, askReserve, math.NewIntWithDecimal(1, 18), 18, 6)
	require.NoError(t, err)
	// 1000·1/1001 units, floored to six decimals
	require.Equal(t, math.NewInt(999_000), raw)
}

func TestComputeSwapFeeOrder(t *testing.T) {
	fees := types.PoolFees{
		ProtocolFee: math.LegacyNewDecWithPrec(1, 3),
		SwapFee:     math.LegacyNewDecWithPrec(3, 3),
		BurnFee:     math.LegacyNewDecWithPrec(2, 3),
	}
	comp, err := keeper.ComputeSwap(testPool(types.NewConstantProduct(), fees, 1_000_000_000, 1_000_000_000), "uaaa", "ubbb", math.NewInt(1_000_000))
	require.NoError(t, err)

	require.Equal(t, math.NewInt(2_997), comp.SwapFee)
	require.Equal(t, math.NewInt(999), comp.ProtocolFee)
	require.Equal(t, math.NewInt(1_998), comp.BurnFee)
	require.Equal(t, math.NewInt(999_000-2_997-999-1_998), comp.ReturnAmount)
}

func TestComputeSwapRejectsBadInput(t *testing.T) {
	pool := testPool(types.NewConstantProduct(), types.ZeroFees(), 1_000, 1_000)

	_, err := keeper.ComputeSwap(pool, "uaaa", "uaaa", math.NewInt(10))
	require.ErrorIs(t, err, types.ErrSameAsset)

	_, err = keeper.ComputeSwap(pool, "uaaa", "uzzz", math.NewInt(10))
	require.ErrorIs(t, err, types.ErrAssetMismatch)

	_, err = keeper.ComputeSwap(pool, "uaaa", "ubbb", math.ZeroInt())
	require.ErrorIs(t, err, types.ErrInvalidZeroAmount)

	empty := testPool(types.NewConstantProduct(), types.ZeroFees(), 0, 1_000)
	_, err = keeper.ComputeSwap(empty, "uaaa", "ubbb", math.NewInt(10))
	require.ErrorIs(t, err, types.ErrPoolHasNoAssets)
}

func TestComputeDBalanced(t *testing.T) {
	for _, n := range []int{2, 3} {
		xp := make([]math.Int, n)
		for i := range xp {
			xp[i] = math.NewInt(1_000_000)
		}
		d, err := keeper.ComputeD(xp, 85)
		require.NoError(t, err)
		require.Equal(t, math.NewInt(int64(n)*1_000_000), d)
	}

	d, err := keeper.ComputeD([]math.Int{math.ZeroInt(), math.ZeroInt()}, 85)
	require.NoError(t, err)
	require.True(t, d.IsZero())
}

func TestComputeYKeepsInvariant(t *testing.T) {
	xp := []math.Int{math.NewInt(1_000_000_000), math.NewInt(1_000_000_000), math.NewInt(1_000_000_000)}
	d, err := keeper.ComputeD(xp, 100)
	require.NoError(t, err)

	y, err := keeper.ComputeY(0, 2, math.NewInt(1_010_000_000), xp, 100)
	require.NoError(t, err)

	after := []math.Int{math.NewInt(1_010_000_000), xp[1], y}
	d2, err := keeper.ComputeD(after, 100)
	require.NoError(t, err)
	require.True(t, d2.Sub(d).Abs().LTE(math.NewInt(10)), "D moved from %s to %s", d, d2)

	_, err = keeper.ComputeY(1, 1, math.NewInt(1), xp, 100)
	require.ErrorIs(t, err, types.ErrSameAsset)
}

func TestStableSwapSolveOverflow(t *testing.T) {
	huge := math.NewIntFromBigInt(new(big.Int).Lsh(big.NewInt(1), 255))

	require.NotPanics(t, func() {
		_, err := keeper.ComputeY(0, 1, huge, []math.Int{math.NewInt(1_000), math.NewInt(1_000)}, 100)
		require.ErrorIs(t, err, fixedpoint.ErrOverflow)
	})

	wide := math.NewIntFromBigInt(new(big.Int).Lsh(big.NewInt(1), 250))
	require.NotPanics(t, func() {
		_, err := keeper.ComputeD([]math.Int{wide, wide}, 100)
		require.ErrorIs(t, err, fixedpoint.ErrOverflow)
	})
}

func TestAssertMaxSpread(t *testing.T) {
	maxSpread := math.LegacyNewDecWithPrec(1, 2)
	require.NoError(t, keeper.AssertMaxSpread(nil, nil, math.NewInt(100), math.NewInt(1), math.NewInt(99), 6, 6))
	require.NoError(t, keeper.AssertMaxSpread(nil, &maxSpread, math.NewInt(100), math.NewInt(99), math.NewInt(1), 6, 6))
	require.ErrorIs(t,
		keeper.AssertMaxSpread(nil, &maxSpread, math.NewInt(100), math.NewInt(98), math.NewInt(2), 6, 6),
		types.ErrMaxSpreadExceeded,
	)

	// with a belief price of 2 offer units per ask unit, 100 offered should return 50
	belief := math.LegacyNewDec(2)
	require.NoError(t, keeper.AssertMaxSpread(&belief, &maxSpread, math.NewInt(100), math.NewInt(50), math.ZeroInt(), 6, 6))
	require.ErrorIs(t,
		keeper.AssertMaxSpread(&belief, &maxSpread, math.NewInt(100), math.NewInt(49), math.ZeroInt(), 6, 6),
		types.ErrMaxSpreadExceeded,
	)

	// belief price in display units across different precisions
	require.NoError(t, keeper.AssertMaxSpread(&belief, &maxSpread, math.NewIntWithDecimal(100, 18), math.NewIntWithDecimal(50, 6), math.ZeroInt(), 18, 6))

	tooBig := math.LegacyNewDec(2)
	require.ErrorIs(t,
		keeper.AssertMaxSpread(nil, &tooBig, math.NewInt(100), math.NewInt(50), math.ZeroInt(), 6, 6),
		types.ErrInvalidMaxSpread,
	)
}

// The pool's x·y never decreases across a swap, whatever the fees.
func TestConstantProductNeverLosesValue(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		x := rapid.Int64Range(1_000, 1_000_000_000_000).Draw(rt, "x")
		y := rapid.Int64Range(1_000, 1_000_000_000_000).Draw(rt, "y")
		dx := rapid.Int64Range(1, 1_000_000_000_000).Draw(rt, "dx")

		raw, spread, err := keeper.ComputeConstantProductSwap(math.NewInt(x), math.NewInt(y), math.NewInt(dx), 6, 6)
		require.NoError(rt, err)
		require.True(rt, raw.LT(math.NewInt(y)))
		require.False(rt, spread.IsNegative())

		before := math.NewInt(x).Mul(math.NewInt(y))
		after := math.NewInt(x + dx).Mul(math.NewInt(y).Sub(raw))
		require.True(rt, after.GTE(before), "k fell from %s to %s", before, after)
	})
}

// Swapping forward and then swapping the proceeds back never returns more
// than was offered.
func TestSwapRoundTripNeverProfits(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		x := rapid.Int64Range(1_000_000, 1_000_000_000_000).Draw(rt, "x")
		y := rapid.Int64Range(1_000_000, 1_000_000_000_000).Draw(rt, "y")
		offer := rapid.Int64Range(1_000, x).Draw(rt, "offer")

		pool := testPool(types.NewConstantProduct(), types.ZeroFees(), x, y)
		out, err := keeper.ComputeSwap(pool, "uaaa", "ubbb", math.NewInt(offer))
		require.NoError(rt, err)
		if out.ReturnAmount.IsZero() {
			return
		}

		pool.Reserves[0] = pool.Reserves[0].AddRaw(offer)
		pool.Reserves[1] = pool.Reserves[1].Sub(out.ReturnAmount)
		back, err := keeper.ComputeSwap(pool, "ubbb", "uaaa", out.ReturnAmount)
		require.NoError(rt, err)
		require.True(rt, back.ReturnAmount.LTE(math.NewInt(offer)), "offered %d, got back %s", offer, back.ReturnAmount)
	})
}

func TestStableSwapOutputBounded(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		amp := rapid.Uint64Range(1, 2_000).Draw(rt, "amp")
		x := rapid.Int64Range(1_000_000, 1_000_000_000_000).Draw(rt, "x")
		y := rapid.Int64Range(x/4, x*4).Draw(rt, "y")
		offer := rapid.Int64Range(1, x).Draw(rt, "offer")

		pool := testPool(types.NewStableSwap(amp), types.ZeroFees(), x, y)
		out, err := keeper.ComputeSwap(pool, "uaaa", "ubbb", math.NewInt(offer))
		require.NoError(rt, err)
		require.True(rt, out.ReturnAmount.LT(math.NewInt(y)))
		require.False(rt, out.SpreadAmount.IsNegative())

		// a larger offer never returns less
		bigger, err := keeper.ComputeSwap(pool, "uaaa", "ubbb", math.NewInt(offer).AddRaw(1_000))
		require.NoError(rt, err)
		require.True(rt, bigger.ReturnAmount.GTE(out.ReturnAmount))
	})
}

func FuzzComputeD(f *testing.F) {
	f.Add(uint64(1_000_000), uint64(1_000_000), uint64(100))
	f.Add(uint64(1), uint64(1_000_000_000_000), uint64(1))
	f.Add(uint64(1_000_000_000_000), uint64(7), uint64(1_000_000))

	f.Fuzz(func(t *testing.T, a, b, amp uint64) {
		if a == 0 || b == 0 || amp == 0 || amp > types.MaxAmplification {
			return
		}
		xp := []math.Int{math.NewIntFromUint64(a), math.NewIntFromUint64(b)}
		d, err := keeper.ComputeD(xp, amp)
		if err != nil {
			return
		}
		// D lies between n·min and the sum of the balances
		sum := xp[0].Add(xp[1])
		require.True(t, d.LTE(sum.AddRaw(1)), "D %s above sum %s", d, sum)
		minimum := math.MinInt(xp[0], xp[1]).MulRaw(2)
		require.True(t, d.AddRaw(1).GTE(minimum), "D %s below %s", d, minimum)
	})
}
