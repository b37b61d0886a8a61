package keeper

import (
	"cosmossdk.io/math"

	"github.com/paw-chain/lhub/x/poolmanager/types"
	"github.com/paw-chain/lhub/x/shared/fixedpoint"
)

// ComputeSwap prices an offer of offerAmount offerDenom against askDenom in
// pool. It does not mutate the pool.
func ComputeSwap(pool types.Pool, offerDenom, askDenom string, offerAmount math.Int) (types.SwapComputation, error) {
	oi, ai, err := swapIndices(pool, offerDenom, askDenom)
	if err != nil {
		return types.SwapComputation{}, err
	}
	if offerAmount.IsNil() || !offerAmount.IsPositive() {
		return types.SwapComputation{}, types.ErrInvalidZeroAmount.Wrap("offer amount must be positive")
	}
	if pool.Reserves[oi].IsZero() || pool.Reserves[ai].IsZero() {
		return types.SwapComputation{}, types.ErrPoolHasNoAssets.Wrapf("pool %s", pool.Identifier)
	}

	var raw, spread math.Int
	switch pool.PairType.Kind {
	case types.ConstantProduct:
		raw, spread, err = ComputeConstantProductSwap(
			pool.Reserves[oi], pool.Reserves[ai], offerAmount,
			pool.AssetDecimals[oi], pool.AssetDecimals[ai],
		)
	case types.StableSwap:
		raw, spread, err = computeStableSwap(pool, oi, ai, offerAmount)
	default:
		return types.SwapComputation{}, types.ErrInvalidConfig.Wrapf("unknown pair type %q", pool.PairType.Kind)
	}
	if err != nil {
		return types.SwapComputation{}, err
	}
	return applySwapFees(raw, spread, pool.Fees)
}

func swapIndices(pool types.Pool, offerDenom, askDenom string) (int, int, error) {
	if offerDenom == askDenom {
		return 0, 0, types.ErrSameAsset.Wrap(offerDenom)
	}
	oi, ok := pool.AssetIndex(offerDenom)
	if !ok {
		return 0, 0, types.ErrAssetMismatch.Wrapf("%s is not in pool %s", offerDenom, pool.Identifier)
	}
	ai, ok := pool.AssetIndex(askDenom)
	if !ok {
		return 0, 0, types.ErrAssetMismatch.Wrapf("%s is not in pool %s", askDenom, pool.Identifier)
	}
	return oi, ai, nil
}

// ComputeConstantProductSwap returns the curve output and spread, before
// fees, of offering offerAmount against x·y=k reserves. Amounts are scaled to
// the larger precision for the solve and the results floored back to the ask
// precision. k/(x+dx) rounds up so rounding never favours the trader.
func ComputeConstantProductSwap(offerReserve, askReserve, offerAmount math.Int, offerDecimals, askDecimals uint32) (raw, spread math.Int, err error) {
	precision := max(offerDecimals, askDecimals)

	offerPool, err := fixedpoint.ScaleUp(offerReserve, offerDecimals, precision)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	askPool, err := fixedpoint.ScaleUp(askReserve, askDecimals, precision)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	offer, err := fixedpoint.ScaleUp(offerAmount, offerDecimals, precision)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}

	newOfferPool, err := fixedpoint.SafeAdd(offerPool, offer)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	remaining, err := fixedpoint.MulDivCeil(offerPool, askPool, newOfferPool)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	raw, err = fixedpoint.SafeSub(askPool, remaining)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}

	naive, err := fixedpoint.MulDiv(offer, askPool, offerPool)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	spread = fixedpoint.SaturatingSub(naive, raw)

	return fixedpoint.ScaleDown(raw, precision, askDecimals),
		fixedpoint.ScaleDown(spread, precision, askDecimals),
		nil
}

// computeStableSwap returns the curve output and spread, before fees, of a
// stableswap trade. The naive output of a stableswap is one-for-one.
func computeStableSwap(pool types.Pool, oi, ai int, offerAmount math.Int) (raw, spread math.Int, err error) {
	precision := pool.MaxDecimals()
	xp, err := normalize(pool.Reserves, pool.AssetDecimals, precision)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	offer, err := fixedpoint.ScaleUp(offerAmount, pool.AssetDecimals[oi], precision)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	x, err := fixedpoint.SafeAdd(xp[oi], offer)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}

	y, err := ComputeY(oi, ai, x, xp, pool.PairType.Amp)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	// one unit is held back for the rounding of the solve
	raw = fixedpoint.SaturatingSub(xp[ai], y.AddRaw(1))
	spread = fixedpoint.SaturatingSub(offer, raw)

	askDecimals := pool.AssetDecimals[ai]
	return fixedpoint.ScaleDown(raw, precision, askDecimals),
		fixedpoint.ScaleDown(spread, precision, askDecimals),
		nil
}

// applySwapFees splits the raw output into fees, in the order swap, protocol,
// burn, each rounded down, and the amount returned to the trader.
func applySwapFees(raw, spread math.Int, fees types.PoolFees) (types.SwapComputation, error) {
	swapFee, err := fixedpoint.MulDecFloor(raw, fees.SwapFee)
	if err != nil {
		return types.SwapComputation{}, err
	}
	protocolFee, err := fixedpoint.MulDecFloor(raw, fees.ProtocolFee)
	if err != nil {
		return types.SwapComputation{}, err
	}
	burnFee, err := fixedpoint.MulDecFloor(raw, fees.BurnFee)
	if err != nil {
		return types.SwapComputation{}, err
	}

	returnAmount, err := fixedpoint.SafeSub(raw, swapFee.Add(protocolFee).Add(burnFee))
	if err != nil {
		return types.SwapComputation{}, err
	}
	return types.SwapComputation{
		ReturnAmount: returnAmount,
		SpreadAmount: spread,
		SwapFee:      swapFee,
		ProtocolFee:  protocolFee,
		BurnFee:      burnFee,
	}, nil
}

// ComputeOfferAmount is the reverse of ComputeSwap: the offer needed for the
// trader to receive askAmount after fees.
func ComputeOfferAmount(pool types.Pool, offerDenom, askDenom string, askAmount math.Int) (types.ReverseSimulation, error) {
	oi, ai, err := swapIndices(pool, offerDenom, askDenom)
	if err != nil {
		return types.ReverseSimulation{}, err
	}
	if askAmount.IsNil() || !askAmount.IsPositive() {
		return types.ReverseSimulation{}, types.ErrInvalidZeroAmount.Wrap("ask amount must be positive")
	}
	if pool.Reserves[oi].IsZero() || pool.Reserves[ai].IsZero() {
		return types.ReverseSimulation{}, types.ErrPoolHasNoAssets.Wrapf("pool %s", pool.Identifier)
	}

	oneMinusFees := math.LegacyOneDec().Sub(pool.Fees.Total())
	beforeFees, err := fixedpoint.MulDivCeil(askAmount, fixedpoint.DecimalOne(), math.NewIntFromBigInt(oneMinusFees.BigInt()))
	if err != nil {
		return types.ReverseSimulation{}, err
	}
	if beforeFees.GTE(pool.Reserves[ai]) {
		return types.ReverseSimulation{}, types.ErrInsufficientReserves.Wrapf(
			"requested %s%s, pool holds %s", beforeFees, askDenom, pool.Reserves[ai],
		)
	}

	precision := pool.MaxDecimals()
	xp, err := normalize(pool.Reserves, pool.AssetDecimals, precision)
	if err != nil {
		return types.ReverseSimulation{}, err
	}
	want, err := fixedpoint.ScaleUp(beforeFees, pool.AssetDecimals[ai], precision)
	if err != nil {
		return types.ReverseSimulation{}, err
	}

	var offer, spread math.Int
	switch pool.PairType.Kind {
	case types.ConstantProduct:
		newOfferPool, err := fixedpoint.MulDivCeil(xp[oi], xp[ai], xp[ai].Sub(want))
		if err != nil {
			return types.ReverseSimulation{}, err
		}
		offer = newOfferPool.Sub(xp[oi])
		naive, err := fixedpoint.MulDiv(offer, xp[ai], xp[oi])
		if err != nil {
			return types.ReverseSimulation{}, err
		}
		spread = fixedpoint.SaturatingSub(naive, want)
	case types.StableSwap:
		y, err := ComputeY(ai, oi, xp[ai].Sub(want).SubRaw(1), xp, pool.PairType.Amp)
		if err != nil {
			return types.ReverseSimulation{}, err
		}
		offer = fixedpoint.SaturatingSub(y.AddRaw(1), xp[oi])
		spread = fixedpoint.SaturatingSub(offer, want)
	default:
		return types.ReverseSimulation{}, types.ErrInvalidConfig.Wrapf("unknown pair type %q", pool.PairType.Kind)
	}

	offerAmount := scaleDownCeil(offer, precision, pool.AssetDecimals[oi])
	fees, err := applySwapFees(beforeFees, math.ZeroInt(), pool.Fees)
	if err != nil {
		return types.ReverseSimulation{}, err
	}
	return types.ReverseSimulation{
		OfferAmount:  offerAmount,
		SpreadAmount: fixedpoint.ScaleDown(spread, precision, pool.AssetDecimals[ai]),
		SwapFee:      fees.SwapFee,
		ProtocolFee:  fees.ProtocolFee,
		BurnFee:      fees.BurnFee,
	}, nil
}

func scaleDownCeil(amount math.Int, from, to uint32) math.Int {
	down := fixedpoint.ScaleDown(amount, from, to)
	up, err := fixedpoint.ScaleUp(down, to, from)
	if err == nil && up.LT(amount) {
		return down.AddRaw(1)
	}
	return down
}

// AssertMaxSpread rejects a swap whose spread exceeds maxSpread. With a
// belief price (offer units per ask unit) the return is compared against the
// belief-implied amount; otherwise spread is compared to return+spread.
func AssertMaxSpread(
	beliefPrice, maxSpread *math.LegacyDec,
	offerAmount, returnAmount, spreadAmount math.Int,
	offerDecimals, askDecimals uint32,
) error {
	if maxSpread == nil {
		return nil
	}
	if maxSpread.IsNegative() || maxSpread.GT(math.LegacyOneDec()) {
		return types.ErrInvalidMaxSpread.Wrapf("%s outside [0,1]", maxSpread)
	}

	if beliefPrice != nil {
		precision := max(offerDecimals, askDecimals)
		offer, err := fixedpoint.ScaleUp(offerAmount, offerDecimals, precision)
		if err != nil {
			return err
		}
		expected, err := fixedpoint.QuoDecFloor(offer, *beliefPrice)
		if err != nil {
			return err
		}
		expected = fixedpoint.ScaleDown(expected, precision, askDecimals)
		if returnAmount.GTE(expected) || expected.IsZero() {
			return nil
		}
		ratio, err := fixedpoint.Ratio(expected.Sub(returnAmount), expected)
		if err != nil {
			return err
		}
		if ratio.GT(*maxSpread) {
			return types.ErrMaxSpreadExceeded.Wrapf(
				"expected %s, returned %s, spread %s > max %s", expected, returnAmount, ratio, maxSpread,
			)
		}
		return nil
	}

	total := returnAmount.Add(spreadAmount)
	if total.IsZero() {
		return nil
	}
	ratio, err := fixedpoint.Ratio(spreadAmount, total)
	if err != nil {
		return err
	}
	if ratio.GT(*maxSpread) {
		return types.ErrMaxSpreadExceeded.Wrapf("spread %s > max %s", ratio, maxSpread)
	}
	return nil
}
