package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/lhub/x/host"
	incentivetypes "github.com/paw-chain/lhub/x/incentivemanager/types"
	"github.com/paw-chain/lhub/x/poolmanager/types"
	"github.com/paw-chain/lhub/x/shared/fixedpoint"
)

// ProvideLiquidity deposits the attached coins into a pool and mints LP
// shares to the receiver. With an unlocking duration the shares are locked
// into an incentive manager position owned by the receiver instead.
func (k Keeper) ProvideLiquidity(ctx context.Context, info host.MessageInfo, msg types.MsgProvideLiquidity) (*host.Response, error) {
	pool, err := k.GetPool(ctx, msg.PoolIdentifier)
	if err != nil {
		return nil, err
	}
	if !pool.Features.DepositsEnabled {
		return nil, types.ErrOperationDisabled.Wrapf("deposits are disabled on pool %s", pool.Identifier)
	}

	deposits, err := depositAmounts(pool, info.Funds)
	if err != nil {
		return nil, err
	}
	receiver, err := resolveReceiver(msg.Receiver, info.Sender)
	if err != nil {
		return nil, err
	}

	newReserves := make([]math.Int, len(pool.Reserves))
	for i := range pool.Reserves {
		if newReserves[i], err = fixedpoint.SafeAdd(pool.Reserves[i], deposits[i]); err != nil {
			return nil, err
		}
		if newReserves[i].IsZero() {
			return nil, types.ErrInvalidZeroAmount.Wrapf("pool %s would hold no %s", pool.Identifier, pool.AssetDenoms[i])
		}
	}

	var share, locked math.Int
	if pool.TotalShare.IsZero() {
		if share, err = initialShare(pool, deposits); err != nil {
			return nil, err
		}
		locked = math.NewInt(types.MinimumLiquidityAmount)
	} else {
		if err := assertSlippageTolerance(msg.SlippageTolerance, deposits, pool.Reserves); err != nil {
			return nil, err
		}
		if share, err = subsequentShare(pool, deposits, newReserves); err != nil {
			return nil, err
		}
		if share.IsZero() {
			return nil, types.ErrInvalidZeroAmount.Wrap("deposit is too small to mint any LP shares")
		}
		locked = math.ZeroInt()
	}

	pool.Reserves = newReserves
	pool.TotalShare = pool.TotalShare.Add(share).Add(locked)
	if err := k.SetPool(ctx, pool); err != nil {
		return nil, err
	}
	k.metrics.LiquidityProvided.WithLabelValues(pool.Identifier).Inc()

	lpCoin := sdk.NewCoin(pool.LPDenom, share)
	res := host.NewResponse().
		AddAttribute("sender", info.Sender.String()).
		AddAttribute("receiver", receiver.String()).
		AddAttribute("pool_identifier", pool.Identifier).
		AddAttribute("assets", info.Funds.String()).
		AddAttribute("share", share.String()).
		WithData(lpCoin)

	// the first depositor's minimum liquidity stays in the module forever
	res.AddInstruction(host.Mint{To: k.ModuleAddress(), Amount: sdk.NewCoins(sdk.NewCoin(pool.LPDenom, locked))})

	if msg.UnlockingDuration == 0 {
		res.AddInstruction(host.Mint{To: receiver, Amount: sdk.NewCoins(lpCoin)})
		return res, nil
	}

	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.IncentiveManager == "" {
		return nil, types.ErrInvalidConfig.Wrap("no incentive manager configured to lock liquidity")
	}
	res.AddAttribute("unlocking_duration", fmt.Sprintf("%d", msg.UnlockingDuration))
	res.AddInstruction(host.Mint{To: k.ModuleAddress(), Amount: sdk.NewCoins(lpCoin)})
	res.AddInstruction(host.Execute{
		Msg: incentivetypes.MsgFillPosition{
			UnlockingDuration: msg.UnlockingDuration,
			Receiver:          receiver.String(),
		},
		Funds: sdk.NewCoins(lpCoin),
	})
	return res, nil
}

// WithdrawLiquidity burns the attached LP shares and returns the pro-rata
// share of every reserve.
func (k Keeper) WithdrawLiquidity(ctx context.Context, info host.MessageInfo, msg types.MsgWithdrawLiquidity) (*host.Response, error) {
	pool, err := k.GetPool(ctx, msg.PoolIdentifier)
	if err != nil {
		return nil, err
	}
	if !pool.Features.WithdrawalsEnabled {
		return nil, types.ErrOperationDisabled.Wrapf("withdrawals are disabled on pool %s", pool.Identifier)
	}
	if len(info.Funds) != 1 || info.Funds[0].Denom != pool.LPDenom {
		return nil, types.ErrAssetMismatch.Wrapf("expected only %s, got %s", pool.LPDenom, info.Funds)
	}
	lp := info.Funds[0].Amount
	if lp.GT(pool.TotalShare) {
		return nil, types.ErrInsufficientReserves.Wrapf("%s exceeds total share %s", lp, pool.TotalShare)
	}

	refunds := make(sdk.Coins, 0, len(pool.AssetDenoms))
	for i, reserve := range pool.Reserves {
		amount, err := fixedpoint.MulDiv(reserve, lp, pool.TotalShare)
		if err != nil {
			return nil, err
		}
		if pool.Reserves[i], err = fixedpoint.SafeSub(reserve, amount); err != nil {
			return nil, err
		}
		if amount.IsPositive() {
			refunds = append(refunds, sdk.NewCoin(pool.AssetDenoms[i], amount))
		}
	}
	if refunds.Empty() {
		return nil, types.ErrInvalidZeroAmount.Wrapf("%s refunds nothing", info.Funds)
	}
	pool.TotalShare = pool.TotalShare.Sub(lp)

	if err := k.SetPool(ctx, pool); err != nil {
		return nil, err
	}
	k.metrics.LiquidityWithdrawn.WithLabelValues(pool.Identifier).Inc()

	refunds = refunds.Sort()
	return host.NewResponse().
		AddAttribute("sender", info.Sender.String()).
		AddAttribute("pool_identifier", pool.Identifier).
		AddAttribute("share", lp.String()).
		AddAttribute("refund_assets", refunds.String()).
		AddInstruction(host.Burn{Amount: info.Funds}).
		AddInstruction(host.BankSend{To: info.Sender, Amount: refunds}).
		WithData(refunds), nil
}

// depositAmounts lays the attached coins out in pool asset order.
func depositAmounts(pool types.Pool, funds sdk.Coins) ([]math.Int, error) {
	if funds.IsZero() {
		return nil, types.ErrInvalidZeroAmount.Wrap("no assets attached")
	}
	deposits := make([]math.Int, len(pool.AssetDenoms))
	for i := range deposits {
		deposits[i] = math.ZeroInt()
	}
	for _, coin := range funds {
		idx, ok := pool.AssetIndex(coin.Denom)
		if !ok {
			return nil, types.ErrAssetMismatch.Wrapf("%s is not in pool %s", coin.Denom, pool.Identifier)
		}
		deposits[idx] = coin.Amount
	}
	return deposits, nil
}

func resolveReceiver(receiver string, sender sdk.AccAddress) (sdk.AccAddress, error) {
	if receiver == "" {
		return sender, nil
	}
	addr, err := sdk.AccAddressFromBech32(receiver)
	if err != nil {
		return nil, types.ErrInvalidAddress.Wrapf("%s: %s", receiver, err)
	}
	return addr, nil
}

// initialShare returns the shares of the first deposit, net of the minimum
// liquidity that is locked in the module.
func initialShare(pool types.Pool, deposits []math.Int) (math.Int, error) {
	var gross math.Int
	switch pool.PairType.Kind {
	case types.ConstantProduct:
		product, err := fixedpoint.SafeMul(deposits[0], deposits[1])
		if err != nil {
			return math.Int{}, err
		}
		if gross, err = fixedpoint.Sqrt(product); err != nil {
			return math.Int{}, err
		}
	case types.StableSwap:
		xp, err := normalize(deposits, pool.AssetDecimals, pool.MaxDecimals())
		if err != nil {
			return math.Int{}, err
		}
		if gross, err = ComputeD(xp, pool.PairType.Amp); err != nil {
			return math.Int{}, err
		}
	default:
		return math.Int{}, types.ErrInvalidConfig.Wrapf("unknown pair type %q", pool.PairType.Kind)
	}

	minimum := math.NewInt(types.MinimumLiquidityAmount)
	if gross.LTE(minimum) {
		return math.Int{}, types.ErrInvalidInitialLiquidityAmount.Wrapf(
			"initial liquidity %s must exceed %s", gross, minimum,
		)
	}
	return gross.Sub(minimum), nil
}

// subsequentShare returns the shares minted for a deposit into a funded pool.
// Constant product pools mint by the least generous asset ratio so an
// unbalanced deposit never dilutes existing providers; stableswap pools mint
// by growth of the invariant.
func subsequentShare(pool types.Pool, deposits, newReserves []math.Int) (math.Int, error) {
	switch pool.PairType.Kind {
	case types.ConstantProduct:
		var share math.Int
		for i, d := range deposits {
			if pool.Reserves[i].IsZero() {
				return math.Int{}, types.ErrPoolHasNoAssets.Wrapf("pool %s", pool.Identifier)
			}
			s, err := fixedpoint.MulDiv(d, pool.TotalShare, pool.Reserves[i])
			if err != nil {
				return math.Int{}, err
			}
			if i == 0 || s.LT(share) {
				share = s
			}
		}
		return share, nil
	case types.StableSwap:
		precision := pool.MaxDecimals()
		before, err := normalize(pool.Reserves, pool.AssetDecimals, precision)
		if err != nil {
			return math.Int{}, err
		}
		after, err := normalize(newReserves, pool.AssetDecimals, precision)
		if err != nil {
			return math.Int{}, err
		}
		d0, err := ComputeD(before, pool.PairType.Amp)
		if err != nil {
			return math.Int{}, err
		}
		d1, err := ComputeD(after, pool.PairType.Amp)
		if err != nil {
			return math.Int{}, err
		}
		if d0.IsZero() {
			return math.Int{}, types.ErrPoolHasNoAssets.Wrapf("pool %s", pool.Identifier)
		}
		return fixedpoint.MulDiv(pool.TotalShare, fixedpoint.SaturatingSub(d1, d0), d0)
	default:
		return math.Int{}, types.ErrInvalidConfig.Wrapf("unknown pair type %q", pool.PairType.Kind)
	}
}

func normalize(amounts []math.Int, decimals []uint32, precision uint32) ([]math.Int, error) {
	out := make([]math.Int, len(amounts))
	for i, a := range amounts {
		v, err := fixedpoint.ScaleUp(a, decimals[i], precision)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// assertSlippageTolerance rejects deposits whose asset ratio deviates from
// the pool's by more than tolerance, comparing each asset against the first.
func assertSlippageTolerance(tolerance *math.LegacyDec, deposits, reserves []math.Int) error {
	if tolerance == nil {
		return nil
	}
	if tolerance.IsNegative() || tolerance.GT(math.LegacyOneDec()) {
		return types.ErrInvalidSlippageTolerance.Wrapf("%s outside [0,1]", tolerance)
	}
	oneMinus := math.LegacyOneDec().Sub(*tolerance)

	for i := 1; i < len(deposits); i++ {
		// d0/di against r0/ri, cross-multiplied
		a, err := fixedpoint.SafeMul(deposits[0], reserves[i])
		if err != nil {
			return err
		}
		b, err := fixedpoint.SafeMul(reserves[0], deposits[i])
		if err != nil {
			return err
		}
		aScaled, err := fixedpoint.MulDecFloor(a, oneMinus)
		if err != nil {
			return err
		}
		bScaled, err := fixedpoint.MulDecFloor(b, oneMinus)
		if err != nil {
			return err
		}
		if aScaled.GT(b) || bScaled.GT(a) {
			return types.ErrMaxSlippageExceeded.Wrapf("asset %d deposit ratio deviates beyond %s", i, tolerance)
		}
	}
	return nil
}
