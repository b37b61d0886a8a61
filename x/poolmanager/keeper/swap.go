package keeper

import (
	"context"
	"math/big"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/lhub/x/host"
	"github.com/paw-chain/lhub/x/poolmanager/types"
	"github.com/paw-chain/lhub/x/shared/fixedpoint"
)

// Swap swaps the single attached coin for the ask asset of a pool.
func (k Keeper) Swap(ctx context.Context, info host.MessageInfo, msg types.MsgSwap) (*host.Response, error) {
	if len(info.Funds) != 1 {
		return nil, types.ErrAssetMismatch.Wrapf("swap takes exactly one offer coin, got %s", info.Funds)
	}
	receiver, err := resolveReceiver(msg.Receiver, info.Sender)
	if err != nil {
		return nil, err
	}
	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return nil, err
	}

	result, err := k.executeSwap(ctx, msg.PoolIdentifier, info.Funds[0], msg.AskDenom, msg.BeliefPrice, msg.MaxSpread)
	if err != nil {
		return nil, err
	}

	res := host.NewResponse().
		AddAttribute("sender", info.Sender.String()).
		AddAttribute("receiver", receiver.String()).
		AddAttribute("pool_identifier", result.PoolIdentifier).
		AddAttribute("offer_asset", result.Offer.String()).
		AddAttribute("return_asset", result.Return.String()).
		AddAttribute("spread_amount", result.Computation.SpreadAmount.String()).
		AddAttribute("swap_fee_amount", result.Computation.SwapFee.String()).
		AddAttribute("protocol_fee_amount", result.Computation.ProtocolFee.String()).
		AddAttribute("burn_fee_amount", result.Computation.BurnFee.String()).
		Send(receiver, result.Return).
		WithData(result)

	protocolFees := sdk.NewCoins(sdk.NewCoin(msg.AskDenom, result.Computation.ProtocolFee))
	burnFees := sdk.NewCoins(sdk.NewCoin(msg.AskDenom, result.Computation.BurnFee))
	if err := appendFeeInstructions(res, cfg, protocolFees, burnFees); err != nil {
		return nil, err
	}
	return res, nil
}

// ExecuteSwapOperations routes the attached coin through each operation in
// turn and pays the final output to the receiver.
func (k Keeper) ExecuteSwapOperations(ctx context.Context, info host.MessageInfo, msg types.MsgExecuteSwapOperations) (*host.Response, error) {
	if err := types.ValidateSwapOperations(msg.Operations); err != nil {
		return nil, err
	}
	if len(info.Funds) != 1 || info.Funds[0].Denom != msg.Operations[0].OfferDenom {
		return nil, types.ErrAssetMismatch.Wrapf(
			"expected only %s, got %s", msg.Operations[0].OfferDenom, info.Funds,
		)
	}
	receiver, err := resolveReceiver(msg.Receiver, info.Sender)
	if err != nil {
		return nil, err
	}
	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return nil, err
	}

	current := info.Funds[0]
	protocolFees := sdk.NewCoins()
	burnFees := sdk.NewCoins()
	results := make([]types.SwapResult, 0, len(msg.Operations))
	for _, op := range msg.Operations {
		result, err := k.executeSwap(ctx, op.PoolIdentifier, current, op.AskDenom, nil, msg.MaxSpread)
		if err != nil {
			return nil, err
		}
		protocolFees = protocolFees.Add(sdk.NewCoin(op.AskDenom, result.Computation.ProtocolFee))
		burnFees = burnFees.Add(sdk.NewCoin(op.AskDenom, result.Computation.BurnFee))
		results = append(results, result)
		current = result.Return
	}

	if msg.MinimumReceive != nil && current.Amount.LT(*msg.MinimumReceive) {
		return nil, types.ErrMinimumReceiveAssertion.Wrapf(
			"received %s, minimum %s", current.Amount, msg.MinimumReceive,
		)
	}

	res := host.NewResponse().
		AddAttribute("sender", info.Sender.String()).
		AddAttribute("receiver", receiver.String()).
		AddAttribute("offer_asset", info.Funds[0].String()).
		AddAttribute("return_asset", current.String()).
		AddAttribute("hops", math.NewInt(int64(len(results))).String()).
		Send(receiver, current).
		WithData(results)
	if err := appendFeeInstructions(res, cfg, protocolFees, burnFees); err != nil {
		return nil, err
	}
	return res, nil
}

// executeSwap prices and books one swap against the pool's reserves. Fees
// are only computed here; moving them is left to the caller's response.
func (k Keeper) executeSwap(
	ctx context.Context,
	poolIdentifier string,
	offer sdk.Coin,
	askDenom string,
	beliefPrice, maxSpread *math.LegacyDec,
) (types.SwapResult, error) {
	pool, err := k.GetPool(ctx, poolIdentifier)
	if err != nil {
		return types.SwapResult{}, err
	}
	if !pool.Features.SwapsEnabled {
		return types.SwapResult{}, types.ErrOperationDisabled.Wrapf("swaps are disabled on pool %s", pool.Identifier)
	}

	comp, err := ComputeSwap(pool, offer.Denom, askDenom, offer.Amount)
	if err != nil {
		return types.SwapResult{}, err
	}
	oi, _ := pool.AssetIndex(offer.Denom)
	ai, _ := pool.AssetIndex(askDenom)
	if err := AssertMaxSpread(
		beliefPrice, maxSpread,
		offer.Amount, comp.ReturnAmount, comp.SpreadAmount,
		pool.AssetDecimals[oi], pool.AssetDecimals[ai],
	); err != nil {
		return types.SwapResult{}, err
	}
	if comp.ReturnAmount.IsZero() {
		return types.SwapResult{}, types.ErrInvalidZeroAmount.Wrapf("offer %s returns nothing", offer)
	}

	// the swap fee stays in the pool; protocol and burn fees leave it
	outflow := comp.ReturnAmount.Add(comp.ProtocolFee).Add(comp.BurnFee)
	if pool.Reserves[ai], err = fixedpoint.SafeSub(pool.Reserves[ai], outflow); err != nil {
		return types.SwapResult{}, types.ErrInsufficientReserves.Wrapf("pool %s: %s", pool.Identifier, err)
	}
	if pool.Reserves[oi], err = fixedpoint.SafeAdd(pool.Reserves[oi], offer.Amount); err != nil {
		return types.SwapResult{}, err
	}
	if err := k.SetPool(ctx, pool); err != nil {
		return types.SwapResult{}, err
	}

	k.metrics.SwapsTotal.WithLabelValues(pool.Identifier, offer.Denom, askDenom).Inc()
	k.metrics.SwapVolume.WithLabelValues(pool.Identifier, offer.Denom).Add(toFloat(offer.Amount))
	k.metrics.SwapFeesCollected.WithLabelValues(pool.Identifier, askDenom, "swap").Add(toFloat(comp.SwapFee))
	k.metrics.SwapFeesCollected.WithLabelValues(pool.Identifier, askDenom, "protocol").Add(toFloat(comp.ProtocolFee))
	k.metrics.SwapFeesCollected.WithLabelValues(pool.Identifier, askDenom, "burn").Add(toFloat(comp.BurnFee))

	k.Logger(ctx).Debug("swap executed",
		"pool_identifier", pool.Identifier,
		"offer", offer.String(),
		"return", comp.ReturnAmount.String(),
		"spread", comp.SpreadAmount.String(),
	)

	return types.SwapResult{
		PoolIdentifier: pool.Identifier,
		Offer:          offer,
		Return:         sdk.NewCoin(askDenom, comp.ReturnAmount),
		Computation:    comp,
	}, nil
}

// appendFeeInstructions forwards protocol fees to the fee collector and burns
// burn fees.
func appendFeeInstructions(res *host.Response, cfg types.Config, protocolFees, burnFees sdk.Coins) error {
	if !protocolFees.IsZero() {
		feeCollector, err := sdk.AccAddressFromBech32(cfg.FeeCollector)
		if err != nil {
			return types.ErrInvalidConfig.Wrapf("fee collector: %s", err)
		}
		res.AddInstruction(host.BankSend{To: feeCollector, Amount: protocolFees})
	}
	res.AddInstruction(host.Burn{Amount: burnFees})
	return nil
}

func toFloat(v math.Int) float64 {
	f, _ := new(big.Float).SetInt(v.BigInt()).Float64()
	return f
}

// SimulateSwap prices a swap without executing it.
func (k Keeper) SimulateSwap(ctx context.Context, poolIdentifier string, offer sdk.Coin, askDenom string) (types.SwapComputation, error) {
	pool, err := k.GetPool(ctx, poolIdentifier)
	if err != nil {
		return types.SwapComputation{}, err
	}
	return ComputeSwap(pool, offer.Denom, askDenom, offer.Amount)
}

// ReverseSimulateSwap returns the offer needed to receive ask.
func (k Keeper) ReverseSimulateSwap(ctx context.Context, poolIdentifier, offerDenom string, ask sdk.Coin) (types.ReverseSimulation, error) {
	pool, err := k.GetPool(ctx, poolIdentifier)
	if err != nil {
		return types.ReverseSimulation{}, err
	}
	return ComputeOfferAmount(pool, offerDenom, ask.Denom, ask.Amount)
}

// SimulateSwapOperations prices a multi-hop swap without executing it. Each
// hop is priced against the pool as stored; a route that visits one pool
// twice is priced as if the first visit had not happened.
func (k Keeper) SimulateSwapOperations(ctx context.Context, offerAmount math.Int, ops []types.SwapOperation) (math.Int, error) {
	if err := types.ValidateSwapOperations(ops); err != nil {
		return math.Int{}, err
	}
	amount := offerAmount
	for _, op := range ops {
		comp, err := k.SimulateSwap(ctx, op.PoolIdentifier, sdk.NewCoin(op.OfferDenom, amount), op.AskDenom)
		if err != nil {
			return math.Int{}, err
		}
		amount = comp.ReturnAmount
	}
	return amount, nil
}
