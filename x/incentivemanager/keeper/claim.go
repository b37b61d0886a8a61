package keeper

import (
	"context"
	"strconv"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/lhub/x/host"
	"github.com/paw-chain/lhub/x/incentivemanager/types"
	"github.com/paw-chain/lhub/x/shared/fixedpoint"
)

// Claim pays out the sender's share of every incentive on the LP denoms it
// holds positions in, for the epochs since its last claim up to the current
// one. The share of an epoch is the emission times the sender's weight over
// the total weight at that epoch.
func (k Keeper) Claim(ctx context.Context, info host.MessageInfo, _ types.MsgClaim) (*host.Response, error) {
	epoch, err := k.currentEpoch(ctx)
	if err != nil {
		return nil, err
	}
	last, found := k.GetLastClaimedEpoch(ctx, info.Sender)
	if !found || last >= epoch.ID {
		return nil, types.ErrNothingToClaim.Wrapf("last claimed epoch %d, current %d", last, epoch.ID)
	}

	rewards, updated, err := k.computeRewards(ctx, info.Sender, last+1, epoch.ID)
	if err != nil {
		return nil, err
	}
	for _, incentive := range updated {
		if err := k.SetIncentive(ctx, incentive); err != nil {
			return nil, err
		}
	}
	k.SetLastClaimedEpoch(ctx, info.Sender, epoch.ID)
	k.metrics.Claims.Inc()

	return host.NewResponse().
		AddAttribute("receiver", info.Sender.String()).
		AddAttribute("claimed_until", strconv.FormatUint(epoch.ID, 10)).
		AddAttribute("rewards", rewards.String()).
		AddInstruction(host.BankSend{To: info.Sender, Amount: rewards}).
		WithData(rewards), nil
}

// Claimable returns what Claim would currently pay addr.
func (k Keeper) Claimable(ctx context.Context, addr sdk.AccAddress) (sdk.Coins, error) {
	epoch, err := k.currentEpoch(ctx)
	if err != nil {
		return nil, err
	}
	last, found := k.GetLastClaimedEpoch(ctx, addr)
	if !found || last >= epoch.ID {
		return sdk.NewCoins(), nil
	}
	rewards, _, err := k.computeRewards(ctx, addr, last+1, epoch.ID)
	return rewards, err
}

// computeRewards returns the rewards of addr over [from, to] together with
// the incentives updated with the claimed amounts.
func (k Keeper) computeRewards(ctx context.Context, addr sdk.AccAddress, from, to uint64) (sdk.Coins, []types.Incentive, error) {
	rewards := sdk.NewCoins()
	var updated []types.Incentive

	for _, lpDenom := range k.lpDenomsOf(ctx, addr) {
		incentives, err := k.GetIncentivesByLPDenom(ctx, lpDenom)
		if err != nil {
			return nil, nil, err
		}
		for _, incentive := range incentives {
			reward, err := k.incentiveReward(ctx, addr, incentive, from, to)
			if err != nil {
				return nil, nil, err
			}
			if reward.IsZero() {
				continue
			}
			incentive.ClaimedAmount = incentive.ClaimedAmount.Add(reward)
			if to > incentive.LastEpochClaimed {
				incentive.LastEpochClaimed = min(to, incentive.PreliminaryEndEpoch-1)
			}
			updated = append(updated, incentive)
			rewards = rewards.Add(sdk.NewCoin(incentive.IncentiveAsset.Denom, reward))
		}
	}
	return rewards, updated, nil
}

// incentiveReward sums addr's per-epoch share of one incentive, capped at
// what the incentive has left.
func (k Keeper) incentiveReward(ctx context.Context, addr sdk.AccAddress, incentive types.Incentive, from, to uint64) (math.Int, error) {
	from = max(from, incentive.StartEpoch)
	if incentive.PreliminaryEndEpoch == 0 {
		return math.ZeroInt(), nil
	}
	to = min(to, incentive.PreliminaryEndEpoch-1)

	total := math.ZeroInt()
	for epoch := from; epoch <= to; epoch++ {
		emission := incentive.EmissionAt(epoch)
		if emission.IsZero() {
			continue
		}
		userWeight, err := k.GetLPWeight(ctx, addr, incentive.LPDenom, epoch)
		if err != nil {
			return math.Int{}, err
		}
		if userWeight.IsZero() {
			continue
		}
		totalWeight, err := k.GetTotalLPWeight(ctx, incentive.LPDenom, epoch)
		if err != nil {
			return math.Int{}, err
		}
		if totalWeight.IsZero() {
			continue
		}
		share, err := fixedpoint.MulDiv(emission, userWeight, totalWeight)
		if err != nil {
			return math.Int{}, err
		}
		total = total.Add(share)
	}

	if remaining := incentive.Remaining(); total.GT(remaining) {
		total = remaining
	}
	return total, nil
}
