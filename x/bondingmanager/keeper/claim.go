package keeper

import (
	"context"
	"errors"
	"strconv"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/lhub/x/bondingmanager/types"
	"github.com/paw-chain/lhub/x/host"
	"github.com/paw-chain/lhub/x/shared/fixedpoint"
)

// WeightResponse is the weight of an address against the global weight.
type WeightResponse struct {
	Address      string         `json:"address"`
	Epoch        uint64         `json:"epoch"`
	Weight       math.Int       `json:"weight"`
	GlobalWeight math.Int       `json:"global_weight"`
	Share        math.LegacyDec `json:"share"`
}

// claimResult is the outcome of claiming every unclaimed epoch.
type claimResult struct {
	rewards   sdk.Coins
	epochs    []types.Epoch
	lastEpoch uint64
}

// Claim pays the sender its weighted share of every unclaimed epoch.
func (k Keeper) Claim(ctx context.Context, info host.MessageInfo, _ types.MsgClaim) (*host.Response, error) {
	result, err := k.computeClaim(ctx, info.Sender)
	if err != nil {
		return nil, err
	}
	for _, epoch := range result.epochs {
		if err := k.SetEpoch(ctx, epoch); err != nil {
			return nil, err
		}
	}
	k.SetLastClaimedEpoch(ctx, info.Sender, result.lastEpoch)
	k.metrics.Claims.Inc()

	k.Logger(ctx).Debug("bonding rewards claimed",
		"address", info.Sender.String(),
		"last_epoch", result.lastEpoch,
		"rewards", result.rewards.String(),
	)

	res := host.NewResponse().
		AddAttribute("address", info.Sender.String()).
		AddAttribute("last_claimed_epoch", strconv.FormatUint(result.lastEpoch, 10)).
		AddAttribute("rewards", result.rewards.String()).
		WithData(result.rewards)
	for _, reward := range result.rewards {
		res.Send(info.Sender, reward)
	}
	return res, nil
}

// Claimable returns what Claim would pay addr now.
func (k Keeper) Claimable(ctx context.Context, addr sdk.AccAddress) (sdk.Coins, error) {
	result, err := k.computeClaim(ctx, addr)
	if errors.Is(err, types.ErrNothingToClaim) {
		return sdk.NewCoins(), nil
	}
	if err != nil {
		return nil, err
	}
	return result.rewards, nil
}

// computeClaim prices every claimable epoch after addr's last claim without
// writing anything.
func (k Keeper) computeClaim(ctx context.Context, addr sdk.AccAddress) (claimResult, error) {
	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return claimResult{}, err
	}
	first, last, ok := types.ClaimableRange(k.GetLastEpochID(ctx), cfg.GracePeriod)
	if lastClaimed, found := k.GetLastClaimedEpoch(ctx, addr); found && lastClaimed+1 > first {
		first = lastClaimed + 1
	}
	if !ok || first > last {
		return claimResult{}, types.ErrNothingToClaim
	}

	bonds, err := k.GetBonds(ctx, addr)
	if err != nil {
		return claimResult{}, err
	}

	result := claimResult{rewards: sdk.NewCoins(), lastEpoch: last}
	for id := first; id <= last; id++ {
		epoch, err := k.GetEpoch(ctx, id)
		if err != nil {
			return claimResult{}, err
		}
		userWeight, err := bondsWeight(bonds, id, cfg.GrowthRate)
		if err != nil {
			return claimResult{}, err
		}
		globalWeight, err := epoch.GlobalIndex.Weight(id, cfg.GrowthRate)
		if err != nil {
			return claimResult{}, err
		}
		if userWeight.IsZero() || globalWeight.IsZero() {
			continue
		}

		for _, fee := range epoch.Total {
			reward, err := fixedpoint.MulDiv(fee.Amount, userWeight, globalWeight)
			if err != nil {
				return claimResult{}, err
			}
			if reward.IsZero() {
				continue
			}
			if available := epoch.Available.AmountOf(fee.Denom); reward.GT(available) {
				return claimResult{}, types.ErrInvalidReward.Wrapf(
					"epoch %d: reward %s%s exceeds available %s", id, reward, fee.Denom, available,
				)
			}
			coin := sdk.NewCoin(fee.Denom, reward)
			epoch.Available = epoch.Available.Sub(coin)
			epoch.Claimed = epoch.Claimed.Add(coin)
			result.rewards = result.rewards.Add(coin)
		}
		result.epochs = append(result.epochs, epoch)
	}
	return result, nil
}

func bondsWeight(bonds []types.Bond, epoch uint64, growthRate math.LegacyDec) (math.Int, error) {
	total := math.ZeroInt()
	for _, b := range bonds {
		w, err := b.Weight(epoch, growthRate)
		if err != nil {
			return math.Int{}, err
		}
		if total, err = fixedpoint.SafeAdd(total, w); err != nil {
			return math.Int{}, err
		}
	}
	return total, nil
}

// Weight returns the weight of addr and the global weight at the newest
// epoch, using the live global index.
func (k Keeper) Weight(ctx context.Context, addr sdk.AccAddress) (WeightResponse, error) {
	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return WeightResponse{}, err
	}
	epoch := k.GetLastEpochID(ctx)
	bonds, err := k.GetBonds(ctx, addr)
	if err != nil {
		return WeightResponse{}, err
	}
	weight, err := bondsWeight(bonds, epoch, cfg.GrowthRate)
	if err != nil {
		return WeightResponse{}, err
	}
	global, err := k.GetGlobalIndex(ctx)
	if err != nil {
		return WeightResponse{}, err
	}
	globalWeight, err := global.Weight(epoch, cfg.GrowthRate)
	if err != nil {
		return WeightResponse{}, err
	}

	share := math.LegacyZeroDec()
	if globalWeight.IsPositive() {
		if share, err = fixedpoint.Ratio(weight, globalWeight); err != nil {
			return WeightResponse{}, err
		}
	}
	return WeightResponse{
		Address:      addr.String(),
		Epoch:        epoch,
		Weight:       weight,
		GlobalWeight: globalWeight,
		Share:        share,
	}, nil
}

// assertClaimed fails when addr has claimable epochs it has not claimed.
func (k Keeper) assertClaimed(ctx context.Context, addr sdk.AccAddress) error {
	lastClaimed, found := k.GetLastClaimedEpoch(ctx, addr)
	if !found {
		return nil
	}
	if current := k.GetLastEpochID(ctx); current > lastClaimed {
		return types.ErrUnclaimedRewards.Wrapf("last claimed epoch %d, current epoch %d", lastClaimed, current)
	}
	return nil
}

// GetLastClaimedEpoch returns the last epoch addr claimed.
func (k Keeper) GetLastClaimedEpoch(ctx context.Context, addr sdk.AccAddress) (uint64, bool) {
	bz := k.getStore(ctx).Get(GetLastClaimedEpochKey(addr))
	if bz == nil {
		return 0, false
	}
	return sdk.BigEndianToUint64(bz), true
}

// SetLastClaimedEpoch records the last epoch addr claimed.
func (k Keeper) SetLastClaimedEpoch(ctx context.Context, addr sdk.AccAddress, epoch uint64) {
	k.getStore(ctx).Set(GetLastClaimedEpochKey(addr), uint64Bytes(epoch))
}

// IterateLastClaimedEpochs walks every claim record.
func (k Keeper) IterateLastClaimedEpochs(ctx context.Context, cb func(addr sdk.AccAddress, epoch uint64)) {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), LastClaimedEpochPrefix)
	defer iterator.Close()
	for ; iterator.Valid(); iterator.Next() {
		addr := sdk.AccAddress(iterator.Key()[len(LastClaimedEpochPrefix):])
		cb(addr, sdk.BigEndianToUint64(iterator.Value()))
	}
}
