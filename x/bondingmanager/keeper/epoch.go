package keeper

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/lhub/x/bondingmanager/types"
	"github.com/paw-chain/lhub/x/host"
)

// CreateNewEpoch opens the next epoch with the attached fees plus whatever
// was left unclaimed in the epoch leaving the grace period. Only the fee
// collector may call it.
func (k Keeper) CreateNewEpoch(ctx context.Context, info host.MessageInfo, msg types.MsgCreateNewEpoch) (*host.Response, error) {
	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if err := host.ValidateAuthority(cfg.FeeCollector, info.Sender, types.ErrUnauthorized); err != nil {
		return nil, err
	}
	if !info.Funds.Equal(msg.Fees) {
		return nil, types.ErrAssetMismatch.Wrapf("declared %s, attached %s", msg.Fees, info.Funds)
	}

	current := k.GetLastEpochID(ctx)
	fees := msg.Fees
	if expiringID, ok := types.ExpiringEpoch(current, cfg.GracePeriod); ok {
		expiring, err := k.GetEpoch(ctx, expiringID)
		if err != nil {
			return nil, err
		}
		fees = fees.Add(expiring.Available...)
	}

	globalIndex, err := k.GetGlobalIndex(ctx)
	if err != nil {
		return nil, err
	}
	epoch := types.Epoch{
		ID:          current + 1,
		StartTime:   sdk.UnwrapSDKContext(ctx).BlockTime(),
		Total:       fees,
		Available:   fees,
		Claimed:     sdk.NewCoins(),
		GlobalIndex: globalIndex,
	}
	if err := k.SetEpoch(ctx, epoch); err != nil {
		return nil, err
	}
	k.setLastEpochID(ctx, epoch.ID)

	k.metrics.EpochsCreated.Inc()
	for _, fee := range fees {
		k.metrics.FeesDistributed.WithLabelValues(fee.Denom).Add(toFloat(fee.Amount))
	}
	k.Logger(ctx).Info("epoch created",
		"epoch", epoch.ID,
		"fees", fees.String(),
		"bonded", globalIndex.Bonded.String(),
	)

	return host.NewResponse().
		AddAttribute("new_epoch", strconv.FormatUint(epoch.ID, 10)).
		AddAttribute("fees_to_distribute", fees.String()).
		WithData(epoch), nil
}

// GetLastEpochID returns the id of the newest epoch, zero before the first.
func (k Keeper) GetLastEpochID(ctx context.Context) uint64 {
	bz := k.getStore(ctx).Get(LastEpochKey)
	if bz == nil {
		return 0
	}
	return sdk.BigEndianToUint64(bz)
}

func (k Keeper) setLastEpochID(ctx context.Context, id uint64) {
	k.getStore(ctx).Set(LastEpochKey, uint64Bytes(id))
}

// GetEpoch returns an epoch by id.
func (k Keeper) GetEpoch(ctx context.Context, id uint64) (types.Epoch, error) {
	bz := k.getStore(ctx).Get(GetEpochKey(id))
	if bz == nil {
		return types.Epoch{}, types.ErrEpochNotFound.Wrapf("epoch %d", id)
	}
	var epoch types.Epoch
	if err := json.Unmarshal(bz, &epoch); err != nil {
		return types.Epoch{}, fmt.Errorf("GetEpoch: unmarshal epoch %d: %w", id, err)
	}
	return epoch, nil
}

// GetCurrentEpoch returns the newest epoch.
func (k Keeper) GetCurrentEpoch(ctx context.Context) (types.Epoch, error) {
	return k.GetEpoch(ctx, k.GetLastEpochID(ctx))
}

// SetEpoch stores an epoch
func (k Keeper) SetEpoch(ctx context.Context, epoch types.Epoch) error {
	if err := epoch.Validate(); err != nil {
		return err
	}
	bz, err := json.Marshal(epoch)
	if err != nil {
		return fmt.Errorf("SetEpoch: marshal epoch %d: %w", epoch.ID, err)
	}
	k.getStore(ctx).Set(GetEpochKey(epoch.ID), bz)
	return nil
}

// GetClaimableEpochs returns the epochs within the grace period, oldest first.
func (k Keeper) GetClaimableEpochs(ctx context.Context) ([]types.Epoch, error) {
	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	first, last, ok := types.ClaimableRange(k.GetLastEpochID(ctx), cfg.GracePeriod)
	if !ok {
		return nil, nil
	}
	epochs := make([]types.Epoch, 0, last-first+1)
	for id := first; id <= last; id++ {
		epoch, err := k.GetEpoch(ctx, id)
		if err != nil {
			return nil, err
		}
		epochs = append(epochs, epoch)
	}
	return epochs, nil
}

// GetAllEpochs returns every epoch in id order
func (k Keeper) GetAllEpochs(ctx context.Context) ([]types.Epoch, error) {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), EpochKeyPrefix)
	defer iterator.Close()

	var epochs []types.Epoch
	for ; iterator.Valid(); iterator.Next() {
		var epoch types.Epoch
		if err := json.Unmarshal(iterator.Value(), &epoch); err != nil {
			return nil, fmt.Errorf("GetAllEpochs: unmarshal epoch: %w", err)
		}
		epochs = append(epochs, epoch)
	}
	return epochs, nil
}
