package keeper

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/lhub/x/host"
	"github.com/paw-chain/lhub/x/incentivemanager/types"
	"github.com/paw-chain/lhub/x/shared/fixedpoint"
	"github.com/paw-chain/lhub/x/shared/lptoken"
)

// FillPosition locks the attached LP into a new position, or tops up the
// open position named by the identifier. Only the pool manager may open a
// position on behalf of another receiver.
func (k Keeper) FillPosition(ctx context.Context, info host.MessageInfo, msg types.MsgFillPosition) (*host.Response, error) {
	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if len(info.Funds) != 1 || !lptoken.IsLPDenom(info.Funds[0].Denom) {
		return nil, types.ErrInvalidLPDenom.Wrapf("expected a single lp token, got %s", info.Funds)
	}
	lpAsset := info.Funds[0]

	if msg.UnlockingDuration < cfg.MinUnlockingDuration || msg.UnlockingDuration > cfg.MaxUnlockingDuration {
		return nil, types.ErrInvalidUnlockingDuration.Wrapf(
			"%d outside [%d, %d]", msg.UnlockingDuration, cfg.MinUnlockingDuration, cfg.MaxUnlockingDuration,
		)
	}

	owner := info.Sender
	if msg.Receiver != "" && msg.Receiver != info.Sender.String() {
		if err := host.ValidateAuthority(cfg.PoolManager, info.Sender, types.ErrUnauthorized); err != nil {
			return nil, err
		}
		if owner, err = sdk.AccAddressFromBech32(msg.Receiver); err != nil {
			return nil, types.ErrInvalidAddress.Wrapf("%s: %s", msg.Receiver, err)
		}
	}
	if owner.Equals(k.ModuleAddress()) {
		return nil, types.ErrInvalidAddress.Wrap("the incentive manager cannot own a position")
	}

	epoch, err := k.currentEpoch(ctx)
	if err != nil {
		return nil, err
	}

	var position types.Position
	existing := false
	if msg.Identifier != "" {
		if position, err = k.GetPosition(ctx, msg.Identifier); err == nil {
			existing = true
		}
	}

	if existing {
		if position.Owner != owner.String() {
			return nil, types.ErrUnauthorized.Wrapf("position %s belongs to %s", position.Identifier, position.Owner)
		}
		if !position.Open {
			return nil, types.ErrPositionAlreadyClosed.Wrap(position.Identifier)
		}
		if position.LPAsset.Denom != lpAsset.Denom {
			return nil, types.ErrAssetMismatch.Wrapf("position holds %s, got %s", position.LPAsset.Denom, lpAsset.Denom)
		}
	} else {
		identifier := msg.Identifier
		switch {
		case identifier == "":
			identifier = fmt.Sprintf("p-%d", k.nextCounter(ctx, PositionCounterKey))
		case strings.HasPrefix(identifier, "p-"):
			return nil, types.ErrInvalidIdentifier.Wrapf("%s: the p- prefix is reserved", identifier)
		}
		position = types.Position{
			Identifier:        identifier,
			Owner:             owner.String(),
			LPAsset:           sdk.NewCoin(lpAsset.Denom, math.ZeroInt()),
			UnlockingDuration: msg.UnlockingDuration,
			Open:              true,
		}
	}

	before := types.Weight(position.LPAsset.Amount, position.UnlockingDuration, cfg.MinUnlockingDuration, cfg.MaxUnlockingDuration)
	position.LPAsset = position.LPAsset.Add(lpAsset)
	after := types.Weight(position.LPAsset.Amount, position.UnlockingDuration, cfg.MinUnlockingDuration, cfg.MaxUnlockingDuration)
	if err := k.adjustWeight(ctx, owner, lpAsset.Denom, epoch.ID, after.Sub(before)); err != nil {
		return nil, err
	}
	if err := k.SetPosition(ctx, position); err != nil {
		return nil, err
	}

	// a new participant starts claiming from the current epoch
	if _, found := k.GetLastClaimedEpoch(ctx, owner); !found {
		k.SetLastClaimedEpoch(ctx, owner, epoch.ID)
	}
	k.metrics.PositionsFilled.Inc()

	return host.NewResponse().
		AddAttribute("receiver", owner.String()).
		AddAttribute("identifier", position.Identifier).
		AddAttribute("lp_asset", lpAsset.String()).
		AddAttribute("unlocking_duration", strconv.FormatUint(position.UnlockingDuration, 10)).
		WithData(position), nil
}

// ClosePosition starts unlocking a position. With an LP amount smaller than
// the position, that amount is split off into a new closed position and the
// rest stays open.
func (k Keeper) ClosePosition(ctx context.Context, info host.MessageInfo, msg types.MsgClosePosition) (*host.Response, error) {
	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	position, err := k.GetPosition(ctx, msg.Identifier)
	if err != nil {
		return nil, err
	}
	if position.Owner != info.Sender.String() {
		return nil, types.ErrUnauthorized.Wrapf("position %s belongs to %s", position.Identifier, position.Owner)
	}
	if !position.Open {
		return nil, types.ErrPositionAlreadyClosed.Wrap(position.Identifier)
	}

	closing := position.LPAsset
	if msg.LPAsset != nil {
		if msg.LPAsset.Denom != position.LPAsset.Denom {
			return nil, types.ErrAssetMismatch.Wrapf("position holds %s, got %s", position.LPAsset.Denom, msg.LPAsset.Denom)
		}
		if msg.LPAsset.Amount.GT(position.LPAsset.Amount) {
			return nil, types.ErrInvalidPositionAmount.Wrapf("%s exceeds position %s", msg.LPAsset, position.LPAsset)
		}
		closing = *msg.LPAsset
	}

	epoch, err := k.currentEpoch(ctx)
	if err != nil {
		return nil, err
	}
	before := types.Weight(position.LPAsset.Amount, position.UnlockingDuration, cfg.MinUnlockingDuration, cfg.MaxUnlockingDuration)
	remaining := position.LPAsset.Sub(closing)
	after := types.Weight(remaining.Amount, position.UnlockingDuration, cfg.MinUnlockingDuration, cfg.MaxUnlockingDuration)
	if err := k.adjustWeight(ctx, info.Sender, position.LPAsset.Denom, epoch.ID, after.Sub(before)); err != nil {
		return nil, err
	}

	now := sdk.UnwrapSDKContext(ctx).BlockTime().Unix()
	closed := position
	closed.LPAsset = closing
	closed.Open = false
	closed.ExpiringAt = now + int64(position.UnlockingDuration)

	if remaining.IsPositive() {
		position.LPAsset = remaining
		if err := k.SetPosition(ctx, position); err != nil {
			return nil, err
		}
		closed.Identifier = fmt.Sprintf("p-%d", k.nextCounter(ctx, PositionCounterKey))
	}
	if err := k.SetPosition(ctx, closed); err != nil {
		return nil, err
	}

	return host.NewResponse().
		AddAttribute("receiver", info.Sender.String()).
		AddAttribute("identifier", closed.Identifier).
		AddAttribute("lp_asset", closing.String()).
		AddAttribute("expiring_at", strconv.FormatInt(closed.ExpiringAt, 10)).
		WithData(closed), nil
}

// WithdrawPosition returns the LP of an unlocked position to its owner. An
// emergency unlock withdraws a locked or still open position and sends the
// emergency unlock penalty to the fee collector.
func (k Keeper) WithdrawPosition(ctx context.Context, info host.MessageInfo, msg types.MsgWithdrawPosition) (*host.Response, error) {
	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	position, err := k.GetPosition(ctx, msg.Identifier)
	if err != nil {
		return nil, err
	}
	if position.Owner != info.Sender.String() {
		return nil, types.ErrUnauthorized.Wrapf("position %s belongs to %s", position.Identifier, position.Owner)
	}

	now := sdk.UnwrapSDKContext(ctx).BlockTime().Unix()
	res := host.NewResponse().
		AddAttribute("receiver", info.Sender.String()).
		AddAttribute("identifier", position.Identifier)

	payout := position.LPAsset
	if !position.Unlocked(now) {
		if !msg.EmergencyUnlock {
			return nil, types.ErrPositionNotUnlocked.Wrapf("position %s unlocks at %d", position.Identifier, position.ExpiringAt)
		}
		if position.Open {
			epoch, err := k.currentEpoch(ctx)
			if err != nil {
				return nil, err
			}
			weight := types.Weight(position.LPAsset.Amount, position.UnlockingDuration, cfg.MinUnlockingDuration, cfg.MaxUnlockingDuration)
			if err := k.adjustWeight(ctx, info.Sender, position.LPAsset.Denom, epoch.ID, weight.Neg()); err != nil {
				return nil, err
			}
		}

		penalty, err := fixedpoint.MulDecFloor(position.LPAsset.Amount, cfg.EmergencyUnlockPenalty)
		if err != nil {
			return nil, err
		}
		if penalty.IsPositive() {
			feeCollector, err := sdk.AccAddressFromBech32(cfg.FeeCollector)
			if err != nil {
				return nil, types.ErrInvalidConfig.Wrapf("fee collector: %s", err)
			}
			penaltyCoin := sdk.NewCoin(position.LPAsset.Denom, penalty)
			res.Send(feeCollector, penaltyCoin).AddAttribute("emergency_unlock_penalty", penaltyCoin.String())
			payout = payout.Sub(penaltyCoin)
		}
	}

	k.DeletePosition(ctx, position)
	return res.
		AddAttribute("lp_asset", payout.String()).
		Send(info.Sender, payout).
		WithData(payout), nil
}

// GetPosition returns a position by identifier.
func (k Keeper) GetPosition(ctx context.Context, identifier string) (types.Position, error) {
	bz := k.getStore(ctx).Get(GetPositionKey(identifier))
	if bz == nil {
		return types.Position{}, types.ErrPositionNotFound.Wrap(identifier)
	}
	var position types.Position
	if err := json.Unmarshal(bz, &position); err != nil {
		return types.Position{}, fmt.Errorf("GetPosition: unmarshal %s: %w", identifier, err)
	}
	return position, nil
}

// SetPosition saves a position and indexes it under its owner.
func (k Keeper) SetPosition(ctx context.Context, position types.Position) error {
	owner, err := sdk.AccAddressFromBech32(position.Owner)
	if err != nil {
		return types.ErrInvalidAddress.Wrapf("position owner %s: %s", position.Owner, err)
	}
	bz, err := json.Marshal(position)
	if err != nil {
		return fmt.Errorf("SetPosition: marshal %s: %w", position.Identifier, err)
	}
	store := k.getStore(ctx)
	store.Set(GetPositionKey(position.Identifier), bz)
	store.Set(GetPositionByOwnerKey(owner, position.Identifier), []byte{})
	return nil
}

// DeletePosition removes a position and its index entry.
func (k Keeper) DeletePosition(ctx context.Context, position types.Position) {
	store := k.getStore(ctx)
	store.Delete(GetPositionKey(position.Identifier))
	if owner, err := sdk.AccAddressFromBech32(position.Owner); err == nil {
		store.Delete(GetPositionByOwnerKey(owner, position.Identifier))
	}
}

// GetPositionsByOwner returns the open and closed positions of owner.
func (k Keeper) GetPositionsByOwner(ctx context.Context, owner sdk.AccAddress) ([]types.Position, error) {
	prefix := GetPositionsByOwnerPrefix(owner)
	iter := storetypes.KVStorePrefixIterator(k.getStore(ctx), prefix)
	var ids []string
	for ; iter.Valid(); iter.Next() {
		ids = append(ids, string(iter.Key()[len(prefix):]))
	}
	iter.Close()

	positions := make([]types.Position, 0, len(ids))
	for _, id := range ids {
		position, err := k.GetPosition(ctx, id)
		if err != nil {
			return nil, err
		}
		positions = append(positions, position)
	}
	return positions, nil
}

// GetAllPositions returns every position in identifier order.
func (k Keeper) GetAllPositions(ctx context.Context) ([]types.Position, error) {
	iter := storetypes.KVStorePrefixIterator(k.getStore(ctx), PositionKeyPrefix)
	defer iter.Close()

	var positions []types.Position
	for ; iter.Valid(); iter.Next() {
		var position types.Position
		if err := json.Unmarshal(iter.Value(), &position); err != nil {
			return nil, fmt.Errorf("GetAllPositions: unmarshal: %w", err)
		}
		positions = append(positions, position)
	}
	return positions, nil
}

// GetLastClaimedEpoch returns the last epoch addr claimed rewards for.
func (k Keeper) GetLastClaimedEpoch(ctx context.Context, addr sdk.AccAddress) (uint64, bool) {
	bz := k.getStore(ctx).Get(GetLastClaimedEpochKey(addr))
	if bz == nil {
		return 0, false
	}
	return sdk.BigEndianToUint64(bz), true
}

// SetLastClaimedEpoch records the last epoch addr claimed rewards for.
func (k Keeper) SetLastClaimedEpoch(ctx context.Context, addr sdk.AccAddress, epoch uint64) {
	k.getStore(ctx).Set(GetLastClaimedEpochKey(addr), uint64Bytes(epoch))
}

// IterateLastClaimedEpochs walks every address's last claimed epoch.
func (k Keeper) IterateLastClaimedEpochs(ctx context.Context, cb func(addr sdk.AccAddress, epoch uint64)) {
	iter := storetypes.KVStorePrefixIterator(k.getStore(ctx), LastClaimedEpochPrefix)
	defer iter.Close()

	for ; iter.Valid(); iter.Next() {
		addr := sdk.AccAddress(iter.Key()[len(LastClaimedEpochPrefix):])
		cb(addr, sdk.BigEndianToUint64(iter.Value()))
	}
}
