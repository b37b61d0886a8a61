package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/lhub/x/host"
	incentivetypes "github.com/paw-chain/lhub/x/incentivemanager/types"
)

// EpochManagerName is the module name of the epoch clock.
const EpochManagerName = "epochs"

var currentEpochKey = []byte{0x01}

// EpochManagerAddress is the sender of epoch change notifications.
func EpochManagerAddress() sdk.AccAddress {
	return host.ModuleAddress(EpochManagerName)
}

// EpochKeeper is the epoch clock of the liquidity hub. Epochs start when
// the block time passes the end of the current one.
type EpochKeeper struct {
	storeKey storetypes.StoreKey
	duration time.Duration
}

// NewEpochKeeper returns an epoch clock with epochs of the given duration.
func NewEpochKeeper(key storetypes.StoreKey, duration time.Duration) *EpochKeeper {
	return &EpochKeeper{storeKey: key, duration: duration}
}

// CurrentEpoch returns the running epoch.
func (k EpochKeeper) CurrentEpoch(ctx context.Context) (incentivetypes.Epoch, error) {
	bz := sdk.UnwrapSDKContext(ctx).KVStore(k.storeKey).Get(currentEpochKey)
	if bz == nil {
		return incentivetypes.Epoch{}, ErrNoEpochStarted
	}
	var epoch incentivetypes.Epoch
	if err := json.Unmarshal(bz, &epoch); err != nil {
		return incentivetypes.Epoch{}, ErrInvalidEpoch.Wrapf("unmarshal: %s", err)
	}
	return epoch, nil
}

// SetEpoch stores the running epoch.
func (k EpochKeeper) SetEpoch(ctx context.Context, epoch incentivetypes.Epoch) error {
	bz, err := json.Marshal(epoch)
	if err != nil {
		return fmt.Errorf("failed to marshal epoch: %w", err)
	}
	sdk.UnwrapSDKContext(ctx).KVStore(k.storeKey).Set(currentEpochKey, bz)
	return nil
}

// Due reports whether a new epoch should start at the block time.
func (k EpochKeeper) Due(ctx context.Context) bool {
	epoch, err := k.CurrentEpoch(ctx)
	if err != nil {
		return true
	}
	return !sdk.UnwrapSDKContext(ctx).BlockTime().Before(epoch.StartTime.Add(k.duration))
}

// next starts the epoch after the running one at the block time.
func (k EpochKeeper) next(ctx context.Context) (incentivetypes.Epoch, error) {
	var id uint64 = 1
	current, err := k.CurrentEpoch(ctx)
	switch {
	case err == nil:
		id = current.ID + 1
	case !errors.Is(err, ErrNoEpochStarted):
		return incentivetypes.Epoch{}, err
	}
	epoch := incentivetypes.Epoch{ID: id, StartTime: sdk.UnwrapSDKContext(ctx).BlockTime()}
	return epoch, k.SetEpoch(ctx, epoch)
}
