package keeper

import (
	"context"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/lhub/x/host"
	"github.com/paw-chain/lhub/x/incentivemanager/types"
	"github.com/paw-chain/lhub/x/shared/history"
)

// Keeper of the incentive manager store
type Keeper struct {
	storeKey    storetypes.StoreKey
	bankKeeper  types.BankKeeper
	epochKeeper types.EpochKeeper
	weights     history.Store
	metrics     *IncentiveMetrics
}

// NewKeeper creates a new incentive manager Keeper instance
func NewKeeper(key storetypes.StoreKey, bankKeeper types.BankKeeper, epochKeeper types.EpochKeeper) *Keeper {
	return &Keeper{
		storeKey:    key,
		bankKeeper:  bankKeeper,
		epochKeeper: epochKeeper,
		weights:     history.New(LPWeightHistoryPrefix),
		metrics:     NewIncentiveMetrics(),
	}
}

func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	return sdk.UnwrapSDKContext(ctx).KVStore(k.storeKey)
}

// Logger returns a module-specific logger.
func (k Keeper) Logger(ctx context.Context) log.Logger {
	return sdk.UnwrapSDKContext(ctx).Logger().With("module", "x/"+types.ModuleName)
}

// ModuleAddress is the account holding locked LP and incentive assets. Its
// weight history entries hold the total weight per LP denom.
func (k Keeper) ModuleAddress() sdk.AccAddress {
	return host.ModuleAddress(types.ModuleName)
}

func (k Keeper) currentEpoch(ctx context.Context) (types.Epoch, error) {
	epoch, err := k.epochKeeper.CurrentEpoch(ctx)
	if err != nil {
		return types.Epoch{}, types.ErrNoEpoch.Wrap(err.Error())
	}
	return epoch, nil
}
