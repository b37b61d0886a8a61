package keeper

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// AdjustWeightForTest exposes the weight bookkeeping behind positions.
func AdjustWeightForTest(k Keeper, ctx sdk.Context, addr sdk.AccAddress, lpDenom string, epoch uint64, delta math.Int) error {
	return k.adjustWeight(ctx, addr, lpDenom, epoch, delta)
}
