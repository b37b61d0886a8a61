package keeper

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/lhub/x/bondingmanager/types"
)

// RegisterInvariants registers all bonding manager invariants
func RegisterInvariants(ir sdk.InvariantRegistry, k Keeper) {
	ir.RegisterRoute(types.ModuleName, "bucket-conservation", BucketConservationInvariant(k))
	ir.RegisterRoute(types.ModuleName, "global-weight", GlobalWeightInvariant(k))
	ir.RegisterRoute(types.ModuleName, "module-account-balance", ModuleAccountBalanceInvariant(k))
}

// AllInvariants runs all invariants of the bonding manager
func AllInvariants(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		for _, inv := range []sdk.Invariant{
			BucketConservationInvariant(k),
			GlobalWeightInvariant(k),
			ModuleAccountBalanceInvariant(k),
		} {
			if res, stop := inv(ctx); stop {
				return res, stop
			}
		}
		return "", false
	}
}

// BucketConservationInvariant checks available + claimed == total for every
// epoch.
func BucketConservationInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		epochs, err := k.GetAllEpochs(ctx)
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "bucket-conservation", err.Error()), true
		}
		var msg string
		broken := false
		for _, epoch := range epochs {
			if err := epoch.Validate(); err != nil {
				broken = true
				msg += err.Error() + "\n"
			}
		}
		return sdk.FormatInvariant(types.ModuleName, "bucket-conservation", msg), broken
	}
}

// GlobalWeightInvariant checks the global index is the sum of every bond, so
// the global weight equals the sum of individual weights at every epoch.
func GlobalWeightInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		bonds, err := k.GetAllBonds(ctx)
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "global-weight", err.Error()), true
		}
		global, err := k.GetGlobalIndex(ctx)
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "global-weight", err.Error()), true
		}
		bonded, product := math.ZeroInt(), math.ZeroInt()
		for _, b := range bonds {
			bonded = bonded.Add(b.Amount)
			product = product.Add(b.EpochProduct)
		}
		broken := !bonded.Equal(global.Bonded) || !product.Equal(global.EpochProduct)
		return sdk.FormatInvariant(
			types.ModuleName, "global-weight",
			fmt.Sprintf("bonds sum to %s/%s, global index %s/%s\n", bonded, product, global.Bonded, global.EpochProduct),
		), broken
	}
}

// ModuleAccountBalanceInvariant checks the module account covers bonded
// stake, pending unbondings and the available fees of claimable epochs.
func ModuleAccountBalanceInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		fail := func(err error) (string, bool) {
			return sdk.FormatInvariant(types.ModuleName, "module-account-balance", err.Error()), true
		}
		required := sdk.NewCoins()
		bonds, err := k.GetAllBonds(ctx)
		if err != nil {
			return fail(err)
		}
		for _, b := range bonds {
			required = required.Add(sdk.NewCoin(b.Denom, b.Amount))
		}
		unbondings, err := k.GetAllUnbondings(ctx)
		if err != nil {
			return fail(err)
		}
		for _, u := range unbondings {
			required = required.Add(u.Asset)
		}
		epochs, err := k.GetClaimableEpochs(ctx)
		if err != nil {
			return fail(err)
		}
		for _, e := range epochs {
			required = required.Add(e.Available...)
		}

		var (
			msg   string
			count int
		)
		for _, coin := range required {
			balance := k.bankKeeper.GetBalance(ctx, k.ModuleAddress(), coin.Denom)
			if balance.Amount.LT(coin.Amount) {
				count++
				msg += fmt.Sprintf("%s: module balance %s < required %s\n", coin.Denom, balance.Amount, coin.Amount)
			}
		}
		return sdk.FormatInvariant(
			types.ModuleName, "module-account-balance",
			fmt.Sprintf("found %d under-funded denoms\n%s", count, msg),
		), count != 0
	}
}
