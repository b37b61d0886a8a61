package keeper

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/lhub/x/incentivemanager/types"
)

// RegisterInvariants registers all incentive manager invariants
func RegisterInvariants(ir sdk.InvariantRegistry, k Keeper) {
	ir.RegisterRoute(types.ModuleName, "emission-bound", EmissionBoundInvariant(k))
	ir.RegisterRoute(types.ModuleName, "module-account-balance", ModuleAccountBalanceInvariant(k))
}

// AllInvariants runs all invariants of the incentive manager
func AllInvariants(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		res, stop := EmissionBoundInvariant(k)(ctx)
		if stop {
			return res, stop
		}
		return ModuleAccountBalanceInvariant(k)(ctx)
	}
}

// EmissionBoundInvariant checks no incentive paid out more than it holds.
func EmissionBoundInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		incentives, err := k.GetAllIncentives(ctx)
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "emission-bound", err.Error()), true
		}
		for _, incentive := range incentives {
			if incentive.ClaimedAmount.GT(incentive.IncentiveAsset.Amount) {
				count++
				msg += fmt.Sprintf("incentive %s: claimed %s > %s\n",
					incentive.Identifier, incentive.ClaimedAmount, incentive.IncentiveAsset.Amount)
			}
		}

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, "emission-bound",
			fmt.Sprintf("found %d incentives claimed beyond their amount\n%s", count, msg),
		), broken
	}
}

// ModuleAccountBalanceInvariant checks the module account holds every
// position's LP and every incentive's unclaimed balance.
func ModuleAccountBalanceInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		incentives, err := k.GetAllIncentives(ctx)
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "module-account-balance", err.Error()), true
		}
		positions, err := k.GetAllPositions(ctx)
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "module-account-balance", err.Error()), true
		}

		required := sdk.NewCoins()
		for _, incentive := range incentives {
			required = required.Add(sdk.NewCoin(incentive.IncentiveAsset.Denom, incentive.Remaining()))
		}
		for _, position := range positions {
			required = required.Add(position.LPAsset)
		}

		balances := k.bankKeeper.GetAllBalances(ctx, k.ModuleAddress())
		for _, coin := range required {
			have := balances.AmountOf(coin.Denom)
			if have.LT(coin.Amount) {
				count++
				msg += fmt.Sprintf("%s: module balance %s < required %s\n", coin.Denom, have, coin.Amount)
			}
		}

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, "module-account-balance",
			fmt.Sprintf("found %d denoms short in the module account\n%s", count, msg),
		), broken
	}
}
