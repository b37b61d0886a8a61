package keeper

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/lhub/x/poolmanager/types"
)

// RegisterInvariants registers all pool manager invariants
func RegisterInvariants(ir sdk.InvariantRegistry, k Keeper) {
	ir.RegisterRoute(types.ModuleName, "module-account-balance", ModuleAccountBalanceInvariant(k))
	ir.RegisterRoute(types.ModuleName, "lp-supply", LPSupplyInvariant(k))
}

// AllInvariants runs all invariants of the pool manager
func AllInvariants(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		res, stop := ModuleAccountBalanceInvariant(k)(ctx)
		if stop {
			return res, stop
		}
		return LPSupplyInvariant(k)(ctx)
	}
}

// ModuleAccountBalanceInvariant checks the module account holds at least the
// sum of every pool's reserves, per denom.
func ModuleAccountBalanceInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		pools, err := k.GetAllPools(ctx)
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "module-account-balance", err.Error()), true
		}

		required := sdk.NewCoins()
		for _, pool := range pools {
			required = required.Add(pool.Assets()...)
		}

		moduleAddr := k.ModuleAddress()
		for _, coin := range required {
			balance := k.bankKeeper.GetBalance(ctx, moduleAddr, coin.Denom)
			if balance.Amount.LT(coin.Amount) {
				count++
				msg += fmt.Sprintf("%s: module balance %s < reserves %s\n", coin.Denom, balance.Amount, coin.Amount)
			}
		}

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, "module-account-balance",
			fmt.Sprintf("found %d denoms with reserves above module balance\n%s", count, msg),
		), broken
	}
}

// LPSupplyInvariant checks every pool's total share equals the supply of its
// LP denom.
func LPSupplyInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		pools, err := k.GetAllPools(ctx)
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "lp-supply", err.Error()), true
		}
		for _, pool := range pools {
			supply := k.bankKeeper.GetSupply(ctx, pool.LPDenom)
			if !supply.Amount.Equal(pool.TotalShare) {
				count++
				msg += fmt.Sprintf("pool %s: total share %s != supply %s\n", pool.Identifier, pool.TotalShare, supply.Amount)
			}
		}

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, "lp-supply",
			fmt.Sprintf("found %d pools with mismatched LP supply\n%s", count, msg),
		), broken
	}
}
