package keeper

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/lhub/x/vaultmanager/types"
)

// RegisterInvariants registers all vault manager invariants
func RegisterInvariants(ir sdk.InvariantRegistry, k Keeper) {
	ir.RegisterRoute(types.ModuleName, "solvency", SolvencyInvariant(k))
	ir.RegisterRoute(types.ModuleName, "idle-loans", IdleLoanInvariant(k))
	ir.RegisterRoute(types.ModuleName, "lp-supply", LPSupplyInvariant(k))
}

// AllInvariants runs all invariants of the vault manager
func AllInvariants(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		for _, inv := range []sdk.Invariant{SolvencyInvariant(k), IdleLoanInvariant(k), LPSupplyInvariant(k)} {
			if res, stop := inv(ctx); stop {
				return res, stop
			}
		}
		return "", false
	}
}

// SolvencyInvariant checks the module account holds at least the deposits of
// every vault, per denom.
func SolvencyInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
		)
		vaults, err := k.GetAllVaults(ctx)
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "solvency", err.Error()), true
		}

		required := sdk.NewCoins()
		for _, vault := range vaults {
			required = required.Add(sdk.NewCoin(vault.AssetDenom, vault.TotalDeposits))
		}
		for _, coin := range required {
			balance := k.bankKeeper.GetBalance(ctx, k.ModuleAddress(), coin.Denom)
			if balance.Amount.LT(coin.Amount) {
				count++
				msg += fmt.Sprintf("%s: module balance %s < deposits %s\n", coin.Denom, balance.Amount, coin.Amount)
			}
		}

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, "solvency",
			fmt.Sprintf("found %d under-collateralized denoms\n%s", count, msg),
		), broken
	}
}

// IdleLoanInvariant checks no loan outlives the transaction that opened it.
func IdleLoanInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var msg string
		broken := false
		if n := k.GetActiveLoanCount(ctx); n != 0 {
			broken = true
			msg += fmt.Sprintf("%d loans in flight\n", n)
		}
		vaults, err := k.GetAllVaults(ctx)
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "idle-loans", err.Error()), true
		}
		for _, vault := range vaults {
			if vault.LoanCounter != 0 {
				broken = true
				msg += fmt.Sprintf("vault %s: loan counter %d\n", vault.Identifier, vault.LoanCounter)
			}
		}
		return sdk.FormatInvariant(types.ModuleName, "idle-loans", msg), broken
	}
}

// LPSupplyInvariant checks every vault's total share equals the supply of
// its LP denom.
func LPSupplyInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
		)
		vaults, err := k.GetAllVaults(ctx)
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "lp-supply", err.Error()), true
		}
		for _, vault := range vaults {
			supply := k.bankKeeper.GetSupply(ctx, vault.LPDenom)
			if !supply.Amount.Equal(vault.TotalShare) {
				count++
				msg += fmt.Sprintf("vault %s: total share %s != supply %s\n", vault.Identifier, vault.TotalShare, supply.Amount)
			}
		}

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, "lp-supply",
			fmt.Sprintf("found %d vaults with mismatched LP supply\n%s", count, msg),
		), broken
	}
}
