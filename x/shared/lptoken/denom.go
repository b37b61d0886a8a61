// Package lptoken names the share tokens minted by pools and vaults.
package lptoken

import (
	"fmt"
	"strings"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	// Symbol is the subdenom suffix every LP token carries.
	Symbol = "uLP"

	factoryPrefix = "factory"
)

// Denom returns the LP denom a module mints for one of its pools or vaults,
// e.g. factory/<module address>/uwhale-uluna.uLP.
func Denom(minter sdk.AccAddress, identifier string) string {
	return fmt.Sprintf("%s/%s/%s.%s", factoryPrefix, minter, identifier, Symbol)
}

// IsLPDenom reports whether denom is an LP token minted by any module.
func IsLPDenom(denom string) bool {
	parts := strings.SplitN(denom, "/", 3)
	if len(parts) != 3 || parts[0] != factoryPrefix {
		return false
	}
	return strings.HasSuffix(parts[2], "."+Symbol)
}

// Minter returns the module address embedded in an LP denom.
func Minter(denom string) (sdk.AccAddress, error) {
	parts := strings.SplitN(denom, "/", 3)
	if len(parts) != 3 || parts[0] != factoryPrefix {
		return nil, fmt.Errorf("%s is not a factory denom", denom)
	}
	return sdk.AccAddressFromBech32(parts[1])
}
