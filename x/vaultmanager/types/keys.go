package types

const (
	// ModuleName defines the module name
	ModuleName = "vaultmanager"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// RouterKey defines the module's message routing key
	RouterKey = ModuleName

	// MinimumLiquidityAmount is the LP supply locked to the module on the
	// first deposit of every vault.
	MinimumLiquidityAmount = 1_000
)
