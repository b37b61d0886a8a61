package types

const (
	// ModuleName defines the module name
	ModuleName = "poolmanager"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// RouterKey defines the module's message routing key
	RouterKey = ModuleName

	// MinimumLiquidityAmount is the LP supply locked to the module on the
	// first deposit of every pool.
	MinimumLiquidityAmount = 1_000

	// MaxAssetsPerPool caps the number of assets in a pool.
	MaxAssetsPerPool = 4

	// MaxIdentifierLength caps pool identifiers so LP denoms stay valid.
	MaxIdentifierLength = 64
)
