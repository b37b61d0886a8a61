package types

import (
	"cosmossdk.io/errors"
)

// x/poolmanager module sentinel errors
var (
	ErrInvalidZeroAmount             = errors.Register(ModuleName, 2, "invalid zero amount")
	ErrPoolHasNoAssets               = errors.Register(ModuleName, 3, "pool has no assets")
	ErrSameAsset                     = errors.Register(ModuleName, 4, "cannot use the same asset twice")
	ErrMaxSpreadExceeded             = errors.Register(ModuleName, 5, "max spread assertion failed")
	ErrInvalidMaxSpread              = errors.Register(ModuleName, 6, "invalid max spread")
	ErrInvalidInitialLiquidityAmount = errors.Register(ModuleName, 7, "initial liquidity amount must exceed the minimum liquidity")
	ErrMaxSlippageExceeded           = errors.Register(ModuleName, 8, "slippage tolerance exceeded")
	ErrInvalidSlippageTolerance      = errors.Register(ModuleName, 9, "invalid slippage tolerance")
	ErrAssetMismatch                 = errors.Register(ModuleName, 10, "asset mismatch")
	ErrPoolNotFound                  = errors.Register(ModuleName, 11, "pool not found")
	ErrPoolExists                    = errors.Register(ModuleName, 12, "pool already exists")
	ErrInvalidAssetCount             = errors.Register(ModuleName, 13, "invalid number of assets")
	ErrInvalidFees                   = errors.Register(ModuleName, 14, "invalid pool fees")
	ErrInvalidIdentifier             = errors.Register(ModuleName, 15, "invalid identifier")
	ErrInvalidPoolCreationFee        = errors.Register(ModuleName, 16, "invalid pool creation fee")
	ErrOperationDisabled             = errors.Register(ModuleName, 17, "operation disabled")
	ErrUnauthorized                  = errors.Register(ModuleName, 18, "unauthorized")
	ErrConvergence                   = errors.Register(ModuleName, 19, "stableswap solve did not converge")
	ErrInvalidAmplification          = errors.Register(ModuleName, 20, "invalid amplification coefficient")
	ErrMinimumReceiveAssertion       = errors.Register(ModuleName, 21, "minimum receive assertion failed")
	ErrInvalidSwapOperations         = errors.Register(ModuleName, 22, "invalid swap operations")
	ErrNoSwapRouteForAssets          = errors.Register(ModuleName, 23, "no swap route for assets")
	ErrInsufficientReserves          = errors.Register(ModuleName, 24, "insufficient pool reserves")
	ErrInvalidConfig                 = errors.Register(ModuleName, 25, "invalid config")
	ErrInvalidAddress                = errors.Register(ModuleName, 26, "invalid address")
	ErrInvalidDecimals               = errors.Register(ModuleName, 27, "invalid asset decimals")
)
