package types

import (
	"cosmossdk.io/errors"
)

// x/bondingmanager module sentinel errors
var (
	ErrUnauthorized        = errors.Register(ModuleName, 2, "unauthorized")
	ErrAssetMismatch       = errors.Register(ModuleName, 3, "attached funds do not match the declared fees")
	ErrNothingToClaim      = errors.Register(ModuleName, 4, "nothing to claim")
	ErrInvalidReward       = errors.Register(ModuleName, 5, "reward exceeds the epoch's available fees")
	ErrNoFunds             = errors.Register(ModuleName, 6, "no bondable funds attached")
	ErrMultipleDenoms      = errors.Register(ModuleName, 7, "more than one denom attached")
	ErrUnclaimedRewards    = errors.Register(ModuleName, 8, "rewards must be claimed first")
	ErrInsufficientBond    = errors.Register(ModuleName, 9, "insufficient bond")
	ErrInvalidConfig       = errors.Register(ModuleName, 10, "invalid config")
	ErrInvalidAddress      = errors.Register(ModuleName, 11, "invalid address")
	ErrEpochNotFound       = errors.Register(ModuleName, 12, "epoch not found")
	ErrNothingToWithdraw   = errors.Register(ModuleName, 13, "nothing to withdraw")
	ErrInvalidZeroAmount   = errors.Register(ModuleName, 14, "invalid zero amount")
	ErrInvalidGrowthRate   = errors.Register(ModuleName, 15, "invalid growth rate")
	ErrInvalidGracePeriod  = errors.Register(ModuleName, 16, "invalid grace period")
	ErrTooManyUnbondings   = errors.Register(ModuleName, 17, "too many pending unbondings")
	ErrInvalidBondingAsset = errors.Register(ModuleName, 18, "invalid bonding asset")
)
