package app

import (
	errorsmod "cosmossdk.io/errors"
)

// Epoch clock errors
var (
	ErrNoEpochStarted = errorsmod.Register(EpochManagerName, 2, "no epoch has started")
	ErrInvalidEpoch   = errorsmod.Register(EpochManagerName, 3, "invalid epoch record")
)
