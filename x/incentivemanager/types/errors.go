package types

import (
	"cosmossdk.io/errors"
)

// x/incentivemanager module sentinel errors
var (
	ErrUnauthorized                    = errors.Register(ModuleName, 2, "unauthorized")
	ErrTooManyIncentives               = errors.Register(ModuleName, 3, "too many live incentives for the lp denom")
	ErrInvalidIncentiveAmount          = errors.Register(ModuleName, 4, "invalid incentive amount")
	ErrIncentiveFeeNotPaid             = errors.Register(ModuleName, 5, "incentive creation fee not paid")
	ErrAssetMismatch                   = errors.Register(ModuleName, 6, "asset mismatch")
	ErrInvalidEpoch                    = errors.Register(ModuleName, 7, "invalid incentive epochs")
	ErrIncentiveStartTooFar            = errors.Register(ModuleName, 8, "incentive start epoch is too far in the future")
	ErrIncentiveAlreadyExists          = errors.Register(ModuleName, 9, "incentive already exists")
	ErrIncentiveAlreadyExpired         = errors.Register(ModuleName, 10, "incentive already expired")
	ErrInvalidExpansionAmount          = errors.Register(ModuleName, 11, "expansion amount must be a multiple of the emission rate")
	ErrIncentiveNotFound               = errors.Register(ModuleName, 12, "incentive not found")
	ErrUnspecifiedConcurrentIncentives = errors.Register(ModuleName, 13, "max concurrent incentives must be positive")
	ErrInvalidUnlockingRange           = errors.Register(ModuleName, 14, "invalid unlocking duration range")
	ErrInvalidEmergencyUnlockPenalty   = errors.Register(ModuleName, 15, "invalid emergency unlock penalty")
	ErrInvalidUnlockingDuration        = errors.Register(ModuleName, 16, "unlocking duration outside the allowed range")
	ErrPositionNotFound                = errors.Register(ModuleName, 17, "position not found")
	ErrPositionAlreadyClosed           = errors.Register(ModuleName, 18, "position already closed")
	ErrPositionNotUnlocked             = errors.Register(ModuleName, 19, "position is still locked")
	ErrInvalidLPDenom                  = errors.Register(ModuleName, 20, "invalid lp denom")
	ErrNothingToClaim                  = errors.Register(ModuleName, 21, "nothing to claim")
	ErrInvalidConfig                   = errors.Register(ModuleName, 22, "invalid config")
	ErrInvalidAddress                  = errors.Register(ModuleName, 23, "invalid address")
	ErrInvalidIdentifier               = errors.Register(ModuleName, 24, "invalid identifier")
	ErrInvalidPositionAmount           = errors.Register(ModuleName, 25, "invalid position amount")
	ErrNoEpoch                         = errors.Register(ModuleName, 26, "no epoch has started")
)
