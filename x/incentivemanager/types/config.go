package types

import (
	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Config is the owner-controlled configuration of the incentive manager.
type Config struct {
	Owner string `json:"owner"`
	// EpochManager is the only sender allowed to signal epoch changes.
	EpochManager string `json:"epoch_manager"`
	// FeeCollector receives incentive creation fees and emergency unlock
	// penalties.
	FeeCollector string `json:"fee_collector"`
	// PoolManager may open positions on behalf of a receiver.
	PoolManager string `json:"pool_manager"`

	CreateIncentiveFee      sdk.Coin `json:"create_incentive_fee"`
	MaxConcurrentIncentives uint32   `json:"max_concurrent_incentives"`
	MaxIncentiveEpochBuffer uint32   `json:"max_incentive_epoch_buffer"`

	// Unlocking durations are in seconds.
	MinUnlockingDuration   uint64         `json:"min_unlocking_duration"`
	MaxUnlockingDuration   uint64         `json:"max_unlocking_duration"`
	EmergencyUnlockPenalty math.LegacyDec `json:"emergency_unlock_penalty"`
}

// DefaultConfig returns the default incentive manager config: one day to one
// year unlocking, a 1% emergency unlock penalty and no creation fee.
func DefaultConfig() Config {
	return Config{
		CreateIncentiveFee:      sdk.NewCoin("uwhale", math.ZeroInt()),
		MaxConcurrentIncentives: 5,
		MaxIncentiveEpochBuffer: 14,
		MinUnlockingDuration:    86_400,
		MaxUnlockingDuration:    31_556_926,
		EmergencyUnlockPenalty:  math.LegacyNewDecWithPrec(1, 2),
	}
}

// Validate validates the config
func (c Config) Validate() error {
	for _, addr := range []string{c.Owner, c.EpochManager, c.FeeCollector, c.PoolManager} {
		if addr == "" {
			continue
		}
		if _, err := sdk.AccAddressFromBech32(addr); err != nil {
			return errors.Wrapf(ErrInvalidAddress, "%s: %s", addr, err)
		}
	}
	if err := c.CreateIncentiveFee.Validate(); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "create incentive fee: %s", err)
	}
	if c.MaxConcurrentIncentives == 0 {
		return ErrUnspecifiedConcurrentIncentives
	}
	if c.MaxUnlockingDuration < c.MinUnlockingDuration {
		return ErrInvalidUnlockingRange.Wrapf("min %d, max %d", c.MinUnlockingDuration, c.MaxUnlockingDuration)
	}
	if c.EmergencyUnlockPenalty.IsNil() || c.EmergencyUnlockPenalty.IsNegative() || c.EmergencyUnlockPenalty.GT(math.LegacyOneDec()) {
		return ErrInvalidEmergencyUnlockPenalty.Wrapf("%s outside [0,1]", c.EmergencyUnlockPenalty)
	}
	return nil
}
