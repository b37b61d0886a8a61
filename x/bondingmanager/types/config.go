package types

import (
	"time"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Config is the owner-controlled configuration of the bonding manager.
type Config struct {
	Owner string `json:"owner"`
	// FeeCollector is the only address allowed to create epochs.
	FeeCollector string `json:"fee_collector"`
	// BondingAssets are the denoms that may be bonded.
	BondingAssets []string `json:"bonding_assets"`
	// UnbondingPeriod is how long unbonded funds wait before withdrawal.
	UnbondingPeriod time.Duration `json:"unbonding_period"`
	// GrowthRate is the weight gained per epoch by each bonded unit.
	GrowthRate math.LegacyDec `json:"growth_rate"`
	// GracePeriod is the number of claimable epochs.
	GracePeriod uint64 `json:"grace_period"`
	// MaxUnbondingEntries bounds the pending unbondings per address and denom.
	MaxUnbondingEntries uint32 `json:"max_unbonding_entries"`
}

// DefaultConfig returns the default config
func DefaultConfig() Config {
	return Config{
		BondingAssets:       []string{"ampWHALE", "bWHALE"},
		UnbondingPeriod:     14 * 24 * time.Hour,
		GrowthRate:          math.LegacyMustNewDecFromStr("0.000000064"),
		GracePeriod:         DefaultGracePeriod,
		MaxUnbondingEntries: 7,
	}
}

// Validate validates the config
func (c Config) Validate() error {
	for _, addr := range []string{c.Owner, c.FeeCollector} {
		if addr == "" {
			continue
		}
		if _, err := sdk.AccAddressFromBech32(addr); err != nil {
			return errors.Wrapf(ErrInvalidAddress, "%s: %s", addr, err)
		}
	}
	if len(c.BondingAssets) == 0 {
		return ErrInvalidBondingAsset.Wrap("no bonding assets")
	}
	seen := make(map[string]bool, len(c.BondingAssets))
	for _, denom := range c.BondingAssets {
		if err := sdk.ValidateDenom(denom); err != nil {
			return errors.Wrapf(ErrInvalidBondingAsset, "%s: %s", denom, err)
		}
		if seen[denom] {
			return ErrInvalidBondingAsset.Wrapf("duplicate %s", denom)
		}
		seen[denom] = true
	}
	if c.UnbondingPeriod < 0 {
		return ErrInvalidConfig.Wrapf("negative unbonding period %s", c.UnbondingPeriod)
	}
	if c.GrowthRate.IsNil() || c.GrowthRate.IsNegative() || c.GrowthRate.GT(math.LegacyOneDec()) {
		return ErrInvalidGrowthRate.Wrapf("%s outside [0,1]", c.GrowthRate)
	}
	if c.GracePeriod == 0 {
		return ErrInvalidGracePeriod.Wrap("grace period must be at least one epoch")
	}
	if c.MaxUnbondingEntries == 0 {
		return ErrInvalidConfig.Wrap("max unbonding entries must be positive")
	}
	return nil
}

// IsBondingAsset reports whether denom may be bonded.
func (c Config) IsBondingAsset(denom string) bool {
	for _, d := range c.BondingAssets {
		if d == denom {
			return true
		}
	}
	return false
}
