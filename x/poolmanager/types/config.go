package types

import (
	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Config is the owner-controlled configuration of the pool manager.
type Config struct {
	// Owner may update the config, pool features and swap routes.
	Owner string `json:"owner"`
	// FeeCollector receives protocol fees and pool creation fees.
	FeeCollector string `json:"fee_collector"`
	// PoolCreationFee must be attached to every CreatePool.
	PoolCreationFee sdk.Coin `json:"pool_creation_fee"`
	// IncentiveManager is the address liquidity is locked into when a
	// provider asks for an unlocking duration.
	IncentiveManager string `json:"incentive_manager"`
}

// DefaultConfig returns a config with no creation fee and no owner.
func DefaultConfig() Config {
	return Config{
		PoolCreationFee: sdk.NewCoin("uwhale", math.ZeroInt()),
	}
}

// Validate validates the config
func (c Config) Validate() error {
	for _, addr := range []string{c.Owner, c.FeeCollector, c.IncentiveManager} {
		if addr == "" {
			continue
		}
		if _, err := sdk.AccAddressFromBech32(addr); err != nil {
			return errors.Wrapf(ErrInvalidAddress, "%s: %s", addr, err)
		}
	}
	if err := c.PoolCreationFee.Validate(); err != nil {
		return errors.Wrapf(ErrInvalidPoolCreationFee, "%s", err)
	}
	return nil
}
