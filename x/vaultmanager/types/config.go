package types

import (
	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Config is the owner-controlled configuration of the vault manager.
type Config struct {
	Owner        string `json:"owner"`
	FeeCollector string `json:"fee_collector"`
	// VaultCreationFee must be attached to every CreateVault.
	VaultCreationFee sdk.Coin `json:"vault_creation_fee"`
}

// DefaultConfig returns a config with no creation fee and no owner.
func DefaultConfig() Config {
	return Config{VaultCreationFee: sdk.NewCoin("uwhale", math.ZeroInt())}
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
	if err := c.VaultCreationFee.Validate(); err != nil {
		return errors.Wrapf(ErrInvalidVaultCreationFee, "%s", err)
	}
	return nil
}
