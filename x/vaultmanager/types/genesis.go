package types

import (
	"fmt"
)

// GenesisState defines the vault manager genesis state
type GenesisState struct {
	Config       Config  `json:"config"`
	Vaults       []Vault `json:"vaults"`
	VaultCounter uint64  `json:"vault_counter"`
}

// DefaultGenesis returns the default genesis state
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Config: DefaultConfig(),
		Vaults: []Vault{},
	}
}

// Validate performs basic genesis state validation
func (gs GenesisState) Validate() error {
	if err := gs.Config.Validate(); err != nil {
		return err
	}
	seen := make(map[string]bool, len(gs.Vaults))
	for _, v := range gs.Vaults {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("vault %s: %w", v.Identifier, err)
		}
		if seen[v.Identifier] {
			return ErrVaultExists.Wrapf("duplicate vault %s in genesis", v.Identifier)
		}
		if v.LoanCounter != 0 {
			return ErrLoanInProgress.Wrapf("vault %s has a loan in flight", v.Identifier)
		}
		seen[v.Identifier] = true
	}
	return nil
}
