package app

import (
	"encoding/json"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	bondingtypes "github.com/paw-chain/lhub/x/bondingmanager/types"
	"github.com/paw-chain/lhub/x/host"
	incentivetypes "github.com/paw-chain/lhub/x/incentivemanager/types"
	pooltypes "github.com/paw-chain/lhub/x/poolmanager/types"
	vaulttypes "github.com/paw-chain/lhub/x/vaultmanager/types"
)

// GenesisState represents the genesis state of the liquidity hub
type GenesisState map[string]json.RawMessage

// EpochGenesis is the genesis of the epoch clock.
type EpochGenesis struct {
	Current *incentivetypes.Epoch `json:"current,omitempty"`
}

// NewDefaultGenesisState returns a genesis with every module configured for
// owner and feeCollector and the cross-module addresses wired together.
func NewDefaultGenesisState(owner, feeCollector sdk.AccAddress) GenesisState {
	genesis := make(GenesisState)

	genesis[BankStoreKey] = mustMarshalJSON(BankGenesis{Balances: []Balance{}})
	genesis[EpochManagerName] = mustMarshalJSON(EpochGenesis{})

	pools := pooltypes.DefaultGenesis()
	pools.Config.Owner = owner.String()
	pools.Config.FeeCollector = feeCollector.String()
	pools.Config.IncentiveManager = host.ModuleAddress(incentivetypes.ModuleName).String()
	genesis[pooltypes.ModuleName] = mustMarshalJSON(pools)

	vaults := vaulttypes.DefaultGenesis()
	vaults.Config.Owner = owner.String()
	vaults.Config.FeeCollector = feeCollector.String()
	genesis[vaulttypes.ModuleName] = mustMarshalJSON(vaults)

	incentives := incentivetypes.DefaultGenesis()
	incentives.Config.Owner = owner.String()
	incentives.Config.FeeCollector = feeCollector.String()
	incentives.Config.EpochManager = EpochManagerAddress().String()
	incentives.Config.PoolManager = host.ModuleAddress(pooltypes.ModuleName).String()
	genesis[incentivetypes.ModuleName] = mustMarshalJSON(incentives)

	bonding := bondingtypes.DefaultGenesis()
	bonding.Config.Owner = owner.String()
	bonding.Config.FeeCollector = feeCollector.String()
	genesis[bondingtypes.ModuleName] = mustMarshalJSON(bonding)

	return genesis
}

// Validate validates every module genesis.
func (gs GenesisState) Validate() error {
	var pools pooltypes.GenesisState
	if err := unmarshalModule(gs, pooltypes.ModuleName, &pools); err != nil {
		return err
	}
	if err := pools.Validate(); err != nil {
		return fmt.Errorf("%s: %w", pooltypes.ModuleName, err)
	}

	var vaults vaulttypes.GenesisState
	if err := unmarshalModule(gs, vaulttypes.ModuleName, &vaults); err != nil {
		return err
	}
	if err := vaults.Validate(); err != nil {
		return fmt.Errorf("%s: %w", vaulttypes.ModuleName, err)
	}

	var incentives incentivetypes.GenesisState
	if err := unmarshalModule(gs, incentivetypes.ModuleName, &incentives); err != nil {
		return err
	}
	if err := incentives.Validate(); err != nil {
		return fmt.Errorf("%s: %w", incentivetypes.ModuleName, err)
	}

	var bonding bondingtypes.GenesisState
	if err := unmarshalModule(gs, bondingtypes.ModuleName, &bonding); err != nil {
		return err
	}
	if err := bonding.Validate(); err != nil {
		return fmt.Errorf("%s: %w", bondingtypes.ModuleName, err)
	}
	return nil
}

// Helper functions
func mustMarshalJSON(v interface{}) json.RawMessage {
	bz, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return bz
}
