package types

import (
	"fmt"

	"cosmossdk.io/math"
)

// LPWeight is one recorded entry of the LP weight history. The module
// account's entries hold the total weight of an LP denom.
type LPWeight struct {
	Address string   `json:"address"`
	LPDenom string   `json:"lp_denom"`
	Epoch   uint64   `json:"epoch"`
	Weight  math.Int `json:"weight"`
}

// ClaimRecord is the last epoch an address claimed rewards for.
type ClaimRecord struct {
	Address          string `json:"address"`
	LastClaimedEpoch uint64 `json:"last_claimed_epoch"`
}

// GenesisState defines the incentive manager genesis state
type GenesisState struct {
	Config           Config        `json:"config"`
	Incentives       []Incentive   `json:"incentives"`
	Positions        []Position    `json:"positions"`
	IncentiveCounter uint64        `json:"incentive_counter"`
	PositionCounter  uint64        `json:"position_counter"`
	LPWeights        []LPWeight    `json:"lp_weights"`
	ClaimRecords     []ClaimRecord `json:"claim_records"`
}

// DefaultGenesis returns the default genesis state
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Config: DefaultConfig(),
	}
}

// Validate performs basic genesis state validation
func (gs GenesisState) Validate() error {
	if err := gs.Config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	seen := make(map[string]struct{}, len(gs.Incentives))
	for _, incentive := range gs.Incentives {
		if _, dup := seen[incentive.Identifier]; dup {
			return fmt.Errorf("duplicate incentive %s", incentive.Identifier)
		}
		seen[incentive.Identifier] = struct{}{}
		if err := incentive.Validate(); err != nil {
			return fmt.Errorf("invalid incentive %s: %w", incentive.Identifier, err)
		}
	}

	positions := make(map[string]struct{}, len(gs.Positions))
	for _, p := range gs.Positions {
		if _, dup := positions[p.Identifier]; dup {
			return fmt.Errorf("duplicate position %s", p.Identifier)
		}
		positions[p.Identifier] = struct{}{}
		if !p.LPAsset.IsPositive() {
			return fmt.Errorf("position %s holds no lp", p.Identifier)
		}
	}

	for _, w := range gs.LPWeights {
		if w.Weight.IsNil() || w.Weight.IsNegative() {
			return fmt.Errorf("negative weight for %s/%s at epoch %d", w.Address, w.LPDenom, w.Epoch)
		}
	}
	return nil
}
