package types

import (
	"fmt"
)

// GenesisState defines the pool manager genesis state
type GenesisState struct {
	Config      Config      `json:"config"`
	Pools       []Pool      `json:"pools"`
	SwapRoutes  []SwapRoute `json:"swap_routes"`
	PoolCounter uint64      `json:"pool_counter"`
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

	seen := make(map[string]struct{}, len(gs.Pools))
	for _, pool := range gs.Pools {
		if _, dup := seen[pool.Identifier]; dup {
			return fmt.Errorf("duplicate pool %s", pool.Identifier)
		}
		seen[pool.Identifier] = struct{}{}
		if err := pool.Validate(); err != nil {
			return fmt.Errorf("invalid pool %s: %w", pool.Identifier, err)
		}
	}

	for _, route := range gs.SwapRoutes {
		if err := route.Validate(); err != nil {
			return fmt.Errorf("invalid swap route %s -> %s: %w", route.OfferDenom, route.AskDenom, err)
		}
	}
	return nil
}
