package keeper

import (
	"context"
	"fmt"

	"github.com/paw-chain/lhub/x/poolmanager/types"
)

// InitGenesis initializes the pool manager's state from a genesis state
func (k Keeper) InitGenesis(ctx context.Context, genState types.GenesisState) error {
	if err := genState.Validate(); err != nil {
		return err
	}
	if err := k.SetConfig(ctx, genState.Config); err != nil {
		return fmt.Errorf("failed to set config: %w", err)
	}
	k.SetPoolCounter(ctx, genState.PoolCounter)

	for _, pool := range genState.Pools {
		if err := k.SetPool(ctx, pool); err != nil {
			return fmt.Errorf("failed to set pool %s: %w", pool.Identifier, err)
		}
	}
	for _, route := range genState.SwapRoutes {
		if err := k.SetSwapRoute(ctx, route); err != nil {
			return fmt.Errorf("failed to set swap route %s -> %s: %w", route.OfferDenom, route.AskDenom, err)
		}
	}
	return nil
}

// ExportGenesis returns the pool manager's exported genesis
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}
	pools, err := k.GetAllPools(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get pools: %w", err)
	}
	routes, err := k.GetAllSwapRoutes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get swap routes: %w", err)
	}
	return &types.GenesisState{
		Config:      cfg,
		Pools:       pools,
		SwapRoutes:  routes,
		PoolCounter: k.GetPoolCounter(ctx),
	}, nil
}
