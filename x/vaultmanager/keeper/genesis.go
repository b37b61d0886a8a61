package keeper

import (
	"context"
	"fmt"

	"github.com/paw-chain/lhub/x/vaultmanager/types"
)

// InitGenesis initializes the vault manager state from genesis
func (k Keeper) InitGenesis(ctx context.Context, gs types.GenesisState) error {
	if err := gs.Validate(); err != nil {
		return fmt.Errorf("invalid genesis state: %w", err)
	}
	if err := k.SetConfig(ctx, gs.Config); err != nil {
		return fmt.Errorf("failed to set config: %w", err)
	}
	for _, vault := range gs.Vaults {
		if err := k.SetVault(ctx, vault); err != nil {
			return fmt.Errorf("failed to set vault %s: %w", vault.Identifier, err)
		}
	}
	k.SetVaultCounter(ctx, gs.VaultCounter)
	return nil
}

// ExportGenesis exports the vault manager state
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	vaults, err := k.GetAllVaults(ctx)
	if err != nil {
		return nil, err
	}
	if vaults == nil {
		vaults = []types.Vault{}
	}
	return &types.GenesisState{
		Config:       cfg,
		Vaults:       vaults,
		VaultCounter: k.GetVaultCounter(ctx),
	}, nil
}
