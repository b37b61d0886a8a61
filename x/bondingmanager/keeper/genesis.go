package keeper

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/lhub/x/bondingmanager/types"
)

// InitGenesis initializes the bonding manager state from genesis
func (k Keeper) InitGenesis(ctx context.Context, gs types.GenesisState) error {
	if err := gs.Validate(); err != nil {
		return fmt.Errorf("invalid genesis state: %w", err)
	}
	if err := k.SetConfig(ctx, gs.Config); err != nil {
		return fmt.Errorf("failed to set config: %w", err)
	}
	for _, epoch := range gs.Epochs {
		if err := k.SetEpoch(ctx, epoch); err != nil {
			return fmt.Errorf("failed to set epoch %d: %w", epoch.ID, err)
		}
	}
	k.setLastEpochID(ctx, uint64(len(gs.Epochs)))
	if err := k.SetGlobalIndex(ctx, gs.GlobalIndex); err != nil {
		return err
	}
	for _, bond := range gs.Bonds {
		if err := k.SetBond(ctx, bond); err != nil {
			return fmt.Errorf("failed to set bond of %s: %w", bond.Address, err)
		}
	}
	for _, u := range gs.Unbondings {
		if err := k.addUnbonding(ctx, u); err != nil {
			return fmt.Errorf("failed to set unbonding of %s: %w", u.Address, err)
		}
	}
	for _, rec := range gs.ClaimRecords {
		addr, err := sdk.AccAddressFromBech32(rec.Address)
		if err != nil {
			return types.ErrInvalidAddress.Wrapf("claim record: %s", err)
		}
		k.SetLastClaimedEpoch(ctx, addr, rec.LastClaimedEpoch)
	}
	return nil
}

// ExportGenesis exports the bonding manager state
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	gs := types.DefaultGenesis()
	gs.Config = cfg

	if epochs, err := k.GetAllEpochs(ctx); err != nil {
		return nil, err
	} else if epochs != nil {
		gs.Epochs = epochs
	}
	if gs.GlobalIndex, err = k.GetGlobalIndex(ctx); err != nil {
		return nil, err
	}
	if bonds, err := k.GetAllBonds(ctx); err != nil {
		return nil, err
	} else if bonds != nil {
		gs.Bonds = bonds
	}
	if unbondings, err := k.GetAllUnbondings(ctx); err != nil {
		return nil, err
	} else if unbondings != nil {
		gs.Unbondings = unbondings
	}
	k.IterateLastClaimedEpochs(ctx, func(addr sdk.AccAddress, epoch uint64) {
		gs.ClaimRecords = append(gs.ClaimRecords, types.ClaimRecord{Address: addr.String(), LastClaimedEpoch: epoch})
	})
	return gs, nil
}
