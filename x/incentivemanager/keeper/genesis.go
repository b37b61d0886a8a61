package keeper

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/lhub/x/incentivemanager/types"
)

// InitGenesis initializes the incentive manager's state from a genesis state
func (k Keeper) InitGenesis(ctx context.Context, genState types.GenesisState) error {
	if err := genState.Validate(); err != nil {
		return err
	}
	if err := k.SetConfig(ctx, genState.Config); err != nil {
		return fmt.Errorf("failed to set config: %w", err)
	}

	store := k.getStore(ctx)
	store.Set(IncentiveCounterKey, uint64Bytes(genState.IncentiveCounter))
	store.Set(PositionCounterKey, uint64Bytes(genState.PositionCounter))

	for _, incentive := range genState.Incentives {
		if err := k.SetIncentive(ctx, incentive); err != nil {
			return fmt.Errorf("failed to set incentive %s: %w", incentive.Identifier, err)
		}
	}
	for _, position := range genState.Positions {
		if err := k.SetPosition(ctx, position); err != nil {
			return fmt.Errorf("failed to set position %s: %w", position.Identifier, err)
		}
	}
	for _, w := range genState.LPWeights {
		addr, err := sdk.AccAddressFromBech32(w.Address)
		if err != nil {
			return fmt.Errorf("invalid weight address %s: %w", w.Address, err)
		}
		if err := k.SetLPWeight(ctx, addr, w.LPDenom, w.Epoch, w.Weight); err != nil {
			return err
		}
	}
	for _, rec := range genState.ClaimRecords {
		addr, err := sdk.AccAddressFromBech32(rec.Address)
		if err != nil {
			return fmt.Errorf("invalid claim record address %s: %w", rec.Address, err)
		}
		k.SetLastClaimedEpoch(ctx, addr, rec.LastClaimedEpoch)
	}
	return nil
}

// ExportGenesis returns the incentive manager's exported genesis
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	cfg, err := k.GetConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}
	incentives, err := k.GetAllIncentives(ctx)
	if err != nil {
		return nil, err
	}
	positions, err := k.GetAllPositions(ctx)
	if err != nil {
		return nil, err
	}
	weights, err := k.GetAllLPWeights(ctx)
	if err != nil {
		return nil, err
	}

	var records []types.ClaimRecord
	k.IterateLastClaimedEpochs(ctx, func(addr sdk.AccAddress, epoch uint64) {
		records = append(records, types.ClaimRecord{Address: addr.String(), LastClaimedEpoch: epoch})
	})

	return &types.GenesisState{
		Config:           cfg,
		Incentives:       incentives,
		Positions:        positions,
		IncentiveCounter: k.getCounter(ctx, IncentiveCounterKey),
		PositionCounter:  k.getCounter(ctx, PositionCounterKey),
		LPWeights:        weights,
		ClaimRecords:     records,
	}, nil
}
