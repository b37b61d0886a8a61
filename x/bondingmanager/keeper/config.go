package keeper

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/paw-chain/lhub/x/bondingmanager/types"
	"github.com/paw-chain/lhub/x/host"
)

// GetConfig returns the module config, or the default when unset.
func (k Keeper) GetConfig(ctx context.Context) (types.Config, error) {
	bz := k.getStore(ctx).Get(ConfigKey)
	if bz == nil {
		return types.DefaultConfig(), nil
	}
	var cfg types.Config
	if err := json.Unmarshal(bz, &cfg); err != nil {
		return types.Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// SetConfig validates and stores the module config.
func (k Keeper) SetConfig(ctx context.Context, cfg types.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	bz, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	k.getStore(ctx).Set(ConfigKey, bz)
	return nil
}

// UpdateConfig replaces the config. Only the current owner may call it.
func (k Keeper) UpdateConfig(ctx context.Context, info host.MessageInfo, cfg types.Config) (*host.Response, error) {
	current, err := k.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if err := host.ValidateAuthority(current.Owner, info.Sender, types.ErrUnauthorized); err != nil {
		return nil, err
	}
	if err := k.SetConfig(ctx, cfg); err != nil {
		return nil, err
	}
	return host.NewResponse().
		AddAttribute("owner", cfg.Owner).
		AddAttribute("growth_rate", cfg.GrowthRate.String()).
		AddAttribute("unbonding_period", cfg.UnbondingPeriod.String()), nil
}
