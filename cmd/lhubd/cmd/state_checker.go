package cmd

import (
	"sync"

	bondingtypes "github.com/paw-chain/lhub/x/bondingmanager/types"
	incentivetypes "github.com/paw-chain/lhub/x/incentivemanager/types"
	pooltypes "github.com/paw-chain/lhub/x/poolmanager/types"
	vaulttypes "github.com/paw-chain/lhub/x/vaultmanager/types"
)

// runnerChecker reports on the state a Runner left behind.
type runnerChecker struct {
	mu sync.Mutex
	r  *Runner
}

// NewStateChecker returns a StateChecker over the app of r.
func NewStateChecker(r *Runner) StateChecker {
	return &runnerChecker{r: r}
}

func (c *runnerChecker) CheckInvariants() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.r.App.AssertInvariants(c.r.ctx)
}

func (c *runnerChecker) CurrentEpoch() (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	epoch, err := c.r.App.Epochs.CurrentEpoch(c.r.ctx)
	if err != nil {
		return 0, err
	}
	return epoch.ID, nil
}

func (c *runnerChecker) BlockHeight() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.r.ctx.BlockHeight()
}

func (c *runnerChecker) Modules() map[string]ModuleHealth {
	c.mu.Lock()
	defer c.mu.Unlock()
	ctx, a := c.r.ctx, c.r.App

	modules := make(map[string]ModuleHealth)
	module := func(name string, err error, metrics map[string]any) {
		if err != nil {
			modules[name] = ModuleHealth{Status: "unhealthy", Metrics: map[string]any{"error": err.Error()}}
			return
		}
		modules[name] = ModuleHealth{Status: "ok", Metrics: metrics}
	}

	pools, err := a.PoolManager.GetAllPools(ctx)
	module(pooltypes.ModuleName, err, map[string]any{"pools": len(pools)})

	vaults, err := a.VaultManager.GetAllVaults(ctx)
	module(vaulttypes.ModuleName, err, map[string]any{
		"vaults":       len(vaults),
		"active_loans": a.VaultManager.GetActiveLoanCount(ctx),
	})

	incentives, err := a.IncentiveManager.GetAllIncentives(ctx)
	if err == nil {
		var positions []incentivetypes.Position
		positions, err = a.IncentiveManager.GetAllPositions(ctx)
		module(incentivetypes.ModuleName, err, map[string]any{
			"incentives": len(incentives),
			"positions":  len(positions),
		})
	} else {
		module(incentivetypes.ModuleName, err, nil)
	}

	global, err := a.BondingManager.GetGlobalIndex(ctx)
	if err == nil {
		var epochs []bondingtypes.Epoch
		epochs, err = a.BondingManager.GetClaimableEpochs(ctx)
		module(bondingtypes.ModuleName, err, map[string]any{
			"bonded":           global.Bonded.String(),
			"claimable_epochs": len(epochs),
		})
	} else {
		module(bondingtypes.ModuleName, err, nil)
	}
	return modules
}
