// Package app wires the liquidity hub modules into a single in-process
// application: one multistore, a store-backed bank, the epoch clock and the
// message router every module handler is registered on.
//
// Messages are delivered one at a time through the router, which runs each
// in a branch of the block context and commits only on success.
package app

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"

	bondingkeeper "github.com/paw-chain/lhub/x/bondingmanager/keeper"
	bondingtypes "github.com/paw-chain/lhub/x/bondingmanager/types"
	"github.com/paw-chain/lhub/x/host"
	incentivekeeper "github.com/paw-chain/lhub/x/incentivemanager/keeper"
	incentivetypes "github.com/paw-chain/lhub/x/incentivemanager/types"
	poolkeeper "github.com/paw-chain/lhub/x/poolmanager/keeper"
	pooltypes "github.com/paw-chain/lhub/x/poolmanager/types"
	vaultkeeper "github.com/paw-chain/lhub/x/vaultmanager/keeper"
	vaulttypes "github.com/paw-chain/lhub/x/vaultmanager/types"
)

const (
	Name = "lhub"

	// BankStoreKey is the store of the ledger bank.
	BankStoreKey = "bank"

	// DefaultEpochDuration is the length of an incentive epoch.
	DefaultEpochDuration = 24 * time.Hour
)

// Options configures a new App.
type Options struct {
	EpochDuration time.Duration
	ChainID       string
	GenesisTime   time.Time
}

// DefaultOptions returns daily epochs on a fixed genesis time.
func DefaultOptions() Options {
	return Options{
		EpochDuration: DefaultEpochDuration,
		ChainID:       "lhub-local",
		GenesisTime:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// App is the liquidity hub application.
type App struct {
	logger log.Logger
	cms    storetypes.CommitMultiStore
	keys   map[string]*storetypes.KVStoreKey
	header cmtproto.Header

	Bank             *LedgerBank
	Epochs           *EpochKeeper
	Router           *host.Router
	PoolManager      *poolkeeper.Keeper
	VaultManager     *vaultkeeper.Keeper
	IncentiveManager *incentivekeeper.Keeper
	BondingManager   *bondingkeeper.Keeper

	invariants *InvariantRegistry
}

// NewApp mounts every module store on db and registers every handler.
func NewApp(logger log.Logger, db dbm.DB, opts Options) (*App, error) {
	keys := storetypes.NewKVStoreKeys(
		BankStoreKey,
		EpochManagerName,
		pooltypes.StoreKey,
		vaulttypes.StoreKey,
		incentivetypes.StoreKey,
		bondingtypes.StoreKey,
	)

	cms := store.NewCommitMultiStore(db, logger, metrics.NewNoOpMetrics())
	for _, key := range keys {
		cms.MountStoreWithDB(key, storetypes.StoreTypeIAVL, nil)
	}
	if err := cms.LoadLatestVersion(); err != nil {
		return nil, fmt.Errorf("failed to load multistore: %w", err)
	}

	app := &App{
		logger: logger,
		cms:    cms,
		keys:   keys,
		header: cmtproto.Header{
			ChainID: opts.ChainID,
			Height:  cms.LastCommitID().Version + 1,
			Time:    opts.GenesisTime,
		},
		invariants: NewInvariantRegistry(),
	}

	app.Bank = NewLedgerBank(keys[BankStoreKey])
	app.Epochs = NewEpochKeeper(keys[EpochManagerName], opts.EpochDuration)
	app.Router = host.NewRouter(app.Bank)

	app.PoolManager = poolkeeper.NewKeeper(keys[pooltypes.StoreKey], app.Bank)
	app.VaultManager = vaultkeeper.NewKeeper(keys[vaulttypes.StoreKey], app.Bank)
	app.IncentiveManager = incentivekeeper.NewKeeper(keys[incentivetypes.StoreKey], app.Bank, app.Epochs)
	app.BondingManager = bondingkeeper.NewKeeper(keys[bondingtypes.StoreKey], app.Bank)

	app.Router.
		AddRoute(pooltypes.ModuleName, poolkeeper.NewHandler(app.PoolManager)).
		AddRoute(vaulttypes.ModuleName, vaultkeeper.NewHandler(app.VaultManager)).
		AddRoute(incentivetypes.ModuleName, incentivekeeper.NewHandler(app.IncentiveManager)).
		AddRoute(bondingtypes.ModuleName, bondingkeeper.NewHandler(app.BondingManager))

	poolkeeper.RegisterInvariants(app.invariants, *app.PoolManager)
	vaultkeeper.RegisterInvariants(app.invariants, *app.VaultManager)
	incentivekeeper.RegisterInvariants(app.invariants, *app.IncentiveManager)
	bondingkeeper.RegisterInvariants(app.invariants, *app.BondingManager)

	return app, nil
}

// Logger returns the application logger.
func (app *App) Logger() log.Logger {
	return app.logger
}

// Context returns a context over the working state at the current header.
func (app *App) Context() sdk.Context {
	return sdk.NewContext(app.cms, app.header, false, app.logger)
}

// BlockTime returns the time of the current block.
func (app *App) BlockTime() time.Time {
	return app.header.Time
}

// Commit persists the working state and opens the next block d later.
func (app *App) Commit(d time.Duration) storetypes.CommitID {
	id := app.cms.Commit()
	app.header.Height = id.Version + 1
	app.header.Time = app.header.Time.Add(d)
	return id
}

// BeginBlock starts a new epoch when the running one is over.
func (app *App) BeginBlock(ctx sdk.Context) error {
	if !app.Epochs.Due(ctx) {
		return nil
	}
	_, err := app.AdvanceEpoch(ctx)
	return err
}

// AdvanceEpoch starts the next epoch and notifies the incentive manager.
func (app *App) AdvanceEpoch(ctx sdk.Context) (incentivetypes.Epoch, error) {
	epoch, err := app.Epochs.next(ctx)
	if err != nil {
		return incentivetypes.Epoch{}, err
	}
	if _, err := app.Router.Dispatch(ctx, EpochManagerAddress(), incentivetypes.MsgOnEpochChanged{Epoch: epoch}, nil); err != nil {
		return incentivetypes.Epoch{}, fmt.Errorf("epoch %d: %w", epoch.ID, err)
	}
	app.logger.Info("epoch started", "epoch", epoch.ID, "start_time", epoch.StartTime)
	return epoch, nil
}

// Deliver runs msg from sender with funds attached.
func (app *App) Deliver(ctx sdk.Context, sender sdk.AccAddress, msg host.Msg, funds ...sdk.Coin) (*host.Response, error) {
	return app.Router.Dispatch(ctx, sender, msg, sdk.NewCoins(funds...))
}

// AssertInvariants runs every registered invariant and returns the first
// broken one as an error.
func (app *App) AssertInvariants(ctx sdk.Context) error {
	return app.invariants.Assert(ctx)
}

// InitGenesis loads every module genesis.
func (app *App) InitGenesis(ctx sdk.Context, gs GenesisState) error {
	var bank BankGenesis
	if err := unmarshalModule(gs, BankStoreKey, &bank); err != nil {
		return err
	}
	if err := app.Bank.InitGenesis(ctx, bank); err != nil {
		return err
	}

	var epochs EpochGenesis
	if err := unmarshalModule(gs, EpochManagerName, &epochs); err != nil {
		return err
	}
	if epochs.Current != nil {
		if err := app.Epochs.SetEpoch(ctx, *epochs.Current); err != nil {
			return err
		}
	}

	var pools pooltypes.GenesisState
	if err := unmarshalModule(gs, pooltypes.ModuleName, &pools); err != nil {
		return err
	}
	if err := app.PoolManager.InitGenesis(ctx, pools); err != nil {
		return fmt.Errorf("%s: %w", pooltypes.ModuleName, err)
	}

	var vaults vaulttypes.GenesisState
	if err := unmarshalModule(gs, vaulttypes.ModuleName, &vaults); err != nil {
		return err
	}
	if err := app.VaultManager.InitGenesis(ctx, vaults); err != nil {
		return fmt.Errorf("%s: %w", vaulttypes.ModuleName, err)
	}

	var incentives incentivetypes.GenesisState
	if err := unmarshalModule(gs, incentivetypes.ModuleName, &incentives); err != nil {
		return err
	}
	if err := app.IncentiveManager.InitGenesis(ctx, incentives); err != nil {
		return fmt.Errorf("%s: %w", incentivetypes.ModuleName, err)
	}

	var bonding bondingtypes.GenesisState
	if err := unmarshalModule(gs, bondingtypes.ModuleName, &bonding); err != nil {
		return err
	}
	if err := app.BondingManager.InitGenesis(ctx, bonding); err != nil {
		return fmt.Errorf("%s: %w", bondingtypes.ModuleName, err)
	}
	return nil
}

// ExportGenesis exports every module genesis.
func (app *App) ExportGenesis(ctx sdk.Context) (GenesisState, error) {
	gs := make(GenesisState)
	gs[BankStoreKey] = mustMarshalJSON(app.Bank.ExportGenesis(ctx))

	var epochs EpochGenesis
	if current, err := app.Epochs.CurrentEpoch(ctx); err == nil {
		epochs.Current = &current
	}
	gs[EpochManagerName] = mustMarshalJSON(epochs)

	pools, err := app.PoolManager.ExportGenesis(ctx)
	if err != nil {
		return nil, err
	}
	gs[pooltypes.ModuleName] = mustMarshalJSON(pools)

	vaults, err := app.VaultManager.ExportGenesis(ctx)
	if err != nil {
		return nil, err
	}
	gs[vaulttypes.ModuleName] = mustMarshalJSON(vaults)

	incentives, err := app.IncentiveManager.ExportGenesis(ctx)
	if err != nil {
		return nil, err
	}
	gs[incentivetypes.ModuleName] = mustMarshalJSON(incentives)

	bonding, err := app.BondingManager.ExportGenesis(ctx)
	if err != nil {
		return nil, err
	}
	gs[bondingtypes.ModuleName] = mustMarshalJSON(bonding)
	return gs, nil
}

func unmarshalModule(gs GenesisState, module string, v any) error {
	bz, ok := gs[module]
	if !ok {
		return fmt.Errorf("genesis state has no %s entry", module)
	}
	if err := json.Unmarshal(bz, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s genesis: %w", module, err)
	}
	return nil
}

// InvariantRegistry collects module invariants.
type InvariantRegistry struct {
	routes map[string]sdk.Invariant
}

// NewInvariantRegistry returns an empty registry.
func NewInvariantRegistry() *InvariantRegistry {
	return &InvariantRegistry{routes: make(map[string]sdk.Invariant)}
}

// RegisterRoute implements sdk.InvariantRegistry.
func (r *InvariantRegistry) RegisterRoute(moduleName, route string, invar sdk.Invariant) {
	r.routes[moduleName+"/"+route] = invar
}

// Routes lists the registered invariant routes.
func (r *InvariantRegistry) Routes() []string {
	out := make([]string, 0, len(r.routes))
	for name := range r.routes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Assert runs every invariant in route order.
func (r *InvariantRegistry) Assert(ctx sdk.Context) error {
	for _, name := range r.Routes() {
		if msg, broken := r.routes[name](ctx); broken {
			return fmt.Errorf("invariant %s broken: %s", name, msg)
		}
	}
	return nil
}
