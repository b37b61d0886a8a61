package app_test

import (
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/lhub/app"
	keepertest "github.com/paw-chain/lhub/testutil/keeper"
	incentivetypes "github.com/paw-chain/lhub/x/incentivemanager/types"
	pooltypes "github.com/paw-chain/lhub/x/poolmanager/types"
	vaulttypes "github.com/paw-chain/lhub/x/vaultmanager/types"
)

func seed(t *testing.T, env *keepertest.TestEnv) {
	t.Helper()
	alice := keepertest.Addr("alice")
	env.Fund(t, alice, sdk.NewInt64Coin("uwhale", 10_000_000_000), sdk.NewInt64Coin("uluna", 10_000_000_000))

	env.Deliver(t, alice, pooltypes.MsgCreatePool{
		AssetDenoms:   []string{"uwhale", "uluna"},
		AssetDecimals: []uint32{6, 6},
		Fees:          pooltypes.ZeroFees(),
		PairType:      pooltypes.NewConstantProduct(),
		Identifier:    "whale-luna",
	})
	env.Deliver(t, alice, pooltypes.MsgProvideLiquidity{PoolIdentifier: "whale-luna", UnlockingDuration: 86_400},
		sdk.NewInt64Coin("uwhale", 1_000_000_000), sdk.NewInt64Coin("uluna", 1_000_000_000))
	env.Deliver(t, alice, pooltypes.MsgSwap{PoolIdentifier: "whale-luna", AskDenom: "uluna"},
		sdk.NewInt64Coin("uwhale", 1_000_000))

	env.Deliver(t, alice, vaulttypes.MsgCreateVault{
		AssetDenom: "uwhale",
		Fees: vaulttypes.VaultFees{
			ProtocolFee:  math.LegacyNewDecWithPrec(1, 3),
			FlashLoanFee: math.LegacyNewDecWithPrec(2, 3),
		},
		Identifier: "whale",
	})
	deposit := sdk.NewInt64Coin("uwhale", 5_000_000)
	env.Deliver(t, alice, vaulttypes.MsgDeposit{VaultIdentifier: "whale", Amount: deposit}, deposit)
	env.AdvanceEpoch(t)
}

func TestGenesisRoundTrip(t *testing.T) {
	env := keepertest.SetupTestApp(t)
	env.AdvanceEpoch(t)
	seed(t, env)
	env.AssertInvariants(t)

	exported, err := env.App.ExportGenesis(env.Ctx)
	require.NoError(t, err)
	require.NoError(t, exported.Validate())

	fresh, err := app.NewApp(log.NewNopLogger(), dbm.NewMemDB(), app.DefaultOptions())
	require.NoError(t, err)
	ctx := fresh.Context()
	require.NoError(t, fresh.InitGenesis(ctx, exported))
	require.NoError(t, fresh.AssertInvariants(ctx))

	reexported, err := fresh.ExportGenesis(ctx)
	require.NoError(t, err)
	for module, bz := range exported {
		require.JSONEq(t, string(bz), string(reexported[module]), module)
	}

	epoch, err := fresh.Epochs.CurrentEpoch(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(2), epoch.ID)
}

func TestGenesisValidateRequiresEveryModule(t *testing.T) {
	gs := app.NewDefaultGenesisState(keepertest.Addr("owner"), keepertest.Addr("fees"))
	require.NoError(t, gs.Validate())

	delete(gs, vaulttypes.ModuleName)
	require.ErrorContains(t, gs.Validate(), vaulttypes.ModuleName)
}

func TestInvariantRegistry(t *testing.T) {
	env := keepertest.SetupTestApp(t)

	registry := app.NewInvariantRegistry()
	registry.RegisterRoute("b", "second", func(sdk.Context) (string, bool) { return "", false })
	registry.RegisterRoute("a", "first", func(sdk.Context) (string, bool) { return "", false })
	require.Equal(t, []string{"a/first", "b/second"}, registry.Routes())
	require.NoError(t, registry.Assert(env.Ctx))

	registry.RegisterRoute("c", "broken", func(sdk.Context) (string, bool) {
		return sdk.FormatInvariant("c", "broken", "always"), true
	})
	require.ErrorContains(t, registry.Assert(env.Ctx), "c/broken")

	// moving reserves out of a module account behind its keeper's back
	require.NoError(t, env.App.AssertInvariants(env.Ctx))
	env.AdvanceEpoch(t)
	seed(t, env)
	require.NoError(t, env.App.Bank.SendCoins(env.Ctx, env.App.PoolManager.ModuleAddress(), keepertest.Addr("thief"),
		sdk.NewCoins(sdk.NewInt64Coin("uluna", 1))))
	require.Error(t, env.App.AssertInvariants(env.Ctx))
}

func TestBeginBlockStartsEpochs(t *testing.T) {
	env := keepertest.SetupTestApp(t)

	require.NoError(t, env.App.BeginBlock(env.Ctx))
	first, err := env.App.Epochs.CurrentEpoch(env.Ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), first.ID)

	env.AdvanceTime(app.DefaultEpochDuration - time.Second)
	require.NoError(t, env.App.BeginBlock(env.Ctx))
	current, err := env.App.Epochs.CurrentEpoch(env.Ctx)
	require.NoError(t, err)
	require.Equal(t, first.ID, current.ID)

	env.AdvanceTime(time.Second)
	require.NoError(t, env.App.BeginBlock(env.Ctx))
	current, err = env.App.Epochs.CurrentEpoch(env.Ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(2), current.ID)
	require.True(t, env.Ctx.BlockTime().Equal(current.StartTime))
}

func TestNoEpochBeforeFirstBlock(t *testing.T) {
	env := keepertest.SetupTestApp(t)

	_, err := env.App.Epochs.CurrentEpoch(env.Ctx)
	require.ErrorIs(t, err, app.ErrNoEpochStarted)
	require.True(t, env.App.Epochs.Due(env.Ctx))

	// the incentive manager reports the missing clock in its own codespace
	_, err = env.TryDeliver(keepertest.Addr("alice"), incentivetypes.MsgClaim{})
	require.ErrorIs(t, err, incentivetypes.ErrNoEpoch)

	require.NoError(t, env.App.BeginBlock(env.Ctx))
	_, err = env.App.Epochs.CurrentEpoch(env.Ctx)
	require.NoError(t, err)
}

func TestEpochChangeOnlyFromEpochManager(t *testing.T) {
	env := keepertest.SetupTestApp(t)
	epoch := env.AdvanceEpoch(t)

	_, err := env.TryDeliver(keepertest.Addr("mallory"), incentivetypes.MsgOnEpochChanged{Epoch: epoch})
	require.ErrorIs(t, err, incentivetypes.ErrUnauthorized)
	_, err = env.TryDeliver(app.EpochManagerAddress(), incentivetypes.MsgOnEpochChanged{Epoch: epoch})
	require.NoError(t, err)
}

func TestCommitPersistsState(t *testing.T) {
	db := dbm.NewMemDB()
	a, err := app.NewApp(log.NewNopLogger(), db, app.DefaultOptions())
	require.NoError(t, err)
	alice := keepertest.Addr("alice")

	require.NoError(t, a.Bank.FundAccount(a.Context(), alice, sdk.NewCoins(sdk.NewInt64Coin("uwhale", 42))))
	start := a.BlockTime()
	id := a.Commit(6 * time.Second)
	require.Equal(t, int64(1), id.Version)
	require.Equal(t, start.Add(6*time.Second), a.BlockTime())

	reopened, err := app.NewApp(log.NewNopLogger(), db, app.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, math.NewInt(42), reopened.Bank.GetBalance(reopened.Context(), alice, "uwhale").Amount)
}

func TestLedgerBank(t *testing.T) {
	env := keepertest.SetupTestApp(t)
	alice, bob := keepertest.Addr("alice"), keepertest.Addr("bob")
	env.Fund(t, alice, sdk.NewInt64Coin("uwhale", 100))

	err := env.App.Bank.SendCoins(env.Ctx, alice, bob, sdk.NewCoins(sdk.NewInt64Coin("uwhale", 101)))
	require.ErrorIs(t, err, sdkerrors.ErrInsufficientFunds)

	require.NoError(t, env.App.Bank.SendCoins(env.Ctx, alice, bob, sdk.NewCoins(sdk.NewInt64Coin("uwhale", 100))))
	require.True(t, env.App.Bank.GetAllBalances(env.Ctx, alice).IsZero())
	require.Equal(t, "100uwhale", env.App.Bank.GetAllBalances(env.Ctx, bob).String())

	require.NoError(t, env.App.Bank.SendCoins(env.Ctx, bob, env.App.PoolManager.ModuleAddress(), sdk.NewCoins(sdk.NewInt64Coin("uwhale", 40))))
	require.NoError(t, env.App.Bank.BurnCoins(env.Ctx, pooltypes.ModuleName, sdk.NewCoins(sdk.NewInt64Coin("uwhale", 40))))
	require.Equal(t, math.NewInt(60), env.App.Bank.GetSupply(env.Ctx, "uwhale").Amount)

	exported := env.App.Bank.ExportGenesis(env.Ctx)
	require.Len(t, exported.Balances, 1)
	require.Equal(t, bob.String(), exported.Balances[0].Address)
}

func TestSetConfigIsIdempotent(t *testing.T) {
	app.SetConfig()
	app.SetConfig()
	require.Equal(t, app.Bech32PrefixAccAddr, sdk.GetConfig().GetBech32AccountAddrPrefix())
}
