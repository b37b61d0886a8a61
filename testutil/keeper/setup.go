// Package keeper provides an in-memory liquidity hub for keeper tests.
package keeper

import (
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"github.com/cometbft/cometbft/crypto"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/lhub/app"
	"github.com/paw-chain/lhub/x/host"
	incentivetypes "github.com/paw-chain/lhub/x/incentivemanager/types"
)

// TestEnv is an application with default genesis and a block context.
type TestEnv struct {
	App *app.App
	Ctx sdk.Context

	Owner        sdk.AccAddress
	FeeCollector sdk.AccAddress
}

// Addr returns a deterministic address for name.
func Addr(name string) sdk.AccAddress {
	return sdk.AccAddress(crypto.AddressHash([]byte(name)))
}

// SetupTestApp initializes a test application with all modules
func SetupTestApp(t testing.TB) *TestEnv {
	return SetupTestAppWithGenesis(t, nil)
}

// SetupTestAppWithGenesis initializes a test application after letting
// modify change the default genesis.
func SetupTestAppWithGenesis(t testing.TB, modify func(gs app.GenesisState)) *TestEnv {
	t.Helper()

	testApp, err := app.NewApp(log.NewNopLogger(), dbm.NewMemDB(), app.DefaultOptions())
	require.NoError(t, err)

	env := &TestEnv{
		App:          testApp,
		Owner:        Addr("owner"),
		FeeCollector: Addr("fee_collector"),
	}
	gs := app.NewDefaultGenesisState(env.Owner, env.FeeCollector)
	if modify != nil {
		modify(gs)
	}
	require.NoError(t, gs.Validate())

	env.Ctx = testApp.Context()
	require.NoError(t, testApp.InitGenesis(env.Ctx, gs))
	return env
}

// Fund mints coins to addr.
func (e *TestEnv) Fund(t testing.TB, addr sdk.AccAddress, coins ...sdk.Coin) {
	t.Helper()
	require.NoError(t, e.App.Bank.FundAccount(e.Ctx, addr, sdk.NewCoins(coins...)))
}

// Balance returns the balance of addr in denom.
func (e *TestEnv) Balance(addr sdk.AccAddress, denom string) math.Int {
	return e.App.Bank.GetBalance(e.Ctx, addr, denom).Amount
}

// Deliver runs msg and fails the test on error.
func (e *TestEnv) Deliver(t testing.TB, sender sdk.AccAddress, msg host.Msg, funds ...sdk.Coin) *host.Response {
	t.Helper()
	res, err := e.App.Deliver(e.Ctx, sender, msg, funds...)
	require.NoError(t, err)
	return res
}

// TryDeliver runs msg and returns its error.
func (e *TestEnv) TryDeliver(sender sdk.AccAddress, msg host.Msg, funds ...sdk.Coin) (*host.Response, error) {
	return e.App.Deliver(e.Ctx, sender, msg, funds...)
}

// AdvanceTime moves the block time forward by d.
func (e *TestEnv) AdvanceTime(d time.Duration) {
	e.Ctx = e.Ctx.WithBlockTime(e.Ctx.BlockTime().Add(d))
}

// AdvanceEpoch moves the block time to the end of the running epoch and
// starts the next one.
func (e *TestEnv) AdvanceEpoch(t testing.TB) incentivetypes.Epoch {
	t.Helper()
	if current, err := e.App.Epochs.CurrentEpoch(e.Ctx); err == nil {
		end := current.StartTime.Add(app.DefaultEpochDuration)
		if e.Ctx.BlockTime().Before(end) {
			e.Ctx = e.Ctx.WithBlockTime(end)
		}
	}
	epoch, err := e.App.AdvanceEpoch(e.Ctx)
	require.NoError(t, err)
	return epoch
}

// AssertInvariants fails the test when any invariant is broken.
func (e *TestEnv) AssertInvariants(t testing.TB) {
	t.Helper()
	require.NoError(t, e.App.AssertInvariants(e.Ctx))
}
