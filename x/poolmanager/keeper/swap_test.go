package keeper_test

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/lhub/x/poolmanager/types"
)

func (s *KeeperTestSuite) TestSwapConstantProduct() {
	s.createPool("whale-luna", []string{whale, luna}, standardFees(), types.NewConstantProduct())
	s.provide(s.alice, "whale-luna", sdk.NewInt64Coin(whale, 1_000_000_000), sdk.NewInt64Coin(luna, 1_000_000_000))

	sim, err := s.env.App.PoolManager.SimulateSwap(s.env.Ctx, "whale-luna", sdk.NewInt64Coin(whale, 1_000_000), luna)
	s.Require().NoError(err)
	s.Require().Equal(math.NewInt(995_004), sim.ReturnAmount)
	s.Require().Equal(math.NewInt(1_000), sim.SpreadAmount)
	s.Require().Equal(math.NewInt(2_997), sim.SwapFee)
	s.Require().Equal(math.NewInt(999), sim.ProtocolFee)
	s.Require().True(sim.BurnFee.IsZero())

	lunaBefore := s.env.Balance(s.bob, luna)
	res := s.env.Deliver(s.T(), s.bob, types.MsgSwap{PoolIdentifier: "whale-luna", AskDenom: luna}, sdk.NewInt64Coin(whale, 1_000_000))
	result, ok := res.Data.(types.SwapResult)
	s.Require().True(ok)
	s.Require().Equal(sdk.NewInt64Coin(luna, 995_004), result.Return)

	s.Require().Equal(lunaBefore.AddRaw(995_004), s.env.Balance(s.bob, luna))
	s.Require().Equal(math.NewInt(999), s.env.Balance(s.env.FeeCollector, luna))

	// the swap fee stays in the pool
	pool := s.pool("whale-luna")
	s.Require().Equal(math.NewInt(1_001_000_000), pool.Reserves[0])
	s.Require().Equal(math.NewInt(999_003_997), pool.Reserves[1])
}

func (s *KeeperTestSuite) TestSwapSmallTrade() {
	s.createPool("whale-luna", []string{whale, luna}, types.ZeroFees(), types.NewConstantProduct())
	s.provide(s.alice, "whale-luna", sdk.NewInt64Coin(whale, 1_000_000), sdk.NewInt64Coin(luna, 1_000_000))

	res := s.env.Deliver(s.T(), s.bob, types.MsgSwap{PoolIdentifier: "whale-luna", AskDenom: luna}, sdk.NewInt64Coin(whale, 1_000))
	result := res.Data.(types.SwapResult)
	s.Require().Equal(math.NewInt(999), result.Return.Amount)
	s.Require().Equal(math.NewInt(1), result.Computation.SpreadAmount)
}

func (s *KeeperTestSuite) TestSwapBurnFee() {
	fees := types.PoolFees{
		ProtocolFee: math.LegacyZeroDec(),
		SwapFee:     math.LegacyZeroDec(),
		BurnFee:     math.LegacyNewDecWithPrec(1, 2),
	}
	s.createPool("whale-luna", []string{whale, luna}, fees, types.NewConstantProduct())
	s.provide(s.alice, "whale-luna", sdk.NewInt64Coin(whale, 1_000_000_000), sdk.NewInt64Coin(luna, 1_000_000_000))

	supplyBefore := s.env.App.Bank.GetSupply(s.env.Ctx, luna).Amount
	res := s.env.Deliver(s.T(), s.bob, types.MsgSwap{PoolIdentifier: "whale-luna", AskDenom: luna}, sdk.NewInt64Coin(whale, 1_000_000))
	burned := res.Data.(types.SwapResult).Computation.BurnFee
	s.Require().Equal(math.NewInt(9_990), burned)
	s.Require().Equal(supplyBefore.Sub(burned), s.env.App.Bank.GetSupply(s.env.Ctx, luna).Amount)
}

func (s *KeeperTestSuite) TestSwapRejections() {
	s.createPool("whale-luna", []string{whale, luna}, standardFees(), types.NewConstantProduct())

	_, err := s.env.TryDeliver(s.bob, types.MsgSwap{PoolIdentifier: "whale-luna", AskDenom: luna}, sdk.NewInt64Coin(whale, 1_000))
	s.Require().ErrorIs(err, types.ErrPoolHasNoAssets)

	s.provide(s.alice, "whale-luna", sdk.NewInt64Coin(whale, 1_000_000), sdk.NewInt64Coin(luna, 1_000_000))

	_, err = s.env.TryDeliver(s.bob, types.MsgSwap{PoolIdentifier: "whale-luna", AskDenom: whale}, sdk.NewInt64Coin(whale, 1_000))
	s.Require().ErrorIs(err, types.ErrSameAsset)

	_, err = s.env.TryDeliver(s.bob, types.MsgSwap{PoolIdentifier: "whale-luna", AskDenom: usdc}, sdk.NewInt64Coin(whale, 1_000))
	s.Require().ErrorIs(err, types.ErrAssetMismatch)

	_, err = s.env.TryDeliver(s.bob, types.MsgSwap{PoolIdentifier: "whale-luna", AskDenom: luna},
		sdk.NewInt64Coin(whale, 1_000), sdk.NewInt64Coin(usdc, 1_000))
	s.Require().ErrorIs(err, types.ErrAssetMismatch)

	_, err = s.env.TryDeliver(s.bob, types.MsgSwap{PoolIdentifier: "nope", AskDenom: luna}, sdk.NewInt64Coin(whale, 1_000))
	s.Require().ErrorIs(err, types.ErrPoolNotFound)
}

func (s *KeeperTestSuite) TestSwapMaxSpread() {
	s.createPool("whale-luna", []string{whale, luna}, types.ZeroFees(), types.NewConstantProduct())
	s.provide(s.alice, "whale-luna", sdk.NewInt64Coin(whale, 1_000_000), sdk.NewInt64Coin(luna, 1_000_000))

	// a tenth of the pool moves the price by about nine percent
	maxSpread := math.LegacyNewDecWithPrec(5, 2)
	_, err := s.env.TryDeliver(s.bob, types.MsgSwap{PoolIdentifier: "whale-luna", AskDenom: luna, MaxSpread: &maxSpread},
		sdk.NewInt64Coin(whale, 100_000))
	s.Require().ErrorIs(err, types.ErrMaxSpreadExceeded)

	beliefPrice := math.LegacyOneDec()
	_, err = s.env.TryDeliver(s.bob,
		types.MsgSwap{PoolIdentifier: "whale-luna", AskDenom: luna, MaxSpread: &maxSpread, BeliefPrice: &beliefPrice},
		sdk.NewInt64Coin(whale, 100_000))
	s.Require().ErrorIs(err, types.ErrMaxSpreadExceeded)

	s.env.Deliver(s.T(), s.bob, types.MsgSwap{PoolIdentifier: "whale-luna", AskDenom: luna, MaxSpread: &maxSpread},
		sdk.NewInt64Coin(whale, 10_000))
}

func (s *KeeperTestSuite) TestSwapStableSwap() {
	s.createPool("usdc-usdt", []string{usdc, usdt}, types.ZeroFees(), types.NewStableSwap(100))
	s.provide(s.alice, "usdc-usdt", sdk.NewInt64Coin(usdc, 1_000_000_000), sdk.NewInt64Coin(usdt, 1_000_000_000))

	res := s.env.Deliver(s.T(), s.bob, types.MsgSwap{PoolIdentifier: "usdc-usdt", AskDenom: usdt}, sdk.NewInt64Coin(usdc, 1_000_000))
	out := res.Data.(types.SwapResult).Return.Amount

	// a balanced stableswap trades close to one for one
	s.Require().True(out.LT(math.NewInt(1_000_000)))
	s.Require().True(out.GT(math.NewInt(999_900)), out.String())
}

func (s *KeeperTestSuite) TestReverseSimulateSwap() {
	s.createPool("whale-luna", []string{whale, luna}, standardFees(), types.NewConstantProduct())
	s.provide(s.alice, "whale-luna", sdk.NewInt64Coin(whale, 1_000_000_000), sdk.NewInt64Coin(luna, 1_000_000_000))

	ask := sdk.NewInt64Coin(luna, 500_000)
	reverse, err := s.env.App.PoolManager.ReverseSimulateSwap(s.env.Ctx, "whale-luna", whale, ask)
	s.Require().NoError(err)

	// offering the reverse-simulated amount yields at least the ask
	sim, err := s.env.App.PoolManager.SimulateSwap(s.env.Ctx, "whale-luna", sdk.NewCoin(whale, reverse.OfferAmount), luna)
	s.Require().NoError(err)
	s.Require().True(sim.ReturnAmount.GTE(ask.Amount), "%s < %s", sim.ReturnAmount, ask.Amount)

	_, err = s.env.App.PoolManager.ReverseSimulateSwap(s.env.Ctx, "whale-luna", whale, sdk.NewInt64Coin(luna, 2_000_000_000))
	s.Require().ErrorIs(err, types.ErrInsufficientReserves)
}

func (s *KeeperTestSuite) TestExecuteSwapOperations() {
	s.createPool("whale-luna", []string{whale, luna}, standardFees(), types.NewConstantProduct())
	s.createPool("luna-usdc", []string{luna, usdc}, standardFees(), types.NewConstantProduct())
	s.provide(s.alice, "whale-luna", sdk.NewInt64Coin(whale, 1_000_000_000), sdk.NewInt64Coin(luna, 1_000_000_000))
	s.provide(s.alice, "luna-usdc", sdk.NewInt64Coin(luna, 1_000_000_000), sdk.NewInt64Coin(usdc, 1_000_000_000))

	ops := []types.SwapOperation{
		{PoolIdentifier: "whale-luna", OfferDenom: whale, AskDenom: luna},
		{PoolIdentifier: "luna-usdc", OfferDenom: luna, AskDenom: usdc},
	}
	expected, err := s.env.App.PoolManager.SimulateSwapOperations(s.env.Ctx, math.NewInt(1_000_000), ops)
	s.Require().NoError(err)

	tooMuch := expected.AddRaw(1)
	_, err = s.env.TryDeliver(s.bob, types.MsgExecuteSwapOperations{Operations: ops, MinimumReceive: &tooMuch},
		sdk.NewInt64Coin(whale, 1_000_000))
	s.Require().ErrorIs(err, types.ErrMinimumReceiveAssertion)

	usdcBefore := s.env.Balance(s.bob, usdc)
	s.env.Deliver(s.T(), s.bob, types.MsgExecuteSwapOperations{Operations: ops, MinimumReceive: &expected},
		sdk.NewInt64Coin(whale, 1_000_000))
	s.Require().Equal(usdcBefore.Add(expected), s.env.Balance(s.bob, usdc))

	broken := []types.SwapOperation{
		{PoolIdentifier: "whale-luna", OfferDenom: whale, AskDenom: luna},
		{PoolIdentifier: "luna-usdc", OfferDenom: usdc, AskDenom: luna},
	}
	_, err = s.env.TryDeliver(s.bob, types.MsgExecuteSwapOperations{Operations: broken}, sdk.NewInt64Coin(whale, 1_000))
	s.Require().ErrorIs(err, types.ErrInvalidSwapOperations)
}

func (s *KeeperTestSuite) TestAddSwapRoutes() {
	s.createPool("whale-luna", []string{whale, luna}, standardFees(), types.NewConstantProduct())
	route := types.SwapRoute{
		OfferDenom: whale,
		AskDenom:   luna,
		Operations: []types.SwapOperation{{PoolIdentifier: "whale-luna", OfferDenom: whale, AskDenom: luna}},
	}

	_, err := s.env.TryDeliver(s.alice, types.MsgAddSwapRoutes{Routes: []types.SwapRoute{route}})
	s.Require().ErrorIs(err, types.ErrUnauthorized)

	s.env.Deliver(s.T(), s.env.Owner, types.MsgAddSwapRoutes{Routes: []types.SwapRoute{route}})
	got, err := s.env.App.PoolManager.GetSwapRoute(s.env.Ctx, whale, luna)
	s.Require().NoError(err)
	s.Require().Equal(route, got)

	_, err = s.env.App.PoolManager.GetSwapRoute(s.env.Ctx, luna, whale)
	s.Require().ErrorIs(err, types.ErrNoSwapRouteForAssets)

	missing := route
	missing.Operations = []types.SwapOperation{{PoolIdentifier: "nope", OfferDenom: whale, AskDenom: luna}}
	_, err = s.env.TryDeliver(s.env.Owner, types.MsgAddSwapRoutes{Routes: []types.SwapRoute{missing}})
	s.Require().ErrorIs(err, types.ErrPoolNotFound)
}
