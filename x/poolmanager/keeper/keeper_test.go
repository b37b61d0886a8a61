package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/suite"

	keepertest "github.com/paw-chain/lhub/testutil/keeper"
	"github.com/paw-chain/lhub/x/poolmanager/types"
)

const (
	whale = "uwhale"
	luna  = "uluna"
	usdc  = "uusdc"
	usdt  = "uusdt"
)

type KeeperTestSuite struct {
	suite.Suite

	env     *keepertest.TestEnv
	creator sdk.AccAddress
	alice   sdk.AccAddress
	bob     sdk.AccAddress
}

func TestKeeperTestSuite(t *testing.T) {
	suite.Run(t, new(KeeperTestSuite))
}

func (s *KeeperTestSuite) SetupTest() {
	s.env = keepertest.SetupTestApp(s.T())
	s.creator = keepertest.Addr("creator")
	s.alice = keepertest.Addr("alice")
	s.bob = keepertest.Addr("bob")

	for _, addr := range []sdk.AccAddress{s.creator, s.alice, s.bob} {
		s.env.Fund(s.T(), addr,
			sdk.NewInt64Coin(whale, 1_000_000_000_000),
			sdk.NewInt64Coin(luna, 1_000_000_000_000),
			sdk.NewInt64Coin(usdc, 1_000_000_000_000),
			sdk.NewInt64Coin(usdt, 1_000_000_000_000),
		)
	}
}

func (s *KeeperTestSuite) TearDownTest() {
	s.env.AssertInvariants(s.T())
}

func standardFees() types.PoolFees {
	return types.PoolFees{
		ProtocolFee: math.LegacyNewDecWithPrec(1, 3),
		SwapFee:     math.LegacyNewDecWithPrec(3, 3),
		BurnFee:     math.LegacyZeroDec(),
	}
}

func (s *KeeperTestSuite) createPool(id string, denoms []string, fees types.PoolFees, pairType types.PairType) types.Pool {
	decimals := make([]uint32, len(denoms))
	for i := range decimals {
		decimals[i] = 6
	}
	s.env.Deliver(s.T(), s.creator, types.MsgCreatePool{
		AssetDenoms:   denoms,
		AssetDecimals: decimals,
		Fees:          fees,
		PairType:      pairType,
		Identifier:    id,
	})
	pool, err := s.env.App.PoolManager.GetPool(s.env.Ctx, id)
	s.Require().NoError(err)
	return pool
}

// provide deposits coins from addr and returns the LP it received.
func (s *KeeperTestSuite) provide(addr sdk.AccAddress, poolID string, coins ...sdk.Coin) math.Int {
	pool, err := s.env.App.PoolManager.GetPool(s.env.Ctx, poolID)
	s.Require().NoError(err)
	before := s.env.Balance(addr, pool.LPDenom)
	s.env.Deliver(s.T(), addr, types.MsgProvideLiquidity{PoolIdentifier: poolID}, coins...)
	return s.env.Balance(addr, pool.LPDenom).Sub(before)
}

func (s *KeeperTestSuite) pool(id string) types.Pool {
	pool, err := s.env.App.PoolManager.GetPool(s.env.Ctx, id)
	s.Require().NoError(err)
	return pool
}

func (s *KeeperTestSuite) TestCreatePool() {
	pool := s.createPool("whale-luna", []string{whale, luna}, standardFees(), types.NewConstantProduct())

	s.Require().Equal([]string{whale, luna}, pool.AssetDenoms)
	s.Require().True(pool.TotalShare.IsZero())
	s.Require().Equal(types.AllFeaturesEnabled(), pool.Features)
	s.Require().Contains(pool.LPDenom, "whale-luna")

	_, err := s.env.TryDeliver(s.creator, types.MsgCreatePool{
		AssetDenoms:   []string{whale, luna},
		AssetDecimals: []uint32{6, 6},
		Fees:          standardFees(),
		PairType:      types.NewConstantProduct(),
		Identifier:    "whale-luna",
	})
	s.Require().ErrorIs(err, types.ErrPoolExists)
}

func (s *KeeperTestSuite) TestCreatePoolDefaultIdentifier() {
	s.env.Deliver(s.T(), s.creator, types.MsgCreatePool{
		AssetDenoms:   []string{whale, luna},
		AssetDecimals: []uint32{6, 6},
		Fees:          types.ZeroFees(),
		PairType:      types.NewConstantProduct(),
	})
	s.Require().True(s.env.App.PoolManager.HasPool(s.env.Ctx, "1"))
}

func (s *KeeperTestSuite) TestCreatePoolFee() {
	fee := sdk.NewInt64Coin(whale, 1_000)
	cfg, err := s.env.App.PoolManager.GetConfig(s.env.Ctx)
	s.Require().NoError(err)
	cfg.PoolCreationFee = fee
	s.env.Deliver(s.T(), s.env.Owner, types.MsgUpdateConfig{Config: cfg})

	msg := types.MsgCreatePool{
		AssetDenoms:   []string{whale, luna},
		AssetDecimals: []uint32{6, 6},
		Fees:          types.ZeroFees(),
		PairType:      types.NewConstantProduct(),
		Identifier:    "paid",
	}
	_, err = s.env.TryDeliver(s.creator, msg)
	s.Require().ErrorIs(err, types.ErrInvalidPoolCreationFee)

	_, err = s.env.TryDeliver(s.creator, msg, sdk.NewInt64Coin(whale, 999))
	s.Require().ErrorIs(err, types.ErrInvalidPoolCreationFee)

	s.env.Deliver(s.T(), s.creator, msg, fee)
	s.Require().Equal(fee.Amount, s.env.Balance(s.env.FeeCollector, whale))
}

func (s *KeeperTestSuite) TestCreatePoolRejectsInvalidMessages() {
	for name, msg := range map[string]types.MsgCreatePool{
		"single asset": {
			AssetDenoms: []string{whale}, AssetDecimals: []uint32{6},
			Fees: types.ZeroFees(), PairType: types.NewConstantProduct(),
		},
		"three asset constant product": {
			AssetDenoms: []string{whale, luna, usdc}, AssetDecimals: []uint32{6, 6, 6},
			Fees: types.ZeroFees(), PairType: types.NewConstantProduct(),
		},
		"zero amp": {
			AssetDenoms: []string{usdc, usdt}, AssetDecimals: []uint32{6, 6},
			Fees: types.ZeroFees(), PairType: types.NewStableSwap(0),
		},
		"fees sum to one": {
			AssetDenoms: []string{whale, luna}, AssetDecimals: []uint32{6, 6},
			Fees: types.PoolFees{
				ProtocolFee: math.LegacyNewDecWithPrec(5, 1),
				SwapFee:     math.LegacyNewDecWithPrec(5, 1),
				BurnFee:     math.LegacyZeroDec(),
			},
			PairType: types.NewConstantProduct(),
		},
	} {
		_, err := s.env.TryDeliver(s.creator, msg)
		s.Require().Error(err, name)
	}
}

func (s *KeeperTestSuite) TestCreatePoolRejectsOutOfRangeDecimals() {
	_, err := s.env.TryDeliver(s.creator, types.MsgCreatePool{
		AssetDenoms:   []string{whale, luna},
		AssetDecimals: []uint32{0, 80},
		Fees:          types.ZeroFees(),
		PairType:      types.NewConstantProduct(),
		Identifier:    "wide",
	})
	s.Require().ErrorIs(err, types.ErrInvalidDecimals)
	s.Require().False(s.env.App.PoolManager.HasPool(s.env.Ctx, "wide"))

	// the widest accepted precision gap still prices without overflow
	s.env.Deliver(s.T(), s.creator, types.MsgCreatePool{
		AssetDenoms:   []string{whale, luna},
		AssetDecimals: []uint32{0, types.MaxAssetDecimals},
		Fees:          types.ZeroFees(),
		PairType:      types.NewConstantProduct(),
		Identifier:    "gap",
	})
	s.provide(s.alice, "gap", sdk.NewInt64Coin(whale, 1_000_000), sdk.NewInt64Coin(luna, 1_000_000))
	_, err = s.env.TryDeliver(s.bob, types.MsgSwap{PoolIdentifier: "gap", AskDenom: luna}, sdk.NewInt64Coin(whale, 1_000))
	s.Require().NoError(err)

	pool := s.pool("gap")
	pool.AssetDecimals = []uint32{0, 80}
	s.Require().ErrorIs(pool.Validate(), types.ErrInvalidDecimals)
}

func (s *KeeperTestSuite) TestUpdatePoolFeatures() {
	s.createPool("whale-luna", []string{whale, luna}, types.ZeroFees(), types.NewConstantProduct())
	s.provide(s.alice, "whale-luna", sdk.NewInt64Coin(whale, 1_000_000), sdk.NewInt64Coin(luna, 1_000_000))

	disabled := false
	_, err := s.env.TryDeliver(s.alice, types.MsgUpdatePoolFeatures{PoolIdentifier: "whale-luna", SwapsEnabled: &disabled})
	s.Require().ErrorIs(err, types.ErrUnauthorized)

	s.env.Deliver(s.T(), s.env.Owner, types.MsgUpdatePoolFeatures{PoolIdentifier: "whale-luna", SwapsEnabled: &disabled})
	s.Require().False(s.pool("whale-luna").Features.SwapsEnabled)
	s.Require().True(s.pool("whale-luna").Features.DepositsEnabled)

	_, err = s.env.TryDeliver(s.bob, types.MsgSwap{PoolIdentifier: "whale-luna", AskDenom: luna}, sdk.NewInt64Coin(whale, 1_000))
	s.Require().ErrorIs(err, types.ErrOperationDisabled)
}

func (s *KeeperTestSuite) TestGenesisRoundTrip() {
	s.createPool("whale-luna", []string{whale, luna}, standardFees(), types.NewConstantProduct())
	s.provide(s.alice, "whale-luna", sdk.NewInt64Coin(whale, 1_000_000), sdk.NewInt64Coin(luna, 2_000_000))

	exported, err := s.env.App.PoolManager.ExportGenesis(s.env.Ctx)
	s.Require().NoError(err)
	s.Require().NoError(exported.Validate())
	s.Require().Len(exported.Pools, 1)

	fresh := keepertest.SetupTestApp(s.T())
	s.Require().NoError(fresh.App.PoolManager.InitGenesis(fresh.Ctx, *exported))
	pool, err := fresh.App.PoolManager.GetPool(fresh.Ctx, "whale-luna")
	s.Require().NoError(err)
	s.Require().Equal(s.pool("whale-luna"), pool)

	// the counter continues where it left off
	fresh.Deliver(s.T(), s.creator, types.MsgCreatePool{
		AssetDenoms:   []string{whale, usdc},
		AssetDecimals: []uint32{6, 6},
		Fees:          types.ZeroFees(),
		PairType:      types.NewConstantProduct(),
	})
	s.Require().True(fresh.App.PoolManager.HasPool(fresh.Ctx, "2"))
}
