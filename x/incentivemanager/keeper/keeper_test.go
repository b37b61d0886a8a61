package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/suite"

	keepertest "github.com/paw-chain/lhub/testutil/keeper"
	"github.com/paw-chain/lhub/x/host"
	"github.com/paw-chain/lhub/x/incentivemanager/types"
	pooltypes "github.com/paw-chain/lhub/x/poolmanager/types"
	"github.com/paw-chain/lhub/x/shared/lptoken"
)

const (
	usdc = "uusdc"
	day  = uint64(86_400)
)

type KeeperTestSuite struct {
	suite.Suite

	env   *keepertest.TestEnv
	lp    string
	alice sdk.AccAddress
	bob   sdk.AccAddress
}

func TestKeeperTestSuite(t *testing.T) {
	suite.Run(t, new(KeeperTestSuite))
}

func (s *KeeperTestSuite) SetupTest() {
	s.env = keepertest.SetupTestApp(s.T())
	s.lp = lptoken.Denom(host.ModuleAddress(pooltypes.ModuleName), "whale-luna")
	s.alice = keepertest.Addr("alice")
	s.bob = keepertest.Addr("bob")
	for _, addr := range []sdk.AccAddress{s.alice, s.bob} {
		s.env.Fund(s.T(), addr,
			sdk.NewInt64Coin(s.lp, 1_000_000),
			sdk.NewInt64Coin(usdc, 1_000_000_000),
		)
	}
	s.env.AdvanceEpoch(s.T())
}

func (s *KeeperTestSuite) TearDownTest() {
	s.env.AssertInvariants(s.T())
}

func (s *KeeperTestSuite) fillIncentive(sender sdk.AccAddress, amount int64) types.Incentive {
	asset := sdk.NewInt64Coin(usdc, amount)
	res := s.env.Deliver(s.T(), sender, types.MsgFillIncentive{Params: types.IncentiveParams{
		LPDenom:        s.lp,
		IncentiveAsset: asset,
	}}, asset)
	incentive, ok := res.Data.(types.Incentive)
	s.Require().True(ok)
	return incentive
}

func (s *KeeperTestSuite) fillPosition(sender sdk.AccAddress, amount int64, duration uint64) types.Position {
	res := s.env.Deliver(s.T(), sender, types.MsgFillPosition{UnlockingDuration: duration}, sdk.NewInt64Coin(s.lp, amount))
	position, ok := res.Data.(types.Position)
	s.Require().True(ok)
	return position
}

func (s *KeeperTestSuite) advanceEpochs(n int) {
	for i := 0; i < n; i++ {
		s.env.AdvanceEpoch(s.T())
	}
}

func (s *KeeperTestSuite) currentEpoch() uint64 {
	epoch, err := s.env.App.Epochs.CurrentEpoch(s.env.Ctx)
	s.Require().NoError(err)
	return epoch.ID
}

func (s *KeeperTestSuite) TestFillIncentiveDefaults() {
	incentive := s.fillIncentive(s.alice, 14_000)

	s.Require().Equal("1", incentive.Identifier)
	s.Require().Equal(uint64(2), incentive.StartEpoch)
	s.Require().Equal(uint64(2+types.DefaultIncentiveDuration), incentive.PreliminaryEndEpoch)
	s.Require().Equal(math.NewInt(1_000), incentive.EmissionRate)
	s.Require().Equal(types.Linear, incentive.Curve)
	s.Require().True(incentive.ClaimedAmount.IsZero())
	s.Require().Equal(math.NewInt(14_000), s.env.Balance(s.env.App.IncentiveManager.ModuleAddress(), usdc))
}

func (s *KeeperTestSuite) TestFillIncentiveRejects() {
	fill := func(params types.IncentiveParams, funds ...sdk.Coin) error {
		_, err := s.env.TryDeliver(s.alice, types.MsgFillIncentive{Params: params}, funds...)
		return err
	}
	asset := sdk.NewInt64Coin(usdc, 14_000)
	epochPtr := func(e uint64) *uint64 { return &e }

	small := sdk.NewInt64Coin(usdc, types.MinIncentiveAmount-1)
	s.Require().ErrorIs(fill(types.IncentiveParams{LPDenom: s.lp, IncentiveAsset: small}, small), types.ErrInvalidIncentiveAmount)

	s.Require().ErrorIs(fill(types.IncentiveParams{LPDenom: s.lp, IncentiveAsset: asset}, sdk.NewInt64Coin(usdc, 13_999)),
		types.ErrAssetMismatch)

	s.Require().ErrorIs(fill(types.IncentiveParams{LPDenom: "uwhale", IncentiveAsset: asset}, asset), types.ErrInvalidLPDenom)

	s.Require().ErrorIs(fill(types.IncentiveParams{LPDenom: s.lp, IncentiveAsset: asset, StartEpoch: epochPtr(16)}, asset),
		types.ErrIncentiveStartTooFar)

	s.Require().ErrorIs(fill(types.IncentiveParams{
		LPDenom: s.lp, IncentiveAsset: asset, StartEpoch: epochPtr(5), PreliminaryEndEpoch: epochPtr(5),
	}, asset), types.ErrInvalidEpoch)

	s.Require().ErrorIs(fill(types.IncentiveParams{LPDenom: s.lp, IncentiveAsset: asset, Curve: "quadratic"}, asset),
		types.ErrInvalidConfig)
}

func (s *KeeperTestSuite) TestFillIncentiveCreationFee() {
	cfg, err := s.env.App.IncentiveManager.GetConfig(s.env.Ctx)
	s.Require().NoError(err)
	cfg.CreateIncentiveFee = sdk.NewInt64Coin(usdc, 500)
	s.env.Deliver(s.T(), s.env.Owner, types.MsgUpdateConfig{Config: cfg})

	asset := sdk.NewInt64Coin(usdc, 14_000)
	msg := types.MsgFillIncentive{Params: types.IncentiveParams{LPDenom: s.lp, IncentiveAsset: asset}}
	_, err = s.env.TryDeliver(s.alice, msg, asset)
	s.Require().ErrorIs(err, types.ErrIncentiveFeeNotPaid)

	s.env.Deliver(s.T(), s.alice, msg, sdk.NewInt64Coin(usdc, 14_500))
	s.Require().Equal(math.NewInt(500), s.env.Balance(s.env.FeeCollector, usdc))
}

func (s *KeeperTestSuite) TestMaxConcurrentIncentives() {
	for i := 0; i < 5; i++ {
		s.fillIncentive(s.alice, 14_000)
	}
	asset := sdk.NewInt64Coin(usdc, 14_000)
	_, err := s.env.TryDeliver(s.bob, types.MsgFillIncentive{Params: types.IncentiveParams{
		LPDenom: s.lp, IncentiveAsset: asset,
	}}, asset)
	s.Require().ErrorIs(err, types.ErrTooManyIncentives)
}

func (s *KeeperTestSuite) TestExpandIncentive() {
	incentive := s.fillIncentive(s.alice, 14_000)
	expand := func(sender sdk.AccAddress, amount int64) error {
		asset := sdk.NewInt64Coin(usdc, amount)
		_, err := s.env.TryDeliver(sender, types.MsgFillIncentive{Params: types.IncentiveParams{
			LPDenom: s.lp, IncentiveAsset: asset, Identifier: incentive.Identifier,
		}}, asset)
		return err
	}

	s.Require().ErrorIs(expand(s.bob, 2_000), types.ErrUnauthorized)
	s.Require().ErrorIs(expand(s.alice, 1_500), types.ErrInvalidExpansionAmount)
	s.Require().NoError(expand(s.alice, 2_000))

	expanded, err := s.env.App.IncentiveManager.GetIncentive(s.env.Ctx, incentive.Identifier)
	s.Require().NoError(err)
	s.Require().Equal(incentive.PreliminaryEndEpoch+2, expanded.PreliminaryEndEpoch)
	s.Require().Equal(sdk.NewInt64Coin(usdc, 16_000), expanded.IncentiveAsset)
	s.Require().Equal(incentive.EmissionRate, expanded.EmissionRate)

	// a new incentive may take a chosen identifier
	asset := sdk.NewInt64Coin(usdc, 14_000)
	s.env.Deliver(s.T(), s.bob, types.MsgFillIncentive{Params: types.IncentiveParams{
		LPDenom: s.lp, IncentiveAsset: asset, Identifier: "bobs",
	}}, asset)
	s.Require().True(s.env.App.IncentiveManager.HasIncentive(s.env.Ctx, "bobs"))
}

func (s *KeeperTestSuite) TestCloseIncentive() {
	incentive := s.fillIncentive(s.alice, 14_000)
	before := s.env.Balance(s.alice, usdc)

	_, err := s.env.TryDeliver(s.bob, types.MsgCloseIncentive{Identifier: incentive.Identifier})
	s.Require().ErrorIs(err, types.ErrUnauthorized)

	s.env.Deliver(s.T(), s.alice, types.MsgCloseIncentive{Identifier: incentive.Identifier})
	s.Require().Equal(before.AddRaw(14_000), s.env.Balance(s.alice, usdc))
	s.Require().False(s.env.App.IncentiveManager.HasIncentive(s.env.Ctx, incentive.Identifier))

	// the module owner may close any incentive
	incentive = s.fillIncentive(s.alice, 14_000)
	s.env.Deliver(s.T(), s.env.Owner, types.MsgCloseIncentive{Identifier: incentive.Identifier})
	s.Require().Equal(before.AddRaw(14_000), s.env.Balance(s.alice, usdc))
}

func (s *KeeperTestSuite) TestExpiredIncentive() {
	incentive := s.fillIncentive(s.alice, 14_000)
	s.advanceEpochs(int(incentive.PreliminaryEndEpoch + types.DefaultIncentiveDuration - s.currentEpoch()))

	stored, err := s.env.App.IncentiveManager.GetIncentive(s.env.Ctx, incentive.Identifier)
	s.Require().NoError(err)
	s.Require().True(stored.IsExpired(s.currentEpoch()))

	asset := sdk.NewInt64Coin(usdc, 1_000)
	_, err = s.env.TryDeliver(s.alice, types.MsgFillIncentive{Params: types.IncentiveParams{
		LPDenom: s.lp, IncentiveAsset: asset, Identifier: incentive.Identifier,
	}}, asset)
	s.Require().ErrorIs(err, types.ErrIncentiveAlreadyExpired)

	// nobody claimed, so creating a new incentive refunds the expired one in full
	before := s.env.Balance(s.alice, usdc)
	s.fillIncentive(s.bob, 14_000)
	s.Require().False(s.env.App.IncentiveManager.HasIncentive(s.env.Ctx, incentive.Identifier))
	s.Require().Equal(before.AddRaw(14_000), s.env.Balance(s.alice, usdc))
}

func (s *KeeperTestSuite) TestOnEpochChangedOnlyFromEpochManager() {
	_, err := s.env.TryDeliver(s.alice, types.MsgOnEpochChanged{Epoch: types.Epoch{ID: 99}})
	s.Require().ErrorIs(err, types.ErrUnauthorized)
}

func (s *KeeperTestSuite) TestNoEpoch() {
	env := keepertest.SetupTestApp(s.T())
	env.Fund(s.T(), s.alice, sdk.NewInt64Coin(s.lp, 1_000))
	_, err := env.TryDeliver(s.alice, types.MsgFillPosition{UnlockingDuration: day}, sdk.NewInt64Coin(s.lp, 1_000))
	s.Require().ErrorIs(err, types.ErrNoEpoch)
}

func (s *KeeperTestSuite) TestGenesisRoundTrip() {
	s.fillIncentive(s.alice, 14_000)
	s.fillPosition(s.alice, 1_000, day)
	s.advanceEpochs(2)
	s.env.Deliver(s.T(), s.alice, types.MsgClaim{})

	exported, err := s.env.App.IncentiveManager.ExportGenesis(s.env.Ctx)
	s.Require().NoError(err)
	s.Require().NoError(exported.Validate())
	s.Require().Len(exported.Incentives, 1)
	s.Require().Len(exported.Positions, 1)
	s.Require().NotEmpty(exported.LPWeights)
	s.Require().Len(exported.ClaimRecords, 1)

	fresh := keepertest.SetupTestApp(s.T())
	s.Require().NoError(fresh.App.IncentiveManager.InitGenesis(fresh.Ctx, *exported))
	again, err := fresh.App.IncentiveManager.ExportGenesis(fresh.Ctx)
	s.Require().NoError(err)
	s.Require().Equal(exported, again)
}
