package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/suite"

	keepertest "github.com/paw-chain/lhub/testutil/keeper"
	"github.com/paw-chain/lhub/x/bondingmanager/types"
)

const (
	ampWhale = "ampWHALE"
	bWhale   = "bWHALE"
	usdc     = "uusdc"
)

type KeeperTestSuite struct {
	suite.Suite

	env   *keepertest.TestEnv
	alice sdk.AccAddress
	bob   sdk.AccAddress
}

func TestKeeperTestSuite(t *testing.T) {
	suite.Run(t, new(KeeperTestSuite))
}

func (s *KeeperTestSuite) SetupTest() {
	s.env = keepertest.SetupTestApp(s.T())
	s.alice = keepertest.Addr("alice")
	s.bob = keepertest.Addr("bob")
	for _, addr := range []sdk.AccAddress{s.alice, s.bob} {
		s.env.Fund(s.T(), addr,
			sdk.NewInt64Coin(ampWhale, 1_000_000_000),
			sdk.NewInt64Coin(bWhale, 1_000_000_000),
		)
	}
	s.env.Fund(s.T(), s.env.FeeCollector, sdk.NewInt64Coin(usdc, 1_000_000_000_000))
}

func (s *KeeperTestSuite) TearDownTest() {
	s.env.AssertInvariants(s.T())
}

func (s *KeeperTestSuite) bond(addr sdk.AccAddress, coin sdk.Coin) {
	s.env.Deliver(s.T(), addr, types.MsgBond{}, coin)
}

func (s *KeeperTestSuite) newEpoch(fees ...sdk.Coin) types.Epoch {
	coins := sdk.NewCoins(fees...)
	res := s.env.Deliver(s.T(), s.env.FeeCollector, types.MsgCreateNewEpoch{Fees: coins}, coins...)
	epoch, ok := res.Data.(types.Epoch)
	s.Require().True(ok)
	return epoch
}

func (s *KeeperTestSuite) claim(addr sdk.AccAddress) math.Int {
	before := s.env.Balance(addr, usdc)
	s.env.Deliver(s.T(), addr, types.MsgClaim{})
	return s.env.Balance(addr, usdc).Sub(before)
}

func (s *KeeperTestSuite) updateConfig(modify func(cfg *types.Config)) {
	cfg, err := s.env.App.BondingManager.GetConfig(s.env.Ctx)
	s.Require().NoError(err)
	modify(&cfg)
	s.env.Deliver(s.T(), s.env.Owner, types.MsgUpdateConfig{Config: cfg})
}

func (s *KeeperTestSuite) TestBondRejects() {
	_, err := s.env.TryDeliver(s.alice, types.MsgBond{})
	s.Require().ErrorIs(err, types.ErrNoFunds)

	_, err = s.env.TryDeliver(s.alice, types.MsgBond{}, sdk.NewInt64Coin(ampWhale, 10), sdk.NewInt64Coin(bWhale, 10))
	s.Require().ErrorIs(err, types.ErrMultipleDenoms)

	s.env.Fund(s.T(), s.alice, sdk.NewInt64Coin(usdc, 10))
	_, err = s.env.TryDeliver(s.alice, types.MsgBond{}, sdk.NewInt64Coin(usdc, 10))
	s.Require().ErrorIs(err, types.ErrNoFunds)
}

func (s *KeeperTestSuite) TestBondUpdatesGlobalIndex() {
	s.bond(s.alice, sdk.NewInt64Coin(ampWhale, 1_000))
	s.newEpoch()
	s.claim(s.alice)
	s.bond(s.alice, sdk.NewInt64Coin(bWhale, 500))
	s.bond(s.bob, sdk.NewInt64Coin(ampWhale, 2_000))

	bonded, err := s.env.App.BondingManager.Bonded(s.env.Ctx, s.alice)
	s.Require().NoError(err)
	s.Require().Equal(sdk.NewCoins(sdk.NewInt64Coin(ampWhale, 1_000), sdk.NewInt64Coin(bWhale, 500)).String(), bonded.String())

	global, err := s.env.App.BondingManager.GetGlobalIndex(s.env.Ctx)
	s.Require().NoError(err)
	s.Require().Equal(math.NewInt(3_500), global.Bonded)
	// bonds at epoch 1 count once per unit, bonds before the first epoch not at all
	s.Require().Equal(math.NewInt(2_500), global.EpochProduct)

	aliceWeight, err := s.env.App.BondingManager.Weight(s.env.Ctx, s.alice)
	s.Require().NoError(err)
	bobWeight, err := s.env.App.BondingManager.Weight(s.env.Ctx, s.bob)
	s.Require().NoError(err)
	s.Require().Equal(aliceWeight.GlobalWeight, bobWeight.GlobalWeight)
	s.Require().Equal(aliceWeight.GlobalWeight, aliceWeight.Weight.Add(bobWeight.Weight))
}

func (s *KeeperTestSuite) TestCreateNewEpochAuthorization() {
	fees := sdk.NewCoins(sdk.NewInt64Coin(usdc, 1_000))
	s.env.Fund(s.T(), s.alice, fees...)
	_, err := s.env.TryDeliver(s.alice, types.MsgCreateNewEpoch{Fees: fees}, fees...)
	s.Require().ErrorIs(err, types.ErrUnauthorized)

	_, err = s.env.TryDeliver(s.env.FeeCollector, types.MsgCreateNewEpoch{Fees: fees}, sdk.NewInt64Coin(usdc, 999))
	s.Require().ErrorIs(err, types.ErrAssetMismatch)

	epoch := s.newEpoch(fees...)
	s.Require().Equal(uint64(1), epoch.ID)
	s.Require().Equal(fees.String(), epoch.Available.String())
	s.Require().True(epoch.Claimed.IsZero())
}

func (s *KeeperTestSuite) TestClaimSplitsByWeight() {
	s.bond(s.alice, sdk.NewInt64Coin(ampWhale, 1_000))
	s.bond(s.bob, sdk.NewInt64Coin(bWhale, 3_000))
	s.newEpoch(sdk.NewInt64Coin(usdc, 1_000))

	claimable, err := s.env.App.BondingManager.Claimable(s.env.Ctx, s.bob)
	s.Require().NoError(err)
	s.Require().Equal(sdk.NewCoins(sdk.NewInt64Coin(usdc, 750)).String(), claimable.String())

	s.Require().Equal(math.NewInt(250), s.claim(s.alice))
	s.Require().Equal(math.NewInt(750), s.claim(s.bob))

	_, err = s.env.TryDeliver(s.alice, types.MsgClaim{})
	s.Require().ErrorIs(err, types.ErrNothingToClaim)

	epoch, err := s.env.App.BondingManager.GetCurrentEpoch(s.env.Ctx)
	s.Require().NoError(err)
	s.Require().True(epoch.Available.IsZero())
	s.Require().Equal(epoch.Total.String(), epoch.Claimed.String())
}

func (s *KeeperTestSuite) TestOlderBondsEarnMore() {
	s.bond(s.alice, sdk.NewInt64Coin(ampWhale, 1_000))
	s.newEpoch()
	s.claim(s.alice)
	s.bond(s.bob, sdk.NewInt64Coin(ampWhale, 1_000))

	fees := int64(1_000_000_000)
	s.newEpoch(sdk.NewInt64Coin(usdc, fees))
	alice := s.claim(s.alice)
	bob := s.claim(s.bob)
	s.Require().True(alice.GT(bob), "alice %s, bob %s", alice, bob)
	s.Require().True(alice.Add(bob).LTE(math.NewInt(fees)))
}

func (s *KeeperTestSuite) TestMustClaimBeforeChangingBond() {
	s.bond(s.alice, sdk.NewInt64Coin(ampWhale, 1_000))
	s.newEpoch(sdk.NewInt64Coin(usdc, 1_000))

	_, err := s.env.TryDeliver(s.alice, types.MsgBond{}, sdk.NewInt64Coin(ampWhale, 1_000))
	s.Require().ErrorIs(err, types.ErrUnclaimedRewards)
	_, err = s.env.TryDeliver(s.alice, types.MsgUnbond{Asset: sdk.NewInt64Coin(ampWhale, 100)})
	s.Require().ErrorIs(err, types.ErrUnclaimedRewards)

	s.Require().Equal(math.NewInt(1_000), s.claim(s.alice))
	s.bond(s.alice, sdk.NewInt64Coin(ampWhale, 1_000))
}

func (s *KeeperTestSuite) TestClaimWithoutBondAdvances() {
	s.bond(s.alice, sdk.NewInt64Coin(ampWhale, 1_000))
	s.newEpoch(sdk.NewInt64Coin(usdc, 1_000))

	s.Require().True(s.claim(s.bob).IsZero())
	last, found := s.env.App.BondingManager.GetLastClaimedEpoch(s.env.Ctx, s.bob)
	s.Require().True(found)
	s.Require().Equal(uint64(1), last)

	_, err := s.env.TryDeliver(s.bob, types.MsgClaim{})
	s.Require().ErrorIs(err, types.ErrNothingToClaim)
}

func (s *KeeperTestSuite) TestExpiredEpochFoldsIntoNew() {
	s.updateConfig(func(cfg *types.Config) { cfg.GracePeriod = 2 })
	s.bond(s.alice, sdk.NewInt64Coin(ampWhale, 1_000))

	s.newEpoch(sdk.NewInt64Coin(usdc, 1_000))
	s.newEpoch()
	// epoch 1 leaves the grace period and its unclaimed fees move over
	epoch := s.newEpoch(sdk.NewInt64Coin(usdc, 500))
	s.Require().Equal(uint64(3), epoch.ID)
	s.Require().Equal(sdk.NewCoins(sdk.NewInt64Coin(usdc, 1_500)).String(), epoch.Total.String())

	claimable, err := s.env.App.BondingManager.GetClaimableEpochs(s.env.Ctx)
	s.Require().NoError(err)
	s.Require().Len(claimable, 2)
	s.Require().Equal(uint64(2), claimable[0].ID)

	s.Require().Equal(math.NewInt(1_500), s.claim(s.alice))
	s.Require().True(s.env.Balance(s.env.App.BondingManager.ModuleAddress(), usdc).IsZero())
}

func (s *KeeperTestSuite) TestUnbondAndWithdraw() {
	s.bond(s.alice, sdk.NewInt64Coin(ampWhale, 1_000))

	_, err := s.env.TryDeliver(s.alice, types.MsgUnbond{Asset: sdk.NewInt64Coin(ampWhale, 1_001)})
	s.Require().ErrorIs(err, types.ErrInsufficientBond)
	_, err = s.env.TryDeliver(s.alice, types.MsgUnbond{Asset: sdk.NewInt64Coin(ampWhale, 1)}, sdk.NewInt64Coin(ampWhale, 1))
	s.Require().ErrorIs(err, types.ErrAssetMismatch)

	s.env.Deliver(s.T(), s.alice, types.MsgUnbond{Asset: sdk.NewInt64Coin(ampWhale, 400)})
	global, err := s.env.App.BondingManager.GetGlobalIndex(s.env.Ctx)
	s.Require().NoError(err)
	s.Require().Equal(math.NewInt(600), global.Bonded)

	_, err = s.env.TryDeliver(s.alice, types.MsgWithdraw{Denom: ampWhale})
	s.Require().ErrorIs(err, types.ErrNothingToWithdraw)

	cfg, err := s.env.App.BondingManager.GetConfig(s.env.Ctx)
	s.Require().NoError(err)
	s.env.AdvanceTime(cfg.UnbondingPeriod)

	before := s.env.Balance(s.alice, ampWhale)
	s.env.Deliver(s.T(), s.alice, types.MsgWithdraw{Denom: ampWhale})
	s.Require().Equal(before.AddRaw(400), s.env.Balance(s.alice, ampWhale))

	pending, err := s.env.App.BondingManager.GetUnbondings(s.env.Ctx, s.alice, ampWhale)
	s.Require().NoError(err)
	s.Require().Empty(pending)
}

func (s *KeeperTestSuite) TestUnbondingEntriesBounded() {
	s.updateConfig(func(cfg *types.Config) { cfg.MaxUnbondingEntries = 2 })
	s.bond(s.alice, sdk.NewInt64Coin(ampWhale, 1_000))

	s.env.Deliver(s.T(), s.alice, types.MsgUnbond{Asset: sdk.NewInt64Coin(ampWhale, 1)})
	s.env.Deliver(s.T(), s.alice, types.MsgUnbond{Asset: sdk.NewInt64Coin(ampWhale, 1)})
	_, err := s.env.TryDeliver(s.alice, types.MsgUnbond{Asset: sdk.NewInt64Coin(ampWhale, 1)})
	s.Require().ErrorIs(err, types.ErrTooManyUnbondings)
}

// Fees flowing through several epochs are paid out in full, up to rounding
// dust, and never more.
func (s *KeeperTestSuite) TestFeesConserved() {
	carol := keepertest.Addr("carol")
	s.env.Fund(s.T(), carol, sdk.NewInt64Coin(bWhale, 1_000_000))
	bonders := []sdk.AccAddress{s.alice, s.bob, carol}

	s.bond(s.alice, sdk.NewInt64Coin(ampWhale, 1_234))
	s.bond(s.bob, sdk.NewInt64Coin(bWhale, 56_789))

	distributed := math.ZeroInt()
	paid := math.ZeroInt()
	for i, fee := range []int64{1_000, 77_777, 3, 1_000_000} {
		s.newEpoch(sdk.NewInt64Coin(usdc, fee))
		distributed = distributed.AddRaw(fee)
		for _, addr := range bonders {
			paid = paid.Add(s.claim(addr))
		}
		if i == 1 {
			s.bond(carol, sdk.NewInt64Coin(bWhale, 999_999))
			s.env.Deliver(s.T(), s.alice, types.MsgUnbond{Asset: sdk.NewInt64Coin(ampWhale, 234)})
		}
	}

	s.Require().True(paid.LTE(distributed))
	dust := distributed.Sub(paid)
	s.Require().True(dust.LTE(math.NewInt(int64(len(bonders)*4))), "dust %s", dust)
	s.Require().Equal(dust, s.env.Balance(s.env.App.BondingManager.ModuleAddress(), usdc))
}

func (s *KeeperTestSuite) TestGenesisRoundTrip() {
	s.bond(s.alice, sdk.NewInt64Coin(ampWhale, 1_000))
	s.newEpoch(sdk.NewInt64Coin(usdc, 1_000))
	s.claim(s.alice)
	s.env.Deliver(s.T(), s.alice, types.MsgUnbond{Asset: sdk.NewInt64Coin(ampWhale, 100)})

	exported, err := s.env.App.BondingManager.ExportGenesis(s.env.Ctx)
	s.Require().NoError(err)

	fresh := keepertest.SetupTestApp(s.T())
	s.Require().NoError(fresh.App.BondingManager.InitGenesis(fresh.Ctx, *exported))
	reexported, err := fresh.App.BondingManager.ExportGenesis(fresh.Ctx)
	s.Require().NoError(err)
	s.Require().Equal(exported, reexported)

	exported.GlobalIndex.Bonded = exported.GlobalIndex.Bonded.AddRaw(1)
	s.Require().ErrorIs(exported.Validate(), types.ErrInsufficientBond)
}
