package keeper_test

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	keepertest "github.com/paw-chain/lhub/testutil/keeper"
	"github.com/paw-chain/lhub/x/incentivemanager/types"
)

// claimSetup funds a 14 epoch incentive of 1000 per epoch and gives alice a
// quarter of the weight and bob the rest.
func (s *KeeperTestSuite) claimSetup() types.Incentive {
	incentive := s.fillIncentive(s.alice, 14_000)
	s.fillPosition(s.alice, 1_000, day)
	s.fillPosition(s.bob, 3_000, day)
	return incentive
}

func (s *KeeperTestSuite) claim(addr sdk.AccAddress) math.Int {
	before := s.env.Balance(addr, usdc)
	s.env.Deliver(s.T(), addr, types.MsgClaim{})
	return s.env.Balance(addr, usdc).Sub(before)
}

func (s *KeeperTestSuite) TestClaimSharesEmission() {
	s.claimSetup()

	// nothing accrues during the epoch the positions were opened in
	_, err := s.env.TryDeliver(s.alice, types.MsgClaim{})
	s.Require().ErrorIs(err, types.ErrNothingToClaim)

	s.advanceEpochs(1)
	s.Require().Equal(math.NewInt(250), s.claim(s.alice))

	_, err = s.env.TryDeliver(s.alice, types.MsgClaim{})
	s.Require().ErrorIs(err, types.ErrNothingToClaim)

	s.advanceEpochs(1)
	claimable, err := s.env.App.IncentiveManager.Claimable(s.env.Ctx, s.bob)
	s.Require().NoError(err)
	s.Require().Equal(sdk.NewCoins(sdk.NewInt64Coin(usdc, 1_500)).String(), claimable.String())

	s.Require().Equal(math.NewInt(250), s.claim(s.alice))
	s.Require().Equal(math.NewInt(1_500), s.claim(s.bob))

	incentive, err := s.env.App.IncentiveManager.GetIncentive(s.env.Ctx, "1")
	s.Require().NoError(err)
	s.Require().Equal(math.NewInt(2_000), incentive.ClaimedAmount)
	s.Require().Equal(s.currentEpoch(), incentive.LastEpochClaimed)
}

func (s *KeeperTestSuite) TestClaimWithoutPosition() {
	s.fillIncentive(s.alice, 14_000)
	s.advanceEpochs(1)

	_, err := s.env.TryDeliver(s.bob, types.MsgClaim{})
	s.Require().ErrorIs(err, types.ErrNothingToClaim)

	claimable, err := s.env.App.IncentiveManager.Claimable(s.env.Ctx, s.bob)
	s.Require().NoError(err)
	s.Require().True(claimable.IsZero())
}

func (s *KeeperTestSuite) TestClosedPositionStopsEarning() {
	s.claimSetup()
	s.advanceEpochs(1)

	positions, err := s.env.App.IncentiveManager.GetPositionsByOwner(s.env.Ctx, s.alice)
	s.Require().NoError(err)
	s.Require().Len(positions, 1)
	s.env.Deliver(s.T(), s.alice, types.MsgClosePosition{Identifier: positions[0].Identifier})

	// the close takes effect from the next epoch, the current one still counts
	s.advanceEpochs(2)
	s.Require().Equal(math.NewInt(250), s.claim(s.alice))
	s.Require().Equal(math.NewInt(750+1_000+1_000), s.claim(s.bob))

	s.advanceEpochs(1)
	s.Require().True(s.claim(s.alice).IsZero())
}

func (s *KeeperTestSuite) TestClaimNeverExceedsIncentive() {
	incentive := s.claimSetup()

	// run well past the end of the incentive
	s.advanceEpochs(int(incentive.PreliminaryEndEpoch-incentive.StartEpoch) + 3)
	s.Require().Equal(math.NewInt(3_500), s.claim(s.alice))
	s.Require().Equal(math.NewInt(10_500), s.claim(s.bob))

	stored, err := s.env.App.IncentiveManager.GetIncentive(s.env.Ctx, incentive.Identifier)
	s.Require().NoError(err)
	s.Require().Equal(incentive.IncentiveAsset.Amount, stored.ClaimedAmount)
	s.Require().True(stored.Remaining().IsZero())
	s.Require().Equal(incentive.PreliminaryEndEpoch-1, stored.LastEpochClaimed)
	s.Require().True(s.env.Balance(s.env.App.IncentiveManager.ModuleAddress(), usdc).IsZero())
}

func (s *KeeperTestSuite) TestClaimAfterLateEntry() {
	s.claimSetup()
	s.advanceEpochs(3)

	// carol joins at epoch 4 with the same weight as bob
	carol := keepertest.Addr("carol")
	s.env.Fund(s.T(), carol, sdk.NewInt64Coin(s.lp, 3_000))
	s.fillPosition(carol, 3_000, day)

	s.advanceEpochs(1)
	// epoch 5 splits 1000 over a total weight of 7000
	s.Require().Equal(math.NewInt(428), s.claim(carol))
}
