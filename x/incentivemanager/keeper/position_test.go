package keeper_test

import (
	"testing"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/lhub/x/host"
	"github.com/paw-chain/lhub/x/incentivemanager/keeper"
	"github.com/paw-chain/lhub/x/incentivemanager/types"
	pooltypes "github.com/paw-chain/lhub/x/poolmanager/types"
)

const year = uint64(31_556_926)

func (s *KeeperTestSuite) weight(addr sdk.AccAddress, epoch uint64) math.Int {
	w, err := s.env.App.IncentiveManager.GetLPWeight(s.env.Ctx, addr, s.lp, epoch)
	s.Require().NoError(err)
	return w
}

func (s *KeeperTestSuite) totalWeight(epoch uint64) math.Int {
	w, err := s.env.App.IncentiveManager.GetTotalLPWeight(s.env.Ctx, s.lp, epoch)
	s.Require().NoError(err)
	return w
}

func (s *KeeperTestSuite) TestFillPositionWeights() {
	position := s.fillPosition(s.alice, 1_000, day)
	s.Require().Equal("p-1", position.Identifier)
	s.Require().True(position.Open)

	s.fillPosition(s.bob, 1_000, year)

	// weights apply from the next epoch
	s.Require().True(s.weight(s.alice, 1).IsZero())
	s.Require().Equal(math.NewInt(1_000), s.weight(s.alice, 2))
	s.Require().Equal(math.NewInt(16_000), s.weight(s.bob, 2))
	s.Require().Equal(math.NewInt(17_000), s.totalWeight(2))

	s.Require().Equal(math.NewInt(2_000), s.env.Balance(s.env.App.IncentiveManager.ModuleAddress(), s.lp))
}

func (s *KeeperTestSuite) TestFillPositionRejects() {
	_, err := s.env.TryDeliver(s.alice, types.MsgFillPosition{UnlockingDuration: 60}, sdk.NewInt64Coin(s.lp, 1_000))
	s.Require().ErrorIs(err, types.ErrInvalidUnlockingDuration)

	_, err = s.env.TryDeliver(s.alice, types.MsgFillPosition{UnlockingDuration: year + 1}, sdk.NewInt64Coin(s.lp, 1_000))
	s.Require().ErrorIs(err, types.ErrInvalidUnlockingDuration)

	_, err = s.env.TryDeliver(s.alice, types.MsgFillPosition{UnlockingDuration: day}, sdk.NewInt64Coin(usdc, 1_000))
	s.Require().ErrorIs(err, types.ErrInvalidLPDenom)

	_, err = s.env.TryDeliver(s.alice, types.MsgFillPosition{UnlockingDuration: day, Receiver: s.bob.String()},
		sdk.NewInt64Coin(s.lp, 1_000))
	s.Require().ErrorIs(err, types.ErrUnauthorized)

	_, err = s.env.TryDeliver(s.alice, types.MsgFillPosition{UnlockingDuration: day, Identifier: "p-7"},
		sdk.NewInt64Coin(s.lp, 1_000))
	s.Require().ErrorIs(err, types.ErrInvalidIdentifier)
}

func (s *KeeperTestSuite) TestModuleCannotOwnPosition() {
	im := s.env.App.IncentiveManager
	poolManager := host.ModuleAddress(pooltypes.ModuleName)
	s.env.Fund(s.T(), poolManager, sdk.NewInt64Coin(s.lp, 999_000))

	msg := types.MsgFillPosition{UnlockingDuration: 7 * day, Receiver: im.ModuleAddress().String()}
	s.Require().ErrorIs(msg.ValidateBasic(), types.ErrInvalidAddress)

	_, err := s.env.TryDeliver(poolManager, msg, sdk.NewInt64Coin(s.lp, 999_000))
	s.Require().ErrorIs(err, types.ErrInvalidAddress)
	s.Require().True(s.totalWeight(2).IsZero())

	// the pool manager can still lock on behalf of a real holder
	msg.Receiver = s.alice.String()
	s.env.Deliver(s.T(), poolManager, msg, sdk.NewInt64Coin(s.lp, 999_000))
	s.Require().Equal(s.weight(s.alice, 2), s.totalWeight(2))
}

func (s *KeeperTestSuite) TestModuleWeightWrittenOnce() {
	im := s.env.App.IncentiveManager
	epoch := s.currentEpoch()

	s.Require().NoError(keeper.AdjustWeightForTest(*im, s.env.Ctx, s.alice, s.lp, epoch, math.NewInt(1_000)))
	s.Require().NoError(keeper.AdjustWeightForTest(*im, s.env.Ctx, im.ModuleAddress(), s.lp, epoch, math.NewInt(500)))

	s.Require().Equal(math.NewInt(1_000), s.weight(s.alice, epoch+1))
	s.Require().Equal(math.NewInt(1_500), s.totalWeight(epoch+1))
}

func (s *KeeperTestSuite) TestTopUpPosition() {
	s.env.Deliver(s.T(), s.alice, types.MsgFillPosition{UnlockingDuration: day, Identifier: "mine"}, sdk.NewInt64Coin(s.lp, 1_000))
	s.env.Deliver(s.T(), s.alice, types.MsgFillPosition{UnlockingDuration: day, Identifier: "mine"}, sdk.NewInt64Coin(s.lp, 500))

	position, err := s.env.App.IncentiveManager.GetPosition(s.env.Ctx, "mine")
	s.Require().NoError(err)
	s.Require().Equal(sdk.NewInt64Coin(s.lp, 1_500), position.LPAsset)
	s.Require().Equal(math.NewInt(1_500), s.weight(s.alice, 2))

	_, err = s.env.TryDeliver(s.bob, types.MsgFillPosition{UnlockingDuration: day, Identifier: "mine"}, sdk.NewInt64Coin(s.lp, 500))
	s.Require().ErrorIs(err, types.ErrUnauthorized)
}

func (s *KeeperTestSuite) TestClosePositionPartially() {
	s.env.Deliver(s.T(), s.alice, types.MsgFillPosition{UnlockingDuration: day, Identifier: "mine"}, sdk.NewInt64Coin(s.lp, 1_000))

	tooMuch := sdk.NewInt64Coin(s.lp, 1_001)
	_, err := s.env.TryDeliver(s.alice, types.MsgClosePosition{Identifier: "mine", LPAsset: &tooMuch})
	s.Require().ErrorIs(err, types.ErrInvalidPositionAmount)

	_, err = s.env.TryDeliver(s.bob, types.MsgClosePosition{Identifier: "mine"})
	s.Require().ErrorIs(err, types.ErrUnauthorized)

	part := sdk.NewInt64Coin(s.lp, 400)
	res := s.env.Deliver(s.T(), s.alice, types.MsgClosePosition{Identifier: "mine", LPAsset: &part})
	closed, ok := res.Data.(types.Position)
	s.Require().True(ok)
	s.Require().Equal("p-1", closed.Identifier)
	s.Require().False(closed.Open)
	s.Require().Equal(part, closed.LPAsset)
	s.Require().Equal(s.env.Ctx.BlockTime().Unix()+int64(day), closed.ExpiringAt)

	open, err := s.env.App.IncentiveManager.GetPosition(s.env.Ctx, "mine")
	s.Require().NoError(err)
	s.Require().True(open.Open)
	s.Require().Equal(sdk.NewInt64Coin(s.lp, 600), open.LPAsset)
	s.Require().Equal(math.NewInt(600), s.weight(s.alice, 2))

	_, err = s.env.TryDeliver(s.alice, types.MsgClosePosition{Identifier: closed.Identifier})
	s.Require().ErrorIs(err, types.ErrPositionAlreadyClosed)

	_, err = s.env.TryDeliver(s.alice, types.MsgWithdrawPosition{Identifier: closed.Identifier})
	s.Require().ErrorIs(err, types.ErrPositionNotUnlocked)

	before := s.env.Balance(s.alice, s.lp)
	s.env.AdvanceTime(time.Duration(day) * time.Second)
	s.env.Deliver(s.T(), s.alice, types.MsgWithdrawPosition{Identifier: closed.Identifier})
	s.Require().Equal(before.AddRaw(400), s.env.Balance(s.alice, s.lp))

	_, err = s.env.App.IncentiveManager.GetPosition(s.env.Ctx, closed.Identifier)
	s.Require().ErrorIs(err, types.ErrPositionNotFound)
}

func (s *KeeperTestSuite) TestEmergencyUnlock() {
	position := s.fillPosition(s.alice, 1_000, day)
	before := s.env.Balance(s.alice, s.lp)

	_, err := s.env.TryDeliver(s.alice, types.MsgWithdrawPosition{Identifier: position.Identifier})
	s.Require().ErrorIs(err, types.ErrPositionNotUnlocked)

	s.env.Deliver(s.T(), s.alice, types.MsgWithdrawPosition{Identifier: position.Identifier, EmergencyUnlock: true})
	s.Require().Equal(before.AddRaw(990), s.env.Balance(s.alice, s.lp))
	s.Require().Equal(math.NewInt(10), s.env.Balance(s.env.FeeCollector, s.lp))
	s.Require().True(s.weight(s.alice, 2).IsZero())
	s.Require().True(s.totalWeight(2).IsZero())
}

func TestMultiplier(t *testing.T) {
	require.Equal(t, math.NewInt(1_000), types.Weight(math.NewInt(1_000), day, day, year))
	require.Equal(t, math.NewInt(16_000), types.Weight(math.NewInt(1_000), year, day, year))
	require.Equal(t, math.NewInt(8_500), types.Weight(math.NewInt(1_000), day+(year-day)/2, day, year))
	require.Equal(t, math.LegacyOneDec(), types.Multiplier(day, day, day))
}
