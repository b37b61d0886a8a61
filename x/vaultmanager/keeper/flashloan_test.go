package keeper_test

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	pooltypes "github.com/paw-chain/lhub/x/poolmanager/types"
	"github.com/paw-chain/lhub/x/vaultmanager/keeper"
	"github.com/paw-chain/lhub/x/vaultmanager/types"
)

func (s *KeeperTestSuite) fundedVault() {
	s.createVault("whale", whale)
	s.deposit(s.alice, "whale", sdk.NewInt64Coin(whale, 1_000_000_000))
}

func (s *KeeperTestSuite) TestQueryPayback() {
	s.fundedVault()
	payback, err := s.env.App.VaultManager.QueryPayback(s.env.Ctx, "whale", math.NewInt(500_000))
	s.Require().NoError(err)
	s.Require().Equal(math.NewInt(500), payback.ProtocolFee)
	s.Require().Equal(math.NewInt(1_000), payback.FlashLoanFee)
	s.Require().Equal(sdk.NewInt64Coin(whale, 501_500), payback.Total)
}

func (s *KeeperTestSuite) TestFlashLoanRepaidWithFees() {
	s.fundedVault()
	before := s.vault("whale").TotalDeposits

	// the borrower covers the fees from its own pocket
	res := s.env.Deliver(s.T(), s.bob, types.MsgFlashLoan{
		VaultIdentifier: "whale",
		Asset:           sdk.NewInt64Coin(whale, 500_000),
	}, sdk.NewInt64Coin(whale, 1_500))
	s.Require().NotNil(res)

	vault := s.vault("whale")
	s.Require().Equal(before.AddRaw(1_000), vault.TotalDeposits)
	s.Require().Zero(vault.LoanCounter)
	s.Require().Zero(s.env.App.VaultManager.GetActiveLoanCount(s.env.Ctx))
	s.Require().Equal(math.NewInt(500), s.env.Balance(s.env.FeeCollector, whale))

	// depositors earn the flash loan fee
	lp := s.env.Balance(s.alice, vault.LPDenom)
	value, err := s.env.App.VaultManager.QueryShare(s.env.Ctx, "whale", lp)
	s.Require().NoError(err)
	s.Require().True(value.Amount.GT(lp))
}

func (s *KeeperTestSuite) TestFlashLoanShortByOne() {
	s.fundedVault()
	balance := s.env.Balance(s.bob, whale)

	_, err := s.env.TryDeliver(s.bob, types.MsgFlashLoan{
		VaultIdentifier: "whale",
		Asset:           sdk.NewInt64Coin(whale, 500_000),
	}, sdk.NewInt64Coin(whale, 1_499))
	s.Require().ErrorIs(err, types.ErrFlashLoanLoss)

	// nothing moved
	s.Require().Equal(balance, s.env.Balance(s.bob, whale))
	s.Require().Equal(math.NewInt(1_000_000_000), s.vault("whale").TotalDeposits)
}

func (s *KeeperTestSuite) TestFlashLoanLargerThanDeposits() {
	s.fundedVault()
	_, err := s.env.TryDeliver(s.bob, types.MsgFlashLoan{
		VaultIdentifier: "whale",
		Asset:           sdk.NewInt64Coin(whale, 1_000_000_001),
	})
	s.Require().ErrorIs(err, types.ErrInsufficientAssetBalance)

	_, err = s.env.TryDeliver(s.bob, types.MsgFlashLoan{
		VaultIdentifier: "whale",
		Asset:           sdk.NewInt64Coin(luna, 1_000),
	})
	s.Require().ErrorIs(err, types.ErrAssetMismatch)
}

func (s *KeeperTestSuite) TestFlashLoanCallbackOnlyFromModule() {
	s.fundedVault()
	_, err := s.env.TryDeliver(s.bob, types.MsgFlashLoanCallback{
		VaultIdentifier: "whale",
		Loan:            sdk.NewInt64Coin(whale, 500_000),
		Borrower:        s.bob.String(),
	})
	s.Require().ErrorIs(err, types.ErrUnauthorized)
}

func (s *KeeperTestSuite) TestFlashLoanRejectsReentry() {
	s.fundedVault()
	loan := sdk.NewInt64Coin(whale, 500_000)

	_, err := s.env.TryDeliver(s.bob, types.MsgFlashLoan{
		VaultIdentifier: "whale",
		Asset:           loan,
		Msgs: []types.FlashLoanMessage{{
			Msg: types.MsgFlashLoan{VaultIdentifier: "whale", Asset: loan},
		}},
	}, sdk.NewInt64Coin(whale, 1_500))
	s.Require().ErrorIs(err, types.ErrLoanInProgress)

	_, err = s.env.TryDeliver(s.bob, types.MsgFlashLoan{
		VaultIdentifier: "whale",
		Asset:           loan,
		Msgs: []types.FlashLoanMessage{{
			Msg: types.MsgWithdraw{VaultIdentifier: "whale"},
		}},
	}, sdk.NewInt64Coin(whale, 1_500))
	s.Require().ErrorIs(err, types.ErrWithdrawDuringLoan)

	// settling early leaves nothing for the final callback
	_, err = s.env.TryDeliver(s.bob, types.MsgFlashLoan{
		VaultIdentifier: "whale",
		Asset:           loan,
		Msgs: []types.FlashLoanMessage{{
			Msg: types.MsgFlashLoanCallback{VaultIdentifier: "whale", Loan: loan, Borrower: s.bob.String()},
		}},
	}, sdk.NewInt64Coin(whale, 1_500))
	s.Require().ErrorIs(err, types.ErrNoActiveLoan)

	s.Require().Zero(s.env.App.VaultManager.GetActiveLoanCount(s.env.Ctx))
}

// A loan funds an arbitrage between two mispriced pools and the borrower
// keeps the profit.
func (s *KeeperTestSuite) TestFlashLoanArbitrage() {
	s.fundedVault()
	for _, p := range []struct {
		id                string
		whaleAmt, lunaAmt int64
	}{
		{"cheap", 1_000_000_000, 2_000_000_000},
		{"dear", 2_000_000_000, 1_000_000_000},
	} {
		s.env.Deliver(s.T(), s.alice, pooltypes.MsgCreatePool{
			AssetDenoms:   []string{whale, luna},
			AssetDecimals: []uint32{6, 6},
			Fees:          pooltypes.ZeroFees(),
			PairType:      pooltypes.NewConstantProduct(),
			Identifier:    p.id,
		})
		s.env.Deliver(s.T(), s.alice, pooltypes.MsgProvideLiquidity{PoolIdentifier: p.id},
			sdk.NewInt64Coin(whale, p.whaleAmt), sdk.NewInt64Coin(luna, p.lunaAmt))
	}

	loan := sdk.NewInt64Coin(whale, 1_000_000)
	leg1, err := s.env.App.PoolManager.SimulateSwap(s.env.Ctx, "cheap", loan, luna)
	s.Require().NoError(err)
	leg2, err := s.env.App.PoolManager.SimulateSwap(s.env.Ctx, "dear", sdk.NewCoin(luna, leg1.ReturnAmount), whale)
	s.Require().NoError(err)

	payback, err := keeper.ComputePayback(s.vault("whale"), loan.Amount)
	s.Require().NoError(err)
	profit := leg2.ReturnAmount.Sub(payback.Total.Amount)
	s.Require().True(profit.IsPositive())

	before := s.env.Balance(s.bob, whale)
	s.env.Deliver(s.T(), s.bob, types.MsgFlashLoan{
		VaultIdentifier: "whale",
		Asset:           loan,
		Msgs: []types.FlashLoanMessage{
			{Msg: pooltypes.MsgSwap{PoolIdentifier: "cheap", AskDenom: luna}, Funds: sdk.NewCoins(loan)},
			{
				Msg:   pooltypes.MsgSwap{PoolIdentifier: "dear", AskDenom: whale},
				Funds: sdk.NewCoins(sdk.NewCoin(luna, leg1.ReturnAmount)),
			},
		},
	})

	s.Require().Equal(before.Add(profit), s.env.Balance(s.bob, whale))
	s.Require().Equal(math.NewInt(1_000_001_000), s.vault("whale").TotalDeposits)
}
