package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/lhub/x/host"
	"github.com/paw-chain/lhub/x/shared/fixedpoint"
	"github.com/paw-chain/lhub/x/vaultmanager/types"
)

// DepositShare returns the LP minted to the depositor of amount. The first
// deposit also locks MinimumLiquidityAmount LP to the module, returned as
// locked.
func DepositShare(vault types.Vault, amount math.Int) (share, locked math.Int, err error) {
	if vault.TotalShare.IsZero() {
		if amount.LTE(math.NewInt(types.MinimumLiquidityAmount)) {
			return math.Int{}, math.Int{}, types.ErrInvalidInitialDeposit.Wrapf(
				"deposit %s, minimum liquidity %d", amount, types.MinimumLiquidityAmount,
			)
		}
		locked = math.NewInt(types.MinimumLiquidityAmount)
		return amount.Sub(locked), locked, nil
	}
	if vault.TotalDeposits.IsZero() {
		return math.Int{}, math.Int{}, types.ErrInsufficientAssetBalance.Wrapf("vault %s holds no deposits", vault.Identifier)
	}
	share, err = fixedpoint.MulDiv(amount, vault.TotalShare, vault.TotalDeposits)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	if share.IsZero() {
		return math.Int{}, math.Int{}, types.ErrInvalidZeroAmount.Wrapf("deposit %s mints no shares", amount)
	}
	return share, math.ZeroInt(), nil
}

// WithdrawAmount returns the deposits redeemed by lpAmount, rounded down.
func WithdrawAmount(vault types.Vault, lpAmount math.Int) (math.Int, error) {
	if vault.TotalShare.IsZero() {
		return math.Int{}, types.ErrInsufficientAssetBalance.Wrapf("vault %s has no shares", vault.Identifier)
	}
	if lpAmount.GT(vault.TotalShare) {
		return math.Int{}, types.ErrInsufficientAssetBalance.Wrapf("%s exceeds total share %s", lpAmount, vault.TotalShare)
	}
	return fixedpoint.MulDiv(lpAmount, vault.TotalDeposits, vault.TotalShare)
}

// Deposit adds the attached asset to a vault and mints LP to the sender.
func (k Keeper) Deposit(ctx context.Context, info host.MessageInfo, msg types.MsgDeposit) (*host.Response, error) {
	if info.Sender.Equals(k.ModuleAddress()) {
		return nil, types.ErrUnauthorized.Wrap("the vault manager cannot deposit into its own vaults")
	}
	vault, err := k.GetVault(ctx, msg.VaultIdentifier)
	if err != nil {
		return nil, err
	}
	if !vault.Flags.DepositEnabled {
		return nil, types.ErrDepositsDisabled.Wrapf("vault %s", vault.Identifier)
	}
	if k.GetActiveLoanCount(ctx) > 0 {
		return nil, types.ErrDepositDuringLoan
	}
	if msg.Amount.Denom != vault.AssetDenom {
		return nil, types.ErrAssetMismatch.Wrapf("vault %s takes %s, got %s", vault.Identifier, vault.AssetDenom, msg.Amount.Denom)
	}
	if !info.Funds.Equal(sdk.NewCoins(msg.Amount)) {
		return nil, types.ErrFundsMismatch.Wrapf("declared %s, attached %s", msg.Amount, info.Funds)
	}

	share, locked, err := DepositShare(vault, msg.Amount.Amount)
	if err != nil {
		return nil, err
	}
	if vault.TotalDeposits, err = fixedpoint.SafeAdd(vault.TotalDeposits, msg.Amount.Amount); err != nil {
		return nil, err
	}
	if vault.TotalShare, err = fixedpoint.SafeAdd(vault.TotalShare, share.Add(locked)); err != nil {
		return nil, err
	}
	if err := k.SetVault(ctx, vault); err != nil {
		return nil, err
	}
	k.metrics.Deposits.WithLabelValues(vault.Identifier).Inc()

	return host.NewResponse().
		AddAttribute("sender", info.Sender.String()).
		AddAttribute("vault_identifier", vault.Identifier).
		AddAttribute("deposit", msg.Amount.String()).
		AddAttribute("lp_minted", share.String()).
		AddInstruction(host.Mint{To: k.ModuleAddress(), Amount: sdk.NewCoins(sdk.NewCoin(vault.LPDenom, locked))}).
		AddInstruction(host.Mint{To: info.Sender, Amount: sdk.NewCoins(sdk.NewCoin(vault.LPDenom, share))}), nil
}

// Withdraw burns the attached vault LP and pays out its share of deposits.
func (k Keeper) Withdraw(ctx context.Context, info host.MessageInfo, msg types.MsgWithdraw) (*host.Response, error) {
	vault, err := k.GetVault(ctx, msg.VaultIdentifier)
	if err != nil {
		return nil, err
	}
	if !vault.Flags.WithdrawEnabled {
		return nil, types.ErrWithdrawalsDisabled.Wrapf("vault %s", vault.Identifier)
	}
	if k.GetActiveLoanCount(ctx) > 0 {
		return nil, types.ErrWithdrawDuringLoan
	}
	if len(info.Funds) != 1 || info.Funds[0].Denom != vault.LPDenom {
		return nil, types.ErrAssetMismatch.Wrapf("expected only %s, got %s", vault.LPDenom, info.Funds)
	}
	lp := info.Funds[0]

	refund, err := WithdrawAmount(vault, lp.Amount)
	if err != nil {
		return nil, err
	}
	if refund.IsZero() {
		return nil, types.ErrInvalidZeroAmount.Wrapf("%s redeems nothing", lp)
	}
	if vault.TotalDeposits, err = fixedpoint.SafeSub(vault.TotalDeposits, refund); err != nil {
		return nil, err
	}
	vault.TotalShare = vault.TotalShare.Sub(lp.Amount)
	if err := k.SetVault(ctx, vault); err != nil {
		return nil, err
	}
	k.metrics.Withdrawals.WithLabelValues(vault.Identifier).Inc()

	return host.NewResponse().
		AddAttribute("sender", info.Sender.String()).
		AddAttribute("vault_identifier", vault.Identifier).
		AddAttribute("lp_burned", lp.String()).
		AddAttribute("refund", refund.String()).
		AddInstruction(host.Burn{Amount: sdk.NewCoins(lp)}).
		Send(info.Sender, sdk.NewCoin(vault.AssetDenom, refund)), nil
}

// QueryShare returns the underlying asset value of lpAmount vault LP.
func (k Keeper) QueryShare(ctx context.Context, vaultIdentifier string, lpAmount math.Int) (sdk.Coin, error) {
	vault, err := k.GetVault(ctx, vaultIdentifier)
	if err != nil {
		return sdk.Coin{}, err
	}
	amount, err := WithdrawAmount(vault, lpAmount)
	if err != nil {
		return sdk.Coin{}, err
	}
	return sdk.NewCoin(vault.AssetDenom, amount), nil
}
