package keeper

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/lhub/x/host"
	"github.com/paw-chain/lhub/x/shared/fixedpoint"
	"github.com/paw-chain/lhub/x/vaultmanager/types"
)

// Payback is what a flash loan of Loan must return.
type Payback struct {
	Loan         sdk.Coin `json:"loan"`
	ProtocolFee  math.Int `json:"protocol_fee"`
	FlashLoanFee math.Int `json:"flash_loan_fee"`
	Total        sdk.Coin `json:"total"`
}

// ComputePayback returns the loan plus both fees, each rounded down.
func ComputePayback(vault types.Vault, amount math.Int) (Payback, error) {
	protocolFee, err := fixedpoint.MulDecFloor(amount, vault.Fees.ProtocolFee)
	if err != nil {
		return Payback{}, err
	}
	flashLoanFee, err := fixedpoint.MulDecFloor(amount, vault.Fees.FlashLoanFee)
	if err != nil {
		return Payback{}, err
	}
	total, err := fixedpoint.SafeAdd(amount, protocolFee.Add(flashLoanFee))
	if err != nil {
		return Payback{}, err
	}
	return Payback{
		Loan:         sdk.NewCoin(vault.AssetDenom, amount),
		ProtocolFee:  protocolFee,
		FlashLoanFee: flashLoanFee,
		Total:        sdk.NewCoin(vault.AssetDenom, total),
	}, nil
}

// QueryPayback returns the payback of borrowing amount from a vault.
func (k Keeper) QueryPayback(ctx context.Context, vaultIdentifier string, amount math.Int) (Payback, error) {
	vault, err := k.GetVault(ctx, vaultIdentifier)
	if err != nil {
		return Payback{}, err
	}
	return ComputePayback(vault, amount)
}

// FlashLoan lends msg.Asset to the messages in msg.Msgs, which run with the
// vault manager as sender, and appends the callback that settles the loan.
func (k Keeper) FlashLoan(ctx context.Context, info host.MessageInfo, msg types.MsgFlashLoan) (*host.Response, error) {
	vault, err := k.checkLoan(ctx, msg.VaultIdentifier, msg.Asset)
	if err != nil {
		return nil, err
	}
	if k.GetActiveLoanCount(ctx) > 0 {
		return nil, types.ErrLoanInProgress
	}
	if vault.TotalDeposits.LT(msg.Asset.Amount) {
		return nil, types.ErrInsufficientAssetBalance.Wrapf(
			"requested %s, vault %s holds %s", msg.Asset, vault.Identifier, vault.TotalDeposits,
		)
	}

	// attached funds stay with the module for the loan and count as surplus
	pre := k.bankKeeper.GetAllBalances(ctx, k.ModuleAddress()).Sub(info.Funds...)
	if err := k.setActiveLoan(ctx, types.Loan{
		VaultIdentifier: vault.Identifier,
		Borrower:        info.Sender.String(),
		Asset:           msg.Asset,
		PreLoanBalances: pre,
	}); err != nil {
		return nil, err
	}
	vault.LoanCounter++
	if err := k.SetVault(ctx, vault); err != nil {
		return nil, err
	}
	k.setActiveLoanCount(ctx, k.GetActiveLoanCount(ctx)+1)

	k.Logger(ctx).Debug("flash loan opened",
		"vault_identifier", vault.Identifier,
		"borrower", info.Sender.String(),
		"asset", msg.Asset.String(),
		"messages", len(msg.Msgs),
	)

	res := host.NewResponse().
		AddAttribute("borrower", info.Sender.String()).
		AddAttribute("vault_identifier", vault.Identifier).
		AddAttribute("asset", msg.Asset.String())
	for _, m := range msg.Msgs {
		res.AddInstruction(host.Execute{Msg: m.Msg, Funds: m.Funds})
	}
	res.AddInstruction(host.Execute{Msg: types.MsgFlashLoanCallback{
		VaultIdentifier: vault.Identifier,
		Loan:            msg.Asset,
		Borrower:        info.Sender.String(),
	}})
	return res, nil
}

// FlashLoanCallback settles the loan in flight against the balances
// snapshotted when it was opened.
func (k Keeper) FlashLoanCallback(ctx context.Context, info host.MessageInfo, msg types.MsgFlashLoanCallback) (*host.Response, error) {
	if !info.Sender.Equals(k.ModuleAddress()) {
		return nil, types.ErrUnauthorized.Wrapf("flash loan callback from %s", info.Sender)
	}
	loan, found, err := k.GetActiveLoan(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, types.ErrNoActiveLoan
	}
	if loan.VaultIdentifier != msg.VaultIdentifier || !loan.Asset.Equal(msg.Loan) || loan.Borrower != msg.Borrower {
		return nil, types.ErrAssetMismatch.Wrapf("callback for %s/%s does not match the loan in flight", msg.VaultIdentifier, msg.Loan)
	}
	vault, err := k.checkLoan(ctx, msg.VaultIdentifier, msg.Loan)
	if err != nil {
		return nil, err
	}
	if vault.LoanCounter == 0 {
		return nil, types.ErrNoActiveLoan.Wrapf("vault %s", vault.Identifier)
	}
	borrower, err := sdk.AccAddressFromBech32(msg.Borrower)
	if err != nil {
		return nil, types.ErrInvalidAddress.Wrapf("borrower: %s", err)
	}

	payback, err := ComputePayback(vault, msg.Loan.Amount)
	if err != nil {
		return nil, err
	}
	fees := payback.ProtocolFee.Add(payback.FlashLoanFee)

	post := k.bankKeeper.GetAllBalances(ctx, k.ModuleAddress())
	for _, coin := range loan.PreLoanBalances {
		required := coin.Amount
		if coin.Denom == vault.AssetDenom {
			required = required.Add(fees)
		}
		if have := post.AmountOf(coin.Denom); have.LT(required) {
			return nil, types.ErrFlashLoanLoss.Wrapf("%s balance %s, required %s", coin.Denom, have, required)
		}
	}

	surplus := sdk.NewCoins()
	for _, coin := range post {
		gain := coin.Amount.Sub(loan.PreLoanBalances.AmountOf(coin.Denom))
		if coin.Denom == vault.AssetDenom {
			gain = gain.Sub(fees)
		}
		if gain.IsPositive() {
			surplus = surplus.Add(sdk.NewCoin(coin.Denom, gain))
		}
	}

	vault.LoanCounter--
	if vault.TotalDeposits, err = fixedpoint.SafeAdd(vault.TotalDeposits, payback.FlashLoanFee); err != nil {
		return nil, err
	}
	if err := k.SetVault(ctx, vault); err != nil {
		return nil, err
	}
	k.deleteActiveLoan(ctx)
	k.setActiveLoanCount(ctx, k.GetActiveLoanCount(ctx)-1)

	k.metrics.FlashLoans.WithLabelValues(vault.Identifier).Inc()
	k.metrics.FlashLoanFees.WithLabelValues(vault.Identifier, "protocol").Add(toFloat(payback.ProtocolFee))
	k.metrics.FlashLoanFees.WithLabelValues(vault.Identifier, "flash_loan").Add(toFloat(payback.FlashLoanFee))

	k.Logger(ctx).Info("flash loan settled",
		"vault_identifier", vault.Identifier,
		"borrower", msg.Borrower,
		"loan", msg.Loan.String(),
		"profit", surplus.String(),
	)

	res := host.NewResponse().
		AddAttribute("borrower", msg.Borrower).
		AddAttribute("vault_identifier", vault.Identifier).
		AddAttribute("payback", payback.Total.String()).
		AddAttribute("protocol_fee", payback.ProtocolFee.String()).
		AddAttribute("flash_loan_fee", payback.FlashLoanFee.String()).
		AddAttribute("profit", surplus.String()).
		WithData(payback)
	if payback.ProtocolFee.IsPositive() {
		cfg, err := k.GetConfig(ctx)
		if err != nil {
			return nil, err
		}
		feeCollector, err := sdk.AccAddressFromBech32(cfg.FeeCollector)
		if err != nil {
			return nil, types.ErrInvalidConfig.Wrapf("fee collector: %s", err)
		}
		res.Send(feeCollector, sdk.NewCoin(vault.AssetDenom, payback.ProtocolFee))
	}
	res.AddInstruction(host.BankSend{To: borrower, Amount: surplus})
	return res, nil
}

// checkLoan loads the vault and checks it can lend asset.
func (k Keeper) checkLoan(ctx context.Context, vaultIdentifier string, asset sdk.Coin) (types.Vault, error) {
	vault, err := k.GetVault(ctx, vaultIdentifier)
	if err != nil {
		return types.Vault{}, err
	}
	if !vault.Flags.FlashLoanEnabled {
		return types.Vault{}, types.ErrFlashLoansDisabled.Wrapf("vault %s", vault.Identifier)
	}
	if asset.Denom != vault.AssetDenom {
		return types.Vault{}, types.ErrAssetMismatch.Wrapf("vault %s lends %s, got %s", vault.Identifier, vault.AssetDenom, asset.Denom)
	}
	if asset.Amount.IsNil() || !asset.Amount.IsPositive() {
		return types.Vault{}, types.ErrInvalidZeroAmount.Wrapf("loan %s", asset)
	}
	return vault, nil
}

// GetActiveLoanCount returns the number of loans in flight.
func (k Keeper) GetActiveLoanCount(ctx context.Context) uint64 {
	bz := k.getStore(ctx).Get(ActiveLoanCountKey)
	if bz == nil {
		return 0
	}
	return binary.BigEndian.Uint64(bz)
}

func (k Keeper) setActiveLoanCount(ctx context.Context, count uint64) {
	if count == 0 {
		k.getStore(ctx).Delete(ActiveLoanCountKey)
		return
	}
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, count)
	k.getStore(ctx).Set(ActiveLoanCountKey, bz)
}

// GetActiveLoan returns the loan in flight, if any.
func (k Keeper) GetActiveLoan(ctx context.Context) (types.Loan, bool, error) {
	bz := k.getStore(ctx).Get(ActiveLoanKey)
	if bz == nil {
		return types.Loan{}, false, nil
	}
	var loan types.Loan
	if err := json.Unmarshal(bz, &loan); err != nil {
		return types.Loan{}, false, fmt.Errorf("GetActiveLoan: unmarshal loan: %w", err)
	}
	return loan, true, nil
}

func (k Keeper) setActiveLoan(ctx context.Context, loan types.Loan) error {
	bz, err := json.Marshal(loan)
	if err != nil {
		return fmt.Errorf("setActiveLoan: marshal loan: %w", err)
	}
	k.getStore(ctx).Set(ActiveLoanKey, bz)
	return nil
}

func (k Keeper) deleteActiveLoan(ctx context.Context) {
	k.getStore(ctx).Delete(ActiveLoanKey)
}
