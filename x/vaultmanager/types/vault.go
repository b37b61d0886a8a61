package types

import (
	"regexp"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/lhub/x/host"
)

// VaultFees are charged on every flash loan, as shares of the loan.
type VaultFees struct {
	// ProtocolFee goes to the fee collector.
	ProtocolFee math.LegacyDec `json:"protocol_fee"`
	// FlashLoanFee stays in the vault for its depositors.
	FlashLoanFee math.LegacyDec `json:"flash_loan_fee"`
}

// Validate checks both fees are in [0,1) and sum below one.
func (f VaultFees) Validate() error {
	for _, fee := range []struct {
		name  string
		share math.LegacyDec
	}{{"protocol fee", f.ProtocolFee}, {"flash loan fee", f.FlashLoanFee}} {
		if fee.share.IsNil() || fee.share.IsNegative() || fee.share.GTE(math.LegacyOneDec()) {
			return ErrInvalidFees.Wrapf("%s %s outside [0,1)", fee.name, fee.share)
		}
	}
	if f.ProtocolFee.Add(f.FlashLoanFee).GTE(math.LegacyOneDec()) {
		return ErrInvalidFees.Wrap("fees must sum below one")
	}
	return nil
}

// VaultFlags toggle the operations of a vault.
type VaultFlags struct {
	DepositEnabled   bool `json:"deposit_enabled"`
	WithdrawEnabled  bool `json:"withdraw_enabled"`
	FlashLoanEnabled bool `json:"flash_loan_enabled"`
}

// AllFlagsEnabled returns flags with every operation enabled.
func AllFlagsEnabled() VaultFlags {
	return VaultFlags{DepositEnabled: true, WithdrawEnabled: true, FlashLoanEnabled: true}
}

// Vault is a single-asset pool that lends its deposits out as flash loans.
type Vault struct {
	Identifier string     `json:"identifier"`
	AssetDenom string     `json:"asset_denom"`
	LPDenom    string     `json:"lp_denom"`
	Fees       VaultFees  `json:"fees"`
	Flags      VaultFlags `json:"flags"`
	// LoanCounter is the number of loans of this vault in flight. It is zero
	// between transactions.
	LoanCounter   uint64   `json:"loan_counter"`
	TotalDeposits math.Int `json:"total_deposits"`
	TotalShare    math.Int `json:"total_share"`
}

// Validate performs stateless validation of a vault
func (v Vault) Validate() error {
	if err := ValidateIdentifier(v.Identifier); err != nil {
		return err
	}
	if err := sdk.ValidateDenom(v.AssetDenom); err != nil {
		return errors.Wrapf(ErrAssetMismatch, "asset denom: %s", err)
	}
	if err := v.Fees.Validate(); err != nil {
		return err
	}
	if v.TotalDeposits.IsNil() || v.TotalDeposits.IsNegative() {
		return ErrInvalidZeroAmount.Wrap("total deposits cannot be negative")
	}
	if v.TotalShare.IsNil() || v.TotalShare.IsNegative() {
		return ErrInvalidZeroAmount.Wrap("total share cannot be negative")
	}
	return nil
}

// FlashLoanMessage is a message run during a flash loan with the vault
// module account as sender.
type FlashLoanMessage struct {
	Msg   host.Msg  `json:"-"`
	Funds sdk.Coins `json:"funds,omitempty"`
}

// Loan is the state of the flash loan in flight.
type Loan struct {
	VaultIdentifier string    `json:"vault_identifier"`
	Borrower        string    `json:"borrower"`
	Asset           sdk.Coin  `json:"asset"`
	PreLoanBalances sdk.Coins `json:"pre_loan_balances"`
}

var identifierRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// ValidateIdentifier checks a vault identifier.
func ValidateIdentifier(id string) error {
	if len(id) == 0 || len(id) > 64 || !identifierRegex.MatchString(id) {
		return ErrInvalidIdentifier.Wrapf("%q", id)
	}
	return nil
}
