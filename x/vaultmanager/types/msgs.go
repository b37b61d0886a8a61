package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Message types for the vault manager
const (
	TypeMsgCreateVault       = "create_vault"
	TypeMsgDeposit           = "deposit"
	TypeMsgWithdraw          = "withdraw"
	TypeMsgFlashLoan         = "flash_loan"
	TypeMsgFlashLoanCallback = "flash_loan_callback"
	TypeMsgUpdateVaultFlags  = "update_vault_flags"
	TypeMsgUpdateConfig      = "update_config"
)

// MsgCreateVault creates a vault. The creation fee is attached as funds.
type MsgCreateVault struct {
	AssetDenom string    `json:"asset_denom"`
	Fees       VaultFees `json:"fees"`
	// Identifier is optional; the vault counter is used when empty.
	Identifier string `json:"identifier,omitempty"`
}

func (msg MsgCreateVault) Route() string { return RouterKey }
func (msg MsgCreateVault) Type() string  { return TypeMsgCreateVault }

// ValidateBasic implements host.Msg
func (msg MsgCreateVault) ValidateBasic() error {
	if err := sdk.ValidateDenom(msg.AssetDenom); err != nil {
		return ErrAssetMismatch.Wrapf("asset denom: %s", err)
	}
	if msg.Identifier != "" {
		if err := ValidateIdentifier(msg.Identifier); err != nil {
			return err
		}
	}
	return msg.Fees.Validate()
}

// MsgDeposit deposits the attached asset, which must equal Amount.
type MsgDeposit struct {
	VaultIdentifier string   `json:"vault_identifier"`
	Amount          sdk.Coin `json:"amount"`
}

func (msg MsgDeposit) Route() string { return RouterKey }
func (msg MsgDeposit) Type() string  { return TypeMsgDeposit }

// ValidateBasic implements host.Msg
func (msg MsgDeposit) ValidateBasic() error {
	if msg.VaultIdentifier == "" {
		return ErrInvalidIdentifier.Wrap("vault identifier cannot be empty")
	}
	if !msg.Amount.IsValid() || msg.Amount.IsZero() {
		return ErrInvalidZeroAmount.Wrapf("deposit %s", msg.Amount)
	}
	return nil
}

// MsgWithdraw burns the attached vault LP tokens for their share of deposits.
type MsgWithdraw struct {
	VaultIdentifier string `json:"vault_identifier"`
}

func (msg MsgWithdraw) Route() string { return RouterKey }
func (msg MsgWithdraw) Type() string  { return TypeMsgWithdraw }

// ValidateBasic implements host.Msg
func (msg MsgWithdraw) ValidateBasic() error {
	if msg.VaultIdentifier == "" {
		return ErrInvalidIdentifier.Wrap("vault identifier cannot be empty")
	}
	return nil
}

// MsgFlashLoan borrows Asset, runs Msgs with the vault module as sender, and
// settles the loan once they complete.
type MsgFlashLoan struct {
	VaultIdentifier string             `json:"vault_identifier"`
	Asset           sdk.Coin           `json:"asset"`
	Msgs            []FlashLoanMessage `json:"msgs"`
}

func (msg MsgFlashLoan) Route() string { return RouterKey }
func (msg MsgFlashLoan) Type() string  { return TypeMsgFlashLoan }

// ValidateBasic implements host.Msg
func (msg MsgFlashLoan) ValidateBasic() error {
	if msg.VaultIdentifier == "" {
		return ErrInvalidIdentifier.Wrap("vault identifier cannot be empty")
	}
	if !msg.Asset.IsValid() || msg.Asset.IsZero() {
		return ErrInvalidZeroAmount.Wrapf("loan %s", msg.Asset)
	}
	for i, m := range msg.Msgs {
		if m.Msg == nil {
			return ErrAssetMismatch.Wrapf("flash loan message %d is empty", i)
		}
		if !m.Funds.IsValid() {
			return ErrAssetMismatch.Wrapf("flash loan message %d funds %s", i, m.Funds)
		}
	}
	return nil
}

// MsgFlashLoanCallback settles the loan in flight. Only the vault manager
// itself may send it.
type MsgFlashLoanCallback struct {
	VaultIdentifier string   `json:"vault_identifier"`
	Loan            sdk.Coin `json:"loan"`
	Borrower        string   `json:"borrower"`
}

func (msg MsgFlashLoanCallback) Route() string { return RouterKey }
func (msg MsgFlashLoanCallback) Type() string  { return TypeMsgFlashLoanCallback }

// ValidateBasic implements host.Msg
func (msg MsgFlashLoanCallback) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Borrower); err != nil {
		return ErrInvalidAddress.Wrapf("borrower: %s", err)
	}
	return nil
}

// MsgUpdateVaultFlags replaces the flags of a vault. Owner only.
type MsgUpdateVaultFlags struct {
	VaultIdentifier string     `json:"vault_identifier"`
	Flags           VaultFlags `json:"flags"`
}

func (msg MsgUpdateVaultFlags) Route() string { return RouterKey }
func (msg MsgUpdateVaultFlags) Type() string  { return TypeMsgUpdateVaultFlags }

// ValidateBasic implements host.Msg
func (msg MsgUpdateVaultFlags) ValidateBasic() error {
	if msg.VaultIdentifier == "" {
		return ErrInvalidIdentifier.Wrap("vault identifier cannot be empty")
	}
	return nil
}

// MsgUpdateConfig replaces the vault manager config. Owner only.
type MsgUpdateConfig struct {
	Config Config `json:"config"`
}

func (msg MsgUpdateConfig) Route() string { return RouterKey }
func (msg MsgUpdateConfig) Type() string  { return TypeMsgUpdateConfig }

// ValidateBasic implements host.Msg
func (msg MsgUpdateConfig) ValidateBasic() error {
	return msg.Config.Validate()
}
