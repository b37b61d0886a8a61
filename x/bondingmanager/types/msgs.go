package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Message types for the bonding manager
const (
	TypeMsgCreateNewEpoch = "create_new_epoch"
	TypeMsgBond           = "bond"
	TypeMsgUnbond         = "unbond"
	TypeMsgWithdraw       = "withdraw"
	TypeMsgClaim          = "claim"
	TypeMsgUpdateConfig   = "update_config"
)

// MsgCreateNewEpoch opens the next epoch with Fees, which must be attached.
type MsgCreateNewEpoch struct {
	Fees sdk.Coins `json:"fees"`
}

func (msg MsgCreateNewEpoch) Route() string { return RouterKey }
func (msg MsgCreateNewEpoch) Type() string  { return TypeMsgCreateNewEpoch }

// ValidateBasic implements host.Msg
func (msg MsgCreateNewEpoch) ValidateBasic() error {
	if !msg.Fees.IsValid() {
		return ErrAssetMismatch.Wrapf("invalid fees %s", msg.Fees)
	}
	return nil
}

// MsgBond bonds the single attached coin.
type MsgBond struct{}

func (msg MsgBond) Route() string        { return RouterKey }
func (msg MsgBond) Type() string         { return TypeMsgBond }
func (msg MsgBond) ValidateBasic() error { return nil }

// MsgUnbond starts unbonding Asset.
type MsgUnbond struct {
	Asset sdk.Coin `json:"asset"`
}

func (msg MsgUnbond) Route() string { return RouterKey }
func (msg MsgUnbond) Type() string  { return TypeMsgUnbond }

// ValidateBasic implements host.Msg
func (msg MsgUnbond) ValidateBasic() error {
	if !msg.Asset.IsValid() || msg.Asset.IsZero() {
		return ErrInvalidZeroAmount.Wrapf("unbond %s", msg.Asset)
	}
	return nil
}

// MsgWithdraw pays out every matured unbonding of Denom.
type MsgWithdraw struct {
	Denom string `json:"denom"`
}

func (msg MsgWithdraw) Route() string { return RouterKey }
func (msg MsgWithdraw) Type() string  { return TypeMsgWithdraw }

// ValidateBasic implements host.Msg
func (msg MsgWithdraw) ValidateBasic() error {
	if err := sdk.ValidateDenom(msg.Denom); err != nil {
		return ErrInvalidBondingAsset.Wrapf("%s", err)
	}
	return nil
}

// MsgClaim claims the sender's share of every unclaimed epoch.
type MsgClaim struct{}

func (msg MsgClaim) Route() string        { return RouterKey }
func (msg MsgClaim) Type() string         { return TypeMsgClaim }
func (msg MsgClaim) ValidateBasic() error { return nil }

// MsgUpdateConfig replaces the bonding manager config. Owner only.
type MsgUpdateConfig struct {
	Config Config `json:"config"`
}

func (msg MsgUpdateConfig) Route() string { return RouterKey }
func (msg MsgUpdateConfig) Type() string  { return TypeMsgUpdateConfig }

// ValidateBasic implements host.Msg
func (msg MsgUpdateConfig) ValidateBasic() error {
	return msg.Config.Validate()
}
