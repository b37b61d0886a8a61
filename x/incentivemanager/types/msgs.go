package types

import (
	"cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/paw-chain/lhub/x/shared/lptoken"
)

// Message types for the incentive manager
const (
	TypeMsgFillIncentive    = "fill_incentive"
	TypeMsgCloseIncentive   = "close_incentive"
	TypeMsgOnEpochChanged   = "on_epoch_changed"
	TypeMsgClaim            = "claim"
	TypeMsgFillPosition     = "fill_position"
	TypeMsgClosePosition    = "close_position"
	TypeMsgWithdrawPosition = "withdraw_position"
	TypeMsgUpdateConfig     = "update_config"
)

// MsgFillIncentive creates an incentive, or expands the one named by
// Params.Identifier. The incentive asset, plus the creation fee for new
// incentives, is attached as funds.
type MsgFillIncentive struct {
	Params IncentiveParams `json:"params"`
}

func (msg MsgFillIncentive) Route() string { return RouterKey }
func (msg MsgFillIncentive) Type() string  { return TypeMsgFillIncentive }

// ValidateBasic implements host.Msg
func (msg MsgFillIncentive) ValidateBasic() error {
	if !lptoken.IsLPDenom(msg.Params.LPDenom) {
		return ErrInvalidLPDenom.Wrap(msg.Params.LPDenom)
	}
	if err := msg.Params.IncentiveAsset.Validate(); err != nil {
		return errors.Wrapf(ErrAssetMismatch, "incentive asset: %s", err)
	}
	if !msg.Params.IncentiveAsset.IsPositive() {
		return ErrInvalidIncentiveAmount.Wrap("incentive asset must be positive")
	}
	if msg.Params.Curve != "" && msg.Params.Curve != Linear {
		return ErrInvalidConfig.Wrapf("unknown curve %q", msg.Params.Curve)
	}
	if msg.Params.Identifier != "" {
		return ValidateIdentifier(msg.Params.Identifier)
	}
	return nil
}

// MsgCloseIncentive closes an incentive and refunds what was not claimed.
type MsgCloseIncentive struct {
	Identifier string `json:"identifier"`
}

func (msg MsgCloseIncentive) Route() string { return RouterKey }
func (msg MsgCloseIncentive) Type() string  { return TypeMsgCloseIncentive }

// ValidateBasic implements host.Msg
func (msg MsgCloseIncentive) ValidateBasic() error {
	return ValidateIdentifier(msg.Identifier)
}

// MsgOnEpochChanged is sent by the epoch manager when a new epoch starts.
type MsgOnEpochChanged struct {
	Epoch Epoch `json:"epoch"`
}

func (msg MsgOnEpochChanged) Route() string { return RouterKey }
func (msg MsgOnEpochChanged) Type() string  { return TypeMsgOnEpochChanged }

// ValidateBasic implements host.Msg
func (msg MsgOnEpochChanged) ValidateBasic() error {
	return nil
}

// MsgClaim claims every incentive reward of the sender's positions.
type MsgClaim struct{}

func (msg MsgClaim) Route() string        { return RouterKey }
func (msg MsgClaim) Type() string         { return TypeMsgClaim }
func (msg MsgClaim) ValidateBasic() error { return nil }

// MsgFillPosition locks the attached LP tokens into a new position, or tops
// up the open position named by Identifier.
type MsgFillPosition struct {
	Identifier        string `json:"identifier,omitempty"`
	UnlockingDuration uint64 `json:"unlocking_duration"`
	// Receiver owns the position; only the pool manager may set it to
	// someone other than the sender.
	Receiver string `json:"receiver,omitempty"`
}

func (msg MsgFillPosition) Route() string { return RouterKey }
func (msg MsgFillPosition) Type() string  { return TypeMsgFillPosition }

// ValidateBasic implements host.Msg
func (msg MsgFillPosition) ValidateBasic() error {
	if msg.Identifier != "" {
		if err := ValidateIdentifier(msg.Identifier); err != nil {
			return err
		}
	}
	if msg.Receiver != "" {
		receiver, err := sdk.AccAddressFromBech32(msg.Receiver)
		if err != nil {
			return errors.Wrapf(ErrInvalidAddress, "%s: %s", msg.Receiver, err)
		}
		if receiver.Equals(authtypes.NewModuleAddress(ModuleName)) {
			return ErrInvalidAddress.Wrap("the incentive manager cannot own a position")
		}
	}
	return nil
}

// MsgClosePosition starts unlocking a position, or LPAsset of it.
type MsgClosePosition struct {
	Identifier string    `json:"identifier"`
	LPAsset    *sdk.Coin `json:"lp_asset,omitempty"`
}

func (msg MsgClosePosition) Route() string { return RouterKey }
func (msg MsgClosePosition) Type() string  { return TypeMsgClosePosition }

// ValidateBasic implements host.Msg
func (msg MsgClosePosition) ValidateBasic() error {
	if msg.LPAsset != nil && !msg.LPAsset.IsPositive() {
		return ErrInvalidPositionAmount.Wrap("lp asset must be positive")
	}
	return ValidateIdentifier(msg.Identifier)
}

// MsgWithdrawPosition returns the LP of an unlocked position. With
// EmergencyUnlock a locked or open position is withdrawn at a penalty.
type MsgWithdrawPosition struct {
	Identifier      string `json:"identifier"`
	EmergencyUnlock bool   `json:"emergency_unlock,omitempty"`
}

func (msg MsgWithdrawPosition) Route() string { return RouterKey }
func (msg MsgWithdrawPosition) Type() string  { return TypeMsgWithdrawPosition }

// ValidateBasic implements host.Msg
func (msg MsgWithdrawPosition) ValidateBasic() error {
	return ValidateIdentifier(msg.Identifier)
}

// MsgUpdateConfig replaces the module config. Owner only.
type MsgUpdateConfig struct {
	Config Config `json:"config"`
}

func (msg MsgUpdateConfig) Route() string { return RouterKey }
func (msg MsgUpdateConfig) Type() string  { return TypeMsgUpdateConfig }

// ValidateBasic implements host.Msg
func (msg MsgUpdateConfig) ValidateBasic() error {
	return msg.Config.Validate()
}
