package types

import (
	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Message types for the pool manager
const (
	TypeMsgCreatePool            = "create_pool"
	TypeMsgProvideLiquidity      = "provide_liquidity"
	TypeMsgWithdrawLiquidity     = "withdraw_liquidity"
	TypeMsgSwap                  = "swap"
	TypeMsgExecuteSwapOperations = "execute_swap_operations"
	TypeMsgAddSwapRoutes         = "add_swap_routes"
	TypeMsgUpdatePoolFeatures    = "update_pool_features"
	TypeMsgUpdateConfig          = "update_config"
)

// MsgCreatePool creates a pool. The pool creation fee is attached as funds.
type MsgCreatePool struct {
	AssetDenoms   []string `json:"asset_denoms"`
	AssetDecimals []uint32 `json:"asset_decimals"`
	Fees          PoolFees `json:"fees"`
	PairType      PairType `json:"pair_type"`
	// Identifier is optional; the pool counter is used when empty.
	Identifier string `json:"identifier,omitempty"`
}

func (msg MsgCreatePool) Route() string { return RouterKey }
func (msg MsgCreatePool) Type() string  { return TypeMsgCreatePool }

// ValidateBasic implements host.Msg
func (msg MsgCreatePool) ValidateBasic() error {
	n := len(msg.AssetDenoms)
	if n < 2 || n > MaxAssetsPerPool {
		return ErrInvalidAssetCount.Wrapf("got %d, want 2..%d", n, MaxAssetsPerPool)
	}
	if len(msg.AssetDecimals) != n {
		return ErrInvalidAssetCount.Wrapf("%d denoms but %d decimals", n, len(msg.AssetDecimals))
	}
	if err := ValidateDecimals(msg.AssetDecimals); err != nil {
		return err
	}
	if msg.Identifier != "" {
		if err := ValidateIdentifier(msg.Identifier); err != nil {
			return err
		}
	}
	if err := msg.PairType.Validate(n); err != nil {
		return err
	}
	return msg.Fees.Validate()
}

// MsgProvideLiquidity deposits the attached funds into a pool.
type MsgProvideLiquidity struct {
	PoolIdentifier    string          `json:"pool_identifier"`
	SlippageTolerance *math.LegacyDec `json:"slippage_tolerance,omitempty"`
	// Receiver of the LP tokens; the sender when empty.
	Receiver string `json:"receiver,omitempty"`
	// UnlockingDuration, when set, locks the minted LP tokens into an
	// incentive manager position owned by the receiver.
	UnlockingDuration uint64 `json:"unlocking_duration,omitempty"`
}

func (msg MsgProvideLiquidity) Route() string { return RouterKey }
func (msg MsgProvideLiquidity) Type() string  { return TypeMsgProvideLiquidity }

// ValidateBasic implements host.Msg
func (msg MsgProvideLiquidity) ValidateBasic() error {
	if msg.PoolIdentifier == "" {
		return ErrInvalidIdentifier.Wrap("pool identifier cannot be empty")
	}
	if msg.SlippageTolerance != nil {
		if msg.SlippageTolerance.IsNegative() || msg.SlippageTolerance.GT(math.LegacyOneDec()) {
			return ErrInvalidSlippageTolerance.Wrapf("%s outside [0,1]", msg.SlippageTolerance)
		}
	}
	return validateOptionalAddress(msg.Receiver)
}

// MsgWithdrawLiquidity burns the attached LP tokens for the pool's assets.
type MsgWithdrawLiquidity struct {
	PoolIdentifier string `json:"pool_identifier"`
}

func (msg MsgWithdrawLiquidity) Route() string { return RouterKey }
func (msg MsgWithdrawLiquidity) Type() string  { return TypeMsgWithdrawLiquidity }

// ValidateBasic implements host.Msg
func (msg MsgWithdrawLiquidity) ValidateBasic() error {
	if msg.PoolIdentifier == "" {
		return ErrInvalidIdentifier.Wrap("pool identifier cannot be empty")
	}
	return nil
}

// MsgSwap swaps the single attached coin for AskDenom.
type MsgSwap struct {
	PoolIdentifier string          `json:"pool_identifier"`
	AskDenom       string          `json:"ask_denom"`
	BeliefPrice    *math.LegacyDec `json:"belief_price,omitempty"`
	MaxSpread      *math.LegacyDec `json:"max_spread,omitempty"`
	Receiver       string          `json:"receiver,omitempty"`
}

func (msg MsgSwap) Route() string { return RouterKey }
func (msg MsgSwap) Type() string  { return TypeMsgSwap }

// ValidateBasic implements host.Msg
func (msg MsgSwap) ValidateBasic() error {
	if msg.PoolIdentifier == "" {
		return ErrInvalidIdentifier.Wrap("pool identifier cannot be empty")
	}
	if err := sdk.ValidateDenom(msg.AskDenom); err != nil {
		return errors.Wrapf(ErrAssetMismatch, "ask denom: %s", err)
	}
	if err := validateMaxSpread(msg.MaxSpread); err != nil {
		return err
	}
	if msg.BeliefPrice != nil && !msg.BeliefPrice.IsPositive() {
		return ErrInvalidZeroAmount.Wrap("belief price must be positive")
	}
	return validateOptionalAddress(msg.Receiver)
}

// MsgExecuteSwapOperations routes the attached coin through several pools.
type MsgExecuteSwapOperations struct {
	Operations     []SwapOperation `json:"operations"`
	MinimumReceive *math.Int       `json:"minimum_receive,omitempty"`
	Receiver       string          `json:"receiver,omitempty"`
	MaxSpread      *math.LegacyDec `json:"max_spread,omitempty"`
}

func (msg MsgExecuteSwapOperations) Route() string { return RouterKey }
func (msg MsgExecuteSwapOperations) Type() string  { return TypeMsgExecuteSwapOperations }

// ValidateBasic implements host.Msg
func (msg MsgExecuteSwapOperations) ValidateBasic() error {
	if err := ValidateSwapOperations(msg.Operations); err != nil {
		return err
	}
	if err := validateMaxSpread(msg.MaxSpread); err != nil {
		return err
	}
	if msg.MinimumReceive != nil && msg.MinimumReceive.IsNegative() {
		return ErrMinimumReceiveAssertion.Wrap("minimum receive cannot be negative")
	}
	return validateOptionalAddress(msg.Receiver)
}

// MsgAddSwapRoutes stores swap routes. Owner only.
type MsgAddSwapRoutes struct {
	Routes []SwapRoute `json:"routes"`
}

func (msg MsgAddSwapRoutes) Route() string { return RouterKey }
func (msg MsgAddSwapRoutes) Type() string  { return TypeMsgAddSwapRoutes }

// ValidateBasic implements host.Msg
func (msg MsgAddSwapRoutes) ValidateBasic() error {
	if len(msg.Routes) == 0 {
		return ErrInvalidSwapOperations.Wrap("no routes")
	}
	for _, r := range msg.Routes {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// MsgUpdatePoolFeatures toggles operations on a pool. Owner only.
type MsgUpdatePoolFeatures struct {
	PoolIdentifier     string `json:"pool_identifier"`
	WithdrawalsEnabled *bool  `json:"withdrawals_enabled,omitempty"`
	DepositsEnabled    *bool  `json:"deposits_enabled,omitempty"`
	SwapsEnabled       *bool  `json:"swaps_enabled,omitempty"`
}

func (msg MsgUpdatePoolFeatures) Route() string { return RouterKey }
func (msg MsgUpdatePoolFeatures) Type() string  { return TypeMsgUpdatePoolFeatures }

// ValidateBasic implements host.Msg
func (msg MsgUpdatePoolFeatures) ValidateBasic() error {
	if msg.PoolIdentifier == "" {
		return ErrInvalidIdentifier.Wrap("pool identifier cannot be empty")
	}
	return nil
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

func validateMaxSpread(maxSpread *math.LegacyDec) error {
	if maxSpread == nil {
		return nil
	}
	if maxSpread.IsNegative() || maxSpread.GT(math.LegacyOneDec()) {
		return ErrInvalidMaxSpread.Wrapf("%s outside [0,1]", maxSpread)
	}
	return nil
}

func validateOptionalAddress(addr string) error {
	if addr == "" {
		return nil
	}
	if _, err := sdk.AccAddressFromBech32(addr); err != nil {
		return errors.Wrapf(ErrInvalidAddress, "%s: %s", addr, err)
	}
	return nil
}
