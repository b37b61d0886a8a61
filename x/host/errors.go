package host

import (
	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Codespace is the error codespace of the message router.
const Codespace = "host"

var (
	ErrUnknownRoute       = errorsmod.Register(Codespace, 2, "unknown message route")
	ErrCallDepthExceeded  = errorsmod.Register(Codespace, 3, "maximum call depth exceeded")
	ErrInvalidInstruction = errorsmod.Register(Codespace, 4, "invalid instruction")
)

// ValidateAuthority checks that sender is the expected owner address and
// returns unauthorized wrapped with both addresses otherwise.
//
// Usage example:
//
//	if err := host.ValidateAuthority(cfg.Owner, info.Sender, types.ErrUnauthorized); err != nil {
//	    return nil, err
//	}
func ValidateAuthority(expected string, sender sdk.AccAddress, unauthorized *errorsmod.Error) error {
	if expected == "" || expected != sender.String() {
		return unauthorized.Wrapf(
			"invalid authority; expected %s, got %s",
			expected,
			sender,
		)
	}
	return nil
}
