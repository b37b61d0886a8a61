package fixedpoint

import (
	"cosmossdk.io/errors"
)

// Codespace is the error codespace of the fixed-point layer.
const Codespace = "fixedpoint"

var (
	ErrOverflow       = errors.Register(Codespace, 2, "arithmetic overflow")
	ErrUnderflow      = errors.Register(Codespace, 3, "arithmetic underflow")
	ErrDivisionByZero = errors.Register(Codespace, 4, "division by zero")
	ErrNegativeValue  = errors.Register(Codespace, 5, "negative operand")
)
