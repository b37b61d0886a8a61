// Package host executes liquidity hub messages the way the chain does: a
// handler validates and mutates its own store, then returns a Response whose
// instructions (transfers, mints, burns and nested messages) the Router
// applies on the handler's behalf. Every top-level dispatch runs in a branch
// of the context and is committed only when the whole chain succeeds.
package host

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Msg is a message routable to a module handler.
type Msg interface {
	Route() string
	Type() string
	ValidateBasic() error
}

// Instruction is a side effect applied by the Router after a handler returns.
// Value always leaves the account of the module that returned it.
type Instruction interface {
	instruction()
}

// BankSend transfers Amount from the module account to To.
type BankSend struct {
	To     sdk.AccAddress
	Amount sdk.Coins
}

// Mint mints Amount to the module and forwards it to To.
type Mint struct {
	To     sdk.AccAddress
	Amount sdk.Coins
}

// Burn burns Amount from the module account.
type Burn struct {
	Amount sdk.Coins
}

// Execute dispatches Msg with the module account as sender, attaching Funds.
type Execute struct {
	Msg   Msg
	Funds sdk.Coins
}

func (BankSend) instruction() {}
func (Mint) instruction()     {}
func (Burn) instruction()     {}
func (Execute) instruction()  {}

// MessageInfo describes who sent a message and what was attached to it. The
// funds are already in the receiving module account when the handler runs.
type MessageInfo struct {
	Sender sdk.AccAddress
	Funds  sdk.Coins
}

// Response is the result of a handler: ordered instructions, an attribute
// log and optional typed data for the caller.
type Response struct {
	Instructions []Instruction
	Attributes   []sdk.Attribute
	Data         any
}

// NewResponse returns an empty response.
func NewResponse() *Response {
	return &Response{}
}

// AddAttribute appends a key/value pair to the attribute log.
func (r *Response) AddAttribute(key, value string) *Response {
	r.Attributes = append(r.Attributes, sdk.NewAttribute(key, value))
	return r
}

// AddAttributes appends several attributes.
func (r *Response) AddAttributes(attrs ...sdk.Attribute) *Response {
	r.Attributes = append(r.Attributes, attrs...)
	return r
}

// AddInstruction appends an instruction. Zero-value transfers are dropped.
func (r *Response) AddInstruction(ins Instruction) *Response {
	switch v := ins.(type) {
	case BankSend:
		if v.Amount.IsZero() {
			return r
		}
	case Mint:
		if v.Amount.IsZero() {
			return r
		}
	case Burn:
		if v.Amount.IsZero() {
			return r
		}
	}
	r.Instructions = append(r.Instructions, ins)
	return r
}

// Send is shorthand for a BankSend instruction.
func (r *Response) Send(to sdk.AccAddress, amount ...sdk.Coin) *Response {
	return r.AddInstruction(BankSend{To: to, Amount: sdk.NewCoins(amount...)})
}

// WithData sets the typed result.
func (r *Response) WithData(data any) *Response {
	r.Data = data
	return r
}
