package types

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// SwapComputation is the outcome of pricing one swap, in ask-asset units.
type SwapComputation struct {
	ReturnAmount math.Int `json:"return_amount"`
	SpreadAmount math.Int `json:"spread_amount"`
	SwapFee      math.Int `json:"swap_fee"`
	ProtocolFee  math.Int `json:"protocol_fee"`
	BurnFee      math.Int `json:"burn_fee"`
}

// ReverseSimulation is the offer needed to receive a given ask amount.
type ReverseSimulation struct {
	OfferAmount  math.Int `json:"offer_amount"`
	SpreadAmount math.Int `json:"spread_amount"`
	SwapFee      math.Int `json:"swap_fee"`
	ProtocolFee  math.Int `json:"protocol_fee"`
	BurnFee      math.Int `json:"burn_fee"`
}

// SwapResult is returned by an executed swap.
type SwapResult struct {
	PoolIdentifier string          `json:"pool_identifier"`
	Offer          sdk.Coin        `json:"offer"`
	Return         sdk.Coin        `json:"return"`
	Computation    SwapComputation `json:"computation"`
}

// SwapOperation is one hop of a multi-hop swap.
type SwapOperation struct {
	PoolIdentifier string `json:"pool_identifier"`
	OfferDenom     string `json:"offer_denom"`
	AskDenom       string `json:"ask_denom"`
}

// SwapRoute is a stored path between two denoms.
type SwapRoute struct {
	OfferDenom string          `json:"offer_denom"`
	AskDenom   string          `json:"ask_denom"`
	Operations []SwapOperation `json:"operations"`
}

// ValidateSwapOperations checks a hop sequence is non-empty and chained.
func ValidateSwapOperations(ops []SwapOperation) error {
	if len(ops) == 0 {
		return ErrInvalidSwapOperations.Wrap("no operations")
	}
	for i, op := range ops {
		if op.PoolIdentifier == "" {
			return ErrInvalidSwapOperations.Wrapf("operation %d has no pool", i)
		}
		if op.OfferDenom == op.AskDenom {
			return ErrSameAsset.Wrapf("operation %d: %s", i, op.OfferDenom)
		}
		if i > 0 && ops[i-1].AskDenom != op.OfferDenom {
			return ErrInvalidSwapOperations.Wrapf(
				"operation %d offers %s but previous returns %s", i, op.OfferDenom, ops[i-1].AskDenom,
			)
		}
	}
	return nil
}

// Validate checks the route endpoints match its operations.
func (r SwapRoute) Validate() error {
	if err := ValidateSwapOperations(r.Operations); err != nil {
		return err
	}
	if r.Operations[0].OfferDenom != r.OfferDenom || r.Operations[len(r.Operations)-1].AskDenom != r.AskDenom {
		return ErrInvalidSwapOperations.Wrapf("route %s -> %s does not match its operations", r.OfferDenom, r.AskDenom)
	}
	return nil
}
