package types

import (
	"context"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// BankKeeper defines the expected bank keeper
type BankKeeper interface {
	GetAllBalances(ctx context.Context, addr sdk.AccAddress) sdk.Coins
}

// Epoch is an epoch of the epoch manager.
type Epoch struct {
	ID        uint64    `json:"id"`
	StartTime time.Time `json:"start_time"`
}

// EpochKeeper is the epoch clock incentives are scheduled on.
type EpochKeeper interface {
	CurrentEpoch(ctx context.Context) (Epoch, error)
}
