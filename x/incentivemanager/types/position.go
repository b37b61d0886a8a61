package types

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Position is LP locked in the incentive manager. Its weight counts toward
// incentive rewards while it is open.
type Position struct {
	Identifier string   `json:"identifier"`
	Owner      string   `json:"owner"`
	LPAsset    sdk.Coin `json:"lp_asset"`
	// UnlockingDuration in seconds.
	UnlockingDuration uint64 `json:"unlocking_duration"`
	Open              bool   `json:"open"`
	// ExpiringAt is the unix time a closed position can be withdrawn at.
	ExpiringAt int64 `json:"expiring_at,omitempty"`
}

// Unlocked reports whether a closed position can be withdrawn at now.
func (p Position) Unlocked(now int64) bool {
	return !p.Open && now >= p.ExpiringAt
}

// Multiplier returns the weight multiplier of an unlocking duration: 1 at
// min, MaxPositionMultiplier at max, linear in between.
func Multiplier(duration, min, max uint64) math.LegacyDec {
	if max <= min || duration <= min {
		return math.LegacyOneDec()
	}
	if duration >= max {
		return math.LegacyNewDec(MaxPositionMultiplier)
	}
	span := math.LegacyNewDec(MaxPositionMultiplier - 1)
	progress := math.LegacyNewDecFromInt(math.NewIntFromUint64(duration - min)).
		QuoInt(math.NewIntFromUint64(max - min))
	return math.LegacyOneDec().Add(span.Mul(progress))
}

// Weight is the reward weight of amount locked for duration.
func Weight(amount math.Int, duration, min, max uint64) math.Int {
	return Multiplier(duration, min, max).MulInt(amount).TruncateInt()
}
