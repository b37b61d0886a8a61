package types

import (
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Epoch is a bucket of fees distributed to bonders. Available + Claimed
// equals Total at all times.
type Epoch struct {
	ID        uint64    `json:"id"`
	StartTime time.Time `json:"start_time"`
	Total     sdk.Coins `json:"total"`
	Available sdk.Coins `json:"available"`
	Claimed   sdk.Coins `json:"claimed"`
	// GlobalIndex is the global index when the epoch was created.
	GlobalIndex GlobalIndex `json:"global_index"`
}

// Validate checks the bucket accounting.
func (e Epoch) Validate() error {
	if !e.Total.IsValid() || !e.Available.IsValid() || !e.Claimed.IsValid() {
		return ErrAssetMismatch.Wrapf("epoch %d holds invalid coins", e.ID)
	}
	if !e.Available.Add(e.Claimed...).Equal(e.Total) {
		return ErrInvalidReward.Wrapf(
			"epoch %d: available %s + claimed %s != total %s", e.ID, e.Available, e.Claimed, e.Total,
		)
	}
	return nil
}

// ClaimableRange returns the ids [first, last] of the epochs within the
// grace period when current is the newest epoch. ok is false before the
// first epoch.
func ClaimableRange(current, gracePeriod uint64) (first, last uint64, ok bool) {
	if current == 0 {
		return 0, 0, false
	}
	first = 1
	if current > gracePeriod {
		first = current - gracePeriod + 1
	}
	return first, current, true
}

// ExpiringEpoch returns the epoch that leaves the grace period when the
// epoch after current is created.
func ExpiringEpoch(current, gracePeriod uint64) (uint64, bool) {
	if current < gracePeriod {
		return 0, false
	}
	return current - gracePeriod + 1, true
}
