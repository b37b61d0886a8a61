package keeper

import (
	"cosmossdk.io/math"

	"github.com/paw-chain/lhub/x/incentivemanager/types"
)

// incentiveEpochs resolves and validates the start and end epochs of a new
// incentive. Start defaults to the next epoch and may be at most buffer
// epochs ahead; the end is exclusive.
func incentiveEpochs(params types.IncentiveParams, current, buffer uint64) (start, end uint64, err error) {
	start = current + 1
	if params.StartEpoch != nil {
		start = *params.StartEpoch
	}
	end = start + types.DefaultIncentiveDuration
	if params.PreliminaryEndEpoch != nil {
		end = *params.PreliminaryEndEpoch
	}

	if start < current {
		return 0, 0, types.ErrInvalidEpoch.Wrapf("start epoch %d is before the current epoch %d", start, current)
	}
	if end <= start {
		return 0, 0, types.ErrInvalidEpoch.Wrapf("end epoch %d must be after start epoch %d", end, start)
	}
	if start > current+buffer {
		return 0, 0, types.ErrIncentiveStartTooFar.Wrapf("start epoch %d is more than %d epochs after %d", start, buffer, current)
	}
	return start, end, nil
}

// emissionRate spreads amount evenly over [start, end), rounding down.
func emissionRate(amount math.Int, start, end uint64) (math.Int, error) {
	rate := amount.Quo(math.NewIntFromUint64(end - start))
	if !rate.IsPositive() {
		return math.Int{}, types.ErrInvalidIncentiveAmount.Wrapf("%s over %d epochs emits nothing", amount, end-start)
	}
	return rate, nil
}
