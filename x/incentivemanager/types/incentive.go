package types

import (
	"fmt"
	"regexp"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Curve is the emission schedule of an incentive.
type Curve string

// Linear emits the same amount every epoch.
const Linear Curve = "linear"

// Incentive streams IncentiveAsset to holders of LPDenom positions between
// StartEpoch (inclusive) and PreliminaryEndEpoch (exclusive).
type Incentive struct {
	Identifier          string   `json:"identifier"`
	Owner               string   `json:"owner"`
	LPDenom             string   `json:"lp_denom"`
	IncentiveAsset      sdk.Coin `json:"incentive_asset"`
	StartEpoch          uint64   `json:"start_epoch"`
	PreliminaryEndEpoch uint64   `json:"preliminary_end_epoch"`
	EmissionRate        math.Int `json:"emission_rate"`
	Curve               Curve    `json:"curve"`
	ClaimedAmount       math.Int `json:"claimed_amount"`
	LastEpochClaimed    uint64   `json:"last_epoch_claimed"`
}

// Remaining is the part of the incentive asset not claimed yet.
func (i Incentive) Remaining() math.Int {
	if i.ClaimedAmount.GTE(i.IncentiveAsset.Amount) {
		return math.ZeroInt()
	}
	return i.IncentiveAsset.Amount.Sub(i.ClaimedAmount)
}

// IsExpired reports whether the incentive can no longer be expanded and may
// be closed by anyone: its claim window after the end has passed, or what is
// left is below the minimum incentive amount.
func (i Incentive) IsExpired(currentEpoch uint64) bool {
	if i.Remaining().LT(math.NewInt(MinIncentiveAmount)) {
		return true
	}
	return currentEpoch >= i.PreliminaryEndEpoch+DefaultIncentiveDuration
}

// EmissionAt is the amount the incentive emits in epoch.
func (i Incentive) EmissionAt(epoch uint64) math.Int {
	if epoch < i.StartEpoch || epoch >= i.PreliminaryEndEpoch {
		return math.ZeroInt()
	}
	return i.EmissionRate
}

// Validate performs stateless validation of a stored incentive.
func (i Incentive) Validate() error {
	if err := ValidateIdentifier(i.Identifier); err != nil {
		return err
	}
	if _, err := sdk.AccAddressFromBech32(i.Owner); err != nil {
		return ErrInvalidAddress.Wrapf("owner %s: %s", i.Owner, err)
	}
	if err := i.IncentiveAsset.Validate(); err != nil {
		return ErrAssetMismatch.Wrap(err.Error())
	}
	if i.EmissionRate.IsNil() || !i.EmissionRate.IsPositive() {
		return ErrInvalidIncentiveAmount.Wrap("emission rate must be positive")
	}
	if i.PreliminaryEndEpoch <= i.StartEpoch {
		return ErrInvalidEpoch.Wrapf("end %d <= start %d", i.PreliminaryEndEpoch, i.StartEpoch)
	}
	if i.ClaimedAmount.IsNil() || i.ClaimedAmount.GT(i.IncentiveAsset.Amount) {
		return ErrInvalidIncentiveAmount.Wrapf("claimed %s of %s", i.ClaimedAmount, i.IncentiveAsset)
	}
	return nil
}

// IncentiveParams are the parameters of a FillIncentive.
type IncentiveParams struct {
	LPDenom string `json:"lp_denom"`
	// StartEpoch defaults to the next epoch.
	StartEpoch *uint64 `json:"start_epoch,omitempty"`
	// PreliminaryEndEpoch defaults to StartEpoch + DefaultIncentiveDuration.
	PreliminaryEndEpoch *uint64  `json:"preliminary_end_epoch,omitempty"`
	Curve               Curve    `json:"curve,omitempty"`
	IncentiveAsset      sdk.Coin `json:"incentive_asset"`
	// Identifier selects an incentive to expand; a new incentive takes it
	// as its identifier, or the incentive counter when empty.
	Identifier string `json:"identifier,omitempty"`
}

var identifierRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// ValidateIdentifier checks an incentive or position identifier.
func ValidateIdentifier(id string) error {
	if len(id) == 0 || len(id) > 64 || !identifierRegex.MatchString(id) {
		return ErrInvalidIdentifier.Wrap(fmt.Sprintf("%q", id))
	}
	return nil
}
