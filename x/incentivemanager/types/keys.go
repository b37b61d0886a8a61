package types

const (
	// ModuleName defines the module name
	ModuleName = "incentivemanager"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// RouterKey defines the module's message routing key
	RouterKey = ModuleName

	// MinIncentiveAmount is the smallest amount an incentive can be created
	// with; an incentive whose unclaimed balance drops below it is expired.
	MinIncentiveAmount = 1_000

	// DefaultIncentiveDuration is the number of epochs an incentive runs for
	// when no end epoch is given. Rewards stay claimable for the same number
	// of epochs after the end.
	DefaultIncentiveDuration = 14

	// MaxPositionMultiplier is the weight multiplier of a position locked for
	// the maximum unlocking duration.
	MaxPositionMultiplier = 16
)
