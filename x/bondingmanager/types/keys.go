package types

const (
	// ModuleName defines the module name
	ModuleName = "bondingmanager"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// RouterKey defines the module's message routing key
	RouterKey = ModuleName

	// DefaultGracePeriod is the number of epochs, the newest included, whose
	// rewards can be claimed.
	DefaultGracePeriod = 21
)
