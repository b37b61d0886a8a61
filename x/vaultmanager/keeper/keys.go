package keeper

var (
	// VaultKeyPrefix is the prefix for vault storage
	VaultKeyPrefix = []byte{0x01}

	// VaultCounterKey is the key for the vault counter
	VaultCounterKey = []byte{0x02}

	// ConfigKey is the key for the module config
	ConfigKey = []byte{0x03}

	// ActiveLoanKey holds the loan in flight, if any
	ActiveLoanKey = []byte{0x04}

	// ActiveLoanCountKey counts loans in flight across all vaults
	ActiveLoanCountKey = []byte{0x05}
)

// GetVaultKey returns the store key for a vault by identifier
func GetVaultKey(identifier string) []byte {
	return append(append([]byte{}, VaultKeyPrefix...), []byte(identifier)...)
}
