package keeper

import (
	"github.com/cosmos/cosmos-sdk/types/address"
)

var (
	// PoolKeyPrefix is the prefix for pool storage
	PoolKeyPrefix = []byte{0x01}

	// PoolCounterKey is the key for the pool counter
	PoolCounterKey = []byte{0x02}

	// ConfigKey is the key for the module config
	ConfigKey = []byte{0x03}

	// SwapRouteKeyPrefix is the prefix for swap routes indexed by denom pair
	SwapRouteKeyPrefix = []byte{0x04}
)

// GetPoolKey returns the store key for a pool by identifier
func GetPoolKey(identifier string) []byte {
	return append(append([]byte{}, PoolKeyPrefix...), []byte(identifier)...)
}

// GetSwapRouteKey returns the store key for the route offer -> ask
func GetSwapRouteKey(offerDenom, askDenom string) []byte {
	key := append([]byte{}, SwapRouteKeyPrefix...)
	key = append(key, address.MustLengthPrefix([]byte(offerDenom))...)
	return append(key, address.MustLengthPrefix([]byte(askDenom))...)
}
