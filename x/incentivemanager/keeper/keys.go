package keeper

import (
	"encoding/binary"

	"github.com/cosmos/cosmos-sdk/types/address"
)

var (
	ConfigKey                = []byte{0x01}
	IncentiveKeyPrefix       = []byte{0x02}
	IncentiveByLPDenomPrefix = []byte{0x03}
	IncentiveCounterKey      = []byte{0x04}
	PositionKeyPrefix        = []byte{0x05}
	PositionByOwnerPrefix    = []byte{0x06}
	PositionCounterKey       = []byte{0x07}
	LPWeightHistoryPrefix    = []byte{0x08}
	LastClaimedEpochPrefix   = []byte{0x09}
	// AddressLPDenomPrefix indexes every (address, lp denom) pair that has a
	// weight history.
	AddressLPDenomPrefix = []byte{0x0A}
)

func concat(prefix []byte, parts ...[]byte) []byte {
	key := append([]byte{}, prefix...)
	for _, p := range parts {
		key = append(key, p...)
	}
	return key
}

// GetIncentiveKey returns the store key of an incentive
func GetIncentiveKey(identifier string) []byte {
	return concat(IncentiveKeyPrefix, []byte(identifier))
}

// GetIncentiveByLPDenomKey returns the index key of an incentive under its LP denom
func GetIncentiveByLPDenomKey(lpDenom, identifier string) []byte {
	return concat(IncentiveByLPDenomPrefix, address.MustLengthPrefix([]byte(lpDenom)), []byte(identifier))
}

// GetIncentivesByLPDenomPrefix returns the index prefix of an LP denom's incentives
func GetIncentivesByLPDenomPrefix(lpDenom string) []byte {
	return concat(IncentiveByLPDenomPrefix, address.MustLengthPrefix([]byte(lpDenom)))
}

// GetPositionKey returns the store key of a position
func GetPositionKey(identifier string) []byte {
	return concat(PositionKeyPrefix, []byte(identifier))
}

// GetPositionByOwnerKey returns the index key of a position under its owner
func GetPositionByOwnerKey(owner []byte, identifier string) []byte {
	return concat(PositionByOwnerPrefix, address.MustLengthPrefix(owner), []byte(identifier))
}

// GetPositionsByOwnerPrefix returns the index prefix of an owner's positions
func GetPositionsByOwnerPrefix(owner []byte) []byte {
	return concat(PositionByOwnerPrefix, address.MustLengthPrefix(owner))
}

// GetLastClaimedEpochKey returns the store key of an address's last claimed epoch
func GetLastClaimedEpochKey(addr []byte) []byte {
	return concat(LastClaimedEpochPrefix, addr)
}

// GetAddressLPDenomKey returns the index key of an address's LP denom
func GetAddressLPDenomKey(addr []byte, lpDenom string) []byte {
	return concat(AddressLPDenomPrefix, address.MustLengthPrefix(addr), []byte(lpDenom))
}

// GetAddressLPDenomsPrefix returns the index prefix of an address's LP denoms
func GetAddressLPDenomsPrefix(addr []byte) []byte {
	return concat(AddressLPDenomPrefix, address.MustLengthPrefix(addr))
}

// splitAddressLPDenomKey reverses GetAddressLPDenomKey.
func splitAddressLPDenomKey(key []byte) (addr []byte, lpDenom string) {
	rest := key[len(AddressLPDenomPrefix):]
	n := int(rest[0])
	return rest[1 : 1+n], string(rest[1+n:])
}

func uint64Bytes(v uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, v)
}
