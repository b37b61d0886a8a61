package keeper

import (
	"encoding/binary"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
)

var (
	ConfigKey              = []byte{0x01}
	EpochKeyPrefix         = []byte{0x02}
	LastEpochKey           = []byte{0x03}
	GlobalIndexKey         = []byte{0x04}
	BondKeyPrefix          = []byte{0x05}
	LastClaimedEpochPrefix = []byte{0x06}
	UnbondingKeyPrefix     = []byte{0x07}
	UnbondingSeqKey        = []byte{0x08}
)

func uint64Bytes(v uint64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, v)
	return bz
}

func concat(prefix []byte, parts ...[]byte) []byte {
	key := append([]byte{}, prefix...)
	for _, p := range parts {
		key = append(key, p...)
	}
	return key
}

// GetEpochKey returns the store key of an epoch
func GetEpochKey(id uint64) []byte {
	return concat(EpochKeyPrefix, uint64Bytes(id))
}

// GetBondsPrefix returns the prefix of every bond of addr
func GetBondsPrefix(addr sdk.AccAddress) []byte {
	return concat(BondKeyPrefix, address.MustLengthPrefix(addr))
}

// GetBondKey returns the store key of the bond of addr in denom
func GetBondKey(addr sdk.AccAddress, denom string) []byte {
	return concat(GetBondsPrefix(addr), []byte(denom))
}

// GetLastClaimedEpochKey returns the store key of an address's last claim
func GetLastClaimedEpochKey(addr sdk.AccAddress) []byte {
	return concat(LastClaimedEpochPrefix, addr)
}

// GetUnbondingsPrefix returns the prefix of the unbondings of addr in denom
func GetUnbondingsPrefix(addr sdk.AccAddress, denom string) []byte {
	return concat(UnbondingKeyPrefix, address.MustLengthPrefix(addr), address.MustLengthPrefix([]byte(denom)))
}

// GetUnbondingKey returns the store key of one unbonding
func GetUnbondingKey(addr sdk.AccAddress, denom string, seq uint64) []byte {
	return concat(GetUnbondingsPrefix(addr, denom), uint64Bytes(seq))
}
