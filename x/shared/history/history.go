// Package history keeps sparse, epoch-indexed snapshots of a value per
// subject on top of the ordered host KV store. Entries are only written when
// the value changes; reads fall back to the latest entry at or before the
// requested epoch.
package history

import (
	"encoding/binary"
	"fmt"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/types/address"
)

// Store is a history namespace under a fixed key prefix.
type Store struct {
	prefix []byte
}

// New returns a history namespace rooted at prefix.
func New(prefix []byte) Store {
	return Store{prefix: prefix}
}

// Subject builds a collision-free subject key from its parts.
func Subject(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, address.MustLengthPrefix(p)...)
	}
	return out
}

func (s Store) subjectPrefix(subject []byte) []byte {
	out := make([]byte, 0, len(s.prefix)+len(subject))
	out = append(out, s.prefix...)
	return append(out, subject...)
}

func (s Store) key(subject []byte, epoch uint64) []byte {
	return binary.BigEndian.AppendUint64(s.subjectPrefix(subject), epoch)
}

// Set records value for subject at epoch, overwriting any previous entry for
// the same epoch.
func (s Store) Set(kv storetypes.KVStore, subject []byte, epoch uint64, value math.Int) error {
	bz, err := value.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal history value: %w", err)
	}
	kv.Set(s.key(subject, epoch), bz)
	return nil
}

// Has reports whether an entry was recorded exactly at epoch.
func (s Store) Has(kv storetypes.KVStore, subject []byte, epoch uint64) bool {
	return kv.Has(s.key(subject, epoch))
}

// LatestAt returns the most recent value recorded at or before epoch. found
// is false only when the subject has no entry at or before epoch.
func (s Store) LatestAt(kv storetypes.KVStore, subject []byte, epoch uint64) (value math.Int, at uint64, found bool, err error) {
	start := s.key(subject, 0)
	var end []byte
	if epoch == ^uint64(0) {
		end = storetypes.PrefixEndBytes(s.subjectPrefix(subject))
	} else {
		end = s.key(subject, epoch+1)
	}

	iter := kv.ReverseIterator(start, end)
	defer iter.Close()

	if !iter.Valid() {
		return math.ZeroInt(), 0, false, nil
	}

	key := iter.Key()
	at = binary.BigEndian.Uint64(key[len(key)-8:])
	if err := value.Unmarshal(iter.Value()); err != nil {
		return math.ZeroInt(), 0, false, fmt.Errorf("failed to unmarshal history value: %w", err)
	}
	return value, at, true, nil
}

// ValueAt is LatestAt that returns zero when nothing was ever recorded.
func (s Store) ValueAt(kv storetypes.KVStore, subject []byte, epoch uint64) (math.Int, error) {
	value, _, found, err := s.LatestAt(kv, subject, epoch)
	if err != nil {
		return math.Int{}, err
	}
	if !found {
		return math.ZeroInt(), nil
	}
	return value, nil
}

// Iterate walks every entry of subject in ascending epoch order until cb
// returns true.
func (s Store) Iterate(kv storetypes.KVStore, subject []byte, cb func(epoch uint64, value math.Int) (stop bool)) error {
	iter := storetypes.KVStorePrefixIterator(kv, s.subjectPrefix(subject))
	defer iter.Close()

	for ; iter.Valid(); iter.Next() {
		key := iter.Key()
		var value math.Int
		if err := value.Unmarshal(iter.Value()); err != nil {
			return fmt.Errorf("failed to unmarshal history value: %w", err)
		}
		if cb(binary.BigEndian.Uint64(key[len(key)-8:]), value) {
			break
		}
	}
	return nil
}
