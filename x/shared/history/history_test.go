package history_test

import (
	"testing"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/testutil"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/paw-chain/lhub/x/shared/history"
)

func newStore() storetypes.KVStore {
	key := storetypes.NewKVStoreKey("history")
	ctx := testutil.DefaultContext(key, storetypes.NewTransientStoreKey("transient_history"))
	return ctx.KVStore(key)
}

func TestLatestAtForwardFills(t *testing.T) {
	kv := newStore()
	h := history.New([]byte{0x01})
	alice := history.Subject([]byte("alice"), []byte("factory/pool/uwhale-uluna.uLP"))
	bob := history.Subject([]byte("bob"), []byte("factory/pool/uwhale-uluna.uLP"))

	_, _, found, err := h.LatestAt(kv, alice, 10)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, h.Set(kv, alice, 3, math.NewInt(100)))
	require.NoError(t, h.Set(kv, alice, 7, math.NewInt(250)))
	require.NoError(t, h.Set(kv, bob, 5, math.NewInt(9)))

	tests := []struct {
		epoch uint64
		want  int64
		at    uint64
		found bool
	}{
		{epoch: 2, found: false},
		{epoch: 3, want: 100, at: 3, found: true},
		{epoch: 6, want: 100, at: 3, found: true},
		{epoch: 7, want: 250, at: 7, found: true},
		{epoch: ^uint64(0), want: 250, at: 7, found: true},
	}
	for _, tc := range tests {
		v, at, found, err := h.LatestAt(kv, alice, tc.epoch)
		require.NoError(t, err)
		require.Equal(t, tc.found, found, "epoch %d", tc.epoch)
		if !tc.found {
			continue
		}
		require.Equal(t, tc.at, at)
		require.Equal(t, math.NewInt(tc.want), v)
	}

	require.True(t, h.Has(kv, alice, 7))
	require.False(t, h.Has(kv, alice, 6))

	v, err := h.ValueAt(kv, bob, 4)
	require.NoError(t, err)
	require.True(t, v.IsZero())
}

func TestSubjectsDoNotOverlap(t *testing.T) {
	kv := newStore()
	h := history.New([]byte{0x02})

	short := history.Subject([]byte("ab"), []byte("c"))
	long := history.Subject([]byte("a"), []byte("bc"))
	require.NoError(t, h.Set(kv, short, 1, math.NewInt(1)))

	_, _, found, err := h.LatestAt(kv, long, 1)
	require.NoError(t, err)
	require.False(t, found)
}

func TestLatestAtMatchesDenseModel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		kv := newStore()
		h := history.New([]byte{0x03})
		subject := history.Subject([]byte("addr"))

		dense := make(map[uint64]int64)
		writes := rapid.IntRange(0, 20).Draw(t, "writes")
		for i := 0; i < writes; i++ {
			epoch := rapid.Uint64Range(0, 50).Draw(t, "epoch")
			value := rapid.Int64Range(0, 1_000_000).Draw(t, "value")
			if err := h.Set(kv, subject, epoch, math.NewInt(value)); err != nil {
				t.Fatal(err)
			}
			dense[epoch] = value
		}

		query := rapid.Uint64Range(0, 60).Draw(t, "query")
		want, wantFound := int64(0), false
		for e := int64(query); e >= 0; e-- {
			if v, ok := dense[uint64(e)]; ok {
				want, wantFound = v, true
				break
			}
		}

		got, _, found, err := h.LatestAt(kv, subject, query)
		if err != nil {
			t.Fatal(err)
		}
		if found != wantFound || (found && !got.Equal(math.NewInt(want))) {
			t.Fatalf("epoch %d: got (%s, %v) want (%d, %v)", query, got, found, want, wantFound)
		}
	})
}
