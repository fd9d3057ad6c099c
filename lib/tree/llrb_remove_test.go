package tree

import (
	"math/rand/v2"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestLLRBMapRemove_Grid(t *testing.T) {
	m := NewLLRBMap[uint64, uint64]()
	for i := uint64(1); i <= 5; i++ {
		m = m.Insert(i, i)
	}
	requireColorsAndKeys(t, m, []checkData{
		{Black, 1}, {Red, 2}, {Black, 3}, {Black, 4}, {Black, 5},
	})

	// Remove the root, its successor takes the place.
	m = m.Remove(4)
	requireColorsAndKeys(t, m, []checkData{
		{Black, 1}, {Black, 2}, {Red, 3}, {Black, 5},
	})
	require.Equal(t, uint64(2), m.Root().Key())

	// Borrow from the right sibling 3-node.
	m = m.Remove(1)
	requireColorsAndKeys(t, m, []checkData{
		{Black, 2}, {Black, 3}, {Black, 5},
	})
	require.Equal(t, uint64(3), m.Root().Key())
	require.Equal(t, 2, m.Root().BlackHeight())

	m = m.Remove(3)
	require.Equal(t, []uint64{2, 5}, m.Keys())
	require.Empty(t, ValidateInvariants(m))

	m = m.Remove(5).Remove(2)
	require.True(t, m.IsEmpty())
	require.Empty(t, ValidateInvariants(m))
}

func TestLLRBMapRemove_Absent(t *testing.T) {
	m := FromList(lo.Map(lo.Range(32), func(k int, _ int) Pair[int, int] {
		return NewPair(k*2, k)
	}))
	for k := -1; k < 66; k += 2 {
		res := m.Remove(k)
		require.Same(t, m.root, res.root)
	}

	once := m.Remove(10)
	twice := once.Remove(10)
	require.Equal(t, once.ToList(), twice.ToList())
	require.Same(t, once.root, twice.root)
	require.Equal(t, int64(31), once.Size())
	require.False(t, once.Member(10))
}

func TestLLRBMapRemove_Random(t *testing.T) {
	insertKeys := lo.Shuffle(lo.RangeFrom(1, 1000))
	removeKeys := lo.Shuffle(lo.RangeFrom(1, 1000))

	m := NewLLRBMap[int, int]()
	for i, k := range insertKeys {
		m = m.Insert(k, k*10)
		require.Empty(t, ValidateInvariants(m), "insert %d at step %d", k, i)
	}
	require.Equal(t, int64(1000), m.Size())
	full := m

	for i, k := range removeKeys {
		sizeBefore := m.Size()
		m = m.Remove(k)
		require.Empty(t, ValidateInvariants(m), "remove %d at step %d", k, i)
		require.Equal(t, sizeBefore-1, m.Size())
		_, ok := m.Get(k)
		require.False(t, ok)
	}
	require.True(t, m.IsEmpty())

	// Every removal made a new version, the full one is untouched.
	require.Equal(t, int64(1000), full.Size())
	require.Empty(t, ValidateInvariants(full))
	for _, k := range removeKeys[:100] {
		v, ok := full.Get(k)
		require.True(t, ok)
		require.Equal(t, k*10, v)
	}
}

func TestLLRBMapRemove_Descending(t *testing.T) {
	m := FromList(lo.Map(lo.Range(257), func(k int, _ int) Pair[int, int] {
		return NewPair(k, k)
	}))
	for k := 256; k >= 0; k-- {
		m = m.Remove(k)
		require.Empty(t, ValidateInvariants(m), "remove %d", k)
		k2, _, ok := m.Max()
		if k > 0 {
			require.True(t, ok)
			require.Equal(t, k-1, k2)
		} else {
			require.False(t, ok)
		}
	}
}

func TestLLRBMapRemoveMin(t *testing.T) {
	keys := lo.Shuffle(lo.Range(300))
	m := NewLLRBMap[int, string]()
	for _, k := range keys {
		m = m.Insert(k, "v")
	}

	for expected := 0; expected < 300; expected++ {
		var (
			p  Pair[int, string]
			ok bool
		)
		p, m, ok = m.RemoveMin()
		require.True(t, ok)
		require.Equal(t, expected, p.Key)
		require.Equal(t, "v", p.Val)
		require.Equal(t, int64(300-expected-1), m.Size())
		require.Empty(t, ValidateInvariants(m), "remove min %d", expected)
	}
	_, m, ok := m.RemoveMin()
	require.False(t, ok)
	require.True(t, m.IsEmpty())
}

func TestLLRBMapInsertRemove_Interleaved(t *testing.T) {
	m := NewLLRBMap[int, int]()
	oracle := make(map[int]int, 256)
	for i := 0; i < 4000; i++ {
		key := rand.IntN(10)*37 + i%37
		if i%3 == 0 {
			m = m.Remove(key)
			delete(oracle, key)
		} else {
			m = m.Insert(key, i)
			oracle[key] = i
		}
		require.Equal(t, int64(len(oracle)), m.Size())
	}
	require.Empty(t, ValidateInvariants(m))
	for k, v := range oracle {
		got, ok := m.Get(k)
		require.True(t, ok)
		require.Equal(t, v, got)
	}
}
