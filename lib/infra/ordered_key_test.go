package infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderedKeyCompare(t *testing.T) {
	testcases := []struct {
		name     string
		i, j     int
		expected int64
	}{
		{"equal", 7, 7, 0},
		{"less", -3, 7, -1},
		{"greater", 42, 7, 1},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, OrderedKeyCompare(tc.i, tc.j))
		})
	}

	assert.Equal(t, int64(-1), OrderedKeyCompare("abc", "abd"))
	assert.Equal(t, int64(1), OrderedKeyCompare(2.5, 1.25))
	assert.Equal(t, int64(0), OrderedKeyCompare(uint8('x'), byte('x')))
}

func TestReverseKeyComparator(t *testing.T) {
	require.Nil(t, ReverseKeyComparator[int](nil))

	desc := ReverseKeyComparator[int](OrderedKeyCompare[int])
	require.Equal(t, int64(1), desc(1, 2))
	require.Equal(t, int64(-1), desc(2, 1))
	require.Equal(t, int64(0), desc(3, 3))

	asc := ReverseKeyComparator(desc)
	require.Equal(t, int64(-1), asc(1, 2))
}
