package tree

import (
	"slices"

	"github.com/samber/lo"

	"github.com/benz9527/xllrb/lib/infra"
)

/*
buildFromSorted turns ascending, duplicate free pairs into a balanced
llrb in linear time, no rotation at all.

Sorted keys k1..kn are the separators between n+1 empty leaves. One
level up, the leaves are grouped into 2-nodes (two subtrees, one key)
and 3-nodes (three subtrees, two keys). The keys between two groups
become the separators of the next level. Repeat until one subtree is
left, it is the root.

A 2-3 tree level maps to the llrb directly:

	2-node:  [k]          3-node:     [k2]
	         / \                      /  \
	        a   b                  <k1>   c
	                               /  \
	                              a    b

An odd number of subtrees needs exactly one 3-node per level. The
3-node goes to the left end on one level and to the right end on the
next, so neither spine of the tree collects all of them.

It consumes pairs, the slice is reused as the separator buffer.
*/
func buildFromSorted[K any, V any](pairs []Pair[K, V]) *llrbNode[K, V] {
	if len(pairs) == 0 {
		return nil
	}

	trees := make([]*llrbNode[K, V], len(pairs)+1)
	seps := pairs
	for leftEnd := true; len(trees) > 1; leftEnd = !leftEnd {
		count := len(trees)
		groups := count >> 1
		threeAt := -1
		if count&1 == 1 {
			if leftEnd {
				threeAt = 0
			} else {
				threeAt = groups - 1
			}
		}

		// Writes always trail the reads, the buffers are reused in place.
		i := 0
		for g := 0; g < groups; g++ {
			var node *llrbNode[K, V]
			if g == threeAt {
				node = newLLRBNode(Black, seps[i+1].Key, seps[i+1].Val,
					newLLRBNode(Red, seps[i].Key, seps[i].Val, trees[i], trees[i+1]),
					trees[i+2],
				)
				i += 3
			} else {
				node = newLLRBNode(Black, seps[i].Key, seps[i].Val, trees[i], trees[i+1])
				i += 2
			}
			trees[g] = node
			if g < groups-1 {
				seps[g] = seps[i-1]
			}
		}
		clear(trees[groups:])
		trees = trees[:groups]
		seps = seps[:groups-1]
	}
	return trees[0]
}

// sortedUnique sorts pairs by key and collapses equal keys. The later
// occurrence in the input wins.
func sortedUnique[K any, V any](cmp infra.KeyComparator[K], pairs []Pair[K, V]) []Pair[K, V] {
	sorted := slices.Clone(pairs)
	slices.SortStableFunc(sorted, func(a, b Pair[K, V]) int {
		return sign(cmp(a.Key, b.Key))
	})

	uniq := sorted[:0]
	for i := 0; i < len(sorted); i++ {
		if n := len(uniq); n > 0 && cmp(uniq[n-1].Key, sorted[i].Key) == 0 {
			uniq[n-1] = sorted[i]
			continue
		}
		uniq = append(uniq, sorted[i])
	}
	clear(sorted[len(uniq):])
	return uniq
}

// FromList builds a map with the key order of m from pairs in any
// order. Later duplicates win.
func (m LLRBMap[K, V]) FromList(pairs []Pair[K, V]) LLRBMap[K, V] {
	if m.cmp == nil {
		panic("[llrb] map without key comparator, use the constructors")
	}
	return m.with(buildFromSorted(sortedUnique(m.cmp, pairs)))
}

// FromSortedList trusts pairs to be strictly ascending by the key
// order of m and builds in linear time. Breaking that contract breaks
// the map.
func (m LLRBMap[K, V]) FromSortedList(pairs []Pair[K, V]) LLRBMap[K, V] {
	return m.with(buildFromSorted(slices.Clone(pairs)))
}

func FromList[K infra.OrderedKey, V any](pairs []Pair[K, V]) LLRBMap[K, V] {
	return NewLLRBMap[K, V]().FromList(pairs)
}

func FromMap[K infra.OrderedKey, V any](kv map[K]V) LLRBMap[K, V] {
	pairs := lo.Map(lo.Entries(kv), func(e lo.Entry[K, V], _ int) Pair[K, V] {
		return NewPair(e.Key, e.Value)
	})
	m := NewLLRBMap[K, V]()
	slices.SortFunc(pairs, func(a, b Pair[K, V]) int {
		return sign(m.cmp(a.Key, b.Key))
	})
	return m.with(buildFromSorted(pairs))
}

func sign(res int64) int {
	if res < 0 {
		return -1
	} else if res > 0 {
		return 1
	}
	return 0
}
