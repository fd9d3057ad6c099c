package tree

import (
	"github.com/benz9527/xllrb/lib/infra"
)

// LLRBMap is a persistent ordered map backed by a left-leaning
// red-black tree.
//
// Every "mutating" method returns a new map and leaves the receiver
// untouched. Unmodified subtrees are shared by reference between the
// versions, so an update only allocates the nodes along one path.
// A map value can be read from many goroutines without locking.
//
// Invariants of every reachable tree:
//  1. In-order keys are strictly ascending.
//  2. No red right link (left-leaning).
//  3. No red node has a red left child.
//  4. Every root-to-leaf path has the same number of black links and
//     the cached black height of each node matches it.
//
// The root is always black.
type LLRBMap[K any, V any] struct {
	root *llrbNode[K, V]
	cmp  infra.KeyComparator[K]
}

func (m LLRBMap[K, V]) keyCompare(k1, k2 K) int64 {
	if m.cmp == nil {
		// impossible run to here if the map is created by constructors
		panic( /* debug assertion */ "[llrb] map without key comparator, use the constructors")
	}
	return m.cmp(k1, k2)
}

func (m LLRBMap[K, V]) with(root *llrbNode[K, V]) LLRBMap[K, V] {
	return LLRBMap[K, V]{root: root, cmp: m.cmp}
}

func (m LLRBMap[K, V]) Root() LLRBNode[K, V] {
	if m.root == nil {
		return nil
	}
	return m.root
}

// Comparator returns the key order of this map.
func (m LLRBMap[K, V]) Comparator() infra.KeyComparator[K] {
	return m.cmp
}

// Empty returns a map without entries sharing the key order of m.
func (m LLRBMap[K, V]) Empty() LLRBMap[K, V] {
	return m.with(nil)
}

func (m LLRBMap[K, V]) IsEmpty() bool {
	return m.root.isEmpty()
}

func (m LLRBMap[K, V]) Singleton(key K, val V) LLRBMap[K, V] {
	return m.with(newLLRBNode[K, V](Black, key, val, nil, nil))
}

type llrbMapCfg[K infra.OrderedKey, V any] struct {
	isDesc bool
}

type LLRBMapOpt[K infra.OrderedKey, V any] func(*llrbMapCfg[K, V])

// WithLLRBMapDesc orders the keys from the greatest to the least.
func WithLLRBMapDesc[K infra.OrderedKey, V any]() LLRBMapOpt[K, V] {
	return func(cfg *llrbMapCfg[K, V]) {
		cfg.isDesc = true
	}
}

func NewLLRBMap[K infra.OrderedKey, V any](opts ...LLRBMapOpt[K, V]) LLRBMap[K, V] {
	cfg := &llrbMapCfg[K, V]{}
	for _, o := range opts {
		if o != nil {
			o(cfg)
		}
	}
	cmp := infra.OrderedKeyCompare[K]
	if cfg.isDesc {
		return NewLLRBMapFunc[K, V](infra.ReverseKeyComparator[K](cmp))
	}
	return NewLLRBMapFunc[K, V](cmp)
}

// NewLLRBMapFunc creates an empty map ordered by cmp, which
// must be a total order.
func NewLLRBMapFunc[K any, V any](cmp infra.KeyComparator[K]) LLRBMap[K, V] {
	if cmp == nil {
		panic("[llrb] nil key comparator")
	}
	return LLRBMap[K, V]{cmp: cmp}
}

func Singleton[K infra.OrderedKey, V any](key K, val V) LLRBMap[K, V] {
	return NewLLRBMap[K, V]().Singleton(key, val)
}
