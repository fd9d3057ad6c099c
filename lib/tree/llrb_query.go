package tree

import (
	"iter"
)

func (m LLRBMap[K, V]) search(key K) *llrbNode[K, V] {
	for aux := m.root; aux != nil; {
		res := m.keyCompare(key, aux.key)
		if res == 0 {
			return aux
		} else if res > 0 {
			aux = aux.right
		} else {
			aux = aux.left
		}
	}
	return nil
}

// Get returns the value of key and false if key is absent.
func (m LLRBMap[K, V]) Get(key K) (V, bool) {
	if node := m.search(key); node != nil {
		return node.val, true
	}
	var zero V
	return zero, false
}

func (m LLRBMap[K, V]) Member(key K) bool {
	return m.search(key) != nil
}

// Size counts the entries. There is no cached count, it is O(n).
func (m LLRBMap[K, V]) Size() int64 {
	return size(m.root)
}

func size[K any, V any](node *llrbNode[K, V]) int64 {
	if node == nil {
		return 0
	}
	return 1 + size(node.left) + size(node.right)
}

func (m LLRBMap[K, V]) Min() (K, V, bool) {
	if _min := m.root.minimum(); _min != nil {
		return _min.key, _min.val, true
	}
	var (
		k K
		v V
	)
	return k, v, false
}

func (m LLRBMap[K, V]) Max() (K, V, bool) {
	if _max := m.root.maximum(); _max != nil {
		return _max.key, _max.val, true
	}
	var (
		k K
		v V
	)
	return k, v, false
}

// Foldl accumulates the entries from the least key to the greatest.
func Foldl[K any, V any, A any](m LLRBMap[K, V], fn func(key K, val V, acc A) A, init A) A {
	if fn == nil {
		return init
	}
	return foldl(m.root, fn, init)
}

func foldl[K any, V any, A any](node *llrbNode[K, V], fn func(K, V, A) A, acc A) A {
	if node == nil {
		return acc
	}
	acc = foldl(node.left, fn, acc)
	acc = fn(node.key, node.val, acc)
	return foldl(node.right, fn, acc)
}

// Foldr accumulates the entries from the greatest key to the least.
func Foldr[K any, V any, A any](m LLRBMap[K, V], fn func(key K, val V, acc A) A, init A) A {
	if fn == nil {
		return init
	}
	return foldr(m.root, fn, init)
}

func foldr[K any, V any, A any](node *llrbNode[K, V], fn func(K, V, A) A, acc A) A {
	if node == nil {
		return acc
	}
	acc = foldr(node.right, fn, acc)
	acc = fn(node.key, node.val, acc)
	return foldr(node.left, fn, acc)
}

func (m LLRBMap[K, V]) Keys() []K {
	return Foldl(m, func(key K, _ V, keys []K) []K {
		return append(keys, key)
	}, make([]K, 0, 16))
}

func (m LLRBMap[K, V]) Values() []V {
	return Foldl(m, func(_ K, val V, vals []V) []V {
		return append(vals, val)
	}, make([]V, 0, 16))
}

// ToList returns the entries in ascending key order.
func (m LLRBMap[K, V]) ToList() []Pair[K, V] {
	return appendPairs(m.root, make([]Pair[K, V], 0, 16))
}

func appendPairs[K any, V any](node *llrbNode[K, V], pairs []Pair[K, V]) []Pair[K, V] {
	return foldl(node, func(key K, val V, acc []Pair[K, V]) []Pair[K, V] {
		return append(acc, Pair[K, V]{Key: key, Val: val})
	}, pairs)
}

// Map rewrites every value and keeps the tree shape.
func (m LLRBMap[K, V]) Map(fn func(key K, val V) V) LLRBMap[K, V] {
	if fn == nil {
		return m
	}
	return m.with(mapNode(m.root, fn))
}

// MapValues is Map with a different value type.
func MapValues[K any, V any, W any](m LLRBMap[K, V], fn func(key K, val V) W) LLRBMap[K, W] {
	if fn == nil {
		panic("[llrb] nil map function")
	}
	return LLRBMap[K, W]{root: mapNode(m.root, fn), cmp: m.cmp}
}

func mapNode[K any, V any, W any](node *llrbNode[K, V], fn func(K, V) W) *llrbNode[K, W] {
	if node == nil {
		return nil
	}
	left := mapNode(node.left, fn)
	val := fn(node.key, node.val)
	right := mapNode(node.right, fn)
	return newLLRBNodeWithHeight(node.color, node.height, node.key, val, left, right)
}

// Filter keeps the entries satisfying pred. The kept entries are
// already sorted, so the result is built in linear time.
func (m LLRBMap[K, V]) Filter(pred func(key K, val V) bool) LLRBMap[K, V] {
	if pred == nil {
		return m
	}
	total := 0
	kept := Foldl(m, func(key K, val V, acc []Pair[K, V]) []Pair[K, V] {
		total++
		if pred(key, val) {
			acc = append(acc, Pair[K, V]{Key: key, Val: val})
		}
		return acc
	}, make([]Pair[K, V], 0, 16))
	if len(kept) == total {
		return m
	}
	return m.with(buildFromSorted(kept))
}

// Partition splits the entries into the ones satisfying pred and
// the rest.
func (m LLRBMap[K, V]) Partition(pred func(key K, val V) bool) (LLRBMap[K, V], LLRBMap[K, V]) {
	if pred == nil {
		return m, m.Empty()
	}
	var in, out []Pair[K, V]
	m.Foreach(func(_ int64, _ RBColor, key K, val V) bool {
		if pred(key, val) {
			in = append(in, Pair[K, V]{Key: key, Val: val})
		} else {
			out = append(out, Pair[K, V]{Key: key, Val: val})
		}
		return true
	})
	if len(out) == 0 {
		return m, m.Empty()
	}
	if len(in) == 0 {
		return m.Empty(), m
	}
	return m.with(buildFromSorted(in)), m.with(buildFromSorted(out))
}

// Foreach walks in order and stops once action returns false.
func (m LLRBMap[K, V]) Foreach(action func(idx int64, color RBColor, key K, val V) bool) {
	aux := m.root
	if aux == nil || action == nil {
		return
	}

	stack := make([]*llrbNode[K, V], 0, 2*aux.height+2)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for n := len(stack); n > 0; n = len(stack) {
		if aux = stack[n-1]; !action(idx, aux.color, aux.key, aux.val) {
			return
		}
		idx++
		stack = stack[:n-1]
		for aux = aux.right; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
}

// All iterates the entries in ascending key order.
func (m LLRBMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		m.Foreach(func(_ int64, _ RBColor, key K, val V) bool {
			return yield(key, val)
		})
	}
}

// Backward iterates the entries in descending key order.
func (m LLRBMap[K, V]) Backward() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		aux := m.root
		if aux == nil {
			return
		}
		stack := make([]*llrbNode[K, V], 0, 2*aux.height+2)
		for ; aux != nil; aux = aux.right {
			stack = append(stack, aux)
		}
		for n := len(stack); n > 0; n = len(stack) {
			if aux = stack[n-1]; !yield(aux.key, aux.val) {
				return
			}
			stack = stack[:n-1]
			for aux = aux.left; aux != nil; aux = aux.right {
				stack = append(stack, aux)
			}
		}
	}
}
