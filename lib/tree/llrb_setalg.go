package tree

// The set operations never look keys up in the other tree. Both
// trees are flattened into sorted lists, joined by two forward-only
// cursors and the joined list is built back in linear time.
// So they run in O(n+m) instead of O(m*log(n+m)).
//
// Both maps must share the same key order, the receiver's order
// is used.

// Union keeps every key of both maps. The value of m wins ties.
func (m LLRBMap[K, V]) Union(other LLRBMap[K, V]) LLRBMap[K, V] {
	if other.IsEmpty() {
		return m
	}
	if m.IsEmpty() {
		return m.with(other.root)
	}

	l, r := m.ToList(), other.ToList()
	res := make([]Pair[K, V], 0, len(l)+len(r))
	i, j := 0, 0
	for i < len(l) && j < len(r) {
		if c := m.keyCompare(l[i].Key, r[j].Key); c < 0 {
			res = append(res, l[i])
			i++
		} else if c > 0 {
			res = append(res, r[j])
			j++
		} else {
			res = append(res, l[i])
			i++
			j++
		}
	}
	res = append(res, l[i:]...)
	res = append(res, r[j:]...)
	return m.with(buildFromSorted(res))
}

// Intersect keeps the keys present in both maps with the values of m.
func (m LLRBMap[K, V]) Intersect(other LLRBMap[K, V]) LLRBMap[K, V] {
	if m.IsEmpty() || other.IsEmpty() || m.disjoint(other.root) {
		return m.Empty()
	}

	l, r := m.ToList(), other.ToList()
	res := make([]Pair[K, V], 0, min(len(l), len(r)))
	i, j := 0, 0
	for i < len(l) && j < len(r) {
		if c := m.keyCompare(l[i].Key, r[j].Key); c < 0 {
			i++
		} else if c > 0 {
			j++
		} else {
			res = append(res, l[i])
			i++
			j++
		}
	}
	if len(res) == len(l) {
		return m
	}
	return m.with(buildFromSorted(res))
}

// Diff keeps the entries of m whose keys are absent from other.
func (m LLRBMap[K, V]) Diff(other LLRBMap[K, V]) LLRBMap[K, V] {
	if m.IsEmpty() || other.IsEmpty() || m.disjoint(other.root) {
		return m
	}

	l, r := m.ToList(), other.ToList()
	res := make([]Pair[K, V], 0, len(l))
	i, j := 0, 0
	for i < len(l) && j < len(r) {
		if c := m.keyCompare(l[i].Key, r[j].Key); c < 0 {
			res = append(res, l[i])
			i++
		} else if c > 0 {
			j++
		} else {
			i++
			j++
		}
	}
	res = append(res, l[i:]...)
	if len(res) == len(l) {
		return m
	}
	return m.with(buildFromSorted(res))
}

// disjoint reports whether the key ranges [min,max] of m and the
// other tree do not overlap. Only the two spines are visited.
func (m LLRBMap[K, V]) disjoint(other *llrbNode[K, V]) bool {
	lMin, lMax := m.root.minimum(), m.root.maximum()
	rMin, rMax := other.minimum(), other.maximum()
	if lMin == nil || rMin == nil {
		return true
	}
	return m.keyCompare(lMax.key, rMin.key) < 0 || m.keyCompare(rMax.key, lMin.key) < 0
}

// Merge is the general fold over two maps. The callbacks are invoked
// strictly in ascending key order over the union of both key sets:
// leftFn for keys only in a, bothFn for keys in both, rightFn for keys
// only in b. The accumulator is threaded through every call.
// The key order of a is used.
func Merge[K any, V1 any, V2 any, R any](
	a LLRBMap[K, V1],
	b LLRBMap[K, V2],
	leftFn func(key K, val V1, acc R) R,
	bothFn func(key K, lval V1, rval V2, acc R) R,
	rightFn func(key K, val V2, acc R) R,
	init R,
) R {
	l, r := a.ToList(), b.ToList()
	acc := init
	i, j := 0, 0
	for i < len(l) && j < len(r) {
		if c := a.keyCompare(l[i].Key, r[j].Key); c < 0 {
			if leftFn != nil {
				acc = leftFn(l[i].Key, l[i].Val, acc)
			}
			i++
		} else if c > 0 {
			if rightFn != nil {
				acc = rightFn(r[j].Key, r[j].Val, acc)
			}
			j++
		} else {
			if bothFn != nil {
				acc = bothFn(l[i].Key, l[i].Val, r[j].Val, acc)
			}
			i++
			j++
		}
	}
	for ; i < len(l); i++ {
		if leftFn != nil {
			acc = leftFn(l[i].Key, l[i].Val, acc)
		}
	}
	for ; j < len(r); j++ {
		if rightFn != nil {
			acc = rightFn(r[j].Key, r[j].Val, acc)
		}
	}
	return acc
}
