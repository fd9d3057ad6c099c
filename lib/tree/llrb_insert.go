package tree

// Insert adds or replaces the value of key.
//
// i1: Reach the empty leaf, hang a new red leaf. A red link never
// breaks the black balance, only the red rules that balance repairs
// on the way back up.
// i2: Key matched, replace the value only. Color, height and children
// are kept.
// i3: Descend by key order, then balance the rebuilt node.
// Finally the root is painted black.
func (m LLRBMap[K, V]) Insert(key K, val V) LLRBMap[K, V] {
	return m.with(m.insert(m.root, key, val).paint(Black))
}

func (m LLRBMap[K, V]) insert(node *llrbNode[K, V], key K, val V) *llrbNode[K, V] {
	if /* i1 */ node.isEmpty() {
		return newLLRBNode[K, V](Red, key, val, nil, nil)
	}

	res := m.keyCompare(key, node.key)
	if /* equal, i2 */ res == 0 {
		return newLLRBNodeWithHeight(node.color, node.height, node.key, val, node.left, node.right)
	} else /* less */ if res < 0 {
		return balance(node.color, node.key, node.val, m.insert(node.left, key, val), node.right)
	}
	/* greater */
	return balance(node.color, node.key, node.val, node.left, m.insert(node.right, key, val))
}

// Update changes the entry of key by fn.
// fn receives the current value and whether it exists. It returns the
// new value and whether the entry should stay. Returning false removes
// the key.
func (m LLRBMap[K, V]) Update(key K, fn func(old V, exists bool) (V, bool)) LLRBMap[K, V] {
	if fn == nil {
		return m
	}
	old, exists := m.Get(key)
	val, keep := fn(old, exists)
	if keep {
		return m.Insert(key, val)
	}
	if !exists {
		return m
	}
	return m.Remove(key)
}
