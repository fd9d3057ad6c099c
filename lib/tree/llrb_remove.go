package tree

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

Removal walks down from the root and keeps one rule all the way:
the node we are about to step into is never a "thin" black node,
i.e. a black node without a red left link. Removing a key from a
red node or from a 3-node never changes the black height, so the
removal below is always local. Each helper only looks at the top
two levels of a subtree.

r1: Step left and the left child is thin. moveRedLeft first.
r2: Step right or found. If the left link is red, rotate it to the
right side first, otherwise moveRedRight when the right child is thin.
r3: Found. Replace the key and value with the minimum of the right
subtree and remove that minimum from the right subtree.
r4: Every rebuilt node on the way back up is balanced again.
Finally the root is painted black.
*/
func (m LLRBMap[K, V]) Remove(key K) LLRBMap[K, V] {
	if !m.Member(key) {
		return m
	}
	return m.with(m.remove(m.root, key).paint(Black))
}

// RemoveMin removes the least entry and returns it with the new map.
func (m LLRBMap[K, V]) RemoveMin() (Pair[K, V], LLRBMap[K, V], bool) {
	_min := m.root.minimum()
	if _min.isEmpty() {
		return Pair[K, V]{}, m, false
	}
	return NewPair(_min.key, _min.val), m.with(removeMin(m.root).paint(Black)), true
}

func (m LLRBMap[K, V]) remove(node *llrbNode[K, V], key K) *llrbNode[K, V] {
	if node.isEmpty() {
		return nil
	}

	if m.keyCompare(key, node.key) < 0 {
		left := node.left
		if /* r1 */ left.isBlack() && !left.isEmpty() && !left.left.isRed() {
			moved := moveRedLeft(node)
			return balance(moved.color, moved.key, moved.val, m.remove(moved.left, key), moved.right)
		}
		return newLLRBNode(node.color, node.key, node.val, m.remove(left, key), node.right)
	}
	return m.removeEQGT(removePrepEQGT(node), key)
}

// r2
func removePrepEQGT[K any, V any](node *llrbNode[K, V]) *llrbNode[K, V] {
	if left := node.left; left.isRed() {
		/*
			    {N}                 {L}
			    / \   r-rotate(N)   / \
			  <L> [R]  =========> Ll  <N>
			  / \                     / \
			Ll   Lr                 Lr  [R]
		*/
		return newLLRBNode(node.color, left.key, left.val,
			left.left,
			newLLRBNode(Red, node.key, node.val, left.right, node.right),
		)
	}
	if right := node.right; right.isBlack() && !right.isEmpty() && !right.left.isRed() {
		return moveRedRight(node)
	}
	return node
}

func (m LLRBMap[K, V]) removeEQGT(node *llrbNode[K, V], key K) *llrbNode[K, V] {
	if node.isEmpty() {
		return nil
	}

	if /* r3 */ m.keyCompare(key, node.key) == 0 {
		_min := node.right.minimum()
		if _min.isEmpty() {
			// A node without right child has no left child either
			// after the preparation, it is a leaf.
			return nil
		}
		return balance(node.color, _min.key, _min.val, node.left, removeMin(node.right))
	}
	return balance(node.color, node.key, node.val, node.left, m.remove(node.right, key))
}

func removeMin[K any, V any](node *llrbNode[K, V]) *llrbNode[K, V] {
	if node.isEmpty() || node.left.isEmpty() {
		// The minimum is a leaf because the left-most node has no
		// right child in a valid llrb.
		return nil
	}

	left := node.left
	if left.isBlack() && !left.left.isRed() {
		moved := moveRedLeft(node)
		return balance(moved.color, moved.key, moved.val, removeMin(moved.left), moved.right)
	}
	return newLLRBNode(node.color, node.key, node.val, removeMin(left), node.right)
}

/*
moveRedLeft makes the left child of N (or one of its children) red
before stepping into it.

ml1: The right child R is a 3-node. Borrow its red left link Rl.
The new root takes Rl's place and stays red, black height kept.

	      {N}                        <Rl>
	      / \                        /  \
	    [L] [R]      =======>      [N]   [R]
	        / \                    / \   / \
	     <Rl> Rr                 <L> a  b  Rr
	     / \
	    a   b

ml2: Otherwise flip colors, both children turn red and N turns black.
If N was red its height from the parent's view is kept, the red link
is handed to the children. Only the root can be black here, then the
whole tree loses one black level.

	    {N}             [N]
	    / \             / \
	  [L] [R]  ====>  <L> <R>
*/
func moveRedLeft[K any, V any](node *llrbNode[K, V]) *llrbNode[K, V] {
	left, right := node.left, node.right
	if left.isEmpty() || right.isEmpty() {
		return node
	}

	if /* ml1 */ rl := right.left; rl.isRed() {
		return newLLRBNode(Red, rl.key, rl.val,
			newLLRBNode(Black, node.key, node.val, left.paint(Red), rl.left),
			newLLRBNode(Black, right.key, right.val, rl.right, right.right),
		)
	}
	/* ml2 */
	return newLLRBNode(Black, node.key, node.val, left.paint(Red), right.paint(Red))
}

/*
moveRedRight makes the right child of N red before stepping into it.

mr1: The left child L is a 3-node. Rotate its red link up and hand
N down to the right side, where the old right child R turns red.

	        {N}                     <L>
	        / \                     / \
	      [L] [R]     =======>   [Ll]  [N]
	      / \                          / \
	   <Ll> Lr                       Lr  <R>

mr2: Otherwise flip colors as ml2.
*/
func moveRedRight[K any, V any](node *llrbNode[K, V]) *llrbNode[K, V] {
	left, right := node.left, node.right
	if left.isEmpty() || right.isEmpty() {
		return node
	}

	if /* mr1 */ ll := left.left; ll.isRed() {
		return newLLRBNode(Red, left.key, left.val,
			ll.paint(Black),
			newLLRBNode(Black, node.key, node.val, left.right, right.paint(Red)),
		)
	}
	/* mr2 */
	return newLLRBNode(Black, node.key, node.val, left.paint(Red), right.paint(Red))
}
