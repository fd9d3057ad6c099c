package tree

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

balance restores the local llrb shape of a node whose children
are valid subtrees but whose links may lean wrong after one
insertion or removal below. The in-order keys never change.

b1: Both links are red. Flip colors and push the red link up,
the node gains one black level.

	    {N}             <N>
	    / \             / \
	  <L> <R>  ====>  [L] [R]

b2: Only the right link is red. Rotate left, the node keeps its
color and the old root hangs red on the left.

	  {N}                  {R}
	  / \    l-rotate(N)   / \
	[L] <R>  ==========> <N> [Rr]
	    / \              / \
	  Rl  [Rr]         [L] Rl

b3: Two red links in a row on the left. Rotate right and flip,
the node gains one black level.

	      {N}                <L>
	      / \    r-rotate    / \
	    <L> [R]  & flip    [LL] [N]
	    / \      ======>        / \
	  <LL> Lr                 Lr  [R]

Otherwise, the node is already valid.
*/
func balance[K any, V any](
	color RBColor,
	key K,
	val V,
	left, right *llrbNode[K, V],
) *llrbNode[K, V] {
	if right.isRed() {
		if /* b1 */ left.isRed() {
			return newLLRBNode[K, V](Red, key, val, left.paint(Black), right.paint(Black))
		}
		/* b2 */
		return newLLRBNode[K, V](color, right.key, right.val,
			newLLRBNode[K, V](Red, key, val, left, right.left),
			right.right,
		)
	}
	if /* b3 */ left.isRed() && left.left.isRed() {
		return newLLRBNode[K, V](Red, left.key, left.val,
			left.left.paint(Black),
			newLLRBNode[K, V](Black, key, val, left.right, right),
		)
	}
	return newLLRBNode[K, V](color, key, val, left, right)
}
