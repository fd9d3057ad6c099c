package tree

// The nil *llrbNode is the empty leaf, black with height 0.
// Nodes are never modified after construction, so they can
// be shared by any number of map versions.
type llrbNode[K any, V any] struct {
	left   *llrbNode[K, V]
	right  *llrbNode[K, V]
	key    K
	val    V
	height int32
	color  RBColor
}

func (node *llrbNode[K, V]) Key() K {
	return node.key
}

func (node *llrbNode[K, V]) Val() V {
	return node.val
}

func (node *llrbNode[K, V]) Color() RBColor {
	if node == nil {
		return Black
	}
	return node.color
}

func (node *llrbNode[K, V]) BlackHeight() int {
	if node == nil {
		return 0
	}
	return int(node.height)
}

func (node *llrbNode[K, V]) Left() LLRBNode[K, V] {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *llrbNode[K, V]) Right() LLRBNode[K, V] {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

func (node *llrbNode[K, V]) isEmpty() bool {
	return node == nil
}

func (node *llrbNode[K, V]) isRed() bool {
	return node != nil && node.color == Red
}

func (node *llrbNode[K, V]) isBlack() bool {
	return node == nil || node.color == Black
}

// blackLinks is the black height seen by the parent through
// the link to this node. A red link adds nothing.
func (node *llrbNode[K, V]) blackLinks() int32 {
	if node == nil {
		return 1
	}
	if node.color == Red {
		return node.height
	}
	return node.height + 1
}

// newLLRBNode builds a node over two subtrees. The black height is
// derived from the left link, both links must already agree.
func newLLRBNode[K any, V any](
	color RBColor,
	key K,
	val V,
	left, right *llrbNode[K, V],
) *llrbNode[K, V] {
	return &llrbNode[K, V]{
		left:   left,
		right:  right,
		key:    key,
		val:    val,
		height: left.blackLinks(),
		color:  color,
	}
}

// newLLRBNodeWithHeight is used when the height is already known
// and must not be derived, e.g. repainting or replacing a value.
func newLLRBNodeWithHeight[K any, V any](
	color RBColor,
	height int32,
	key K,
	val V,
	left, right *llrbNode[K, V],
) *llrbNode[K, V] {
	return &llrbNode[K, V]{
		left:   left,
		right:  right,
		key:    key,
		val:    val,
		height: height,
		color:  color,
	}
}

// paint returns the node with a new color and everything else shared.
func (node *llrbNode[K, V]) paint(color RBColor) *llrbNode[K, V] {
	if node == nil || node.color == color {
		return node
	}
	return newLLRBNodeWithHeight(color, node.height, node.key, node.val, node.left, node.right)
}

func (node *llrbNode[K, V]) minimum() *llrbNode[K, V] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (node *llrbNode[K, V]) maximum() *llrbNode[K, V] {
	aux := node
	for ; aux != nil && aux.right != nil; aux = aux.right {
	}
	return aux
}
