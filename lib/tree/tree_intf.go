package tree

//go:generate stringer -type=RBColor
type RBColor uint8

const (
	Black RBColor = iota
	Red
)

func (c RBColor) String() string {
	switch c {
	case Black:
		return "Black"
	case Red:
		return "Red"
	default:
	}
	return "RBColor(unknown)"
}

// LLRBNode is the read-only view of a persistent llrb node.
// Nodes are shared by many map versions, there is no way to
// modify them through this view.
type LLRBNode[K any, V any] interface {
	Key() K
	Val() V
	Color() RBColor
	// BlackHeight is the number of black links from this node
	// down to any empty leaf. Empty leaves count as black.
	BlackHeight() int
	Left() LLRBNode[K, V]
	Right() LLRBNode[K, V]
}

type Pair[K any, V any] struct {
	Key K
	Val V
}

func NewPair[K any, V any](key K, val V) Pair[K, V] {
	return Pair[K, V]{Key: key, Val: val}
}
