package tree

import (
	"errors"
	"fmt"
)

// llrb rule validation utilities.
// Diagnostics for tests and tools only, the operations keep the rules
// by construction and never call them.

var (
	ErrLLRBOrderViolation       = errors.New("llrb order violation")
	ErrLLRBRedViolation         = errors.New("llrb red violation")
	ErrLLRBBlackViolation       = errors.New("llrb black violation")
	ErrLLRBBlackHeightViolation = errors.New("llrb black height violation")
)

// OrderViolationValidate checks that the in-order keys are strictly ascending.
func OrderViolationValidate[K any, V any](m LLRBMap[K, V]) error {
	var (
		prev    K
		hasPrev bool
		err     error
	)
	m.Foreach(func(idx int64, _ RBColor, key K, _ V) bool {
		if hasPrev && m.keyCompare(prev, key) >= 0 {
			err = fmt.Errorf("%w: key %v at %d is not greater than %v", ErrLLRBOrderViolation, key, idx, prev)
			return false
		}
		prev, hasPrev = key, true
		return true
	})
	return err
}

/*
RedViolationValidate checks the 2-3 tree shape.

	v1: The root is black.
	v2: No red right link.
	v3: No red node with a red left child.
*/
func RedViolationValidate[K any, V any](m LLRBMap[K, V]) error {
	if /* v1 */ m.root.isRed() {
		return fmt.Errorf("%w: red root %v", ErrLLRBRedViolation, m.root.key)
	}
	return redViolationValidate(m.root)
}

func redViolationValidate[K any, V any](node *llrbNode[K, V]) error {
	if node == nil {
		return nil
	}
	if /* v2 */ node.right.isRed() {
		return fmt.Errorf("%w: red right link %v -> %v", ErrLLRBRedViolation, node.key, node.right.key)
	}
	if /* v3 */ node.isRed() && node.left.isRed() {
		return fmt.Errorf("%w: consecutive red links %v -> %v", ErrLLRBRedViolation, node.key, node.left.key)
	}
	if err := redViolationValidate(node.left); err != nil {
		return err
	}
	return redViolationValidate(node.right)
}

// BlackViolationValidate checks that each path from the root to an
// empty leaf passes the same number of black links.
func BlackViolationValidate[K any, V any](m LLRBMap[K, V]) error {
	_, err := blackLinksOf(m.root)
	return err
}

func blackLinksOf[K any, V any](node *llrbNode[K, V]) (int32, error) {
	if node == nil {
		return 0, nil
	}
	l, err := blackLinksOf(node.left)
	if err != nil {
		return 0, err
	}
	r, err := blackLinksOf(node.right)
	if err != nil {
		return 0, err
	}
	if node.left.isBlack() {
		l++
	}
	if node.right.isBlack() {
		r++
	}
	if l != r {
		return 0, fmt.Errorf("%w: unbalanced blacks {%d,%d} under %v", ErrLLRBBlackViolation, l, r, node.key)
	}
	return l, nil
}

// BlackHeightValidate checks that every cached black height matches
// a fresh count.
func BlackHeightValidate[K any, V any](m LLRBMap[K, V]) error {
	_, err := blackHeightValidate(m.root)
	return err
}

func blackHeightValidate[K any, V any](node *llrbNode[K, V]) (int32, error) {
	if node == nil {
		return 0, nil
	}
	counted, err := blackHeightValidate(node.left)
	if err != nil {
		return 0, err
	}
	if _, err = blackHeightValidate(node.right); err != nil {
		return 0, err
	}
	if node.left.isBlack() {
		counted++
	}
	if node.height != counted {
		return 0, fmt.Errorf("%w: node %v caches %d, counted %d", ErrLLRBBlackHeightViolation, node.key, node.height, counted)
	}
	return counted, nil
}

// Validate runs all checks and returns the first violation.
func Validate[K any, V any](m LLRBMap[K, V]) error {
	checks := []func(LLRBMap[K, V]) error{
		OrderViolationValidate[K, V],
		RedViolationValidate[K, V],
		BlackViolationValidate[K, V],
		BlackHeightValidate[K, V],
	}
	for _, check := range checks {
		if err := check(m); err != nil {
			return err
		}
	}
	return nil
}

// ValidateInvariants returns an empty string for a valid map,
// otherwise the description of the first violation.
func ValidateInvariants[K any, V any](m LLRBMap[K, V]) string {
	if err := Validate(m); err != nil {
		return err.Error()
	}
	return ""
}
