package verifier

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/benz9527/xllrb/lib/infra"
	"github.com/benz9527/xllrb/lib/tree"
)

var (
	ErrInvariantViolation = errors.New("llrb invariant violation")
	ErrOracleMismatch     = errors.New("llrb oracle mismatch")
	ErrBaseMutated        = errors.New("llrb shared base map mutated")
)

type opKind uint8

const (
	opInsert opKind = iota
	opUpdate
	opRemove
	opRemoveMin
	opUnion
	opIntersect
	opDiff
	opFilter
	opFromList
	_opMax
)

func (k opKind) String() string {
	switch k {
	case opInsert:
		return "insert"
	case opUpdate:
		return "update"
	case opRemove:
		return "remove"
	case opRemoveMin:
		return "removeMin"
	case opUnion:
		return "union"
	case opIntersect:
		return "intersect"
	case opDiff:
		return "diff"
	case opFilter:
		return "filter"
	case opFromList:
		return "fromList"
	default:
	}
	return "unknown"
}

// Point operations dominate, the linear set operations would
// otherwise make long histories quadratic.
var opWeights = [_opMax]int{
	opInsert:    30,
	opUpdate:    15,
	opRemove:    25,
	opRemoveMin: 5,
	opUnion:     6,
	opIntersect: 3,
	opDiff:      6,
	opFilter:    3,
	opFromList:  2,
}

var opWeightSum = lo.Sum(opWeights[:])

type oracle map[int]int

func (o oracle) clone() oracle {
	res := make(oracle, len(o))
	for k, v := range o {
		res[k] = v
	}
	return res
}

func (o oracle) sortedPairs() []tree.Pair[int, int] {
	pairs := lo.MapToSlice(o, func(k int, v int) tree.Pair[int, int] {
		return tree.NewPair(k, v)
	})
	slices.SortFunc(pairs, func(a, b tree.Pair[int, int]) int {
		return int(infra.OrderedKeyCompare(a.Key, b.Key))
	})
	return pairs
}

// history is one sequence of random operations applied to its own
// version of the map, checked against a plain Go map.
type history struct {
	id            int
	rnd           *rand.Rand
	stats         *verifierStats
	keySpace      int
	validateEvery int
	m             tree.LLRBMap[int, int]
	expected      oracle
}

func newHistory(id int, seed uint64, base tree.LLRBMap[int, int], expected oracle, keySpace, validateEvery int, stats *verifierStats) *history {
	return &history{
		id:            id,
		rnd:           rand.New(rand.NewPCG(seed, uint64(id))),
		stats:         stats,
		keySpace:      keySpace,
		validateEvery: validateEvery,
		m:             base,
		expected:      expected,
	}
}

func (h *history) nextOp() opKind {
	n := h.rnd.IntN(opWeightSum)
	for kind, w := range opWeights {
		if n < w {
			return opKind(kind)
		}
		n -= w
	}
	return opInsert
}

func (h *history) randomKey() int {
	return h.rnd.IntN(h.keySpace)
}

func (h *history) randomPairs(n int) []tree.Pair[int, int] {
	pairs := make([]tree.Pair[int, int], 0, n)
	for i := 0; i < n; i++ {
		pairs = append(pairs, tree.NewPair(h.randomKey(), h.rnd.Int()))
	}
	return pairs
}

func (h *history) run(ctx context.Context, rounds int) error {
	for round := 0; round < rounds; round++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("history %d stopped at round %d: %w", h.id, round, err)
		}
		kind := h.nextOp()
		if err := h.apply(kind); err != nil {
			h.stats.IncreaseViolationCount(ctx, kind)
			return fmt.Errorf("history %d round %d %s: %w", h.id, round, kind, err)
		}
		h.stats.IncreaseOpCount(ctx, kind)
		if (round+1)%h.validateEvery == 0 {
			if err := h.validate(ctx); err != nil {
				h.stats.IncreaseViolationCount(ctx, kind)
				return fmt.Errorf("history %d round %d %s: %w", h.id, round, kind, err)
			}
		}
	}
	if err := h.validate(ctx); err != nil {
		return fmt.Errorf("history %d final: %w", h.id, err)
	}
	return nil
}

func (h *history) apply(kind opKind) error {
	switch kind {
	case opInsert:
		k, v := h.randomKey(), h.rnd.Int()
		h.m = h.m.Insert(k, v)
		h.expected[k] = v
		if got, ok := h.m.Get(k); !ok || got != v {
			return fmt.Errorf("%w: get %d after insert returns (%d,%t)", ErrOracleMismatch, k, got, ok)
		}
	case opUpdate:
		k, drop := h.randomKey(), h.rnd.IntN(4) == 0
		h.m = h.m.Update(k, func(old int, exists bool) (int, bool) {
			if drop {
				return 0, false
			}
			return old + 1, true
		})
		if drop {
			delete(h.expected, k)
		} else {
			h.expected[k]++
		}
	case opRemove:
		k := h.randomKey()
		h.m = h.m.Remove(k)
		delete(h.expected, k)
		if h.m.Member(k) {
			return fmt.Errorf("%w: %d still present after remove", ErrOracleMismatch, k)
		}
	case opRemoveMin:
		p, next, ok := h.m.RemoveMin()
		if ok != (len(h.expected) > 0) {
			return fmt.Errorf("%w: remove min on %d entries reports %t", ErrOracleMismatch, len(h.expected), ok)
		}
		if ok {
			if _min := lo.Min(lo.Keys(h.expected)); _min != p.Key || h.expected[_min] != p.Val {
				return fmt.Errorf("%w: remove min returns %d, expected %d", ErrOracleMismatch, p.Key, _min)
			}
			delete(h.expected, p.Key)
		}
		h.m = next
	case opUnion:
		other := h.m.Empty().FromList(h.randomPairs(1 + h.rnd.IntN(16)))
		h.m = h.m.Union(other)
		for k, v := range other.All() {
			if _, ok := h.expected[k]; !ok {
				h.expected[k] = v
			}
		}
	case opIntersect:
		// Most of the keys survive, a few unrelated keys join the other side.
		keep := make([]tree.Pair[int, int], 0, len(h.expected)+8)
		for k := range h.expected {
			if h.rnd.IntN(10) != 0 {
				keep = append(keep, tree.NewPair(k, -1))
			}
		}
		keep = append(keep, h.randomPairs(8)...)
		other := h.m.Empty().FromList(keep)
		h.m = h.m.Intersect(other)
		for k := range h.expected {
			if !other.Member(k) {
				delete(h.expected, k)
			}
		}
	case opDiff:
		other := h.m.Empty().FromList(h.randomPairs(1 + h.rnd.IntN(16)))
		h.m = h.m.Diff(other)
		for _, k := range other.Keys() {
			delete(h.expected, k)
		}
	case opFilter:
		mod := 2 + h.rnd.IntN(7)
		rem := h.rnd.IntN(mod)
		h.m = h.m.Filter(func(key int, _ int) bool {
			return key%mod != rem
		})
		for k := range h.expected {
			if k%mod == rem {
				delete(h.expected, k)
			}
		}
	case opFromList:
		pairs := h.m.ToList()
		h.rnd.Shuffle(len(pairs), func(i, j int) {
			pairs[i], pairs[j] = pairs[j], pairs[i]
		})
		h.m = h.m.FromList(pairs)
	default:
		return fmt.Errorf("unknown op %d", kind)
	}

	if size := h.m.Size(); size != int64(len(h.expected)) {
		return fmt.Errorf("%w: size %d, expected %d", ErrOracleMismatch, size, len(h.expected))
	}
	return nil
}

func (h *history) validate(ctx context.Context) error {
	start := time.Now()
	err := checkAgainst(h.m, h.expected)
	h.stats.RecordValidation(ctx, time.Since(start).Microseconds(), int64(len(h.expected)))
	return err
}

// checkAgainst runs the invariant check and compares every entry with
// the oracle.
func checkAgainst(m tree.LLRBMap[int, int], expected oracle) error {
	if err := tree.Validate(m); err != nil {
		return fmt.Errorf("%w: %w", ErrInvariantViolation, err)
	}
	actual, want := m.ToList(), expected.sortedPairs()
	if len(actual) != len(want) {
		return fmt.Errorf("%w: %d entries, expected %d", ErrOracleMismatch, len(actual), len(want))
	}
	for i := range want {
		if actual[i] != want[i] {
			return fmt.Errorf("%w: entry %d is %v, expected %v", ErrOracleMismatch, i, actual[i], want[i])
		}
	}
	return nil
}
