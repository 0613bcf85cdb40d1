// Package block implements the immutable time-ordered batch type that
// flows between nodes during evaluation, plus the Maybe optional-value
// carrier operators use to decide whether a tick fires on a given step.
package block

import (
	"fmt"

	"github.com/snakch/timedag/pkg/tderrors"
)

// Timestamp is a monotonic wall-time value with millisecond resolution.
// The core attaches no timezone semantics to it.
type Timestamp int64

// Knot is a single (time, value) observation.
type Knot[T any] struct {
	Time  Timestamp
	Value T
}

// Block is an ordered, immutable sequence of knots for one node over one
// evaluation interval. Timestamps are strictly increasing; an empty block
// is valid.
type Block[T any] struct {
	times  []Timestamp
	values []T
}

// New validates that times is strictly increasing and that times/values
// have equal length, then builds a Block. Use Unchecked for internal
// constructions that are already known to satisfy the invariant.
func New[T any](times []Timestamp, values []T) (Block[T], error) {
	if len(times) != len(values) {
		return Block[T]{}, tderrors.New(tderrors.InternalInvariantViolation, "block.New",
			"len(times)=%d != len(values)=%d", len(times), len(values))
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return Block[T]{}, tderrors.New(tderrors.InternalInvariantViolation, "block.New",
				"knot times not strictly increasing at index %d: %d <= %d", i, times[i], times[i-1])
		}
	}
	return Unchecked(times, values), nil
}

// Unchecked builds a Block without validating monotonicity. Callers must
// only use it when times/values are already known-good (e.g. the output
// of the alignment merge, which enforces ordering by construction).
func Unchecked[T any](times []Timestamp, values []T) Block[T] {
	return Block[T]{times: times, values: values}
}

// Empty returns a zero-length Block.
func Empty[T any]() Block[T] {
	return Block[T]{}
}

// IsEmpty reports whether the block has no knots.
func (b Block[T]) IsEmpty() bool { return len(b.times) == 0 }

// Len returns the number of knots.
func (b Block[T]) Len() int { return len(b.times) }

// First returns the block's first knot. It panics if the block is empty;
// callers must check IsEmpty first, mirroring the Rust-derived source's
// "first on an inception window" convention of only calling this once
// primed.
func (b Block[T]) First() Knot[T] {
	if b.IsEmpty() {
		panic("block: First called on empty block")
	}
	return Knot[T]{Time: b.times[0], Value: b.values[0]}
}

// Last returns the block's last knot.
func (b Block[T]) Last() Knot[T] {
	if b.IsEmpty() {
		panic("block: Last called on empty block")
	}
	n := len(b.times)
	return Knot[T]{Time: b.times[n-1], Value: b.values[n-1]}
}

// At returns the i'th knot.
func (b Block[T]) At(i int) Knot[T] {
	return Knot[T]{Time: b.times[i], Value: b.values[i]}
}

// Times returns the underlying time slice. Callers must not mutate it.
func (b Block[T]) Times() []Timestamp { return b.times }

// Values returns the underlying value slice. Callers must not mutate it.
func (b Block[T]) Values() []T { return b.values }

// Equal reports element-wise equality using the supplied value equality
// function (values are not required to be comparable, e.g. []float64
// vectors).
func (b Block[T]) Equal(other Block[T], valueEq func(a, b T) bool) bool {
	if len(b.times) != len(other.times) {
		return false
	}
	for i := range b.times {
		if b.times[i] != other.times[i] {
			return false
		}
		if !valueEq(b.values[i], other.values[i]) {
			return false
		}
	}
	return true
}

// String implements a debug-friendly rendering, mirroring the console
// sink's compact per-row formatting.
func (b Block[T]) String() string {
	s := "["
	for i := range b.times {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("(%d, %v)", b.times[i], b.values[i])
	}
	return s + "]"
}

// Builder accumulates knots in time-ascending order and produces a Block.
// It is the trusted internal path most operators use instead of
// re-validating monotonicity on every emitted knot.
type Builder[T any] struct {
	times  []Timestamp
	values []T
}

// NewBuilder creates an empty Builder with a size hint.
func NewBuilder[T any](sizeHint int) *Builder[T] {
	return &Builder[T]{times: make([]Timestamp, 0, sizeHint), values: make([]T, 0, sizeHint)}
}

// Push appends a knot. The caller is responsible for supplying
// strictly-increasing times; Build re-validates in debug paths via
// block.New only when callers opt in via BuildChecked.
func (bd *Builder[T]) Push(t Timestamp, v T) {
	bd.times = append(bd.times, t)
	bd.values = append(bd.values, v)
}

// Len returns the number of knots pushed so far.
func (bd *Builder[T]) Len() int { return len(bd.times) }

// Build returns the accumulated Block via the unchecked constructor.
func (bd *Builder[T]) Build() Block[T] {
	return Unchecked(bd.times, bd.values)
}

// BuildChecked returns the accumulated Block, validating monotonicity.
func (bd *Builder[T]) BuildChecked() (Block[T], error) {
	return New(bd.times, bd.values)
}

// Maybe is an optional value distinguishing "no tick this step" from a
// present value.
type Maybe[T any] struct {
	value T
	ok    bool
}

// Some wraps a present value.
func Some[T any](v T) Maybe[T] { return Maybe[T]{value: v, ok: true} }

// None returns the absent variant.
func None[T any]() Maybe[T] { return Maybe[T]{} }

// IsSome reports whether the Maybe holds a value.
func (m Maybe[T]) IsSome() bool { return m.ok }

// Get returns the held value and whether it was present, in the
// comma-ok idiom.
func (m Maybe[T]) Get() (T, bool) { return m.value, m.ok }

// MustGet returns the held value, panicking if absent. Only call after
// checking IsSome.
func (m Maybe[T]) MustGet() T {
	if !m.ok {
		panic("block: MustGet called on None")
	}
	return m.value
}
