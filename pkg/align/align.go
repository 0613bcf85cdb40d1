// Package align implements the alignment algebra over two irregularly
// sampled streams (spec.md §4.4) and the BinaryAlignedOp graph operator
// built on top of it.
package align

import (
	"fmt"

	"github.com/snakch/timedag/pkg/block"
	"github.com/snakch/timedag/pkg/graph"
)

// Alignment governs when a binary operator emits, given that its two
// inputs tick on different schedules. The zero value is UNION.
type Alignment int

const (
	UNION Alignment = iota
	INTERSECT
	LEFT
)

func (a Alignment) String() string {
	switch a {
	case UNION:
		return "UNION"
	case INTERSECT:
		return "INTERSECT"
	case LEFT:
		return "LEFT"
	default:
		return "UNKNOWN"
	}
}

// State carries the per-side latched value and seen-bit that survives
// across the two-pointer walk of a single Merge call. Once both bits are
// set (or the state is bootstrapped), the merger is primed.
type State[X, Y any] struct {
	xVal  X
	xSeen bool
	yVal  Y
	ySeen bool
}

// NewState returns a fresh, unprimed alignment state.
func NewState[X, Y any]() *State[X, Y] { return &State[X, Y]{} }

// Bootstrap primes the state with initial values for both sides so that
// emission may begin before either side has actually ticked.
func (s *State[X, Y]) Bootstrap(x0 X, y0 Y) {
	s.xVal, s.xSeen = x0, true
	s.yVal, s.ySeen = y0, true
}

// Primed reports whether both sides have an observed (or bootstrapped)
// value.
func (s *State[X, Y]) Primed() bool { return s.xSeen && s.ySeen }

// Merge walks the two input blocks' time arrays with a two-pointer scan,
// applying the alignment policy to decide, at each tick time, whether to
// emit combine(latched X, latched Y). State is mutated in place so a
// caller can reuse it across repeated calls within the same evaluation
// (spec.md §4.4).
func Merge[X, Y, Out any](state *State[X, Y], x block.Block[X], y block.Block[Y], alignment Alignment, combine func(X, Y) Out) block.Block[Out] {
	xt, xv := x.Times(), x.Values()
	yt, yv := y.Times(), y.Values()
	bd := block.NewBuilder[Out](len(xt) + len(yt))

	i, j := 0, 0
	for i < len(xt) || j < len(yt) {
		var t block.Timestamp
		xTicks, yTicks := false, false

		switch {
		case i < len(xt) && j < len(yt):
			switch {
			case xt[i] < yt[j]:
				t, xTicks = xt[i], true
			case yt[j] < xt[i]:
				t, yTicks = yt[j], true
			default: // simultaneous
				t, xTicks, yTicks = xt[i], true, true
			}
		case i < len(xt):
			t, xTicks = xt[i], true
		default:
			t, yTicks = yt[j], true
		}

		if xTicks {
			state.xVal, state.xSeen = xv[i], true
			i++
		}
		if yTicks {
			state.yVal, state.ySeen = yv[j], true
			j++
		}

		if shouldEmit(alignment, state, xTicks, yTicks) {
			bd.Push(t, combine(state.xVal, state.yVal))
		}
	}
	return bd.Build()
}

func shouldEmit[X, Y any](alignment Alignment, state *State[X, Y], xTicks, yTicks bool) bool {
	switch alignment {
	case INTERSECT:
		return xTicks && yTicks
	case LEFT:
		return xTicks && state.ySeen
	default: // UNION
		return state.Primed()
	}
}

// BinaryAlignedOp is the generic graph.Operator backing every alignment-
// aware binary node constructor (arithmetic, coalign's internal folds,
// cov/cor, ...). It closes over a pure per-tick combine function and an
// optional bootstrap pair.
type BinaryAlignedOp[X, Y, Out any] struct {
	name        string
	alignment   Alignment
	combine     func(X, Y) Out
	hasInitial  bool
	x0          X
	y0          Y
	keyParams   string
}

// NewBinaryAlignedOp builds a BinaryAlignedOp. name identifies the
// constructor for the dedup key ("add", "sub", "cov.pair", ...); extra is
// an already-canonical parameter encoding folded into the dedup key (pass
// "" if the combine function has no further parameters).
func NewBinaryAlignedOp[X, Y, Out any](name string, alignment Alignment, combine func(X, Y) Out, extra string) *BinaryAlignedOp[X, Y, Out] {
	return &BinaryAlignedOp[X, Y, Out]{name: name, alignment: alignment, combine: combine, keyParams: extra}
}

// WithInitialValues bootstraps the operator's alignment state, letting
// emission begin before either side has ticked.
func (op *BinaryAlignedOp[X, Y, Out]) WithInitialValues(x0 X, y0 Y) *BinaryAlignedOp[X, Y, Out] {
	op.hasInitial, op.x0, op.y0 = true, x0, y0
	return op
}

func (op *BinaryAlignedOp[X, Y, Out]) Key() graph.OpKey {
	return graph.OpKey{
		Kind:   "align." + op.name,
		Params: fmt.Sprintf("%s|init=%v|%v,%v|%s", op.alignment, op.hasInitial, op.x0, op.y0, op.keyParams),
	}
}

func (op *BinaryAlignedOp[X, Y, Out]) OpKind() graph.OpKind { return graph.KindBinaryAligned }

func (op *BinaryAlignedOp[X, Y, Out]) NewState() any {
	st := NewState[X, Y]()
	if op.hasInitial {
		st.Bootstrap(op.x0, op.y0)
	}
	return st
}

func (op *BinaryAlignedOp[X, Y, Out]) Run(state any, _, _ block.Timestamp, parents []any) (any, error) {
	st := state.(*State[X, Y])
	x := parents[0].(block.Block[X])
	y := parents[1].(block.Block[Y])
	return Merge(st, x, y, op.alignment, op.combine), nil
}
