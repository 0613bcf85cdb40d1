// Package source implements the leaf SourceOp constructors (spec.md §6):
// constant, block, pulse and iterdates supply literal or synthetic data
// with no parents; KafkaOp (kafka.go) adapts a replayed topic into
// the same contract.
package source

import (
	"github.com/snakch/timedag/pkg/block"
	"github.com/snakch/timedag/pkg/graph"
)

// ConstantOp is a SourceOp that ticks exactly once, at t_start, with a
// fixed value. It is the base case constant propagation folds onto: any
// arithmetic/statistics constructor whose inputs are all ConstantOp nodes
// evaluates them once at construction time and folds the result into a
// fresh constant node rather than building an evaluation-time graph.
type ConstantOp[T any] struct {
	value T
	key   string
}

// NewConstantOp builds a ConstantOp. key must be a canonical, comparable
// encoding of value (the caller's responsibility, since T is not
// constrained to be comparable or formattable in general).
func NewConstantOp[T any](value T, key string) *ConstantOp[T] {
	return &ConstantOp[T]{value: value, key: key}
}

// Value returns the constant's fixed value, letting callers fold through
// it without evaluating a graph.
func (op *ConstantOp[T]) Value() T { return op.value }

func (op *ConstantOp[T]) Key() graph.OpKey { return graph.OpKey{Kind: "constant", Params: op.key} }

func (op *ConstantOp[T]) OpKind() graph.OpKind { return graph.KindSource }

func (op *ConstantOp[T]) NewState() any { return nil }

func (op *ConstantOp[T]) Run(_ any, tStart, _ block.Timestamp, _ []any) (any, error) {
	bd := block.NewBuilder[T](1)
	bd.Push(tStart, op.value)
	return bd.Build(), nil
}

// BlockOp is a SourceOp replaying a literal, pre-built sequence of knots,
// restricted per evaluation to the requested [tStart, tEnd) window. It is
// the mechanism by which literal test fixtures (spec.md §8's S1-S3) and
// externally-produced Blocks (e.g. pkg/interchange's Arrow import) enter
// the graph.
type BlockOp[T any] struct {
	knots []block.Knot[T]
	key   string
}

// NewBlockOp builds a BlockOp over knots, which must already satisfy
// Block's strict-monotonicity invariant. key must canonically encode the
// knot sequence for dedup purposes.
func NewBlockOp[T any](knots []block.Knot[T], key string) *BlockOp[T] {
	return &BlockOp[T]{knots: knots, key: key}
}

func (op *BlockOp[T]) Key() graph.OpKey { return graph.OpKey{Kind: "block", Params: op.key} }

func (op *BlockOp[T]) OpKind() graph.OpKind { return graph.KindSource }

func (op *BlockOp[T]) NewState() any { return nil }

func (op *BlockOp[T]) Run(_ any, tStart, tEnd block.Timestamp, _ []any) (any, error) {
	bd := block.NewBuilder[T](len(op.knots))
	for _, k := range op.knots {
		if k.Time < tStart || k.Time >= tEnd {
			continue
		}
		bd.Push(k.Time, k.Value)
	}
	return bd.Build(), nil
}

// PulseOp is a SourceOp ticking a fixed value at every multiple of period
// starting from 0, restricted to [tStart, tEnd).
type PulseOp[T any] struct {
	period block.Timestamp
	value  T
	key    string
}

// NewPulseOp builds a PulseOp. period must be positive.
func NewPulseOp[T any](period block.Timestamp, value T, key string) *PulseOp[T] {
	return &PulseOp[T]{period: period, value: value, key: key}
}

func (op *PulseOp[T]) Key() graph.OpKey { return graph.OpKey{Kind: "pulse", Params: op.key} }

func (op *PulseOp[T]) OpKind() graph.OpKind { return graph.KindSource }

func (op *PulseOp[T]) NewState() any { return nil }

func (op *PulseOp[T]) Run(_ any, tStart, tEnd block.Timestamp, _ []any) (any, error) {
	bd := block.NewBuilder[T](int((tEnd-tStart)/op.period) + 1)
	first := (tStart / op.period) * op.period
	if first < tStart {
		first += op.period
	}
	for t := first; t < tEnd; t += op.period {
		bd.Push(t, op.value)
	}
	return bd.Build(), nil
}

// IterDatesOp is a self-valued SourceOp: it ticks at every multiple of
// step within [tStart, tEnd), and its value at each tick is the tick's
// own timestamp. It is used as a driving schedule (e.g. RandomWalk's
// tick source) rather than for its value.
type IterDatesOp struct {
	step block.Timestamp
	key  string
}

// NewIterDatesOp builds an IterDatesOp advancing by step.
func NewIterDatesOp(step block.Timestamp, key string) *IterDatesOp {
	return &IterDatesOp{step: step, key: key}
}

func (op *IterDatesOp) Key() graph.OpKey { return graph.OpKey{Kind: "iterdates", Params: op.key} }

func (op *IterDatesOp) OpKind() graph.OpKind { return graph.KindSource }

func (op *IterDatesOp) NewState() any { return nil }

func (op *IterDatesOp) Run(_ any, tStart, tEnd block.Timestamp, _ []any) (any, error) {
	bd := block.NewBuilder[block.Timestamp](int((tEnd-tStart)/op.step) + 1)
	first := (tStart / op.step) * op.step
	if first < tStart {
		first += op.step
	}
	for t := first; t < tEnd; t += op.step {
		bd.Push(t, t)
	}
	return bd.Build(), nil
}
