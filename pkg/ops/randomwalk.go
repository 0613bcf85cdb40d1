package ops

import (
	"fmt"
	"math/rand/v2"

	"github.com/snakch/timedag/pkg/block"
	"github.com/snakch/timedag/pkg/graph"
)

// randomWalkOp is a value-agnostic transform (spec.md §4.5): its output
// does not depend on its driving input's values, only its tick times.
// The PCG seed is frozen into the operator and therefore into its
// dedup key, so two constructions with the same seed and driver are the
// same node; NewState clones the seed into a fresh generator so the
// operator's own seed is never mutated by evaluation (spec.md §5, §9).
type randomWalkOp[T any] struct {
	seed1, seed2 uint64
	step         float64
}

type randomWalkState struct {
	rng *rand.Rand
	cum float64
}

func (op *randomWalkOp[T]) Key() graph.OpKey {
	return graph.OpKey{Kind: "random_walk", Params: fmt.Sprintf("%d,%d,%v", op.seed1, op.seed2, op.step)}
}

func (op *randomWalkOp[T]) OpKind() graph.OpKind { return graph.KindUnary }

func (op *randomWalkOp[T]) NewState() any {
	return &randomWalkState{rng: rand.New(rand.NewPCG(op.seed1, op.seed2))}
}

func (op *randomWalkOp[T]) Run(state any, _, _ block.Timestamp, parents []any) (any, error) {
	st := state.(*randomWalkState)
	in := parents[0].(block.Block[T])

	bd := block.NewBuilder[float64](in.Len())
	for _, t := range in.Times() {
		st.cum += st.rng.NormFloat64() * op.step
		bd.Push(t, st.cum)
	}
	return bd.Build(), nil
}

// RandomWalk drives a cumulative Gaussian random walk off schedule's
// tick times, with per-step standard deviation step. Two RandomWalk
// nodes built from the same schedule, seed and step are the same
// interned node and therefore produce bit-identical output on repeated
// evaluation (spec.md §4.6's determinism requirement).
func RandomWalk[T any](schedule Node[T], seed1, seed2 uint64, step float64) Node[float64] {
	op := &randomWalkOp[T]{seed1: seed1, seed2: seed2, step: step}
	return obtain1[T, float64](schedule, op)
}
