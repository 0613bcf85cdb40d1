package ops

import (
	"sort"

	"github.com/snakch/timedag/pkg/align"
	"github.com/snakch/timedag/pkg/block"
	"github.com/snakch/timedag/pkg/graph"
	"github.com/snakch/timedag/pkg/tderrors"
)

// unitOp forgets its input's value, retaining only its tick schedule.
// coalign uses it to build a joint-schedule node whose value type carries
// no information the identity map needs to distinguish.
type unitOp[T any] struct{}

func (op *unitOp[T]) Key() graph.OpKey { return graph.OpKey{Kind: "coalign.unit"} }

func (op *unitOp[T]) OpKind() graph.OpKind { return graph.KindUnary }

func (op *unitOp[T]) NewState() any { return nil }

func (op *unitOp[T]) Run(_ any, _, _ block.Timestamp, parents []any) (any, error) {
	in := parents[0].(block.Block[T])
	bd := block.NewBuilder[struct{}](in.Len())
	for _, t := range in.Times() {
		bd.Push(t, struct{}{})
	}
	return bd.Build(), nil
}

func toSchedule[T any](x Node[T]) Node[struct{}] {
	return obtain1[T, struct{}](x, &unitOp[T]{})
}

// Coalign aligns every input in xs onto one joint tick schedule built by
// repeatedly folding pairwise under alignment (spec.md §4.7), returning
// each input realigned onto that schedule in its original argument
// order. len(xs) == 1 returns the sole input unchanged. Inputs are
// canonicalised by stable node ID before the joint schedule is folded
// (except under LEFT, where the first input stays fixed) so that
// repeated Coalign calls over the same input set, in any order, build
// structurally identical schedule nodes and are shared by the identity
// map.
func Coalign(xs []Node[float64], alignment align.Alignment) ([]Node[float64], error) {
	if len(xs) == 0 {
		return nil, tderrors.New(tderrors.InvalidArgument, "ops.Coalign", "at least one input is required")
	}
	if len(xs) == 1 {
		return xs, nil
	}

	order := make([]int, len(xs))
	for i := range order {
		order[i] = i
	}
	if alignment == align.LEFT {
		rest := order[1:]
		sort.Slice(rest, func(i, j int) bool { return xs[rest[i]].Raw().ID() < xs[rest[j]].Raw().ID() })
	} else {
		sort.Slice(order, func(i, j int) bool { return xs[order[i]].Raw().ID() < xs[order[j]].Raw().ID() })
	}

	acc := toSchedule(xs[order[0]])
	for _, i := range order[1:] {
		op := align.NewBinaryAlignedOp[struct{}, float64, struct{}]("coalign.schedule", alignment,
			func(struct{}, float64) struct{} { return struct{}{} }, "")
		acc = obtain2[struct{}, float64, struct{}](acc, xs[i], op)
	}

	out := make([]Node[float64], len(xs))
	pick := align.NewBinaryAlignedOp[struct{}, float64, float64]("coalign.pick", align.LEFT,
		func(_ struct{}, y float64) float64 { return y }, "")
	for i, x := range xs {
		out[i] = obtain2[struct{}, float64, float64](acc, x, pick)
	}
	return out, nil
}
