package ops

import (
	"fmt"

	"github.com/snakch/timedag/pkg/block"
	"github.com/snakch/timedag/pkg/graph"
	"github.com/snakch/timedag/pkg/tderrors"
)

// lagOp emits, on each of its input's own ticks, the value observed k
// ticks earlier, once at least k prior ticks have been seen. It is not
// expressible as an associative combiner (pkg/opframe's inception/window
// wrappers), since its output at tick i depends on a fixed offset into
// history rather than a fold over everything seen so far, so it
// implements graph.Operator directly with a small FIFO of pending values.
type lagOp[T any] struct {
	k int
}

type lagState[T any] struct {
	buf []T
}

func (op *lagOp[T]) Key() graph.OpKey {
	return graph.OpKey{Kind: "lag", Params: fmt.Sprintf("%d", op.k)}
}

func (op *lagOp[T]) OpKind() graph.OpKind { return graph.KindUnary }

func (op *lagOp[T]) NewState() any { return &lagState[T]{buf: make([]T, 0, op.k)} }

func (op *lagOp[T]) Run(state any, _, _ block.Timestamp, parents []any) (any, error) {
	st := state.(*lagState[T])
	in := parents[0].(block.Block[T])

	times := in.Times()
	values := in.Values()
	bd := block.NewBuilder[T](in.Len())

	for i, t := range times {
		if len(st.buf) >= op.k {
			bd.Push(t, st.buf[0])
			st.buf = st.buf[1:]
		}
		st.buf = append(st.buf, values[i])
	}
	return bd.Build(), nil
}

// Lag returns x's value from k ticks ago, on x's own tick schedule,
// starting from x's (k+1)'th tick. A constant input folds through
// unchanged (spec.md §8's S5).
func Lag[T any](x Node[T], k int) (Node[T], error) {
	if k < 1 {
		return Node[T]{}, tderrors.New(tderrors.InvalidArgument, "ops.Lag", "k must be >= 1, got %d", k)
	}
	if _, ok := constantValue(x); ok {
		return x, nil
	}
	return obtain1[T, T](x, &lagOp[T]{k: k}), nil
}
