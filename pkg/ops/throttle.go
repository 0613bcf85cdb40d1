package ops

import (
	"fmt"

	"github.com/snakch/timedag/pkg/block"
	"github.com/snakch/timedag/pkg/graph"
	"github.com/snakch/timedag/pkg/tderrors"
)

// throttleOp emits every n'th tick of its input (positions 0, n, 2n, ...
// on the input's own schedule).
type throttleOp[T any] struct {
	n int
}

type throttleState struct {
	seen int
}

func (op *throttleOp[T]) Key() graph.OpKey {
	return graph.OpKey{Kind: "throttle", Params: fmt.Sprintf("%d", op.n)}
}

func (op *throttleOp[T]) OpKind() graph.OpKind { return graph.KindUnary }

func (op *throttleOp[T]) NewState() any { return &throttleState{} }

func (op *throttleOp[T]) Run(state any, _, _ block.Timestamp, parents []any) (any, error) {
	st := state.(*throttleState)
	in := parents[0].(block.Block[T])

	times := in.Times()
	values := in.Values()
	bd := block.NewBuilder[T](in.Len()/op.n + 1)

	for i, t := range times {
		if st.seen%op.n == 0 {
			bd.Push(t, values[i])
		}
		st.seen++
	}
	return bd.Build(), nil
}

// Throttle emits x's knot at positions 0, n, 2n, ... on x's own tick
// schedule. n == 1 is the identity transform.
func Throttle[T any](x Node[T], n int) (Node[T], error) {
	if n < 1 {
		return Node[T]{}, tderrors.New(tderrors.InvalidArgument, "ops.Throttle", "n must be >= 1, got %d", n)
	}
	if n == 1 {
		return x, nil
	}
	return obtain1[T, T](x, &throttleOp[T]{n: n}), nil
}
