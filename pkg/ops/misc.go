package ops

import (
	"github.com/snakch/timedag/pkg/align"
	"github.com/snakch/timedag/pkg/block"
	"github.com/snakch/timedag/pkg/combine"
	"github.com/snakch/timedag/pkg/graph"
	"github.com/snakch/timedag/pkg/opframe"
	"github.com/snakch/timedag/pkg/tderrors"
)

// firstKnotOp emits only its input's first tick within the evaluated
// interval, then stays silent.
type firstKnotOp[T any] struct{}

type firstKnotState[T any] struct {
	fired bool
}

func (op *firstKnotOp[T]) Key() graph.OpKey { return graph.OpKey{Kind: "first_knot"} }

func (op *firstKnotOp[T]) OpKind() graph.OpKind { return graph.KindUnary }

func (op *firstKnotOp[T]) NewState() any { return &firstKnotState[T]{} }

func (op *firstKnotOp[T]) Run(state any, _, _ block.Timestamp, parents []any) (any, error) {
	st := state.(*firstKnotState[T])
	in := parents[0].(block.Block[T])

	if st.fired || in.IsEmpty() {
		return block.Empty[T](), nil
	}
	st.fired = true
	first := in.First()
	bd := block.NewBuilder[T](1)
	bd.Push(first.Time, first.Value)
	return bd.Build(), nil
}

// FirstKnot emits x's first tick, then never ticks again.
func FirstKnot[T any](x Node[T]) Node[T] {
	return obtain1[T, T](x, &firstKnotOp[T]{})
}

// CountKnots runs a cumulative count of x's ticks, incrementing by one on
// every input tick regardless of x's value.
func CountKnots[T any](x Node[T]) Node[float64] {
	op := opframe.NewInceptionOp(opframe.InceptionOpts[T, combine.SumData[float64], float64]{
		Name:    "count_knots",
		Wrap:    func(T) combine.SumData[float64] { return combine.SumWrap(1.0) },
		Combine: combine.SumCombine(sp()),
		Extract: combine.SumExtract[float64],
		AlwaysTicks: true,
	})
	return obtain1[T, float64](x, op)
}

// addBootstrapped folds a+b under UNION with both sides bootstrapped to
// 0, so the running sum can tick as soon as either side has ticked
// instead of waiting for both to be primed. ActiveCount uses this to
// accumulate "has this input ticked yet" indicators independently.
func addBootstrapped(a, b Node[float64]) Node[float64] {
	op := align.NewBinaryAlignedOp[float64, float64, float64]("add", align.UNION,
		func(x, y float64) float64 { return x + y }, "").WithInitialValues(0, 0)
	return obtain2[float64, float64, float64](a, b, op)
}

// pickOnFirst ticks with value 1 exactly when x's first tick occurs, and
// never again, regardless of x's own value at that tick.
func pickOnFirst(x Node[float64]) Node[float64] {
	fk := FirstKnot(x)
	one := Constant(1.0, "1")
	op := align.NewBinaryAlignedOp[float64, float64, float64]("active_count.pick", align.LEFT,
		func(_, y float64) float64 { return y }, "")
	return obtain2[float64, float64, float64](fk, one, op)
}

// ActiveCount returns, at each tick of the aligned joint schedule, the
// number of inputs that have ticked at least once so far: the running
// UNION sum of "has ticked" indicators over every input (spec.md §4.7).
func ActiveCount(xs ...Node[float64]) (Node[float64], error) {
	if len(xs) == 0 {
		return Node[float64]{}, tderrors.New(tderrors.InvalidArgument, "ops.ActiveCount", "at least one input is required")
	}
	acc := pickOnFirst(xs[0])
	for i := 1; i < len(xs); i++ {
		acc = addBootstrapped(acc, pickOnFirst(xs[i]))
	}
	return acc, nil
}
