package align

import (
	"testing"

	"github.com/snakch/timedag/pkg/block"
)

func knots(pairs ...[2]float64) block.Block[float64] {
	times := make([]block.Timestamp, len(pairs))
	values := make([]float64, len(pairs))
	for i, p := range pairs {
		times[i] = block.Timestamp(p[0])
		values[i] = p[1]
	}
	b, err := block.New(times, values)
	if err != nil {
		panic(err)
	}
	return b
}

func sum(a, b float64) float64 { return a + b }

func TestMergeUnionEmitsOnEitherSideTickOnceBothPrimed(t *testing.T) {
	x := knots([2]float64{1, 1}, [2]float64{3, 3})
	y := knots([2]float64{2, 10}, [2]float64{3, 30})

	got := Merge(NewState[float64, float64](), x, y, UNION, sum)
	want := []block.Knot[float64]{{Time: 2, Value: 11}, {Time: 3, Value: 33}}
	assertEqual(t, got, want)
}

func TestMergeIntersectOnlyEmitsOnSimultaneousTicks(t *testing.T) {
	x := knots([2]float64{1, 1}, [2]float64{2, 2}, [2]float64{3, 3})
	y := knots([2]float64{2, 10}, [2]float64{3, 30})

	got := Merge(NewState[float64, float64](), x, y, INTERSECT, sum)
	want := []block.Knot[float64]{{Time: 2, Value: 12}, {Time: 3, Value: 33}}
	assertEqual(t, got, want)
}

func TestMergeLeftEmitsOnlyOnXTicksOnceYHasSeen(t *testing.T) {
	x := knots([2]float64{1, 1}, [2]float64{2, 2}, [2]float64{4, 4})
	y := knots([2]float64{2, 10}, [2]float64{3, 30})

	got := Merge(NewState[float64, float64](), x, y, LEFT, sum)
	want := []block.Knot[float64]{{Time: 2, Value: 12}, {Time: 4, Value: 34}}
	assertEqual(t, got, want)
}

func TestMergeBootstrapAllowsUnionToEmitBeforeBothSidesTick(t *testing.T) {
	x := knots([2]float64{1, 1})
	y := knots([2]float64{5, 5})

	st := NewState[float64, float64]()
	st.Bootstrap(0, 0)
	got := Merge(st, x, y, UNION, sum)
	want := []block.Knot[float64]{{Time: 1, Value: 1}, {Time: 5, Value: 6}}
	assertEqual(t, got, want)
}

func TestBinaryAlignedOpRunsThroughGraphOperatorInterface(t *testing.T) {
	op := NewBinaryAlignedOp[float64, float64, float64]("test.add", UNION, sum, "")
	x := knots([2]float64{1, 1}, [2]float64{2, 2})
	y := knots([2]float64{1, 10}, [2]float64{2, 20})

	st := op.NewState()
	out, err := op.Run(st, 0, 10, []any{x, y})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := out.(block.Block[float64])
	want := []block.Knot[float64]{{Time: 1, Value: 11}, {Time: 2, Value: 22}}
	assertEqual(t, got, want)
}

func assertEqual(t *testing.T, got block.Block[float64], want []block.Knot[float64]) {
	t.Helper()
	if got.Len() != len(want) {
		t.Fatalf("length mismatch: got %d (%v), want %d (%v)", got.Len(), got, len(want), want)
	}
	for i, k := range want {
		if got.At(i).Time != k.Time || got.At(i).Value != k.Value {
			t.Fatalf("knot %d: got %+v, want %+v", i, got.At(i), k)
		}
	}
}
