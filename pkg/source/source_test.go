package source

import (
	"testing"

	"github.com/snakch/timedag/pkg/block"
)

func run[T any](op interface {
	NewState() any
	Run(any, block.Timestamp, block.Timestamp, []any) (any, error)
}, tStart, tEnd block.Timestamp) block.Block[T] {
	out, err := op.Run(op.NewState(), tStart, tEnd, nil)
	if err != nil {
		panic(err)
	}
	return out.(block.Block[T])
}

func TestConstantOpTicksOnceAtStart(t *testing.T) {
	op := NewConstantOp(3.5, "c")
	b := run[float64](op, 10, 100)
	if b.Len() != 1 {
		t.Fatalf("expected exactly one knot, got %d", b.Len())
	}
	if b.At(0).Time != 10 || b.At(0).Value != 3.5 {
		t.Fatalf("unexpected knot: %+v", b.At(0))
	}
}

func TestBlockOpFiltersToWindow(t *testing.T) {
	knots := []block.Knot[float64]{
		{Time: 1, Value: 1}, {Time: 5, Value: 5}, {Time: 9, Value: 9}, {Time: 20, Value: 20},
	}
	op := NewBlockOp(knots, "b")
	b := run[float64](op, 5, 10)
	if b.Len() != 2 {
		t.Fatalf("expected 2 knots in [5,10), got %d: %v", b.Len(), b)
	}
	if b.At(0).Time != 5 || b.At(1).Time != 9 {
		t.Fatalf("unexpected filtered knots: %v", b)
	}
}

func TestPulseOpTicksAtEveryPeriod(t *testing.T) {
	op := NewPulseOp[float64](3, 1.0, "p")
	b := run[float64](op, 1, 10)
	want := []block.Timestamp{3, 6, 9}
	if b.Len() != len(want) {
		t.Fatalf("expected %d ticks, got %d: %v", len(want), b.Len(), b)
	}
	for i, w := range want {
		if b.At(i).Time != w || b.At(i).Value != 1.0 {
			t.Fatalf("tick %d: got %+v, want time %d value 1.0", i, b.At(i), w)
		}
	}
}

func TestIterDatesOpIsSelfValued(t *testing.T) {
	op := NewIterDatesOp(5, "d")
	b := run[block.Timestamp](op, 1, 21)
	want := []block.Timestamp{5, 10, 15, 20}
	if b.Len() != len(want) {
		t.Fatalf("expected %d ticks, got %d: %v", len(want), b.Len(), b)
	}
	for i, w := range want {
		k := b.At(i)
		if k.Time != w || k.Value != w {
			t.Fatalf("tick %d: got %+v, want self-valued tick at %d", i, k, w)
		}
	}
}

func TestConstantOpKeyIdentity(t *testing.T) {
	a := NewConstantOp(1.0, "same")
	b := NewConstantOp(1.0, "same")
	if a.Key() != b.Key() {
		t.Fatalf("identical (value, key) pairs must produce identical OpKeys")
	}
}
