package block

import "testing"

func TestNewRejectsNonMonotonicTimes(t *testing.T) {
	if _, err := New([]Timestamp{1, 3, 2}, []float64{1, 2, 3}); err == nil {
		t.Fatalf("non-strictly-increasing times must be rejected")
	}
	if _, err := New([]Timestamp{1, 1}, []float64{1, 2}); err == nil {
		t.Fatalf("repeated times must be rejected")
	}
}

func TestNewRejectsLengthMismatch(t *testing.T) {
	if _, err := New([]Timestamp{1, 2}, []float64{1}); err == nil {
		t.Fatalf("mismatched times/values lengths must be rejected")
	}
}

func TestNewAcceptsStrictlyIncreasing(t *testing.T) {
	b, err := New([]Timestamp{1, 2, 5}, []float64{10, 20, 30})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if b.Len() != 3 || b.First().Time != 1 || b.Last().Time != 5 {
		t.Fatalf("unexpected block: %v", b)
	}
}

func TestEmptyBlockIsEmpty(t *testing.T) {
	if !Empty[float64]().IsEmpty() {
		t.Fatalf("Empty() must report IsEmpty")
	}
}

func TestBuilderRoundTrip(t *testing.T) {
	bd := NewBuilder[float64](2)
	bd.Push(1, 10)
	bd.Push(2, 20)
	b, err := bd.BuildChecked()
	if err != nil {
		t.Fatalf("BuildChecked: %v", err)
	}
	if b.Len() != 2 || b.At(1).Value != 20 {
		t.Fatalf("unexpected builder output: %v", b)
	}
}

func TestBlockEqual(t *testing.T) {
	a, _ := New([]Timestamp{1, 2}, []float64{1, 2})
	b, _ := New([]Timestamp{1, 2}, []float64{1, 2})
	c, _ := New([]Timestamp{1, 2}, []float64{1, 3})
	eq := func(x, y float64) bool { return x == y }
	if !a.Equal(b, eq) {
		t.Fatalf("identical blocks must be equal")
	}
	if a.Equal(c, eq) {
		t.Fatalf("blocks differing in value must not be equal")
	}
}

func TestMaybe(t *testing.T) {
	none := None[float64]()
	if none.IsSome() {
		t.Fatalf("None must not be Some")
	}
	some := Some(3.5)
	v, ok := some.Get()
	if !ok || v != 3.5 {
		t.Fatalf("Some(3.5).Get() = %v, %v", v, ok)
	}
	if some.MustGet() != 3.5 {
		t.Fatalf("MustGet mismatch")
	}
}
