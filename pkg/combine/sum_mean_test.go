package combine

import (
	"math"
	"testing"

	"github.com/montanaflynn/stats"
)

func TestSumCombineOverFloat64Space(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	sp := Float64Space{}
	combine := SumCombine(sp)
	d := SumWrap(xs[0])
	for _, x := range xs[1:] {
		d = combine(d, SumWrap(x))
	}
	want, _ := stats.Sum(stats.Float64Data(xs))
	if got := SumExtract(d); math.Abs(got-want) > 1e-9 {
		t.Fatalf("sum mismatch: got %v, want %v", got, want)
	}
}

func TestMeanCombineOverFloat64Space(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	sp := Float64Space{}
	combine := MeanCombine(sp)
	d := MeanWrap(xs[0])
	for _, x := range xs[1:] {
		d = combine(d, MeanWrap(x))
	}
	want, err := stats.Mean(stats.Float64Data(xs))
	if err != nil {
		t.Fatalf("stats.Mean: %v", err)
	}
	if got := MeanExtract(d); math.Abs(got-want) > 1e-9 {
		t.Fatalf("mean mismatch: got %v, want %v", got, want)
	}
}

func TestProdCombine(t *testing.T) {
	d := ProdCombine(ProdCombine(ProdWrap(2), ProdWrap(3)), ProdWrap(4))
	if got := ProdExtract(d); got != 24 {
		t.Fatalf("product mismatch: got %v, want 24", got)
	}
}
