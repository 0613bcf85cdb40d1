package combine

import (
	"math"
	"testing"

	"github.com/montanaflynn/stats"
)

func foldVar(xs []float64) VarData {
	d := VarWrap(xs[0])
	for _, x := range xs[1:] {
		d = VarCombine(d, VarWrap(x))
	}
	return d
}

func TestVarAgreesWithNaiveOneShot(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	got := VarExtractCorrected(foldVar(xs))
	want, err := stats.SampleVariance(stats.Float64Data(xs))
	if err != nil {
		t.Fatalf("stats.SampleVariance: %v", err)
	}
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("corrected variance mismatch: got %v, want %v", got, want)
	}

	gotPop := VarExtractPopulation(foldVar(xs))
	wantPop, err := stats.PopulationVariance(stats.Float64Data(xs))
	if err != nil {
		t.Fatalf("stats.PopulationVariance: %v", err)
	}
	if math.Abs(gotPop-wantPop) > 1e-9 {
		t.Fatalf("population variance mismatch: got %v, want %v", gotPop, wantPop)
	}
}

func TestVarCombineAssociative(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5, 6}
	left := VarCombine(VarCombine(VarCombine(VarWrap(xs[0]), VarWrap(xs[1])), VarWrap(xs[2])), VarCombine(VarWrap(xs[3]), VarCombine(VarWrap(xs[4]), VarWrap(xs[5]))))
	right := foldVar(xs)
	if math.Abs(left.S-right.S) > 1e-9 || left.N != right.N {
		t.Fatalf("Var fold order changed the result: %+v vs %+v", left, right)
	}
}

func TestVarShouldTickGatesOnSecondSample(t *testing.T) {
	d := VarWrap(1)
	if VarShouldTick(d) {
		t.Fatalf("a single observation must not tick")
	}
	d = VarCombine(d, VarWrap(2))
	if !VarShouldTick(d) {
		t.Fatalf("two observations must tick")
	}
}
