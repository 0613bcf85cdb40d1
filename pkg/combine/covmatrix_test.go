package combine

import (
	"math"
	"testing"
)

func foldCovMatrix(vs []Vector) CovMatrixData {
	d := CovMatrixWrap(vs[0])
	for _, v := range vs[1:] {
		d = CovMatrixCombine(d, CovMatrixWrap(v))
	}
	return d
}

func TestCovMatrixDiagonalAgreesWithVar(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	ys := []float64{3, 3, 5, 6, 5, 7, 8, 10}
	vs := make([]Vector, len(xs))
	for i := range xs {
		vs[i] = Vector{xs[i], ys[i]}
	}
	m := CovMatrixExtractCorrected(foldCovMatrix(vs))
	if m == nil {
		t.Fatalf("expected a matrix, got nil (fault: %v)", foldCovMatrix(vs).Fault())
	}

	wantXX := VarExtractCorrected(foldVar(xs))
	wantYY := VarExtractCorrected(foldVar(ys))
	if math.Abs(m[0][0]-wantXX) > 1e-9 {
		t.Fatalf("cov matrix [0][0] must equal var(x): got %v, want %v", m[0][0], wantXX)
	}
	if math.Abs(m[1][1]-wantYY) > 1e-9 {
		t.Fatalf("cov matrix [1][1] must equal var(y): got %v, want %v", m[1][1], wantYY)
	}

	wantXY := CovExtractCorrected(foldCov(xs, ys))
	if math.Abs(m[0][1]-wantXY) > 1e-9 || math.Abs(m[1][0]-wantXY) > 1e-9 {
		t.Fatalf("cov matrix off-diagonal must equal cov(x,y): got %v/%v, want %v", m[0][1], m[1][0], wantXY)
	}
}

func TestCovMatrixDimensionMismatchIsSticky(t *testing.T) {
	d := CovMatrixCombine(CovMatrixWrap(Vector{1, 2}), CovMatrixWrap(Vector{1, 2, 3}))
	if d.Fault() == nil {
		t.Fatalf("dimension mismatch must set a fault")
	}
	next := CovMatrixCombine(d, CovMatrixWrap(Vector{1, 2}))
	if next.Fault() == nil {
		t.Fatalf("fault must stay sticky through further combines")
	}
	if CovMatrixShouldTick(d) {
		t.Fatalf("a faulted accumulator must never tick")
	}
}
