package combine

import (
	"math"
	"testing"
)

func foldEMA(alpha float64, xs []float64) EMAData {
	wrap := EMAWrap(alpha)
	combine := EMACombine(alpha)
	d := wrap(xs[0])
	for _, x := range xs[1:] {
		d = combine(d, wrap(x))
	}
	return d
}

func TestEMAOnConstantStreamConvergesToConstant(t *testing.T) {
	xs := make([]float64, 20)
	for i := range xs {
		xs[i] = 7
	}
	got := EMAExtract(foldEMA(0.3, xs))
	if math.Abs(got-7) > 1e-9 {
		t.Fatalf("EMA of a constant stream must equal the constant, got %v", got)
	}
}

func TestEMAExtractBeforeFirstSampleIsZero(t *testing.T) {
	if got := EMAExtract(EMAData{}); got != 0 {
		t.Fatalf("EMAExtract of a fresh accumulator must be 0, got %v", got)
	}
}

func TestAlphaFromSpanBounds(t *testing.T) {
	if a := AlphaFromSpan(1); a != 1 {
		t.Fatalf("span of 1 must give alpha 1, got %v", a)
	}
	if a := AlphaFromSpan(0.5); a != 1 {
		t.Fatalf("span <= 1 must clamp alpha to 1, got %v", a)
	}
	if a := AlphaFromSpan(9); math.Abs(a-0.2) > 1e-9 {
		t.Fatalf("span of 9 must give alpha 2/10 = 0.2, got %v", a)
	}
}

func TestEMADebiasedEstimateOnFirstSampleEqualsSample(t *testing.T) {
	d := foldEMA(0.4, []float64{5})
	if got := EMAExtract(d); math.Abs(got-5) > 1e-9 {
		t.Fatalf("debiased EMA after one sample must equal that sample exactly, got %v", got)
	}
}
