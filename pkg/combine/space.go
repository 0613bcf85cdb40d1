// Package combine implements the numerically-stable, associative
// per-event data wrappers described in spec.md §4.5/§9: Sum, Mean, Var
// (generalised Welford), Cov, CovMatrix and EMA. Every combiner is a
// plain (Wrap, Combine, Extract) triple over a Data type, so the same
// code drives inception, fixed-count windows and time windows via
// pkg/opframe. EMA is the exception: its Combine is not associative, so
// it only drives inception (see ema.go).
package combine

// Space is the minimal numeric-vector-space capability spec.md §9 asks
// combiners to be abstracted over, so Sum/Mean work identically whether T
// is a scalar or a fixed-length vector.
type Space[T any] interface {
	Zero() T
	Add(a, b T) T
	Sub(a, b T) T
	Scale(a T, k float64) T
}

// Float64Space is the Space[float64] used by every scalar statistic.
type Float64Space struct{}

func (Float64Space) Zero() float64                  { return 0 }
func (Float64Space) Add(a, b float64) float64       { return a + b }
func (Float64Space) Sub(a, b float64) float64       { return a - b }
func (Float64Space) Scale(a float64, k float64) float64 { return a * k }
