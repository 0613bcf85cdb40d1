package combine

import "github.com/snakch/timedag/pkg/tderrors"

// Vector is a dynamic-dimension numeric vector, the input type of
// CovMatrix and the vector-valued sibling of Cov.
type Vector []float64

// CovMatrixData is the vector generalisation of CovData: a running mean
// vector and the (symmetric) running cross-product sum matrix. Once two
// samples of mismatched dimension have been combined, err is set and
// stays set: every subsequent Combine and Extract on this accumulator
// is a no-op that propagates the same fault, since there is no sane
// partial-matrix result to keep folding.
type CovMatrixData struct {
	N  int
	Mu Vector
	C  [][]float64
	err error
}

// Fault reports the sticky shape-mismatch error, if any. Callers that
// fold CovMatrixData (pkg/opframe's Run loops) check this after every
// Wrap/Combine step and abort evaluation on the first non-nil result.
func (d CovMatrixData) Fault() error { return d.err }

// CovMatrixWrap lifts a raw vector sample into a rank-1 accumulator.
func CovMatrixWrap(v Vector) CovMatrixData {
	dim := len(v)
	c := make([][]float64, dim)
	for i := range c {
		c[i] = make([]float64, dim)
	}
	mu := make(Vector, dim)
	copy(mu, v)
	return CovMatrixData{N: 1, Mu: mu, C: c}
}

// CovMatrixCombine folds two CovMatrixData accumulators element-wise,
// applying the same Chan-style cross term as CovCombine to every (i, j)
// cell of the cross-product matrix.
func CovMatrixCombine(a, b CovMatrixData) CovMatrixData {
	if a.err != nil {
		return a
	}
	if b.err != nil {
		return b
	}
	if len(a.Mu) != len(b.Mu) {
		return CovMatrixData{err: tderrors.New(tderrors.ShapeMismatch, "combine.CovMatrixCombine",
			"vector dimension mismatch: %d vs %d", len(a.Mu), len(b.Mu))}
	}

	dim := len(a.Mu)
	nc := a.N + b.N
	wa := float64(a.N) / float64(nc)
	wb := float64(b.N) / float64(nc)

	muC := make(Vector, dim)
	for i := 0; i < dim; i++ {
		muC[i] = a.Mu[i]*wa + b.Mu[i]*wb
	}

	cC := make([][]float64, dim)
	for i := 0; i < dim; i++ {
		cC[i] = make([]float64, dim)
		for j := 0; j < dim; j++ {
			cC[i][j] = a.C[i][j] + b.C[i][j] + float64(b.N)*(b.Mu[i]-a.Mu[i])*(b.Mu[j]-muC[j])
		}
	}

	return CovMatrixData{N: nc, Mu: muC, C: cC}
}

// CovMatrixExtractCorrected returns the sample (n-1 denominator)
// covariance matrix, or nil if a shape fault occurred.
func CovMatrixExtractCorrected(d CovMatrixData) [][]float64 {
	if d.err != nil || d.N < 2 {
		return nil
	}
	return scaleMatrix(d.C, 1/float64(d.N-1))
}

// CovMatrixExtractPopulation returns the population (n denominator)
// covariance matrix, or nil if a shape fault occurred.
func CovMatrixExtractPopulation(d CovMatrixData) [][]float64 {
	if d.err != nil || d.N < 1 {
		return nil
	}
	return scaleMatrix(d.C, 1/float64(d.N))
}

// CovMatrixShouldTick gates emission until at least two joint vector
// observations have been folded in.
func CovMatrixShouldTick(d CovMatrixData) bool { return d.err == nil && d.N > 1 }

func scaleMatrix(c [][]float64, k float64) [][]float64 {
	out := make([][]float64, len(c))
	for i, row := range c {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = v * k
		}
	}
	return out
}
