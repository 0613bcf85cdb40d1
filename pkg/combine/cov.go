package combine

import "math"

// Pair is the input type covariance operators wrap: an (x, y) sample.
type Pair struct {
	X float64
	Y float64
}

// CovData is the pairwise generalisation of VarData: {n, μx, μy, c}.
type CovData struct {
	N  int
	Mx float64
	My float64
	C  float64
}

// CovWrap lifts a raw (x, y) sample into CovData.
func CovWrap(p Pair) CovData { return CovData{N: 1, Mx: p.X, My: p.Y, C: 0} }

// CovCombine folds two CovData accumulators. The cross term is applied
// against b's mean drift relative to a's premerge and postmerge means,
// which keeps the fold numerically stable and reduces to VarCombine's
// s_c update when x and y coincide.
func CovCombine(a, b CovData) CovData {
	nc := a.N + b.N
	wa := float64(a.N) / float64(nc)
	wb := float64(b.N) / float64(nc)
	mxC := a.Mx*wa + b.Mx*wb
	myC := a.My*wa + b.My*wb
	cC := a.C + b.C + float64(b.N)*(b.Mx-a.Mx)*(b.My-myC)
	return CovData{N: nc, Mx: mxC, My: myC, C: cC}
}

// CovExtractCorrected returns the sample (n-1 denominator) covariance.
func CovExtractCorrected(d CovData) float64 {
	if d.N < 2 {
		return 0
	}
	return d.C / float64(d.N-1)
}

// CovExtractPopulation returns the population (n denominator) covariance.
func CovExtractPopulation(d CovData) float64 {
	if d.N < 1 {
		return 0
	}
	return d.C / float64(d.N)
}

// CovShouldTick gates emission until at least two joint observations have
// been folded in.
func CovShouldTick(d CovData) bool { return d.N > 1 }

// CorExtract derives Pearson correlation strictly from the covariance and
// the two marginal variances of the same joint samples, so a single
// implementation of Cov/Var backs every Cor result rather than a separate
// formula. Returns 0 if either marginal variance is 0.
func CorExtract(varX, varY, cov func() float64) float64 {
	sx := varX()
	sy := varY()
	if sx <= 0 || sy <= 0 {
		return 0
	}
	return cov() / (math.Sqrt(sx) * math.Sqrt(sy))
}
