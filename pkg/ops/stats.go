package ops

import (
	"fmt"

	"github.com/snakch/timedag/pkg/align"
	"github.com/snakch/timedag/pkg/block"
	"github.com/snakch/timedag/pkg/combine"
	"github.com/snakch/timedag/pkg/opframe"
	"github.com/snakch/timedag/pkg/tderrors"
)

func sp() combine.Float64Space { return combine.Float64Space{} }

// --- Sum ---------------------------------------------------------------

// SumInception accumulates x from the start of evaluation. A constant
// input folds to itself, per spec.md §4.1.
func SumInception(x Node[float64]) Node[float64] {
	if _, ok := constantValue(x); ok {
		return x
	}
	op := opframe.NewInceptionOp(opframe.InceptionOpts[float64, combine.SumData[float64], float64]{
		Name: "sum", Wrap: combine.SumWrap[float64], Combine: combine.SumCombine(sp()),
		Extract: combine.SumExtract[float64], AlwaysTicks: true,
	})
	return obtain1[float64, float64](x, op)
}

// SumWindow accumulates x over the last window ticks.
func SumWindow(x Node[float64], window int) (Node[float64], error) {
	if window < 1 {
		return Node[float64]{}, tderrors.New(tderrors.InvalidArgument, "ops.SumWindow", "window must be >= 1, got %d", window)
	}
	if v, ok := constantValue(x); ok {
		return Constant(v, fmt.Sprintf("sum.window(%v)", v)), nil
	}
	op := opframe.NewWindowOp(opframe.WindowOpts[float64, combine.SumData[float64], float64]{
		Name: "sum", Window: window, Wrap: combine.SumWrap[float64], Combine: combine.SumCombine(sp()),
		Extract: combine.SumExtract[float64], AlwaysTicks: true, KeyExtra: fmt.Sprintf("%d", window),
	})
	return obtain1[float64, float64](x, op), nil
}

// SumTWindow accumulates x over the trailing window duration.
func SumTWindow(x Node[float64], window block.Timestamp) (Node[float64], error) {
	if window <= 0 {
		return Node[float64]{}, tderrors.New(tderrors.InvalidArgument, "ops.SumTWindow", "window must be positive, got %d", window)
	}
	if v, ok := constantValue(x); ok {
		return Constant(v, fmt.Sprintf("sum.twindow(%v)", v)), nil
	}
	op := opframe.NewTWindowOp(opframe.TWindowOpts[float64, combine.SumData[float64], float64]{
		Name: "sum", Window: window, Wrap: combine.SumWrap[float64], Combine: combine.SumCombine(sp()),
		Extract: combine.SumExtract[float64], AlwaysTicks: true, KeyExtra: fmt.Sprintf("%d", window),
	})
	return obtain1[float64, float64](x, op), nil
}

// --- Prod ----------------------------------------------------------------

// ProdInception accumulates x's running product from the start of
// evaluation. A constant input folds to itself, per spec.md §4.1.
func ProdInception(x Node[float64]) Node[float64] {
	if _, ok := constantValue(x); ok {
		return x
	}
	op := opframe.NewInceptionOp(opframe.InceptionOpts[float64, combine.ProdData, float64]{
		Name: "prod", Wrap: combine.ProdWrap, Combine: combine.ProdCombine,
		Extract: combine.ProdExtract, AlwaysTicks: true,
	})
	return obtain1[float64, float64](x, op)
}

// ProdWindow accumulates x's product over the last window ticks.
func ProdWindow(x Node[float64], window int) (Node[float64], error) {
	if window < 1 {
		return Node[float64]{}, tderrors.New(tderrors.InvalidArgument, "ops.ProdWindow", "window must be >= 1, got %d", window)
	}
	if v, ok := constantValue(x); ok {
		return Constant(v, fmt.Sprintf("prod.window(%v)", v)), nil
	}
	op := opframe.NewWindowOp(opframe.WindowOpts[float64, combine.ProdData, float64]{
		Name: "prod", Window: window, Wrap: combine.ProdWrap, Combine: combine.ProdCombine,
		Extract: combine.ProdExtract, AlwaysTicks: true, KeyExtra: fmt.Sprintf("%d", window),
	})
	return obtain1[float64, float64](x, op), nil
}

// ProdTWindow accumulates x's product over the trailing window duration.
func ProdTWindow(x Node[float64], window block.Timestamp) (Node[float64], error) {
	if window <= 0 {
		return Node[float64]{}, tderrors.New(tderrors.InvalidArgument, "ops.ProdTWindow", "window must be positive, got %d", window)
	}
	if v, ok := constantValue(x); ok {
		return Constant(v, fmt.Sprintf("prod.twindow(%v)", v)), nil
	}
	op := opframe.NewTWindowOp(opframe.TWindowOpts[float64, combine.ProdData, float64]{
		Name: "prod", Window: window, Wrap: combine.ProdWrap, Combine: combine.ProdCombine,
		Extract: combine.ProdExtract, AlwaysTicks: true, KeyExtra: fmt.Sprintf("%d", window),
	})
	return obtain1[float64, float64](x, op), nil
}

// --- Mean ----------------------------------------------------------------

// MeanInception runs x's cumulative mean. A constant input folds to
// itself.
func MeanInception(x Node[float64]) Node[float64] {
	if _, ok := constantValue(x); ok {
		return x
	}
	op := opframe.NewInceptionOp(opframe.InceptionOpts[float64, combine.MeanData[float64], float64]{
		Name: "mean", Wrap: combine.MeanWrap[float64], Combine: combine.MeanCombine(sp()),
		Extract: combine.MeanExtract[float64], AlwaysTicks: true,
	})
	return obtain1[float64, float64](x, op)
}

// MeanWindow runs x's mean over the last window ticks.
func MeanWindow(x Node[float64], window int) (Node[float64], error) {
	if window < 1 {
		return Node[float64]{}, tderrors.New(tderrors.InvalidArgument, "ops.MeanWindow", "window must be >= 1, got %d", window)
	}
	if v, ok := constantValue(x); ok {
		return Constant(v, fmt.Sprintf("mean.window(%v)", v)), nil
	}
	op := opframe.NewWindowOp(opframe.WindowOpts[float64, combine.MeanData[float64], float64]{
		Name: "mean", Window: window, Wrap: combine.MeanWrap[float64], Combine: combine.MeanCombine(sp()),
		Extract: combine.MeanExtract[float64], AlwaysTicks: true, KeyExtra: fmt.Sprintf("%d", window),
	})
	return obtain1[float64, float64](x, op), nil
}

// MeanTWindow runs x's mean over the trailing window duration.
func MeanTWindow(x Node[float64], window block.Timestamp) (Node[float64], error) {
	if window <= 0 {
		return Node[float64]{}, tderrors.New(tderrors.InvalidArgument, "ops.MeanTWindow", "window must be positive, got %d", window)
	}
	if v, ok := constantValue(x); ok {
		return Constant(v, fmt.Sprintf("mean.twindow(%v)", v)), nil
	}
	op := opframe.NewTWindowOp(opframe.TWindowOpts[float64, combine.MeanData[float64], float64]{
		Name: "mean", Window: window, Wrap: combine.MeanWrap[float64], Combine: combine.MeanCombine(sp()),
		Extract: combine.MeanExtract[float64], AlwaysTicks: true, KeyExtra: fmt.Sprintf("%d", window),
	})
	return obtain1[float64, float64](x, op), nil
}

// --- Var -----------------------------------------------------------------

func varExtract(corrected bool) func(combine.VarData) float64 {
	if corrected {
		return combine.VarExtractCorrected
	}
	return combine.VarExtractPopulation
}

// VarInception runs x's cumulative variance. A lone constant input is a
// construction error (spec.md §8): there is no meaningful variance of a
// single unchanging value.
func VarInception(x Node[float64], corrected bool) (Node[float64], error) {
	if _, ok := constantValue(x); ok {
		return Node[float64]{}, tderrors.New(tderrors.InvalidArgument, "ops.VarInception", "variance of a constant is undefined")
	}
	op := opframe.NewInceptionOp(opframe.InceptionOpts[float64, combine.VarData, float64]{
		Name: "var", Wrap: combine.VarWrap, Combine: combine.VarCombine,
		Extract: varExtract(corrected), ShouldTick: combine.VarShouldTick,
		KeyExtra: fmt.Sprintf("corrected=%v", corrected),
	})
	return obtain1[float64, float64](x, op), nil
}

// VarWindow runs x's variance over the last window ticks. window must be
// at least 2, since variance needs two observations.
func VarWindow(x Node[float64], window int, corrected bool) (Node[float64], error) {
	if window < 2 {
		return Node[float64]{}, tderrors.New(tderrors.InvalidArgument, "ops.VarWindow", "window must be >= 2, got %d", window)
	}
	if _, ok := constantValue(x); ok {
		return Node[float64]{}, tderrors.New(tderrors.InvalidArgument, "ops.VarWindow", "variance of a constant is undefined")
	}
	op := opframe.NewWindowOp(opframe.WindowOpts[float64, combine.VarData, float64]{
		Name: "var", Window: window, Wrap: combine.VarWrap, Combine: combine.VarCombine,
		Extract: varExtract(corrected), ShouldTick: combine.VarShouldTick,
		KeyExtra: fmt.Sprintf("%d|corrected=%v", window, corrected),
	})
	return obtain1[float64, float64](x, op), nil
}

// VarTWindow runs x's variance over the trailing window duration.
func VarTWindow(x Node[float64], window block.Timestamp, corrected bool) (Node[float64], error) {
	if window <= 0 {
		return Node[float64]{}, tderrors.New(tderrors.InvalidArgument, "ops.VarTWindow", "window must be positive, got %d", window)
	}
	if _, ok := constantValue(x); ok {
		return Node[float64]{}, tderrors.New(tderrors.InvalidArgument, "ops.VarTWindow", "variance of a constant is undefined")
	}
	op := opframe.NewTWindowOp(opframe.TWindowOpts[float64, combine.VarData, float64]{
		Name: "var", Window: window, Wrap: combine.VarWrap, Combine: combine.VarCombine,
		Extract: varExtract(corrected), ShouldTick: combine.VarShouldTick,
		KeyExtra: fmt.Sprintf("%d|corrected=%v", window, corrected),
	})
	return obtain1[float64, float64](x, op), nil
}

// --- Cov -------------------------------------------------------------------

// pairOf builds the joint-sample node feeding every covariance/correlation
// constructor: a UNION/INTERSECT/LEFT-aligned combine.Pair stream over
// x, y (spec.md §4.5's Cov "coaligning x, y once").
func pairOf(x, y Node[float64], alignment align.Alignment) Node[combine.Pair] {
	op := align.NewBinaryAlignedOp[float64, float64, combine.Pair]("pair", alignment,
		func(a, b float64) combine.Pair { return combine.Pair{X: a, Y: b} }, "")
	return obtain2[float64, float64, combine.Pair](x, y, op)
}

func covExtract(corrected bool) func(combine.CovData) float64 {
	if corrected {
		return combine.CovExtractCorrected
	}
	return combine.CovExtractPopulation
}

// CovInception runs the cumulative covariance of x and y, coaligned under
// alignment. Two constant inputs are a construction error.
func CovInception(x, y Node[float64], alignment align.Alignment, corrected bool) (Node[float64], error) {
	if _, okx := constantValue(x); okx {
		if _, oky := constantValue(y); oky {
			return Node[float64]{}, tderrors.New(tderrors.InvalidArgument, "ops.CovInception", "covariance of two constants is undefined")
		}
	}
	pair := pairOf(x, y, alignment)
	op := opframe.NewInceptionOp(opframe.InceptionOpts[combine.Pair, combine.CovData, float64]{
		Name: "cov", Wrap: combine.CovWrap, Combine: combine.CovCombine,
		Extract: covExtract(corrected), ShouldTick: combine.CovShouldTick,
		KeyExtra: fmt.Sprintf("corrected=%v", corrected),
	})
	return obtain1[combine.Pair, float64](pair, op), nil
}

// --- CovMatrix ---------------------------------------------------------

func covMatrixExtract(corrected bool) func(combine.CovMatrixData) [][]float64 {
	if corrected {
		return combine.CovMatrixExtractCorrected
	}
	return combine.CovMatrixExtractPopulation
}

// CovMatrixInception runs the cumulative covariance matrix of a
// vector-valued stream. Fails at evaluation time (not construction time)
// if the vector's dimension drifts across ticks, since dimension is a
// runtime property of the values, not the graph.
func CovMatrixInception(x Node[combine.Vector], corrected bool) Node[[][]float64] {
	op := opframe.NewInceptionOp(opframe.InceptionOpts[combine.Vector, combine.CovMatrixData, [][]float64]{
		Name: "covmatrix", Wrap: combine.CovMatrixWrap, Combine: combine.CovMatrixCombine,
		Extract: covMatrixExtract(corrected), ShouldTick: combine.CovMatrixShouldTick,
		KeyExtra: fmt.Sprintf("corrected=%v", corrected),
	})
	return obtain1[combine.Vector, [][]float64](x, op)
}

// --- EMA -----------------------------------------------------------------

// EMA runs the bias-corrected exponential moving average of x with
// smoothing factor alpha, which must lie in (0, 1). EMA is only offered
// at inception granularity: combine.EMACombine is non-associative, so it
// cannot back a fixed or time window's monoid fold (see pkg/combine/ema.go).
func EMA(x Node[float64], alpha float64) (Node[float64], error) {
	if alpha <= 0 || alpha >= 1 {
		return Node[float64]{}, tderrors.New(tderrors.InvalidArgument, "ops.EMA", "alpha must satisfy 0 < alpha < 1, got %v", alpha)
	}
	if v, ok := constantValue(x); ok {
		return Constant(v, fmt.Sprintf("ema(%v)", v)), nil
	}
	op := opframe.NewInceptionOp(opframe.InceptionOpts[float64, combine.EMAData, float64]{
		Name: "ema", Wrap: combine.EMAWrap(alpha), Combine: combine.EMACombine(alpha),
		Extract: combine.EMAExtract, AlwaysTicks: true,
		KeyExtra: fmt.Sprintf("%v", alpha),
	})
	return obtain1[float64, float64](x, op), nil
}

// EMASpan is EMA parameterised by an effective window span instead of a
// raw smoothing factor, per spec.md §4.5's alpha = 2/(w_eff+1) rule.
func EMASpan(x Node[float64], wEff float64) (Node[float64], error) {
	if wEff <= 1 {
		return Node[float64]{}, tderrors.New(tderrors.InvalidArgument, "ops.EMASpan", "w_eff must be > 1, got %v", wEff)
	}
	return EMA(x, combine.AlphaFromSpan(wEff))
}

// --- Cor -------------------------------------------------------------

// corData composes VarData for each marginal with CovData for the joint
// sample so a single aligned pass over (x, y) backs correlation, per
// spec.md §9's directive that every Cor overload route through one
// cov/var-based definition rather than the source's inconsistent
// per-overload delegation.
type corData struct {
	vx combine.VarData
	vy combine.VarData
	cv combine.CovData
}

func corWrap(p combine.Pair) corData {
	return corData{vx: combine.VarWrap(p.X), vy: combine.VarWrap(p.Y), cv: combine.CovWrap(p)}
}

func corCombine(a, b corData) corData {
	return corData{
		vx: combine.VarCombine(a.vx, b.vx),
		vy: combine.VarCombine(a.vy, b.vy),
		cv: combine.CovCombine(a.cv, b.cv),
	}
}

func corExtract(d corData) float64 {
	return combine.CorExtract(
		func() float64 { return combine.VarExtractPopulation(d.vx) },
		func() float64 { return combine.VarExtractPopulation(d.vy) },
		func() float64 { return combine.CovExtractPopulation(d.cv) },
	)
}

func corShouldTick(d corData) bool { return d.cv.N > 1 }

// CorInception runs the cumulative Pearson correlation of x and y,
// coaligned under alignment. Two constant inputs are a construction
// error, since the underlying variances are undefined.
func CorInception(x, y Node[float64], alignment align.Alignment) (Node[float64], error) {
	if _, okx := constantValue(x); okx {
		if _, oky := constantValue(y); oky {
			return Node[float64]{}, tderrors.New(tderrors.InvalidArgument, "ops.CorInception", "correlation of two constants is undefined")
		}
	}
	pair := pairOf(x, y, alignment)
	op := opframe.NewInceptionOp(opframe.InceptionOpts[combine.Pair, corData, float64]{
		Name: "cor", Wrap: corWrap, Combine: corCombine,
		Extract: corExtract, ShouldTick: corShouldTick,
	})
	return obtain1[combine.Pair, float64](pair, op), nil
}
