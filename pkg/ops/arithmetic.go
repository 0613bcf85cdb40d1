package ops

import (
	"fmt"

	"github.com/snakch/timedag/pkg/align"
)

// binaryFloat builds (or interns) the aligned binary node for a scalar
// arithmetic operator, folding immediately when both operands are
// constants (spec.md §4.1, §8's constant-propagation invariant).
func binaryFloat(name string, alignment align.Alignment, x, y Node[float64], combine func(a, b float64) float64) Node[float64] {
	if cx, okx := constantValue(x); okx {
		if cy, oky := constantValue(y); oky {
			v := combine(cx, cy)
			return Constant(v, fmt.Sprintf("%s(%v)", name, v))
		}
	}
	op := align.NewBinaryAlignedOp[float64, float64, float64](name, alignment, combine, "")
	return obtain2[float64, float64, float64](x, y, op)
}

// Add returns x+y under alignment.
func Add(x, y Node[float64], alignment align.Alignment) Node[float64] {
	return binaryFloat("add", alignment, x, y, func(a, b float64) float64 { return a + b })
}

// Sub returns x-y under alignment.
func Sub(x, y Node[float64], alignment align.Alignment) Node[float64] {
	return binaryFloat("sub", alignment, x, y, func(a, b float64) float64 { return a - b })
}

// Mul returns x*y under alignment.
func Mul(x, y Node[float64], alignment align.Alignment) Node[float64] {
	return binaryFloat("mul", alignment, x, y, func(a, b float64) float64 { return a * b })
}

// Div returns x/y under alignment.
func Div(x, y Node[float64], alignment align.Alignment) Node[float64] {
	return binaryFloat("div", alignment, x, y, func(a, b float64) float64 { return a / b })
}

// AddScalar lifts k to a constant node before adding, per spec.md §6's
// "scalar + node combinations, scalars lifted to constant nodes".
func AddScalar(x Node[float64], k float64, alignment align.Alignment) Node[float64] {
	return Add(x, Constant(k, fmt.Sprintf("%v", k)), alignment)
}

// SubScalar lifts k to a constant node before subtracting.
func SubScalar(x Node[float64], k float64, alignment align.Alignment) Node[float64] {
	return Sub(x, Constant(k, fmt.Sprintf("%v", k)), alignment)
}

// MulScalar lifts k to a constant node before multiplying.
func MulScalar(x Node[float64], k float64, alignment align.Alignment) Node[float64] {
	return Mul(x, Constant(k, fmt.Sprintf("%v", k)), alignment)
}

// DivScalar lifts k to a constant node before dividing.
func DivScalar(x Node[float64], k float64, alignment align.Alignment) Node[float64] {
	return Div(x, Constant(k, fmt.Sprintf("%v", k)), alignment)
}
