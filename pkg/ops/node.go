// Package ops is the user-facing node constructor surface (spec.md
// §4.1, §4.6, §4.7): arithmetic, statistics, alignment, lag, throttle,
// coalign and the derived counting/sampling constructors. Every
// constructor here routes through graph.IdentityMap.Obtain so that
// structurally-equal calls return the same node, and folds constant
// inputs at construction time rather than building an evaluation-time
// graph for them.
package ops

import (
	"github.com/snakch/timedag/pkg/align"
	"github.com/snakch/timedag/pkg/graph"
	"github.com/snakch/timedag/pkg/source"
)

// Node is a type-safe handle onto a *graph.Node known to evaluate to a
// block.Block[T]. graph.Node itself is type-erased because a single DAG
// mixes nodes of different value types; Node closes over the concrete
// type parameter that erasure would otherwise lose, giving every
// constructor in this package (and pkg/engine's Evaluate) a typed
// signature.
type Node[T any] struct {
	raw *graph.Node
}

// Raw returns the underlying type-erased graph node.
func (n Node[T]) Raw() *graph.Node { return n.raw }

func wrapNode[T any](raw *graph.Node) Node[T] { return Node[T]{raw: raw} }

// im is the identity map every constructor in this package obtains
// nodes from: always graph.Default. This package offers no constructor
// variant that takes a scoped map.
var im = graph.Default

// obtain interns a node for op over parents, unwrapping Node[T] handles
// into their raw *graph.Node parents.
func obtain1[A, T any](a Node[A], op graph.Operator) Node[T] {
	return wrapNode[T](im.Obtain([]*graph.Node{a.raw}, op))
}

func obtain2[A, B, T any](a Node[A], b Node[B], op graph.Operator) Node[T] {
	return wrapNode[T](im.Obtain([]*graph.Node{a.raw, b.raw}, op))
}

func obtainSource[T any](op graph.Operator) Node[T] {
	return wrapNode[T](im.Obtain(nil, op))
}

// constantValue extracts the fixed value backing a Node[T] if and only
// if it wraps a *source.ConstantOp[T], letting arithmetic/statistics
// constructors fold constant propagation (spec.md §4.1, §8) purely from
// the node's operator without evaluating anything.
func constantValue[T any](n Node[T]) (T, bool) {
	if c, ok := n.raw.Op().(*source.ConstantOp[T]); ok {
		return c.Value(), true
	}
	var zero T
	return zero, false
}

// Constant returns a Node ticking value once, at t_start.
func Constant[T any](value T, key string) Node[T] {
	return obtainSource[T](source.NewConstantOp(value, key))
}

// FromSourceOp interns op (a parentless graph.Operator, e.g. one of
// pkg/source's constructors) as a Node[T]. It is the entry point by
// which pkg/source's leaf operators join a graph built through this
// package.
func FromSourceOp[T any](op graph.Operator) Node[T] {
	return obtainSource[T](op)
}

// defaultAlignment names UNION as the default alignment. The binary
// arithmetic constructors in this package take their alignment as an
// explicit argument and do not consult this constant.
const defaultAlignment = align.UNION
