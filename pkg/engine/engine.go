// Package engine implements spec.md §4.6's single-batch evaluator: a
// synchronous topological walk over a node's ancestors that threads
// per-node mutable state through exactly one Run call per node.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/snakch/timedag/pkg/block"
	"github.com/snakch/timedag/pkg/graph"
	"github.com/snakch/timedag/pkg/metrics"
	"github.com/snakch/timedag/pkg/ops"
	"github.com/snakch/timedag/pkg/tderrors"
)

// EvaluationState maps a node's ID to the mutable scratch space its
// operator created for this evaluate() call. It is created fresh per
// call and discarded when evaluation returns (spec.md §3's
// EvaluationState lifetime).
type EvaluationState struct {
	byNode map[uint64]any
}

func newEvaluationState() *EvaluationState {
	return &EvaluationState{byNode: make(map[uint64]any)}
}

// evaluateRaw walks root's ancestors in topological order, running each
// node's operator exactly once over [tStart, tEnd) and returning root's
// boxed output block.
func evaluateRaw(root *graph.Node, tStart, tEnd block.Timestamp, logger *slog.Logger) (any, error) {
	if tEnd < tStart {
		return nil, tderrors.New(tderrors.InvalidArgument, "engine.Evaluate", "tEnd (%d) must be >= tStart (%d)", tEnd, tStart)
	}

	order := graph.TopoOrder(root)
	state := newEvaluationState()
	results := make(map[uint64]any, len(order))

	for _, n := range order {
		op := n.Op()
		kind := op.Key().Kind

		parentBlocks := make([]any, len(n.Parents()))
		for i, p := range n.Parents() {
			parentBlocks[i] = results[p.ID()]
		}

		st, ok := state.byNode[n.ID()]
		if !ok {
			st = op.NewState()
			state.byNode[n.ID()] = st
		}

		start := time.Now()
		out, err := op.Run(st, tStart, tEnd, parentBlocks)
		elapsed := time.Since(start)

		metrics.NodesEvaluated.WithLabelValues(kind).Inc()
		metrics.EvaluationLatency.WithLabelValues(kind).Observe(elapsed.Seconds())

		if err != nil {
			metrics.EvaluationErrors.WithLabelValues(kind).Inc()
			logger.Error("node evaluation failed", "node_id", n.ID(), "op_kind", kind, "error", err)
			return nil, fmt.Errorf("evaluate node %d (%s): %w", n.ID(), kind, err)
		}

		if counted, ok := out.(interface{ Len() int }); ok {
			metrics.TicksEmitted.WithLabelValues(kind).Add(float64(counted.Len()))
		}

		results[n.ID()] = out
	}

	return results[root.ID()], nil
}

// Evaluate runs the graph rooted at node over [tStart, tEnd) and returns
// its typed output block.
func Evaluate[T any](node ops.Node[T], tStart, tEnd block.Timestamp) (block.Block[T], error) {
	logger := slog.Default().With("component", "engine")
	out, err := evaluateRaw(node.Raw(), tStart, tEnd, logger)
	if err != nil {
		return block.Empty[T](), err
	}
	b, ok := out.(block.Block[T])
	if !ok {
		return block.Empty[T](), tderrors.New(tderrors.InternalInvariantViolation, "engine.Evaluate",
			"root node produced unexpected boxed type %T", out)
	}
	return b, nil
}
