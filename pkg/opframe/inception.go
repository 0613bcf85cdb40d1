// Package opframe implements the generic operator wrappers described in
// spec.md §4.5: inception accumulates from the start of the interval,
// while the fixed-count and time-duration windows in window.go/twindow.go
// bound history. All three turn a pure, associative per-event combiner
// over a Data wrapper into a graph.Operator, so every statistic in
// pkg/combine is written once and reused in all three settings.
package opframe

import (
	"github.com/snakch/timedag/pkg/block"
	"github.com/snakch/timedag/pkg/graph"
)

// InceptionOpts configures an inception operator, mirroring the
// options-struct-literal shape used throughout this codebase for
// operator configuration (see pkg/metrics's promauto.*Opts usage).
type InceptionOpts[Input, Data, Value any] struct {
	// Name identifies the constructor for the dedup key ("sum", "mean", ...).
	Name string
	// Wrap lifts one raw input event into the per-event Data wrapper.
	Wrap func(Input) Data
	// Combine folds two Data wrappers associatively.
	Combine func(a, b Data) Data
	// Extract maps accumulated Data to the output value.
	Extract func(Data) Value

	// AlwaysTicks: every input tick produces an output tick.
	AlwaysTicks bool
	// Unfiltered: ShouldTick is ignored, every tick (once initialised) emits.
	Unfiltered bool
	// ShouldTick is the per-step emission predicate when not unfiltered.
	ShouldTick func(Data) bool

	// KeyExtra is folded verbatim into the operator's dedup key so two
	// distinctly-parameterised instances of the same Name never collide.
	KeyExtra string
}

type inceptionState[Data any] struct {
	initialized bool
	data        Data
}

// InceptionOp is the graph.Operator produced by InceptionOpts.
type InceptionOp[Input, Data, Value any] struct {
	opts InceptionOpts[Input, Data, Value]
}

// NewInceptionOp builds an inception operator from its options.
func NewInceptionOp[Input, Data, Value any](opts InceptionOpts[Input, Data, Value]) *InceptionOp[Input, Data, Value] {
	return &InceptionOp[Input, Data, Value]{opts: opts}
}

func (op *InceptionOp[Input, Data, Value]) Key() graph.OpKey {
	return graph.OpKey{Kind: "inception." + op.opts.Name, Params: op.opts.KeyExtra}
}

func (op *InceptionOp[Input, Data, Value]) OpKind() graph.OpKind { return graph.KindInception }

func (op *InceptionOp[Input, Data, Value]) NewState() any {
	return &inceptionState[Data]{}
}

func (op *InceptionOp[Input, Data, Value]) Run(state any, _, _ block.Timestamp, parents []any) (any, error) {
	st := state.(*inceptionState[Data])
	in := parents[0].(block.Block[Input])

	times := in.Times()
	values := in.Values()
	bd := block.NewBuilder[Value](in.Len())

	for i, t := range times {
		wrapped := op.opts.Wrap(values[i])
		if !st.initialized {
			st.data = wrapped
			st.initialized = true
		} else {
			st.data = op.opts.Combine(st.data, wrapped)
		}
		if err := faultOf(st.data); err != nil {
			return nil, err
		}
		if op.shouldEmit(st.data) {
			bd.Push(t, op.opts.Extract(st.data))
		}
	}
	return bd.Build(), nil
}

func (op *InceptionOp[Input, Data, Value]) shouldEmit(d Data) bool {
	if op.opts.AlwaysTicks {
		return true
	}
	if op.opts.Unfiltered || op.opts.ShouldTick == nil {
		return true
	}
	return op.opts.ShouldTick(d)
}
