package opframe

import (
	"github.com/snakch/timedag/pkg/block"
	"github.com/snakch/timedag/pkg/graph"
)

// FixedWindowAssoc is a bounded-count associative accumulator: it keeps
// the last `window` elements and folds them under an associative Combine
// in O(1) amortised time per Update, using the classic two-stack queue
// trick (push onto a "back" stack that carries a running prefix fold;
// transfer to a "front" stack, recomputing a running suffix fold, only
// when a pop is needed and the front is empty).
type FixedWindowAssoc[Data any] struct {
	window  int
	combine func(a, b Data) Data
	front   []assocEntry[Data]
	back    []assocEntry[Data]
}

type assocEntry[Data any] struct {
	val Data
	agg Data
}

// NewFixedWindowAssoc creates a window retaining at most `window` elements.
func NewFixedWindowAssoc[Data any](window int, combine func(a, b Data) Data) *FixedWindowAssoc[Data] {
	return &FixedWindowAssoc[Data]{window: window, combine: combine}
}

// Len returns the number of currently retained elements.
func (w *FixedWindowAssoc[Data]) Len() int { return len(w.front) + len(w.back) }

// Full reports whether the window has reached its configured count.
func (w *FixedWindowAssoc[Data]) Full() bool { return w.Len() >= w.window }

// Update pushes a new element, evicting the oldest one first if the
// window is already full.
func (w *FixedWindowAssoc[Data]) Update(d Data) {
	if w.window > 0 && w.Len() >= w.window {
		w.popFront()
	}
	w.pushBack(d)
}

// Value returns the fold of all currently retained elements, oldest
// first.
func (w *FixedWindowAssoc[Data]) Value() Data {
	switch {
	case len(w.front) == 0:
		return w.back[len(w.back)-1].agg
	case len(w.back) == 0:
		return w.front[len(w.front)-1].agg
	default:
		return w.combine(w.front[len(w.front)-1].agg, w.back[len(w.back)-1].agg)
	}
}

func (w *FixedWindowAssoc[Data]) pushBack(d Data) {
	agg := d
	if n := len(w.back); n > 0 {
		agg = w.combine(w.back[n-1].agg, d)
	}
	w.back = append(w.back, assocEntry[Data]{val: d, agg: agg})
}

func (w *FixedWindowAssoc[Data]) popFront() {
	if len(w.front) == 0 {
		w.transfer()
	}
	if len(w.front) == 0 {
		return
	}
	w.front = w.front[:len(w.front)-1]
}

func (w *FixedWindowAssoc[Data]) transfer() {
	for len(w.back) > 0 {
		n := len(w.back)
		e := w.back[n-1]
		w.back = w.back[:n-1]

		agg := e.val
		if m := len(w.front); m > 0 {
			agg = w.combine(e.val, w.front[m-1].agg)
		}
		w.front = append(w.front, assocEntry[Data]{val: e.val, agg: agg})
	}
}

// WindowOpts configures a fixed-count window operator.
type WindowOpts[Input, Data, Value any] struct {
	Name    string
	Window  int
	Wrap    func(Input) Data
	Combine func(a, b Data) Data
	Extract func(Data) Value

	AlwaysTicks bool
	EmitEarly   bool
	Unfiltered  bool
	ShouldTick  func(Data) bool

	KeyExtra string
}

type windowState[Data any] struct {
	w *FixedWindowAssoc[Data]
}

// WindowOp is the graph.Operator produced by WindowOpts.
type WindowOp[Input, Data, Value any] struct {
	opts WindowOpts[Input, Data, Value]
}

// NewWindowOp builds a fixed-count window operator from its options.
func NewWindowOp[Input, Data, Value any](opts WindowOpts[Input, Data, Value]) *WindowOp[Input, Data, Value] {
	return &WindowOp[Input, Data, Value]{opts: opts}
}

func (op *WindowOp[Input, Data, Value]) Key() graph.OpKey {
	return graph.OpKey{Kind: "window." + op.opts.Name, Params: op.opts.KeyExtra}
}

func (op *WindowOp[Input, Data, Value]) OpKind() graph.OpKind { return graph.KindWindow }

func (op *WindowOp[Input, Data, Value]) NewState() any {
	return &windowState[Data]{w: NewFixedWindowAssoc[Data](op.opts.Window, op.opts.Combine)}
}

func (op *WindowOp[Input, Data, Value]) Run(state any, _, _ block.Timestamp, parents []any) (any, error) {
	st := state.(*windowState[Data])
	in := parents[0].(block.Block[Input])

	times := in.Times()
	values := in.Values()
	bd := block.NewBuilder[Value](in.Len())

	for i, t := range times {
		st.w.Update(op.opts.Wrap(values[i]))
		if st.w.Len() > 0 {
			if err := faultOf(st.w.Value()); err != nil {
				return nil, err
			}
		}
		if op.shouldEmit(st.w) {
			bd.Push(t, op.opts.Extract(st.w.Value()))
		}
	}
	return bd.Build(), nil
}

func (op *WindowOp[Input, Data, Value]) shouldEmit(w *FixedWindowAssoc[Data]) bool {
	if !(op.opts.EmitEarly || w.Full()) {
		return false
	}
	if op.opts.AlwaysTicks || op.opts.Unfiltered || op.opts.ShouldTick == nil {
		return true
	}
	return op.opts.ShouldTick(w.Value())
}
