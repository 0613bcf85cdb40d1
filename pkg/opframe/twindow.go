package opframe

import (
	"github.com/snakch/timedag/pkg/block"
	"github.com/snakch/timedag/pkg/graph"
)

// TimeWindowAssoc is the time-duration analogue of FixedWindowAssoc: it
// retains every element whose knot time is within `window` of the most
// recently pushed knot time, evicting in monotonic arrival order using
// the same two-stack fold. Full sticks once the retained span has ever
// reached `window`, mirroring the fixed-count window's "full forever
// after the Nth element" behaviour.
type TimeWindowAssoc[Data any] struct {
	window   block.Timestamp
	combine  func(a, b Data) Data
	front    []timeEntry[Data]
	back     []timeEntry[Data]
	everFull bool
}

type timeEntry[Data any] struct {
	t   block.Timestamp
	val Data
	agg Data
}

// NewTimeWindowAssoc creates a window retaining knots within `window` of
// the latest arrival.
func NewTimeWindowAssoc[Data any](window block.Timestamp, combine func(a, b Data) Data) *TimeWindowAssoc[Data] {
	return &TimeWindowAssoc[Data]{window: window, combine: combine}
}

// Len returns the number of currently retained elements.
func (w *TimeWindowAssoc[Data]) Len() int { return len(w.front) + len(w.back) }

// Full reports whether the retained span has ever reached the window.
func (w *TimeWindowAssoc[Data]) Full() bool { return w.everFull }

// Update pushes a new element observed at time t, then evicts anything
// that has fallen outside the window relative to t.
func (w *TimeWindowAssoc[Data]) Update(t block.Timestamp, d Data) {
	if ot, ok := w.oldestTime(); ok && t-ot >= w.window {
		w.everFull = true
	}

	w.pushBack(t, d)

	for {
		ot, ok := w.oldestTime()
		if !ok || t-ot < w.window {
			break
		}
		w.popFront()
	}
}

// Value returns the fold of all currently retained elements, oldest
// first.
func (w *TimeWindowAssoc[Data]) Value() Data {
	switch {
	case len(w.front) == 0:
		return w.back[len(w.back)-1].agg
	case len(w.back) == 0:
		return w.front[len(w.front)-1].agg
	default:
		return w.combine(w.front[len(w.front)-1].agg, w.back[len(w.back)-1].agg)
	}
}

func (w *TimeWindowAssoc[Data]) oldestTime() (block.Timestamp, bool) {
	if len(w.front) > 0 {
		return w.front[len(w.front)-1].t, true
	}
	if len(w.back) > 0 {
		return w.back[0].t, true
	}
	return 0, false
}

func (w *TimeWindowAssoc[Data]) pushBack(t block.Timestamp, d Data) {
	agg := d
	if n := len(w.back); n > 0 {
		agg = w.combine(w.back[n-1].agg, d)
	}
	w.back = append(w.back, timeEntry[Data]{t: t, val: d, agg: agg})
}

func (w *TimeWindowAssoc[Data]) popFront() {
	if len(w.front) == 0 {
		w.transfer()
	}
	if len(w.front) == 0 {
		return
	}
	w.front = w.front[:len(w.front)-1]
}

func (w *TimeWindowAssoc[Data]) transfer() {
	for len(w.back) > 0 {
		n := len(w.back)
		e := w.back[n-1]
		w.back = w.back[:n-1]

		agg := e.val
		if m := len(w.front); m > 0 {
			agg = w.combine(e.val, w.front[m-1].agg)
		}
		w.front = append(w.front, timeEntry[Data]{t: e.t, val: e.val, agg: agg})
	}
}

// TWindowOpts configures a time-duration window operator.
type TWindowOpts[Input, Data, Value any] struct {
	Name    string
	Window  block.Timestamp
	Wrap    func(Input) Data
	Combine func(a, b Data) Data
	Extract func(Data) Value

	AlwaysTicks bool
	EmitEarly   bool
	Unfiltered  bool
	ShouldTick  func(Data) bool

	KeyExtra string
}

type twindowState[Data any] struct {
	w *TimeWindowAssoc[Data]
}

// TWindowOp is the graph.Operator produced by TWindowOpts.
type TWindowOp[Input, Data, Value any] struct {
	opts TWindowOpts[Input, Data, Value]
}

// NewTWindowOp builds a time-duration window operator from its options.
func NewTWindowOp[Input, Data, Value any](opts TWindowOpts[Input, Data, Value]) *TWindowOp[Input, Data, Value] {
	return &TWindowOp[Input, Data, Value]{opts: opts}
}

func (op *TWindowOp[Input, Data, Value]) Key() graph.OpKey {
	return graph.OpKey{Kind: "twindow." + op.opts.Name, Params: op.opts.KeyExtra}
}

func (op *TWindowOp[Input, Data, Value]) OpKind() graph.OpKind { return graph.KindTWindow }

func (op *TWindowOp[Input, Data, Value]) NewState() any {
	return &twindowState[Data]{w: NewTimeWindowAssoc[Data](op.opts.Window, op.opts.Combine)}
}

func (op *TWindowOp[Input, Data, Value]) Run(state any, _, _ block.Timestamp, parents []any) (any, error) {
	st := state.(*twindowState[Data])
	in := parents[0].(block.Block[Input])

	times := in.Times()
	values := in.Values()
	bd := block.NewBuilder[Value](in.Len())

	for i, t := range times {
		st.w.Update(t, op.opts.Wrap(values[i]))
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

func (op *TWindowOp[Input, Data, Value]) shouldEmit(w *TimeWindowAssoc[Data]) bool {
	if !(op.opts.EmitEarly || w.Full()) {
		return false
	}
	if op.opts.AlwaysTicks || op.opts.Unfiltered || op.opts.ShouldTick == nil {
		return true
	}
	return op.opts.ShouldTick(w.Value())
}
