// Package graph implements the DAG vertex type, the polymorphic operator
// carrier, and the process-wide identity map that structurally deduplicates
// nodes: two constructor calls with identical parents (by identity) and an
// equal operator key must return the same *Node.
//
// Node payloads are type-erased ("any") because a single DAG mixes nodes
// of different value types (scalars, vectors). The typed surface lives one
// layer up, in pkg/ops, whose constructors close over a concrete Go type
// parameter and hand back a *Node wrapping an Operator that knows how to
// box and unbox that type.
package graph

import (
	"strconv"
	"strings"
	"sync"

	"github.com/snakch/timedag/pkg/block"
)

// OpKind classifies an Operator's shape for scheduling/diagnostics. It
// does not affect dedup (that is Key()'s job) or evaluation (that is
// Run()'s job).
type OpKind int

const (
	KindSource OpKind = iota
	KindUnary
	KindBinaryAligned
	KindInception
	KindWindow
	KindTWindow
)

// OpKey identifies an operator for structural deduplication. Two
// operators with equal keys are considered interchangeable. Kind should
// be a stable constructor name ("sum.inception", "lag", "constant", ...)
// and Params a canonical, comparable encoding of the operator's
// parameters (e.g. "16" for a window size, or a frozen RNG seed).
type OpKey struct {
	Kind   string
	Params string
}

// Operator is the polymorphic carrier of node behaviour. Implementations
// live in pkg/opframe, pkg/source and pkg/ops.
type Operator interface {
	// Key returns this operator's deduplication key. Must be pure and
	// depend only on immutable operator configuration.
	Key() OpKey

	// OpKind reports the operator's structural class.
	OpKind() OpKind

	// NewState creates fresh per-evaluation mutable state for a node
	// using this operator. Called once per evaluate() call per node.
	NewState() any

	// Run executes this node for [tStart, tEnd) given the already
	// materialised parent blocks (each a boxed block.Block[P] for the
	// parent's value type, in parent order) and this node's state. It
	// returns a boxed block.Block[T] for this node's value type.
	Run(state any, tStart, tEnd block.Timestamp, parents []any) (any, error)
}

// Node is a DAG vertex: an ordered list of parents plus an operator.
// Nodes are immutable after creation and are always obtained through an
// IdentityMap, never constructed directly, so that structural equality
// implies reference equality.
type Node struct {
	id      uint64
	parents []*Node
	op      Operator
}

// ID returns a process-unique, insertion-ordered identifier. It has no
// meaning beyond identity-map bookkeeping and stable ordering of debug
// output.
func (n *Node) ID() uint64 { return n.id }

// Parents returns the node's parents in construction order.
func (n *Node) Parents() []*Node { return n.parents }

// Op returns the node's operator.
func (n *Node) Op() Operator { return n.op }

// IdentityMap is a process-wide bijection between (parents, operator-key)
// tuples and interned *Node references. Lookup may proceed concurrently;
// insertion is exclusive.
type IdentityMap struct {
	mu     sync.RWMutex
	table  map[identityKey]*Node
	nextID uint64
}

type identityKey struct {
	parents string
	op      OpKey
}

// NewIdentityMap creates an empty identity map. Most callers should use
// the process-wide Default; a scoped map is useful for test isolation.
func NewIdentityMap() *IdentityMap {
	return &IdentityMap{table: make(map[identityKey]*Node)}
}

// Default is the process-wide identity map; every pkg/ops constructor
// obtains its nodes from it. A map from NewIdentityMap is only reachable
// by callers that use this package directly, as this package's own tests
// do.
var Default = NewIdentityMap()

func encodeParents(parents []*Node) string {
	if len(parents) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, p := range parents {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(p.id, 36))
	}
	return sb.String()
}

// Obtain interns and returns the node for (parents, op), computing the
// key from the parents' identities (not their content — they are already
// interned) and the operator's key. It creates and inserts a new node
// only if no equal one exists.
func (im *IdentityMap) Obtain(parents []*Node, op Operator) *Node {
	key := identityKey{parents: encodeParents(parents), op: op.Key()}

	im.mu.RLock()
	if n, ok := im.table[key]; ok {
		im.mu.RUnlock()
		return n
	}
	im.mu.RUnlock()

	im.mu.Lock()
	defer im.mu.Unlock()
	if n, ok := im.table[key]; ok {
		return n
	}

	im.nextID++
	own := append([]*Node(nil), parents...)
	n := &Node{id: im.nextID, parents: own, op: op}
	im.table[key] = n
	return n
}

// Size returns the number of interned nodes. Intended for diagnostics
// and tests.
func (im *IdentityMap) Size() int {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return len(im.table)
}

// Ancestors returns the set of root's ancestors including root itself,
// with no ordering guarantee.
func Ancestors(root *Node) []*Node {
	seen := make(map[uint64]*Node)
	var walk func(n *Node)
	walk = func(n *Node) {
		if _, ok := seen[n.id]; ok {
			return
		}
		seen[n.id] = n
		for _, p := range n.parents {
			walk(p)
		}
	}
	walk(root)
	out := make([]*Node, 0, len(seen))
	for _, n := range seen {
		out = append(out, n)
	}
	return out
}

// TopoOrder returns root's ancestors (including root) ordered so that
// every node's parents precede it. Since nodes are immutable and built
// bottom-up, the DAG is cycle-free by construction (spec.md §9); this is
// a plain post-order DFS.
func TopoOrder(root *Node) []*Node {
	visited := make(map[uint64]bool)
	order := make([]*Node, 0)
	var visit func(n *Node)
	visit = func(n *Node) {
		if visited[n.id] {
			return
		}
		visited[n.id] = true
		for _, p := range n.parents {
			visit(p)
		}
		order = append(order, n)
	}
	visit(root)
	return order
}
