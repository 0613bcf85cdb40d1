package graph

import (
	"testing"

	"github.com/snakch/timedag/pkg/block"
)

type fakeOp struct {
	kind testKind
}

type testKind struct {
	name   string
	params string
}

func (op *fakeOp) Key() OpKey             { return OpKey{Kind: op.kind.name, Params: op.kind.params} }
func (op *fakeOp) OpKind() OpKind         { return KindSource }
func (op *fakeOp) NewState() any          { return nil }
func (op *fakeOp) Run(any, block.Timestamp, block.Timestamp, []any) (any, error) {
	return block.Empty[float64](), nil
}

func TestObtainInternsStructurallyEqualCalls(t *testing.T) {
	im := NewIdentityMap()
	a := im.Obtain(nil, &fakeOp{kind: testKind{name: "const", params: "1"}})
	b := im.Obtain(nil, &fakeOp{kind: testKind{name: "const", params: "1"}})
	if a != b {
		t.Fatalf("two constructions with equal (parents, key) must intern to the same node")
	}
	if im.Size() != 1 {
		t.Fatalf("expected exactly one interned node, got %d", im.Size())
	}
}

func TestObtainDistinguishesDifferentKeys(t *testing.T) {
	im := NewIdentityMap()
	a := im.Obtain(nil, &fakeOp{kind: testKind{name: "const", params: "1"}})
	b := im.Obtain(nil, &fakeOp{kind: testKind{name: "const", params: "2"}})
	if a == b {
		t.Fatalf("different operator params must not intern to the same node")
	}
}

func TestObtainDistinguishesDifferentParents(t *testing.T) {
	im := NewIdentityMap()
	leaf1 := im.Obtain(nil, &fakeOp{kind: testKind{name: "leaf", params: "1"}})
	leaf2 := im.Obtain(nil, &fakeOp{kind: testKind{name: "leaf", params: "2"}})

	a := im.Obtain([]*Node{leaf1}, &fakeOp{kind: testKind{name: "unary", params: ""}})
	b := im.Obtain([]*Node{leaf2}, &fakeOp{kind: testKind{name: "unary", params: ""}})
	if a == b {
		t.Fatalf("nodes built over different parents must not intern to the same node")
	}
}

func TestTopoOrderRespectsParentPrecedence(t *testing.T) {
	im := NewIdentityMap()
	leaf := im.Obtain(nil, &fakeOp{kind: testKind{name: "leaf", params: ""}})
	mid := im.Obtain([]*Node{leaf}, &fakeOp{kind: testKind{name: "mid", params: ""}})
	top := im.Obtain([]*Node{mid, leaf}, &fakeOp{kind: testKind{name: "top", params: ""}})

	order := TopoOrder(top)
	pos := make(map[uint64]int, len(order))
	for i, n := range order {
		pos[n.ID()] = i
	}
	if pos[leaf.ID()] >= pos[mid.ID()] {
		t.Fatalf("leaf must precede mid in topological order")
	}
	if pos[mid.ID()] >= pos[top.ID()] {
		t.Fatalf("mid must precede top in topological order")
	}
	if order[len(order)-1] != top {
		t.Fatalf("root must be last in topological order")
	}
}

func TestAncestorsIncludesRoot(t *testing.T) {
	im := NewIdentityMap()
	leaf := im.Obtain(nil, &fakeOp{kind: testKind{name: "leaf", params: ""}})
	top := im.Obtain([]*Node{leaf}, &fakeOp{kind: testKind{name: "top", params: ""}})

	anc := Ancestors(top)
	if len(anc) != 2 {
		t.Fatalf("expected 2 ancestors (leaf + root), got %d", len(anc))
	}
}
