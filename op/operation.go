// Package op implements Operation: a tagged description of a mutation
// applied to the sync tree, per spec.md section 3/4.2/9.
//
// Operation is expressed as a closed sum via an interface with four
// unexported concrete types rather than a class hierarchy, per the
// design note in spec.md section 9 ("there are four variants and they
// are permanently closed"). This mirrors the closed, tagged shape of
// the teacher's protocol.MsgType message kinds (sync/protocol.go), but
// as a real Go sum type instead of a string enum, since each variant
// here carries different payload fields.
package op

import (
	"github.com/teranos/synctree/itree"
	"github.com/teranos/synctree/node"
	"github.com/teranos/synctree/path"
)

// Kind discriminates the four Operation variants.
type Kind int

const (
	KindOverwrite Kind = iota
	KindMerge
	KindAckUserWrite
	KindListenComplete
)

// Operation is a tagged description of a mutation: Overwrite, Merge,
// AckUserWrite, or ListenComplete, each carrying its own Source.
type Operation interface {
	// Kind reports which of the four variants this is.
	Kind() Kind
	// Source reports where this operation came from.
	Source() Source
	// Path is the location, relative to wherever this Operation is
	// currently being applied, that the operation affects.
	Path() path.Path
	// OperationForChild returns the path-shifted operation relevant to
	// the named child, or ok=false if that child is outside this
	// operation's effect.
	OperationForChild(key string) (op Operation, ok bool)
	// ApplyToNode structurally applies this operation to n, at n's own
	// root — callers are responsible for having already routed the
	// operation down to the location it targets (Path() reflects
	// however much of that routing remains to be done). AckUserWrite
	// and ListenComplete never touch server data and return n
	// unchanged; only Overwrite and Merge mutate.
	ApplyToNode(n node.Node) node.Node
}

// --- Overwrite ---

type overwriteOp struct {
	source Source
	path   path.Path
	node   node.Node
}

// NewOverwrite builds an Operation that replaces the subtree at path
// with n.
func NewOverwrite(source Source, p path.Path, n node.Node) Operation {
	return &overwriteOp{source: source, path: p, node: n}
}

func (o *overwriteOp) Kind() Kind         { return KindOverwrite }
func (o *overwriteOp) Source() Source     { return o.source }
func (o *overwriteOp) Path() path.Path    { return o.path }
func (o *overwriteOp) Node() node.Node    { return o.node }

func (o *overwriteOp) OperationForChild(key string) (Operation, bool) {
	if !o.path.IsEmpty() {
		if o.path.Front() != key {
			return nil, false
		}
		return &overwriteOp{source: o.source, path: o.path.PopFront(), node: o.node}, true
	}
	return &overwriteOp{source: o.source, path: path.Empty, node: o.node.GetImmediateChild(key)}, true
}

func (o *overwriteOp) ApplyToNode(n node.Node) node.Node {
	return node.SetAtPath(n, o.path, o.node)
}

// --- Merge ---

type mergeOp struct {
	source     Source
	path       path.Path
	changeTree *itree.Tree[node.Node]
}

// NewMerge builds an Operation that replaces the descendants
// enumerated in changeTree, leaving everything else untouched.
func NewMerge(source Source, p path.Path, changeTree *itree.Tree[node.Node]) Operation {
	return &mergeOp{source: source, path: p, changeTree: changeTree}
}

func (o *mergeOp) Kind() Kind                        { return KindMerge }
func (o *mergeOp) Source() Source                    { return o.source }
func (o *mergeOp) Path() path.Path                   { return o.path }
func (o *mergeOp) ChangeTree() *itree.Tree[node.Node] { return o.changeTree }

func (o *mergeOp) OperationForChild(key string) (Operation, bool) {
	if !o.path.IsEmpty() {
		if o.path.Front() != key {
			return nil, false
		}
		return &mergeOp{source: o.source, path: o.path.PopFront(), changeTree: o.changeTree}, true
	}

	sub := o.changeTree.Subtree(path.New(key))
	if sub.IsEmpty() {
		return nil, false
	}
	if v := sub.Value(); v != nil {
		return &overwriteOp{source: o.source, path: path.Empty, node: *v}, true
	}
	return &mergeOp{source: o.source, path: path.Empty, changeTree: sub}, true
}

func (o *mergeOp) ApplyToNode(n node.Node) node.Node {
	return applyChangeTree(n, o.path, o.changeTree)
}

// applyChangeTree splices every leaf of ct into n, rooted at "at". A
// value at a change-tree node means that entire subtree is replaced,
// so its children (which the closed-sum invariant guarantees are
// empty in that case) are never visited.
func applyChangeTree(n node.Node, at path.Path, ct *itree.Tree[node.Node]) node.Node {
	if n == nil {
		n = node.EMPTY
	}
	if ct == nil {
		return n
	}
	if v := ct.Value(); v != nil {
		return node.SetAtPath(n, at, *v)
	}
	for key, child := range ct.Children() {
		n = applyChangeTree(n, at.Child(key), child)
	}
	return n
}

// --- AckUserWrite ---

type ackUserWriteOp struct {
	path         path.Path
	affectedTree *itree.Tree[bool]
	revert       bool
}

// NewAckUserWrite builds an Operation that clears or reverts a
// previously applied local write covering affectedTree, relative to
// path.
func NewAckUserWrite(p path.Path, affectedTree *itree.Tree[bool], revert bool) Operation {
	return &ackUserWriteOp{path: p, affectedTree: affectedTree, revert: revert}
}

func (o *ackUserWriteOp) Kind() Kind                     { return KindAckUserWrite }
func (o *ackUserWriteOp) Source() Source                 { return User }
func (o *ackUserWriteOp) Path() path.Path                { return o.path }
func (o *ackUserWriteOp) AffectedTree() *itree.Tree[bool] { return o.affectedTree }
func (o *ackUserWriteOp) Revert() bool                   { return o.revert }

func (o *ackUserWriteOp) OperationForChild(key string) (Operation, bool) {
	if !o.path.IsEmpty() {
		if o.path.Front() != key {
			return nil, false
		}
		return &ackUserWriteOp{path: o.path.PopFront(), affectedTree: o.affectedTree, revert: o.revert}, true
	}

	if v := o.affectedTree.Value(); v != nil {
		return o, true
	}

	sub := o.affectedTree.Subtree(path.New(key))
	if sub.IsEmpty() {
		return nil, false
	}
	return &ackUserWriteOp{path: path.Empty, affectedTree: sub, revert: o.revert}, true
}

func (o *ackUserWriteOp) ApplyToNode(n node.Node) node.Node {
	return n
}

// --- ListenComplete ---

type listenCompleteOp struct {
	source Source
	path   path.Path
}

// NewListenComplete builds an Operation recording that the server has
// delivered all data for the subscribed query at path.
func NewListenComplete(source Source, p path.Path) Operation {
	return &listenCompleteOp{source: source, path: p}
}

func (o *listenCompleteOp) Kind() Kind      { return KindListenComplete }
func (o *listenCompleteOp) Source() Source  { return o.source }
func (o *listenCompleteOp) Path() path.Path { return o.path }

func (o *listenCompleteOp) OperationForChild(key string) (Operation, bool) {
	if !o.path.IsEmpty() {
		if o.path.Front() != key {
			return nil, false
		}
		return &listenCompleteOp{source: o.source, path: o.path.PopFront()}, true
	}
	return &listenCompleteOp{source: o.source, path: path.Empty}, true
}

func (o *listenCompleteOp) ApplyToNode(n node.Node) node.Node {
	return n
}
