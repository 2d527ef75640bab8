package synctree

import (
	"github.com/teranos/synctree/errors"
	"github.com/teranos/synctree/itree"
	"github.com/teranos/synctree/node"
	"github.com/teranos/synctree/op"
	"github.com/teranos/synctree/path"
	"github.com/teranos/synctree/view"
)

// ApplyUserOverwrite records an optimistic full-subtree write at p and
// dispatches it, per spec.md section 4.4. An invisible write produces
// no events; it is retained purely for CalcCompleteEventCache.
func (st *SyncTree) ApplyUserOverwrite(p path.Path, n node.Node, writeID uint64, visible bool) []view.Event {
	st.pendingWrites.AddOverwrite(p, n, writeID, visible)
	if !visible {
		return nil
	}
	return st.ApplyOperationToSyncPoints(op.NewOverwrite(op.User, p, n))
}

// ApplyUserMerge records an optimistic per-child write at p and
// dispatches it. User merges are always visible.
func (st *SyncTree) ApplyUserMerge(p path.Path, changedChildren map[string]node.Node, writeID uint64) []view.Event {
	st.pendingWrites.AddMerge(p, changedChildren, writeID)
	return st.ApplyOperationToSyncPoints(op.NewMerge(op.User, p, childrenToTree(changedChildren)))
}

// AckUserWrite clears or reverts a previously applied write, per
// spec.md section 4.4. If removing the write cannot change any
// visible view (it was invisible, or a later overwrite already fully
// covers it), no operation is dispatched and both return values are
// nil.
func (st *SyncTree) AckUserWrite(writeID uint64, revert bool) ([]view.Event, error) {
	write, ok := st.pendingWrites.GetWrite(writeID)
	if !ok {
		return nil, errors.Wrapf(errors.ErrWriteNotFound, "write %d", writeID)
	}

	needsReevaluate := st.pendingWrites.RemoveWrite(writeID)
	if !needsReevaluate {
		return nil, nil
	}

	affected := itree.Empty[bool]()
	if write.IsOverwrite() {
		affected = affected.Set(path.Empty, true)
	} else {
		for key := range write.Children {
			affected = affected.Set(path.New(key), true)
		}
	}

	operation := op.NewAckUserWrite(write.Path, affected, revert)
	return st.ApplyOperationToSyncPoints(operation), nil
}

func childrenToTree(children map[string]node.Node) *itree.Tree[node.Node] {
	tree := itree.Empty[node.Node]()
	for key, n := range children {
		tree = tree.Set(path.New(key), n)
	}
	return tree
}
