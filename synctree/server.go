package synctree

import (
	"github.com/teranos/synctree/errors"
	"github.com/teranos/synctree/node"
	"github.com/teranos/synctree/op"
	"github.com/teranos/synctree/path"
	"github.com/teranos/synctree/query"
	"github.com/teranos/synctree/view"
)

// ApplyServerOverwrite dispatches a server-sourced full-subtree
// update, per spec.md section 4.5.
func (st *SyncTree) ApplyServerOverwrite(p path.Path, n node.Node) []view.Event {
	return st.ApplyOperationToSyncPoints(op.NewOverwrite(op.Server, p, n))
}

// ApplyServerMerge dispatches a server-sourced per-child update.
func (st *SyncTree) ApplyServerMerge(p path.Path, changedChildren map[string]node.Node) []view.Event {
	return st.ApplyOperationToSyncPoints(op.NewMerge(op.Server, p, childrenToTree(changedChildren)))
}

// ApplyListenComplete marks the default subscription at p as having
// delivered all of its initial data.
func (st *SyncTree) ApplyListenComplete(p path.Path) []view.Event {
	return st.ApplyOperationToSyncPoints(op.NewListenComplete(op.Server, p))
}

// ApplyTaggedQueryOverwrite dispatches a full-subtree update addressed
// to one specific filtered subscription, identified by tag.
func (st *SyncTree) ApplyTaggedQueryOverwrite(p path.Path, n node.Node, tag uint64) []view.Event {
	return st.applyTaggedOperation(tag, p, func(relPath path.Path) op.Operation {
		return op.NewOverwrite(op.ServerTaggedQuery(tag), relPath, n)
	})
}

// ApplyTaggedQueryMerge dispatches a per-child update addressed to one
// specific filtered subscription.
func (st *SyncTree) ApplyTaggedQueryMerge(p path.Path, changedChildren map[string]node.Node, tag uint64) []view.Event {
	changeTree := childrenToTree(changedChildren)
	return st.applyTaggedOperation(tag, p, func(relPath path.Path) op.Operation {
		return op.NewMerge(op.ServerTaggedQuery(tag), relPath, changeTree)
	})
}

// ApplyTaggedListenComplete marks a specific filtered subscription as
// having delivered all of its initial data.
func (st *SyncTree) ApplyTaggedListenComplete(p path.Path, tag uint64) []view.Event {
	return st.applyTaggedOperation(tag, p, func(relPath path.Path) op.Operation {
		return op.NewListenComplete(op.ServerTaggedQuery(tag), relPath)
	})
}

// applyTaggedOperation resolves tag to its (queryPath, queryId),
// per spec.md section 4.5, and applies build's operation directly at
// the Sync Point for queryPath, bypassing the general per-path
// dispatch — a tagged update is addressed to exactly one filtered
// view and must not bleed into others at or near that path. An
// unknown tag (the query was removed between the server's send and
// this call arriving) is a benign drop: return nil, unchanged state.
func (st *SyncTree) applyTaggedOperation(tag uint64, p path.Path, build func(relPath path.Path) op.Operation) []view.Event {
	queryKey, ok := st.tagToQuery[tag]
	if !ok {
		return nil
	}

	queryPath, queryID, err := query.ParseQueryKey(queryKey)
	if err != nil {
		panic(errors.Wrap(err, "synctree: corrupt tag registry"))
	}
	if !queryPath.Contains(p) {
		return nil
	}

	spPtrPtr := st.syncPointTree.Get(queryPath)
	if spPtrPtr == nil {
		panic(errors.AssertionFailedf("synctree: sync point missing for tracked tag %d", tag))
	}
	sp := *spPtrPtr

	operation := build(p.RelativeTo(queryPath))
	writes := st.pendingWrites.ChildWrites(queryPath)
	return sp.ApplyOperation(operation, writes, nil, queryID)
}
