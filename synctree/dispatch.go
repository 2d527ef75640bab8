package synctree

import (
	"github.com/teranos/synctree/itree"
	"github.com/teranos/synctree/logger"
	"github.com/teranos/synctree/node"
	"github.com/teranos/synctree/op"
	"github.com/teranos/synctree/path"
	"github.com/teranos/synctree/view"
	"github.com/teranos/synctree/writetree"
)

// ApplyOperationToSyncPoints routes operation through the Sync Point
// tree per spec.md section 4.2 and returns the concatenated events.
// Events are produced depth-first: a descendant's events for a given
// path always precede an ancestor's, since ancestors may shadow what
// their descendants see.
func (st *SyncTree) ApplyOperationToSyncPoints(operation op.Operation) []view.Event {
	if logger.Enabled(logger.OutputDispatch) {
		st.log.Debugw("dispatching operation",
			logger.FieldOperation, int(operation.Kind()),
			logger.FieldPath, operation.Path().String(),
		)
	}

	writes := st.pendingWrites.ChildWrites(path.Empty)
	events := applyToSyncPointTree(st.syncPointTree, operation, writes, nil)

	if logger.Enabled(logger.OutputDispatch) {
		st.log.Debugw("dispatch complete", logger.FieldEventCount, len(events))
	}
	return events
}

func applyToSyncPointTree(tree *itree.Tree[*SyncPoint], operation op.Operation, writes *writetree.WriteTreeRef, serverCache *node.Node) []view.Event {
	if serverCache == nil {
		if spPtr := tree.Value(); spPtr != nil {
			serverCache = (*spPtr).CompleteServerCache()
		}
	}

	var events []view.Event
	descend := func(key string, child *itree.Tree[*SyncPoint]) {
		childOp, ok := operation.OperationForChild(key)
		if !ok {
			return
		}
		events = append(events, applyToSyncPointTree(child, childOp, writes.Child(key), projectServerCacheChild(serverCache, key))...)
	}

	if p := operation.Path(); !p.IsEmpty() {
		key := p.Front()
		descend(key, tree.Children()[key])
	} else {
		tree.ForEachChild(descend)
	}

	if spPtr := tree.Value(); spPtr != nil {
		events = append(events, (*spPtr).ApplyOperation(operation, writes, serverCache, "")...)
	}
	return events
}

func projectServerCacheChild(serverCache *node.Node, key string) *node.Node {
	if serverCache == nil {
		return nil
	}
	child := (*serverCache).GetImmediateChild(key)
	return &child
}
