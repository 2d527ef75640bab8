package synctree

import (
	"github.com/teranos/synctree/node"
	"github.com/teranos/synctree/path"
)

// CalcCompleteEventCache computes the best-known complete view of the
// data at p by locating the nearest ancestor Sync Point with a
// complete server cache and overlaying every applicable pending
// write, per spec.md section 4.9. It returns nil if neither an
// ancestor cache nor any relevant write exists.
func (st *SyncTree) CalcCompleteEventCache(p path.Path, writeIDsToExclude map[uint64]bool) *node.Node {
	var serverCache *node.Node
	if spPtrPtr := st.syncPointTree.Get(p); spPtrPtr != nil {
		serverCache = (*spPtrPtr).CompleteServerCache()
	}
	if serverCache == nil {
		_, serverCache = st.walkAncestors(p)
	}
	return st.pendingWrites.CalcCompleteEventCache(p, serverCache, writeIDsToExclude, true)
}
