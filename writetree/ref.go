package writetree

import (
	"github.com/teranos/synctree/node"
	"github.com/teranos/synctree/path"
)

// WriteTreeRef is a path-relative view over a WriteTree, letting
// callers descend into a subtree during operation dispatch without
// carrying an absolute path back to synctree.
type WriteTreeRef struct {
	tree *WriteTree
	path path.Path
}

// Child returns the ref for the named child, relative to the same
// underlying WriteTree.
func (r *WriteTreeRef) Child(key string) *WriteTreeRef {
	return &WriteTreeRef{tree: r.tree, path: r.path.Child(key)}
}

// Path returns the absolute path this ref is rooted at.
func (r *WriteTreeRef) Path() path.Path {
	return r.path
}

// CalcCompleteEventCache overlays pending writes at this ref's path
// onto serverCache.
func (r *WriteTreeRef) CalcCompleteEventCache(serverCache *node.Node, writeIdsToExclude map[uint64]bool, includeHiddenSets bool) *node.Node {
	return r.tree.CalcCompleteEventCache(r.path, serverCache, writeIdsToExclude, includeHiddenSets)
}
