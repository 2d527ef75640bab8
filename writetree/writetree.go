// Package writetree implements the ordered log of pending optimistic
// local writes and the path projections that the sync core overlays
// onto server data before it reaches a view. Projections are computed
// from the log on every call; no projection cache is kept.
//
// The write log is a flat slice sorted by writeId rather than a nested
// itree.Tree keyed by path — child lookups for calcCompleteEventCache
// walk the slice and compare paths directly, which keeps RemoveWrite's
// "does a later write cover this one" check a single linear scan. This
// mirrors the teacher's write-ahead log in sync/group.go, which also
// keeps its pending entries as a flat, id-ordered slice rather than a
// tree.
package writetree

import (
	"sort"

	"go.uber.org/zap"

	"github.com/teranos/synctree/logger"
	"github.com/teranos/synctree/node"
	"github.com/teranos/synctree/path"
)

// WriteTree holds every pending local write not yet acknowledged by
// the server.
type WriteTree struct {
	writes []*PendingWrite
	log    *zap.SugaredLogger
}

// New builds an empty WriteTree. A nil logger falls back to a no-op
// logger.
func New(log *zap.SugaredLogger) *WriteTree {
	if log == nil {
		log = logger.Nop()
	}
	return &WriteTree{log: log}
}

// AddOverwrite records a full subtree replacement at p under writeID.
func (wt *WriteTree) AddOverwrite(p path.Path, n node.Node, writeID uint64, visible bool) {
	wt.insert(&PendingWrite{WriteID: writeID, Path: p, Snap: n, Visible: visible})
}

// AddMerge records a per-child update at p under writeID. Merge writes
// are always visible.
func (wt *WriteTree) AddMerge(p path.Path, children map[string]node.Node, writeID uint64) {
	wt.insert(&PendingWrite{WriteID: writeID, Path: p, Children: children, Visible: true})
}

func (wt *WriteTree) insert(w *PendingWrite) {
	wt.writes = append(wt.writes, w)
	if len(wt.writes) > 1 && wt.writes[len(wt.writes)-2].WriteID > w.WriteID {
		sort.Slice(wt.writes, func(i, j int) bool { return wt.writes[i].WriteID < wt.writes[j].WriteID })
	}
	if logger.Enabled(logger.OutputWrites) {
		wt.log.Debugw("write recorded",
			logger.FieldWriteID, w.WriteID,
			logger.FieldPath, w.Path.String(),
		)
	}
}

// GetWrite looks up a write by id.
func (wt *WriteTree) GetWrite(writeID uint64) (*PendingWrite, bool) {
	for _, w := range wt.writes {
		if w.WriteID == writeID {
			return w, true
		}
	}
	return nil, false
}

// RemoveWrite deletes the write and reports whether removing it could
// alter any visible view: true iff the write was visible and no later
// write at an ancestor-or-equal path fully covers it.
func (wt *WriteTree) RemoveWrite(writeID uint64) bool {
	idx := -1
	var removed *PendingWrite
	for i, w := range wt.writes {
		if w.WriteID == writeID {
			idx, removed = i, w
			break
		}
	}
	if idx == -1 {
		return false
	}
	wt.writes = append(wt.writes[:idx], wt.writes[idx+1:]...)
	if logger.Enabled(logger.OutputWrites) {
		wt.log.Debugw("write removed", logger.FieldWriteID, writeID)
	}

	if !removed.Visible {
		return false
	}
	for _, w := range wt.writes {
		if w.WriteID > removed.WriteID && w.IsOverwrite() && w.Path.Contains(removed.Path) {
			return false
		}
	}
	return true
}

// Count reports how many writes are currently pending.
func (wt *WriteTree) Count() int {
	return len(wt.writes)
}

// ChildWrites returns a WriteTreeRef rooted at p.
func (wt *WriteTree) ChildWrites(p path.Path) *WriteTreeRef {
	return &WriteTreeRef{tree: wt, path: p}
}

// CalcCompleteEventCache overlays every applicable pending write onto
// serverCache (which may be nil if no server baseline is known yet)
// and returns the resulting node, or nil if neither a server cache nor
// any relevant write exists.
//
// writeIdsToExclude, if non-nil, skips the named writes (used by the
// transaction path to compute a cache as it looked before a specific
// write landed). includeHiddenSets controls whether invisible writes
// participate; transaction logic always passes true.
func (wt *WriteTree) CalcCompleteEventCache(p path.Path, serverCache *node.Node, writeIdsToExclude map[uint64]bool, includeHiddenSets bool) *node.Node {
	var result node.Node
	haveBase := false
	if serverCache != nil {
		result = *serverCache
		haveBase = true
	}

	for _, w := range wt.writes {
		if writeIdsToExclude != nil && writeIdsToExclude[w.WriteID] {
			continue
		}
		if !w.Visible && !includeHiddenSets {
			continue
		}

		switch {
		case w.Path.Equals(p):
			if w.IsOverwrite() {
				result = w.Snap
			} else {
				if !haveBase {
					result = node.EMPTY
				}
				for key, val := range w.Children {
					result = result.UpdateImmediateChild(key, val)
				}
			}
			haveBase = true

		case w.Path.Contains(p):
			rel := p.RelativeTo(w.Path)
			if w.IsOverwrite() {
				result = node.GetAtPath(w.Snap, rel)
				haveBase = true
			} else if child, ok := w.Children[rel.Front()]; ok {
				result = node.GetAtPath(child, rel.PopFront())
				haveBase = true
			}

		case p.Contains(w.Path):
			rel := w.Path.RelativeTo(p)
			if !haveBase {
				result = node.EMPTY
				haveBase = true
			}
			if w.IsOverwrite() {
				result = node.SetAtPath(result, rel, w.Snap)
			} else {
				for key, val := range w.Children {
					result = node.SetAtPath(result, rel.Child(key), val)
				}
			}
		}
	}

	if !haveBase {
		return nil
	}
	return &result
}
