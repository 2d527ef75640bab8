package writetree

import (
	"github.com/teranos/synctree/node"
	"github.com/teranos/synctree/path"
)

// PendingWrite is a single optimistic local write, either a full
// subtree overwrite (Snap set) or a merge of named children (Children
// set) — the two are mutually exclusive. Writes are ordered by WriteID,
// assigned by the caller and strictly increasing.
type PendingWrite struct {
	WriteID  uint64
	Path     path.Path
	Snap     node.Node
	Children map[string]node.Node
	// Visible controls whether this write produces locally observable
	// events. An invisible write still participates in transaction
	// cache computation (calcCompleteEventCache with
	// includeHiddenSets=true).
	Visible bool
}

// IsOverwrite reports whether this write is a full subtree replacement
// rather than a per-child merge.
func (w *PendingWrite) IsOverwrite() bool {
	return w.Children == nil
}
