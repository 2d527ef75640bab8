// Package view implements View: a single query's materialized window
// over server data plus locally pending writes, and the diffing logic
// that turns operations into ordered child events.
package view

import (
	"github.com/teranos/synctree/node"
	"github.com/teranos/synctree/path"
)

// EventType discriminates the kinds of change a View can report.
type EventType int

const (
	ChildAdded EventType = iota
	ChildChanged
	ChildMoved
	ChildRemoved
	Value
	Cancel
)

func (t EventType) String() string {
	switch t {
	case ChildAdded:
		return "child_added"
	case ChildChanged:
		return "child_changed"
	case ChildMoved:
		return "child_moved"
	case ChildRemoved:
		return "child_removed"
	case Value:
		return "value"
	case Cancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Event is one observable change a View surfaces to its caller. The
// core never dispatches events itself — they are returned up the call
// stack from apply*/registration calls, per the single-threaded
// cooperative scheduling model.
type Event struct {
	Type EventType
	Path path.Path
	// ChildKey and Node are set for every type except Value and
	// Cancel, which describe the whole subtree at Path instead.
	ChildKey string
	Node     node.Node
	// PrevChildKey is set for ChildAdded and ChildMoved: the sibling
	// this child now sorts immediately after, or "" if it now sorts
	// first.
	PrevChildKey string
	// Error is set only for Cancel events.
	Error error
}
