package view

import (
	"github.com/teranos/synctree/node"
	"github.com/teranos/synctree/path"
	"github.com/teranos/synctree/query"
)

// diff compares two already-windowed materializations of the same
// query and emits ordered events: every child-added, then every
// child-changed, then every child-moved, then every child-removed.
func diff(p path.Path, params query.QueryParams, oldNode node.Node, oldOrder []string, newNode node.Node, newOrder []string) []Event {
	oldSet := make(map[string]bool, len(oldOrder))
	for _, k := range oldOrder {
		oldSet[k] = true
	}
	newSet := make(map[string]bool, len(newOrder))
	for _, k := range newOrder {
		newSet[k] = true
	}

	var added, changed, moved, removed []Event

	for _, k := range newOrder {
		child := newNode.GetImmediateChild(k)
		if !oldSet[k] {
			added = append(added, Event{
				Type: ChildAdded, Path: p, ChildKey: k, Node: child,
				PrevChildKey: prevKey(newOrder, k),
			})
			continue
		}
		oldChild := oldNode.GetImmediateChild(k)
		if oldChild.Hash() != child.Hash() {
			changed = append(changed, Event{Type: ChildChanged, Path: p, ChildKey: k, Node: child})
		}
	}

	oldPos := make(map[string]int, len(oldOrder))
	for i, k := range oldOrder {
		oldPos[k] = i
	}
	newPos := make(map[string]int, len(newOrder))
	for i, k := range newOrder {
		newPos[k] = i
	}
	for _, k := range newOrder {
		if !oldSet[k] {
			continue
		}
		if oldPos[k] != newPos[k] {
			moved = append(moved, Event{
				Type: ChildMoved, Path: p, ChildKey: k, Node: newNode.GetImmediateChild(k),
				PrevChildKey: prevKey(newOrder, k),
			})
		}
	}

	for _, k := range oldOrder {
		if !newSet[k] {
			removed = append(removed, Event{Type: ChildRemoved, Path: p, ChildKey: k, Node: oldNode.GetImmediateChild(k)})
		}
	}

	events := make([]Event, 0, len(added)+len(changed)+len(moved)+len(removed))
	events = append(events, added...)
	events = append(events, changed...)
	events = append(events, moved...)
	events = append(events, removed...)
	return events
}
