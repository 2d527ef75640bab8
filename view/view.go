package view

import (
	"go.uber.org/zap"

	"github.com/teranos/synctree/logger"
	"github.com/teranos/synctree/node"
	"github.com/teranos/synctree/op"
	"github.com/teranos/synctree/path"
	"github.com/teranos/synctree/query"
	"github.com/teranos/synctree/writetree"
)

// View is a single query's materialized window: a server cache, an
// overlay of pending local writes, and the query's ordering/filter
// applied on top. It has no concept of network transport — it only
// ever sees Operations already routed to its path by the caller.
type View struct {
	query query.Query

	serverCache         node.Node
	serverCacheKnown    bool
	serverCacheComplete bool

	localCache  node.Node
	windowOrder []string

	registrations []EventRegistration

	log *zap.SugaredLogger
}

// New builds a View for q. serverCache/complete seed the initial
// server-side state (complete meaning the cache is authoritative for
// the whole query path, not spliced together from children); a nil
// serverCache means no server data is known yet.
func New(q query.Query, serverCache *node.Node, complete bool, writes *writetree.WriteTreeRef, log *zap.SugaredLogger) *View {
	if log == nil {
		log = logger.Nop()
	}
	v := &View{query: q, log: log}
	if serverCache != nil {
		v.serverCache = *serverCache
		v.serverCacheKnown = true
		v.serverCacheComplete = complete
	}
	v.recompute(writes)
	return v
}

// GetQuery returns the query this View materializes.
func (v *View) GetQuery() query.Query {
	return v.query
}

// GetServerCache returns the last known server snapshot, or nil if
// none has arrived yet.
func (v *View) GetServerCache() *node.Node {
	if !v.serverCacheKnown {
		return nil
	}
	return &v.serverCache
}

// HasCompleteView reports whether this View's server cache is a
// complete, authoritative snapshot of its whole query path.
func (v *View) HasCompleteView() bool {
	return v.serverCacheKnown && v.serverCacheComplete
}

// GetCompleteServerCache returns the value at relPath within the
// server cache, but only if HasCompleteView; otherwise nil, since a
// partial/spliced cache cannot answer for an arbitrary sub-path.
func (v *View) GetCompleteServerCache(relPath path.Path) *node.Node {
	if !v.HasCompleteView() {
		return nil
	}
	n := node.GetAtPath(v.serverCache, relPath)
	return &n
}

func (v *View) recompute(writes *writetree.WriteTreeRef) {
	var base *node.Node
	if v.serverCacheKnown {
		base = &v.serverCache
	}
	merged := writes.CalcCompleteEventCache(base, nil, true)
	if merged == nil {
		v.localCache = node.EMPTY
	} else {
		v.localCache = *merged
	}
	windowedNode, order := materialize(v.query.Params, v.localCache)
	v.localCache = windowedNode
	v.windowOrder = order
}

// ApplyOperation folds operation into this View's state and returns
// the ordered events describing the resulting change to the queried
// window. Server-sourced Overwrite/Merge operations mutate the server
// cache; User-sourced writes have already landed in the write tree by
// the time this is called, so every operation triggers a full
// recompute-and-diff of the query's materialized window against the
// write tree overlay.
func (v *View) ApplyOperation(operation op.Operation, writes *writetree.WriteTreeRef, serverCache *node.Node) []Event {
	oldNode, oldOrder := v.localCache, v.windowOrder

	if serverCache != nil {
		v.serverCache = *serverCache
		v.serverCacheKnown = true
	}

	switch operation.Kind() {
	case op.KindListenComplete:
		v.serverCacheComplete = true
	case op.KindOverwrite, op.KindMerge:
		if !operation.Source().FromUser() {
			v.serverCache = operation.ApplyToNode(v.serverCache)
			v.serverCacheKnown = true
		}
	}

	v.recompute(writes)

	if logger.Enabled(logger.OutputDispatch) {
		v.log.Debugw("view applied operation",
			logger.FieldQueryID, v.query.QueryIdentifier(),
			logger.FieldOperation, int(operation.Kind()),
		)
	}

	return diff(v.query.Path, v.query.Params, oldNode, oldOrder, v.localCache, v.windowOrder)
}

// AddEventRegistration attaches reg to this View and returns the
// initial burst of events it should see: a ChildAdded per child
// currently in the materialized window, in order. A brand-new View
// with no data yet produces no events.
func (v *View) AddEventRegistration(reg EventRegistration) []Event {
	v.registrations = append(v.registrations, reg)

	events := make([]Event, 0, len(v.windowOrder))
	for _, k := range v.windowOrder {
		events = append(events, Event{
			Type: ChildAdded, Path: v.query.Path, ChildKey: k,
			Node: v.localCache.GetImmediateChild(k), PrevChildKey: prevKey(v.windowOrder, k),
		})
	}
	return events
}

// RemoveEventRegistration detaches reg (or every registration, if reg
// is nil) and reports how many were removed and, if cancelErr is set,
// the synthesized Cancel events for what was removed.
func (v *View) RemoveEventRegistration(reg EventRegistration, cancelErr error) (removed int, events []Event) {
	if reg == nil {
		removed = len(v.registrations)
		if cancelErr != nil {
			for range v.registrations {
				events = append(events, Event{Type: Cancel, Path: v.query.Path, Error: cancelErr})
			}
		}
		v.registrations = nil
		return removed, events
	}

	kept := v.registrations[:0]
	for _, r := range v.registrations {
		if r.Equal(reg) {
			removed++
			if cancelErr != nil {
				events = append(events, Event{Type: Cancel, Path: v.query.Path, Error: cancelErr})
			}
			continue
		}
		kept = append(kept, r)
	}
	v.registrations = kept
	return removed, events
}

// RegistrationCount reports how many listeners remain attached.
func (v *View) RegistrationCount() int {
	return len(v.registrations)
}
