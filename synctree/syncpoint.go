package synctree

import (
	"sort"

	"go.uber.org/zap"

	"github.com/teranos/synctree/node"
	"github.com/teranos/synctree/op"
	"github.com/teranos/synctree/path"
	"github.com/teranos/synctree/query"
	"github.com/teranos/synctree/view"
	"github.com/teranos/synctree/writetree"
)

// SyncPoint is a collection of Views sharing a path. Per spec.md
// section 3, at most one *complete* (unfiltered) view exists per Sync
// Point; this implementation resolves that invariant by treating the
// view keyed by query.DefaultIdentifier as the complete view — the
// simplest reading that keeps "at most one" trivially true, since a Go
// map can only ever hold one entry under that key. An ordering-only
// query that LoadsAllData() but isn't the literal default query
// (spec.md section 9's flagged open question) is treated as loading
// all data for listen-canonicalization purposes but is not itself
// "the" complete view for shadowing bookkeeping.
type SyncPoint struct {
	views map[string]*view.View
	log   *zap.SugaredLogger
}

func newSyncPoint(log *zap.SugaredLogger) *SyncPoint {
	return &SyncPoint{views: make(map[string]*view.View), log: log}
}

// IsEmpty reports whether this Sync Point has no views left, meaning
// it should be pruned from the Sync Point tree.
func (sp *SyncPoint) IsEmpty() bool {
	return len(sp.views) == 0
}

// ViewExistsForQuery reports whether q already has a view here.
func (sp *SyncPoint) ViewExistsForQuery(q query.Query) bool {
	_, ok := sp.views[q.QueryIdentifier()]
	return ok
}

// ViewForQuery returns the view for q, if any.
func (sp *SyncPoint) ViewForQuery(q query.Query) (*view.View, bool) {
	v, ok := sp.views[q.QueryIdentifier()]
	return v, ok
}

// GetCompleteView returns the unfiltered (default) view at this Sync
// Point, if one is registered.
func (sp *SyncPoint) GetCompleteView() (*view.View, bool) {
	v, ok := sp.views[query.DefaultIdentifier]
	return v, ok
}

// GetQueryViews returns every view at this Sync Point, in a stable
// (identifier-sorted) order.
func (sp *SyncPoint) GetQueryViews() []*view.View {
	ids := sp.sortedIdentifiers()
	views := make([]*view.View, 0, len(ids))
	for _, id := range ids {
		views = append(views, sp.views[id])
	}
	return views
}

func (sp *SyncPoint) sortedIdentifiers() []string {
	ids := make([]string, 0, len(sp.views))
	for id := range sp.views {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CompleteServerCache returns the authoritative server snapshot at
// this Sync Point's own root, or nil if the complete view either
// doesn't exist yet or hasn't finished receiving its initial data.
func (sp *SyncPoint) CompleteServerCache() *node.Node {
	v, ok := sp.GetCompleteView()
	if !ok || !v.HasCompleteView() {
		return nil
	}
	return v.GetCompleteServerCache(path.Empty)
}

// AddEventRegistration attaches reg to the view for q, creating the
// view (seeded from serverCache/serverCacheComplete) if it doesn't
// exist yet. isNew reports whether the view was just created, which
// the caller uses to decide whether a listen needs to be set up.
func (sp *SyncPoint) AddEventRegistration(q query.Query, reg view.EventRegistration, writes *writetree.WriteTreeRef, serverCache *node.Node, serverCacheComplete bool) (v *view.View, isNew bool, events []view.Event) {
	v, exists := sp.views[q.QueryIdentifier()]
	if !exists {
		v = view.New(q, serverCache, serverCacheComplete, writes, sp.log)
		sp.views[q.QueryIdentifier()] = v
	}
	events = v.AddEventRegistration(reg)
	return v, !exists, events
}

// RemoveEventRegistration removes reg (or every registration, if reg
// is nil) from the view(s) matching q. Per spec.md section 4.7, a
// removal against the literal default identifier affects every view
// at this Sync Point (default acts as a meta-query for removal);
// any other identifier affects only its own view. Views drained to
// zero registrations are dropped, and their queries are reported back
// so the caller can tear down the matching server subscriptions.
func (sp *SyncPoint) RemoveEventRegistration(q query.Query, reg view.EventRegistration, cancelErr error) (removedQueries []query.Query, events []view.Event) {
	var targets []string
	if q.QueryIdentifier() == query.DefaultIdentifier {
		targets = sp.sortedIdentifiers()
	} else if _, ok := sp.views[q.QueryIdentifier()]; ok {
		targets = []string{q.QueryIdentifier()}
	}

	for _, id := range targets {
		v := sp.views[id]
		removed, viewEvents := v.RemoveEventRegistration(reg, cancelErr)
		events = append(events, viewEvents...)
		if removed > 0 && v.RegistrationCount() == 0 {
			removedQueries = append(removedQueries, v.GetQuery())
			delete(sp.views, id)
		}
	}
	return removedQueries, events
}

// ApplyOperation routes operation to the matching view(s) and returns
// their concatenated events. onlyQueryID restricts application to a
// single tagged view (spec.md section 4.2's tagged-operation bypass);
// an empty onlyQueryID applies to every view here, per section 4.3.
func (sp *SyncPoint) ApplyOperation(operation op.Operation, writes *writetree.WriteTreeRef, serverCache *node.Node, onlyQueryID string) []view.Event {
	if onlyQueryID != "" {
		v, ok := sp.views[onlyQueryID]
		if !ok {
			return nil
		}
		return v.ApplyOperation(operation, writes, serverCache)
	}

	var events []view.Event
	for _, id := range sp.sortedIdentifiers() {
		events = append(events, sp.views[id].ApplyOperation(operation, writes, serverCache)...)
	}
	return events
}
