package synctree

import (
	"github.com/teranos/synctree/errors"
	"github.com/teranos/synctree/itree"
	"github.com/teranos/synctree/listenprovider"
	"github.com/teranos/synctree/logger"
	"github.com/teranos/synctree/node"
	"github.com/teranos/synctree/path"
	"github.com/teranos/synctree/query"
	"github.com/teranos/synctree/view"
)

// AddEventRegistration attaches reg to the view for q, creating the
// Sync Point and view if needed, assigning a fresh tag if the view is
// new and filtered, and setting up a server listen unless an ancestor
// or local default view already shadows this location. Per spec.md
// section 4.6.
func (st *SyncTree) AddEventRegistration(q query.Query, reg view.EventRegistration) []view.Event {
	if logger.Enabled(logger.OutputRegistration) {
		st.log.Debugw("adding event registration",
			logger.FieldPath, q.Path.String(),
			logger.FieldQueryID, q.QueryIdentifier(),
		)
	}

	foundAncestorDefault, serverCache := st.walkAncestors(q.Path)

	sp := st.ensureSyncPoint(q.Path)
	_, hasLocalDefault := sp.GetCompleteView()

	serverCacheComplete := serverCache != nil
	if serverCache == nil {
		if assembled, complete := st.assembleFromChildren(q.Path); assembled != nil {
			serverCache, serverCacheComplete = assembled, complete
		}
	}

	isNewQuery := !sp.ViewExistsForQuery(q)
	if isNewQuery && !q.LoadsAllData() {
		key := query.MakeQueryKey(q)
		if _, already := st.queryToTag[key]; already {
			panic(errors.Wrapf(errors.ErrDuplicateTag, "query %s", key))
		}
		tag := st.nextTag
		st.nextTag++
		st.queryToTag[key] = tag
		st.tagToQuery[tag] = key
	}

	writesCache := st.pendingWrites.ChildWrites(q.Path)
	v, isNewView, events := sp.AddEventRegistration(q, reg, writesCache, serverCache, serverCacheComplete)

	shadowed := foundAncestorDefault || (q.QueryIdentifier() != query.DefaultIdentifier && hasLocalDefault)
	if isNewView && !shadowed {
		events = append(events, st.setupListener(q, v)...)
	}
	return events
}

// RemoveEventRegistration detaches reg (or every registration, if reg
// is nil) from the view(s) matching q, tears down orphaned server
// subscriptions, and re-establishes any that a removed default view
// had been shadowing. Per spec.md section 4.7.
func (st *SyncTree) RemoveEventRegistration(q query.Query, reg view.EventRegistration, cancelErr error) []view.Event {
	if logger.Enabled(logger.OutputRegistration) {
		st.log.Debugw("removing event registration",
			logger.FieldPath, q.Path.String(),
			logger.FieldQueryID, q.QueryIdentifier(),
		)
	}

	spPtrPtr := st.syncPointTree.Get(q.Path)
	if spPtrPtr == nil {
		return nil
	}
	sp := *spPtrPtr
	if q.QueryIdentifier() != query.DefaultIdentifier && !sp.ViewExistsForQuery(q) {
		return nil
	}

	removedQueries, events := sp.RemoveEventRegistration(q, reg, cancelErr)
	if sp.IsEmpty() {
		st.syncPointTree = st.syncPointTree.Remove(q.Path)
	}

	removingDefault := false
	for _, rq := range removedQueries {
		if rq.LoadsAllData() {
			removingDefault = true
		}
	}

	covered := st.isCovered(q.Path)

	if removingDefault && !covered {
		events = append(events, st.reestablishUncoveredDescendants(q.Path)...)
	}

	if !covered && len(removedQueries) > 0 && cancelErr == nil {
		if removingDefault {
			st.stopListenForQuery(queryForListening(q))
		}
		for _, rq := range removedQueries {
			if rq.LoadsAllData() {
				continue
			}
			st.stopListenForQuery(rq)
		}
	}

	for _, rq := range removedQueries {
		if rq.LoadsAllData() {
			continue
		}
		key := query.MakeQueryKey(rq)
		if tag, ok := st.queryToTag[key]; ok {
			delete(st.queryToTag, key)
			delete(st.tagToQuery, tag)
		}
	}

	return events
}

func (st *SyncTree) ensureSyncPoint(p path.Path) *SyncPoint {
	if existing := st.syncPointTree.Get(p); existing != nil {
		return *existing
	}
	sp := newSyncPoint(st.log)
	st.syncPointTree = st.syncPointTree.Set(p, sp)
	return sp
}

// walkAncestors walks the Sync Point tree from root to (but not
// including) p, reporting whether any strict ancestor has a complete
// view and the first complete server cache found along the way,
// projected down to p.
func (st *SyncTree) walkAncestors(p path.Path) (foundDefault bool, serverCache *node.Node) {
	tree := st.syncPointTree
	remaining := p
	for !remaining.IsEmpty() {
		if spPtr := tree.Value(); spPtr != nil {
			sp := *spPtr
			if _, ok := sp.GetCompleteView(); ok {
				foundDefault = true
			}
			if serverCache == nil {
				if c := sp.CompleteServerCache(); c != nil {
					projected := node.GetAtPath(*c, remaining)
					serverCache = &projected
				}
			}
		}
		key := remaining.Front()
		tree = tree.Children()[key]
		remaining = remaining.PopFront()
	}
	return foundDefault, serverCache
}

// assembleFromChildren splices together the complete server caches of
// p's immediate child Sync Points, per spec.md section 4.6 step 3.
// Always incomplete: it is only ever a partial view built from
// whatever descendants happen to know their own data.
func (st *SyncTree) assembleFromChildren(p path.Path) (*node.Node, bool) {
	subtree := st.syncPointTree.Subtree(p)
	children := make(map[string]node.Node)
	subtree.ForEachChild(func(key string, child *itree.Tree[*SyncPoint]) {
		spPtr := child.Value()
		if spPtr == nil {
			return
		}
		if c := (*spPtr).CompleteServerCache(); c != nil {
			children[key] = *c
		}
	})
	if len(children) == 0 {
		return nil, false
	}
	assembled := node.FromChildren(children)
	return &assembled, false
}

func (st *SyncTree) isCovered(p path.Path) bool {
	covered, _ := st.walkAncestors(p)
	return covered
}

// setupListener opens the server subscription backing a freshly
// created view, per spec.md section 4.8.
func (st *SyncTree) setupListener(q query.Query, v *view.View) []view.Event {
	var tagPtr *uint64
	if !q.LoadsAllData() {
		tag, ok := st.queryToTag[query.MakeQueryKey(q)]
		if !ok {
			panic(errors.AssertionFailedf("synctree: filtered query %s has no tag at listen setup", query.MakeQueryKey(q)))
		}
		tagPtr = &tag
	}

	hashFn, onUpdate, onComplete := st.createListenerForView(q, v, tagPtr)
	bootstrap := st.provider.StartListening(queryForListening(q), tagPtr, hashFn, onUpdate, onComplete)

	if tagPtr != nil {
		if spPtrPtr := st.syncPointTree.Get(q.Path); spPtrPtr != nil {
			if _, hasComplete := (*spPtrPtr).GetCompleteView(); hasComplete {
				panic(errors.AssertionFailedf("synctree: tagged listener registered alongside a complete view at %s", q.Path.String()))
			}
		}
	}

	if q.LoadsAllData() {
		st.shadowDescendants(q.Path)
	}

	return bootstrap
}

// createListenerForView builds the hashFn/onUpdate/onComplete triple
// a listen provider drives a single view's subscription with, per
// spec.md section 4.8.
func (st *SyncTree) createListenerForView(q query.Query, v *view.View, tagPtr *uint64) (func() string, listenprovider.OnUpdate, listenprovider.OnComplete) {
	hashFn := func() string {
		if c := v.GetServerCache(); c != nil {
			return (*c).Hash()
		}
		return node.EMPTY.Hash()
	}

	onUpdate := func(u listenprovider.ServerUpdate) {
		absPath := q.Path.Join(u.Path)
		if tagPtr != nil {
			switch u.Kind {
			case listenprovider.UpdateOverwrite:
				st.ApplyTaggedQueryOverwrite(absPath, u.Node, *tagPtr)
			case listenprovider.UpdateMerge:
				st.ApplyTaggedQueryMerge(absPath, u.Children, *tagPtr)
			}
			return
		}
		switch u.Kind {
		case listenprovider.UpdateOverwrite:
			st.ApplyServerOverwrite(absPath, u.Node)
		case listenprovider.UpdateMerge:
			st.ApplyServerMerge(absPath, u.Children)
		}
	}

	onComplete := func(status listenprovider.Status, err error) {
		if status == listenprovider.StatusOK {
			if tagPtr != nil {
				st.ApplyTaggedListenComplete(q.Path, *tagPtr)
			} else {
				st.ApplyListenComplete(q.Path)
			}
			return
		}
		mappedErr := errors.Wrapf(err, "synctree: listen failed for %s", query.MakeQueryKey(q))
		st.RemoveEventRegistration(q, nil, mappedErr)
	}

	return hashFn, onUpdate, onComplete
}

// queryForListening canonicalizes an ordering-only query that loads
// all data but isn't the literal default into its plain reference
// form, since such queries are subscribable as one shared default
// listen. Per spec.md section 4.8 and the open question in section 9.
func queryForListening(q query.Query) query.Query {
	if q.LoadsAllData() && !q.IsDefault() {
		return q.GetRef()
	}
	return q
}

// shadowDescendants stops server subscriptions made redundant by a
// newly registered default view at p: sibling filtered listens at p
// itself (views at p that load all data share the one untagged listen
// just started and are left alone), and everything under each
// descendant Sync Point, per
// spec.md section 4.8 step 3 and scenario 3 in section 8.
func (st *SyncTree) shadowDescendants(p path.Path) {
	subtree := st.syncPointTree.Subtree(p)
	toStop := itree.Fold(subtree, func(relPath path.Path, spPtr **SyncPoint, childResults [][]query.Query) []query.Query {
		if spPtr != nil && !relPath.IsEmpty() {
			if v, ok := (*spPtr).GetCompleteView(); ok {
				return []query.Query{v.GetQuery()}
			}
		}
		var collected []query.Query
		for _, c := range childResults {
			collected = append(collected, c...)
		}
		if spPtr != nil {
			for _, v := range (*spPtr).GetQueryViews() {
				if relPath.IsEmpty() && v.GetQuery().LoadsAllData() {
					continue
				}
				collected = append(collected, v.GetQuery())
			}
		}
		return collected
	})
	for _, q := range toStop {
		st.stopListenForQuery(q)
	}
}

// reestablishUncoveredDescendants restarts listens for the distinct
// views left uncovered by a just-removed default view at p, per
// spec.md section 4.7 step 5.
func (st *SyncTree) reestablishUncoveredDescendants(p path.Path) []view.Event {
	subtree := st.syncPointTree.Subtree(p)
	views := itree.Fold(subtree, func(_ path.Path, spPtr **SyncPoint, childResults [][]*view.View) []*view.View {
		if spPtr != nil {
			if v, ok := (*spPtr).GetCompleteView(); ok {
				return []*view.View{v}
			}
		}
		var collected []*view.View
		for _, c := range childResults {
			collected = append(collected, c...)
		}
		if spPtr != nil {
			collected = append(collected, (*spPtr).GetQueryViews()...)
		}
		return collected
	})

	var events []view.Event
	for _, v := range views {
		events = append(events, st.setupListener(v.GetQuery(), v)...)
	}
	return events
}

func (st *SyncTree) stopListenForQuery(q query.Query) {
	var tagPtr *uint64
	if !q.LoadsAllData() {
		if tag, ok := st.queryToTag[query.MakeQueryKey(q)]; ok {
			tagPtr = &tag
		}
	}
	st.provider.StopListening(queryForListening(q), tagPtr)
}
