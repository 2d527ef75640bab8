// Package synctree implements the top-level orchestrator described in
// spec.md sections 3 and 4: a path-keyed tree of Sync Points that
// reconciles server pushes, optimistic local writes, and a dynamic set
// of query subscriptions into the event stream each subscriber
// observes.
//
// The scheduling model, per spec.md section 5, is single-threaded
// cooperative: every exported method here runs to completion and
// returns its full event set before the next call is made. SyncTree
// therefore holds no mutex of its own, the same way the teacher's
// sync.Tree assumes single-goroutine ownership rather than
// internally serializing access.
package synctree

import (
	"go.uber.org/zap"

	"github.com/teranos/synctree/itree"
	"github.com/teranos/synctree/listenprovider"
	"github.com/teranos/synctree/logger"
	"github.com/teranos/synctree/path"
	"github.com/teranos/synctree/writetree"
)

// SyncTree is the Sync Tree core: a persistent path-keyed tree of Sync
// Points, the pending-write log, the tag<->query registry, and the
// injected listen provider driving server subscriptions.
type SyncTree struct {
	syncPointTree *itree.Tree[*SyncPoint]
	pendingWrites *writetree.WriteTree

	queryToTag map[string]uint64
	tagToQuery map[uint64]string
	nextTag    uint64

	provider listenprovider.Provider
	log      *zap.SugaredLogger
}

// New builds an empty SyncTree driven by provider. A nil logger falls
// back to a no-op logger.
func New(provider listenprovider.Provider, log *zap.SugaredLogger) *SyncTree {
	if log == nil {
		log = logger.Nop()
	}
	return &SyncTree{
		syncPointTree: itree.Empty[*SyncPoint](),
		pendingWrites: writetree.New(log),
		queryToTag:    make(map[string]uint64),
		tagToQuery:    make(map[uint64]string),
		nextTag:       1,
		provider:      provider,
		log:           log,
	}
}

// SetNextTagStart seeds the tag counter. Callers use this once at
// startup, before any registration, to honor a configured starting
// value; it has no effect once any tag has already been issued or the
// counter has already been moved off its initial value of 1.
func (st *SyncTree) SetNextTagStart(start uint64) {
	if start > 0 && st.nextTag == 1 {
		st.nextTag = start
	}
}

// Stats is a lightweight, read-only counters snapshot: how many Sync
// Points exist, how many tags are active, and how many writes are
// pending. It does not affect dispatch and exists purely for
// diagnostics, grounded on the teacher's Peer.Reconcile returning
// (sent, received int) stats at the end of a reconciliation session.
type Stats struct {
	SyncPoints    int
	ActiveTags    int
	PendingWrites int
}

// Stats reports a snapshot of the tree's current size.
func (st *SyncTree) Stats() Stats {
	syncPoints := itree.Fold(st.syncPointTree, func(_ path.Path, value **SyncPoint, childResults []int) int {
		count := 0
		for _, c := range childResults {
			count += c
		}
		if value != nil {
			count++
		}
		return count
	})
	return Stats{
		SyncPoints:    syncPoints,
		ActiveTags:    len(st.tagToQuery),
		PendingWrites: st.pendingWrites.Count(),
	}
}
