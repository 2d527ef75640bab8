// Package memprovider implements an in-process listenprovider.Provider
// backed by a single shared node.Node tree. It is meant for the
// reference CLI's demo scenario and for tests that need two
// synctree.SyncTrees to observe each other's writes without a real
// network hop.
//
// Unlike a live transport, nothing here happens on its own: Set/Merge
// apply a change to the shared tree and queue the resulting
// notifications, and Pump delivers them. This mirrors the explicit
// separation the sync core itself requires ("the listen provider...
// must not call back into the Sync Tree before startListening
// returns") by making the deferred delivery a visible, callable step
// instead of a background goroutine.
package memprovider

import (
	"sync"

	"go.uber.org/zap"

	"github.com/teranos/synctree/listenprovider"
	"github.com/teranos/synctree/logger"
	"github.com/teranos/synctree/node"
	"github.com/teranos/synctree/path"
	"github.com/teranos/synctree/query"
	"github.com/teranos/synctree/view"
)

type registration struct {
	query      query.Query
	tag        *uint64
	onUpdate   listenprovider.OnUpdate
	onComplete listenprovider.OnComplete
}

type pending func()

// Provider is an in-memory listenprovider.Provider.
type Provider struct {
	mu       sync.Mutex
	data     node.Node
	registry map[string]*registration
	queue    []pending
	log      *zap.SugaredLogger
}

// New builds an empty in-memory provider.
func New(log *zap.SugaredLogger) *Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &Provider{data: node.EMPTY, registry: make(map[string]*registration), log: log}
}

func registrationKey(q query.Query, tag *uint64) string {
	return q.Path.String() + "$" + q.QueryIdentifier()
}

// StartListening registers q and queues its initial snapshot plus a
// successful completion, both delivered on the next Pump.
func (p *Provider) StartListening(q query.Query, tag *uint64, hashFn func() string, onUpdate listenprovider.OnUpdate, onComplete listenprovider.OnComplete) []view.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	reg := &registration{query: q, tag: tag, onUpdate: onUpdate, onComplete: onComplete}
	p.registry[registrationKey(q, tag)] = reg

	snapshot := node.GetAtPath(p.data, q.Path)
	if hashFn == nil || hashFn() != snapshot.Hash() {
		p.queue = append(p.queue, func() {
			onUpdate(listenprovider.ServerUpdate{Kind: listenprovider.UpdateOverwrite, Path: path.Empty, Node: snapshot})
		})
	}
	p.queue = append(p.queue, func() { onComplete(listenprovider.StatusOK, nil) })

	if logger.Enabled(logger.OutputListen) {
		p.log.Debugw("memprovider: listen started", logger.FieldPath, q.Path.String())
	}
	return nil
}

// StopListening removes q's registration. Idempotent.
func (p *Provider) StopListening(q query.Query, tag *uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.registry, registrationKey(q, tag))
}

// IsListening reports whether q (with the given tag, if any) currently
// has an active registration. Exposed for tests that need to observe
// listen teardown from outside the provider.
func (p *Provider) IsListening(q query.Query, tag *uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.registry[registrationKey(q, tag)]
	return ok
}

// Set replaces the subtree at p with n and notifies every listener
// whose path relates to p.
func (p *Provider) Set(pth path.Path, n node.Node) {
	p.mu.Lock()
	p.data = node.SetAtPath(p.data, pth, n)
	p.notify(pth)
	p.mu.Unlock()
}

// Merge updates named children at p and notifies affected listeners.
func (p *Provider) Merge(pth path.Path, children map[string]node.Node) {
	p.mu.Lock()
	for key, val := range children {
		p.data = node.SetAtPath(p.data, pth.Child(key), val)
	}
	p.notify(pth)
	p.mu.Unlock()
}

func (p *Provider) notify(changed path.Path) {
	for _, reg := range p.registry {
		lp := reg.query.Path
		var update listenprovider.ServerUpdate
		switch {
		case lp.Contains(changed):
			rel := changed.RelativeTo(lp)
			update = listenprovider.ServerUpdate{Kind: listenprovider.UpdateOverwrite, Path: rel, Node: node.GetAtPath(p.data, changed)}
		case changed.Contains(lp):
			update = listenprovider.ServerUpdate{Kind: listenprovider.UpdateOverwrite, Path: path.Empty, Node: node.GetAtPath(p.data, lp)}
		default:
			continue
		}
		reg := reg
		p.queue = append(p.queue, func() { reg.onUpdate(update) })
	}
}

// Pump delivers every queued notification in FIFO order. Callers drive
// this explicitly (after a registration or a Set/Merge) to keep
// delivery timing deterministic in tests and the demo CLI.
func (p *Provider) Pump() {
	p.mu.Lock()
	batch := p.queue
	p.queue = nil
	p.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
}
