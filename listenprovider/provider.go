// Package listenprovider defines the injected capability the sync
// core uses to open and close server subscriptions, plus the shape of
// what a subscription hands back once it is live. Two implementations
// live in subpackages: memprovider (in-process, for tests and the
// demo CLI) and wsprovider (github.com/gorilla/websocket, for a real
// network-facing deployment).
//
// The split between "did the subscribe succeed" (OnComplete) and
// "here is new server data" (OnUpdate) generalizes the teacher's
// single tagged sync.Msg envelope (sync/protocol.go) into two
// narrower callbacks, since this module's provider contract only ever
// needs two kinds of inbound event rather than a five-message
// handshake.
package listenprovider

import (
	"github.com/teranos/synctree/node"
	"github.com/teranos/synctree/path"
	"github.com/teranos/synctree/query"
	"github.com/teranos/synctree/view"
)

// UpdateKind discriminates the two shapes of server-pushed data.
type UpdateKind int

const (
	UpdateOverwrite UpdateKind = iota
	UpdateMerge
)

// ServerUpdate is a provider-delivered mutation, relative to the
// query path the listener subscribed at.
type ServerUpdate struct {
	Kind     UpdateKind
	Path     path.Path
	Node     node.Node
	Children map[string]node.Node
}

// Status reports the outcome of a listen setup attempt.
type Status int

const (
	StatusOK Status = iota
	StatusPermissionDenied
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusPermissionDenied:
		return "permission_denied"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// OnUpdate is invoked whenever the provider has new server data for an
// active listen. It must not be called before the corresponding
// StartListening returns.
type OnUpdate func(update ServerUpdate)

// OnComplete reports whether a listen was established. status other
// than StatusOK carries a non-nil err describing why.
type OnComplete func(status Status, err error)

// Provider is the sync core's injected dependency for server
// subscriptions.
type Provider interface {
	// StartListening opens a subscription for q (tagged, if tag is
	// non-nil, for a filtered/non-default query). hashFn lets the
	// provider skip a redundant full snapshot when the caller's cache
	// already matches server state. Any bootstrap events the provider
	// can answer synchronously from its own cache are returned
	// directly; onComplete/onUpdate fire only from later top-level
	// dispatches.
	StartListening(q query.Query, tag *uint64, hashFn func() string, onUpdate OnUpdate, onComplete OnComplete) []view.Event
	// StopListening tears down a previously started subscription.
	// Idempotent; must not raise.
	StopListening(q query.Query, tag *uint64)
}
