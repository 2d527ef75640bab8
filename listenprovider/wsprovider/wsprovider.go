// Package wsprovider implements listenprovider.Provider over a
// gorilla/websocket connection. The Conn abstraction and single
// read-loop-plus-registry shape are grounded on the teacher's
// sync.Peer / sync.Conn (sync/peer.go), generalized from a symmetric
// peer-to-peer reconciliation session to an asymmetric client
// subscribing to a remote listen endpoint.
package wsprovider

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"go.uber.org/zap"

	"github.com/teranos/synctree/errors"
	"github.com/teranos/synctree/listenprovider"
	"github.com/teranos/synctree/logger"
	"github.com/teranos/synctree/node"
	"github.com/teranos/synctree/path"
	"github.com/teranos/synctree/query"
	"github.com/teranos/synctree/view"
)

// Conn abstracts the WebSocket connection for testability, matching
// the teacher's sync.Conn shape exactly (ReadJSON/WriteJSON/Close).
type Conn interface {
	ReadJSON(v interface{}) error
	WriteJSON(v interface{}) error
	Close() error
}

type gorillaConn struct {
	conn *websocket.Conn
}

func (c *gorillaConn) ReadJSON(v interface{}) error  { return c.conn.ReadJSON(v) }
func (c *gorillaConn) WriteJSON(v interface{}) error { return c.conn.WriteJSON(v) }
func (c *gorillaConn) Close() error                  { return c.conn.Close() }

type activeListen struct {
	query      query.Query
	tag        *uint64
	onUpdate   listenprovider.OnUpdate
	onComplete listenprovider.OnComplete
}

// Provider is a listenprovider.Provider client over one WebSocket
// connection to a remote sync endpoint. StartListening is rate
// limited to protect the remote endpoint from subscription churn (a
// listener toggling a filtered query rapidly, for instance).
type Provider struct {
	conn    Conn
	log     *zap.SugaredLogger
	limiter *rate.Limiter

	mu          sync.Mutex
	byRequestID map[string]*activeListen

	done chan struct{}
}

// Dial opens a WebSocket connection to url and wraps it as a Provider.
func Dial(ctx context.Context, url string, log *zap.SugaredLogger) (*Provider, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "wsprovider: dial")
	}
	return New(&gorillaConn{conn: conn}, log), nil
}

// New wraps an already-established Conn as a Provider. Exposed
// separately from Dial so tests can supply an in-process fake, the
// same split the teacher's sync.NewPeer(conn, ...) makes.
func New(conn Conn, log *zap.SugaredLogger) *Provider {
	if log == nil {
		log = logger.Nop()
	}
	p := &Provider{
		conn:        conn,
		log:         log,
		limiter:     rate.NewLimiter(rate.Limit(20), 5),
		byRequestID: make(map[string]*activeListen),
		done:        make(chan struct{}),
	}
	go p.readLoop()
	return p
}

// StartListening sends a subscribe envelope for q and registers the
// callbacks that its eventual update/complete replies will invoke.
func (p *Provider) StartListening(q query.Query, tag *uint64, hashFn func() string, onUpdate listenprovider.OnUpdate, onComplete listenprovider.OnComplete) []view.Event {
	if err := p.limiter.Wait(context.Background()); err != nil {
		onComplete(listenprovider.StatusUnavailable, errors.Wrap(err, "wsprovider: rate limit"))
		return nil
	}

	id := uuid.NewString()
	hash := ""
	if hashFn != nil {
		hash = hashFn()
	}

	p.mu.Lock()
	p.byRequestID[id] = &activeListen{query: q, tag: tag, onUpdate: onUpdate, onComplete: onComplete}
	p.mu.Unlock()

	err := p.conn.WriteJSON(envelope{
		Type: "subscribe", RequestID: id,
		Path: q.Path.String(), QueryID: q.QueryIdentifier(), Tag: tag, Hash: hash,
	})
	if err != nil {
		p.mu.Lock()
		delete(p.byRequestID, id)
		p.mu.Unlock()
		onComplete(listenprovider.StatusUnavailable, errors.Wrap(err, "wsprovider: subscribe"))
	}
	return nil
}

// StopListening sends an unsubscribe envelope for q and drops its
// registration.
func (p *Provider) StopListening(q query.Query, tag *uint64) {
	p.mu.Lock()
	var id string
	for k, l := range p.byRequestID {
		if l.query.Path.Equals(q.Path) && l.query.QueryIdentifier() == q.QueryIdentifier() {
			id = k
			break
		}
	}
	if id != "" {
		delete(p.byRequestID, id)
	}
	p.mu.Unlock()

	if id == "" {
		return
	}
	if err := p.conn.WriteJSON(envelope{Type: "unsubscribe", RequestID: id}); err != nil && logger.Enabled(logger.OutputListen) {
		p.log.Debugw("wsprovider: unsubscribe write failed", logger.FieldError, err)
	}
}

// Close tears down the underlying connection.
func (p *Provider) Close() error {
	return p.conn.Close()
}

// Done is closed once the read loop exits (the connection dropped).
func (p *Provider) Done() <-chan struct{} {
	return p.done
}

func (p *Provider) readLoop() {
	defer close(p.done)
	for {
		var env envelope
		if err := p.conn.ReadJSON(&env); err != nil {
			if logger.Enabled(logger.OutputListen) {
				p.log.Debugw("wsprovider: read loop exiting", logger.FieldError, err)
			}
			return
		}
		p.dispatch(env)
	}
}

func (p *Provider) dispatch(env envelope) {
	p.mu.Lock()
	listen, ok := p.byRequestID[env.RequestID]
	p.mu.Unlock()
	if !ok {
		return
	}

	switch env.Type {
	case "complete":
		if env.Status == "ok" {
			listen.onComplete(listenprovider.StatusOK, nil)
			return
		}
		status := listenprovider.StatusUnavailable
		if env.Status == "permission_denied" {
			status = listenprovider.StatusPermissionDenied
		}
		listen.onComplete(status, errors.Newf("wsprovider: %s", env.Error))

	case "update":
		update := listenprovider.ServerUpdate{Path: path.Parse(env.UpdatePath)}
		if env.UpdateKind == "merge" {
			update.Kind = listenprovider.UpdateMerge
			update.Children = make(map[string]node.Node, len(env.Children))
			for k, w := range env.Children {
				update.Children[k] = fromWire(w)
			}
		} else {
			update.Kind = listenprovider.UpdateOverwrite
			if env.Node != nil {
				update.Node = fromWire(*env.Node)
			} else {
				update.Node = node.EMPTY
			}
		}
		listen.onUpdate(update)
	}
}
