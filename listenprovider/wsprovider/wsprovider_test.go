package wsprovider

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/synctree/listenprovider"
	"github.com/teranos/synctree/node"
	"github.com/teranos/synctree/path"
	"github.com/teranos/synctree/query"
)

func nodeFromChildrenForTest() node.Node {
	return node.FromChildren(map[string]node.Node{
		"a": node.NewLeaf("1"),
		"b": node.FromChildren(map[string]node.Node{"c": node.NewLeaf("2")}),
	})
}

// chanConn implements Conn over a pair of channels for in-process
// testing, mirroring the teacher's sync.chanConn.
type chanConn struct {
	in  chan json.RawMessage
	out chan json.RawMessage
}

func (c *chanConn) ReadJSON(v interface{}) error {
	raw, ok := <-c.in
	if !ok {
		return fmt.Errorf("connection closed")
	}
	return json.Unmarshal(raw, v)
}

func (c *chanConn) WriteJSON(v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.out <- raw
	return nil
}

func (c *chanConn) Close() error { return nil }

func connPair() (Conn, Conn) {
	ab := make(chan json.RawMessage, 32)
	ba := make(chan json.RawMessage, 32)
	return &chanConn{in: ba, out: ab}, &chanConn{in: ab, out: ba}
}

func TestStartListeningSendsSubscribeEnvelope(t *testing.T) {
	clientSide, serverSide := connPair()
	p := New(clientSide, nil)
	defer p.Close()

	p.StartListening(query.New(path.New("users")), nil, nil,
		func(listenprovider.ServerUpdate) {}, func(listenprovider.Status, error) {})

	var env envelope
	require.NoError(t, serverSide.ReadJSON(&env), "server did not receive subscribe")
	assert.Equal(t, "subscribe", env.Type)
	assert.Equal(t, "/users", env.Path)
}

func TestUpdateEnvelopeDispatchesToOnUpdate(t *testing.T) {
	clientSide, serverSide := connPair()
	p := New(clientSide, nil)
	defer p.Close()

	updates := make(chan listenprovider.ServerUpdate, 1)
	p.StartListening(query.New(path.New("users")), nil, nil,
		func(u listenprovider.ServerUpdate) { updates <- u },
		func(listenprovider.Status, error) {})

	var subscribe envelope
	require.NoError(t, serverSide.ReadJSON(&subscribe))

	require.NoError(t, serverSide.WriteJSON(envelope{
		Type: "update", RequestID: subscribe.RequestID,
		UpdatePath: "/a", Node: &wireNode{Value: "hello"},
	}))

	select {
	case u := <-updates:
		assert.True(t, u.Path.Equals(path.New("a")))
		assert.Equal(t, "hello", u.Node.Value())
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for update dispatch")
	}
}

func TestCompleteEnvelopeOKDispatchesSuccess(t *testing.T) {
	clientSide, serverSide := connPair()
	p := New(clientSide, nil)
	defer p.Close()

	results := make(chan listenprovider.Status, 1)
	p.StartListening(query.New(path.New("users")), nil, nil,
		func(listenprovider.ServerUpdate) {},
		func(status listenprovider.Status, err error) { results <- status })

	var subscribe envelope
	require.NoError(t, serverSide.ReadJSON(&subscribe))
	require.NoError(t, serverSide.WriteJSON(envelope{Type: "complete", RequestID: subscribe.RequestID, Status: "ok"}))

	select {
	case status := <-results:
		assert.Equal(t, listenprovider.StatusOK, status)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for completion dispatch")
	}
}

func TestStopListeningSendsUnsubscribe(t *testing.T) {
	clientSide, serverSide := connPair()
	p := New(clientSide, nil)
	defer p.Close()

	q := query.New(path.New("users"))
	p.StartListening(q, nil, nil, func(listenprovider.ServerUpdate) {}, func(listenprovider.Status, error) {})

	var subscribe envelope
	require.NoError(t, serverSide.ReadJSON(&subscribe))

	p.StopListening(q, nil)

	var unsubscribe envelope
	require.NoError(t, serverSide.ReadJSON(&unsubscribe), "server did not receive unsubscribe")
	assert.Equal(t, "unsubscribe", unsubscribe.Type)
	assert.Equal(t, subscribe.RequestID, unsubscribe.RequestID)
}

func TestWireNodeRoundTrip(t *testing.T) {
	original := nodeFromChildrenForTest()
	roundTripped := fromWire(toWire(original))
	assert.Equal(t, original.Hash(), roundTripped.Hash(), "wire round trip changed content")
}
