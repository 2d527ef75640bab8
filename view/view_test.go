package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/synctree/errors"
	"github.com/teranos/synctree/itree"
	"github.com/teranos/synctree/node"
	"github.com/teranos/synctree/op"
	"github.com/teranos/synctree/path"
	"github.com/teranos/synctree/query"
	"github.com/teranos/synctree/writetree"
)

func newTestView(t *testing.T, q query.Query, server *node.Node) (*View, *writetree.WriteTree) {
	t.Helper()
	wt := writetree.New(nil)
	ref := wt.ChildWrites(q.Path)
	v := New(q, server, server != nil, ref, nil)
	return v, wt
}

func TestAddEventRegistrationEmitsExistingChildren(t *testing.T) {
	server := node.FromChildren(map[string]node.Node{
		"a": node.NewLeaf("1"),
		"b": node.NewLeaf("2"),
	})
	v, _ := newTestView(t, query.New(path.New("users")), &server)

	events := v.AddEventRegistration(FuncRegistration{ID: "listener-1"})
	require.Len(t, events, 2)
	for _, e := range events {
		assert.Equal(t, ChildAdded, e.Type)
	}
	assert.Equal(t, "a", events[0].ChildKey)
	assert.Equal(t, "b", events[1].ChildKey)
	assert.Equal(t, "", events[0].PrevChildKey)
	assert.Equal(t, "a", events[1].PrevChildKey)
}

func TestApplyOperationServerOverwriteAddsChild(t *testing.T) {
	v, wt := newTestView(t, query.New(path.New("users")), nil)
	writes := wt.ChildWrites(path.New("users"))

	overwrite := op.NewOverwrite(op.Server, path.New("a"), node.NewLeaf("1"))
	events := v.ApplyOperation(overwrite, writes, nil)

	require.Len(t, events, 1)
	assert.Equal(t, ChildAdded, events[0].Type)
	assert.Equal(t, "a", events[0].ChildKey)
}

func TestApplyOperationServerOverwriteChangesChild(t *testing.T) {
	server := node.FromChildren(map[string]node.Node{"a": node.NewLeaf("1")})
	v, wt := newTestView(t, query.New(path.New("users")), &server)
	writes := wt.ChildWrites(path.New("users"))

	overwrite := op.NewOverwrite(op.Server, path.New("a"), node.NewLeaf("2"))
	events := v.ApplyOperation(overwrite, writes, nil)

	require.Len(t, events, 1)
	assert.Equal(t, ChildChanged, events[0].Type)
}

func TestApplyOperationUserWriteIsOptimisticallyVisible(t *testing.T) {
	server := node.FromChildren(map[string]node.Node{"a": node.NewLeaf("server-val")})
	v, wt := newTestView(t, query.New(path.New("users")), &server)
	writes := wt.ChildWrites(path.New("users"))

	wt.AddOverwrite(path.New("users", "a"), node.NewLeaf("local-val"), 1, true)
	userOp := op.NewOverwrite(op.User, path.New("a"), node.NewLeaf("local-val"))
	events := v.ApplyOperation(userOp, writes, nil)

	require.Len(t, events, 1)
	assert.Equal(t, ChildChanged, events[0].Type)
	assert.Equal(t, "local-val", events[0].Node.Value())
	assert.Equal(t, "server-val", (*v.GetServerCache()).GetImmediateChild("a").Value(), "user write must not mutate the server cache")
}

func TestApplyOperationAckRevertRestoresServerValue(t *testing.T) {
	server := node.FromChildren(map[string]node.Node{"a": node.NewLeaf("server-val")})
	v, wt := newTestView(t, query.New(path.New("users")), &server)
	writes := wt.ChildWrites(path.New("users"))

	wt.AddOverwrite(path.New("users", "a"), node.NewLeaf("local-val"), 1, true)
	v.ApplyOperation(op.NewOverwrite(op.User, path.New("a"), node.NewLeaf("local-val")), writes, nil)

	require.True(t, wt.RemoveWrite(1), "removing the only visible write should require reevaluation")
	affected := itree.Empty[bool]().Set(path.Empty, true)
	ack := op.NewAckUserWrite(path.Empty, affected, true)
	events := v.ApplyOperation(ack, writes, nil)

	require.Len(t, events, 1)
	assert.Equal(t, ChildChanged, events[0].Type)
	assert.Equal(t, "server-val", events[0].Node.Value())
}

func TestListenCompleteMarksViewComplete(t *testing.T) {
	v, wt := newTestView(t, query.New(path.New("users")), nil)
	writes := wt.ChildWrites(path.New("users"))

	assert.False(t, v.HasCompleteView(), "view should not be complete before any server data arrives")
	server := node.EMPTY
	v.ApplyOperation(op.NewListenComplete(op.Server, path.Empty), writes, &server)
	assert.True(t, v.HasCompleteView(), "ListenComplete plus a server cache should mark the view complete")
}

func TestRemoveEventRegistrationAll(t *testing.T) {
	v, _ := newTestView(t, query.New(path.New("users")), nil)
	v.AddEventRegistration(FuncRegistration{ID: 1})
	v.AddEventRegistration(FuncRegistration{ID: 2})

	removed, events := v.RemoveEventRegistration(nil, errors.New("listen failed"))
	assert.Equal(t, 2, removed)
	require.Len(t, events, 2)
	assert.Equal(t, Cancel, events[0].Type)
	assert.Equal(t, 0, v.RegistrationCount(), "all registrations should be gone")
}

func TestRemoveEventRegistrationOne(t *testing.T) {
	v, _ := newTestView(t, query.New(path.New("users")), nil)
	v.AddEventRegistration(FuncRegistration{ID: 1})
	v.AddEventRegistration(FuncRegistration{ID: 2})

	removed, events := v.RemoveEventRegistration(FuncRegistration{ID: 1}, nil)
	assert.Equal(t, 1, removed)
	assert.Empty(t, events)
	assert.Equal(t, 1, v.RegistrationCount(), "one registration should remain")
}
