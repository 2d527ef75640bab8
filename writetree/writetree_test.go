package writetree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/synctree/node"
	"github.com/teranos/synctree/path"
)

func TestAddOverwriteAndCalcCompleteEventCache(t *testing.T) {
	wt := New(nil)
	wt.AddOverwrite(path.New("a"), node.NewLeaf("hello"), 1, true)

	got := wt.CalcCompleteEventCache(path.New("a"), nil, nil, false)
	require.NotNil(t, got)
	assert.Equal(t, "hello", (*got).Value())
}

func TestCalcCompleteEventCacheOverlaysServerCache(t *testing.T) {
	wt := New(nil)
	server := node.FromChildren(map[string]node.Node{
		"a": node.NewLeaf("server-a"),
		"b": node.NewLeaf("server-b"),
	})
	wt.AddOverwrite(path.New("a"), node.NewLeaf("local-a"), 1, true)

	got := wt.CalcCompleteEventCache(path.Empty, &server, nil, false)
	require.NotNil(t, got)
	assert.Equal(t, "local-a", (*got).GetImmediateChild("a").Value(), "pending write should shadow server value at a")
	assert.Equal(t, "server-b", (*got).GetImmediateChild("b").Value(), "untouched server child b should survive")
}

func TestCalcCompleteEventCacheDescendantWrite(t *testing.T) {
	wt := New(nil)
	wt.AddOverwrite(path.New("a", "b"), node.NewLeaf("deep"), 1, true)

	got := wt.CalcCompleteEventCache(path.New("a"), nil, nil, false)
	require.NotNil(t, got, "expected non-nil result even with no server cache")
	assert.Equal(t, "deep", (*got).GetImmediateChild("b").Value())
}

func TestCalcCompleteEventCacheAncestorOverwriteProjectsDown(t *testing.T) {
	wt := New(nil)
	whole := node.FromChildren(map[string]node.Node{
		"x": node.NewLeaf(1.0),
		"y": node.NewLeaf(2.0),
	})
	wt.AddOverwrite(path.Empty, whole, 1, true)

	got := wt.CalcCompleteEventCache(path.New("x"), nil, nil, false)
	require.NotNil(t, got, "ancestor overwrite should project down to x")
	assert.Equal(t, 1.0, (*got).Value())
}

func TestCalcCompleteEventCacheMergeAtExactPath(t *testing.T) {
	wt := New(nil)
	server := node.FromChildren(map[string]node.Node{
		"a": node.NewLeaf("1"),
		"b": node.NewLeaf("2"),
	})
	wt.AddMerge(path.Empty, map[string]node.Node{"a": node.NewLeaf("changed")}, 1)

	got := wt.CalcCompleteEventCache(path.Empty, &server, nil, false)
	require.NotNil(t, got)
	assert.Equal(t, "changed", (*got).GetImmediateChild("a").Value(), "merge should overwrite listed child")
	assert.Equal(t, "2", (*got).GetImmediateChild("b").Value(), "merge should leave unlisted child untouched")
}

func TestCalcCompleteEventCacheHiddenWritesExcludedByDefault(t *testing.T) {
	wt := New(nil)
	wt.AddOverwrite(path.New("a"), node.NewLeaf("hidden"), 1, false)

	got := wt.CalcCompleteEventCache(path.New("a"), nil, nil, false)
	assert.Nil(t, got, "hidden write should not surface when includeHiddenSets=false and there is no server baseline")

	got = wt.CalcCompleteEventCache(path.New("a"), nil, nil, true)
	require.NotNil(t, got, "hidden write should surface when includeHiddenSets=true")
	assert.Equal(t, "hidden", (*got).Value())
}

func TestCalcCompleteEventCacheExcludesRequestedWriteIDs(t *testing.T) {
	wt := New(nil)
	wt.AddOverwrite(path.New("a"), node.NewLeaf("first"), 1, true)
	wt.AddOverwrite(path.New("a"), node.NewLeaf("second"), 2, true)

	got := wt.CalcCompleteEventCache(path.New("a"), nil, map[uint64]bool{2: true}, false)
	require.NotNil(t, got, "excluding write 2 should leave write 1's value")
	assert.Equal(t, "first", (*got).Value())
}

func TestGetWrite(t *testing.T) {
	wt := New(nil)
	wt.AddOverwrite(path.New("a"), node.NewLeaf("x"), 7, true)

	w, ok := wt.GetWrite(7)
	require.True(t, ok, "GetWrite(7) should find the recorded write")
	assert.Equal(t, uint64(7), w.WriteID)

	_, ok = wt.GetWrite(8)
	assert.False(t, ok, "GetWrite(8) should not find a write that was never added")
}

func TestRemoveWriteNeedsReevaluateWhenVisibleAndUncovered(t *testing.T) {
	wt := New(nil)
	wt.AddOverwrite(path.New("a"), node.NewLeaf("x"), 1, true)

	assert.True(t, wt.RemoveWrite(1), "removing the only visible write should require reevaluation")
	_, ok := wt.GetWrite(1)
	assert.False(t, ok, "write should be gone after RemoveWrite")
}

func TestRemoveWriteInvisibleNeverNeedsReevaluate(t *testing.T) {
	wt := New(nil)
	wt.AddOverwrite(path.New("a"), node.NewLeaf("x"), 1, false)

	assert.False(t, wt.RemoveWrite(1), "removing an invisible write should never require reevaluation")
}

func TestRemoveWriteCoveredByLaterAncestorOverwrite(t *testing.T) {
	wt := New(nil)
	wt.AddOverwrite(path.New("a", "b"), node.NewLeaf("x"), 1, true)
	wt.AddOverwrite(path.Empty, node.NewLeaf("whole"), 2, true)

	assert.False(t, wt.RemoveWrite(1), "a later ancestor overwrite should fully cover the earlier descendant write")
}

func TestRemoveWriteNotCoveredByEarlierAncestorWrite(t *testing.T) {
	wt := New(nil)
	wt.AddOverwrite(path.Empty, node.NewLeaf("whole"), 1, true)
	wt.AddOverwrite(path.New("a", "b"), node.NewLeaf("x"), 2, true)

	assert.True(t, wt.RemoveWrite(2), "removing the most recent write should require reevaluation regardless of earlier writes")
}

func TestWriteTreeRefChildAndCache(t *testing.T) {
	wt := New(nil)
	wt.AddOverwrite(path.New("a", "b"), node.NewLeaf("nested"), 1, true)

	ref := wt.ChildWrites(path.New("a"))
	child := ref.Child("b")
	assert.True(t, child.Path().Equals(path.New("a", "b")))

	got := child.CalcCompleteEventCache(nil, nil, false)
	require.NotNil(t, got, "ref-relative CalcCompleteEventCache should find the write")
	assert.Equal(t, "nested", (*got).Value())
}
