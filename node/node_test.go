package node

import "testing"

func TestEmptyNode(t *testing.T) {
	if !EMPTY.IsEmpty() {
		t.Fatal("EMPTY should be empty")
	}
	if EMPTY.GetImmediateChild("x") != EMPTY {
		t.Fatal("child of EMPTY should be EMPTY")
	}
}

func TestLeafValue(t *testing.T) {
	n := NewLeaf("hello")
	if n.IsEmpty() {
		t.Fatal("leaf should not be empty")
	}
	if n.Value() != "hello" {
		t.Fatalf("Value() = %v, want hello", n.Value())
	}
}

func TestUpdateImmediateChild(t *testing.T) {
	n := EMPTY.UpdateImmediateChild("a", NewLeaf("1"))
	if n.IsEmpty() {
		t.Fatal("node with a child should not be empty")
	}
	if n.GetImmediateChild("a").Value() != "1" {
		t.Fatalf("child a = %v, want 1", n.GetImmediateChild("a").Value())
	}
	if n.GetImmediateChild("b") != EMPTY {
		t.Fatal("missing child should return EMPTY")
	}
}

func TestUpdateImmediateChildDoesNotMutateParent(t *testing.T) {
	base := EMPTY.UpdateImmediateChild("a", NewLeaf("1"))
	updated := base.UpdateImmediateChild("a", NewLeaf("2"))

	if base.GetImmediateChild("a").Value() != "1" {
		t.Fatal("original node was mutated")
	}
	if updated.GetImmediateChild("a").Value() != "2" {
		t.Fatal("updated node did not take the new value")
	}
}

func TestRemovingLastChildCollapsesToEmpty(t *testing.T) {
	n := EMPTY.UpdateImmediateChild("a", NewLeaf("1"))
	n = n.UpdateImmediateChild("a", EMPTY)
	if n != EMPTY {
		t.Fatal("removing the only child should collapse to EMPTY")
	}
}

func TestHashStableAcrossEqualContent(t *testing.T) {
	a := FromChildren(map[string]Node{
		"x": NewLeaf("1"),
		"y": NewLeaf(float64(2)),
	})
	b := EMPTY.
		UpdateImmediateChild("y", NewLeaf(float64(2))).
		UpdateImmediateChild("x", NewLeaf("1"))

	if a.Hash() != b.Hash() {
		t.Fatalf("hashes should match regardless of insertion order: %s vs %s", a.Hash(), b.Hash())
	}
}

func TestHashDiffersOnContentChange(t *testing.T) {
	a := NewLeaf("1")
	b := NewLeaf("2")
	if a.Hash() == b.Hash() {
		t.Fatal("different leaf values should hash differently")
	}
}

func TestHashDiffersLeafVsNodeSameBytes(t *testing.T) {
	leaf := NewLeaf("a")
	internal := FromChildren(map[string]Node{"k": NewLeaf("v")})
	if leaf.Hash() == internal.Hash() {
		t.Fatal("leaf and internal node hashes should never collide by construction")
	}
}

func TestForEachChildOrder(t *testing.T) {
	n := FromChildren(map[string]Node{
		"b": NewLeaf("2"),
		"a": NewLeaf("1"),
		"c": NewLeaf("3"),
	})
	var seen []string
	n.ForEachChild(func(key string, child Node) bool {
		seen = append(seen, key)
		return true
	})
	want := []string{"a", "b", "c"}
	for i, k := range want {
		if seen[i] != k {
			t.Fatalf("ForEachChild order = %v, want %v", seen, want)
		}
	}
}

func TestForEachChildEarlyStop(t *testing.T) {
	n := FromChildren(map[string]Node{
		"a": NewLeaf("1"),
		"b": NewLeaf("2"),
	})
	count := 0
	n.ForEachChild(func(key string, child Node) bool {
		count++
		return false
	})
	if count != 1 {
		t.Fatalf("expected early stop after 1 child, got %d", count)
	}
}

func TestFromChildrenDropsEmpty(t *testing.T) {
	n := FromChildren(map[string]Node{"a": EMPTY})
	if n != EMPTY {
		t.Fatal("FromChildren with only EMPTY children should collapse to EMPTY")
	}
}
