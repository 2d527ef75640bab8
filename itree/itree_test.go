package itree

import (
	"testing"

	"github.com/teranos/synctree/path"
)

func TestEmptyTree(t *testing.T) {
	tr := Empty[int]()
	if !tr.IsEmpty() {
		t.Fatal("new tree should be empty")
	}
	if tr.Get(path.New("a")) != nil {
		t.Fatal("Get on empty tree should be nil")
	}
}

func TestSetGet(t *testing.T) {
	tr := Empty[string]()
	tr2 := tr.Set(path.New("a", "b"), "hello")

	if tr.Get(path.New("a", "b")) != nil {
		t.Fatal("original tree must not be mutated by Set")
	}
	if got := tr2.Get(path.New("a", "b")); got == nil || *got != "hello" {
		t.Fatalf("Get(a/b) = %v, want hello", got)
	}
	if tr2.Get(path.New("a")) != nil {
		t.Fatal("intermediate path a has no value of its own")
	}
}

func TestSetRoot(t *testing.T) {
	tr := Empty[int]().Set(path.Empty, 42)
	got := tr.Get(path.Empty)
	if got == nil || *got != 42 {
		t.Fatalf("Get(root) = %v, want 42", got)
	}
}

func TestRemove(t *testing.T) {
	tr := Empty[int]().Set(path.New("a"), 1).Set(path.New("a", "b"), 2)
	tr2 := tr.Remove(path.New("a"))

	if tr2.Get(path.New("a")) != nil {
		t.Fatal("value at a should be gone")
	}
	if got := tr2.Get(path.New("a", "b")); got == nil || *got != 2 {
		t.Fatal("descendant a/b should survive removing a's own value")
	}
	// original unaffected
	if got := tr.Get(path.New("a")); got == nil || *got != 1 {
		t.Fatal("original tree should be untouched by Remove")
	}
}

func TestRemoveCollapsesEmptySubtree(t *testing.T) {
	tr := Empty[int]().Set(path.New("a", "b"), 1)
	tr2 := tr.Remove(path.New("a", "b"))
	if !tr2.IsEmpty() {
		t.Fatal("removing the only value should leave the tree empty")
	}
}

func TestSubtree(t *testing.T) {
	tr := Empty[int]().Set(path.New("a", "b"), 1).Set(path.New("a", "c"), 2)
	sub := tr.Subtree(path.New("a"))
	if got := sub.Get(path.New("b")); got == nil || *got != 1 {
		t.Fatal("subtree should expose b relative to a")
	}
	if got := sub.Get(path.New("c")); got == nil || *got != 2 {
		t.Fatal("subtree should expose c relative to a")
	}
}

func TestSubtreeOfMissingPathIsEmptyNotNil(t *testing.T) {
	tr := Empty[int]()
	sub := tr.Subtree(path.New("nope"))
	if sub == nil || !sub.IsEmpty() {
		t.Fatal("Subtree of a missing path should be a non-nil empty tree")
	}
}

func TestForeachOnPath(t *testing.T) {
	tr := Empty[int]().
		Set(path.Empty, 0).
		Set(path.New("a"), 1).
		Set(path.New("a", "b"), 2).
		Set(path.New("a", "b", "c"), 3)

	var visited []path.Path
	var values []int
	tr.ForeachOnPath(path.New("a", "b", "c", "d"), func(p path.Path, v int) {
		visited = append(visited, p)
		values = append(values, v)
	})

	if len(values) != 4 {
		t.Fatalf("expected 4 ancestors with values, got %d: %v", len(values), values)
	}
	for i, want := range []int{0, 1, 2, 3} {
		if values[i] != want {
			t.Errorf("visited[%d] = %d, want %d", i, values[i], want)
		}
	}
}

func TestFindOnPath(t *testing.T) {
	tr := Empty[string]().Set(path.New("a"), "A").Set(path.New("a", "b"), "AB")

	got, ok := FindOnPath(tr, path.New("a", "b", "c"), func(p path.Path, v string) (string, bool) {
		if v == "AB" {
			return v, true
		}
		return "", false
	})
	if !ok || got != "AB" {
		t.Fatalf("FindOnPath = (%v, %v), want (AB, true)", got, ok)
	}
}

func TestFindOnPathNoMatch(t *testing.T) {
	tr := Empty[string]().Set(path.New("a"), "A")
	_, ok := FindOnPath(tr, path.New("a"), func(p path.Path, v string) (string, bool) {
		return "", false
	})
	if ok {
		t.Fatal("expected no match")
	}
}

func TestFoldCountsNodes(t *testing.T) {
	tr := Empty[int]().Set(path.New("a", "b"), 1).Set(path.New("a", "c"), 2)

	count := Fold(tr, func(rel path.Path, value *int, childResults []int) int {
		total := 0
		if value != nil {
			total = 1
		}
		for _, c := range childResults {
			total += c
		}
		return total
	})
	if count != 2 {
		t.Fatalf("Fold total = %d, want 2", count)
	}
}

func TestForEachChildSortedOrder(t *testing.T) {
	tr := Empty[int]().Set(path.New("c"), 1).Set(path.New("a"), 2).Set(path.New("b"), 3)
	var keys []string
	tr.ForEachChild(func(key string, child *Tree[int]) {
		keys = append(keys, key)
	})
	want := []string{"a", "b", "c"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("ForEachChild order = %v, want %v", keys, want)
		}
	}
}
