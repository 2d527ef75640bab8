// Package itree implements ImmutableTree<T>: a persistent map from
// path.Path to an optional value, plus an eager child map, per
// spec.md section 4.1.
//
// The two-level "value + children map" shape is grounded on the
// teacher's sync.Tree / sync.group nesting (groups map[Hash]*group,
// group.leaves map[Hash]struct{}), generalized from a fixed two-level
// hierarchy to arbitrary depth keyed by path.Path segments.
//
// All mutations return a new Tree sharing unchanged structure with the
// original: Set/Remove only reallocate the nodes along the path being
// changed, so retaining a Tree across a mutation of a derived Tree is
// always safe.
package itree

import (
	"sort"

	"github.com/teranos/synctree/path"
)

// Tree is a persistent path-keyed map from path.Path to *T.
type Tree[T any] struct {
	value    *T
	children map[string]*Tree[T]
}

// Empty returns an empty tree.
func Empty[T any]() *Tree[T] {
	return &Tree[T]{}
}

// IsEmpty reports whether the tree has no value at its root and no
// children (i.e. it holds nothing at all, anywhere).
func (t *Tree[T]) IsEmpty() bool {
	if t == nil {
		return true
	}
	return t.value == nil && len(t.children) == 0
}

// Value returns the value stored at the tree's own root, or nil.
func (t *Tree[T]) Value() *T {
	if t == nil {
		return nil
	}
	return t.value
}

// Children returns the tree's immediate children, keyed by child name.
// The returned map must not be mutated by the caller.
func (t *Tree[T]) Children() map[string]*Tree[T] {
	if t == nil {
		return nil
	}
	return t.children
}

// Get returns the value stored at p, or nil if none.
func (t *Tree[T]) Get(p path.Path) *T {
	node := t.subtree(p)
	if node == nil {
		return nil
	}
	return node.value
}

// subtree walks to the node at p without copying, or returns nil if
// the path is not present in the sparse structure.
func (t *Tree[T]) subtree(p path.Path) *Tree[T] {
	if t == nil {
		return nil
	}
	if p.IsEmpty() {
		return t
	}
	child, ok := t.children[p.Front()]
	if !ok {
		return nil
	}
	return child.subtree(p.PopFront())
}

// Subtree returns the tree rooted at p. Never nil: an absent path
// yields an empty tree.
func (t *Tree[T]) Subtree(p path.Path) *Tree[T] {
	node := t.subtree(p)
	if node == nil {
		return Empty[T]()
	}
	return node
}

// Set returns a new tree with value stored at p.
func (t *Tree[T]) Set(p path.Path, value T) *Tree[T] {
	if t == nil {
		t = Empty[T]()
	}
	if p.IsEmpty() {
		return &Tree[T]{value: &value, children: t.children}
	}
	key := p.Front()
	child := t.children[key]
	newChild := child.Set(p.PopFront(), value)

	next := t.clone()
	next.setChild(key, newChild)
	return next
}

// Remove returns a new tree with the value at p (and, if p is now
// devoid of both value and descendants, the p subtree entirely)
// removed.
func (t *Tree[T]) Remove(p path.Path) *Tree[T] {
	if t == nil {
		return Empty[T]()
	}
	if p.IsEmpty() {
		if len(t.children) == 0 {
			return Empty[T]()
		}
		return &Tree[T]{children: t.children}
	}
	key := p.Front()
	child, ok := t.children[key]
	if !ok {
		return t
	}
	newChild := child.Remove(p.PopFront())

	next := t.clone()
	next.setChild(key, newChild)
	return next
}

func (t *Tree[T]) clone() *Tree[T] {
	next := &Tree[T]{value: t.value}
	if len(t.children) > 0 {
		next.children = make(map[string]*Tree[T], len(t.children))
		for k, c := range t.children {
			next.children[k] = c
		}
	}
	return next
}

func (t *Tree[T]) setChild(key string, child *Tree[T]) {
	if child.IsEmpty() {
		if t.children != nil {
			delete(t.children, key)
		}
		return
	}
	if t.children == nil {
		t.children = make(map[string]*Tree[T], 1)
	}
	t.children[key] = child
}

// ForEachChild invokes fn for each immediate child in sorted key
// order.
func (t *Tree[T]) ForEachChild(fn func(key string, child *Tree[T])) {
	if t == nil || len(t.children) == 0 {
		return
	}
	keys := make([]string, 0, len(t.children))
	for k := range t.children {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fn(k, t.children[k])
	}
}

// ForeachOnPath invokes fn for each ancestor of p (root first,
// inclusive of p itself) that holds a value.
func (t *Tree[T]) ForeachOnPath(p path.Path, fn func(pathToNode path.Path, value T)) {
	t.walkOnPath(path.Empty, p, fn)
}

func (t *Tree[T]) walkOnPath(prefix, remaining path.Path, fn func(path.Path, T)) {
	if t == nil {
		return
	}
	if t.value != nil {
		fn(prefix, *t.value)
	}
	if remaining.IsEmpty() {
		return
	}
	key := remaining.Front()
	child, ok := t.children[key]
	if !ok {
		return
	}
	child.walkOnPath(prefix.Child(key), remaining.PopFront(), fn)
}

// FindOnPath walks root -> p and returns the first non-nil result of
// pred, or the zero value and false if none matched. A free function
// is used instead of a method because Go methods cannot introduce
// additional type parameters.
func FindOnPath[T, R any](t *Tree[T], p path.Path, pred func(pathToNode path.Path, value T) (R, bool)) (R, bool) {
	return findOnPathTyped(t, path.Empty, p, pred)
}

func findOnPathTyped[T, R any](t *Tree[T], prefix, remaining path.Path, pred func(path.Path, T) (R, bool)) (R, bool) {
	var zero R
	if t == nil {
		return zero, false
	}
	if t.value != nil {
		if r, ok := pred(prefix, *t.value); ok {
			return r, true
		}
	}
	if remaining.IsEmpty() {
		return zero, false
	}
	key := remaining.Front()
	child, ok := t.children[key]
	if !ok {
		return zero, false
	}
	return findOnPathTyped(child, prefix.Child(key), remaining.PopFront(), pred)
}

// Fold performs a bottom-up structural fold: fn is invoked once per
// node (including nodes with no value) with the path relative to the
// tree's own root, that node's value (nil if absent), and the already
// computed results for its children (in sorted key order).
func Fold[T, R any](t *Tree[T], fn func(relPath path.Path, value *T, childResults []R) R) R {
	return foldAt(t, path.Empty, fn)
}

func foldAt[T, R any](t *Tree[T], prefix path.Path, fn func(path.Path, *T, []R) R) R {
	var childResults []R
	t.ForEachChild(func(key string, child *Tree[T]) {
		childResults = append(childResults, foldAt(child, prefix.Child(key), fn))
	})
	return fn(prefix, t.Value(), childResults)
}
