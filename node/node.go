// Package node implements the opaque, content-hashed subtree snapshot
// contract the sync core operates on. A Node never mutates in place:
// every update returns a new Node sharing unchanged structure with its
// parent, the same persistence discipline itree and writetree use.
//
// Hashing follows the domain-separation convention the teacher's
// sync/merkle.go uses for its Merkle tree: distinct byte prefixes for
// leaf vs. internal nodes, and a null-byte separator between a child's
// key and its hash, so no combination of key/value bytes can collide
// across shapes.
package node

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
)

// Node is an immutable snapshot of a database subtree.
type Node interface {
	// GetImmediateChild returns the child at key, or EMPTY if absent.
	GetImmediateChild(key string) Node
	// UpdateImmediateChild returns a new Node with key's subtree
	// replaced by child. Passing EMPTY removes the child.
	UpdateImmediateChild(key string, child Node) Node
	// Hash returns the content hash of this subtree as a hex string.
	Hash() string
	// IsEmpty reports whether this node has no value and no children.
	IsEmpty() bool
	// Value returns the leaf scalar this node carries, or nil for an
	// internal node (one with children but no scalar of its own).
	Value() any
	// ForEachChild invokes fn for each immediate child in key order,
	// stopping early if fn returns false.
	ForEachChild(fn func(key string, child Node) bool)
}

// EMPTY is the distinguished empty node: no value, no children.
var EMPTY Node = &node{}

// node is the only concrete implementation of Node.
type node struct {
	value    any
	children map[string]Node
	hash     string // memoized, computed lazily
}

// NewLeaf builds a leaf node carrying value and no children.
func NewLeaf(value any) Node {
	if value == nil {
		return EMPTY
	}
	return &node{value: value}
}

// FromChildren builds an internal node from a set of named children.
// Children equal to EMPTY are dropped, matching the convention that a
// node with no value and no children collapses to EMPTY.
func FromChildren(children map[string]Node) Node {
	n := &node{}
	for k, c := range children {
		n = n.UpdateImmediateChild(k, c).(*node)
	}
	return normalize(n)
}

func normalize(n *node) Node {
	if n.value == nil && len(n.children) == 0 {
		return EMPTY
	}
	return n
}

func (n *node) GetImmediateChild(key string) Node {
	if n.children == nil {
		return EMPTY
	}
	if c, ok := n.children[key]; ok {
		return c
	}
	return EMPTY
}

func (n *node) UpdateImmediateChild(key string, child Node) Node {
	next := &node{value: n.value}
	if len(n.children) > 0 {
		next.children = make(map[string]Node, len(n.children))
		for k, c := range n.children {
			next.children[k] = c
		}
	}
	if child == nil || child.IsEmpty() {
		if next.children != nil {
			delete(next.children, key)
		}
	} else {
		if next.children == nil {
			next.children = make(map[string]Node, 1)
		}
		next.children[key] = child
	}
	return normalize(next)
}

func (n *node) IsEmpty() bool {
	return n.value == nil && len(n.children) == 0
}

func (n *node) Value() any {
	return n.value
}

func (n *node) ForEachChild(fn func(key string, child Node) bool) {
	if len(n.children) == 0 {
		return
	}
	keys := make([]string, 0, len(n.children))
	for k := range n.children {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !fn(k, n.children[k]) {
			return
		}
	}
}

func (n *node) Hash() string {
	if n.hash != "" {
		return n.hash
	}
	if n.IsEmpty() {
		return emptyHash
	}
	h := sha256.New()
	if n.value != nil {
		h.Write([]byte("leaf:"))
		h.Write([]byte(formatValue(n.value)))
	} else {
		h.Write([]byte("node:"))
		n.ForEachChild(func(key string, child Node) bool {
			h.Write([]byte(key))
			h.Write([]byte{0})
			h.Write([]byte(child.Hash()))
			h.Write([]byte{0})
			return true
		})
	}
	n.hash = hex.EncodeToString(h.Sum(nil))
	return n.hash
}

var emptyHash = func() string {
	h := sha256.Sum256([]byte("empty:"))
	return hex.EncodeToString(h[:])
}()

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return "s:" + t
	case bool:
		if t {
			return "b:1"
		}
		return "b:0"
	case float64:
		return "f:" + formatFloat(t)
	case int:
		return "i:" + formatFloat(float64(t))
	default:
		return "?:"
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
