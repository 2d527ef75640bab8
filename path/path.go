// Package path implements the immutable, path-keyed location type
// used throughout the sync core: an ordered sequence of string child
// keys with relative-path arithmetic. The empty path denotes the root.
package path

import "strings"

// Path is an immutable ordered sequence of child keys. The zero value
// is the empty (root) path. Paths are compared by value: two Paths
// with equal segments are Equals regardless of how they were built.
type Path struct {
	segments []string
}

// Empty is the root path.
var Empty = Path{}

// New builds a Path from a slice of child keys. The slice is copied,
// so the caller may reuse or mutate it afterward.
func New(segments ...string) Path {
	if len(segments) == 0 {
		return Empty
	}
	cp := make([]string, len(segments))
	copy(cp, segments)
	return Path{segments: cp}
}

// Parse splits a slash-separated string into a Path. Leading, trailing,
// and repeated slashes are ignored, so "/a//b/" and "a/b" are equal.
func Parse(s string) Path {
	parts := strings.Split(s, "/")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return New(segments...)
}

// IsEmpty reports whether this is the root path.
func (p Path) IsEmpty() bool {
	return len(p.segments) == 0
}

// Len returns the number of segments.
func (p Path) Len() int {
	return len(p.segments)
}

// Front returns the first child key. Panics if the path is empty;
// callers must check IsEmpty first.
func (p Path) Front() string {
	if p.IsEmpty() {
		panic("path: Front called on empty path")
	}
	return p.segments[0]
}

// Back returns the last child key. Panics if the path is empty.
func (p Path) Back() string {
	if p.IsEmpty() {
		panic("path: Back called on empty path")
	}
	return p.segments[len(p.segments)-1]
}

// PopFront returns the path with its first segment removed. Panics if
// the path is empty.
func (p Path) PopFront() Path {
	if p.IsEmpty() {
		panic("path: PopFront called on empty path")
	}
	return New(p.segments[1:]...)
}

// PopBack returns the path with its last segment removed. Panics if
// the path is empty.
func (p Path) PopBack() Path {
	if p.IsEmpty() {
		panic("path: PopBack called on empty path")
	}
	return New(p.segments[:len(p.segments)-1]...)
}

// Child returns a new path with key appended.
func (p Path) Child(key string) Path {
	return New(append(append([]string{}, p.segments...), key)...)
}

// Join concatenates two paths.
func (p Path) Join(other Path) Path {
	return New(append(append([]string{}, p.segments...), other.segments...)...)
}

// Contains reports whether other is p itself or a strict descendant of p.
func (p Path) Contains(other Path) bool {
	if len(other.segments) < len(p.segments) {
		return false
	}
	for i, seg := range p.segments {
		if other.segments[i] != seg {
			return false
		}
	}
	return true
}

// RelativeTo returns the path of the receiver relative to ancestor.
// Panics if ancestor is not an ancestor of (or equal to) the receiver
// — callers must establish that with Contains first.
func (p Path) RelativeTo(ancestor Path) Path {
	if !ancestor.Contains(p) {
		panic("path: RelativeTo called with a non-ancestor path")
	}
	return New(p.segments[len(ancestor.segments):]...)
}

// Equals reports whether two paths have identical segments.
func (p Path) Equals(other Path) bool {
	if len(p.segments) != len(other.segments) {
		return false
	}
	for i, seg := range p.segments {
		if other.segments[i] != seg {
			return false
		}
	}
	return true
}

// Segments returns a copy of the path's child keys, root-to-leaf order.
func (p Path) Segments() []string {
	cp := make([]string, len(p.segments))
	copy(cp, p.segments)
	return cp
}

// String renders the path as a slash-separated string, root as "/".
func (p Path) String() string {
	if p.IsEmpty() {
		return "/"
	}
	return "/" + strings.Join(p.segments, "/")
}
