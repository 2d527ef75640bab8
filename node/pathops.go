package node

import "github.com/teranos/synctree/path"

// GetAtPath walks n down p, returning EMPTY if any segment is absent.
func GetAtPath(n Node, p path.Path) Node {
	if n == nil {
		return EMPTY
	}
	cur := n
	for _, seg := range p.Segments() {
		cur = cur.GetImmediateChild(seg)
	}
	return cur
}

// SetAtPath returns a new tree equal to n except that the subtree at p
// is replaced by value. Intermediate nodes along p are created (or
// replaced) as needed.
func SetAtPath(n Node, p path.Path, value Node) Node {
	if n == nil {
		n = EMPTY
	}
	if p.IsEmpty() {
		return value
	}
	key := p.Front()
	child := SetAtPath(n.GetImmediateChild(key), p.PopFront(), value)
	return n.UpdateImmediateChild(key, child)
}
