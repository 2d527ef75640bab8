package wsprovider

import "github.com/teranos/synctree/node"

// envelope is the JSON message exchanged with the remote listen
// endpoint. It plays the same role as the teacher's sync.Msg, a single
// tagged struct carrying every message shape, but keyed by a
// request id (one per active listen) instead of the peer protocol's
// symmetric hello/need/attestations sequence.
type envelope struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`

	// subscribe
	Path    string  `json:"path,omitempty"`
	QueryID string  `json:"query_id,omitempty"`
	Tag     *uint64 `json:"tag,omitempty"`
	Hash    string  `json:"hash,omitempty"`

	// update
	UpdateKind string              `json:"update_kind,omitempty"`
	UpdatePath string              `json:"update_path,omitempty"`
	Node       *wireNode           `json:"node,omitempty"`
	Children   map[string]wireNode `json:"children,omitempty"`

	// complete
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// wireNode is node.Node flattened to a shape encoding/json can walk.
// A leaf carries Value; an internal node carries Children; never both.
type wireNode struct {
	Value    any                 `json:"value,omitempty"`
	Children map[string]wireNode `json:"children,omitempty"`
}

func toWire(n node.Node) wireNode {
	if n == nil || n.IsEmpty() {
		return wireNode{}
	}
	if v := n.Value(); v != nil {
		return wireNode{Value: v}
	}
	children := make(map[string]wireNode)
	n.ForEachChild(func(key string, child node.Node) bool {
		children[key] = toWire(child)
		return true
	})
	return wireNode{Children: children}
}

func fromWire(w wireNode) node.Node {
	if len(w.Children) == 0 {
		return node.NewLeaf(w.Value)
	}
	children := make(map[string]node.Node, len(w.Children))
	for k, c := range w.Children {
		children[k] = fromWire(c)
	}
	return node.FromChildren(children)
}
