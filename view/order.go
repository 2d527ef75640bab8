package view

import (
	"fmt"
	"sort"

	"github.com/teranos/synctree/node"
	"github.com/teranos/synctree/query"
)

// orderKey extracts the sort key for childKey/childNode under the
// query's ordering index: the child's own key for the default/".key"
// index, the child's scalar for ".value", or the value of a named
// nested field otherwise.
func orderKey(params query.QueryParams, childKey string, child node.Node) string {
	switch params.Index {
	case "", ".key":
		return childKey
	case ".value":
		return scalarString(child.Value())
	default:
		return scalarString(child.GetImmediateChild(params.Index).Value())
	}
}

func scalarString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

type orderedChild struct {
	key   string
	order string
	node  node.Node
}

// orderedChildren returns n's immediate children sorted by the
// query's ordering index, breaking ties by child key.
func orderedChildren(params query.QueryParams, n node.Node) []orderedChild {
	var out []orderedChild
	n.ForEachChild(func(key string, child node.Node) bool {
		out = append(out, orderedChild{key: key, order: orderKey(params, key, child), node: child})
		return true
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].order != out[j].order {
			return out[i].order < out[j].order
		}
		return out[i].key < out[j].key
	})
	return out
}

// windowed applies a query's RangeFilter (start/end bound over the
// ordering key, then a limit) to an already-ordered child list.
func windowed(params query.QueryParams, children []orderedChild) []orderedChild {
	f := params.Filter
	if f == nil {
		return children
	}
	var out []orderedChild
	for _, c := range children {
		if f.StartAt != nil && c.order < *f.StartAt {
			continue
		}
		if f.EndAt != nil && c.order > *f.EndAt {
			continue
		}
		out = append(out, c)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out
}

// materialize rebuilds n's queried window as a plain Node (so the
// result can be diffed and content-hashed like any other Node) plus
// the ordered key list the diff needs for PrevChildKey computation.
func materialize(params query.QueryParams, n node.Node) (node.Node, []string) {
	ordered := windowed(params, orderedChildren(params, n))
	children := make(map[string]node.Node, len(ordered))
	order := make([]string, len(ordered))
	for i, c := range ordered {
		children[c.key] = c.node
		order[i] = c.key
	}
	return node.FromChildren(children), order
}

func prevKey(order []string, key string) string {
	for i, k := range order {
		if k == key {
			if i == 0 {
				return ""
			}
			return order[i-1]
		}
	}
	return ""
}
