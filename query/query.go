// Package query implements the external Query value type the sync
// core keys its views by: a path plus an optional ordering/filter
// window. QueryParams' bounds shape is modeled after the teacher's
// ats.AttestationFilter (ats/store.go) — pointer-optional bounds plus
// a limit — generalized from actor/context/time filtering to a single
// ordered-index range filter.
package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/teranos/synctree/errors"
	"github.com/teranos/synctree/path"
)

// DefaultIdentifier is the QueryIdentifier of the canonical unfiltered
// query at any path.
const DefaultIdentifier = "default"

// RangeFilter bounds a query along its ordering index. StartAt/EndAt
// are nil when that side is unbounded; Limit of 0 means unlimited.
type RangeFilter struct {
	StartAt *string
	EndAt   *string
	Limit   int
}

// QueryParams describes how a Query orders and filters the children
// at its path. Index is the child key (or a reserved ordering
// sentinel) results are sorted by; empty means unordered / keyed by
// child name. Default marks the canonical unfiltered query.
type QueryParams struct {
	Index   string
	Filter  *RangeFilter
	Default bool
}

// Query is the external, comparable-by-value identifier for a View's
// subscription window.
type Query struct {
	Path   path.Path
	Params QueryParams
}

// New builds the canonical default query at p.
func New(p path.Path) Query {
	return Query{Path: p, Params: QueryParams{Default: true}}
}

// QueryIdentifier returns "default" for the canonical unfiltered
// query, or a canonical string encoding of its params otherwise. Two
// Queries with equal Params must produce the same identifier
// regardless of construction order — RangeFilter fields are rendered
// in a fixed order rather than relying on struct field order.
func (q Query) QueryIdentifier() string {
	if q.Params.Default {
		return DefaultIdentifier
	}
	var b strings.Builder
	b.WriteString("ix=")
	b.WriteString(q.Params.Index)
	if f := q.Params.Filter; f != nil {
		b.WriteString("|start=")
		if f.StartAt != nil {
			b.WriteString(*f.StartAt)
		}
		b.WriteString("|end=")
		if f.EndAt != nil {
			b.WriteString(*f.EndAt)
		}
		b.WriteString("|limit=")
		b.WriteString(strconv.Itoa(f.Limit))
	}
	return b.String()
}

// LoadsAllData reports whether this query, despite possibly being
// ordered, has no bounding filter and therefore observes the complete
// child set — an ordering-only query is subscribable as a default.
func (q Query) LoadsAllData() bool {
	return q.Params.Filter == nil
}

// IsDefault reports whether this is the literal canonical default
// query, as opposed to a query that merely LoadsAllData.
func (q Query) IsDefault() bool {
	return q.Params.Default
}

// GetRef returns the default query at the same path as q.
func (q Query) GetRef() Query {
	return New(q.Path)
}

// MakeQueryKey canonicalizes (path, queryIdentifier) into the string
// key used by SyncTree's tag↔query registry.
func MakeQueryKey(q Query) string {
	return fmt.Sprintf("%s$%s", q.Path.String(), q.QueryIdentifier())
}

// ParseQueryKey reverses MakeQueryKey. Keys without the "$" separator
// are malformed.
func ParseQueryKey(key string) (path.Path, string, error) {
	idx := strings.IndexByte(key, '$')
	if idx < 0 {
		return path.Empty, "", errors.Wrapf(errors.ErrMalformedQueryKey, "key %q", key)
	}
	return path.Parse(key[:idx]), key[idx+1:], nil
}
