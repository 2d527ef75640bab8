package op

// SourceKind discriminates the origin of an Operation.
type SourceKind int

const (
	// SourceUser marks an operation created by a local optimistic write.
	SourceUser SourceKind = iota
	// SourceServer marks an operation delivered by the default/complete
	// server subscription.
	SourceServer
	// SourceServerTaggedQuery marks an operation addressed to one
	// specific filtered server subscription, identified by Tag.
	SourceServerTaggedQuery
)

// Source identifies where an Operation came from. It is a closed sum:
// User, Server, or a tagged query, following the same pattern the
// teacher uses for its protocol.MsgType closed set, but as a real
// closed sum rather than a string enum, per spec.md section 9's design
// note against exposing this as a class hierarchy.
type Source struct {
	kind SourceKind
	tag  uint64
}

// User is the source for locally issued optimistic writes.
var User = Source{kind: SourceUser}

// Server is the source for updates delivered on the default/complete
// server subscription for a path.
var Server = Source{kind: SourceServer}

// ServerTaggedQuery is the source for updates addressed to one
// specific filtered server subscription.
func ServerTaggedQuery(tag uint64) Source {
	return Source{kind: SourceServerTaggedQuery, tag: tag}
}

// Kind reports which variant this Source is.
func (s Source) Kind() SourceKind {
	return s.kind
}

// Tag returns the tag for a SourceServerTaggedQuery source. It is
// meaningless for any other kind.
func (s Source) Tag() uint64 {
	return s.tag
}

// FromUser reports whether this operation originated from a local write.
func (s Source) FromUser() bool {
	return s.kind == SourceUser
}
