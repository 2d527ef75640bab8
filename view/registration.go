package view

// EventRegistration identifies one external listener attached to a
// View. The core treats registrations as opaque tokens: it never
// invokes them directly (events are returned synchronously, never
// dispatched), it only needs to tell them apart so
// RemoveEventRegistration can target one specific listener out of
// several sharing a query.
type EventRegistration interface {
	// Equal reports whether other identifies the same listener slot.
	Equal(other EventRegistration) bool
}

// FuncRegistration adapts a comparable opaque value (a channel, a
// pointer, a request id) into an EventRegistration.
type FuncRegistration struct {
	ID any
}

func (r FuncRegistration) Equal(other EventRegistration) bool {
	o, ok := other.(FuncRegistration)
	return ok && o.ID == r.ID
}
