package logger

// Standard field names for consistent structured logging across the
// sync core. Use these constants instead of raw strings.
const (
	// Identity
	FieldPath    = "path"
	FieldQueryID = "query_id"
	FieldTag     = "tag"
	FieldWriteID = "write_id"

	// Operations
	FieldOperation = "operation"
	FieldSource    = "source"

	// Components
	FieldComponent = "component"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts
	FieldCount       = "count"
	FieldEventCount  = "event_count"
	FieldSyncPoints  = "sync_points"
	FieldActiveTags  = "active_tags"
	FieldPendingSize = "pending_writes"

	// Status
	FieldStatus = "status"
	FieldRevert = "revert"
)
