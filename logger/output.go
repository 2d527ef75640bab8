package logger

// OutputCategory controls WHAT kind of information is shown,
// independent of log severity. The sync core groups its chatter into
// four categories so a caller can dial in exactly the traffic they
// care about without drowning in the rest.
type OutputCategory int

const (
	// OutputRegistration covers addEventRegistration/removeEventRegistration
	// lifecycle: sync point creation/teardown, tag assignment.
	OutputRegistration OutputCategory = iota
	// OutputDispatch covers applyOperationToSyncPoints traversal and
	// per-view event emission.
	OutputDispatch
	// OutputListen covers listen-provider start/stop and hash-check
	// traffic.
	OutputListen
	// OutputWrites covers pending-write application, ack, and revert.
	OutputWrites
)

var categoryLevels = map[OutputCategory]int{
	OutputRegistration: VerbosityInfo,
	OutputDispatch:     VerbosityDebug,
	OutputListen:       VerbosityInfo,
	OutputWrites:       VerbosityInfo,
}

// ShouldOutput reports whether the given category should be shown at
// the given verbosity.
func ShouldOutput(verbosity int, category OutputCategory) bool {
	min, ok := categoryLevels[category]
	if !ok {
		return verbosity >= VerbosityDebug
	}
	return verbosity >= min
}

// Enabled reports whether category should be shown at the process's
// current verbosity (see SetVerbosity). Call sites use this to gate a
// Debugw/Infow call without threading a verbosity value through.
func Enabled(category OutputCategory) bool {
	return ShouldOutput(CurrentVerbosity, category)
}
