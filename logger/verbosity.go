package logger

import "go.uber.org/zap/zapcore"

// Verbosity level constants for CLI flag counts (-v, -vv, -vvv).
const (
	VerbosityUser  = 0 // No flags: results and errors only
	VerbosityInfo  = 1 // -v: info level; the core's category logs are debug-level and stay hidden
	VerbosityDebug = 2 // -vv: debug level: registration, dispatch, listen and write logs
	VerbosityTrace = 3 // -vvv: same output as -vv
)

// VerbosityToLevel maps a verbosity flag count to a zap level.
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch {
	case verbosity <= VerbosityUser:
		return zapcore.WarnLevel
	case verbosity == VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// CurrentVerbosity is the process-wide verbosity flag count, set by
// SetVerbosity. Category-gated call sites read this through Enabled
// rather than threading a verbosity value through every package.
var CurrentVerbosity int

// SetVerbosity records the CLI's -v count for Enabled to consult.
func SetVerbosity(v int) {
	CurrentVerbosity = v
}
