// Package logger provides structured logging for synctree, built on
// go.uber.org/zap. Packages that log (writetree, view, synctree and
// the listen providers) take a *zap.SugaredLogger as a constructor
// argument rather than reaching for the package global directly; the
// global here backs
// the CLI and any code that has no logger of its own to thread through.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is the package-level logger. Safe to use before
	// Initialize is called: it starts as a no-op sink.
	Logger *zap.SugaredLogger
	// JSONOutput records whether Initialize selected JSON output.
	JSONOutput bool
)

func init() {
	// A no-op logger at package load time prevents nil-pointer panics
	// if logging happens before Initialize runs.
	Logger = zap.NewNop().Sugar()
}

// Initialize sets up the global logger. jsonOutput selects structured
// JSON (for machine consumption / production) over the minimal color
// console encoder (for interactive use).
func Initialize(jsonOutput bool) error {
	JSONOutput = jsonOutput

	if theme := os.Getenv("SYNCTREE_LOG_THEME"); theme != "" {
		SetTheme(theme)
	}

	var zapLogger *zap.Logger
	var err error

	if jsonOutput {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		zapLogger, err = cfg.Build()
	} else {
		zapLogger = zap.New(
			zapcore.NewCore(
				newMinimalEncoder(),
				zapcore.AddSync(os.Stdout),
				zap.InfoLevel,
			),
		)
	}
	if err != nil {
		return err
	}

	Logger = zapLogger.Sugar()
	return nil
}

// InitializeAtLevel is like Initialize but pins the minimum level,
// used by the CLI's -v/-vv/-vvv flags via VerbosityToLevel.
func InitializeAtLevel(jsonOutput bool, level zapcore.Level) error {
	JSONOutput = jsonOutput

	var zapLogger *zap.Logger
	var err error

	if jsonOutput {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(level)
		zapLogger, err = cfg.Build()
	} else {
		zapLogger = zap.New(
			zapcore.NewCore(
				newMinimalEncoder(),
				zapcore.AddSync(os.Stdout),
				level,
			),
		)
	}
	if err != nil {
		return err
	}

	Logger = zapLogger.Sugar()
	return nil
}

// Nop returns a logger that discards everything, for tests and for
// packages that were not handed a logger explicitly.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// Cleanup flushes any buffered log entries. Call before process exit.
func Cleanup() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}
