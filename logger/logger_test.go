package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestInitializeDefaultsToInfo(t *testing.T) {
	if err := Initialize(false); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if Logger == nil {
		t.Fatal("Logger should not be nil after Initialize")
	}
	core := Logger.Desugar().Core()
	if !core.Enabled(zapcore.InfoLevel) || core.Enabled(zapcore.DebugLevel) {
		t.Fatal("Initialize should log at info level and above, not debug")
	}
}

func TestInitializeJSON(t *testing.T) {
	if err := Initialize(true); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !JSONOutput {
		t.Fatal("JSONOutput should be true")
	}
}

func TestVerbosityToLevel(t *testing.T) {
	cases := []struct {
		verbosity int
		want      zapcore.Level
	}{
		{VerbosityUser, zapcore.WarnLevel},
		{VerbosityInfo, zapcore.InfoLevel},
		{VerbosityDebug, zapcore.DebugLevel},
		{VerbosityTrace, zapcore.DebugLevel},
		{99, zapcore.DebugLevel},
	}
	for _, c := range cases {
		if got := VerbosityToLevel(c.verbosity); got != c.want {
			t.Errorf("VerbosityToLevel(%d) = %v, want %v", c.verbosity, got, c.want)
		}
	}
}

func TestShouldOutput(t *testing.T) {
	if ShouldOutput(VerbosityUser, OutputDispatch) {
		t.Error("dispatch chatter should be hidden at default verbosity")
	}
	if !ShouldOutput(VerbosityDebug, OutputDispatch) {
		t.Error("dispatch chatter should show at -vv")
	}
	if !ShouldOutput(VerbosityInfo, OutputRegistration) {
		t.Error("registration lifecycle should show at -v")
	}
}

func TestSetThemeIgnoresUnknown(t *testing.T) {
	SetTheme("everforest")
	SetTheme("not-a-real-theme")
	if currentTheme != "everforest" {
		t.Errorf("unknown theme should be ignored, got %q", currentTheme)
	}
	SetTheme("gruvbox")
	if currentTheme != "gruvbox" {
		t.Errorf("expected gruvbox, got %q", currentTheme)
	}
	SetTheme("everforest")
}

func TestNop(t *testing.T) {
	l := Nop()
	if l == nil {
		t.Fatal("Nop() returned nil")
	}
	l.Infow("this should not panic", "k", "v")
}
