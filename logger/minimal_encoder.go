package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// Color codes.
const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

// theme is a named color palette for the console encoder.
type theme struct {
	fg     string
	id     string
	number string
	warn   string
	warnBg string
	err    string
	errBg  string
}

var everforest = theme{
	fg:     "\x1b[38;5;223m",
	id:     "\x1b[38;5;109m",
	number: "\x1b[38;5;108m",
	warn:   "\x1b[38;5;179m",
	warnBg: "\x1b[48;5;58m",
	err:    "\x1b[38;5;167m",
	errBg:  "\x1b[48;5;52m",
}

var gruvbox = theme{
	fg:     "\x1b[38;5;223m",
	id:     "\x1b[38;5;109m",
	number: "\x1b[38;5;175m",
	warn:   "\x1b[38;5;214m",
	warnBg: "\x1b[48;5;58m",
	err:    "\x1b[38;5;167m",
	errBg:  "\x1b[48;5;88m",
}

var currentTheme = "everforest"

// SetTheme configures the color scheme for log output. Unknown themes
// are ignored, leaving the current theme unchanged.
func SetTheme(name string) {
	if name == "everforest" || name == "gruvbox" {
		currentTheme = name
	}
}

func activeTheme() theme {
	if currentTheme == "gruvbox" {
		return gruvbox
	}
	return everforest
}

// minimalEncoder renders a calm, single-line console format:
//
//	13:04:35  registration  new sync point  path=/a query_id=default
type minimalEncoder struct {
	zapcore.Encoder
}

func newMinimalEncoder() *minimalEncoder {
	return &minimalEncoder{Encoder: zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	return &minimalEncoder{Encoder: enc.Encoder.Clone()}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	th := activeTheme()
	final := buffer.NewPool().Get()

	final.AppendString(th.fg)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	if ent.Level != zapcore.InfoLevel {
		final.AppendString("  ")
		final.AppendString(levelColorString(ent.Level, th))
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(ent.LoggerName)
	}

	final.AppendString("  ")
	final.AppendString(ent.Message)

	if len(fields) > 0 {
		final.AppendString("  ")
		final.AppendString(extractFieldValues(fields, th))
	}

	final.AppendString("\n")
	return final, nil
}

func levelColorString(level zapcore.Level, th theme) string {
	switch level {
	case zapcore.WarnLevel:
		return colorBold + th.warnBg + th.warn + "WARN" + colorReset
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return colorBold + th.errBg + th.err + level.CapitalString() + colorReset
	default:
		return ""
	}
}

func getFieldValue(field zapcore.Field) string {
	switch field.Type {
	case zapcore.StringType:
		return field.String
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type,
		zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type:
		return fmt.Sprintf("%d", field.Integer)
	case zapcore.BoolType:
		return fmt.Sprintf("%t", field.Integer != 0)
	default:
		if field.Interface != nil {
			return fmt.Sprintf("%v", field.Interface)
		}
		return ""
	}
}

// extractFieldValues renders "key=value" pairs, coloring identifiers
// and counts so they stand out against the message text.
func extractFieldValues(fields []zapcore.Field, th theme) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		val := getFieldValue(f)
		if val == "" {
			continue
		}
		switch f.Key {
		case FieldPath, FieldQueryID, FieldTag, FieldWriteID:
			parts = append(parts, f.Key+"="+th.id+val+colorReset)
		case FieldCount, FieldEventCount, FieldSyncPoints, FieldActiveTags, FieldPendingSize, FieldDurationMS:
			parts = append(parts, f.Key+"="+th.number+val+colorReset)
		default:
			parts = append(parts, f.Key+"="+val)
		}
	}
	return strings.Join(parts, " ")
}
