package logging

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"go.uber.org/zap/zapcore"
)

// ErrUnknownLevel indicates a level name or number that cannot be mapped.
var ErrUnknownLevel = errors.New("unknown log level")

var levelNames = map[string]zapcore.Level{
	"debug":    zapcore.DebugLevel,
	"info":     zapcore.InfoLevel,
	"warn":     zapcore.WarnLevel,
	"warning":  zapcore.WarnLevel,
	"error":    zapcore.ErrorLevel,
	"dpanic":   zapcore.DPanicLevel,
	"panic":    zapcore.PanicLevel,
	"critical": zapcore.FatalLevel,
	"fatal":    zapcore.FatalLevel,
}

// ParseLevel maps a level name (case insensitive) or a numeric level
// (10 debug, 20 info, 30 warn, 40 error, 50 critical) to a zap level.
// An empty string selects INFO.
func ParseLevel(raw string) (zapcore.Level, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return zapcore.InfoLevel, nil
	}
	if level, ok := levelNames[name]; ok {
		return level, nil
	}

	if n, err := strconv.Atoi(name); err == nil {
		switch {
		case n <= 10:
			return zapcore.DebugLevel, nil
		case n <= 20:
			return zapcore.InfoLevel, nil
		case n <= 30:
			return zapcore.WarnLevel, nil
		case n <= 40:
			return zapcore.ErrorLevel, nil
		default:
			return zapcore.FatalLevel, nil
		}
	}

	return zapcore.InvalidLevel, errors.Wrapf(ErrUnknownLevel, "%q", raw)
}

var levelColors = map[zapcore.Level]*color.Color{
	zapcore.DebugLevel:  color.New(color.FgMagenta),
	zapcore.InfoLevel:   color.New(color.FgGreen),
	zapcore.WarnLevel:   color.New(color.FgYellow),
	zapcore.ErrorLevel:  color.New(color.FgRed, color.Bold),
	zapcore.DPanicLevel: color.New(color.FgRed, color.Bold),
	zapcore.PanicLevel:  color.New(color.FgRed, color.Bold),
	zapcore.FatalLevel:  color.New(color.FgRed, color.Bold),
}

func init() {
	// The console writer is checked with SupportsColor, not stdout.
	for _, c := range levelColors {
		c.EnableColor()
	}
}

func bracketLevelEncoder(colored bool) zapcore.LevelEncoder {
	return func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		s := "[" + level.CapitalString() + "]"
		if c, ok := levelColors[level]; ok && colored {
			s = c.Sprint(s)
		}
		enc.AppendString(s)
	}
}
