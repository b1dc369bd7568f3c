package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultName is used when Options.Name is empty.
const DefaultName = "root"

// LevelEnv is consulted when Options.Level is empty.
const LevelEnv = "LOGLEVEL"

// ErrLogDirNotExist indicates the directory of an explicit log file is missing.
var ErrLogDirNotExist = errors.New("log directory does not exist")

// Format selects the record encoding.
type Format string

const (
	// FormatConsole renders `time: [LEVEL] (name) caller message fields` lines.
	FormatConsole Format = "console"
	// FormatJSON renders one JSON object per record.
	FormatJSON Format = "json"
)

// ParseFormat maps a format name to a Format; empty selects FormatConsole.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatConsole:
		return FormatConsole, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", errors.Newf("unknown log format %q", raw)
	}
}

// Options configures New.
type Options struct {
	// Level is the console verbosity. Empty falls back to $LOGLEVEL, then INFO.
	Level string
	// File selects the file sink. The zero value disables it.
	File FileTarget
	// Name is the logger name. Empty selects DefaultName.
	Name string
	// LogDir receives the default log file.
	LogDir string
	// Format selects the encoder for both sinks.
	Format Format
	// Console receives filtered output. Defaults to os.Stderr.
	Console io.Writer
}

// Logger is a zap logger bound to its console and file sinks.
type Logger struct {
	*zap.Logger

	name     string
	filePath string
	console  zap.AtomicLevel
	file     *os.File
}

// New builds a logger that writes to the console at the requested level and,
// when enabled, to a log file at DEBUG.
func New(opts Options) (*Logger, error) {
	name := opts.Name
	if name == "" {
		name = DefaultName
	}

	rawLevel := opts.Level
	if rawLevel == "" {
		rawLevel = os.Getenv(LevelEnv)
	}
	level, err := ParseLevel(rawLevel)
	if err != nil {
		return nil, err
	}

	format := opts.Format
	if format == "" {
		format = FormatConsole
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	consoleLevel := zap.NewAtomicLevelAt(level)
	cores := []zapcore.Core{
		zapcore.NewCore(newEncoder(format, SupportsColor(console), format == FormatJSON), zapcore.Lock(zapcore.AddSync(console)), consoleLevel),
	}

	filePath, err := resolveFilePath(opts.File, opts.LogDir)
	if err != nil {
		return nil, err
	}

	var file *os.File
	if filePath != "" {
		file, err = os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, errors.Wrapf(err, "open log file %s", filePath)
		}
		cores = append(cores, zapcore.NewCore(newEncoder(format, false, true), zapcore.Lock(file), zapcore.DebugLevel))
	}

	zl := zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(zapcore.Lock(os.Stderr)),
	).Named(name)

	zl.Debug("logger configured",
		zap.Stringer("console_level", level),
		zap.String("logfile", filePath),
		zap.Int("pid", os.Getpid()),
	)

	return &Logger{
		Logger:   zl,
		name:     name,
		filePath: filePath,
		console:  consoleLevel,
		file:     file,
	}, nil
}

// Name returns the logger name.
func (l *Logger) Name() string {
	return l.name
}

// FilePath returns the log file path, or "" when file output is disabled.
func (l *Logger) FilePath() string {
	return l.filePath
}

// ConsoleLevel returns the minimum level written to the console.
func (l *Logger) ConsoleLevel() zapcore.Level {
	return l.console.Level()
}

// SetConsoleLevel changes the console verbosity. The file sink is unaffected.
func (l *Logger) SetConsoleLevel(level zapcore.Level) {
	l.console.SetLevel(level)
}

// FileLevel returns the minimum level written to the log file.
func (l *Logger) FileLevel() zapcore.Level {
	return zapcore.DebugLevel
}

// Close flushes buffered records and releases the log file.
func (l *Logger) Close() error {
	_ = l.Sync()
	if l.file == nil {
		return nil
	}
	if err := l.file.Close(); err != nil {
		return errors.Wrapf(err, "close log file %s", l.filePath)
	}
	l.file = nil
	return nil
}

// DefaultFileName returns `<caller>_<pid>.log` where caller is the running
// executable's base name without extension.
func DefaultFileName() string {
	caller := filepath.Base(os.Args[0])
	caller = strings.TrimSuffix(caller, filepath.Ext(caller))
	return fmt.Sprintf("%s_%s.log", caller, strconv.Itoa(os.Getpid()))
}

func resolveFilePath(target FileTarget, logDir string) (string, error) {
	switch {
	case !target.Enabled():
		return "", nil
	case target.Path() == "":
		if logDir == "" {
			return "", errors.New("log directory is required for the default log file")
		}
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return "", errors.Wrapf(err, "create log directory %s", logDir)
		}
		return filepath.Join(logDir, DefaultFileName()), nil
	default:
		dir := filepath.Dir(target.Path())
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return "", errors.Wrapf(ErrLogDirNotExist, "%s", dir)
		}
		return target.Path(), nil
	}
}

// newEncoder builds the encoder for one sink. Stack traces of ERROR and
// above are only rendered when stacktraces is set; the console sink in
// console format leaves them to the log file.
func newEncoder(format Format, colored, stacktraces bool) zapcore.Encoder {
	stacktraceKey := ""
	if stacktraces {
		stacktraceKey = "stacktrace"
	}

	if format == FormatJSON {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "timestamp"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.StacktraceKey = stacktraceKey
		return zapcore.NewJSONEncoder(cfg)
	}

	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          "logger",
		CallerKey:        "caller",
		MessageKey:       "msg",
		StacktraceKey:    stacktraceKey,
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05:"),
		EncodeLevel:      bracketLevelEncoder(colored),
		EncodeName:       parenNameEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	})
}

func parenNameEncoder(name string, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("(" + name + ")")
}
