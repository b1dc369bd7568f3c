package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	var console bytes.Buffer
	logger, err := New(Options{Level: "info", Console: &console})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger == nil {
		t.Fatalf("expected logger instance")
	}
	defer logger.Close()

	if logger.Name() != DefaultName {
		t.Fatalf("expected default name %q, got %q", DefaultName, logger.Name())
	}
	if logger.FilePath() != "" {
		t.Fatalf("expected file output disabled, got %s", logger.FilePath())
	}
}

func TestConsoleFilteredFileCapturesEverything(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "run.log")

	logger, err := New(Options{
		Level:   "WARNING",
		File:    FilePath(path),
		Name:    "audit",
		Console: &console,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if got := logger.ConsoleLevel(); got != zapcore.WarnLevel {
		t.Fatalf("expected console level warn, got %s", got)
	}
	if got := logger.FileLevel(); got != zapcore.DebugLevel {
		t.Fatalf("expected file level debug, got %s", got)
	}

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	out := console.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Fatalf("console should only contain warnings, got %q", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "[WARN]") || !strings.Contains(out, "(audit)") {
		t.Fatalf("unexpected console output %q", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	for _, msg := range []string{"debug message", "info message", "warn message"} {
		if !bytes.Contains(data, []byte(msg)) {
			t.Fatalf("expected %q in log file, got %q", msg, data)
		}
	}
}

func TestErrorStacktraceOnlyInFile(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "run.log")

	logger, err := New(Options{
		Level:   "info",
		File:    FilePath(path),
		Console: &console,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Error("boom")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	out := console.String()
	if lines := strings.Count(out, "\n"); lines != 1 {
		t.Fatalf("expected a single console line, got %d: %q", lines, out)
	}
	if strings.Contains(out, "TestErrorStacktraceOnlyInFile") {
		t.Fatalf("console output should not carry a stack trace, got %q", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !bytes.Contains(data, []byte("TestErrorStacktraceOnlyInFile")) {
		t.Fatalf("expected stack trace in log file, got %q", data)
	}
}

func TestDefaultFileUnderLogDirWithPID(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "logs")

	logger, err := New(Options{File: DefaultFile, LogDir: logDir, Console: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer logger.Close()

	path := logger.FilePath()
	if filepath.Dir(path) != logDir {
		t.Fatalf("expected log file in %s, got %s", logDir, path)
	}
	if !strings.Contains(filepath.Base(path), "_"+strconv.Itoa(os.Getpid())+".log") {
		t.Fatalf("expected pid in file name, got %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected log file to exist: %v", err)
	}
}

func TestExplicitFileMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "run.log")

	_, err := New(Options{File: FilePath(path), Console: &bytes.Buffer{}})
	if err == nil {
		t.Fatalf("expected error for missing log directory")
	}
	if !errors.Is(err, ErrLogDirNotExist) {
		t.Fatalf("expected ErrLogDirNotExist, got %v", err)
	}
}

func TestDefaultFileRequiresLogDir(t *testing.T) {
	if _, err := New(Options{File: DefaultFile, Console: &bytes.Buffer{}}); err == nil {
		t.Fatalf("expected error without log directory")
	}
}

func TestLevelFallsBackToEnvironment(t *testing.T) {
	t.Setenv(LevelEnv, "error")

	logger, err := New(Options{Console: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer logger.Close()

	if got := logger.ConsoleLevel(); got != zapcore.ErrorLevel {
		t.Fatalf("expected error level from environment, got %s", got)
	}
}

func TestLevelDefaultsToInfo(t *testing.T) {
	t.Setenv(LevelEnv, "")

	logger, err := New(Options{Console: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer logger.Close()

	if got := logger.ConsoleLevel(); got != zapcore.InfoLevel {
		t.Fatalf("expected info level, got %s", got)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Options{Level: "verbose", Console: &bytes.Buffer{}})
	if !errors.Is(err, ErrUnknownLevel) {
		t.Fatalf("expected ErrUnknownLevel, got %v", err)
	}
}

func TestSetConsoleLevel(t *testing.T) {
	var console bytes.Buffer
	logger, err := New(Options{Level: "error", Console: &console})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer logger.Close()

	logger.Info("hidden")
	logger.SetConsoleLevel(zapcore.InfoLevel)
	logger.Info("shown")

	if strings.Contains(console.String(), "hidden") || !strings.Contains(console.String(), "shown") {
		t.Fatalf("unexpected console output %q", console.String())
	}
}

func TestJSONFormat(t *testing.T) {
	var console bytes.Buffer
	logger, err := New(Options{Level: "info", Format: FormatJSON, Console: &console})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hello")
	_ = logger.Close()

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(console.Bytes()), &record); err != nil {
		t.Fatalf("expected JSON record, got %q: %v", console.String(), err)
	}
	if record["msg"] != "hello" {
		t.Fatalf("unexpected message: %v", record["msg"])
	}
	if _, ok := record["timestamp"]; !ok {
		t.Fatalf("expected timestamp key in %v", record)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"":         zapcore.InfoLevel,
		"DEBUG":    zapcore.DebugLevel,
		" info ":   zapcore.InfoLevel,
		"Warning":  zapcore.WarnLevel,
		"warn":     zapcore.WarnLevel,
		"ERROR":    zapcore.ErrorLevel,
		"CRITICAL": zapcore.FatalLevel,
		"10":       zapcore.DebugLevel,
		"20":       zapcore.InfoLevel,
		"30":       zapcore.WarnLevel,
		"40":       zapcore.ErrorLevel,
		"50":       zapcore.FatalLevel,
	}
	for raw, want := range cases {
		got, err := ParseLevel(raw)
		if err != nil {
			t.Fatalf("ParseLevel(%q) returned error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", raw, got, want)
		}
	}

	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(""); err != nil || f != FormatConsole {
		t.Fatalf("expected console format, got %q (%v)", f, err)
	}
	if f, err := ParseFormat("JSON"); err != nil || f != FormatJSON {
		t.Fatalf("expected json format, got %q (%v)", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestSupportsColor(t *testing.T) {
	if SupportsColor(&bytes.Buffer{}) {
		t.Fatalf("buffers are never terminals")
	}

	t.Setenv("NO_COLOR", "1")
	if supportsColor(true) {
		t.Fatalf("NO_COLOR must disable colors")
	}
}
