package logging

import (
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// FileTarget selects where file output goes: nowhere, the default file in
// the log directory, or an explicit path.
type FileTarget struct {
	enabled bool
	path    string
}

var (
	// NoFile disables the file sink.
	NoFile = FileTarget{}
	// DefaultFile writes to DefaultFileName inside the log directory.
	DefaultFile = FileTarget{enabled: true}
)

// FilePath targets an explicit log file. Its directory must exist.
func FilePath(path string) FileTarget {
	if path == "" {
		return NoFile
	}
	return FileTarget{enabled: true, path: path}
}

// ParseFileTarget reads boolean words as NoFile/DefaultFile and anything
// else as an explicit path.
func ParseFileTarget(raw string) FileTarget {
	raw = strings.TrimSpace(raw)
	switch strings.ToLower(raw) {
	case "", "false", "no", "off", "0":
		return NoFile
	case "true", "yes", "on", "1":
		return DefaultFile
	default:
		return FilePath(raw)
	}
}

// Enabled reports whether file output is on.
func (t FileTarget) Enabled() bool {
	return t.enabled
}

// Path returns the explicit path, or "" for NoFile and DefaultFile.
func (t FileTarget) Path() string {
	return t.path
}

func (t FileTarget) String() string {
	switch {
	case !t.enabled:
		return "false"
	case t.path == "":
		return "true"
	default:
		return t.path
	}
}

// UnmarshalYAML accepts a boolean or a path string.
func (t *FileTarget) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.Newf("log file: expected boolean or path at line %d", node.Line)
	}
	if node.Tag == "!!bool" {
		var enabled bool
		if err := node.Decode(&enabled); err != nil {
			return errors.Wrap(err, "log file")
		}
		if enabled {
			*t = DefaultFile
		} else {
			*t = NoFile
		}
		return nil
	}
	*t = ParseFileTarget(node.Value)
	return nil
}
