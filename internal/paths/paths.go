package paths

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

var (
	// ErrRootNotFound indicates no ancestor directory carries a project marker.
	ErrRootNotFound = errors.New("project root not found")

	// ErrNotFound indicates a relative path could not be located in any ancestor.
	ErrNotFound = errors.New("path not found")
)

// DefaultMarkers are the entries whose presence marks a project root.
var DefaultMarkers = []string{"go.mod", ".git", ".projectroot"}

// Default locations of the project directories, relative to the project root.
const (
	DefaultDataDir         = "data"
	DefaultLogDir          = "logs"
	DefaultPlotDir         = "reports/figures"
	DefaultScriptsDir      = "scripts"
	DefaultNotebookStartup = "notebooks/jupyter_startup.ipy"
)

// Dirs holds per-directory overrides. Empty fields fall back to the defaults,
// relative values are joined to the project root and absolute values are kept.
type Dirs struct {
	Data            string `yaml:"data"`
	Logs            string `yaml:"logs"`
	Plots           string `yaml:"plots"`
	Scripts         string `yaml:"scripts"`
	NotebookStartup string `yaml:"notebook_startup"`
}

// Layout is the resolved set of project directories.
type Layout struct {
	Base            string
	Data            string
	Logs            string
	Plots           string
	Scripts         string
	NotebookStartup string
}

// NewLayout resolves every project directory against base.
func NewLayout(base string, dirs Dirs) (Layout, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return Layout{}, errors.Wrapf(err, "resolve base dir %q", base)
	}

	return Layout{
		Base:            abs,
		Data:            join(abs, dirs.Data, DefaultDataDir),
		Logs:            join(abs, dirs.Logs, DefaultLogDir),
		Plots:           join(abs, dirs.Plots, DefaultPlotDir),
		Scripts:         join(abs, dirs.Scripts, DefaultScriptsDir),
		NotebookStartup: join(abs, dirs.NotebookStartup, DefaultNotebookStartup),
	}, nil
}

// Entries returns the layout as ordered name/path pairs.
func (l Layout) Entries() [][2]string {
	return [][2]string{
		{"BASE_DIR", l.Base},
		{"DATA_DIR", l.Data},
		{"LOG_DIR", l.Logs},
		{"PLOT_DIR", l.Plots},
		{"SCRIPTS_DIR", l.Scripts},
		{"NOTEBOOK_STARTUP", l.NotebookStartup},
	}
}

// Ensure creates the given directories with their parents.
func (l Layout) Ensure(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create directory %s", dir)
		}
	}
	return nil
}

// FindRoot walks up from start until it finds a directory containing one of
// the markers. DefaultMarkers are used when none are given.
func FindRoot(start string, markers ...string) (string, error) {
	if len(markers) == 0 {
		markers = DefaultMarkers
	}

	dir, err := filepath.Abs(start)
	if err != nil {
		return "", errors.Wrapf(err, "resolve start dir %q", start)
	}

	for {
		for _, marker := range markers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.Wrapf(ErrRootNotFound, "no %s above %s", strings.Join(markers, ", "), start)
}

// Resolve locates a file or directory relative to start by walking up the directory tree.
func Resolve(start, relative string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", errors.Wrapf(err, "resolve start dir %q", start)
	}

	for {
		candidate := filepath.Join(dir, relative)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.Wrapf(ErrNotFound, "unable to locate %s", relative)
}

// UserConfigFile searches the XDG config directories for app/name.
func UserConfigFile(app, name string) (string, error) {
	path, err := xdg.SearchConfigFile(filepath.Join(app, name))
	if err != nil {
		return "", errors.Wrapf(ErrNotFound, "%s/%s in user config dirs", app, name)
	}
	return path, nil
}

// ExtendPath appends dir to the PATH environment variable unless it is
// already listed. It reports whether PATH was changed.
func ExtendPath(dir string) (bool, error) {
	current := os.Getenv("PATH")
	entries := filepath.SplitList(current)
	if slices.Contains(entries, dir) {
		return false, nil
	}

	updated := dir
	if current != "" {
		updated = current + string(os.PathListSeparator) + dir
	}
	if err := os.Setenv("PATH", updated); err != nil {
		return false, errors.Wrap(err, "set PATH")
	}
	return true, nil
}

func join(base, override, fallback string) string {
	switch {
	case override == "":
		return filepath.Join(base, fallback)
	case filepath.IsAbs(override):
		return filepath.Clean(override)
	default:
		return filepath.Join(base, override)
	}
}
