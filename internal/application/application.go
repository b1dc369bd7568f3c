package application

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/eugenenazirov/bootstrap/internal/config"
	"github.com/eugenenazirov/bootstrap/internal/logging"
	"github.com/eugenenazirov/bootstrap/internal/paths"
)

// Option configures New.
type Option func(*options)

// WithConsole redirects console log output (primarily for tests).
func WithConsole(w io.Writer) Option {
	return func(o *options) {
		o.console = w
	}
}

// WithRegistry registers the logger in reg instead of the process-wide registry.
func WithRegistry(reg *logging.Registry) Option {
	return func(o *options) {
		if reg != nil {
			o.registry = reg
		}
	}
}

type options struct {
	console  io.Writer
	registry *logging.Registry
}

// App holds the resolved project layout and the configured logger.
type App struct {
	cfg          config.Config
	layout       paths.Layout
	logger       *logging.Logger
	registry     *logging.Registry
	pathExtended bool
}

// New resolves the project root and layout, extends PATH with the scripts
// directory and sets up the logger described by cfg.
func New(cfg config.Config, opts ...Option) (*App, error) {
	o := options{registry: logging.DefaultRegistry()}
	for _, opt := range opts {
		opt(&o)
	}

	root, err := resolveRoot(cfg.Root)
	if err != nil {
		return nil, err
	}

	layout, err := paths.NewLayout(root, cfg.Dirs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve project layout")
	}

	logOpts := logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Name:    cfg.LoggerName,
		LogDir:  layout.Logs,
		Format:  cfg.LogFormat,
		Console: o.console,
	}
	logger, err := o.registry.Setup(logOpts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to set up logger")
	}

	app := &App{
		cfg:      cfg,
		layout:   layout,
		logger:   logger,
		registry: o.registry,
	}

	if cfg.ExtendPath && isDir(layout.Scripts) {
		changed, err := paths.ExtendPath(layout.Scripts)
		if err != nil {
			logger.Warn("extending PATH failed", zap.String("dir", layout.Scripts), zap.Error(err))
		}
		app.pathExtended = changed
	}

	logger.Debug("project bootstrapped",
		zap.String("base_dir", layout.Base),
		zap.String("env_file", cfg.EnvFile),
		zap.Strings("env_keys", cfg.LoadedEnv),
		zap.Bool("path_extended", app.pathExtended),
	)

	return app, nil
}

// Layout returns the resolved project directories.
func (a *App) Layout() paths.Layout {
	return a.layout
}

// Logger returns the configured logger.
func (a *App) Logger() *logging.Logger {
	return a.logger
}

// EnvFile returns the .env file that was loaded, or "" when none was found.
func (a *App) EnvFile() string {
	return a.cfg.EnvFile
}

// LoadedEnv returns the keys exported from the .env file.
func (a *App) LoadedEnv() []string {
	return a.cfg.LoadedEnv
}

// PathExtended reports whether the scripts directory was appended to PATH.
func (a *App) PathExtended() bool {
	return a.pathExtended
}

// Close flushes the logger, releases its file and drops it from the registry.
func (a *App) Close() error {
	return a.registry.Release(a.logger)
}

// resolveRoot returns the configured root, or the nearest ancestor of the
// working directory that carries a project marker, or the working directory.
func resolveRoot(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "failed to read working directory")
	}

	root, err := paths.FindRoot(cwd)
	if errors.Is(err, paths.ErrRootNotFound) {
		return cwd, nil
	}
	return root, err
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
