package logging

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Registry keeps at most one configured Logger per name.
type Registry struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}

var defaultRegistry = NewRegistry()

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{loggers: make(map[string]*Logger)}
}

// Setup builds a logger from opts and stores it under its name. A logger
// previously registered under the same name is closed and replaced. On
// error the registry is left unchanged.
func (r *Registry) Setup(opts Options) (*Logger, error) {
	logger, err := New(opts)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	previous := r.loggers[logger.Name()]
	r.loggers[logger.Name()] = logger
	r.mu.Unlock()

	if previous != nil {
		if err := previous.Close(); err != nil {
			logger.Warn("closing replaced logger failed", zap.Error(err))
		}
	}

	return logger, nil
}

// Get returns the logger registered under name.
func (r *Registry) Get(name string) (*Logger, bool) {
	if name == "" {
		name = DefaultName
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	logger, ok := r.loggers[name]
	return logger, ok
}

// Names returns the registered logger names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.loggers))
	for name := range r.loggers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Remove closes the logger registered under name and forgets it. Removing
// an unknown name is a no-op.
func (r *Registry) Remove(name string) error {
	if name == "" {
		name = DefaultName
	}

	r.mu.Lock()
	logger, ok := r.loggers[name]
	delete(r.loggers, name)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	return logger.Close()
}

// Release closes logger and forgets it if it is still the instance
// registered under its name. A logger already replaced by a later Setup is
// closed without touching its successor.
func (r *Registry) Release(logger *Logger) error {
	r.mu.Lock()
	if current, ok := r.loggers[logger.Name()]; ok && current == logger {
		delete(r.loggers, logger.Name())
	}
	r.mu.Unlock()

	return logger.Close()
}

// Close closes and forgets every registered logger.
func (r *Registry) Close() error {
	r.mu.Lock()
	loggers := r.loggers
	r.loggers = make(map[string]*Logger)
	r.mu.Unlock()

	var err error
	for _, logger := range loggers {
		err = errors.CombineErrors(err, logger.Close())
	}
	return err
}

// Setup configures a logger in the process-wide registry.
func Setup(opts Options) (*Logger, error) {
	return defaultRegistry.Setup(opts)
}

// Get returns a logger from the process-wide registry.
func Get(name string) (*Logger, bool) {
	return defaultRegistry.Get(name)
}

// DefaultRegistry returns the process-wide registry used by Setup and Get.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Shutdown closes every logger in the process-wide registry.
func Shutdown() error {
	return defaultRegistry.Close()
}
