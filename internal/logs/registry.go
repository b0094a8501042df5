package logs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// DefaultLogPath returns the path of the default file logger when none is configured
func DefaultLogPath() string {
	return filepath.Join(os.TempDir(), "rwlog", "rwlog.log")
}

// Registry maps paths to shared Instances. There is at most one Instance per path.
// The console ("") and default path entries always exist and cannot be destroyed.
type Registry struct {
	entries     map[string]*Instance
	defaultPath string
	opts        []Option
	diag        *logrus.Entry
	mu          sync.Mutex
}

// NewRegistry creates a registry whose default file logger writes to defaultPath
// (DefaultLogPath if empty). The console and default loggers are created right away;
// if the default cannot be created it is retried on the next Default call.
func NewRegistry(defaultPath string, opts ...Option) *Registry {
	if defaultPath == "" {
		defaultPath = DefaultLogPath()
	}
	o := newOptions(opts)

	r := &Registry{
		entries:     make(map[string]*Instance),
		defaultPath: defaultPath,
		opts:        opts,
		diag:        o.diag.WithField("component", diagComponent),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.consoleLocked()
	r.getOrCreateLocked(defaultPath, OverflowTruncate)

	return r
}

// DefaultPath returns the reserved path of the default file logger
func (r *Registry) DefaultPath() string {
	return r.defaultPath
}

// Console returns the console logger
func (r *Registry) Console() *Instance {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.consoleLocked()
}

// Default returns the default file logger, created with action if it does not exist yet.
// If it cannot be created the console logger is returned instead.
func (r *Registry) Default(action OverflowAction) *Instance {
	return r.File(r.defaultPath, action)
}

// File returns the logger for path, created with action if it does not exist yet.
// If it cannot be created the console logger is returned instead.
func (r *Registry) File(path string, action OverflowAction) *Instance {
	r.mu.Lock()
	defer r.mu.Unlock()

	if path == ConsolePath {
		return r.consoleLocked()
	}
	return r.getOrCreateLocked(path, action)
}

// Destroy removes path from the registry. Handles already obtained stay usable;
// a later File call for the same path creates a new Instance.
func (r *Registry) Destroy(path string) error {
	if path == ConsolePath || path == r.defaultPath {
		return fmt.Errorf("%w: logger %q is protected", ErrBadArguments, path)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[path]; !exists {
		return fmt.Errorf("%w: %q", ErrNotFound, path)
	}
	delete(r.entries, path)

	r.diag.WithField("path", path).Debug("logger removed from registry")
	return nil
}

// Count returns the number of registered loggers
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Paths returns all registered paths, sorted. The console is listed as "".
func (r *Registry) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	paths := make([]string, 0, len(r.entries))
	for path := range r.entries {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

func (r *Registry) consoleLocked() *Instance {
	if inst, exists := r.entries[ConsolePath]; exists {
		return inst
	}
	// A console instance touches no file and cannot fail
	inst, _ := NewInstance(ConsolePath, OverflowNone, r.opts...)
	r.entries[ConsolePath] = inst
	return inst
}

func (r *Registry) getOrCreateLocked(path string, action OverflowAction) *Instance {
	if inst, exists := r.entries[path]; exists {
		return inst
	}

	inst, err := NewInstance(path, action, r.opts...)
	if err != nil {
		r.diag.WithError(err).WithField("path", path).Warn("falling back to console logger")
		return r.consoleLocked()
	}

	r.entries[path] = inst
	r.diag.WithFields(logrus.Fields{
		"path":     path,
		"overflow": action.String(),
	}).Debug("logger created")
	return inst
}
