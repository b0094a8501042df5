package logs

import "sync"

var (
	globalRegistry *Registry
	globalOnce     sync.Once
	globalMu       sync.RWMutex
)

// GetGlobalRegistry returns the process-wide registry, creating it with the default path on first use
func GetGlobalRegistry() *Registry {
	globalOnce.Do(func() {
		globalMu.Lock()
		defer globalMu.Unlock()
		if globalRegistry == nil {
			globalRegistry = NewRegistry("")
		}
	})

	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalRegistry
}

// SetGlobalRegistry sets the process-wide registry (for testing or custom configuration)
func SetGlobalRegistry(r *Registry) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalRegistry = r
}

// ConsoleLogger returns the console logger of the global registry
func ConsoleLogger() *Instance {
	return GetGlobalRegistry().Console()
}

// DefaultLogger returns the default file logger of the global registry, truncating on overflow
func DefaultLogger() *Instance {
	return GetGlobalRegistry().Default(OverflowTruncate)
}

// FileLogger returns the logger for path from the global registry
func FileLogger(path string, action OverflowAction) *Instance {
	return GetGlobalRegistry().File(path, action)
}
