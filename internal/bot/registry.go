package bot

import (
	"log/slog"
	"sync"
)

// Registry collects modules before the bot starts. Modules register
// themselves from init(), so registration order follows import order.
type Registry struct {
	mu      sync.RWMutex
	modules []Module
	names   map[string]bool
}

// NewRegistry creates an empty module registry.
func NewRegistry() *Registry {
	return &Registry{
		names: make(map[string]bool),
	}
}

// Register adds a module. A second module with the same name is
// rejected, keeping the command handler map unambiguous.
func (r *Registry) Register(m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.names[m.Name()] {
		slog.Warn("ignoring duplicate module registration", "module", m.Name())
		return
	}
	r.names[m.Name()] = true
	r.modules = append(r.modules, m)
}

// Modules returns a snapshot of the registered modules.
func (r *Registry) Modules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Module, len(r.modules))
	copy(result, r.modules)
	return result
}

// Names returns the registered module names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.modules))
	for i, m := range r.modules {
		names[i] = m.Name()
	}
	return names
}

// Global registry instance for module self-registration via init().
var globalRegistry = NewRegistry()

// Register adds a module to the global registry.
// Typically called from module init() functions.
func Register(m Module) {
	globalRegistry.Register(m)
}

// Modules returns all modules from the global registry.
func Modules() []Module {
	return globalRegistry.Modules()
}

// ResetGlobalRegistry resets the global registry. Intended for tests.
func ResetGlobalRegistry() {
	globalRegistry = NewRegistry()
}
