// registry.go holds the extensions registered by init() functions.
//
// Registration order is kept so commands and MCP tools are added in the
// same order on every run. Duplicate names panic, as database/sql.Register
// does, since they can only come from a programming mistake.

package extension

import "sync"

var (
	mu       sync.RWMutex
	registry = make(map[string]Extension)
	order    []string
)

// Register adds an extension. Call it from init().
func Register(e Extension) {
	mu.Lock()
	defer mu.Unlock()

	name := e.Name()
	if _, exists := registry[name]; exists {
		panic("extension already registered: " + name)
	}

	registry[name] = e
	order = append(order, name)
}

// All returns all registered extensions in registration order.
func All() []Extension {
	mu.RLock()
	defer mu.RUnlock()

	exts := make([]Extension, 0, len(order))
	for _, name := range order {
		exts = append(exts, registry[name])
	}
	return exts
}

// Implementing returns the registered extensions that also implement T,
// such as Vacuumable or Storeless, in registration order.
func Implementing[T any]() []T {
	var out []T
	for _, ext := range All() {
		if t, ok := ext.(T); ok {
			out = append(out, t)
		}
	}
	return out
}
