// ABOUTME: App registry for registering and retrieving backend apps.
// ABOUTME: Apps register themselves in init() functions.

package core

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry = make(map[string]Plugin)
	mu       sync.RWMutex
)

// Register adds an app to the registry
func Register(p Plugin) {
	mu.Lock()
	defer mu.Unlock()

	name := p.Name()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("plugin %q already registered", name))
	}
	registry[name] = p
}

// Get retrieves an app by name
func Get(name string) (Plugin, bool) {
	mu.RLock()
	defer mu.RUnlock()
	p, ok := registry[name]
	return p, ok
}

// Lookup finds a resource declaration by app and slug.
func Lookup(app, slug string) (Resource, bool) {
	p, ok := Get(app)
	if !ok {
		return Resource{}, false
	}
	for _, r := range p.Resources() {
		if r.Slug == slug {
			return r, true
		}
	}
	return Resource{}, false
}

// All returns all registered apps sorted by name
func All() []Plugin {
	mu.RLock()
	defer mu.RUnlock()

	plugins := make([]Plugin, 0, len(registry))
	for _, p := range registry {
		plugins = append(plugins, p)
	}
	sort.Slice(plugins, func(i, j int) bool { return plugins[i].Name() < plugins[j].Name() })
	return plugins
}

// Names returns all registered app names, sorted
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
