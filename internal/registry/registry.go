// Package registry provides a global registry for application factories.
// Applications register themselves in init() functions, allowing the CLI
// to discover and instantiate them without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/steploop/internal/core"
	"github.com/vovakirdan/steploop/internal/driver"
)

// Options carries per-run settings an application may need at construction.
type Options struct {
	Title       string           // Window title, drawn in the HUD
	ScrollReset core.ScrollReset // Wheel delta policy for the app's InputTracker
	UpdateRate  int              // Logic ticks per second, for rate-dependent tuning
	Seed        uint64           // RNG seed for deterministic simulation
	Stats       StatsSink        // Receives one-second reports; may be nil
	Logger      *log.Logger      // May be nil
}

// StatsSink receives the per-second counters an application reports.
type StatsSink interface {
	RecordStats(ups, fps int) error
}

// Constructor builds an application for a freshly acquired surface.
type Constructor func(surface *core.Screen, opts Options) (driver.Application, error)

// AppInfo contains metadata about a registered application.
type AppInfo struct {
	ID    string
	Title string
}

type entry struct {
	title string
	ctor  Constructor
}

var (
	entries = make(map[string]entry)
	mu      sync.RWMutex
)

// Register adds an application constructor to the registry.
// Typically called from an application package's init() function.
// Panics if an application with the same ID is already registered.
func Register(id, title string, ctor Constructor) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := entries[id]; exists {
		panic(fmt.Sprintf("registry: application %q already registered", id))
	}
	entries[id] = entry{title: title, ctor: ctor}
}

// List returns information about all registered applications, sorted by ID.
func List() []AppInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]AppInfo, 0, len(entries))
	for id, e := range entries {
		result = append(result, AppInfo{ID: id, Title: e.title})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Factory returns a driver.Factory that builds application id with opts.
// Returns an error if the ID is not registered.
func Factory(id string, opts Options) (driver.Factory, error) {
	mu.RLock()
	defer mu.RUnlock()

	e, ok := entries[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown application %q", id)
	}

	return func(surface *core.Screen) (driver.Application, error) {
		return e.ctor(surface, opts)
	}, nil
}

// Exists checks if an application with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := entries[id]
	return ok
}

// Title returns the registered title for id, or "" if unknown.
func Title(id string) string {
	mu.RLock()
	defer mu.RUnlock()

	return entries[id].title
}
