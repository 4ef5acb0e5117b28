// Package registry provides a global registry for scene factories.
// Scenes register themselves in init() functions, allowing the platform
// to discover and instantiate them without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/arcade-features/internal/achievements"
	"github.com/vovakirdan/arcade-features/internal/config"
	"github.com/vovakirdan/arcade-features/internal/core"
	"github.com/vovakirdan/arcade-features/internal/levelgrid"
)

// Game is the interface every scene implements.
// Scenes contain pure logic with no Bubble Tea dependency.
// The platform handles input mapping, timing, and rendering.
type Game interface {
	// ID returns a unique identifier (e.g., "playground", "editor").
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Reset initializes or resets the scene.
	// Called once at start and again on restart.
	Reset(cfg core.RuntimeConfig)

	// Step advances the simulation by one fixed tick.
	Step(in core.InputFrame) core.StepResult

	// Render draws the current state into the provided screen buffer.
	// The screen is pre-cleared before this call.
	Render(dst *core.Screen)

	// State returns the current game state (score, game over, paused).
	State() core.GameState
}

// Closer is implemented by scenes holding timers or unsaved state.
// The platform calls Close when the scene is left.
type Closer interface {
	Close() error
}

// Store is the persistence scenes may use. storage.Store implements it.
type Store interface {
	levelgrid.Store
	SaveTime(username, level string, d time.Duration) (int64, error)
	SaveProgress(player string, progress []achievements.Progress) error
	LoadProgress(player string) ([]achievements.Progress, error)
}

// Deps are the collaborators injected into every factory.
// Store may be nil when persistence is disabled.
type Deps struct {
	Features config.Features
	Store    Store
	Logger   *log.Logger
}

// GameInfo contains metadata about a registered scene.
type GameInfo struct {
	ID    string
	Title string
}

// Factory creates a new scene instance.
type Factory func(deps Deps) (Game, error)

type entry struct {
	title   string
	factory Factory
}

var (
	entries = make(map[string]entry)
	mu      sync.RWMutex
)

// Register adds a scene factory to the registry.
// Typically called from a scene's init() function.
// Panics if a scene with the same ID is already registered.
func Register(id, title string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := entries[id]; exists {
		panic(fmt.Sprintf("registry: scene %q already registered", id))
	}
	entries[id] = entry{title: title, factory: f}
}

// List returns information about all registered scenes, sorted by ID.
func List() []GameInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]GameInfo, 0, len(entries))
	for id, e := range entries {
		result = append(result, GameInfo{ID: id, Title: e.title})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a scene by its ID.
// Returns an error if the ID is not registered or the factory fails.
func Create(id string, deps Deps) (Game, error) {
	mu.RLock()
	e, ok := entries[id]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: unknown scene %q", id)
	}
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}

	g, err := e.factory(deps)
	if err != nil {
		return nil, fmt.Errorf("registry: cannot create %q: %w", id, err)
	}
	return g, nil
}

// Exists checks if a scene with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := entries[id]
	return ok
}

// Close calls Close on g if it implements Closer.
func Close(g Game) error {
	if c, ok := g.(Closer); ok {
		return c.Close()
	}
	return nil
}
