// Package collectibles owns the live set of pickup entities and resolves
// player overlap into collection results.
package collectibles

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/arcade-features/internal/core"
)

// Handle identifies a spawned collectible. Handles are never reused.
type Handle uint64

// OnCollect runs when the player picks a collectible up. A returned error (or
// a panic) is logged and reported on the Pickup; the collectible is removed
// either way.
type OnCollect func(c Collectible) error

// Collectible is a live pickup in the scene.
type Collectible struct {
	Handle    Handle
	Bounds    core.Rect
	Texture   string
	Kind      string // gameplay meaning, e.g. "coin" or "powerup:speed"
	onCollect OnCollect
}

// Pickup is the result of collecting one collectible.
type Pickup struct {
	Handle  Handle
	Bounds  core.Rect
	Texture string
	Kind    string
	Err     error // failure from the collect callback, if any
}

// Registry holds the only references to live collectibles.
type Registry struct {
	live   []*Collectible
	next   Handle
	logger *log.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{logger: logger}
}

// Create spawns a collectible and returns its handle.
func (r *Registry) Create(bounds core.Rect, texture, kind string, onCollect OnCollect) Handle {
	r.next++
	r.live = append(r.live, &Collectible{
		Handle:    r.next,
		Bounds:    bounds,
		Texture:   texture,
		Kind:      kind,
		onCollect: onCollect,
	})
	return r.next
}

// CollectOverlap collects every live collectible overlapping the player box,
// in spawn order. Each collected item is removed from the live set even if
// its callback fails.
func (r *Registry) CollectOverlap(player core.Rect) []Pickup {
	var hits []*Collectible
	kept := make([]*Collectible, 0, len(r.live))
	for _, c := range r.live {
		if c.Bounds.Intersects(player) {
			hits = append(hits, c)
		} else {
			kept = append(kept, c)
		}
	}
	if len(hits) == 0 {
		return nil
	}

	// Detach before running callbacks so a callback may spawn new collectibles.
	r.live = kept

	pickups := make([]Pickup, 0, len(hits))
	for _, c := range hits {
		err := r.collect(c)
		pickups = append(pickups, Pickup{
			Handle:  c.Handle,
			Bounds:  c.Bounds,
			Texture: c.Texture,
			Kind:    c.Kind,
			Err:     err,
		})
	}
	return pickups
}

func (r *Registry) collect(c *Collectible) (err error) {
	if c.onCollect == nil {
		return nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("collectibles: collect callback panicked: %v", rec)
		}
		if err != nil {
			r.logger.Error("error collecting collectible", "handle", c.Handle, "kind", c.Kind, "error", err)
		}
	}()
	return c.onCollect(*c)
}

// Remove drops a collectible without collecting it.
func (r *Registry) Remove(h Handle) bool {
	for i, c := range r.live {
		if c.Handle == h {
			r.live = append(r.live[:i], r.live[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns a copy of a live collectible.
func (r *Registry) Get(h Handle) (Collectible, bool) {
	for _, c := range r.live {
		if c.Handle == h {
			return *c, true
		}
	}
	return Collectible{}, false
}

// Live returns copies of all live collectibles in spawn order.
func (r *Registry) Live() []Collectible {
	out := make([]Collectible, 0, len(r.live))
	for _, c := range r.live {
		out = append(out, *c)
	}
	return out
}

// Len returns the number of live collectibles.
func (r *Registry) Len() int {
	return len(r.live)
}

// Clear removes every live collectible without collecting it.
func (r *Registry) Clear() {
	clear(r.live)
	r.live = r.live[:0]
}
