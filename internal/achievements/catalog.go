// Package achievements tracks player progress toward a fixed catalog of
// achievements and reports each unlock exactly once.
package achievements

import (
	"errors"
	"fmt"
	"maps"
	"sort"
)

// Definition describes one achievement and the metric thresholds that unlock it.
type Definition struct {
	ID           string
	Name         string
	Description  string
	Requirements map[string]float64 // metric name -> threshold
}

// Metrics returns the requirement metric names in sorted order.
func (d Definition) Metrics() []string {
	names := make([]string, 0, len(d.Requirements))
	for name := range d.Requirements {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d Definition) clone() Definition {
	d.Requirements = maps.Clone(d.Requirements)
	return d
}

// ErrInvalidDefinition is returned by NewCatalog for malformed entries.
var ErrInvalidDefinition = errors.New("achievements: invalid definition")

// Catalog is an immutable, ordered set of achievement definitions.
type Catalog struct {
	byID  map[string]Definition
	order []string
}

// NewCatalog validates the definitions and freezes them into a catalog.
// IDs must be unique and non-empty, and every definition needs at least one
// requirement with a positive threshold.
func NewCatalog(defs []Definition) (*Catalog, error) {
	c := &Catalog{
		byID:  make(map[string]Definition, len(defs)),
		order: make([]string, 0, len(defs)),
	}

	for i, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("%w: entry %d has no id", ErrInvalidDefinition, i)
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidDefinition, d.ID)
		}
		if len(d.Requirements) == 0 {
			return nil, fmt.Errorf("%w: %q has no requirements", ErrInvalidDefinition, d.ID)
		}
		for metric, threshold := range d.Requirements {
			if metric == "" || !(threshold > 0) {
				return nil, fmt.Errorf("%w: %q requirement %q must be positive", ErrInvalidDefinition, d.ID, metric)
			}
		}
		c.byID[d.ID] = d.clone()
		c.order = append(c.order, d.ID)
	}

	return c, nil
}

// Get returns the definition with the given id.
func (c *Catalog) Get(id string) (Definition, bool) {
	d, ok := c.byID[id]
	if !ok {
		return Definition{}, false
	}
	return d.clone(), true
}

// List returns all definitions in catalog order.
func (c *Catalog) List() []Definition {
	out := make([]Definition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id].clone())
	}
	return out
}

// Len returns the number of definitions.
func (c *Catalog) Len() int {
	return len(c.order)
}
