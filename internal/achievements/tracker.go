package achievements

import (
	"github.com/charmbracelet/log"
)

// State is the lifecycle position of a single achievement.
type State int

const (
	NotStarted State = iota
	InProgress
	Completed
)

// String returns a display label for the state.
func (s State) String() string {
	switch s {
	case NotStarted:
		return "Not started"
	case InProgress:
		return "In progress"
	case Completed:
		return "Completed"
	default:
		return "Unknown"
	}
}

// Progress is the cumulative counter and completion latch for one achievement.
type Progress struct {
	AchievementID string
	Progress      float64
	Completed     bool
}

// Unlocked is emitted once, on the update that completes an achievement.
type Unlocked struct {
	Definition Definition
	Progress   float64
}

// Tracker accumulates gameplay progress against a catalog.
//
// Progress is a single scalar per achievement: every matching metric in an
// update adds into the same counter, and completion compares that counter to
// each requirement threshold.
type Tracker struct {
	catalog  *Catalog
	progress map[string]*Progress
	logger   *log.Logger
}

// NewTracker creates a tracker with zero progress for every definition.
func NewTracker(catalog *Catalog, logger *log.Logger) *Tracker {
	if logger == nil {
		logger = log.Default()
	}
	t := &Tracker{
		catalog:  catalog,
		progress: make(map[string]*Progress, catalog.Len()),
		logger:   logger,
	}
	for _, id := range catalog.order {
		t.progress[id] = &Progress{AchievementID: id}
	}
	return t
}

// Catalog returns the catalog the tracker was built from.
func (t *Tracker) Catalog() *Catalog {
	return t.catalog
}

// UpdateProgress adds the matching metrics of delta to an achievement's
// progress and reports whether this call completed it.
//
// Unknown ids are logged and ignored. Metrics the achievement does not
// require, and non-positive values, are skipped.
func (t *Tracker) UpdateProgress(id string, delta map[string]float64) (Unlocked, bool) {
	def, ok := t.catalog.byID[id]
	if !ok {
		t.logger.Warn("achievement not found", "id", id)
		return Unlocked{}, false
	}

	p := t.progress[id]
	for metric := range def.Requirements {
		if v := delta[metric]; v > 0 {
			p.Progress += v
		}
	}

	if p.Completed || !meets(def, p.Progress) {
		return Unlocked{}, false
	}

	p.Completed = true
	t.logger.Info("achievement unlocked", "id", id, "name", def.Name)
	return Unlocked{Definition: def.clone(), Progress: p.Progress}, true
}

// Observe applies one gameplay event to every achievement that requires any
// of its metrics, in catalog order, and returns the unlocks it caused.
func (t *Tracker) Observe(delta map[string]float64) []Unlocked {
	var unlocked []Unlocked
	for _, id := range t.catalog.order {
		if !references(t.catalog.byID[id], delta) {
			continue
		}
		if u, ok := t.UpdateProgress(id, delta); ok {
			unlocked = append(unlocked, u)
		}
	}
	return unlocked
}

// Progress returns a copy of the progress record for an achievement.
func (t *Tracker) Progress(id string) (Progress, bool) {
	p, ok := t.progress[id]
	if !ok {
		return Progress{}, false
	}
	return *p, true
}

// State returns where an achievement is in its lifecycle.
func (t *Tracker) State(id string) State {
	p, ok := t.progress[id]
	switch {
	case !ok || (p.Progress == 0 && !p.Completed):
		return NotStarted
	case p.Completed:
		return Completed
	default:
		return InProgress
	}
}

// Snapshot returns every progress record in catalog order.
func (t *Tracker) Snapshot() []Progress {
	out := make([]Progress, 0, len(t.catalog.order))
	for _, id := range t.catalog.order {
		out = append(out, *t.progress[id])
	}
	return out
}

// Restore loads previously saved progress. Records for unknown achievements
// are logged and skipped. Restoring never lowers progress or clears a latch.
func (t *Tracker) Restore(saved []Progress) {
	for _, s := range saved {
		p, ok := t.progress[s.AchievementID]
		if !ok {
			t.logger.Warn("skipping saved progress for unknown achievement", "id", s.AchievementID)
			continue
		}
		if s.Progress > p.Progress {
			p.Progress = s.Progress
		}
		if s.Completed {
			p.Completed = true
		}
	}
}

func meets(def Definition, progress float64) bool {
	for _, threshold := range def.Requirements {
		if progress < threshold {
			return false
		}
	}
	return true
}

func references(def Definition, delta map[string]float64) bool {
	for metric := range delta {
		if _, ok := def.Requirements[metric]; ok {
			return true
		}
	}
	return false
}
