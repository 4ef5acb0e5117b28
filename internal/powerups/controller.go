package powerups

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/arcade-features/internal/core"
)

var (
	// ErrUnknownType is returned when no effect is registered for a type.
	ErrUnknownType = errors.New("powerups: unknown power-up type")

	// ErrInvalidDuration is returned for non-positive durations.
	ErrInvalidDuration = errors.New("powerups: duration must be positive")
)

// Activation is one applied power-up waiting for its deactivation.
type Activation struct {
	ID        uint64
	Type      Type
	Duration  time.Duration
	AppliedAt time.Duration // scheduler time of activation

	body   Body
	effect Effect
	task   *core.Task
	ctrl   *Controller
	ended  bool
}

// Active reports whether the effect is still applied.
func (a *Activation) Active() bool {
	return a != nil && !a.ended
}

// Remaining returns the time left before automatic deactivation.
func (a *Activation) Remaining() time.Duration {
	if !a.Active() {
		return 0
	}
	left := a.AppliedAt + a.Duration - a.ctrl.sched.Now()
	if left < 0 {
		return 0
	}
	return left
}

// Cancel deactivates early, reverting the effect now. Returns false if the
// activation already ended.
func (a *Activation) Cancel() bool {
	if !a.Active() {
		return false
	}
	a.task.Cancel()
	a.ctrl.deactivate(a)
	return true
}

// Controller applies power-ups and schedules their reversal.
// Same-type activations on one body are independent: each applies and
// reverts its own effect. State effects (see Idempotent) stay applied until
// the last overlapping activation ends.
type Controller struct {
	sched   *core.Scheduler
	effects Effects
	logger  *log.Logger
	nextID  uint64
	active  []*Activation
}

// NewController creates a controller that schedules deactivations on sched.
func NewController(sched *core.Scheduler, effects Effects, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		sched:   sched,
		effects: effects,
		logger:  logger,
	}
}

// Activate applies the effect for typ to body and schedules its reversal
// duration from now.
func (c *Controller) Activate(body Body, typ Type, duration time.Duration) (*Activation, error) {
	effect, ok := c.effects[typ]
	if !ok {
		c.logger.Warn("unknown power-up type", "type", typ)
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDuration, duration)
	}

	if err := guard(func() error { return effect.Apply(body) }); err != nil {
		c.logger.Error("error activating power-up", "type", typ, "error", err)
		return nil, fmt.Errorf("powerups: activate %s: %w", typ, err)
	}

	c.nextID++
	a := &Activation{
		ID:        c.nextID,
		Type:      typ,
		Duration:  duration,
		AppliedAt: c.sched.Now(),
		body:      body,
		effect:    effect,
		ctrl:      c,
	}
	a.task = c.sched.After(duration, func() { c.deactivate(a) })
	c.active = append(c.active, a)

	c.logger.Debug("power-up activated", "id", a.ID, "type", typ, "duration", duration)
	return a, nil
}

// Deactivate ends an activation early. It is equivalent to a.Cancel().
func (c *Controller) Deactivate(a *Activation) bool {
	return a.Cancel()
}

// Active returns the live activations for body in activation order.
func (c *Controller) Active(body Body) []*Activation {
	var out []*Activation
	for _, a := range c.active {
		if a.body == body {
			out = append(out, a)
		}
	}
	return out
}

// Len returns the number of live activations across all bodies.
func (c *Controller) Len() int {
	return len(c.active)
}

// Release drops every pending deactivation for a body that is being
// destroyed. Effects are not reverted. Returns the number released.
func (c *Controller) Release(body Body) int {
	released := 0
	kept := c.active[:0]
	for _, a := range c.active {
		if a.body != body {
			kept = append(kept, a)
			continue
		}
		a.task.Cancel()
		a.ended = true
		released++
	}
	clear(c.active[len(kept):])
	c.active = kept
	return released
}

// ReleaseAll drops every pending deactivation, e.g. when the scene closes.
func (c *Controller) ReleaseAll() int {
	n := len(c.active)
	for _, a := range c.active {
		a.task.Cancel()
		a.ended = true
	}
	clear(c.active)
	c.active = c.active[:0]
	return n
}

func (c *Controller) deactivate(a *Activation) {
	if a.ended {
		return
	}
	a.ended = true
	c.remove(a)

	if err := guard(func() error { return a.effect.Revert(a.body) }); err != nil {
		c.logger.Error("error deactivating power-up", "id", a.ID, "type", a.Type, "error", err)
		return
	}
	c.logger.Debug("power-up expired", "id", a.ID, "type", a.Type)

	if _, ok := a.effect.(Idempotent); ok {
		c.reapply(a.body, a.Type)
	}
}

// reapply restores a state effect that another activation still holds.
func (c *Controller) reapply(body Body, typ Type) {
	for _, o := range c.active {
		if o.body != body || o.Type != typ {
			continue
		}
		if err := guard(func() error { return o.effect.Apply(o.body) }); err != nil {
			c.logger.Error("error re-applying power-up", "id", o.ID, "type", typ, "error", err)
		}
		return
	}
}

func (c *Controller) remove(a *Activation) {
	for i, x := range c.active {
		if x == a {
			c.active = append(c.active[:i], c.active[i+1:]...)
			return
		}
	}
}

// guard converts a panicking effect into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("effect panicked: %v", rec)
		}
	}()
	return fn()
}
