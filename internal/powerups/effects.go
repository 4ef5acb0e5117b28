// Package powerups applies timed status effects to a player body and reverts
// them when their duration runs out on the scene scheduler.
package powerups

import (
	"errors"
	"fmt"
	"math"

	"github.com/vovakirdan/arcade-features/internal/core"
)

// Type names a power-up effect.
type Type string

const (
	TypeSpeed         Type = "speed"
	TypeInvincibility Type = "invincibility"
)

// Body is the part of the host player entity that effects mutate.
// Implementations must be comparable; pointer types are the usual choice.
type Body interface {
	Velocity() core.Vec
	SetVelocity(v core.Vec)
	Tint() core.Color
	SetTint(c core.Color)
}

// Effect applies a status change and its exact inverse.
type Effect interface {
	Apply(b Body) error
	Revert(b Body) error
}

// Idempotent marks effects whose Apply sets a state instead of compounding
// one. After such an effect is reverted, the controller re-applies it for any
// other live activation of the same type on the body.
type Idempotent interface {
	Effect
	Idempotent()
}

// Effects maps power-up types to their effect.
type Effects map[Type]Effect

// EffectConfig tunes the built-in effects.
type EffectConfig struct {
	SpeedMultiplier    float64
	InvincibilityColor core.Color
}

// DefaultEffectConfig doubles speed and tints invincible players green.
func DefaultEffectConfig() EffectConfig {
	return EffectConfig{
		SpeedMultiplier:    2,
		InvincibilityColor: core.ColorGreen,
	}
}

// DefaultEffects returns the built-in speed and invincibility effects.
func DefaultEffects(cfg EffectConfig) Effects {
	return Effects{
		TypeSpeed:         SpeedEffect{Multiplier: cfg.SpeedMultiplier},
		TypeInvincibility: TintEffect{Color: cfg.InvincibilityColor},
	}
}

// ErrInvalidMultiplier is returned when a speed effect cannot be inverted.
var ErrInvalidMultiplier = errors.New("powerups: speed multiplier must be a positive power of two")

// ExactMultiplier reports whether scaling by m and then by 1/m restores every
// float64 exactly. That holds only for positive powers of two.
func ExactMultiplier(m float64) bool {
	if !(m > 0) || math.IsInf(m, 0) {
		return false
	}
	frac, _ := math.Frexp(m)
	return frac == 0.5
}

// SpeedEffect scales velocity on apply and divides by the same factor on revert.
// Multiplier must satisfy ExactMultiplier.
type SpeedEffect struct {
	Multiplier float64
}

func (e SpeedEffect) Apply(b Body) error {
	if !ExactMultiplier(e.Multiplier) {
		return fmt.Errorf("%w: %v", ErrInvalidMultiplier, e.Multiplier)
	}
	b.SetVelocity(b.Velocity().Scale(e.Multiplier))
	return nil
}

func (e SpeedEffect) Revert(b Body) error {
	if !ExactMultiplier(e.Multiplier) {
		return fmt.Errorf("%w: %v", ErrInvalidMultiplier, e.Multiplier)
	}
	b.SetVelocity(b.Velocity().Scale(1 / e.Multiplier))
	return nil
}

// TintEffect colors the body while active and clears the tint on revert.
type TintEffect struct {
	Color core.Color
}

func (e TintEffect) Apply(b Body) error {
	b.SetTint(e.Color)
	return nil
}

func (e TintEffect) Revert(b Body) error {
	b.SetTint(core.ColorDefault)
	return nil
}

func (TintEffect) Idempotent() {}
