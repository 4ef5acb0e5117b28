package playground

import (
	"math"

	"github.com/vovakirdan/arcade-features/internal/core"
)

// player is the avatar power-ups act on. It always moves; arrow keys turn
// it while keeping its current speed, so a speed boost survives turns.
type player struct {
	pos  core.Vec
	vel  core.Vec
	tint core.Color
	w, h int
}

func (p *player) Velocity() core.Vec     { return p.vel }
func (p *player) SetVelocity(v core.Vec) { p.vel = v }
func (p *player) Tint() core.Color       { return p.tint }
func (p *player) SetTint(c core.Color)   { p.tint = c }

// Bounds returns the occupied cells in field coordinates.
func (p *player) Bounds() core.Rect {
	return p.pos.Rect(p.w, p.h)
}

// Speed returns the velocity magnitude in cells per second.
func (p *player) Speed() float64 {
	return p.vel.Len()
}

// turn points the velocity along (dx, dy) without changing its magnitude.
func (p *player) turn(dx, dy float64) {
	speed := p.vel.Len()
	p.vel = core.Vec{X: dx * speed, Y: dy * speed}
}

// move advances the position by dt seconds and keeps the box inside a
// fieldW x fieldH area.
func (p *player) move(dt float64, fieldW, fieldH int) {
	p.pos = p.pos.Add(p.vel.Scale(dt))
	maxX := math.Max(0, float64(fieldW-p.w))
	maxY := math.Max(0, float64(fieldH-p.h))
	p.pos.X = core.ClampF(p.pos.X, 0, maxX)
	p.pos.Y = core.ClampF(p.pos.Y, 0, maxY)
}
