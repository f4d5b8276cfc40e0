// Package fin simulates single grass blades and rasterizes them as ribbons of
// quads into a pixel buffer.
package fin

import (
	"math"
	"math/rand"
)

const (
	// Step is the fixed integration step, in life units.
	Step = 0.01

	// MinWidth is the width every blade tapers to at the end of its life.
	MinWidth = 0.005

	// Damping is applied to the vertical velocity after every step.
	Damping = 0.99

	curveBackThreshold = 0.6 // samples above this get a curve-back force
	shortLifeBias      = 0.3 // scaled by yOffset, chance of the short life regime
	shortLifeVyScale   = 0.8
	vyScale            = 1.2
	gravityLifeRef     = 2.2
)

// Blade is the mutable state of one simulated blade. Positions and widths
// are in normalized tile space.
type Blade struct {
	X, Y      float64
	Vx, Vy    float64
	Width     float64
	Life      float64
	Gravity   float64
	CurveBack float64
	Intensity float64
	HeightAO  float64

	startWidth float64
	lifeTotal  float64
}

// NewBlade samples a blade for row position yOffset in [0,1].
func NewBlade(yOffset float64, p Params, rng *rand.Rand) Blade {
	var b Blade
	b.X = p.X.At(rng.Float64())
	b.Y = p.Y.At(yOffset)
	b.Vx = p.Vx.At(rng.Float64()) * (1 - abs(b.X-0.5))
	b.Vy = p.Vy.At(rng.Float64()) * vyScale
	b.Gravity = p.Gravity.At(rng.Float64())
	b.Width = p.Width.At(rng.Float64())
	b.startWidth = b.Width

	if rng.Float64() > curveBackThreshold {
		sign := -1.0
		if rng.Float64() > 0.5 {
			sign = 1
		}
		s := rng.Float64()
		b.CurveBack = sign * p.CurveBack.At(s*s)
	}

	if rng.Float64() > shortLifeBias*yOffset {
		b.Life = Lerp(rng.Float64(), 0.8, 1.0)
	} else {
		b.Life = Lerp(rng.Float64(), 0.2, 0.4) * 2
		b.Vy *= shortLifeVyScale
	}
	b.Life *= (b.Gravity/gravityLifeRef + 1) / 2
	b.lifeTotal = b.Life

	b.Intensity = (yOffset + rng.Float64()) / 2
	b.HeightAO = Lerp(rng.Float64(), 0.4, 0.8)
	return b
}

// LifeTotal returns the life the blade was created with.
func (b *Blade) LifeTotal() float64 { return b.lifeTotal }

// StartWidth returns the width the blade was created with.
func (b *Blade) StartWidth() float64 { return b.startWidth }

// LifeFraction returns remaining life over total life.
func (b *Blade) LifeFraction() float64 {
	if b.lifeTotal <= 0 {
		return 0
	}
	return b.Life / b.lifeTotal
}

// Alive reports whether the blade still has life left.
func (b *Blade) Alive() bool { return b.Life > 0 }

// Advance integrates one explicit Euler step of length dt.
func (b *Blade) Advance(dt float64) {
	b.Life -= dt
	b.X += b.Vx * dt
	b.Y += b.Vy * dt

	f := b.LifeFraction()
	b.Vy += b.Gravity * f * dt
	b.Vy += b.CurveBack * math.Pow(1-f, 2) * dt
	b.Vy *= Damping

	// The last step overshoots life below zero; the taper stops at the floor.
	b.Width = MinWidth + (b.startWidth-MinWidth)*math.Max(f, 0)
}
