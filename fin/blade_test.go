package fin

import (
	"math"
	"math/rand"
	"testing"
)

func fixedParams() Params {
	return Params{
		FinCount:  Fixed(1),
		X:         Fixed(0.5),
		Y:         Fixed(0.96),
		Vx:        Fixed(0),
		Vy:        Fixed(-1),
		Gravity:   Fixed(1),
		Width:     Fixed(0.03),
		CurveBack: Fixed(0),
	}
}

func TestLerpSaturate(t *testing.T) {
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"lerp start", Lerp(0, 2, 4), 2},
		{"lerp end", Lerp(1, 2, 4), 4},
		{"lerp mid", Lerp(0.5, 2, 4), 3},
		{"lerp reversed", Lerp(0.25, -0.8, -1.8), -1.05},
		{"saturate low", Saturate(-3), 0},
		{"saturate high", Saturate(1.5), 1},
		{"saturate inside", Saturate(0.3), 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.want) > 1e-12 {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestRangeNormalized(t *testing.T) {
	r := Range{-0.8, -1.8}.Normalized()
	if r.Lo != -1.8 || r.Hi != -0.8 {
		t.Errorf("expected [-1.8, -0.8], got [%v, %v]", r.Lo, r.Hi)
	}
	if f := Fixed(3).Normalized(); f.Lo != 3 || f.Hi != 3 {
		t.Errorf("fixed range changed: %+v", f)
	}
}

func TestNewBladeDeterministic(t *testing.T) {
	p := DefaultParams()
	a := NewBlade(0.3, p, rand.New(rand.NewSource(42)))
	b := NewBlade(0.3, p, rand.New(rand.NewSource(42)))
	if a != b {
		t.Errorf("same seed produced different blades:\n%+v\n%+v", a, b)
	}
}

func TestNewBladeFixedRanges(t *testing.T) {
	p := fixedParams()
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 50; i++ {
		b := NewBlade(0.5, p, rng)
		if b.X != 0.5 || b.Vx != 0 {
			t.Fatalf("expected x=0.5 vx=0, got x=%v vx=%v", b.X, b.Vx)
		}
		if b.Y != 0.96 {
			t.Fatalf("expected y=0.96, got %v", b.Y)
		}
		if b.Width != 0.03 || b.StartWidth() != 0.03 {
			t.Fatalf("expected width 0.03, got %v", b.Width)
		}
		if b.CurveBack != 0 {
			t.Fatalf("expected no curve-back, got %v", b.CurveBack)
		}
		// Vy is -1.2 in the long regime and -0.96 in the short one.
		if b.Vy != -1.2 && math.Abs(b.Vy+0.96) > 1e-12 {
			t.Fatalf("unexpected vy %v", b.Vy)
		}
		if b.LifeTotal() != b.Life || b.Life <= 0 {
			t.Fatalf("bad life %v / %v", b.Life, b.LifeTotal())
		}
		if b.HeightAO < 0.4 || b.HeightAO > 0.8 {
			t.Fatalf("height AO out of range: %v", b.HeightAO)
		}
		if b.Intensity < 0.25 || b.Intensity > 0.75 {
			t.Fatalf("intensity out of range for yOffset 0.5: %v", b.Intensity)
		}
	}
}

func TestNewBladeLifeScaledByGravity(t *testing.T) {
	p := fixedParams()
	p.Gravity = Fixed(2.2)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		// yOffset 0 always takes the long regime, scaled by (2.2/2.2+1)/2 = 1.
		b := NewBlade(0, p, rng)
		if b.Life < 0.8 || b.Life > 1.0 {
			t.Fatalf("life %v outside [0.8, 1.0]", b.Life)
		}
	}
}

func TestAdvanceTerminates(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	p := DefaultParams()
	for i := 0; i < 100; i++ {
		b := NewBlade(rng.Float64(), p, rng)
		total := b.LifeTotal()
		steps := 0
		for b.Alive() {
			b.Advance(Step)
			steps++
			if steps > 10000 {
				t.Fatal("blade never expired")
			}
		}
		want := int(math.Ceil(total / Step))
		if steps < want-1 || steps > want+1 {
			t.Errorf("life %v: expected ~%d steps, got %d", total, want, steps)
		}
		if b.LifeTotal() != total {
			t.Errorf("life total mutated: %v -> %v", total, b.LifeTotal())
		}
	}
}

func TestWidthTaper(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	p := DefaultParams()
	for i := 0; i < 50; i++ {
		b := NewBlade(rng.Float64(), p, rng)
		prev := b.Width
		for b.Alive() {
			b.Advance(Step)
			if b.Width > prev+1e-15 {
				t.Fatalf("width grew from %v to %v", prev, b.Width)
			}
			if b.Width < MinWidth-1e-12 {
				t.Fatalf("width %v below floor", b.Width)
			}
			prev = b.Width
		}
		if math.Abs(b.Width-MinWidth) > 1e-12 {
			t.Errorf("expected final width %v, got %v", MinWidth, b.Width)
		}
	}
}

func TestAdvanceDampsAndPulls(t *testing.T) {
	b := Blade{Vy: -1, Gravity: 2, Life: 1, lifeTotal: 1, Width: 0.03, startWidth: 0.03}
	b.Advance(Step)

	f := 0.99
	want := (-1 + 2*f*Step) * Damping
	if math.Abs(b.Vy-want) > 1e-12 {
		t.Errorf("vy: got %v, want %v", b.Vy, want)
	}
	if math.Abs(b.Y-(-0.01)) > 1e-12 {
		t.Errorf("y: got %v, want -0.01", b.Y)
	}
}

func TestCurveBackGrowsLate(t *testing.T) {
	early := Blade{CurveBack: 1, Life: 1, lifeTotal: 1}
	late := Blade{CurveBack: 1, Life: 0.2, lifeTotal: 1}
	early.Advance(Step)
	late.Advance(Step)
	if late.Vy <= early.Vy {
		t.Errorf("expected late curve-back push %v > early %v", late.Vy, early.Vy)
	}
}
