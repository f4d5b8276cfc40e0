package fin

import (
	"bytes"
	"image"
	"math"
	"math/rand"
	"testing"
)

func TestShadeRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		b := Blade{
			Y:         rng.Float64(),
			Intensity: rng.Float64(),
			HeightAO:  Lerp(rng.Float64(), 0.4, 0.8),
			Life:      Lerp(rng.Float64(), -0.01, 1),
			lifeTotal: 1,
		}
		v := Shade(&b, rng.NormFloat64(), rng.NormFloat64())
		if v < 170 {
			t.Fatalf("shade %d below floor", v)
		}
	}
}

func TestShadeDegenerateStep(t *testing.T) {
	b := Blade{Y: 0.5, Intensity: 0.5, HeightAO: 0.5, Life: 0.5, lifeTotal: 1}
	tests := []struct {
		name   string
		dx, dy float64
	}{
		{"no motion", 0, 0},
		{"horizontal", 0.01, 0},
		{"vertical", 0, -0.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Shade(&b, tt.dx, tt.dy)
			if v < 170 {
				t.Errorf("shade %d below floor", v)
			}
		})
	}
}

func TestShadeBrightensWithAge(t *testing.T) {
	young := Blade{Y: 0.9, Intensity: 0.8, HeightAO: 0.6, Life: 1, lifeTotal: 1}
	old := young
	old.Life = 0
	if Shade(&old, 0, -0.01) <= Shade(&young, 0, -0.01) {
		t.Errorf("expected aged segment to be brighter")
	}
}

func TestStreakCount(t *testing.T) {
	tests := []struct {
		name string
		f    float64
		want int
	}{
		{"fresh", 1, 0},
		{"expired", 0, 0},
		{"overshoot", -0.004, 0},
		{"ramp", 0.9, 2},
		{"half", 0.5, 7},
		{"disabled", 0.5, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := StreakCount
			want := tt.want
			if want < 0 {
				total, want = 0, 0
			}
			if got := streakCount(total, tt.f); got != want {
				t.Errorf("streakCount(%d, %v) = %d, want %d", total, tt.f, got, want)
			}
		})
	}
}

func TestRunStraightBlade(t *testing.T) {
	const size = 200
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	rng := rand.New(rand.NewSource(42))

	b := NewBlade(0, fixedParams(), rng)
	total := b.LifeTotal()
	r := NewRasterizer(img, Options{Streaks: true})
	stats := r.Run(&b, rng)

	if b.Alive() {
		t.Fatal("blade still alive after run")
	}
	want := int(math.Ceil(total / Step))
	if stats.Steps < want-1 || stats.Steps > want+1 {
		t.Errorf("expected ~%d steps, got %d", want, stats.Steps)
	}
	if math.Abs(b.Width-MinWidth) > 1e-12 {
		t.Errorf("expected final width %v, got %v", MinWidth, b.Width)
	}
	if b.X != 0.5 {
		t.Errorf("blade drifted horizontally to %v", b.X)
	}
	if stats.Extent.MinX < 0.47 || stats.Extent.MaxX > 0.53 {
		t.Errorf("extent x [%v, %v] outside [0.47, 0.53]", stats.Extent.MinX, stats.Extent.MaxX)
	}

	painted := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := img.NRGBAAt(x, y)
			if c.A == 0 {
				continue
			}
			painted++
			if x < int(0.47*size) || x > int(0.53*size) {
				t.Fatalf("painted pixel at x=%d outside blade column", x)
			}
			if c.R != 0 || c.B != 0 {
				t.Fatalf("blade pixel carries red/blue: %+v", c)
			}
		}
	}
	if painted == 0 {
		t.Fatal("nothing painted")
	}
}

func TestRunInteriorPixelsOpaque(t *testing.T) {
	tests := []struct {
		name  string
		size  int
		width float64
	}{
		{"narrow 512", 512, 0.05},
		{"wide 256", 256, 0.1},
		{"medium 384", 384, 0.03},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewNRGBA(image.Rect(0, 0, tt.size, tt.size))
			rng := rand.New(rand.NewSource(9))
			p := fixedParams()
			p.Width = Fixed(tt.width)

			b := NewBlade(0, p, rng)
			stats := NewRasterizer(img, Options{}).Run(&b, rng)

			// The final width still spans more than one pixel around the
			// centre column, so every row the blade passes is opaque there.
			x := tt.size / 2
			top := int(stats.Extent.MinY*float64(tt.size)) + 1
			bottom := int(stats.Extent.MaxY*float64(tt.size)) - 1
			if bottom-top < 10 {
				t.Fatalf("blade too short: rows %d..%d", top, bottom)
			}
			for y := top; y <= bottom; y++ {
				if c := img.NRGBAAt(x, y); c.A != 255 || c.G < 170 {
					t.Fatalf("row %d of centre column: got %+v, want opaque green", y, c)
				}
			}
		})
	}
}

func TestRunCoverageIsBinary(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 256, 256))
	rng := rand.New(rand.NewSource(42))
	r := NewRasterizer(img, Options{})
	for i := 0; i < 6; i++ {
		b := NewBlade(float64(i)/5, DefaultParams(), rng)
		r.Run(&b, rng)
	}
	for i := 3; i < len(img.Pix); i += 4 {
		if a := img.Pix[i]; a != 0 && a != 255 {
			t.Fatalf("pixel %d has partial alpha %d", i/4, a)
		}
	}
}

func TestRunSameSeedSamePixels(t *testing.T) {
	render := func(seed int64) []byte {
		img := image.NewNRGBA(image.Rect(0, 0, 128, 128))
		rng := rand.New(rand.NewSource(seed))
		r := NewRasterizer(img, Options{Streaks: true})
		for i := 0; i < 5; i++ {
			b := NewBlade(float64(i)/4, DefaultParams(), rng)
			r.Run(&b, rng)
		}
		return img.Pix
	}
	a, b := render(42), render(42)
	if !bytes.Equal(a, b) {
		t.Error("same seed produced different pixels")
	}
	if bytes.Equal(a, render(43)) {
		t.Error("different seeds produced identical pixels")
	}
}

func TestRunOffsetCanvas(t *testing.T) {
	// Sub-images keep their own origin; painting must stay inside them.
	parent := image.NewNRGBA(image.Rect(0, 0, 200, 100))
	sub := parent.SubImage(image.Rect(100, 0, 200, 100)).(*image.NRGBA)

	rng := rand.New(rand.NewSource(5))
	b := NewBlade(0, fixedParams(), rng)
	NewRasterizer(sub, Options{}).Run(&b, rng)

	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			if parent.NRGBAAt(x, y).A != 0 {
				t.Fatalf("pixel (%d,%d) painted outside the sub-image", x, y)
			}
		}
	}
}
