package fin

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"math/rand"
	"sort"

	"golang.org/x/image/vector"
)

const (
	// StreakCount is the size of the per-blade streak table.
	StreakCount = 10

	// DefaultStreakWidth is the streak stroke width in pixels.
	DefaultStreakWidth = 4.0

	streakAlphaMin  = 15
	streakAlphaSpan = 5

	shadeAgeExponent = 2.1
	shadeFloor       = 0.67
)

// Point is a 2D coordinate in normalized tile space.
type Point struct {
	X, Y float64
}

// Quad is the trapezoid between two consecutive blade cross-sections.
// Points 0 and 1 lie on the trailing edge, 3 and 2 on the leading edge.
type Quad [4]Point

// Segment describes one rasterized integration step.
type Segment struct {
	Step  int
	Quad  Quad
	Value uint8
	Blade Blade
}

// Extent is an axis-aligned bounding box in normalized tile space.
type Extent struct {
	MinX, MinY, MaxX, MaxY float64
}

func emptyExtent() Extent {
	return Extent{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
}

func (e *Extent) add(p Point) {
	e.MinX = math.Min(e.MinX, p.X)
	e.MinY = math.Min(e.MinY, p.Y)
	e.MaxX = math.Max(e.MaxX, p.X)
	e.MaxY = math.Max(e.MaxY, p.Y)
}

// RunStats summarizes one blade run.
type RunStats struct {
	Steps  int
	Extent Extent
}

// Options control the rasterizer variant.
type Options struct {
	// Streaks enables the decorative low-alpha stroke overlay.
	Streaks bool
	// StreakWidth is the stroke width in pixels (0 = DefaultStreakWidth).
	StreakWidth float64
	// OnSegment, when set, is called after every step is painted.
	OnSegment func(Segment)
}

type streak struct {
	t     float64
	color color.NRGBA
}

// Rasterizer paints blades into a square pixel buffer. It is not safe for
// concurrent use.
type Rasterizer struct {
	dst    draw.Image
	origin image.Point
	size   float64
	opts   Options

	z   *vector.Rasterizer
	src image.Uniform

	nrgba *image.NRGBA // dst when it is an NRGBA, for direct pixel writes
	xs    []float64    // scanline crossings scratch
	pts   []Point      // pixel-space polygon scratch
}

// NewRasterizer returns a rasterizer drawing into dst. Normalized tile
// coordinates are scaled by the width of dst.
func NewRasterizer(dst draw.Image, opts Options) *Rasterizer {
	b := dst.Bounds()
	nrgba, _ := dst.(*image.NRGBA)
	if opts.StreakWidth <= 0 {
		opts.StreakWidth = DefaultStreakWidth
	}
	return &Rasterizer{
		dst:    dst,
		origin: b.Min,
		size:   float64(b.Dx()),
		opts:   opts,
		z:      vector.NewRasterizer(0, 0),
		nrgba:  nrgba,
	}
}

// Run advances b until its life is exhausted, painting one quad per step.
// Streak parameters are drawn from rng before the first step.
func (r *Rasterizer) Run(b *Blade, rng *rand.Rand) RunStats {
	var streaks []streak
	if r.opts.Streaks {
		streaks = make([]streak, StreakCount)
		for i := range streaks {
			streaks[i] = streak{
				t:     rng.Float64(),
				color: color.NRGBA{A: uint8(streakAlphaMin + streakAlphaSpan*rng.Float64())},
			}
		}
	}

	stats := RunStats{Extent: emptyExtent()}
	rx, ry := -1.0, 0.0
	for b.Alive() {
		x0, y0, w0 := b.X, b.Y, b.Width
		b.Advance(Step)
		x1, y1, w1 := b.X, b.Y, b.Width

		dx, dy := x1-x0, y1-y0
		px, py := rx, ry
		if dl := math.Hypot(dx, dy); dl > 0 {
			px, py = dy/dl, -dx/dl
		}

		q := Quad{
			{x0 + rx*w0/2, y0 + ry*w0/2},
			{x0 - rx*w0/2, y0 - ry*w0/2},
			{x1 - px*w1/2, y1 - py*w1/2},
			{x1 + px*w1/2, y1 + py*w1/2},
		}
		rx, ry = px, py

		v := Shade(b, dx, dy)
		r.fillSolid(q[:], color.NRGBA{G: v, A: 255})

		if n := streakCount(len(streaks), b.LifeFraction()); n > 0 {
			for _, s := range streaks[:n] {
				a := lerpPoint(s.t, q[0], q[1])
				e := lerpPoint(s.t, q[3], q[2])
				r.line(a, e, s.color)
			}
		}

		stats.Steps++
		for _, p := range q {
			stats.Extent.add(p)
		}
		if r.opts.OnSegment != nil {
			r.opts.OnSegment(Segment{Step: stats.Steps, Quad: q, Value: v, Blade: *b})
		}
	}
	return stats
}

// Shade returns the green channel value for the step that moved b by
// (dx, dy). Young segments sit near the floor, old ones brighten.
func Shade(b *Blade, dx, dy float64) uint8 {
	var ratio float64
	switch {
	case dy != 0:
		ratio = abs(dx) / abs(dy)
	case dx != 0:
		ratio = math.Inf(1)
	}
	base := Saturate(b.Intensity*2-1)*0.67 +
		Saturate(b.Intensity*2)*Saturate(1-b.Y*b.HeightAO+ratio)
	v := Saturate(base)
	s := math.Pow(1-b.LifeFraction(), shadeAgeExponent)
	return uint8(255 * Lerp(Saturate(v*Lerp(s, 0.65, 1)), shadeFloor, 1))
}

// streakCount ramps in over the first third of the blade's age and fades
// with the square root of the remaining life.
func streakCount(total int, f float64) int {
	if total == 0 {
		return 0
	}
	f = math.Max(f, 0)
	n := int(float64(total) * math.Sqrt(math.Min(f, 1)) * math.Min((1-f)*3, 1))
	return min(n, total)
}

func lerpPoint(t float64, a, b Point) Point {
	return Point{Lerp(t, a.X, b.X), Lerp(t, a.Y, b.Y)}
}

// line strokes a butt-capped segment of the configured pixel width.
func (r *Rasterizer) line(a, b Point, c color.NRGBA) {
	dx, dy := (b.X-a.X)*r.size, (b.Y-a.Y)*r.size
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	// Half-width offset, converted back to normalized units.
	ox := -dy / l * r.opts.StreakWidth / 2 / r.size
	oy := dx / l * r.opts.StreakWidth / 2 / r.size
	r.fill([]Point{
		{a.X + ox, a.Y + oy},
		{b.X + ox, b.Y + oy},
		{b.X - ox, b.Y - oy},
		{a.X - ox, a.Y - oy},
	}, c)
}

// fillSolid sets every pixel whose centre lies inside pts (even-odd) to c,
// without anti-aliasing. Crossings are half-open in y and spans half-open in
// x, so consecutive quads sharing an edge tile the blade with no gap and no
// overlap.
func (r *Rasterizer) fillSolid(pts []Point, c color.NRGBA) {
	bounds := r.dst.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	r.pts = r.pts[:0]
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		x, y := p.X*r.size, p.Y*r.size
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			return
		}
		r.pts = append(r.pts, Point{x, y})
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}

	y0 := max(int(math.Ceil(minY-0.5)), 0)
	y1 := min(int(math.Ceil(maxY-0.5)), h)
	n := len(r.pts)
	for py := y0; py < y1; py++ {
		yc := float64(py) + 0.5
		r.xs = r.xs[:0]
		for i := range n {
			a, e := r.pts[i], r.pts[(i+1)%n]
			// Orient low to high so a shared edge yields the same crossing
			// from both quads.
			if a.Y > e.Y {
				a, e = e, a
			}
			if yc < a.Y || yc >= e.Y {
				continue
			}
			r.xs = append(r.xs, a.X+(yc-a.Y)*(e.X-a.X)/(e.Y-a.Y))
		}
		sort.Float64s(r.xs)
		for i := 0; i+1 < len(r.xs); i += 2 {
			xa := max(int(math.Ceil(r.xs[i]-0.5)), 0)
			xb := min(int(math.Ceil(r.xs[i+1]-0.5)), w)
			for px := xa; px < xb; px++ {
				r.set(bounds.Min.X+px, bounds.Min.Y+py, c)
			}
		}
	}
}

func (r *Rasterizer) set(x, y int, c color.NRGBA) {
	if r.nrgba != nil {
		r.nrgba.SetNRGBA(x, y, c)
		return
	}
	r.dst.Set(x, y, c)
}

// fill composites c over the polygon pts (normalized coordinates) with
// nonzero winding and analytic coverage anti-aliasing.
func (r *Rasterizer) fill(pts []Point, c color.NRGBA) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		x, y := p.X*r.size, p.Y*r.size
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			return
		}
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}

	rect := image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	).Add(r.origin).Intersect(r.dst.Bounds())
	if rect.Empty() {
		return
	}

	// The mask covers only rect; vertices outside it are clamped by the
	// rasterizer so partial coverage at the clip edge stays correct.
	ox := float64(rect.Min.X - r.origin.X)
	oy := float64(rect.Min.Y - r.origin.Y)
	r.z.Reset(rect.Dx(), rect.Dy())
	r.z.DrawOp = draw.Over
	r.z.MoveTo(float32(pts[0].X*r.size-ox), float32(pts[0].Y*r.size-oy))
	for _, p := range pts[1:] {
		r.z.LineTo(float32(p.X*r.size-ox), float32(p.Y*r.size-oy))
	}
	r.z.ClosePath()

	r.src.C = c
	r.z.Draw(r.dst, rect, &r.src, image.Point{})
}
