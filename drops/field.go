// Package drops synthesizes the drop normal/intensity field: circular
// normal impressions stamped at input points, with every untouched pixel
// taking the intensity of its nearest drop.
package drops

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/grassgen/fin"
)

const (
	// CanvasSize is the edge length of the drop field.
	CanvasSize = 2048
	// Padding is the margin kept between the mapped point range and the
	// canvas edge.
	Padding = 4

	minDropSize = 6
	maxDropSize = 20
	sizeBias    = 1.8  // exponent applied to the size sample, favours small drops
	jitter      = 0.03 // full width of the position jitter, normalized units
)

// Anchor is the centre and intensity signature of one stamped drop.
type Anchor struct {
	X         float64 `csv:"x"`
	Y         float64 `csv:"y"`
	Intensity uint8   `csv:"intensity"`
	Size      int     `csv:"size"`
}

// Options configure a Synthesizer.
type Options struct {
	Size    int
	Padding int
	Index   IndexKind
	Workers int // nearest-fill concurrency (0 = GOMAXPROCS)
}

// DefaultOptions returns the production canvas layout.
func DefaultOptions() Options {
	return Options{Size: CanvasSize, Padding: Padding, Index: IndexBrute}
}

// Synthesizer owns one drop field. Stamp and Fill are separate passes so
// callers can time them; Generate runs both.
type Synthesizer struct {
	opts    Options
	img     *image.NRGBA
	anchors []Anchor
}

// New returns a synthesizer with a transparent canvas.
func New(opts Options) (*Synthesizer, error) {
	if opts.Size <= 0 {
		return nil, fmt.Errorf("canvas size must be positive, got %d", opts.Size)
	}
	if opts.Padding < 0 || 2*opts.Padding >= opts.Size {
		return nil, fmt.Errorf("padding %d does not fit canvas %d", opts.Padding, opts.Size)
	}
	return &Synthesizer{
		opts: opts,
		img:  image.NewNRGBA(image.Rect(0, 0, opts.Size, opts.Size)),
	}, nil
}

// Image returns the canvas.
func (s *Synthesizer) Image() *image.NRGBA { return s.img }

// Anchors returns the drops stamped so far, in stamp order.
func (s *Synthesizer) Anchors() []Anchor { return s.anchors }

// Stamp draws one drop per point. Drop pixels wrap around the canvas edges.
func (s *Synthesizer) Stamp(points []Point, rng *rand.Rand) {
	size := s.opts.Size
	span := float64(size - 2*s.opts.Padding)

	for i, p := range points {
		d := int(fin.Lerp(math.Pow(rng.Float64(), sizeBias), minDropSize, maxDropSize))
		half := float64(d) / 2

		fromX := s.opts.Padding + int(span*((p.X+(rng.Float64()-0.5)*jitter)*0.5+0.5))
		fromY := s.opts.Padding + int(span*((p.Y+(rng.Float64()-0.5)*jitter)*0.5+0.5))
		cx, cy := float64(fromX)+half, float64(fromY)+half
		intensity := uint8(255 * rng.Float64())
		s.anchors = append(s.anchors, Anchor{X: cx, Y: cy, Intensity: intensity, Size: d})

		slog.Info("stamping drop",
			"percent", math.Round(1000*float64(i)/float64(len(points)))/10,
			"x", fromX,
			"y", fromY,
		)

		for y := 0; y < d; y++ {
			for x := 0; x < d; x++ {
				px, py := fromX+x, fromY+y
				dx, dy := float64(px)-cx, float64(py)-cy
				if dx*dx+dy*dy > half*half {
					continue
				}
				s.img.SetNRGBA(wrap(px, size), wrap(py, size), color.NRGBA{
					R: uint8(dx/half*127 + 127),
					G: uint8(dy/half*127 + 127),
					B: intensity,
					A: 255,
				})
			}
		}
	}
}

// Fill gives every unstamped pixel (alpha 0 and blue 0) the intensity of its
// nearest anchor in blue, leaving alpha at 0. Distances are flat, not
// wrapped. Rows are processed in concurrent bands.
func (s *Synthesizer) Fill(ctx context.Context) error {
	if len(s.anchors) == 0 {
		return nil
	}
	idx, err := NewIndex(s.opts.Index, s.anchors)
	if err != nil {
		return err
	}

	workers := s.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	size := s.opts.Size
	band := max(1, size/(workers*4))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for y0 := 0; y0 < size; y0 += band {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s.fillRows(idx, y0, min(y0+band, size))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	slog.Info("expansion finished", "anchors", len(s.anchors))
	return nil
}

func (s *Synthesizer) fillRows(idx Index, y0, y1 int) {
	pix := s.img.Pix
	for y := y0; y < y1; y++ {
		for x := 0; x < s.opts.Size; x++ {
			i := s.img.PixOffset(x, y)
			if pix[i+3] != 0 || pix[i+2] != 0 {
				continue
			}
			pix[i+2] = idx.Nearest(float64(x), float64(y)).Intensity
		}
	}
}

// Generate stamps points on a fresh canvas and fills the remainder.
func Generate(ctx context.Context, points []Point, rng *rand.Rand, opts Options) (*image.NRGBA, []Anchor, error) {
	s, err := New(opts)
	if err != nil {
		return nil, nil, err
	}
	s.Stamp(points, rng)
	if err := s.Fill(ctx); err != nil {
		return nil, nil, err
	}
	return s.img, s.anchors, nil
}

func wrap(v, n int) int {
	return ((v % n) + n) % n
}
