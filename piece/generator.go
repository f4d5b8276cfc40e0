// Package piece composes simulated blades into square tiles and tiles into
// channel-packed atlases.
package piece

import (
	"image"
	"math"
	"math/rand"
	"runtime"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/grassgen/fin"
)

// Options control piece generation.
type Options struct {
	// SuperSampling renders at size*SuperSampling and downsamples when > 1.
	SuperSampling float64
	// Streaks enables the decorative stroke overlay on every blade.
	Streaks bool
	// StreakWidth is the overlay stroke width in pixels of the render buffer.
	StreakWidth float64
	// OpaqueBackground clears atlases to opaque black before compositing.
	OpaqueBackground bool
	// Workers bounds concurrent piece jobs (0 = GOMAXPROCS).
	Workers int
}

// Generator produces pieces and atlases from one set of blade parameters.
// It holds no mutable state; all randomness comes from the rng handles
// passed to its methods.
type Generator struct {
	Params fin.Params
	Opts   Options

	// OnStage, when set, is called as Atlas enters each stage.
	OnStage func(Stage)
}

// New returns a generator.
func New(params fin.Params, opts Options) *Generator {
	return &Generator{Params: params, Opts: opts}
}

// slot records a blade's place in the paint order.
type slot struct {
	Index int
}

// BladeCount samples the number of blades for one piece.
func (g *Generator) BladeCount(rng *rand.Rand) int {
	n := int(math.Round(g.Params.FinCount.At(rng.Float64())))
	return max(n, 0)
}

// RowOffset returns the normalized row position of blade i out of n.
// A single blade sits in the middle of the row.
func RowOffset(i, n int) float64 {
	if n <= 1 {
		return 0.5
	}
	return float64(i) / float64(n-1)
}

// Piece renders one tile at exactly size x size pixels without
// supersampling. It returns the image and the number of blades drawn.
func (g *Generator) Piece(size int, rng *rand.Rand) (*image.NRGBA, int) {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	n := g.BladeCount(rng)
	if n == 0 {
		return img, 0
	}

	world := ecs.NewWorld()
	spawn := ecs.NewMap2[fin.Blade, slot](world)
	for i := 0; i < n; i++ {
		y := RowOffset(i, n)
		b := fin.NewBlade(y, g.Params, rng)
		s := slot{Index: i}
		spawn.NewEntity(&b, &s)
	}

	r := fin.NewRasterizer(img, fin.Options{
		Streaks:     g.Opts.Streaks,
		StreakWidth: g.Opts.StreakWidth,
	})

	// Blades are painted whole in slot order, back row first, so rows
	// nearer the viewer cover the ones behind them.
	order := make([]*fin.Blade, n)
	filter := ecs.NewFilter2[fin.Blade, slot](world)
	query := filter.Query()
	for query.Next() {
		b, s := query.Get()
		order[s.Index] = b
	}
	for _, b := range order {
		r.Run(b, rng)
	}
	return img, n
}

// Render renders one tile at size x size, supersampling when configured.
func (g *Generator) Render(size int, rng *rand.Rand) (*image.NRGBA, int) {
	if g.Opts.SuperSampling > 1 {
		big := int(float64(size) * g.Opts.SuperSampling)
		img, n := g.Piece(big, rng)
		return Downsample(img, size), n
	}
	return g.Piece(size, rng)
}

func (g *Generator) workers() int {
	if g.Opts.Workers > 0 {
		return g.Opts.Workers
	}
	return runtime.GOMAXPROCS(0)
}
