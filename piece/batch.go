package piece

import (
	"context"
	"image"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"
)

// Result is one generated piece.
type Result struct {
	Index    int
	Seed     int64
	Blades   int
	Image    *image.NRGBA
	Duration time.Duration
}

// Pieces renders count independent tiles concurrently. Every piece gets its
// own RNG seeded from rng before any job starts, so the output does not
// depend on the worker count or scheduling.
func (g *Generator) Pieces(ctx context.Context, size, count int, rng *rand.Rand) ([]Result, error) {
	seeds := make([]int64, count)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	results := make([]Result, count)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers())
	for i, seed := range seeds {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			img, n := g.Render(size, rand.New(rand.NewSource(seed)))
			results[i] = Result{
				Index:    i,
				Seed:     seed,
				Blades:   n,
				Image:    img,
				Duration: time.Since(start),
			}
			slog.Debug("piece generated", "index", i, "size", size, "blades", n, "seed", seed)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
