// Package main dumps the per-step state of simulated blades as CSV, for
// tuning blade parameter ranges.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"math/rand"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/grassgen/config"
	"github.com/pthm-cable/grassgen/fin"
	"github.com/pthm-cable/grassgen/piece"
)

// TraceRow is the blade state after one integration step.
type TraceRow struct {
	Blade     int     `csv:"blade"`
	Step      int     `csv:"step"`
	X         float64 `csv:"x"`
	Y         float64 `csv:"y"`
	Width     float64 `csv:"width"`
	Vx        float64 `csv:"vx"`
	Vy        float64 `csv:"vy"`
	Life      float64 `csv:"life"`
	CurveBack float64 `csv:"curve_back"`
	Value     uint8   `csv:"value"`
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	legacyPath := flag.String("legacy-config", "", "Key=value config.txt (overrides -config)")
	blades := flag.Int("blades", 0, "Number of blades (0 = sample fin_count from config)")
	seed := flag.Int64("seed", 42, "RNG seed")
	size := flag.Int("size", 256, "Raster size in pixels")
	output := flag.String("output", "-", "CSV output path (- = stdout)")
	pngPath := flag.String("png", "", "Also write the rendered blades to this PNG")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *legacyPath != "" {
		cfg, err = config.LoadLegacy(*legacyPath)
	} else {
		cfg, err = config.Load(*configPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	rng := rand.New(rand.NewSource(*seed))
	n := *blades
	if n <= 0 {
		n = piece.New(cfg.Derived.Params, cfg.Derived.PieceOptions).BladeCount(rng)
	}

	opts := fin.Options{Streaks: cfg.Render.Streaks, StreakWidth: cfg.Render.StreakWidth}
	rows, img := trace(cfg.Derived.Params, opts, n, *size, rng)

	var w io.Writer = os.Stdout
	if *output != "-" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatalf("failed to create output: %v", err)
		}
		defer f.Close()
		w = f
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		log.Fatalf("failed to write trace: %v", err)
	}

	if *pngPath != "" {
		if err := writePNG(*pngPath, img); err != nil {
			log.Fatalf("failed to write png: %v", err)
		}
	}
	fmt.Fprintf(os.Stderr, "traced %d blades, %d steps\n", n, len(rows))
}

// trace simulates n blades on one size x size raster, spaced down the tile
// the same way a piece spaces them, and records every step.
func trace(p fin.Params, opts fin.Options, n, size int, rng *rand.Rand) ([]TraceRow, *image.NRGBA) {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	var rows []TraceRow
	blade := 0
	opts.OnSegment = func(s fin.Segment) {
		rows = append(rows, TraceRow{
			Blade:     blade,
			Step:      s.Step,
			X:         s.Blade.X,
			Y:         s.Blade.Y,
			Width:     s.Blade.Width,
			Vx:        s.Blade.Vx,
			Vy:        s.Blade.Vy,
			Life:      s.Blade.Life,
			CurveBack: s.Blade.CurveBack,
			Value:     s.Value,
		})
	}
	r := fin.NewRasterizer(img, opts)

	for i := 0; i < n; i++ {
		blade = i
		b := fin.NewBlade(piece.RowOffset(i, n), p, rng)
		r.Run(&b, rng)
	}
	return rows, img
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
