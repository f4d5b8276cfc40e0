package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/pthm-cable/grassgen/config"
	"github.com/pthm-cable/grassgen/drops"
	"github.com/pthm-cable/grassgen/piece"
	"github.com/pthm-cable/grassgen/telemetry"
)

// runner carries the per-invocation state shared by both pipelines.
type runner struct {
	cfg  *config.Config
	out  *telemetry.OutputManager
	perf *telemetry.PerfCollector
	rng  *rand.Rand
}

// run executes the pipeline selected by cfg.Mode and writes every output
// under cfg.Output.Dir.
func run(ctx context.Context, cfg *config.Config) error {
	out, err := telemetry.NewOutputManager(cfg.Output.Dir, cfg.Output.Manifest)
	if err != nil {
		return err
	}
	defer out.Close()

	r := &runner{
		cfg:  cfg,
		out:  out,
		perf: telemetry.NewPerfCollector(),
		rng:  rand.New(rand.NewSource(cfg.Seed)),
	}

	mode, err := resolveMode(cfg)
	if err != nil {
		return err
	}
	slog.Info("starting generation",
		"mode", mode,
		"seed", cfg.Seed,
		"workers", cfg.Workers,
		"output_dir", out.Dir(),
	)

	switch mode {
	case config.ModeDrops:
		err = r.drops(ctx)
	default:
		err = r.blades(ctx)
	}
	if err != nil {
		return err
	}

	if err := out.WriteConfig(cfg); err != nil {
		return err
	}
	stats := r.perf.Stats()
	if cfg.Telemetry.LogStats {
		stats.LogStats()
	}
	if err := out.WritePerf(stats, string(mode)); err != nil {
		return err
	}
	return out.Close()
}

// resolveMode turns auto into drops when the point list exists.
func resolveMode(cfg *config.Config) (config.Mode, error) {
	if cfg.Mode != config.ModeAuto {
		return cfg.Mode, nil
	}
	_, err := os.Stat(cfg.Drops.Input)
	switch {
	case err == nil:
		return config.ModeDrops, nil
	case errors.Is(err, fs.ErrNotExist):
		return config.ModeBlades, nil
	default:
		return "", fmt.Errorf("checking drop input: %w", err)
	}
}

func (r *runner) blades(ctx context.Context) error {
	gen := piece.New(r.cfg.Derived.Params, r.cfg.Derived.PieceOptions)

	if n := r.cfg.Pieces.Count; n > 0 {
		r.perf.StartRun()
		r.perf.StartPhase(telemetry.PhaseSimulate)
		results, err := gen.Pieces(ctx, r.cfg.Pieces.Resolution, n, r.rng)
		if err != nil {
			return fmt.Errorf("generating pieces: %w", err)
		}

		r.perf.StartPhase(telemetry.PhaseEncode)
		for _, res := range results {
			r.perf.RecordPieces(res.Duration)
			name := fmt.Sprintf("%d.png", res.Index)
			if err := r.write(name, telemetry.KindPiece, res.Image, res); err != nil {
				return err
			}
		}
		r.perf.EndRun()
		slog.Info("pieces written", "count", n, "resolution", r.cfg.Pieces.Resolution)
	}

	if n := r.cfg.Atlas.Count; n > 0 {
		size := r.cfg.Atlas.Resolution
		r.perf.StartRun()
		gen.OnStage = func(s piece.Stage) { r.perf.StartPhase(string(s)) }
		atlas, results, err := gen.Atlas(ctx, size, n, r.rng)
		gen.OnStage = nil
		if err != nil {
			return fmt.Errorf("generating atlas: %w", err)
		}

		r.perf.StartPhase(telemetry.PhaseEncode)
		var total piece.Result
		for _, res := range results {
			total.Blades += res.Blades
			total.Duration += res.Duration
			r.perf.RecordPieces(res.Duration)
		}
		if err := r.write("atlas.png", telemetry.KindAtlas, atlas, total); err != nil {
			return err
		}
		r.perf.EndRun()
		slog.Info("atlas written", "count", n, "resolution", size)
	}

	return nil
}

func (r *runner) drops(ctx context.Context) error {
	points, err := drops.LoadPoints(r.cfg.Drops.Input, r.cfg.Drops.Threshold)
	if err != nil {
		return err
	}
	slog.Info("points loaded", "input", r.cfg.Drops.Input, "points", len(points))

	syn, err := drops.New(r.cfg.Derived.DropOptions)
	if err != nil {
		return err
	}

	start := time.Now()
	r.perf.StartRun()
	r.perf.StartPhase(telemetry.PhaseStamp)
	syn.Stamp(points, r.rng)

	r.perf.StartPhase(telemetry.PhaseFill)
	if err := syn.Fill(ctx); err != nil {
		return fmt.Errorf("filling drop field: %w", err)
	}
	elapsed := time.Since(start)

	r.perf.StartPhase(telemetry.PhaseEncode)
	res := piece.Result{Seed: r.cfg.Seed, Duration: elapsed}
	if err := r.write(r.cfg.Drops.Output, telemetry.KindDrops, syn.Image(), res); err != nil {
		return err
	}
	if err := r.out.WriteAnchors(syn.Anchors()); err != nil {
		return err
	}
	r.perf.EndRun()
	return nil
}

// write encodes img and appends its manifest row.
func (r *runner) write(name, kind string, img *image.NRGBA, res piece.Result) error {
	path, err := r.out.WritePNG(name, img)
	if err != nil {
		return err
	}
	stats := telemetry.ComputeImageStats(img)
	stats.Kind = kind
	stats.Index = res.Index
	stats.File = name
	stats.Seed = res.Seed
	stats.Blades = res.Blades
	stats.DurationMS = float64(res.Duration.Microseconds()) / 1000
	slog.Debug("image written", "path", path, "kind", kind, "coverage", stats.Coverage)
	return r.out.WriteManifest(stats)
}
