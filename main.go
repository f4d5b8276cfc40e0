package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/pthm-cable/grassgen/config"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	legacyPath := flag.String("legacy-config", "", "Path to a Key=value config.txt (overrides -config)")
	mode := flag.String("mode", "", "auto | blades | drops (empty = use config)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = use config, then time-based)")
	outputDir := flag.String("output-dir", "", "Output directory (empty = use config)")
	workers := flag.Int("workers", -1, "Parallel workers (-1 = use config, 0 = GOMAXPROCS)")
	logStats := flag.Bool("log-stats", false, "Log per-phase timings via slog")
	logFormat := flag.String("log-format", "json", "json | text")
	logLevel := flag.String("log-level", "info", "debug | info | warn | error")

	flag.Parse()

	setupLogging(*logFormat, *logLevel)

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
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// CLI overrides
	if *mode != "" {
		cfg.Mode = config.Mode(*mode)
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *workers >= 0 {
		cfg.Workers = *workers
	}
	if *logStats {
		cfg.Telemetry.LogStats = true
	}
	if err := cfg.Finalize(); err != nil {
		slog.Error("failed to apply flags", "error", err)
		os.Exit(1)
	}
	config.Set(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("generation failed", "error", err)
		os.Exit(1)
	}
}

func setupLogging(format, level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
