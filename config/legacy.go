package config

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// LoadLegacy loads a "Key=v1[,v2]" text config over the embedded defaults.
// Malformed numbers are skipped, a single value collapses a range and
// unknown keys are logged and ignored.
func LoadLegacy(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening legacy config: %w", err)
	}
	defer f.Close()
	return ReadLegacy(f)
}

// ReadLegacy is LoadLegacy over a reader.
func ReadLegacy(r io.Reader) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		key, raw, ok := strings.Cut(sc.Text(), "=")
		if !ok || strings.Contains(raw, "=") {
			continue
		}
		key = strings.TrimSpace(key)
		values := parseValues(raw)
		if !cfg.applyLegacy(key, values) {
			slog.Warn("unknown config key", "key", key)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading legacy config: %w", err)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseValues(raw string) []float64 {
	var vs []float64
	for _, tok := range strings.Split(raw, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
		if err != nil {
			continue
		}
		vs = append(vs, v)
	}
	return vs
}

// fillRange follows the legacy rules: no values leaves the range alone,
// exactly two set both bounds, anything else collapses to the first value.
func fillRange(r *Range, vs []float64) {
	if len(vs) == 0 {
		return
	}
	r.Low = vs[0]
	r.High = vs[0]
	if len(vs) == 2 {
		r.High = vs[1]
	}
}

func fillInt(v *int, vs []float64) {
	if len(vs) > 0 {
		*v = int(vs[0])
	}
}

// applyLegacy maps one legacy key; it reports false for unknown keys.
func (c *Config) applyLegacy(key string, vs []float64) bool {
	b := &c.Blades
	switch key {
	case "FinCount":
		fillRange(&b.FinCount, vs)
	case "X":
		fillRange(&b.X, vs)
	case "Y":
		fillRange(&b.Y, vs)
	case "Vx":
		fillRange(&b.Vx, vs)
	case "Vy":
		fillRange(&b.Vy, vs)
	case "Gravity":
		fillRange(&b.Gravity, vs)
	case "Width":
		fillRange(&b.Width, vs)
	case "CurveBack":
		fillRange(&b.CurveBack, vs)
	case "ResolutionSingle":
		fillInt(&c.Pieces.Resolution, vs)
	case "ResolutionSet":
		fillInt(&c.Atlas.Resolution, vs)
	case "CountSingle":
		fillInt(&c.Pieces.Count, vs)
	case "CountSet":
		fillInt(&c.Atlas.Count, vs)
	case "SuperSampling":
		if len(vs) > 0 {
			c.Pieces.SuperSampling = vs[0]
		}
	default:
		return false
	}
	return true
}
