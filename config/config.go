// Package config provides configuration loading and access for the generator.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/grassgen/drops"
	"github.com/pthm-cable/grassgen/fin"
	"github.com/pthm-cable/grassgen/piece"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Mode selects which pipeline the CLI runs.
type Mode string

const (
	ModeAuto   Mode = "auto"   // drops when the drop input file exists, blades otherwise
	ModeBlades Mode = "blades" // pieces and atlas
	ModeDrops  Mode = "drops"  // drop normal field
)

// Config holds all generator configuration parameters.
type Config struct {
	Mode      Mode            `yaml:"mode"`
	Seed      int64           `yaml:"seed"`    // 0 = time-based
	Workers   int             `yaml:"workers"` // 0 = GOMAXPROCS
	Blades    BladesConfig    `yaml:"blades"`
	Pieces    PiecesConfig    `yaml:"pieces"`
	Atlas     AtlasConfig     `yaml:"atlas"`
	Render    RenderConfig    `yaml:"render"`
	Drops     DropsConfig     `yaml:"drops"`
	Output    OutputConfig    `yaml:"output"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// BladesConfig holds the per-blade sampling ranges.
type BladesConfig struct {
	FinCount  Range `yaml:"fin_count"`
	X         Range `yaml:"x"`
	Y         Range `yaml:"y"`
	Vx        Range `yaml:"vx"`
	Vy        Range `yaml:"vy"`
	Gravity   Range `yaml:"gravity"`
	Width     Range `yaml:"width"`
	CurveBack Range `yaml:"curve_back"`
}

// PiecesConfig holds single-piece output settings.
type PiecesConfig struct {
	Resolution    int     `yaml:"resolution"`     // Edge length of each piece in pixels
	Count         int     `yaml:"count"`          // Number of <i>.png files
	SuperSampling float64 `yaml:"super_sampling"` // Render scale before downsampling (<= 1 disables)
}

// AtlasConfig holds atlas output settings.
type AtlasConfig struct {
	Resolution       int  `yaml:"resolution"`        // Edge length of each atlas cell
	Count            int  `yaml:"count"`             // Cells in the strip (0 = no atlas)
	OpaqueBackground bool `yaml:"opaque_background"` // Clear to opaque black before compositing
}

// RenderConfig holds rasterizer variant flags.
type RenderConfig struct {
	Streaks     bool    `yaml:"streaks"`      // Decorative stroke overlay
	StreakWidth float64 `yaml:"streak_width"` // Stroke width in render pixels
}

// DropsConfig holds drop-field settings.
type DropsConfig struct {
	Input     string          `yaml:"input"`     // Point list, one "x,y" per line
	Output    string          `yaml:"output"`    // PNG file name inside the output dir
	Threshold float64         `yaml:"threshold"` // Raw coordinates are divided by this
	Index     drops.IndexKind `yaml:"index"`     // brute | kdtree
}

// OutputConfig holds output settings.
type OutputConfig struct {
	Dir      string `yaml:"dir"`
	Manifest bool   `yaml:"manifest"` // Write manifest.csv and anchors.csv
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	LogStats bool `yaml:"log_stats"` // Log per-phase timings
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Params       fin.Params
	PieceOptions piece.Options
	DropOptions  drops.Options
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Set replaces the global configuration.
func Set(cfg *Config) {
	global = cfg
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns the embedded default configuration.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	return cfg, nil
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize normalizes ranges, validates and computes derived values. Load
// and LoadLegacy call it; callers that edit a Config afterwards call it again.
func (c *Config) Finalize() error {
	c.normalize()
	if err := c.validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	c.computeDerived()
	return nil
}

func (c *Config) normalize() {
	b := &c.Blades
	for _, r := range []*Range{&b.FinCount, &b.X, &b.Y, &b.Vx, &b.Vy, &b.Gravity, &b.Width, &b.CurveBack} {
		*r = r.Normalized()
	}
	if c.Mode == "" {
		c.Mode = ModeAuto
	}
	if c.Drops.Index == "" {
		c.Drops.Index = drops.IndexBrute
	}
}

func (c *Config) validate() error {
	var errs []error
	switch c.Mode {
	case ModeAuto, ModeBlades, ModeDrops:
	default:
		errs = append(errs, fmt.Errorf("unknown mode %q", c.Mode))
	}
	if c.Pieces.Count < 0 || c.Atlas.Count < 0 {
		errs = append(errs, errors.New("piece and atlas counts must not be negative"))
	}
	if c.Pieces.Count > 0 && c.Pieces.Resolution <= 0 {
		errs = append(errs, fmt.Errorf("pieces.resolution must be positive, got %d", c.Pieces.Resolution))
	}
	if c.Atlas.Count > 0 && c.Atlas.Resolution <= 0 {
		errs = append(errs, fmt.Errorf("atlas.resolution must be positive, got %d", c.Atlas.Resolution))
	}
	if c.Pieces.SuperSampling < 0 {
		errs = append(errs, fmt.Errorf("pieces.super_sampling must not be negative, got %v", c.Pieces.SuperSampling))
	}
	if c.Render.StreakWidth < 0 {
		errs = append(errs, fmt.Errorf("render.streak_width must not be negative, got %v", c.Render.StreakWidth))
	}
	if c.Drops.Threshold <= 0 {
		errs = append(errs, fmt.Errorf("drops.threshold must be positive, got %v", c.Drops.Threshold))
	}
	switch c.Drops.Index {
	case drops.IndexBrute, drops.IndexKDTree:
	default:
		errs = append(errs, fmt.Errorf("unknown drops.index %q", c.Drops.Index))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	b := c.Blades
	c.Derived.Params = fin.Params{
		FinCount:  b.FinCount.Fin(),
		X:         b.X.Fin(),
		Y:         b.Y.Fin(),
		Vx:        b.Vx.Fin(),
		Vy:        b.Vy.Fin(),
		Gravity:   b.Gravity.Fin(),
		Width:     b.Width.Fin(),
		CurveBack: b.CurveBack.Fin(),
	}
	c.Derived.PieceOptions = piece.Options{
		SuperSampling:    c.Pieces.SuperSampling,
		Streaks:          c.Render.Streaks,
		StreakWidth:      c.Render.StreakWidth,
		OpaqueBackground: c.Atlas.OpaqueBackground,
		Workers:          c.Workers,
	}
	opts := drops.DefaultOptions()
	opts.Index = c.Drops.Index
	opts.Workers = c.Workers
	c.Derived.DropOptions = opts
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
