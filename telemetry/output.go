package telemetry

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/pthm-cable/grassgen/config"
	"github.com/pthm-cable/grassgen/drops"
)

// OutputManager handles generated images and their CSV side files.
type OutputManager struct {
	dir          string
	manifestFile *os.File
	perfFile     *os.File

	// Track if headers have been written
	manifestHeaderWritten bool
	perfHeaderWritten     bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled). The manifest and perf files
// are only created when manifest is true.
func NewOutputManager(dir string, manifest bool) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	if !manifest {
		return om, nil
	}

	f, err := os.Create(filepath.Join(dir, "manifest.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating manifest.csv: %w", err)
	}
	om.manifestFile = f

	f, err = os.Create(filepath.Join(dir, "perf.csv"))
	if err != nil {
		om.manifestFile.Close()
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	om.perfFile = f

	return om, nil
}

// Path resolves name inside the output directory. Absolute names are
// returned unchanged.
func (om *OutputManager) Path(name string) string {
	if om == nil || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(om.dir, name)
}

// WritePNG encodes img to name inside the output directory and returns the
// written path.
func (om *OutputManager) WritePNG(name string, img image.Image) (string, error) {
	if om == nil {
		return "", nil
	}
	path := om.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", name, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("encoding %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", name, err)
	}
	return path, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteManifest appends image records to manifest.csv.
func (om *OutputManager) WriteManifest(stats ...ImageStats) error {
	if om == nil || om.manifestFile == nil || len(stats) == 0 {
		return nil
	}

	if !om.manifestHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(stats, om.manifestFile); err != nil {
			return fmt.Errorf("writing manifest: %w", err)
		}
		om.manifestHeaderWritten = true
	} else {
		// Subsequent writes skip headers
		if err := gocsv.MarshalWithoutHeaders(stats, om.manifestFile); err != nil {
			return fmt.Errorf("writing manifest: %w", err)
		}
	}

	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, mode string) error {
	if om == nil || om.perfFile == nil {
		return nil
	}

	records := []PerfStatsCSV{stats.ToCSV(mode)}

	if !om.perfHeaderWritten {
		if err := gocsv.Marshal(records, om.perfFile); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
		om.perfHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.perfFile); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
	}

	return nil
}

// WriteAnchors saves the drop anchors as anchors.csv.
func (om *OutputManager) WriteAnchors(anchors []drops.Anchor) error {
	if om == nil || om.manifestFile == nil {
		return nil
	}

	f, err := os.Create(filepath.Join(om.dir, "anchors.csv"))
	if err != nil {
		return fmt.Errorf("creating anchors.csv: %w", err)
	}
	if err := gocsv.Marshal(anchors, f); err != nil {
		f.Close()
		return fmt.Errorf("writing anchors: %w", err)
	}
	return f.Close()
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error

	if om.manifestFile != nil {
		if err := om.manifestFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if om.perfFile != nil {
		if err := om.perfFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
