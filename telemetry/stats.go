package telemetry

import (
	"image"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Image kinds recorded in the manifest.
const (
	KindPiece = "piece"
	KindAtlas = "atlas"
	KindDrops = "drops"
)

// ImageStats describes one written image.
type ImageStats struct {
	Kind   string `csv:"kind"`
	Index  int    `csv:"index"`
	File   string `csv:"file"`
	Width  int    `csv:"width"`
	Height int    `csv:"height"`
	Seed   int64  `csv:"seed"`
	Blades int    `csv:"blades"`

	// Fraction of pixels with non-zero alpha
	Coverage float64 `csv:"coverage"`

	// Green channel distribution over covered pixels
	GreenMean float64 `csv:"green_mean"`
	GreenP10  float64 `csv:"green_p10"`
	GreenP50  float64 `csv:"green_p50"`
	GreenP90  float64 `csv:"green_p90"`

	DurationMS float64 `csv:"duration_ms"`
}

// ComputeImageStats fills the coverage and green distribution fields from
// img. The remaining fields are left for the caller.
func ComputeImageStats(img *image.NRGBA) ImageStats {
	b := img.Bounds()
	s := ImageStats{Width: b.Dx(), Height: b.Dy()}
	total := b.Dx() * b.Dy()
	if total == 0 {
		return s
	}

	var greens []float64
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+b.Dx()*4]
		for i := 0; i < len(row); i += 4 {
			if row[i+3] != 0 {
				greens = append(greens, float64(row[i+1]))
			}
		}
	}

	s.Coverage = float64(len(greens)) / float64(total)
	if len(greens) == 0 {
		return s
	}
	sort.Float64s(greens)
	s.GreenMean = stat.Mean(greens, nil)
	s.GreenP10 = stat.Quantile(0.1, stat.Empirical, greens, nil)
	s.GreenP50 = stat.Quantile(0.5, stat.Empirical, greens, nil)
	s.GreenP90 = stat.Quantile(0.9, stat.Empirical, greens, nil)
	return s
}
