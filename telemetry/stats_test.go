package telemetry

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestComputeImageStats(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	// 10 covered pixels with green 10, 20, ..., 100
	for i := 0; i < 10; i++ {
		img.SetNRGBA(i, 3, color.NRGBA{G: uint8((i + 1) * 10), A: 255})
	}

	s := ComputeImageStats(img)

	if s.Width != 10 || s.Height != 10 {
		t.Errorf("dims = %dx%d, want 10x10", s.Width, s.Height)
	}
	if math.Abs(s.Coverage-0.1) > 1e-9 {
		t.Errorf("coverage = %v, want 0.1", s.Coverage)
	}
	if math.Abs(s.GreenMean-55) > 1e-9 {
		t.Errorf("green mean = %v, want 55", s.GreenMean)
	}

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"p10", s.GreenP10, 10},
		{"p50", s.GreenP50, 50},
		{"p90", s.GreenP90, 90},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestComputeImageStatsEmpty(t *testing.T) {
	s := ComputeImageStats(image.NewNRGBA(image.Rect(0, 0, 4, 4)))
	if s.Coverage != 0 || s.GreenMean != 0 || s.GreenP50 != 0 {
		t.Errorf("expected zero stats for transparent image, got %+v", s)
	}

	s = ComputeImageStats(image.NewNRGBA(image.Rectangle{}))
	if s.Width != 0 || s.Coverage != 0 {
		t.Errorf("expected zero stats for empty image, got %+v", s)
	}
}

func TestComputeImageStatsIgnoresTransparentGreen(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{G: 200, A: 0})
	img.SetNRGBA(1, 0, color.NRGBA{G: 100, A: 255})

	s := ComputeImageStats(img)
	if s.GreenMean != 100 {
		t.Errorf("green mean = %v, want 100", s.GreenMean)
	}
	if s.Coverage != 0.5 {
		t.Errorf("coverage = %v, want 0.5", s.Coverage)
	}
}
