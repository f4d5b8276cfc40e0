package main

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/grassgen/fin"
)

func TestTraceStepsAreSequential(t *testing.T) {
	p := fin.DefaultParams()
	rows, img := trace(p, fin.Options{}, 3, 64, rand.New(rand.NewSource(42)))

	if len(rows) == 0 {
		t.Fatal("expected trace rows")
	}
	if img.Bounds().Dx() != 64 {
		t.Errorf("raster width = %d, want 64", img.Bounds().Dx())
	}

	seen := map[int]bool{}
	prevBlade, prevStep := -1, 0
	for _, r := range rows {
		seen[r.Blade] = true
		if r.Blade != prevBlade {
			if r.Step != 1 {
				t.Fatalf("blade %d starts at step %d, want 1", r.Blade, r.Step)
			}
		} else if r.Step != prevStep+1 {
			t.Fatalf("blade %d step %d follows %d", r.Blade, r.Step, prevStep)
		}
		if r.Width < fin.MinWidth {
			t.Errorf("blade %d step %d width %v below floor", r.Blade, r.Step, r.Width)
		}
		prevBlade, prevStep = r.Blade, r.Step
	}
	if len(seen) != 3 {
		t.Errorf("traced %d blades, want 3", len(seen))
	}
}

func TestTraceDeterministic(t *testing.T) {
	p := fin.DefaultParams()
	a, _ := trace(p, fin.Options{Streaks: true}, 2, 32, rand.New(rand.NewSource(7)))
	b, _ := trace(p, fin.Options{Streaks: true}, 2, 32, rand.New(rand.NewSource(7)))

	if len(a) != len(b) {
		t.Fatalf("row counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("row %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestTraceZeroBlades(t *testing.T) {
	rows, img := trace(fin.DefaultParams(), fin.Options{}, 0, 8, rand.New(rand.NewSource(1)))
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
	for _, v := range img.Pix {
		if v != 0 {
			t.Fatal("expected transparent raster")
		}
	}
}
