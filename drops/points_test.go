package drops

import (
	"math"
	"strings"
	"testing"
)

func TestReadPoints(t *testing.T) {
	input := strings.Join([]string{
		"0.3,0.3",
		" -0.12 , 0.06 ",
		"0.6,0",     // exactly on the threshold, dropped
		"abc,0.1",   // malformed
		"0.1,0.2,3", // too many fields
		"0.2",       // too few fields
		"",
		"-0.59,0.59",
	}, "\n")

	points, err := ReadPoints(strings.NewReader(input), DefaultThreshold)
	if err != nil {
		t.Fatalf("ReadPoints: %v", err)
	}
	want := []Point{{0.5, 0.5}, {-0.2, 0.1}, {-0.59 / 0.6, 0.59 / 0.6}}
	if len(points) != len(want) {
		t.Fatalf("expected %d points, got %d: %v", len(want), len(points), points)
	}
	for i := range want {
		if math.Abs(points[i].X-want[i].X) > 1e-12 || math.Abs(points[i].Y-want[i].Y) > 1e-12 {
			t.Errorf("point %d: got %v, want %v", i, points[i], want[i])
		}
	}
}

func TestReadPointsBadThreshold(t *testing.T) {
	if _, err := ReadPoints(strings.NewReader("0,0"), 0); err == nil {
		t.Error("expected error for zero threshold")
	}
}

func TestReadPointsEmpty(t *testing.T) {
	points, err := ReadPoints(strings.NewReader(""), DefaultThreshold)
	if err != nil {
		t.Fatalf("ReadPoints: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("expected no points, got %v", points)
	}
}
