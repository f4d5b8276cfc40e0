package drops

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// DefaultThreshold scales raw list coordinates into the unit square.
const DefaultThreshold = 0.6

// Point is a drop position in normalized (-1,1)^2 canvas space.
type Point struct {
	X, Y float64
}

// ReadPoints parses "x,y" lines, divides both values by threshold and keeps
// points strictly inside the unit square. Lines without exactly two fields
// or with a malformed number are skipped.
func ReadPoints(r io.Reader, threshold float64) ([]Point, error) {
	if threshold <= 0 {
		return nil, fmt.Errorf("threshold must be positive, got %v", threshold)
	}

	var points []Point
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Split(sc.Text(), ",")
		if len(fields) != 2 {
			continue
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		if err != nil {
			continue
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			continue
		}
		p := Point{X: x / threshold, Y: y / threshold}
		if math.Abs(p.X) < 1 && math.Abs(p.Y) < 1 {
			points = append(points, p)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading points: %w", err)
	}
	return points, nil
}

// LoadPoints reads a point list file.
func LoadPoints(path string, threshold float64) ([]Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening point list: %w", err)
	}
	defer f.Close()
	return ReadPoints(f, threshold)
}
