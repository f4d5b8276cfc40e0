package fin

// Range is an inclusive [Lo, Hi] interval sampled by linear interpolation.
type Range struct {
	Lo float64
	Hi float64
}

// Fixed returns a collapsed range.
func Fixed(v float64) Range {
	return Range{Lo: v, Hi: v}
}

// At maps t in [0,1] into the range.
func (r Range) At(t float64) float64 {
	return Lerp(t, r.Lo, r.Hi)
}

// Normalized returns the range with Lo <= Hi. Swapping the bounds keeps the
// distribution of uniformly sampled values unchanged.
func (r Range) Normalized() Range {
	if r.Lo > r.Hi {
		return Range{Lo: r.Hi, Hi: r.Lo}
	}
	return r
}

// Params holds the per-run blade tunables.
type Params struct {
	FinCount  Range
	X         Range
	Y         Range
	Vx        Range
	Vy        Range
	Gravity   Range
	Width     Range
	CurveBack Range
}

// DefaultParams returns the stock grass look.
func DefaultParams() Params {
	return Params{
		FinCount:  Fixed(15),
		X:         Range{0.3, 0.7},
		Y:         Range{0.96, 0.99},
		Vx:        Range{-0.6, 0.6},
		Vy:        Range{-1.8, -0.8},
		Gravity:   Range{1.0, 2.2},
		Width:     Range{0.03, 0.05},
		CurveBack: Range{0.0, 1.7},
	}
}
