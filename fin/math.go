package fin

// Lerp maps t in [0,1] onto [v0,v1].
func Lerp(t, v0, v1 float64) float64 {
	return (1-t)*v0 + t*v1
}

// Saturate clamps v to [0,1].
func Saturate(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
