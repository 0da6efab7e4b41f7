package interp

// Point is one known value of a scalar series.
type Point struct {
	X float64
	Y float64
}

// Linear returns the value at x interpolated between the nearest point
// strictly below x and the nearest point strictly above it. Points may be in
// any order. ok is false when x is not bounded on both sides, including when
// x coincides with the first or last point.
func Linear(x float64, points ...Point) (value float64, ok bool) {
	var lower, upper Point
	var haveLower, haveUpper bool

	for _, p := range points {
		switch {
		case p.X < x:
			if !haveLower || p.X > lower.X {
				lower, haveLower = p, true
			}
		case p.X > x:
			if !haveUpper || p.X < upper.X {
				upper, haveUpper = p, true
			}
		}
	}

	if !haveLower || !haveUpper {
		return 0, false
	}

	frac := (x - lower.X) / (upper.X - lower.X)
	return lower.Y + (upper.Y-lower.Y)*frac, true
}
