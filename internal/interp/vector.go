// Package interp interpolates forecast values between known samples: wind
// vectors between altitudes, scalar series between points, and NWS-style
// grid values over ISO-8601 validity intervals.
package interp

import "math"

// Sample is a wind observation at a known height.
type Sample struct {
	HeightM      float64
	SpeedKph     float64
	DirectionDeg float64
}

// Wind is an interpolated wind vector.
type Wind struct {
	SpeedKph     float64
	DirectionDeg float64
}

// Vector interpolates the wind at heightM between two samples by linearly
// interpolating the Cartesian components of each vector. The result is a
// vector average: two equal-speed winds a few degrees apart interpolate to a
// slightly slower wind, and opposite winds cancel toward zero.
//
// heightM is expected to lie strictly between a.HeightM and b.HeightM.
func Vector(a, b Sample, heightM float64) Wind {
	dirA, dirB := shortestArc(a.DirectionDeg, b.DirectionDeg)

	ax, ay := components(a.SpeedKph, dirA)
	bx, by := components(b.SpeedKph, dirB)

	frac := (heightM - a.HeightM) / (b.HeightM - a.HeightM)
	x := ax + (bx-ax)*frac
	y := ay + (by-ay)*frac

	return Wind{
		SpeedKph:     math.Hypot(x, y),
		DirectionDeg: NormalizeDegrees(math.Atan2(y, x) * 180 / math.Pi),
	}
}

// shortestArc rotates the numerically smaller direction by a full turn when
// the naive difference exceeds 180°, so the two directions differ by the
// short way around the compass.
func shortestArc(a, b float64) (float64, float64) {
	if math.Abs(a-b) <= 180 {
		return a, b
	}
	if a < b {
		return a + 360, b
	}
	return a, b + 360
}

func components(speed, dirDeg float64) (float64, float64) {
	rad := dirDeg * math.Pi / 180
	return speed * math.Cos(rad), speed * math.Sin(rad)
}

// NormalizeDegrees maps any angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}
