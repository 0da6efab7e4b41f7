package alerts

import "time"

// Interval is a half-open validity window [Start, End). An open-ended
// interval never ends; its End is a display placeholder ten years after
// Start.
type Interval struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	OpenEnded bool      `json:"open_ended,omitempty"`
}

// openInterval returns an open-ended interval starting at start.
func openInterval(start time.Time) Interval {
	return Interval{Start: start, End: start.AddDate(10, 0, 0), OpenEnded: true}
}

// Contains reports whether t is within [Start, End).
func (i Interval) Contains(t time.Time) bool {
	if t.Before(i.Start) {
		return false
	}
	return i.OpenEnded || t.Before(i.End)
}

// Overlaps reports whether the interval intersects [from, to).
func (i Interval) Overlaps(from, to time.Time) bool {
	if !i.Start.Before(to) {
		return false
	}
	return i.OpenEnded || i.End.After(from)
}

// Ended reports whether the interval is over at t.
func (i Interval) Ended(t time.Time) bool {
	return !i.OpenEnded && !t.Before(i.End)
}

// IsActive reports whether a is valid at t.
func IsActive(a Alert, t time.Time) bool {
	return a.Interval().Contains(t)
}
