package interp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDuration is returned for validTime strings that are not
// "<RFC3339 start>/<ISO-8601 duration>".
var ErrInvalidDuration = errors.New("invalid ISO-8601 duration")

// GridValue is one entry of an NWS gridpoint property series, e.g.
// {"validTime": "2024-04-26T15:00:00+00:00/PT3H", "value": 12.5}.
type GridValue struct {
	ValidTime string   `json:"validTime"`
	Value     *float64 `json:"value"`
}

// Window is the span a grid value applies to. End is start + duration − 1s and
// is exclusive, so the final second of the nominal duration belongs to no
// value.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls in [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// ParseValidTime splits a gridpoint validTime into its window.
func ParseValidTime(validTime string) (Window, error) {
	startStr, durStr, found := strings.Cut(validTime, "/")
	if !found {
		return Window{}, fmt.Errorf("parse valid time %q: %w", validTime, ErrInvalidDuration)
	}
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return Window{}, fmt.Errorf("parse valid time %q: %w", validTime, err)
	}
	d, err := ParseDuration(durStr)
	if err != nil {
		return Window{}, fmt.Errorf("parse valid time %q: %w", validTime, err)
	}
	return Window{Start: start, End: start.Add(d - time.Second)}, nil
}

// ValueAt returns the value whose window contains t. Entries with a null
// value or an unparseable validTime are skipped.
func ValueAt(values []GridValue, t time.Time) (float64, bool) {
	for _, v := range values {
		if v.Value == nil {
			continue
		}
		w, err := ParseValidTime(v.ValidTime)
		if err != nil {
			continue
		}
		if w.Contains(t) {
			return *v.Value, true
		}
	}
	return 0, false
}

// ParseDuration parses the fixed-length subset of ISO-8601 durations used by
// gridpoint forecasts: weeks, days, hours, minutes, and seconds, e.g. "PT1H",
// "P1DT6H", "P2W". Years and months have no fixed length and are rejected.
func ParseDuration(s string) (time.Duration, error) {
	rest, ok := strings.CutPrefix(s, "P")
	if !ok || rest == "" {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidDuration)
	}

	var total time.Duration
	inTime := false
	num := ""
	for _, r := range rest {
		switch {
		case r >= '0' && r <= '9':
			num += string(r)
		case r == 'T':
			if inTime || num != "" {
				return 0, fmt.Errorf("%q: %w", s, ErrInvalidDuration)
			}
			inTime = true
		default:
			if num == "" {
				return 0, fmt.Errorf("%q: %w", s, ErrInvalidDuration)
			}
			n, err := strconv.Atoi(num)
			if err != nil {
				return 0, fmt.Errorf("%q: %w", s, ErrInvalidDuration)
			}
			unit, err := durationUnit(r, inTime)
			if err != nil {
				return 0, fmt.Errorf("%q: %w", s, err)
			}
			total += time.Duration(n) * unit
			num = ""
		}
	}
	if num != "" {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidDuration)
	}
	return total, nil
}

func durationUnit(designator rune, inTime bool) (time.Duration, error) {
	if inTime {
		switch designator {
		case 'H':
			return time.Hour, nil
		case 'M':
			return time.Minute, nil
		case 'S':
			return time.Second, nil
		}
		return 0, ErrInvalidDuration
	}
	switch designator {
	case 'W':
		return 7 * 24 * time.Hour, nil
	case 'D':
		return 24 * time.Hour, nil
	}
	return 0, ErrInvalidDuration
}
