package domain

import (
	"fmt"
	"time"
)

// Source identifies where a winds-aloft report came from.
type Source string

const (
	SourceSounding Source = "sounding"
	SourceGridded  Source = "gridded"
)

// ParseSource validates a source name.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceSounding, SourceGridded:
		return Source(s), nil
	default:
		return "", fmt.Errorf("unknown report source %q", s)
	}
}

// WindsAloftReport is the uniform multi-altitude time series for one point.
// A report is immutable once assembled.
type WindsAloftReport struct {
	Latitude     float64          `json:"latitude"`
	Longitude    float64          `json:"longitude"`
	Source       Source           `json:"source"`
	ElevationInM *float64         `json:"elevation_m,omitempty"`
	FetchedAt    time.Time        `json:"fetched_at"`
	Hours        []WindsAloftHour `json:"hours"`

	// Extended is set once a stale sounding report has had its
	// supplementary hours appended.
	Extended bool `json:"extended,omitempty"`
}

// WindsAloftHour is one forecast hour. Altitudes are strictly ascending.
type WindsAloftHour struct {
	Timestamp time.Time            `json:"timestamp"`
	CAPE      float64              `json:"cape"`
	CIN       *float64             `json:"cin,omitempty"`
	Altitudes []WindsAloftAltitude `json:"altitudes"`
}

// WindsAloftAltitude is one level of an hour's vertical profile.
type WindsAloftAltitude struct {
	AltitudeInM      float64 `json:"altitude_m"`
	PressureHPa      float64 `json:"pressure_hpa"`
	WindSpeedKph     float64 `json:"wind_speed_kph"`
	WindDirectionDeg float64 `json:"wind_direction_deg"`
	TemperatureC     float64 `json:"temperature_c"`
	DewpointC        float64 `json:"dewpoint_c"`
}

// Empty reports whether the report carries no usable hours.
func (r WindsAloftReport) Empty() bool {
	return len(r.Hours) == 0
}

// FirstHour and LastHour return the bounding timestamps. Both are zero for
// an empty report.
func (r WindsAloftReport) FirstHour() time.Time {
	if r.Empty() {
		return time.Time{}
	}
	return r.Hours[0].Timestamp
}

func (r WindsAloftReport) LastHour() time.Time {
	if r.Empty() {
		return time.Time{}
	}
	return r.Hours[len(r.Hours)-1].Timestamp
}

// Validate checks the physical and ordering invariants of every hour:
// strictly ascending altitudes, dewpoint not above temperature, and wind
// direction in [0, 360). A violation means a source or derivation bug.
func (r WindsAloftReport) Validate() error {
	for i, h := range r.Hours {
		if i > 0 && !h.Timestamp.After(r.Hours[i-1].Timestamp) {
			return fmt.Errorf("hour %d (%s) is not after the previous hour", i, h.Timestamp.Format(time.RFC3339))
		}
		if err := h.Validate(); err != nil {
			return fmt.Errorf("hour %s: %w", h.Timestamp.Format(time.RFC3339), err)
		}
	}
	return nil
}

// Validate checks the invariants of a single hour.
func (h WindsAloftHour) Validate() error {
	for i, a := range h.Altitudes {
		if i > 0 && a.AltitudeInM <= h.Altitudes[i-1].AltitudeInM {
			return fmt.Errorf("altitude %d (%.1fm) not above %.1fm", i, a.AltitudeInM, h.Altitudes[i-1].AltitudeInM)
		}
		if a.DewpointC > a.TemperatureC {
			return fmt.Errorf("altitude %.1fm: dewpoint %.2fC above temperature %.2fC", a.AltitudeInM, a.DewpointC, a.TemperatureC)
		}
		if a.WindDirectionDeg < 0 || a.WindDirectionDeg >= 360 {
			return fmt.Errorf("altitude %.1fm: wind direction %.1f out of range", a.AltitudeInM, a.WindDirectionDeg)
		}
	}
	return nil
}
