package alerts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// WeatherAlert is a government weather alert (CAP properties).
type WeatherAlert struct {
	Identifier  string          `json:"id"`
	Event       string          `json:"event"`
	Headline    string          `json:"headline"`
	Description string          `json:"description,omitempty"`
	Level       Severity        `json:"severity"`
	Onset       time.Time       `json:"onset"`
	Ends        *time.Time      `json:"ends,omitempty"`
	AreaDesc    string          `json:"areaDesc,omitempty"`
	Geometry    json.RawMessage `json:"geometry,omitempty"`
}

func (a WeatherAlert) sealed() {}

func (a WeatherAlert) Kind() Kind { return KindWeather }

func (a WeatherAlert) ID() string {
	if a.Identifier != "" {
		return a.Identifier
	}
	return generateID(KindWeather, a.Event, a.Onset, a.Headline)
}

// Interval runs from onset to ends; an alert without ends is open-ended.
func (a WeatherAlert) Interval() Interval {
	if a.Ends == nil {
		return openInterval(a.Onset)
	}
	return Interval{Start: a.Onset, End: *a.Ends}
}

func (a WeatherAlert) Severity() Severity { return a.Level }

// Dangerous is true for Extreme and Severe alerts whose headline is not a
// Watch. The headline match is a plain case-sensitive substring test.
func (a WeatherAlert) Dangerous() bool {
	switch a.Level {
	case SeverityExtreme, SeveritySevere:
		return !strings.Contains(a.Headline, "Watch")
	default:
		return false
	}
}

// PermanentEnd is the TFR feed's sentinel for a restriction with no end.
const PermanentEnd = "PERM"

// TFREnd is a TFR effective end: a time, or permanent.
type TFREnd struct {
	Time      time.Time
	Permanent bool
}

func (e TFREnd) MarshalJSON() ([]byte, error) {
	if e.Permanent {
		return json.Marshal(PermanentEnd)
	}
	return json.Marshal(e.Time)
}

func (e *TFREnd) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode tfr effective end: %w", err)
	}
	if s == PermanentEnd {
		*e = TFREnd{Permanent: true}
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("decode tfr effective end %q: %w", s, err)
	}
	*e = TFREnd{Time: t}
	return nil
}

// TFR is a temporary flight restriction decoded from the NOTAM feed.
type TFR struct {
	NotamID        string          `json:"notam_id"`
	Type           string          `json:"type"`
	Facility       string          `json:"facility,omitempty"`
	Description    string          `json:"description,omitempty"`
	NotamText      string          `json:"notam_text"`
	EffectiveStart time.Time       `json:"effective_start"`
	EffectiveEnd   TFREnd          `json:"effective_end"`
	Geometry       json.RawMessage `json:"geometry,omitempty"`
}

func (t TFR) sealed() {}

func (t TFR) Kind() Kind { return KindTFR }

// ID covers the geometry as well as the NOTAM, so each area of a
// multi-area restriction is tracked on its own.
func (t TFR) ID() string {
	return generateID(KindTFR, t.NotamID, t.EffectiveStart, t.dedupeKey())
}

// Interval is open-ended for a permanent restriction.
func (t TFR) Interval() Interval {
	if t.EffectiveEnd.Permanent {
		return openInterval(t.EffectiveStart)
	}
	return Interval{Start: t.EffectiveStart, End: t.EffectiveEnd.Time}
}

func (t TFR) Severity() Severity { return SeveritySevere }

func (t TFR) Dangerous() bool { return true }

// dedupeKey identifies a restriction published by more than one office:
// same geometry, same NOTAM text.
func (t TFR) dedupeKey() string {
	var geom bytes.Buffer
	if len(t.Geometry) > 0 {
		if err := json.Compact(&geom, t.Geometry); err != nil {
			geom.Reset()
			geom.Write(t.Geometry)
		}
	}
	return geom.String() + "\x00" + t.NotamText
}
