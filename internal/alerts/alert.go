// Package alerts correlates weather alerts, temporary flight restrictions and
// aviation hazard advisories into one display-ready, read-tracked set.
//
// Every alert variant is a concrete type implementing Alert. Callers switch on
// the concrete type (or on Kind) rather than probing payload fields.
package alerts

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Kind discriminates the alert variants.
type Kind string

const (
	KindWeather Kind = "weather"
	KindTFR     Kind = "tfr"
	KindSigmet  Kind = "sigmet"
	KindGAirmet Kind = "gairmet"
	KindCWA     Kind = "cwa"
	KindISigmet Kind = "isigmet"
)

// Alert is implemented by WeatherAlert, TFR, Sigmet, GAirmet, CWA and ISigmet.
type Alert interface {
	ID() string
	Kind() Kind
	Interval() Interval
	Severity() Severity
	Dangerous() bool

	sealed()
}

// Snapshot is one decoded set of the three alert feeds. Aviation hazards are
// split by product.
type Snapshot struct {
	Weather  []WeatherAlert `json:"weather"`
	TFRs     []TFR          `json:"tfrs"`
	Sigmets  []Sigmet       `json:"sigmets"`
	GAirmets []GAirmet      `json:"gairmets"`
	CWAs     []CWA          `json:"cwas"`
	ISigmets []ISigmet      `json:"isigmets"`
}

// All returns every alert in feed order: weather alerts, TFRs, then aviation
// hazards.
func (s Snapshot) All() []Alert {
	out := make([]Alert, 0, len(s.Weather)+len(s.TFRs)+len(s.Sigmets)+len(s.GAirmets)+len(s.CWAs)+len(s.ISigmets))
	for _, a := range s.Weather {
		out = append(out, a)
	}
	for _, a := range s.TFRs {
		out = append(out, a)
	}
	for _, a := range s.Sigmets {
		out = append(out, a)
	}
	for _, a := range s.GAirmets {
		out = append(out, a)
	}
	for _, a := range s.CWAs {
		out = append(out, a)
	}
	for _, a := range s.ISigmets {
		out = append(out, a)
	}
	return out
}

// Len is the total number of alerts across feeds.
func (s Snapshot) Len() int {
	return len(s.Weather) + len(s.TFRs) + len(s.Sigmets) + len(s.GAirmets) + len(s.CWAs) + len(s.ISigmets)
}

// generateID produces a deterministic ID from an alert's identifying fields,
// so the same advisory keeps its read state across feed refreshes.
func generateID(kind Kind, fields ...any) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		switch v := f.(type) {
		case time.Time:
			parts[i] = v.UTC().Format(time.RFC3339)
		default:
			parts[i] = fmt.Sprint(v)
		}
	}
	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return string(kind) + "-" + hex.EncodeToString(hash[:8])
}
