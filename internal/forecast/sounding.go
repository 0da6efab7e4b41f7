package forecast

import (
	"sort"
	"time"

	"github.com/couchcryptid/aloft-etl/internal/domain"
	"github.com/couchcryptid/aloft-etl/internal/interp"
	"github.com/couchcryptid/aloft-etl/internal/units"
)

// InvalidValue is the sounding sentinel for a missing field.
const InvalidValue = 99999

// SoundingRecord is one parsed point sounding for a single forecast hour,
// with levels ordered by ascending height.
type SoundingRecord struct {
	Latitude  float64         `json:"lat"`
	Longitude float64         `json:"lon"`
	Timestamp time.Time       `json:"timestamp"`
	CAPE      float64         `json:"cape"`
	CIN       *float64        `json:"cin,omitempty"`
	Levels    []SoundingLevel `json:"levels"`
}

// SoundingLevel carries temperatures in tenths of °C and wind speed in
// tenths of knots, as the sounding text format encodes them.
type SoundingLevel struct {
	PressureHPa          float64 `json:"pressure_hpa"`
	HeightM              float64 `json:"height_m"`
	TemperatureTenthsC   int     `json:"temp_c10"`
	DewpointTenthsC      int     `json:"dewpt_c10"`
	WindDirectionDeg     int     `json:"wind_dir_deg"`
	WindSpeedTenthsKnots int     `json:"wind_spd_kt10"`
}

// valid reports whether every field is present. A level missing only its
// dewpoint is still dropped: an altitude always carries a dewpoint.
func (l SoundingLevel) valid() bool {
	return l.HeightM != InvalidValue &&
		l.PressureHPa != InvalidValue &&
		l.TemperatureTenthsC != InvalidValue &&
		l.DewpointTenthsC != InvalidValue &&
		l.WindDirectionDeg != InvalidValue &&
		l.WindSpeedTenthsKnots != InvalidValue
}

func (l SoundingLevel) altitude() domain.WindsAloftAltitude {
	return domain.WindsAloftAltitude{
		AltitudeInM:      l.HeightM,
		PressureHPa:      l.PressureHPa,
		WindSpeedKph:     units.KnotsToKph(float64(l.WindSpeedTenthsKnots) / 10),
		WindDirectionDeg: interp.NormalizeDegrees(float64(l.WindDirectionDeg)),
		TemperatureC:     float64(l.TemperatureTenthsC) / 10,
		DewpointC:        float64(l.DewpointTenthsC) / 10,
	}
}

// SoundingHours converts parsed records into report hours ordered by time.
// Levels with any invalid field are dropped, as are levels not above the
// previous kept level. A repeated timestamp keeps the first record; records
// with no usable level produce no hour.
func SoundingHours(records []SoundingRecord) []domain.WindsAloftHour {
	sorted := make([]SoundingRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	hours := make([]domain.WindsAloftHour, 0, len(sorted))
	for _, rec := range sorted {
		if n := len(hours); n > 0 && hours[n-1].Timestamp.Equal(rec.Timestamp) {
			continue
		}

		altitudes := make([]domain.WindsAloftAltitude, 0, len(rec.Levels))
		for _, lvl := range rec.Levels {
			if !lvl.valid() {
				continue
			}
			if n := len(altitudes); n > 0 && lvl.HeightM <= altitudes[n-1].AltitudeInM {
				continue
			}
			altitudes = append(altitudes, lvl.altitude())
		}
		if len(altitudes) == 0 {
			continue
		}

		hours = append(hours, domain.WindsAloftHour{
			Timestamp: rec.Timestamp.UTC(),
			CAPE:      rec.CAPE,
			CIN:       rec.CIN,
			Altitudes: altitudes,
		})
	}
	return hours
}

// NormalizeSoundings builds a sounding report for the requested point. The
// station elevation is the lowest level of the first hour.
func NormalizeSoundings(records []SoundingRecord, lat, lon float64, fetchedAt time.Time) domain.WindsAloftReport {
	report := domain.WindsAloftReport{
		Latitude:  lat,
		Longitude: lon,
		Source:    domain.SourceSounding,
		FetchedAt: fetchedAt,
		Hours:     SoundingHours(records),
	}
	if !report.Empty() {
		elevation := report.Hours[0].Altitudes[0].AltitudeInM
		report.ElevationInM = &elevation
	}
	return report
}
