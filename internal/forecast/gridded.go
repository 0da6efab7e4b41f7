package forecast

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/aloft-etl/internal/domain"
	"github.com/couchcryptid/aloft-etl/internal/interp"
)

// Surface variable names in the gridded model's hourly block.
const (
	VarTemperature2m      = "temperature_2m"
	VarDewpoint2m         = "dew_point_2m"
	VarRelativeHumidity2m = "relative_humidity_2m"
	VarSurfacePressure    = "surface_pressure"
	VarPressureMSL        = "pressure_msl"
	VarWindSpeed10m       = "wind_speed_10m"
	VarWindDirection10m   = "wind_direction_10m"
	VarCAPE               = "cape"
	VarCIN                = "convective_inhibition"
)

// ErrMissingVariable marks a gridded response that lacks a series the
// profile requires. It is a contract error, not a per-hour condition.
var ErrMissingVariable = errors.New("missing hourly variable")

// MissingVariableError names the absent series.
type MissingVariableError struct {
	Variable string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingVariable, e.Variable)
}

func (e *MissingVariableError) Unwrap() error { return ErrMissingVariable }

// GriddedResponse is the decoded hourly JSON of a gridded model request.
type GriddedResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation"`
	Hourly    Hourly  `json:"hourly"`
}

// Hourly holds the time axis and every per-variable series. A nil entry in a
// series is a JSON null: the model has no value for that hour.
type Hourly struct {
	Time   []time.Time
	Series map[string][]*float64
}

// UnmarshalJSON accepts "time" as unix seconds or as "2006-01-02T15:04"
// strings in UTC; every other key is a numeric series.
func (h *Hourly) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode hourly block: %w", err)
	}

	h.Series = make(map[string][]*float64, len(raw))
	for key, msg := range raw {
		if key == "time" {
			times, err := decodeTimeAxis(msg)
			if err != nil {
				return err
			}
			h.Time = times
			continue
		}
		var values []*float64
		if err := json.Unmarshal(msg, &values); err != nil {
			return fmt.Errorf("decode hourly %s: %w", key, err)
		}
		h.Series[key] = values
	}
	return nil
}

// MarshalJSON writes the time axis as unix seconds.
func (h Hourly) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(h.Series)+1)
	unix := make([]int64, len(h.Time))
	for i, t := range h.Time {
		unix[i] = t.Unix()
	}
	out["time"] = unix
	for k, v := range h.Series {
		out[k] = v
	}
	return json.Marshal(out)
}

func decodeTimeAxis(msg json.RawMessage) ([]time.Time, error) {
	var unix []int64
	if err := json.Unmarshal(msg, &unix); err == nil {
		times := make([]time.Time, len(unix))
		for i, s := range unix {
			times[i] = time.Unix(s, 0).UTC()
		}
		return times, nil
	}

	var iso []string
	if err := json.Unmarshal(msg, &iso); err != nil {
		return nil, fmt.Errorf("decode hourly time: %w", err)
	}
	times := make([]time.Time, len(iso))
	for i, s := range iso {
		t, err := time.Parse("2006-01-02T15:04", s)
		if err != nil {
			return nil, fmt.Errorf("decode hourly time %q: %w", s, err)
		}
		times[i] = t
	}
	return times, nil
}

// series is one hourly variable; at returns false for null or short series.
type series []*float64

func (s series) at(i int) (float64, bool) {
	if i >= len(s) || s[i] == nil {
		return 0, false
	}
	return *s[i], true
}

type heightLevel struct {
	meters float64
	temp   series
	speed  series
	dir    series
}

type pressureLevel struct {
	hpa    float64
	temp   series
	rh     series
	speed  series
	dir    series
	height series
}

// griddedSeries is every series the normalizer reads, resolved once.
type griddedSeries struct {
	temp2m    series
	dew2m     series // nil when only relative humidity is available
	rh2m      series
	surfPress series // nil when only MSL pressure is available
	mslPress  series
	speed10m  series
	dir10m    series
	cape      series
	cin       series // optional
	heights   []heightLevel
	pressures []pressureLevel
}

// NormalizeGridded converts a gridded model response into a report whose
// hours share one ascending altitude ladder: a surface record, one record per
// near-surface height level, then the pressure levels above the highest
// height level.
func NormalizeGridded(resp GriddedResponse, p Profile, fetchedAt time.Time) (domain.WindsAloftReport, error) {
	s, err := resolveSeries(resp.Hourly, p)
	if err != nil {
		return domain.WindsAloftReport{}, err
	}

	elevation := resp.Elevation
	valid := validHours(resp.Hourly, s)
	cutoff := pressureCutoff(s, valid, elevation+p.MaxHeightLevel())

	hours := make([]domain.WindsAloftHour, 0, len(valid))
	for _, i := range valid {
		hours = append(hours, buildGriddedHour(resp.Hourly.Time[i], i, s, elevation, cutoff))
	}

	return domain.WindsAloftReport{
		Latitude:     resp.Latitude,
		Longitude:    resp.Longitude,
		Source:       domain.SourceGridded,
		ElevationInM: &elevation,
		FetchedAt:    fetchedAt,
		Hours:        hours,
	}, nil
}

func resolveSeries(h Hourly, p Profile) (griddedSeries, error) {
	var s griddedSeries
	var err error

	lookup := func(name string) series {
		if err != nil {
			return nil
		}
		v, ok := h.Series[name]
		if !ok {
			err = &MissingVariableError{Variable: name}
			return nil
		}
		return v
	}
	optional := func(name string) series {
		return h.Series[name]
	}

	s.temp2m = lookup(VarTemperature2m)
	s.speed10m = lookup(VarWindSpeed10m)
	s.dir10m = lookup(VarWindDirection10m)
	s.cape = lookup(VarCAPE)
	s.cin = optional(VarCIN)

	s.dew2m = optional(VarDewpoint2m)
	if s.dew2m == nil {
		if s.rh2m = optional(VarRelativeHumidity2m); s.rh2m == nil && err == nil {
			err = &MissingVariableError{Variable: VarDewpoint2m}
		}
	}
	s.surfPress = optional(VarSurfacePressure)
	if s.surfPress == nil {
		if s.mslPress = optional(VarPressureMSL); s.mslPress == nil && err == nil {
			err = &MissingVariableError{Variable: VarSurfacePressure}
		}
	}

	for _, m := range p.HeightLevels {
		s.heights = append(s.heights, heightLevel{
			meters: float64(m),
			temp:   lookup(heightVar("temperature", m)),
			speed:  lookup(heightVar("wind_speed", m)),
			dir:    lookup(heightVar("wind_direction", m)),
		})
	}
	for _, lvl := range p.PressureLevels {
		s.pressures = append(s.pressures, pressureLevel{
			hpa:    float64(lvl),
			temp:   lookup(pressureVar("temperature", lvl)),
			rh:     lookup(pressureVar("relative_humidity", lvl)),
			speed:  lookup(pressureVar("wind_speed", lvl)),
			dir:    lookup(pressureVar("wind_direction", lvl)),
			height: lookup(pressureVar("geopotential_height", lvl)),
		})
	}

	if err != nil {
		return griddedSeries{}, err
	}
	return s, nil
}

// validHours returns the indices of hours where every required value is
// present. Trailing hours past the model horizon come back as nulls.
func validHours(h Hourly, s griddedSeries) []int {
	required := []series{s.temp2m, s.speed10m, s.dir10m, s.cape}
	if s.dew2m != nil {
		required = append(required, s.dew2m)
	} else {
		required = append(required, s.rh2m)
	}
	if s.surfPress != nil {
		required = append(required, s.surfPress)
	} else {
		required = append(required, s.mslPress)
	}
	for _, hl := range s.heights {
		required = append(required, hl.temp, hl.speed, hl.dir)
	}
	for _, pl := range s.pressures {
		required = append(required, pl.temp, pl.rh, pl.speed, pl.dir, pl.height)
	}

	valid := make([]int, 0, len(h.Time))
hours:
	for i := range h.Time {
		for _, r := range required {
			if _, ok := r.at(i); !ok {
				continue hours
			}
		}
		valid = append(valid, i)
	}
	return valid
}

// pressureCutoff returns the number of leading pressure levels to drop for
// every hour. For each hour it finds the first level whose geopotential
// height is above threshold; the cutoff is the highest such index across all
// hours, so every hour keeps the same ladder.
func pressureCutoff(s griddedSeries, hours []int, threshold float64) int {
	cutoff := 0
	for _, i := range hours {
		first := len(s.pressures)
		for j, pl := range s.pressures {
			if gph, _ := pl.height.at(i); gph > threshold {
				first = j
				break
			}
		}
		cutoff = max(cutoff, first)
	}
	return cutoff
}

func buildGriddedHour(ts time.Time, i int, s griddedSeries, elevation float64, cutoff int) domain.WindsAloftHour {
	temp2m, _ := s.temp2m.at(i)
	speed10m, _ := s.speed10m.at(i)
	dir10m, _ := s.dir10m.at(i)
	capeVal, _ := s.cape.at(i)

	var dew2m float64
	if s.dew2m != nil {
		dew2m, _ = s.dew2m.at(i)
	} else {
		rh, _ := s.rh2m.at(i)
		dew2m = dewpointFromRH(temp2m, rh)
	}

	var surfPress float64
	if s.surfPress != nil {
		surfPress, _ = s.surfPress.at(i)
	} else {
		msl, _ := s.mslPress.at(i)
		surfPress = pressureAtHeight(msl, temp2m, temp2m, elevation)
	}

	hour := domain.WindsAloftHour{
		Timestamp: ts,
		CAPE:      capeVal,
		Altitudes: make([]domain.WindsAloftAltitude, 0, 1+len(s.heights)+len(s.pressures)-cutoff),
	}
	if cin, ok := s.cin.at(i); ok {
		hour.CIN = &cin
	}

	hour.Altitudes = append(hour.Altitudes, domain.WindsAloftAltitude{
		AltitudeInM:      elevation,
		PressureHPa:      surfPress,
		WindSpeedKph:     speed10m,
		WindDirectionDeg: interp.NormalizeDegrees(dir10m),
		TemperatureC:     temp2m,
		DewpointC:        dew2m,
	})

	for _, hl := range s.heights {
		temp, _ := hl.temp.at(i)
		speed, _ := hl.speed.at(i)
		dir, _ := hl.dir.at(i)
		press := pressureAtHeight(surfPress, temp2m, temp, hl.meters)

		hour.Altitudes = append(hour.Altitudes, domain.WindsAloftAltitude{
			AltitudeInM:      elevation + hl.meters,
			PressureHPa:      press,
			WindSpeedKph:     speed,
			WindDirectionDeg: interp.NormalizeDegrees(dir),
			TemperatureC:     temp,
			DewpointC:        nearSurfaceDewpoint(temp2m, dew2m, surfPress, press, temp, hl.meters),
		})
	}

	for _, pl := range s.pressures[cutoff:] {
		temp, _ := pl.temp.at(i)
		rh, _ := pl.rh.at(i)
		speed, _ := pl.speed.at(i)
		dir, _ := pl.dir.at(i)
		gph, _ := pl.height.at(i)

		hour.Altitudes = append(hour.Altitudes, domain.WindsAloftAltitude{
			AltitudeInM:      gph,
			PressureHPa:      pl.hpa,
			WindSpeedKph:     speed,
			WindDirectionDeg: interp.NormalizeDegrees(dir),
			TemperatureC:     temp,
			DewpointC:        dewpointFromRH(temp, rh),
		})
	}

	return hour
}
