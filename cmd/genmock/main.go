// Command genmock generates a synthetic gridded-model fixture for one point
// and the winds-aloft report the service derives from it. It runs the real
// forecast package so the expected report matches pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -lat 46.73 -lon -117.0 -elevation 780 -hours 48 \
//	  -raw-out testdata/gridded_pullman.json \
//	  -envelope-out testdata/envelope_pullman.json \
//	  -report-out testdata/report_pullman.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"github.com/couchcryptid/aloft-etl/internal/config"
	"github.com/couchcryptid/aloft-etl/internal/domain"
	"github.com/couchcryptid/aloft-etl/internal/forecast"
	"github.com/couchcryptid/aloft-etl/internal/pipeline"
)

var baseTime = time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	lat := flag.Float64("lat", 46.73, "latitude of the fixture point")
	lon := flag.Float64("lon", -117.0, "longitude of the fixture point")
	elevation := flag.Float64("elevation", 780, "ground elevation in metres")
	hours := flag.Int("hours", 48, "number of hourly steps")
	profilePath := flag.String("profile", "", "model profile YAML (default: built-in)")
	rawOut := flag.String("raw-out", "", "output path for the gridded response fixture")
	envelopeOut := flag.String("envelope-out", "", "output path for a pipeline envelope wrapping the fixture")
	reportOut := flag.String("report-out", "", "output path for the expected report")
	flag.Parse()

	if *rawOut == "" || *reportOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -raw-out, -report-out")
	}
	if *hours < 1 {
		return fmt.Errorf("-hours must be positive")
	}

	profile, err := config.LoadProfile(*profilePath)
	if err != nil {
		return err
	}

	resp := synthesize(*lat, *lon, *elevation, *hours, profile)
	if err := writeJSON(*rawOut, resp); err != nil {
		return fmt.Errorf("writing gridded fixture: %w", err)
	}
	log.Printf("wrote gridded fixture: %s (%d hours, %d series)", *rawOut, *hours, len(resp.Hourly.Series))

	if *envelopeOut != "" {
		env := pipeline.Envelope{Kind: domain.FeedGridded, Latitude: *lat, Longitude: *lon, Gridded: &resp}
		if err := writeJSON(*envelopeOut, env); err != nil {
			return fmt.Errorf("writing envelope fixture: %w", err)
		}
		log.Printf("wrote envelope fixture: %s", *envelopeOut)
	}

	report, err := forecast.NormalizeGridded(resp, profile, baseTime)
	if err != nil {
		return fmt.Errorf("normalize fixture: %w", err)
	}
	if report.Empty() {
		return fmt.Errorf("generated report has no hours")
	}
	if err := report.Validate(); err != nil {
		return fmt.Errorf("generated report is invalid: %w", err)
	}
	if err := writeJSON(*reportOut, report); err != nil {
		return fmt.Errorf("writing report fixture: %w", err)
	}
	log.Printf("wrote report fixture: %s (%d hours, %d altitudes per hour)",
		*reportOut, len(report.Hours), len(report.Hours[0].Altitudes))
	return nil
}

// synthesize builds a smooth diurnal atmosphere over a standard-atmosphere
// pressure ladder. Values are plausible, not realistic.
func synthesize(lat, lon, elevation float64, hours int, p forecast.Profile) forecast.GriddedResponse {
	times := make([]time.Time, hours)
	series := make(map[string][]*float64)
	add := func(name string, v float64) {
		v = math.Round(v*10) / 10
		series[name] = append(series[name], &v)
	}

	for i := range hours {
		ts := baseTime.Add(time.Duration(i) * time.Hour)
		times[i] = ts
		diurnal := math.Sin(2 * math.Pi * float64(ts.Hour()-9) / 24)

		t2 := 16 + 6*diurnal
		add(forecast.VarTemperature2m, t2)
		add(forecast.VarDewpoint2m, t2-8-2*diurnal)
		add(forecast.VarRelativeHumidity2m, 55-15*diurnal)
		add(forecast.VarSurfacePressure, stationPressure(elevation))
		add(forecast.VarPressureMSL, 1013.2)
		add(forecast.VarWindSpeed10m, 9+5*diurnal)
		add(forecast.VarWindDirection10m, math.Mod(240+25*diurnal+360, 360))
		add(forecast.VarCAPE, math.Max(0, 400*diurnal))
		add(forecast.VarCIN, -20+10*diurnal)

		for _, h := range p.HeightLevels {
			hm := float64(h)
			add(fmt.Sprintf("temperature_%dm", h), t2-0.0065*hm)
			add(fmt.Sprintf("wind_speed_%dm", h), (9+5*diurnal)*math.Pow(hm/10, 0.14))
			add(fmt.Sprintf("wind_direction_%dm", h), math.Mod(245+25*diurnal+hm/20, 360))
		}

		for _, lvl := range p.PressureLevels {
			z := geopotentialHeight(float64(lvl))
			add(fmt.Sprintf("temperature_%dhPa", lvl), 15-0.0065*z+3*diurnal*math.Exp(-z/1500))
			add(fmt.Sprintf("relative_humidity_%dhPa", lvl), 60-10*diurnal)
			add(fmt.Sprintf("wind_speed_%dhPa", lvl), 12+z/150)
			add(fmt.Sprintf("wind_direction_%dhPa", lvl), math.Mod(250+z/200, 360))
			add(fmt.Sprintf("geopotential_height_%dhPa", lvl), z)
		}
	}

	return forecast.GriddedResponse{
		Latitude:  lat,
		Longitude: lon,
		Elevation: elevation,
		Hourly:    forecast.Hourly{Time: times, Series: series},
	}
}

// geopotentialHeight is the standard-atmosphere height of a pressure level.
func geopotentialHeight(hpa float64) float64 {
	return 44330.8 * (1 - math.Pow(hpa/1013.25, 0.190263))
}

func stationPressure(elevation float64) float64 {
	return 1013.25 * math.Pow(1-elevation/44330.8, 1/0.190263)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}
