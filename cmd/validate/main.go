// Command validate checks the integrity of winds-aloft inputs offline. It
// decodes a gridded model response and/or a parsed-sounding file, runs them
// through the same normalizers the service uses, and verifies the physical
// and ordering invariants of the resulting reports.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -gridded testdata/gridded_pullman.json \
//	  -soundings testdata/soundings_pullman.json -lat 46.73 -lon -117.0 \
//	  -profile deploy/profile.yaml
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/couchcryptid/aloft-etl/internal/config"
	"github.com/couchcryptid/aloft-etl/internal/domain"
	"github.com/couchcryptid/aloft-etl/internal/forecast"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	griddedPath := flag.String("gridded", "", "path to a gridded model JSON response")
	soundingsPath := flag.String("soundings", "", "path to a JSON array of parsed sounding records")
	lat := flag.Float64("lat", 0, "latitude for the sounding report")
	lon := flag.Float64("lon", 0, "longitude for the sounding report")
	profilePath := flag.String("profile", "", "model profile YAML (default: built-in)")
	flag.Parse()

	if *griddedPath == "" && *soundingsPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*griddedPath, *soundingsPath, *lat, *lon, *profilePath))
}

func run(griddedPath, soundingsPath string, lat, lon float64, profilePath string) int {
	fmt.Println("=== Winds Aloft Integrity Validation ===")
	fmt.Println()

	profile, err := config.LoadProfile(profilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	now := time.Now().UTC()
	var phases []*phase
	var reports []domain.WindsAloftReport

	if griddedPath != "" {
		resp, err := loadJSON[forecast.GriddedResponse](griddedPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load gridded JSON: %v\n", err)
			return 1
		}
		report, p := validateGriddedNormalization(resp, profile, now)
		phases = append(phases, p, validateSharedLadder(report))
		reports = append(reports, report)
	}

	if soundingsPath != "" {
		records, err := loadJSON[[]forecast.SoundingRecord](soundingsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load soundings JSON: %v\n", err)
			return 1
		}
		report, p := validateSoundingConversion(records, lat, lon, now)
		phases = append(phases, p)
		reports = append(reports, report)
	}

	phases = append(phases, validateReportInvariants(reports))

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	for _, r := range reports {
		fmt.Printf("Report: %s at %.4f,%.4f: %d hours (%s to %s)\n",
			r.Source, r.Latitude, r.Longitude, len(r.Hours),
			r.FirstHour().Format(time.RFC3339), r.LastHour().Format(time.RFC3339))
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadJSON[T any](path string) (T, error) {
	var out T
	data, err := os.ReadFile(path)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}

// ── Phases ──

func validateGriddedNormalization(resp forecast.GriddedResponse, profile forecast.Profile, now time.Time) (domain.WindsAloftReport, *phase) {
	p := &phase{name: "Gridded normalization"}

	var absent int
	for _, name := range profile.HourlyVariables() {
		if _, ok := resp.Hourly.Series[name]; !ok {
			absent++
		}
	}
	if absent > 0 {
		fmt.Printf("  note: %d requested series absent from the response\n", absent)
	}

	report, err := forecast.NormalizeGridded(resp, profile, now)
	if err != nil {
		p.errorf("normalize: %v", err)
		return report, p
	}
	if report.Empty() {
		p.errorf("no usable hours out of %d time steps", len(resp.Hourly.Time))
	}
	if dropped := len(resp.Hourly.Time) - len(report.Hours); dropped > 0 {
		fmt.Printf("  note: %d of %d gridded hours skipped for null values\n", dropped, len(resp.Hourly.Time))
	}
	return report, p
}

func validateSharedLadder(r domain.WindsAloftReport) *phase {
	p := &phase{name: "Gridded shared altitude ladder"}
	if r.Empty() {
		return p
	}
	want := len(r.Hours[0].Altitudes)
	for _, h := range r.Hours[1:] {
		if len(h.Altitudes) != want {
			p.errorf("%s: %d altitudes, first hour has %d",
				h.Timestamp.Format(time.RFC3339), len(h.Altitudes), want)
		}
	}
	return p
}

func validateSoundingConversion(records []forecast.SoundingRecord, lat, lon float64, now time.Time) (domain.WindsAloftReport, *phase) {
	p := &phase{name: "Sounding conversion"}

	invalid := 0
	for _, rec := range records {
		for _, lvl := range rec.Levels {
			if lvl.HeightM == forecast.InvalidValue || lvl.TemperatureTenthsC == forecast.InvalidValue ||
				lvl.WindSpeedTenthsKnots == forecast.InvalidValue || lvl.WindDirectionDeg == forecast.InvalidValue {
				invalid++
			}
		}
	}
	if invalid > 0 {
		fmt.Printf("  note: %d sounding levels carry the %d sentinel and will be dropped\n", invalid, forecast.InvalidValue)
	}

	report := forecast.NormalizeSoundings(records, lat, lon, now)
	if report.Empty() {
		p.errorf("no usable hours out of %d records", len(records))
	}
	return report, p
}

func validateReportInvariants(reports []domain.WindsAloftReport) *phase {
	p := &phase{name: "Report invariants"}
	for _, r := range reports {
		if err := r.Validate(); err != nil {
			p.errorf("%s: %v", r.Source, err)
		}
		if r.ElevationInM == nil && !r.Empty() {
			p.errorf("%s: missing elevation", r.Source)
		}
	}
	return p
}
