// Package windsaloft assembles winds-aloft reports from the gridded model or
// from point soundings, and owns the staleness policy for soundings.
package windsaloft

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/aloft-etl/internal/domain"
	"github.com/couchcryptid/aloft-etl/internal/forecast"
	"github.com/couchcryptid/aloft-etl/internal/observability"
)

// GriddedFetcher retrieves a gridded model response for a point.
type GriddedFetcher interface {
	FetchGridded(ctx context.Context, lat, lon float64, p forecast.Profile) (forecast.GriddedResponse, error)
}

// SoundingQuery selects parsed soundings for a point. Zero Start and End ask
// the source for its default window.
type SoundingQuery struct {
	Latitude  float64
	Longitude float64
	Start     time.Time
	End       time.Time
}

// SoundingFetcher retrieves already-parsed sounding records.
type SoundingFetcher interface {
	FetchSoundings(ctx context.Context, q SoundingQuery) ([]forecast.SoundingRecord, error)
}

// ReportCache holds assembled reports keyed by source and point.
type ReportCache interface {
	Get(key string) (domain.WindsAloftReport, bool)
	Put(key string, report domain.WindsAloftReport)
}

// DefaultGriddedMaxAge is how long a cached gridded report is served before
// it is refetched.
const DefaultGriddedMaxAge = time.Hour

// Assembler produces WindsAloftReports from either source.
type Assembler struct {
	gridded       GriddedFetcher
	soundings     SoundingFetcher
	cache         ReportCache
	profile       forecast.Profile
	clock         clockwork.Clock
	logger        *slog.Logger
	metrics       *observability.Metrics
	griddedMaxAge time.Duration
}

// Option customizes an Assembler.
type Option func(*Assembler)

// WithCache serves Report from cache according to Decide.
func WithCache(c ReportCache) Option {
	return func(a *Assembler) { a.cache = c }
}

// WithClock replaces the package clock.
func WithClock(c clockwork.Clock) Option {
	return func(a *Assembler) { a.clock = c }
}

// WithGriddedMaxAge overrides DefaultGriddedMaxAge.
func WithGriddedMaxAge(d time.Duration) Option {
	return func(a *Assembler) { a.griddedMaxAge = d }
}

// New creates an Assembler. Either fetcher may be nil; requests for that
// source then fail with ErrSourceUnavailable, and sounding reports handed in
// directly are never extended.
func New(gridded GriddedFetcher, soundings SoundingFetcher, profile forecast.Profile, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Assembler {
	a := &Assembler{
		gridded:       gridded,
		soundings:     soundings,
		profile:       profile,
		clock:         domain.Clock(),
		logger:        logger,
		metrics:       metrics,
		griddedMaxAge: DefaultGriddedMaxAge,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Report returns the report for a point, using the cache when one is
// configured.
func (a *Assembler) Report(ctx context.Context, lat, lon float64, source domain.Source) (domain.WindsAloftReport, error) {
	key := CacheKey(source, lat, lon)
	now := a.clock.Now().UTC()

	var cached *domain.WindsAloftReport
	if a.cache != nil {
		if r, ok := a.cache.Get(key); ok {
			cached = &r
		}
	}

	decision := Decide(cached, now, a.griddedMaxAge)
	switch {
	case cached == nil:
		a.metrics.ReportCache.WithLabelValues("miss").Inc()
	case decision == FetchNone:
		a.metrics.ReportCache.WithLabelValues("hit").Inc()
	default:
		a.metrics.ReportCache.WithLabelValues("stale").Inc()
	}

	var (
		report domain.WindsAloftReport
		err    error
	)
	switch decision {
	case FetchNone:
		return *cached, nil
	case FetchExtend:
		report = a.extend(ctx, *cached, now)
	default:
		report, err = a.fetch(ctx, lat, lon, source, now)
		if err != nil {
			return domain.WindsAloftReport{}, err
		}
	}

	if a.cache != nil {
		a.cache.Put(key, report)
	}
	return report, nil
}

func (a *Assembler) fetch(ctx context.Context, lat, lon float64, source domain.Source, now time.Time) (domain.WindsAloftReport, error) {
	switch source {
	case domain.SourceGridded:
		if a.gridded == nil {
			return domain.WindsAloftReport{}, fmt.Errorf("%w: %s", ErrSourceUnavailable, source)
		}
		resp, err := a.gridded.FetchGridded(ctx, lat, lon, a.profile)
		if err != nil {
			return domain.WindsAloftReport{}, fmt.Errorf("fetch gridded forecast: %w", err)
		}
		return a.AssembleGridded(resp, now)

	case domain.SourceSounding:
		if a.soundings == nil {
			return domain.WindsAloftReport{}, fmt.Errorf("%w: %s", ErrSourceUnavailable, source)
		}
		records, err := a.soundings.FetchSoundings(ctx, SoundingQuery{Latitude: lat, Longitude: lon})
		if err != nil {
			return domain.WindsAloftReport{}, fmt.Errorf("fetch soundings: %w", err)
		}
		return a.AssembleSoundings(ctx, records, lat, lon)

	default:
		return domain.WindsAloftReport{}, fmt.Errorf("%w: %s", ErrSourceUnavailable, source)
	}
}

// AssembleGridded normalizes an already-fetched gridded response. The gridded
// source has no staleness policy.
func (a *Assembler) AssembleGridded(resp forecast.GriddedResponse, fetchedAt time.Time) (domain.WindsAloftReport, error) {
	report, err := forecast.NormalizeGridded(resp, a.profile, fetchedAt)
	if err != nil {
		return domain.WindsAloftReport{}, fmt.Errorf("normalize gridded forecast: %w", err)
	}
	if report.Empty() {
		return domain.WindsAloftReport{}, &EmptyReportError{Source: domain.SourceGridded, Latitude: resp.Latitude, Longitude: resp.Longitude}
	}
	return report, nil
}

// AssembleSoundings builds a sounding report from parsed records and applies
// the staleness policy. An empty result is fatal; a failed extension is not.
func (a *Assembler) AssembleSoundings(ctx context.Context, records []forecast.SoundingRecord, lat, lon float64) (domain.WindsAloftReport, error) {
	now := a.clock.Now().UTC()
	report := forecast.NormalizeSoundings(records, lat, lon, now)
	if report.Empty() {
		return domain.WindsAloftReport{}, &EmptyReportError{Source: domain.SourceSounding, Latitude: lat, Longitude: lon}
	}
	return a.extend(ctx, report, now), nil
}

// extend appends one supplementary fetch to a sounding report whose first
// hour is more than four hours old. Any failure returns the report unchanged.
func (a *Assembler) extend(ctx context.Context, report domain.WindsAloftReport, now time.Time) domain.WindsAloftReport {
	stale := hoursStale(report, now)
	if stale <= staleThresholdHours || report.Extended {
		a.metrics.SoundingExtensions.WithLabelValues("skipped").Inc()
		return report
	}
	if a.soundings == nil {
		a.logger.Debug("sounding extension skipped, no fetcher configured",
			"lat", report.Latitude,
			"lon", report.Longitude,
			"hours_stale", stale,
		)
		a.metrics.SoundingExtensions.WithLabelValues("skipped").Inc()
		return report
	}

	start, end := extensionWindow(report, stale)
	records, err := a.soundings.FetchSoundings(ctx, SoundingQuery{
		Latitude:  report.Latitude,
		Longitude: report.Longitude,
		Start:     start,
		End:       end,
	})
	if err != nil {
		a.logger.Warn("sounding extension failed, serving original report",
			"lat", report.Latitude,
			"lon", report.Longitude,
			"hours_stale", stale,
			"error", err,
		)
		a.metrics.SoundingExtensions.WithLabelValues("failed").Inc()
		return report
	}

	a.metrics.SoundingExtensions.WithLabelValues("extended").Inc()
	return appendHours(report, forecast.SoundingHours(records))
}

// appendHours returns a copy of report with the extra hours that fall after
// its last hour appended.
func appendHours(report domain.WindsAloftReport, extra []domain.WindsAloftHour) domain.WindsAloftReport {
	last := report.LastHour()
	hours := make([]domain.WindsAloftHour, len(report.Hours), len(report.Hours)+len(extra))
	copy(hours, report.Hours)
	for _, h := range extra {
		if h.Timestamp.After(last) {
			hours = append(hours, h)
			last = h.Timestamp
		}
	}
	report.Hours = hours
	report.Extended = true
	return report
}

// CacheKey identifies a report by source and point, rounded to four decimal
// places.
func CacheKey(source domain.Source, lat, lon float64) string {
	return fmt.Sprintf("%s:%.4f,%.4f", source, lat, lon)
}
