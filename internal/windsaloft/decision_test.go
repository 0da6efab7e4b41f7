package windsaloft

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/aloft-etl/internal/domain"
)

func reportWithHours(source domain.Source, fetchedAt time.Time, hours ...time.Time) *domain.WindsAloftReport {
	r := &domain.WindsAloftReport{Source: source, FetchedAt: fetchedAt}
	for _, ts := range hours {
		r.Hours = append(r.Hours, domain.WindsAloftHour{Timestamp: ts})
	}
	return r
}

func TestDecide(t *testing.T) {
	now := time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)
	h := func(offset int) time.Time { return now.Add(time.Duration(offset) * time.Hour) }

	extended := reportWithHours(domain.SourceSounding, h(-6), h(-6), h(2))
	extended.Extended = true

	tests := []struct {
		name     string
		cached   *domain.WindsAloftReport
		expected FetchDecision
	}{
		{"absent", nil, FetchRefetch},
		{"empty", reportWithHours(domain.SourceSounding, h(-1)), FetchRefetch},
		{"fresh gridded", reportWithHours(domain.SourceGridded, now.Add(-30*time.Minute), h(-1), h(40)), FetchNone},
		{"gridded at max age", reportWithHours(domain.SourceGridded, now.Add(-time.Hour), h(-1), h(40)), FetchNone},
		{"old gridded", reportWithHours(domain.SourceGridded, now.Add(-61*time.Minute), h(-1), h(40)), FetchRefetch},
		{"fresh sounding", reportWithHours(domain.SourceSounding, h(-1), h(-2), h(10)), FetchNone},
		{"sounding four hours stale", reportWithHours(domain.SourceSounding, h(-4), h(-4), h(10)), FetchNone},
		{"sounding five hours stale", reportWithHours(domain.SourceSounding, h(-5), h(-5), h(10)), FetchExtend},
		{"stale sounding already extended", extended, FetchNone},
		{"sounding exhausted", reportWithHours(domain.SourceSounding, h(-12), h(-12), h(-1)), FetchRefetch},
		{"unknown source", reportWithHours(domain.Source("radar"), now, h(0)), FetchRefetch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Decide(tt.cached, now, time.Hour))
		})
	}
}

func TestFetchDecision_String(t *testing.T) {
	assert.Equal(t, "none", FetchNone.String())
	assert.Equal(t, "refetch", FetchRefetch.String())
	assert.Equal(t, "extend", FetchExtend.String())
	assert.Equal(t, "unknown", FetchDecision(9).String())
}

func TestHoursStale(t *testing.T) {
	now := time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)
	r := *reportWithHours(domain.SourceSounding, now, now.Add(-6*time.Hour-59*time.Minute))

	assert.Equal(t, 6, hoursStale(r, now))

	future := *reportWithHours(domain.SourceSounding, now, now.Add(2*time.Hour))
	assert.Equal(t, -2, hoursStale(future, now))
}

func TestExtensionWindow(t *testing.T) {
	last := time.Date(2025, 6, 14, 15, 0, 0, 0, time.UTC)
	r := *reportWithHours(domain.SourceSounding, last, last.Add(-3*time.Hour), last)

	start, end := extensionWindow(r, 6)
	assert.Equal(t, last.Add(time.Hour), start)
	assert.Equal(t, 4*time.Hour, end.Sub(start))
}
