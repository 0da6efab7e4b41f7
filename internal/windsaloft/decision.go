package windsaloft

import (
	"time"

	"github.com/couchcryptid/aloft-etl/internal/domain"
)

// FetchDecision is what a caller holding a cached report should do next.
type FetchDecision int

const (
	// FetchNone means the cached report can be served as is.
	FetchNone FetchDecision = iota
	// FetchRefetch means the report must be fetched from scratch.
	FetchRefetch
	// FetchExtend means the cached sounding report should get one
	// supplementary fetch appended.
	FetchExtend
)

func (d FetchDecision) String() string {
	switch d {
	case FetchNone:
		return "none"
	case FetchRefetch:
		return "refetch"
	case FetchExtend:
		return "extend"
	default:
		return "unknown"
	}
}

// staleThresholdHours is how old the first sounding hour may be before the
// report is extended.
const staleThresholdHours = 4

// Decide maps a cached report (nil when absent) and the current time to a
// fetch decision. It performs no I/O.
//
// A gridded report is refetched once it is older than griddedMaxAge. A
// sounding report is refetched once its last hour has passed, and extended
// when its first hour is more than four hours old and it has not been
// extended already.
func Decide(cached *domain.WindsAloftReport, now time.Time, griddedMaxAge time.Duration) FetchDecision {
	if cached == nil || cached.Empty() {
		return FetchRefetch
	}

	switch cached.Source {
	case domain.SourceGridded:
		if now.Sub(cached.FetchedAt) > griddedMaxAge {
			return FetchRefetch
		}
		return FetchNone
	case domain.SourceSounding:
		if cached.LastHour().Before(now) {
			return FetchRefetch
		}
		if !cached.Extended && hoursStale(*cached, now) > staleThresholdHours {
			return FetchExtend
		}
		return FetchNone
	default:
		return FetchRefetch
	}
}

// hoursStale is the number of whole hours between the report's first hour
// and now. It is zero or negative for reports starting in the future.
func hoursStale(r domain.WindsAloftReport, now time.Time) int {
	return int(now.Sub(r.FirstHour()) / time.Hour)
}

// extensionWindow returns the supplementary fetch range for a report that is
// stale hours old: it starts an hour after the last hour and runs for
// stale-2 hours.
func extensionWindow(r domain.WindsAloftReport, stale int) (start, end time.Time) {
	start = r.LastHour().Add(time.Hour)
	end = start.Add(time.Duration(stale-2) * time.Hour)
	return start, end
}
