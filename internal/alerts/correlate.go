package alerts

import (
	"encoding/json"
	"sort"
	"time"
)

// FindRelated returns the run of G-AIRMET snapshots that make up the same
// advisory as target, ordered by valid time. Snapshots belong to the run
// while their payload matches and each starts exactly three hours after the
// previous one; a missing snapshot ends the run. For every other kind the
// result is just target.
func FindRelated(target Alert, all []Alert) []Alert {
	g, ok := target.(GAirmet)
	if !ok {
		return []Alert{target}
	}

	candidates := []GAirmet{g}
	for _, a := range all {
		o, ok := a.(GAirmet)
		if !ok || !o.samePayload(g) || o.ValidTime.Equal(g.ValidTime) {
			continue
		}
		candidates = append(candidates, o)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ValidTime.Before(candidates[j].ValidTime)
	})

	// One snapshot per valid time.
	uniq := candidates[:0]
	for _, c := range candidates {
		if n := len(uniq); n > 0 && uniq[n-1].ValidTime.Equal(c.ValidTime) {
			continue
		}
		uniq = append(uniq, c)
	}

	idx := 0
	for i, c := range uniq {
		if c.ValidTime.Equal(g.ValidTime) {
			idx = i
			break
		}
	}
	lo, hi := idx, idx
	for lo > 0 && uniq[lo-1].ValidTime.Add(gairmetValidity).Equal(uniq[lo].ValidTime) {
		lo--
	}
	for hi < len(uniq)-1 && uniq[hi].ValidTime.Add(gairmetValidity).Equal(uniq[hi+1].ValidTime) {
		hi++
	}

	out := make([]Alert, 0, hi-lo+1)
	for _, c := range uniq[lo : hi+1] {
		out = append(out, c)
	}
	return out
}

// FilterDuplicatesForHour drops convective outlooks from one hour's active
// alerts when a live convective SIGMET is also present.
func FilterDuplicatesForHour(active []Alert) []Alert {
	hasConvective := false
	for _, a := range active {
		if s, ok := a.(Sigmet); ok && s.IsConvective() {
			hasConvective = true
			break
		}
	}
	if !hasConvective {
		return active
	}

	out := make([]Alert, 0, len(active))
	for _, a := range active {
		if s, ok := a.(Sigmet); ok && s.IsConvectiveOutlook() {
			continue
		}
		out = append(out, a)
	}
	return out
}

// DedupeTFRs collapses TFRs with identical geometry and NOTAM text to the
// first occurrence. Other alerts pass through in order.
func DedupeTFRs(alerts []Alert) []Alert {
	seen := make(map[string]struct{})
	out := make([]Alert, 0, len(alerts))
	for _, a := range alerts {
		if t, ok := a.(TFR); ok {
			key := t.dedupeKey()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, a)
	}
	return out
}

// IsDangerous reports the alert's danger classification.
func IsDangerous(a Alert) bool { return a.Dangerous() }

// SortForDisplay returns a copy with dangerous alerts first. Order within
// each class is preserved.
func SortForDisplay(alerts []Alert) []Alert {
	out := make([]Alert, len(alerts))
	copy(out, alerts)
	sortDangerousFirst(out, IsDangerous)
	return out
}

func sortDangerousFirst[T any](items []T, dangerous func(T) bool) {
	sort.SliceStable(items, func(i, j int) bool {
		return dangerous(items[i]) && !dangerous(items[j])
	})
}

// ForHour returns the alerts valid at any point in [hourStart, hourStart+1h),
// with duplicate TFRs collapsed and outlooks superseded by a live convective
// SIGMET removed, dangerous first.
func ForHour(snap Snapshot, hourStart time.Time) []Alert {
	hourEnd := hourStart.Add(time.Hour)
	var inHour []Alert
	for _, a := range DedupeTFRs(snap.All()) {
		if a.Interval().Overlaps(hourStart, hourEnd) {
			inHour = append(inHour, a)
		}
	}
	return SortForDisplay(FilterDuplicatesForHour(inHour))
}

// Entry is one correlated alert ready for display. A G-AIRMET entry stands
// for its whole run of snapshots.
type Entry struct {
	Alert     Alert
	Related   []Alert
	Unread    bool
	Dangerous bool
}

// Interval spans the whole related run.
func (e Entry) Interval() Interval {
	iv := e.Alert.Interval()
	for _, r := range e.Related {
		ri := r.Interval()
		if ri.Start.Before(iv.Start) {
			iv.Start = ri.Start
		}
		if ri.OpenEnded {
			iv.OpenEnded = true
		}
		if ri.End.After(iv.End) {
			iv.End = ri.End
		}
	}
	return iv
}

func (e Entry) MarshalJSON() ([]byte, error) {
	related := make([]string, len(e.Related))
	for i, r := range e.Related {
		related[i] = r.ID()
	}
	return json.Marshal(struct {
		ID         string   `json:"id"`
		Kind       Kind     `json:"kind"`
		Severity   Severity `json:"severity"`
		Dangerous  bool     `json:"dangerous"`
		Unread     bool     `json:"unread"`
		Interval   Interval `json:"interval"`
		RelatedIDs []string `json:"related_ids"`
		Alert      Alert    `json:"alert"`
	}{
		ID:         e.Alert.ID(),
		Kind:       e.Alert.Kind(),
		Severity:   e.Alert.Severity(),
		Dangerous:  e.Dangerous,
		Unread:     e.Unread,
		Interval:   e.Interval(),
		RelatedIDs: related,
		Alert:      e.Alert,
	})
}

// Correlate merges the three feeds into display entries at now: duplicate
// TFRs collapsed, expired alerts dropped, outlooks superseded by a live
// convective SIGMET removed, each G-AIRMET run collapsed into one entry, and
// dangerous entries first. An entry is unread while any alert in its run is
// missing from read.
func Correlate(snap Snapshot, read ReadState, now time.Time) []Entry {
	var live []Alert
	for _, a := range DedupeTFRs(snap.All()) {
		if !a.Interval().Ended(now) {
			live = append(live, a)
		}
	}
	live = suppressOutlooks(live, now)

	// Only G-AIRMET snapshots fold into another entry; every other alert
	// that survived dedupe is its own entry.
	grouped := make(map[string]struct{})
	entries := make([]Entry, 0, len(live))
	for _, a := range live {
		related := []Alert{a}
		if _, ok := a.(GAirmet); ok {
			if _, done := grouped[a.ID()]; done {
				continue
			}
			related = FindRelated(a, live)
			for _, r := range related {
				grouped[r.ID()] = struct{}{}
			}
		}
		entries = append(entries, Entry{
			Alert:     related[0],
			Related:   related,
			Unread:    !read.allRead(related),
			Dangerous: a.Dangerous(),
		})
	}

	sortDangerousFirst(entries, func(e Entry) bool { return e.Dangerous })
	return entries
}

// suppressOutlooks applies FilterDuplicatesForHour to the alerts active at
// now and removes whatever it dropped from live.
func suppressOutlooks(live []Alert, now time.Time) []Alert {
	var active []Alert
	for _, a := range live {
		if IsActive(a, now) {
			active = append(active, a)
		}
	}
	kept := FilterDuplicatesForHour(active)
	if len(kept) == len(active) {
		return live
	}

	keep := make(map[string]struct{}, len(kept))
	for _, a := range kept {
		keep[a.ID()] = struct{}{}
	}
	out := make([]Alert, 0, len(live))
	for _, a := range live {
		if IsActive(a, now) {
			if _, ok := keep[a.ID()]; !ok {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}
