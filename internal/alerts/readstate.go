package alerts

import (
	"maps"
	"time"
)

// ReadState maps alert IDs to when they were last read. An absent ID is
// unread.
type ReadState map[string]time.Time

// IsRead reports whether a has been read.
func (r ReadState) IsRead(a Alert) bool {
	_, ok := r[a.ID()]
	return ok
}

func (r ReadState) allRead(alerts []Alert) bool {
	for _, a := range alerts {
		if !r.IsRead(a) {
			return false
		}
	}
	return true
}

// Merge returns a new ReadState with delta applied on top of r.
func (r ReadState) Merge(delta ReadState) ReadState {
	out := make(ReadState, len(r)+len(delta))
	maps.Copy(out, r)
	maps.Copy(out, delta)
	return out
}

// MarkRead returns the read-state delta for marking a read at the given
// time. The delta covers every alert related to a, so a multi-snapshot
// G-AIRMET is read as one advisory.
func MarkRead(a Alert, all []Alert, at time.Time) ReadState {
	related := FindRelated(a, all)
	delta := make(ReadState, len(related))
	for _, r := range related {
		delta[r.ID()] = at
	}
	return delta
}
