// Package remind holds the timing rules shared by the server-side sweeps
// and the client scheduler. Both sides must reach the same decision from
// the same inputs, so everything here is a pure function of its arguments.
package remind

import (
	"fmt"
	"time"
)

const (
	// Fraction of a task's creation-to-due lifetime after which an
	// upcoming reminder fires.
	Fraction = 2.0 / 3.0

	// Interval is the sweep cadence; it is also the width of the match
	// window and the boundary the client snaps its fire time to.
	Interval = 15 * time.Minute

	// MinLead is the floor below which scheduling a reminder is pointless.
	MinLead = 5 * time.Minute
)

// At returns the reminder instant for a task: created plus Fraction of
// the created-to-due lifetime. Millisecond resolution, matching the unit
// stored in CreatedMs.
func At(created, due time.Time) time.Time {
	total := due.Sub(created)
	return created.Add(time.Duration(float64(total.Milliseconds())*Fraction) * time.Millisecond)
}

// Matches reports whether a task's reminder falls into the sweep window
// ending at now. The window looks backward: a task matches exactly once,
// on the first sweep at or after its reminder instant, so
// remindAt <= now < remindAt+Interval.
//
// Tasks already due (due <= now) belong to the overdue sweep, not this
// one. Tasks with a zero or negative lifetime (due <= created) never
// match; their reminder instant is undefined.
func Matches(now, created, due time.Time) bool {
	if !due.After(now) {
		return false
	}
	if !due.After(created) {
		return false
	}
	at := At(created, due)
	return !at.After(now) && now.Before(at.Add(Interval))
}

// NormalizeCreated resolves a task's creation instant: the stored
// client-side epoch-millisecond value when present, otherwise the store's
// own write time.
func NormalizeCreated(createdMs int64, storeWriteTime time.Time) time.Time {
	if createdMs > 0 {
		return time.UnixMilli(createdMs)
	}
	return storeWriteTime
}

// CeilInterval snaps t forward to the next Interval boundary. An instant
// already on a boundary stays put.
func CeilInterval(t time.Time) time.Time {
	rounded := t.Truncate(Interval)
	if rounded.Equal(t) {
		return t
	}
	return rounded.Add(Interval)
}

var dueLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseDue interprets a stored due string as a wall-clock time in loc.
// Both "T" and space separators are accepted, seconds optional. An
// unparseable string is an error; callers exclude the task rather than
// fail the sweep.
func ParseDue(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dueLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable due date %q", raw)
}

// Zone loads an IANA timezone name, falling back to UTC for an empty or
// unknown name. Missing preferences must never fail a sweep.
func Zone(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
