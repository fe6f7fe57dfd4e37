package checkin

import "time"

// Cutoff is the daily time-of-day boundary for an on-time check-in, as an
// offset from local midnight. A receipt exactly at the cutoff is on time.
const Cutoff = 8*time.Hour + 20*time.Minute

// CutoffLabel renders Cutoff for user-facing messages.
const CutoffLabel = "08:20"

// OnTime reports whether t, read as wall-clock time in loc, is at or before
// the cutoff. The date is ignored, the cutoff recurs every calendar day.
// Fractional seconds count: 08:20:00.000 passes, 08:20:00.001 does not.
func OnTime(t time.Time, loc *time.Location) bool {
	if loc != nil {
		t = t.In(loc)
	}
	return timeOfDay(t) <= Cutoff
}

func timeOfDay(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(t.Nanosecond())
}
