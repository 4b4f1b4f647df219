// Package streak computes habit streak updates with calendar-day semantics.
package streak

import (
	"time"
)

// Result describes the streak state after a validated completion.
type Result struct {
	Streak        int
	LongestStreak int
	Broken        bool
}

// Advance computes the updated streak for a validated completion at
// completedAt, given the habit's previous counters. Day boundaries are
// calendar days in loc, not rolling 24h windows.
//
// Rules: no prior completion starts a streak at 1; a same-day repeat is a
// no-op; a one-day gap extends the streak; anything longer resets it to 1
// and reports the break.
func Advance(lastCompletedAt *time.Time, completedAt time.Time, current, longest int, loc *time.Location) Result {
	res := Result{Streak: current, LongestStreak: longest}

	switch {
	case lastCompletedAt == nil:
		res.Streak = 1
	default:
		gap := daysBetween(*lastCompletedAt, completedAt, loc)
		switch {
		case gap == 0:
			// Same calendar day. The once-per-day gate should prevent
			// this; keep it a safe no-op.
		case gap == 1:
			res.Streak = current + 1
		default:
			res.Streak = 1
			res.Broken = true
		}
	}

	if res.Streak > res.LongestStreak {
		res.LongestStreak = res.Streak
	}
	return res
}

// DayWindow returns the local [midnight, next midnight) window containing t.
func DayWindow(t time.Time, loc *time.Location) (start, end time.Time) {
	t = t.In(loc)
	start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end = start.AddDate(0, 0, 1)
	return start, end
}

// daysBetween returns the number of calendar-day boundaries crossed between
// a and b in loc. The dates are re-anchored in UTC before subtracting so a
// DST-shortened or DST-lengthened local day still counts as exactly one day.
// Negative inputs (b before a) are treated as zero.
func daysBetween(a, b time.Time, loc *time.Location) int {
	a = a.In(loc)
	b = b.In(loc)
	aDate := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bDate := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	diff := int(bDate.Sub(aDate).Hours() / 24)
	if diff < 0 {
		return 0
	}
	return diff
}
