// Package timewindow derives the calendar windows the dashboard
// buckets orders into. All windows are computed from a single
// reference instant in that instant's location, so callers pass an
// explicit "now" and results are deterministic.
package timewindow

import "time"

// Window is an inclusive [Start, End] range. A zero End means the
// window is unbounded above. Day-bounded windows end at 23:59:59.999,
// matching the millisecond resolution of the stored timestamps.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the window. Both bounds are
// inclusive; a timestamp exactly at End belongs to the window.
func (w Window) Contains(t time.Time) bool {
	if t.Before(w.Start) {
		return false
	}
	return w.End.IsZero() || !t.After(w.End)
}

// Windows holds the five windows derived from one reference instant.
//
// Today and Upcoming are open above: Today covers everything ordered
// on or after today's midnight, Upcoming everything delivered strictly
// after today's end. ThisWeek runs Sunday through Saturday. ThisWeek
// and ThisMonth are computed independently and may disagree on edge
// days when a week straddles a month boundary; that is deliberate.
type Windows struct {
	Today           Window
	TodayDeliveries Window
	ThisWeek        Window
	ThisMonth       Window
	Upcoming        Window
}

// At derives the five windows from the reference instant now, in
// now's location.
func At(now time.Time) Windows {
	dayStart := startOfDay(now)
	dayEnd := endOfDay(now)

	weekStart := dayStart.AddDate(0, 0, -int(now.Weekday()))
	weekEnd := endOfDay(weekStart.AddDate(0, 0, 6))

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := endOfDay(monthStart.AddDate(0, 1, -1))

	return Windows{
		Today:           Window{Start: dayStart},
		TodayDeliveries: Window{Start: dayStart, End: dayEnd},
		ThisWeek:        Window{Start: weekStart, End: weekEnd},
		ThisMonth:       Window{Start: monthStart, End: monthEnd},
		Upcoming:        Window{Start: dayEnd.Add(time.Millisecond)},
	}
}

// StartOfDay returns midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time { return startOfDay(t) }

// EndOfDay returns 23:59:59.999 of t's calendar day.
func EndOfDay(t time.Time) time.Time { return endOfDay(t) }

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}
