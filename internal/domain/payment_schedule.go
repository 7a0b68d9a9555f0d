package domain

import "time"

// NextPaymentDate returns the first monthly due date after now, counting
// whole months from start. Days past the end of a shorter month are clamped
// to its last day, and every candidate is derived from start so a clamp
// never drifts later dates (Jan 31 -> Feb 29 -> Mar 31). A start date in the
// future is itself the next payment date.
func NextPaymentDate(start, now time.Time) time.Time {
	if start.After(now) {
		return start
	}

	sy, sm, _ := start.Date()
	ny, nm, _ := now.Date()
	n := (ny-sy)*12 + int(nm-sm) - 1
	if n < 1 {
		n = 1
	}
	for ; ; n++ {
		if next := AddMonths(start, n); next.After(now) {
			return next
		}
	}
}

// AddMonths adds n calendar months to t, clamping the day of month.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); d > last {
		d = last
	}
	hh, mm, ss := t.Clock()
	return time.Date(first.Year(), first.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
