package schedule

import "time"

// NormalizeRange resolves a partial {start, end, fallback} triple into a
// canonical ordered pair. A missing bound is filled from its counterpart; a
// fully absent range falls back to the fallback instant on both ends; an
// inverted pair is swapped. The result is either (nil, nil) or satisfies
// start <= end.
func NormalizeRange(start, end, fallback *time.Time) (*time.Time, *time.Time) {
	switch {
	case start == nil && end == nil:
		return fallback, fallback
	case start == nil:
		return end, end
	case end == nil:
		return start, start
	}
	if start.After(*end) {
		return end, start
	}
	return start, end
}

// Overlaps reports whether the normalized range intersects the inclusive
// window [winStart, winEnd]. A range that resolves to no dates at all never
// overlaps anything.
func Overlaps(start, end, fallback *time.Time, winStart, winEnd time.Time) bool {
	s, e := NormalizeRange(start, end, fallback)
	if s == nil || e == nil {
		return false
	}
	return !e.Before(winStart) && !s.After(winEnd)
}

// DayWindow returns the inclusive bounds of the local calendar day
// containing now: midnight through 23:59:59.999999999.
func DayWindow(now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}
