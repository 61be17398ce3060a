package schedule

import (
	"testing"
	"time"
)

func at(day int) *time.Time {
	t := time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestNormalizeRangeFillsMissingBound(t *testing.T) {
	s, e := NormalizeRange(at(5), nil, nil)
	if s == nil || e == nil || !s.Equal(*at(5)) || !e.Equal(*at(5)) {
		t.Fatalf("expected (5,5), got (%v,%v)", s, e)
	}

	s, e = NormalizeRange(nil, at(3), nil)
	if s == nil || e == nil || !s.Equal(*at(3)) || !e.Equal(*at(3)) {
		t.Fatalf("expected (3,3), got (%v,%v)", s, e)
	}
}

func TestNormalizeRangeFallback(t *testing.T) {
	s, e := NormalizeRange(nil, nil, at(7))
	if s == nil || e == nil || !s.Equal(*at(7)) || !e.Equal(*at(7)) {
		t.Fatalf("expected (7,7), got (%v,%v)", s, e)
	}

	s, e = NormalizeRange(nil, nil, nil)
	if s != nil || e != nil {
		t.Fatalf("expected (nil,nil), got (%v,%v)", s, e)
	}
}

func TestNormalizeRangeSwapsInverted(t *testing.T) {
	s, e := NormalizeRange(at(10), at(3), nil)
	if !s.Equal(*at(3)) || !e.Equal(*at(10)) {
		t.Fatalf("expected (3,10), got (%v,%v)", s, e)
	}
}

func TestNormalizeRangeOrderInvariant(t *testing.T) {
	cases := []struct{ start, end, fallback *time.Time }{
		{at(1), at(2), at(3)},
		{at(2), at(1), nil},
		{nil, at(4), at(9)},
		{at(4), nil, nil},
		{nil, nil, at(6)},
		{nil, nil, nil},
	}
	for i, c := range cases {
		s, e := NormalizeRange(c.start, c.end, c.fallback)
		if (s == nil) != (e == nil) {
			t.Fatalf("case %d: bounds must be both nil or both set, got (%v,%v)", i, s, e)
		}
		if s != nil && s.After(*e) {
			t.Fatalf("case %d: start %v after end %v", i, s, e)
		}
	}
}

func TestOverlaps(t *testing.T) {
	win1, win2 := *at(3), *at(10)
	if !Overlaps(at(1), at(5), nil, win1, win2) {
		t.Fatal("expected [1,5] to overlap [3,10]")
	}
	if Overlaps(at(1), at(2), nil, win1, win2) {
		t.Fatal("did not expect [1,2] to overlap [3,10]")
	}
	if Overlaps(nil, nil, nil, win1, win2) {
		t.Fatal("undated range must never overlap")
	}
	if !Overlaps(nil, nil, at(10), win1, win2) {
		t.Fatal("fallback exactly on the window edge must overlap (inclusive)")
	}
	if !Overlaps(at(3), at(3), nil, win1, win2) {
		t.Fatal("single-day range on the window start must overlap (inclusive)")
	}
}

func TestDayWindow(t *testing.T) {
	now := time.Date(2026, 3, 15, 14, 30, 12, 0, time.UTC)
	start, end := DayWindow(now)
	if start.Hour() != 0 || start.Day() != 15 {
		t.Fatalf("unexpected window start: %v", start)
	}
	if end.Day() != 15 || end.Hour() != 23 || end.Minute() != 59 {
		t.Fatalf("unexpected window end: %v", end)
	}
	if !end.Before(start.AddDate(0, 0, 1)) {
		t.Fatal("window end must stay inside the day")
	}
}
