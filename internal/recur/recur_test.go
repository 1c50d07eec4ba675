package recur

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExpandLengths(t *testing.T) {
	t.Parallel()

	start := date(2023, 10, 1)
	cases := []struct {
		pattern Pattern
		want    int
	}{
		{None, 1},
		{Daily7, 7},
		{Daily30, 30},
		{Weekly4, 4},
	}
	for _, tc := range cases {
		got := Expand(start, tc.pattern)
		if len(got) != tc.want {
			t.Errorf("Expand(%s): got %d dates, want %d", tc.pattern, len(got), tc.want)
		}
		if !got[0].Equal(start) {
			t.Errorf("Expand(%s): first date %v, want start %v", tc.pattern, got[0], start)
		}
		for i := 1; i < len(got); i++ {
			if !got[i].After(got[i-1]) {
				t.Errorf("Expand(%s): dates not strictly ascending at index %d", tc.pattern, i)
			}
		}
	}
}

func TestExpandDaily7Sequence(t *testing.T) {
	t.Parallel()

	got := Expand(date(2023, 10, 1), Daily7)
	for i := 0; i < 7; i++ {
		want := date(2023, 10, 1+i)
		if !got[i].Equal(want) {
			t.Fatalf("day %d: got %v, want %v", i, got[i], want)
		}
	}
}

func TestExpandWeekly4Sequence(t *testing.T) {
	t.Parallel()

	got := Expand(date(2023, 10, 1), Weekly4)
	want := []time.Time{
		date(2023, 10, 1),
		date(2023, 10, 8),
		date(2023, 10, 15),
		date(2023, 10, 22),
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("week %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestExpandMonthRollover(t *testing.T) {
	t.Parallel()

	got := Expand(date(2023, 10, 28), Daily7)
	if last, want := got[6], date(2023, 11, 3); !last.Equal(want) {
		t.Fatalf("last date: got %v, want %v", last, want)
	}
}

func TestExpandLeapDay(t *testing.T) {
	t.Parallel()

	got := Expand(date(2024, 2, 28), Daily7)
	if second, want := got[1], date(2024, 2, 29); !second.Equal(want) {
		t.Fatalf("second date: got %v, want %v", second, want)
	}
	if last, want := got[6], date(2024, 3, 5); !last.Equal(want) {
		t.Fatalf("last date: got %v, want %v", last, want)
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "none", "daily_7", "daily_30", "weekly_4"} {
		if _, ok := Parse(s); !ok {
			t.Errorf("Parse(%q): unexpected failure", s)
		}
	}
	if _, ok := Parse("monthly"); ok {
		t.Error("Parse(monthly): expected failure")
	}
	if p, _ := Parse(""); p != None {
		t.Errorf("Parse empty: got %s, want none", p)
	}
}

func TestRecurringFlag(t *testing.T) {
	t.Parallel()

	if None.Recurring() {
		t.Error("none must not be recurring")
	}
	for _, p := range []Pattern{Daily7, Daily30, Weekly4} {
		if !p.Recurring() {
			t.Errorf("%s must be recurring", p)
		}
	}
}
