// Package recur expands a start date and a recurrence pattern into the
// ordered list of due dates a task submission should produce.
package recur

import "time"

// Pattern selects how many dated task rows one submission generates.
type Pattern string

const (
	None    Pattern = "none"     // single task
	Daily7  Pattern = "daily_7"  // every day for 7 days
	Daily30 Pattern = "daily_30" // every day for 30 days
	Weekly4 Pattern = "weekly_4" // every week for 4 weeks
)

// Parse maps a raw pattern tag to a Pattern. The empty string means None.
func Parse(s string) (Pattern, bool) {
	switch Pattern(s) {
	case "", None:
		return None, true
	case Daily7:
		return Daily7, true
	case Daily30:
		return Daily30, true
	case Weekly4:
		return Weekly4, true
	}
	return None, false
}

// Recurring reports whether tasks produced from p carry the recurring flag.
// Every row of a multi-date batch is flagged, only None yields a plain task.
func (p Pattern) Recurring() bool {
	return p != None
}

// Expand returns the strictly ascending due dates for a task starting at
// start. The first date is always start itself. Month and year rollover is
// plain date arithmetic, no special casing.
func Expand(start time.Time, p Pattern) []time.Time {
	switch p {
	case Daily7:
		return step(start, 7, 1)
	case Daily30:
		return step(start, 30, 1)
	case Weekly4:
		return step(start, 4, 7)
	default:
		return []time.Time{start}
	}
}

func step(start time.Time, n, days int) []time.Time {
	out := make([]time.Time, n)
	for i := 0; i < n; i++ {
		out[i] = start.AddDate(0, 0, i*days)
	}
	return out
}
