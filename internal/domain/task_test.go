package domain

import (
	"testing"
	"time"
)

func TestOverdue(t *testing.T) {
	today := time.Date(2023, 10, 15, 13, 45, 0, 0, time.UTC)

	cases := []struct {
		name      string
		due       time.Time
		completed bool
		want      bool
	}{
		{"pending past due", time.Date(2023, 10, 14, 0, 0, 0, 0, time.UTC), false, true},
		{"pending due today", time.Date(2023, 10, 15, 0, 0, 0, 0, time.UTC), false, false},
		{"pending due tomorrow", time.Date(2023, 10, 16, 0, 0, 0, 0, time.UTC), false, false},
		{"completed past due", time.Date(2023, 10, 14, 0, 0, 0, 0, time.UTC), true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			task := Task{DueDate: tc.due, Completed: tc.completed}
			if got := task.Overdue(today); got != tc.want {
				t.Fatalf("Overdue(%s) = %v, want %v", tc.due.Format("2006-01-02"), got, tc.want)
			}
		})
	}
}

func TestValidPriority(t *testing.T) {
	for _, p := range []Priority{PriorityHigh, PriorityMedium, PriorityLow} {
		if !ValidPriority(p) {
			t.Errorf("ValidPriority(%s) = false", p)
		}
	}
	if ValidPriority("Urgent") {
		t.Error("ValidPriority accepted an unknown level")
	}
}
