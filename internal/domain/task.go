package domain

import "time"

// Priority is the task priority level.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// ValidPriority reports whether p is one of the known levels.
func ValidPriority(p Priority) bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Task is a single due-dated work item owned by one user.
// It does not depend on Gin, Postgres or Redis.
//
// DueDate carries the calendar date only (UTC midnight). DueTime is a
// zero-padded "HH:MM" string, so lexicographic order matches clock order.
type Task struct {
	ID          int64
	UserID      int64
	Name        string
	Project     string
	Priority    Priority
	DueDate     time.Time
	DueTime     string
	Completed   bool
	IsRecurring bool
	CreatedAt   time.Time
}

// Overdue reports whether the task is pending and past its due date.
func (t Task) Overdue(today time.Time) bool {
	y, m, d := today.UTC().Date()
	return !t.Completed && t.DueDate.Before(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}
