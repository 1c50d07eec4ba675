package dto

import (
	dom "taskcli/internal/domain"
)

// AddTaskRequest is the JSON body for POST /api/tasks/add. This path
// creates exactly one row and takes is_recurring at face value; recurrence
// expansion happens only on the web and terminal surfaces.
type AddTaskRequest struct {
	Email       string `json:"email" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Project     string `json:"project"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date" binding:"required"`
	DueTime     string `json:"due_time"`
	IsRecurring bool   `json:"is_recurring"`
}

// TaskActionRequest identifies the acting user on per-id task operations
// (complete, pending, delete). Lookups are scoped to that user.
type TaskActionRequest struct {
	Email string `json:"email" binding:"required"`
}

// EditTaskRequest is the partial-update body for POST /api/tasks/{id}/edit.
// Absent or empty fields are left untouched.
type EditTaskRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name"`
	Project  string `json:"project"`
	Priority string `json:"priority"`
	DueDate  string `json:"due_date"`
	DueTime  string `json:"due_time"`
}

// TaskResponse is the JSON shape of one task.
type TaskResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Project     string `json:"project"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
	DueTime     string `json:"due_time"`
	Completed   bool   `json:"completed"`
	IsRecurring bool   `json:"is_recurring"`
}

// ListTasksResponse is the JSON body for GET /api/tasks.
type ListTasksResponse struct {
	Success bool           `json:"success"`
	Tasks   []TaskResponse `json:"tasks"`
}

// FromTask converts a domain task to its JSON shape.
func FromTask(t dom.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Name:        t.Name,
		Project:     t.Project,
		Priority:    string(t.Priority),
		DueDate:     t.DueDate.Format("2006-01-02"),
		DueTime:     t.DueTime,
		Completed:   t.Completed,
		IsRecurring: t.IsRecurring,
	}
}

// FromTasks converts a slice of domain tasks. A nil slice becomes an empty
// JSON array, never null.
func FromTasks(list []dom.Task) []TaskResponse {
	out := make([]TaskResponse, len(list))
	for i := range list {
		out[i] = FromTask(list[i])
	}
	return out
}
