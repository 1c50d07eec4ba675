package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"taskcli/internal/cache"
	dom "taskcli/internal/domain"
	"taskcli/internal/recur"
	"taskcli/internal/repo"

	"golang.org/x/sync/singleflight"
)

// ErrNotFound covers both a missing id and, under ownership enforcement,
// a task owned by someone else. The two cases are indistinguishable to
// the caller on purpose.
var ErrNotFound = errors.New("not found")

// ValidationError marks rejected input. The message is caller-facing.
type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string { return e.Msg }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}

const (
	// DefaultProject is used when a create request omits the project.
	DefaultProject = "General"
	// DefaultDueTime is used when a create request omits the due time.
	DefaultDueTime = "12:00"
)

// ParseDueDate parses a YYYY-MM-DD calendar date into UTC midnight.
func ParseDueDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
}

// ParseDueTime parses an HH:MM time of day and returns it zero-padded,
// so stored values sort chronologically as text.
func ParseDueTime(s string) (string, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return "", err
	}
	return t.Format("15:04"), nil
}

// TaskService is the sole mutation/query boundary for tasks. Mutations take
// an enforceOwner flag: true scopes the lookup to the acting user (web/API
// behavior), false looks the task up by id alone (terminal behavior).
type TaskService struct {
	repo  repo.TaskRepo
	cache *cache.TaskCache
	sf    singleflight.Group
}

// NewTaskService creates a TaskService. If c is nil, caching is disabled.
func NewTaskService(r repo.TaskRepo, c *cache.TaskCache) *TaskService {
	return &TaskService{repo: r, cache: c}
}

// CreateTaskInput carries the raw create fields. Project, Priority, DueTime
// and Recurrence are optional and defaulted per the task model.
type CreateTaskInput struct {
	Name       string
	Project    string
	Priority   string
	DueDate    string
	DueTime    string
	Recurrence string
}

// Create validates input, expands the recurrence pattern and persists one
// task per due date. It returns the created tasks in insertion order, so
// ids are contiguous per batch.
//
// The batch is not atomic: if row N fails, rows 1..N-1 stay persisted and
// the error is returned as is.
func (s *TaskService) Create(ctx context.Context, ownerID int64, in CreateTaskInput) ([]dom.Task, error) {
	proto, err := normalizeCreate(ownerID, in)
	if err != nil {
		return nil, err
	}
	pattern, ok := recur.Parse(strings.TrimSpace(in.Recurrence))
	if !ok {
		return nil, ValidationError{Msg: "unknown recurrence pattern"}
	}
	proto.IsRecurring = pattern.Recurring()

	created := make([]dom.Task, 0, 1)
	for _, due := range recur.Expand(proto.DueDate, pattern) {
		row := proto
		row.DueDate = due
		t, err := s.repo.Create(ctx, row)
		if err != nil {
			// Earlier rows are already persisted, so the cached list is
			// stale either way.
			if len(created) > 0 {
				s.invalidate(ctx, ownerID)
			}
			return created, err
		}
		created = append(created, t)
	}
	s.invalidate(ctx, ownerID)
	return created, nil
}

// normalizeCreate trims, defaults and validates the create fields and
// returns the prototype row (DueDate holds the start date).
func normalizeCreate(ownerID int64, in CreateTaskInput) (dom.Task, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return dom.Task{}, ValidationError{Msg: "task name is required"}
	}

	project := strings.TrimSpace(in.Project)
	if project == "" {
		project = DefaultProject
	}

	priority := dom.Priority(strings.TrimSpace(in.Priority))
	if priority == "" {
		priority = dom.PriorityMedium
	}
	if !dom.ValidPriority(priority) {
		return dom.Task{}, ValidationError{Msg: "priority must be High, Medium or Low"}
	}

	start, err := ParseDueDate(in.DueDate)
	if err != nil {
		return dom.Task{}, ValidationError{Msg: "due date must be YYYY-MM-DD"}
	}

	dueTime := strings.TrimSpace(in.DueTime)
	if dueTime == "" {
		dueTime = DefaultDueTime
	} else if dueTime, err = ParseDueTime(dueTime); err != nil {
		return dom.Task{}, ValidationError{Msg: "due time must be HH:MM"}
	}

	return dom.Task{
		UserID:   ownerID,
		Name:     name,
		Project:  project,
		Priority: priority,
		DueDate:  start,
		DueTime:  dueTime,
	}, nil
}

// CreateOne persists exactly one task, taking the recurring flag at face
// value. The JSON API add path uses this; it never runs the recurrence
// expander, so in.Recurrence is ignored.
func (s *TaskService) CreateOne(ctx context.Context, ownerID int64, in CreateTaskInput, isRecurring bool) (dom.Task, error) {
	proto, err := normalizeCreate(ownerID, in)
	if err != nil {
		return dom.Task{}, err
	}
	proto.IsRecurring = isRecurring

	t, err := s.repo.Create(ctx, proto)
	if err != nil {
		return dom.Task{}, err
	}
	s.invalidate(ctx, ownerID)
	return t, nil
}

// List returns tasks matching the filter in canonical order. The plain
// per-owner list (no other filters) is served through the cache.
func (s *TaskService) List(ctx context.Context, f repo.TaskFilter) ([]dom.Task, error) {
	if s.cache != nil && cacheableFilter(f) {
		key := "list:" + strconv.FormatInt(*f.UserID, 10)
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if list, err := s.cache.GetList(ctx, *f.UserID); err == nil && list != nil {
				return list, nil
			}
			list, err := s.repo.List(ctx, f)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetList(ctx, *f.UserID, list)
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.Task), nil
	}
	return s.repo.List(ctx, f)
}

func cacheableFilter(f repo.TaskFilter) bool {
	return f.UserID != nil && f.Priority == nil && f.Project == "" &&
		(f.Status == "" || f.Status == "all") && !f.RecurringOnly
}

// Get loads one task, scoped to actorID when enforceOwner is set.
func (s *TaskService) Get(ctx context.Context, actorID, id int64, enforceOwner bool) (dom.Task, error) {
	var (
		t   dom.Task
		err error
	)
	if enforceOwner {
		t, err = s.repo.GetOwned(ctx, actorID, id)
	} else {
		t, err = s.repo.GetByID(ctx, id)
	}
	if errors.Is(err, repo.ErrNotFound) {
		return dom.Task{}, ErrNotFound
	}
	return t, err
}

// SetCompleted flips the completed flag. Repeating a call is a no-op success.
func (s *TaskService) SetCompleted(ctx context.Context, actorID, id int64, done, enforceOwner bool) (dom.Task, error) {
	t, err := s.Get(ctx, actorID, id, enforceOwner)
	if err != nil {
		return dom.Task{}, err
	}
	updated, err := s.repo.SetCompleted(ctx, t.ID, done)
	if errors.Is(err, repo.ErrNotFound) {
		return dom.Task{}, ErrNotFound
	}
	if err != nil {
		return dom.Task{}, err
	}
	s.invalidate(ctx, updated.UserID)
	return updated, nil
}

// TaskPatch is a partial update: nil (or empty string) fields stay untouched.
type TaskPatch struct {
	Name     *string
	Project  *string
	Priority *dom.Priority
	DueDate  *time.Time
	DueTime  *string
}

// Edit applies the patch to the task. Unlike Create, no field format
// validation happens here: callers pass pre-validated values. The create
// path validates and this one does not; that asymmetry is inherited
// behavior and kept as is.
func (s *TaskService) Edit(ctx context.Context, actorID, id int64, p TaskPatch, enforceOwner bool) (dom.Task, error) {
	t, err := s.Get(ctx, actorID, id, enforceOwner)
	if err != nil {
		return dom.Task{}, err
	}

	if p.Name != nil && strings.TrimSpace(*p.Name) != "" {
		t.Name = strings.TrimSpace(*p.Name)
	}
	if p.Project != nil && strings.TrimSpace(*p.Project) != "" {
		t.Project = strings.TrimSpace(*p.Project)
	}
	if p.Priority != nil && *p.Priority != "" {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.DueTime != nil && *p.DueTime != "" {
		t.DueTime = *p.DueTime
	}

	updated, err := s.repo.Update(ctx, t)
	if errors.Is(err, repo.ErrNotFound) {
		return dom.Task{}, ErrNotFound
	}
	if err != nil {
		return dom.Task{}, err
	}
	s.invalidate(ctx, updated.UserID)
	return updated, nil
}

// Delete removes the task permanently.
func (s *TaskService) Delete(ctx context.Context, actorID, id int64, enforceOwner bool) error {
	t, err := s.Get(ctx, actorID, id, enforceOwner)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, t.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.invalidate(ctx, t.UserID)
	return nil
}

func (s *TaskService) invalidate(ctx context.Context, userID int64) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, userID)
	}
}
