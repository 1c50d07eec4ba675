package repo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	dom "taskcli/internal/domain"
)

// MemStore holds in-memory users and tasks behind the UserRepo and TaskRepo
// interfaces. It backs the unit tests in place of Postgres and mirrors the
// schema semantics: monotonically assigned ids, canonical task ordering,
// user deletion cascading to owned tasks.
type MemStore struct {
	mu sync.RWMutex

	nextUserID int64
	nextTaskID int64

	users map[int64]dom.User
	tasks map[int64]dom.Task
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		nextUserID: 1,
		nextTaskID: 1,
		users:      make(map[int64]dom.User),
		tasks:      make(map[int64]dom.Task),
	}
}

// Users returns the UserRepo view of the store.
func (s *MemStore) Users() *MemUserRepo { return &MemUserRepo{s: s} }

// Tasks returns the TaskRepo view of the store.
func (s *MemStore) Tasks() *MemTaskRepo { return &MemTaskRepo{s: s} }

// MemUserRepo implements UserRepo over a MemStore.
type MemUserRepo struct {
	s *MemStore
}

func (r *MemUserRepo) GetByID(_ context.Context, id int64) (dom.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return dom.User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemUserRepo) GetByEmail(_ context.Context, email string) (dom.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return dom.User{}, ErrNotFound
}

func (r *MemUserRepo) Create(_ context.Context, name, email, passwordHash string) (dom.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return dom.User{}, ErrDuplicateEmail
		}
	}

	u := dom.User{
		ID:           r.s.nextUserID,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	r.s.nextUserID++
	r.s.users[u.ID] = u
	return u, nil
}

// Delete removes the user and every task the user owns.
func (r *MemUserRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.users, id)
	for tid, t := range r.s.tasks {
		if t.UserID == id {
			delete(r.s.tasks, tid)
		}
	}
	return nil
}

// MemTaskRepo implements TaskRepo over a MemStore.
type MemTaskRepo struct {
	s *MemStore
}

func (r *MemTaskRepo) Create(_ context.Context, t dom.Task) (dom.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t.ID = r.s.nextTaskID
	r.s.nextTaskID++
	t.CreatedAt = time.Now().UTC()
	r.s.tasks[t.ID] = t
	return t, nil
}

func (r *MemTaskRepo) GetByID(_ context.Context, id int64) (dom.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tasks[id]
	if !ok {
		return dom.Task{}, ErrNotFound
	}
	return t, nil
}

func (r *MemTaskRepo) GetOwned(_ context.Context, userID, id int64) (dom.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tasks[id]
	if !ok || t.UserID != userID {
		return dom.Task{}, ErrNotFound
	}
	return t, nil
}

func (r *MemTaskRepo) List(_ context.Context, f TaskFilter) ([]dom.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []dom.Task
	for _, t := range r.s.tasks {
		if f.UserID != nil && t.UserID != *f.UserID {
			continue
		}
		if f.Priority != nil && t.Priority != *f.Priority {
			continue
		}
		if f.Project != "" && !strings.Contains(strings.ToLower(t.Project), strings.ToLower(f.Project)) {
			continue
		}
		if f.Status == "pending" && t.Completed {
			continue
		}
		if f.Status == "completed" && !t.Completed {
			continue
		}
		if f.RecurringOnly && !t.IsRecurring {
			continue
		}
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		if out[i].DueTime != out[j].DueTime {
			return out[i].DueTime < out[j].DueTime
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemTaskRepo) Update(_ context.Context, t dom.Task) (dom.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.tasks[t.ID]
	if !ok {
		return dom.Task{}, ErrNotFound
	}
	cur.Name = t.Name
	cur.Project = t.Project
	cur.Priority = t.Priority
	cur.DueDate = t.DueDate
	cur.DueTime = t.DueTime
	r.s.tasks[cur.ID] = cur
	return cur, nil
}

func (r *MemTaskRepo) SetCompleted(_ context.Context, id int64, done bool) (dom.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tasks[id]
	if !ok {
		return dom.Task{}, ErrNotFound
	}
	t.Completed = done
	r.s.tasks[id] = t
	return t, nil
}

func (r *MemTaskRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.tasks, id)
	return nil
}
