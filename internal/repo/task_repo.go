package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	dom "taskcli/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskFilter holds the independently optional, AND-combined list filters.
// Status is "pending", "completed" or "" / "all" for no status filter.
type TaskFilter struct {
	UserID        *int64
	Priority      *dom.Priority
	Project       string
	Status        string
	RecurringOnly bool
}

// TaskRepo provides task persistence with the canonical ordering
// due_date, due_time, id.
type TaskRepo interface {
	Create(ctx context.Context, t dom.Task) (dom.Task, error)
	GetByID(ctx context.Context, id int64) (dom.Task, error)
	GetOwned(ctx context.Context, userID, id int64) (dom.Task, error)
	List(ctx context.Context, f TaskFilter) ([]dom.Task, error)
	Update(ctx context.Context, t dom.Task) (dom.Task, error)
	SetCompleted(ctx context.Context, id int64, done bool) (dom.Task, error)
	Delete(ctx context.Context, id int64) error
}

// PGTaskRepo implements TaskRepo with Postgres.
type PGTaskRepo struct {
	db *pgxpool.Pool
}

func NewPGTaskRepo(db *pgxpool.Pool) *PGTaskRepo {
	return &PGTaskRepo{db: db}
}

const taskColumns = `id, user_id, name, project, priority, due_date, due_time, completed, is_recurring, created_at`

func scanTask(row pgx.Row) (dom.Task, error) {
	var t dom.Task
	err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Project, &t.Priority,
		&t.DueDate, &t.DueTime, &t.Completed, &t.IsRecurring, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.Task{}, ErrNotFound
	}
	return t, err
}

func (r *PGTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	query := `
		INSERT INTO tasks (user_id, name, project, priority, due_date, due_time, completed, is_recurring)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, query,
		t.UserID, t.Name, t.Project, t.Priority, t.DueDate, t.DueTime, t.Completed, t.IsRecurring))
}

func (r *PGTaskRepo) GetByID(ctx context.Context, id int64) (dom.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return scanTask(r.db.QueryRow(ctx, query, id))
}

func (r *PGTaskRepo) GetOwned(ctx context.Context, userID, id int64) (dom.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`
	return scanTask(r.db.QueryRow(ctx, query, id, userID))
}

func (r *PGTaskRepo) List(ctx context.Context, f TaskFilter) ([]dom.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	var conds []string
	var args []any

	if f.UserID != nil {
		args = append(args, *f.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.Priority != nil {
		args = append(args, *f.Priority)
		conds = append(conds, fmt.Sprintf("priority = $%d", len(args)))
	}
	if f.Project != "" {
		args = append(args, "%"+f.Project+"%")
		conds = append(conds, fmt.Sprintf("project ILIKE $%d", len(args)))
	}
	switch f.Status {
	case "pending":
		conds = append(conds, "completed = FALSE")
	case "completed":
		conds = append(conds, "completed = TRUE")
	}
	if f.RecurringOnly {
		conds = append(conds, "is_recurring = TRUE")
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY due_date, due_time, id`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []dom.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *PGTaskRepo) Update(ctx context.Context, t dom.Task) (dom.Task, error) {
	query := `
		UPDATE tasks SET name = $2, project = $3, priority = $4, due_date = $5, due_time = $6
		WHERE id = $1
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, query,
		t.ID, t.Name, t.Project, t.Priority, t.DueDate, t.DueTime))
}

func (r *PGTaskRepo) SetCompleted(ctx context.Context, id int64, done bool) (dom.Task, error) {
	query := `
		UPDATE tasks SET completed = $2
		WHERE id = $1
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, query, id, done))
}

func (r *PGTaskRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
