package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"workdesk.io/workdesk/internal/domain"
)

// TaskRepo reads and writes task rows.
type TaskRepo struct {
	pool *pgxpool.Pool
}

// NewTaskRepo creates a task repository.
func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

const taskColumns = `id, user_id, title, description, status, priority, due_date, created_at, updated_at`

// CreateTaskParams carries the fields for a new task.
type CreateTaskParams struct {
	UserID      int64
	Title       string
	Description string
	Status      string
	Priority    domain.Priority
	DueDate     *time.Time
}

// Create inserts a task, defaulting status to pending and priority to medium.
func (r *TaskRepo) Create(ctx context.Context, p CreateTaskParams) (*domain.Task, error) {
	if p.Status == "" {
		p.Status = domain.TaskStatusPending
	}
	if p.Priority == "" {
		p.Priority = domain.PriorityMedium
	}
	var t domain.Task
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (user_id, title, description, status, priority, due_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+taskColumns,
		p.UserID, p.Title, p.Description, p.Status, p.Priority, p.DueDate,
	).Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert task for user %d: %w", p.UserID, err)
	}
	return &t, nil
}

// GetByID returns a task or pgx.ErrNoRows.
func (r *TaskRepo) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	var t domain.Task
	err := r.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id,
	).Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByUser returns a user's tasks, optionally filtered by status,
// soonest due date first with undated tasks last.
func (r *TaskRepo) ListByUser(ctx context.Context, userID int64, status string) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`
	args := []any{userID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY due_date ASC NULLS LAST, created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks for user %d: %w", userID, err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateTaskParams carries optional field updates; nil means keep current.
type UpdateTaskParams struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *domain.Priority
	DueDate     *time.Time
	ClearDue    bool
}

// Update applies the non-nil fields and returns the fresh row.
func (r *TaskRepo) Update(ctx context.Context, id int64, p UpdateTaskParams) (*domain.Task, error) {
	var t domain.Task
	err := r.pool.QueryRow(ctx, `
		UPDATE tasks SET
			title       = COALESCE($2, title),
			description = COALESCE($3, description),
			status      = COALESCE($4, status),
			priority    = COALESCE($5, priority),
			due_date    = CASE WHEN $7 THEN NULL ELSE COALESCE($6, due_date) END,
			updated_at  = now()
		WHERE id = $1
		RETURNING `+taskColumns,
		id, p.Title, p.Description, p.Status, p.Priority, p.DueDate, p.ClearDue,
	).Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete removes a task.
func (r *TaskRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete task %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// OverdueTasks returns incomplete tasks whose due date has passed as of
// now. Feeds the overdue-task derivation rule.
func (r *TaskRepo) OverdueTasks(ctx context.Context, now time.Time) ([]domain.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE due_date IS NOT NULL
		  AND due_date < $1
		  AND status NOT IN ('completed', 'cancelled')
		ORDER BY due_date ASC`,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("query overdue tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan overdue task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// OverdueByUser returns one user's incomplete tasks past their due date.
func (r *TaskRepo) OverdueByUser(ctx context.Context, userID int64, now time.Time) ([]domain.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = $1
		  AND due_date IS NOT NULL
		  AND due_date < $2
		  AND status NOT IN ('completed', 'cancelled')
		ORDER BY due_date ASC`,
		userID, now,
	)
	if err != nil {
		return nil, fmt.Errorf("query overdue tasks for user %d: %w", userID, err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan overdue task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
