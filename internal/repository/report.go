package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"workdesk.io/workdesk/internal/domain"
)

// ReportRepo reads and writes report rows.
type ReportRepo struct {
	pool *pgxpool.Pool
}

// NewReportRepo creates a report repository.
func NewReportRepo(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

const reportColumns = `id, uuid, title, content, category_id, status, created_by, created_at, updated_at`

// CreateReportParams carries the fields for a new report.
type CreateReportParams struct {
	Title      string
	Content    string
	CategoryID *int64
	CreatedBy  int64
}

// Create inserts a report with a fresh UUID in draft status.
func (r *ReportRepo) Create(ctx context.Context, p CreateReportParams) (*domain.Report, error) {
	var rep domain.Report
	err := r.pool.QueryRow(ctx, `
		INSERT INTO reports (uuid, title, content, category_id, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+reportColumns,
		uuid.NewString(), p.Title, p.Content, p.CategoryID, p.CreatedBy,
	).Scan(&rep.ID, &rep.UUID, &rep.Title, &rep.Content, &rep.CategoryID, &rep.Status, &rep.CreatedBy, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert report %q: %w", p.Title, err)
	}
	return &rep, nil
}

// GetByID returns a report or pgx.ErrNoRows.
func (r *ReportRepo) GetByID(ctx context.Context, id int64) (*domain.Report, error) {
	var rep domain.Report
	err := r.pool.QueryRow(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE id = $1`, id,
	).Scan(&rep.ID, &rep.UUID, &rep.Title, &rep.Content, &rep.CategoryID, &rep.Status, &rep.CreatedBy, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// List returns reports, optionally narrowed to a category or status,
// newest first.
func (r *ReportRepo) List(ctx context.Context, categoryID *int64, status string, limit, offset int) (*domain.Page[domain.Report], error) {
	if limit <= 0 {
		limit = 50
	}
	where := "WHERE 1=1"
	args := []any{}
	if categoryID != nil {
		args = append(args, *categoryID)
		where += fmt.Sprintf(" AND category_id = $%d", len(args))
	}
	if status != "" {
		args = append(args, status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM reports "+where, args...,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("count reports: %w", err)
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx,
		`SELECT `+reportColumns+` FROM reports `+where+
			` ORDER BY created_at DESC LIMIT $`+fmt.Sprint(len(args)-1)+` OFFSET $`+fmt.Sprint(len(args)),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	reps := make([]domain.Report, 0, limit)
	for rows.Next() {
		var rep domain.Report
		if err := rows.Scan(&rep.ID, &rep.UUID, &rep.Title, &rep.Content, &rep.CategoryID, &rep.Status, &rep.CreatedBy, &rep.CreatedAt, &rep.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reps = append(reps, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &domain.Page[domain.Report]{Data: reps, Total: total, Limit: limit, Offset: offset}, nil
}

// UpdateReportParams carries optional field updates; nil means keep current.
type UpdateReportParams struct {
	Title      *string
	Content    *string
	CategoryID *int64
	Status     *string
}

// Update applies the non-nil fields and returns the fresh row.
func (r *ReportRepo) Update(ctx context.Context, id int64, p UpdateReportParams) (*domain.Report, error) {
	var rep domain.Report
	err := r.pool.QueryRow(ctx, `
		UPDATE reports SET
			title       = COALESCE($2, title),
			content     = COALESCE($3, content),
			category_id = COALESCE($4, category_id),
			status      = COALESCE($5, status),
			updated_at  = now()
		WHERE id = $1
		RETURNING `+reportColumns,
		id, p.Title, p.Content, p.CategoryID, p.Status,
	).Scan(&rep.ID, &rep.UUID, &rep.Title, &rep.Content, &rep.CategoryID, &rep.Status, &rep.CreatedBy, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// Delete removes a report.
func (r *ReportRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete report %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}
