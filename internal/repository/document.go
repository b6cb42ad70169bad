package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"workdesk.io/workdesk/internal/domain"
)

// DocumentRepo reads and writes document rows.
type DocumentRepo struct {
	pool *pgxpool.Pool
}

// NewDocumentRepo creates a document repository.
func NewDocumentRepo(pool *pgxpool.Pool) *DocumentRepo {
	return &DocumentRepo{pool: pool}
}

const documentColumns = `id, uuid, title, description, category_id, file_url, status, created_by, created_at, updated_at`

// CreateDocumentParams carries the fields for a new document.
type CreateDocumentParams struct {
	Title       string
	Description string
	CategoryID  *int64
	FileURL     string
	CreatedBy   int64
}

// Create inserts a document with a fresh UUID.
func (r *DocumentRepo) Create(ctx context.Context, p CreateDocumentParams) (*domain.Document, error) {
	var d domain.Document
	err := r.pool.QueryRow(ctx, `
		INSERT INTO documents (uuid, title, description, category_id, file_url, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+documentColumns,
		uuid.NewString(), p.Title, p.Description, p.CategoryID, p.FileURL, p.CreatedBy,
	).Scan(&d.ID, &d.UUID, &d.Title, &d.Description, &d.CategoryID, &d.FileURL, &d.Status, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert document %q: %w", p.Title, err)
	}
	return &d, nil
}

// GetByID returns a document or pgx.ErrNoRows.
func (r *DocumentRepo) GetByID(ctx context.Context, id int64) (*domain.Document, error) {
	var d domain.Document
	err := r.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`, id,
	).Scan(&d.ID, &d.UUID, &d.Title, &d.Description, &d.CategoryID, &d.FileURL, &d.Status, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetByUUID returns a document by its public UUID or pgx.ErrNoRows.
func (r *DocumentRepo) GetByUUID(ctx context.Context, id string) (*domain.Document, error) {
	var d domain.Document
	err := r.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE uuid = $1`, id,
	).Scan(&d.ID, &d.UUID, &d.Title, &d.Description, &d.CategoryID, &d.FileURL, &d.Status, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns documents, optionally narrowed to a category, newest first.
func (r *DocumentRepo) List(ctx context.Context, categoryID *int64, limit, offset int) (*domain.Page[domain.Document], error) {
	if limit <= 0 {
		limit = 50
	}
	where := ""
	args := []any{}
	if categoryID != nil {
		where = "WHERE category_id = $1"
		args = append(args, *categoryID)
	}

	var total int64
	if err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM documents "+where, args...,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx,
		`SELECT `+documentColumns+` FROM documents `+where+
			` ORDER BY created_at DESC LIMIT $`+fmt.Sprint(len(args)-1)+` OFFSET $`+fmt.Sprint(len(args)),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]domain.Document, 0, limit)
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(&d.ID, &d.UUID, &d.Title, &d.Description, &d.CategoryID, &d.FileURL, &d.Status, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &domain.Page[domain.Document]{Data: docs, Total: total, Limit: limit, Offset: offset}, nil
}

// UpdateDocumentParams carries optional field updates; nil means keep current.
type UpdateDocumentParams struct {
	Title       *string
	Description *string
	CategoryID  *int64
	FileURL     *string
	Status      *string
}

// Update applies the non-nil fields and returns the fresh row.
func (r *DocumentRepo) Update(ctx context.Context, id int64, p UpdateDocumentParams) (*domain.Document, error) {
	var d domain.Document
	err := r.pool.QueryRow(ctx, `
		UPDATE documents SET
			title       = COALESCE($2, title),
			description = COALESCE($3, description),
			category_id = COALESCE($4, category_id),
			file_url    = COALESCE($5, file_url),
			status      = COALESCE($6, status),
			updated_at  = now()
		WHERE id = $1
		RETURNING `+documentColumns,
		id, p.Title, p.Description, p.CategoryID, p.FileURL, p.Status,
	).Scan(&d.ID, &d.UUID, &d.Title, &d.Description, &d.CategoryID, &d.FileURL, &d.Status, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Delete removes a document.
func (r *DocumentRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete document %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}
