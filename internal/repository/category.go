package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"workdesk.io/workdesk/internal/domain"
)

// CategoryRepo reads and writes category rows.
type CategoryRepo struct {
	pool *pgxpool.Pool
}

// NewCategoryRepo creates a category repository.
func NewCategoryRepo(pool *pgxpool.Pool) *CategoryRepo {
	return &CategoryRepo{pool: pool}
}

const categoryColumns = `id, name, description, parent_id, created_at, updated_at`

// Create inserts a category.
func (r *CategoryRepo) Create(ctx context.Context, name, description string, parentID *int64) (*domain.Category, error) {
	var c domain.Category
	err := r.pool.QueryRow(ctx, `
		INSERT INTO categories (name, description, parent_id)
		VALUES ($1, $2, $3)
		RETURNING `+categoryColumns,
		name, description, parentID,
	).Scan(&c.ID, &c.Name, &c.Description, &c.ParentID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert category %q: %w", name, err)
	}
	return &c, nil
}

// GetByID returns a category or pgx.ErrNoRows.
func (r *CategoryRepo) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	var c domain.Category
	err := r.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.ParentID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by name.
func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+categoryColumns+` FROM categories ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.ParentID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// Children returns the direct children of a category, ordered by name.
func (r *CategoryRepo) Children(ctx context.Context, parentID int64) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE parent_id = $1 ORDER BY name`,
		parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list children of category %d: %w", parentID, err)
	}
	defer rows.Close()

	var cats []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.ParentID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// Update applies the non-nil fields and returns the fresh row.
func (r *CategoryRepo) Update(ctx context.Context, id int64, name, description *string, parentID *int64) (*domain.Category, error) {
	var c domain.Category
	err := r.pool.QueryRow(ctx, `
		UPDATE categories SET
			name        = COALESCE($2, name),
			description = COALESCE($3, description),
			parent_id   = COALESCE($4, parent_id),
			updated_at  = now()
		WHERE id = $1
		RETURNING `+categoryColumns,
		id, name, description, parentID,
	).Scan(&c.ID, &c.Name, &c.Description, &c.ParentID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes a category; children are detached, documents and
// reports keep a NULL category.
func (r *CategoryRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete category %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}
