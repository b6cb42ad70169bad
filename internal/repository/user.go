package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"workdesk.io/workdesk/internal/domain"
)

// UserRepo reads and writes user rows.
type UserRepo struct {
	pool *pgxpool.Pool
}

// NewUserRepo creates a user repository.
func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, username, email, password_hash, fcm_token, created_at, updated_at`

// GetByID returns a user or pgx.ErrNoRows.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FCMToken, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByUsername returns a user or pgx.ErrNoRows. Used by login.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FCMToken, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user with a pre-hashed password.
func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash string) (*domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns,
		username, email, passwordHash,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FCMToken, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert user %q: %w", username, err)
	}
	return &u, nil
}

// UpdateFCMToken replaces a user's push delivery address. Returns false
// when the user does not exist.
func (r *UserRepo) UpdateFCMToken(ctx context.Context, userID int64, token string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET fcm_token = $2, updated_at = now() WHERE id = $1`,
		userID, token,
	)
	if err != nil {
		return false, fmt.Errorf("update fcm token for user %d: %w", userID, err)
	}
	return tag.RowsAffected() > 0, nil
}
