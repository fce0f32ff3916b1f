package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avela/taskboard-backend/internal/core/domain"
	apperrors "github.com/avela/taskboard-backend/internal/core/errors"
	"github.com/avela/taskboard-backend/internal/core/ports"
)

// UserRepository reads identity-provider-synced user profiles.
type UserRepository struct {
	pool *pgxpool.Pool
}

var _ ports.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a new user repository.
func NewUserRepository(pool *pgxpool.Pool) ports.UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID retrieves a user profile by ID.
func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, email, full_name, is_active, created_at, last_active_at
		FROM users
		WHERE id = $1
	`

	var u domain.User
	err := GetDBTX(ctx, r.pool).QueryRow(ctx, query, userID).Scan(
		&u.ID, &u.Email, &u.FullName, &u.IsActive, &u.CreatedAt, &u.LastActiveAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// TouchLastActive stamps the user's last activity time.
func (r *UserRepository) TouchLastActive(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE users SET last_active_at = now() WHERE id = $1`

	if _, err := GetDBTX(ctx, r.pool).Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to touch user: %w", err)
	}
	return nil
}
