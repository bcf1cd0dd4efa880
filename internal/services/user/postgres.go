package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"canteen-system/internal/apperror"
	"canteen-system/internal/database"
	"canteen-system/internal/models"
)

const uniqueViolation = "23505"

// PostgresRepository stores users in PostgreSQL
type PostgresRepository struct {
	db *database.DB
}

// NewPostgresRepository creates a user repository
func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a user and fills its id and creation time
func (r *PostgresRepository) Create(ctx context.Context, u *models.User) error {
	err := r.db.QueryRow(ctx, database.InsertUserSQL, u.Username, u.Email, u.PasswordHash, u.IsStaff).Scan(
		&u.ID,
		&u.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperror.Conflict("username", "A user with that username already exists.")
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetByUsername looks a user up by login name
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx, database.GetUserByUsernameSQL, username).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.IsStaff,
		&u.CreatedAt,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}
