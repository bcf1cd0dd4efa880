package booking

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"canteen-system/internal/database"
	"canteen-system/internal/models"
)

// PostgresRepository stores bookings in PostgreSQL
type PostgresRepository struct {
	db *database.DB
}

// NewPostgresRepository creates a booking repository
func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a booking and fills its id and creation time
func (r *PostgresRepository) Create(ctx context.Context, b *models.Booking) error {
	err := r.db.QueryRow(ctx, database.InsertBookingSQL, b.UserID, b.MenuItemID, b.Date.Time, b.Quantity).Scan(
		&b.ID,
		&b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

// ListByUser returns the user's bookings, newest first
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]models.Booking, error) {
	rows, err := r.db.Query(ctx, database.ListBookingsByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	bookings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Booking, error) {
		var b models.Booking
		err := row.Scan(
			&b.ID,
			&b.UserID,
			&b.MenuItemID,
			&b.MenuItemName,
			&b.Date.Time,
			&b.Quantity,
			&b.CreatedAt,
		)
		return b, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan bookings: %w", err)
	}
	return bookings, nil
}

// Delete removes a booking owned by userID. It reports whether a row was deleted.
func (r *PostgresRepository) Delete(ctx context.Context, bookingID, userID int64) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, database.DeleteBookingSQL, bookingID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete booking: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
