package timing

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"canteen-system/internal/database"
	"canteen-system/internal/models"
)

// PostgresRepository stores the timing override in the single-row canteen_timing table
type PostgresRepository struct {
	db *database.DB
}

// NewPostgresRepository creates a timing repository
func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get returns the stored hours, if any
func (r *PostgresRepository) Get(ctx context.Context) (models.CanteenTiming, bool, error) {
	var opening, closing pgtype.Time
	if err := r.db.QueryRow(ctx, database.GetCanteenTimingSQL).Scan(&opening, &closing); err != nil {
		if database.IsNoRows(err) {
			return models.CanteenTiming{}, false, nil
		}
		return models.CanteenTiming{}, false, err
	}
	return models.CanteenTiming{
		OpeningTime: fromPgTime(opening),
		ClosingTime: fromPgTime(closing),
	}, true, nil
}

// Save upserts the hours
func (r *PostgresRepository) Save(ctx context.Context, timing models.CanteenTiming) error {
	return r.db.Exec(ctx, database.UpsertCanteenTimingSQL, toPgTime(timing.OpeningTime), toPgTime(timing.ClosingTime))
}

func fromPgTime(t pgtype.Time) models.ClockTime {
	return models.ClockTime(time.Duration(t.Microseconds) * time.Microsecond)
}

func toPgTime(c models.ClockTime) pgtype.Time {
	return pgtype.Time{Microseconds: c.Duration().Microseconds(), Valid: true}
}
