package tracking

import (
	"context"

	"canteen-system/internal/models"
)

// StatusRepo reads the order status log
type StatusRepo interface {
	Owner(ctx context.Context, orderID int64) (int64, error)
	History(ctx context.Context, orderID int64) ([]models.OrderStatusHistory, error)
}
