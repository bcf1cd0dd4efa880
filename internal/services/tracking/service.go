package tracking

import (
	"context"

	"canteen-system/internal/apperror"
	"canteen-system/internal/logger"
	"canteen-system/internal/models"
)

// OrderHistory is the status timeline of one order
type OrderHistory struct {
	OrderID int64                       `json:"order_id"`
	History []models.OrderStatusHistory `json:"history"`
}

// Service provides order tracking
type Service struct {
	repo   StatusRepo
	logger *logger.Logger
}

// NewService creates a new tracking service
func NewService(repo StatusRepo, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: log,
	}
}

// GetOrderHistory returns the status log of an order. Only the owner and admins may read it;
// anyone else sees the order as missing.
func (s *Service) GetOrderHistory(ctx context.Context, p *models.Principal, orderID int64, requestID string) (*OrderHistory, error) {
	owner, err := s.repo.Owner(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if owner != p.UserID && !p.IsAdmin() {
		s.logger.Debug("order_history_denied", "Order history requested by non-owner", requestID, map[string]interface{}{
			"order_id": orderID,
			"user_id":  p.UserID,
		})
		return nil, apperror.NotFound("Order not found")
	}

	history, err := s.repo.History(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []models.OrderStatusHistory{}
	}
	return &OrderHistory{OrderID: orderID, History: history}, nil
}
