package order

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"canteen-system/internal/apperror"
	"canteen-system/internal/logger"
	"canteen-system/internal/models"
)

// CartLine is a cart line joined with its locked menu item
type CartLine struct {
	CartItemID int64
	MenuItemID int64
	Quantity   int
	Name       string
	Price      decimal.Decimal
	Available  bool
	Stock      *int
}

// Tx is the set of row operations the order workflows run inside one transaction
type Tx interface {
	LockCart(ctx context.Context, userID int64) (cartID int64, found bool, err error)
	LockCartLines(ctx context.Context, cartID int64) ([]CartLine, error)
	InsertOrder(ctx context.Context, order *models.Order) error
	InsertOrderItem(ctx context.Context, item *models.OrderItem) error
	DecrementStock(ctx context.Context, menuItemID int64, quantity int) error
	SetOrderTotal(ctx context.Context, orderID int64, total decimal.Decimal) error
	ClearCart(ctx context.Context, cartID int64) error
	LockOrder(ctx context.Context, orderID int64) (*models.Order, error)
	SetOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error
	LogStatus(ctx context.Context, orderID int64, status models.OrderStatus, changedBy string, notes *string) error
}

// Store persists orders
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
	Get(ctx context.Context, orderID int64) (*models.Order, error)
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int, error)
	DailySummary(ctx context.Context, start, end time.Time) (*models.DailySummary, error)
}

// Notifier publishes order events
type Notifier interface {
	Notify(ctx context.Context, msg *models.NotificationMessage, requestID string) error
}

// Service runs the order workflows
type Service struct {
	store    Store
	notifier Notifier
	logger   *logger.Logger
	location *time.Location
	now      func() time.Time
}

// NewService creates a new order service. loc is the timezone the daily summary is computed in.
func NewService(store Store, notifier Notifier, log *logger.Logger, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		store:    store,
		notifier: notifier,
		logger:   log,
		location: loc,
		now:      time.Now,
	}
}

// PlaceOrder converts the caller's cart into an order. Nothing is written unless every line can be fulfilled.
func (s *Service) PlaceOrder(ctx context.Context, p *models.Principal, req *models.PlaceOrderRequest, requestID string) (*models.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:   p.UserID,
		Username: p.Username,
		Email:    p.Email,
		Status:   models.StatusPlaced,
		Notes:    req.Notes,
	}

	err := s.store.InTx(ctx, func(tx Tx) error {
		cartID, found, err := tx.LockCart(ctx, p.UserID)
		if err != nil {
			return fmt.Errorf("failed to lock cart: %w", err)
		}
		if !found {
			return apperror.Validation("cart", "Cart not found")
		}

		lines, err := tx.LockCartLines(ctx, cartID)
		if err != nil {
			return fmt.Errorf("failed to lock cart lines: %w", err)
		}
		if len(lines) == 0 {
			return apperror.Validation("cart", "Cart is empty")
		}
		sort.Slice(lines, func(i, j int) bool { return lines[i].CartItemID < lines[j].CartItemID })

		if err := tx.InsertOrder(ctx, order); err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		for _, line := range lines {
			if !line.Available {
				return apperror.Conflict("menu_item", fmt.Sprintf("%s is no longer available", line.Name))
			}
			if line.Stock != nil {
				if *line.Stock < line.Quantity {
					return apperror.Conflict("menu_item", fmt.Sprintf("Insufficient stock for %s", line.Name))
				}
				if err := tx.DecrementStock(ctx, line.MenuItemID, line.Quantity); err != nil {
					return fmt.Errorf("failed to decrement stock: %w", err)
				}
			}

			menuItemID := line.MenuItemID
			item := models.OrderItem{
				OrderID:      order.ID,
				MenuItemID:   &menuItemID,
				MenuItemName: line.Name,
				Quantity:     line.Quantity,
				Price:        line.Price,
			}
			if err := tx.InsertOrderItem(ctx, &item); err != nil {
				return fmt.Errorf("failed to insert order item: %w", err)
			}
			order.Items = append(order.Items, item)
		}

		order.Finalize()
		if err := tx.SetOrderTotal(ctx, order.ID, order.TotalAmount); err != nil {
			return fmt.Errorf("failed to set order total: %w", err)
		}
		if err := tx.LogStatus(ctx, order.ID, models.StatusPlaced, p.Username, stringPtr("Order placed")); err != nil {
			return fmt.Errorf("failed to log status: %w", err)
		}
		if err := tx.ClearCart(ctx, cartID); err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order_placed", "Order placed", requestID, map[string]interface{}{
		"order_id":     order.ID,
		"user_id":      order.UserID,
		"total_amount": order.TotalAmount.StringFixed(2),
		"total_items":  order.TotalItems,
	})

	s.notify(ctx, models.NewOrderPlacedMessage(order), requestID)
	return order, nil
}

// CancelOrder cancels one of the caller's orders
func (s *Service) CancelOrder(ctx context.Context, p *models.Principal, orderID int64, requestID string) (*models.Order, error) {
	var previous models.OrderStatus
	err := s.store.InTx(ctx, func(tx Tx) error {
		order, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if order.UserID != p.UserID {
			return apperror.NotFound("Order not found")
		}
		if err := models.ValidateTransition(order.Status, models.StatusCancelled, models.ActorOwner); err != nil {
			return err
		}

		previous = order.Status
		return s.transition(ctx, tx, orderID, models.StatusCancelled, p.Username, stringPtr("Cancelled by customer"))
	})
	if err != nil {
		return nil, err
	}

	order, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("order_cancelled", "Order cancelled by customer", requestID, map[string]interface{}{
		"order_id":   orderID,
		"old_status": previous,
	})

	s.notify(ctx, models.NewOrderCancelledMessage(order, previous), requestID)
	return order, nil
}

// UpdateStatus moves an order along the status chain on behalf of an admin
func (s *Service) UpdateStatus(ctx context.Context, p *models.Principal, orderID int64, req *models.UpdateStatusRequest, requestID string) (*models.Order, error) {
	target, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, err
	}

	var notes *string
	if n := strings.TrimSpace(req.Notes); n != "" {
		notes = &n
	}

	var previous models.OrderStatus
	err = s.store.InTx(ctx, func(tx Tx) error {
		order, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if err := models.ValidateTransition(order.Status, target, models.ActorAdmin); err != nil {
			return err
		}

		previous = order.Status
		return s.transition(ctx, tx, orderID, target, p.Username, notes)
	})
	if err != nil {
		return nil, err
	}

	order, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("order_status_updated", "Order status updated", requestID, map[string]interface{}{
		"order_id":   orderID,
		"old_status": previous,
		"new_status": target,
		"changed_by": p.Username,
	})

	s.notify(ctx, models.NewStatusChangedMessage(order, previous, p.Username), requestID)
	return order, nil
}

func (s *Service) transition(ctx context.Context, tx Tx, orderID int64, status models.OrderStatus, changedBy string, notes *string) error {
	if err := tx.SetOrderStatus(ctx, orderID, status); err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if err := tx.LogStatus(ctx, orderID, status, changedBy, notes); err != nil {
		return fmt.Errorf("failed to log status: %w", err)
	}
	return nil
}

// notify publishes after commit. Failures are logged and never reach the caller.
func (s *Service) notify(ctx context.Context, msg *models.NotificationMessage, requestID string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, msg, requestID); err != nil {
		s.logger.Warn("notification_failed", "Failed to publish order notification", requestID, map[string]interface{}{
			"event":    msg.Event,
			"order_id": msg.OrderID,
			"error":    err.Error(),
		})
	}
}

// ListForUser lists the caller's orders, newest first
func (s *Service) ListForUser(ctx context.Context, userID int64, status models.OrderStatus) ([]models.Order, error) {
	orders, _, err := s.store.List(ctx, models.OrderFilter{UserID: &userID, Status: status})
	return orders, err
}

// History returns one page of the caller's orders. Pages start at 1.
func (s *Service) History(ctx context.Context, userID int64, page int) (*models.OrderPage, error) {
	if page < 1 {
		return nil, apperror.Validation("page", "page must be a positive integer")
	}

	orders, total, err := s.store.List(ctx, models.OrderFilter{
		UserID: &userID,
		Limit:  models.HistoryPageSize,
		Offset: (page - 1) * models.HistoryPageSize,
	})
	if err != nil {
		return nil, err
	}

	return &models.OrderPage{
		Orders:      orders,
		HasNext:     total > page*models.HistoryPageSize,
		Page:        page,
		TotalOrders: total,
	}, nil
}

// GetForUser returns one of the caller's orders. Other users' orders are reported as missing.
func (s *Service) GetForUser(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	order, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperror.NotFound("Order not found")
	}
	return order, nil
}

// ListAll lists every order for admins
func (s *Service) ListAll(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	orders, _, err := s.store.List(ctx, filter)
	return orders, err
}

// Get returns any order for admins
func (s *Service) Get(ctx context.Context, orderID int64) (*models.Order, error) {
	return s.store.Get(ctx, orderID)
}

// TodaySummary aggregates the orders created today in the service timezone
func (s *Service) TodaySummary(ctx context.Context) (*models.DailySummary, error) {
	now := s.now().In(s.location)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	end := start.AddDate(0, 0, 1)

	summary, err := s.store.DailySummary(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to build daily summary: %w", err)
	}
	summary.Date = start.Format(models.DateLayout)
	return summary, nil
}

func stringPtr(s string) *string {
	return &s
}
