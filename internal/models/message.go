package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// NotificationEvent names what happened to an order
type NotificationEvent string

const (
	EventOrderPlaced        NotificationEvent = "order_placed"
	EventOrderStatusChanged NotificationEvent = "order_status_changed"
	EventOrderCancelled     NotificationEvent = "order_cancelled"
)

// NotificationMessage represents a message published to the notifications exchange
type NotificationMessage struct {
	Event       NotificationEvent `json:"event"`
	OrderID     int64             `json:"order_id"`
	UserID      int64             `json:"user_id"`
	Email       string            `json:"email"`
	Username    string            `json:"username"`
	OldStatus   OrderStatus       `json:"old_status,omitempty"`
	NewStatus   OrderStatus       `json:"new_status"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	ChangedBy   string            `json:"changed_by"`
	Timestamp   time.Time         `json:"timestamp"`
}

// NewOrderPlacedMessage creates the message sent after an order is placed
func NewOrderPlacedMessage(order *Order) *NotificationMessage {
	return &NotificationMessage{
		Event:       EventOrderPlaced,
		OrderID:     order.ID,
		UserID:      order.UserID,
		Email:       order.Email,
		Username:    order.Username,
		NewStatus:   order.Status,
		TotalAmount: order.TotalAmount,
		ChangedBy:   order.Username,
		Timestamp:   time.Now().UTC(),
	}
}

// NewStatusChangedMessage creates the message sent after an admin moves an order
func NewStatusChangedMessage(order *Order, oldStatus OrderStatus, changedBy string) *NotificationMessage {
	return &NotificationMessage{
		Event:       EventOrderStatusChanged,
		OrderID:     order.ID,
		UserID:      order.UserID,
		Email:       order.Email,
		Username:    order.Username,
		OldStatus:   oldStatus,
		NewStatus:   order.Status,
		TotalAmount: order.TotalAmount,
		ChangedBy:   changedBy,
		Timestamp:   time.Now().UTC(),
	}
}

// NewOrderCancelledMessage creates the message sent after the owner cancels
func NewOrderCancelledMessage(order *Order, oldStatus OrderStatus) *NotificationMessage {
	return &NotificationMessage{
		Event:       EventOrderCancelled,
		OrderID:     order.ID,
		UserID:      order.UserID,
		Email:       order.Email,
		Username:    order.Username,
		OldStatus:   oldStatus,
		NewStatus:   StatusCancelled,
		TotalAmount: order.TotalAmount,
		ChangedBy:   order.Username,
		Timestamp:   time.Now().UTC(),
	}
}

// Subject returns the email subject line for the message
func (m *NotificationMessage) Subject() string {
	switch m.Event {
	case EventOrderPlaced:
		return fmt.Sprintf("Order #%d placed", m.OrderID)
	case EventOrderCancelled:
		return fmt.Sprintf("Order #%d cancelled", m.OrderID)
	default:
		return fmt.Sprintf("Order #%d is now %s", m.OrderID, m.NewStatus)
	}
}
