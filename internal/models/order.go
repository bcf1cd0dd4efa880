package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"canteen-system/internal/apperror"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	StatusPlaced    OrderStatus = "PLACED"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusPreparing OrderStatus = "PREPARING"
	StatusReady     OrderStatus = "READY"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// Actor is who requests a status transition
type Actor int

const (
	ActorOwner Actor = iota
	ActorAdmin
)

func (a Actor) String() string {
	if a == ActorAdmin {
		return "admin"
	}
	return "owner"
}

// nextStatus is the single forward step an admin may take from each status
var nextStatus = map[OrderStatus]OrderStatus{
	StatusPlaced:    StatusConfirmed,
	StatusConfirmed: StatusPreparing,
	StatusPreparing: StatusReady,
	StatusReady:     StatusDelivered,
}

// ParseOrderStatus parses a status name, case-insensitively
func ParseOrderStatus(value string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(value)))
	switch status {
	case StatusPlaced, StatusConfirmed, StatusPreparing, StatusReady, StatusDelivered, StatusCancelled:
		return status, nil
	}
	return "", apperror.Validation("status", "invalid status")
}

// IsTerminal reports whether no transition may leave s
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// IsCancellable reports whether an order in s may still be cancelled
func (s OrderStatus) IsCancellable() bool {
	return s == StatusPlaced || s == StatusConfirmed
}

// CanTransitionTo reports whether actor may move an order from s to target
func (s OrderStatus) CanTransitionTo(target OrderStatus, actor Actor) bool {
	if s.IsTerminal() {
		return false
	}
	if target == StatusCancelled {
		return s.IsCancellable()
	}
	if actor != ActorAdmin {
		return false
	}
	return nextStatus[s] == target
}

// ValidateTransition returns a conflict error naming the disallowed target
func ValidateTransition(from, to OrderStatus, actor Actor) error {
	if from.CanTransitionTo(to, actor) {
		return nil
	}
	if to == StatusCancelled {
		return apperror.Conflict("status", "Order cannot be cancelled at this stage")
	}
	return apperror.Conflict("status",
		fmt.Sprintf("transition to %s is not allowed from %s", to, from))
}

const MaxOrderNotesLength = 500

// OrderItem is a line of an order. Price is the menu price snapshotted at purchase time.
type OrderItem struct {
	ID           int64           `json:"id"`
	OrderID      int64           `json:"-"`
	MenuItemID   *int64          `json:"menu_item"`
	MenuItemName string          `json:"menu_item_name"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	CreatedAt    time.Time       `json:"created_at"`
}

// LineTotal returns quantity × price
func (oi OrderItem) LineTotal() decimal.Decimal {
	return oi.Price.Mul(decimal.NewFromInt(int64(oi.Quantity)))
}

// Order represents a customer order
type Order struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user"`
	Username    string          `json:"user_username"`
	Email       string          `json:"-"`
	Status      OrderStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	TotalItems  int             `json:"total_items"`
	Notes       string          `json:"notes"`
	Items       []OrderItem     `json:"items"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CalculateTotal sums quantity × price over items
func CalculateTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Finalize recomputes line totals, item count and total amount from the items
func (o *Order) Finalize() {
	o.TotalItems = 0
	for i := range o.Items {
		o.Items[i].TotalPrice = o.Items[i].LineTotal()
		o.TotalItems += o.Items[i].Quantity
	}
	o.TotalAmount = CalculateTotal(o.Items)
	if o.Items == nil {
		o.Items = []OrderItem{}
	}
}

// PlaceOrderRequest represents the request to turn the cart into an order
type PlaceOrderRequest struct {
	Notes string `json:"notes"`
}

// Validate validates the place-order request
func (req *PlaceOrderRequest) Validate() error {
	req.Notes = strings.TrimSpace(req.Notes)
	if len(req.Notes) > MaxOrderNotesLength {
		return apperror.Validation("notes", "notes must not exceed 500 characters")
	}
	return nil
}

// UpdateStatusRequest represents an admin status change
type UpdateStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// OrderStatusHistory represents an entry in the order status log
type OrderStatusHistory struct {
	Status    OrderStatus `json:"status"`
	ChangedBy string      `json:"changed_by"`
	ChangedAt time.Time   `json:"timestamp"`
	Notes     *string     `json:"notes,omitempty"`
}

// OrderFilter narrows an order listing
type OrderFilter struct {
	UserID *int64
	Status OrderStatus
	Search string
	Limit  int
	Offset int
}

// HistoryPageSize is the page size of the customer order history
const HistoryPageSize = 10

// OrderPage is one page of the customer order history
type OrderPage struct {
	Orders      []Order `json:"orders"`
	HasNext     bool    `json:"has_next"`
	Page        int     `json:"page"`
	TotalOrders int     `json:"total_orders"`
}

// StatusCount is the number of orders in one status
type StatusCount struct {
	Status OrderStatus `json:"status"`
	Count  int         `json:"count"`
}

// PopularItem is a best-selling item of the day
type PopularItem struct {
	MenuItemName  string          `json:"menu_item__name"`
	TotalQuantity int             `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

// DailySummaryTotals are the headline numbers of the day
type DailySummaryTotals struct {
	TotalOrders    int             `json:"total_orders"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TotalItemsSold int             `json:"total_items_sold"`
}

// DailySummary is the admin dashboard view of one day
type DailySummary struct {
	Date            string             `json:"date"`
	Summary         DailySummaryTotals `json:"summary"`
	StatusBreakdown []StatusCount      `json:"status_breakdown"`
	PopularItems    []PopularItem      `json:"popular_items"`
}

// PopularItemLimit is the number of items in the daily summary
const PopularItemLimit = 10
