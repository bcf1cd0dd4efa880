package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"canteen-system/internal/apperror"
)

// Per-call bounds of a cart line quantity. Repeated adds are not capped cumulatively.
const (
	MinCartQuantity = 1
	MaxCartQuantity = 50
)

// CartItem is one line of a cart, joined with the live menu item
type CartItem struct {
	ID                int64           `json:"id"`
	MenuItemID        int64           `json:"menu_item"`
	MenuItemName      string          `json:"menu_item_name"`
	MenuItemPrice     decimal.Decimal `json:"menu_item_price"`
	MenuItemCategory  Category        `json:"menu_item_category"`
	MenuItemAvailable bool            `json:"menu_item_available"`
	Quantity          int             `json:"quantity"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	AddedAt           time.Time       `json:"added_at"`
}

// Recalculate refreshes the line total from the live price
func (ci *CartItem) Recalculate() {
	ci.TotalPrice = ci.MenuItemPrice.Mul(decimal.NewFromInt(int64(ci.Quantity)))
}

// Cart is a user's staging area before an order is placed
type Cart struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"-"`
	Items      []CartItem      `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Recalculate refreshes line totals and cart aggregates
func (c *Cart) Recalculate() {
	c.TotalItems = 0
	c.TotalPrice = decimal.Zero
	for i := range c.Items {
		c.Items[i].Recalculate()
		c.TotalItems += c.Items[i].Quantity
		c.TotalPrice = c.TotalPrice.Add(c.Items[i].TotalPrice)
	}
	if c.Items == nil {
		c.Items = []CartItem{}
	}
}

// Summary returns the cart aggregates
func (c *Cart) Summary() CartSummary {
	c.Recalculate()
	return CartSummary{
		TotalItems: c.TotalItems,
		TotalPrice: c.TotalPrice,
		ItemsCount: len(c.Items),
	}
}

// CartSummary is the compact view of a cart
type CartSummary struct {
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	ItemsCount int             `json:"items_count"`
}

// AddToCartRequest represents the request to add a menu item to the cart
type AddToCartRequest struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int   `json:"quantity"`
}

// Validate validates the add-to-cart request
func (req *AddToCartRequest) Validate() error {
	if req.MenuItemID <= 0 {
		return apperror.Validation("menu_item_id", "menu_item_id is required")
	}
	return ValidateCartQuantity(req.Quantity)
}

// UpdateCartItemRequest represents the request to change a cart line quantity
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// Validate validates the update request
func (req *UpdateCartItemRequest) Validate() error {
	return ValidateCartQuantity(req.Quantity)
}

// ValidateCartQuantity checks a per-call quantity
func ValidateCartQuantity(quantity int) error {
	if quantity < MinCartQuantity || quantity > MaxCartQuantity {
		return apperror.Validation("quantity",
			fmt.Sprintf("quantity must be between %d and %d", MinCartQuantity, MaxCartQuantity))
	}
	return nil
}
