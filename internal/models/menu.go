package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"canteen-system/internal/apperror"
)

// Category is the meal a menu item belongs to
type Category string

const (
	Breakfast Category = "breakfast"
	Lunch     Category = "lunch"
	Dinner    Category = "dinner"
)

// Categories lists every category in display order
var Categories = []Category{Breakfast, Lunch, Dinner}

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	switch c {
	case Breakfast, Lunch, Dinner:
		return true
	}
	return false
}

// Label returns the human-readable category name
func (c Category) Label() string {
	switch c {
	case Breakfast:
		return "Breakfast"
	case Lunch:
		return "Lunch"
	case Dinner:
		return "Dinner"
	}
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

const (
	MaxMenuNameLength = 100
	FeaturedItemCount = 6
)

// MaxMenuPrice is the exclusive upper bound of a menu price (NUMERIC(6,2))
var MaxMenuPrice = decimal.NewFromInt(10000)

// MenuItem is a purchasable item of the catalog
type MenuItem struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Available   bool            `json:"available"`
	Category    Category        `json:"category"`
	Stock       *int            `json:"stock"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TracksStock reports whether placing orders should draw down the item's stock
func (m *MenuItem) TracksStock() bool {
	return m.Stock != nil
}

// CategoryOption is a category in use, as shown to customers
type CategoryOption struct {
	Value Category `json:"value"`
	Label string   `json:"label"`
}

// MenuItemRequest is the admin payload to create or replace a menu item
type MenuItemRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Available   *bool           `json:"available,omitempty"`
	Category    Category        `json:"category"`
	Stock       *int            `json:"stock,omitempty"`
}

// Validate validates the request and fills defaults
func (req *MenuItemRequest) Validate() error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return apperror.Validation("name", "name is required")
	}
	if len(req.Name) > MaxMenuNameLength {
		return apperror.Validation("name", "name must not exceed 100 characters")
	}

	if req.Price.IsNegative() {
		return apperror.Validation("price", "price must not be negative")
	}
	if req.Price.GreaterThanOrEqual(MaxMenuPrice) {
		return apperror.Validation("price", "price must be less than 10000")
	}
	if !req.Price.Equal(req.Price.Round(2)) {
		return apperror.Validation("price", "price must have at most 2 decimal places")
	}

	if req.Category == "" {
		req.Category = Lunch
	}
	if !req.Category.Valid() {
		return apperror.Validation("category", "category must be one of: breakfast, lunch, dinner")
	}

	if req.Stock != nil && *req.Stock < 0 {
		return apperror.Validation("stock", "stock must not be negative")
	}
	if req.Available == nil {
		available := true
		req.Available = &available
	}
	return nil
}

// MenuFilter narrows a menu listing
type MenuFilter struct {
	Category      Category
	Query         string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	Available     *bool
	OnlyAvailable bool
	Ordering      string
	Limit         int
}

// menuOrderings maps accepted ordering keys onto SQL columns
var menuOrderings = map[string]string{
	"name":      "name",
	"price":     "price",
	"category":  "category",
	"-name":     "name DESC",
	"-price":    "price DESC",
	"-category": "category DESC",
}

// OrderBy returns the SQL ORDER BY clause for the filter. Unknown keys fall back to category, name.
func (f MenuFilter) OrderBy() string {
	if col, ok := menuOrderings[f.Ordering]; ok {
		return col + ", id"
	}
	return "category, name, id"
}
