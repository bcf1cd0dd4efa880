package models

import (
	"encoding/json"
	"time"

	"canteen-system/internal/apperror"
)

// DateLayout is the wire format of a booking date
const DateLayout = "2006-01-02"

// Date is a calendar day serialized as YYYY-MM-DD
type Date struct {
	time.Time
}

// ParseDate parses a YYYY-MM-DD date
func ParseDate(value string) (Date, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return Date{}, apperror.Validation("date", "date must be in YYYY-MM-DD format")
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return apperror.Validation("date", "date must be a string in YYYY-MM-DD format")
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Booking is a reservation of a menu item for a given day
type Booking struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user"`
	MenuItemID   int64     `json:"menu_item"`
	MenuItemName string    `json:"menu_item_name"`
	Date         Date      `json:"date"`
	Quantity     int       `json:"quantity"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateBookingRequest represents the request to create a booking
type CreateBookingRequest struct {
	MenuItemID int64 `json:"menu_item"`
	Date       *Date `json:"date"`
	Quantity   *int  `json:"quantity,omitempty"`
}

// Validate validates the request and fills the default quantity of 1
func (req *CreateBookingRequest) Validate() error {
	if req.MenuItemID <= 0 {
		return apperror.Validation("menu_item", "menu_item is required")
	}
	if req.Date == nil || req.Date.IsZero() {
		return apperror.Validation("date", "date is required")
	}
	if req.Quantity == nil {
		one := 1
		req.Quantity = &one
	}
	if *req.Quantity < 1 {
		return apperror.Validation("quantity", "quantity must be at least 1")
	}
	return nil
}
