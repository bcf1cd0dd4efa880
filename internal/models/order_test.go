package models

import (
	"testing"

	"github.com/shopspring/decimal"

	"canteen-system/internal/apperror"
)

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    OrderStatus
		to      OrderStatus
		actor   Actor
		wantErr bool
	}{
		{"owner cancels placed", StatusPlaced, StatusCancelled, ActorOwner, false},
		{"owner cancels confirmed", StatusConfirmed, StatusCancelled, ActorOwner, false},
		{"owner cannot cancel preparing", StatusPreparing, StatusCancelled, ActorOwner, true},
		{"owner cannot confirm", StatusPlaced, StatusConfirmed, ActorOwner, true},
		{"admin confirms placed", StatusPlaced, StatusConfirmed, ActorAdmin, false},
		{"admin prepares confirmed", StatusConfirmed, StatusPreparing, ActorAdmin, false},
		{"admin readies preparing", StatusPreparing, StatusReady, ActorAdmin, false},
		{"admin delivers ready", StatusReady, StatusDelivered, ActorAdmin, false},
		{"admin cannot skip", StatusPlaced, StatusReady, ActorAdmin, true},
		{"admin cannot go back", StatusReady, StatusPreparing, ActorAdmin, true},
		{"admin cancels confirmed", StatusConfirmed, StatusCancelled, ActorAdmin, false},
		{"admin cannot cancel ready", StatusReady, StatusCancelled, ActorAdmin, true},
		{"delivered is terminal", StatusDelivered, StatusCancelled, ActorAdmin, true},
		{"delivered to placed", StatusDelivered, StatusPlaced, ActorAdmin, true},
		{"cancelled is terminal", StatusCancelled, StatusPlaced, ActorAdmin, true},
		{"same status", StatusPlaced, StatusPlaced, ActorAdmin, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTransition(tt.from, tt.to, tt.actor)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateTransition() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !apperror.Is(err, apperror.KindConflict) {
				t.Errorf("expected conflict error, got %v", err)
			}
		})
	}
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("ready")
	if err != nil || status != StatusReady {
		t.Fatalf("ParseOrderStatus(ready) = %q, %v", status, err)
	}

	_, err = ParseOrderStatus("SHIPPED")
	if !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}
}

func TestOrderFinalize(t *testing.T) {
	order := &Order{
		Items: []OrderItem{
			{MenuItemName: "A", Quantity: 2, Price: decimal.RequireFromString("5.00")},
			{MenuItemName: "B", Quantity: 1, Price: decimal.RequireFromString("3.00")},
		},
	}
	order.Finalize()

	if !order.TotalAmount.Equal(decimal.RequireFromString("13.00")) {
		t.Errorf("total = %s, want 13.00", order.TotalAmount)
	}
	if order.TotalItems != 3 {
		t.Errorf("total items = %d, want 3", order.TotalItems)
	}
	if !order.Items[0].TotalPrice.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("line total = %s, want 10.00", order.Items[0].TotalPrice)
	}
}

func TestPlaceOrderRequestValidate(t *testing.T) {
	long := make([]byte, MaxOrderNotesLength+1)
	for i := range long {
		long[i] = 'x'
	}

	tests := []struct {
		name    string
		notes   string
		wantErr bool
	}{
		{"empty notes", "", false},
		{"short notes", "no onions", false},
		{"too long", string(long), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &PlaceOrderRequest{Notes: tt.notes}
			if err := req.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
