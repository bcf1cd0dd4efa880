package booking

import (
	"context"
	"time"

	"canteen-system/internal/apperror"
	"canteen-system/internal/logger"
	"canteen-system/internal/models"
)

// ClosedMessage is returned when a booking is attempted outside working hours
const ClosedMessage = "Canteen is closed. Booking allowed only during working hours."

// Repository stores bookings
type Repository interface {
	Create(ctx context.Context, booking *models.Booking) error
	ListByUser(ctx context.Context, userID int64) ([]models.Booking, error)
	Delete(ctx context.Context, bookingID, userID int64) (bool, error)
}

// MenuLookup resolves menu items
type MenuLookup interface {
	Get(ctx context.Context, id int64) (*models.MenuItem, error)
}

// TimingProvider returns the operating hours in effect
type TimingProvider interface {
	Current(ctx context.Context) (models.CanteenTiming, error)
}

// Service manages bookings
type Service struct {
	repo     Repository
	menu     MenuLookup
	timing   TimingProvider
	location *time.Location
	now      func() time.Time
	logger   *logger.Logger
}

// NewService creates a new booking service. The working-hours gate is evaluated in loc.
func NewService(repo Repository, menu MenuLookup, timing TimingProvider, loc *time.Location, log *logger.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		repo:     repo,
		menu:     menu,
		timing:   timing,
		location: loc,
		now:      time.Now,
		logger:   log,
	}
}

// Create books a menu item for a date on behalf of userID
func (s *Service) Create(ctx context.Context, userID int64, req *models.CreateBookingRequest, requestID string) (*models.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	item, err := s.menu.Get(ctx, req.MenuItemID)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.Validation("menu_item", "Menu item does not exist.")
		}
		return nil, err
	}

	timing, err := s.timing.Current(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now().In(s.location)
	if !timing.IsOpen(now) {
		s.logger.Debug("booking_rejected", "Booking attempted outside working hours", requestID, map[string]interface{}{
			"user_id": userID,
			"clock":   models.ClockOf(now).String(),
		})
		return nil, apperror.Validation("", ClosedMessage)
	}

	booking := &models.Booking{
		UserID:       userID,
		MenuItemID:   item.ID,
		MenuItemName: item.Name,
		Date:         *req.Date,
		Quantity:     *req.Quantity,
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info("booking_created", "Booking created", requestID, map[string]interface{}{
		"booking_id":   booking.ID,
		"user_id":      userID,
		"menu_item_id": item.ID,
		"date":         booking.Date.String(),
	})
	return booking, nil
}

// List returns the user's bookings, newest first
func (s *Service) List(ctx context.Context, userID int64) ([]models.Booking, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Cancel deletes one of the user's bookings
func (s *Service) Cancel(ctx context.Context, userID, bookingID int64, requestID string) error {
	deleted, err := s.repo.Delete(ctx, bookingID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NotFound("Booking not found")
	}

	s.logger.Info("booking_cancelled", "Booking cancelled", requestID, map[string]interface{}{
		"booking_id": bookingID,
		"user_id":    userID,
	})
	return nil
}
