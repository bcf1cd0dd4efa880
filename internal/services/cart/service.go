package cart

import (
	"context"
	"fmt"

	"canteen-system/internal/apperror"
	"canteen-system/internal/logger"
	"canteen-system/internal/models"
)

// Repository stores carts and their lines
type Repository interface {
	GetOrCreate(ctx context.Context, userID int64) (*models.Cart, error)
	AddItem(ctx context.Context, cartID, menuItemID int64, quantity int) (*models.CartItem, error)
	UpdateItem(ctx context.Context, cartID, itemID int64, quantity int) (*models.CartItem, error)
	RemoveItem(ctx context.Context, cartID, itemID int64) (*models.CartItem, error)
	Clear(ctx context.Context, cartID int64) error
}

// MenuLookup finds menu items
type MenuLookup interface {
	Get(ctx context.Context, id int64) (*models.MenuItem, error)
}

// Service manages the per-user cart
type Service struct {
	repo   Repository
	menu   MenuLookup
	logger *logger.Logger
}

// NewService creates a new cart service
func NewService(repo Repository, menu MenuLookup, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		menu:   menu,
		logger: log,
	}
}

// Get returns the user's cart, creating it on first use
func (s *Service) Get(ctx context.Context, userID int64) (*models.Cart, error) {
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	cart.Recalculate()
	return cart, nil
}

// Summary returns the cart totals
func (s *Service) Summary(ctx context.Context, userID int64) (models.CartSummary, error) {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return models.CartSummary{}, err
	}
	return cart.Summary(), nil
}

// AddItem adds quantity of a menu item to the cart. A line for the same item is incremented.
func (s *Service) AddItem(ctx context.Context, userID int64, req *models.AddToCartRequest, requestID string) (*models.CartItem, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", err
	}

	menuItem, err := s.menu.Get(ctx, req.MenuItemID)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, "", apperror.Validation("menu_item_id", "Menu item does not exist.")
		}
		return nil, "", err
	}
	if !menuItem.Available {
		return nil, "", apperror.Validation("menu_item_id", "This menu item is not available.")
	}

	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load cart: %w", err)
	}

	item, err := s.repo.AddItem(ctx, cart.ID, menuItem.ID, req.Quantity)
	if err != nil {
		return nil, "", fmt.Errorf("failed to add cart item: %w", err)
	}
	item.Recalculate()

	message := fmt.Sprintf("Added %s to cart", menuItem.Name)
	if item.Quantity != req.Quantity {
		message = fmt.Sprintf("Updated %s quantity to %d", menuItem.Name, item.Quantity)
	}

	s.logger.Debug("cart_item_added", message, requestID, map[string]interface{}{
		"user_id":      userID,
		"menu_item_id": menuItem.ID,
		"quantity":     item.Quantity,
	})
	return item, message, nil
}

// UpdateItem sets the quantity of one of the user's cart lines
func (s *Service) UpdateItem(ctx context.Context, userID, itemID int64, req *models.UpdateCartItemRequest) (*models.CartItem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	item, err := s.repo.UpdateItem(ctx, cart.ID, itemID, req.Quantity)
	if err != nil {
		return nil, err
	}
	item.Recalculate()
	return item, nil
}

// RemoveItem deletes one of the user's cart lines and returns the removed item's name
func (s *Service) RemoveItem(ctx context.Context, userID, itemID int64) (string, error) {
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load cart: %w", err)
	}

	item, err := s.repo.RemoveItem(ctx, cart.ID, itemID)
	if err != nil {
		return "", err
	}
	return item.MenuItemName, nil
}

// Clear removes every line of the user's cart
func (s *Service) Clear(ctx context.Context, userID int64) error {
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}
	return s.repo.Clear(ctx, cart.ID)
}
