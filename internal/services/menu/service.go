package menu

import (
	"context"
	"fmt"

	"canteen-system/internal/apperror"
	"canteen-system/internal/logger"
	"canteen-system/internal/models"
)

// Repository stores menu items
type Repository interface {
	List(ctx context.Context, filter models.MenuFilter) ([]models.MenuItem, error)
	Get(ctx context.Context, id int64) (*models.MenuItem, error)
	Create(ctx context.Context, req *models.MenuItemRequest) (*models.MenuItem, error)
	Update(ctx context.Context, id int64, req *models.MenuItemRequest) (*models.MenuItem, error)
	Delete(ctx context.Context, id int64) error
	AvailableCategories(ctx context.Context) ([]models.Category, error)
}

// Service provides the menu catalog
type Service struct {
	repo   Repository
	logger *logger.Logger
}

// NewService creates a new menu service
func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: log,
	}
}

// ListAvailable lists the items customers may order
func (s *Service) ListAvailable(ctx context.Context, filter models.MenuFilter) ([]models.MenuItem, error) {
	filter.OnlyAvailable = true
	filter.Available = nil
	return s.repo.List(ctx, filter)
}

// GetAvailable returns an orderable item. Unavailable items are reported as missing.
func (s *Service) GetAvailable(ctx context.Context, id int64) (*models.MenuItem, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !item.Available {
		return nil, apperror.NotFound("Menu item not found")
	}
	return item, nil
}

// Categories lists the categories that have at least one available item
func (s *Service) Categories(ctx context.Context) ([]models.CategoryOption, error) {
	categories, err := s.repo.AvailableCategories(ctx)
	if err != nil {
		return nil, err
	}

	options := make([]models.CategoryOption, 0, len(categories))
	for _, c := range categories {
		options = append(options, models.CategoryOption{Value: c, Label: c.Label()})
	}
	return options, nil
}

// Featured returns the first available items in menu order
func (s *Service) Featured(ctx context.Context) ([]models.MenuItem, error) {
	return s.repo.List(ctx, models.MenuFilter{
		OnlyAvailable: true,
		Limit:         models.FeaturedItemCount,
	})
}

// ListAll lists every item for admins
func (s *Service) ListAll(ctx context.Context, filter models.MenuFilter) ([]models.MenuItem, error) {
	filter.OnlyAvailable = false
	return s.repo.List(ctx, filter)
}

// Get returns any item for admins
func (s *Service) Get(ctx context.Context, id int64) (*models.MenuItem, error) {
	return s.repo.Get(ctx, id)
}

// Create adds a menu item
func (s *Service) Create(ctx context.Context, req *models.MenuItemRequest, requestID string) (*models.MenuItem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	item, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create menu item: %w", err)
	}

	s.logger.Info("menu_item_created", "Menu item created", requestID, map[string]interface{}{
		"menu_item_id": item.ID,
		"name":         item.Name,
		"price":        item.Price.StringFixed(2),
	})
	return item, nil
}

// Update replaces a menu item
func (s *Service) Update(ctx context.Context, id int64, req *models.MenuItemRequest, requestID string) (*models.MenuItem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	item, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("menu_item_updated", "Menu item updated", requestID, map[string]interface{}{
		"menu_item_id": item.ID,
		"available":    item.Available,
	})
	return item, nil
}

// Delete removes a menu item. Past order lines keep their snapshotted name and price.
func (s *Service) Delete(ctx context.Context, id int64, requestID string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("menu_item_deleted", "Menu item deleted", requestID, map[string]interface{}{
		"menu_item_id": id,
	})
	return nil
}
