package timing

import (
	"context"
	"fmt"

	"canteen-system/internal/logger"
	"canteen-system/internal/models"
)

// Repository stores the operating-hours override
type Repository interface {
	Get(ctx context.Context) (models.CanteenTiming, bool, error)
	Save(ctx context.Context, timing models.CanteenTiming) error
}

// Service resolves the canteen operating hours. A stored override wins over the configured defaults.
type Service struct {
	repo     Repository
	defaults models.CanteenTiming
	logger   *logger.Logger
}

// NewService creates a new timing service
func NewService(repo Repository, defaults models.CanteenTiming, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		defaults: defaults,
		logger:   log,
	}
}

// Current returns the hours in effect
func (s *Service) Current(ctx context.Context) (models.CanteenTiming, error) {
	timing, found, err := s.repo.Get(ctx)
	if err != nil {
		return models.CanteenTiming{}, fmt.Errorf("failed to load canteen timing: %w", err)
	}
	if !found {
		return s.defaults, nil
	}
	return timing, nil
}

// Update replaces the stored hours
func (s *Service) Update(ctx context.Context, req *models.UpdateTimingRequest, requestID string) (models.CanteenTiming, error) {
	timing, err := req.Timing()
	if err != nil {
		return models.CanteenTiming{}, err
	}

	if err := s.repo.Save(ctx, timing); err != nil {
		return models.CanteenTiming{}, fmt.Errorf("failed to save canteen timing: %w", err)
	}

	s.logger.Info("canteen_timing_updated", "Canteen timing updated", requestID, map[string]interface{}{
		"opening_time": timing.OpeningTime.String(),
		"closing_time": timing.ClosingTime.String(),
	})
	return timing, nil
}
