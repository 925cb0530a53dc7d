package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/tourism-service/internal/domain"
	"github.com/spec-kit/tourism-service/internal/repository"
	apperrors "github.com/spec-kit/tourism-service/pkg/util"
)

// CatalogInvalidator drops cached catalog entries after writes.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context, kind, id string)
}

// CatalogService maintains the activity and provider catalog.
type CatalogService struct {
	catalog     repository.CatalogRepository
	invalidator CatalogInvalidator
	logger      *zap.Logger
}

// NewCatalogService constructs the service. invalidator may be nil.
func NewCatalogService(catalog repository.CatalogRepository, invalidator CatalogInvalidator, logger *zap.Logger) *CatalogService {
	return &CatalogService{catalog: catalog, invalidator: invalidator, logger: loggerOrNop(logger).Named("catalog")}
}

// SaveActivity creates or replaces an activity.
func (s *CatalogService) SaveActivity(ctx context.Context, activity domain.Activity) (*domain.Activity, error) {
	if strings.TrimSpace(activity.ActivityName) == "" {
		return nil, apperrors.NewValidationError("activity_name is required", map[string]any{"field": "activity_name"})
	}
	if activity.ActivitySoldBy == "" {
		activity.ActivitySoldBy = domain.SoldByPax
	}
	if err := s.catalog.SaveActivity(ctx, &activity); err != nil {
		s.logger.Error("activity save failed", zap.Error(err))
		return nil, apperrors.NewPersistenceError(err)
	}
	s.invalidate(ctx, repository.CacheKindActivity, activity.ActivityID)
	return &activity, nil
}

// ListActivities returns the whole activity catalog.
func (s *CatalogService) ListActivities(ctx context.Context) ([]domain.Activity, error) {
	activities, err := s.catalog.ListActivities(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return activities, nil
}

// SaveProvider creates or replaces a provider.
func (s *CatalogService) SaveProvider(ctx context.Context, provider domain.Provider) (*domain.Provider, error) {
	if strings.TrimSpace(provider.ProviderName) == "" {
		return nil, apperrors.NewValidationError("provider_name is required", map[string]any{"field": "provider_name"})
	}
	if err := s.catalog.SaveProvider(ctx, &provider); err != nil {
		s.logger.Error("provider save failed", zap.Error(err))
		return nil, apperrors.NewPersistenceError(err)
	}
	s.invalidate(ctx, repository.CacheKindProvider, provider.ProviderID)
	return &provider, nil
}

// ListProviders returns every provider.
func (s *CatalogService) ListProviders(ctx context.Context) ([]domain.Provider, error) {
	providers, err := s.catalog.ListProviders(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return providers, nil
}

func (s *CatalogService) invalidate(ctx context.Context, kind, id string) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, kind, id)
	}
}
