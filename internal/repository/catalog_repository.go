package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/spec-kit/tourism-service/internal/domain"
)

// CatalogRepository stores the activity and provider catalog.
type CatalogRepository interface {
	SaveActivity(ctx context.Context, activity *domain.Activity) error
	ListActivities(ctx context.Context) ([]domain.Activity, error)
	// FindActivities loads at most MaxQueryInValues activities by id.
	FindActivities(ctx context.Context, ids []string) ([]domain.Activity, error)

	SaveProvider(ctx context.Context, provider *domain.Provider) error
	ListProviders(ctx context.Context) ([]domain.Provider, error)
	// FindProviders loads at most MaxQueryInValues providers by id.
	FindProviders(ctx context.Context, ids []string) ([]domain.Provider, error)
}

type catalogRepository struct {
	activities collection[domain.Activity]
	providers  collection[domain.Provider]
}

// NewCatalogRepository instantiates repository.
func NewCatalogRepository(store DocumentStore) CatalogRepository {
	return &catalogRepository{
		activities: collection[domain.Activity]{store: store, name: CollectionActivities},
		providers:  collection[domain.Provider]{store: store, name: CollectionProviders},
	}
}

func (r *catalogRepository) SaveActivity(ctx context.Context, activity *domain.Activity) error {
	if activity.ActivityID == "" {
		activity.ActivityID = uuid.NewString()
	}
	return r.activities.set(ctx, activity.ActivityID, *activity)
}

func (r *catalogRepository) ListActivities(ctx context.Context) ([]domain.Activity, error) {
	return r.activities.all(ctx)
}

func (r *catalogRepository) FindActivities(ctx context.Context, ids []string) ([]domain.Activity, error) {
	return r.activities.in(ctx, DocumentIDField, ids)
}

func (r *catalogRepository) SaveProvider(ctx context.Context, provider *domain.Provider) error {
	if provider.ProviderID == "" {
		provider.ProviderID = uuid.NewString()
	}
	if provider.ActivityIDs == nil {
		provider.ActivityIDs = []string{}
	}
	return r.providers.set(ctx, provider.ProviderID, *provider)
}

func (r *catalogRepository) ListProviders(ctx context.Context) ([]domain.Provider, error) {
	return r.providers.all(ctx)
}

func (r *catalogRepository) FindProviders(ctx context.Context, ids []string) ([]domain.Provider, error) {
	return r.providers.in(ctx, DocumentIDField, ids)
}
