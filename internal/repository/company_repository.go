package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/spec-kit/tourism-service/internal/domain"
)

// CompanyRepository encapsulates company persistence.
type CompanyRepository interface {
	// Create assigns a company id when missing and stores the company.
	Create(ctx context.Context, company *domain.Company) error
	Get(ctx context.Context, id string) (*domain.Company, bool, error)
	Update(ctx context.Context, id string, patch Document) error
	AppendTicket(ctx context.Context, companyID, ticketID string) error
}

type companyRepository struct {
	companies collection[domain.Company]
}

// NewCompanyRepository instantiates repository.
func NewCompanyRepository(store DocumentStore) CompanyRepository {
	return &companyRepository{companies: collection[domain.Company]{store: store, name: CollectionCompanies}}
}

func (r *companyRepository) Create(ctx context.Context, company *domain.Company) error {
	if company.CompanyID == "" {
		company.CompanyID = uuid.NewString()
	}
	return r.companies.set(ctx, company.CompanyID, *company)
}

func (r *companyRepository) Get(ctx context.Context, id string) (*domain.Company, bool, error) {
	return r.companies.get(ctx, id)
}

func (r *companyRepository) Update(ctx context.Context, id string, patch Document) error {
	return r.companies.update(ctx, id, patch)
}

func (r *companyRepository) AppendTicket(ctx context.Context, companyID, ticketID string) error {
	return r.companies.store.ArrayUnion(ctx, CollectionCompanies, companyID, "ticket", ticketID)
}
