package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/spec-kit/tourism-service/internal/domain"
)

// EmployeeRepository encapsulates employee persistence.
type EmployeeRepository interface {
	Create(ctx context.Context, employee *domain.Employee) error
	Get(ctx context.Context, id string) (*domain.Employee, bool, error)
	Update(ctx context.Context, id string, patch Document) error
	AppendTicket(ctx context.Context, employeeID, ticketID string) error
	ListByCompany(ctx context.Context, companyID string) ([]domain.Employee, error)
}

type employeeRepository struct {
	employees collection[domain.Employee]
}

// NewEmployeeRepository instantiates repository.
func NewEmployeeRepository(store DocumentStore) EmployeeRepository {
	return &employeeRepository{employees: collection[domain.Employee]{store: store, name: CollectionEmployees}}
}

func (r *employeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	if employee.EmployeeID == "" {
		employee.EmployeeID = uuid.NewString()
	}
	return r.employees.set(ctx, employee.EmployeeID, *employee)
}

func (r *employeeRepository) Get(ctx context.Context, id string) (*domain.Employee, bool, error) {
	return r.employees.get(ctx, id)
}

func (r *employeeRepository) Update(ctx context.Context, id string, patch Document) error {
	return r.employees.update(ctx, id, patch)
}

func (r *employeeRepository) AppendTicket(ctx context.Context, employeeID, ticketID string) error {
	return r.employees.store.ArrayUnion(ctx, CollectionEmployees, employeeID, "tickets", ticketID)
}

func (r *employeeRepository) ListByCompany(ctx context.Context, companyID string) ([]domain.Employee, error) {
	return r.employees.where(ctx, "company_id", companyID)
}
