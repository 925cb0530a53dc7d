package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/tourism-service/internal/domain"
	"github.com/spec-kit/tourism-service/internal/repository"
	apperrors "github.com/spec-kit/tourism-service/pkg/util"
)

// OrganizationService manages company and employee records outside the review workflow.
type OrganizationService struct {
	companies repository.CompanyRepository
	employees repository.EmployeeRepository
	logger    *zap.Logger
	now       Clock
}

// NewOrganizationService constructs the service.
func NewOrganizationService(companies repository.CompanyRepository, employees repository.EmployeeRepository, logger *zap.Logger, clock Clock) *OrganizationService {
	return &OrganizationService{
		companies: companies,
		employees: employees,
		logger:    loggerOrNop(logger).Named("organization"),
		now:       clockOrDefault(clock),
	}
}

// CreateEmployee submits a new employee for accreditation under the actor's company.
// Reviewers may name any company.
func (s *OrganizationService) CreateEmployee(ctx context.Context, draft domain.Employee, actor Actor) (*domain.Employee, error) {
	companyID := actor.CompanyID
	if companyID == "" || actor.Role != domain.RoleCompany {
		companyID = strings.TrimSpace(draft.CompanyID)
	}
	if companyID == "" {
		return nil, apperrors.NewMissingIdentifier("company_id")
	}

	company, err := s.GetCompany(ctx, companyID, actor)
	if err != nil {
		return nil, err
	}

	now := s.now()
	employee := domain.NewEmployee(domain.Employee{
		FirstName:   draft.FirstName,
		LastName:    draft.LastName,
		Email:       strings.TrimSpace(draft.Email),
		Contact:     draft.Contact,
		Designation: draft.Designation,
	})
	employee.CompanyID = companyID
	employee.CompanyName = company.CompanyName
	employee.DateCreated = timePtr(now)
	employee.StatusHistory = []domain.StatusHistoryEntry{{
		Status:      domain.StatusUnderReview,
		DateUpdated: now,
		UserID:      actor.UID,
	}}

	if err := s.employees.Create(ctx, &employee); err != nil {
		s.logger.Error("employee create failed", zap.String("company_id", companyID), zap.Error(err))
		return nil, apperrors.NewPersistenceError(err)
	}
	s.logger.Info("employee submitted", zap.String("employee_id", employee.EmployeeID), zap.String("company_id", companyID))
	return &employee, nil
}

// GetCompany returns a company. Company actors may only read their own company.
func (s *OrganizationService) GetCompany(ctx context.Context, companyID string, actor Actor) (*domain.Company, error) {
	if strings.TrimSpace(companyID) == "" {
		return nil, apperrors.NewMissingIdentifier("company_id")
	}
	if err := ensureCompanyAccess(actor, companyID); err != nil {
		return nil, err
	}
	company, ok, err := s.companies.Get(ctx, companyID)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	if !ok {
		return nil, apperrors.NewNotFound("company", map[string]any{"company_id": companyID})
	}
	c := domain.NewCompany(*company)
	c.CompanyID = companyID
	return &c, nil
}

// GetEmployee returns an employee. Company actors may only read their own staff.
func (s *OrganizationService) GetEmployee(ctx context.Context, employeeID string, actor Actor) (*domain.Employee, error) {
	if strings.TrimSpace(employeeID) == "" {
		return nil, apperrors.NewMissingIdentifier("employee_id")
	}
	employee, ok, err := s.employees.Get(ctx, employeeID)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	if !ok {
		return nil, apperrors.NewNotFound("employee", map[string]any{"employee_id": employeeID})
	}
	if err := ensureCompanyAccess(actor, employee.CompanyID); err != nil {
		return nil, err
	}
	e := domain.NewEmployee(*employee)
	e.EmployeeID = employeeID
	return &e, nil
}

// ListEmployees lists the staff of a company.
func (s *OrganizationService) ListEmployees(ctx context.Context, companyID string, actor Actor) ([]domain.Employee, error) {
	if strings.TrimSpace(companyID) == "" {
		return nil, apperrors.NewMissingIdentifier("company_id")
	}
	if err := ensureCompanyAccess(actor, companyID); err != nil {
		return nil, err
	}
	employees, err := s.employees.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return employees, nil
}

func ensureCompanyAccess(actor Actor, companyID string) error {
	if actor.Role == domain.RoleCompany && actor.CompanyID != companyID {
		return apperrors.NewForbidden("resource belongs to another company")
	}
	return nil
}
