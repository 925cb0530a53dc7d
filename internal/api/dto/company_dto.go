package dto

import "github.com/spec-kit/tourism-service/internal/domain"

// RegisterCompanyRequest payload for company sign-up.
type RegisterCompanyRequest struct {
	CompanyName string `json:"company_name" validate:"required"`
	CompanyType string `json:"company_type"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	Contact     string `json:"contact"`
	Address     string `json:"address"`
	OwnerName   string `json:"owner_name" validate:"required"`
	Position    string `json:"position"`
}

// StatusTransitionRequest is a reviewer decision on a company or employee.
type StatusTransitionRequest struct {
	Status         domain.ApprovalStatus `json:"status" validate:"required"`
	Remarks        string                `json:"remarks"`
	MissingDetails []string              `json:"missing_details"`
}

// CreateEmployeeRequest payload for employee submission.
type CreateEmployeeRequest struct {
	CompanyID   string `json:"company_id"`
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	Email       string `json:"email" validate:"omitempty,email"`
	Contact     string `json:"contact"`
	Designation string `json:"designation"`
}

// ToDomain maps the request onto an employee draft.
func (r CreateEmployeeRequest) ToDomain() domain.Employee {
	return domain.Employee{
		CompanyID:   r.CompanyID,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		Contact:     r.Contact,
		Designation: r.Designation,
	}
}
