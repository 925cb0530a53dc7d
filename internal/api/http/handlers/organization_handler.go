package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tourism-service/internal/api/dto"
	"github.com/spec-kit/tourism-service/internal/service"
)

// OrganizationHandler exposes company and employee endpoints.
type OrganizationHandler struct {
	auth     *service.AuthService
	org      *service.OrganizationService
	workflow *service.WorkflowService
}

// NewOrganizationHandler constructs handler.
func NewOrganizationHandler(authService *service.AuthService, org *service.OrganizationService, workflow *service.WorkflowService) *OrganizationHandler {
	return &OrganizationHandler{auth: authService, org: org, workflow: workflow}
}

// RegisterCompany handles POST /companies.
func (h *OrganizationHandler) RegisterCompany(c *fiber.Ctx) error {
	var req dto.RegisterCompanyRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	company, session, err := h.auth.RegisterCompany(c.UserContext(), service.CompanyRegistration{
		CompanyName: req.CompanyName,
		CompanyType: req.CompanyType,
		Email:       req.Email,
		Password:    req.Password,
		Contact:     req.Contact,
		Address:     req.Address,
		OwnerName:   req.OwnerName,
		Position:    req.Position,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"company": company,
			"account": dto.NewAccountResponse(session.Account),
			"auth":    dto.AuthResponse{Token: session.Token, ExpiresAt: session.ExpiresAt},
		},
	})
}

// GetCompany handles GET /companies/:id.
func (h *OrganizationHandler) GetCompany(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	company, err := h.org.GetCompany(c.UserContext(), c.Params("id"), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": company})
}

// TransitionCompany handles POST /companies/:id/status.
func (h *OrganizationHandler) TransitionCompany(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.StatusTransitionRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	company, err := h.workflow.TransitionCompany(c.UserContext(), c.Params("id"), transition(req), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": company})
}

// ListEmployees handles GET /companies/:id/employees.
func (h *OrganizationHandler) ListEmployees(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	employees, err := h.org.ListEmployees(c.UserContext(), c.Params("id"), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": employees})
}

// CreateEmployee handles POST /employees.
func (h *OrganizationHandler) CreateEmployee(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateEmployeeRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	employee, err := h.org.CreateEmployee(c.UserContext(), req.ToDomain(), actor)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": employee})
}

// GetEmployee handles GET /employees/:id.
func (h *OrganizationHandler) GetEmployee(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	employee, err := h.org.GetEmployee(c.UserContext(), c.Params("id"), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": employee})
}

// TransitionEmployee handles POST /employees/:id/status.
func (h *OrganizationHandler) TransitionEmployee(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.StatusTransitionRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	employee, err := h.workflow.TransitionEmployee(c.UserContext(), c.Params("id"), transition(req), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": employee})
}

// TransitionEmployeeCompanyStatus handles POST /employees/:id/company-status.
func (h *OrganizationHandler) TransitionEmployeeCompanyStatus(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.StatusTransitionRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if _, err := h.org.GetEmployee(c.UserContext(), c.Params("id"), actor); err != nil {
		return err
	}
	employee, err := h.workflow.TransitionEmployeeCompanyStatus(c.UserContext(), c.Params("id"), transition(req), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": employee})
}

func transition(req dto.StatusTransitionRequest) service.TransitionRequest {
	return service.TransitionRequest{
		Status:         req.Status,
		Remarks:        req.Remarks,
		MissingDetails: req.MissingDetails,
	}
}
