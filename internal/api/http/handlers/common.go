package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tourism-service/internal/auth"
	"github.com/spec-kit/tourism-service/internal/domain"
	"github.com/spec-kit/tourism-service/internal/service"
	apperrors "github.com/spec-kit/tourism-service/pkg/util"
)

// bindJSON parses the request body into req and runs its validate tags.
func bindJSON(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{"reason": err.Error()})
	}
	return apperrors.ValidateStruct(req)
}

func actorFromContext(c *fiber.Ctx) (service.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return service.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return service.Actor{
		UID:       principal.Account.UID,
		Role:      principal.Account.Role,
		CompanyID: principal.Account.CompanyID,
	}, nil
}

// scopedCompanyID returns the company a request acts on: company accounts are pinned
// to their own company, reviewers name one explicitly.
func scopedCompanyID(actor service.Actor, requested string) string {
	if actor.Role == domain.RoleCompany {
		return actor.CompanyID
	}
	return requested
}

func ensureOwnCompany(actor service.Actor, companyID string) error {
	if actor.Role == domain.RoleCompany && actor.CompanyID != companyID {
		return apperrors.NewForbidden("resource belongs to another company")
	}
	return nil
}
