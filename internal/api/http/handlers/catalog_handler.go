package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tourism-service/internal/api/dto"
	"github.com/spec-kit/tourism-service/internal/service"
)

// CatalogHandler exposes activity and provider endpoints.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListActivities GET /activities.
func (h *CatalogHandler) ListActivities(c *fiber.Ctx) error {
	activities, err := h.catalog.ListActivities(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": activities})
}

// SaveActivity POST /activities.
func (h *CatalogHandler) SaveActivity(c *fiber.Ctx) error {
	var req dto.ActivityRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	activity, err := h.catalog.SaveActivity(c.UserContext(), req.ToDomain())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": activity})
}

// ListProviders GET /providers.
func (h *CatalogHandler) ListProviders(c *fiber.Ctx) error {
	providers, err := h.catalog.ListProviders(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": providers})
}

// SaveProvider POST /providers.
func (h *CatalogHandler) SaveProvider(c *fiber.Ctx) error {
	var req dto.ProviderRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	provider, err := h.catalog.SaveProvider(c.UserContext(), req.ToDomain())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": provider})
}
