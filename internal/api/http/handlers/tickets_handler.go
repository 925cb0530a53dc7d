package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tourism-service/internal/api/dto"
	"github.com/spec-kit/tourism-service/internal/service"
)

// TicketsHandler manages activity ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.TicketRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	ticket, err := h.service.Create(c.UserContext(), req.ToDomain(), actor.UID, scopedCompanyID(actor, req.CompanyID))
	if err != nil {
		return err
	}
	view, err := h.service.Get(c.UserContext(), ticket.TicketID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(*view)})
}

// UpdateTicket PUT /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	draft := req.ToDomain()
	draft.TicketID = c.Params("id")

	entry := service.LogEntry{Status: req.ScanLog.Status, Remarks: req.ScanLog.Remarks}
	ticket, err := h.service.Update(c.UserContext(), draft, actor.UID, scopedCompanyID(actor, ""), entry)
	if err != nil {
		return err
	}
	return h.respond(c, ticket.TicketID)
}

// ResaveTicket POST /tickets/:id/resave.
func (h *TicketsHandler) ResaveTicket(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.TicketRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	draft := req.ToDomain()
	draft.TicketID = c.Params("id")

	ticket, err := h.service.Resave(c.UserContext(), draft, actor.UID, scopedCompanyID(actor, ""))
	if err != nil {
		return err
	}
	return h.respond(c, ticket.TicketID)
}

// ScanTicket POST /tickets/scan.
func (h *TicketsHandler) ScanTicket(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.ScanRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.RecordScan(c.UserContext(), req.Payload, actor.UID, req.Remarks)
	if err != nil {
		return err
	}
	return h.respond(c, ticket.TicketID)
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	view, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if err := ensureOwnCompany(actor, view.Ticket.CompanyID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(*view)})
}

// CompanyBoard GET /companies/:id/tickets.
func (h *TicketsHandler) CompanyBoard(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	companyID := c.Params("id")
	if err := ensureOwnCompany(actor, companyID); err != nil {
		return err
	}
	views, err := h.service.Board(c.UserContext(), companyID)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(views))
	for _, view := range views {
		items = append(items, dto.NewTicketResponse(view))
	}
	return c.JSON(fiber.Map{"data": items})
}

func (h *TicketsHandler) respond(c *fiber.Ctx, ticketID string) error {
	view, err := h.service.Get(c.UserContext(), ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(*view)})
}
