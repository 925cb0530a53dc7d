package dto

import (
	"github.com/spec-kit/tourism-service/internal/domain"
	"github.com/spec-kit/tourism-service/internal/service"
	"github.com/spec-kit/tourism-service/internal/ticketstatus"
)

// TicketRequest payload for creating or editing a ticket. Derived totals and
// lifecycle fields are always recomputed server side.
type TicketRequest struct {
	TicketID      string                 `json:"ticket_id"`
	CompanyID     string                 `json:"company_id"`
	EmployeeID    string                 `json:"employee_id"`
	Name          string                 `json:"name" validate:"required"`
	Contact       string                 `json:"contact"`
	Accommodation string                 `json:"accommodation"`
	Address       []domain.AddressEntry  `json:"address" validate:"required,min=1,dive"`
	Activities    []domain.ActivityGroup `json:"activities"`
}

// ToDomain maps the request onto a ticket draft.
func (r TicketRequest) ToDomain() domain.Ticket {
	return domain.Ticket{
		TicketID:      r.TicketID,
		CompanyID:     r.CompanyID,
		EmployeeID:    r.EmployeeID,
		Name:          r.Name,
		Contact:       r.Contact,
		Accommodation: r.Accommodation,
		Address:       r.Address,
		Activities:    r.Activities,
	}
}

// ScanLogRequest is the log entry of a manual edit.
type ScanLogRequest struct {
	Status  domain.TicketStatus `json:"status"`
	Remarks string              `json:"remarks"`
}

// UpdateTicketRequest payload for a manual edit.
type UpdateTicketRequest struct {
	TicketRequest
	ScanLog ScanLogRequest `json:"scan_log"`
}

// ScanRequest carries the raw QR payload.
type ScanRequest struct {
	Payload string `json:"payload" validate:"required"`
	Remarks string `json:"remarks"`
}

// TicketResponse is a stored ticket with its live display status.
type TicketResponse struct {
	domain.Ticket
	DisplayStatus ticketstatus.Label    `json:"display_status"`
	Badge         ticketstatus.Severity `json:"badge"`
	Providers     []domain.Provider     `json:"providers,omitempty"`
}

// NewTicketResponse renders a ticket view.
func NewTicketResponse(view service.TicketView) TicketResponse {
	return TicketResponse{
		Ticket:        view.Ticket,
		DisplayStatus: view.Label,
		Badge:         view.Badge,
		Providers:     view.Providers,
	}
}
