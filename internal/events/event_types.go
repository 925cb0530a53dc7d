package events

import (
	"time"

	"github.com/spec-kit/tourism-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated                EventType = "ticket_created"
	EventTicketUpdated                EventType = "ticket_updated"
	EventTicketScanned                EventType = "ticket_scanned"
	EventCompanyStatusChanged         EventType = "company_status_changed"
	EventEmployeeStatusChanged        EventType = "employee_status_changed"
	EventEmployeeCompanyStatusChanged EventType = "employee_company_status_changed"
	EventCertificateIssued            EventType = "certificate_issued"
)

// Actor identifies who caused an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SubjectID string    `json:"subject_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketPayload accompanies ticket events.
type TicketPayload struct {
	CompanyID  string              `json:"company_id"`
	EmployeeID string              `json:"employee_id,omitempty"`
	Status     domain.TicketStatus `json:"status"`
	Remarks    string              `json:"remarks,omitempty"`
}

// StatusChangedPayload accompanies company and employee review transitions.
type StatusChangedPayload struct {
	OldStatus      domain.ApprovalStatus `json:"old_status"`
	NewStatus      domain.ApprovalStatus `json:"new_status"`
	Remarks        string                `json:"remarks,omitempty"`
	Name           string                `json:"name"`
	Email          string                `json:"email"`
	CertificateID  string                `json:"certificate_id,omitempty"`
	MissingDetails []string              `json:"missing_details,omitempty"`
}

// CertificateIssuedPayload accompanies certificate issuance.
type CertificateIssuedPayload struct {
	Certificate domain.Certificate `json:"certificate"`
}
