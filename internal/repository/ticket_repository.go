package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/tourism-service/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	// Add stores a new ticket document and returns the generated id. The stored
	// document carries no ticket_id until SetID is called.
	Add(ctx context.Context, ticket domain.Ticket) (string, error)
	SetID(ctx context.Context, id string) error
	// Save updates the stored document in place, keyed by ticket.TicketID.
	Save(ctx context.Context, ticket domain.Ticket) error
	Get(ctx context.Context, id string) (*domain.Ticket, bool, error)
	ListByCompany(ctx context.Context, companyID string) ([]domain.Ticket, error)
}

type ticketRepository struct {
	tickets collection[domain.Ticket]
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(store DocumentStore) TicketRepository {
	return &ticketRepository{tickets: collection[domain.Ticket]{store: store, name: CollectionTickets}}
}

func (r *ticketRepository) Add(ctx context.Context, ticket domain.Ticket) (string, error) {
	return r.tickets.add(ctx, ticket)
}

func (r *ticketRepository) SetID(ctx context.Context, id string) error {
	return r.tickets.update(ctx, id, Document{"ticket_id": id})
}

func (r *ticketRepository) Save(ctx context.Context, ticket domain.Ticket) error {
	if ticket.TicketID == "" {
		return errors.New("save ticket: missing ticket_id")
	}
	doc, err := Encode(ticket)
	if err != nil {
		return err
	}
	return r.tickets.update(ctx, ticket.TicketID, doc)
}

func (r *ticketRepository) Get(ctx context.Context, id string) (*domain.Ticket, bool, error) {
	return r.tickets.get(ctx, id)
}

func (r *ticketRepository) ListByCompany(ctx context.Context, companyID string) ([]domain.Ticket, error) {
	return r.tickets.where(ctx, "company_id", companyID)
}
