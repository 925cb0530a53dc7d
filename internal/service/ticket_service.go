package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/tourism-service/internal/aggregation"
	"github.com/spec-kit/tourism-service/internal/domain"
	"github.com/spec-kit/tourism-service/internal/events"
	"github.com/spec-kit/tourism-service/internal/repository"
	"github.com/spec-kit/tourism-service/internal/ticketstatus"
	apperrors "github.com/spec-kit/tourism-service/pkg/util"
)

// CatalogLookup resolves catalog details for the ids a ticket references.
type CatalogLookup interface {
	Activities(ctx context.Context, ids []string) (map[string]domain.Activity, error)
	Providers(ctx context.Context, ids []string) (map[string]domain.Provider, error)
}

// TicketService is the ticket lifecycle controller: it derives aggregates, stamps
// lifecycle fields and persists tickets with their back-references.
type TicketService struct {
	tickets    repository.TicketRepository
	companies  repository.CompanyRepository
	employees  repository.EmployeeRepository
	catalog    CatalogLookup
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        Clock
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	CompanyRepo  repository.CompanyRepository
	EmployeeRepo repository.EmployeeRepository
	Catalog      CatalogLookup
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	Clock        Clock
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		companies:  deps.CompanyRepo,
		employees:  deps.EmployeeRepo,
		catalog:    deps.Catalog,
		dispatcher: deps.Dispatcher,
		logger:     loggerOrNop(deps.Logger).Named("tickets"),
		now:        clockOrDefault(deps.Clock),
	}
}

// LogEntry is the caller-supplied scan-log entry of a manual edit.
type LogEntry struct {
	Status  domain.TicketStatus
	Remarks string
}

// TicketView is a ticket with its live display status.
type TicketView struct {
	Ticket    domain.Ticket
	Label     ticketstatus.Label
	Badge     ticketstatus.Severity
	Providers []domain.Provider
}

// Create stores a new ticket for companyID and links it to the company and, when set,
// the employee.
func (s *TicketService) Create(ctx context.Context, draft domain.Ticket, actorUID, companyID string) (*domain.Ticket, error) {
	if strings.TrimSpace(companyID) == "" {
		return nil, apperrors.NewMissingIdentifier("company_id")
	}

	activities, err := s.resolveActivities(ctx, draft)
	if err != nil {
		return nil, err
	}

	now := s.now()
	ticket := domain.NewTicket(draft)
	ticket.TicketID = ""
	ticket.Status = domain.TicketStatusCreated
	ticket.DateCreated = timePtr(now)
	ticket.DateUpdated = nil
	ticket.ValidUntil = timePtr(apperrors.AddMonth(now))
	ticket.ScanLogs = []domain.ScanLogEntry{{
		Status:      domain.TicketStatusCreated,
		DateUpdated: now,
		Remarks:     "",
		UserID:      actorUID,
	}}
	s.derive(&ticket, activities)
	ticket.UserUID = actorUID
	ticket.CompanyID = companyID

	id, err := s.tickets.Add(ctx, ticket)
	if err != nil {
		s.logger.Error("ticket insert failed", zap.String("company_id", companyID), zap.Error(err))
		return nil, apperrors.NewPersistenceError(err)
	}
	if err := s.tickets.SetID(ctx, id); err != nil {
		s.logger.Error("ticket id write failed; ticket left unreferenced", zap.String("ticket_id", id), zap.Error(err))
		return nil, apperrors.NewPersistenceError(err)
	}
	ticket.TicketID = id

	if err := s.companies.AppendTicket(ctx, companyID, id); err != nil {
		s.logger.Error("company back-reference failed", zap.String("ticket_id", id), zap.String("company_id", companyID), zap.Error(err))
		return nil, apperrors.NewPersistenceError(err)
	}
	if ticket.EmployeeID != "" {
		if err := s.employees.AppendTicket(ctx, ticket.EmployeeID, id); err != nil {
			s.logger.Error("employee back-reference failed", zap.String("ticket_id", id), zap.String("employee_id", ticket.EmployeeID), zap.Error(err))
			return nil, apperrors.NewPersistenceError(err)
		}
	}

	s.logger.Info("ticket created", zap.String("ticket_id", id), zap.String("company_id", companyID), zap.Int("total_pax", ticket.TotalPax))
	publishEvent(ctx, s.dispatcher, now, events.Event{
		Type:      events.EventTicketCreated,
		SubjectID: id,
		Actor:     events.Actor{UserID: actorUID},
		Payload:   events.TicketPayload{CompanyID: companyID, EmployeeID: ticket.EmployeeID, Status: ticket.Status},
	})
	return &ticket, nil
}

// Update applies a manual edit. The scan-log entry status and remarks come from the
// caller; a non-empty status also becomes the ticket status.
func (s *TicketService) Update(ctx context.Context, ticket domain.Ticket, actorUID, companyID string, entry LogEntry) (*domain.Ticket, error) {
	return s.update(ctx, ticket, actorUID, companyID, entry, true)
}

// Resave re-runs aggregation on an edited ticket and logs a fixed "updated" entry.
// The ticket status keeps its previous value.
func (s *TicketService) Resave(ctx context.Context, ticket domain.Ticket, actorUID, companyID string) (*domain.Ticket, error) {
	return s.update(ctx, ticket, actorUID, companyID, LogEntry{Status: domain.TicketStatusUpdated}, false)
}

func (s *TicketService) update(ctx context.Context, edited domain.Ticket, actorUID, companyID string, entry LogEntry, manual bool) (*domain.Ticket, error) {
	if strings.TrimSpace(edited.TicketID) == "" {
		return nil, apperrors.NewMissingIdentifier("ticket_id")
	}

	stored, err := s.load(ctx, edited.TicketID)
	if err != nil {
		return nil, err
	}
	if companyID != "" && stored.CompanyID != "" && stored.CompanyID != companyID {
		return nil, apperrors.NewForbidden("ticket belongs to another company")
	}

	activities, err := s.resolveActivities(ctx, edited)
	if err != nil {
		return nil, err
	}

	now := s.now()
	ticket := domain.NewTicket(edited)
	ticket.UserUID = stored.UserUID
	ticket.CompanyID = stored.CompanyID
	if ticket.CompanyID == "" {
		ticket.CompanyID = companyID
	}
	ticket.DateCreated = stored.DateCreated
	ticket.ValidUntil = stored.ValidUntil
	ticket.DateUpdated = timePtr(now)

	previous := stored.Status
	if previous == "" {
		previous = domain.TicketStatusUpdated
	}
	logStatus := entry.Status
	if logStatus == "" {
		logStatus = previous
	}
	ticket.Status = previous
	if manual && entry.Status != "" {
		ticket.Status = entry.Status
	}

	ticket.ScanLogs = append(append([]domain.ScanLogEntry{}, stored.ScanLogs...), domain.ScanLogEntry{
		Status:      logStatus,
		DateUpdated: now,
		Remarks:     entry.Remarks,
		UserID:      actorUID,
	})
	s.derive(&ticket, activities)

	if err := s.tickets.Save(ctx, ticket); err != nil {
		s.logger.Error("ticket update failed", zap.String("ticket_id", ticket.TicketID), zap.Error(err))
		return nil, apperrors.NewPersistenceError(err)
	}

	publishEvent(ctx, s.dispatcher, now, events.Event{
		Type:      events.EventTicketUpdated,
		SubjectID: ticket.TicketID,
		Actor:     events.Actor{UserID: actorUID},
		Payload:   events.TicketPayload{CompanyID: ticket.CompanyID, EmployeeID: ticket.EmployeeID, Status: logStatus, Remarks: entry.Remarks},
	})
	return &ticket, nil
}

// RecordScan marks the ticket referenced by a QR payload as scanned.
func (s *TicketService) RecordScan(ctx context.Context, payload, actorUID, remarks string) (*domain.Ticket, error) {
	id := ExtractTicketID(payload)
	if id == "" {
		return nil, apperrors.NewMissingIdentifier("ticket_id")
	}

	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	ticket.Status = domain.TicketStatusScanned
	ticket.DateUpdated = timePtr(now)
	ticket.ScanLogs = append(ticket.ScanLogs, domain.ScanLogEntry{
		Status:      domain.TicketStatusScanned,
		DateUpdated: now,
		Remarks:     remarks,
		UserID:      actorUID,
	})
	if ticket.TicketID == "" {
		ticket.TicketID = id
	}

	if err := s.tickets.Save(ctx, *ticket); err != nil {
		s.logger.Error("ticket scan failed", zap.String("ticket_id", id), zap.Error(err))
		return nil, apperrors.NewPersistenceError(err)
	}

	publishEvent(ctx, s.dispatcher, now, events.Event{
		Type:      events.EventTicketScanned,
		SubjectID: id,
		Actor:     events.Actor{UserID: actorUID},
		Payload:   events.TicketPayload{CompanyID: ticket.CompanyID, Status: ticket.Status, Remarks: remarks},
	})
	return ticket, nil
}

// Get returns a ticket with its live status and selected providers.
func (s *TicketService) Get(ctx context.Context, id string) (*TicketView, error) {
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	providers := []domain.Provider{}
	if ids := ticket.AllProviderIDs(); len(ids) > 0 {
		resolved, err := s.catalog.Providers(ctx, ids)
		if err != nil {
			return nil, apperrors.NewNotReady("providers are still loading, please wait", err)
		}
		for _, pid := range ids {
			if p, ok := resolved[pid]; ok {
				providers = append(providers, p)
			}
		}
	}

	view := s.view(*ticket, s.now())
	view.Providers = providers
	return &view, nil
}

// Board lists a company's tickets with their live status.
func (s *TicketService) Board(ctx context.Context, companyID string) ([]TicketView, error) {
	if strings.TrimSpace(companyID) == "" {
		return nil, apperrors.NewMissingIdentifier("company_id")
	}
	tickets, err := s.tickets.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}

	now := s.now()
	views := make([]TicketView, 0, len(tickets))
	for _, t := range tickets {
		views = append(views, s.view(t, now))
	}
	return views, nil
}

func (s *TicketService) view(t domain.Ticket, now time.Time) TicketView {
	label := ticketstatus.Compute(t, now)
	return TicketView{Ticket: t, Label: label, Badge: ticketstatus.Badge(label), Providers: []domain.Provider{}}
}

func (s *TicketService) load(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, ok, err := s.tickets.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	if !ok {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}
	if ticket.TicketID == "" {
		ticket.TicketID = id
	}
	return ticket, nil
}

// resolveActivities loads every referenced activity. Aggregation never runs on a
// partial resolution.
func (s *TicketService) resolveActivities(ctx context.Context, ticket domain.Ticket) (map[string]domain.Activity, error) {
	ids := ticket.AllAvailedIDs()
	if len(ids) == 0 {
		return map[string]domain.Activity{}, nil
	}
	activities, err := s.catalog.Activities(ctx, ids)
	if err != nil {
		s.logger.Warn("activity resolution failed", zap.Int("ids", len(ids)), zap.Error(err))
		return nil, apperrors.NewNotReady("", err)
	}
	return activities, nil
}

func (s *TicketService) derive(ticket *domain.Ticket, activities map[string]domain.Activity) {
	derived := aggregation.ComputeDerivedFields(*ticket, aggregation.LookupFromMap(activities))
	if len(derived.MissingActivityIDs) > 0 {
		s.logger.Warn("ticket references unknown activities",
			zap.String("ticket_id", ticket.TicketID),
			zap.Strings("activity_ids", derived.MissingActivityIDs))
	}
	derived.Apply(ticket)
}

// ExtractTicketID returns the ticket id carried by a QR payload: either the bare id or
// the last path segment of a verification URL.
func ExtractTicketID(payload string) string {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return ""
	}
	if u, err := url.Parse(payload); err == nil && u.Scheme != "" && u.Host != "" {
		payload = u.Path
	} else if i := strings.IndexAny(payload, "?#"); i >= 0 {
		payload = payload[:i]
	}
	payload = strings.TrimRight(payload, "/")
	if i := strings.LastIndex(payload, "/"); i >= 0 {
		payload = payload[i+1:]
	}
	return strings.TrimSpace(payload)
}
