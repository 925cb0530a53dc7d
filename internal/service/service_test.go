package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/tourism-service/internal/config"
	"github.com/spec-kit/tourism-service/internal/domain"
	"github.com/spec-kit/tourism-service/internal/events"
	"github.com/spec-kit/tourism-service/internal/notification"
	"github.com/spec-kit/tourism-service/internal/repository"
	"github.com/spec-kit/tourism-service/internal/ticketstatus"
	apperrors "github.com/spec-kit/tourism-service/pkg/util"
)

type sentMessage struct {
	template string
	vars     map[string]string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeNotifier) Send(_ context.Context, templateID string, vars map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{template: templateID, vars: vars})
	return f.err
}

func (f *fakeNotifier) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage{}, f.sent...)
}

type fakeCatalog struct {
	activitiesFn func(ctx context.Context, ids []string) (map[string]domain.Activity, error)
	providersFn  func(ctx context.Context, ids []string) (map[string]domain.Provider, error)
}

func (f fakeCatalog) Activities(ctx context.Context, ids []string) (map[string]domain.Activity, error) {
	return f.activitiesFn(ctx, ids)
}

func (f fakeCatalog) Providers(ctx context.Context, ids []string) (map[string]domain.Provider, error) {
	return f.providersFn(ctx, ids)
}

type harness struct {
	store       *repository.MemoryDocumentStore
	tickets     repository.TicketRepository
	companies   repository.CompanyRepository
	employees   repository.EmployeeRepository
	catalogRepo repository.CatalogRepository
	notifier    *fakeNotifier
	ticketSvc   *TicketService
	certSvc     *CertificateService
	workflow    *WorkflowService
	org         *OrganizationService
	notifySvc   *NotificationService
	now         time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := zaptest.NewLogger(t)
	store := repository.NewMemoryDocumentStore()
	h := &harness{
		store:       store,
		tickets:     repository.NewTicketRepository(store),
		companies:   repository.NewCompanyRepository(store),
		employees:   repository.NewEmployeeRepository(store),
		catalogRepo: repository.NewCatalogRepository(store),
		notifier:    &fakeNotifier{},
		now:         time.Date(2025, time.June, 15, 2, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return h.now }
	dispatcher := events.NewInMemoryDispatcher(logger)

	h.ticketSvc = NewTicketService(TicketDependencies{
		TicketRepo:   h.tickets,
		CompanyRepo:  h.companies,
		EmployeeRepo: h.employees,
		Catalog:      repository.NewCatalogResolver(h.catalogRepo, nil, 10, logger),
		Dispatcher:   dispatcher,
		Logger:       logger,
		Clock:        clock,
	})
	h.certSvc = NewCertificateService(CertificateDependencies{
		CertificateRepo: repository.NewCertificateRepository(store),
		CounterRepo:     repository.NewCounterRepository(store),
		Dispatcher:      dispatcher,
		PublicBaseURL:   "https://permits.example.ph/",
		Logger:          logger,
		Clock:           clock,
	})
	h.workflow = NewWorkflowService(WorkflowDependencies{
		CompanyRepo:  h.companies,
		EmployeeRepo: h.employees,
		Certificates: h.certSvc,
		Dispatcher:   dispatcher,
		Logger:       logger,
		Clock:        clock,
	})
	h.org = NewOrganizationService(h.companies, h.employees, logger, clock)
	h.notifySvc = NewNotificationService(dispatcher, h.notifier, logger, config.NotificationConfig{PublicBaseURL: "https://permits.example.ph"})
	h.notifySvc.RegisterHandlers()
	return h
}

func (h *harness) seedCompany(t *testing.T, name string) *domain.Company {
	t.Helper()
	company := domain.NewCompany(domain.Company{CompanyName: name, Email: "owner@" + name + ".ph"})
	require.NoError(t, h.companies.Create(context.Background(), &company))
	return &company
}

func (h *harness) seedEmployee(t *testing.T, companyID string) *domain.Employee {
	t.Helper()
	employee := domain.NewEmployee(domain.Employee{CompanyID: companyID, FirstName: "Lea", LastName: "Santos", Email: "lea@example.ph"})
	require.NoError(t, h.employees.Create(context.Background(), &employee))
	return &employee
}

func (h *harness) seedCatalog(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.catalogRepo.SaveActivity(ctx, &domain.Activity{
		ActivityID: "kayak", ActivityName: "Kayak", ActivityDuration: "60", ActivityBasePrice: "100",
	}))
	require.NoError(t, h.catalogRepo.SaveProvider(ctx, &domain.Provider{
		ProviderID: "p-1", ProviderName: "Bay Tours", ActivityIDs: []string{"kayak"},
	}))
}

func ticketDraft(employeeID string) domain.Ticket {
	return domain.Ticket{
		EmployeeID: employeeID,
		Name:       "Reyes party",
		Address: []domain.AddressEntry{
			{Locals: "3", Foreigns: "0"},
			{Locals: "0", Foreigns: "2", IsForeign: true},
		},
		Activities: []domain.ActivityGroup{{
			ActivityDateTimeStart:     "2025-06-20T09:00:00.000Z",
			ActivityDateTimeEnd:       "2025-06-20T10:00:00.000Z",
			ActivitiesAvailed:         []domain.AvailedActivity{{ID: "kayak"}},
			ActivityNumPax:            "4",
			ActivityAgreedPrice:       "500",
			ActivitySelectedProviders: []string{"p-1"},
		}},
	}
}

func TestTicketCreate(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog(t)
	company := h.seedCompany(t, "bayview")
	employee := h.seedEmployee(t, company.CompanyID)
	ctx := context.Background()

	ticket, err := h.ticketSvc.Create(ctx, ticketDraft(employee.EmployeeID), "uid-1", company.CompanyID)
	require.NoError(t, err)
	require.NotEmpty(t, ticket.TicketID)

	assert.Equal(t, domain.TicketStatusCreated, ticket.Status)
	assert.Equal(t, company.CompanyID, ticket.CompanyID)
	assert.Equal(t, "uid-1", ticket.UserUID)
	require.NotNil(t, ticket.DateCreated)
	require.NotNil(t, ticket.ValidUntil)
	assert.Nil(t, ticket.DateUpdated)
	assert.True(t, ticket.ValidUntil.Equal(h.now.AddDate(0, 1, 0)))
	require.Len(t, ticket.ScanLogs, 1)
	assert.Equal(t, domain.ScanLogEntry{Status: domain.TicketStatusCreated, DateUpdated: h.now, UserID: "uid-1"}, ticket.ScanLogs[0])

	assert.Equal(t, 5, ticket.TotalPax)
	assert.True(t, ticket.IsMixedGroup)
	assert.Equal(t, 60, ticket.TotalDuration)
	assert.InDelta(t, 100, ticket.TotalExpectedSale, 1e-9)
	assert.InDelta(t, 25, ticket.TotalMarkup, 1e-9)
	assert.Equal(t, "2025-06-20T09:00:00.000Z", ticket.StartDateTime)

	stored, ok, err := h.tickets.Get(ctx, ticket.TicketID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ticket.TicketID, stored.TicketID)

	storedCompany, _, err := h.companies.Get(ctx, company.CompanyID)
	require.NoError(t, err)
	assert.Equal(t, []string{ticket.TicketID}, storedCompany.Ticket)

	storedEmployee, _, err := h.employees.Get(ctx, employee.EmployeeID)
	require.NoError(t, err)
	assert.Equal(t, []string{ticket.TicketID}, storedEmployee.Tickets)
}

func TestTicketCreateRequiresCompany(t *testing.T) {
	h := newHarness(t)
	_, err := h.ticketSvc.Create(context.Background(), ticketDraft(""), "uid-1", "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeMissingIdentifier))
}

func TestTicketCreateWaitsForActivities(t *testing.T) {
	h := newHarness(t)
	company := h.seedCompany(t, "bayview")
	svc := NewTicketService(TicketDependencies{
		TicketRepo:   h.tickets,
		CompanyRepo:  h.companies,
		EmployeeRepo: h.employees,
		Catalog: fakeCatalog{activitiesFn: func(context.Context, []string) (map[string]domain.Activity, error) {
			return nil, errors.New("catalog unavailable")
		}},
		Clock: func() time.Time { return h.now },
	})

	_, err := svc.Create(context.Background(), ticketDraft(""), "uid-1", company.CompanyID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotReady))

	tickets, err := h.tickets.ListByCompany(context.Background(), company.CompanyID)
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestTicketUpdate(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog(t)
	company := h.seedCompany(t, "bayview")
	ctx := context.Background()

	created, err := h.ticketSvc.Create(ctx, ticketDraft(""), "uid-1", company.CompanyID)
	require.NoError(t, err)

	t.Run("missing id fails before any write", func(t *testing.T) {
		edited := *created
		edited.TicketID = ""
		_, err := h.ticketSvc.Update(ctx, edited, "uid-2", company.CompanyID, LogEntry{Status: domain.TicketStatusCanceled})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeMissingIdentifier))
	})

	t.Run("other company is forbidden", func(t *testing.T) {
		_, err := h.ticketSvc.Update(ctx, *created, "uid-2", "someone-else", LogEntry{})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	})

	t.Run("unknown ticket", func(t *testing.T) {
		ghost := *created
		ghost.TicketID = "ghost"
		_, err := h.ticketSvc.Update(ctx, ghost, "uid-2", company.CompanyID, LogEntry{})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	})

	h.now = h.now.Add(2 * time.Hour)
	updated, err := h.ticketSvc.Update(ctx, *created, "uid-2", company.CompanyID, LogEntry{Status: domain.TicketStatusCanceled, Remarks: "weather"})
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusCanceled, updated.Status)
	assert.Equal(t, created.DateCreated, updated.DateCreated)
	require.NotNil(t, updated.DateUpdated)
	assert.True(t, updated.DateUpdated.Equal(h.now))
	require.Len(t, updated.ScanLogs, 2)
	assert.Equal(t, created.ScanLogs[0], updated.ScanLogs[0])
	assert.Equal(t, domain.ScanLogEntry{Status: domain.TicketStatusCanceled, DateUpdated: h.now, Remarks: "weather", UserID: "uid-2"}, updated.ScanLogs[1])

	// re-aggregation of unchanged inputs reproduces the derived fields
	assert.Equal(t, created.TotalPax, updated.TotalPax)
	assert.Equal(t, created.TotalDuration, updated.TotalDuration)
	assert.Equal(t, created.TotalMarkup, updated.TotalMarkup)
	assert.Equal(t, created.StartDateTime, updated.StartDateTime)

	stored, _, err := h.tickets.Get(ctx, created.TicketID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusCanceled, stored.Status)
	assert.Len(t, stored.ScanLogs, 2)

	storedCompany, _, err := h.companies.Get(ctx, company.CompanyID)
	require.NoError(t, err)
	assert.Equal(t, []string{created.TicketID}, storedCompany.Ticket)
}

func TestTicketResaveKeepsStatus(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog(t)
	company := h.seedCompany(t, "bayview")
	ctx := context.Background()

	created, err := h.ticketSvc.Create(ctx, ticketDraft(""), "uid-1", company.CompanyID)
	require.NoError(t, err)

	edited := *created
	edited.Address = []domain.AddressEntry{{Locals: "6"}}
	resaved, err := h.ticketSvc.Resave(ctx, edited, "uid-1", company.CompanyID)
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusCreated, resaved.Status)
	assert.Equal(t, 6, resaved.TotalPax)
	assert.True(t, resaved.IsSingleGroup)
	require.Len(t, resaved.ScanLogs, 2)
	assert.Equal(t, domain.TicketStatusUpdated, resaved.ScanLogs[1].Status)
}

func TestTicketRecordScan(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog(t)
	company := h.seedCompany(t, "bayview")
	ctx := context.Background()

	created, err := h.ticketSvc.Create(ctx, ticketDraft(""), "uid-1", company.CompanyID)
	require.NoError(t, err)

	h.now = time.Date(2025, time.June, 20, 9, 5, 0, 0, time.UTC)
	scanned, err := h.ticketSvc.RecordScan(ctx, "https://permits.example.ph/ticket/"+created.TicketID+"?src=qr", "verifier-1", "")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusScanned, scanned.Status)
	require.Len(t, scanned.ScanLogs, 2)
	assert.Equal(t, domain.TicketStatusScanned, scanned.ScanLogs[1].Status)

	view, err := h.ticketSvc.Get(ctx, created.TicketID)
	require.NoError(t, err)
	assert.Equal(t, ticketstatus.OnTime, view.Label)

	_, err = h.ticketSvc.RecordScan(ctx, "  ", "verifier-1", "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeMissingIdentifier))
}

func TestTicketGetAndBoard(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog(t)
	company := h.seedCompany(t, "bayview")
	ctx := context.Background()

	created, err := h.ticketSvc.Create(ctx, ticketDraft(""), "uid-1", company.CompanyID)
	require.NoError(t, err)

	view, err := h.ticketSvc.Get(ctx, created.TicketID)
	require.NoError(t, err)
	assert.Equal(t, ticketstatus.Queued, view.Label)
	assert.Equal(t, ticketstatus.Badge(ticketstatus.Queued), view.Badge)
	require.Len(t, view.Providers, 1)
	assert.Equal(t, "Bay Tours", view.Providers[0].ProviderName)

	h.now = time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)
	board, err := h.ticketSvc.Board(ctx, company.CompanyID)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, ticketstatus.Invalid, board[0].Label)

	_, err = h.ticketSvc.Get(ctx, "ghost")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestExtractTicketID(t *testing.T) {
	cases := map[string]string{
		"abc123":                                 "abc123",
		"  abc123  ":                             "abc123",
		"https://x.ph/tickets/abc123":            "abc123",
		"https://x.ph/tickets/abc123/":           "abc123",
		"https://x.ph/tickets/abc123?utm=qr#top": "abc123",
		"/tourism_certificate/TOURISM-0001-2025": "TOURISM-0001-2025",
		"":                                       "",
	}
	for payload, want := range cases {
		assert.Equal(t, want, ExtractTicketID(payload), payload)
	}
}

func TestCompanyApprovalIssuesCertificate(t *testing.T) {
	h := newHarness(t)
	company := h.seedCompany(t, "bayview")
	ctx := context.Background()
	require.NoError(t, h.store.Set(ctx, repository.CollectionCounters, "2025", repository.Document{"year": 2025, "last_number": 7}))

	updated, err := h.workflow.TransitionCompany(ctx, company.CompanyID,
		TransitionRequest{Status: domain.StatusApproved, Remarks: "complete"},
		Actor{UID: "verifier-1", Role: domain.RoleVerifier})
	require.NoError(t, err)
	h.notifySvc.Wait()

	assert.Equal(t, "TOURISM-0008-2025", updated.LatestCertID)

	stored, _, err := h.companies.Get(ctx, company.CompanyID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, stored.Status)
	assert.Equal(t, []string{"TOURISM-0008-2025"}, stored.TourismCertificateIDs)
	assert.Equal(t, "TOURISM-0008-2025", stored.LatestCertID)
	require.NotNil(t, stored.LatestCertSummary)
	assert.Equal(t, domain.CertificateTypeEndorsement, stored.LatestCertSummary.Type)
	require.Len(t, stored.StatusHistory, 1)
	assert.Equal(t, "verifier-1", stored.StatusHistory[0].UserID)

	cert, err := h.certSvc.Get(ctx, "TOURISM-0008-2025")
	require.NoError(t, err)
	expired := cert.DateExpired.In(apperrors.BusinessLocation())
	assert.Equal(t, 2025, expired.Year())
	assert.Equal(t, time.December, expired.Month())
	assert.Equal(t, 31, expired.Day())
	assert.Equal(t, company.CompanyID, cert.CompanyID)
	assert.Equal(t, "verifier-1", cert.VerifierID)

	sent := h.notifier.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, notification.TemplateCompanyApproved, sent[0].template)
	assert.Equal(t, "TOURISM-0008-2025", sent[0].vars[notification.VarCertificateID])
	assert.Equal(t, "https://permits.example.ph/tourism_certificate/TOURISM-0008-2025", sent[0].vars[notification.VarCertificateURL])
	assert.Equal(t, company.Email, sent[0].vars[notification.VarTo])
}

func TestConcurrentApprovalsAllocateDistinctNumbers(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	const n = 8

	companies := make([]*domain.Company, n)
	for i := range companies {
		companies[i] = h.seedCompany(t, fmt.Sprintf("co%d", i))
	}

	ids := make([]string, n)
	var wg sync.WaitGroup
	for i, c := range companies {
		wg.Add(1)
		go func() {
			defer wg.Done()
			updated, err := h.workflow.TransitionCompany(ctx, c.CompanyID,
				TransitionRequest{Status: domain.StatusApproved},
				Actor{UID: "verifier-1", Role: domain.RoleVerifier})
			if assert.NoError(t, err) {
				ids[i] = updated.LatestCertID
			}
		}()
	}
	wg.Wait()
	h.notifySvc.Wait()

	sort.Strings(ids)
	want := make([]string, n)
	for i := range want {
		want[i] = domain.FormatCertificateID(i+1, 2025)
	}
	assert.Equal(t, want, ids)
}

func TestCompanyTransitions(t *testing.T) {
	ctx := context.Background()
	reviewer := Actor{UID: "verifier-1", Role: domain.RoleVerifier}

	t.Run("temporary issues no certificate", func(t *testing.T) {
		h := newHarness(t)
		company := h.seedCompany(t, "bayview")
		updated, err := h.workflow.TransitionCompany(ctx, company.CompanyID, TransitionRequest{Status: domain.StatusTemporary}, reviewer)
		require.NoError(t, err)
		h.notifySvc.Wait()
		assert.Empty(t, updated.LatestCertID)
		assert.Empty(t, updated.TourismCertificateIDs)
		assert.Empty(t, h.notifier.messages())
	})

	t.Run("incomplete without details skips the email", func(t *testing.T) {
		h := newHarness(t)
		company := h.seedCompany(t, "bayview")
		updated, err := h.workflow.TransitionCompany(ctx, company.CompanyID, TransitionRequest{Status: domain.StatusIncomplete, MissingDetails: []string{" "}}, reviewer)
		require.NoError(t, err)
		h.notifySvc.Wait()
		assert.Equal(t, domain.StatusIncomplete, updated.Status)
		assert.Empty(t, h.notifier.messages())
	})

	t.Run("incomplete with details requests resubmission", func(t *testing.T) {
		h := newHarness(t)
		company := h.seedCompany(t, "bayview")
		_, err := h.workflow.TransitionCompany(ctx, company.CompanyID,
			TransitionRequest{Status: domain.StatusIncomplete, MissingDetails: []string{"business permit", "fire safety"}}, reviewer)
		require.NoError(t, err)
		h.notifySvc.Wait()
		sent := h.notifier.messages()
		require.Len(t, sent, 1)
		assert.Equal(t, notification.TemplateResubmissionRequest, sent[0].template)
		assert.Equal(t, "business permit\nfire safety", sent[0].vars[notification.VarMissingDetails])
	})

	t.Run("notification failure does not fail the transition", func(t *testing.T) {
		h := newHarness(t)
		h.notifier.err = errors.New("smtp down")
		company := h.seedCompany(t, "bayview")
		_, err := h.workflow.TransitionCompany(ctx, company.CompanyID, TransitionRequest{Status: domain.StatusApproved}, reviewer)
		require.NoError(t, err)
		h.notifySvc.Wait()
		assert.Len(t, h.notifier.messages(), 1)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		h := newHarness(t)
		company := h.seedCompany(t, "bayview")
		_, err := h.workflow.TransitionCompany(ctx, company.CompanyID, TransitionRequest{Status: "archived"}, reviewer)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	})

	t.Run("missing company", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.workflow.TransitionCompany(ctx, "ghost", TransitionRequest{Status: domain.StatusApproved}, reviewer)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	})
}

func TestEmployeeAccreditation(t *testing.T) {
	h := newHarness(t)
	company := h.seedCompany(t, "bayview")
	employee := h.seedEmployee(t, company.CompanyID)
	ctx := context.Background()

	updated, err := h.workflow.TransitionEmployee(ctx, employee.EmployeeID,
		TransitionRequest{Status: domain.StatusApproved},
		Actor{UID: "verifier-1", Role: domain.RoleVerifier})
	require.NoError(t, err)
	h.notifySvc.Wait()

	assert.Equal(t, "TOURISM-0001-2025", updated.LatestCertID)
	require.NotNil(t, updated.LatestCertSummary)
	assert.Equal(t, domain.CertificateTypeAccreditation, updated.LatestCertSummary.Type)
	assert.Equal(t, domain.StatusUnderReview, updated.CompanyStatus)

	sent := h.notifier.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, notification.TemplateEmployeeApproved, sent[0].template)
	assert.Equal(t, "Lea Santos", sent[0].vars[notification.VarName])
}

func TestEmployeeEmploymentHistory(t *testing.T) {
	h := newHarness(t)
	company := h.seedCompany(t, "bayview")
	employee := h.seedEmployee(t, company.CompanyID)
	ctx := context.Background()
	reviewer := Actor{UID: "owner-1", Role: domain.RoleCompany, CompanyID: company.CompanyID}

	hired, err := h.workflow.TransitionEmployeeCompanyStatus(ctx, employee.EmployeeID,
		TransitionRequest{Status: domain.StatusApproved, Remarks: "hired"}, reviewer)
	require.NoError(t, err)
	require.Len(t, hired.WorkHistory, 1)
	stint := hired.WorkHistory[0]
	assert.NotEmpty(t, stint.WorkHistoryID)
	assert.Equal(t, apperrors.FormatISO(h.now), stint.DateStart)
	assert.True(t, stint.IsOpen())
	assert.Equal(t, "bayview", stint.CompanyName)
	assert.Equal(t, domain.StatusUnderReview, hired.Status)

	h.now = h.now.Add(24 * time.Hour)
	resigned, err := h.workflow.TransitionEmployeeCompanyStatus(ctx, employee.EmployeeID,
		TransitionRequest{Status: domain.StatusResigned}, reviewer)
	require.NoError(t, err)
	require.Len(t, resigned.WorkHistory, 1)
	assert.Equal(t, apperrors.FormatISO(h.now), resigned.WorkHistory[0].DateEnd)

	stored, _, err := h.employees.Get(ctx, employee.EmployeeID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResigned, stored.CompanyStatus)
	assert.Len(t, stored.CompanyStatusHistory, 2)
	assert.False(t, stored.WorkHistory[0].IsOpen())
}

func TestOrganizationAccess(t *testing.T) {
	h := newHarness(t)
	company := h.seedCompany(t, "bayview")
	other := h.seedCompany(t, "harbor")
	ctx := context.Background()
	owner := Actor{UID: "owner-1", Role: domain.RoleCompany, CompanyID: company.CompanyID}

	employee, err := h.org.CreateEmployee(ctx, domain.Employee{FirstName: "Ana", LastName: "Cruz", CompanyID: other.CompanyID}, owner)
	require.NoError(t, err)
	assert.Equal(t, company.CompanyID, employee.CompanyID)
	assert.Equal(t, "bayview", employee.CompanyName)
	assert.Equal(t, domain.StatusUnderReview, employee.Status)

	list, err := h.org.ListEmployees(ctx, company.CompanyID, owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = h.org.GetCompany(ctx, other.CompanyID, owner)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	got, err := h.org.GetCompany(ctx, other.CompanyID, Actor{UID: "v", Role: domain.RoleVerifier})
	require.NoError(t, err)
	assert.Equal(t, "harbor", got.CompanyName)
}

func TestCertificateLookupValidatesID(t *testing.T) {
	h := newHarness(t)
	_, err := h.certSvc.Get(context.Background(), "not-a-cert")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = h.certSvc.Get(context.Background(), "TOURISM-0001-2025")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	assert.Equal(t, "https://permits.example.ph/tourism_certificate/TOURISM-0001-2025", h.certSvc.VerificationURL("TOURISM-0001-2025"))
}

func TestAuthFlows(t *testing.T) {
	store := repository.NewMemoryDocumentStore()
	accounts := repository.NewAccountRepository(store)
	companies := repository.NewCompanyRepository(store)
	svc := NewAuthService(config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: 4},
		AuthDependencies{AccountRepo: accounts, CompanyRepo: companies, Logger: zaptest.NewLogger(t)})
	ctx := context.Background()

	company, session, err := svc.RegisterCompany(ctx, CompanyRegistration{
		CompanyName: "Bayview Tours",
		Email:       "Owner@Bayview.ph",
		Password:    "s3cret-pass",
		OwnerName:   "Maria",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnderReview, company.Status)
	assert.Equal(t, session.Account.UID, company.OwnerUID)
	assert.Equal(t, company.CompanyID, session.Account.CompanyID)
	assert.NotEmpty(t, session.Token)

	claims, err := svc.TokenManager().ParseToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.Account.UID, claims.UID())
	assert.Equal(t, domain.RoleCompany, claims.Role)

	stored, _, err := companies.Get(ctx, company.CompanyID)
	require.NoError(t, err)
	require.Len(t, stored.StatusHistory, 1)

	_, _, err = svc.RegisterCompany(ctx, CompanyRegistration{CompanyName: "Again", Email: "owner@bayview.ph", Password: "x"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	login, err := svc.Login(ctx, "owner@bayview.ph", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, session.Account.UID, login.Account.UID)

	_, err = svc.Login(ctx, "owner@bayview.ph", "wrong")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
	_, err = svc.Login(ctx, "nobody@bayview.ph", "wrong")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	require.NoError(t, svc.EnsureAdmin(ctx, "admin@tourism.ph", "admin-pass"))
	require.NoError(t, svc.EnsureAdmin(ctx, "admin@tourism.ph", "admin-pass"))
	admin, err := svc.Login(ctx, "admin@tourism.ph", "admin-pass")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Account.Role)

	verifier, err := svc.CreateVerifier(ctx, "Vic", "vic@tourism.ph", "pass-1234", "inspector")
	require.NoError(t, err)
	assert.True(t, verifier.IsReviewer())
}

func TestCatalogServiceInvalidatesCache(t *testing.T) {
	store := repository.NewMemoryDocumentStore()
	inv := &recordingInvalidator{}
	svc := NewCatalogService(repository.NewCatalogRepository(store), inv, zaptest.NewLogger(t))
	ctx := context.Background()

	activity, err := svc.SaveActivity(ctx, domain.Activity{ActivityName: "Island hopping", ActivityDuration: "240"})
	require.NoError(t, err)
	assert.Equal(t, domain.SoldByPax, activity.ActivitySoldBy)

	_, err = svc.SaveProvider(ctx, domain.Provider{ProviderName: "Bangka Co"})
	require.NoError(t, err)

	_, err = svc.SaveActivity(ctx, domain.Activity{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	assert.Equal(t, []string{repository.CacheKindActivity, repository.CacheKindProvider}, inv.kinds)

	list, err := svc.ListActivities(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

type recordingInvalidator struct {
	kinds []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, kind, _ string) {
	r.kinds = append(r.kinds, kind)
}
