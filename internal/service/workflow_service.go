package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/tourism-service/internal/domain"
	"github.com/spec-kit/tourism-service/internal/events"
	"github.com/spec-kit/tourism-service/internal/repository"
	apperrors "github.com/spec-kit/tourism-service/pkg/util"
)

// WorkflowService runs the review state machine for companies and employees.
type WorkflowService struct {
	companies    repository.CompanyRepository
	employees    repository.EmployeeRepository
	certificates *CertificateService
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	now          Clock
}

// WorkflowDependencies bundles collaborators for workflow service.
type WorkflowDependencies struct {
	CompanyRepo  repository.CompanyRepository
	EmployeeRepo repository.EmployeeRepository
	Certificates *CertificateService
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	Clock        Clock
}

// NewWorkflowService constructs the service.
func NewWorkflowService(deps WorkflowDependencies) *WorkflowService {
	return &WorkflowService{
		companies:    deps.CompanyRepo,
		employees:    deps.EmployeeRepo,
		certificates: deps.Certificates,
		dispatcher:   deps.Dispatcher,
		logger:       loggerOrNop(deps.Logger).Named("workflow"),
		now:          clockOrDefault(deps.Clock),
	}
}

// TransitionRequest is a reviewer decision. MissingDetails feed the resubmission
// email of an incomplete decision and may be empty.
type TransitionRequest struct {
	Status         domain.ApprovalStatus
	Remarks        string
	MissingDetails []string
}

func (r TransitionRequest) validate() error {
	if !r.Status.IsValid() {
		return apperrors.NewValidationError("unknown status", map[string]any{"status": r.Status})
	}
	return nil
}

func (r TransitionRequest) details() []string {
	if r.Status != domain.StatusIncomplete {
		return nil
	}
	out := make([]string, 0, len(r.MissingDetails))
	for _, d := range r.MissingDetails {
		if d = strings.TrimSpace(d); d != "" {
			out = append(out, d)
		}
	}
	return out
}

func historyEntry(req TransitionRequest, actor Actor, now time.Time) domain.StatusHistoryEntry {
	return domain.StatusHistoryEntry{
		Status:      req.Status,
		DateUpdated: now,
		Remarks:     req.Remarks,
		UserID:      actor.UID,
	}
}

// TransitionCompany records a review decision on a company. Approval issues an
// endorsement certificate before the company document is written.
func (s *WorkflowService) TransitionCompany(ctx context.Context, companyID string, req TransitionRequest, actor Actor) (*domain.Company, error) {
	if strings.TrimSpace(companyID) == "" {
		return nil, apperrors.NewMissingIdentifier("company_id")
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	stored, ok, err := s.companies.Get(ctx, companyID)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	if !ok {
		return nil, apperrors.NewNotFound("company", map[string]any{"company_id": companyID})
	}
	company := domain.NewCompany(*stored)
	company.CompanyID = companyID
	oldStatus := company.Status

	now := s.now()
	company.Status = req.Status
	company.StatusHistory = append(company.StatusHistory, historyEntry(req, actor, now))
	patch := repository.Document{
		"status":         company.Status,
		"status_history": company.StatusHistory,
	}

	var cert *domain.Certificate
	if req.Status == domain.StatusApproved {
		cert, err = s.certificates.Issue(ctx, IssueRequest{
			Type:       domain.CertificateTypeEndorsement,
			CompanyID:  companyID,
			VerifierID: actor.UID,
		})
		if err != nil {
			return nil, err
		}
		summary := cert.Summary()
		company.TourismCertificateIDs = append(company.TourismCertificateIDs, cert.TourismCertID)
		company.LatestCertID = cert.TourismCertID
		company.LatestCertSummary = &summary
		patch["tourism_certificate_ids"] = company.TourismCertificateIDs
		patch["latest_cert_id"] = company.LatestCertID
		patch["latest_cert_summary"] = summary
	}

	if err := s.companies.Update(ctx, companyID, patch); err != nil {
		fields := []zap.Field{zap.String("company_id", companyID), zap.Error(err)}
		if cert != nil {
			fields = append(fields, zap.String("orphaned_certificate_id", cert.TourismCertID))
		}
		s.logger.Error("company status update failed", fields...)
		return nil, apperrors.NewPersistenceError(err)
	}

	s.logger.Info("company status changed",
		zap.String("company_id", companyID),
		zap.String("old_status", string(oldStatus)),
		zap.String("new_status", string(req.Status)),
		zap.String("actor", actor.UID))

	payload := events.StatusChangedPayload{
		OldStatus:      oldStatus,
		NewStatus:      req.Status,
		Remarks:        req.Remarks,
		Name:           company.CompanyName,
		Email:          company.Email,
		MissingDetails: req.details(),
	}
	if cert != nil {
		payload.CertificateID = cert.TourismCertID
	}
	publishEvent(ctx, s.dispatcher, now, events.Event{
		Type:      events.EventCompanyStatusChanged,
		SubjectID: companyID,
		Actor:     actor.event(),
		Payload:   payload,
	})
	return &company, nil
}

// TransitionEmployee records an accreditation decision on an employee. Approval issues
// an accreditation certificate.
func (s *WorkflowService) TransitionEmployee(ctx context.Context, employeeID string, req TransitionRequest, actor Actor) (*domain.Employee, error) {
	employee, err := s.loadEmployee(ctx, employeeID, req)
	if err != nil {
		return nil, err
	}
	oldStatus := employee.Status

	now := s.now()
	employee.Status = req.Status
	employee.StatusHistory = append(employee.StatusHistory, historyEntry(req, actor, now))
	patch := repository.Document{
		"status":         employee.Status,
		"status_history": employee.StatusHistory,
	}

	var cert *domain.Certificate
	if req.Status == domain.StatusApproved {
		cert, err = s.certificates.Issue(ctx, IssueRequest{
			Type:       domain.CertificateTypeAccreditation,
			CompanyID:  employee.CompanyID,
			EmployeeID: employeeID,
			VerifierID: actor.UID,
		})
		if err != nil {
			return nil, err
		}
		summary := cert.Summary()
		employee.TourismCertificateIDs = append(employee.TourismCertificateIDs, cert.TourismCertID)
		employee.LatestCertID = cert.TourismCertID
		employee.LatestCertSummary = &summary
		patch["tourism_certificate_ids"] = employee.TourismCertificateIDs
		patch["latest_cert_id"] = employee.LatestCertID
		patch["latest_cert_summary"] = summary
	}

	if err := s.employees.Update(ctx, employeeID, patch); err != nil {
		fields := []zap.Field{zap.String("employee_id", employeeID), zap.Error(err)}
		if cert != nil {
			fields = append(fields, zap.String("orphaned_certificate_id", cert.TourismCertID))
		}
		s.logger.Error("employee status update failed", fields...)
		return nil, apperrors.NewPersistenceError(err)
	}

	s.logger.Info("employee status changed",
		zap.String("employee_id", employeeID),
		zap.String("old_status", string(oldStatus)),
		zap.String("new_status", string(req.Status)),
		zap.String("actor", actor.UID))

	payload := events.StatusChangedPayload{
		OldStatus:      oldStatus,
		NewStatus:      req.Status,
		Remarks:        req.Remarks,
		Name:           employee.FullName(),
		Email:          employee.Email,
		MissingDetails: req.details(),
	}
	if cert != nil {
		payload.CertificateID = cert.TourismCertID
	}
	publishEvent(ctx, s.dispatcher, now, events.Event{
		Type:      events.EventEmployeeStatusChanged,
		SubjectID: employeeID,
		Actor:     actor.event(),
		Payload:   payload,
	})
	return employee, nil
}

// TransitionEmployeeCompanyStatus records an employment decision. Approval opens a
// work-history stint with the employee's company; resignation closes it.
func (s *WorkflowService) TransitionEmployeeCompanyStatus(ctx context.Context, employeeID string, req TransitionRequest, actor Actor) (*domain.Employee, error) {
	employee, err := s.loadEmployee(ctx, employeeID, req)
	if err != nil {
		return nil, err
	}
	oldStatus := employee.CompanyStatus

	now := s.now()
	employee.CompanyStatus = req.Status
	employee.CompanyStatusHistory = append(employee.CompanyStatusHistory, historyEntry(req, actor, now))
	patch := repository.Document{
		"company_status":         employee.CompanyStatus,
		"company_status_history": employee.CompanyStatusHistory,
	}

	switch req.Status {
	case domain.StatusApproved:
		companyName := employee.CompanyName
		if companyName == "" && employee.CompanyID != "" {
			if company, ok, err := s.companies.Get(ctx, employee.CompanyID); err == nil && ok {
				companyName = company.CompanyName
			}
		}
		employee.WorkHistory = append(employee.WorkHistory, domain.WorkHistoryEntry{
			WorkHistoryID: uuid.NewString(),
			DateStart:     apperrors.FormatISO(now),
			DateEnd:       "",
			CompanyID:     employee.CompanyID,
			CompanyName:   companyName,
			Remarks:       req.Remarks,
		})
		patch["work_history"] = employee.WorkHistory
	case domain.StatusResigned:
		closed := false
		for i, stint := range employee.WorkHistory {
			if stint.CompanyID == employee.CompanyID && stint.IsOpen() {
				employee.WorkHistory[i].DateEnd = apperrors.FormatISO(now)
				closed = true
				break
			}
		}
		if closed {
			patch["work_history"] = employee.WorkHistory
		} else {
			s.logger.Warn("resignation without an open work-history entry",
				zap.String("employee_id", employeeID),
				zap.String("company_id", employee.CompanyID))
		}
	}

	if err := s.employees.Update(ctx, employeeID, patch); err != nil {
		s.logger.Error("employee company status update failed", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, apperrors.NewPersistenceError(err)
	}

	publishEvent(ctx, s.dispatcher, now, events.Event{
		Type:      events.EventEmployeeCompanyStatusChanged,
		SubjectID: employeeID,
		Actor:     actor.event(),
		Payload: events.StatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: req.Status,
			Remarks:   req.Remarks,
			Name:      employee.FullName(),
			Email:     employee.Email,
		},
	})
	return employee, nil
}

func (s *WorkflowService) loadEmployee(ctx context.Context, employeeID string, req TransitionRequest) (*domain.Employee, error) {
	if strings.TrimSpace(employeeID) == "" {
		return nil, apperrors.NewMissingIdentifier("employee_id")
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	stored, ok, err := s.employees.Get(ctx, employeeID)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	if !ok {
		return nil, apperrors.NewNotFound("employee", map[string]any{"employee_id": employeeID})
	}
	employee := domain.NewEmployee(*stored)
	employee.EmployeeID = employeeID
	return &employee, nil
}
