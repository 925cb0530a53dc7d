package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/tourism-service/internal/domain"
	"github.com/spec-kit/tourism-service/internal/events"
	"github.com/spec-kit/tourism-service/internal/repository"
	apperrors "github.com/spec-kit/tourism-service/pkg/util"
)

// CertificateService allocates yearly certificate numbers and stores certificates.
type CertificateService struct {
	certs      repository.CertificateRepository
	counters   repository.CounterRepository
	dispatcher events.Dispatcher
	baseURL    string
	logger     *zap.Logger
	now        Clock
}

// CertificateDependencies bundles repositories for certificate service.
type CertificateDependencies struct {
	CertificateRepo repository.CertificateRepository
	CounterRepo     repository.CounterRepository
	Dispatcher      events.Dispatcher
	PublicBaseURL   string
	Logger          *zap.Logger
	Clock           Clock
}

// NewCertificateService constructs the service.
func NewCertificateService(deps CertificateDependencies) *CertificateService {
	return &CertificateService{
		certs:      deps.CertificateRepo,
		counters:   deps.CounterRepo,
		dispatcher: deps.Dispatcher,
		baseURL:    strings.TrimRight(deps.PublicBaseURL, "/"),
		logger:     loggerOrNop(deps.Logger).Named("certificates"),
		now:        clockOrDefault(deps.Clock),
	}
}

// IssueRequest describes the holder of a new certificate.
type IssueRequest struct {
	Type       string
	CompanyID  string
	EmployeeID string
	VerifierID string
}

// Issue allocates the next number for the current business year and stores an
// immutable certificate valid until Dec 31 of that year.
func (s *CertificateService) Issue(ctx context.Context, req IssueRequest) (*domain.Certificate, error) {
	now := s.now()
	year := apperrors.BusinessYear(now)

	seq, err := s.counters.Next(ctx, year)
	if err != nil {
		s.logger.Error("certificate counter allocation failed", zap.Int("year", year), zap.Error(err))
		return nil, apperrors.NewPersistenceError(err)
	}

	cert := domain.Certificate{
		TourismCertID: domain.FormatCertificateID(seq, year),
		Type:          req.Type,
		DateIssued:    now,
		DateExpired:   apperrors.EndOfYear(now),
		CompanyID:     req.CompanyID,
		EmployeeID:    req.EmployeeID,
		VerifierID:    req.VerifierID,
	}
	if err := s.certs.Create(ctx, cert); err != nil {
		s.logger.Error("certificate number allocated but certificate not stored",
			zap.String("certificate_id", cert.TourismCertID), zap.Error(err))
		return nil, apperrors.NewPersistenceError(err)
	}

	s.logger.Info("certificate issued",
		zap.String("certificate_id", cert.TourismCertID),
		zap.String("type", cert.Type),
		zap.String("verifier_id", cert.VerifierID))
	publishEvent(ctx, s.dispatcher, now, events.Event{
		Type:      events.EventCertificateIssued,
		SubjectID: cert.TourismCertID,
		Actor:     events.Actor{UserID: req.VerifierID},
		Payload:   events.CertificateIssuedPayload{Certificate: cert},
	})
	return &cert, nil
}

// Get returns a certificate by id. Malformed ids are rejected before any read.
func (s *CertificateService) Get(ctx context.Context, id string) (*domain.Certificate, error) {
	id = strings.TrimSpace(id)
	if !domain.IsCertificateID(id) {
		return nil, apperrors.NewValidationError("invalid certificate id", map[string]any{"tourism_cert_id": id})
	}
	cert, ok, err := s.certs.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	if !ok {
		return nil, apperrors.NewNotFound("certificate", map[string]any{"tourism_cert_id": id})
	}
	return cert, nil
}

// VerificationURL is the public link encoded in certificate QR codes.
func (s *CertificateService) VerificationURL(id string) string {
	return s.baseURL + "/tourism_certificate/" + id
}
