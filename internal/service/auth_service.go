package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/tourism-service/internal/auth"
	"github.com/spec-kit/tourism-service/internal/config"
	"github.com/spec-kit/tourism-service/internal/domain"
	"github.com/spec-kit/tourism-service/internal/repository"
	apperrors "github.com/spec-kit/tourism-service/pkg/util"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	accounts   repository.AccountRepository
	companies  repository.CompanyRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
	now        Clock
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	AccountRepo repository.AccountRepository
	CompanyRepo repository.CompanyRepository
	Logger      *zap.Logger
	Clock       Clock
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		accounts:   deps.AccountRepo,
		companies:  deps.CompanyRepo,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
		logger:     loggerOrNop(deps.Logger).Named("auth"),
		now:        clockOrDefault(deps.Clock),
	}
}

// Session is an issued access token.
type Session struct {
	Account   *domain.Account
	Token     string
	ExpiresAt time.Time
}

// CompanyRegistration is the sign-up form of a new establishment.
type CompanyRegistration struct {
	CompanyName string
	CompanyType string
	Email       string
	Password    string
	Contact     string
	Address     string
	OwnerName   string
	Position    string
}

// Login authenticates an account by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	account, ok, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	if !ok {
		return nil, apperrors.NewUnauthorized(auth.ErrInvalidCredentials.Error())
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized(auth.ErrInvalidCredentials.Error())
	}
	return s.issue(account)
}

// RegisterCompany creates a company account and its company in review.
func (s *AuthService) RegisterCompany(ctx context.Context, reg CompanyRegistration) (*domain.Company, *Session, error) {
	if err := s.ensureEmailFree(ctx, reg.Email); err != nil {
		return nil, nil, err
	}

	hash, err := auth.HashPassword(reg.Password, s.bcryptCost)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}

	now := s.now()
	company := domain.NewCompany(domain.Company{
		CompanyName: strings.TrimSpace(reg.CompanyName),
		CompanyType: reg.CompanyType,
		Email:       strings.ToLower(strings.TrimSpace(reg.Email)),
		Contact:     reg.Contact,
		Address:     reg.Address,
		Status:      domain.StatusUnderReview,
		DateCreated: timePtr(now),
	})
	account := &domain.Account{
		Name:         reg.OwnerName,
		Email:        reg.Email,
		PasswordHash: hash,
		Role:         domain.RoleCompany,
		Position:     reg.Position,
		DateCreated:  timePtr(now),
	}

	if err := s.companies.Create(ctx, &company); err != nil {
		s.logger.Error("company create failed", zap.Error(err))
		return nil, nil, apperrors.NewPersistenceError(err)
	}
	account.CompanyID = company.CompanyID
	if err := s.accounts.Create(ctx, account); err != nil {
		s.logger.Error("company account create failed", zap.String("company_id", company.CompanyID), zap.Error(err))
		return nil, nil, apperrors.NewPersistenceError(err)
	}

	company.OwnerUID = account.UID
	company.StatusHistory = []domain.StatusHistoryEntry{{
		Status:      domain.StatusUnderReview,
		DateUpdated: now,
		Remarks:     "registered",
		UserID:      account.UID,
	}}
	patch := repository.Document{"owner_uid": company.OwnerUID, "status_history": company.StatusHistory}
	if err := s.companies.Update(ctx, company.CompanyID, patch); err != nil {
		return nil, nil, apperrors.NewPersistenceError(err)
	}

	session, err := s.issue(account)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("company registered", zap.String("company_id", company.CompanyID), zap.String("owner_uid", account.UID))
	return &company, session, nil
}

// CreateVerifier creates a reviewer account.
func (s *AuthService) CreateVerifier(ctx context.Context, name, email, password, position string) (*domain.Account, error) {
	return s.createAccount(ctx, domain.Account{
		Name:     name,
		Email:    email,
		Role:     domain.RoleVerifier,
		Position: position,
	}, password)
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		s.logger.Warn("admin credentials not configured; skipping admin bootstrap")
		return nil
	}
	if _, ok, err := s.accounts.FindByEmail(ctx, email); err != nil {
		return err
	} else if ok {
		return nil
	}
	_, err := s.createAccount(ctx, domain.Account{Name: "Administrator", Email: email, Role: domain.RoleAdmin}, password)
	if err == nil {
		s.logger.Info("admin account created", zap.String("email", email))
	}
	return err
}

// Account returns the account behind a uid.
func (s *AuthService) Account(ctx context.Context, uid string) (*domain.Account, error) {
	account, ok, err := s.accounts.Get(ctx, uid)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	if !ok {
		return nil, apperrors.NewNotFound("account", map[string]any{"uid": uid})
	}
	return account, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) createAccount(ctx context.Context, account domain.Account, password string) (*domain.Account, error) {
	if err := s.ensureEmailFree(ctx, account.Email); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	account.PasswordHash = hash
	account.DateCreated = timePtr(s.now())
	if err := s.accounts.Create(ctx, &account); err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return &account, nil
}

func (s *AuthService) ensureEmailFree(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return apperrors.NewValidationError("email is required", map[string]any{"field": "email"})
	}
	_, taken, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return apperrors.NewPersistenceError(err)
	}
	if taken {
		return apperrors.NewConflict("email already registered", map[string]any{"email": email})
	}
	return nil
}

func (s *AuthService) issue(account *domain.Account) (*Session, error) {
	token, exp, err := s.tokenMgr.GenerateToken(*account)
	if err != nil {
		return nil, apperrors.NewInternalError(errors.Join(errors.New("sign token"), err))
	}
	return &Session{Account: account, Token: token, ExpiresAt: exp}, nil
}
