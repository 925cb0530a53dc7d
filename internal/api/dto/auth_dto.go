package dto

import (
	"time"

	"github.com/spec-kit/tourism-service/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateVerifierRequest payload for new reviewer accounts.
type CreateVerifierRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Position string `json:"position"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AccountResponse is the public view of an account.
type AccountResponse struct {
	UID       string      `json:"uid"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CompanyID string      `json:"company_id,omitempty"`
	Position  string      `json:"position,omitempty"`
}

// NewAccountResponse hides the password hash.
func NewAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		UID:       a.UID,
		Name:      a.Name,
		Email:     a.Email,
		Role:      a.Role,
		CompanyID: a.CompanyID,
		Position:  a.Position,
	}
}
