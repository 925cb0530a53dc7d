package domain

import "time"

// Role is the identity role carried in access tokens.
type Role string

const (
	RoleCompany  Role = "company"
	RoleVerifier Role = "verifier"
	RoleAdmin    Role = "admin"
)

// Account is a login identity. Verifiers are accounts with RoleVerifier;
// company accounts are bound to one CompanyID.
type Account struct {
	UID          string     `json:"uid"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"password_hash"`
	Role         Role       `json:"role"`
	CompanyID    string     `json:"company_id,omitempty"`
	Position     string     `json:"position,omitempty"`
	DateCreated  *time.Time `json:"date_created,omitempty"`
}

// IsReviewer reports whether the account may review companies and employees.
func (a Account) IsReviewer() bool {
	return a.Role == RoleVerifier || a.Role == RoleAdmin
}
