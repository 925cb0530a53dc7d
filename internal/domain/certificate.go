package domain

import (
	"fmt"
	"regexp"
	"time"
)

// Certificate types.
const (
	CertificateTypeEndorsement   = "endorsement"
	CertificateTypeAccreditation = "accreditation"
)

var certificateIDPattern = regexp.MustCompile(`^TOURISM-\d{4,}-\d{4}$`)

// Certificate is an immutable tourism certificate issued on approval.
type Certificate struct {
	TourismCertID string    `json:"tourism_cert_id"`
	Type          string    `json:"type"`
	DateIssued    time.Time `json:"date_Issued"`
	DateExpired   time.Time `json:"date_Expired"`
	CompanyID     string    `json:"company_id,omitempty"`
	EmployeeID    string    `json:"employee_id,omitempty"`
	VerifierID    string    `json:"verifier_id"`
}

// CertificateSummary is the denormalized snapshot kept on the certificate holder.
type CertificateSummary struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Issued  time.Time `json:"issued"`
	Expired time.Time `json:"expired"`
}

// Summary snapshots the certificate for its holder.
func (c Certificate) Summary() CertificateSummary {
	return CertificateSummary{
		ID:      c.TourismCertID,
		Type:    c.Type,
		Issued:  c.DateIssued,
		Expired: c.DateExpired,
	}
}

// Counter is the per-year certificate sequence document.
type Counter struct {
	Year       int `json:"year"`
	LastNumber int `json:"last_number"`
}

// FormatCertificateID renders TOURISM-<4-digit-seq>-<year>.
func FormatCertificateID(seq, year int) string {
	return fmt.Sprintf("TOURISM-%04d-%d", seq, year)
}

// IsCertificateID reports whether id has the certificate id shape.
func IsCertificateID(id string) bool {
	return certificateIDPattern.MatchString(id)
}
