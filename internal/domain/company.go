package domain

import "time"

// ApprovalStatus is the review state of a company or employee.
type ApprovalStatus string

const (
	StatusUnderReview   ApprovalStatus = "under review"
	StatusApproved      ApprovalStatus = "approved"
	StatusIncomplete    ApprovalStatus = "incomplete"
	StatusResigned      ApprovalStatus = "resigned"
	StatusChangeCompany ApprovalStatus = "change company"
	StatusInvalid       ApprovalStatus = "invalid"
	StatusTemporary     ApprovalStatus = "temporary"
)

var approvalStatuses = map[ApprovalStatus]struct{}{
	StatusUnderReview:   {},
	StatusApproved:      {},
	StatusIncomplete:    {},
	StatusResigned:      {},
	StatusChangeCompany: {},
	StatusInvalid:       {},
	StatusTemporary:     {},
}

// IsValid reports whether s is one of the known review states.
func (s ApprovalStatus) IsValid() bool {
	_, ok := approvalStatuses[s]
	return ok
}

// StatusHistoryEntry is one append-only record of an approval status change.
type StatusHistoryEntry struct {
	Status      ApprovalStatus `json:"status"`
	DateUpdated time.Time      `json:"date_updated"`
	Remarks     string         `json:"remarks"`
	UserID      string         `json:"userId"`
}

// Company is a registered tourism establishment.
type Company struct {
	CompanyID             string               `json:"company_id"`
	CompanyName           string               `json:"company_name"`
	CompanyType           string               `json:"company_type"`
	Email                 string               `json:"email"`
	Contact               string               `json:"contact"`
	Address               string               `json:"address"`
	OwnerUID              string               `json:"owner_uid"`
	Status                ApprovalStatus       `json:"status"`
	StatusHistory         []StatusHistoryEntry `json:"status_history"`
	TourismCertificateIDs []string             `json:"tourism_certificate_ids"`
	LatestCertID          string               `json:"latest_cert_id"`
	LatestCertSummary     *CertificateSummary  `json:"latest_cert_summary,omitempty"`
	Ticket                []string             `json:"ticket"`
	DateCreated           *time.Time           `json:"date_created,omitempty"`
}

// NewCompany returns a copy of partial with every collection present and the
// review status defaulted to under review.
func NewCompany(partial Company) Company {
	c := partial
	if c.Status == "" {
		c.Status = StatusUnderReview
	}
	if c.StatusHistory == nil {
		c.StatusHistory = []StatusHistoryEntry{}
	}
	if c.TourismCertificateIDs == nil {
		c.TourismCertificateIDs = []string{}
	}
	if c.Ticket == nil {
		c.Ticket = []string{}
	}
	return c
}
